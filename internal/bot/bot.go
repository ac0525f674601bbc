// Package bot provides computer-controlled decision providers.
package bot

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/tatianab/dice-battle/internal/engine"
)

// Level selects a bot strategy.
type Level int

const (
	LevelRandom Level = iota + 1
	LevelGreedy
)

func (l Level) String() string {
	switch l {
	case LevelRandom:
		return "random"
	case LevelGreedy:
		return "greedy"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// ParseLevel converts a level name such as "greedy".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "random":
		return LevelRandom, nil
	case "greedy":
		return LevelGreedy, nil
	default:
		return 0, fmt.Errorf("unknown bot level: %q", s)
	}
}

// New creates a bot for the given level. rng may be nil for bots that never
// draw random numbers.
func New(level Level, rng *rand.Rand) (engine.DecisionProvider, error) {
	switch level {
	case LevelRandom:
		if rng == nil {
			return nil, fmt.Errorf("random bot needs a source of randomness")
		}
		return NewRandom(rng), nil
	case LevelGreedy:
		return &Greedy{}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
