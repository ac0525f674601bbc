package bot

import (
	"cmp"
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/tatianab/dice-battle/internal/engine"
	"github.com/tatianab/dice-battle/internal/models"
)

// Random answers uniformly from whatever it is offered.
type Random struct {
	rng *rand.Rand
}

func NewRandom(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

func (r *Random) RequestChoice(ctx context.Context, req engine.ChoiceRequest) (models.Choice, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(req.Options) == 0 {
		return "", fmt.Errorf("no options offered for %s", req.Face)
	}
	return req.Options[r.rng.IntN(len(req.Options))], nil
}

func (r *Random) RequestTarget(ctx context.Context, req engine.TargetRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(req.Eligible) == 0 {
		return "", fmt.Errorf("no eligible targets for %s", req.Face)
	}
	return req.Eligible[r.rng.IntN(len(req.Eligible))].Name, nil
}

// Greedy plays for its own score. While alive it banks victory points and
// hits the current leader; once defeated it steals from the richest player and
// heals the weakest one.
type Greedy struct{}

var greedyPreference = map[models.Face][]models.Choice{
	models.PowerMove: {models.ChoiceGainVP, models.ChoiceDamageHP},
	models.Bless:     {models.ChoiceHealHP, models.ChoiceGainVP},
	models.Curse:     {models.ChoiceStealVP, models.ChoiceDamageHP},
}

func (g *Greedy) RequestChoice(ctx context.Context, req engine.ChoiceRequest) (models.Choice, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	for _, c := range greedyPreference[req.Face] {
		if slices.Contains(req.Options, c) {
			return c, nil
		}
	}
	if len(req.Options) == 0 {
		return "", fmt.Errorf("no options offered for %s", req.Face)
	}
	return req.Options[0], nil
}

func (g *Greedy) RequestTarget(ctx context.Context, req engine.TargetRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(req.Eligible) == 0 {
		return "", fmt.Errorf("no eligible targets for %s", req.Face)
	}

	candidates := slices.Clone(req.Eligible)
	switch {
	case req.Face == models.Bless:
		// weakest first
		slices.SortStableFunc(candidates, func(a, b models.PlayerView) int {
			if c := cmp.Compare(a.VP, b.VP); c != 0 {
				return c
			}
			return cmp.Compare(a.HP, b.HP)
		})
	case req.Face == models.Pickpocket || req.Choice == models.ChoiceStealVP:
		slices.SortStableFunc(candidates, func(a, b models.PlayerView) int {
			return cmp.Compare(b.VP, a.VP)
		})
	default:
		// leader first; among equals, whoever is closest to falling
		slices.SortStableFunc(candidates, func(a, b models.PlayerView) int {
			if c := cmp.Compare(b.VP, a.VP); c != 0 {
				return c
			}
			return cmp.Compare(a.HP, b.HP)
		})
	}
	return candidates[0].Name, nil
}

// Scripted replays queued answers in order. Tests use it to pin every decision.
type Scripted struct {
	Choices []models.Choice
	Targets []string
}

func (s *Scripted) RequestChoice(_ context.Context, req engine.ChoiceRequest) (models.Choice, error) {
	if len(s.Choices) == 0 {
		return "", fmt.Errorf("script has no choice left for %s", req.Face)
	}
	c := s.Choices[0]
	s.Choices = s.Choices[1:]
	return c, nil
}

func (s *Scripted) RequestTarget(_ context.Context, req engine.TargetRequest) (string, error) {
	if len(s.Targets) == 0 {
		return "", fmt.Errorf("script has no target left for %s", req.Face)
	}
	t := s.Targets[0]
	s.Targets = s.Targets[1:]
	return t, nil
}

// Mux routes each request to the provider registered for the acting player,
// or to Fallback.
type Mux struct {
	Seats    map[string]engine.DecisionProvider
	Fallback engine.DecisionProvider
}

func (m *Mux) route(actor string) (engine.DecisionProvider, error) {
	if p, ok := m.Seats[actor]; ok {
		return p, nil
	}
	if m.Fallback != nil {
		return m.Fallback, nil
	}
	return nil, fmt.Errorf("no decision provider for %q", actor)
}

func (m *Mux) RequestChoice(ctx context.Context, req engine.ChoiceRequest) (models.Choice, error) {
	p, err := m.route(req.Actor.Name)
	if err != nil {
		return "", err
	}
	return p.RequestChoice(ctx, req)
}

func (m *Mux) RequestTarget(ctx context.Context, req engine.TargetRequest) (string, error) {
	p, err := m.route(req.Actor.Name)
	if err != nil {
		return "", err
	}
	return p.RequestTarget(ctx, req)
}
