package models

import (
	"slices"

	"github.com/google/uuid"
	apperrors "github.com/tatianab/dice-battle/internal/errors"
)

// GameSession owns the roster. Every engine component works on the players
// held here; none keeps its own copy.
type GameSession struct {
	ID         string
	roster     []*Player
	byName     map[string]*Player
	maxPlayers int
	startingHP int
	maxHP      int
	round      int
}

// NewGameSession creates an empty session for up to maxPlayers players.
func NewGameSession(maxPlayers, startingHP, maxHP int) *GameSession {
	return &GameSession{
		ID:         uuid.NewString(),
		byName:     make(map[string]*Player),
		maxPlayers: maxPlayers,
		startingHP: startingHP,
		maxHP:      maxHP,
	}
}

// AddPlayer seats a new player at the end of the roster.
func (s *GameSession) AddPlayer(name string) (*Player, error) {
	if len(s.roster) >= s.maxPlayers {
		return nil, apperrors.Newf(apperrors.CodeCapacity, "roster is full (%d players)", s.maxPlayers)
	}
	if _, exists := s.byName[name]; exists {
		return nil, apperrors.Newf(apperrors.CodeValidation, "player %q already joined", name)
	}
	p, err := NewPlayer(name, s.startingHP, s.maxHP)
	if err != nil {
		return nil, err
	}
	s.roster = append(s.roster, p)
	s.byName[name] = p
	return p, nil
}

// Player looks a player up by name.
func (s *GameSession) Player(name string) (*Player, error) {
	p, ok := s.byName[name]
	if !ok {
		return nil, apperrors.Newf(apperrors.CodeNotFound, "player %q not found", name)
	}
	return p, nil
}

// Roster returns the players in turn order.
func (s *GameSession) Roster() []*Player {
	return slices.Clone(s.roster)
}

// Size is the number of seated players.
func (s *GameSession) Size() int { return len(s.roster) }

// MaxPlayers is the roster capacity.
func (s *GameSession) MaxPlayers() int { return s.maxPlayers }

// Alive returns the ALIVE players in turn order.
func (s *GameSession) Alive() []*Player {
	var alive []*Player
	for _, p := range s.roster {
		if p.Alive() {
			alive = append(alive, p)
		}
	}
	return alive
}

// Views snapshots every player in turn order.
func (s *GameSession) Views() []PlayerView {
	views := make([]PlayerView, len(s.roster))
	for i, p := range s.roster {
		views[i] = p.View()
	}
	return views
}

// Round is the number of completed rounds.
func (s *GameSession) Round() int { return s.round }

// AdvanceRound marks a round complete and returns the new count.
func (s *GameSession) AdvanceRound() int {
	s.round++
	return s.round
}

// ResetTargeting clears every player's per-round targeting memory.
func (s *GameSession) ResetTargeting() {
	for _, p := range s.roster {
		p.ResetTargeting()
	}
}

// Arrange reorders the seating before the first round using shuffle, which
// has the signature of rand.Shuffle.
func (s *GameSession) Arrange(shuffle func(n int, swap func(i, j int))) error {
	if s.round > 0 {
		return apperrors.New(apperrors.CodeIllegalState, "seating can only change before the first round")
	}
	shuffle(len(s.roster), func(i, j int) {
		s.roster[i], s.roster[j] = s.roster[j], s.roster[i]
	})
	return nil
}
