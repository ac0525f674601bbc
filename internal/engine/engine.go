package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/tatianab/dice-battle/internal/config"
	apperrors "github.com/tatianab/dice-battle/internal/errors"
	"github.com/tatianab/dice-battle/internal/models"
)

// Game end reasons.
const (
	ReasonLastStanding = "last player standing"
	ReasonAllDefeated  = "all players defeated"
	ReasonRoundLimit   = "round limit reached"
)

// Result is the outcome of a finished game.
type Result struct {
	Rounds    int
	Winner    string
	Reason    string
	Standings []models.RankRecord
}

type Option func(*Engine)

// WithRoller replaces the default seeded roller.
func WithRoller(r Roller) Option {
	return func(e *Engine) { e.roller = r }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock sets the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithShuffle sets how seats are arranged before the first round. A nil
// shuffle keeps join order.
func WithShuffle(shuffle func(n int, swap func(i, j int))) Option {
	return func(e *Engine) {
		e.shuffle = shuffle
		e.shuffleSet = true
	}
}

// Engine wires a session to its ledger, ranking and resolver and plays it to
// the end.
type Engine struct {
	rules      config.Rules
	session    *models.GameSession
	ledger     *EventLedger
	ranks      *RankEngine
	resolver   *TurnResolver
	roller     Roller
	logger     zerolog.Logger
	now        func() time.Time
	shuffle    func(n int, swap func(i, j int))
	shuffleSet bool
}

// NewEngine seats names in a new session and prepares it for the first round.
// Without WithRoller the engine rolls with a RandRoller from a fresh seed,
// which also shuffles the seating unless WithShuffle says otherwise.
func NewEngine(rules config.Rules, names []string, provider DecisionProvider, opts ...Option) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, "invalid rules", err)
	}
	if provider == nil {
		return nil, apperrors.New(apperrors.CodeValidation, "a decision provider is required")
	}
	if len(names) < config.MinPlayers {
		return nil, apperrors.Newf(apperrors.CodeValidation, "need at least %d players, got %d", config.MinPlayers, len(names))
	}

	e := &Engine{
		rules:  rules,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.roller == nil {
		seed, err := NewSeed()
		if err != nil {
			return nil, err
		}
		e.roller = NewRandRoller(seed)
	}
	if !e.shuffleSet {
		if rr, ok := e.roller.(*RandRoller); ok {
			e.shuffle = rr.Shuffle
		}
	}

	e.session = models.NewGameSession(rules.TotalPlayers, rules.StartingHP, rules.MaxHP)
	for _, name := range names {
		if _, err := e.session.AddPlayer(name); err != nil {
			return nil, err
		}
	}
	if e.shuffle != nil {
		if err := e.session.Arrange(e.shuffle); err != nil {
			return nil, err
		}
	}

	e.ledger = NewEventLedger(e.session.Size(), e.now)
	e.ranks = NewRankEngine(e.session)
	e.resolver = NewTurnResolver(e.session, e.ledger, e.ranks, provider, e.roller, rules, e.logger)

	e.logger.Info().
		Str("session", e.session.ID).
		Strs("seating", namesOf(e.session.Roster())).
		Int("max_rounds", rules.MaxRounds).
		Msg("Game created")
	return e, nil
}

// PlayRound resolves the next round.
func (e *Engine) PlayRound(ctx context.Context) (RoundReport, error) {
	if e.Finished() {
		return RoundReport{}, apperrors.New(apperrors.CodeIllegalState, "game is already finished")
	}
	report, err := e.resolver.ResolveRound(ctx)
	if err != nil {
		return report, err
	}
	if report.Finished {
		res := e.Result()
		e.logger.Info().
			Str("session", e.session.ID).
			Int("rounds", res.Rounds).
			Str("winner", res.Winner).
			Str("reason", res.Reason).
			Msg("Game over")
	}
	return report, nil
}

// Play resolves rounds until the game is finished or ctx is done.
func (e *Engine) Play(ctx context.Context) (Result, error) {
	for !e.Finished() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if _, err := e.PlayRound(ctx); err != nil {
			return Result{}, err
		}
	}
	return e.Result(), nil
}

func (e *Engine) Finished() bool { return e.resolver.Finished() }

// Result reports the current standings. Winner and Reason are only set once
// the game is finished; the winner is whoever ranks first.
func (e *Engine) Result() Result {
	res := Result{
		Rounds:    e.session.Round(),
		Standings: e.ranks.Standings(),
	}
	if !e.Finished() {
		return res
	}
	switch len(e.session.Alive()) {
	case 0:
		res.Reason = ReasonAllDefeated
	case 1:
		res.Reason = ReasonLastStanding
	default:
		res.Reason = ReasonRoundLimit
	}
	if leader, ok := e.ranks.Leader(); ok {
		res.Winner = leader.PlayerName
	}
	return res
}

// Transcript exports the session for reporting.
func (e *Engine) Transcript() *models.Transcript {
	res := e.Result()
	records := e.ledger.All()
	lines := Refine(records)

	events := make([]models.TranscriptEvent, len(records))
	for i, rec := range records {
		events[i] = models.NewTranscriptEvent(rec, lines[i])
	}
	return &models.Transcript{
		Summary: models.TranscriptSummary{
			SessionID: e.session.ID,
			Rounds:    res.Rounds,
			Winner:    res.Winner,
			Reason:    res.Reason,
			Players:   e.session.Views(),
		},
		Standings: res.Standings,
		Events:    events,
	}
}

func (e *Engine) Session() *models.GameSession { return e.session }
func (e *Engine) Ledger() *EventLedger         { return e.ledger }
func (e *Engine) Ranks() *RankEngine           { return e.ranks }
func (e *Engine) Rules() config.Rules          { return e.rules }

// Seed is the seed of the default roller, or false when a custom roller is in use.
func (e *Engine) Seed() (uint64, bool) {
	if rr, ok := e.roller.(*RandRoller); ok {
		return rr.Seed(), true
	}
	return 0, false
}
