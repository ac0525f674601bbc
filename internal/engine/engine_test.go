package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatianab/dice-battle/internal/config"
	apperrors "github.com/tatianab/dice-battle/internal/errors"
	"github.com/tatianab/dice-battle/internal/models"
)

// stubProvider answers with a fixed choice (or the first option) and a
// per-actor target (or the first eligible player).
type stubProvider struct {
	choice  models.Choice
	targets map[string]string
	err     error

	choiceReqs []ChoiceRequest
	targetReqs []TargetRequest
}

func (s *stubProvider) RequestChoice(_ context.Context, req ChoiceRequest) (models.Choice, error) {
	s.choiceReqs = append(s.choiceReqs, req)
	if s.err != nil {
		return "", s.err
	}
	if s.choice != models.ChoiceNone {
		return s.choice, nil
	}
	return req.Options[0], nil
}

func (s *stubProvider) RequestTarget(_ context.Context, req TargetRequest) (string, error) {
	s.targetReqs = append(s.targetReqs, req)
	if s.err != nil {
		return "", s.err
	}
	if name, ok := s.targets[req.Actor.Name]; ok {
		return name, nil
	}
	return req.Eligible[0].Name, nil
}

func newTestEngine(t *testing.T, rules config.Rules, names []string, p DecisionProvider, rolls ...int) *Engine {
	t.Helper()
	e, err := NewEngine(rules, names, p,
		WithRoller(NewSequenceRoller(rolls...)),
		WithClock(fixedClock),
		WithLogger(zerolog.New(zerolog.NewTestWriter(t))),
	)
	require.NoError(t, err)
	return e
}

func mustPlayer(t *testing.T, e *Engine, name string) *models.Player {
	t.Helper()
	p, err := e.Session().Player(name)
	require.NoError(t, err)
	return p
}

func TestNewEngineValidation(t *testing.T) {
	rules := config.DefaultRules()

	_, err := NewEngine(rules, []string{"solo"}, &stubProvider{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = NewEngine(rules, []string{"a", "b"}, nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = NewEngine(rules, []string{"a", "a"}, &stubProvider{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = NewEngine(rules, []string{"a", "b", "c", "d", "e", "f"}, &stubProvider{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeCapacity))

	bad := rules
	bad.MaxRounds = 0
	_, err = NewEngine(bad, []string{"a", "b"}, &stubProvider{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestSurvivorBonusWithoutEliminations(t *testing.T) {
	const rounds = 4
	names := []string{"p1", "p2", "p3", "p4", "p5"}
	p := &stubProvider{}
	// every roll is RECOVER, so nobody is hurt and nobody is asked anything
	e := newTestEngine(t, config.DefaultRules(), names, p, 3)

	for i := 1; i <= rounds; i++ {
		report, err := e.PlayRound(context.Background())
		require.NoError(t, err)
		assert.Equal(t, i, report.Round)
		assert.Len(t, report.Records, len(names))
		assert.Empty(t, report.Defeated)
		assert.False(t, report.Finished)
	}

	for _, name := range names {
		pl := mustPlayer(t, e, name)
		assert.Equal(t, rounds, pl.VP(), name)
		assert.Equal(t, rounds, pl.RoundsSurvived(), name)
		assert.True(t, pl.Alive())
	}
	assert.Equal(t, rounds*len(names), e.Ledger().Len())
	assert.Empty(t, p.choiceReqs)
	assert.Empty(t, p.targetReqs)
}

func TestRoundWithChoiceAndTarget(t *testing.T) {
	p := &stubProvider{choice: models.ChoiceDamageHP, targets: map[string]string{"a": "b", "b": "a"}}
	// a: POWER_MOVE, b: JAB
	e := newTestEngine(t, config.DefaultRules(), []string{"a", "b"}, p, 2, 4, 3)

	report, err := e.PlayRound(context.Background())
	require.NoError(t, err)

	require.Len(t, p.choiceReqs, 1)
	assert.Equal(t, []models.Choice{models.ChoiceGainVP, models.ChoiceDamageHP}, p.choiceReqs[0].Options)
	require.Len(t, p.targetReqs, 2)
	assert.Equal(t, models.ChoiceDamageHP, p.targetReqs[0].Choice)
	assert.Equal(t, []models.PlayerView{{Name: "b", HP: 20, Status: models.StatusAlive}}, p.targetReqs[0].Eligible)

	assert.Equal(t, 14, mustPlayer(t, e, "b").HP())
	assert.Equal(t, 18, mustPlayer(t, e, "a").HP())
	assert.Equal(t, []string{
		"a triggered POWER_MOVE and dealt -6 damage to b",
		"b triggered JAB and dealt -2 damage to a",
	}, Refine(report.Records))

	// targeting memory does not leak into the next round
	assert.Empty(t, mustPlayer(t, e, "a").LastTargetedTo())
	assert.Empty(t, mustPlayer(t, e, "b").LastTargetedBy())
}

func TestDefeatedPlayerKeepsTakingTurns(t *testing.T) {
	rules := config.DefaultRules()
	rules.StartingHP = 4
	p := &stubProvider{choice: models.ChoiceGainVP, targets: map[string]string{"a": "b", "b": "c"}}
	// a: STRIKE b, b (now defeated): BLESS, c: RECOVER
	e := newTestEngine(t, rules, []string{"a", "b", "c"}, p, 5, 2, 3)

	report, err := e.PlayRound(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"b"}, report.Defeated)
	assert.False(t, report.Finished)
	require.Len(t, report.Records, 3)

	ghostTurn := report.Records[1]
	assert.Equal(t, models.StatusDefeated, ghostTurn.RollerStatus)
	assert.Equal(t, models.Bless, ghostTurn.Face)
	assert.Equal(t, []models.Effect{{Target: "c", Amount: 1}}, ghostTurn.VPGained)

	require.Len(t, p.choiceReqs, 1)
	assert.Equal(t, []models.Choice{models.ChoiceHealHP, models.ChoiceGainVP}, p.choiceReqs[0].Options)
	require.Len(t, p.targetReqs, 2)
	assert.Len(t, p.targetReqs[1].Eligible, 2, "b may pick a or c")

	assert.Equal(t, 1, mustPlayer(t, e, "a").VP())
	assert.Equal(t, 0, mustPlayer(t, e, "b").VP())
	assert.Equal(t, 2, mustPlayer(t, e, "c").VP())
	assert.Equal(t, 7, mustPlayer(t, e, "c").HP())
	assert.Equal(t, 0, mustPlayer(t, e, "b").RoundsSurvived())
}

func TestNoEligibleTargetIsRecordedNoOp(t *testing.T) {
	rules := config.DefaultRules()
	rules.StartingHP = 3
	p := &stubProvider{}
	// a: BACKFIRE kills itself, b: JAB with nobody left to hit
	e := newTestEngine(t, rules, []string{"a", "b"}, p, 1, 4)

	report, err := e.PlayRound(context.Background())
	require.NoError(t, err)

	assert.Empty(t, p.targetReqs)
	assert.Equal(t, []string{
		"a triggered BACKFIRE and dealt -3 damage to a",
		"b triggered JAB and had no effect",
	}, Refine(report.Records))
	assert.True(t, report.Finished)
	assert.True(t, e.Finished())

	res := e.Result()
	assert.Equal(t, "b", res.Winner)
	assert.Equal(t, ReasonLastStanding, res.Reason)
	assert.Equal(t, 1, res.Rounds)

	_, err = e.PlayRound(context.Background())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeIllegalState))
}

func TestPowerMoveWithoutTargetsGainsVP(t *testing.T) {
	rules := config.DefaultRules()
	rules.StartingHP = 3
	p := &stubProvider{}
	// a: BACKFIRE, b: POWER_MOVE with only the gain branch left
	e := newTestEngine(t, rules, []string{"a", "b"}, p, 1, 2)

	report, err := e.PlayRound(context.Background())
	require.NoError(t, err)

	assert.Empty(t, p.choiceReqs)
	assert.Equal(t, "b triggered POWER_MOVE and gained +3 VP", Refine(report.Records)[1])
	assert.Equal(t, 4, mustPlayer(t, e, "b").VP())
}

func TestProviderAnswersAreChecked(t *testing.T) {
	t.Run("unknown target", func(t *testing.T) {
		p := &stubProvider{targets: map[string]string{"a": "ghost"}}
		e := newTestEngine(t, config.DefaultRules(), []string{"a", "b"}, p, 4)

		_, err := e.PlayRound(context.Background())
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidAction), "got %v", err)
		assert.Equal(t, 0, e.Ledger().Len())
	})

	t.Run("self target", func(t *testing.T) {
		p := &stubProvider{targets: map[string]string{"a": "a"}}
		e := newTestEngine(t, config.DefaultRules(), []string{"a", "b"}, p, 5)

		_, err := e.PlayRound(context.Background())
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidAction), "got %v", err)
	})

	t.Run("choice not offered", func(t *testing.T) {
		p := &stubProvider{choice: models.ChoiceStealVP}
		e := newTestEngine(t, config.DefaultRules(), []string{"a", "b"}, p, 2)

		_, err := e.PlayRound(context.Background())
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidAction), "got %v", err)
	})

	t.Run("provider error", func(t *testing.T) {
		boom := errors.New("boom")
		p := &stubProvider{err: boom}
		e := newTestEngine(t, config.DefaultRules(), []string{"a", "b"}, p, 4)

		_, err := e.PlayRound(context.Background())
		assert.ErrorIs(t, err, boom)
	})
}

func TestPlayToRoundLimit(t *testing.T) {
	names := []string{"eve", "dave", "carol", "bob", "alice"}
	e := newTestEngine(t, config.DefaultRules(), names, &stubProvider{}, 3)

	res, err := e.Play(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 12, res.Rounds)
	assert.Equal(t, ReasonRoundLimit, res.Reason)
	assert.Equal(t, "alice", res.Winner, "all tied, name breaks the tie")
	require.Len(t, res.Standings, 5)
	for _, rec := range res.Standings {
		assert.Equal(t, 12, rec.VPCount)
	}

	_, err = e.PlayRound(context.Background())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeIllegalState))
}

func TestPlayHonorsContext(t *testing.T) {
	e := newTestEngine(t, config.DefaultRules(), []string{"a", "b"}, &stubProvider{}, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Play(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, e.Session().Round())
}

func TestSeatingShuffle(t *testing.T) {
	reverse := func(n int, swap func(i, j int)) {
		for i := 0; i < n/2; i++ {
			swap(i, n-1-i)
		}
	}
	e, err := NewEngine(config.DefaultRules(), []string{"a", "b", "c"}, &stubProvider{},
		WithRoller(NewSequenceRoller(3)),
		WithShuffle(reverse),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"c", "b", "a"}, namesOf(e.Session().Roster()))
	_, ok := e.Seed()
	assert.False(t, ok)
}

func TestSeededGamesReplay(t *testing.T) {
	play := func() ([]string, []string) {
		e, err := NewEngine(config.DefaultRules(), []string{"a", "b", "c", "d", "e"}, &stubProvider{},
			WithRoller(NewRandRoller(42)),
			WithClock(fixedClock),
		)
		require.NoError(t, err)
		seed, ok := e.Seed()
		require.True(t, ok)
		require.Equal(t, uint64(42), seed)

		_, err = e.Play(context.Background())
		require.NoError(t, err)

		for _, p := range e.Session().Roster() {
			assert.GreaterOrEqual(t, p.HP(), 0)
			assert.GreaterOrEqual(t, p.VP(), 0)
			assert.Equal(t, p.HP() == 0, !p.Alive(), p.Name())
		}
		return namesOf(e.Session().Roster()), Refine(e.Ledger().All())
	}

	seats1, lines1 := play()
	seats2, lines2 := play()
	assert.Equal(t, seats1, seats2)
	assert.Equal(t, lines1, lines2)
	assert.NotEmpty(t, lines1)
}

func TestTranscript(t *testing.T) {
	e := newTestEngine(t, config.DefaultRules(), []string{"a", "b"}, &stubProvider{}, 3)
	rules := e.Rules()
	_, err := e.Play(context.Background())
	require.NoError(t, err)

	tr := e.Transcript()
	assert.Equal(t, e.Session().ID, tr.Summary.SessionID)
	assert.Equal(t, rules.MaxRounds, tr.Summary.Rounds)
	assert.Equal(t, "a", tr.Summary.Winner)
	assert.Equal(t, ReasonRoundLimit, tr.Summary.Reason)
	require.Len(t, tr.Events, e.Ledger().Len())
	assert.Equal(t, "a triggered RECOVER and healed +3 health to a", tr.Events[0].Line)
	assert.Equal(t, models.Recover, tr.Events[0].Face)
	assert.Equal(t, testTime, tr.Events[0].Timestamp)
	assert.Len(t, tr.Standings, 2)
}
