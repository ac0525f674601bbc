package bot

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatianab/dice-battle/internal/config"
	"github.com/tatianab/dice-battle/internal/engine"
	"github.com/tatianab/dice-battle/internal/models"
)

func views(vs ...models.PlayerView) []models.PlayerView { return vs }

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel(" Greedy ")
	require.NoError(t, err)
	assert.Equal(t, LevelGreedy, l)
	assert.Equal(t, "greedy", l.String())

	_, err = ParseLevel("god")
	assert.Error(t, err)

	_, err = New(LevelRandom, nil)
	assert.Error(t, err)

	p, err := New(LevelRandom, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.IsType(t, &Random{}, p)
}

func TestRandomStaysInOfferedSet(t *testing.T) {
	r := NewRandom(rand.New(rand.NewPCG(7, 7)))
	ctx := context.Background()
	eligible := views(models.PlayerView{Name: "x"}, models.PlayerView{Name: "y"})

	for i := 0; i < 50; i++ {
		c, err := r.RequestChoice(ctx, engine.ChoiceRequest{Face: models.Curse, Options: engine.ChoicesFor(models.Curse)})
		require.NoError(t, err)
		assert.Contains(t, engine.ChoicesFor(models.Curse), c)

		name, err := r.RequestTarget(ctx, engine.TargetRequest{Face: models.Jab, Eligible: eligible})
		require.NoError(t, err)
		assert.Contains(t, []string{"x", "y"}, name)
	}

	_, err := r.RequestTarget(ctx, engine.TargetRequest{Face: models.Jab})
	assert.Error(t, err)
}

func TestGreedy(t *testing.T) {
	g := &Greedy{}
	ctx := context.Background()

	c, err := g.RequestChoice(ctx, engine.ChoiceRequest{Face: models.PowerMove, Options: engine.ChoicesFor(models.PowerMove)})
	require.NoError(t, err)
	assert.Equal(t, models.ChoiceGainVP, c)

	c, err = g.RequestChoice(ctx, engine.ChoiceRequest{Face: models.Curse, Options: engine.ChoicesFor(models.Curse)})
	require.NoError(t, err)
	assert.Equal(t, models.ChoiceStealVP, c)

	eligible := views(
		models.PlayerView{Name: "rich", HP: 20, VP: 5},
		models.PlayerView{Name: "hurt", HP: 4, VP: 5},
		models.PlayerView{Name: "poor", HP: 9, VP: 0},
	)

	name, err := g.RequestTarget(ctx, engine.TargetRequest{Face: models.Strike, Eligible: eligible})
	require.NoError(t, err)
	assert.Equal(t, "hurt", name, "leader closest to falling")

	name, err = g.RequestTarget(ctx, engine.TargetRequest{Face: models.Pickpocket, Eligible: eligible})
	require.NoError(t, err)
	assert.Equal(t, "rich", name)

	name, err = g.RequestTarget(ctx, engine.TargetRequest{Face: models.Bless, Choice: models.ChoiceHealHP, Eligible: eligible})
	require.NoError(t, err)
	assert.Equal(t, "poor", name)

	ctxDone, cancel := context.WithCancel(ctx)
	cancel()
	_, err = g.RequestTarget(ctxDone, engine.TargetRequest{Face: models.Jab, Eligible: eligible})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScriptedAndMux(t *testing.T) {
	alice := &Scripted{Choices: []models.Choice{models.ChoiceDamageHP}, Targets: []string{"bob"}}
	m := &Mux{Seats: map[string]engine.DecisionProvider{"alice": alice}}
	ctx := context.Background()

	c, err := m.RequestChoice(ctx, engine.ChoiceRequest{Actor: models.PlayerView{Name: "alice"}, Face: models.PowerMove})
	require.NoError(t, err)
	assert.Equal(t, models.ChoiceDamageHP, c)

	name, err := m.RequestTarget(ctx, engine.TargetRequest{Actor: models.PlayerView{Name: "alice"}, Face: models.PowerMove})
	require.NoError(t, err)
	assert.Equal(t, "bob", name)

	_, err = m.RequestTarget(ctx, engine.TargetRequest{Actor: models.PlayerView{Name: "alice"}, Face: models.Jab})
	assert.Error(t, err, "script exhausted")

	_, err = m.RequestTarget(ctx, engine.TargetRequest{Actor: models.PlayerView{Name: "carol"}, Face: models.Jab})
	assert.Error(t, err, "no seat and no fallback")

	m.Fallback = &Greedy{}
	name, err = m.RequestTarget(ctx, engine.TargetRequest{
		Actor:    models.PlayerView{Name: "carol"},
		Face:     models.Jab,
		Eligible: views(models.PlayerView{Name: "alice", HP: 20}),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", name)
}

func TestBotsFinishGames(t *testing.T) {
	for _, level := range []Level{LevelRandom, LevelGreedy} {
		t.Run(level.String(), func(t *testing.T) {
			p, err := New(level, rand.New(rand.NewPCG(3, 4)))
			require.NoError(t, err)

			e, err := engine.NewEngine(config.DefaultRules(), []string{"a", "b", "c", "d", "e"}, p,
				engine.WithRoller(engine.NewRandRoller(99)))
			require.NoError(t, err)

			res, err := e.Play(context.Background())
			require.NoError(t, err)
			assert.True(t, e.Finished())
			assert.NotEmpty(t, res.Winner)
			assert.NotEmpty(t, res.Reason)
		})
	}
}

type fakeGenerator struct {
	replies []string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r, nil
}

func TestGeminiParsesReplies(t *testing.T) {
	gen := &fakeGenerator{replies: []string{
		"```yaml\nchoice: damage_hp\nreason: hit the leader\n```",
		"target: bob\nreason: most VP",
	}}
	g := newGemini(gen, nil, zerolog.New(zerolog.NewTestWriter(t)))
	ctx := context.Background()

	c, err := g.RequestChoice(ctx, engine.ChoiceRequest{
		Actor:   models.PlayerView{Name: "alice", HP: 20, Status: models.StatusAlive},
		Face:    models.PowerMove,
		Options: engine.ChoicesFor(models.PowerMove),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ChoiceDamageHP, c)
	assert.Contains(t, gen.prompts[0], "You rolled POWER_MOVE")
	assert.Contains(t, gen.prompts[0], "- gain_vp")

	name, err := g.RequestTarget(ctx, engine.TargetRequest{
		Actor:    models.PlayerView{Name: "alice"},
		Face:     models.PowerMove,
		Choice:   models.ChoiceDamageHP,
		Eligible: views(models.PlayerView{Name: "bob", HP: 12, VP: 4}, models.PlayerView{Name: "carol"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "bob", name)
	assert.Contains(t, gen.prompts[1], "- bob: 12 HP, 4 VP")
	assert.Contains(t, gen.prompts[1], "and chose damage_hp")
}

func TestGeminiFallsBack(t *testing.T) {
	ctx := context.Background()
	eligible := views(models.PlayerView{Name: "bob", VP: 1}, models.PlayerView{Name: "carol", VP: 3})
	fallback := &Scripted{Targets: []string{"carol", "carol", "carol"}}

	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{name: "not eligible", gen: &fakeGenerator{replies: []string{"target: dave"}}},
		{name: "garbage", gen: &fakeGenerator{replies: []string{"target: [unclosed"}}},
		{name: "api error", gen: &fakeGenerator{err: errors.New("quota")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGemini(tt.gen, fallback, zerolog.Nop())
			name, err := g.RequestTarget(ctx, engine.TargetRequest{Actor: models.PlayerView{Name: "alice"}, Face: models.Jab, Eligible: eligible})
			require.NoError(t, err)
			assert.Equal(t, "carol", name)
		})
	}

	g := newGemini(&fakeGenerator{err: errors.New("deadline")}, fallback, zerolog.Nop())
	done, cancel := context.WithCancel(ctx)
	cancel()
	_, err := g.RequestChoice(done, engine.ChoiceRequest{Face: models.Curse, Options: engine.ChoicesFor(models.Curse)})
	assert.ErrorIs(t, err, context.Canceled)
}
