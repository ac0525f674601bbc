package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatianab/dice-battle/internal/bot"
	"github.com/tatianab/dice-battle/internal/config"
	"github.com/tatianab/dice-battle/internal/engine"
	"github.com/tatianab/dice-battle/internal/models"
)

func TestParseAnswer(t *testing.T) {
	options := []string{"gain_vp", "damage_hp"}

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "1", want: "gain_vp", ok: true},
		{in: " 2 ", want: "damage_hp", ok: true},
		{in: "DAMAGE_HP", want: "damage_hp", ok: true},
		{in: "3", ok: false},
		{in: "0", ok: false},
		{in: "steal_vp", ok: false},
		{in: "", ok: false},
	}
	for _, tt := range tests {
		got, ok := parseAnswer(tt.in, options)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestHumanProviderRoundTrip(t *testing.T) {
	h := newHumanProvider()
	ctx := context.Background()

	done := make(chan string, 1)
	go func() {
		name, err := h.RequestTarget(ctx, engine.TargetRequest{
			Face:     models.Jab,
			Eligible: []models.PlayerView{{Name: "bob"}, {Name: "carol"}},
		})
		if err != nil {
			name = "error: " + err.Error()
		}
		done <- name
	}()

	p := <-h.prompts
	assert.Equal(t, []string{"bob", "carol"}, p.options)
	assert.Contains(t, p.title, "JAB")
	p.reply <- "carol"
	assert.Equal(t, "carol", <-done)
}

func TestHumanProviderCancel(t *testing.T) {
	h := newHumanProvider()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.RequestChoice(ctx, engine.ChoiceRequest{Face: models.Bless, Options: engine.ChoicesFor(models.Bless)})
	assert.ErrorIs(t, err, context.Canceled)
}

func enter(t *testing.T, m model, input string) (model, tea.Cmd) {
	t.Helper()
	m.textInput.SetValue(input)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(model), cmd
}

func TestModelFlow(t *testing.T) {
	old := models.SaveDir
	models.SaveDir = t.TempDir()
	t.Cleanup(func() { models.SaveDir = old })

	m := newModel(context.Background(), Options{
		Rules:     config.DefaultRules(),
		Opponents: []string{"Ava", "Bram", "Cleo", "Dax", "Eli"},
		Bot:       &bot.Greedy{},
		Logger:    zerolog.Nop(),
		Seed:      7,
	})
	t.Cleanup(m.cancel)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(model)

	m, cmd := enter(t, m, "Zed")
	require.Equal(t, stateReady, m.state, "err: %v", m.err)
	assert.NotNil(t, cmd)
	assert.Len(t, m.players, 5)
	assert.Contains(t, m.renderLog(), "Seating:")
	panel := m.renderState()
	assert.Contains(t, panel, "5/5 seats")
	assert.Contains(t, panel, "20/20 HP")

	reply := make(chan string, 1)
	next, _ = m.Update(promptMsg{title: "You rolled CURSE. Choose an effect:", options: []string{"damage_hp", "steal_vp"}, reply: reply})
	m = next.(model)
	require.Equal(t, stateDeciding, m.state)
	assert.Contains(t, m.View(), "2) steal_vp")

	m, _ = enter(t, m, "9")
	assert.Equal(t, stateDeciding, m.state)
	assert.Contains(t, m.renderLog(), "not one of the options")

	m, cmd = enter(t, m, "2")
	assert.Equal(t, stateRolling, m.state)
	assert.NotNil(t, cmd)
	assert.Equal(t, "steal_vp", <-reply)

	next, _ = m.Update(roundMsg{report: engine.RoundReport{Round: 1}})
	m = next.(model)
	assert.Equal(t, stateReady, m.state)
	assert.Contains(t, m.renderLog(), "Round 1")

	next, _ = m.Update(roundMsg{report: engine.RoundReport{Round: 2, Finished: true}})
	m = next.(model)
	assert.Equal(t, stateFinished, m.state)
	assert.NotEmpty(t, m.savedAs)

	names, err := models.ListTranscripts()
	require.NoError(t, err)
	assert.Equal(t, []string{m.savedAs}, names)
}

func TestModelReportsEngineErrors(t *testing.T) {
	rules := config.DefaultRules()
	m := newModel(context.Background(), Options{Rules: rules, Bot: &bot.Greedy{}, Logger: zerolog.Nop()})
	t.Cleanup(m.cancel)

	// no opponents means a one-player roster
	m, _ = enter(t, m, "Solo")
	assert.Equal(t, stateError, m.state)
	assert.Contains(t, m.View(), "Error:")
}
