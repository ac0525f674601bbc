package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tatianab/dice-battle/internal/engine"
	"github.com/tatianab/dice-battle/internal/models"
)

// prompt is a decision the engine is waiting on. The UI answers by sending
// exactly one value on reply.
type prompt struct {
	title   string
	options []string
	reply   chan string
}

type promptMsg prompt

// humanProvider turns engine decisions into prompts for the UI. It runs on
// the goroutine resolving the round and blocks until the UI replies or ctx ends.
type humanProvider struct {
	prompts chan prompt
}

func newHumanProvider() *humanProvider {
	return &humanProvider{prompts: make(chan prompt)}
}

func (h *humanProvider) RequestChoice(ctx context.Context, req engine.ChoiceRequest) (models.Choice, error) {
	options := make([]string, len(req.Options))
	for i, o := range req.Options {
		options[i] = string(o)
	}
	v, err := h.ask(ctx, fmt.Sprintf("You rolled %s. Choose an effect:", req.Face), options)
	return models.Choice(v), err
}

func (h *humanProvider) RequestTarget(ctx context.Context, req engine.TargetRequest) (string, error) {
	options := make([]string, len(req.Eligible))
	for i, p := range req.Eligible {
		options[i] = p.Name
	}
	title := fmt.Sprintf("You rolled %s. Choose a target:", req.Face)
	if req.Choice != models.ChoiceNone {
		title = fmt.Sprintf("You rolled %s (%s). Choose a target:", req.Face, req.Choice)
	}
	return h.ask(ctx, title, options)
}

func (h *humanProvider) ask(ctx context.Context, title string, options []string) (string, error) {
	p := prompt{title: title, options: options, reply: make(chan string, 1)}
	select {
	case h.prompts <- p:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	select {
	case v := <-p.reply:
		return v, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// waitForPrompt delivers the next pending decision to Update.
func waitForPrompt(ch <-chan prompt) tea.Cmd {
	return func() tea.Msg {
		return promptMsg(<-ch)
	}
}

// parseAnswer accepts a 1-based option number or the option itself, ignoring case.
func parseAnswer(input string, options []string) (string, bool) {
	input = strings.TrimSpace(input)
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(options) {
			return options[n-1], true
		}
		return "", false
	}
	for _, o := range options {
		if strings.EqualFold(o, input) {
			return o, true
		}
	}
	return "", false
}
