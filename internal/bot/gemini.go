package bot

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"github.com/tatianab/dice-battle/internal/engine"
	"github.com/tatianab/dice-battle/internal/models"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/choose_option.txt
var chooseOptionPrompt string

//go:embed prompts/choose_target.txt
var chooseTargetPrompt string

var (
	chooseOptionTmpl = template.Must(template.New("choose_option").Parse(chooseOptionPrompt))
	chooseTargetTmpl = template.Must(template.New("choose_target").Parse(chooseTargetPrompt))
)

type generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type genaiGenerator struct {
	model *genai.GenerativeModel
}

func (g genaiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned from Gemini")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type from Gemini")
	}
	return string(text), nil
}

// Gemini asks a Gemini model for every decision. Replies that cannot be parsed
// or that name something not on offer are handed to the fallback provider.
type Gemini struct {
	client   *genai.Client
	gen      generator
	fallback engine.DecisionProvider
	logger   zerolog.Logger
}

// NewGemini connects to the Gemini API. fallback answers whenever the model
// does not give a usable reply.
func NewGemini(ctx context.Context, apiKey, model string, fallback engine.DecisionProvider, logger zerolog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	g := newGemini(genaiGenerator{model: client.GenerativeModel(model)}, fallback, logger)
	g.client = client
	return g, nil
}

func newGemini(gen generator, fallback engine.DecisionProvider, logger zerolog.Logger) *Gemini {
	if fallback == nil {
		fallback = &Greedy{}
	}
	return &Gemini{
		gen:      gen,
		fallback: fallback,
		logger:   logger.With().Str("component", "Gemini").Logger(),
	}
}

func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *Gemini) RequestChoice(ctx context.Context, req engine.ChoiceRequest) (models.Choice, error) {
	var reply struct {
		Choice string `yaml:"choice"`
		Reason string `yaml:"reason"`
	}
	if err := g.ask(ctx, chooseOptionTmpl, req, &reply); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		g.logger.Warn().Err(err).Str("actor", req.Actor.Name).Msg("Falling back for choice")
		return g.fallback.RequestChoice(ctx, req)
	}

	choice := models.Choice(strings.TrimSpace(reply.Choice))
	if !slices.Contains(req.Options, choice) {
		g.logger.Warn().Str("actor", req.Actor.Name).Str("reply", reply.Choice).Msg("Model picked an option that was not offered")
		return g.fallback.RequestChoice(ctx, req)
	}
	g.logger.Debug().Str("actor", req.Actor.Name).Str("choice", string(choice)).Str("reason", reply.Reason).Msg("Model chose")
	return choice, nil
}

func (g *Gemini) RequestTarget(ctx context.Context, req engine.TargetRequest) (string, error) {
	var reply struct {
		Target string `yaml:"target"`
		Reason string `yaml:"reason"`
	}
	if err := g.ask(ctx, chooseTargetTmpl, req, &reply); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		g.logger.Warn().Err(err).Str("actor", req.Actor.Name).Msg("Falling back for target")
		return g.fallback.RequestTarget(ctx, req)
	}

	target := strings.TrimSpace(reply.Target)
	if !slices.ContainsFunc(req.Eligible, func(p models.PlayerView) bool { return p.Name == target }) {
		g.logger.Warn().Str("actor", req.Actor.Name).Str("reply", reply.Target).Msg("Model picked a target that was not eligible")
		return g.fallback.RequestTarget(ctx, req)
	}
	g.logger.Debug().Str("actor", req.Actor.Name).Str("target", target).Str("reason", reply.Reason).Msg("Model targeted")
	return target, nil
}

func (g *Gemini) ask(ctx context.Context, tmpl *template.Template, data any, out any) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render prompt: %w", err)
	}
	text, err := g.gen.Generate(ctx, buf.String())
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal([]byte(cleanYAML(text)), out); err != nil {
		return fmt.Errorf("failed to parse reply YAML: %w\nOutput was: %s", err, text)
	}
	return nil
}

func cleanYAML(text string) string {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```yaml")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
