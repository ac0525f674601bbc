package cli

import (
	"context"
	"math/rand/v2"

	"github.com/rs/zerolog"
	"github.com/tatianab/dice-battle/internal/bot"
	"github.com/tatianab/dice-battle/internal/config"
	"github.com/tatianab/dice-battle/internal/engine"
)

// providerFactory builds the bot for one game from that game's seed.
type providerFactory func(seed uint64) (engine.DecisionProvider, error)

// newProvider resolves a bot name. The returned close function releases any
// client the bot holds and is always safe to call.
func (a *app) newProvider(ctx context.Context, name string, cfg *config.Config, seed uint64, logger zerolog.Logger) (providerFactory, func(), error) {
	noop := func() {}

	if name == "gemini" {
		g, err := bot.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, &bot.Greedy{}, logger)
		if err != nil {
			return nil, noop, err
		}
		return func(uint64) (engine.DecisionProvider, error) { return g, nil }, func() { _ = g.Close() }, nil
	}

	level, err := bot.ParseLevel(name)
	if err != nil {
		return nil, noop, err
	}
	return func(gameSeed uint64) (engine.DecisionProvider, error) {
		return bot.New(level, rand.New(rand.NewPCG(gameSeed, seed)))
	}, noop, nil
}
