package engine

import (
	"context"
	"slices"

	"github.com/tatianab/dice-battle/internal/models"
)

// TargetRequest asks who a face should affect.
type TargetRequest struct {
	Actor    models.PlayerView
	Face     models.Face
	Choice   models.Choice
	Eligible []models.PlayerView
}

// ChoiceRequest asks which branch of a face to apply.
type ChoiceRequest struct {
	Actor   models.PlayerView
	Face    models.Face
	Options []models.Choice
}

// DecisionProvider supplies the decisions a roll needs. Calls block until the
// provider answers; timeouts and cancellation come from ctx, which the host
// controls. Answers outside the offered set are rejected as invalid actions.
type DecisionProvider interface {
	RequestTarget(ctx context.Context, req TargetRequest) (string, error)
	RequestChoice(ctx context.Context, req ChoiceRequest) (models.Choice, error)
}

// ChoicesFor lists the branches a face offers, or nil when it has only one effect.
func ChoicesFor(face models.Face) []models.Choice {
	switch face {
	case models.PowerMove:
		return []models.Choice{models.ChoiceGainVP, models.ChoiceDamageHP}
	case models.Bless:
		return []models.Choice{models.ChoiceHealHP, models.ChoiceGainVP}
	case models.Curse:
		return []models.Choice{models.ChoiceDamageHP, models.ChoiceStealVP}
	default:
		return nil
	}
}

// NeedsTarget reports whether face, under choice, must be aimed at another player.
func NeedsTarget(face models.Face, choice models.Choice) bool {
	switch face {
	case models.PowerMove:
		return choice == models.ChoiceDamageHP
	case models.Jab, models.Strike, models.Pickpocket, models.Bless, models.Curse:
		return true
	default:
		return false
	}
}

// availableChoices drops the branches that need a target when none is eligible.
func availableChoices(face models.Face, haveTargets bool) []models.Choice {
	options := ChoicesFor(face)
	if haveTargets {
		return options
	}
	return slices.DeleteFunc(slices.Clone(options), func(c models.Choice) bool {
		return NeedsTarget(face, c)
	})
}
