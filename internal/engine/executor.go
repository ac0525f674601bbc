package engine

import (
	"github.com/tatianab/dice-battle/internal/config"
	apperrors "github.com/tatianab/dice-battle/internal/errors"
	"github.com/tatianab/dice-battle/internal/models"
)

// Outcome summarizes what a face did. Subject is the player whose state the
// effect touched (the actor for solo effects). Applied is false only for a
// steal against a player without enough victory points, which changes nothing
// but is still recorded.
type Outcome struct {
	Face    models.Face
	Subject string
	Kind    models.EffectKind
	Amount  int
	Applied bool
}

// ActionExecutor applies one face to an actor and its target. It is the only
// component that mutates players after they are seated.
type ActionExecutor struct {
	rules config.Rules
}

func NewActionExecutor(rules config.Rules) *ActionExecutor {
	return &ActionExecutor{rules: rules}
}

// Execute validates the face/target/choice combination and applies it.
func (x *ActionExecutor) Execute(actor *models.Player, face models.Face, target *models.Player, choice models.Choice) (Outcome, error) {
	if actor == nil || face == nil {
		return Outcome{}, apperrors.New(apperrors.CodeInvalidAction, "an action needs an actor and a face")
	}
	if face.Table() != actor.Status() {
		return Outcome{}, apperrors.Newf(apperrors.CodeInvalidAction, "%s is %s and cannot use %s", actor.Name(), actor.Status(), face)
	}
	if target == actor {
		return Outcome{}, apperrors.Newf(apperrors.CodeInvalidAction, "%s cannot target themselves", actor.Name())
	}

	switch f := face.(type) {
	case models.ActiveFace:
		return x.executeActive(actor, f, target, choice)
	case models.FallenFace:
		return x.executeFallen(actor, f, target, choice)
	default:
		return Outcome{}, apperrors.Newf(apperrors.CodeInvalidAction, "unknown face %v", face)
	}
}

func (x *ActionExecutor) executeActive(actor *models.Player, face models.ActiveFace, target *models.Player, choice models.Choice) (Outcome, error) {
	switch face {
	case models.Backfire:
		if err := requireSolo(face, target, choice); err != nil {
			return Outcome{}, err
		}
		return x.damage(actor, face, actor, x.rules.BackfireDamage)

	case models.Recover:
		if err := requireSolo(face, target, choice); err != nil {
			return Outcome{}, err
		}
		return x.heal(actor, face, actor, x.rules.RecoverHeal)

	case models.PowerMove:
		if target == nil {
			switch choice {
			case models.ChoiceNone, models.ChoiceGainVP:
				return x.gainVP(actor, face, actor, x.rules.PowerMoveVP)
			case models.ChoiceDamageHP:
				return Outcome{}, apperrors.New(apperrors.CodeInvalidAction, "POWER_MOVE with damage_hp requires a target")
			}
			return Outcome{}, invalidChoice(face, choice)
		}
		switch choice {
		case models.ChoiceDamageHP:
			return x.damage(actor, face, target, x.rules.PowerMoveDamage)
		case models.ChoiceGainVP:
			// the target is left untouched
			return x.gainVP(actor, face, actor, x.rules.PowerMoveVP)
		}
		return Outcome{}, invalidChoice(face, choice)

	case models.Jab, models.Strike, models.Pickpocket:
		if target == nil {
			return Outcome{}, apperrors.Newf(apperrors.CodeInvalidAction, "%s requires a target", face)
		}
		if choice != models.ChoiceNone {
			return Outcome{}, invalidChoice(face, choice)
		}
		switch face {
		case models.Jab:
			return x.damage(actor, face, target, x.rules.JabDamage)
		case models.Strike:
			return x.damage(actor, face, target, x.rules.StrikeDamage)
		default:
			return x.steal(actor, face, target, x.rules.PickpocketVP)
		}
	}
	return Outcome{}, apperrors.Newf(apperrors.CodeInvalidAction, "unhandled face %v", face)
}

func (x *ActionExecutor) executeFallen(actor *models.Player, face models.FallenFace, target *models.Player, choice models.Choice) (Outcome, error) {
	switch face {
	case models.Nothing:
		if err := requireSolo(face, target, choice); err != nil {
			return Outcome{}, err
		}
		return Outcome{Face: face, Subject: actor.Name(), Applied: true}, nil

	case models.Bless, models.Curse:
		if target == nil {
			return Outcome{}, apperrors.Newf(apperrors.CodeInvalidAction, "%s requires a target", face)
		}
		if !target.Alive() {
			return Outcome{}, apperrors.Newf(apperrors.CodeIllegalState, "defeated players can only affect alive players, %s is %s", target.Name(), target.Status())
		}
		if actor.LastTargetedTo() == target.Name() {
			return Outcome{}, apperrors.WithMetadata(apperrors.CodeIllegalState, "defeated player cannot affect the same player twice in a row", map[string]string{
				"actor":  actor.Name(),
				"target": target.Name(),
			})
		}

		if face == models.Bless {
			switch choice {
			case models.ChoiceHealHP:
				return x.heal(actor, face, target, x.rules.BlessHeal)
			case models.ChoiceGainVP:
				return x.grantVP(actor, face, target, x.rules.BlessVP)
			}
			return Outcome{}, invalidChoice(face, choice)
		}
		switch choice {
		case models.ChoiceDamageHP:
			return x.damage(actor, face, target, x.rules.CurseDamage)
		case models.ChoiceStealVP:
			return x.steal(actor, face, target, x.rules.CurseVP)
		}
		return Outcome{}, invalidChoice(face, choice)
	}
	return Outcome{}, apperrors.Newf(apperrors.CodeInvalidAction, "unhandled face %v", face)
}

func (x *ActionExecutor) damage(actor *models.Player, face models.Face, subject *models.Player, amount int) (Outcome, error) {
	if err := subject.TakeDamage(amount); err != nil {
		return Outcome{}, err
	}
	markTargeted(actor, subject)
	return Outcome{Face: face, Subject: subject.Name(), Kind: models.EffectDamage, Amount: amount, Applied: true}, nil
}

func (x *ActionExecutor) heal(actor *models.Player, face models.Face, subject *models.Player, amount int) (Outcome, error) {
	if err := subject.Heal(amount); err != nil {
		return Outcome{}, err
	}
	markTargeted(actor, subject)
	return Outcome{Face: face, Subject: subject.Name(), Kind: models.EffectHealing, Amount: amount, Applied: true}, nil
}

func (x *ActionExecutor) gainVP(actor *models.Player, face models.Face, subject *models.Player, amount int) (Outcome, error) {
	if err := subject.GainVP(amount); err != nil {
		return Outcome{}, err
	}
	return Outcome{Face: face, Subject: subject.Name(), Kind: models.EffectVPGained, Amount: amount, Applied: true}, nil
}

func (x *ActionExecutor) grantVP(actor *models.Player, face models.Face, subject *models.Player, amount int) (Outcome, error) {
	out, err := x.gainVP(actor, face, subject, amount)
	if err != nil {
		return Outcome{}, err
	}
	markTargeted(actor, subject)
	return out, nil
}

// steal is a recorded no-op when the target cannot cover amount.
func (x *ActionExecutor) steal(actor *models.Player, face models.Face, subject *models.Player, amount int) (Outcome, error) {
	if subject.VP() < amount {
		return Outcome{Face: face, Subject: subject.Name(), Applied: false}, nil
	}
	if err := actor.StealVP(subject, amount); err != nil {
		return Outcome{}, err
	}
	markTargeted(actor, subject)
	return Outcome{Face: face, Subject: subject.Name(), Kind: models.EffectVPStolen, Amount: amount, Applied: true}, nil
}

func markTargeted(actor, subject *models.Player) {
	if actor != subject {
		actor.MarkTargeted(subject)
	}
}

func requireSolo(face models.Face, target *models.Player, choice models.Choice) error {
	if target != nil {
		return apperrors.Newf(apperrors.CodeInvalidAction, "%s does not take a target", face)
	}
	if choice != models.ChoiceNone {
		return invalidChoice(face, choice)
	}
	return nil
}

func invalidChoice(face models.Face, choice models.Choice) error {
	return apperrors.Newf(apperrors.CodeInvalidAction, "invalid choice %q for %s", choice, face)
}
