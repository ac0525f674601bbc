package models

import (
	"fmt"

	apperrors "github.com/tatianab/dice-battle/internal/errors"
)

// Status is the lifecycle state of a player. ALIVE can become DEFEATED, never
// the other way round.
type Status string

const (
	StatusAlive    Status = "ALIVE"
	StatusDefeated Status = "DEFEATED"
)

// Face is one entry of a dice table. It is implemented only by ActiveFace and
// FallenFace, so a type switch over the two covers every face.
type Face interface {
	fmt.Stringer
	// Table is the roller status whose table holds this face.
	Table() Status
	isFace()
}

// ActiveFace is a face rolled by an ALIVE player.
type ActiveFace int

const (
	Backfire ActiveFace = iota + 1
	PowerMove
	Recover
	Jab
	Strike
	Pickpocket
)

func (f ActiveFace) String() string {
	switch f {
	case Backfire:
		return "BACKFIRE"
	case PowerMove:
		return "POWER_MOVE"
	case Recover:
		return "RECOVER"
	case Jab:
		return "JAB"
	case Strike:
		return "STRIKE"
	case Pickpocket:
		return "PICKPOCKET"
	default:
		return fmt.Sprintf("ActiveFace(%d)", int(f))
	}
}

func (ActiveFace) Table() Status { return StatusAlive }
func (ActiveFace) isFace()       {}

func (f ActiveFace) MarshalYAML() (any, error) { return f.String(), nil }

// FallenFace is a face rolled by a DEFEATED player.
type FallenFace int

const (
	Nothing FallenFace = iota + 1
	Bless
	Curse
)

func (f FallenFace) String() string {
	switch f {
	case Nothing:
		return "NOTHING"
	case Bless:
		return "BLESS"
	case Curse:
		return "CURSE"
	default:
		return fmt.Sprintf("FallenFace(%d)", int(f))
	}
}

func (FallenFace) Table() Status { return StatusDefeated }
func (FallenFace) isFace()       {}

func (f FallenFace) MarshalYAML() (any, error) { return f.String(), nil }

// Choice labels the branch of a face that offers more than one effect.
type Choice string

const (
	ChoiceNone     Choice = ""
	ChoiceGainVP   Choice = "gain_vp"
	ChoiceDamageHP Choice = "damage_hp"
	ChoiceHealHP   Choice = "heal_hp"
	ChoiceStealVP  Choice = "steal_vp"
)

var activeTable = [6]ActiveFace{Backfire, PowerMove, Recover, Jab, Strike, Pickpocket}

// The defeated table repeats entries: each effect has a 1/3 chance.
var fallenTable = [6]FallenFace{Nothing, Bless, Curse, Bless, Curse, Nothing}

// FaceFor returns the face for a roll of 1-6 on the table of the given status.
func FaceFor(status Status, roll int) (Face, error) {
	if roll < 1 || roll > 6 {
		return nil, apperrors.Newf(apperrors.CodeValidation, "roll %d outside 1-6", roll)
	}
	switch status {
	case StatusAlive:
		return activeTable[roll-1], nil
	case StatusDefeated:
		return fallenTable[roll-1], nil
	default:
		return nil, apperrors.Newf(apperrors.CodeValidation, "unknown status %q", status)
	}
}

// ParseFace returns the face whose name is s, from either table.
func ParseFace(s string) (Face, error) {
	for _, f := range activeTable {
		if f.String() == s {
			return f, nil
		}
	}
	for _, f := range fallenTable {
		if f.String() == s {
			return f, nil
		}
	}
	return nil, apperrors.Newf(apperrors.CodeValidation, "unknown face %q", s)
}
