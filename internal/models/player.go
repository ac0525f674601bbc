package models

import (
	apperrors "github.com/tatianab/dice-battle/internal/errors"
)

// Bounds enforced by the player primitives.
const (
	MaxHealAmount = 20
	MinVPDelta    = 1
	MaxVPDelta    = 3
)

// Player is one participant. Fields are only changed through the methods
// below, which enforce the state machine at the mutation boundary.
type Player struct {
	name           string
	hp             int
	maxHP          int
	vp             int
	status         Status
	lastTargetedBy string
	lastTargetedTo string
	roundsSurvived int
}

// PlayerView is a read-only snapshot of a player for presentation and
// decision providers.
type PlayerView struct {
	Name           string `yaml:"name"`
	HP             int    `yaml:"hp"`
	VP             int    `yaml:"vp"`
	Status         Status `yaml:"status"`
	RoundsSurvived int    `yaml:"rounds_survived"`
}

// NewPlayer creates an ALIVE player with hp health out of maxHP.
func NewPlayer(name string, hp, maxHP int) (*Player, error) {
	if name == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "player name must not be empty")
	}
	if maxHP < 1 || hp < 1 || hp > maxHP {
		return nil, apperrors.Newf(apperrors.CodeValidation, "player %q: hp %d outside [1,%d]", name, hp, maxHP)
	}
	return &Player{
		name:   name,
		hp:     hp,
		maxHP:  maxHP,
		status: StatusAlive,
	}, nil
}

func (p *Player) Name() string           { return p.name }
func (p *Player) HP() int                { return p.hp }
func (p *Player) MaxHP() int             { return p.maxHP }
func (p *Player) VP() int                { return p.vp }
func (p *Player) Status() Status         { return p.status }
func (p *Player) Alive() bool            { return p.status == StatusAlive }
func (p *Player) LastTargetedBy() string { return p.lastTargetedBy }
func (p *Player) LastTargetedTo() string { return p.lastTargetedTo }
func (p *Player) RoundsSurvived() int    { return p.roundsSurvived }

// View returns a snapshot of the player.
func (p *Player) View() PlayerView {
	return PlayerView{
		Name:           p.name,
		HP:             p.hp,
		VP:             p.vp,
		Status:         p.status,
		RoundsSurvived: p.roundsSurvived,
	}
}

// TakeDamage subtracts amount, clamping at zero. Reaching zero defeats the
// player.
func (p *Player) TakeDamage(amount int) error {
	if amount <= 0 {
		return apperrors.Newf(apperrors.CodeValidation, "damage must be positive, got %d", amount)
	}
	if p.status == StatusDefeated {
		return apperrors.Newf(apperrors.CodeIllegalState, "%s is defeated and cannot take damage", p.name)
	}
	p.hp -= amount
	if p.hp <= 0 {
		p.hp = 0
		p.status = StatusDefeated
	}
	return nil
}

// Heal adds amount, capped at the player's maximum health.
func (p *Player) Heal(amount int) error {
	if amount < 1 || amount > MaxHealAmount {
		return apperrors.Newf(apperrors.CodeValidation, "heal must be in [1,%d], got %d", MaxHealAmount, amount)
	}
	if p.status == StatusDefeated {
		return apperrors.Newf(apperrors.CodeIllegalState, "%s is defeated and cannot be healed", p.name)
	}
	p.hp = min(p.hp+amount, p.maxHP)
	return nil
}

// GainVP adds victory points.
func (p *Player) GainVP(amount int) error {
	if amount < MinVPDelta || amount > MaxVPDelta {
		return apperrors.Newf(apperrors.CodeValidation, "vp gain must be in [%d,%d], got %d", MinVPDelta, MaxVPDelta, amount)
	}
	p.vp += amount
	return nil
}

// StealVP moves amount victory points from target to p.
func (p *Player) StealVP(target *Player, amount int) error {
	if target == nil {
		return apperrors.New(apperrors.CodeValidation, "steal requires a target")
	}
	if amount <= 0 {
		return apperrors.Newf(apperrors.CodeValidation, "steal amount must be positive, got %d", amount)
	}
	if target.vp < amount {
		return apperrors.WithMetadata(apperrors.CodeIllegalState, "target has too few victory points", map[string]string{
			"target": target.name,
		})
	}
	if err := p.GainVP(amount); err != nil {
		return err
	}
	target.vp -= amount
	return nil
}

// RollDice draws 1-6 from roller and returns the roll with the face for the
// player's current status.
func (p *Player) RollDice(roller interface{ Roll() int }) (int, Face, error) {
	roll := roller.Roll()
	face, err := FaceFor(p.status, roll)
	if err != nil {
		return roll, nil, err
	}
	return roll, face, nil
}

// MarkTargeted remembers that p affected target on this turn.
func (p *Player) MarkTargeted(target *Player) {
	p.lastTargetedTo = target.name
	target.lastTargetedBy = p.name
}

// ResetTargeting clears the per-round targeting memory.
func (p *Player) ResetTargeting() {
	p.lastTargetedBy = ""
	p.lastTargetedTo = ""
}

// Survive counts a completed round for an ALIVE player.
func (p *Player) Survive() {
	if p.status == StatusAlive {
		p.roundsSurvived++
	}
}
