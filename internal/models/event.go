package models

import (
	"slices"
	"time"
)

// EffectKind names the effect group populated on an EventRecord.
type EffectKind string

const (
	EffectNone     EffectKind = ""
	EffectDamage   EffectKind = "damage_dealt"
	EffectHealing  EffectKind = "healing_done"
	EffectVPGained EffectKind = "vp_gained"
	EffectVPStolen EffectKind = "vp_stolen"
)

// Effect is one (target, amount) pair of an effect group.
type Effect struct {
	Target string `yaml:"target"`
	Amount int    `yaml:"amount"`
}

// EventRecord is one ledger entry. At most one of the effect groups is non-nil;
// a record with none of them is a recorded no-op.
type EventRecord struct {
	ID           uint64
	Timestamp    time.Time
	Round        int
	Participants []string
	RolledBy     string
	RollerStatus Status
	Face         Face
	Roll         int

	DamageDealt []Effect
	HealingDone []Effect
	VPGained    []Effect
	VPStolen    []Effect
}

// Groups returns the kinds of every non-nil effect group.
func (r EventRecord) Groups() []EffectKind {
	var kinds []EffectKind
	if r.DamageDealt != nil {
		kinds = append(kinds, EffectDamage)
	}
	if r.HealingDone != nil {
		kinds = append(kinds, EffectHealing)
	}
	if r.VPGained != nil {
		kinds = append(kinds, EffectVPGained)
	}
	if r.VPStolen != nil {
		kinds = append(kinds, EffectVPStolen)
	}
	return kinds
}

// Effect returns the first populated group and its entries, or EffectNone.
func (r EventRecord) Effect() (EffectKind, []Effect) {
	switch {
	case r.DamageDealt != nil:
		return EffectDamage, r.DamageDealt
	case r.HealingDone != nil:
		return EffectHealing, r.HealingDone
	case r.VPGained != nil:
		return EffectVPGained, r.VPGained
	case r.VPStolen != nil:
		return EffectVPStolen, r.VPStolen
	default:
		return EffectNone, nil
	}
}

// SetEffect populates the group for kind. EffectNone leaves the record as a no-op.
func (r *EventRecord) SetEffect(kind EffectKind, effects []Effect) {
	switch kind {
	case EffectDamage:
		r.DamageDealt = effects
	case EffectHealing:
		r.HealingDone = effects
	case EffectVPGained:
		r.VPGained = effects
	case EffectVPStolen:
		r.VPStolen = effects
	}
}

// Clone returns a deep copy so stored records cannot be changed through it.
func (r EventRecord) Clone() EventRecord {
	c := r
	c.Participants = slices.Clone(r.Participants)
	c.DamageDealt = slices.Clone(r.DamageDealt)
	c.HealingDone = slices.Clone(r.HealingDone)
	c.VPGained = slices.Clone(r.VPGained)
	c.VPStolen = slices.Clone(r.VPStolen)
	return c
}
