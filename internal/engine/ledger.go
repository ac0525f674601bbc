package engine

import (
	"fmt"
	"slices"
	"strings"
	"time"

	apperrors "github.com/tatianab/dice-battle/internal/errors"
	"github.com/tatianab/dice-battle/internal/models"
)

// Entry is the input to EventLedger.Record. Target is empty for solo effects;
// the effect amount is attributed to Target, or to Actor when Target is empty.
type Entry struct {
	Round  int
	Actor  string
	Face   models.Face
	Roll   int
	Target string
	Kind   models.EffectKind
	Amount int
}

// EventLedger is the append-only store of what happened in a session. Records
// are validated before they are stored and are never changed afterwards.
type EventLedger struct {
	records    []models.EventRecord
	nextID     uint64
	rosterSize int
	now        func() time.Time
}

// NewEventLedger creates a ledger for a roster of rosterSize players.
func NewEventLedger(rosterSize int, now func() time.Time) *EventLedger {
	if now == nil {
		now = time.Now
	}
	return &EventLedger{
		nextID:     1,
		rosterSize: rosterSize,
		now:        now,
	}
}

// Record builds a record from e, normalizing the scalar effect into list form,
// and appends it.
func (l *EventLedger) Record(e Entry) (models.EventRecord, error) {
	if e.Face == nil {
		return models.EventRecord{}, apperrors.New(apperrors.CodeLedgerIntegrity, "record is missing its face")
	}
	target := e.Target
	if target == "" {
		target = e.Actor
	}
	rec := models.EventRecord{
		Timestamp:    l.now(),
		Round:        e.Round,
		Participants: []string{e.Actor, target},
		RolledBy:     e.Actor,
		RollerStatus: e.Face.Table(),
		Face:         e.Face,
		Roll:         e.Roll,
	}
	if e.Kind != models.EffectNone {
		rec.SetEffect(e.Kind, []models.Effect{{Target: target, Amount: e.Amount}})
	}
	return l.Append(rec)
}

// Append validates rec, stamps it with the next key and stores a copy.
func (l *EventLedger) Append(rec models.EventRecord) (models.EventRecord, error) {
	if err := l.Validate(rec); err != nil {
		return models.EventRecord{}, err
	}
	stored := rec.Clone()
	stored.ID = l.nextID
	l.nextID++
	l.records = append(l.records, stored)
	return stored.Clone(), nil
}

// Validate checks the write-time invariants of a record.
func (l *EventLedger) Validate(rec models.EventRecord) error {
	switch {
	case rec.Timestamp.IsZero():
		return integrity("record is missing its timestamp")
	case rec.RolledBy == "":
		return integrity("record is missing rolled_by")
	case rec.Face == nil:
		return integrity("record is missing its face")
	case rec.Roll < 1 || rec.Roll > 6:
		return integrity("roll %d outside 1-6", rec.Roll)
	case rec.RollerStatus != rec.Face.Table():
		return integrity("%s is not on the %s table", rec.Face, rec.RollerStatus)
	}

	if len(rec.Participants) != 2 {
		return integrity("record needs exactly two participants, got %d", len(rec.Participants))
	}
	if len(rec.Participants) > l.rosterSize {
		return integrity("record lists %d participants for a roster of %d", len(rec.Participants), l.rosterSize)
	}
	if slices.Contains(rec.Participants, "") {
		return integrity("record has an empty participant")
	}
	if !slices.Contains(rec.Participants, rec.RolledBy) {
		return integrity("rolled_by %q is not a participant", rec.RolledBy)
	}

	groups := rec.Groups()
	if len(groups) > 1 {
		return integrity("record populates %d effect groups, at most one is allowed", len(groups))
	}
	kind, effects := rec.Effect()
	if kind == models.EffectNone {
		return nil
	}
	if len(effects) == 0 {
		return integrity("%s is present but empty", kind)
	}
	lo, hi := amountRange(kind)
	for _, eff := range effects {
		if !slices.Contains(rec.Participants, eff.Target) {
			return integrity("%s target %q is not a participant", kind, eff.Target)
		}
		if eff.Amount < lo || eff.Amount > hi {
			return integrity("%s amount %d outside [%d,%d]", kind, eff.Amount, lo, hi)
		}
	}
	return nil
}

func amountRange(kind models.EffectKind) (int, int) {
	switch kind {
	case models.EffectVPGained, models.EffectVPStolen:
		return models.MinVPDelta, models.MaxVPDelta
	default:
		return 1, models.MaxHealAmount
	}
}

func integrity(format string, args ...any) error {
	return apperrors.Newf(apperrors.CodeLedgerIntegrity, format, args...)
}

// Len is the number of stored records.
func (l *EventLedger) Len() int { return len(l.records) }

// Events returns copies of the records in [start, end). Negative indices count
// from the end and out-of-range indices are clamped, like slice expressions in
// most scripting languages.
func (l *EventLedger) Events(start, end int) []models.EventRecord {
	n := len(l.records)
	start, end = clampIndex(start, n), clampIndex(end, n)
	if start >= end {
		return []models.EventRecord{}
	}
	out := make([]models.EventRecord, 0, end-start)
	for _, rec := range l.records[start:end] {
		out = append(out, rec.Clone())
	}
	return out
}

// All returns copies of every record.
func (l *EventLedger) All() []models.EventRecord {
	return l.Events(0, len(l.records))
}

// Last returns copies of the last n records.
func (l *EventLedger) Last(n int) []models.EventRecord {
	if n <= 0 {
		return []models.EventRecord{}
	}
	return l.Events(-n, len(l.records))
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	return max(0, min(i, n))
}

// Refine renders one line per record.
func (l *EventLedger) Refine(records []models.EventRecord) []string {
	return Refine(records)
}

// Refine renders one human-readable line per record.
func Refine(records []models.EventRecord) []string {
	lines := make([]string, 0, len(records))
	for _, rec := range records {
		lines = append(lines, refineOne(rec))
	}
	return lines
}

func refineOne(rec models.EventRecord) string {
	kind, effects := rec.Effect()
	if kind == models.EffectNone {
		return fmt.Sprintf("%s triggered %s and had no effect", rec.RolledBy, rec.Face)
	}

	phrases := make([]string, 0, len(effects))
	for _, eff := range effects {
		switch kind {
		case models.EffectDamage:
			phrases = append(phrases, fmt.Sprintf("dealt -%d damage to %s", eff.Amount, eff.Target))
		case models.EffectHealing:
			phrases = append(phrases, fmt.Sprintf("healed +%d health to %s", eff.Amount, eff.Target))
		case models.EffectVPGained:
			if eff.Target == rec.RolledBy {
				phrases = append(phrases, fmt.Sprintf("gained +%d VP", eff.Amount))
			} else {
				phrases = append(phrases, fmt.Sprintf("granted +%d VP to %s", eff.Amount, eff.Target))
			}
		case models.EffectVPStolen:
			phrases = append(phrases, fmt.Sprintf("stole -%d VP from %s", eff.Amount, eff.Target))
		}
	}
	return fmt.Sprintf("%s triggered %s and %s", rec.RolledBy, rec.Face, strings.Join(phrases, " and "))
}
