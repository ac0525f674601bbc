package engine

import (
	"cmp"
	"slices"

	apperrors "github.com/tatianab/dice-battle/internal/errors"
	"github.com/tatianab/dice-battle/internal/models"
)

// RankEngine keeps the standings of a session and tells whether they moved
// since the last check.
type RankEngine struct {
	session   *models.GameSession
	standings []models.RankRecord
}

// NewRankEngine snapshots the session in seating order, rank 1..n.
func NewRankEngine(session *models.GameSession) *RankEngine {
	r := &RankEngine{session: session}
	for i, p := range session.Roster() {
		r.standings = append(r.standings, models.RankRecord{
			PlayerName: p.Name(),
			VPCount:    p.VP(),
			HP:         p.HP(),
			Rank:       i + 1,
		})
	}
	return r
}

// Refresh recomputes the standings from the current player state and returns
// a copy of them.
func (r *RankEngine) Refresh() []models.RankRecord {
	r.standings = r.compute()
	return r.Standings()
}

// CheckChanged recomputes the standings and reports whether the order of
// names differs from the previous snapshot.
func (r *RankEngine) CheckChanged() bool {
	next := r.compute()
	changed := !slices.EqualFunc(r.standings, next, func(a, b models.RankRecord) bool {
		return a.PlayerName == b.PlayerName
	})
	r.standings = next
	return changed
}

func (r *RankEngine) compute() []models.RankRecord {
	roster := r.session.Roster()
	slices.SortStableFunc(roster, compareStanding)

	out := make([]models.RankRecord, len(roster))
	for i, p := range roster {
		out[i] = models.RankRecord{
			PlayerName: p.Name(),
			VPCount:    p.VP(),
			HP:         p.HP(),
			Rank:       i + 1,
		}
	}
	return out
}

// compareStanding orders by VP desc, then HP desc, then name asc.
func compareStanding(a, b *models.Player) int {
	if c := cmp.Compare(b.VP(), a.VP()); c != 0 {
		return c
	}
	if c := cmp.Compare(b.HP(), a.HP()); c != 0 {
		return c
	}
	return cmp.Compare(a.Name(), b.Name())
}

// Standings returns a copy of the last computed standings.
func (r *RankEngine) Standings() []models.RankRecord {
	return slices.Clone(r.standings)
}

// PlayerRank looks up one player's entry in the last computed standings.
func (r *RankEngine) PlayerRank(name string) (models.RankRecord, error) {
	for _, rec := range r.standings {
		if rec.PlayerName == name {
			return rec, nil
		}
	}
	return models.RankRecord{}, apperrors.Newf(apperrors.CodeNotFound, "no standing for player %q", name)
}

// Leader is the rank-1 entry, or false when the roster is empty.
func (r *RankEngine) Leader() (models.RankRecord, bool) {
	if len(r.standings) == 0 {
		return models.RankRecord{}, false
	}
	return r.standings[0], true
}
