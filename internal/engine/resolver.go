package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/tatianab/dice-battle/internal/config"
	apperrors "github.com/tatianab/dice-battle/internal/errors"
	"github.com/tatianab/dice-battle/internal/models"
)

// RoundReport describes one resolved round.
type RoundReport struct {
	Round       int
	Records     []models.EventRecord
	Defeated    []string
	RankChanged bool
	Finished    bool
}

// TurnResolver drives a round: every seated player rolls once, in seating
// order, and the result is executed and recorded before the next player rolls.
type TurnResolver struct {
	session  *models.GameSession
	ledger   *EventLedger
	ranks    *RankEngine
	executor *ActionExecutor
	provider DecisionProvider
	roller   Roller
	rules    config.Rules
	logger   zerolog.Logger
}

func NewTurnResolver(
	session *models.GameSession,
	ledger *EventLedger,
	ranks *RankEngine,
	provider DecisionProvider,
	roller Roller,
	rules config.Rules,
	logger zerolog.Logger,
) *TurnResolver {
	return &TurnResolver{
		session:  session,
		ledger:   ledger,
		ranks:    ranks,
		executor: NewActionExecutor(rules),
		provider: provider,
		roller:   roller,
		rules:    rules,
		logger:   logger.With().Str("component", "TurnResolver").Logger(),
	}
}

// ResolveRound plays one full round. An error aborts the round where it
// happened; effects applied before it stay applied and recorded.
func (r *TurnResolver) ResolveRound(ctx context.Context) (RoundReport, error) {
	round := r.session.Round() + 1
	report := RoundReport{Round: round}
	aliveAtStart := namesOf(r.session.Alive())

	r.logger.Debug().Int("round", round).Int("alive", len(aliveAtStart)).Msg("Round started")

	for _, actor := range r.session.Roster() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		rec, err := r.resolveTurn(ctx, round, actor)
		if err != nil {
			return report, fmt.Errorf("round %d, %s: %w", round, actor.Name(), err)
		}
		report.Records = append(report.Records, rec)
	}

	for _, p := range r.session.Alive() {
		if err := p.GainVP(r.rules.SurvivorBonus); err != nil {
			return report, err
		}
		p.Survive()
	}
	for _, name := range aliveAtStart {
		p, err := r.session.Player(name)
		if err != nil {
			return report, err
		}
		if !p.Alive() {
			report.Defeated = append(report.Defeated, name)
		}
	}

	r.session.AdvanceRound()
	r.session.ResetTargeting()
	report.RankChanged = r.ranks.CheckChanged()
	report.Finished = r.Finished()

	r.logger.Debug().
		Int("round", round).
		Int("survivors", len(r.session.Alive())).
		Strs("defeated", report.Defeated).
		Bool("rank_changed", report.RankChanged).
		Msg("Round complete")
	return report, nil
}

// Finished reports whether at most one player is alive or the round limit
// has been reached.
func (r *TurnResolver) Finished() bool {
	return len(r.session.Alive()) <= 1 || r.session.Round() >= r.rules.MaxRounds
}

func (r *TurnResolver) resolveTurn(ctx context.Context, round int, actor *models.Player) (models.EventRecord, error) {
	roll, face, err := actor.RollDice(r.roller)
	if err != nil {
		return models.EventRecord{}, err
	}
	entry := Entry{Round: round, Actor: actor.Name(), Face: face, Roll: roll}

	eligible := r.eligibleTargets(actor)
	choice := models.ChoiceNone
	if len(ChoicesFor(face)) > 0 {
		options := availableChoices(face, len(eligible) > 0)
		switch len(options) {
		case 0:
			r.logger.Debug().Str("actor", actor.Name()).Stringer("face", face).Msg("No eligible target, turn has no effect")
			return r.ledger.Record(entry)
		case 1:
			choice = options[0]
		default:
			choice, err = r.provider.RequestChoice(ctx, ChoiceRequest{
				Actor:   actor.View(),
				Face:    face,
				Options: options,
			})
			if err != nil {
				return models.EventRecord{}, fmt.Errorf("request choice: %w", err)
			}
			if !slices.Contains(options, choice) {
				return models.EventRecord{}, apperrors.Newf(apperrors.CodeInvalidAction, "choice %q was not offered for %s", choice, face)
			}
		}
	}

	var target *models.Player
	if NeedsTarget(face, choice) {
		if len(eligible) == 0 {
			r.logger.Debug().Str("actor", actor.Name()).Stringer("face", face).Msg("No eligible target, turn has no effect")
			return r.ledger.Record(entry)
		}
		views := make([]models.PlayerView, len(eligible))
		for i, p := range eligible {
			views[i] = p.View()
		}
		name, err := r.provider.RequestTarget(ctx, TargetRequest{
			Actor:    actor.View(),
			Face:     face,
			Choice:   choice,
			Eligible: views,
		})
		if err != nil {
			return models.EventRecord{}, fmt.Errorf("request target: %w", err)
		}
		idx := slices.IndexFunc(eligible, func(p *models.Player) bool { return p.Name() == name })
		if idx < 0 {
			return models.EventRecord{}, apperrors.Newf(apperrors.CodeInvalidAction, "%q is not an eligible target for %s", name, face)
		}
		target = eligible[idx]
	}

	wasAlive := target != nil && target.Alive()
	outcome, err := r.executor.Execute(actor, face, target, choice)
	if err != nil {
		return models.EventRecord{}, err
	}
	if outcome.Subject != actor.Name() {
		entry.Target = outcome.Subject
	}
	if outcome.Applied {
		entry.Kind = outcome.Kind
		entry.Amount = outcome.Amount
	}

	rec, err := r.ledger.Record(entry)
	if err != nil {
		return models.EventRecord{}, err
	}

	r.logger.Debug().
		Int("round", round).
		Str("actor", actor.Name()).
		Int("roll", roll).
		Stringer("face", face).
		Str("choice", string(choice)).
		Str("target", entry.Target).
		Str("effect", string(entry.Kind)).
		Int("amount", entry.Amount).
		Msg("Action resolved")
	if wasAlive && !target.Alive() {
		r.logger.Info().Int("round", round).Str("player", target.Name()).Str("by", actor.Name()).Msg("Player defeated")
	}
	if face == models.Backfire && !actor.Alive() {
		r.logger.Info().Int("round", round).Str("player", actor.Name()).Msg("Player defeated by backfire")
	}
	return rec, nil
}

// eligibleTargets lists the other alive players; a defeated actor may not pick
// the player it affected last.
func (r *TurnResolver) eligibleTargets(actor *models.Player) []*models.Player {
	var out []*models.Player
	for _, p := range r.session.Alive() {
		if p == actor {
			continue
		}
		if !actor.Alive() && p.Name() == actor.LastTargetedTo() {
			continue
		}
		out = append(out, p)
	}
	return out
}

func namesOf(players []*models.Player) []string {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name()
	}
	return names
}
