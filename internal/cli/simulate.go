package cli

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/tatianab/dice-battle/internal/config"
	"github.com/tatianab/dice-battle/internal/engine"
)

var defaultPlayers = []string{"Ava", "Bram", "Cleo", "Dax", "Eli"}

func (a *app) newSimulateCmd() *cobra.Command {
	var (
		games   int
		botName string
		players []string
		save    bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play bot-only games without a terminal UI",
		Long: `Plays games where every seat is a bot. A single game is narrated round
by round; several games are summarized with win counts per player.
Game i uses seed+i, so a run can be replayed with the same --seed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if games < 1 {
				return fmt.Errorf("--games must be at least 1, got %d", games)
			}
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			logger, err := a.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			seed, err := a.resolveSeed()
			if err != nil {
				return err
			}
			names := players
			if len(names) == 0 {
				names = defaultPlayers[:min(cfg.Rules.TotalPlayers, len(defaultPlayers))]
			}

			factory, closeFn, err := a.newProvider(cmd.Context(), botName, cfg, seed, logger)
			if err != nil {
				return err
			}
			defer closeFn()

			sim := simulation{
				rules:   cfg.Rules,
				names:   names,
				factory: factory,
				logger:  logger,
				out:     cmd.OutOrStdout(),
			}
			if games == 1 {
				return sim.narrate(cmd.Context(), seed, save)
			}
			return sim.batch(cmd.Context(), seed, games)
		},
	}

	cmd.Flags().IntVarP(&games, "games", "n", 1, "number of games to play")
	cmd.Flags().StringVar(&botName, "bot", "greedy", "strategy for every seat: random, greedy or gemini")
	cmd.Flags().StringSliceVar(&players, "players", nil, "player names (default: one per seat)")
	cmd.Flags().BoolVar(&save, "save", false, "save the transcript of a single game")
	return cmd
}

type simulation struct {
	rules   config.Rules
	names   []string
	factory providerFactory
	logger  zerolog.Logger
	out     io.Writer
}

func (s simulation) newEngine(seed uint64) (*engine.Engine, error) {
	provider, err := s.factory(seed)
	if err != nil {
		return nil, err
	}
	return engine.NewEngine(s.rules, s.names, provider,
		engine.WithRoller(engine.NewRandRoller(seed)),
		engine.WithLogger(s.logger),
	)
}

func (s simulation) narrate(ctx context.Context, seed uint64, save bool) error {
	eng, err := s.newEngine(seed)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Seed: %d\n", seed)
	fmt.Fprintf(s.out, "Seating: %v\n\n", namesOf(eng))

	for !eng.Finished() {
		report, err := eng.PlayRound(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "--- Round %d ---\n", report.Round)
		for _, line := range engine.Refine(report.Records) {
			fmt.Fprintln(s.out, line)
		}
		for _, name := range report.Defeated {
			fmt.Fprintf(s.out, "DEFEATED: %s\n", name)
		}
		fmt.Fprintln(s.out)
	}

	res := eng.Result()
	fmt.Fprintf(s.out, "Game over after %d rounds (%s). Winner: %s\n\n", res.Rounds, res.Reason, res.Winner)
	writeStandings(s.out, eng)

	if save {
		name := eng.Session().ID
		if err := eng.Transcript().Save(name); err != nil {
			return fmt.Errorf("save transcript: %w", err)
		}
		fmt.Fprintf(s.out, "\nTranscript saved as %s\n", name)
	}
	return nil
}

func (s simulation) batch(ctx context.Context, seed uint64, games int) error {
	wins := make(map[string]int)
	reasons := make(map[string]int)
	rounds := 0

	bar := progressbar.Default(int64(games), "Simulating")
	for i := 0; i < games; i++ {
		eng, err := s.newEngine(seed + uint64(i))
		if err != nil {
			return err
		}
		res, err := eng.Play(ctx)
		if err != nil {
			return fmt.Errorf("game %d (seed %d): %w", i+1, seed+uint64(i), err)
		}
		wins[res.Winner]++
		reasons[res.Reason]++
		rounds += res.Rounds
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	fmt.Fprintf(s.out, "\nPlayed %d games, seeds %d..%d, %.1f rounds on average\n\n", games, seed, seed+uint64(games-1), float64(rounds)/float64(games))
	fmt.Fprintln(s.out, "Wins:")
	for _, name := range sortedByCount(wins, s.names) {
		fmt.Fprintf(s.out, "  %-10s %4d  %5.1f%%\n", name, wins[name], 100*float64(wins[name])/float64(games))
	}
	fmt.Fprintln(s.out, "Endings:")
	for _, reason := range sortedByCount(reasons, nil) {
		fmt.Fprintf(s.out, "  %-22s %4d\n", reason, reasons[reason])
	}
	return nil
}

// sortedByCount orders keys by count desc, then name. Every entry of include
// is listed even with a zero count.
func sortedByCount(counts map[string]int, include []string) []string {
	keys := slices.Clone(include)
	for k := range counts {
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return keys
}

func writeStandings(w io.Writer, eng *engine.Engine) {
	fmt.Fprintln(w, "Standings:")
	for _, r := range eng.Ranks().Standings() {
		p, err := eng.Session().Player(r.PlayerName)
		status := ""
		if err == nil && !p.Alive() {
			status = " (defeated)"
		}
		fmt.Fprintf(w, "  %d. %-10s %2d VP %2d HP%s\n", r.Rank, r.PlayerName, r.VPCount, r.HP, status)
	}
}

func namesOf(eng *engine.Engine) []string {
	var names []string
	for _, p := range eng.Session().Roster() {
		names = append(names, p.Name())
	}
	return names
}
