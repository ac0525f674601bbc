package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/tatianab/dice-battle/internal/models"
	"github.com/tatianab/dice-battle/internal/tui"
)

var defaultOpponents = []string{"Ava", "Bram", "Cleo", "Dax"}

func (a *app) newPlayCmd() *cobra.Command {
	var (
		botName   string
		opponents []string
		logFile   bool
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game in the terminal against bots",
		Long: `Starts an interactive game. You take one seat and bots fill the rest.
When the game ends its transcript is written to the save directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			// the alt screen owns the terminal, so logs go to a file or nowhere
			logger := zerolog.Nop()
			if logFile {
				if err := os.MkdirAll(models.SaveDir, 0755); err != nil {
					return err
				}
				f, err := os.OpenFile(filepath.Join(models.SaveDir, "dicebattle.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				if logger, err = a.logger(f); err != nil {
					return err
				}
			}

			seed, err := a.resolveSeed()
			if err != nil {
				return err
			}
			factory, closeFn, err := a.newProvider(cmd.Context(), botName, cfg, seed, logger)
			if err != nil {
				return err
			}
			defer closeFn()
			provider, err := factory(seed)
			if err != nil {
				return err
			}

			return tui.Run(cmd.Context(), tui.Options{
				Rules:     cfg.Rules,
				Opponents: opponents,
				Bot:       provider,
				Logger:    logger,
				Seed:      seed,
			})
		},
	}

	cmd.Flags().StringVar(&botName, "bot", "greedy", "opponent strategy: random, greedy or gemini")
	cmd.Flags().StringSliceVar(&opponents, "opponents", defaultOpponents, "opponent names")
	cmd.Flags().BoolVar(&logFile, "log-file", false, "write logs to dicebattle.log in the save directory")
	return cmd
}
