// Package cli implements the dicebattle command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tatianab/dice-battle/internal/config"
	"github.com/tatianab/dice-battle/internal/engine"
	"github.com/tatianab/dice-battle/internal/models"
)

// app carries the settings shared by every subcommand.
type app struct {
	v *viper.Viper
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "dicebattle",
		Short: "A turn-based dice battle for humans and bots",
		Long: `dicebattle seats up to five players who take turns rolling a die.
Alive players strike, steal and recover; defeated players keep rolling
and bless or curse the living. The player with the most victory points wins.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "settings file (default is $HOME/.dicebattle.yaml)")
	flags.String("rules", "", "YAML file overriding the default rules")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("save-dir", ".saves", "directory for game transcripts")
	flags.Uint64("seed", 0, "dice seed; 0 picks a random one")

	for key, flag := range map[string]string{
		"rules":     "rules",
		"log_level": "log-level",
		"save_dir":  "save-dir",
		"seed":      "seed",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(
		a.newPlayCmd(),
		a.newSimulateCmd(),
		a.newHistoryCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) initConfig(cmd *cobra.Command) error {
	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			a.v.AddConfigPath(home)
		}
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(".dicebattle")
	}

	a.v.SetEnvPrefix("DICEBATTLE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read settings: %w", err)
		}
	}

	models.SaveDir = a.v.GetString("save_dir")
	return nil
}

// loadConfig resolves the rules: defaults, then the rules file, then the environment.
func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(a.v.GetString("rules"))
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	return cfg, nil
}

// resolveSeed returns the configured seed, or a fresh one when it is unset.
func (a *app) resolveSeed() (uint64, error) {
	if seed := a.v.GetUint64("seed"); seed != 0 {
		return seed, nil
	}
	return engine.NewSeed()
}

// logger writes human-readable logs to w at the configured level.
func (a *app) logger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(a.v.GetString("log_level"))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level: %w", err)
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
