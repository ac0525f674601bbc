package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/tatianab/dice-battle/internal/models"
	"gopkg.in/yaml.v3"
)

// Rules holds the tunable numbers of a game. Every amount the executor applies
// comes from here so balance can change without touching engine code.
type Rules struct {
	MaxRounds    int `yaml:"max_rounds" env:"MAX_ROUNDS"`
	TotalPlayers int `yaml:"total_players" env:"TOTAL_PLAYERS"`
	StartingHP   int `yaml:"starting_hp" env:"STARTING_HP"`
	MaxHP        int `yaml:"max_hp" env:"MAX_HP"`

	BackfireDamage  int `yaml:"backfire_damage" env:"BACK_FIRE_DMG"`
	RecoverHeal     int `yaml:"recover_heal" env:"RECOVER_HP"`
	PowerMoveDamage int `yaml:"power_move_damage" env:"POWER_MOVE_HP"`
	PowerMoveVP     int `yaml:"power_move_vp" env:"POWER_MOVE_VP"`
	JabDamage       int `yaml:"jab_damage" env:"JAB_DMG"`
	StrikeDamage    int `yaml:"strike_damage" env:"STRIKE_HP"`
	PickpocketVP    int `yaml:"pickpocket_vp" env:"PICK_POCKET_VP"`

	BlessHeal   int `yaml:"bless_heal" env:"BLESS_HP"`
	BlessVP     int `yaml:"bless_vp" env:"BLESS_VP"`
	CurseDamage int `yaml:"curse_damage" env:"CURSE_DMG"`
	CurseVP     int `yaml:"curse_vp" env:"CURSE_VP"`

	SurvivorBonus int `yaml:"survivor_bonus" env:"SURVIVOR_BONUS_VP"`
}

// Config holds the application configuration.
type Config struct {
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	Rules        Rules
}

// MinPlayers is the smallest roster a game can start with.
const MinPlayers = 2

// DefaultRules returns the standard rule set.
func DefaultRules() Rules {
	return Rules{
		MaxRounds:       12,
		TotalPlayers:    5,
		StartingHP:      20,
		MaxHP:           20,
		BackfireDamage:  3,
		RecoverHeal:     3,
		PowerMoveDamage: 6,
		PowerMoveVP:     3,
		JabDamage:       2,
		StrikeDamage:    4,
		PickpocketVP:    1,
		BlessHeal:       2,
		BlessVP:         1,
		CurseDamage:     2,
		CurseVP:         1,
		SurvivorBonus:   1,
	}
}

// LoadConfig builds the configuration from the defaults, an optional YAML
// rules file and then the environment, which wins.
func LoadConfig(rulesPath string) (*Config, error) {
	cfg := &Config{Rules: DefaultRules()}

	if rulesPath != "" {
		rules, err := LoadRulesFile(rulesPath, cfg.Rules)
		if err != nil {
			return nil, err
		}
		cfg.Rules = rules
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Rules.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadRulesFile overlays the YAML file at path onto base. Keys missing from the
// file keep their base value.
func LoadRulesFile(path string, base Rules) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}
	rules := base
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	return rules, nil
}

type amount struct {
	name  string
	value int
}

// Validate checks that every amount can be applied by the player primitives.
func (r Rules) Validate() error {
	if r.MaxRounds < 1 {
		return fmt.Errorf("max_rounds must be at least 1, got %d", r.MaxRounds)
	}
	if r.TotalPlayers < MinPlayers {
		return fmt.Errorf("total_players must be at least %d, got %d", MinPlayers, r.TotalPlayers)
	}
	if r.MaxHP < 1 || r.MaxHP > models.MaxHealAmount {
		return fmt.Errorf("max_hp must be in [1,%d], got %d", models.MaxHealAmount, r.MaxHP)
	}
	if r.StartingHP < 1 || r.StartingHP > r.MaxHP {
		return fmt.Errorf("starting_hp must be in [1,%d], got %d", r.MaxHP, r.StartingHP)
	}

	hp := []amount{
		{"backfire_damage", r.BackfireDamage},
		{"recover_heal", r.RecoverHeal},
		{"power_move_damage", r.PowerMoveDamage},
		{"jab_damage", r.JabDamage},
		{"strike_damage", r.StrikeDamage},
		{"bless_heal", r.BlessHeal},
		{"curse_damage", r.CurseDamage},
	}
	for _, a := range hp {
		if a.value < 1 || a.value > models.MaxHealAmount {
			return fmt.Errorf("%s must be in [1,%d], got %d", a.name, models.MaxHealAmount, a.value)
		}
	}

	vp := []amount{
		{"power_move_vp", r.PowerMoveVP},
		{"pickpocket_vp", r.PickpocketVP},
		{"bless_vp", r.BlessVP},
		{"curse_vp", r.CurseVP},
		{"survivor_bonus", r.SurvivorBonus},
	}
	for _, a := range vp {
		if a.value < models.MinVPDelta || a.value > models.MaxVPDelta {
			return fmt.Errorf("%s must be in [%d,%d], got %d", a.name, models.MinVPDelta, models.MaxVPDelta, a.value)
		}
	}

	return nil
}
