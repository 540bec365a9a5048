package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgardezi/charades.me/internal/engine"
)

// Config holds everything the server reads from the environment. A .env
// file in the working directory is honored in development; real deployments
// set the variables directly.
type Config struct {
	Addr      string
	Dev       bool
	TickEvery time.Duration
	Rules     engine.Rules
}

// Load reads the environment (and .env, if present). Unset variables fall
// back to the game's standard timings.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:      ":8080",
		Dev:       os.Getenv("CHARADES_DEV") != "",
		TickEvery: 100 * time.Millisecond,
		Rules:     engine.DefaultRules(),
	}

	if v := os.Getenv("CHARADES_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("CHARADES_ROUND_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid CHARADES_ROUND_SECONDS %q", v)
		}
		cfg.Rules.RoundSeconds = n
	}

	for _, d := range []struct {
		env string
		dst *time.Duration
	}{
		{"CHARADES_TICK_INTERVAL", &cfg.TickEvery},
		{"CHARADES_ROUND_GAP", &cfg.Rules.InterRoundGap},
		{"CHARADES_WORD_TIMEOUT", &cfg.Rules.WordTimeout},
		{"CHARADES_JOIN_GRACE", &cfg.Rules.JoinGrace},
	} {
		v := os.Getenv(d.env)
		if v == "" {
			continue
		}
		dur, err := time.ParseDuration(v)
		if err != nil || dur <= 0 {
			return Config{}, fmt.Errorf("invalid %s %q", d.env, v)
		}
		*d.dst = dur
	}

	return cfg, nil
}
