// internal/config/config.go
//
// Process configuration read from the environment (after godotenv has
// loaded any .env file). Every key has a development default.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robalobadob/pairs/internal/game"
)

// Config is the resolved server configuration.
type Config struct {
	Port         string
	LogLevel     string
	ClientOrigin string
	Production   bool // NODE_ENV=production: secure cookies

	JWTSecret   string
	TokenExpiry time.Duration
	SessionTTL  time.Duration

	ResultsDSN string
	ImagesFile string

	Progression   game.Progression
	MaxTime       int
	FlipBackDelay time.Duration
	WinDelay      time.Duration
	WinLock       game.WinLock
	Welcome       bool
	CueTimeout    time.Duration
}

// DefaultResultsDSN keeps round history in process memory.
const DefaultResultsDSN = "file:pairs?mode=memory&cache=shared"

// Load reads and validates the configuration.
func Load() (*Config, error) {
	c := &Config{
		Port:         getEnv("PORT", "5175"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:   os.Getenv("NODE_ENV") == "production",
		JWTSecret:    getEnv("JWT_SECRET", "dev_secret_change_me"),
		ResultsDSN:   getEnv("RESULTS_DSN", DefaultResultsDSN),
		ImagesFile:   os.Getenv("IMAGES_FILE"),
	}

	var err error
	if c.TokenExpiry, err = envDuration("TOKEN_EXPIRES_HOURS", 12, time.Hour); err != nil {
		return nil, err
	}
	if c.SessionTTL, err = envDuration("SESSION_TTL_MINUTES", 30, time.Minute); err != nil {
		return nil, err
	}
	if c.FlipBackDelay, err = envDuration("FLIP_BACK_MS", 1000, time.Millisecond); err != nil {
		return nil, err
	}
	if c.WinDelay, err = envDuration("WIN_DELAY_MS", 1500, time.Millisecond); err != nil {
		return nil, err
	}
	if c.CueTimeout, err = envDuration("CUE_TIMEOUT_MS", 4000, time.Millisecond); err != nil {
		return nil, err
	}
	if c.MaxTime, err = envInt("MAX_TIME_SECONDS", game.DefaultMaxTime); err != nil {
		return nil, err
	}
	if c.MaxTime <= 0 {
		return nil, fmt.Errorf("MAX_TIME_SECONDS must be positive, got %d", c.MaxTime)
	}
	if c.Welcome, err = envBool("WELCOME_OVERLAY", true); err != nil {
		return nil, err
	}

	start, err := envInt("START_LEVEL", 0)
	if err != nil {
		return nil, err
	}
	final, err := envInt("FINAL_LEVEL", 0)
	if err != nil {
		return nil, err
	}
	if c.Progression, err = game.ParseProgression(getEnv("PROGRESSION", "linear"), start, final); err != nil {
		return nil, fmt.Errorf("PROGRESSION: %w", err)
	}
	if c.WinLock, err = game.ParseWinLock(getEnv("WIN_LOCK", "immediate")); err != nil {
		return nil, fmt.Errorf("WIN_LOCK: %w", err)
	}
	return c, nil
}

// GameOptions maps the configuration onto controller options.
func (c *Config) GameOptions() game.Options {
	return game.Options{
		Progression:   c.Progression,
		MaxTime:       c.MaxTime,
		TickInterval:  game.DefaultTickInterval,
		FlipBackDelay: c.FlipBackDelay,
		WinDelay:      c.WinDelay,
		WinLock:       c.WinLock,
		Welcome:       c.Welcome,
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

// envDuration reads an integer count of unit; non-positive values are rejected.
func envDuration(k string, def int, unit time.Duration) (time.Duration, error) {
	n, err := envInt(k, def)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", k, n)
	}
	return time.Duration(n) * unit, nil
}

func envBool(k string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}
