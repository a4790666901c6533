package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// GameConfig carries the table parameters applied to every new match.
type GameConfig struct {
	WinThreshold int `json:"win_threshold"`
	MinPlayers   int `json:"min_players"`
	MaxPlayers   int `json:"max_players"`
	// TurnSeconds is advisory; clients drive their own countdown from it.
	TurnSeconds           int `json:"turn_seconds"`
	NextRoundDelaySeconds int `json:"next_round_delay_seconds"`
}

// DefaultGameConfig returns the compiled-in table parameters.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		WinThreshold:          200,
		MinPlayers:            3,
		MaxPlayers:            6,
		TurnSeconds:           15,
		NextRoundDelaySeconds: 5,
	}
}

// NextRoundDelay returns the configured inter-round pause as a duration.
func (c GameConfig) NextRoundDelay() time.Duration {
	return time.Duration(c.NextRoundDelaySeconds) * time.Second
}

// EnvKeys are the environment variables recognized as configuration
// overrides, in a local .env file or the Nakama runtime environment.
var EnvKeys = []string{
	"FLIP7_WIN_THRESHOLD",
	"FLIP7_MIN_PLAYERS",
	"FLIP7_MAX_PLAYERS",
	"FLIP7_TURN_SECONDS",
	"FLIP7_NEXT_ROUND_DELAY_SEC",
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path once per
// process. A local .env file, if present, is folded into the process
// environment first so FromOSEnv picks up development overrides.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		_ = godotenv.Load()

		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c, err := ParseGameConfig(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, or nil when no load
// has succeeded. Callers fall back to DefaultGameConfig.
func GetGameConfig() *GameConfig {
	return cfg
}

// ParseGameConfig decodes JSON over the defaults, so keys absent from the
// payload keep their default values.
func ParseGameConfig(data []byte) (GameConfig, error) {
	c := DefaultGameConfig()
	if err := json.Unmarshal(data, &c); err != nil {
		return GameConfig{}, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	return c, nil
}

// FromOSEnv collects the recognized override keys from the process
// environment.
func FromOSEnv() map[string]string {
	env := make(map[string]string)
	for _, key := range EnvKeys {
		if val := os.Getenv(key); val != "" {
			env[key] = val
		}
	}
	return env
}

// ApplyEnv overlays overrides from the given environment map. Values that do
// not parse as positive integers are ignored.
func (c GameConfig) ApplyEnv(env map[string]string) GameConfig {
	if val, ok := env["FLIP7_WIN_THRESHOLD"]; ok {
		if i, err := strconv.Atoi(val); err == nil && i > 0 {
			c.WinThreshold = i
		}
	}
	if val, ok := env["FLIP7_MIN_PLAYERS"]; ok {
		if i, err := strconv.Atoi(val); err == nil && i > 0 {
			c.MinPlayers = i
		}
	}
	if val, ok := env["FLIP7_MAX_PLAYERS"]; ok {
		if i, err := strconv.Atoi(val); err == nil && i > 0 {
			c.MaxPlayers = i
		}
	}
	if val, ok := env["FLIP7_TURN_SECONDS"]; ok {
		if i, err := strconv.Atoi(val); err == nil && i > 0 {
			c.TurnSeconds = i
		}
	}
	if val, ok := env["FLIP7_NEXT_ROUND_DELAY_SEC"]; ok {
		if i, err := strconv.Atoi(val); err == nil && i > 0 {
			c.NextRoundDelaySeconds = i
		}
	}
	return c
}
