package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
)

// GameConfig holds the tunable room defaults loaded from the data folder.
// Environment variables (see FromEnv) override individual fields at match
// init so operators can retune without repacking the data file.
type GameConfig struct {
	DefaultOvers   int `json:"default_overs"`
	DefaultWickets int `json:"default_wickets"`
	MaxOvers       int `json:"max_overs"`
	MaxWickets     int `json:"max_wickets"`
	MaxPlayers     int `json:"max_players"`

	BallTimeoutSeconds    int `json:"ball_timeout_seconds"`
	CaptainTimeoutSeconds int `json:"captain_timeout_seconds"`
	MaxStrikes            int `json:"max_strikes"`
	CountdownSeconds      int `json:"countdown_seconds"`

	// LearningDBPath locates the CPU pattern database.
	LearningDBPath string `json:"learning_db_path"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration with defaults filled in.
func GetGameConfig() GameConfig {
	c := GameConfig{
		DefaultOvers:          2,
		DefaultWickets:        2,
		MaxOvers:              20,
		MaxWickets:            10,
		MaxPlayers:            10,
		BallTimeoutSeconds:    10,
		CaptainTimeoutSeconds: 5,
		MaxStrikes:            3,
		CountdownSeconds:      5,
		LearningDBPath:        "data/cpu_learning.db",
	}
	if cfg != nil {
		merge(&c, cfg)
	}
	return c
}

// FromEnv applies environment overrides on top of the loaded config.
func FromEnv(env map[string]string) GameConfig {
	c := GetGameConfig()
	setInt(env, "handcricket_default_overs", &c.DefaultOvers)
	setInt(env, "handcricket_default_wickets", &c.DefaultWickets)
	setInt(env, "handcricket_ball_timeout_sec", &c.BallTimeoutSeconds)
	setInt(env, "handcricket_captain_timeout_sec", &c.CaptainTimeoutSeconds)
	setInt(env, "handcricket_max_strikes", &c.MaxStrikes)
	setInt(env, "handcricket_countdown_sec", &c.CountdownSeconds)
	if v, ok := env["handcricket_learning_db"]; ok && v != "" {
		c.LearningDBPath = v
	}
	return c
}

func merge(dst, src *GameConfig) {
	if src.DefaultOvers > 0 {
		dst.DefaultOvers = src.DefaultOvers
	}
	if src.DefaultWickets > 0 {
		dst.DefaultWickets = src.DefaultWickets
	}
	if src.MaxOvers > 0 {
		dst.MaxOvers = src.MaxOvers
	}
	if src.MaxWickets > 0 {
		dst.MaxWickets = src.MaxWickets
	}
	if src.MaxPlayers > 0 {
		dst.MaxPlayers = src.MaxPlayers
	}
	if src.BallTimeoutSeconds > 0 {
		dst.BallTimeoutSeconds = src.BallTimeoutSeconds
	}
	if src.CaptainTimeoutSeconds > 0 {
		dst.CaptainTimeoutSeconds = src.CaptainTimeoutSeconds
	}
	if src.MaxStrikes > 0 {
		dst.MaxStrikes = src.MaxStrikes
	}
	if src.CountdownSeconds > 0 {
		dst.CountdownSeconds = src.CountdownSeconds
	}
	if src.LearningDBPath != "" {
		dst.LearningDBPath = src.LearningDBPath
	}
}

func setInt(env map[string]string, key string, dst *int) {
	if v, ok := env[key]; ok {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			*dst = i
		}
	}
}
