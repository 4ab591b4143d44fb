package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Game   GameConfig        `toml:"game"`
	Colors map[string]string `toml:"colors"`
}

// GameConfig maps session rule overrides. Durations are in seconds.
type GameConfig struct {
	Questions    *int     `toml:"questions"`
	TimeLimit    *float64 `toml:"time-limit"`
	DwellCorrect *float64 `toml:"dwell-correct"`
	DwellWrong   *float64 `toml:"dwell-wrong"`
	PassCorrect  *int     `toml:"pass-correct"`
	PassPoints   *int     `toml:"pass-points"`
	WeakBelow    *float64 `toml:"weak-below"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
