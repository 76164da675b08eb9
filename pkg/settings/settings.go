package settings

import (
	"encoding/json"
	"fmt"
	"os"
)

// Settings are the operator preferences changed at runtime that should
// survive a restart.
type Settings struct {
	WeatherSpeed float64 `json:"weatherSpeed"`
	NewsSpeed    float64 `json:"newsSpeed"`
	QuakeSpeed   float64 `json:"quakeSpeed"`
	// RefreshPolicy overrides TICKER_REFRESH_POLICY when set
	RefreshPolicy string `json:"refreshPolicy,omitempty"`
}

var defaultSettings = Settings{
	WeatherSpeed: 180,
	NewsSpeed:    120,
	QuakeSpeed:   180,
}

// Defaults returns the settings used when no file exists
func Defaults() Settings {
	return defaultSettings
}

// Load reads the settings file at path. When the file is missing or cannot
// be parsed, defaults are returned instead so the ticker keeps running.
func Load(path string) Settings {
	f, err := os.Open(path)
	if err != nil {
		return defaultSettings
	}
	defer f.Close()

	var s Settings
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return defaultSettings
	}

	// Partially written files keep working as fields are added.
	if s.WeatherSpeed <= 0 {
		s.WeatherSpeed = defaultSettings.WeatherSpeed
	}
	if s.NewsSpeed <= 0 {
		s.NewsSpeed = defaultSettings.NewsSpeed
	}
	if s.QuakeSpeed <= 0 {
		s.QuakeSpeed = defaultSettings.QuakeSpeed
	}

	return s
}

// Save writes the settings to path, creating the file when necessary
func Save(path string, s Settings) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create settings file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return nil
}
