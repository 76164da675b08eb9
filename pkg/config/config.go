package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"ticker-frame/pkg/ticker"
)

// Config holds the application configuration
type Config struct {
	WindowWidth  int
	WindowHeight int
	Fullscreen   bool
	FontPath     string
	FontSize     int

	FrameRate      float64
	FadeLeft       float64
	Dwell          time.Duration
	FadeTransition time.Duration
	FadeDelay      time.Duration
	RefreshPolicy  ticker.Policy

	RefreshInterval time.Duration
	HTTPTimeout     time.Duration
	HostInterval    time.Duration
	QuakeMaxAge     time.Duration
	Location        *time.Location

	SettingsPath  string
	SourcesPath   string
	SourcesBucket string
	SourcesKey    string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Fullscreen:    getEnvBool("TICKER_FULLSCREEN", false),
		FontPath:      getEnv("TICKER_FONT", ""),
		SettingsPath:  getEnv("TICKER_SETTINGS", "settings.json"),
		SourcesPath:   getEnv("TICKER_SOURCES_FILE", ""),
		SourcesBucket: getEnv("TICKER_SOURCES_BUCKET", ""),
		SourcesKey:    getEnv("TICKER_SOURCES_KEY", "ticker/sources.json"),
	}

	var err error
	if cfg.WindowWidth, err = getEnvInt("TICKER_WIDTH", 1280); err != nil {
		return nil, err
	}
	if cfg.WindowHeight, err = getEnvInt("TICKER_HEIGHT", 96); err != nil {
		return nil, err
	}
	if cfg.FontSize, err = getEnvInt("TICKER_FONT_SIZE", 36); err != nil {
		return nil, err
	}
	if cfg.FrameRate, err = getEnvFloat("TICKER_FPS", 60); err != nil {
		return nil, err
	}
	if cfg.FadeLeft, err = getEnvFloat("TICKER_FADE_LEFT", 10); err != nil {
		return nil, err
	}
	if cfg.Dwell, err = getEnvDuration("TICKER_FADE_DWELL", 800*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.FadeTransition, err = getEnvDuration("TICKER_FADE_TRANSITION", time.Second); err != nil {
		return nil, err
	}
	if cfg.FadeDelay, err = getEnvDuration("TICKER_FADE_DELAY", 1500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getEnvDuration("TICKER_REFRESH_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getEnvDuration("TICKER_HTTP_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HostInterval, err = getEnvDuration("TICKER_HOST_INTERVAL", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.QuakeMaxAge, err = getEnvDuration("TICKER_QUAKE_MAX_AGE", 0); err != nil {
		return nil, err
	}

	if cfg.RefreshPolicy, err = ticker.ParsePolicy(getEnv("TICKER_REFRESH_POLICY", "continue")); err != nil {
		return nil, fmt.Errorf("invalid TICKER_REFRESH_POLICY: %w", err)
	}

	if cfg.WindowWidth <= 0 || cfg.WindowHeight <= 0 {
		return nil, fmt.Errorf("invalid window size %dx%d", cfg.WindowWidth, cfg.WindowHeight)
	}
	if cfg.FrameRate <= 0 {
		return nil, fmt.Errorf("invalid TICKER_FPS: must be positive")
	}
	for key, d := range map[string]time.Duration{
		"TICKER_FADE_DWELL":       cfg.Dwell,
		"TICKER_FADE_TRANSITION":  cfg.FadeTransition,
		"TICKER_HOST_INTERVAL":    cfg.HostInterval,
		"TICKER_QUAKE_MAX_AGE":    cfg.QuakeMaxAge,
		"TICKER_HTTP_TIMEOUT":     cfg.HTTPTimeout,
		"TICKER_REFRESH_INTERVAL": cfg.RefreshInterval,
	} {
		if d < 0 {
			return nil, fmt.Errorf("invalid %s: %v is negative", key, d)
		}
	}
	if cfg.RefreshInterval == 0 {
		return nil, fmt.Errorf("invalid TICKER_REFRESH_INTERVAL: must be positive")
	}
	if cfg.FadeDelay < cfg.FadeTransition {
		return nil, fmt.Errorf("invalid TICKER_FADE_DELAY: %v is shorter than the %v transition", cfg.FadeDelay, cfg.FadeTransition)
	}

	cfg.Location = loadLocation(getEnv("TICKER_TZ", "Asia/Tokyo"))

	return cfg, nil
}

// Presentation returns the scheduler timings
func (c *Config) Presentation() ticker.Config {
	return ticker.Config{
		FrameRate:      c.FrameRate,
		FadeLeft:       c.FadeLeft,
		Dwell:          c.Dwell,
		FadeTransition: c.FadeTransition,
		FadeDelay:      c.FadeDelay,
		Policy:         c.RefreshPolicy,
	}
}

// FrameBudget is the target duration of one rendered frame
func (c *Config) FrameBudget() time.Duration {
	return time.Duration(float64(time.Second) / c.FrameRate)
}

// quake timestamps are JST; fall back to a fixed zone when tzdata is missing
func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return i, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
