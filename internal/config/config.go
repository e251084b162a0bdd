package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for fdg
type Config struct {
	// UpgradeGlyph prefixes labels of modules that could be made strict
	UpgradeGlyph string `yaml:"upgrade_glyph" env:"FDG_UPGRADE_GLYPH"`

	// PathSeparator joins module ids when paths are printed or parsed
	PathSeparator string `yaml:"path_separator" env:"FDG_PATH_SEPARATOR"`

	// RepairJSON retries malformed graph files through a JSON repairer
	RepairJSON bool `yaml:"repair_json" env:"FDG_REPAIR_JSON"`

	// Watch reloads the graph in the viewer when its file changes
	Watch bool `yaml:"watch" env:"FDG_WATCH"`

	// DebounceMS coalesces bursts of file events
	DebounceMS int `yaml:"debounce_ms" env:"FDG_DEBOUNCE_MS"`

	// Parsed graph cache
	CacheEnabled bool   `yaml:"cache_enabled" env:"FDG_CACHE_ENABLED"`
	CacheDir     string `yaml:"cache_dir" env:"FDG_CACHE_DIR"`
	CacheSize    int    `yaml:"cache_size" env:"FDG_CACHE_SIZE"`

	// Logging
	LogLevel string `yaml:"log_level" env:"FDG_LOG_LEVEL"`
	LogJSON  bool   `yaml:"log_json" env:"FDG_LOG_JSON"`
	Verbose  bool   `yaml:"verbose" env:"FDG_VERBOSE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		UpgradeGlyph:  "⬆️ ",
		PathSeparator: ">",
		RepairJSON:    false,
		Watch:         true,
		DebounceMS:    200,
		CacheEnabled:  true,
		CacheDir:      defaultCacheDir(),
		CacheSize:     16,
		LogLevel:      "info",
		LogJSON:       false,
		Verbose:       false,
	}
}

// defaultCacheDir returns ~/.fdg/cache
func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".fdg", "cache")
	}
	return filepath.Join(home, ".fdg", "cache")
}

// GlobalConfigFilePath returns the global config file path (~/.fdg/config.yaml)
func GlobalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ProjectConfigFilePath()
	}
	return filepath.Join(home, ".fdg", "config.yaml")
}

// ProjectConfigFilePath returns the project-level config file path (./.fdg/config.yaml)
func ProjectConfigFilePath() string {
	return filepath.Join(".fdg", "config.yaml")
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables (a ./.env file fills in unset ones)
// 2. Project-level config (./.fdg/config.yaml)
// 3. Global config (~/.fdg/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range []string{GlobalConfigFilePath(), ProjectConfigFilePath()} {
		if err := mergeFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile overlays path onto cfg. A missing file is not an error.
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// loadDotEnv exports variables from path without overriding ones already set.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("FDG_UPGRADE_GLYPH"); ok {
		cfg.UpgradeGlyph = v
	}
	if v := os.Getenv("FDG_PATH_SEPARATOR"); v != "" {
		cfg.PathSeparator = v
	}
	if v := os.Getenv("FDG_REPAIR_JSON"); v != "" {
		cfg.RepairJSON = parseBool(v)
	}
	if v := os.Getenv("FDG_WATCH"); v != "" {
		cfg.Watch = parseBool(v)
	}
	if v := os.Getenv("FDG_DEBOUNCE_MS"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.DebounceMS = i
		}
	}
	if v := os.Getenv("FDG_CACHE_ENABLED"); v != "" {
		cfg.CacheEnabled = parseBool(v)
	}
	if v := os.Getenv("FDG_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("FDG_CACHE_SIZE"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.CacheSize = i
		}
	}
	if v := os.Getenv("FDG_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("FDG_LOG_JSON"); v != "" {
		cfg.LogJSON = parseBool(v)
	}
	if v := os.Getenv("FDG_VERBOSE"); v != "" {
		cfg.Verbose = parseBool(v)
	}
}

// Validate checks that the configuration has valid required fields
func (c *Config) Validate() error {
	if c.PathSeparator == "" {
		return fmt.Errorf("path_separator must not be empty")
	}
	if c.DebounceMS < 0 {
		return fmt.Errorf("debounce_ms must be non-negative")
	}
	if c.CacheEnabled && c.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive when cache is enabled")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn or error)", c.LogLevel)
	}
	return nil
}

func parseBool(s string) bool {
	return s == "true" || s == "1" || s == "yes"
}

func parseInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}
