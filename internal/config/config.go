// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/coursegrid/internal/dateutil"
)

// Config holds the application configuration.
type Config struct {
	Catalog CatalogConfig     `toml:"catalog"`
	Storage StorageConfig     `toml:"storage"`
	Backend BackendConfig     `toml:"backend"`
	Server  ServerConfig      `toml:"server"`
	Log     LogConfig         `toml:"log"`
	UI      UIConfig          `toml:"ui"`
	Periods map[string]string `toml:"periods"` // period tag -> "HH:MM-HH:MM"
	Export  ExportConfig      `toml:"export"`
}

// CatalogConfig says where the course list comes from.
type CatalogConfig struct {
	Source    string `toml:"source"`     // file path or http(s) URL
	DetailURL string `toml:"detail_url"` // syllabus page template
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// BackendConfig points at the course data service.
type BackendConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"` // e.g. "10s"
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr                string `toml:"addr"`
	UpdateRatePerMinute int    `toml:"update_rate_per_minute"`
	CacheTTL            string `toml:"cache_ttl"` // e.g. "10m"
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // json or console
	File   string `toml:"file"`   // empty for stderr
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "mocha", "macchiato", "frappe", "latte"
}

// ExportConfig holds calendar export settings.
type ExportConfig struct {
	TermStart string `toml:"term_start"` // YYYY-MM-DD, first day of the term
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Source:    "courses.json",
			DetailURL: "",
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:5000",
			Timeout: "10s",
		},
		Server: ServerConfig{
			Addr:                ":8080",
			UpdateRatePerMinute: 10,
			CacheTTL:            "10m",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		UI: UIConfig{
			Theme: "frappe",
		},
		Periods: DefaultPeriods(),
	}
}

// DefaultPeriods returns the standard period clock.
func DefaultPeriods() map[string]string {
	return map[string]string{
		"A": "07:10-08:00", "1": "08:10-09:00", "2": "09:10-10:00", "3": "10:10-11:00",
		"4": "11:10-12:00", "B": "12:10-13:00", "5": "13:10-14:00", "6": "14:10-15:00",
		"7": "15:10-16:00", "8": "16:10-17:00", "C": "17:10-18:00", "9": "18:30-19:15",
		"10": "19:20-20:05", "11": "20:10-20:55", "12": "21:00-21:45", "D": "21:50-22:35",
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "coursegrid.db"
	}
	return filepath.Join(home, ".local", "share", "coursegrid", "coursegrid.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "coursegrid", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Log.File = expandPath(cfg.Log.File)
	if !isURL(cfg.Catalog.Source) {
		cfg.Catalog.Source = expandPath(cfg.Catalog.Source)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("COURSEGRID_CATALOG_SOURCE"); v != "" {
		cfg.Catalog.Source = v
	}
	if v := os.Getenv("COURSEGRID_DETAIL_URL"); v != "" {
		cfg.Catalog.DetailURL = v
	}

	if v := os.Getenv("COURSEGRID_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}

	if v := os.Getenv("COURSEGRID_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("COURSEGRID_BACKEND_TIMEOUT"); v != "" {
		cfg.Backend.Timeout = v
	}

	if v := os.Getenv("COURSEGRID_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("COURSEGRID_UPDATE_RATE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.UpdateRatePerMinute = n
		}
	}
	if v := os.Getenv("COURSEGRID_CACHE_TTL"); v != "" {
		cfg.Server.CacheTTL = v
	}

	if v := os.Getenv("COURSEGRID_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("COURSEGRID_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("COURSEGRID_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}

	if v := os.Getenv("COURSEGRID_UI_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	if v := os.Getenv("COURSEGRID_TERM_START"); v != "" {
		cfg.Export.TermStart = v
	}
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Catalog.Source == "" {
		return errors.New("catalog source must be set")
	}
	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	if c.Backend.BaseURL != "" {
		u, err := url.Parse(c.Backend.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid backend base_url %q", c.Backend.BaseURL)
		}
	}
	if err := validateDuration(c.Backend.Timeout, "backend timeout"); err != nil {
		return err
	}
	if err := validateDuration(c.Server.CacheTTL, "cache_ttl"); err != nil {
		return err
	}
	if c.Server.UpdateRatePerMinute < 0 {
		return errors.New("update_rate_per_minute must not be negative")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	for tag, span := range c.Periods {
		if _, _, err := ParseSpan(span); err != nil {
			return fmt.Errorf("period %s: %w", tag, err)
		}
	}
	if c.Export.TermStart != "" {
		if _, err := dateutil.ParseDate(c.Export.TermStart, time.UTC); err != nil {
			return fmt.Errorf("term_start must be YYYY-MM-DD, got %q", c.Export.TermStart)
		}
	}
	return nil
}

func validateDuration(s, field string) error {
	if s == "" {
		return nil
	}
	if _, err := time.ParseDuration(s); err != nil {
		return fmt.Errorf("%s must be a duration, got %q", field, s)
	}
	return nil
}

// ParseSpan splits "HH:MM-HH:MM" into start and end offsets from midnight.
func ParseSpan(span string) (start, end time.Duration, err error) {
	from, to, ok := strings.Cut(span, "-")
	if !ok {
		return 0, 0, fmt.Errorf("span must be HH:MM-HH:MM, got %q", span)
	}
	if start, err = parseClock(from); err != nil {
		return 0, 0, err
	}
	if end, err = parseClock(to); err != nil {
		return 0, 0, err
	}
	if start >= end {
		return 0, 0, fmt.Errorf("span %q ends before it starts", span)
	}
	return start, end, nil
}

// parseClock checks a time string is in HH:MM format and converts it.
func parseClock(t string) (time.Duration, error) {
	t = strings.TrimSpace(t)
	if len(t) != 5 || t[2] != ':' || !isDigits(t[0:2]) || !isDigits(t[3:5]) {
		return 0, fmt.Errorf("time must be in HH:MM format, got %q", t)
	}
	h, _ := strconv.Atoi(t[0:2])
	m, _ := strconv.Atoi(t[3:5])
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("time out of range: %q", t)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// BackendTimeout returns the parsed backend timeout, defaulting to 10s.
func (c *Config) BackendTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Backend.Timeout); err == nil && d > 0 {
		return d
	}
	return 10 * time.Second
}

// CacheTTL returns the parsed seat cache TTL, defaulting to 10m.
func (c *Config) CacheTTL() time.Duration {
	if d, err := time.ParseDuration(c.Server.CacheTTL); err == nil && d > 0 {
		return d
	}
	return 10 * time.Minute
}

// TermStart returns the parsed term start date and whether one is set.
func (c *Config) TermStart() (time.Time, bool) {
	if c.Export.TermStart == "" {
		return time.Time{}, false
	}
	t, err := dateutil.ParseDate(c.Export.TermStart, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
