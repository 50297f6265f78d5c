package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"author_highlighter/internal/authorship"

	"gopkg.in/yaml.v2"
)

var ErrNoProfile = errors.New("no profile url configured")

// ProfileConfig names the profile to classify. Name, when set, overrides
// the owner name shown on the page.
type ProfileConfig struct {
	URL      string `yaml:"url"`
	Name     string `yaml:"name"`
	PageSize int    `yaml:"page_size"`
	MaxPages int    `yaml:"max_pages"`
}

type FetchConfig struct {
	Backend         string `yaml:"backend"`
	UserAgent       string `yaml:"user_agent"`
	TimeoutSec      int    `yaml:"timeout_sec"`
	MaxRedirects    int    `yaml:"max_redirects"`
	RespectRobots   bool   `yaml:"respect_robots"`
	RandomUserAgent bool   `yaml:"random_user_agent"`
}

type ThrottleConfig struct {
	SpacingMS  int `yaml:"spacing_ms"`
	BatchLimit int `yaml:"batch_limit"`
	CooldownMS int `yaml:"cooldown_ms"`
}

type CacheConfig struct {
	Backend    string `yaml:"backend"`
	TTLMinutes int    `yaml:"ttl_minutes"`
	KeyPrefix  string `yaml:"key_prefix"`
}

type DBConfig struct {
	Connection  string `yaml:"connection"`
	Database    string `yaml:"database"`
	Collections struct {
		AuthorCache string `yaml:"author_cache"`
		Roles       string `yaml:"roles"`
	} `yaml:"collections"`
}

type PostgresConfig struct {
	URL string `yaml:"url"`
}

type ParserConfig struct {
	Labels []string `yaml:"labels"`
}

type ReportConfig struct {
	Backends        []string `yaml:"backends"`
	OnlyHighlighted bool     `yaml:"only_highlighted"`
}

type Config struct {
	Profile  ProfileConfig      `yaml:"profile"`
	Fetch    FetchConfig        `yaml:"fetch"`
	Throttle ThrottleConfig     `yaml:"throttle"`
	Cache    CacheConfig        `yaml:"cache"`
	DB       DBConfig           `yaml:"db"`
	Postgres PostgresConfig     `yaml:"postgres"`
	Parser   ParserConfig       `yaml:"parser"`
	Filters  *authorship.Filter `yaml:"filters"`
	Report   ReportConfig       `yaml:"report"`
}

// LoadConfig reads a YAML file, applies environment overrides and fills
// defaults. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.Profile.URL = getenv("HIGHLIGHTER_PROFILE_URL", c.Profile.URL)
	c.DB.Connection = getenv("HIGHLIGHTER_MONGO_URI", c.DB.Connection)
	c.Postgres.URL = getenv("HIGHLIGHTER_POSTGRES_URL", c.Postgres.URL)
	c.Cache.Backend = getenv("HIGHLIGHTER_CACHE_BACKEND", c.Cache.Backend)
}

func (c *Config) applyDefaults() {
	if c.Profile.PageSize <= 0 {
		c.Profile.PageSize = 100
	}
	if c.Profile.MaxPages <= 0 {
		c.Profile.MaxPages = 10
	}

	c.Fetch.Backend = strings.ToLower(strings.TrimSpace(c.Fetch.Backend))
	if c.Fetch.Backend == "" {
		c.Fetch.Backend = "http"
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	}
	if c.Fetch.TimeoutSec <= 0 {
		c.Fetch.TimeoutSec = 30
	}
	if c.Fetch.MaxRedirects <= 0 {
		c.Fetch.MaxRedirects = 15
	}

	if c.Throttle.SpacingMS <= 0 {
		c.Throttle.SpacingMS = 100
	}
	if c.Throttle.BatchLimit <= 0 {
		c.Throttle.BatchLimit = 10
	}
	if c.Throttle.CooldownMS <= 0 {
		c.Throttle.CooldownMS = 1000
	}

	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.TTLMinutes <= 0 {
		c.Cache.TTLMinutes = 30
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "authorHighlighterAuthors:"
	}

	if c.DB.Database == "" {
		c.DB.Database = "author_highlighter"
	}
	if c.DB.Collections.AuthorCache == "" {
		c.DB.Collections.AuthorCache = "author_cache"
	}
	if c.DB.Collections.Roles == "" {
		c.DB.Collections.Roles = "roles"
	}

	if c.Filters == nil {
		all := authorship.AllRoles()
		c.Filters = &all
	}
	if len(c.Report.Backends) == 0 {
		c.Report.Backends = []string{"log"}
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Profile.URL) == "" {
		return ErrNoProfile
	}
	switch c.Fetch.Backend {
	case "http", "colly":
	default:
		return fmt.Errorf("unsupported fetch backend: %s", c.Fetch.Backend)
	}
	switch c.Cache.Backend {
	case "memory", "mongo", "postgres":
	default:
		return fmt.Errorf("unsupported cache backend: %s", c.Cache.Backend)
	}
	return nil
}

func (c *Config) UsesMongo() bool {
	if c.Cache.Backend == "mongo" {
		return true
	}
	for _, b := range c.Report.Backends {
		if strings.EqualFold(b, "mongo") {
			return true
		}
	}
	return false
}

func (t ThrottleConfig) Spacing() time.Duration {
	return time.Duration(t.SpacingMS) * time.Millisecond
}

func (t ThrottleConfig) Cooldown() time.Duration {
	return time.Duration(t.CooldownMS) * time.Millisecond
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSec) * time.Second
}

func getenv(k, fallback string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return fallback
	}
	return v
}
