// Package config loads TableScout configuration: a YAML document layered
// over built-in defaults, with environment variables overriding credentials
// and endpoints. Decoding is strict, so a misspelled key fails loudly
// instead of silently falling back to a default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration document.
type Config struct {
	// Location is the city/region passed to every source search.
	Location string `yaml:"location"`
	// QualityFloor is the minimum overall score a scored candidate needs
	// to be proposed. Zero keeps everything.
	QualityFloor float64 `yaml:"quality_floor"`
	// DataDir holds sessions, the default CSV list, and the cache.
	DataDir string `yaml:"data_dir"`
	// PromptsDir is the prompt document repository.
	PromptsDir string `yaml:"prompts_dir"`

	Store  StoreConfig    `yaml:"store"`
	List   ListConfig     `yaml:"list"`
	Cache  CacheConfig    `yaml:"cache"`
	OpenAI OpenAIConfig   `yaml:"openai"`
	Tavily TavilyConfig   `yaml:"tavily"`
	Source []SourceConfig `yaml:"sources"`
}

// StoreConfig selects the run store backend and its persistence middleware.
type StoreConfig struct {
	// Kind is one of "file", "redis", "memory".
	Kind string `yaml:"kind"`
	// Redis is the address for the redis kind, host:port.
	Redis string `yaml:"redis"`
	// SealKeyFile points to a 32-byte key; when set, run snapshots are
	// encrypted at rest.
	SealKeyFile string `yaml:"seal_key_file"`
	// MaskPatterns are regular expressions whose matches are scrubbed from
	// stored free-text fields (utterance, proposal, result, error detail).
	MaskPatterns []string `yaml:"mask_patterns"`
}

// ListConfig selects the curated list backend.
type ListConfig struct {
	// Kind is one of "csv", "sheets", "memory".
	Kind string `yaml:"kind"`
	// Path locates the CSV list, relative paths under DataDir.
	Path string `yaml:"path"`
	// SpreadsheetID, SheetName and the OAuth files configure the sheets
	// kind.
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	SheetName       string `yaml:"sheet_name"`
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
}

// CacheConfig tunes the collaborator response cache.
type CacheConfig struct {
	// Dir overrides the cache location; empty means DataDir/cache.
	Dir      string `yaml:"dir"`
	Disabled bool   `yaml:"disabled"`
	TTLHours int    `yaml:"ttl_hours"`
}

// OpenAIConfig configures the evaluator collaborator.
type OpenAIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// TavilyConfig configures the web-search collaborator.
type TavilyConfig struct {
	APIKey     string `yaml:"api_key"`
	MaxResults int    `yaml:"max_results"`
	Depth      string `yaml:"search_depth"`
}

// SourceConfig declares one discovery source. The backing adapter follows
// from which fields are set: a command spawns an external scraper, feeds
// poll RSS, anything else searches the web with the tailored queries.
type SourceConfig struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Domain  string   `yaml:"domain"`
	Queries []string `yaml:"queries"`
	Feeds   []string `yaml:"feeds"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// Source adapter kinds, as derived by SourceConfig.Kind.
const (
	KindTavily  = "tavily"
	KindRSS     = "rss"
	KindProcess = "process"
)

// Kind reports which adapter serves this source.
func (s SourceConfig) Kind() string {
	switch {
	case s.Command != "":
		return KindProcess
	case len(s.Feeds) > 0:
		return KindRSS
	default:
		return KindTavily
	}
}

// Default returns the built-in configuration: the five editorial sources
// for Washington DC, a file run store, and a local CSV list.
func Default() *Config {
	return &Config{
		Location:     "Washington DC",
		QualityFloor: 2.0,
		DataDir:      ".tablescout",
		PromptsDir:   "prompts",
		Store:        StoreConfig{Kind: "file"},
		List: ListConfig{
			Kind:            "csv",
			Path:            "list.csv",
			SheetName:       "Date Night Restaurant List",
			CredentialsFile: "credentials.json",
			TokenFile:       "token.json",
		},
		Cache:  CacheConfig{TTLHours: 24},
		OpenAI: OpenAIConfig{Model: "gpt-4o-mini"},
		Tavily: TavilyConfig{MaxResults: 5, Depth: "basic"},
		Source: DefaultSources(),
	}
}

// DefaultSources returns the editorial sources discovery walks when no
// sources are configured.
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{
			ID:     "eater-dc",
			Name:   "Eater DC",
			Domain: "eater.com",
			Queries: []string{
				"Eater DC best restaurants Washington DC",
				"Eater DC essential restaurants 38",
			},
		},
		{
			ID:     "michelin-guide",
			Name:   "Michelin Guide",
			Domain: "guide.michelin.com",
			Queries: []string{
				"Michelin Guide starred restaurants Washington DC",
			},
		},
		{
			ID:     "washington-post",
			Name:   "Washington Post Food",
			Domain: "washingtonpost.com",
			Queries: []string{
				"Washington Post Tom Sietsema best restaurants Washington DC",
			},
		},
		{
			ID:     "washingtonian",
			Name:   "Washingtonian Magazine",
			Domain: "washingtonian.com",
			Queries: []string{
				"Washingtonian 100 very best restaurants",
			},
		},
		{
			ID:     "infatuation",
			Name:   "The Infatuation",
			Domain: "theinfatuation.com",
			Queries: []string{
				"The Infatuation best restaurants Washington DC",
			},
		},
	}
}

// Load builds the effective configuration: defaults, then the file at path
// (skipped when path is empty), then environment overrides, validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse layers a YAML document over the defaults without touching the
// environment or validating, for callers that do those steps themselves.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return err
	}
	return nil
}

// ApplyEnv overlays environment variables onto the configuration. The
// lookup parameter is os.LookupEnv in production.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	set := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v, ok := lookup(key); ok && v != "" {
				*dst = v
				return
			}
		}
	}

	set(&c.Tavily.APIKey, "TAVILY_API_KEY")
	set(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	set(&c.OpenAI.Model, "OPENAI_MODEL")
	set(&c.Location, "LOCATION_CITY")
	set(&c.Store.Redis, "TABLESCOUT_REDIS")
	set(&c.Store.SealKeyFile, "TABLESCOUT_SEAL_KEY_FILE")
	set(&c.List.SpreadsheetID, "TABLESCOUT_SHEET_ID", "GOOGLE_SHEETS_SPREADSHEET_ID")
	set(&c.List.SheetName, "GOOGLE_SHEETS_SHEET_NAME")
	set(&c.List.CredentialsFile, "GOOGLE_SHEETS_CREDENTIALS_FILE")
	set(&c.List.TokenFile, "GOOGLE_SHEETS_TOKEN_FILE")

	if v, ok := lookup("DISABLE_CACHE"); ok {
		c.Cache.Disabled = strings.EqualFold(strings.TrimSpace(v), "true")
	}
	if v, ok := lookup("CACHE_TTL_HOURS"); ok && v != "" {
		hours, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("CACHE_TTL_HOURS: %w", err)
		}
		c.Cache.TTLHours = hours
	}
	return nil
}

// Validate checks the configuration and reports every problem at once,
// each prefixed with the field path that caused it.
func (c *Config) Validate() error {
	var errs []error
	bad := func(path, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%s: %s", path, fmt.Sprintf(format, args...)))
	}

	if strings.TrimSpace(c.Location) == "" {
		bad("location", "required")
	}
	if c.QualityFloor < 0 || c.QualityFloor > 5 {
		bad("quality_floor", "must be between 0 and 5, got %v", c.QualityFloor)
	}

	switch c.Store.Kind {
	case "file", "memory":
	case "redis":
		if c.Store.Redis == "" {
			bad("store.redis", "required for the redis store")
		}
	default:
		bad("store.kind", "unknown kind %q (want file, redis, or memory)", c.Store.Kind)
	}
	for i, p := range c.Store.MaskPatterns {
		if _, err := regexp.Compile(p); err != nil {
			bad(fmt.Sprintf("store.mask_patterns[%d]", i), "invalid pattern: %v", err)
		}
	}

	switch c.List.Kind {
	case "csv":
		if c.List.Path == "" {
			bad("list.path", "required for the csv list")
		}
	case "memory":
	case "sheets":
		if c.List.SpreadsheetID == "" {
			bad("list.spreadsheet_id", "required for the sheets list (or set TABLESCOUT_SHEET_ID)")
		}
	default:
		bad("list.kind", "unknown kind %q (want csv, sheets, or memory)", c.List.Kind)
	}

	if c.Cache.TTLHours < 0 {
		bad("cache.ttl_hours", "must not be negative, got %d", c.Cache.TTLHours)
	}
	if strings.TrimSpace(c.OpenAI.Model) == "" {
		bad("openai.model", "required")
	}
	if c.Tavily.MaxResults <= 0 {
		bad("tavily.max_results", "must be positive, got %d", c.Tavily.MaxResults)
	}
	if c.Tavily.Depth != "basic" && c.Tavily.Depth != "advanced" {
		bad("tavily.search_depth", "must be basic or advanced, got %q", c.Tavily.Depth)
	}

	if len(c.Source) == 0 {
		bad("sources", "at least one source is required")
	}
	seen := make(map[string]bool, len(c.Source))
	for i, src := range c.Source {
		path := fmt.Sprintf("sources[%d]", i)
		id := strings.TrimSpace(src.ID)
		if id == "" {
			bad(path+".id", "required")
			continue
		}
		if seen[id] {
			bad(path+".id", "duplicate source id %q", id)
		}
		seen[id] = true
		if src.Command != "" && len(src.Feeds) > 0 {
			bad(path, "command and feeds are mutually exclusive")
		}
	}

	return errors.Join(errs...)
}
