package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/insightdelivered/statement-parser/internal/appcontext"
	"github.com/insightdelivered/statement-parser/internal/parser"
	"github.com/insightdelivered/statement-parser/internal/registry"
)

// Environment overrides.
const (
	EnvAddr     = "STATEMENT_PARSER_ADDR"
	EnvLogLevel = "STATEMENT_PARSER_LOG_LEVEL"
	EnvRegistry = "STATEMENT_PARSER_REGISTRY"
)

// Config is the statement-parser.yaml configuration.
type Config struct {
	LogLevel     string        `yaml:"log_level"`
	RegistryPath string        `yaml:"registry_path,omitempty"`
	Server       ServerConfig  `yaml:"server"`
	Parsing      ParsingConfig `yaml:"parsing"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	BodyLimitMB int    `yaml:"body_limit_mb"`
}

// ParsingConfig tunes the extraction heuristics.
type ParsingConfig struct {
	MaxDescriptionLength  int `yaml:"max_description_length"`
	HeaderScanLines       int `yaml:"header_scan_lines"`
	ContinuationLookahead int `yaml:"continuation_lookahead"`
	PastWindowYears       int `yaml:"past_window_years"`
	FutureWindowYears     int `yaml:"future_window_years"`
}

// Default returns the built-in configuration.
func Default() *Config {
	opts := parser.DefaultOptions()
	return &Config{
		LogLevel: "info",
		Server: ServerConfig{
			Addr:        ":8080",
			BodyLimitMB: 32,
		},
		Parsing: ParsingConfig{
			MaxDescriptionLength:  opts.MaxDescriptionLength,
			HeaderScanLines:       opts.HeaderScanLines,
			ContinuationLookahead: opts.ContinuationLookahead,
			PastWindowYears:       opts.PastWindowYears,
			FutureWindowYears:     opts.FutureWindowYears,
		},
	}
}

// Load reads a config file from disk. Keys missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv(ctx context.Context) {
	logger := appcontext.LoggerFromContext(ctx)
	if v, ok := os.LookupEnv(EnvAddr); ok && v != "" {
		c.Server.Addr = v
		logger.DebugContext(ctx, "config override", "env", EnvAddr, "value", v)
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
		logger.DebugContext(ctx, "config override", "env", EnvLogLevel, "value", v)
	}
	if v, ok := os.LookupEnv(EnvRegistry); ok && v != "" {
		c.RegistryPath = v
		logger.DebugContext(ctx, "config override", "env", EnvRegistry, "value", v)
	}
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// ParserOptions maps the parsing section onto parser options.
func (c *Config) ParserOptions() parser.Options {
	return parser.Options{
		MaxDescriptionLength:  c.Parsing.MaxDescriptionLength,
		HeaderScanLines:       c.Parsing.HeaderScanLines,
		ContinuationLookahead: c.Parsing.ContinuationLookahead,
		PastWindowYears:       c.Parsing.PastWindowYears,
		FutureWindowYears:     c.Parsing.FutureWindowYears,
	}
}

// Registry returns the bank registry: the file at RegistryPath when set,
// otherwise the built-in table.
func (c *Config) Registry() (*registry.Registry, error) {
	if c.RegistryPath == "" {
		return registry.Default(), nil
	}
	f, err := os.Open(c.RegistryPath)
	if err != nil {
		return nil, fmt.Errorf("opening registry: %w", err)
	}
	defer f.Close()

	reg, err := registry.Load(f)
	if err != nil {
		return nil, fmt.Errorf("loading registry %s: %w", c.RegistryPath, err)
	}
	return reg, nil
}

// BodyLimit is the request size limit in bytes.
func (c *Config) BodyLimit() int {
	if c.Server.BodyLimitMB <= 0 {
		return 32 << 20
	}
	return c.Server.BodyLimitMB << 20
}
