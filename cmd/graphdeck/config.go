package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rmax-ai/graphdeck/pkg/client"
	"github.com/spf13/pflag"
)

const (
	defaultConfigFile = "graphdeck.hcl"
	defaultLocale     = "en"
	defaultLogLevel   = "info"
	defaultLogFile    = "graphdeck.log"
)

type Config struct {
	Endpoint    string
	BaseDir     string
	Locale      string
	JournalPath string
	RedisAddr   string
	MetricsAddr string
	LogLevel    string
	LogFile     string
}

// hclConfigFile is the shape of graphdeck.hcl.
type hclConfigFile struct {
	Endpoint string        `hcl:"endpoint,optional"`
	BaseDir  string        `hcl:"base_dir,optional"`
	Locale   string        `hcl:"locale,optional"`
	Journal  string        `hcl:"journal,optional"`
	Log      *hclLogBlock  `hcl:"log,block"`
	Redis    *hclAddrBlock `hcl:"redis,block"`
	Metrics  *hclAddrBlock `hcl:"metrics,block"`
}

type hclLogBlock struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

type hclAddrBlock struct {
	Addr string `hcl:"addr"`
}

// LoadConfig layers defaults, the HCL config file, GRAPHDECK_* env vars and
// explicitly set flags, in that order.
func LoadConfig(flags *pflag.FlagSet) (Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("failed to get cwd: %w", err)
	}

	cfg := Config{
		Endpoint: client.DefaultEndpoint,
		Locale:   envOrDefault("LANG", defaultLocale),
		LogLevel: defaultLogLevel,
		LogFile:  defaultLogFile,
	}

	// --config beats GRAPHDECK_CONFIG; only an implicit default may be missing
	configPath, explicit := stringFlag(flags, "config")
	if !explicit {
		configPath = os.Getenv("GRAPHDECK_CONFIG")
		explicit = configPath != ""
	}
	if configPath == "" {
		configPath = filepath.Join(cwd, defaultConfigFile)
	}
	if err := applyConfigFile(&cfg, configPath, explicit); err != nil {
		return Config{}, err
	}

	applyEnv(&cfg)
	applyFlags(&cfg, flags)

	cfg.BaseDir = resolvePath(cfg.BaseDir, cwd)
	cfg.JournalPath = resolvePath(cfg.JournalPath, cwd)
	cfg.LogFile = resolvePath(cfg.LogFile, cwd)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyConfigFile merges path into cfg. A missing file is only an error
// when the path was given explicitly.
func applyConfigFile(cfg *Config, path string, explicit bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var parsed hclConfigFile
	diags = gohcl.DecodeBody(hclFile.Body, nil, &parsed)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	// relative paths in the file are relative to the file
	dir := filepath.Dir(path)
	setIf(&cfg.Endpoint, parsed.Endpoint)
	setIf(&cfg.BaseDir, resolvePath(parsed.BaseDir, dir))
	setIf(&cfg.Locale, parsed.Locale)
	setIf(&cfg.JournalPath, resolvePath(parsed.Journal, dir))
	if parsed.Log != nil {
		setIf(&cfg.LogLevel, parsed.Log.Level)
		setIf(&cfg.LogFile, resolvePath(parsed.Log.File, dir))
	}
	if parsed.Redis != nil {
		setIf(&cfg.RedisAddr, parsed.Redis.Addr)
	}
	if parsed.Metrics != nil {
		setIf(&cfg.MetricsAddr, parsed.Metrics.Addr)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Endpoint = envOrDefault("GRAPHDECK_ENDPOINT", cfg.Endpoint)
	cfg.BaseDir = envOrDefault("GRAPHDECK_BASE_DIR", cfg.BaseDir)
	cfg.Locale = envOrDefault("GRAPHDECK_LOCALE", cfg.Locale)
	cfg.JournalPath = envOrDefault("GRAPHDECK_JOURNAL", cfg.JournalPath)
	cfg.RedisAddr = envOrDefault("GRAPHDECK_REDIS_ADDR", cfg.RedisAddr)
	cfg.MetricsAddr = envOrDefault("GRAPHDECK_METRICS_ADDR", cfg.MetricsAddr)
	cfg.LogLevel = envOrDefault("GRAPHDECK_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = envOrDefault("GRAPHDECK_LOG_FILE", cfg.LogFile)
}

func applyFlags(cfg *Config, flags *pflag.FlagSet) {
	for name, dst := range map[string]*string{
		"endpoint":     &cfg.Endpoint,
		"base-dir":     &cfg.BaseDir,
		"locale":       &cfg.Locale,
		"journal":      &cfg.JournalPath,
		"redis":        &cfg.RedisAddr,
		"metrics-addr": &cfg.MetricsAddr,
		"log-level":    &cfg.LogLevel,
		"log-file":     &cfg.LogFile,
	} {
		if v, changed := stringFlag(flags, name); changed {
			*dst = v
		}
	}
}

func (c Config) validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: want http(s)://host:port", c.Endpoint)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %s", c.LogLevel)
	}
	return nil
}

// stringFlag returns the flag value and whether it was set on the command line.
func stringFlag(flags *pflag.FlagSet, name string) (string, bool) {
	if flags == nil {
		return "", false
	}
	f := flags.Lookup(name)
	if f == nil {
		return "", false
	}
	return f.Value.String(), f.Changed
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func resolvePath(path string, base string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return trimmed
	}
	if filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Join(base, trimmed)
}
