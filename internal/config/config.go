package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for the log parser.
// It is threaded explicitly into each pipeline stage; nothing reads it
// as ambient state.
type Config struct {
	Trigger string        `yaml:"trigger"`
	Strict  bool          `yaml:"strict"`
	Extract ExtractConfig `yaml:"extract"`
	Filter  FilterConfig  `yaml:"filter"`
	Output  OutputConfig  `yaml:"output"`
	Dev     DevConfig     `yaml:"dev"`
}

// ExtractConfig controls record extraction
type ExtractConfig struct {
	// QuoteAwareDepth counts braces only outside quoted spans. Off by
	// default; the plain scan counts every brace, quoted or not.
	QuoteAwareDepth bool `yaml:"quote_aware_depth"`
}

// FilterConfig controls the record filtering stages
type FilterConfig struct {
	Key       string   `yaml:"key"`
	Path      string   `yaml:"path"`
	PathValue string   `yaml:"path_value"`
	Unique    bool     `yaml:"unique"`
	Project   []string `yaml:"project"`
	DedupKeys []string `yaml:"dedup_keys"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Format     string `yaml:"format"`
	Delimiter  string `yaml:"delimiter"`
	HeaderCase string `yaml:"header_case"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Trigger: "",
		Strict:  false,
		Extract: ExtractConfig{
			QuoteAwareDepth: false,
		},
		Filter: FilterConfig{
			Project:   []string{},
			DedupKeys: []string{},
		},
		Output: OutputConfig{
			Format:     "json",
			Delimiter:  ",",
			HeaderCase: "original",
		},
		Dev: DevConfig{
			Debug: false,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".logparser.yml", ".logparser.yaml", "logparser.yml", "logparser.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// ApplyEnv overlays LOGPARSER_* environment variables onto the config.
// A .env file in the working directory is honored when main blank-imports
// godotenv's autoload package.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LOGPARSER_TRIGGER"); v != "" {
		c.Trigger = v
	}
	if v := os.Getenv("LOGPARSER_FORMAT"); v != "" {
		c.Output.Format = v
	}
	if v := os.Getenv("LOGPARSER_DELIMITER"); v != "" {
		c.Output.Delimiter = v
	}
	if v := os.Getenv("LOGPARSER_HEADER_CASE"); v != "" {
		c.Output.HeaderCase = v
	}
	if v := os.Getenv("LOGPARSER_STRICT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Strict = b
		}
	}
	if v := os.Getenv("LOGPARSER_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Dev.Debug = b
		}
	}
}

// CLIOverrides holds the flag values that take precedence over file and
// environment configuration. String fields override when non-empty;
// boolean fields override when set on the command line.
type CLIOverrides struct {
	Trigger    string
	Format     string
	Delimiter  string
	HeaderCase string
	FilterKey  string
	Where      string
	Project    []string
	DedupKeys  []string
	Unique     bool
	Strict     bool
	QuoteAware bool
	Debug      bool
}

// LoadWithCLI resolves the effective config: defaults, then config file
// (explicit path or discovered), then environment, then CLI flags.
func LoadWithCLI(configPath string, cli CLIOverrides) (*Config, error) {
	cfg := NewConfig()

	if configPath == "" {
		configPath = FindConfigFile()
	}
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	cfg.ApplyEnv()

	if cli.Trigger != "" {
		cfg.Trigger = cli.Trigger
	}
	if cli.Format != "" {
		cfg.Output.Format = cli.Format
	}
	if cli.Delimiter != "" {
		cfg.Output.Delimiter = cli.Delimiter
	}
	if cli.HeaderCase != "" {
		cfg.Output.HeaderCase = cli.HeaderCase
	}
	if cli.FilterKey != "" {
		cfg.Filter.Key = cli.FilterKey
	}
	if cli.Where != "" {
		path, value, ok := strings.Cut(cli.Where, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --where expression '%s': want path=value", cli.Where)
		}
		cfg.Filter.Path = path
		cfg.Filter.PathValue = value
	}
	if len(cli.Project) > 0 {
		cfg.Filter.Project = cli.Project
	}
	if len(cli.DedupKeys) > 0 {
		cfg.Filter.DedupKeys = cli.DedupKeys
	}

	// Boolean flags only widen behavior; an unset flag leaves the file
	// or env value in place.
	if cli.Unique {
		cfg.Filter.Unique = true
	}
	if cli.Strict {
		cfg.Strict = true
	}
	if cli.QuoteAware {
		cfg.Extract.QuoteAwareDepth = true
	}
	if cli.Debug {
		cfg.Dev.Debug = true
	}

	return cfg, nil
}
