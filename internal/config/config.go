package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/finstat-dev/finstat/internal/grouping"
	"github.com/finstat-dev/finstat/internal/model"
)

// FileName is the config file looked up in the working directory.
const FileName = "finstat.yaml"

// EnvPrefix prefixes environment overrides, e.g. FINSTAT_GROUPING=week.
const EnvPrefix = "FINSTAT"

// Config represents the top-level finstat.yaml configuration.
type Config struct {
	Grouping       string `yaml:"grouping" mapstructure:"grouping"`
	OthersLabel    string `yaml:"others_label" mapstructure:"others_label"`
	SplitDelimiter string `yaml:"split_delimiter" mapstructure:"split_delimiter"`
	FiltersFile    string `yaml:"filters_file" mapstructure:"filters_file"`
	DatasetsFile   string `yaml:"datasets_file" mapstructure:"datasets_file"`
	LogLevel       string `yaml:"log_level" mapstructure:"log_level"`

	// Dir is the directory the config was loaded from. Relative file
	// paths are resolved against it.
	Dir string `yaml:"-" mapstructure:"-"`
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Grouping:       grouping.NameMonth,
		OthersLabel:    "Others",
		SplitDelimiter: model.DefaultSplitDelimiter,
		FiltersFile:    "filters.json",
		DatasetsFile:   "datasets.json",
		LogLevel:       "info",
	}
}

// Load reads a finstat.yaml file from disk. Missing keys take their default
// values and FINSTAT_* environment variables override the file.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return unmarshal(v, filepath.Dir(path))
}

// FromEnv returns the defaults with FINSTAT_* environment overrides, for a
// project directory without a config file.
func FromEnv(dir string) (*Config, error) {
	return unmarshal(newViper(), dir)
}

func newViper() *viper.Viper {
	v := viper.New()
	def := Default()
	v.SetDefault("grouping", def.Grouping)
	v.SetDefault("others_label", def.OthersLabel)
	v.SetDefault("split_delimiter", def.SplitDelimiter)
	v.SetDefault("filters_file", def.FiltersFile)
	v.SetDefault("datasets_file", def.DatasetsFile)
	v.SetDefault("log_level", def.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper, dir string) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Dir = dir
	return &cfg, nil
}

// Save writes a Config to a YAML file.
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

// Validate checks the values a run depends on.
func (c *Config) Validate() error {
	var errs []error
	if _, err := grouping.Parse(c.Grouping); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.OthersLabel) == "" {
		errs = append(errs, errors.New("others_label must not be empty"))
	}
	if c.SplitDelimiter == "" {
		errs = append(errs, errors.New("split_delimiter must not be empty"))
	}
	if c.FiltersFile == "" {
		errs = append(errs, errors.New("filters_file must not be empty"))
	}
	if c.DatasetsFile == "" {
		errs = append(errs, errors.New("datasets_file must not be empty"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Resolve returns path relative to the config directory unless it is
// absolute.
func (c *Config) Resolve(path string) string {
	if filepath.IsAbs(path) || c.Dir == "" {
		return path
	}
	return filepath.Join(c.Dir, path)
}
