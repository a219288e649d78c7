// Package config loads and validates the application configuration:
// environment variables layered over an optional YAML file, validated once,
// then treated as read-only for the lifetime of the process. The pipeline
// section converts into the immutable per-run options handed to every
// stage.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"dqcli/internal/pipeline"
)

// Config is the complete application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port            int `yaml:"port" envconfig:"PORT" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec" envconfig:"READ_TIMEOUT_SEC" default:"15" validate:"gt=0"`
	WriteTimeoutSec int `yaml:"write_timeout_sec" envconfig:"WRITE_TIMEOUT_SEC" default:"60" validate:"gt=0"`
	MaxUploadBytes  int `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"33554432" validate:"gt=0"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/dqcli.log"`
}

// PathsConfig configures where run artifacts land.
type PathsConfig struct {
	DataDir  string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	AuditDir string `yaml:"audit_dir" envconfig:"AUDIT_DIR" default:"data/audit_logs"`
}

// PipelineConfig is the YAML form of the per-run pipeline options.
type PipelineConfig struct {
	Stages                 StageSelectionConfig `yaml:"stages" json:"stages"`
	DestructiveRowDeletion bool                 `yaml:"destructive_row_deletion" json:"destructive_row_deletion" envconfig:"DESTRUCTIVE_ROW_DELETION"`
	RemoveDuplicates       bool                 `yaml:"remove_duplicates" json:"remove_duplicates" envconfig:"REMOVE_DUPLICATES"`
	Thresholds             ThresholdsConfig     `yaml:"thresholds" json:"thresholds"`
	Cleaning               CleaningConfig       `yaml:"cleaning" json:"cleaning"`
	Schema                 SchemaConfig         `yaml:"schema" json:"schema"`
}

// ThresholdsConfig holds numeric stage parameters.
type ThresholdsConfig struct {
	MaxMissingRowPercentage float64 `yaml:"max_missing_row_percentage" json:"max_missing_row_percentage" envconfig:"MAX_MISSING_ROW_PERCENTAGE" default:"50" validate:"gte=0,lte=100"`
	OutlierMethod           string  `yaml:"outlier_method" json:"outlier_method" envconfig:"OUTLIER_METHOD" default:"iqr" validate:"oneof=iqr zscore"`
}

// CleaningConfig holds the text-normalization and duplicate-key settings.
type CleaningConfig struct {
	Text          TextConfig `yaml:"text" json:"text"`
	DuplicateKeys []string   `yaml:"duplicate_keys" json:"duplicate_keys"`
}

// TextConfig holds the case policy for clean_data.
type TextConfig struct {
	Case string `yaml:"case" json:"case" envconfig:"CASE" default:"none" validate:"oneof=none upper lower title"`
}

// SchemaConfig holds schema_check requirements.
type SchemaConfig struct {
	RequiredColumns []string `yaml:"required_columns" json:"required_columns"`
	Strict          bool     `yaml:"strict" json:"strict"`
}

// StageSelectionConfig accepts both recognized YAML forms:
//
//	stages: [clean_data, duplicates]          # list of enabled names
//	stages: {outliers: {enabled: false}}      # per-stage enabled flags
//
// An absent stages key means every stage runs.
type StageSelectionConfig struct {
	List  []string
	Flags map[string]bool
}

// UnmarshalYAML implements the dual-form decoding.
func (s *StageSelectionConfig) UnmarshalYAML(unmarshal func(any) error) error {
	var list []string
	if err := unmarshal(&list); err == nil {
		s.List = list
		return nil
	}

	var flags map[string]struct {
		Enabled *bool `yaml:"enabled"`
	}
	if err := unmarshal(&flags); err != nil {
		return fmt.Errorf("stages must be a list of names or a map of {enabled: bool}: %w", err)
	}
	s.Flags = make(map[string]bool, len(flags))
	for name, v := range flags {
		enabled := true
		if v.Enabled != nil {
			enabled = *v.Enabled
		}
		s.Flags[name] = enabled
	}
	return nil
}

// UnmarshalJSON accepts the same two forms as the YAML decoder.
func (s *StageSelectionConfig) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		s.List = list
		return nil
	}

	var flags map[string]struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.Unmarshal(data, &flags); err != nil {
		return fmt.Errorf("stages must be a list of names or a map of {enabled: bool}: %w", err)
	}
	s.Flags = make(map[string]bool, len(flags))
	for name, v := range flags {
		enabled := true
		if v.Enabled != nil {
			enabled = *v.Enabled
		}
		s.Flags[name] = enabled
	}
	return nil
}

// Load reads configuration from the environment and, when present, the
// given YAML file, then validates the result. An empty path skips the file
// layer.
func Load(path string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process("DQ", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration against its struct constraints and the
// stage names in the selection.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}

	known := make(map[string]bool, len(pipeline.CanonicalOrder))
	for _, name := range pipeline.CanonicalOrder {
		known[name] = true
	}
	for _, name := range c.Pipeline.Stages.List {
		if !known[name] {
			return fmt.Errorf("unknown stage %q in stages list", name)
		}
	}
	for name := range c.Pipeline.Stages.Flags {
		if !known[name] {
			return fmt.Errorf("unknown stage %q in stages map", name)
		}
	}
	return nil
}

// PipelineOptions converts the pipeline section into the immutable per-run
// options value.
func (c *Config) PipelineOptions() pipeline.Options {
	return c.Pipeline.Options()
}

// Options converts a pipeline section into per-run options, applying
// defaults for unset numeric and enum fields.
func (p PipelineConfig) Options() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.Stages = pipeline.StageSelection{
		List:  append([]string(nil), p.Stages.List...),
		Flags: cloneFlags(p.Stages.Flags),
	}
	opts.DestructiveRowDeletion = p.DestructiveRowDeletion
	opts.RemoveDuplicates = p.RemoveDuplicates
	if p.Thresholds.MaxMissingRowPercentage > 0 {
		opts.Thresholds.MaxMissingRowPercentage = p.Thresholds.MaxMissingRowPercentage
	}
	if p.Thresholds.OutlierMethod != "" {
		opts.Thresholds.OutlierMethod = p.Thresholds.OutlierMethod
	}
	if p.Cleaning.Text.Case != "" {
		opts.Cleaning.Text.Case = p.Cleaning.Text.Case
	}
	opts.Cleaning.DuplicateKeys = append([]string(nil), p.Cleaning.DuplicateKeys...)
	opts.Schema.RequiredColumns = append([]string(nil), p.Schema.RequiredColumns...)
	opts.Schema.Strict = p.Schema.Strict
	return opts
}

// AuditFilePath returns the path a run's audit trail is written to.
func (c *Config) AuditFilePath(sessionID string) string {
	return filepath.Join(c.Paths.AuditDir, fmt.Sprintf("audit_%s.json", sessionID))
}

func cloneFlags(in map[string]bool) map[string]bool {
	if in == nil {
		return nil
	}
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
