package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/toyz/buildergen/internal/models"
	"github.com/toyz/buildergen/internal/parser"
)

// DefaultConfigFile is read from the working directory when no --config is given
const DefaultConfigFile = ".buildergen.yaml"

// Config holds the configuration for the CLI generator
type Config struct {
	// Patterns are the package patterns to scan, e.g. ./...
	Patterns StringList `yaml:"patterns,omitempty"`

	// BuildTags are passed to the package loader as -tags
	BuildTags StringList `yaml:"tags,omitempty"`

	// FilePrefix is prepended to generated file names
	FilePrefix string `yaml:"filePrefix,omitempty"`

	// Verbose enables detailed logging and error reporting
	Verbose bool `yaml:"verbose,omitempty"`

	// Quiet only shows errors and the final result
	Quiet bool `yaml:"quiet,omitempty"`

	// DryRun renders and formats builders without writing files
	DryRun bool `yaml:"dryRun,omitempty"`
}

// StringList is a YAML value that can be either a string or a list of strings
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler for StringList
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = []string{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("expected string or list, got %v", node.Kind)
	}
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() Config {
	return Config{
		Patterns:   StringList{"."},
		FilePrefix: parser.GeneratedFilePrefix,
	}
}

// LoadConfig reads a YAML config file on top of the defaults. A missing
// file is only an error when required is true.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return cfg, configError(path, "failed to read config file", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, configError(path, "failed to parse config file", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, configError(path, "invalid config file", err)
	}
	return cfg, nil
}

// Overrides carries command line values; nil and empty fields leave the
// configuration untouched
type Overrides struct {
	Patterns   []string
	BuildTags  []string
	FilePrefix *string
	Verbose    *bool
	Quiet      *bool
	DryRun     *bool
}

// Apply overlays command line values on the configuration
func (c *Config) Apply(o Overrides) {
	if len(o.Patterns) > 0 {
		c.Patterns = StringList(o.Patterns)
	}
	if len(o.BuildTags) > 0 {
		c.BuildTags = StringList(o.BuildTags)
	}
	if o.FilePrefix != nil {
		c.FilePrefix = *o.FilePrefix
	}
	if o.Verbose != nil {
		c.Verbose = *o.Verbose
	}
	if o.Quiet != nil {
		c.Quiet = *o.Quiet
	}
	if o.DryRun != nil {
		c.DryRun = *o.DryRun
	}
}

// Validate checks values that would make generation misbehave
func (c *Config) Validate() error {
	if c.Verbose && c.Quiet {
		return fmt.Errorf("verbose and quiet cannot both be set")
	}
	if c.FilePrefix == "" {
		return fmt.Errorf("filePrefix cannot be empty")
	}
	if strings.ContainsAny(c.FilePrefix, `/\`) {
		return fmt.Errorf("filePrefix %q must not contain a path separator", c.FilePrefix)
	}
	return nil
}

// BuildFlags returns the loader flags derived from the configuration
func (c *Config) BuildFlags() []string {
	if len(c.BuildTags) == 0 {
		return nil
	}
	return []string{"-tags=" + strings.Join(c.BuildTags, ",")}
}

func configError(path, message string, cause error) *models.GeneratorError {
	return &models.GeneratorError{
		Type:    models.ErrorTypeConfiguration,
		Message: message,
		Cause:   cause,
		Suggestions: []string{
			"Known keys: patterns, tags, filePrefix, verbose, quiet, dryRun",
		},
		Context: map[string]interface{}{"config_file": path},
	}
}
