// Package config loads docfill settings from YAML. Every key is optional;
// missing keys keep their defaults and CLI flags override the result.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-docfill/pkg/guide"
)

// Config is the full settings tree.
type Config struct {
	Collaborator Collaborator `yaml:"collaborator"`
	Guide        Guide        `yaml:"guide"`
	Preview      Preview      `yaml:"preview"`
	Log          Log          `yaml:"log"`
}

// Collaborator configures the document backend.
type Collaborator struct {
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	AlsoPDF  bool          `yaml:"also_pdf"`
	Contract string        `yaml:"contract"`
}

// Guide configures guided fill.
type Guide struct {
	Pacing      time.Duration `yaml:"pacing"`
	HelpText    string        `yaml:"help_text"`
	GenericHint string        `yaml:"generic_hint"`
}

// Preview configures preview rendering.
type Preview struct {
	PlaceholderFallback string `yaml:"placeholder_fallback"`
	Theme               string `yaml:"theme"`
	Variant             string `yaml:"variant"`
}

// Log configures logging.
type Log struct {
	Level string `yaml:"level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Collaborator: Collaborator{
			BaseURL: "http://localhost:8000",
			Timeout: 60 * time.Second,
			AlsoPDF: true,
		},
		Guide: Guide{
			Pacing: guide.DefaultPacing,
		},
		Preview: Preview{
			PlaceholderFallback: "fill this",
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%w (%s)", err, path)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Collaborator.Timeout < 0 {
		return errors.New("config: collaborator.timeout must not be negative")
	}
	if c.Guide.Pacing < 0 {
		return errors.New("config: guide.pacing must not be negative")
	}
	if _, err := c.Log.ZapLevel(); err != nil {
		return err
	}
	return nil
}

// ZapLevel parses the configured log level.
func (l Log) ZapLevel() (zapcore.Level, error) {
	level := strings.TrimSpace(l.Level)
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("config: log.level: %w", err)
	}
	return parsed, nil
}

// Encode writes the config as YAML.
func (c Config) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return enc.Close()
}
