// Package config loads the optional YAML configuration of the ejson CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/reoring/ejson"
	"github.com/reoring/ejson/flatten"
	"github.com/reoring/ejson/jsonio"
	"github.com/reoring/ejson/repair"
)

// EnvPath names the variable consulted when no --config flag is given.
const EnvPath = "EJSON_CONFIG"

type Dump struct {
	Pretty     bool `yaml:"pretty"`
	ASCII      bool `yaml:"ascii"`
	EscapeHTML bool `yaml:"escape_html"`
}

type Flatten struct {
	Root            string `yaml:"root"`
	ObjectSeparator string `yaml:"object_separator"`
	ArraySubscript  string `yaml:"array_subscript"`
	KeepArrays      bool   `yaml:"keep_arrays"`
	NoIndex         bool   `yaml:"no_index"`
}

type Repair struct {
	MaxAttempts int `yaml:"max_attempts"`
}

// Config mirrors the YAML file. Keys absent from the file keep the values
// of Default.
type Config struct {
	Driver    string  `yaml:"driver"`
	LogLevel  string  `yaml:"log_level"`
	BatchSize int     `yaml:"batch_size"`
	OnError   string  `yaml:"on_error"`
	Dump      Dump    `yaml:"dump"`
	Flatten   Flatten `yaml:"flatten"`
	Repair    Repair  `yaml:"repair"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	fo := flatten.DefaultOptions()
	return Config{
		Driver:    "go-json",
		LogLevel:  "warn",
		BatchSize: 1000,
		OnError:   "raise",
		Flatten:   Flatten{ObjectSeparator: fo.ObjectSeparator, ArraySubscript: fo.ArraySubscript},
		Repair:    Repair{MaxAttempts: repair.DefaultMaxAttempts},
	}
}

// Load reads path, or the file named by EJSON_CONFIG when path is empty.
// With neither set it returns Default. Unknown keys and trailing documents
// are rejected.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML document over Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("strict config parse error: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config contains multiple documents or trailing content")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("config: batch_size must be positive, got %d", c.BatchSize)
	}
	if c.Repair.MaxAttempts <= 0 {
		return fmt.Errorf("config: repair.max_attempts must be positive, got %d", c.Repair.MaxAttempts)
	}
	if _, err := jsonio.ParseOnError(c.OnError); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := flatten.New(c.FlattenOptions()); err != nil {
		return fmt.Errorf("config: flatten: %w", err)
	}
	return nil
}

func (c Config) DumpOpt() ejson.DumpOpt {
	return ejson.DumpOpt{Pretty: c.Dump.Pretty, ASCII: c.Dump.ASCII, EscapeHTML: c.Dump.EscapeHTML}
}

func (c Config) FlattenOptions() flatten.Options {
	return flatten.Options{
		RootIdentifier:  c.Flatten.Root,
		ObjectSeparator: c.Flatten.ObjectSeparator,
		ArraySubscript:  c.Flatten.ArraySubscript,
		KeepArrays:      c.Flatten.KeepArrays,
		NoIndex:         c.Flatten.NoIndex,
	}
}

func (c Config) RepairOptions() repair.Options {
	return repair.Options{MaxAttempts: c.Repair.MaxAttempts}
}

// OnErrorPolicy assumes Validate passed.
func (c Config) OnErrorPolicy() jsonio.OnError {
	p, _ := jsonio.ParseOnError(c.OnError)
	return p
}
