// Package config loads the YAML configuration of the morph command.
//
// Configuration comes from a single file named by the --config flag or the
// MORPH_CONFIG environment variable. Relative paths inside the file resolve
// against the directory holding it.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vcrobe/morph/console"
)

// EnvVar names the environment variable consulted when no path is given.
const EnvVar = "MORPH_CONFIG"

// Config is the configuration of a page render.
type Config struct {
	// Page is the HTML document the components render into.
	Page string `yaml:"page"`

	// Output is where the rendered page is written. Empty means stdout.
	Output string `yaml:"output"`

	// LogLevel is one of debug, info, warn, error.
	// Default: info
	LogLevel string `yaml:"log_level"`

	// FrameInterval is the watch loop frame interval.
	// Default: 16ms
	FrameInterval Duration `yaml:"frame_interval"`

	// MetricsAddr enables the prometheus endpoint in watch mode.
	MetricsAddr string `yaml:"metrics_addr"`

	// Stores are the data stores, loaded from YAML or JSON files.
	Stores []StoreConfig `yaml:"stores"`

	// Components bind templates to mounts in the page.
	Components []ComponentConfig `yaml:"components"`

	// dir is the directory of the config file.
	dir string
}

// StoreConfig declares one store.
type StoreConfig struct {
	// Name is the store namespace; its change event is
	// morph:store-change-<name>.
	Name string `yaml:"name"`

	// Data is a YAML or JSON file holding a mapping.
	Data string `yaml:"data"`
}

// ComponentConfig declares one render controller.
type ComponentConfig struct {
	// Name labels the component in logs and metrics.
	Name string `yaml:"name"`

	// Mount is a CSS selector resolved in the page.
	Mount string `yaml:"mount"`

	// Template is an html/template file executed with the snapshots of
	// all stores keyed by store name.
	Template string `yaml:"template"`

	// Stores lists the stores whose changes re-render the component.
	Stores []string `yaml:"stores"`

	// AllowInlineEvents keeps on* attributes in rendered markup.
	AllowInlineEvents bool `yaml:"allow_inline_events"`
}

// Duration is a time.Duration written as a string such as "16ms".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML writes the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Default returns the configuration values used before the file is read.
func Default() *Config {
	return &Config{
		LogLevel:      "info",
		FrameInterval: Duration(16 * time.Millisecond),
	}
}

// ResolvePath returns flagPath, or the value of MORPH_CONFIG when flagPath
// is empty.
func ResolvePath(flagPath string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	if p := os.Getenv(EnvVar); p != "" {
		return p, nil
	}
	return "", fmt.Errorf("no config file: pass --config or set %s", EnvVar)
}

// LoadFile reads, resolves and validates the configuration at path.
// Unknown keys are rejected.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	cfg.dir = filepath.Dir(abs)
	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Dir returns the directory relative paths were resolved against.
func (c *Config) Dir() string {
	return c.dir
}

func (c *Config) resolvePaths() {
	c.Page = c.resolve(c.Page)
	c.Output = c.resolve(c.Output)
	for i := range c.Stores {
		c.Stores[i].Data = c.resolve(c.Stores[i].Data)
	}
	for i := range c.Components {
		c.Components[i].Template = c.resolve(c.Components[i].Template)
	}
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.dir, p)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Page == "" {
		errs = append(errs, errors.New("page is required"))
	}
	if _, err := console.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.FrameInterval < 0 {
		errs = append(errs, errors.New("frame_interval must not be negative"))
	}

	stores := make(map[string]bool, len(c.Stores))
	for i, s := range c.Stores {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("stores[%d].name is required", i))
		}
		if stores[s.Name] {
			errs = append(errs, fmt.Errorf("stores[%d]: duplicate store %q", i, s.Name))
		}
		stores[s.Name] = true
	}

	for i, comp := range c.Components {
		if comp.Mount == "" {
			errs = append(errs, fmt.Errorf("components[%d].mount is required", i))
		}
		if comp.Template == "" {
			errs = append(errs, fmt.Errorf("components[%d].template is required", i))
		}
		for _, name := range comp.Stores {
			if !stores[name] {
				errs = append(errs, fmt.Errorf("components[%d]: unknown store %q", i, name))
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// LoadData reads a store data file. The file must hold a mapping; YAML and
// JSON are both accepted.
func LoadData(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data := map[string]any{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return data, nil
}
