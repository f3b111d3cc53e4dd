// Package config loads the blockgrid command's configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/blockgrid"
	"github.com/tsawler/blockgrid/layout"
	"github.com/tsawler/blockgrid/resolver"
)

// Config is the command configuration.
type Config struct {
	// Formats are the layout handlers, tried in order.
	Formats []Format `yaml:"formats,omitempty"`
	// Param is the default sheet name parameter, e.g. the PI number.
	Param string `yaml:"param,omitempty"`
	// Group is the default group filter.
	Group string `yaml:"group,omitempty"`
	// Recalculate evaluates uncached XLSX formulas.
	Recalculate bool `yaml:"recalculate,omitempty"`
}

// Format describes one layout handler. The template is given inline or read
// from TemplateFile, which is relative to the configuration file.
type Format struct {
	Name         string             `yaml:"name"`
	Template     layout.Template    `yaml:"template,omitempty"`
	TemplateFile string             `yaml:"template_file,omitempty"`
	Sheet        resolver.SheetSpec `yaml:"sheet"`
}

// Defaults returns the built-in configuration: the primary layout followed
// by the legacy layout.
func Defaults() Config {
	return Config{
		Formats: []Format{
			fromHandler(blockgrid.Primary()),
			fromHandler(blockgrid.Legacy()),
		},
	}
}

func fromHandler(f *blockgrid.Format) Format {
	return Format{Name: f.Name(), Template: f.Template(), Sheet: f.SheetSpec()}
}

// Load reads a YAML configuration file. Unknown fields are rejected and
// template files are resolved against the file's directory.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range cfg.Formats {
		tf := cfg.Formats[i].TemplateFile
		if tf == "" {
			continue
		}
		if !filepath.IsAbs(tf) {
			tf = filepath.Join(dir, tf)
		}
		t, err := layout.LoadTemplate(tf)
		if err != nil {
			return Config{}, fmt.Errorf("format %s: %w", cfg.Formats[i].Name, err)
		}
		cfg.Formats[i].Template = t
		cfg.Formats[i].TemplateFile = ""
	}
	return cfg, nil
}

// Decode reads a YAML configuration from r without resolving template
// files.
func Decode(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return Config{}, nil
		}
		return Config{}, err
	}
	return cfg, nil
}

// Merge overlays over on base. A non-empty format list replaces the base
// list; strings replace when non-empty; Recalculate turns on when either
// side sets it.
func Merge(base, over Config) Config {
	out := base
	if len(over.Formats) > 0 {
		out.Formats = append([]Format(nil), over.Formats...)
	}
	if s := strings.TrimSpace(over.Param); s != "" {
		out.Param = s
	}
	if s := strings.TrimSpace(over.Group); s != "" {
		out.Group = s
	}
	out.Recalculate = base.Recalculate || over.Recalculate
	return out
}

// Handlers builds the configured layout handlers, validating each template.
func (c Config) Handlers() ([]blockgrid.Handler, error) {
	if len(c.Formats) == 0 {
		return nil, errors.New("no formats configured")
	}
	hs := make([]blockgrid.Handler, 0, len(c.Formats))
	seen := make(map[string]bool, len(c.Formats))
	for _, f := range c.Formats {
		if f.Name == "" {
			return nil, errors.New("format without a name")
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("duplicate format %q", f.Name)
		}
		seen[f.Name] = true
		if f.TemplateFile != "" {
			return nil, fmt.Errorf("format %s: template file %q not loaded", f.Name, f.TemplateFile)
		}

		h, err := blockgrid.NewFormat(f.Name, f.Template, f.Sheet)
		if err != nil {
			return nil, err
		}
		hs = append(hs, h)
	}
	return hs, nil
}

// Format returns the named format.
func (c Config) Format(name string) (Format, bool) {
	for _, f := range c.Formats {
		if f.Name == name {
			return f, true
		}
	}
	return Format{}, false
}
