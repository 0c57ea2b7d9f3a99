// Package config — .xliffkit.yaml configuration file support.
//
// When a .xliffkit.yaml file exists in the working directory, it supplies
// per-project defaults for the merge command so translators do not retype
// column indexes and language tags on every run. Command-line flags always
// override the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = ".xliffkit.yaml"

// DefaultTargetLang is the xml:lang written to targets when neither the
// config file nor the --target-lang flag says otherwise.
const DefaultTargetLang = "ar-EG"

// DefaultOutSuffix is appended to the input stem when no output path is given.
const DefaultOutSuffix = "_merged"

// Config is the top-level .xliffkit.yaml structure.
type Config struct {
	// TargetLang is the xml:lang value written to updated targets.
	TargetLang string `yaml:"target_lang,omitempty"`
	// SourceColumn is the zero-based pair-table column holding source text.
	SourceColumn int `yaml:"source_column,omitempty"`
	// TargetColumn is the zero-based pair-table column holding target text.
	TargetColumn int `yaml:"target_column,omitempty"`
	// Sheet selects the worksheet for Excel pair tables (default: first).
	Sheet string `yaml:"sheet,omitempty"`
	// NoHeader treats the pair table's first row as data.
	NoHeader bool `yaml:"no_header,omitempty"`
	// OutSuffix is appended to the input stem for the default output path.
	OutSuffix string `yaml:"out_suffix,omitempty"`
}

// Default returns the configuration used when no .xliffkit.yaml exists.
func Default() *Config {
	return &Config{
		TargetLang:   DefaultTargetLang,
		SourceColumn: 0,
		TargetColumn: 1,
		OutSuffix:    DefaultOutSuffix,
	}
}

// Load reads .xliffkit.yaml from dir. A missing file is not an error: the
// defaults are returned. A malformed file is an error.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.SourceColumn < 0 || cfg.TargetColumn < 0 {
		return nil, fmt.Errorf("%s: column indexes must not be negative", path)
	}
	if cfg.SourceColumn == cfg.TargetColumn {
		return nil, fmt.Errorf("%s: source_column and target_column must differ", path)
	}
	if cfg.TargetLang == "" {
		cfg.TargetLang = DefaultTargetLang
	}
	if cfg.OutSuffix == "" {
		cfg.OutSuffix = DefaultOutSuffix
	}
	return cfg, nil
}
