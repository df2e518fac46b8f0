package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Output formats understood by the CLI.
const (
	FormatPPM  = "ppm"
	FormatBMP  = "bmp"
	FormatNone = "none"
)

// Config represents the configuration file structure
type Config struct {
	OutputDir  string `json:"output_dir"`
	Format     string `json:"format"`
	VerifyCRC  bool   `json:"verify_crc"`
	HeaderOnly bool   `json:"header_only"`
	LogLevel   string `json:"log_level"`
	Workers    int    `json:"workers"`
}

func Default() *Config {
	return &Config{
		Format:   FormatPPM,
		LogLevel: "info",
		Workers:  4,
	}
}

// Load reads the JSON file at path over the defaults. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	config := Default()

	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

func (c *Config) Validate() error {
	switch c.Format {
	case FormatPPM, FormatBMP, FormatNone:
	default:
		return fmt.Errorf("unknown output format %q", c.Format)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// OutputPath returns where the decoded copy of inputPath is written: the
// same base name with the format's extension, in OutputDir if set or next
// to the input otherwise.
func OutputPath(inputPath string, config *Config) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)) + "." + config.Format
	if config.OutputDir != "" {
		return filepath.Join(config.OutputDir, base)
	}
	return filepath.Join(filepath.Dir(inputPath), base)
}
