//go:build !(js && wasm)

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the optional qp configuration file (~/.config/qp/config.yaml).
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	JPEGQuality *int `yaml:"jpeg_quality"`

	ServerAddress string `yaml:"server_address"`
	MaxBodyBytes  *int64 `yaml:"max_body_bytes"`
	MaxPixels     *int64 `yaml:"max_pixels"`
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "qp", "config.yaml")
}

// loadConfig reads the config file at path. A missing file yields a zero
// Config; a malformed one is an error.
func loadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// applyGlobalConfig fills global flag variables from cfg when the flag was
// not set explicitly.
func applyGlobalConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
	if cfg.JPEGQuality != nil && !c.IsSet("jpeg-quality") {
		jpegQuality = int64(*cfg.JPEGQuality)
	}
}

// applyServeConfig fills serve flag variables from cfg.
func applyServeConfig(c *cli.Command, cfg Config, addr *string, maxBody, maxPixels *int64) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.MaxBodyBytes != nil && !c.IsSet("max-body") {
		*maxBody = *cfg.MaxBodyBytes
	}
	if cfg.MaxPixels != nil && !c.IsSet("max-pixels") {
		*maxPixels = *cfg.MaxPixels
	}
}
