// Package config loads relmap settings from an optional file, RELMAP_*
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ddl-r-abdulaziz/relmap/pkg/logging"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds relmap configuration.
type Config struct {
	Width          float64        `mapstructure:"width" toml:"width"`
	Height         float64        `mapstructure:"height" toml:"height"`
	MaxNodes       int            `mapstructure:"max_nodes" toml:"max_nodes"` // 0 or negative is unlimited
	ShowDetail     bool           `mapstructure:"show_detail" toml:"show_detail"`
	UnrootedBucket bool           `mapstructure:"unrooted_bucket" toml:"unrooted_bucket"`
	Input          string         `mapstructure:"input" toml:"input"`
	Log            logging.Config `mapstructure:"log" toml:"log"`
	Server         ServerConfig   `mapstructure:"server" toml:"server"`
	Kube           KubeConfig     `mapstructure:"kube" toml:"kube"`
}

// ServerConfig controls the interactive server.
type ServerConfig struct {
	Addr            string `mapstructure:"addr" toml:"addr"`
	FrameIntervalMS int    `mapstructure:"frame_interval_ms" toml:"frame_interval_ms"`
}

// FrameInterval returns the tick period of a live session.
func (s ServerConfig) FrameInterval() time.Duration {
	return time.Duration(s.FrameIntervalMS) * time.Millisecond
}

// KubeConfig selects the cluster source.
type KubeConfig struct {
	Config     string   `mapstructure:"config" toml:"config"` // kubeconfig path; empty uses in-cluster config
	Cluster    string   `mapstructure:"cluster" toml:"cluster"`
	Namespaces []string `mapstructure:"namespaces" toml:"namespaces"`
	Policies   bool     `mapstructure:"policies" toml:"policies"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Width:    1200,
		Height:   800,
		MaxNodes: 1000,
		Log:      logging.Config{Level: "info", Format: "console"},
		Server:   ServerConfig{Addr: ":8080", FrameIntervalMS: 16},
		Kube:     KubeConfig{Cluster: "cluster", Namespaces: []string{}},
	}
}

// Validate checks the settings that would otherwise fail deep inside a layout.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: width and height must be positive, got %gx%g", ErrInvalidConfig, c.Width, c.Height)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log.format must be console or json, got %q", ErrInvalidConfig, c.Log.Format)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is empty", ErrInvalidConfig)
	}
	if c.Server.FrameIntervalMS <= 0 {
		return fmt.Errorf("%w: server.frame_interval_ms must be positive, got %d", ErrInvalidConfig, c.Server.FrameIntervalMS)
	}
	return nil
}

// Write encodes c as TOML.
func Write(w io.Writer, c *Config) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

func cleanNamespaces(in []string) []string {
	out := make([]string, 0, len(in))
	for _, ns := range in {
		for _, part := range strings.Split(ns, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
