package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix of every setting.
const envPrefix = "RELMAP"

// FlagKeys maps command-line flag names onto config keys.
var FlagKeys = map[string]string{
	"width":      "width",
	"height":     "height",
	"max-nodes":  "max_nodes",
	"detail":     "show_detail",
	"unrooted":   "unrooted_bucket",
	"input":      "input",
	"log-level":  "log.level",
	"log-format": "log.format",
	"addr":       "server.addr",
	"kubeconfig": "kube.config",
	"cluster":    "kube.cluster",
	"namespaces": "kube.namespaces",
	"policies":   "kube.policies",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("width", d.Width)
	v.SetDefault("height", d.Height)
	v.SetDefault("max_nodes", d.MaxNodes)
	v.SetDefault("show_detail", d.ShowDetail)
	v.SetDefault("unrooted_bucket", d.UnrootedBucket)
	v.SetDefault("input", d.Input)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.frame_interval_ms", d.Server.FrameIntervalMS)
	v.SetDefault("kube.config", d.Kube.Config)
	v.SetDefault("kube.cluster", d.Kube.Cluster)
	v.SetDefault("kube.namespaces", d.Kube.Namespaces)
	v.SetDefault("kube.policies", d.Kube.Policies)
	return v
}

// Load reads path (YAML, TOML or JSON by extension; empty skips the file),
// applies RELMAP_* environment overrides and then any changed flag in flags
// named in FlagKeys, and validates the result.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			f := flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Kube.Namespaces = cleanNamespaces(cfg.Kube.Namespaces)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
