package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/wlprobe/internal/probe"
)

type fileConfig struct {
	Display          string `toml:"display"`
	RoundtripTimeout string `toml:"roundtrip_timeout"`
	Inspect          bool   `toml:"inspect"`
	MetricsTextfile  string `toml:"metrics_textfile"`
	WaylandDebug     bool   `toml:"wayland_debug"`
}

func loadConfig(path string) (probe.Config, error) {
	cfg := probe.DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return probe.Config{}, fmt.Errorf("load wlprobe config: %w", err)
	}

	if meta.IsDefined("display") {
		cfg.Display = strings.TrimSpace(raw.Display)
	}

	if meta.IsDefined("roundtrip_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.RoundtripTimeout))
		if err != nil {
			return probe.Config{}, fmt.Errorf("parse roundtrip_timeout: %w", err)
		}
		cfg.RoundtripTimeout = d
	}

	if meta.IsDefined("inspect") {
		cfg.Inspect = raw.Inspect
	}

	if meta.IsDefined("metrics_textfile") {
		cfg.MetricsTextfile = strings.TrimSpace(raw.MetricsTextfile)
	}

	if meta.IsDefined("wayland_debug") {
		cfg.WaylandDebug = raw.WaylandDebug
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return probe.Config{}, fmt.Errorf("unknown wlprobe config key %q", undecoded[0].String())
	}

	return cfg, cfg.Validate()
}
