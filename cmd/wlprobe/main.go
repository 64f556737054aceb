package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/danmuck/wlprobe/internal/logging"
	"github.com/danmuck/wlprobe/internal/probe"
	"github.com/rs/zerolog/log"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("wlprobe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to a TOML config file")
	display := fs.String("display", "", "display name or socket path (default $WAYLAND_DISPLAY, then wayland-0)")
	inspect := fs.Bool("inspect", false, "bind seats, outputs and shm and print their events")
	timeout := fs.Duration("timeout", 0, "per-read roundtrip timeout (default 5s)")
	metrics := fs.String("metrics-textfile", "", "write prometheus metrics to this file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	logging.ConfigureRuntime()

	cfg := probe.DefaultConfig()
	if *configPath != "" {
		loaded, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "wlprobe: %v\n", err)
			return 1
		}
		cfg = loaded
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "display":
			cfg.Display = *display
		case "inspect":
			cfg.Inspect = *inspect
		case "timeout":
			cfg.RoundtripTimeout = *timeout
		case "metrics-textfile":
			cfg.MetricsTextfile = *metrics
		}
	})
	if cfg.WaylandDebug {
		logging.EnableTrace()
	}

	start := time.Now()
	if err := probe.New(cfg, stdout).Run(); err != nil {
		log.Error().Err(err).Msg("wlprobe failed")
		fmt.Fprintf(stderr, "wlprobe: %v\n", err)
		return 1
	}
	log.Debug().Dur("elapsed", time.Since(start)).Msg("wlprobe done")
	return 0
}
