package probe

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/danmuck/wlprobe/internal/client"
	"github.com/danmuck/wlprobe/internal/dispatch"
	"github.com/danmuck/wlprobe/internal/format"
	"github.com/danmuck/wlprobe/internal/observability"
	"github.com/danmuck/wlprobe/internal/own"
	"github.com/rs/zerolog/log"
)

var ErrInvalidTimeout = errors.New("probe: invalid roundtrip timeout")

// Config configures one probe run.
type Config struct {
	// Display is a display name or socket path; empty follows WAYLAND_DISPLAY.
	Display string
	// RoundtripTimeout bounds each blocking socket read.
	RoundtripTimeout time.Duration
	Inspect          bool
	MetricsTextfile  string
	WaylandDebug     bool
}

func DefaultConfig() Config {
	return Config{RoundtripTimeout: 5 * time.Second}
}

func (c Config) Validate() error {
	if c.RoundtripTimeout < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.RoundtripTimeout)
	}
	return nil
}

// Global is one registry global as announced.
type Global struct {
	Name      uint32
	Interface string
	Version   uint32
}

// Probe runs the registry dump against one connection.
type Probe struct {
	cfg     Config
	out     io.Writer
	globals []Global
}

func New(cfg Config, out io.Writer) *Probe {
	return &Probe{cfg: cfg, out: out}
}

// Globals returns the globals still advertised after the last roundtrip, in
// announcement order.
func (p *Probe) Globals() []Global {
	return append([]Global(nil), p.globals...)
}

// Run connects, prints the registry and tears everything down again.
func (p *Probe) Run() error {
	if err := p.cfg.Validate(); err != nil {
		return err
	}
	rec := observability.Recorder{}
	raw, err := client.Connect(client.Options{
		Name:        p.cfg.Display,
		DialTimeout: p.cfg.RoundtripTimeout,
		ReadTimeout: p.cfg.RoundtripTimeout,
		Metrics:     rec,
		Observers:   []client.Observer{rec, observability.LifecycleLogger(log.Logger)},
	})
	if err != nil {
		return err
	}
	display := own.Acquire(raw)
	defer display.Release()
	log.Info().Str("socket", raw.Conn().Socket()).Msg("probe.Run connected")

	rawRegistry, err := display.Get().GetRegistry()
	if err != nil {
		return fmt.Errorf("probe: get registry: %w", err)
	}
	registry := own.Acquire(rawRegistry)
	defer registry.Release()

	ctx := dispatch.NewContext(p.react)
	if err := dispatch.BindRegistry(registry.Get(), ctx); err != nil {
		return fmt.Errorf("probe: bind registry: %w", err)
	}
	n, err := p.roundtrip(display.Get(), "registry")
	if err != nil {
		return err
	}
	log.Info().Int("events", n).Int("globals", len(p.globals)).Msg("probe.Run registry roundtrip complete")

	if p.cfg.Inspect {
		if err := p.inspect(display.Get(), registry.Get()); err != nil {
			return err
		}
	}
	return p.writeMetrics()
}

func (p *Probe) roundtrip(d *client.Display, phase string) (int, error) {
	start := time.Now()
	n, err := d.Roundtrip()
	observability.RecordRoundtrip(phase, time.Since(start), err == nil)
	if err != nil {
		return n, fmt.Errorf("probe: %s roundtrip: %w", phase, err)
	}
	return n, nil
}

// react prints one event tuple and tracks the registry contents.
func (p *Probe) react(sel dispatch.Selector, args ...any) {
	fmt.Fprintln(p.out, format.Tuple(append([]any{sel}, args...)...))
	if sel.Interface != "wl_registry" {
		return
	}
	switch sel.Name {
	case "global":
		g := Global{Name: args[1].(uint32), Interface: args[2].(string), Version: args[3].(uint32)}
		p.globals = append(p.globals, g)
		observability.RecordGlobal(g.Interface, 1)
	case "global_remove":
		name := args[1].(uint32)
		for i, g := range p.globals {
			if g.Name == name {
				p.globals = append(p.globals[:i], p.globals[i+1:]...)
				observability.RecordGlobal(g.Interface, -1)
				break
			}
		}
	}
}

func (p *Probe) writeMetrics() error {
	path := strings.TrimSpace(p.cfg.MetricsTextfile)
	if path == "" {
		return nil
	}
	if err := observability.WriteTextfile(path); err != nil {
		return fmt.Errorf("probe: write metrics: %w", err)
	}
	log.Debug().Str("path", path).Msg("probe.Run metrics written")
	return nil
}
