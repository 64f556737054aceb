package probe

import (
	"fmt"

	"github.com/danmuck/wlprobe/internal/client"
	"github.com/danmuck/wlprobe/internal/dispatch"
	"github.com/danmuck/wlprobe/internal/own"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

// inspection holds the objects bound while inspecting one connection.
type inspection struct {
	probe   *Probe
	seats   []*own.Owned[*client.Seat]
	outputs []*own.Owned[*client.Output]
	shms    []*own.Owned[*client.Shm]
	caps    map[*client.Seat]uint32
}

func (in *inspection) release() {
	for _, o := range in.shms {
		o.Release()
	}
	for _, o := range in.outputs {
		o.Release()
	}
	for _, o := range in.seats {
		o.Release()
	}
}

// react prints like the registry reactor and records seat capabilities.
// Keymap fds are closed once printed.
func (in *inspection) react(sel dispatch.Selector, args ...any) {
	in.probe.react(sel, args...)
	switch sel.String() {
	case "wl_seat.capabilities":
		in.caps[args[0].(*client.Seat)] = args[1].(uint32)
	case "wl_keyboard.keymap":
		if fd, ok := args[2].(int); ok && fd >= 0 {
			unix.Close(fd)
		}
	}
}

// inspect binds every seat, output and shm global, prints their events and
// acquires and releases the input devices each seat advertises.
func (p *Probe) inspect(d *client.Display, reg *client.Registry) error {
	in := &inspection{probe: p, caps: make(map[*client.Seat]uint32)}
	defer in.release()
	ctx := dispatch.NewContext(in.react)

	for _, g := range p.Globals() {
		var err error
		switch g.Interface {
		case "wl_seat":
			err = bindInto(reg, g, ctx, &in.seats)
		case "wl_output":
			err = bindInto(reg, g, ctx, &in.outputs)
		case "wl_shm":
			err = bindInto(reg, g, ctx, &in.shms)
		default:
			continue
		}
		if err != nil {
			return err
		}
	}
	if _, err := p.roundtrip(d, "inspect"); err != nil {
		return err
	}
	log.Info().
		Int("seats", len(in.seats)).
		Int("outputs", len(in.outputs)).
		Int("shm", len(in.shms)).
		Msg("probe.inspect globals bound")

	for _, seat := range in.seats {
		if err := p.inspectDevices(d, seat.Get(), in.caps[seat.Get()], ctx); err != nil {
			return err
		}
	}
	return nil
}

func bindInto[T client.Object](reg *client.Registry, g Global, ctx *dispatch.Context, dst *[]*own.Owned[T]) error {
	obj, err := client.BindGlobal[T](reg, g.Name, g.Version)
	if err != nil {
		return fmt.Errorf("probe: bind %s %d: %w", g.Interface, g.Name, err)
	}
	owned := own.Acquire(obj)
	*dst = append(*dst, owned)
	if err := dispatch.Bind(owned.Get(), ctx); err != nil {
		return fmt.Errorf("probe: listen %s %d: %w", g.Interface, g.Name, err)
	}
	return nil
}

// inspectDevices acquires the seat's advertised devices, collects their
// initial events and releases them before returning.
func (p *Probe) inspectDevices(d *client.Display, seat *client.Seat, caps uint32, ctx *dispatch.Context) error {
	if caps&client.SeatCapabilityPointer != 0 {
		ptr, err := seat.GetPointer()
		if err != nil {
			return fmt.Errorf("probe: get pointer: %w", err)
		}
		owned := own.Acquire(ptr)
		defer owned.Release()
		if err := dispatch.BindPointer(ptr, ctx); err != nil {
			return err
		}
	}
	if caps&client.SeatCapabilityKeyboard != 0 {
		kb, err := seat.GetKeyboard()
		if err != nil {
			return fmt.Errorf("probe: get keyboard: %w", err)
		}
		owned := own.Acquire(kb)
		defer owned.Release()
		if err := dispatch.BindKeyboard(kb, ctx); err != nil {
			return err
		}
	}
	if caps&client.SeatCapabilityTouch != 0 {
		touch, err := seat.GetTouch()
		if err != nil {
			return fmt.Errorf("probe: get touch: %w", err)
		}
		owned := own.Acquire(touch)
		defer owned.Release()
		if err := dispatch.BindTouch(touch, ctx); err != nil {
			return err
		}
	}
	_, err := p.roundtrip(d, "devices")
	log.Debug().Str("seat", seat.String()).Uint32("capabilities", caps).Msg("probe.inspect device events collected")
	return err
}
