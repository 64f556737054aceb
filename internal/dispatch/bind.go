package dispatch

import (
	"fmt"

	"github.com/danmuck/wlprobe/internal/client"
	"github.com/danmuck/wlprobe/internal/protocol"
	"github.com/danmuck/wlprobe/internal/wire"
)

// Bind installs the uniform listener on obj. Objects whose interface has no
// events fail with ErrNoEvents.
func Bind[T client.Object](obj T, ctx *Context) error {
	switch o := any(obj).(type) {
	case *client.Display:
		return BindDisplay(o, ctx)
	case *client.Registry:
		return BindRegistry(o, ctx)
	case *client.Callback:
		return BindCallback(o, ctx)
	case *client.Shm:
		return BindShm(o, ctx)
	case *client.Buffer:
		return BindBuffer(o, ctx)
	case *client.Surface:
		return BindSurface(o, ctx)
	case *client.Seat:
		return BindSeat(o, ctx)
	case *client.Pointer:
		return BindPointer(o, ctx)
	case *client.Keyboard:
		return BindKeyboard(o, ctx)
	case *client.Touch:
		return BindTouch(o, ctx)
	case *client.Output:
		return BindOutput(o, ctx)
	case *client.ShellSurface:
		return BindShellSurface(o, ctx)
	}
	return fmt.Errorf("%w: %s", ErrNoEvents, client.DescriptorOf[T]().Name)
}

func checkContext(ctx *Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func BindDisplay(d *client.Display, ctx *Context) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	sel := selectors(&protocol.Display)
	return d.AddListener(&client.DisplayListener{
		Error:    slot3[*client.Display, uint32, uint32, string](sel[0]),
		DeleteID: slot1[*client.Display, uint32](sel[1]),
	}, ctx)
}

func BindRegistry(r *client.Registry, ctx *Context) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	sel := selectors(&protocol.Registry)
	return r.AddListener(&client.RegistryListener{
		Global:       slot3[*client.Registry, uint32, string, uint32](sel[0]),
		GlobalRemove: slot1[*client.Registry, uint32](sel[1]),
	}, ctx)
}

func BindCallback(cb *client.Callback, ctx *Context) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	sel := selectors(&protocol.Callback)
	return cb.AddListener(&client.CallbackListener{
		Done: slot1[*client.Callback, uint32](sel[0]),
	}, ctx)
}

func BindShm(s *client.Shm, ctx *Context) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	sel := selectors(&protocol.Shm)
	return s.AddListener(&client.ShmListener{
		Format: slot1[*client.Shm, uint32](sel[0]),
	}, ctx)
}

func BindBuffer(b *client.Buffer, ctx *Context) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	sel := selectors(&protocol.Buffer)
	return b.AddListener(&client.BufferListener{
		Release: slot0[*client.Buffer](sel[0]),
	}, ctx)
}

func BindSurface(s *client.Surface, ctx *Context) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	sel := selectors(&protocol.Surface)
	return s.AddListener(&client.SurfaceListener{
		Enter:                    slot1[*client.Surface, *client.Output](sel[0]),
		Leave:                    slot1[*client.Surface, *client.Output](sel[1]),
		PreferredBufferScale:     slot1[*client.Surface, int32](sel[2]),
		PreferredBufferTransform: slot1[*client.Surface, uint32](sel[3]),
	}, ctx)
}

func BindSeat(s *client.Seat, ctx *Context) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	sel := selectors(&protocol.Seat)
	return s.AddListener(&client.SeatListener{
		Capabilities: slot1[*client.Seat, uint32](sel[0]),
		Name:         slot1[*client.Seat, string](sel[1]),
	}, ctx)
}

func BindPointer(p *client.Pointer, ctx *Context) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	sel := selectors(&protocol.Pointer)
	return p.AddListener(&client.PointerListener{
		Enter:                 slot4[*client.Pointer, uint32, *client.Surface, wire.Fixed, wire.Fixed](sel[0]),
		Leave:                 slot2[*client.Pointer, uint32, *client.Surface](sel[1]),
		Motion:                slot3[*client.Pointer, uint32, wire.Fixed, wire.Fixed](sel[2]),
		Button:                slot4[*client.Pointer, uint32, uint32, uint32, uint32](sel[3]),
		Axis:                  slot3[*client.Pointer, uint32, uint32, wire.Fixed](sel[4]),
		Frame:                 slot0[*client.Pointer](sel[5]),
		AxisSource:            slot1[*client.Pointer, uint32](sel[6]),
		AxisStop:              slot2[*client.Pointer, uint32, uint32](sel[7]),
		AxisDiscrete:          slot2[*client.Pointer, uint32, int32](sel[8]),
		AxisValue120:          slot2[*client.Pointer, uint32, int32](sel[9]),
		AxisRelativeDirection: slot2[*client.Pointer, uint32, uint32](sel[10]),
	}, ctx)
}

// BindKeyboard hands the keymap fd to the handler, which then owns it.
func BindKeyboard(k *client.Keyboard, ctx *Context) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	sel := selectors(&protocol.Keyboard)
	return k.AddListener(&client.KeyboardListener{
		Keymap:     slot3[*client.Keyboard, uint32, int, uint32](sel[0]),
		Enter:      slot3[*client.Keyboard, uint32, *client.Surface, []byte](sel[1]),
		Leave:      slot2[*client.Keyboard, uint32, *client.Surface](sel[2]),
		Key:        slot4[*client.Keyboard, uint32, uint32, uint32, uint32](sel[3]),
		Modifiers:  slot5[*client.Keyboard, uint32, uint32, uint32, uint32, uint32](sel[4]),
		RepeatInfo: slot2[*client.Keyboard, int32, int32](sel[5]),
	}, ctx)
}

func BindTouch(t *client.Touch, ctx *Context) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	sel := selectors(&protocol.Touch)
	return t.AddListener(&client.TouchListener{
		Down:        slot6[*client.Touch, uint32, uint32, *client.Surface, int32, wire.Fixed, wire.Fixed](sel[0]),
		Up:          slot3[*client.Touch, uint32, uint32, int32](sel[1]),
		Motion:      slot4[*client.Touch, uint32, int32, wire.Fixed, wire.Fixed](sel[2]),
		Frame:       slot0[*client.Touch](sel[3]),
		Cancel:      slot0[*client.Touch](sel[4]),
		Shape:       slot3[*client.Touch, int32, wire.Fixed, wire.Fixed](sel[5]),
		Orientation: slot2[*client.Touch, int32, wire.Fixed](sel[6]),
	}, ctx)
}

func BindOutput(o *client.Output, ctx *Context) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	sel := selectors(&protocol.Output)
	return o.AddListener(&client.OutputListener{
		Geometry:    slot8[*client.Output, int32, int32, int32, int32, int32, string, string, int32](sel[0]),
		Mode:        slot4[*client.Output, uint32, int32, int32, int32](sel[1]),
		Done:        slot0[*client.Output](sel[2]),
		Scale:       slot1[*client.Output, int32](sel[3]),
		Name:        slot1[*client.Output, string](sel[4]),
		Description: slot1[*client.Output, string](sel[5]),
	}, ctx)
}

func BindShellSurface(s *client.ShellSurface, ctx *Context) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	sel := selectors(&protocol.ShellSurface)
	return s.AddListener(&client.ShellSurfaceListener{
		Ping:      slot1[*client.ShellSurface, uint32](sel[0]),
		Configure: slot3[*client.ShellSurface, uint32, int32, int32](sel[1]),
		PopupDone: slot0[*client.ShellSurface](sel[2]),
	}, ctx)
}
