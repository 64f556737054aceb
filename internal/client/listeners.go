package client

import "github.com/danmuck/wlprobe/internal/wire"

// Listener structures mirror the per-interface event vtables: one func field
// per event slot in schema order. Each entry point receives the data value
// given to AddListener, the object that fired and the event arguments. Nil
// slots are skipped.

// objectArg resolves an object argument to its typed proxy; destroyed or
// foreign objects resolve to nil.
func objectArg[T any](c *Conn, a wire.Argument) T {
	var zero T
	if a.Null {
		return zero
	}
	obj, ok := c.lookup(a.Object)
	if !ok {
		return zero
	}
	typed, ok := obj.(T)
	if !ok {
		return zero
	}
	return typed
}

type DisplayListener struct {
	Error    func(data any, display *Display, objectID uint32, code uint32, message string)
	DeleteID func(data any, display *Display, id uint32)
}

func (d *Display) AddListener(l *DisplayListener, data any) error {
	return d.setListener(data, func(opcode uint16, args []wire.Argument) {
		switch opcode {
		case 0:
			if l.Error != nil {
				l.Error(d.data, d, args[0].Object, args[1].Uint, args[2].Str)
			}
		case 1:
			if l.DeleteID != nil {
				l.DeleteID(d.data, d, args[0].Uint)
			}
		}
	})
}

type RegistryListener struct {
	Global       func(data any, registry *Registry, name uint32, iface string, version uint32)
	GlobalRemove func(data any, registry *Registry, name uint32)
}

func (r *Registry) AddListener(l *RegistryListener, data any) error {
	return r.setListener(data, func(opcode uint16, args []wire.Argument) {
		switch opcode {
		case 0:
			if l.Global != nil {
				l.Global(r.data, r, args[0].Uint, args[1].Str, args[2].Uint)
			}
		case 1:
			if l.GlobalRemove != nil {
				l.GlobalRemove(r.data, r, args[0].Uint)
			}
		}
	})
}

type CallbackListener struct {
	Done func(data any, callback *Callback, callbackData uint32)
}

func (cb *Callback) AddListener(l *CallbackListener, data any) error {
	return cb.setListener(data, func(opcode uint16, args []wire.Argument) {
		if opcode == 0 && l.Done != nil {
			l.Done(cb.data, cb, args[0].Uint)
		}
	})
}

type ShmListener struct {
	Format func(data any, shm *Shm, format uint32)
}

func (s *Shm) AddListener(l *ShmListener, data any) error {
	return s.setListener(data, func(opcode uint16, args []wire.Argument) {
		if opcode == 0 && l.Format != nil {
			l.Format(s.data, s, args[0].Uint)
		}
	})
}

type BufferListener struct {
	Release func(data any, buffer *Buffer)
}

func (b *Buffer) AddListener(l *BufferListener, data any) error {
	return b.setListener(data, func(opcode uint16, args []wire.Argument) {
		if opcode == 0 && l.Release != nil {
			l.Release(b.data, b)
		}
	})
}

type SurfaceListener struct {
	Enter                    func(data any, surface *Surface, output *Output)
	Leave                    func(data any, surface *Surface, output *Output)
	PreferredBufferScale     func(data any, surface *Surface, factor int32)
	PreferredBufferTransform func(data any, surface *Surface, transform uint32)
}

func (s *Surface) AddListener(l *SurfaceListener, data any) error {
	return s.setListener(data, func(opcode uint16, args []wire.Argument) {
		switch opcode {
		case 0:
			if l.Enter != nil {
				l.Enter(s.data, s, objectArg[*Output](s.conn, args[0]))
			}
		case 1:
			if l.Leave != nil {
				l.Leave(s.data, s, objectArg[*Output](s.conn, args[0]))
			}
		case 2:
			if l.PreferredBufferScale != nil {
				l.PreferredBufferScale(s.data, s, args[0].Int)
			}
		case 3:
			if l.PreferredBufferTransform != nil {
				l.PreferredBufferTransform(s.data, s, args[0].Uint)
			}
		}
	})
}

type SeatListener struct {
	Capabilities func(data any, seat *Seat, capabilities uint32)
	Name         func(data any, seat *Seat, name string)
}

func (s *Seat) AddListener(l *SeatListener, data any) error {
	return s.setListener(data, func(opcode uint16, args []wire.Argument) {
		switch opcode {
		case 0:
			if l.Capabilities != nil {
				l.Capabilities(s.data, s, args[0].Uint)
			}
		case 1:
			if l.Name != nil {
				l.Name(s.data, s, args[0].Str)
			}
		}
	})
}

type PointerListener struct {
	Enter                 func(data any, pointer *Pointer, serial uint32, surface *Surface, surfaceX, surfaceY wire.Fixed)
	Leave                 func(data any, pointer *Pointer, serial uint32, surface *Surface)
	Motion                func(data any, pointer *Pointer, time uint32, surfaceX, surfaceY wire.Fixed)
	Button                func(data any, pointer *Pointer, serial, time, button, state uint32)
	Axis                  func(data any, pointer *Pointer, time, axis uint32, value wire.Fixed)
	Frame                 func(data any, pointer *Pointer)
	AxisSource            func(data any, pointer *Pointer, axisSource uint32)
	AxisStop              func(data any, pointer *Pointer, time, axis uint32)
	AxisDiscrete          func(data any, pointer *Pointer, axis uint32, discrete int32)
	AxisValue120          func(data any, pointer *Pointer, axis uint32, value120 int32)
	AxisRelativeDirection func(data any, pointer *Pointer, axis, direction uint32)
}

func (p *Pointer) AddListener(l *PointerListener, data any) error {
	return p.setListener(data, func(opcode uint16, args []wire.Argument) {
		switch opcode {
		case 0:
			if l.Enter != nil {
				l.Enter(p.data, p, args[0].Uint, objectArg[*Surface](p.conn, args[1]), args[2].Fixed, args[3].Fixed)
			}
		case 1:
			if l.Leave != nil {
				l.Leave(p.data, p, args[0].Uint, objectArg[*Surface](p.conn, args[1]))
			}
		case 2:
			if l.Motion != nil {
				l.Motion(p.data, p, args[0].Uint, args[1].Fixed, args[2].Fixed)
			}
		case 3:
			if l.Button != nil {
				l.Button(p.data, p, args[0].Uint, args[1].Uint, args[2].Uint, args[3].Uint)
			}
		case 4:
			if l.Axis != nil {
				l.Axis(p.data, p, args[0].Uint, args[1].Uint, args[2].Fixed)
			}
		case 5:
			if l.Frame != nil {
				l.Frame(p.data, p)
			}
		case 6:
			if l.AxisSource != nil {
				l.AxisSource(p.data, p, args[0].Uint)
			}
		case 7:
			if l.AxisStop != nil {
				l.AxisStop(p.data, p, args[0].Uint, args[1].Uint)
			}
		case 8:
			if l.AxisDiscrete != nil {
				l.AxisDiscrete(p.data, p, args[0].Uint, args[1].Int)
			}
		case 9:
			if l.AxisValue120 != nil {
				l.AxisValue120(p.data, p, args[0].Uint, args[1].Int)
			}
		case 10:
			if l.AxisRelativeDirection != nil {
				l.AxisRelativeDirection(p.data, p, args[0].Uint, args[1].Uint)
			}
		}
	})
}

// KeyboardListener.Keymap receives ownership of fd.
type KeyboardListener struct {
	Keymap     func(data any, keyboard *Keyboard, format uint32, fd int, size uint32)
	Enter      func(data any, keyboard *Keyboard, serial uint32, surface *Surface, keys []byte)
	Leave      func(data any, keyboard *Keyboard, serial uint32, surface *Surface)
	Key        func(data any, keyboard *Keyboard, serial, time, key, state uint32)
	Modifiers  func(data any, keyboard *Keyboard, serial, modsDepressed, modsLatched, modsLocked, group uint32)
	RepeatInfo func(data any, keyboard *Keyboard, rate, delay int32)
}

func (k *Keyboard) AddListener(l *KeyboardListener, data any) error {
	return k.setListener(data, func(opcode uint16, args []wire.Argument) {
		switch opcode {
		case 0:
			if l.Keymap != nil {
				l.Keymap(k.data, k, args[0].Uint, args[1].FD, args[2].Uint)
			} else {
				closeFDArgs(args)
			}
		case 1:
			if l.Enter != nil {
				l.Enter(k.data, k, args[0].Uint, objectArg[*Surface](k.conn, args[1]), args[2].Array)
			}
		case 2:
			if l.Leave != nil {
				l.Leave(k.data, k, args[0].Uint, objectArg[*Surface](k.conn, args[1]))
			}
		case 3:
			if l.Key != nil {
				l.Key(k.data, k, args[0].Uint, args[1].Uint, args[2].Uint, args[3].Uint)
			}
		case 4:
			if l.Modifiers != nil {
				l.Modifiers(k.data, k, args[0].Uint, args[1].Uint, args[2].Uint, args[3].Uint, args[4].Uint)
			}
		case 5:
			if l.RepeatInfo != nil {
				l.RepeatInfo(k.data, k, args[0].Int, args[1].Int)
			}
		}
	})
}

type TouchListener struct {
	Down        func(data any, touch *Touch, serial, time uint32, surface *Surface, id int32, x, y wire.Fixed)
	Up          func(data any, touch *Touch, serial, time uint32, id int32)
	Motion      func(data any, touch *Touch, time uint32, id int32, x, y wire.Fixed)
	Frame       func(data any, touch *Touch)
	Cancel      func(data any, touch *Touch)
	Shape       func(data any, touch *Touch, id int32, major, minor wire.Fixed)
	Orientation func(data any, touch *Touch, id int32, orientation wire.Fixed)
}

func (t *Touch) AddListener(l *TouchListener, data any) error {
	return t.setListener(data, func(opcode uint16, args []wire.Argument) {
		switch opcode {
		case 0:
			if l.Down != nil {
				l.Down(t.data, t, args[0].Uint, args[1].Uint, objectArg[*Surface](t.conn, args[2]), args[3].Int, args[4].Fixed, args[5].Fixed)
			}
		case 1:
			if l.Up != nil {
				l.Up(t.data, t, args[0].Uint, args[1].Uint, args[2].Int)
			}
		case 2:
			if l.Motion != nil {
				l.Motion(t.data, t, args[0].Uint, args[1].Int, args[2].Fixed, args[3].Fixed)
			}
		case 3:
			if l.Frame != nil {
				l.Frame(t.data, t)
			}
		case 4:
			if l.Cancel != nil {
				l.Cancel(t.data, t)
			}
		case 5:
			if l.Shape != nil {
				l.Shape(t.data, t, args[0].Int, args[1].Fixed, args[2].Fixed)
			}
		case 6:
			if l.Orientation != nil {
				l.Orientation(t.data, t, args[0].Int, args[1].Fixed)
			}
		}
	})
}

type OutputListener struct {
	Geometry    func(data any, output *Output, x, y, physicalWidth, physicalHeight, subpixel int32, make, model string, transform int32)
	Mode        func(data any, output *Output, flags uint32, width, height, refresh int32)
	Done        func(data any, output *Output)
	Scale       func(data any, output *Output, factor int32)
	Name        func(data any, output *Output, name string)
	Description func(data any, output *Output, description string)
}

func (o *Output) AddListener(l *OutputListener, data any) error {
	return o.setListener(data, func(opcode uint16, args []wire.Argument) {
		switch opcode {
		case 0:
			if l.Geometry != nil {
				l.Geometry(o.data, o, args[0].Int, args[1].Int, args[2].Int, args[3].Int, args[4].Int, args[5].Str, args[6].Str, args[7].Int)
			}
		case 1:
			if l.Mode != nil {
				l.Mode(o.data, o, args[0].Uint, args[1].Int, args[2].Int, args[3].Int)
			}
		case 2:
			if l.Done != nil {
				l.Done(o.data, o)
			}
		case 3:
			if l.Scale != nil {
				l.Scale(o.data, o, args[0].Int)
			}
		case 4:
			if l.Name != nil {
				l.Name(o.data, o, args[0].Str)
			}
		case 5:
			if l.Description != nil {
				l.Description(o.data, o, args[0].Str)
			}
		}
	})
}

type ShellSurfaceListener struct {
	Ping      func(data any, shellSurface *ShellSurface, serial uint32)
	Configure func(data any, shellSurface *ShellSurface, edges uint32, width, height int32)
	PopupDone func(data any, shellSurface *ShellSurface)
}

func (s *ShellSurface) AddListener(l *ShellSurfaceListener, data any) error {
	return s.setListener(data, func(opcode uint16, args []wire.Argument) {
		switch opcode {
		case 0:
			if l.Ping != nil {
				l.Ping(s.data, s, args[0].Uint)
			}
		case 1:
			if l.Configure != nil {
				l.Configure(s.data, s, args[0].Uint, args[1].Int, args[2].Int)
			}
		case 2:
			if l.PopupDone != nil {
				l.PopupDone(s.data, s)
			}
		}
	})
}
