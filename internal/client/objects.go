package client

import (
	"fmt"

	"github.com/danmuck/wlprobe/internal/protocol"
	"github.com/danmuck/wlprobe/internal/wire"
)

// Seat capability bits from wl_seat.capabilities.
const (
	SeatCapabilityPointer  uint32 = 1
	SeatCapabilityKeyboard uint32 = 2
	SeatCapabilityTouch    uint32 = 4
)

type Registry struct{ Proxy }
type Callback struct{ Proxy }
type Compositor struct{ Proxy }
type ShmPool struct{ Proxy }
type Shm struct{ Proxy }
type Buffer struct{ Proxy }
type Surface struct{ Proxy }
type Seat struct{ Proxy }
type Pointer struct{ Proxy }
type Keyboard struct{ Proxy }
type Touch struct{ Proxy }
type Output struct{ Proxy }
type Shell struct{ Proxy }
type ShellSurface struct{ Proxy }

// Bind binds the global name as iface at version, capped at the version this
// client implements.
func (r *Registry) Bind(name uint32, iface *protocol.Interface, version uint32) (*Proxy, error) {
	ctor, ok := constructors[iface]
	if !ok {
		return nil, fmt.Errorf("client: %s cannot be bound from the registry", iface.Name)
	}
	version = min(version, iface.Version)
	if version == 0 {
		return nil, fmt.Errorf("%w: %s version 0", ErrVersion, iface.Name)
	}
	obj := ctor()
	child := obj.ProxyRef()
	r.conn.attach(child, obj, iface, version, r.conn.allocID())
	err := r.marshalConstructor(0, child,
		wire.Uint(name), wire.String(iface.Name), wire.Uint(version), wire.NewID(child.id))
	if err != nil {
		return nil, err
	}
	return child, nil
}

// BindGlobal binds the global name as T.
func BindGlobal[T Object](r *Registry, name uint32, version uint32) (T, error) {
	p, err := r.Bind(name, DescriptorOf[T](), version)
	if err != nil {
		var zero T
		return zero, err
	}
	obj, _ := r.conn.lookup(p.id)
	return obj.(T), nil
}

// CreateSurface asks the compositor for a new surface.
func (c *Compositor) CreateSurface() (*Surface, error) {
	s := &Surface{}
	child := c.newChild(s, &protocol.Surface)
	if err := c.marshalConstructor(0, child, wire.NewID(child.id)); err != nil {
		return nil, err
	}
	return s, nil
}

// CreatePool shares fd (size bytes) with the compositor. The caller keeps
// ownership of fd and may close it once the request was sent.
func (s *Shm) CreatePool(fd int, size int32) (*ShmPool, error) {
	pool := &ShmPool{}
	child := s.newChild(pool, &protocol.ShmPool)
	if err := s.marshalConstructor(0, child, wire.NewID(child.id), wire.FD(fd), wire.Int(size)); err != nil {
		return nil, err
	}
	return pool, nil
}

// CreateBuffer creates a buffer over a region of the pool.
func (p *ShmPool) CreateBuffer(offset, width, height, stride int32, format uint32) (*Buffer, error) {
	b := &Buffer{}
	child := p.newChild(b, &protocol.Buffer)
	err := p.marshalConstructor(0, child,
		wire.NewID(child.id), wire.Int(offset), wire.Int(width), wire.Int(height), wire.Int(stride), wire.Uint(format))
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (p *ShmPool) Resize(size int32) error {
	return p.marshal(2, wire.Int(size))
}

func (s *Surface) Attach(buffer *Buffer, x, y int32) error {
	id := uint32(0)
	if buffer != nil {
		id = buffer.id
	}
	return s.marshal(1, wire.Object(id), wire.Int(x), wire.Int(y))
}

func (s *Surface) Damage(x, y, width, height int32) error {
	return s.marshal(2, wire.Int(x), wire.Int(y), wire.Int(width), wire.Int(height))
}

// Frame requests a callback for the next frame.
func (s *Surface) Frame() (*Callback, error) {
	cb := &Callback{}
	child := s.newChild(cb, &protocol.Callback)
	if err := s.marshalConstructor(3, child, wire.NewID(child.id)); err != nil {
		return nil, err
	}
	return cb, nil
}

func (s *Surface) Commit() error {
	return s.marshal(6)
}

func (s *Seat) GetPointer() (*Pointer, error) {
	ptr := &Pointer{}
	child := s.newChild(ptr, &protocol.Pointer)
	if err := s.marshalConstructor(0, child, wire.NewID(child.id)); err != nil {
		return nil, err
	}
	return ptr, nil
}

func (s *Seat) GetKeyboard() (*Keyboard, error) {
	kb := &Keyboard{}
	child := s.newChild(kb, &protocol.Keyboard)
	if err := s.marshalConstructor(1, child, wire.NewID(child.id)); err != nil {
		return nil, err
	}
	return kb, nil
}

func (s *Seat) GetTouch() (*Touch, error) {
	t := &Touch{}
	child := s.newChild(t, &protocol.Touch)
	if err := s.marshalConstructor(2, child, wire.NewID(child.id)); err != nil {
		return nil, err
	}
	return t, nil
}

// SetCursor hides the cursor when surface is nil.
func (p *Pointer) SetCursor(serial uint32, surface *Surface, hotspotX, hotspotY int32) error {
	id := uint32(0)
	if surface != nil {
		id = surface.id
	}
	return p.marshal(0, wire.Uint(serial), wire.Object(id), wire.Int(hotspotX), wire.Int(hotspotY))
}

// Release sends wl_pointer.release and destroys the proxy.
func (p *Pointer) Release() error {
	return p.ReleaseRequest(protocol.Pointer.ReleaseOpcode)
}

// Release sends wl_keyboard.release and destroys the proxy.
func (k *Keyboard) Release() error {
	return k.ReleaseRequest(protocol.Keyboard.ReleaseOpcode)
}

// Release sends wl_touch.release and destroys the proxy.
func (t *Touch) Release() error {
	return t.ReleaseRequest(protocol.Touch.ReleaseOpcode)
}

func (s *Shell) GetShellSurface(surface *Surface) (*ShellSurface, error) {
	ss := &ShellSurface{}
	child := s.newChild(ss, &protocol.ShellSurface)
	if err := s.marshalConstructor(0, child, wire.NewID(child.id), wire.Object(surface.id)); err != nil {
		return nil, err
	}
	return ss, nil
}

func (s *ShellSurface) Pong(serial uint32) error {
	return s.marshal(0, wire.Uint(serial))
}

func (s *ShellSurface) SetToplevel() error {
	return s.marshal(3)
}

func (s *ShellSurface) SetTitle(title string) error {
	return s.marshal(8, wire.String(title))
}
