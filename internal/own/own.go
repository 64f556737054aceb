// Package own holds exclusive ownership of protocol objects and tears each
// one down exactly once with the rule its interface requires.
package own

import (
	"github.com/danmuck/wlprobe/internal/client"
	"github.com/danmuck/wlprobe/internal/protocol"
	"github.com/rs/zerolog/log"
)

// noCopy makes go vet's copylocks check reject copies of Owned.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Owned is the exclusive owner of one protocol object. It is used through a
// pointer; ownership changes hands only through Move.
type Owned[T client.Object] struct {
	_     noCopy
	raw   T
	desc  *protocol.Interface
	owned bool
}

// Acquire takes ownership of raw. A nil raw yields an empty wrapper.
func Acquire[T client.Object](raw T) *Owned[T] {
	o := &Owned[T]{desc: client.DescriptorOf[T]()}
	if client.IsNil(raw) {
		return o
	}
	o.raw = raw
	o.owned = true
	return o
}

// Move transfers ownership to a new wrapper and leaves o empty. Moving from
// a nil wrapper yields an empty one.
func (o *Owned[T]) Move() *Owned[T] {
	if o == nil {
		return &Owned[T]{desc: client.DescriptorOf[T]()}
	}
	dst := &Owned[T]{desc: o.desc, raw: o.raw, owned: o.owned}
	var zero T
	o.raw = zero
	o.owned = false
	return dst
}

// Valid reports whether o currently owns an object.
func (o *Owned[T]) Valid() bool {
	return o != nil && o.owned
}

// Get returns the owned object without giving up ownership. It is nil for an
// empty or nil wrapper.
func (o *Owned[T]) Get() T {
	if o == nil {
		var zero T
		return zero
	}
	return o.raw
}

// Interface returns the descriptor of T.
func (o *Owned[T]) Interface() *protocol.Interface {
	if o == nil {
		return client.DescriptorOf[T]()
	}
	return o.desc
}

// Release tears the object down and leaves o empty. Releasing an empty
// wrapper does nothing. Teardown failures are logged, not returned.
func (o *Owned[T]) Release() {
	if !o.Valid() {
		return
	}
	raw := o.raw
	var zero T
	o.raw = zero
	o.owned = false

	p := raw.ProxyRef()
	var err error
	switch o.desc.Teardown {
	case protocol.TeardownDisconnect:
		err = any(raw).(*client.Display).Disconnect()
	case protocol.TeardownRelease:
		err = p.ReleaseRequest(o.desc.ReleaseOpcode)
	default:
		p.Destroy()
	}
	if err != nil {
		log.Debug().Err(err).Str("object", p.String()).Str("teardown", o.desc.Teardown.String()).Msg("own.Release teardown failed")
	}
}
