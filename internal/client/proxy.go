package client

import (
	"fmt"

	"github.com/danmuck/wlprobe/internal/protocol"
	"github.com/danmuck/wlprobe/internal/wire"
	"github.com/rs/zerolog/log"
)

// Proxy is the client-side state shared by every protocol object.
type Proxy struct {
	conn      *Conn
	id        uint32
	iface     *protocol.Interface
	version   uint32
	data      any
	dispatch  func(opcode uint16, args []wire.Argument)
	destroyed bool
	idDeleted bool
}

func (p *Proxy) ProxyRef() *Proxy {
	return p
}

func (p *Proxy) ID() uint32 {
	return p.id
}

func (p *Proxy) Interface() *protocol.Interface {
	return p.iface
}

func (p *Proxy) Version() uint32 {
	return p.version
}

func (p *Proxy) Conn() *Conn {
	return p.conn
}

// UserData returns the data registered with the listener.
func (p *Proxy) UserData() any {
	return p.data
}

func (p *Proxy) Destroyed() bool {
	return p.destroyed
}

func (p *Proxy) String() string {
	return fmt.Sprintf("%s@%d", p.iface.Name, p.id)
}

// Destroy drops the proxy client-side without sending a request. Later events
// addressed to it are discarded. Calling Destroy twice is a no-op.
func (p *Proxy) Destroy() {
	if p.destroyed {
		return
	}
	p.drop()
	log.Debug().Str("object", p.String()).Msg("client.Proxy destroyed")
	p.conn.notify(ObjectEvent{Type: ObjectDestroyed, ID: p.id, Interface: p.iface})
}

// ReleaseRequest sends the destructor request opcode and drops the proxy.
// When the bound version predates the request only the proxy is dropped.
// The proxy is dropped even if the write fails.
func (p *Proxy) ReleaseRequest(opcode uint16) error {
	if p.destroyed {
		return nil
	}
	req, ok := p.iface.Request(opcode)
	if !ok {
		p.Destroy()
		return fmt.Errorf("client: %s has no request opcode %d", p.iface.Name, opcode)
	}
	var err error
	if p.version >= req.Since {
		err = p.conn.send(p, opcode, nil)
	} else {
		log.Debug().
			Str("object", p.String()).
			Str("request", req.Name).
			Uint32("since", req.Since).
			Msg("client.Proxy release request predates bound version")
	}
	p.drop()
	log.Debug().Str("object", p.String()).Str("request", req.Name).Msg("client.Proxy released")
	p.conn.notify(ObjectEvent{Type: ObjectReleased, ID: p.id, Interface: p.iface})
	return err
}

func (p *Proxy) drop() {
	p.destroyed = true
	p.dispatch = nil
	p.conn.forget(p)
}

// setListener installs the typed trampoline for p. A proxy takes one
// listener for its whole lifetime.
func (p *Proxy) setListener(data any, fn func(opcode uint16, args []wire.Argument)) error {
	if p.destroyed {
		return ErrDestroyed
	}
	if p.dispatch != nil {
		return fmt.Errorf("%w: %s", ErrListenerSet, p)
	}
	p.data = data
	p.dispatch = fn
	return nil
}

func (p *Proxy) marshal(opcode uint16, args ...wire.Argument) error {
	if p.destroyed {
		return fmt.Errorf("%w: %s", ErrDestroyed, p)
	}
	return p.conn.send(p, opcode, args)
}

// newChild registers obj as a new object of iface on p's connection,
// inheriting p's version.
func (p *Proxy) newChild(obj object, iface *protocol.Interface) *Proxy {
	child := obj.ProxyRef()
	p.conn.attach(child, obj, iface, p.version, p.conn.allocID())
	return child
}

// marshalConstructor sends a request whose arguments carry child's id. On
// failure the child is destroyed again and its id is free at once, since the
// compositor never saw it.
func (p *Proxy) marshalConstructor(opcode uint16, child *Proxy, args ...wire.Argument) error {
	if err := p.marshal(opcode, args...); err != nil {
		child.idDeleted = true
		child.Destroy()
		return err
	}
	return nil
}
