// Package dispatch adapts the typed per-interface listener structures of the
// client runtime to one uniform handler.
//
// A Bind call installs a listener whose entry points all forward to the
// Handler held by a caller-owned Context, prefixed with the Selector of the
// event slot that fired. Delivery is synchronous and happens exactly once per
// event, in the order the runtime delivers them.
package dispatch

import (
	"errors"
	"fmt"

	"github.com/danmuck/wlprobe/internal/protocol"
)

var (
	ErrNilContext = errors.New("dispatch: nil context")
	ErrNoEvents   = errors.New("dispatch: interface has no events")
)

// Selector identifies one event slot of an interface.
type Selector struct {
	Interface string
	Index     int
	Name      string
}

func (s Selector) String() string {
	return s.Interface + "." + s.Name
}

// Handler receives every event of a bound object: the slot's selector, then
// the object that fired, then the event arguments in schema order.
type Handler func(sel Selector, args ...any)

// Context carries the handler for the lifetime of a registration. The caller
// keeps it alive; the adapter never copies or replaces it.
type Context struct {
	handler Handler
}

func NewContext(h Handler) *Context {
	return &Context{handler: h}
}

func (c *Context) Handler() Handler {
	return c.handler
}

func (c *Context) invoke(sel Selector, args ...any) {
	if c.handler == nil {
		return
	}
	c.handler(sel, args...)
}

// selectors returns one Selector per event of iface, in opcode order.
func selectors(iface *protocol.Interface) []Selector {
	out := make([]Selector, len(iface.Events))
	for i, ev := range iface.Events {
		out[i] = Selector{Interface: iface.Name, Index: i, Name: ev.Name}
	}
	return out
}

func contextOf(data any) *Context {
	ctx, ok := data.(*Context)
	if !ok {
		panic(fmt.Sprintf("dispatch: listener data is %T, not *dispatch.Context", data))
	}
	return ctx
}
