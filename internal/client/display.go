package client

import (
	"github.com/danmuck/wlprobe/internal/protocol"
	"github.com/danmuck/wlprobe/internal/wire"
	"github.com/rs/zerolog/log"
)

// Display is the wl_display singleton and owns the connection.
type Display struct {
	Proxy
}

// Connect opens a connection to the compositor. It fails with a
// *ConnectionError when no connection can be produced; there is no retry.
func Connect(opts Options) (*Display, error) {
	uc, socket, err := dialSocket(opts)
	if err != nil {
		return nil, &ConnectionError{Socket: socket, Err: err}
	}
	c := newConn(uc, socket, opts)
	d := &Display{}
	c.attach(&d.Proxy, d, &protocol.Display, protocol.Display.Version, displayID)
	log.Debug().Str("socket", socket).Msg("client.Connect connected")
	return d, nil
}

// Disconnect closes the connection. Proxies created on it become unusable.
// Calling Disconnect twice is a no-op.
func (d *Display) Disconnect() error {
	c := d.conn
	if c.closed {
		return nil
	}
	err := c.close()
	d.destroyed = true
	d.dispatch = nil
	log.Debug().Str("socket", c.socket).Msg("client.Display disconnected")
	c.notify(ObjectEvent{Type: ConnectionClosed, ID: d.id, Interface: d.iface})
	return err
}

// Closed reports whether Disconnect has run.
func (d *Display) Closed() bool {
	return d.conn.closed
}

// Err returns the fatal connection error, if any.
func (d *Display) Err() error {
	return d.conn.err
}

// Sync requests a wl_callback that is done once every prior request has
// been processed.
func (d *Display) Sync() (*Callback, error) {
	cb := &Callback{}
	child := d.newChild(cb, &protocol.Callback)
	if err := d.marshalConstructor(0, child, wire.NewID(child.id)); err != nil {
		return nil, err
	}
	return cb, nil
}

// GetRegistry creates the global registry object.
func (d *Display) GetRegistry() (*Registry, error) {
	r := &Registry{}
	child := d.newChild(r, &protocol.Registry)
	if err := d.marshalConstructor(1, child, wire.NewID(child.id)); err != nil {
		return nil, err
	}
	return r, nil
}

// DispatchPending delivers buffered events without reading the socket.
func (d *Display) DispatchPending() (int, error) {
	if d.conn.closed {
		return 0, ErrClosed
	}
	return d.conn.dispatchPending()
}

// Dispatch delivers buffered events, blocking for one socket read when none
// are buffered.
func (d *Display) Dispatch() (int, error) {
	n, err := d.DispatchPending()
	if err != nil || n > 0 {
		return n, err
	}
	if err := d.conn.read(); err != nil {
		return 0, err
	}
	return d.conn.dispatchPending()
}

// Roundtrip blocks until the compositor has processed every request sent so
// far, dispatching events as they arrive. It returns the number of events
// delivered to listeners.
func (d *Display) Roundtrip() (int, error) {
	cb, err := d.Sync()
	if err != nil {
		return 0, err
	}
	done := false
	err = cb.AddListener(&CallbackListener{
		Done: func(data any, cb *Callback, serial uint32) {
			*data.(*bool) = true
			cb.Destroy()
		},
	}, &done)
	if err != nil {
		cb.Destroy()
		return 0, err
	}
	total := 0
	for !done {
		n, err := d.Dispatch()
		total += n
		if err != nil {
			if !cb.destroyed {
				cb.Destroy()
			}
			return total, err
		}
	}
	// the sync callback itself is not counted
	return total - 1, nil
}
