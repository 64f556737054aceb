package client

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/danmuck/wlprobe/internal/protocol"
	"github.com/danmuck/wlprobe/internal/wire"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

const (
	displayID  uint32 = 1
	firstDynID uint32 = 2
	readChunk         = 4096
)

// object is implemented by every typed proxy.
type object interface {
	ProxyRef() *Proxy
}

// Conn is the client side of one compositor connection.
type Conn struct {
	uc          *net.UnixConn
	socket      string
	readTimeout time.Duration

	in  []byte
	fds wire.FDQueue

	objects map[uint32]object
	// zombies are ids destroyed client-side whose delete_id is pending.
	zombies map[uint32]*protocol.Interface
	free    []uint32
	nextID  uint32

	observers []Observer
	metrics   Metrics
	err       error
	closed    bool
}

func newConn(uc *net.UnixConn, socket string, opts Options) *Conn {
	return &Conn{
		uc:          uc,
		socket:      socket,
		readTimeout: opts.ReadTimeout,
		in:          make([]byte, 0, readChunk),
		objects:     make(map[uint32]object),
		zombies:     make(map[uint32]*protocol.Interface),
		nextID:      firstDynID,
		observers:   append([]Observer(nil), opts.Observers...),
		metrics:     opts.Metrics,
	}
}

// Socket returns the resolved socket description.
func (c *Conn) Socket() string {
	return c.socket
}

// Subscribe adds a lifecycle observer.
func (c *Conn) Subscribe(o Observer) {
	c.observers = append(c.observers, o)
}

// Len returns the number of live client objects, including the display.
func (c *Conn) Len() int {
	return len(c.objects)
}

func (c *Conn) notify(e ObjectEvent) {
	for _, o := range c.observers {
		o.OnObjectEvent(e)
	}
}

func (c *Conn) allocID() uint32 {
	if n := len(c.free); n > 0 {
		id := c.free[n-1]
		c.free = c.free[:n-1]
		return id
	}
	id := c.nextID
	c.nextID++
	return id
}

// attach initialises p as a new object of iface and records obj under its id.
func (c *Conn) attach(p *Proxy, obj object, iface *protocol.Interface, version uint32, id uint32) {
	p.conn = c
	p.id = id
	p.iface = iface
	p.version = version
	c.objects[id] = obj
	c.notify(ObjectEvent{Type: ObjectCreated, ID: id, Interface: iface})
}

func (c *Conn) lookup(id uint32) (object, bool) {
	obj, ok := c.objects[id]
	return obj, ok
}

// forget moves a destroyed proxy out of the dispatch path.
func (c *Conn) forget(p *Proxy) {
	delete(c.objects, p.id)
	if p.idDeleted {
		c.free = append(c.free, p.id)
		return
	}
	c.zombies[p.id] = p.iface
}

func (c *Conn) deleteID(id uint32) {
	if _, ok := c.zombies[id]; ok {
		delete(c.zombies, id)
		c.free = append(c.free, id)
		return
	}
	if obj, ok := c.objects[id]; ok {
		obj.ProxyRef().idDeleted = true
		return
	}
	log.Warn().Uint32("id", id).Msg("client.deleteID unknown id")
}

func (c *Conn) send(p *Proxy, opcode uint16, args []wire.Argument) error {
	if c.closed {
		return ErrClosed
	}
	if c.err != nil {
		return c.err
	}
	req, ok := p.iface.Request(opcode)
	if !ok {
		return fmt.Errorf("client: %s has no request opcode %d", p.iface.Name, opcode)
	}
	if p.version < req.Since {
		return fmt.Errorf("%w: %s.%s since=%d bound=%d", ErrVersion, p.iface.Name, req.Name, req.Since, p.version)
	}
	if err := protocol.ValidateArgs(p.iface, req, args); err != nil {
		return err
	}
	msg, err := wire.Encode(p.id, opcode, args)
	if err != nil {
		return err
	}
	c.trace(true, p.iface, p.id, req, args)
	var oob []byte
	if len(msg.Fds) > 0 {
		oob = unix.UnixRights(msg.Fds...)
	}
	if _, _, err := c.uc.WriteMsgUnix(msg.Bytes(), oob, nil); err != nil {
		return c.fail(fmt.Errorf("client: write %s.%s: %w", p.iface.Name, req.Name, err))
	}
	if c.metrics != nil {
		c.metrics.MessageSent(p.iface.Name, req.Name)
	}
	return nil
}

func (c *Conn) fail(err error) error {
	if c.err == nil {
		c.err = err
	}
	return c.err
}

// read performs one blocking socket read and queues bytes and fds.
func (c *Conn) read() error {
	if c.readTimeout > 0 {
		if err := c.uc.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return c.fail(err)
		}
	}
	buf := make([]byte, readChunk)
	oob := make([]byte, unix.CmsgSpace(wire.MaxFDsPerMessage*4))
	n, oobn, _, _, err := c.uc.ReadMsgUnix(buf, oob)
	if err != nil {
		return c.fail(fmt.Errorf("client: read: %w", err))
	}
	if oobn > 0 {
		fds, err := parseRights(oob[:oobn])
		if err != nil {
			return c.fail(err)
		}
		c.fds.Push(fds...)
	}
	if n == 0 {
		return c.fail(fmt.Errorf("client: read: %w", ErrClosed))
	}
	c.in = append(c.in, buf[:n]...)
	return nil
}

func parseRights(oob []byte) ([]int, error) {
	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return nil, fmt.Errorf("client: parse control message: %w", err)
	}
	out := make([]int, 0)
	for i := range msgs {
		fds, err := unix.ParseUnixRights(&msgs[i])
		if err != nil {
			continue
		}
		out = append(out, fds...)
	}
	return out, nil
}

// dispatchPending dispatches every complete buffered message and returns the
// number of events delivered to listeners.
func (c *Conn) dispatchPending() (int, error) {
	count := 0
	for c.err == nil {
		h, payload, rest, ok, err := wire.Split(c.in)
		if err != nil {
			return count, c.fail(err)
		}
		if !ok {
			break
		}
		delivered, err := c.dispatchMessage(h, payload)
		if delivered {
			count++
		}
		if err != nil {
			return count, c.fail(err)
		}
		c.in = rest
	}
	return count, c.err
}

func (c *Conn) dispatchMessage(h wire.Header, payload []byte) (bool, error) {
	if iface, ok := c.zombies[h.ObjectID]; ok {
		return false, c.dropEvent(iface, h, payload)
	}
	obj, ok := c.lookup(h.ObjectID)
	if !ok {
		log.Warn().Uint32("id", h.ObjectID).Uint16("opcode", h.Opcode).Msg("client.dispatch unknown object, discarding")
		return false, nil
	}
	p := obj.ProxyRef()
	ev, ok := p.iface.Event(h.Opcode)
	if !ok {
		return false, fmt.Errorf("%w: %s@%d opcode=%d", ErrUnknownOpcode, p.iface.Name, p.id, h.Opcode)
	}
	for _, a := range ev.Args {
		if a.Type == wire.ArgNewID {
			return false, fmt.Errorf("%w: %s.%s", ErrUnsupportedNew, p.iface.Name, ev.Name)
		}
	}
	args, err := wire.DecodeArgs(payload, ev.Types(), &c.fds)
	if err != nil {
		return false, fmt.Errorf("client: decode %s.%s: %w", p.iface.Name, ev.Name, err)
	}
	if err := protocol.ValidateArgs(p.iface, ev, args); err != nil {
		return false, err
	}
	c.trace(false, p.iface, p.id, ev, args)
	if c.metrics != nil {
		c.metrics.MessageReceived(p.iface.Name, ev.Name)
	}
	// display events reach the listener before a protocol error is returned
	var derr error
	if p.id == displayID {
		derr = c.handleDisplayEvent(h.Opcode, args)
	}
	if p.dispatch == nil {
		closeFDArgs(args)
		return false, derr
	}
	p.dispatch(h.Opcode, args)
	return true, derr
}

// dropEvent discards an event for a zombie, closing any fds it carried.
func (c *Conn) dropEvent(iface *protocol.Interface, h wire.Header, payload []byte) error {
	ev, ok := iface.Event(h.Opcode)
	if !ok {
		return nil
	}
	for _, a := range ev.Args {
		if a.Type != wire.ArgFD {
			continue
		}
		if fd, ok := c.fds.NextFD(); ok {
			unix.Close(fd)
		}
	}
	log.Trace().Str("interface", iface.Name).Uint32("id", h.ObjectID).Str("event", ev.Name).Msg("client.dispatch dropped event for destroyed object")
	return nil
}

func closeFDArgs(args []wire.Argument) {
	for _, a := range args {
		if a.Type == wire.ArgFD {
			unix.Close(a.FD)
		}
	}
}

func (c *Conn) handleDisplayEvent(opcode uint16, args []wire.Argument) error {
	switch opcode {
	case 0:
		perr := &ProtocolError{ObjectID: args[0].Object, Code: args[1].Uint, Message: args[2].Str}
		if obj, ok := c.lookup(perr.ObjectID); ok {
			perr.Interface = obj.ProxyRef().iface.Name
		} else if iface, ok := c.zombies[perr.ObjectID]; ok {
			perr.Interface = iface.Name
		} else {
			perr.Interface = "[unknown]"
		}
		log.Error().Err(perr).Msg("client.dispatch display error")
		return perr
	case 1:
		c.deleteID(args[0].Uint)
	}
	return nil
}

func (c *Conn) close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	for _, fd := range c.fds.Drain() {
		unix.Close(fd)
	}
	err := c.uc.Close()
	if errors.Is(err, syscall.EBADF) {
		err = nil
	}
	return err
}

func (c *Conn) trace(out bool, iface *protocol.Interface, id uint32, m protocol.Message, args []wire.Argument) {
	e := log.Trace()
	if !e.Enabled() {
		return
	}
	dir := ""
	if out {
		dir = " -> "
	}
	e.Msgf("%s%s@%d.%s(%s)", dir, iface.Name, id, m.Name, traceArgs(m, args))
}

func traceArgs(m protocol.Message, args []wire.Argument) string {
	parts := make([]string, 0, len(args))
	schema := expandedArgs(m)
	for i, a := range args {
		var want protocol.Arg
		if i < len(schema) {
			want = schema[i]
		}
		switch a.Type {
		case wire.ArgInt:
			parts = append(parts, fmt.Sprintf("%d", a.Int))
		case wire.ArgUint:
			parts = append(parts, fmt.Sprintf("%d", a.Uint))
		case wire.ArgFixed:
			parts = append(parts, a.Fixed.String())
		case wire.ArgString:
			if a.Null {
				parts = append(parts, "nil")
			} else {
				parts = append(parts, fmt.Sprintf("%q", a.Str))
			}
		case wire.ArgObject:
			if a.Null {
				parts = append(parts, "nil")
			} else {
				parts = append(parts, fmt.Sprintf("%s@%d", ifaceOrUnknown(want.Interface), a.Object))
			}
		case wire.ArgNewID:
			name := want.Interface
			if name == "" && i >= 2 {
				name = args[i-2].Str
			}
			parts = append(parts, fmt.Sprintf("new id %s@%d", ifaceOrUnknown(name), a.Object))
		case wire.ArgArray:
			parts = append(parts, fmt.Sprintf("array[%d]", len(a.Array)))
		case wire.ArgFD:
			parts = append(parts, fmt.Sprintf("fd %d", a.FD))
		}
	}
	return strings.Join(parts, ", ")
}

func ifaceOrUnknown(name string) string {
	if name == "" {
		return "[unknown]"
	}
	return name
}

// expandedArgs lines schema args up with wire args for untyped new_id.
func expandedArgs(m protocol.Message) []protocol.Arg {
	out := make([]protocol.Arg, 0, len(m.Args))
	for _, a := range m.Args {
		if a.Type == wire.ArgNewID && a.Interface == "" {
			out = append(out,
				protocol.Arg{Name: "interface", Type: wire.ArgString},
				protocol.Arg{Name: "version", Type: wire.ArgUint})
		}
		out = append(out, a)
	}
	return out
}
