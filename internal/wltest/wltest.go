// Package wltest runs an in-process fake compositor for tests.
package wltest

import (
	"errors"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/danmuck/wlprobe/internal/protocol"
	"github.com/danmuck/wlprobe/internal/wire"
	"golang.org/x/sys/unix"
)

// Global is one advertised registry global.
type Global struct {
	Name      uint32
	Interface string
	Version   uint32
}

// Config shapes the fake compositor's behaviour.
type Config struct {
	Globals []Global
	// RemoveAfterAnnounce names globals withdrawn right after the announce.
	RemoveAfterAnnounce []uint32
	SeatCapabilities    uint32
	SeatName            string
}

// DefaultConfig advertises one global of the common interfaces.
func DefaultConfig() Config {
	return Config{
		Globals: []Global{
			{Name: 1, Interface: "wl_compositor", Version: 6},
			{Name: 2, Interface: "wl_shm", Version: 1},
			{Name: 3, Interface: "wl_seat", Version: 7},
			{Name: 4, Interface: "wl_output", Version: 4},
			{Name: 5, Interface: "wl_shell", Version: 1},
		},
		SeatCapabilities: 3,
		SeatName:         "seat0",
	}
}

// Request is one decoded client request.
type Request struct {
	ObjectID  uint32
	Interface string
	Name      string
	Args      []wire.Argument
}

func (r Request) String() string {
	return r.Interface + "." + r.Name
}

type Server struct {
	t    testing.TB
	cfg  Config
	path string
	ln   *net.UnixListener

	mu       sync.Mutex
	conn     *net.UnixConn
	requests []Request
	objects  map[uint32]*protocol.Interface
	pending  []wire.Message
	serial   uint32
	err      error

	done chan struct{}
}

// Start listens on a fresh socket under t.TempDir and serves one client.
func Start(t testing.TB, cfg Config) *Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wayland-test")
	ln, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		t.Fatalf("wltest: listen: %v", err)
	}
	s := &Server{
		t:       t,
		cfg:     cfg,
		path:    path,
		ln:      ln,
		objects: map[uint32]*protocol.Interface{1: &protocol.Display},
		done:    make(chan struct{}),
	}
	go s.serve()
	t.Cleanup(s.close)
	return s
}

// Path returns the socket path to pass as the display name.
func (s *Server) Path() string {
	return s.path
}

// Requests returns a snapshot of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Names returns the "interface.request" names received so far.
func (s *Server) Names() []string {
	reqs := s.Requests()
	out := make([]string, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.String())
	}
	return out
}

// Count returns how many requests named name were received.
func (s *Server) Count(name string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.String() == name {
			n++
		}
	}
	return n
}

// Inject queues an event that is sent before the next sync is answered.
func (s *Server) Inject(objectID uint32, opcode uint16, args ...wire.Argument) {
	msg, err := wire.Encode(objectID, opcode, args)
	if err != nil {
		s.t.Fatalf("wltest: encode injected event: %v", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, msg)
}

// ObjectID returns the id the client created for the first object of iface.
func (s *Server) ObjectID(iface string) (uint32, bool) {
	for _, r := range s.Requests() {
		for _, a := range r.Args {
			if a.Type != wire.ArgNewID {
				continue
			}
			s.mu.Lock()
			got, ok := s.objects[a.Object]
			s.mu.Unlock()
			if ok && got.Name == iface {
				return a.Object, true
			}
		}
	}
	return 0, false
}

// Wait blocks until the client hung up and returns the serve error, if any.
func (s *Server) Wait() error {
	select {
	case <-s.done:
	case <-time.After(5 * time.Second):
		return errors.New("wltest: timed out waiting for client disconnect")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Server) close() {
	s.ln.Close()
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.mu.Unlock()
	<-s.done
}

func (s *Server) serve() {
	defer close(s.done)
	conn, err := s.ln.AcceptUnix()
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	var in []byte
	var fds wire.FDQueue
	buf := make([]byte, 4096)
	oob := make([]byte, unix.CmsgSpace(wire.MaxFDsPerMessage*4))
	for {
		n, oobn, _, _, err := conn.ReadMsgUnix(buf, oob)
		if oobn > 0 {
			if msgs, perr := unix.ParseSocketControlMessage(oob[:oobn]); perr == nil {
				for i := range msgs {
					if got, rerr := unix.ParseUnixRights(&msgs[i]); rerr == nil {
						fds.Push(got...)
					}
				}
			}
		}
		if n > 0 {
			in = append(in, buf[:n]...)
		}
		for {
			h, payload, rest, ok, serr := wire.Split(in)
			if serr != nil {
				s.setErr(serr)
				return
			}
			if !ok {
				break
			}
			if herr := s.handle(h, payload, &fds); herr != nil {
				s.setErr(herr)
				return
			}
			in = rest
		}
		if err != nil || n <= 0 {
			if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) && !errors.Is(err, syscall.ECONNRESET) {
				s.setErr(err)
			}
			for _, fd := range fds.Drain() {
				unix.Close(fd)
			}
			return
		}
	}
}

func (s *Server) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *Server) handle(h wire.Header, payload []byte, fds *wire.FDQueue) error {
	s.mu.Lock()
	iface, ok := s.objects[h.ObjectID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("wltest: request for unknown object %d", h.ObjectID)
	}
	req, ok := iface.Request(h.Opcode)
	if !ok {
		return fmt.Errorf("wltest: %s has no request %d", iface.Name, h.Opcode)
	}
	args, err := wire.DecodeArgs(payload, req.Types(), fds)
	if err != nil {
		return fmt.Errorf("wltest: decode %s.%s: %w", iface.Name, req.Name, err)
	}
	for _, a := range args {
		if a.Type == wire.ArgFD {
			unix.Close(a.FD)
		}
	}
	s.mu.Lock()
	s.requests = append(s.requests, Request{ObjectID: h.ObjectID, Interface: iface.Name, Name: req.Name, Args: args})
	s.mu.Unlock()

	switch iface.Name + "." + req.Name {
	case "wl_display.sync":
		if err := s.flushPending(); err != nil {
			return err
		}
		s.serial++
		if err := s.send(args[0].Object, 0, wire.Uint(s.serial)); err != nil {
			return err
		}
		return s.send(1, 1, wire.Uint(args[0].Object))
	case "wl_display.get_registry":
		s.track(args[0].Object, &protocol.Registry)
		return s.announce(args[0].Object)
	case "wl_registry.bind":
		bound, ok := protocol.Lookup(args[1].Str)
		if !ok {
			return fmt.Errorf("wltest: bind of unknown interface %q", args[1].Str)
		}
		s.track(args[3].Object, bound)
		return s.onBind(args[3].Object, bound, args[2].Uint)
	case "wl_seat.get_pointer":
		s.track(args[0].Object, &protocol.Pointer)
	case "wl_seat.get_keyboard":
		s.track(args[0].Object, &protocol.Keyboard)
	case "wl_seat.get_touch":
		s.track(args[0].Object, &protocol.Touch)
	case "wl_compositor.create_surface":
		s.track(args[0].Object, &protocol.Surface)
	case "wl_shm.create_pool":
		s.track(args[0].Object, &protocol.ShmPool)
	case "wl_shell.get_shell_surface":
		s.track(args[0].Object, &protocol.ShellSurface)
	case "wl_keyboard.release", "wl_pointer.release", "wl_touch.release":
		s.untrack(h.ObjectID)
		return s.send(1, 1, wire.Uint(h.ObjectID))
	}
	return nil
}

func (s *Server) track(id uint32, iface *protocol.Interface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[id] = iface
}

func (s *Server) untrack(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, id)
}

func (s *Server) announce(registry uint32) error {
	for _, g := range s.cfg.Globals {
		if err := s.send(registry, 0, wire.Uint(g.Name), wire.String(g.Interface), wire.Uint(g.Version)); err != nil {
			return err
		}
	}
	for _, name := range s.cfg.RemoveAfterAnnounce {
		if err := s.send(registry, 1, wire.Uint(name)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) onBind(id uint32, iface *protocol.Interface, version uint32) error {
	switch iface.Name {
	case "wl_seat":
		if err := s.send(id, 0, wire.Uint(s.cfg.SeatCapabilities)); err != nil {
			return err
		}
		if version >= 2 {
			return s.send(id, 1, wire.String(s.cfg.SeatName))
		}
	case "wl_output":
		err := s.send(id, 0,
			wire.Int(0), wire.Int(0), wire.Int(600), wire.Int(340), wire.Int(0),
			wire.String("wltest"), wire.String("virtual-1"), wire.Int(0))
		if err != nil {
			return err
		}
		if err := s.send(id, 1, wire.Uint(3), wire.Int(1920), wire.Int(1080), wire.Int(60000)); err != nil {
			return err
		}
		if version >= 2 {
			if err := s.send(id, 3, wire.Int(1)); err != nil {
				return err
			}
		}
		if version >= 4 {
			if err := s.send(id, 4, wire.String("WL-1")); err != nil {
				return err
			}
		}
		if version >= 2 {
			return s.send(id, 2)
		}
	case "wl_shm":
		if err := s.send(id, 0, wire.Uint(0)); err != nil {
			return err
		}
		return s.send(id, 0, wire.Uint(1))
	}
	return nil
}

func (s *Server) flushPending() error {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, msg := range pending {
		if err := s.write(msg); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) send(objectID uint32, opcode uint16, args ...wire.Argument) error {
	msg, err := wire.Encode(objectID, opcode, args)
	if err != nil {
		return err
	}
	return s.write(msg)
}

func (s *Server) write(msg wire.Message) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	err := wire.WriteMessage(conn, msg)
	if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
		// the client hung up first
		return nil
	}
	return err
}
