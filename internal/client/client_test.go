package client

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/danmuck/wlprobe/internal/protocol"
	"github.com/danmuck/wlprobe/internal/testutil/testlog"
	"github.com/danmuck/wlprobe/internal/wire"
	"github.com/danmuck/wlprobe/internal/wltest"
	"golang.org/x/sys/unix"
)

func connectTest(t *testing.T, cfg wltest.Config) (*Display, *wltest.Server) {
	t.Helper()
	srv := wltest.Start(t, cfg)
	d, err := Connect(Options{Name: srv.Path()})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = d.Disconnect() })
	return d, srv
}

type globalsRecorder struct {
	names   []uint32
	ifaces  []string
	removed []uint32
}

func (g *globalsRecorder) listener() *RegistryListener {
	return &RegistryListener{
		Global: func(data any, r *Registry, name uint32, iface string, version uint32) {
			rec := data.(*globalsRecorder)
			rec.names = append(rec.names, name)
			rec.ifaces = append(rec.ifaces, iface)
		},
		GlobalRemove: func(data any, r *Registry, name uint32) {
			rec := data.(*globalsRecorder)
			rec.removed = append(rec.removed, name)
		},
	}
}

func TestSocketPathResolution(t *testing.T) {
	testlog.Start(t)
	t.Setenv(EnvRuntimeDir, "/run/user/1000")
	t.Setenv(EnvWaylandDisplay, "")
	got, err := SocketPath("")
	if err != nil || got != "/run/user/1000/wayland-0" {
		t.Fatalf("default socket: got=%q err=%v", got, err)
	}
	t.Setenv(EnvWaylandDisplay, "wayland-7")
	if got, _ := SocketPath(""); got != "/run/user/1000/wayland-7" {
		t.Fatalf("WAYLAND_DISPLAY socket: %q", got)
	}
	if got, _ := SocketPath("wayland-2"); got != "/run/user/1000/wayland-2" {
		t.Fatalf("explicit name socket: %q", got)
	}
	if got, _ := SocketPath("/tmp/custom.sock"); got != "/tmp/custom.sock" {
		t.Fatalf("absolute socket: %q", got)
	}
	t.Setenv(EnvRuntimeDir, "")
	if _, err := SocketPath("wayland-1"); !errors.Is(err, ErrNoRuntimeDir) {
		t.Fatalf("expected ErrNoRuntimeDir, got %v", err)
	}
}

func TestConnectFailureIsConnectionError(t *testing.T) {
	testlog.Start(t)
	missing := filepath.Join(t.TempDir(), "no-such-socket")
	d, err := Connect(Options{Name: missing})
	if d != nil {
		t.Fatalf("expected no display on failed connect")
	}
	var cerr *ConnectionError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConnectionError, got %T %v", err, err)
	}
	if cerr.Socket != missing {
		t.Fatalf("unexpected socket in error: %q", cerr.Socket)
	}
}

func TestRoundtripDeliversGlobalsInOrder(t *testing.T) {
	testlog.Start(t)
	cfg := wltest.DefaultConfig()
	cfg.RemoveAfterAnnounce = []uint32{5}
	d, _ := connectTest(t, cfg)
	reg, err := d.GetRegistry()
	if err != nil {
		t.Fatalf("get registry: %v", err)
	}
	rec := &globalsRecorder{}
	if err := reg.AddListener(rec.listener(), rec); err != nil {
		t.Fatalf("add listener: %v", err)
	}
	n, err := d.Roundtrip()
	if err != nil {
		t.Fatalf("roundtrip: %v", err)
	}
	if n != 6 {
		t.Fatalf("unexpected delivered count: %d", n)
	}
	want := []string{"wl_compositor", "wl_shm", "wl_seat", "wl_output", "wl_shell"}
	if len(rec.ifaces) != len(want) {
		t.Fatalf("globals: got=%v want=%v", rec.ifaces, want)
	}
	for i := range want {
		if rec.ifaces[i] != want[i] || rec.names[i] != uint32(i+1) {
			t.Fatalf("global[%d]: got=%s/%d", i, rec.ifaces[i], rec.names[i])
		}
	}
	if len(rec.removed) != 1 || rec.removed[0] != 5 {
		t.Fatalf("removed: %v", rec.removed)
	}
}

func TestAddListenerTwiceFails(t *testing.T) {
	testlog.Start(t)
	d, _ := connectTest(t, wltest.DefaultConfig())
	reg, err := d.GetRegistry()
	if err != nil {
		t.Fatalf("get registry: %v", err)
	}
	if err := reg.AddListener(&RegistryListener{}, nil); err != nil {
		t.Fatalf("first listener: %v", err)
	}
	if err := reg.AddListener(&RegistryListener{}, nil); !errors.Is(err, ErrListenerSet) {
		t.Fatalf("expected ErrListenerSet, got %v", err)
	}
}

func TestBindGlobalTypedAndVersionCapped(t *testing.T) {
	testlog.Start(t)
	cfg := wltest.DefaultConfig()
	cfg.Globals = append(cfg.Globals, wltest.Global{Name: 9, Interface: "wl_seat", Version: 42})
	d, srv := connectTest(t, cfg)
	reg, err := d.GetRegistry()
	if err != nil {
		t.Fatalf("get registry: %v", err)
	}
	seat, err := BindGlobal[*Seat](reg, 9, 42)
	if err != nil {
		t.Fatalf("bind seat: %v", err)
	}
	if seat.Version() != protocol.Seat.Version {
		t.Fatalf("version not capped: %d", seat.Version())
	}
	var caps uint32
	var name string
	err = seat.AddListener(&SeatListener{
		Capabilities: func(data any, s *Seat, c uint32) { caps = c },
		Name:         func(data any, s *Seat, n string) { name = n },
	}, nil)
	if err != nil {
		t.Fatalf("seat listener: %v", err)
	}
	if _, err := d.Roundtrip(); err != nil {
		t.Fatalf("roundtrip: %v", err)
	}
	if caps != 3 || name != "seat0" {
		t.Fatalf("seat events: caps=%d name=%q", caps, name)
	}
	reqs := srv.Requests()
	bind := reqs[1]
	if bind.String() != "wl_registry.bind" || bind.Args[1].Str != "wl_seat" || bind.Args[2].Uint != protocol.Seat.Version {
		t.Fatalf("unexpected bind request: %+v", bind)
	}
}

func TestEventsForDestroyedProxyAreDropped(t *testing.T) {
	testlog.Start(t)
	d, srv := connectTest(t, wltest.DefaultConfig())
	reg, err := d.GetRegistry()
	if err != nil {
		t.Fatalf("get registry: %v", err)
	}
	seat, err := BindGlobal[*Seat](reg, 3, 7)
	if err != nil {
		t.Fatalf("bind seat: %v", err)
	}
	calls := 0
	err = seat.AddListener(&SeatListener{
		Capabilities: func(data any, s *Seat, c uint32) { calls++ },
	}, nil)
	if err != nil {
		t.Fatalf("seat listener: %v", err)
	}
	if _, err := d.Roundtrip(); err != nil {
		t.Fatalf("first roundtrip: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one capabilities event, got %d", calls)
	}
	seat.Destroy()
	srv.Inject(seat.ID(), 0, wire.Uint(7))
	if _, err := d.Roundtrip(); err != nil {
		t.Fatalf("second roundtrip: %v", err)
	}
	if calls != 1 {
		t.Fatalf("event dispatched after destroy: calls=%d", calls)
	}
	if !seat.Destroyed() {
		t.Fatalf("seat should report destroyed")
	}
}

func TestProtocolErrorSurfaces(t *testing.T) {
	testlog.Start(t)
	d, srv := connectTest(t, wltest.DefaultConfig())
	reg, err := d.GetRegistry()
	if err != nil {
		t.Fatalf("get registry: %v", err)
	}
	srv.Inject(1, 0, wire.Object(reg.ID()), wire.Uint(3), wire.String("bad bind"))
	_, err = d.Roundtrip()
	var perr *ProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
	if perr.Interface != "wl_registry" || perr.Code != 3 || perr.Message != "bad bind" {
		t.Fatalf("unexpected protocol error: %+v", perr)
	}
	if !errors.Is(d.Err(), err) {
		t.Fatalf("display error not sticky: %v", d.Err())
	}
	if _, err := d.GetRegistry(); err == nil {
		t.Fatalf("requests must fail after a protocol error")
	}
}

func TestCallbackIDIsRecycledAfterDeleteID(t *testing.T) {
	testlog.Start(t)
	d, _ := connectTest(t, wltest.DefaultConfig())
	for i := 0; i < 5; i++ {
		if _, err := d.Roundtrip(); err != nil {
			t.Fatalf("roundtrip %d: %v", i, err)
		}
	}
	before := d.Conn().Len()
	cb, err := d.Sync()
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	// at most the last callback's delete_id can still be in flight
	if cb.ID() > firstDynID+1 {
		t.Fatalf("callback ids are not recycled: got %d", cb.ID())
	}
	cb.Destroy()
	if d.Conn().Len() != before {
		t.Fatalf("object map leaked: before=%d after=%d", before, d.Conn().Len())
	}
}

func TestReleaseRequestSendsDestructor(t *testing.T) {
	testlog.Start(t)
	d, srv := connectTest(t, wltest.DefaultConfig())
	reg, err := d.GetRegistry()
	if err != nil {
		t.Fatalf("get registry: %v", err)
	}
	seat, err := BindGlobal[*Seat](reg, 3, 7)
	if err != nil {
		t.Fatalf("bind seat: %v", err)
	}
	kb, err := seat.GetKeyboard()
	if err != nil {
		t.Fatalf("get keyboard: %v", err)
	}
	var events []ObjectEventType
	d.Conn().Subscribe(ObserverFunc(func(e ObjectEvent) {
		if e.ID == kb.ID() {
			events = append(events, e.Type)
		}
	}))
	if err := kb.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := kb.Release(); err != nil {
		t.Fatalf("second release must be a no-op: %v", err)
	}
	if _, err := d.Roundtrip(); err != nil {
		t.Fatalf("roundtrip: %v", err)
	}
	if srv.Count("wl_keyboard.release") != 1 {
		t.Fatalf("expected one release request, got %v", srv.Names())
	}
	if len(events) != 1 || events[0] != ObjectReleased {
		t.Fatalf("unexpected lifecycle events: %v", events)
	}
}

func TestRequestAfterDisconnectFails(t *testing.T) {
	testlog.Start(t)
	d, srv := connectTest(t, wltest.DefaultConfig())
	if err := d.Disconnect(); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if err := d.Disconnect(); err != nil {
		t.Fatalf("second disconnect: %v", err)
	}
	if !d.Closed() {
		t.Fatalf("expected closed display")
	}
	if _, err := d.GetRegistry(); err == nil {
		t.Fatalf("expected request failure after disconnect")
	}
	if err := srv.Wait(); err != nil {
		t.Fatalf("server: %v", err)
	}
}

func TestShmCreatePoolPassesFD(t *testing.T) {
	testlog.Start(t)
	d, srv := connectTest(t, wltest.DefaultConfig())
	reg, err := d.GetRegistry()
	if err != nil {
		t.Fatalf("get registry: %v", err)
	}
	shm, err := BindGlobal[*Shm](reg, 2, 1)
	if err != nil {
		t.Fatalf("bind shm: %v", err)
	}
	var formats []uint32
	if err := shm.AddListener(&ShmListener{Format: func(data any, s *Shm, f uint32) { formats = append(formats, f) }}, nil); err != nil {
		t.Fatalf("shm listener: %v", err)
	}
	f := filepath.Join(t.TempDir(), "pool")
	fd := openTestFile(t, f, 4096)
	pool, err := shm.CreatePool(fd, 4096)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	if _, err := d.Roundtrip(); err != nil {
		t.Fatalf("roundtrip: %v", err)
	}
	if srv.Count("wl_shm.create_pool") != 1 {
		t.Fatalf("expected create_pool, got %v", srv.Names())
	}
	if len(formats) != 2 {
		t.Fatalf("expected two formats, got %v", formats)
	}
	if pool.Interface() != &protocol.ShmPool {
		t.Fatalf("unexpected pool interface: %v", pool.Interface())
	}
}

func TestDescriptorOfResolvesStaticType(t *testing.T) {
	testlog.Start(t)
	if DescriptorOf[*Keyboard]() != &protocol.Keyboard || DescriptorOf[*Display]() != &protocol.Display {
		t.Fatalf("descriptor lookup mismatch")
	}
	var kb *Keyboard
	if !IsNil(kb) {
		t.Fatalf("expected nil keyboard handle")
	}
}

func TestConnectAdoptsWaylandSocketOverName(t *testing.T) {
	testlog.Start(t)
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	peer := os.NewFile(uintptr(fds[1]), "compositor-end")
	defer peer.Close()
	raw := strconv.Itoa(fds[0])
	t.Setenv(EnvWaylandSocket, raw)

	d, err := Connect(Options{Name: "/nonexistent/wayland-99"})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer d.Disconnect()
	if _, ok := os.LookupEnv(EnvWaylandSocket); ok {
		t.Fatalf("%s must be unset after adoption", EnvWaylandSocket)
	}
	if got := d.Conn().Socket(); got != EnvWaylandSocket+"="+raw {
		t.Fatalf("unexpected socket description: %q", got)
	}

	reg, err := d.GetRegistry()
	if err != nil {
		t.Fatalf("get registry: %v", err)
	}
	buf := make([]byte, wire.HeaderLen+4)
	if _, err := io.ReadFull(peer, buf); err != nil {
		t.Fatalf("read request: %v", err)
	}
	h, err := wire.DecodeHeader(buf)
	if err != nil {
		t.Fatalf("decode header: %v", err)
	}
	if h.ObjectID != displayID || h.Opcode != 1 || int(h.Size) != len(buf) {
		t.Fatalf("unexpected get_registry header: %+v", h)
	}
	args, err := wire.DecodeArgs(buf[wire.HeaderLen:], []wire.ArgType{wire.ArgNewID}, nil)
	if err != nil || args[0].Object != reg.ID() {
		t.Fatalf("unexpected get_registry args: %+v err=%v", args, err)
	}
}

func TestConnectRejectsBadWaylandSocket(t *testing.T) {
	testlog.Start(t)
	t.Setenv(EnvWaylandSocket, "not-a-fd")
	_, err := Connect(Options{})
	var cerr *ConnectionError
	if !errors.As(err, &cerr) || !errors.Is(err, ErrBadSocketFD) {
		t.Fatalf("expected ConnectionError wrapping ErrBadSocketFD, got %v", err)
	}
	if _, ok := os.LookupEnv(EnvWaylandSocket); ok {
		t.Fatalf("%s must be unset even when invalid", EnvWaylandSocket)
	}
}

func TestFailedConstructorFreesIDAtOnce(t *testing.T) {
	testlog.Start(t)
	d, srv := connectTest(t, wltest.DefaultConfig())
	srv.Inject(1, 0, wire.Object(1), wire.Uint(1), wire.String("fatal"))
	if _, err := d.Roundtrip(); err == nil {
		t.Fatalf("expected protocol error")
	}
	next := d.conn.nextID
	zombies := len(d.conn.zombies)
	for i := 0; i < 3; i++ {
		if _, err := d.GetRegistry(); err == nil {
			t.Fatalf("get registry %d must fail after a protocol error", i)
		}
	}
	if len(d.conn.zombies) != zombies {
		t.Fatalf("unsent constructors left zombies: before=%d after=%d", zombies, len(d.conn.zombies))
	}
	if d.conn.nextID > next+1 {
		t.Fatalf("unsent constructor ids leaked: next before=%d after=%d", next, d.conn.nextID)
	}
}
