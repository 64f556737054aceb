package own

import (
	"testing"

	"github.com/danmuck/wlprobe/internal/client"
	"github.com/danmuck/wlprobe/internal/testutil/testlog"
	"github.com/danmuck/wlprobe/internal/wltest"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events []client.ObjectEvent
}

func (r *recorder) OnObjectEvent(e client.ObjectEvent) {
	r.events = append(r.events, e)
}

// of returns the event types recorded for object id.
func (r *recorder) of(id uint32) []client.ObjectEventType {
	var out []client.ObjectEventType
	for _, e := range r.events {
		if e.ID == id {
			out = append(out, e.Type)
		}
	}
	return out
}

type fixture struct {
	srv     *wltest.Server
	display *client.Display
	reg     *client.Registry
	rec     *recorder
}

func setup(t *testing.T, cfg wltest.Config) *fixture {
	t.Helper()
	testlog.Start(t)
	srv := wltest.Start(t, cfg)
	rec := &recorder{}
	d, err := client.Connect(client.Options{Name: srv.Path(), Observers: []client.Observer{rec}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Disconnect() })
	reg, err := d.GetRegistry()
	require.NoError(t, err)
	return &fixture{srv: srv, display: d, reg: reg, rec: rec}
}

func (f *fixture) keyboard(t *testing.T) *client.Keyboard {
	t.Helper()
	seat, err := client.BindGlobal[*client.Seat](f.reg, 3, 7)
	require.NoError(t, err)
	kb, err := seat.GetKeyboard()
	require.NoError(t, err)
	return kb
}

func TestGenericDestroyRunsOnceAtScopeExit(t *testing.T) {
	f := setup(t, wltest.DefaultConfig())
	id := f.reg.ID()

	func() {
		reg := Acquire(f.reg)
		defer reg.Release()
		require.True(t, reg.Valid())
		require.Same(t, f.reg, reg.Get())
		require.Equal(t, []client.ObjectEventType{client.ObjectCreated}, f.rec.of(id), "teardown ran before scope exit")
	}()

	require.Equal(t, []client.ObjectEventType{client.ObjectCreated, client.ObjectDestroyed}, f.rec.of(id))
	require.True(t, f.reg.Destroyed())
}

func TestSpecialReleaseRoutesToReleaseRequest(t *testing.T) {
	f := setup(t, wltest.DefaultConfig())
	kb := f.keyboard(t)

	func() {
		owned := Acquire(kb)
		defer owned.Release()
	}()

	require.Equal(t, []client.ObjectEventType{client.ObjectCreated, client.ObjectReleased}, f.rec.of(kb.ID()))
	_, err := f.display.Roundtrip()
	require.NoError(t, err)
	require.Equal(t, 1, f.srv.Count("wl_keyboard.release"))
}

func TestReleaseKindPerInterface(t *testing.T) {
	f := setup(t, wltest.DefaultConfig())
	seat, err := client.BindGlobal[*client.Seat](f.reg, 3, 7)
	require.NoError(t, err)
	ptr, err := seat.GetPointer()
	require.NoError(t, err)
	touch, err := seat.GetTouch()
	require.NoError(t, err)
	comp, err := client.BindGlobal[*client.Compositor](f.reg, 1, 6)
	require.NoError(t, err)
	surf, err := comp.CreateSurface()
	require.NoError(t, err)

	Acquire(ptr).Release()
	Acquire(touch).Release()
	Acquire(surf).Release()
	Acquire(seat).Release()

	require.Equal(t, client.ObjectReleased, f.rec.of(ptr.ID())[1])
	require.Equal(t, client.ObjectReleased, f.rec.of(touch.ID())[1])
	require.Equal(t, client.ObjectDestroyed, f.rec.of(surf.ID())[1])
	require.Equal(t, client.ObjectDestroyed, f.rec.of(seat.ID())[1])

	_, err = f.display.Roundtrip()
	require.NoError(t, err)
	require.Equal(t, 1, f.srv.Count("wl_pointer.release"))
	require.Equal(t, 1, f.srv.Count("wl_touch.release"))
	require.Zero(t, f.srv.Count("wl_surface.destroy"))
}

func TestMoveTransfersTeardownToDestination(t *testing.T) {
	f := setup(t, wltest.DefaultConfig())
	kb := f.keyboard(t)

	var dst *Owned[*client.Keyboard]
	func() {
		src := Acquire(kb)
		defer src.Release()
		dst = src.Move()
		require.False(t, src.Valid())
		require.Nil(t, src.Get())
		require.True(t, dst.Valid())
	}()
	require.Equal(t, []client.ObjectEventType{client.ObjectCreated}, f.rec.of(kb.ID()), "empty source tore down")

	dst.Release()
	dst.Release()
	require.Equal(t, []client.ObjectEventType{client.ObjectCreated, client.ObjectReleased}, f.rec.of(kb.ID()))
	_, err := f.display.Roundtrip()
	require.NoError(t, err)
	require.Equal(t, 1, f.srv.Count("wl_keyboard.release"))
}

func TestDisplayTeardownDisconnects(t *testing.T) {
	f := setup(t, wltest.DefaultConfig())
	d := Acquire(f.display)
	require.Equal(t, "wl_display", d.Interface().Name)
	d.Release()

	require.True(t, f.display.Closed())
	require.Equal(t, []client.ObjectEventType{client.ObjectCreated, client.ConnectionClosed}, f.rec.of(1))
	require.NoError(t, f.srv.Wait())
}

func TestReleaseBeforeRequestVersionOnlyDropsProxy(t *testing.T) {
	cfg := wltest.DefaultConfig()
	cfg.Globals[2].Version = 2
	f := setup(t, cfg)
	seat, err := client.BindGlobal[*client.Seat](f.reg, 3, 2)
	require.NoError(t, err)
	kb, err := seat.GetKeyboard()
	require.NoError(t, err)

	Acquire(kb).Release()

	require.True(t, kb.Destroyed())
	_, err = f.display.Roundtrip()
	require.NoError(t, err)
	require.Zero(t, f.srv.Count("wl_keyboard.release"))
}

func TestAcquireNilIsEmpty(t *testing.T) {
	testlog.Start(t)
	o := Acquire[*client.Pointer](nil)
	require.False(t, o.Valid())
	require.Nil(t, o.Get())
	require.Equal(t, "wl_pointer", o.Interface().Name)
	o.Release()
	moved := o.Move()
	require.False(t, moved.Valid())
}

func TestNilWrapperIsTolerated(t *testing.T) {
	testlog.Start(t)
	var o *Owned[*client.Keyboard]
	require.False(t, o.Valid())
	require.Nil(t, o.Get())
	require.Equal(t, "wl_keyboard", o.Interface().Name)
	o.Release()
	moved := o.Move()
	require.NotNil(t, moved)
	require.False(t, moved.Valid())
	require.Equal(t, "wl_keyboard", moved.Interface().Name)
}
