package protocol

import (
	"errors"
	"testing"

	"github.com/danmuck/wlprobe/internal/testutil/testlog"
	"github.com/danmuck/wlprobe/internal/wire"
)

func TestLookupCoversClosedSet(t *testing.T) {
	testlog.Start(t)
	names := []string{
		"wl_display", "wl_registry", "wl_compositor", "wl_shell", "wl_seat",
		"wl_keyboard", "wl_pointer", "wl_touch", "wl_shm", "wl_surface",
		"wl_shell_surface", "wl_buffer", "wl_shm_pool", "wl_callback", "wl_output",
	}
	if len(All()) != len(names) {
		t.Fatalf("unexpected descriptor count: %d", len(All()))
	}
	for _, name := range names {
		iface, ok := Lookup(name)
		if !ok || iface.Name != name {
			t.Fatalf("lookup %q failed: ok=%v", name, ok)
		}
	}
	if _, ok := Lookup("wl_region"); ok {
		t.Fatalf("wl_region is not part of the supported set")
	}
}

func TestTeardownKinds(t *testing.T) {
	testlog.Start(t)
	special := map[string]Teardown{
		"wl_display":  TeardownDisconnect,
		"wl_keyboard": TeardownRelease,
		"wl_pointer":  TeardownRelease,
		"wl_touch":    TeardownRelease,
	}
	for _, iface := range All() {
		want, ok := special[iface.Name]
		if !ok {
			want = TeardownDestroy
		}
		if iface.Teardown != want {
			t.Fatalf("%s teardown: got=%s want=%s", iface.Name, iface.Teardown, want)
		}
		if iface.Teardown == TeardownRelease {
			req, ok := iface.Request(iface.ReleaseOpcode)
			if !ok || req.Name != "release" {
				t.Fatalf("%s release opcode %d resolves to %+v", iface.Name, iface.ReleaseOpcode, req)
			}
		}
	}
}

func TestRegistryBindExpandsUntypedNewID(t *testing.T) {
	testlog.Start(t)
	bind, ok := Registry.Request(0)
	if !ok {
		t.Fatalf("missing wl_registry.bind")
	}
	got := bind.Types()
	want := []wire.ArgType{wire.ArgUint, wire.ArgString, wire.ArgUint, wire.ArgNewID}
	if len(got) != len(want) {
		t.Fatalf("bind types: got=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bind types: got=%v want=%v", got, want)
		}
	}
}

func TestValidateArgsAcceptsSchema(t *testing.T) {
	testlog.Start(t)
	global, _ := Registry.Event(0)
	args := []wire.Argument{wire.Uint(1), wire.String("wl_compositor"), wire.Uint(6)}
	if err := ValidateArgs(&Registry, global, args); err != nil {
		t.Fatalf("validate global: %v", err)
	}
}

func TestValidateArgsTypeMismatchDeterministic(t *testing.T) {
	testlog.Start(t)
	global, _ := Registry.Event(0)
	args := []wire.Argument{wire.Uint(1), wire.Uint(2), wire.Uint(6)}
	err := ValidateArgs(&Registry, global, args)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Index != 1 || ve.Reason != "type mismatch" {
		t.Fatalf("unexpected validation error: %+v", ve)
	}
}

func TestValidateArgsRejectsNullForNonNullable(t *testing.T) {
	testlog.Start(t)
	enter, _ := Surface.Event(0)
	err := ValidateArgs(&Surface, enter, []wire.Argument{wire.Object(0)})
	var ve ValidationError
	if !errors.As(err, &ve) || ve.Reason != "null for non-nullable argument" {
		t.Fatalf("expected null rejection, got %v", err)
	}
	attach, _ := Surface.Request(1)
	if err := ValidateArgs(&Surface, attach, []wire.Argument{wire.Object(0), wire.Int(0), wire.Int(0)}); err != nil {
		t.Fatalf("nullable buffer rejected: %v", err)
	}
}

func TestValidateArgsArityMismatch(t *testing.T) {
	testlog.Start(t)
	done, _ := Callback.Event(0)
	err := ValidateArgs(&Callback, done, nil)
	var ve ValidationError
	if !errors.As(err, &ve) || ve.Reason != "arity mismatch" {
		t.Fatalf("expected arity mismatch, got %v", err)
	}
}

func TestRequestOpcode(t *testing.T) {
	testlog.Start(t)
	op, ok := Seat.RequestOpcode("get_keyboard")
	if !ok || op != 1 {
		t.Fatalf("get_keyboard opcode: op=%d ok=%v", op, ok)
	}
	if _, ok := Seat.RequestOpcode("missing"); ok {
		t.Fatalf("expected unknown request")
	}
}
