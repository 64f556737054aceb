package wltest

import (
	"net"
	"testing"

	"github.com/danmuck/wlprobe/internal/wire"
)

func TestServerSurvivesClientHangup(t *testing.T) {
	srv := Start(t, DefaultConfig())
	conn, err := net.Dial("unix", srv.Path())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	msg, err := wire.Encode(1, 1, []wire.Argument{wire.NewID(2)})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := wire.WriteMessage(conn, msg); err != nil {
		t.Fatalf("write: %v", err)
	}
	// hang up with the registry announcement still unread
	if err := conn.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := srv.Wait(); err != nil {
		t.Fatalf("server: %v", err)
	}
	if got := srv.Names(); len(got) != 1 || got[0] != "wl_display.get_registry" {
		t.Fatalf("unexpected requests: %v", got)
	}
}
