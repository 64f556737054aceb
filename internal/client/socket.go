package client

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

const (
	EnvWaylandSocket  = "WAYLAND_SOCKET"
	EnvWaylandDisplay = "WAYLAND_DISPLAY"
	EnvRuntimeDir     = "XDG_RUNTIME_DIR"
	DefaultDisplay    = "wayland-0"
)

// SocketPath resolves the compositor socket path for name following
// libwayland: explicit name, then WAYLAND_DISPLAY, then wayland-0. Absolute
// names are used as-is, relative names live in XDG_RUNTIME_DIR. Connect
// prefers an inherited WAYLAND_SOCKET over any name.
func SocketPath(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.TrimSpace(os.Getenv(EnvWaylandDisplay))
	}
	if name == "" {
		name = DefaultDisplay
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	dir := strings.TrimSpace(os.Getenv(EnvRuntimeDir))
	if dir == "" {
		return "", ErrNoRuntimeDir
	}
	return filepath.Join(dir, name), nil
}

func dialSocket(opts Options) (*net.UnixConn, string, error) {
	if raw, ok := os.LookupEnv(EnvWaylandSocket); ok {
		uc, err := adoptSocketFD(raw)
		return uc, EnvWaylandSocket + "=" + raw, err
	}
	path, err := SocketPath(opts.Name)
	if err != nil {
		return nil, "", err
	}
	d := net.Dialer{Timeout: opts.DialTimeout}
	c, err := d.Dial("unix", path)
	if err != nil {
		return nil, path, err
	}
	log.Debug().Str("socket", path).Msg("client.Connect dialed")
	return c.(*net.UnixConn), path, nil
}

// adoptSocketFD takes over an inherited socket fd and unsets the variable so
// children do not inherit it too.
func adoptSocketFD(raw string) (*net.UnixConn, error) {
	os.Unsetenv(EnvWaylandSocket)
	fd, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || fd < 0 {
		return nil, fmt.Errorf("%w: %q", ErrBadSocketFD, raw)
	}
	unix.CloseOnExec(fd)
	f := os.NewFile(uintptr(fd), "wayland-socket")
	defer f.Close()
	c, err := net.FileConn(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSocketFD, err)
	}
	uc, ok := c.(*net.UnixConn)
	if !ok {
		c.Close()
		return nil, fmt.Errorf("%w: fd %d is not a unix socket", ErrBadSocketFD, fd)
	}
	return uc, nil
}

// Options configures Connect.
type Options struct {
	// Name is a display name or absolute socket path.
	Name        string
	DialTimeout time.Duration
	// ReadTimeout bounds each blocking socket read; zero waits forever.
	ReadTimeout time.Duration
	Metrics     Metrics
	Observers   []Observer
}
