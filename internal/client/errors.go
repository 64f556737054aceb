package client

import (
	"errors"
	"fmt"
)

var (
	ErrClosed         = errors.New("client: connection closed")
	ErrNoRuntimeDir   = errors.New("client: XDG_RUNTIME_DIR is not set")
	ErrBadSocketFD    = errors.New("client: invalid WAYLAND_SOCKET")
	ErrListenerSet    = errors.New("client: listener already set")
	ErrDestroyed      = errors.New("client: proxy destroyed")
	ErrUnknownOpcode  = errors.New("client: unknown event opcode")
	ErrVersion        = errors.New("client: request not supported by bound version")
	ErrUnsupportedNew = errors.New("client: server-created objects are not supported")
)

// ConnectionError reports that Connect could not produce a connection.
type ConnectionError struct {
	Socket string
	Err    error
}

func (e *ConnectionError) Error() string {
	if e.Socket == "" {
		return fmt.Sprintf("client: connect failed: %v", e.Err)
	}
	return fmt.Sprintf("client: connect %s failed: %v", e.Socket, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ProtocolError is a fatal wl_display.error sent by the compositor.
type ProtocolError struct {
	ObjectID  uint32
	Interface string
	Code      uint32
	Message   string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("client: protocol error on %s@%d: code=%d: %s", e.Interface, e.ObjectID, e.Code, e.Message)
}
