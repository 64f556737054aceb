package client

import "github.com/danmuck/wlprobe/internal/protocol"

// ObjectEventType classifies object lifecycle notifications.
type ObjectEventType uint8

const (
	ObjectCreated ObjectEventType = iota
	ObjectDestroyed
	ObjectReleased
	ConnectionClosed
)

func (t ObjectEventType) String() string {
	switch t {
	case ObjectCreated:
		return "created"
	case ObjectDestroyed:
		return "destroyed"
	case ObjectReleased:
		return "released"
	case ConnectionClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ObjectEvent is one lifecycle notification.
type ObjectEvent struct {
	Type      ObjectEventType
	ID        uint32
	Interface *protocol.Interface
}

// Observer receives object lifecycle notifications synchronously.
type Observer interface {
	OnObjectEvent(ObjectEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ObjectEvent)

func (f ObserverFunc) OnObjectEvent(e ObjectEvent) {
	f(e)
}

// Metrics receives per-message counters.
type Metrics interface {
	MessageSent(iface, message string)
	MessageReceived(iface, message string)
}
