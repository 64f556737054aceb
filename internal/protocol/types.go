package protocol

import "github.com/danmuck/wlprobe/internal/wire"

// Teardown selects how an owned object of an interface is released.
type Teardown uint8

const (
	// TeardownDestroy drops the client-side proxy only.
	TeardownDestroy Teardown = iota
	// TeardownRelease sends the interface's release request, then destroys.
	TeardownRelease
	// TeardownDisconnect closes the connection the object represents.
	TeardownDisconnect
)

func (t Teardown) String() string {
	switch t {
	case TeardownDestroy:
		return "destroy"
	case TeardownRelease:
		return "release"
	case TeardownDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// Arg is one typed argument slot of a message.
type Arg struct {
	Name     string
	Type     wire.ArgType
	Nullable bool
	// Interface names the object type for object/new_id arguments. Empty on
	// a new_id means the interface travels on the wire (wl_registry.bind).
	Interface string
}

// Message is one request or event schema.
type Message struct {
	Name  string
	Since uint32
	Args  []Arg
}

// Types returns the wire signature of m, expanding untyped new_id into
// its (string, uint, new_id) wire form.
func (m Message) Types() []wire.ArgType {
	out := make([]wire.ArgType, 0, len(m.Args))
	for _, a := range m.Args {
		if a.Type == wire.ArgNewID && a.Interface == "" {
			out = append(out, wire.ArgString, wire.ArgUint)
		}
		out = append(out, a.Type)
	}
	return out
}

// Interface is the static descriptor of one protocol interface.
type Interface struct {
	Name     string
	Version  uint32
	Teardown Teardown
	// ReleaseOpcode is the destructor request sent by TeardownRelease.
	ReleaseOpcode uint16
	Requests      []Message
	Events        []Message
}

// Event returns the event schema for opcode.
func (i *Interface) Event(opcode uint16) (Message, bool) {
	if int(opcode) >= len(i.Events) {
		return Message{}, false
	}
	return i.Events[opcode], true
}

// Request returns the request schema for opcode.
func (i *Interface) Request(opcode uint16) (Message, bool) {
	if int(opcode) >= len(i.Requests) {
		return Message{}, false
	}
	return i.Requests[opcode], true
}

// RequestOpcode resolves a request name to its opcode.
func (i *Interface) RequestOpcode(name string) (uint16, bool) {
	for op, m := range i.Requests {
		if m.Name == name {
			return uint16(op), true
		}
	}
	return 0, false
}

func (i *Interface) String() string {
	return i.Name
}
