package client

import "github.com/danmuck/wlprobe/internal/protocol"

// Object is the closed set of typed protocol objects. Using any other type
// where an Object is required does not compile.
type Object interface {
	*Display | *Registry | *Callback | *Compositor | *ShmPool | *Shm | *Buffer |
		*Surface | *Seat | *Pointer | *Keyboard | *Touch | *Output | *Shell | *ShellSurface

	ProxyRef() *Proxy
	Descriptor() *protocol.Interface
}

// DescriptorOf returns the interface descriptor of T from its static type.
func DescriptorOf[T Object]() *protocol.Interface {
	var zero T
	return zero.Descriptor()
}

// IsNil reports whether obj is a nil handle.
func IsNil[T Object](obj T) bool {
	return obj == nil
}

func (*Display) Descriptor() *protocol.Interface { return &protocol.Display }
func (*Registry) Descriptor() *protocol.Interface { return &protocol.Registry }
func (*Callback) Descriptor() *protocol.Interface { return &protocol.Callback }
func (*Compositor) Descriptor() *protocol.Interface { return &protocol.Compositor }
func (*ShmPool) Descriptor() *protocol.Interface { return &protocol.ShmPool }
func (*Shm) Descriptor() *protocol.Interface { return &protocol.Shm }
func (*Buffer) Descriptor() *protocol.Interface { return &protocol.Buffer }
func (*Surface) Descriptor() *protocol.Interface { return &protocol.Surface }
func (*Seat) Descriptor() *protocol.Interface { return &protocol.Seat }
func (*Pointer) Descriptor() *protocol.Interface { return &protocol.Pointer }
func (*Keyboard) Descriptor() *protocol.Interface { return &protocol.Keyboard }
func (*Touch) Descriptor() *protocol.Interface { return &protocol.Touch }
func (*Output) Descriptor() *protocol.Interface { return &protocol.Output }
func (*Shell) Descriptor() *protocol.Interface { return &protocol.Shell }
func (*ShellSurface) Descriptor() *protocol.Interface { return &protocol.ShellSurface }

// constructors builds typed proxies for Registry.Bind, keyed by descriptor.
var constructors = map[*protocol.Interface]func() object{
	&protocol.Callback:     func() object { return &Callback{} },
	&protocol.Compositor:   func() object { return &Compositor{} },
	&protocol.ShmPool:      func() object { return &ShmPool{} },
	&protocol.Shm:          func() object { return &Shm{} },
	&protocol.Buffer:       func() object { return &Buffer{} },
	&protocol.Surface:      func() object { return &Surface{} },
	&protocol.Seat:         func() object { return &Seat{} },
	&protocol.Pointer:      func() object { return &Pointer{} },
	&protocol.Keyboard:     func() object { return &Keyboard{} },
	&protocol.Touch:        func() object { return &Touch{} },
	&protocol.Output:       func() object { return &Output{} },
	&protocol.Shell:        func() object { return &Shell{} },
	&protocol.ShellSurface: func() object { return &ShellSurface{} },
}
