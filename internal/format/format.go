// Package format renders protocol objects and event tuples for diagnostics.
package format

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/danmuck/wlprobe/internal/client"
	"github.com/danmuck/wlprobe/internal/dispatch"
	"github.com/danmuck/wlprobe/internal/protocol"
	"github.com/danmuck/wlprobe/internal/wire"
)

// described is satisfied by every typed protocol object, nil handles
// included.
type described interface {
	Descriptor() *protocol.Interface
}

// Object renders o as "<address>[<interface name>]". The address is the
// typed handle's own pointer.
func Object[T client.Object](o T) string {
	return object(o, client.DescriptorOf[T]().Name)
}

func object(p any, name string) string {
	return fmt.Sprintf("%p[%s]", p, name)
}

// Tuple renders values as "(v0, v1, ..., vn)".
func Tuple(values ...any) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(Value(v))
	}
	b.WriteByte(')')
	return b.String()
}

// Value renders one tuple element.
func Value(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case dispatch.Selector:
		return x.Name
	case wire.Fixed:
		return x.String()
	case []byte:
		return hex.EncodeToString(x)
	case []any:
		return Tuple(x...)
	case string:
		return x
	case described:
		return object(x, x.Descriptor().Name)
	}
	return fmt.Sprintf("%v", v)
}
