package protocol

import (
	"fmt"

	"github.com/danmuck/wlprobe/internal/wire"
	"github.com/rs/zerolog/log"
)

type ValidationError struct {
	Interface string
	Message   string
	Index     int
	Reason    string
}

func (e ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("protocol: %s.%s: %s", e.Interface, e.Message, e.Reason)
	}
	return fmt.Sprintf("protocol: %s.%s arg=%d: %s", e.Interface, e.Message, e.Index, e.Reason)
}

// ValidateArgs checks args against the wire signature and nullability of m.
func ValidateArgs(iface *Interface, m Message, args []wire.Argument) error {
	types := m.Types()
	if len(args) != len(types) {
		log.Error().
			Str("interface", iface.Name).
			Str("message", m.Name).
			Int("got", len(args)).
			Int("want", len(types)).
			Msg("protocol.ValidateArgs arity mismatch")
		return ValidationError{Interface: iface.Name, Message: m.Name, Index: -1, Reason: "arity mismatch"}
	}
	nullable := nullableByWireIndex(m)
	for idx, a := range args {
		if a.Type != types[idx] {
			log.Error().
				Str("interface", iface.Name).
				Str("message", m.Name).
				Int("index", idx).
				Stringer("got", a.Type).
				Stringer("want", types[idx]).
				Msg("protocol.ValidateArgs type mismatch")
			return ValidationError{Interface: iface.Name, Message: m.Name, Index: idx, Reason: "type mismatch"}
		}
		if a.Null && !nullable[idx] {
			return ValidationError{Interface: iface.Name, Message: m.Name, Index: idx, Reason: "null for non-nullable argument"}
		}
	}
	return nil
}

func nullableByWireIndex(m Message) []bool {
	out := make([]bool, 0, len(m.Args))
	for _, a := range m.Args {
		if a.Type == wire.ArgNewID && a.Interface == "" {
			out = append(out, false, false)
		}
		out = append(out, a.Nullable)
	}
	return out
}
