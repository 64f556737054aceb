package wire

import (
	"fmt"
	"math"
	"strconv"
)

// ArgType is a Wayland signature character.
type ArgType byte

const (
	ArgInt    ArgType = 'i'
	ArgUint   ArgType = 'u'
	ArgFixed  ArgType = 'f'
	ArgString ArgType = 's'
	ArgObject ArgType = 'o'
	ArgNewID  ArgType = 'n'
	ArgArray  ArgType = 'a'
	ArgFD     ArgType = 'h'
)

func (t ArgType) String() string {
	switch t {
	case ArgInt:
		return "int"
	case ArgUint:
		return "uint"
	case ArgFixed:
		return "fixed"
	case ArgString:
		return "string"
	case ArgObject:
		return "object"
	case ArgNewID:
		return "new_id"
	case ArgArray:
		return "array"
	case ArgFD:
		return "fd"
	default:
		return fmt.Sprintf("argtype(%d)", byte(t))
	}
}

// Fixed is a signed 24.8 fixed-point number.
type Fixed int32

func FixedFromFloat(v float64) Fixed {
	return Fixed(int32(math.Round(v * 256)))
}

func (f Fixed) Float64() float64 {
	return float64(f) / 256
}

func (f Fixed) String() string {
	return strconv.FormatFloat(f.Float64(), 'f', -1, 64)
}

// Argument is one decoded or to-be-encoded argument. Only the field matching
// Type is meaningful. Null marks a null string or object.
type Argument struct {
	Type   ArgType
	Int    int32
	Uint   uint32
	Fixed  Fixed
	Str    string
	Object uint32
	Array  []byte
	FD     int
	Null   bool
}

func Int(v int32) Argument { return Argument{Type: ArgInt, Int: v} }
func Uint(v uint32) Argument { return Argument{Type: ArgUint, Uint: v} }
func FixedArg(v Fixed) Argument { return Argument{Type: ArgFixed, Fixed: v} }
func String(v string) Argument { return Argument{Type: ArgString, Str: v} }
func NullString() Argument { return Argument{Type: ArgString, Null: true} }
func Object(id uint32) Argument { return Argument{Type: ArgObject, Object: id, Null: id == 0} }
func NewID(id uint32) Argument { return Argument{Type: ArgNewID, Object: id} }
func Array(v []byte) Argument { return Argument{Type: ArgArray, Array: v} }
func FD(fd int) Argument { return Argument{Type: ArgFD, FD: fd} }

func pad4(n int) int {
	return (n + 3) &^ 3
}

func appendUint32(buf []byte, v uint32) []byte {
	return byteOrder.AppendUint32(buf, v)
}

func appendArg(buf []byte, a Argument) ([]byte, error) {
	switch a.Type {
	case ArgInt:
		return appendUint32(buf, uint32(a.Int)), nil
	case ArgUint:
		return appendUint32(buf, a.Uint), nil
	case ArgFixed:
		return appendUint32(buf, uint32(a.Fixed)), nil
	case ArgObject, ArgNewID:
		if a.Null {
			return appendUint32(buf, 0), nil
		}
		return appendUint32(buf, a.Object), nil
	case ArgString:
		if a.Null {
			return appendUint32(buf, 0), nil
		}
		n := len(a.Str) + 1
		buf = appendUint32(buf, uint32(n))
		buf = append(buf, a.Str...)
		return append(buf, make([]byte, pad4(n)-len(a.Str))...), nil
	case ArgArray:
		buf = appendUint32(buf, uint32(len(a.Array)))
		buf = append(buf, a.Array...)
		return append(buf, make([]byte, pad4(len(a.Array))-len(a.Array))...), nil
	case ArgFD:
		return buf, nil
	default:
		return nil, fmt.Errorf("wire: unknown argument type %q", byte(a.Type))
	}
}

// FDSource hands out fds received out of band, in order.
type FDSource interface {
	NextFD() (int, bool)
}

// DecodeArgs decodes payload according to types. fds may be nil when the
// signature carries no fd arguments.
func DecodeArgs(payload []byte, types []ArgType, fds FDSource) ([]Argument, error) {
	out := make([]Argument, 0, len(types))
	i := 0
	word := func() (uint32, error) {
		if len(payload)-i < 4 {
			return 0, ErrShortArg
		}
		v := byteOrder.Uint32(payload[i : i+4])
		i += 4
		return v, nil
	}
	for _, t := range types {
		a := Argument{Type: t}
		switch t {
		case ArgFD:
			if fds == nil {
				return nil, ErrMissingFD
			}
			fd, ok := fds.NextFD()
			if !ok {
				return nil, ErrMissingFD
			}
			a.FD = fd
			out = append(out, a)
			continue
		}
		v, err := word()
		if err != nil {
			return nil, err
		}
		switch t {
		case ArgInt:
			a.Int = int32(v)
		case ArgUint:
			a.Uint = v
		case ArgFixed:
			a.Fixed = Fixed(int32(v))
		case ArgObject, ArgNewID:
			a.Object = v
			a.Null = v == 0
		case ArgString:
			if v == 0 {
				a.Null = true
				break
			}
			n := int(v)
			if len(payload)-i < pad4(n) {
				return nil, ErrShortArg
			}
			raw := payload[i : i+n]
			if raw[n-1] != 0 {
				return nil, fmt.Errorf("%w: string not nul-terminated", ErrShortArg)
			}
			a.Str = string(raw[:n-1])
			i += pad4(n)
		case ArgArray:
			n := int(v)
			if len(payload)-i < pad4(n) {
				return nil, ErrShortArg
			}
			a.Array = make([]byte, n)
			copy(a.Array, payload[i:i+n])
			i += pad4(n)
		default:
			return nil, fmt.Errorf("wire: unknown argument type %q", byte(t))
		}
		out = append(out, a)
	}
	if i != len(payload) {
		return nil, ErrTrailingData
	}
	return out, nil
}
