package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// HeaderLen is the fixed message header: object id, then size<<16 | opcode.
	HeaderLen = 8
	// MaxMessageSize matches libwayland's WL_MAX_MESSAGE_SIZE.
	MaxMessageSize = 4096
	// MaxFDsPerMessage bounds the fds attached to one sendmsg.
	MaxFDsPerMessage = 28
)

var (
	ErrShortHeader  = errors.New("wire: short message header")
	ErrInvalidSize  = errors.New("wire: invalid message size")
	ErrShortArg     = errors.New("wire: truncated argument")
	ErrMissingFD    = errors.New("wire: fd argument without queued fd")
	ErrNullNotAllow = errors.New("wire: null value for non-nullable argument")
	ErrTooLarge     = errors.New("wire: message too large")
	ErrTrailingData = errors.New("wire: trailing bytes after last argument")
)

// byteOrder is the host order of every supported platform.
var byteOrder = binary.LittleEndian

// Header is the fixed wire header.
type Header struct {
	ObjectID uint32
	Opcode   uint16
	Size     uint16
}

// Message is one complete wire message; Fds travel out of band.
type Message struct {
	Header  Header
	Payload []byte
	Fds     []int
}

func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderLen)
	byteOrder.PutUint32(buf[0:4], h.ObjectID)
	byteOrder.PutUint32(buf[4:8], uint32(h.Size)<<16|uint32(h.Opcode))
	return buf
}

func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderLen {
		return Header{}, ErrShortHeader
	}
	word := byteOrder.Uint32(b[4:8])
	h := Header{
		ObjectID: byteOrder.Uint32(b[0:4]),
		Opcode:   uint16(word & 0xffff),
		Size:     uint16(word >> 16),
	}
	if h.Size < HeaderLen || h.Size%4 != 0 {
		return Header{}, fmt.Errorf("%w: %d", ErrInvalidSize, h.Size)
	}
	return h, nil
}

// Split extracts the first complete message from buf. ok is false when buf
// holds only a partial message.
func Split(buf []byte) (h Header, payload []byte, rest []byte, ok bool, err error) {
	if len(buf) < HeaderLen {
		return Header{}, nil, buf, false, nil
	}
	h, err = DecodeHeader(buf[:HeaderLen])
	if err != nil {
		return Header{}, nil, buf, false, err
	}
	if len(buf) < int(h.Size) {
		return Header{}, nil, buf, false, nil
	}
	return h, buf[HeaderLen:h.Size], buf[h.Size:], true, nil
}

// ReadMessage reads one message from a stream that carries no fds.
func ReadMessage(r io.Reader) (Message, error) {
	var fixed [HeaderLen]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Message{}, ErrShortHeader
		}
		return Message{}, err
	}
	h, err := DecodeHeader(fixed[:])
	if err != nil {
		return Message{}, err
	}
	payload := make([]byte, int(h.Size)-HeaderLen)
	if len(payload) > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Message{}, err
		}
	}
	return Message{Header: h, Payload: payload}, nil
}

// WriteMessage writes m's header and payload; fds are the caller's concern.
func WriteMessage(w io.Writer, m Message) error {
	size := HeaderLen + len(m.Payload)
	if size > MaxMessageSize {
		return ErrTooLarge
	}
	h := m.Header
	h.Size = uint16(size)
	if _, err := w.Write(EncodeHeader(h)); err != nil {
		return err
	}
	if len(m.Payload) > 0 {
		if _, err := w.Write(m.Payload); err != nil {
			return err
		}
	}
	return nil
}

// Encode builds a message for objectID/opcode from args, validating that
// null values are only used where nullable is set.
func Encode(objectID uint32, opcode uint16, args []Argument) (Message, error) {
	payload := make([]byte, 0, 32)
	fds := make([]int, 0)
	for _, a := range args {
		var err error
		payload, err = appendArg(payload, a)
		if err != nil {
			return Message{}, err
		}
		if a.Type == ArgFD {
			fds = append(fds, a.FD)
		}
	}
	if HeaderLen+len(payload) > MaxMessageSize {
		return Message{}, ErrTooLarge
	}
	if len(fds) > MaxFDsPerMessage {
		return Message{}, fmt.Errorf("%w: %d fds", ErrTooLarge, len(fds))
	}
	return Message{
		Header:  Header{ObjectID: objectID, Opcode: opcode, Size: uint16(HeaderLen + len(payload))},
		Payload: payload,
		Fds:     fds,
	}, nil
}

// Bytes returns the header and payload as one buffer.
func (m Message) Bytes() []byte {
	h := m.Header
	h.Size = uint16(HeaderLen + len(m.Payload))
	out := EncodeHeader(h)
	return append(out, m.Payload...)
}
