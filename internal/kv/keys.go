package kv

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Type tags for encoded key parts. Strings sort before integers.
const (
	stringTag byte = 0x02
	intTag    byte = 0x15
)

// ErrInvalidKey is returned when a key contains an unsupported part or cannot
// be decoded.
var ErrInvalidKey = errors.New("invalid key")

// Key is a composite key, a tuple of string and integer parts, e.g.
// ("todos", 1700000000000).
//
// Encoded keys sort byte-wise in the same order as their tuples sort
// part-wise, and the encoding of a key is a prefix of the encoding of every
// key that extends it, which is what makes prefix scans work.
type Key []any

// Encode encodes the key into its ordered byte representation.
func (k Key) Encode() ([]byte, error) {
	var buf bytes.Buffer
	for _, part := range k {
		switch v := part.(type) {
		case string:
			buf.WriteByte(stringTag)
			// escape nul bytes so the terminator stays unambiguous
			buf.Write(bytes.ReplaceAll([]byte(v), []byte{0x00}, []byte{0x00, 0xff}))
			buf.WriteByte(0x00)
		case int64:
			buf.WriteByte(intTag)
			buf.Write(encodeInt(v))
		case int:
			buf.WriteByte(intTag)
			buf.Write(encodeInt(int64(v)))
		default:
			return nil, fmt.Errorf("%w: unsupported part type %T", ErrInvalidKey, part)
		}
	}
	return buf.Bytes(), nil
}

// HasPrefix reports whether k extends prefix part-wise. Byte-wise prefix
// matching of encoded keys is not enough on its own: the encoding of a string
// containing a nul byte begins with the encoding of the string up to the nul.
func (k Key) HasPrefix(prefix Key) bool {
	if len(k) < len(prefix) {
		return false
	}
	for i, part := range prefix {
		if normalizePart(k[i]) != normalizePart(part) {
			return false
		}
	}
	return true
}

func normalizePart(part any) any {
	if v, ok := part.(int); ok {
		return int64(v)
	}
	return part
}

// String renders the key as a tuple, e.g. ("todos", 1).
func (k Key) String() string {
	var buf bytes.Buffer
	buf.WriteByte('(')
	for i, part := range k {
		if i > 0 {
			buf.WriteString(", ")
		}
		if s, ok := part.(string); ok {
			fmt.Fprintf(&buf, "%q", s)
		} else {
			fmt.Fprintf(&buf, "%v", part)
		}
	}
	buf.WriteByte(')')
	return buf.String()
}

// DecodeKey decodes an encoded key. Integer parts are always decoded as int64.
func DecodeKey(b []byte) (Key, error) {
	var k Key
	for len(b) > 0 {
		tag := b[0]
		b = b[1:]
		switch tag {
		case stringTag:
			var s []byte
			for {
				i := bytes.IndexByte(b, 0x00)
				if i < 0 {
					return nil, fmt.Errorf("%w: unterminated string", ErrInvalidKey)
				}
				s = append(s, b[:i]...)
				b = b[i+1:]
				if len(b) > 0 && b[0] == 0xff {
					// escaped nul
					s = append(s, 0x00)
					b = b[1:]
					continue
				}
				break
			}
			k = append(k, string(s))
		case intTag:
			if len(b) < 8 {
				return nil, fmt.Errorf("%w: truncated integer", ErrInvalidKey)
			}
			k = append(k, decodeInt(b[:8]))
			b = b[8:]
		default:
			return nil, fmt.Errorf("%w: unknown tag %#x", ErrInvalidKey, tag)
		}
	}
	return k, nil
}

// encodeInt flips the sign bit so that negative integers sort before
// positive integers in big-endian byte order.
func encodeInt(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v)^(1<<63))
	return b
}

func decodeInt(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b) ^ (1 << 63))
}

// prefixEnd returns the smallest byte string greater than every string with
// the given prefix, or nil if there is no such string.
func prefixEnd(prefix []byte) []byte {
	end := bytes.Clone(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
