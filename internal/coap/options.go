// Package coap implements the wire-level pieces of CoAP (RFC 7252) this
// module's OSCORE core needs: the option sequence codec and the option
// class partitioner (§4.6-§4.7). It does not parse or build whole CoAP
// messages - that's the transport collaborator's job (§6) - only the
// option byte sequence that sits between the CoAP header/token and the
// 0xFF payload marker.
package coap

import "fmt"

// Option is one decoded CoAP option: its absolute option number and its
// raw value bytes. Options are always stored and emitted in non-decreasing
// order of Number.
type Option struct {
	Number uint16
	Value  []byte
}

// Options is an ordered sequence of options, already sorted by Number.
type Options []Option

// Error reports a CoAP option codec failure.
type Error struct {
	Op  string
	Err string
}

func (e *Error) Error() string {
	return fmt.Sprintf("coap: %s: %s", e.Op, e.Err)
}

var (
	errOptionLength = "invalid option length"
	errReserved     = "reserved nibble value 15"
)

// Decode walks buf, a CoAP option sequence optionally followed by a 0xFF
// payload marker and payload, and returns the decoded options plus
// whatever trails the marker (nil if there is no marker). Absolute option
// numbers are reconstructed by accumulating each entry's 4-bit-or-extended
// delta field onto the running total, per RFC 7252 §3.1.
func Decode(buf []byte) (Options, []byte, error) {
	var opts Options
	num := 0
	off := 0

	for off < len(buf) {
		if buf[off] == 0xff {
			if len(buf)-off < 2 {
				return nil, nil, &Error{"decode", errOptionLength}
			}
			return opts, buf[off+1:], nil
		}

		deltaNibble := int(buf[off] >> 4)
		lengthNibble := int(buf[off] & 0x0f)
		off++

		delta, off2, err := readExtended(buf, off, deltaNibble)
		if err != nil {
			return nil, nil, err
		}
		off = off2

		length, off3, err := readExtended(buf, off, lengthNibble)
		if err != nil {
			return nil, nil, err
		}
		off = off3

		if off+length > len(buf) {
			return nil, nil, &Error{"decode", errOptionLength}
		}

		num += delta
		value := make([]byte, length)
		copy(value, buf[off:off+length])
		opts = append(opts, Option{Number: uint16(num), Value: value})
		off += length
	}

	return opts, nil, nil
}

// readExtended resolves a 4-bit nibble field (delta or length) into its
// actual value, consuming 0, 1 or 2 extended bytes from buf at off per the
// 13/14 bias rule; 15 is a reserved, protocol-error value.
func readExtended(buf []byte, off, nibble int) (value, newOff int, err error) {
	switch nibble {
	case 15:
		return 0, off, &Error{"decode", errReserved}
	case 14:
		if off+2 > len(buf) {
			return 0, off, &Error{"decode", errOptionLength}
		}
		return (int(buf[off])<<8 | int(buf[off+1])) + 269, off + 2, nil
	case 13:
		if off+1 > len(buf) {
			return 0, off, &Error{"decode", errOptionLength}
		}
		return int(buf[off]) + 13, off + 1, nil
	default:
		return nibble, off, nil
	}
}

// Sizing returns the option count and the number of bytes Encode would
// write for opts, without materializing anything - the two-pass discipline
// used throughout this module (cbor.Writer, hkdfinfo.Info).
func Sizing(opts Options) (count int, length int) {
	last := 0
	for _, o := range opts {
		delta := int(o.Number) - last
		last = int(o.Number)
		length += headerLen(delta, len(o.Value)) + len(o.Value)
		count++
	}
	return count, length
}

// headerLen returns the byte length of the option header (the initial
// nibble byte plus any extended delta/length bytes) for the given delta
// and value length, always choosing the minimal encoding.
func headerLen(delta, length int) int {
	n := 1
	n += extendedLen(delta)
	n += extendedLen(length)
	return n
}

func extendedLen(v int) int {
	switch {
	case v < 13:
		return 0
	case v < 269:
		return 1
	default:
		return 2
	}
}

// Encode emits opts (which MUST already be sorted by Number) into out,
// which must be sized exactly via Sizing. It always writes the minimal
// delta/length encoding, mirroring Decode.
func Encode(opts Options, out []byte) (int, error) {
	off := 0
	last := 0

	for _, o := range opts {
		delta := int(o.Number) - last
		last = int(o.Number)

		n, err := writeHeader(out[off:], delta, len(o.Value))
		if err != nil {
			return 0, err
		}
		off += n

		if off+len(o.Value) > len(out) {
			return 0, &Error{"encode", errOptionLength}
		}
		copy(out[off:], o.Value)
		off += len(o.Value)
	}

	return off, nil
}

func writeHeader(out []byte, delta, length int) (int, error) {
	if len(out) < 1 {
		return 0, &Error{"encode", errOptionLength}
	}
	n := 1
	out[0] = 0

	deltaNibble, deltaExt := nibbleAndExtended(delta)
	out[0] |= byte(deltaNibble) << 4
	n2, err := appendExtended(out, n, deltaExt)
	if err != nil {
		return 0, err
	}
	n = n2

	lengthNibble, lengthExt := nibbleAndExtended(length)
	out[0] |= byte(lengthNibble)
	n3, err := appendExtended(out, n, lengthExt)
	if err != nil {
		return 0, err
	}
	n = n3

	return n, nil
}

// nibbleAndExtended returns the 4-bit nibble for v and the (possibly empty)
// extra byte(s) a 13 or 14 nibble value needs, already biased per RFC 7252
// §3.1.
func nibbleAndExtended(v int) (nibble int, extended []byte) {
	switch {
	case v < 13:
		return v, nil
	case v < 269:
		return 13, []byte{byte(v - 13)}
	default:
		v -= 269
		return 14, []byte{byte(v >> 8), byte(v)}
	}
}

func appendExtended(out []byte, off int, ext []byte) (int, error) {
	if off+len(ext) > len(out) {
		return 0, &Error{"encode", errOptionLength}
	}
	copy(out[off:], ext)
	return off + len(ext), nil
}
