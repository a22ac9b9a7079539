// Package hkdf wraps RFC 5869 HKDF-SHA-256, the only key derivation function
// this module's security contexts use.
package hkdf

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// MaxOutputLength is HKDF's RFC 5869 bound on Expand output: 255 times the
// underlying hash's output size (32 bytes for SHA-256).
const MaxOutputLength = 255 * sha256.Size

// ErrOutputTooLong is returned when the requested output length exceeds
// MaxOutputLength.
var ErrOutputTooLong = errors.New("hkdf: requested output exceeds 255*HashLen")

// Expand runs HKDF-SHA-256 extract-then-expand over ikm, salt and info,
// returning exactly length bytes. An empty salt is treated as RFC 5869
// prescribes: substituted with a string of HashLen zero bytes, which is
// golang.org/x/crypto/hkdf's behavior for a nil salt, so an empty salt is
// passed through unchanged rather than special-cased here.
func Expand(ikm, salt, info []byte, length int) ([]byte, error) {
	if length > MaxOutputLength {
		return nil, ErrOutputTooLong
	}
	if length == 0 {
		return []byte{}, nil
	}

	r := hkdf.New(sha256.New, ikm, salt, info)
	out := make([]byte, length)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}
