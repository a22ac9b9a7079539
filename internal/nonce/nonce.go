// Package nonce constructs the 13-byte AES-CCM-16-64-128 nonce from a
// Partial IV, the ID of whichever endpoint generated that PIV, and the
// security context's Common IV, per §4.9.
package nonce

import "fmt"

// Size is the fixed AES-CCM-16-64-128 nonce length, equal to the Common IV
// length required throughout this module.
const Size = 13

const (
	idPadLen  = Size - 6 // 7: padded_id_piv
	pivPadLen = 5        // padded_piv
)

// Error reports a nonce construction failure.
type Error struct {
	Err string
}

func (e *Error) Error() string {
	return fmt.Sprintf("nonce: %s", e.Err)
}

// Build forms the plain nonce `[len(idPiv)] || padded(idPiv, 7) ||
// padded(partialIV, 5)` and XORs it with commonIV. idPiv is the Sender ID
// of whichever endpoint generated partialIV (the sender's own ID when
// protecting, the peer's kid when unprotecting); partialIV must already be
// trimmed of leading zero bytes (one byte is kept for a zero value).
func Build(idPiv, partialIV, commonIV []byte) ([]byte, error) {
	if len(commonIV) != Size {
		return nil, &Error{"invalid common iv length"}
	}
	if len(partialIV) > pivPadLen {
		return nil, &Error{"partial iv longer than 5 bytes"}
	}
	if len(idPiv) > idPadLen {
		return nil, &Error{"id longer than 7 bytes"}
	}

	plain := make([]byte, Size)
	plain[0] = byte(len(idPiv))
	copy(plain[1+idPadLen-len(idPiv):1+idPadLen], idPiv)
	copy(plain[1+idPadLen+pivPadLen-len(partialIV):], partialIV)

	out := make([]byte, Size)
	for i := range out {
		out[i] = plain[i] ^ commonIV[i]
	}
	return out, nil
}
