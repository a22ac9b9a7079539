// Package hkdfinfo encodes the CBOR "info" structure HKDF expansion binds
// each derived key or IV to: a 5-element array naming the identity, the
// algorithm, the kind of value being derived, and its length.
package hkdfinfo

import "github.com/coapsec/oscore/internal/cbor"

// Type distinguishes key derivation from IV derivation. The wire text is
// case-sensitive and must match exactly.
type Type string

const (
	// TypeKey derives a sender or recipient AEAD key.
	TypeKey Type = "Key"
	// TypeIV derives the Common IV.
	TypeIV Type = "IV"
)

// Info is the 5-element structure `[ id, id_context, aead_alg, type, L ]`.
type Info struct {
	// ID is the Sender or Recipient ID for key derivation, or empty for
	// Common IV derivation.
	ID []byte
	// IDContext is nil when absent, encoded as CBOR null.
	IDContext []byte
	// AeadAlg is the COSE algorithm identifier (10 for AES-CCM-16-64-128).
	AeadAlg int64
	// Type selects Key or IV derivation.
	Type Type
	// Length is the requested output length in bytes.
	Length int
}

// build runs the shared sizing/encoding codepath against w; called once in
// sizing mode and once in encode mode by Encode.
func (info Info) build(w *cbor.Writer) error {
	if err := w.Array(5); err != nil {
		return err
	}
	if err := w.ByteString(info.ID); err != nil {
		return err
	}
	if info.IDContext == nil {
		if err := w.Null(); err != nil {
			return err
		}
	} else {
		if err := w.ByteString(info.IDContext); err != nil {
			return err
		}
	}
	if err := w.Int(info.AeadAlg); err != nil {
		return err
	}
	if err := w.TextString(string(info.Type)); err != nil {
		return err
	}
	return w.Uint(uint64(info.Length))
}

// Encode returns the deterministic CBOR encoding of info, sizing first and
// allocating an exact buffer before writing.
func (info Info) Encode() ([]byte, error) {
	sizer := cbor.NewSizer()
	if err := info.build(sizer); err != nil {
		return nil, err
	}
	enc := cbor.NewEncoder(make([]byte, sizer.Len()))
	if err := info.build(enc); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}
