// Package aad builds the external AAD and COSE Enc_structure that bind an
// OSCORE message's AEAD seal/open to its request's identity, per §4.10.
package aad

import "github.com/coapsec/oscore/internal/cbor"

// Version is the OSCORE version this module implements.
const Version = 1

// External is the input to ExternalAAD: the 5-element structure
// `[oscore_version, [aead_alg], request_kid, request_piv,
// encoded_class_I_options]`. Both RequestKID and RequestPIV are always the
// *request's* values, even when protecting or unprotecting a response, so
// requester and responder compute identical AAD (§4.10).
type External struct {
	AeadAlg       int64
	RequestKID    []byte
	RequestPIV    []byte
	ClassIOptions []byte // always empty: Class I is presently unpopulated (§4.7)
}

func (e External) build(w *cbor.Writer) error {
	if err := w.Array(5); err != nil {
		return err
	}
	if err := w.Uint(Version); err != nil {
		return err
	}
	if err := w.Array(1); err != nil {
		return err
	}
	if err := w.Int(e.AeadAlg); err != nil {
		return err
	}
	if err := w.ByteString(e.RequestKID); err != nil {
		return err
	}
	if err := w.ByteString(e.RequestPIV); err != nil {
		return err
	}
	return w.ByteString(e.ClassIOptions)
}

// Encode returns the deterministic CBOR encoding of the external AAD.
func (e External) Encode() ([]byte, error) {
	sizer := cbor.NewSizer()
	if err := e.build(sizer); err != nil {
		return nil, err
	}
	enc := cbor.NewEncoder(make([]byte, sizer.Len()))
	if err := e.build(enc); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}

// encStructure is the COSE Encrypt0_structure `["Encrypt0", h'',
// external_aad]` fed to the AEAD as its associated data (§4.10).
type encStructure struct {
	externalAAD []byte
}

func (s encStructure) build(w *cbor.Writer) error {
	if err := w.Array(3); err != nil {
		return err
	}
	if err := w.TextString("Encrypt0"); err != nil {
		return err
	}
	if err := w.ByteString(nil); err != nil {
		return err
	}
	return w.ByteString(s.externalAAD)
}

// EncStructure wraps an already-encoded external AAD into the COSE
// Encrypt0_structure, returning the bytes to pass as the AEAD's aad
// parameter.
func EncStructure(externalAAD []byte) ([]byte, error) {
	s := encStructure{externalAAD: externalAAD}
	sizer := cbor.NewSizer()
	if err := s.build(sizer); err != nil {
		return nil, err
	}
	enc := cbor.NewEncoder(make([]byte, sizer.Len()))
	if err := s.build(enc); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}

// Build is the convenience composition of External.Encode followed by
// EncStructure, returning the bytes the protect/unprotect pipelines pass
// directly as AEAD aad.
func Build(e External) ([]byte, error) {
	external, err := e.Encode()
	if err != nil {
		return nil, err
	}
	return EncStructure(external)
}
