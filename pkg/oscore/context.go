// Package oscore ties together this module's CBOR, AEAD, HKDF, CoAP
// option and nonce primitives into the OSCORE security context derivation
// and the protect/unprotect pipelines (§4.5, §4.11, §4.12).
package oscore

import (
	"github.com/coapsec/oscore/internal/hkdf"
	"github.com/coapsec/oscore/internal/hkdfinfo"
)

// AeadAESCCM16_64_128 is the COSE algorithm identifier for
// AES-CCM-16-64-128, the only AEAD this module supports (§3).
const AeadAESCCM16_64_128 int64 = 10

const (
	keyLength = 16 // AES-CCM-16-64-128 key length
	ivLength  = 13 // Common IV / nonce length

	// maxSeqNum is the largest value a 5-byte big-endian counter can
	// hold; incrementing past it is fail-stop (§4.11 step 2).
	maxSeqNum = 1<<40 - 1
)

// PreEstablished is the immutable input material §3 requires before any
// context can be derived: shared secret material plus the per-endpoint
// identities that make (master_secret, master_salt, sender_id) globally
// unique.
type PreEstablished struct {
	MasterSecret []byte
	MasterSalt   []byte // defaults to empty string if nil
	SenderID     []byte
	RecipientID  []byte
	IDContext    []byte // nil when absent
	AeadAlg      int64  // defaults to AeadAESCCM16_64_128 if zero
}

func (pre PreEstablished) aeadAlg() int64 {
	if pre.AeadAlg == 0 {
		return AeadAESCCM16_64_128
	}
	return pre.AeadAlg
}

// CommonContext is the immutable, shared-by-both-ends half of an OSCORE
// security context (§3).
type CommonContext struct {
	AeadAlg      int64
	MasterSecret []byte
	MasterSalt   []byte
	IDContext    []byte
	CommonIV     [ivLength]byte
}

// SenderContext holds this endpoint's own key and the only mutable field
// in the data model: its sequence number, which MUST survive process
// restarts (§3, §6).
type SenderContext struct {
	SenderID  []byte
	SenderKey [keyLength]byte
	seqNum    uint64 // 40-bit counter, restored via RestoreSeqNum
}

// RecipientContext holds a peer's key and the mutable replay window that
// tracks its recently observed Partial IVs (§3).
type RecipientContext struct {
	RecipientID  []byte
	RecipientKey [keyLength]byte
	Replay       *ReplayWindow
}

// derive runs the shared HKDF info construction and expansion (§4.5):
// `Expand(salt=master_salt, ikm=master_secret, info=CBOR(id, id_context,
// aead_alg, type, len(out)), len(out))`.
func derive(pre PreEstablished, id []byte, typ hkdfinfo.Type, out []byte) error {
	if len(out) == 0 {
		return newErr(KindInvalidOutputLength, "derive: requested output length is zero", nil)
	}

	info := hkdfinfo.Info{
		ID:        id,
		IDContext: pre.IDContext,
		AeadAlg:   pre.aeadAlg(),
		Type:      typ,
		Length:    len(out),
	}
	infoBytes, err := info.Encode()
	if err != nil {
		return newErr(KindCborError, "derive: encoding hkdf info", err)
	}

	derived, err := hkdf.Expand(pre.MasterSecret, pre.MasterSalt, infoBytes, len(out))
	if err != nil {
		return newErr(KindOutputTooLong, "derive: hkdf expand", err)
	}
	copy(out, derived)
	return nil
}

// DeriveCommonContext builds the Common Context: a Common IV derived with
// an empty id, type IV, and the fixed 13-byte output length (§4.5).
func DeriveCommonContext(pre PreEstablished) (*CommonContext, error) {
	cc := &CommonContext{
		AeadAlg:      pre.aeadAlg(),
		MasterSecret: pre.MasterSecret,
		MasterSalt:   pre.MasterSalt,
		IDContext:    pre.IDContext,
	}
	if err := derive(pre, nil, hkdfinfo.TypeIV, cc.CommonIV[:]); err != nil {
		return nil, err
	}
	return cc, nil
}

// DeriveSenderContext builds the Sender Context: a 16-byte key derived
// with id = sender_id, type Key. seqNum starts at 0; restore persisted
// state afterward with RestoreSeqNum.
func DeriveSenderContext(pre PreEstablished) (*SenderContext, error) {
	sc := &SenderContext{SenderID: pre.SenderID}
	if err := derive(pre, pre.SenderID, hkdfinfo.TypeKey, sc.SenderKey[:]); err != nil {
		return nil, err
	}
	return sc, nil
}

// DeriveRecipientContext builds the Recipient Context analogously, using
// recipient_id, with a fresh replay window of the given size in bits.
func DeriveRecipientContext(pre PreEstablished, replayWindowSize int) (*RecipientContext, error) {
	rc := &RecipientContext{
		RecipientID: pre.RecipientID,
		Replay:      NewReplayWindow(replayWindowSize),
	}
	if err := derive(pre, pre.RecipientID, hkdfinfo.TypeKey, rc.RecipientKey[:]); err != nil {
		return nil, err
	}
	return rc, nil
}

// RestoreSeqNum sets the sender sequence number from persisted state (§6:
// "store sender sequence number durably before transmit"). Call this once
// after DeriveSenderContext, before the first Protect.
func (sc *SenderContext) RestoreSeqNum(seq uint64) {
	sc.seqNum = seq & maxSeqNum
}

// SeqNum returns the current sequence number (for persistence or
// inspection); it does not mutate state.
func (sc *SenderContext) SeqNum() uint64 {
	return sc.seqNum
}

// NextPartialIV atomically increments the sequence number by standard
// big-endian carry propagation across the full 5-byte counter (§9
// redesign: the reference source's carry-stops-at-first-nonzero-byte
// truncation bug is not reproduced here) and returns the trimmed Partial
// IV for the new value. Overflow is fail-stop: it returns a
// KindInvalidOutputLength error and leaves the sequence number unchanged,
// so the caller can detect it and refuse to transmit.
func (sc *SenderContext) NextPartialIV() ([]byte, error) {
	if sc.seqNum >= maxSeqNum {
		return nil, newErr(KindInvalidOutputLength, "sender sequence number exhausted", nil)
	}
	sc.seqNum++
	return TrimPartialIV(EncodeSeqNum(sc.seqNum)), nil
}

// EncodeSeqNum renders seq as a 5-byte big-endian counter.
func EncodeSeqNum(seq uint64) []byte {
	b := make([]byte, 5)
	for i := 4; i >= 0; i-- {
		b[i] = byte(seq)
		seq >>= 8
	}
	return b
}

// TrimPartialIV strips leading zero bytes from a big-endian Partial IV,
// keeping exactly one zero byte when the value is zero (§3 invariant).
func TrimPartialIV(b []byte) []byte {
	i := 0
	for i < len(b)-1 && b[i] == 0 {
		i++
	}
	return b[i:]
}
