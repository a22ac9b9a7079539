package aead

import (
	"bytes"
	"testing"
)

func mustKey() []byte  { return bytes.Repeat([]byte{0x42}, KeySize) }
func mustNonce() []byte { return bytes.Repeat([]byte{0x07}, NonceSize) }

func TestSealOpenRoundTrip(t *testing.T) {
	cases := []struct {
		name      string
		plaintext []byte
		aad       []byte
	}{
		{"empty plaintext and aad", nil, nil},
		{"plaintext no aad", []byte("hello oscore"), nil},
		{"aad no plaintext", nil, []byte("Encrypt0 aad")},
		{"both", []byte{0x01, 0x02, 0x03, 0x04, 0x05}, []byte{0xde, 0xad, 0xbe, 0xef}},
		{"long plaintext spans multiple blocks", bytes.Repeat([]byte("x"), 100), []byte("aad")},
	}

	key, nonce := mustKey(), mustNonce()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ct, err := Seal(key, nonce, c.plaintext, c.aad)
			if err != nil {
				t.Fatalf("Seal: %v", err)
			}
			if len(ct) != len(c.plaintext)+TagSize {
				t.Fatalf("ciphertext length = %d, want %d", len(ct), len(c.plaintext)+TagSize)
			}

			pt, err := Open(key, nonce, ct, c.aad)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if !bytes.Equal(pt, c.plaintext) {
				t.Fatalf("round trip mismatch: got %x want %x", pt, c.plaintext)
			}
		})
	}
}

func TestOpenRejectsTamperedCiphertext(t *testing.T) {
	key, nonce := mustKey(), mustNonce()
	ct, err := Seal(key, nonce, []byte("confidential"), []byte("aad"))
	if err != nil {
		t.Fatal(err)
	}

	tampered := append([]byte(nil), ct...)
	tampered[0] ^= 0x01
	if _, err := Open(key, nonce, tampered, []byte("aad")); err != ErrAuthFailed {
		t.Fatalf("expected ErrAuthFailed for tampered ciphertext, got %v", err)
	}

	if _, err := Open(key, nonce, ct, []byte("wrong aad")); err != ErrAuthFailed {
		t.Fatalf("expected ErrAuthFailed for mismatched aad, got %v", err)
	}
}

func TestOpenRejectsTamperedTag(t *testing.T) {
	key, nonce := mustKey(), mustNonce()
	ct, err := Seal(key, nonce, []byte("confidential"), nil)
	if err != nil {
		t.Fatal(err)
	}
	tampered := append([]byte(nil), ct...)
	tampered[len(tampered)-1] ^= 0xff
	if _, err := Open(key, nonce, tampered, nil); err != ErrAuthFailed {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
}

func TestInvalidKeyAndNonceLengths(t *testing.T) {
	if _, err := Seal(make([]byte, 15), mustNonce(), nil, nil); err != ErrInvalidKeyLength {
		t.Fatalf("expected ErrInvalidKeyLength, got %v", err)
	}
	if _, err := Seal(mustKey(), make([]byte, 12), nil, nil); err != ErrInvalidNonceLength {
		t.Fatalf("expected ErrInvalidNonceLength, got %v", err)
	}
}

func TestDifferentNoncesProduceDifferentCiphertexts(t *testing.T) {
	key := mustKey()
	n1 := mustNonce()
	n2 := append([]byte(nil), n1...)
	n2[0] ^= 0x01

	ct1, _ := Seal(key, n1, []byte("same plaintext"), nil)
	ct2, _ := Seal(key, n2, []byte("same plaintext"), nil)
	if bytes.Equal(ct1, ct2) {
		t.Fatal("expected different nonces to produce different ciphertexts")
	}
}
