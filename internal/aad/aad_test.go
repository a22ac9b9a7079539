package aad

import "testing"

// TestExternalEncodeShape asserts the CBOR array(5) structure §4.10
// requires: [1, [10], request_kid, request_piv, h'']. Byte-level shape is
// checked rather than opaque equality so a future AEAD algorithm addition
// doesn't need a second literal vector.
func TestExternalEncodeShape(t *testing.T) {
	e := External{AeadAlg: AeadAESCCM16_64_128_forTest, RequestKID: []byte{0x01}, RequestPIV: []byte{0x14}}
	got, err := e.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := []byte{
		0x85,       // array(5)
		0x01,       // uint 1 (version)
		0x81,       // array(1)
		0x0a,       // uint 10 (AES-CCM-16-64-128)
		0x41, 0x01, // bstr(1) 0x01 (request_kid)
		0x41, 0x14, // bstr(1) 0x14 (request_piv)
		0x40, // bstr(0) (class I options, empty)
	}
	if string(got) != string(want) {
		t.Fatalf("Encode() = % x, want % x", got, want)
	}
}

func TestExternalEncodeEmptyKID(t *testing.T) {
	e := External{AeadAlg: AeadAESCCM16_64_128_forTest}
	got, err := e.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := []byte{0x85, 0x01, 0x81, 0x0a, 0x40, 0x40, 0x40}
	if string(got) != string(want) {
		t.Fatalf("Encode() = % x, want % x", got, want)
	}
}

func TestEncStructureShape(t *testing.T) {
	external := []byte{0x01, 0x02, 0x03}
	got, err := EncStructure(external)
	if err != nil {
		t.Fatalf("EncStructure: %v", err)
	}
	want := []byte{
		0x83,                                     // array(3)
		0x68, 'E', 'n', 'c', 'r', 'y', 'p', 't', '0', // tstr(8) "Encrypt0"
		0x40,             // bstr(0) (protected header, always empty)
		0x43, 0x01, 0x02, 0x03, // bstr(3) external_aad
	}
	if string(got) != string(want) {
		t.Fatalf("EncStructure() = % x, want % x", got, want)
	}
}

func TestBuildComposesEncodeAndEncStructure(t *testing.T) {
	e := External{AeadAlg: AeadAESCCM16_64_128_forTest, RequestKID: []byte{0x01}, RequestPIV: []byte{0x14}}
	external, err := e.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	wantOuter, err := EncStructure(external)
	if err != nil {
		t.Fatalf("EncStructure: %v", err)
	}
	got, err := Build(e)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if string(got) != string(wantOuter) {
		t.Fatalf("Build() = % x, want % x", got, wantOuter)
	}
}

// AeadAESCCM16_64_128_forTest mirrors pkg/oscore's COSE algorithm constant
// without importing it, since aad is a lower-level package than pkg/oscore.
const AeadAESCCM16_64_128_forTest int64 = 10
