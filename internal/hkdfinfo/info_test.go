package hkdfinfo

import (
	"bytes"
	"testing"
)

func TestEncodeKeyInfoShape(t *testing.T) {
	info := Info{
		ID:        []byte{0x01},
		IDContext: nil,
		AeadAlg:   10,
		Type:      TypeKey,
		Length:    16,
	}
	got, err := info.Encode()
	if err != nil {
		t.Fatal(err)
	}

	want := []byte{
		0x85,       // array(5)
		0x41, 0x01, // bstr(1): sender id
		0xf6,       // null: id_context
		0x0a,       // uint(10): aead_alg
		0x63, 'K', 'e', 'y', // tstr(3): "Key"
		0x10, // uint(16): L
	}
	if !bytes.Equal(got, want) {
		t.Errorf("encode = % x, want % x", got, want)
	}
}

func TestEncodeIVInfoShape(t *testing.T) {
	info := Info{
		ID:        nil,
		IDContext: nil,
		AeadAlg:   10,
		Type:      TypeIV,
		Length:    13,
	}
	got, err := info.Encode()
	if err != nil {
		t.Fatal(err)
	}

	want := []byte{
		0x85,
		0x40, // bstr(0): empty id
		0xf6,
		0x0a,
		0x62, 'I', 'V', // tstr(2): "IV"
		0x0d, // uint(13)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("encode = % x, want % x", got, want)
	}
}

func TestEncodeWithIDContext(t *testing.T) {
	info := Info{
		ID:        []byte{0x02},
		IDContext: []byte{0xaa, 0xbb},
		AeadAlg:   10,
		Type:      TypeKey,
		Length:    16,
	}
	got, err := info.Encode()
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0x85,
		0x41, 0x02,
		0x42, 0xaa, 0xbb,
		0x0a,
		0x63, 'K', 'e', 'y',
		0x10,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("encode = % x, want % x", got, want)
	}
}

// "Key" and "IV" differ only by text content; this guards against the
// sizing/encoding passes disagreeing (see the teacher's two-pass
// discipline) on which literal was used.
func TestKeyAndIVTypesDisagreeInEncoding(t *testing.T) {
	key, err := (Info{Type: TypeKey, AeadAlg: 10, Length: 16}).Encode()
	if err != nil {
		t.Fatal(err)
	}
	iv, err := (Info{Type: TypeIV, AeadAlg: 10, Length: 16}).Encode()
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(key, iv) {
		t.Fatal("Key and IV info encodings must differ")
	}
}
