package cbor

import (
	"bytes"
	"testing"
)

// size then encode with the same sequence of calls; assert the sizing pass
// predicted exactly the bytes the encode pass produced.
func sizeThenEncode(t *testing.T, build func(w *Writer) error) []byte {
	t.Helper()

	sizer := NewSizer()
	if err := build(sizer); err != nil {
		t.Fatalf("sizing pass: %v", err)
	}

	enc := NewEncoder(make([]byte, sizer.Len()))
	if err := build(enc); err != nil {
		t.Fatalf("encode pass: %v", err)
	}
	if enc.Len() != sizer.Len() {
		t.Fatalf("encode wrote %d bytes, sizing predicted %d", enc.Len(), sizer.Len())
	}
	return enc.Bytes()
}

func TestUintCanonicalWidths(t *testing.T) {
	cases := []struct {
		v    uint64
		want []byte
	}{
		{0, []byte{0x00}},
		{23, []byte{0x17}},
		{24, []byte{0x18, 0x18}},
		{255, []byte{0x18, 0xff}},
		{256, []byte{0x19, 0x01, 0x00}},
		{65535, []byte{0x19, 0xff, 0xff}},
		{65536, []byte{0x1a, 0x00, 0x01, 0x00, 0x00}},
		{1<<32 - 1, []byte{0x1a, 0xff, 0xff, 0xff, 0xff}},
		{1 << 32, []byte{0x1b, 0, 0, 0, 1, 0, 0, 0, 0}},
	}
	for _, c := range cases {
		got := sizeThenEncode(t, func(w *Writer) error { return w.Uint(c.v) })
		if !bytes.Equal(got, c.want) {
			t.Errorf("Uint(%d) = % x, want % x", c.v, got, c.want)
		}
	}
}

func TestByteStringAndTextString(t *testing.T) {
	got := sizeThenEncode(t, func(w *Writer) error { return w.ByteString([]byte{0x01, 0x02, 0x03}) })
	want := []byte{0x43, 0x01, 0x02, 0x03}
	if !bytes.Equal(got, want) {
		t.Errorf("ByteString = % x, want % x", got, want)
	}

	got = sizeThenEncode(t, func(w *Writer) error { return w.TextString("Key") })
	want = []byte{0x63, 'K', 'e', 'y'}
	if !bytes.Equal(got, want) {
		t.Errorf("TextString(%q) = % x, want % x", "Key", got, want)
	}

	got = sizeThenEncode(t, func(w *Writer) error { return w.TextString("") })
	want = []byte{0x60}
	if !bytes.Equal(got, want) {
		t.Errorf("TextString(%q) = % x, want % x", "", got, want)
	}
}

func TestArrayAndNull(t *testing.T) {
	got := sizeThenEncode(t, func(w *Writer) error {
		if err := w.Array(2); err != nil {
			return err
		}
		if err := w.Uint(1); err != nil {
			return err
		}
		return w.Null()
	})
	want := []byte{0x82, 0x01, 0xf6}
	if !bytes.Equal(got, want) {
		t.Errorf("array = % x, want % x", got, want)
	}
}

func TestIntNegative(t *testing.T) {
	got := sizeThenEncode(t, func(w *Writer) error { return w.Int(-1) })
	if !bytes.Equal(got, []byte{0x20}) {
		t.Errorf("Int(-1) = % x", got)
	}
	got = sizeThenEncode(t, func(w *Writer) error { return w.Int(-10) })
	if !bytes.Equal(got, []byte{0x29}) {
		t.Errorf("Int(-10) = % x", got)
	}
}

func TestEncodeOverrunFails(t *testing.T) {
	sizer := NewSizer()
	if err := sizer.ByteString([]byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	enc := NewEncoder(make([]byte, sizer.Len()-1))
	if err := enc.ByteString([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected overrun error")
	}
}
