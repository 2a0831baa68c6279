package gdbstub

import (
	"bytes"
	"errors"
	"testing"
)

func TestHexEncodeDecodeRoundTrip(t *testing.T) {
	src := []byte{0x00, 0x01, 0x7f, 0x80, 0xff}

	enc := hexEncodeString(src)
	if enc != "00017F80FF" {
		t.Fatalf("hexEncodeString = %q, want %q", enc, "00017F80FF")
	}

	dec, ok := hexDecode(enc)
	if !ok {
		t.Fatalf("hexDecode failed on %q", enc)
	}

	if !bytes.Equal(dec, src) {
		t.Fatalf("round trip mismatch: got %x, want %x", dec, src)
	}
}

func TestHexDecodeAcceptsLowercase(t *testing.T) {
	dec, ok := hexDecode("deadbeef")
	if !ok {
		t.Fatal("hexDecode rejected lowercase input")
	}

	if !bytes.Equal(dec, []byte{0xde, 0xad, 0xbe, 0xef}) {
		t.Fatalf("got %x", dec)
	}
}

func TestHexDecodeOddLength(t *testing.T) {
	if _, ok := hexDecode("abc"); ok {
		t.Fatal("hexDecode accepted an odd-length string")
	}
}

func TestParseHexUint(t *testing.T) {
	v, rest, ok := parseHexUint("1000,200", ",")
	if !ok || v != 0x1000 || rest != ",200" {
		t.Fatalf("got (%d, %q, %v)", v, rest, ok)
	}
}

func TestParseHexUintNoDigits(t *testing.T) {
	_, _, ok := parseHexUint(",200", ",")
	if ok {
		t.Fatal("parseHexUint should fail with zero digits consumed")
	}
}

func TestChecksum8(t *testing.T) {
	if got := checksum8([]byte("OK")); got != 0x9A {
		t.Fatalf("checksum8(OK) = %#x, want 0x9a", got)
	}
}

func TestFrame(t *testing.T) {
	var g growBuffer
	frame(&g, []byte("OK"))

	if got := g.String(); got != "$OK#9a" && got != "$OK#9A" {
		t.Fatalf("frame = %q", got)
	}
}

func TestReplyError(t *testing.T) {
	got := replyError(StatusNotSupported)
	if len(got) != 3 || got[0] != 'E' {
		t.Fatalf("replyError shape = %q", got)
	}
}

func TestStopReplySimple(t *testing.T) {
	if got := stopReply(false, 0, 0); got != "S05" {
		t.Fatalf("stopReply(false) = %q, want S05", got)
	}
}

func TestStopReplyExtended(t *testing.T) {
	got := stopReply(true, 0x1000, 4)
	want := "T05;thread:1;pc:" + hexEncodeString([]byte{0x00, 0x10, 0x00, 0x00}) + ";"

	if got != want {
		t.Fatalf("stopReply(true) = %q, want %q", got, want)
	}
}

// TestHexEncodeChunkedMultiChunk is the spec §9 regression test: a read
// spanning more than one memChunkSize-sized chunk must produce hex output
// whose length is exactly twice the byte count read, with every chunk's
// encoding appended after the previous one rather than overlapping it (the
// donor's "advance by cbThisRead not cbThisRead*2" bug).
func TestHexEncodeChunkedMultiChunk(t *testing.T) {
	const n = memChunkSize*2 + 17

	src := make([]byte, n)
	for i := range src {
		src[i] = byte(i)
	}

	cursor := 0
	read := func(chunk []byte) (int, error) {
		got := copy(chunk, src[cursor:])
		cursor += got

		return got, nil
	}

	var g growBuffer
	if err := hexEncodeChunked(&g, read, n); err != nil {
		t.Fatalf("hexEncodeChunked: %v", err)
	}

	want := hexEncodeString(src)
	if g.String() != want {
		t.Fatalf("chunked encoding mismatch:\n got  %d hex chars\n want %d hex chars", len(g.String()), len(want))
	}
}

func TestHexEncodeChunkedPropagatesError(t *testing.T) {
	wantErr := errors.New("boom")

	read := func(chunk []byte) (int, error) {
		return 0, wantErr
	}

	var g growBuffer
	if err := hexEncodeChunked(&g, read, 10); !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want %v", err, wantErr)
	}
}

func TestXferChunk(t *testing.T) {
	data := []byte("0123456789")

	marker, body := xferChunk(data, 0, 4)
	if marker != 'm' || string(body) != "0123" {
		t.Fatalf("got (%c, %q)", marker, body)
	}

	marker, body = xferChunk(data, 8, 4)
	if marker != 'l' || string(body) != "89" {
		t.Fatalf("got (%c, %q)", marker, body)
	}

	marker, body = xferChunk(data, 20, 4)
	if marker != 'l' || len(body) != 0 {
		t.Fatalf("got (%c, %q), want empty last chunk", marker, body)
	}
}

func TestEscapeBinary(t *testing.T) {
	var g growBuffer
	escapeBinary(&g, []byte{'$', '#', '*', '}', 'x'})

	want := []byte{'}', '$' ^ 0x20, '}', '#' ^ 0x20, '}', '*' ^ 0x20, '}', '}' ^ 0x20, 'x'}
	if !bytes.Equal(g.Bytes(), want) {
		t.Fatalf("escapeBinary = %v, want %v", g.Bytes(), want)
	}
}
