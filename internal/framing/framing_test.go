package framing

import (
	"bytes"
	"io"
	"testing"
)

// chunkedReader re-serves the bytes of buf in fixed-size pieces,
// regardless of how the frame boundaries fall — simulating arbitrary TCP
// chunking independent of the record boundaries.
type chunkedReader struct {
	data      []byte
	chunkSize int
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := c.chunkSize
	if n > len(p) {
		n = len(p)
	}
	if n > len(c.data) {
		n = len(c.data)
	}
	copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}

func buildStream(records [][]byte) []byte {
	var buf bytes.Buffer
	for _, r := range records {
		if err := WriteRecord(&buf, r); err != nil {
			panic(err)
		}
	}
	return buf.Bytes()
}

// TestFramerRechunking checks that for any split of a concatenated record
// stream into arbitrary chunk sizes, the Reader yields exactly the
// original record sequence.
func TestFramerRechunking(t *testing.T) {
	records := [][]byte{
		[]byte("hello\n!"),
		[]byte(""),
		bytes.Repeat([]byte{0xAB}, 5000),
		[]byte("x"),
	}
	stream := buildStream(records)

	for _, chunkSize := range []int{1, 2, 3, 7, 64, 4096, len(stream)} {
		cr := &chunkedReader{data: append([]byte{}, stream...), chunkSize: chunkSize}
		fr := NewReader(cr)

		for i, want := range records {
			got, err := fr.ReadRecord()
			if err != nil {
				t.Fatalf("chunkSize=%d record=%d: unexpected error: %v", chunkSize, i, err)
			}
			if !bytes.Equal(got, want) {
				t.Fatalf("chunkSize=%d record=%d: got %v want %v", chunkSize, i, got, want)
			}
		}

		if _, err := fr.ReadRecord(); err != io.EOF {
			t.Fatalf("chunkSize=%d: expected EOF after last record, got %v", chunkSize, err)
		}
	}
}

// TestReadRecordUnexpectedEOF checks a stream that ends mid-payload.
func TestReadRecordUnexpectedEOF(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRecord(&buf, []byte("hello")); err != nil {
		t.Fatalf("WriteRecord failed: %v", err)
	}
	truncated := buf.Bytes()[:buf.Len()-2]

	fr := NewReader(bytes.NewReader(truncated))
	if _, err := fr.ReadRecord(); err != io.ErrUnexpectedEOF {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}

// TestReadRecordTooLarge checks that an oversize length header is
// rejected before any payload allocation.
func TestReadRecordTooLarge(t *testing.T) {
	var lenBuf [4]byte
	lenBuf[0] = 0xFF // absurdly large length
	fr := NewReaderSize(bytes.NewReader(lenBuf[:]), 1024)

	if _, err := fr.ReadRecord(); err == nil {
		t.Fatal("expected an error for oversize frame")
	}
}
