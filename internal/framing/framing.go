// Package framing implements the Transit wire's length-prefixed record
// codec: [4-byte big-endian length][record bytes]. Transit has no
// message/stream type byte on the wire, so this is a plain homogeneous
// record stream rather than a tagged multi-message codec.
package framing

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// DefaultMaxFrameSize is the default cap on a single frame's length,
// chosen to bound memory use against a hostile or corrupted length
// header.
const DefaultMaxFrameSize = 1 << 20 // 1 MiB

// ErrFrameTooLarge is returned when a length header exceeds the
// configured maximum.
var ErrFrameTooLarge = errors.New("framing: frame exceeds maximum size")

// Reader pulls whole records out of an underlying io.Reader that may
// deliver arbitrary chunk sizes. It preserves no state across records
// beyond what's needed to reassemble one frame at a time — it never
// buffers past the current frame's payload.
type Reader struct {
	r           io.Reader
	maxFrameLen uint32
}

// NewReader wraps r with the default maximum frame size.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, maxFrameLen: DefaultMaxFrameSize}
}

// NewReaderSize wraps r with an explicit maximum frame size.
func NewReaderSize(r io.Reader, maxFrameLen uint32) *Reader {
	return &Reader{r: r, maxFrameLen: maxFrameLen}
}

// ReadRecord reads one length-prefixed record and returns its payload
// with the length header stripped. A short read on the header or the
// payload is reported as io.ErrUnexpectedEOF.
func (fr *Reader) ReadRecord() ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(fr.r, lenBuf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, io.ErrUnexpectedEOF
	}

	length := binary.BigEndian.Uint32(lenBuf[:])
	if length > fr.maxFrameLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	record := make([]byte, length)
	if _, err := io.ReadFull(fr.r, record); err != nil {
		return nil, io.ErrUnexpectedEOF
	}
	return record, nil
}

// WriteRecord writes record to w framed as BE32(len(record)) || record.
func WriteRecord(w io.Writer, record []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(record)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("framing: write length header: %w", err)
	}
	if _, err := w.Write(record); err != nil {
		return fmt.Errorf("framing: write record body: %w", err)
	}
	return nil
}
