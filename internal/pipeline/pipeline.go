// Package pipeline implements the sender/receiver record pipeline:
// chunking, per-record encryption, streaming SHA-256 tracking, and the
// final digest-bearing ack. It generalizes a chunked encrypt/decrypt read
// loop — fixed-size reads, per-chunk AEAD seal/open, length-prefixed
// frames, incrementing nonce — to secretbox/4096-byte chunks with the
// little-endian nonce Transit's wire format requires.
package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/vu3rdd/wormhole-transit/internal/framing"
	"github.com/vu3rdd/wormhole-transit/internal/netutil"
	"github.com/vu3rdd/wormhole-transit/internal/tcrypto"
	"github.com/vu3rdd/wormhole-transit/transitmsg"
)

// ChunkSize is the maximum plaintext size of one record.
const ChunkSize = 4096

// SendFile streams r's plaintext through ep, encrypting each chunk under
// sk.SenderRecordKey with an incrementing nonce, then awaits and
// verifies the peer's final ack. It never buffers more than one chunk at
// a time.
func SendFile(ep *netutil.Endpoint, sk tcrypto.Subkeys, r io.Reader) error {
	hasher := sha256.New()
	var nonce tcrypto.Nonce
	buf := make([]byte, ChunkSize)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			hasher.Write(chunk)
			record := tcrypto.Encrypt(sk.SenderRecordKey, nonce, chunk)
			if werr := framing.WriteRecord(ep.Conn, record); werr != nil {
				return fmt.Errorf("pipeline: write record: %w", werr)
			}
			nonce.Nudge()
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("pipeline: read source: %w", err)
		}
	}

	return awaitAck(ep, sk.ReceiverRecordKey, hex.EncodeToString(hasher.Sum(nil)))
}

// awaitAck reads the one final encrypted record the receiver sends at
// nonce 0 under key, and checks its reported digest against wantSHA256.
func awaitAck(ep *netutil.Endpoint, key [32]byte, wantSHA256 string) error {
	fr := framing.NewReader(ep.R)
	record, err := fr.ReadRecord()
	if err != nil {
		return fmt.Errorf("pipeline: read ack: %w", err)
	}
	plaintext, err := tcrypto.Decrypt(key, record)
	if err != nil {
		return err
	}
	ack, err := transitmsg.DecodeAck(plaintext)
	if err != nil {
		return err
	}
	if ack.Ack != "ok" || ack.SHA256 != wantSHA256 {
		return ErrDigestMismatch
	}
	return nil
}

// ReceiveFile reads exactly size bytes of plaintext off ep, decrypting
// each incoming record under sk.SenderRecordKey — the nonce travels with
// each record rather than being tracked locally — writes it to dst, and
// tracks its SHA-256. Once the byte budget is exhausted it sends the
// digest-bearing ack encrypted under sk.ReceiverRecordKey at nonce 0.
func ReceiveFile(ep *netutil.Endpoint, sk tcrypto.Subkeys, dst io.Writer, size int64) error {
	hasher := sha256.New()
	fr := framing.NewReader(ep.R)
	remaining := size

	for remaining > 0 {
		record, err := fr.ReadRecord()
		if err != nil {
			return fmt.Errorf("pipeline: read record: %w", err)
		}
		plaintext, err := tcrypto.Decrypt(sk.SenderRecordKey, record)
		if err != nil {
			return err
		}
		if _, err := dst.Write(plaintext); err != nil {
			return fmt.Errorf("pipeline: write sink: %w", err)
		}
		hasher.Write(plaintext)
		remaining -= int64(len(plaintext))
	}

	ackPayload, err := transitmsg.EncodeAck(transitmsg.Ack{Ack: "ok", SHA256: hex.EncodeToString(hasher.Sum(nil))})
	if err != nil {
		return fmt.Errorf("pipeline: encode ack: %w", err)
	}
	var zeroNonce tcrypto.Nonce
	record := tcrypto.Encrypt(sk.ReceiverRecordKey, zeroNonce, ackPayload)
	if err := framing.WriteRecord(ep.Conn, record); err != nil {
		return fmt.Errorf("pipeline: write ack: %w", err)
	}
	return nil
}
