package pipeline

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/vu3rdd/wormhole-transit/internal/framing"
	"github.com/vu3rdd/wormhole-transit/internal/netutil"
	"github.com/vu3rdd/wormhole-transit/internal/tcrypto"
	"github.com/vu3rdd/wormhole-transit/transitmsg"
)

func randomSubkeys(t *testing.T) tcrypto.Subkeys {
	t.Helper()
	var transitKey [32]byte
	if _, err := rand.Read(transitKey[:]); err != nil {
		t.Fatalf("failed to generate transit key: %v", err)
	}
	sk, err := tcrypto.DeriveSubkeys(transitKey)
	if err != nil {
		t.Fatalf("DeriveSubkeys failed: %v", err)
	}
	return sk
}

func pipeEndpoints() (*netutil.Endpoint, *netutil.Endpoint) {
	a, b := net.Pipe()
	return netutil.NewEndpoint(a, netutil.Direct, "", 0), netutil.NewEndpoint(b, netutil.Direct, "", 0)
}

// TestSendReceiveRoundTrip drives SendFile and ReceiveFile over a net.Pipe
// and checks the receiver gets the exact bytes.
func TestSendReceiveRoundTrip(t *testing.T) {
	sk := randomSubkeys(t)
	senderEp, receiverEp := pipeEndpoints()
	defer senderEp.Close()
	defer receiverEp.Close()

	plaintext := []byte("hello\n!")

	destDir := t.TempDir()
	sink, err := NewSink(destDir, "hello.txt")
	if err != nil {
		t.Fatalf("NewSink failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- ReceiveFile(receiverEp, sk, sink, int64(len(plaintext)))
	}()

	if err := SendFile(senderEp, sk, bytes.NewReader(plaintext)); err != nil {
		t.Fatalf("SendFile failed: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("ReceiveFile failed: %v", err)
	}
	if err := sink.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(destDir, "hello.txt"))
	if err != nil {
		t.Fatalf("failed to read received file: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("received %q, want %q", got, plaintext)
	}
}

// TestSendLargerThanOneChunk exercises the multi-record path.
func TestSendLargerThanOneChunk(t *testing.T) {
	sk := randomSubkeys(t)
	senderEp, receiverEp := pipeEndpoints()
	defer senderEp.Close()
	defer receiverEp.Close()

	plaintext := make([]byte, ChunkSize*3+17)
	if _, err := rand.Read(plaintext); err != nil {
		t.Fatalf("failed to generate plaintext: %v", err)
	}

	var received bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- ReceiveFile(receiverEp, sk, &received, int64(len(plaintext)))
	}()

	if err := SendFile(senderEp, sk, bytes.NewReader(plaintext)); err != nil {
		t.Fatalf("SendFile failed: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("ReceiveFile failed: %v", err)
	}
	if !bytes.Equal(received.Bytes(), plaintext) {
		t.Error("received bytes did not match sent bytes")
	}
}

// TestSendFileDigestMismatch checks that SendFile rejects a peer's ack
// that reports the wrong digest: the sender is the only side that ever
// compares a digest against its own hash, and aborts when a fake peer
// lies in its ack.
func TestSendFileDigestMismatch(t *testing.T) {
	sk := randomSubkeys(t)
	senderEp, peerEp := pipeEndpoints()
	defer senderEp.Close()
	defer peerEp.Close()

	plaintext := []byte("hello\n!")

	done := make(chan error, 1)
	go func() {
		// Drain the one record the sender writes, then reply with a
		// deliberately wrong digest — a fake peer lying in its ack.
		fr := framing.NewReader(peerEp.R)
		if _, err := fr.ReadRecord(); err != nil {
			done <- err
			return
		}
		ackPayload, err := transitmsg.EncodeAck(transitmsg.Ack{
			Ack:    "ok",
			SHA256: hex.EncodeToString(make([]byte, 32)),
		})
		if err != nil {
			done <- err
			return
		}
		var zeroNonce tcrypto.Nonce
		record := tcrypto.Encrypt(sk.ReceiverRecordKey, zeroNonce, ackPayload)
		done <- framing.WriteRecord(peerEp.Conn, record)
	}()

	err := SendFile(senderEp, sk, bytes.NewReader(plaintext))
	if err != ErrDigestMismatch {
		t.Fatalf("expected ErrDigestMismatch, got %v", err)
	}
	<-done
}
