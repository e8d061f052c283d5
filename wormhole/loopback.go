package wormhole

import (
	"context"
	"crypto/rand"
	"fmt"
)

// LoopbackConnection is an in-memory EncryptedConnection test double. It
// stands in for the real mailbox client in tests and in the
// cmd/transit-demo walkthrough, where there is no PAKE step — the
// "shared key" is just generated locally and copied to both ends, the
// way a test harness would hand two peers the same symmetric key without
// running the handshake that produces it.
type LoopbackConnection struct {
	key   [32]byte
	send  chan<- []byte
	recv  <-chan []byte
}

// NewLoopbackPair returns two ends of an in-memory channel sharing one
// random 32-byte key, modeling the result of an out-of-band PAKE
// exchange without performing one.
func NewLoopbackPair() (a, b *LoopbackConnection, err error) {
	var key [32]byte
	if _, err := rand.Read(key[:]); err != nil {
		return nil, nil, fmt.Errorf("wormhole: generate shared key: %w", err)
	}

	abCh := make(chan []byte, 16)
	baCh := make(chan []byte, 16)

	a = &LoopbackConnection{key: key, send: abCh, recv: baCh}
	b = &LoopbackConnection{key: key, send: baCh, recv: abCh}
	return a, b, nil
}

func (c *LoopbackConnection) SendPlain(ctx context.Context, msg []byte) error {
	select {
	case c.send <- append([]byte(nil), msg...):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *LoopbackConnection) ReceivePlain(ctx context.Context) ([]byte, error) {
	select {
	case msg := <-c.recv:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *LoopbackConnection) SharedKey() [32]byte {
	return c.key
}
