package transit

import (
	"io"
	"sync"

	"github.com/vu3rdd/wormhole-transit/internal/netutil"
	"github.com/vu3rdd/wormhole-transit/internal/tcrypto"
)

// senderSideHandshake sends our handshake line and reads the receiver's,
// concurrently — send and receive are unordered with respect to each
// other. On a valid receiver handshake, arbitrate via el: the first
// candidate to claim the election sends "go\n" and is elected; every
// later one sends "nevermind\n" and is dropped.
func senderSideHandshake(ep *netutil.Endpoint, sk tcrypto.Subkeys, el *election) (elected bool, err error) {
	var wg sync.WaitGroup
	var writeErr, readErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, writeErr = io.WriteString(ep.Conn, senderHandshakeLiteral(sk.SenderHandshakeKey))
	}()
	go func() {
		defer wg.Done()
		readErr = readExact(ep.R, receiverHandshakeLiteral(sk.ReceiverHandshakeKey))
	}()
	wg.Wait()

	if writeErr != nil {
		return false, writeErr
	}
	if readErr != nil {
		return false, readErr
	}

	if el.claim() {
		if _, err := io.WriteString(ep.Conn, goLiteral); err != nil {
			return false, err
		}
		return true, nil
	}
	_, _ = io.WriteString(ep.Conn, nevermindLiteral)
	return false, nil
}

// receiverSideHandshake sends our handshake line, reads the sender's,
// then waits for the sender's "go\n"/"nevermind\n" arbitration decision
// on this candidate.
func receiverSideHandshake(ep *netutil.Endpoint, sk tcrypto.Subkeys) (elected bool, err error) {
	var wg sync.WaitGroup
	var writeErr, readErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, writeErr = io.WriteString(ep.Conn, receiverHandshakeLiteral(sk.ReceiverHandshakeKey))
	}()
	go func() {
		defer wg.Done()
		readErr = readExact(ep.R, senderHandshakeLiteral(sk.SenderHandshakeKey))
	}()
	wg.Wait()

	if writeErr != nil {
		return false, writeErr
	}
	if readErr != nil {
		return false, readErr
	}

	line, err := readLine(ep.R)
	if err != nil {
		return false, err
	}
	switch line {
	case goLiteral:
		return true, nil
	case nevermindLiteral:
		return false, nil
	default:
		return false, ErrInvalidHandshake
	}
}
