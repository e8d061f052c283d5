// Package transit implements the Transit handshake state machine:
// ability/hint exchange, the direct/relay connection race, relay
// handshake, sender/receiver handshake, and "go"/"nevermind" arbitration.
// It is the one component here that talks to both the Wormhole message
// channel and the raw TCP candidates.
package transit

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/vu3rdd/wormhole-transit/internal/netutil"
	"github.com/vu3rdd/wormhole-transit/internal/tcrypto"
	"github.com/vu3rdd/wormhole-transit/transitmsg"
	"github.com/vu3rdd/wormhole-transit/wormhole"
)

// Role is which end of the transfer this process plays.
type Role int

const (
	RoleSender Role = iota
	RoleReceiver
)

// DefaultAbilities is the ability set every Transit endpoint advertises
// unless configured otherwise.
func DefaultAbilities() []transitmsg.Ability {
	return []transitmsg.Ability{transitmsg.AbilityDirectTCPv1, transitmsg.AbilityRelayV1}
}

// Config configures one side's Negotiate call.
type Config struct {
	// Abilities this side supports. Defaults to DefaultAbilities().
	Abilities []transitmsg.Ability
	// RelayHints are Relay connection hints this side holds by
	// configuration. May be empty.
	RelayHints []transitmsg.ConnectionHint
}

// Result is the outcome of a successful Negotiate: the one elected
// endpoint and the keys the record pipeline (component F) needs.
type Result struct {
	Endpoint *netutil.Endpoint
	Subkeys  tcrypto.Subkeys
	Side     Side
}

// Negotiate runs the full handshake over ec for the negotiation messages
// and a raced set of TCP candidates for the data connection, returning
// the one elected endpoint.
func Negotiate(ctx context.Context, ec wormhole.EncryptedConnection, role Role, cfg Config) (*Result, error) {
	abilities := cfg.Abilities
	if abilities == nil {
		abilities = DefaultAbilities()
	}
	abilitySet := make(map[transitmsg.Ability]bool, len(abilities))
	for _, a := range abilities {
		abilitySet[a] = true
	}

	subkeys, err := tcrypto.DeriveSubkeys(ec.SharedKey())
	if err != nil {
		return nil, fmt.Errorf("transit: derive subkeys: %w", err)
	}

	side, err := NewSide()
	if err != nil {
		return nil, err
	}

	port, err := netutil.AllocateTCPPort(ctx)
	if err != nil {
		return nil, err
	}
	ln, err := netutil.Listen(ctx, port)
	if err != nil {
		return nil, err
	}
	defer ln.Close()

	directHints, err := netutil.LocalDirectHints(port)
	if err != nil {
		return nil, err
	}
	localHints := make([]transitmsg.ConnectionHint, 0, len(directHints)+len(cfg.RelayHints))
	for i := range directHints {
		h := directHints[i]
		localHints = append(localHints, transitmsg.ConnectionHint{Direct: &h})
	}
	localHints = append(localHints, cfg.RelayHints...)

	// Send our transit message; concurrently receive the peer's — the
	// two are unordered with respect to each other.
	var peerMsg transitmsg.Message
	var sendErr, recvErr error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		encoded, err := transitmsg.Encode(transitmsg.Message{
			Transit: &transitmsg.TransitPayload{Abilities: abilities, Hints: localHints},
		})
		if err != nil {
			sendErr = err
			return
		}
		sendErr = ec.SendPlain(ctx, encoded)
	}()
	go func() {
		defer wg.Done()
		raw, err := ec.ReceivePlain(ctx)
		if err != nil {
			recvErr = err
			return
		}
		peerMsg, recvErr = transitmsg.Decode(raw)
	}()
	wg.Wait()
	if sendErr != nil {
		return nil, sendErr
	}
	if recvErr != nil {
		return nil, recvErr
	}
	if peerMsg.Transit == nil {
		return nil, ErrUnexpectedMessage
	}

	// Build the candidate list from the peer's hints, restricted to
	// abilities we actually support.
	candidates := candidatesFromHints(peerMsg.Transit.Hints, abilitySet)

	return race(ctx, ln, candidates, role, subkeys, side)
}

// candidateSpec is one TCP endpoint worth dialing: a bare Direct hint, or
// one member of a Relay's hint list (tagged Relay so the handshake runs
// the relay preamble first).
type candidateSpec struct {
	kind     netutil.Kind
	hostname string
	port     uint16
}

func candidatesFromHints(hints []transitmsg.ConnectionHint, abilitySet map[transitmsg.Ability]bool) []candidateSpec {
	var out []candidateSpec
	for _, h := range hints {
		switch {
		case h.Direct != nil:
			if !abilitySet[h.Direct.Type] {
				continue
			}
			out = append(out, candidateSpec{kind: netutil.Direct, hostname: h.Direct.Hostname, port: h.Direct.Port})
		case h.Relay != nil:
			if !abilitySet[h.Relay.Type] {
				continue
			}
			for _, nested := range h.Relay.Hints {
				out = append(out, candidateSpec{kind: netutil.Relay, hostname: nested.Hostname, port: nested.Port})
			}
		}
	}
	return out
}

// race runs the connection race: one goroutine per outbound candidate,
// plus an accept loop for inbound connections from the peer's own race,
// all feeding into a single election.
//
// Failure is detected off the dial side alone: once every outbound
// candidate has been tried and lost (or there were none to begin with),
// the peer's own dial attempts against our hints are bounded by the same
// DialTimeout we use against theirs, so a short grace window after dial
// exhaustion is enough to catch a trailing inbound winner without
// depending on the listener ever being closed.
func race(ctx context.Context, ln net.Listener, candidates []candidateSpec, role Role, sk tcrypto.Subkeys, side Side) (*Result, error) {
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	el := &election{}
	resultCh := make(chan *netutil.Endpoint, 1)

	var dialWG sync.WaitGroup
	for _, c := range candidates {
		dialWG.Add(1)
		go dialCandidate(raceCtx, c, role, sk, side, el, resultCh, &dialWG)
	}
	go acceptCandidates(raceCtx, ln, role, sk, side, el, resultCh)

	dialsDone := make(chan struct{})
	go func() {
		dialWG.Wait()
		close(dialsDone)
	}()

	select {
	case ep := <-resultCh:
		cancel()
		return &Result{Endpoint: ep, Subkeys: sk, Side: side}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-dialsDone:
		select {
		case ep := <-resultCh:
			cancel()
			return &Result{Endpoint: ep, Subkeys: sk, Side: side}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(netutil.DialTimeout):
			return nil, ErrNoUsableHint
		}
	}
}

func dialCandidate(ctx context.Context, c candidateSpec, role Role, sk tcrypto.Subkeys, side Side, el *election, resultCh chan<- *netutil.Endpoint, wg *sync.WaitGroup) {
	defer wg.Done()

	conn, err := netutil.DialTimeoutContext(ctx, c.hostname, c.port, netutil.DialTimeout)
	if err != nil {
		return // drop this candidate only
	}
	ep := netutil.NewEndpoint(conn, c.kind, c.hostname, c.port)
	_ = runCandidateHandshake(ctx, ep, role, sk, side, el, resultCh)
}

func acceptCandidates(ctx context.Context, ln net.Listener, role Role, sk tcrypto.Subkeys, side Side, el *election, resultCh chan<- *netutil.Endpoint) {
	var innerWG sync.WaitGroup
	defer innerWG.Wait()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		host := ""
		if tcpAddr, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
			host = tcpAddr.IP.String()
		}
		ep := netutil.NewEndpoint(conn, netutil.Direct, host, 0)

		innerWG.Add(1)
		go func() {
			defer innerWG.Done()
			_ = runCandidateHandshake(ctx, ep, role, sk, side, el, resultCh)
		}()
	}
}

// runCandidateHandshake runs the relay preamble (if tagged Relay)
// followed by the sender/receiver handshake and arbitration for one
// candidate endpoint, and publishes it on resultCh if and only if this
// candidate is elected. It returns ErrCancelled if ctx was already
// cancelled, or became cancelled while the handshake was in flight,
// rather than the raw I/O error the cancellation-triggered ep.Close
// produces.
func runCandidateHandshake(ctx context.Context, ep *netutil.Endpoint, role Role, sk tcrypto.Subkeys, side Side, el *election, resultCh chan<- *netutil.Endpoint) error {
	if ctx.Err() != nil {
		ep.Close()
		return ErrCancelled
	}

	watcherDone := make(chan struct{})
	defer close(watcherDone)
	go func() {
		select {
		case <-ctx.Done():
			ep.Close()
		case <-watcherDone:
		}
	}()

	if ep.Kind == netutil.Relay {
		if err := relayHandshake(ep, sk.RelayHandshakeKey, side); err != nil {
			ep.Close()
			if ctx.Err() != nil {
				return ErrCancelled
			}
			return err
		}
	}

	var elected bool
	var err error
	if role == RoleSender {
		elected, err = senderSideHandshake(ep, sk, el)
	} else {
		elected, err = receiverSideHandshake(ep, sk)
	}
	if err != nil || !elected {
		ep.Close()
		if ctx.Err() != nil {
			return ErrCancelled
		}
		return err
	}

	select {
	case resultCh <- ep:
	default:
		ep.Close()
	}
	return nil
}
