package netutil

import (
	"bufio"
	"net"
)

// Kind tags a live Endpoint as having been reached directly or through a
// relay.
type Kind int

const (
	Direct Kind = iota
	Relay
)

func (k Kind) String() string {
	if k == Relay {
		return "relay"
	}
	return "direct"
}

// Endpoint is a live duplex connection plus the metadata the Transit
// handshake state machine needs to race and elect it. It carries a Kind
// tag since Transit races several candidate connections for the same
// transfer and keeps exactly one.
type Endpoint struct {
	Conn     net.Conn
	Kind     Kind
	Hostname string
	Port     uint16

	// R is the buffered reader every handshake and record read on this
	// endpoint must go through, so that no byte consumed while scanning
	// for a line-terminated handshake literal is lost to the record
	// pipeline that follows it on the same stream.
	R *bufio.Reader
}

// NewEndpoint wraps conn with its buffered reader.
func NewEndpoint(conn net.Conn, kind Kind, hostname string, port uint16) *Endpoint {
	return &Endpoint{Conn: conn, Kind: kind, Hostname: hostname, Port: port, R: bufio.NewReader(conn)}
}

// Close releases the underlying connection. Safe to call on an Endpoint
// whose candidate lost the race.
func (e *Endpoint) Close() error {
	if e.Conn == nil {
		return nil
	}
	return e.Conn.Close()
}
