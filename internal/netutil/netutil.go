// Package netutil implements local interface enumeration, ephemeral port
// allocation, and timed outbound connects for the Transit connection
// race. It generalizes a single listen-and-accept transport into the
// building blocks a connection race needs — one allocated port, many
// candidate dials — and reuses build-tagged SO_REUSEADDR/SO_REUSEPORT
// socket options for the port-reservation step.
package netutil

import (
	"context"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/vu3rdd/wormhole-transit/transitmsg"
)

// DialTimeout is the default candidate-connect timeout.
const DialTimeout = 10 * time.Second

// reuseAddrListenConfig is a net.ListenConfig that sets SO_REUSEADDR (and
// SO_REUSEPORT on Unix) on the listening socket before bind.
var reuseAddrListenConfig = net.ListenConfig{
	Control: func(network, address string, c syscall.RawConn) error {
		return setSocketReuseAddr(network, address, c)
	},
}

// AllocateTCPPort binds a TCP socket to 127.0.0.1:0 with SO_REUSEADDR,
// reads back the assigned port, and releases the socket. The caller is
// expected to re-bind a real listener at that port immediately
// afterward — a narrow, deliberate race, acceptable because the socket
// option lets a prompt re-bind succeed.
func AllocateTCPPort(ctx context.Context) (int, error) {
	ln, err := reuseAddrListenConfig.Listen(ctx, "tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("netutil: allocate port: %w", err)
	}
	defer ln.Close()

	addr, ok := ln.Addr().(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("netutil: unexpected listener address type %T", ln.Addr())
	}
	return addr.Port, nil
}

// Listen binds an inbound listener at the given port on all interfaces,
// not just the addresses advertised in the local hints.
func Listen(ctx context.Context, port int) (net.Listener, error) {
	return reuseAddrListenConfig.Listen(ctx, "tcp", fmt.Sprintf("0.0.0.0:%d", port))
}

// LocalDirectHints enumerates local network interfaces, excludes
// loopback, and returns one Direct hint per remaining IPv4 address,
// advertising port.
func LocalDirectHints(port int) ([]transitmsg.Hint, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, fmt.Errorf("netutil: enumerate interfaces: %w", err)
	}

	var hints []transitmsg.Hint
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip4 := ipNet.IP.To4()
		if ip4 == nil || ip4.IsLoopback() {
			continue
		}
		hints = append(hints, transitmsg.Hint{
			Type:     transitmsg.AbilityDirectTCPv1,
			Priority: 0.0,
			Hostname: ip4.String(),
			Port:     uint16(port),
		})
	}
	return hints, nil
}

// DialTimeoutContext attempts a TCP connect to hostname:port, bounded by
// timeout or an earlier context cancellation — whichever comes first.
func DialTimeoutContext(ctx context.Context, hostname string, port uint16, timeout time.Duration) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dialer := net.Dialer{}
	addr := fmt.Sprintf("%s:%d", hostname, port)
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("netutil: dial %s: %w", addr, err)
	}
	return conn, nil
}
