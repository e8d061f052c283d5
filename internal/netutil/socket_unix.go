//go:build !windows

package netutil

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// setSocketReuseAddr sets SO_REUSEADDR (and SO_REUSEPORT where supported)
// on the listening socket so the ephemeral port allocated by
// AllocateTCPPort can be released and re-bound by the sender's inbound
// listener without an "address already in use" race.
func setSocketReuseAddr(network, address string, c syscall.RawConn) error {
	var setSockOptErr error
	err := c.Control(func(fd uintptr) {
		setSockOptErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		if setSockOptErr != nil {
			return
		}
		setSockOptErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return err
	}
	return setSockOptErr
}
