package transit

import (
	"fmt"
	"io"

	"github.com/vu3rdd/wormhole-transit/internal/netutil"
)

// relayHandshake announces our side to the relay under the shared relay
// handshake key and waits for its "ok\n" pairing confirmation. We don't
// need to parse what the relay sends back beyond that literal — pairing
// logic lives on the relay server, out of scope for this module.
func relayHandshake(ep *netutil.Endpoint, relayKey [32]byte, side Side) error {
	line := relayHandshakeLiteral(relayKey, side)
	if _, err := io.WriteString(ep.Conn, line); err != nil {
		return fmt.Errorf("transit: write relay handshake: %w", err)
	}
	if err := readExact(ep.R, relayOKLiteral); err != nil {
		return ErrRelayHandshakeFailed
	}
	return nil
}
