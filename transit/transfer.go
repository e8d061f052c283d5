package transit

import (
	"context"
	"fmt"

	"github.com/vu3rdd/wormhole-transit/offer"
	"github.com/vu3rdd/wormhole-transit/wormhole"
)

// SendFile negotiates a Transit connection as the sender and streams
// path (a file or a directory) across it, gluing the handshake state
// machine to offer dispatch and the record pipeline so callers don't
// need to see either.
func SendFile(ctx context.Context, ec wormhole.EncryptedConnection, path string, archiver wormhole.Archiver, cfg Config) error {
	result, err := Negotiate(ctx, ec, RoleSender, cfg)
	if err != nil {
		return fmt.Errorf("transit: negotiate: %w", err)
	}
	defer result.Endpoint.Close()

	return offer.SendPath(ctx, ec, result.Endpoint, result.Subkeys, path, archiver)
}

// ReceiveFile negotiates a Transit connection as the receiver, accepts
// whatever offer the sender makes, and writes it into destDir, returning
// the path written (a file, or an unzipped directory).
func ReceiveFile(ctx context.Context, ec wormhole.EncryptedConnection, destDir string, archiver wormhole.Archiver, cfg Config) (string, error) {
	result, err := Negotiate(ctx, ec, RoleReceiver, cfg)
	if err != nil {
		return "", fmt.Errorf("transit: negotiate: %w", err)
	}
	defer result.Endpoint.Close()

	return offer.ReceiveOffer(ctx, ec, result.Endpoint, result.Subkeys, destDir, archiver)
}
