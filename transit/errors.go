package transit

import (
	"errors"

	"github.com/vu3rdd/wormhole-transit/internal/pipeline"
	"github.com/vu3rdd/wormhole-transit/internal/tcrypto"
)

// Connection-race-local failures (ErrRelayHandshakeFailed,
// ErrInvalidHandshake, ErrCancelled) drop only the one candidate; every
// other error here is fatal to the transfer.
//
// ErrCancelled is what runCandidateHandshake returns for a candidate
// dropped because another one won the race first; it never escapes the
// race itself.
//
// ErrDecryptionFailed and ErrDigestMismatch are re-exported from the
// packages that actually detect them (internal/tcrypto, internal/pipeline)
// so callers only need to import transit's error taxonomy.
var (
	ErrUnexpectedMessage    = errors.New("transit: unexpected message")
	ErrNoUsableHint         = errors.New("transit: no reachable peer")
	ErrRelayHandshakeFailed = errors.New("transit: relay did not confirm pairing")
	ErrInvalidHandshake     = errors.New("transit: invalid handshake")
	ErrDecryptionFailed     = tcrypto.ErrDecryptionFailed
	ErrDigestMismatch       = pipeline.ErrDigestMismatch
	ErrCancelled            = errors.New("transit: candidate cancelled")
)
