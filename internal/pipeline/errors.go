package pipeline

import "errors"

// ErrDigestMismatch is returned by SendFile when the receiver's final
// ack reports a sha256 that disagrees with the sender's own hash of the
// plaintext it streamed.
var ErrDigestMismatch = errors.New("pipeline: final digest does not match")
