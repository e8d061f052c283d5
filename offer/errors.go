package offer

import "errors"

// ErrUnexpectedAnswer is returned when the peer's reply to an offer is
// not the expected answer{file_ack:"ok"} shape. ReceiveOffer also returns
// it for an offer that is neither a file nor a directory offer.
var ErrUnexpectedAnswer = errors.New("offer: unexpected answer")
