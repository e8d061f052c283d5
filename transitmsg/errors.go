package transitmsg

import "errors"

// ErrSchema is returned for any JSON decode failure or missing required
// field.
var ErrSchema = errors.New("transitmsg: schema error")
