package notify

import "errors"

// ErrHandlerPanic is logged when a subscriber panics during delivery.
var ErrHandlerPanic = errors.New("notify: handler panicked")
