package redis

import "errors"

var (
	ErrEmptyConnectionURL = errors.New("redis: connection URL is empty")
	ErrFailedToParseURL   = errors.New("redis: invalid connection URL")
	ErrConnectionFailed   = errors.New("redis: could not connect")
	ErrHealthcheckFailed  = errors.New("redis: ping failed")
	ErrShutdownTimeout    = errors.New("redis: client did not close before the deadline")
)
