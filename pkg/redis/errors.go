package redis

import "errors"

var (
	ErrEmptyURL   = errors.New("redis: empty connection URL, set REDIS_URL")
	ErrInvalidURL = errors.New("redis: invalid connection URL")
	ErrNotReady   = errors.New("redis: server not ready before the connect timeout")
	ErrUnhealthy  = errors.New("redis: ping failed")
)
