package domain

import "errors"

var (
	ErrInvalidLimit  = errors.New("rate limit must allow at least one request per window")
	ErrInvalidWindow = errors.New("rate limit window must be positive")
)
