package domain

import "time"

// IssuedToken is the output of token generation: the opaque signed string
// and its expiry. It is handed straight back to the caller; the server keeps
// no record of it.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}
