package core

import "time"

// Session represents an authenticated wallet session. It is carried entirely
// inside the bearer token: there is no server-side session state, so validity
// is only the token's integrity and its expiry.
type Session struct {
	Address   string    // Authenticated wallet address
	AssetID   uint64    // Asset whose ownership was proven at issuance
	IssuedAt  time.Time // When the session was created
	ExpiresAt time.Time // When the session expires
}
