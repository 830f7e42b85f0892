package core

import (
	"encoding/json"
	"time"
)

// Challenge is a one-time record the wallet must sign to prove key control.
// Challenges are keyed by address: issuing a new one replaces any live one.
type Challenge struct {
	Message   string `json:"message"`   // Human-readable prompt included in the signed payload
	Nonce     string `json:"nonce"`     // Hex-encoded 32 random bytes, unique per issuance
	Timestamp int64  `json:"timestamp"` // Unix seconds at issuance
	Address   string `json:"address"`   // The claimed wallet address
	Domain    string `json:"domain"`    // Service identifier preventing cross-service replay
}

// CanonicalBytes returns the exact byte sequence the wallet signs.
//
// The form is minimal-whitespace JSON with the field order fixed by the
// struct definition above. Issuance, verification, and every wallet client
// must agree on these bytes, so this is the only place they are produced.
func (c Challenge) CanonicalBytes() ([]byte, error) {
	return json.Marshal(c)
}

// Equal reports whether two challenges match field for field.
func (c Challenge) Equal(other Challenge) bool {
	return c == other
}

// Expired reports whether the challenge is older than ttl at the given time.
func (c Challenge) Expired(now time.Time, ttl time.Duration) bool {
	return now.Unix()-c.Timestamp > int64(ttl.Seconds())
}
