package core

import "errors"

var (
	// ErrInvalidAddress is returned when an address fails checksum validation
	ErrInvalidAddress = errors.New("invalid algorand address")

	// ErrNotConfigured is returned when no asset identifier is configured
	ErrNotConfigured = errors.New("asset identifier not configured")

	// ErrChallengeNotFound covers absent, expired and already-consumed
	// challenges; callers must not be able to tell these apart
	ErrChallengeNotFound = errors.New("challenge not found")

	// ErrChallengeExpired is returned when a stored challenge outlived its TTL
	ErrChallengeExpired = errors.New("challenge has expired")

	// ErrInvalidSignature is returned when a signature does not verify
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrAssetNotOwned is returned when the wallet holds no balance of the asset
	ErrAssetNotOwned = errors.New("asset not owned")

	// ErrOracleUnavailable is returned when the ledger cannot be queried
	ErrOracleUnavailable = errors.New("ownership oracle unavailable")

	// ErrTokenMalformed is returned when a token fails parsing or integrity checks
	ErrTokenMalformed = errors.New("malformed token")

	// ErrTokenExpired is returned when a token has expired
	ErrTokenExpired = errors.New("token has expired")
)
