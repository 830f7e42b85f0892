package ports

import "context"

// Ledger answers balance queries against the chain. Implementations must
// carry an explicit timeout on every call; nothing here blocks indefinitely.
type Ledger interface {
	// AssetBalance returns the current balance of assetID held by address.
	// Ownership means a balance greater than zero.
	AssetBalance(ctx context.Context, address string, assetID uint64) (uint64, error)

	// AccountBalance returns the account's balance in microalgos.
	AccountBalance(ctx context.Context, address string) (uint64, error)
}
