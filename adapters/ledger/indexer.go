package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/indexer"

	"github.com/openclave/sigil/core"
	"github.com/openclave/sigil/ports"
)

// maxAttempts bounds the internal retry on transient indexer failures before
// the error surfaces as ErrOracleUnavailable. Nothing above this layer
// retries ledger queries.
const maxAttempts = 2

// IndexerLedger answers balance queries via an Algorand indexer node.
// Ownership results are never cached: every authentication attempt performs a
// fresh query, since holdings can change between attempts.
type IndexerLedger struct {
	client  *indexer.Client
	timeout time.Duration
}

// NewIndexerLedger creates a ledger adapter backed by the indexer at url.
func NewIndexerLedger(url, apiToken string, timeout time.Duration) (ports.Ledger, error) {
	client, err := indexer.MakeClient(url, apiToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexer client: %w", err)
	}

	return &IndexerLedger{client: client, timeout: timeout}, nil
}

// AssetBalance returns the balance of assetID currently held by address.
func (l *IndexerLedger) AssetBalance(ctx context.Context, address string, assetID uint64) (uint64, error) {
	account, err := l.lookupAccount(ctx, address)
	if err != nil {
		return 0, err
	}

	for _, holding := range account.Assets {
		if holding.AssetId == assetID {
			return holding.Amount, nil
		}
	}

	return 0, nil
}

// AccountBalance returns the account's balance in microalgos.
func (l *IndexerLedger) AccountBalance(ctx context.Context, address string) (uint64, error) {
	account, err := l.lookupAccount(ctx, address)
	if err != nil {
		return 0, err
	}

	return account.Amount, nil
}

func (l *IndexerLedger) lookupAccount(ctx context.Context, address string) (models.Account, error) {
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, l.timeout)
		_, account, err := l.client.LookupAccountByID(address).Do(callCtx)
		cancel()

		if err == nil {
			return account, nil
		}
		lastErr = err

		// A canceled upstream request must not keep hammering the indexer.
		if ctx.Err() != nil {
			break
		}
	}

	return models.Account{}, fmt.Errorf("%w: %v", core.ErrOracleUnavailable, lastErr)
}
