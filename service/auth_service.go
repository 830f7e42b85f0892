package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/openclave/sigil/core"
	"github.com/openclave/sigil/internal/algo"
	"github.com/openclave/sigil/ports"
)

const challengeMessage = "Authenticate to API service"

// Config holds the orchestrator's immutable settings. It is read once at
// construction; no other component mutates it.
type Config struct {
	AssetID          uint64
	Domain           string
	ChallengeTTL     time.Duration
	TokenTTL         time.Duration
	RecheckOwnership bool
}

// AuthService composes the challenge store, signature verification, ownership
// oracle and tokenizer into the two-step authentication protocol.
type AuthService struct {
	store     ports.ChallengeStore
	ledger    ports.Ledger
	tokenizer ports.Tokenizer
	eventPub  ports.EventPublisher // optional
	log       *logrus.Logger

	cfg Config
	now func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	store ports.ChallengeStore,
	ledger ports.Ledger,
	tokenizer ports.Tokenizer,
	eventPub ports.EventPublisher,
	log *logrus.Logger,
	cfg Config,
) *AuthService {
	if cfg.ChallengeTTL == 0 {
		cfg.ChallengeTTL = 5 * time.Minute
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = time.Hour
	}
	if cfg.Domain == "" {
		cfg.Domain = "api.example.com"
	}

	return &AuthService{
		store:     store,
		ledger:    ledger,
		tokenizer: tokenizer,
		eventPub:  eventPub,
		log:       log,
		cfg:       cfg,
		now:       time.Now,
	}
}

// TokenTTL returns the lifetime of issued tokens.
func (s *AuthService) TokenTTL() time.Duration {
	return s.cfg.TokenTTL
}

// AssetID returns the configured asset identifier, zero if unconfigured.
func (s *AuthService) AssetID() uint64 {
	return s.cfg.AssetID
}

// RequestChallenge issues a fresh challenge for address, replacing any live
// one. The caller must sign exactly the structure returned here.
func (s *AuthService) RequestChallenge(ctx context.Context, address string) (*core.Challenge, error) {
	if !algo.IsValidAddress(address) {
		return nil, core.ErrInvalidAddress
	}

	nonceBytes := make([]byte, 32)
	if _, err := rand.Read(nonceBytes); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	challenge := &core.Challenge{
		Message:   challengeMessage,
		Nonce:     hex.EncodeToString(nonceBytes),
		Timestamp: s.now().Unix(),
		Address:   address,
		Domain:    s.cfg.Domain,
	}

	if err := s.store.Put(ctx, address, *challenge, s.cfg.ChallengeTTL); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	s.log.WithField("address", address).Debug("challenge issued")

	return challenge, nil
}

// SubmitProof verifies a signed challenge and the wallet's asset holding, and
// issues a bearer token on success.
//
// The challenge is consumed before the signature check on purpose: a failed
// signature must not leave the stored challenge available for further
// attempts. The ownership query runs last since it is the expensive,
// externally-dependent step and should only happen once key control is
// established.
func (s *AuthService) SubmitProof(ctx context.Context, address string, signature []byte, echoed core.Challenge) (string, *core.Session, error) {
	if s.cfg.AssetID == 0 {
		return "", nil, core.ErrNotConfigured
	}

	found, err := s.store.ConsumeIfMatch(ctx, address, echoed)
	if err != nil {
		return "", nil, fmt.Errorf("challenge lookup failed: %w", err)
	}
	if !found {
		// Absent, expired and already-consumed look identical to the caller.
		return "", nil, core.ErrChallengeNotFound
	}

	// The atomic match proved the echoed struct equals the stored one, so its
	// timestamp is authoritative. Recheck it against our own clock in case
	// store-side eviction lags.
	now := s.now()
	if echoed.Expired(now, s.cfg.ChallengeTTL) {
		return "", nil, core.ErrChallengeExpired
	}

	message, err := echoed.CanonicalBytes()
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode challenge: %w", err)
	}
	if !algo.VerifySignature(message, signature, address) {
		s.log.WithField("address", address).Info("signature verification failed")
		return "", nil, core.ErrInvalidSignature
	}

	balance, err := s.ledger.AssetBalance(ctx, address, s.cfg.AssetID)
	if err != nil {
		// Oracle failure is not proof of non-ownership; keep the two apart in
		// telemetry even though the caller sees a uniform denial.
		s.log.WithError(err).WithFields(logrus.Fields{
			"address":  address,
			"asset_id": s.cfg.AssetID,
			"outcome":  "oracle_unavailable",
		}).Error("ownership check failed")
		return "", nil, err
	}
	if balance == 0 {
		s.log.WithFields(logrus.Fields{
			"address":  address,
			"asset_id": s.cfg.AssetID,
			"outcome":  "asset_not_owned",
		}).Info("asset not owned")
		return "", nil, core.ErrAssetNotOwned
	}

	session := &core.Session{
		Address:   address,
		AssetID:   s.cfg.AssetID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.TokenTTL),
	}

	token, err := s.tokenizer.SessionToToken(session)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishLoginGranted(ctx, address, s.cfg.AssetID); err != nil {
			// The token is already issued; the event is best effort.
			s.log.WithError(err).Warn("failed to publish login event")
		}
	}

	s.log.WithFields(logrus.Fields{
		"address":  address,
		"asset_id": s.cfg.AssetID,
	}).Info("authentication successful")

	return token, session, nil
}

// ValidateToken checks a bearer token presented on a gated route. With
// RecheckOwnership enabled it also re-queries the ledger, failing closed when
// the asset left the wallet or the oracle is unreachable.
func (s *AuthService) ValidateToken(ctx context.Context, tokenStr string) (*core.Session, error) {
	session, err := s.tokenizer.TokenToSession(tokenStr)
	if err != nil {
		return nil, err
	}

	if !s.now().Before(session.ExpiresAt) {
		return nil, core.ErrTokenExpired
	}

	if s.cfg.RecheckOwnership {
		balance, err := s.ledger.AssetBalance(ctx, session.Address, session.AssetID)
		if err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"address": session.Address,
				"outcome": "oracle_unavailable",
			}).Error("ownership recheck failed")
			return nil, err
		}
		if balance == 0 {
			return nil, core.ErrAssetNotOwned
		}
	}

	return session, nil
}

// AccountSummary describes the authenticated wallet for informational routes.
type AccountSummary struct {
	Address        string
	AssetID        uint64
	AlgoBalance    decimal.Decimal
	TokenIssuedAt  int64
	TokenExpiresAt int64
}

// AccountSummary fetches the wallet's balance and the session's validity
// window.
func (s *AuthService) AccountSummary(ctx context.Context, session *core.Session) (*AccountSummary, error) {
	micro, err := s.ledger.AccountBalance(ctx, session.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account balance: %w", err)
	}

	return &AccountSummary{
		Address:        session.Address,
		AssetID:        session.AssetID,
		AlgoBalance:    decimal.New(int64(micro), -6),
		TokenIssuedAt:  session.IssuedAt.Unix(),
		TokenExpiresAt: session.ExpiresAt.Unix(),
	}, nil
}
