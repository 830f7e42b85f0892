package tokenizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/openclave/sigil/core"
	"github.com/openclave/sigil/ports"
)

const AudienceAccess = "session:access"

// Option configures a JWTTokenizer
type Option func(*JWTTokenizer)

// WithClock overrides the time source used when validating tokens.
func WithClock(now func() time.Time) Option {
	return func(j *JWTTokenizer) {
		j.now = now
	}
}

// JWTTokenizer implements the Tokenizer interface using HS256 JWTs. Tokens
// are self-contained bearer credentials: verification needs only the shared
// secret, no server-side session state.
type JWTTokenizer struct {
	secret []byte
	now    func() time.Time
}

// NewJWTTokenizer creates a new JWT tokenizer
func NewJWTTokenizer(secret []byte, opts ...Option) ports.Tokenizer {
	j := &JWTTokenizer{
		secret: secret,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// SessionToToken converts a Session to a signed JWT
func (j *JWTTokenizer) SessionToToken(session *core.Session) (string, error) {
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Address,
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{AudienceAccess},
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
		AssetID: session.AssetID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// TokenToSession parses and validates a JWT and returns the session it
// carries. Expiry and integrity failures map to distinct sentinel errors.
func (j *JWTTokenizer) TokenToSession(tokenStr string) (*core.Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithAudience(AudienceAccess), jwt.WithTimeFunc(j.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", core.ErrTokenMalformed, err)
	}

	if !token.Valid {
		return nil, core.ErrTokenMalformed
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok {
		return nil, core.ErrTokenMalformed
	}

	session := &core.Session{
		Address:   claims.Subject,
		AssetID:   claims.AssetID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}

	return session, nil
}
