package tokenizer

import "github.com/golang-jwt/jwt/v5"

// AccessClaims combines standard claims with the asset grant
type AccessClaims struct {
	jwt.RegisteredClaims
	AssetID uint64 `json:"nft"` // Asset whose ownership was proven at issuance
}
