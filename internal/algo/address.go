package algo

import (
	"crypto/ed25519"

	"github.com/algorand/go-algorand-sdk/v2/types"
)

// IsValidAddress reports whether addr is a well-formed Algorand address,
// including its embedded checksum.
func IsValidAddress(addr string) bool {
	_, err := types.DecodeAddress(addr)
	return err == nil
}

// DecodePublicKey extracts the ed25519 public key embedded in an Algorand
// address. The address encoding is base32(publicKey || checksum), so decoding
// validates the checksum as a side effect.
func DecodePublicKey(addr string) (ed25519.PublicKey, error) {
	decoded, err := types.DecodeAddress(addr)
	if err != nil {
		return nil, err
	}
	return ed25519.PublicKey(decoded[:]), nil
}
