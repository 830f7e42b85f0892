package algo

import "crypto/ed25519"

// VerifySignature checks a detached ed25519 signature over the exact message
// bytes against the public key embedded in addr.
//
// A malformed address, a malformed signature and a cryptographic mismatch all
// return false; the caller decides which failure classes to report how.
func VerifySignature(message, signature []byte, addr string) bool {
	pub, err := DecodePublicKey(addr)
	if err != nil {
		return false
	}
	if len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(pub, message, signature)
}
