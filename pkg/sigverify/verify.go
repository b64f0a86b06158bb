// Package sigverify validates request signatures against a declared
// algorithm. Verification is total: malformed keys or signatures yield
// false, never a panic, since this path handles attacker-controlled bytes.
package sigverify

import (
	"crypto/ed25519"
	"crypto/sha256"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// Verify reports whether signature is valid for message under publicKey.
//
// The two algorithms hash differently and must not be treated alike:
// Ed25519 signs the raw message (RFC 8032 hashes internally), while
// secp256k1 ECDSA signs the SHA-256 digest of the message. Signatures are
// DER-encoded for secp256k1 and the fixed 64-byte form for Ed25519.
func Verify(alg Algorithm, message, signature, publicKey []byte) bool {
	switch alg {
	case AlgorithmEd25519:
		return verifyEd25519(message, signature, publicKey)
	case AlgorithmSecp256k1:
		return verifySecp256k1(message, signature, publicKey)
	default:
		return false
	}
}

func verifyEd25519(message, signature, publicKey []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize {
		return false
	}
	if len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, signature)
}

func verifySecp256k1(message, signature, publicKey []byte) bool {
	pub, err := secp256k1.ParsePubKey(publicKey)
	if err != nil {
		return false
	}
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(message)
	return sig.Verify(digest[:], pub)
}
