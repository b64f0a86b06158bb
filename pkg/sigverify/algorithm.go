package sigverify

import (
	"crypto/ed25519"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Algorithm identifies a supported signature scheme. The set is closed and
// security-sensitive; new members require a deliberate protocol change.
type Algorithm int

const (
	AlgorithmEd25519 Algorithm = iota
	AlgorithmSecp256k1
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmEd25519:
		return "ed25519"
	case AlgorithmSecp256k1:
		return "secp256k1"
	default:
		return fmt.Sprintf("algorithm(%d)", int(a))
	}
}

// ParseAlgorithm maps a wire-level algorithm name to its Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "ed25519":
		return AlgorithmEd25519, nil
	case "secp256k1":
		return AlgorithmSecp256k1, nil
	default:
		return 0, fmt.Errorf("unsupported algorithm %q", s)
	}
}

// ValidatePublicKey checks that publicKey is a well-formed key for the
// algorithm. It does not prove the key is on any particular account.
func ValidatePublicKey(alg Algorithm, publicKey []byte) error {
	switch alg {
	case AlgorithmEd25519:
		if len(publicKey) != ed25519.PublicKeySize {
			return fmt.Errorf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, len(publicKey))
		}
		return nil
	case AlgorithmSecp256k1:
		if _, err := secp256k1.ParsePubKey(publicKey); err != nil {
			return fmt.Errorf("invalid secp256k1 public key: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported algorithm %v", alg)
	}
}
