// Package principal holds the collaborator seam for deriving a network
// identity string from a public key. Derivation always happens server-side;
// a principal supplied by a client is never trusted.
package principal

import (
	"crypto/sha256"
	"encoding/base32"
	"encoding/binary"
	"hash/crc32"
	"strings"

	"github.com/scriptmarket/identity-in-go/pkg/sigverify"
)

// Deriver computes the principal text for a public key. It must be a pure
// function: same input, same output, no I/O.
type Deriver func(alg sigverify.Algorithm, publicKey []byte) (string, error)

var textEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// algorithm tags keep the derivation domains separated so the same raw key
// bytes under different algorithms can never collide on a principal.
var algTag = map[sigverify.Algorithm]byte{
	sigverify.AlgorithmEd25519:   0x01,
	sigverify.AlgorithmSecp256k1: 0x02,
}

// SelfAuthenticating is the default Deriver: a self-authenticating
// identifier computed as SHA-224 over the tagged public key, suffixed with
// the self-authenticating marker byte, rendered as CRC32-prefixed base32 in
// dash-separated groups of five.
func SelfAuthenticating(alg sigverify.Algorithm, publicKey []byte) (string, error) {
	if err := sigverify.ValidatePublicKey(alg, publicKey); err != nil {
		return "", err
	}

	h := sha256.New224()
	h.Write([]byte{algTag[alg]})
	h.Write(publicKey)
	payload := append(h.Sum(nil), 0x02)

	var crc [4]byte
	binary.BigEndian.PutUint32(crc[:], crc32.ChecksumIEEE(payload))

	raw := strings.ToLower(textEncoding.EncodeToString(append(crc[:], payload...)))

	var groups []string
	for len(raw) > 5 {
		groups = append(groups, raw[:5])
		raw = raw[5:]
	}
	groups = append(groups, raw)
	return strings.Join(groups, "-"), nil
}
