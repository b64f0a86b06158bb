package sigverify

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ed25519Fixture(t *testing.T, message []byte) (pub, sig []byte) {
	t.Helper()
	public, private, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return public, ed25519.Sign(private, message)
}

func secp256k1Fixture(t *testing.T, message []byte) (pub, sig []byte) {
	t.Helper()
	private, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	digest := sha256.Sum256(message)
	signature := secpecdsa.Sign(private, digest[:])
	return private.PubKey().SerializeCompressed(), signature.Serialize()
}

func TestVerifyEd25519RoundTrip(t *testing.T) {
	message := []byte(`{"action":"add_key","username":"alice"}`)
	pub, sig := ed25519Fixture(t, message)

	assert.True(t, Verify(AlgorithmEd25519, message, sig, pub))
}

func TestVerifySecp256k1RoundTrip(t *testing.T) {
	message := []byte(`{"action":"add_key","username":"alice"}`)
	pub, sig := secp256k1Fixture(t, message)

	assert.True(t, Verify(AlgorithmSecp256k1, message, sig, pub))
}

func TestVerifyRejectsFlippedBytes(t *testing.T) {
	message := []byte("the exact canonical payload")

	for _, tc := range []struct {
		name    string
		alg     Algorithm
		fixture func(*testing.T, []byte) ([]byte, []byte)
	}{
		{"ed25519", AlgorithmEd25519, ed25519Fixture},
		{"secp256k1", AlgorithmSecp256k1, secp256k1Fixture},
	} {
		t.Run(tc.name, func(t *testing.T) {
			pub, sig := tc.fixture(t, message)

			for i := range message {
				tampered := append([]byte(nil), message...)
				tampered[i] ^= 0x01
				assert.False(t, Verify(tc.alg, tampered, sig, pub), "flipped message byte %d", i)
			}
			for i := range sig {
				tampered := append([]byte(nil), sig...)
				tampered[i] ^= 0x01
				assert.False(t, Verify(tc.alg, message, tampered, pub), "flipped signature byte %d", i)
			}
		})
	}
}

// A signature made under one algorithm must never verify under the other,
// even with the matching key material presented.
func TestAlgorithmsNotInterchangeable(t *testing.T) {
	message := []byte("cross-algorithm check")
	edPub, edSig := ed25519Fixture(t, message)
	secpPub, secpSig := secp256k1Fixture(t, message)

	assert.False(t, Verify(AlgorithmSecp256k1, message, edSig, edPub))
	assert.False(t, Verify(AlgorithmEd25519, message, secpSig, secpPub))
	assert.False(t, Verify(AlgorithmEd25519, message, edSig, secpPub))
	assert.False(t, Verify(AlgorithmSecp256k1, message, secpSig, edPub))
}

func TestVerifyMalformedInputReturnsFalse(t *testing.T) {
	message := []byte("msg")

	assert.False(t, Verify(AlgorithmEd25519, message, nil, nil))
	assert.False(t, Verify(AlgorithmEd25519, message, []byte("short"), []byte("short")))
	assert.False(t, Verify(AlgorithmSecp256k1, message, []byte{0x30, 0x00}, []byte{0x02}))
	assert.False(t, Verify(Algorithm(99), message, []byte("sig"), []byte("key")))
}

func TestParseAlgorithm(t *testing.T) {
	alg, err := ParseAlgorithm("ed25519")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmEd25519, alg)

	alg, err = ParseAlgorithm("secp256k1")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmSecp256k1, alg)

	_, err = ParseAlgorithm("rsa")
	assert.Error(t, err)
}

func TestValidatePublicKey(t *testing.T) {
	edPub, _ := ed25519Fixture(t, []byte("x"))
	secpPub, _ := secp256k1Fixture(t, []byte("x"))

	assert.NoError(t, ValidatePublicKey(AlgorithmEd25519, edPub))
	assert.NoError(t, ValidatePublicKey(AlgorithmSecp256k1, secpPub))
	assert.Error(t, ValidatePublicKey(AlgorithmEd25519, secpPub))
	assert.Error(t, ValidatePublicKey(AlgorithmSecp256k1, edPub))
	assert.Error(t, ValidatePublicKey(AlgorithmEd25519, nil))
}
