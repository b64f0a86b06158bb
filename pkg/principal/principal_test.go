package principal

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriptmarket/identity-in-go/pkg/sigverify"
)

func TestSelfAuthenticatingDeterministic(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	first, err := SelfAuthenticating(sigverify.AlgorithmEd25519, pub)
	require.NoError(t, err)
	second, err := SelfAuthenticating(sigverify.AlgorithmEd25519, pub)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
	assert.Regexp(t, `^[a-z2-7]{5}(-[a-z2-7]{1,5})+$`, first)
}

func TestSelfAuthenticatingDistinctKeys(t *testing.T) {
	a, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	b, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	pa, err := SelfAuthenticating(sigverify.AlgorithmEd25519, a)
	require.NoError(t, err)
	pb, err := SelfAuthenticating(sigverify.AlgorithmEd25519, b)
	require.NoError(t, err)

	assert.NotEqual(t, pa, pb)
}

func TestSelfAuthenticatingRejectsMalformedKey(t *testing.T) {
	_, err := SelfAuthenticating(sigverify.AlgorithmEd25519, []byte("too short"))
	assert.Error(t, err)
}
