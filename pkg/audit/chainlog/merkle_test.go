package chainlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTree_RejectsEmptyInput(t *testing.T) {
	_, err := BuildTree(nil)
	assert.Error(t, err)
}

func TestBuildTree_SingleLeafRootIsLeafHash(t *testing.T) {
	tree, err := BuildTree([][]byte{[]byte("a")})
	require.NoError(t, err)
	assert.Equal(t, leafHash([]byte("a")), tree.Root())
}

func TestTree_ProofVerifiesForEveryLeaf_EvenCount(t *testing.T) {
	payloads := [][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("d")}
	tree, err := BuildTree(payloads)
	require.NoError(t, err)

	for i, payload := range payloads {
		proof, err := tree.Proof(i)
		require.NoError(t, err)
		assert.True(t, VerifyProof(payload, proof, tree.Root()), "leaf %d should verify", i)
	}
}

func TestTree_ProofVerifiesForEveryLeaf_OddCountDuplicatesLast(t *testing.T) {
	payloads := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	tree, err := BuildTree(payloads)
	require.NoError(t, err)

	for i, payload := range payloads {
		proof, err := tree.Proof(i)
		require.NoError(t, err)
		assert.True(t, VerifyProof(payload, proof, tree.Root()))
	}
}

func TestTree_ProofFailsForTamperedPayload(t *testing.T) {
	payloads := [][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("d")}
	tree, err := BuildTree(payloads)
	require.NoError(t, err)

	proof, err := tree.Proof(0)
	require.NoError(t, err)
	assert.False(t, VerifyProof([]byte("tampered"), proof, tree.Root()))
}

func TestTree_ProofRejectsOutOfRangeIndex(t *testing.T) {
	tree, err := BuildTree([][]byte{[]byte("a")})
	require.NoError(t, err)

	_, err = tree.Proof(5)
	assert.Error(t, err)
}
