package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSparseMerkleTreeRootIsOrderIndependent(t *testing.T) {
	a, err := StoreProviderFactory(StoreProviderSparseMerkleTree, "bn254")
	require.NoError(t, err)
	b, err := StoreProviderFactory(StoreProviderSparseMerkleTree, "bn254")
	require.NoError(t, err)

	for _, v := range []string{"alpha", "beta", "gamma"} {
		_, err := a.Insert(v)
		require.NoError(t, err)
	}
	for _, v := range []string{"gamma", "alpha", "beta"} {
		_, err := b.Insert(v)
		require.NoError(t, err)
	}

	rootA, err := a.Root()
	require.NoError(t, err)
	rootB, err := b.Root()
	require.NoError(t, err)
	assert.Equal(t, *rootA, *rootB)

	assert.True(t, a.Contains("beta"))
	assert.False(t, a.Contains("delta"))

	assert.Equal(t, 3, a.Length())
	_, err = a.Insert("beta")
	require.NoError(t, err)
	assert.Equal(t, 3, a.Length())
	rootA2, err := a.Root()
	require.NoError(t, err)
	assert.Equal(t, *rootA, *rootA2)
}

func TestSparseMerkleTreeRejectsEmptyValue(t *testing.T) {
	s, err := InitSparseMerkleTreeStoreProvider("bn254")
	require.NoError(t, err)

	_, err = s.Insert("")
	require.Error(t, err)
}

func TestDenseMerkleTreeIsOrderDependent(t *testing.T) {
	a, err := StoreProviderFactory(StoreProviderDenseMerkleTree, "bn254")
	require.NoError(t, err)
	b, err := StoreProviderFactory(StoreProviderDenseMerkleTree, "bn254")
	require.NoError(t, err)

	_, err = a.Root()
	require.Error(t, err)
	assert.False(t, a.Contains("alpha"))

	for _, v := range []string{"alpha", "beta"} {
		_, err := a.Insert(v)
		require.NoError(t, err)
	}
	for _, v := range []string{"beta", "alpha"} {
		_, err := b.Insert(v)
		require.NoError(t, err)
	}

	rootA, err := a.Root()
	require.NoError(t, err)
	rootB, err := b.Root()
	require.NoError(t, err)
	assert.NotEqual(t, *rootA, *rootB)

	assert.True(t, a.Contains("alpha"))
	assert.False(t, a.Contains("gamma"))

	assert.Equal(t, 2, a.Length())
	_, err = a.Insert("alpha")
	require.NoError(t, err)
	assert.Equal(t, 3, a.Length())
}

func TestStoreProviderFactoryUnknown(t *testing.T) {
	_, err := StoreProviderFactory("bst", "bn254")
	require.Error(t, err)

	_, err = StoreProviderFactory(StoreProviderSparseMerkleTree, "secp256k1")
	require.Error(t, err)
}
