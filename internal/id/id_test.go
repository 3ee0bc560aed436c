package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for range count {
		id, err := Generate("tok")
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	id, err := Generate("tok")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(id, "tok-"))
	// prefix + "-" + 21 nanoid characters
	assert.Len(t, id, len("tok-")+21)
}

func TestObjectName(t *testing.T) {
	tests := []int{8, 16, 21}

	for _, n := range tests {
		name, err := ObjectName(n)
		require.NoError(t, err)
		assert.Len(t, name, n)
		assert.Equal(t, strings.ToLower(name), name)
		for _, r := range name {
			assert.True(t, strings.ContainsRune(objectAlphabet, r), "unexpected rune %q", r)
		}
	}
}
