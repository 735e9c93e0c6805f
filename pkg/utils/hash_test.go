package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashStringStable(t *testing.T) {
	assert.Equal(t, HashString("abc"), HashString("abc"))
	assert.NotEqual(t, HashString("abc"), HashString("abd"))
	assert.Len(t, HashString(""), 32)
}

func TestHashJSONStable(t *testing.T) {
	type payload struct {
		BidID string
		Price int64
	}

	a, err := HashJSON(payload{BidID: "B-1", Price: 100})
	require.NoError(t, err)
	b, err := HashJSON(payload{BidID: "B-1", Price: 100})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := HashJSON(payload{BidID: "B-1", Price: 101})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
