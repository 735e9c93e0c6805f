package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredictionKey(t *testing.T) {
	key := PredictionKey("20260815001-00", "P-100", "balanced", "abc123")
	assert.Equal(t, "prediction:20260815001-00:P-100:balanced:abc123", key)

	// Same identity, different input hash: distinct entries.
	other := PredictionKey("20260815001-00", "P-100", "balanced", "def456")
	assert.NotEqual(t, key, other)
}
