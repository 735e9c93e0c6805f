package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloorRatioGoods(t *testing.T) {
	ratio, known := FloorRatio(BidTypeGoods, ContractQualificationReview, 100_000_000)
	assert.True(t, known)
	assert.Equal(t, 0.84245, ratio)

	ratio, known = FloorRatio(BidTypeGoods, ContractQualificationReview, 450_000_000)
	assert.True(t, known)
	assert.Equal(t, 0.80495, ratio)

	ratio, known = FloorRatio(BidTypeGoods, ContractSMECompetition, 450_000_000)
	assert.True(t, known)
	assert.Equal(t, 0.87995, ratio)
}

func TestFloorRatioService(t *testing.T) {
	ratio, known := FloorRatio(BidTypeService, ContractQualificationReview, 300_000_000)
	assert.True(t, known)
	assert.Equal(t, 0.87745, ratio)

	ratio, known = FloorRatio(BidTypeService, ContractNegotiation, 300_000_000)
	assert.True(t, known)
	assert.Equal(t, 0.80, ratio)
}

func TestFloorRatioConstructionTiers(t *testing.T) {
	cases := []struct {
		price int64
		want  float64
	}{
		{500_000_000, 0.89745},
		{3_000_000_000, 0.88745},
		{7_000_000_000, 0.87495},
		{20_000_000_000, 0.81995},
	}
	for _, tc := range cases {
		ratio, known := FloorRatio(BidTypeConstruction, ContractQualificationReview, tc.price)
		assert.True(t, known)
		assert.Equal(t, tc.want, ratio)
	}
}

func TestFloorRatioUnknownContractFailsClosed(t *testing.T) {
	ratio, known := FloorRatio(BidTypeGoods, ContractType("design_build"), 100_000_000)
	assert.False(t, known)
	// Most conservative known goods floor.
	assert.Equal(t, 0.87995, ratio)

	serviceRatio, known := FloorRatio(BidTypeService, ContractType("mystery"), 100_000_000)
	assert.False(t, known)
	assert.Equal(t, 0.87995, serviceRatio)
}
