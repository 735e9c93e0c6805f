package engine

// Statutory minimum bid-to-ceiling ratios, 2025 revision. Goods and service
// contracts split on the notice threshold; construction tiers on the
// estimated price.
const (
	noticeThresholdGoods        = 210_000_000
	noticeThresholdConstruction = 2_000_000_000
)

var goodsFloors = map[ContractType]float64{
	ContractQualificationReview: 0.84245, // under notice threshold
	ContractSMECompetition:      0.87995,
	ContractNegotiation:         0.80,
	ContractLowestPrice:         0.84245,
}

const goodsQualificationOverThreshold = 0.80495

var serviceFloors = map[ContractType]float64{
	ContractQualificationReview: 0.87745,
	ContractSMECompetition:      0.87995,
	ContractNegotiation:         0.80,
	ContractLowestPrice:         0.87745,
}

var constructionTiers = []struct {
	below int64
	ratio float64
}{
	{1_000_000_000, 0.89745},
	{5_000_000_000, 0.88745},
	{10_000_000_000, 0.87495},
	{0, 0.81995}, // 10B and above
}

// FloorRatio returns the statutory minimum bid ratio for a contract. Unknown
// contract types fail closed: the most conservative (highest) known floor for
// the bid type is returned with known=false so the caller can flag the
// uncertainty instead of aborting the prediction.
func FloorRatio(bidType BidType, contractType ContractType, estimatedPrice int64) (ratio float64, known bool) {
	switch bidType {
	case BidTypeConstruction:
		for _, tier := range constructionTiers {
			if tier.below == 0 || estimatedPrice < tier.below {
				return tier.ratio, true
			}
		}
		return constructionTiers[0].ratio, true

	case BidTypeService:
		if r, ok := serviceFloors[contractType]; ok {
			return r, true
		}
		return highestFloor(serviceFloors), false

	default: // goods
		if contractType == ContractQualificationReview && estimatedPrice >= noticeThresholdGoods {
			return goodsQualificationOverThreshold, true
		}
		if r, ok := goodsFloors[contractType]; ok {
			return r, true
		}
		return highestFloor(goodsFloors), false
	}
}

func highestFloor(table map[ContractType]float64) float64 {
	max := 0.0
	for _, r := range table {
		if r > max {
			max = r
		}
	}
	return max
}
