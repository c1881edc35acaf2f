package metrics

// CustomerSegment labels a customer's commercial value.
type CustomerSegment string

const (
	SegmentHighValue   CustomerSegment = "High Value"
	SegmentMediumValue CustomerSegment = "Medium Value"
	SegmentLowValue    CustomerSegment = "Low Value"
)

// ClassifySegment buckets a customer by total spend and order count.
func ClassifySegment(totalSpent float64, totalOrders int) CustomerSegment {
	switch {
	case totalSpent >= 1000 && totalOrders >= 5:
		return SegmentHighValue
	case totalSpent >= 500 && totalOrders >= 3:
		return SegmentMediumValue
	default:
		return SegmentLowValue
	}
}

// ChurnState labels engagement recency from days since the last delivered
// order.
type ChurnState string

const (
	ChurnActive   ChurnState = "Active"
	ChurnAtRisk   ChurnState = "At Risk"
	ChurnInactive ChurnState = "Inactive"
	ChurnChurned  ChurnState = "Churned"
)

// ClassifyChurn buckets by days since the last delivered order.
func ClassifyChurn(daysSinceLastOrder int) ChurnState {
	switch {
	case daysSinceLastOrder <= 30:
		return ChurnActive
	case daysSinceLastOrder <= 60:
		return ChurnAtRisk
	case daysSinceLastOrder <= 90:
		return ChurnInactive
	default:
		return ChurnChurned
	}
}
