package metrics

// TurnoverRatio is trailing-period units sold divided by current stock.
// Returns 0 when stock is zero or negative.
func TurnoverRatio(unitsSold, currentStock int) float64 {
	if currentStock <= 0 {
		return 0
	}
	return float64(unitsSold) / float64(currentStock)
}

// DaysOfSupply converts a turnover ratio into estimated days of coverage.
// The second return is false when turnover is zero and the value undefined.
func DaysOfSupply(turnover float64) (float64, bool) {
	if turnover <= 0 {
		return 0, false
	}
	return 365 / turnover, true
}
