// Package metrics implements the derived-metric engine: pure, total,
// deterministic classifiers computed over entity-store snapshots. Every
// classifier carries a covering else branch, so no input is left unlabeled;
// malformed values (a negative quantity already present in a snapshot) get a
// best-effort label rather than an error.
package metrics

// StockStatus labels how a product's on-hand quantity relates to its reorder
// threshold.
type StockStatus string

const (
	StockOutOfStock StockStatus = "OUT_OF_STOCK"
	StockCritical   StockStatus = "CRITICAL"
	StockLow        StockStatus = "LOW"
	StockReorder    StockStatus = "REORDER"
	StockOverstock  StockStatus = "OVERSTOCK"
	StockOptimal    StockStatus = "OPTIMAL"
)

// ClassifyStock is the canonical six-tier stock classifier. Branches are
// evaluated in priority order; the first match wins. A non-positive threshold
// falls back to the default so the function stays total.
func ClassifyStock(quantity, reorderLevel int) StockStatus {
	if reorderLevel <= 0 {
		reorderLevel = 100
	}
	threshold := float64(reorderLevel)
	qty := float64(quantity)
	switch {
	case quantity <= 0:
		return StockOutOfStock
	case qty <= 0.3*threshold:
		return StockCritical
	case qty <= 0.6*threshold:
		return StockLow
	case qty <= threshold:
		return StockReorder
	case qty > 3*threshold:
		return StockOverstock
	default:
		return StockOptimal
	}
}

// RestockAction labels the recommended restocking response.
type RestockAction string

const (
	ActionReorderNow RestockAction = "REORDER_NOW"
	ActionMonitor    RestockAction = "MONITOR"
	ActionSufficient RestockAction = "SUFFICIENT"
)

// ClassifyRestockAction is the coarse three-tier action ladder reported next
// to the stock status. It is kept as a separate named variant rather than
// merged into ClassifyStock; the two ladders use different cutoffs.
func ClassifyRestockAction(quantity, reorderLevel int) RestockAction {
	if reorderLevel <= 0 {
		reorderLevel = 100
	}
	switch {
	case quantity <= reorderLevel:
		return ActionReorderNow
	case float64(quantity) <= 1.5*float64(reorderLevel):
		return ActionMonitor
	default:
		return ActionSufficient
	}
}
