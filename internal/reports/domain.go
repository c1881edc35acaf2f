// Package reports composes entity-store snapshots through the derived-metric
// engine into the tabular reports surfaced on the dashboard. The package owns
// no state: every report is recomputed from a snapshot, optionally behind a
// versioned cache.
package reports

import (
	"github.com/pharmalytics/pharmalytics/internal/metrics"
)

// SalesPerformanceRow aggregates one representative's results.
type SalesPerformanceRow struct {
	RepresentativeID  int64   `json:"representative_id"`
	Name              string  `json:"name"`
	RegionName        string  `json:"region_name"`
	PerformanceRating float64 `json:"performance_rating"`
	TotalOrders       int     `json:"total_orders"`
	TotalSales        float64 `json:"total_sales"`
	AverageOrderValue float64 `json:"average_order_value"`
	UniqueCustomers   int     `json:"unique_customers"`
	Rank              int     `json:"rank"`
	RegionRank        int     `json:"region_rank"`
	Quartile          int     `json:"quartile"`
}

// LowStockRow is a product at or below its reorder threshold.
type LowStockRow struct {
	ProductID    int64                 `json:"product_id"`
	ProductName  string                `json:"product_name"`
	Category     string                `json:"category"`
	Quantity     int                   `json:"quantity"`
	ReorderLevel int                   `json:"reorder_level"`
	Location     string                `json:"location,omitempty"`
	StockValue   float64               `json:"stock_value"`
	Status       metrics.StockStatus   `json:"status"`
	Action       metrics.RestockAction `json:"action"`
}

// RegionalPerformanceRow aggregates one region's results.
type RegionalPerformanceRow struct {
	RegionID          int64   `json:"region_id"`
	RegionName        string  `json:"region_name"`
	Representatives   int     `json:"representatives"`
	TotalOrders       int     `json:"total_orders"`
	TotalRevenue      float64 `json:"total_revenue"`
	AverageOrderValue float64 `json:"average_order_value"`
	RevenuePerRep     float64 `json:"revenue_per_rep"`
}

// ProductPerformanceRow aggregates one product's sales and stock efficiency.
type ProductPerformanceRow struct {
	ProductID     int64               `json:"product_id"`
	ProductName   string              `json:"product_name"`
	Category      string              `json:"category"`
	UnitPrice     float64             `json:"unit_price"`
	TimesOrdered  int                 `json:"times_ordered"`
	UnitsSold     int                 `json:"units_sold"`
	TotalRevenue  float64             `json:"total_revenue"`
	CurrentStock  int                 `json:"current_stock"`
	TurnoverRatio float64             `json:"turnover_ratio"`
	DaysOfSupply  *float64            `json:"days_of_supply,omitempty"`
	StockStatus   metrics.StockStatus `json:"stock_status"`
}

// CustomerTypeRow aggregates customers of one specialization.
type CustomerTypeRow struct {
	CustomerType       string  `json:"customer_type"`
	Customers          int     `json:"customers"`
	TotalOrders        int     `json:"total_orders"`
	TotalRevenue       float64 `json:"total_revenue"`
	AverageOrderValue  float64 `json:"average_order_value"`
	RevenuePerCustomer float64 `json:"revenue_per_customer"`
}

// CustomerActivityRow classifies one customer's value and engagement.
type CustomerActivityRow struct {
	CustomerID    int64                   `json:"customer_id"`
	Name          string                  `json:"name"`
	CustomerType  string                  `json:"customer_type"`
	TotalOrders   int                     `json:"total_orders"`
	TotalSpent    float64                 `json:"total_spent"`
	Segment       metrics.CustomerSegment `json:"segment"`
	DaysSinceLast int                     `json:"days_since_last_order"`
	ChurnState    metrics.ChurnState      `json:"churn_state"`
}

// CrossSellRow is a frequently co-ordered product pair.
type CrossSellRow struct {
	ProductAID   int64  `json:"product_a_id"`
	ProductAName string `json:"product_a_name"`
	ProductBID   int64  `json:"product_b_id"`
	ProductBName string `json:"product_b_name"`
	Frequency    int    `json:"frequency"`
}

// ExecutiveSummary is the fixed KPI set on the dashboard.
type ExecutiveSummary struct {
	YTDRevenue          float64 `json:"ytd_revenue"`
	YTDOrders           int     `json:"ytd_orders"`
	AverageOrderValue   float64 `json:"average_order_value"`
	ActiveReps          int     `json:"active_representatives"`
	InventoryValue      float64 `json:"inventory_value"`
	BelowReorderCount   int     `json:"below_reorder_count"`
	SatisfactionPercent float64 `json:"satisfaction_percent"`
}

// Dashboard bundles every report section for one snapshot.
type Dashboard struct {
	Summary          ExecutiveSummary         `json:"summary"`
	SalesPerformance []SalesPerformanceRow    `json:"sales_performance"`
	LowStock         []LowStockRow            `json:"low_stock"`
	Regions          []RegionalPerformanceRow `json:"regions"`
	Products         []ProductPerformanceRow  `json:"products"`
	CustomerTypes    []CustomerTypeRow        `json:"customer_types"`
	Activity         []CustomerActivityRow    `json:"customer_activity"`
	CrossSell        []CrossSellRow           `json:"cross_sell"`
}
