package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pharmalytics/pharmalytics/internal/metrics"
	"github.com/pharmalytics/pharmalytics/internal/store"
)

type fixedSource struct {
	snap store.Snapshot
}

func (f fixedSource) Snapshot() store.Snapshot { return f.snap }

var fixtureNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixtureService() *Service {
	shipID := int64(1)
	snap := store.Snapshot{
		TakenAt: fixtureNow,
		Regions: []store.Region{
			{ID: 1, Name: "North"},
			{ID: 2, Name: "South"},
			{ID: 3, Name: "Frontier"},
		},
		Representatives: []store.Representative{
			{ID: 1, RegionID: 1, Name: "Avery Cole", PerformanceRating: 4.0, HireDate: date(2021, 1, 1)},
			{ID: 2, RegionID: 1, Name: "Sam Idowu", PerformanceRating: 5.0, HireDate: date(2022, 1, 1)},
			{ID: 3, RegionID: 2, Name: "Lee Tran", PerformanceRating: 3.0, HireDate: date(2023, 1, 1)},
		},
		Customers: []store.Customer{
			{ID: 1, Name: "Dr. Okafor", Status: store.CustomerStatusActive, RegisteredAt: date(2024, 1, 1),
				Doctor: &store.DoctorInfo{LicenseNumber: "MD-1"}},
			{ID: 2, Name: "Hilltop Pharmacy", Status: store.CustomerStatusActive, RegisteredAt: date(2024, 2, 1),
				Pharmacy: &store.PharmacyInfo{LicenseNumber: "PH-1"}},
			{ID: 3, Name: "St. Anne Hospital", Status: store.CustomerStatusActive, RegisteredAt: date(2026, 6, 1),
				Hospital: &store.HospitalInfo{FacilityType: "General"}},
		},
		Products: []store.Product{
			{ID: 1, Name: "Atorvastatin", Category: "Cardiovascular", UnitPrice: 10, FDAApproved: true, ExpiryDate: date(2027, 1, 1)},
			{ID: 2, Name: "Omeprazole", Category: "Gastro", UnitPrice: 5, FDAApproved: true, ExpiryDate: date(2027, 1, 1)},
			{ID: 3, Name: "Cetirizine", Category: "Allergy", UnitPrice: 2, FDAApproved: true, ExpiryDate: date(2027, 1, 1)},
		},
		Inventory: []store.InventoryRecord{
			{ProductID: 1, Quantity: 20, ReorderLevel: 100},
			{ProductID: 2, Quantity: 500, ReorderLevel: 100},
			{ProductID: 3, Quantity: 0, ReorderLevel: 100},
		},
		Shipments: []store.Shipment{
			{ID: 1, Date: date(2026, 2, 2), Status: store.ShipmentStatusDelivered, TrackingRef: "TRK-1", Channel: store.ChannelOnline},
		},
		Orders: []store.Order{
			{ID: 1, Date: date(2026, 2, 1), TotalCost: 1000, RepresentativeID: 1, Status: store.OrderStatusDelivered, Priority: store.OrderPriorityHigh, ShipmentID: &shipID},
			{ID: 2, Date: date(2026, 3, 1), TotalCost: 300, RepresentativeID: 2, Status: store.OrderStatusDelivered, Priority: store.OrderPriorityMedium},
			{ID: 3, Date: date(2025, 12, 1), TotalCost: 200, RepresentativeID: 3, Status: store.OrderStatusShipped, Priority: store.OrderPriorityLow},
			{ID: 4, Date: date(2026, 4, 1), TotalCost: 999, RepresentativeID: 1, Status: store.OrderStatusCancelled, Priority: store.OrderPriorityMedium},
			{ID: 5, Date: date(2026, 5, 1), TotalCost: 100, RepresentativeID: 2, Status: store.OrderStatusDelivered, Priority: store.OrderPriorityMedium},
		},
		OrderPlaced: []store.OrderPlaced{
			{OrderID: 1, CustomerID: 1},
			{OrderID: 2, CustomerID: 2},
			{OrderID: 3, CustomerID: 3},
			{OrderID: 4, CustomerID: 1},
			{OrderID: 5, CustomerID: 2},
		},
		Involvements: []store.Involvement{
			{OrderID: 1, ProductID: 1, QuantityOrdered: 50, UnitPrice: 10, LineTotal: 500},
			{OrderID: 1, ProductID: 2, QuantityOrdered: 100, UnitPrice: 5, LineTotal: 500},
			{OrderID: 2, ProductID: 1, QuantityOrdered: 10, UnitPrice: 10, LineTotal: 100},
			{OrderID: 2, ProductID: 2, QuantityOrdered: 40, UnitPrice: 5, LineTotal: 200},
			{OrderID: 4, ProductID: 1, QuantityOrdered: 1, UnitPrice: 10, LineTotal: 10},
			{OrderID: 5, ProductID: 1, QuantityOrdered: 5, UnitPrice: 10, LineTotal: 50},
			{OrderID: 5, ProductID: 3, QuantityOrdered: 25, UnitPrice: 2, LineTotal: 50},
		},
	}
	svc := NewService(fixedSource{snap: snap}, nil)
	svc.WithNow(func() time.Time { return fixtureNow })
	return svc
}

func TestSalesPerformance(t *testing.T) {
	svc := fixtureService()
	rows, err := svc.SalesPerformance(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, int64(1), rows[0].RepresentativeID)
	require.Equal(t, 1, rows[0].Rank)
	require.Equal(t, 1, rows[0].RegionRank)
	require.Equal(t, 1, rows[0].Quartile)
	require.InDelta(t, 1000, rows[0].TotalSales, 0.001)
	require.Equal(t, 1, rows[0].TotalOrders, "cancelled orders are excluded")
	require.Equal(t, 1, rows[0].UniqueCustomers)
	require.Equal(t, "North", rows[0].RegionName)

	require.Equal(t, int64(2), rows[1].RepresentativeID)
	require.Equal(t, 2, rows[1].Rank)
	require.Equal(t, 2, rows[1].RegionRank)
	require.InDelta(t, 400, rows[1].TotalSales, 0.001)
	require.InDelta(t, 200, rows[1].AverageOrderValue, 0.001)

	require.Equal(t, int64(3), rows[2].RepresentativeID)
	require.Equal(t, 3, rows[2].Rank)
	require.Equal(t, 1, rows[2].RegionRank, "only representative in its region")
}

func TestLowStockAlert(t *testing.T) {
	svc := fixtureService()
	rows, err := svc.LowStockAlert(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2, "well-stocked products are excluded")

	require.Equal(t, int64(3), rows[0].ProductID)
	require.Equal(t, metrics.StockOutOfStock, rows[0].Status)
	require.Equal(t, metrics.ActionReorderNow, rows[0].Action)

	require.Equal(t, int64(1), rows[1].ProductID)
	require.Equal(t, metrics.StockCritical, rows[1].Status)
	require.InDelta(t, 200, rows[1].StockValue, 0.001)
}

func TestRegionalPerformance(t *testing.T) {
	svc := fixtureService()
	rows, err := svc.RegionalPerformance(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2, "regions without representatives are skipped")

	require.Equal(t, "North", rows[0].RegionName)
	require.Equal(t, 2, rows[0].Representatives)
	require.Equal(t, 3, rows[0].TotalOrders)
	require.InDelta(t, 1400, rows[0].TotalRevenue, 0.001)
	require.InDelta(t, 700, rows[0].RevenuePerRep, 0.001)

	require.Equal(t, "South", rows[1].RegionName)
	require.InDelta(t, 200, rows[1].TotalRevenue, 0.001)
}

func TestProductPerformance(t *testing.T) {
	svc := fixtureService()
	rows, err := svc.ProductPerformance(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, int64(2), rows[0].ProductID)
	require.InDelta(t, 700, rows[0].TotalRevenue, 0.001)
	require.Equal(t, 140, rows[0].UnitsSold)

	require.Equal(t, int64(1), rows[1].ProductID)
	require.Equal(t, 65, rows[1].UnitsSold, "cancelled order lines are excluded")
	require.Equal(t, 3, rows[1].TimesOrdered)
	require.InDelta(t, 3.25, rows[1].TurnoverRatio, 0.001)
	require.NotNil(t, rows[1].DaysOfSupply)
	require.InDelta(t, 112.31, *rows[1].DaysOfSupply, 0.01)
	require.Equal(t, metrics.StockCritical, rows[1].StockStatus)

	require.Equal(t, int64(3), rows[2].ProductID)
	require.Zero(t, rows[2].TurnoverRatio, "no stock means no turnover")
	require.Nil(t, rows[2].DaysOfSupply)
}

func TestCustomerSegments(t *testing.T) {
	svc := fixtureService()
	rows, err := svc.CustomerSegments(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, "Doctor", rows[0].CustomerType)
	require.InDelta(t, 1000, rows[0].TotalRevenue, 0.001)
	require.Equal(t, "Pharmacy", rows[1].CustomerType)
	require.InDelta(t, 400, rows[1].TotalRevenue, 0.001)
	require.Equal(t, 2, rows[1].TotalOrders)
	require.InDelta(t, 400, rows[1].RevenuePerCustomer, 0.001)
	require.Equal(t, "Hospital", rows[2].CustomerType)
}

func TestCustomerActivity(t *testing.T) {
	svc := fixtureService()
	rows, err := svc.CustomerActivity(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	byID := make(map[int64]CustomerActivityRow, len(rows))
	for _, row := range rows {
		byID[row.CustomerID] = row
	}

	doctor := byID[1]
	require.Equal(t, 1, doctor.TotalOrders)
	require.InDelta(t, 1000, doctor.TotalSpent, 0.001)
	require.Equal(t, metrics.SegmentLowValue, doctor.Segment, "high spend alone does not qualify")
	require.Equal(t, metrics.ChurnChurned, doctor.ChurnState)

	pharmacy := byID[2]
	require.Equal(t, 2, pharmacy.TotalOrders)
	require.Equal(t, 45, pharmacy.DaysSinceLast)
	require.Equal(t, metrics.ChurnAtRisk, pharmacy.ChurnState)

	hospital := byID[3]
	require.Equal(t, 1, hospital.TotalOrders)
	require.Equal(t, 14, hospital.DaysSinceLast, "no delivered order ages from registration")
	require.Equal(t, metrics.ChurnActive, hospital.ChurnState)
}

func TestCrossSell(t *testing.T) {
	svc := fixtureService()
	rows, err := svc.CrossSell(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, int64(1), rows[0].ProductAID)
	require.Equal(t, int64(2), rows[0].ProductBID)
	require.Equal(t, 2, rows[0].Frequency)
	require.Equal(t, "Atorvastatin", rows[0].ProductAName)
	require.Equal(t, "Omeprazole", rows[0].ProductBName)
}

func TestSummary(t *testing.T) {
	svc := fixtureService()
	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	require.Equal(t, 3, summary.YTDOrders, "prior-year and cancelled orders are excluded")
	require.InDelta(t, 1400, summary.YTDRevenue, 0.001)
	require.InDelta(t, 466.67, summary.AverageOrderValue, 0.01)
	require.Equal(t, 3, summary.ActiveReps)
	require.InDelta(t, 2700, summary.InventoryValue, 0.001)
	require.Equal(t, 2, summary.BelowReorderCount)
	require.InDelta(t, 80, summary.SatisfactionPercent, 0.001)
}

func TestBuildDashboard(t *testing.T) {
	svc := fixtureService()
	dashboard, err := svc.BuildDashboard(context.Background())
	require.NoError(t, err)
	require.Len(t, dashboard.SalesPerformance, 3)
	require.Len(t, dashboard.LowStock, 2)
	require.Len(t, dashboard.Regions, 2)
	require.Len(t, dashboard.Products, 3)
	require.Len(t, dashboard.CustomerTypes, 3)
	require.Len(t, dashboard.Activity, 3)
	require.Len(t, dashboard.CrossSell, 1)
	require.Equal(t, 3, dashboard.Summary.YTDOrders)
}
