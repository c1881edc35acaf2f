package doc

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pharmalytics/pharmalytics/internal/metrics"
	"github.com/pharmalytics/pharmalytics/internal/store"
)

func fixtureSnapshot(t *testing.T) store.Snapshot {
	t.Helper()
	s := store.New()
	require.NoError(t, s.PutRegion(store.Region{ID: 1, Name: "Midwest"}))
	require.NoError(t, s.PutRepresentative(store.Representative{
		ID: 1, RegionID: 1, Name: "Priya Nair",
		HireDate: time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC), PerformanceRating: 4.5,
	}))
	require.NoError(t, s.PutCustomer(store.Customer{
		ID: 1, Name: "Lakeside Pharmacy", Status: store.CustomerStatusActive,
		RegisteredAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Pharmacy:     &store.PharmacyInfo{LicenseNumber: "PH-100"},
	}))
	require.NoError(t, s.PutProduct(store.Product{
		ID: 1, Name: "Metformin 850mg", Category: "Diabetes",
		UnitPrice: 8.25, FDAApproved: true,
		ExpiryDate: time.Date(2027, 9, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, s.UpsertInventory(store.InventoryRecord{ProductID: 1, Quantity: 120, ReorderLevel: 100}))

	_, err := s.PutShipment(store.Shipment{
		ID: 1, Status: store.ShipmentStatusInTransit,
		Date:    time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		Channel: store.ChannelOnline, TrackingRef: "TRK-9",
	})
	require.NoError(t, err)
	require.NoError(t, s.AddShipping(store.Shipping{ShipmentID: 1, ProductID: 1, QuantityShipped: 40}))
	require.NoError(t, s.SetAllocations(1, []store.Allocation{{ShipmentID: 1, RegionID: 1, Percentage: 100}}))

	_, err = s.PlaceOrder(store.PlaceOrderInput{
		OrderID: 1, CustomerID: 1, RepresentativeID: 1,
		Date:  time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		Lines: []store.OrderLineInput{{ProductID: 1, Quantity: 10}},
	})
	require.NoError(t, err)
	require.NoError(t, s.UpdateOrderStatus(1, store.OrderStatusDelivered))
	require.NoError(t, s.AssignShipment(1, 1))
	require.NoError(t, s.RecordInteraction(store.Interaction{
		RepresentativeID: 1, CustomerID: 1,
		Date: time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), Notes: "delivery follow-up",
	}))
	return s.Snapshot()
}

func TestBuildComputesSummaries(t *testing.T) {
	snap := fixtureSnapshot(t)
	collections := Build(snap)

	require.Len(t, collections.Representatives, 1)
	rep := collections.Representatives[0]
	require.Equal(t, "Midwest", rep.Region.Name)
	require.Equal(t, 1, rep.SalesMetrics.TotalOrders)
	require.InDelta(t, 82.5, rep.SalesMetrics.TotalSales, 0.001)
	require.InDelta(t, 82.5, rep.SalesMetrics.AverageOrderValue, 0.001)

	require.Len(t, collections.Customers, 1)
	cust := collections.Customers[0]
	require.Equal(t, store.CustomerTypePharmacy, cust.Type)
	require.Equal(t, 1, cust.OrderHistory.TotalOrders)
	require.InDelta(t, 82.5, cust.OrderHistory.TotalSpent, 0.001)
	require.NotNil(t, cust.OrderHistory.LastDelivered)
	require.Len(t, cust.Interactions, 1)

	require.Len(t, collections.Products, 1)
	prod := collections.Products[0]
	require.NotNil(t, prod.Inventory)
	require.Equal(t, 110, prod.Inventory.Quantity)
	require.Equal(t, 10, prod.SalesMetrics.UnitsSold)
	require.Equal(t, 1, prod.SalesMetrics.TimesOrdered)

	require.Len(t, collections.Orders, 1)
	order := collections.Orders[0]
	require.Equal(t, "Priya Nair", order.Representative.Name)
	require.Equal(t, "Lakeside Pharmacy", order.Customer.Name)
	require.Len(t, order.LineItems, 1)
	require.NotNil(t, order.Shipment)
	require.Len(t, order.Shipment.Cargo, 1)
	require.Len(t, order.Shipment.Allocations, 1)
}

func TestBuildExcludesCancelledOrdersFromSummaries(t *testing.T) {
	snap := fixtureSnapshot(t)
	for i := range snap.Orders {
		snap.Orders[i].Status = store.OrderStatusCancelled
	}
	collections := Build(snap)
	require.Equal(t, 0, collections.Representatives[0].SalesMetrics.TotalOrders)
	require.Equal(t, 0, collections.Customers[0].OrderHistory.TotalOrders)
	require.Equal(t, 0, collections.Products[0].SalesMetrics.UnitsSold)
	// The order document itself is still present.
	require.Len(t, collections.Orders, 1)
}

func TestRestoreMatchesRelationalMetrics(t *testing.T) {
	snap := fixtureSnapshot(t)
	restored := Restore(Build(snap))

	require.Equal(t, snap.Regions, restored.Regions)
	require.Equal(t, snap.Representatives, restored.Representatives)
	require.Equal(t, snap.Customers, restored.Customers)
	require.Equal(t, snap.Products, restored.Products)
	require.Equal(t, snap.Inventory, restored.Inventory)
	require.Equal(t, snap.Orders, restored.Orders)
	require.Equal(t, snap.OrderPlaced, restored.OrderPlaced)
	require.Equal(t, snap.Involvements, restored.Involvements)
	require.Equal(t, snap.Shipping, restored.Shipping)
	require.Equal(t, snap.Allocations, restored.Allocations)

	// Identical sources mean identical classifier outputs.
	for i, rec := range snap.Inventory {
		want := metrics.ClassifyStock(rec.Quantity, rec.ReorderLevel)
		got := metrics.ClassifyStock(restored.Inventory[i].Quantity, restored.Inventory[i].ReorderLevel)
		require.Equal(t, want, got)
	}
}

func TestCollectionsJSONRoundTrip(t *testing.T) {
	snap := fixtureSnapshot(t)
	collections := Build(snap)

	raw, err := json.Marshal(collections)
	require.NoError(t, err)

	var decoded Collections
	require.NoError(t, json.Unmarshal(raw, &decoded))
	restored := Restore(decoded)
	require.Equal(t, snap.Orders, restored.Orders)
	require.Equal(t, snap.Involvements, restored.Involvements)
}
