package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pharmalytics/pharmalytics/internal/shared"
)

func seedStore(t *testing.T) *Store {
	t.Helper()
	s := New()
	require.NoError(t, s.PutRegion(Region{ID: 1, Name: "Northeast"}))
	require.NoError(t, s.PutRepresentative(Representative{
		ID: 1, RegionID: 1, Name: "Dana Ruiz",
		HireDate:          time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC),
		PerformanceRating: 4.2,
	}))
	require.NoError(t, s.PutCustomer(Customer{
		ID: 1, Name: "Mercy General", Status: CustomerStatusActive,
		RegisteredAt: time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC),
		Hospital:     &HospitalInfo{FacilityType: "General", BedCapacity: 320},
	}))
	require.NoError(t, s.PutProduct(Product{
		ID: 1, Name: "Amoxicillin 500mg", Category: "Antibiotics",
		UnitPrice: 12.50, FDAApproved: true,
		ExpiryDate: time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, s.UpsertInventory(InventoryRecord{ProductID: 1, Quantity: 200, ReorderLevel: 100}))
	return s
}

func TestPutRepresentativeRatingBounds(t *testing.T) {
	s := New()
	require.NoError(t, s.PutRegion(Region{ID: 1, Name: "West"}))

	err := s.PutRepresentative(Representative{ID: 2, RegionID: 1, Name: "Kim Osei", PerformanceRating: 0.9})
	require.ErrorIs(t, err, shared.ErrConstraint)

	err = s.PutRepresentative(Representative{ID: 2, RegionID: 1, Name: "Kim Osei", PerformanceRating: 5.1})
	require.ErrorIs(t, err, shared.ErrConstraint)

	require.NoError(t, s.PutRepresentative(Representative{ID: 2, RegionID: 1, Name: "Kim Osei", PerformanceRating: 1.0}))
	require.NoError(t, s.PutRepresentative(Representative{ID: 2, RegionID: 1, Name: "Kim Osei", PerformanceRating: 5.0}))
}

func TestPutRepresentativeUnknownRegion(t *testing.T) {
	s := New()
	err := s.PutRepresentative(Representative{ID: 1, RegionID: 99, Name: "Kim Osei", PerformanceRating: 3.0})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPutCustomerVariants(t *testing.T) {
	s := New()

	err := s.PutCustomer(Customer{
		ID: 1, Name: "Conflicted", Status: CustomerStatusActive,
		Doctor:   &DoctorInfo{LicenseNumber: "MD-1"},
		Pharmacy: &PharmacyInfo{LicenseNumber: "PH-1"},
	})
	require.ErrorIs(t, err, shared.ErrConstraint)

	require.NoError(t, s.PutCustomer(Customer{
		ID: 2, Name: "Dr. Chen", Status: CustomerStatusActive,
		Doctor: &DoctorInfo{Specialty: "Cardiology", LicenseNumber: "MD-2"},
	}))

	// Same doctor license on a different customer is rejected.
	err = s.PutCustomer(Customer{
		ID: 3, Name: "Dr. Other", Status: CustomerStatusActive,
		Doctor: &DoctorInfo{LicenseNumber: "MD-2"},
	})
	require.ErrorIs(t, err, shared.ErrConstraint)

	// A pharmacy without a license number is rejected.
	err = s.PutCustomer(Customer{
		ID: 4, Name: "Corner Pharmacy", Status: CustomerStatusActive,
		Pharmacy: &PharmacyInfo{},
	})
	require.ErrorIs(t, err, shared.ErrConstraint)

	// Updating the same customer with its own license is fine.
	require.NoError(t, s.PutCustomer(Customer{
		ID: 2, Name: "Dr. Chen", Status: CustomerStatusInactive,
		Doctor: &DoctorInfo{Specialty: "Cardiology", LicenseNumber: "MD-2"},
	}))
}

func TestPutCustomerFailedUpdateKeepsLicense(t *testing.T) {
	s := New()
	require.NoError(t, s.PutCustomer(Customer{
		ID: 1, Name: "Dr. Ito", Status: CustomerStatusActive,
		Doctor: &DoctorInfo{LicenseNumber: "MD-A"},
	}))
	require.NoError(t, s.PutCustomer(Customer{
		ID: 2, Name: "Dr. Vance", Status: CustomerStatusActive,
		Doctor: &DoctorInfo{LicenseNumber: "MD-B"},
	}))

	// Claiming another customer's license fails and must not release the
	// caller's own license from the index.
	err := s.PutCustomer(Customer{
		ID: 1, Name: "Dr. Ito", Status: CustomerStatusActive,
		Doctor: &DoctorInfo{LicenseNumber: "MD-B"},
	})
	require.ErrorIs(t, err, shared.ErrConstraint)

	err = s.PutCustomer(Customer{
		ID: 3, Name: "Dr. Poacher", Status: CustomerStatusActive,
		Doctor: &DoctorInfo{LicenseNumber: "MD-A"},
	})
	require.ErrorIs(t, err, shared.ErrConstraint, "license MD-A still belongs to customer 1")

	c, err := s.GetCustomer(1)
	require.NoError(t, err)
	require.Equal(t, "MD-A", c.Doctor.LicenseNumber)
}

func TestPutCustomerSpecializationImmutable(t *testing.T) {
	s := New()
	require.NoError(t, s.PutCustomer(Customer{
		ID: 1, Name: "Dr. Chen", Status: CustomerStatusActive,
		Doctor: &DoctorInfo{LicenseNumber: "MD-9"},
	}))

	err := s.PutCustomer(Customer{
		ID: 1, Name: "Dr. Chen", Status: CustomerStatusActive,
		Hospital: &HospitalInfo{FacilityType: "Clinic"},
	})
	require.ErrorIs(t, err, shared.ErrConstraint)

	// An Other customer may later gain a specialization.
	require.NoError(t, s.PutCustomer(Customer{ID: 2, Name: "Walk-in", Status: CustomerStatusPending}))
	require.NoError(t, s.PutCustomer(Customer{
		ID: 2, Name: "Walk-in", Status: CustomerStatusActive,
		Pharmacy: &PharmacyInfo{LicenseNumber: "PH-7"},
	}))
}

func TestAdjustInventoryRejectsNegative(t *testing.T) {
	s := seedStore(t)

	_, err := s.AdjustInventory(1, -250)
	require.ErrorIs(t, err, shared.ErrConstraint)

	rec, err := s.GetInventory(1)
	require.NoError(t, err)
	require.Equal(t, 200, rec.Quantity, "failed decrement must leave quantity unchanged")

	rec, err = s.AdjustInventory(1, -200)
	require.NoError(t, err)
	require.Equal(t, 0, rec.Quantity)
}

func TestUpsertInventoryDefaultsReorderLevel(t *testing.T) {
	s := seedStore(t)
	require.NoError(t, s.UpsertInventory(InventoryRecord{ProductID: 1, Quantity: 50}))
	rec, err := s.GetInventory(1)
	require.NoError(t, err)
	require.Equal(t, DefaultReorderLevel, rec.ReorderLevel)
}

func TestPlaceOrderDerivesTotals(t *testing.T) {
	s := seedStore(t)
	require.NoError(t, s.PutProduct(Product{
		ID: 2, Name: "Lisinopril 10mg", Category: "Cardiovascular",
		UnitPrice: 3.33, FDAApproved: true,
		ExpiryDate: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, s.UpsertInventory(InventoryRecord{ProductID: 2, Quantity: 100}))

	order, err := s.PlaceOrder(PlaceOrderInput{
		OrderID: 10, CustomerID: 1, RepresentativeID: 1,
		Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Lines: []OrderLineInput{
			{ProductID: 1, Quantity: 4},
			{ProductID: 2, Quantity: 3},
		},
	})
	require.NoError(t, err)
	require.Equal(t, OrderStatusPending, order.Status)
	require.Equal(t, OrderPriorityMedium, order.Priority)
	require.InDelta(t, 4*12.50+9.99, order.TotalCost, 0.001)

	snap := s.Snapshot()
	require.Len(t, snap.Involvements, 2)
	for _, line := range snap.Involvements {
		require.InDelta(t, float64(line.QuantityOrdered)*line.UnitPrice, line.LineTotal, 0.005)
	}

	rec, err := s.GetInventory(1)
	require.NoError(t, err)
	require.Equal(t, 196, rec.Quantity)
}

func TestPlaceOrderAllOrNothing(t *testing.T) {
	s := seedStore(t)
	require.NoError(t, s.PutProduct(Product{
		ID: 2, Name: "Scarce", UnitPrice: 1, FDAApproved: true,
		ExpiryDate: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, s.UpsertInventory(InventoryRecord{ProductID: 2, Quantity: 1}))

	_, err := s.PlaceOrder(PlaceOrderInput{
		OrderID: 11, CustomerID: 1, RepresentativeID: 1,
		Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Lines: []OrderLineInput{
			{ProductID: 1, Quantity: 10},
			{ProductID: 2, Quantity: 5},
		},
	})
	require.ErrorIs(t, err, shared.ErrConstraint)

	rec, err := s.GetInventory(1)
	require.NoError(t, err)
	require.Equal(t, 200, rec.Quantity, "rejected order must not consume stock")
	_, err = s.GetOrder(11)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPlaceOrderAggregatesDuplicateLines(t *testing.T) {
	s := seedStore(t)

	// Each line fits on its own but the combined demand exceeds stock.
	_, err := s.PlaceOrder(PlaceOrderInput{
		OrderID: 14, CustomerID: 1, RepresentativeID: 1,
		Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Lines: []OrderLineInput{
			{ProductID: 1, Quantity: 120},
			{ProductID: 1, Quantity: 120},
		},
	})
	require.ErrorIs(t, err, shared.ErrConstraint)

	rec, err := s.GetInventory(1)
	require.NoError(t, err)
	require.Equal(t, 200, rec.Quantity, "rejected order must leave inventory unchanged")
	_, err = s.GetOrder(14)
	require.ErrorIs(t, err, shared.ErrNotFound)

	// Duplicate lines that fit together are decremented exactly once each.
	order, err := s.PlaceOrder(PlaceOrderInput{
		OrderID: 15, CustomerID: 1, RepresentativeID: 1,
		Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Lines: []OrderLineInput{
			{ProductID: 1, Quantity: 120},
			{ProductID: 1, Quantity: 80},
		},
	})
	require.NoError(t, err)
	require.InDelta(t, 200*12.50, order.TotalCost, 0.001)

	rec, err = s.GetInventory(1)
	require.NoError(t, err)
	require.Equal(t, 0, rec.Quantity)
}

func TestPlaceOrderRejectsUnapprovedProduct(t *testing.T) {
	s := seedStore(t)
	require.NoError(t, s.PutProduct(Product{
		ID: 3, Name: "Trial Compound", UnitPrice: 99, FDAApproved: false,
		ExpiryDate: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, s.UpsertInventory(InventoryRecord{ProductID: 3, Quantity: 50}))

	_, err := s.PlaceOrder(PlaceOrderInput{
		OrderID: 12, CustomerID: 1, RepresentativeID: 1,
		Date:  time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Lines: []OrderLineInput{{ProductID: 3, Quantity: 1}},
	})
	require.ErrorIs(t, err, shared.ErrConstraint)
}

func TestPlaceOrderValidatesInput(t *testing.T) {
	s := seedStore(t)
	_, err := s.PlaceOrder(PlaceOrderInput{
		OrderID: 13, CustomerID: 1, RepresentativeID: 1,
		Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, shared.ErrConstraint, "empty line set must be rejected")

	_, err = s.PlaceOrder(PlaceOrderInput{
		OrderID: 13, CustomerID: 1, RepresentativeID: 1,
		Date:  time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Lines: []OrderLineInput{{ProductID: 1, Quantity: -2}},
	})
	require.ErrorIs(t, err, shared.ErrConstraint)
}

func TestUpdateOrderStatusCancelledIsTerminal(t *testing.T) {
	s := seedStore(t)
	_, err := s.PlaceOrder(PlaceOrderInput{
		OrderID: 20, CustomerID: 1, RepresentativeID: 1,
		Date:  time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Lines: []OrderLineInput{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, s.UpdateOrderStatus(20, OrderStatusCancelled))
	err = s.UpdateOrderStatus(20, OrderStatusProcessing)
	require.ErrorIs(t, err, shared.ErrConstraint)
}

func TestSetAllocationsMustSumToHundred(t *testing.T) {
	s := seedStore(t)
	require.NoError(t, s.PutRegion(Region{ID: 2, Name: "South"}))
	_, err := s.PutShipment(Shipment{ID: 1, Status: ShipmentStatusPending, Date: time.Now()})
	require.NoError(t, err)

	err = s.SetAllocations(1, []Allocation{
		{ShipmentID: 1, RegionID: 1, Percentage: 70},
		{ShipmentID: 1, RegionID: 2, Percentage: 20},
	})
	require.ErrorIs(t, err, shared.ErrConstraint)

	require.NoError(t, s.SetAllocations(1, []Allocation{
		{ShipmentID: 1, RegionID: 1, Percentage: 70},
		{ShipmentID: 1, RegionID: 2, Percentage: 30},
	}))

	err = s.SetAllocations(1, []Allocation{{ShipmentID: 1, RegionID: 99, Percentage: 100}})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPutShipmentGeneratesTrackingRef(t *testing.T) {
	s := seedStore(t)
	sh, err := s.PutShipment(Shipment{ID: 5, Status: ShipmentStatusPending, Date: time.Now()})
	require.NoError(t, err)
	require.NotEmpty(t, sh.TrackingRef)

	sh2, err := s.PutShipment(Shipment{ID: 6, Status: ShipmentStatusPending, Date: time.Now(), TrackingRef: "TRK-1"})
	require.NoError(t, err)
	require.Equal(t, "TRK-1", sh2.TrackingRef)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := seedStore(t)
	_, err := s.PlaceOrder(PlaceOrderInput{
		OrderID: 30, CustomerID: 1, RepresentativeID: 1,
		Date:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Lines: []OrderLineInput{{ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)
	require.NoError(t, s.UpdateOrderStatus(30, OrderStatusDelivered))

	snap := s.Snapshot()
	restored, err := Restore(snap)
	require.NoError(t, err)

	again := restored.Snapshot()
	require.Equal(t, snap.Regions, again.Regions)
	require.Equal(t, snap.Customers, again.Customers)
	require.Equal(t, snap.Orders, again.Orders)
	require.Equal(t, snap.Involvements, again.Involvements)
	require.Equal(t, snap.Inventory, again.Inventory)
}

func TestSnapshotIsolation(t *testing.T) {
	s := seedStore(t)
	snap := s.Snapshot()
	_, err := s.AdjustInventory(1, -50)
	require.NoError(t, err)
	require.Equal(t, 200, snap.Inventory[0].Quantity, "snapshot must not observe later writes")
}
