package store

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pharmalytics/pharmalytics/internal/shared"
)

var validate = validator.New()

// Store holds the current and historical state of all supply-chain entities
// with full referential integrity. Entities are never physically removed once
// referenced by an order or shipment; lifecycle is driven by status fields.
type Store struct {
	mu sync.RWMutex

	regions         map[int64]Region
	representatives map[int64]Representative
	customers       map[int64]Customer
	products        map[int64]Product
	inventory       map[int64]InventoryRecord
	shipments       map[int64]Shipment
	orders          map[int64]Order

	interactions []Interaction
	orderPlaced  []OrderPlaced
	involvements []Involvement
	shipping     []Shipping
	allocations  map[int64][]Allocation

	doctorLicenses   map[string]int64
	pharmacyLicenses map[string]int64
}

// New constructs an empty Store.
func New() *Store {
	return &Store{
		regions:          make(map[int64]Region),
		representatives:  make(map[int64]Representative),
		customers:        make(map[int64]Customer),
		products:         make(map[int64]Product),
		inventory:        make(map[int64]InventoryRecord),
		shipments:        make(map[int64]Shipment),
		orders:           make(map[int64]Order),
		allocations:      make(map[int64][]Allocation),
		doctorLicenses:   make(map[string]int64),
		pharmacyLicenses: make(map[string]int64),
	}
}

// PutRegion inserts or updates a region.
func (s *Store) PutRegion(region Region) error {
	if region.ID == 0 || region.Name == "" {
		return fmt.Errorf("%w: region requires id and name", shared.ErrConstraint)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regions[region.ID] = region
	return nil
}

// PutRepresentative inserts or updates a representative. The owning region
// must exist and the performance rating must fall within [1.0, 5.0].
func (s *Store) PutRepresentative(rep Representative) error {
	if rep.ID == 0 || rep.Name == "" {
		return fmt.Errorf("%w: representative requires id and name", shared.ErrConstraint)
	}
	if rep.PerformanceRating < 1.0 || rep.PerformanceRating > 5.0 {
		return fmt.Errorf("%w: performance rating %.2f outside [1.0, 5.0]", shared.ErrConstraint, rep.PerformanceRating)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.regions[rep.RegionID]; !ok {
		return fmt.Errorf("%w: region %d", shared.ErrNotFound, rep.RegionID)
	}
	s.representatives[rep.ID] = rep
	return nil
}

// PutCustomer inserts or updates a customer. The specialization variant must
// be consistent: exactly the payload named by Type populated, license numbers
// unique across their specialization.
func (s *Store) PutCustomer(c Customer) error {
	if c.ID == 0 || c.Name == "" {
		return fmt.Errorf("%w: customer requires id and name", shared.ErrConstraint)
	}
	if c.Type == "" {
		c.Type = c.Specialization()
	}
	if err := checkVariant(c); err != nil {
		return err
	}
	switch c.Status {
	case CustomerStatusActive, CustomerStatusInactive, CustomerStatusPending:
	default:
		return fmt.Errorf("%w: invalid customer status %q", shared.ErrConstraint, c.Status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, existed := s.customers[c.ID]
	if existed && prev.Type != CustomerTypeOther && prev.Type != c.Type {
		return fmt.Errorf("%w: customer %d already specialized as %s", shared.ErrConstraint, c.ID, prev.Type)
	}
	if c.Doctor != nil && c.Doctor.LicenseNumber != "" {
		if owner, ok := s.doctorLicenses[c.Doctor.LicenseNumber]; ok && owner != c.ID {
			return fmt.Errorf("%w: duplicate doctor license %s", shared.ErrConstraint, c.Doctor.LicenseNumber)
		}
	}
	if c.Pharmacy != nil {
		if c.Pharmacy.LicenseNumber == "" {
			return fmt.Errorf("%w: pharmacy license number required", shared.ErrConstraint)
		}
		if owner, ok := s.pharmacyLicenses[c.Pharmacy.LicenseNumber]; ok && owner != c.ID {
			return fmt.Errorf("%w: duplicate pharmacy license %s", shared.ErrConstraint, c.Pharmacy.LicenseNumber)
		}
	}
	// The previous licenses are released only once every check above has
	// passed; a rejected update must leave the index untouched.
	if existed {
		s.releaseLicenses(prev)
	}
	if c.Doctor != nil && c.Doctor.LicenseNumber != "" {
		s.doctorLicenses[c.Doctor.LicenseNumber] = c.ID
	}
	if c.Pharmacy != nil {
		s.pharmacyLicenses[c.Pharmacy.LicenseNumber] = c.ID
	}
	s.customers[c.ID] = c
	return nil
}

func checkVariant(c Customer) error {
	populated := 0
	if c.Doctor != nil {
		populated++
	}
	if c.Hospital != nil {
		populated++
	}
	if c.Pharmacy != nil {
		populated++
	}
	if populated > 1 {
		return fmt.Errorf("%w: customer %d has multiple specializations", shared.ErrConstraint, c.ID)
	}
	if c.Type != c.Specialization() {
		return fmt.Errorf("%w: customer %d tagged %s but payload is %s", shared.ErrConstraint, c.ID, c.Type, c.Specialization())
	}
	return nil
}

func (s *Store) releaseLicenses(c Customer) {
	if c.Doctor != nil && c.Doctor.LicenseNumber != "" {
		delete(s.doctorLicenses, c.Doctor.LicenseNumber)
	}
	if c.Pharmacy != nil && c.Pharmacy.LicenseNumber != "" {
		delete(s.pharmacyLicenses, c.Pharmacy.LicenseNumber)
	}
}

// PutProduct inserts or updates a product. Unit price must be non-negative.
func (s *Store) PutProduct(p Product) error {
	if p.ID == 0 || p.Name == "" {
		return fmt.Errorf("%w: product requires id and name", shared.ErrConstraint)
	}
	if p.UnitPrice < 0 {
		return fmt.Errorf("%w: negative unit price", shared.ErrConstraint)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
	return nil
}

// UpsertInventory creates or replaces the inventory record for a product.
// Quantity must be non-negative; a zero reorder level takes the default.
func (s *Store) UpsertInventory(rec InventoryRecord) error {
	if rec.Quantity < 0 {
		return fmt.Errorf("%w: negative inventory quantity", shared.ErrConstraint)
	}
	if rec.ReorderLevel <= 0 {
		rec.ReorderLevel = DefaultReorderLevel
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[rec.ProductID]; !ok {
		return fmt.Errorf("%w: product %d", shared.ErrNotFound, rec.ProductID)
	}
	s.inventory[rec.ProductID] = rec
	return nil
}

// AdjustInventory applies a signed delta to a product's quantity using a
// check-then-decrement discipline: a delta that would drive the quantity
// negative is rejected and the record is left unchanged.
func (s *Store) AdjustInventory(productID int64, delta int) (InventoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adjustInventoryLocked(productID, delta)
}

func (s *Store) adjustInventoryLocked(productID int64, delta int) (InventoryRecord, error) {
	rec, ok := s.inventory[productID]
	if !ok {
		return InventoryRecord{}, fmt.Errorf("%w: inventory for product %d", shared.ErrNotFound, productID)
	}
	next := rec.Quantity + delta
	if next < 0 {
		return InventoryRecord{}, fmt.Errorf("%w: inventory for product %d would drop to %d", shared.ErrConstraint, productID, next)
	}
	rec.Quantity = next
	s.inventory[productID] = rec
	return rec, nil
}

// PutShipment inserts or updates a shipment, generating a tracking reference
// when the caller supplies none.
func (s *Store) PutShipment(sh Shipment) (Shipment, error) {
	if sh.ID == 0 {
		return Shipment{}, fmt.Errorf("%w: shipment requires id", shared.ErrConstraint)
	}
	switch sh.Status {
	case ShipmentStatusPending, ShipmentStatusInTransit, ShipmentStatusDelivered, ShipmentStatusCancelled:
	default:
		return Shipment{}, fmt.Errorf("%w: invalid shipment status %q", shared.ErrConstraint, sh.Status)
	}
	if sh.TrackingRef == "" {
		sh.TrackingRef = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shipments[sh.ID] = sh
	return sh, nil
}

// OrderLineInput is one product line of a new order.
type OrderLineInput struct {
	ProductID int64 `validate:"required,gt=0"`
	Quantity  int   `validate:"required,gt=0"`
}

// PlaceOrderInput describes a new order placement.
type PlaceOrderInput struct {
	OrderID          int64            `validate:"required,gt=0"`
	CustomerID       int64            `validate:"required,gt=0"`
	RepresentativeID int64            `validate:"required,gt=0"`
	Date             time.Time        `validate:"required"`
	Priority         OrderPriority    `validate:"omitempty,oneof=Low Medium High Critical"`
	Lines            []OrderLineInput `validate:"required,min=1,dive"`
}

// PlaceOrder records a customer order: it verifies every referenced entity,
// rejects lines for products that are not FDA approved, decrements inventory
// per line (never below zero), and derives line totals and the order total.
// On any failure no state changes are kept.
func (s *Store) PlaceOrder(input PlaceOrderInput) (Order, error) {
	if err := validate.Struct(input); err != nil {
		return Order{}, fmt.Errorf("%w: %v", shared.ErrConstraint, err)
	}
	if input.Priority == "" {
		input.Priority = OrderPriorityMedium
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[input.OrderID]; ok {
		return Order{}, fmt.Errorf("%w: order %d already exists", shared.ErrConstraint, input.OrderID)
	}
	if _, ok := s.customers[input.CustomerID]; !ok {
		return Order{}, fmt.Errorf("%w: customer %d", shared.ErrNotFound, input.CustomerID)
	}
	if _, ok := s.representatives[input.RepresentativeID]; !ok {
		return Order{}, fmt.Errorf("%w: representative %d", shared.ErrNotFound, input.RepresentativeID)
	}

	// Stock checks run against the aggregate demand per product so that
	// repeated lines for one product cannot pass individually and fail as a
	// whole once decrements start.
	lines := make([]Involvement, 0, len(input.Lines))
	requested := make(map[int64]int, len(input.Lines))
	var total float64
	for _, line := range input.Lines {
		product, ok := s.products[line.ProductID]
		if !ok {
			return Order{}, fmt.Errorf("%w: product %d", shared.ErrNotFound, line.ProductID)
		}
		if !product.FDAApproved {
			return Order{}, fmt.Errorf("%w: product %d is not FDA approved", shared.ErrConstraint, line.ProductID)
		}
		rec, ok := s.inventory[line.ProductID]
		if !ok {
			return Order{}, fmt.Errorf("%w: inventory for product %d", shared.ErrNotFound, line.ProductID)
		}
		requested[line.ProductID] += line.Quantity
		if rec.Quantity < requested[line.ProductID] {
			return Order{}, fmt.Errorf("%w: product %d has %d units, %d requested", shared.ErrConstraint, line.ProductID, rec.Quantity, requested[line.ProductID])
		}
		lineTotal := round2(float64(line.Quantity) * product.UnitPrice)
		lines = append(lines, Involvement{
			OrderID:         input.OrderID,
			ProductID:       line.ProductID,
			QuantityOrdered: line.Quantity,
			UnitPrice:       product.UnitPrice,
			LineTotal:       lineTotal,
		})
		total += lineTotal
	}

	// All checks passed; apply decrements and record the order.
	for productID, qty := range requested {
		if _, err := s.adjustInventoryLocked(productID, -qty); err != nil {
			return Order{}, err
		}
	}
	order := Order{
		ID:               input.OrderID,
		Date:             input.Date,
		TotalCost:        round2(total),
		RepresentativeID: input.RepresentativeID,
		Status:           OrderStatusPending,
		Priority:         input.Priority,
	}
	s.orders[order.ID] = order
	s.orderPlaced = append(s.orderPlaced, OrderPlaced{OrderID: order.ID, CustomerID: input.CustomerID})
	s.involvements = append(s.involvements, lines...)
	return order, nil
}

// UpdateOrderStatus transitions an order; cancellation is terminal.
func (s *Store) UpdateOrderStatus(orderID int64, status OrderStatus) error {
	switch status {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
	default:
		return fmt.Errorf("%w: invalid order status %q", shared.ErrConstraint, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: order %d", shared.ErrNotFound, orderID)
	}
	if order.Status == OrderStatusCancelled && status != OrderStatusCancelled {
		return fmt.Errorf("%w: order %d is cancelled", shared.ErrConstraint, orderID)
	}
	order.Status = status
	s.orders[orderID] = order
	return nil
}

// UpdateShipmentStatus transitions a shipment.
func (s *Store) UpdateShipmentStatus(shipmentID int64, status ShipmentStatus) error {
	switch status {
	case ShipmentStatusPending, ShipmentStatusInTransit, ShipmentStatusDelivered, ShipmentStatusCancelled:
	default:
		return fmt.Errorf("%w: invalid shipment status %q", shared.ErrConstraint, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shipments[shipmentID]
	if !ok {
		return fmt.Errorf("%w: shipment %d", shared.ErrNotFound, shipmentID)
	}
	sh.Status = status
	s.shipments[shipmentID] = sh
	return nil
}

// UpdateCustomerStatus transitions a customer. Customers are retired via
// status, never removed.
func (s *Store) UpdateCustomerStatus(customerID int64, status CustomerStatus) error {
	switch status {
	case CustomerStatusActive, CustomerStatusInactive, CustomerStatusPending:
	default:
		return fmt.Errorf("%w: invalid customer status %q", shared.ErrConstraint, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[customerID]
	if !ok {
		return fmt.Errorf("%w: customer %d", shared.ErrNotFound, customerID)
	}
	c.Status = status
	s.customers[customerID] = c
	return nil
}

// AssignShipment links an existing order to an existing shipment.
func (s *Store) AssignShipment(orderID, shipmentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: order %d", shared.ErrNotFound, orderID)
	}
	if _, ok := s.shipments[shipmentID]; !ok {
		return fmt.Errorf("%w: shipment %d", shared.ErrNotFound, shipmentID)
	}
	order.ShipmentID = &shipmentID
	s.orders[orderID] = order
	return nil
}

// RecordInteraction appends a representative-customer contact.
func (s *Store) RecordInteraction(in Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.representatives[in.RepresentativeID]; !ok {
		return fmt.Errorf("%w: representative %d", shared.ErrNotFound, in.RepresentativeID)
	}
	if _, ok := s.customers[in.CustomerID]; !ok {
		return fmt.Errorf("%w: customer %d", shared.ErrNotFound, in.CustomerID)
	}
	s.interactions = append(s.interactions, in)
	return nil
}

// AddShipping records units of a product carried by a shipment.
func (s *Store) AddShipping(sh Shipping) error {
	if sh.QuantityShipped <= 0 {
		return fmt.Errorf("%w: quantity shipped must be positive", shared.ErrConstraint)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shipments[sh.ShipmentID]; !ok {
		return fmt.Errorf("%w: shipment %d", shared.ErrNotFound, sh.ShipmentID)
	}
	if _, ok := s.products[sh.ProductID]; !ok {
		return fmt.Errorf("%w: product %d", shared.ErrNotFound, sh.ProductID)
	}
	s.shipping = append(s.shipping, sh)
	return nil
}

// SetAllocations replaces the regional split for a shipment. Percentages must
// sum to 100 and every region must exist.
func (s *Store) SetAllocations(shipmentID int64, allocs []Allocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shipments[shipmentID]; !ok {
		return fmt.Errorf("%w: shipment %d", shared.ErrNotFound, shipmentID)
	}
	var sum float64
	for _, a := range allocs {
		if a.ShipmentID != shipmentID {
			return fmt.Errorf("%w: allocation targets shipment %d", shared.ErrConstraint, a.ShipmentID)
		}
		if _, ok := s.regions[a.RegionID]; !ok {
			return fmt.Errorf("%w: region %d", shared.ErrNotFound, a.RegionID)
		}
		if a.Percentage <= 0 {
			return fmt.Errorf("%w: allocation percentage must be positive", shared.ErrConstraint)
		}
		sum += a.Percentage
	}
	if math.Abs(sum-100) > 0.01 {
		return fmt.Errorf("%w: allocations for shipment %d sum to %.2f", shared.ErrConstraint, shipmentID, sum)
	}
	s.allocations[shipmentID] = append([]Allocation(nil), allocs...)
	return nil
}

// GetCustomer returns a customer by id.
func (s *Store) GetCustomer(id int64) (Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return Customer{}, fmt.Errorf("%w: customer %d", shared.ErrNotFound, id)
	}
	return c, nil
}

// GetOrder returns an order by id.
func (s *Store) GetOrder(id int64) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return Order{}, fmt.Errorf("%w: order %d", shared.ErrNotFound, id)
	}
	return o, nil
}

// GetInventory returns the inventory record for a product.
func (s *Store) GetInventory(productID int64) (InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.inventory[productID]
	if !ok {
		return InventoryRecord{}, fmt.Errorf("%w: inventory for product %d", shared.ErrNotFound, productID)
	}
	return rec, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
