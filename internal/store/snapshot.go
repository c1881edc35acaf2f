package store

import (
	"sort"
	"time"
)

// Snapshot is an immutable point-in-time copy of the store. Metric
// computation operates on snapshots only, so concurrent recomputation needs
// no coordination with writers.
type Snapshot struct {
	TakenAt time.Time `json:"taken_at"`

	Regions         []Region          `json:"regions"`
	Representatives []Representative  `json:"representatives"`
	Customers       []Customer        `json:"customers"`
	Products        []Product         `json:"products"`
	Inventory       []InventoryRecord `json:"inventory"`
	Shipments       []Shipment        `json:"shipments"`
	Orders          []Order           `json:"orders"`
	Interactions    []Interaction     `json:"interactions"`
	OrderPlaced     []OrderPlaced     `json:"order_placed"`
	Involvements    []Involvement     `json:"involvements"`
	Shipping        []Shipping        `json:"shipping"`
	Allocations     []Allocation      `json:"allocations"`
}

// Snapshot copies the current state into a Snapshot. Entity slices are
// ordered by id so downstream tie-breaks on input order are deterministic.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		TakenAt:         time.Now().UTC(),
		Regions:         make([]Region, 0, len(s.regions)),
		Representatives: make([]Representative, 0, len(s.representatives)),
		Customers:       make([]Customer, 0, len(s.customers)),
		Products:        make([]Product, 0, len(s.products)),
		Inventory:       make([]InventoryRecord, 0, len(s.inventory)),
		Shipments:       make([]Shipment, 0, len(s.shipments)),
		Orders:          make([]Order, 0, len(s.orders)),
		Interactions:    append([]Interaction(nil), s.interactions...),
		OrderPlaced:     append([]OrderPlaced(nil), s.orderPlaced...),
		Involvements:    append([]Involvement(nil), s.involvements...),
		Shipping:        append([]Shipping(nil), s.shipping...),
	}
	for _, v := range s.regions {
		snap.Regions = append(snap.Regions, v)
	}
	for _, v := range s.representatives {
		snap.Representatives = append(snap.Representatives, v)
	}
	for _, v := range s.customers {
		snap.Customers = append(snap.Customers, cloneCustomer(v))
	}
	for _, v := range s.products {
		snap.Products = append(snap.Products, v)
	}
	for _, v := range s.inventory {
		snap.Inventory = append(snap.Inventory, v)
	}
	for _, v := range s.shipments {
		snap.Shipments = append(snap.Shipments, v)
	}
	for _, v := range s.orders {
		snap.Orders = append(snap.Orders, cloneOrder(v))
	}
	for _, allocs := range s.allocations {
		snap.Allocations = append(snap.Allocations, allocs...)
	}

	sort.Slice(snap.Regions, func(i, j int) bool { return snap.Regions[i].ID < snap.Regions[j].ID })
	sort.Slice(snap.Representatives, func(i, j int) bool { return snap.Representatives[i].ID < snap.Representatives[j].ID })
	sort.Slice(snap.Customers, func(i, j int) bool { return snap.Customers[i].ID < snap.Customers[j].ID })
	sort.Slice(snap.Products, func(i, j int) bool { return snap.Products[i].ID < snap.Products[j].ID })
	sort.Slice(snap.Inventory, func(i, j int) bool { return snap.Inventory[i].ProductID < snap.Inventory[j].ProductID })
	sort.Slice(snap.Shipments, func(i, j int) bool { return snap.Shipments[i].ID < snap.Shipments[j].ID })
	sort.Slice(snap.Orders, func(i, j int) bool { return snap.Orders[i].ID < snap.Orders[j].ID })
	sort.Slice(snap.Allocations, func(i, j int) bool {
		if snap.Allocations[i].ShipmentID != snap.Allocations[j].ShipmentID {
			return snap.Allocations[i].ShipmentID < snap.Allocations[j].ShipmentID
		}
		return snap.Allocations[i].RegionID < snap.Allocations[j].RegionID
	})
	return snap
}

// Restore builds a Store from a snapshot, re-running every integrity check.
func Restore(snap Snapshot) (*Store, error) {
	s := New()
	for _, r := range snap.Regions {
		if err := s.PutRegion(r); err != nil {
			return nil, err
		}
	}
	for _, rep := range snap.Representatives {
		if err := s.PutRepresentative(rep); err != nil {
			return nil, err
		}
	}
	for _, c := range snap.Customers {
		if err := s.PutCustomer(c); err != nil {
			return nil, err
		}
	}
	for _, p := range snap.Products {
		if err := s.PutProduct(p); err != nil {
			return nil, err
		}
	}
	for _, rec := range snap.Inventory {
		if err := s.UpsertInventory(rec); err != nil {
			return nil, err
		}
	}
	for _, sh := range snap.Shipments {
		if _, err := s.PutShipment(sh); err != nil {
			return nil, err
		}
	}

	// Historical orders are loaded verbatim; placement-time checks (stock,
	// FDA approval) applied when they were first recorded.
	s.mu.Lock()
	for _, o := range snap.Orders {
		s.orders[o.ID] = cloneOrder(o)
	}
	s.orderPlaced = append(s.orderPlaced, snap.OrderPlaced...)
	s.involvements = append(s.involvements, snap.Involvements...)
	s.interactions = append(s.interactions, snap.Interactions...)
	s.shipping = append(s.shipping, snap.Shipping...)
	for _, a := range snap.Allocations {
		s.allocations[a.ShipmentID] = append(s.allocations[a.ShipmentID], a)
	}
	s.mu.Unlock()
	return s, nil
}

// CustomerByID finds a customer in the snapshot.
func (snap Snapshot) CustomerByID(id int64) (Customer, bool) {
	for _, c := range snap.Customers {
		if c.ID == id {
			return c, true
		}
	}
	return Customer{}, false
}

// ProductByID finds a product in the snapshot.
func (snap Snapshot) ProductByID(id int64) (Product, bool) {
	for _, p := range snap.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// RegionByID finds a region in the snapshot.
func (snap Snapshot) RegionByID(id int64) (Region, bool) {
	for _, r := range snap.Regions {
		if r.ID == id {
			return r, true
		}
	}
	return Region{}, false
}

// OrderCustomer resolves the placing customer of an order.
func (snap Snapshot) OrderCustomer(orderID int64) (int64, bool) {
	for _, op := range snap.OrderPlaced {
		if op.OrderID == orderID {
			return op.CustomerID, true
		}
	}
	return 0, false
}

func cloneCustomer(c Customer) Customer {
	if c.Doctor != nil {
		d := *c.Doctor
		c.Doctor = &d
	}
	if c.Hospital != nil {
		h := *c.Hospital
		c.Hospital = &h
	}
	if c.Pharmacy != nil {
		p := *c.Pharmacy
		c.Pharmacy = &p
	}
	return c
}

func cloneOrder(o Order) Order {
	if o.ShipmentID != nil {
		id := *o.ShipmentID
		o.ShipmentID = &id
	}
	return o
}
