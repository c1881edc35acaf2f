// Package doc holds the denormalized document representation of the entity
// store: four collections mirroring the relational model with summary fields
// duplicated for read performance. Summaries follow a recompute-on-write
// policy: Build derives every one of them from the snapshot, and Restore
// discards them, so they can never act as a second source of truth.
package doc

import (
	"math"
	"sort"
	"time"

	"github.com/pharmalytics/pharmalytics/internal/store"
)

// SalesMetrics summarises a representative's order aggregates.
type SalesMetrics struct {
	TotalOrders       int     `json:"total_orders"`
	TotalSales        float64 `json:"total_sales"`
	AverageOrderValue float64 `json:"average_order_value"`
}

// RepresentativeDoc embeds the owning region and precomputed sales metrics.
type RepresentativeDoc struct {
	ID                int64        `json:"_id"`
	Name              string       `json:"name"`
	Email             string       `json:"email,omitempty"`
	Phone             string       `json:"phone,omitempty"`
	HireDate          time.Time    `json:"hire_date"`
	PerformanceRating float64      `json:"performance_rating"`
	Region            store.Region `json:"region"`
	SalesMetrics      SalesMetrics `json:"sales_metrics"`
}

// OrderHistory summarises a customer's purchasing record.
type OrderHistory struct {
	TotalOrders   int        `json:"total_orders"`
	TotalSpent    float64    `json:"total_spent"`
	LastDelivered *time.Time `json:"last_delivered,omitempty"`
}

// CustomerDoc embeds the specialization payload and order history summary.
type CustomerDoc struct {
	ID           int64                `json:"_id"`
	Name         string               `json:"name"`
	Email        string               `json:"email,omitempty"`
	Phone        string               `json:"phone,omitempty"`
	Address      string               `json:"address,omitempty"`
	Status       store.CustomerStatus `json:"status"`
	RegisteredAt time.Time            `json:"registered_at"`
	Type         store.CustomerType   `json:"type"`
	Doctor       *store.DoctorInfo    `json:"doctor_info,omitempty"`
	Hospital     *store.HospitalInfo  `json:"hospital_info,omitempty"`
	Pharmacy     *store.PharmacyInfo  `json:"pharmacy_info,omitempty"`
	OrderHistory OrderHistory         `json:"order_history"`
	Interactions []store.Interaction  `json:"interactions,omitempty"`
}

// InventoryInfo embeds current stock state in a product document.
type InventoryInfo struct {
	Quantity     int    `json:"quantity"`
	ReorderLevel int    `json:"reorder_level"`
	Location     string `json:"location,omitempty"`
}

// ProductSales summarises a product's sales aggregates.
type ProductSales struct {
	TimesOrdered int     `json:"times_ordered"`
	UnitsSold    int     `json:"units_sold"`
	TotalRevenue float64 `json:"total_revenue"`
}

// ProductDoc embeds inventory state and precomputed sales metrics.
type ProductDoc struct {
	ID           int64          `json:"_id"`
	Name         string         `json:"name"`
	Category     string         `json:"category"`
	UnitPrice    float64        `json:"unit_price"`
	Manufacturer string         `json:"manufacturer,omitempty"`
	ExpiryDate   time.Time      `json:"expiry_date"`
	FDAApproved  bool           `json:"fda_approved"`
	Inventory    *InventoryInfo `json:"inventory_info,omitempty"`
	SalesMetrics ProductSales   `json:"sales_metrics"`
}

// PartySummary is a thin embedded reference to a representative or customer.
type PartySummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// LineItem is an embedded order line.
type LineItem struct {
	ProductID       int64   `json:"product_id"`
	QuantityOrdered int     `json:"quantity_ordered"`
	UnitPrice       float64 `json:"unit_price"`
	LineTotal       float64 `json:"line_total"`
}

// ShipmentInfo embeds shipment state plus its cargo and regional split.
type ShipmentInfo struct {
	ID                int64                    `json:"id"`
	Date              time.Time                `json:"date"`
	Channel           store.InteractionChannel `json:"channel"`
	Status            store.ShipmentStatus     `json:"status"`
	TrackingRef       string                   `json:"tracking_ref"`
	EstimatedDelivery time.Time                `json:"estimated_delivery"`
	Cargo             []store.Shipping         `json:"cargo,omitempty"`
	Allocations       []store.Allocation       `json:"allocations,omitempty"`
}

// OrderDoc embeds party summaries, line items, and shipment info.
type OrderDoc struct {
	ID             int64               `json:"_id"`
	Date           time.Time           `json:"date"`
	TotalCost      float64             `json:"total_cost"`
	Status         store.OrderStatus   `json:"status"`
	Priority       store.OrderPriority `json:"priority"`
	Representative PartySummary        `json:"representative"`
	Customer       PartySummary        `json:"customer"`
	LineItems      []LineItem          `json:"line_items"`
	Shipment       *ShipmentInfo       `json:"shipment_info,omitempty"`
}

// Collections is the full document-store contents.
type Collections struct {
	TakenAt         time.Time           `json:"taken_at"`
	Representatives []RepresentativeDoc `json:"representatives"`
	Customers       []CustomerDoc       `json:"customers"`
	Products        []ProductDoc        `json:"products"`
	Orders          []OrderDoc          `json:"orders"`
}

// Build denormalizes a snapshot into document collections, recomputing every
// summary field from source state.
func Build(snap store.Snapshot) Collections {
	out := Collections{TakenAt: snap.TakenAt}

	repSales := make(map[int64]*SalesMetrics)
	custHistory := make(map[int64]*OrderHistory)
	prodSales := make(map[int64]*ProductSales)
	customerOf := make(map[int64]int64, len(snap.OrderPlaced))
	for _, op := range snap.OrderPlaced {
		customerOf[op.OrderID] = op.CustomerID
	}
	linesByOrder := make(map[int64][]store.Involvement)
	ordersByProduct := make(map[int64]map[int64]struct{})
	for _, line := range snap.Involvements {
		linesByOrder[line.OrderID] = append(linesByOrder[line.OrderID], line)
	}

	for _, order := range snap.Orders {
		if order.Status == store.OrderStatusCancelled {
			continue
		}
		rs := repSales[order.RepresentativeID]
		if rs == nil {
			rs = &SalesMetrics{}
			repSales[order.RepresentativeID] = rs
		}
		rs.TotalOrders++
		rs.TotalSales += order.TotalCost

		if customerID, ok := customerOf[order.ID]; ok {
			ch := custHistory[customerID]
			if ch == nil {
				ch = &OrderHistory{}
				custHistory[customerID] = ch
			}
			ch.TotalOrders++
			ch.TotalSpent += order.TotalCost
			if order.Status == store.OrderStatusDelivered {
				if ch.LastDelivered == nil || order.Date.After(*ch.LastDelivered) {
					date := order.Date
					ch.LastDelivered = &date
				}
			}
		}

		for _, line := range linesByOrder[order.ID] {
			ps := prodSales[line.ProductID]
			if ps == nil {
				ps = &ProductSales{}
				prodSales[line.ProductID] = ps
			}
			ps.UnitsSold += line.QuantityOrdered
			ps.TotalRevenue += line.LineTotal
			if ordersByProduct[line.ProductID] == nil {
				ordersByProduct[line.ProductID] = make(map[int64]struct{})
			}
			ordersByProduct[line.ProductID][order.ID] = struct{}{}
		}
	}

	for _, rep := range snap.Representatives {
		docRep := RepresentativeDoc{
			ID:                rep.ID,
			Name:              rep.Name,
			Email:             rep.Email,
			Phone:             rep.Phone,
			HireDate:          rep.HireDate,
			PerformanceRating: rep.PerformanceRating,
		}
		if region, ok := snap.RegionByID(rep.RegionID); ok {
			docRep.Region = region
		}
		if rs := repSales[rep.ID]; rs != nil {
			docRep.SalesMetrics = *rs
			docRep.SalesMetrics.TotalSales = round2(rs.TotalSales)
			if rs.TotalOrders > 0 {
				docRep.SalesMetrics.AverageOrderValue = round2(rs.TotalSales / float64(rs.TotalOrders))
			}
		}
		out.Representatives = append(out.Representatives, docRep)
	}

	for _, c := range snap.Customers {
		docCust := CustomerDoc{
			ID:           c.ID,
			Name:         c.Name,
			Email:        c.Email,
			Phone:        c.Phone,
			Address:      c.Address,
			Status:       c.Status,
			RegisteredAt: c.RegisteredAt,
			Type:         c.Specialization(),
			Doctor:       c.Doctor,
			Hospital:     c.Hospital,
			Pharmacy:     c.Pharmacy,
		}
		if ch := custHistory[c.ID]; ch != nil {
			docCust.OrderHistory = *ch
			docCust.OrderHistory.TotalSpent = round2(ch.TotalSpent)
		}
		for _, in := range snap.Interactions {
			if in.CustomerID == c.ID {
				docCust.Interactions = append(docCust.Interactions, in)
			}
		}
		out.Customers = append(out.Customers, docCust)
	}

	inventoryOf := make(map[int64]store.InventoryRecord, len(snap.Inventory))
	for _, rec := range snap.Inventory {
		inventoryOf[rec.ProductID] = rec
	}
	for _, p := range snap.Products {
		docProd := ProductDoc{
			ID:           p.ID,
			Name:         p.Name,
			Category:     p.Category,
			UnitPrice:    p.UnitPrice,
			Manufacturer: p.Manufacturer,
			ExpiryDate:   p.ExpiryDate,
			FDAApproved:  p.FDAApproved,
		}
		if rec, ok := inventoryOf[p.ID]; ok {
			docProd.Inventory = &InventoryInfo{
				Quantity:     rec.Quantity,
				ReorderLevel: rec.ReorderLevel,
				Location:     rec.Location,
			}
		}
		if ps := prodSales[p.ID]; ps != nil {
			docProd.SalesMetrics = *ps
			docProd.SalesMetrics.TotalRevenue = round2(ps.TotalRevenue)
			docProd.SalesMetrics.TimesOrdered = len(ordersByProduct[p.ID])
		}
		out.Products = append(out.Products, docProd)
	}

	shipmentOf := make(map[int64]store.Shipment, len(snap.Shipments))
	for _, sh := range snap.Shipments {
		shipmentOf[sh.ID] = sh
	}
	repOf := make(map[int64]store.Representative, len(snap.Representatives))
	for _, rep := range snap.Representatives {
		repOf[rep.ID] = rep
	}
	for _, order := range snap.Orders {
		docOrder := OrderDoc{
			ID:        order.ID,
			Date:      order.Date,
			TotalCost: order.TotalCost,
			Status:    order.Status,
			Priority:  order.Priority,
		}
		if rep, ok := repOf[order.RepresentativeID]; ok {
			docOrder.Representative = PartySummary{ID: rep.ID, Name: rep.Name}
		}
		if customerID, ok := customerOf[order.ID]; ok {
			docOrder.Customer = PartySummary{ID: customerID}
			if c, ok := snap.CustomerByID(customerID); ok {
				docOrder.Customer.Name = c.Name
			}
		}
		for _, line := range linesByOrder[order.ID] {
			docOrder.LineItems = append(docOrder.LineItems, LineItem{
				ProductID:       line.ProductID,
				QuantityOrdered: line.QuantityOrdered,
				UnitPrice:       line.UnitPrice,
				LineTotal:       line.LineTotal,
			})
		}
		if order.ShipmentID != nil {
			if sh, ok := shipmentOf[*order.ShipmentID]; ok {
				info := ShipmentInfo{
					ID:                sh.ID,
					Date:              sh.Date,
					Channel:           sh.Channel,
					Status:            sh.Status,
					TrackingRef:       sh.TrackingRef,
					EstimatedDelivery: sh.EstimatedDelivery,
				}
				for _, cargo := range snap.Shipping {
					if cargo.ShipmentID == sh.ID {
						info.Cargo = append(info.Cargo, cargo)
					}
				}
				for _, alloc := range snap.Allocations {
					if alloc.ShipmentID == sh.ID {
						info.Allocations = append(info.Allocations, alloc)
					}
				}
				docOrder.Shipment = &info
			}
		}
		out.Orders = append(out.Orders, docOrder)
	}
	return out
}

// Restore rebuilds a normalized snapshot from document collections. Summary
// fields are discarded; every derived value is recomputable from what
// Restore returns, so metric outputs match the relational representation.
func Restore(c Collections) store.Snapshot {
	snap := store.Snapshot{TakenAt: c.TakenAt}

	regionSeen := make(map[int64]struct{})
	for _, rep := range c.Representatives {
		snap.Representatives = append(snap.Representatives, store.Representative{
			ID:                rep.ID,
			RegionID:          rep.Region.ID,
			Name:              rep.Name,
			Email:             rep.Email,
			Phone:             rep.Phone,
			HireDate:          rep.HireDate,
			PerformanceRating: rep.PerformanceRating,
		})
		if _, ok := regionSeen[rep.Region.ID]; !ok && rep.Region.ID != 0 {
			regionSeen[rep.Region.ID] = struct{}{}
			snap.Regions = append(snap.Regions, rep.Region)
		}
	}

	for _, cust := range c.Customers {
		snap.Customers = append(snap.Customers, store.Customer{
			ID:           cust.ID,
			Name:         cust.Name,
			Email:        cust.Email,
			Phone:        cust.Phone,
			Address:      cust.Address,
			Status:       cust.Status,
			RegisteredAt: cust.RegisteredAt,
			Type:         cust.Type,
			Doctor:       cust.Doctor,
			Hospital:     cust.Hospital,
			Pharmacy:     cust.Pharmacy,
		})
		snap.Interactions = append(snap.Interactions, cust.Interactions...)
	}

	for _, prod := range c.Products {
		snap.Products = append(snap.Products, store.Product{
			ID:           prod.ID,
			Name:         prod.Name,
			Category:     prod.Category,
			UnitPrice:    prod.UnitPrice,
			Manufacturer: prod.Manufacturer,
			ExpiryDate:   prod.ExpiryDate,
			FDAApproved:  prod.FDAApproved,
		})
		if prod.Inventory != nil {
			snap.Inventory = append(snap.Inventory, store.InventoryRecord{
				ProductID:    prod.ID,
				Quantity:     prod.Inventory.Quantity,
				ReorderLevel: prod.Inventory.ReorderLevel,
				Location:     prod.Inventory.Location,
			})
		}
	}

	shipmentSeen := make(map[int64]struct{})
	for _, order := range c.Orders {
		o := store.Order{
			ID:               order.ID,
			Date:             order.Date,
			TotalCost:        order.TotalCost,
			RepresentativeID: order.Representative.ID,
			Status:           order.Status,
			Priority:         order.Priority,
		}
		if order.Shipment != nil {
			id := order.Shipment.ID
			o.ShipmentID = &id
			if _, ok := shipmentSeen[id]; !ok {
				shipmentSeen[id] = struct{}{}
				snap.Shipments = append(snap.Shipments, store.Shipment{
					ID:                order.Shipment.ID,
					Date:              order.Shipment.Date,
					Channel:           order.Shipment.Channel,
					Status:            order.Shipment.Status,
					TrackingRef:       order.Shipment.TrackingRef,
					EstimatedDelivery: order.Shipment.EstimatedDelivery,
				})
				snap.Shipping = append(snap.Shipping, order.Shipment.Cargo...)
				snap.Allocations = append(snap.Allocations, order.Shipment.Allocations...)
			}
		}
		snap.Orders = append(snap.Orders, o)
		if order.Customer.ID != 0 {
			snap.OrderPlaced = append(snap.OrderPlaced, store.OrderPlaced{OrderID: order.ID, CustomerID: order.Customer.ID})
		}
		for _, line := range order.LineItems {
			snap.Involvements = append(snap.Involvements, store.Involvement{
				OrderID:         order.ID,
				ProductID:       line.ProductID,
				QuantityOrdered: line.QuantityOrdered,
				UnitPrice:       line.UnitPrice,
				LineTotal:       line.LineTotal,
			})
		}
	}

	sort.Slice(snap.Regions, func(i, j int) bool { return snap.Regions[i].ID < snap.Regions[j].ID })
	sort.Slice(snap.Shipments, func(i, j int) bool { return snap.Shipments[i].ID < snap.Shipments[j].ID })
	return snap
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
