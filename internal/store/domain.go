package store

import (
	"time"
)

// CustomerStatus enumerates customer lifecycle states.
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "Active"
	CustomerStatusInactive CustomerStatus = "Inactive"
	CustomerStatusPending  CustomerStatus = "Pending"
)

// CustomerType discriminates the customer specialization variant.
type CustomerType string

const (
	CustomerTypeDoctor   CustomerType = "Doctor"
	CustomerTypeHospital CustomerType = "Hospital"
	CustomerTypePharmacy CustomerType = "Pharmacy"
	CustomerTypeOther    CustomerType = "Other"
)

// OrderStatus enumerates order lifecycle states.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// OrderPriority enumerates order urgency levels.
type OrderPriority string

const (
	OrderPriorityLow      OrderPriority = "Low"
	OrderPriorityMedium   OrderPriority = "Medium"
	OrderPriorityHigh     OrderPriority = "High"
	OrderPriorityCritical OrderPriority = "Critical"
)

// ShipmentStatus enumerates shipment lifecycle states.
type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "Pending"
	ShipmentStatusInTransit ShipmentStatus = "In-Transit"
	ShipmentStatusDelivered ShipmentStatus = "Delivered"
	ShipmentStatusCancelled ShipmentStatus = "Cancelled"
)

// InteractionChannel enumerates how a shipment or interaction was arranged.
type InteractionChannel string

const (
	ChannelInPerson InteractionChannel = "In-Person"
	ChannelPhone    InteractionChannel = "Phone"
	ChannelEmail    InteractionChannel = "Email"
	ChannelOnline   InteractionChannel = "Online"
)

// Region is a sales territory owning zero or more representatives.
type Region struct {
	ID          int64  `json:"id" db:"region_id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
}

// Representative is a salesperson assigned to exactly one region.
type Representative struct {
	ID                int64     `json:"id" db:"representative_id"`
	RegionID          int64     `json:"region_id" db:"region_id"`
	Name              string    `json:"name" db:"name"`
	Email             string    `json:"email,omitempty" db:"email"`
	Phone             string    `json:"phone,omitempty" db:"phone"`
	HireDate          time.Time `json:"hire_date" db:"hire_date"`
	PerformanceRating float64   `json:"performance_rating" db:"performance_rating"`
}

// DoctorInfo is the Doctor specialization payload.
type DoctorInfo struct {
	Specialty       string `json:"specialty" db:"specialty"`
	LicenseNumber   string `json:"license_number" db:"license_number"`
	YearsExperience int    `json:"years_experience" db:"years_of_experience"`
}

// HospitalInfo is the Hospital specialization payload.
type HospitalInfo struct {
	FacilityType      string `json:"facility_type" db:"facility_type"`
	BedCapacity       int    `json:"bed_capacity" db:"bed_capacity"`
	EmergencyServices bool   `json:"emergency_services" db:"emergency_services"`
}

// PharmacyInfo is the Pharmacy specialization payload.
type PharmacyInfo struct {
	LicenseNumber    string `json:"license_number" db:"license_number"`
	ChainAffiliation string `json:"chain_affiliation,omitempty" db:"chain_affiliation"`
	DEANumber        string `json:"dea_number,omitempty" db:"dea_number"`
}

// Customer is a buyer of pharmaceutical products. The specialization is a
// tagged variant: Type names the one payload pointer that must be populated,
// the other two stay nil. Customers with Type Other carry no payload.
type Customer struct {
	ID           int64          `json:"id" db:"customer_id"`
	Name         string         `json:"name" db:"name"`
	Email        string         `json:"email,omitempty" db:"email"`
	Phone        string         `json:"phone,omitempty" db:"phone"`
	Address      string         `json:"address,omitempty" db:"address"`
	Status       CustomerStatus `json:"status" db:"status"`
	RegisteredAt time.Time      `json:"registered_at" db:"registration_date"`
	Type         CustomerType   `json:"type" db:"-"`
	Doctor       *DoctorInfo    `json:"doctor,omitempty" db:"-"`
	Hospital     *HospitalInfo  `json:"hospital,omitempty" db:"-"`
	Pharmacy     *PharmacyInfo  `json:"pharmacy,omitempty" db:"-"`
}

// Specialization returns the variant tag, deriving Other when no payload matches.
func (c Customer) Specialization() CustomerType {
	switch {
	case c.Doctor != nil:
		return CustomerTypeDoctor
	case c.Hospital != nil:
		return CustomerTypeHospital
	case c.Pharmacy != nil:
		return CustomerTypePharmacy
	default:
		return CustomerTypeOther
	}
}

// Product is a sellable pharmaceutical item.
type Product struct {
	ID           int64     `json:"id" db:"product_id"`
	Name         string    `json:"name" db:"name"`
	Category     string    `json:"category" db:"category"`
	UnitPrice    float64   `json:"unit_price" db:"price"`
	Manufacturer string    `json:"manufacturer,omitempty" db:"manufacturer"`
	ExpiryDate   time.Time `json:"expiry_date" db:"expiry_date"`
	FDAApproved  bool      `json:"fda_approved" db:"fda_approved"`
}

// DefaultReorderLevel is applied when an inventory record omits a threshold.
const DefaultReorderLevel = 100

// InventoryRecord tracks on-hand stock for one product.
type InventoryRecord struct {
	ProductID    int64  `json:"product_id" db:"product_id"`
	Quantity     int    `json:"quantity" db:"quantity"`
	ReorderLevel int    `json:"reorder_level" db:"reorder_level"`
	Location     string `json:"location,omitempty" db:"location"`
}

// Shipment is a physical dispatch of products, split across regions.
type Shipment struct {
	ID                int64              `json:"id" db:"shipment_id"`
	Date              time.Time          `json:"date" db:"date"`
	Channel           InteractionChannel `json:"channel" db:"interaction_channel"`
	Status            ShipmentStatus     `json:"status" db:"status"`
	TrackingRef       string             `json:"tracking_ref" db:"tracking_number"`
	EstimatedDelivery time.Time          `json:"estimated_delivery" db:"estimated_delivery"`
}

// Order is a customer purchase owned by a representative.
type Order struct {
	ID               int64         `json:"id" db:"order_id"`
	Date             time.Time     `json:"date" db:"date"`
	TotalCost        float64       `json:"total_cost" db:"total_cost"`
	RepresentativeID int64         `json:"representative_id" db:"representative_id"`
	ShipmentID       *int64        `json:"shipment_id,omitempty" db:"shipment_id"`
	Status           OrderStatus   `json:"status" db:"order_status"`
	Priority         OrderPriority `json:"priority" db:"priority"`
}

// Interaction records contact between a representative and a customer.
type Interaction struct {
	RepresentativeID int64     `json:"representative_id" db:"representative_id"`
	CustomerID       int64     `json:"customer_id" db:"customer_id"`
	Date             time.Time `json:"date" db:"date"`
	Notes            string    `json:"notes,omitempty" db:"notes"`
	FollowUp         bool      `json:"follow_up" db:"follow_up_required"`
}

// OrderPlaced links an order to the customer who placed it.
type OrderPlaced struct {
	OrderID    int64 `json:"order_id" db:"order_id"`
	CustomerID int64 `json:"customer_id" db:"customer_id"`
}

// Involvement is an order line item. LineTotal must always equal
// QuantityOrdered * UnitPrice.
type Involvement struct {
	OrderID         int64   `json:"order_id" db:"order_id"`
	ProductID       int64   `json:"product_id" db:"product_id"`
	QuantityOrdered int     `json:"quantity_ordered" db:"quantity_ordered"`
	UnitPrice       float64 `json:"unit_price" db:"unit_price"`
	LineTotal       float64 `json:"line_total" db:"line_total"`
}

// Shipping records how many units of a product a shipment carries.
type Shipping struct {
	ShipmentID      int64 `json:"shipment_id" db:"shipment_id"`
	ProductID       int64 `json:"product_id" db:"product_id"`
	QuantityShipped int   `json:"quantity_shipped" db:"quantity_shipped"`
}

// Allocation assigns a percentage of a shipment to a region. Percentages for
// one shipment must sum to 100.
type Allocation struct {
	ShipmentID int64   `json:"shipment_id" db:"shipment_id"`
	RegionID   int64   `json:"region_id" db:"region_id"`
	Percentage float64 `json:"percentage" db:"percentage"`
}
