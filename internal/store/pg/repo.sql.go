package pg

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/pharmalytics/pharmalytics/internal/store"
)

func loadRegions(ctx context.Context, tx pgx.Tx) ([]store.Region, error) {
	rows, err := tx.Query(ctx, `SELECT region_id, name, description FROM Region ORDER BY region_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.Region
	for rows.Next() {
		var r store.Region
		if err := rows.Scan(&r.ID, &r.Name, &r.Description); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func loadRepresentatives(ctx context.Context, tx pgx.Tx) ([]store.Representative, error) {
	rows, err := tx.Query(ctx, `SELECT representative_id, region_id, name, email, phone, hire_date, performance_rating
FROM Sales_Representative ORDER BY representative_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.Representative
	for rows.Next() {
		var rep store.Representative
		if err := rows.Scan(&rep.ID, &rep.RegionID, &rep.Name, &rep.Email, &rep.Phone, &rep.HireDate, &rep.PerformanceRating); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func loadCustomers(ctx context.Context, tx pgx.Tx) ([]store.Customer, error) {
	rows, err := tx.Query(ctx, `SELECT c.customer_id, c.name, c.email, c.phone, c.address, c.status, c.registration_date,
       d.specialty, d.license_number, d.years_of_experience,
       h.facility_type, h.bed_capacity, h.emergency_services,
       p.license_number, p.chain_affiliation, p.dea_number
FROM Customer c
LEFT JOIN Doctors d ON d.customer_id = c.customer_id
LEFT JOIN Hospital h ON h.customer_id = c.customer_id
LEFT JOIN Pharmacy p ON p.customer_id = c.customer_id
ORDER BY c.customer_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.Customer
	for rows.Next() {
		var (
			c store.Customer

			docSpecialty, docLicense           *string
			docYears                           *int
			hospFacility                       *string
			hospBeds                           *int
			hospEmergency                      *bool
			pharmLicense, pharmChain, pharmDEA *string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.Status, &c.RegisteredAt,
			&docSpecialty, &docLicense, &docYears,
			&hospFacility, &hospBeds, &hospEmergency,
			&pharmLicense, &pharmChain, &pharmDEA); err != nil {
			return nil, err
		}
		switch {
		case docLicense != nil:
			c.Doctor = &store.DoctorInfo{LicenseNumber: *docLicense}
			if docSpecialty != nil {
				c.Doctor.Specialty = *docSpecialty
			}
			if docYears != nil {
				c.Doctor.YearsExperience = *docYears
			}
		case hospFacility != nil:
			c.Hospital = &store.HospitalInfo{FacilityType: *hospFacility}
			if hospBeds != nil {
				c.Hospital.BedCapacity = *hospBeds
			}
			if hospEmergency != nil {
				c.Hospital.EmergencyServices = *hospEmergency
			}
		case pharmLicense != nil:
			c.Pharmacy = &store.PharmacyInfo{LicenseNumber: *pharmLicense}
			if pharmChain != nil {
				c.Pharmacy.ChainAffiliation = *pharmChain
			}
			if pharmDEA != nil {
				c.Pharmacy.DEANumber = *pharmDEA
			}
		}
		c.Type = c.Specialization()
		out = append(out, c)
	}
	return out, rows.Err()
}

func loadProducts(ctx context.Context, tx pgx.Tx) ([]store.Product, error) {
	rows, err := tx.Query(ctx, `SELECT product_id, name, category, price, manufacturer, expiry_date, fda_approved
FROM Product ORDER BY product_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.Product
	for rows.Next() {
		var p store.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.UnitPrice, &p.Manufacturer, &p.ExpiryDate, &p.FDAApproved); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func loadInventory(ctx context.Context, tx pgx.Tx) ([]store.InventoryRecord, error) {
	rows, err := tx.Query(ctx, `SELECT product_id, quantity, reorder_level, location FROM Inventory ORDER BY product_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.InventoryRecord
	for rows.Next() {
		var rec store.InventoryRecord
		if err := rows.Scan(&rec.ProductID, &rec.Quantity, &rec.ReorderLevel, &rec.Location); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func loadShipments(ctx context.Context, tx pgx.Tx) ([]store.Shipment, error) {
	rows, err := tx.Query(ctx, `SELECT shipment_id, date, interaction_channel, status, tracking_number, estimated_delivery
FROM Shipment ORDER BY shipment_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.Shipment
	for rows.Next() {
		var sh store.Shipment
		if err := rows.Scan(&sh.ID, &sh.Date, &sh.Channel, &sh.Status, &sh.TrackingRef, &sh.EstimatedDelivery); err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

func loadOrders(ctx context.Context, tx pgx.Tx) ([]store.Order, error) {
	rows, err := tx.Query(ctx, `SELECT order_id, date, total_cost, representative_id, shipment_id, order_status, priority
FROM Orders ORDER BY order_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.Order
	for rows.Next() {
		var o store.Order
		if err := rows.Scan(&o.ID, &o.Date, &o.TotalCost, &o.RepresentativeID, &o.ShipmentID, &o.Status, &o.Priority); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func loadInteractions(ctx context.Context, tx pgx.Tx) ([]store.Interaction, error) {
	rows, err := tx.Query(ctx, `SELECT representative_id, customer_id, date, notes, follow_up_required
FROM Interaction ORDER BY date, representative_id, customer_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.Interaction
	for rows.Next() {
		var in store.Interaction
		if err := rows.Scan(&in.RepresentativeID, &in.CustomerID, &in.Date, &in.Notes, &in.FollowUp); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func loadOrderPlaced(ctx context.Context, tx pgx.Tx) ([]store.OrderPlaced, error) {
	rows, err := tx.Query(ctx, `SELECT order_id, customer_id FROM Order_Placed ORDER BY order_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.OrderPlaced
	for rows.Next() {
		var op store.OrderPlaced
		if err := rows.Scan(&op.OrderID, &op.CustomerID); err != nil {
			return nil, err
		}
		out = append(out, op)
	}
	return out, rows.Err()
}

func loadInvolvements(ctx context.Context, tx pgx.Tx) ([]store.Involvement, error) {
	rows, err := tx.Query(ctx, `SELECT order_id, product_id, quantity_ordered, unit_price, line_total
FROM Involvement ORDER BY order_id, product_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.Involvement
	for rows.Next() {
		var line store.Involvement
		if err := rows.Scan(&line.OrderID, &line.ProductID, &line.QuantityOrdered, &line.UnitPrice, &line.LineTotal); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

func loadShipping(ctx context.Context, tx pgx.Tx) ([]store.Shipping, error) {
	rows, err := tx.Query(ctx, `SELECT shipment_id, product_id, quantity_shipped FROM Shipping ORDER BY shipment_id, product_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.Shipping
	for rows.Next() {
		var cargo store.Shipping
		if err := rows.Scan(&cargo.ShipmentID, &cargo.ProductID, &cargo.QuantityShipped); err != nil {
			return nil, err
		}
		out = append(out, cargo)
	}
	return out, rows.Err()
}

func loadAllocations(ctx context.Context, tx pgx.Tx) ([]store.Allocation, error) {
	rows, err := tx.Query(ctx, `SELECT shipment_id, region_id, percentage FROM Allocation ORDER BY shipment_id, region_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.Allocation
	for rows.Next() {
		var a store.Allocation
		if err := rows.Scan(&a.ShipmentID, &a.RegionID, &a.Percentage); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func saveRegions(ctx context.Context, tx pgx.Tx, regions []store.Region) error {
	for _, r := range regions {
		if _, err := tx.Exec(ctx, `INSERT INTO Region (region_id, name, description) VALUES ($1,$2,$3)`,
			r.ID, r.Name, r.Description); err != nil {
			return err
		}
	}
	return nil
}

func saveRepresentatives(ctx context.Context, tx pgx.Tx, reps []store.Representative) error {
	for _, rep := range reps {
		if _, err := tx.Exec(ctx, `INSERT INTO Sales_Representative (representative_id, region_id, name, email, phone, hire_date, performance_rating)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			rep.ID, rep.RegionID, rep.Name, rep.Email, rep.Phone, rep.HireDate, rep.PerformanceRating); err != nil {
			return err
		}
	}
	return nil
}

func saveCustomers(ctx context.Context, tx pgx.Tx, customers []store.Customer) error {
	for _, c := range customers {
		if _, err := tx.Exec(ctx, `INSERT INTO Customer (customer_id, name, email, phone, address, status, registration_date)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			c.ID, c.Name, c.Email, c.Phone, c.Address, c.Status, c.RegisteredAt); err != nil {
			return err
		}
		switch {
		case c.Doctor != nil:
			if _, err := tx.Exec(ctx, `INSERT INTO Doctors (customer_id, specialty, license_number, years_of_experience) VALUES ($1,$2,$3,$4)`,
				c.ID, c.Doctor.Specialty, c.Doctor.LicenseNumber, c.Doctor.YearsExperience); err != nil {
				return err
			}
		case c.Hospital != nil:
			if _, err := tx.Exec(ctx, `INSERT INTO Hospital (customer_id, facility_type, bed_capacity, emergency_services) VALUES ($1,$2,$3,$4)`,
				c.ID, c.Hospital.FacilityType, c.Hospital.BedCapacity, c.Hospital.EmergencyServices); err != nil {
				return err
			}
		case c.Pharmacy != nil:
			if _, err := tx.Exec(ctx, `INSERT INTO Pharmacy (customer_id, license_number, chain_affiliation, dea_number) VALUES ($1,$2,$3,$4)`,
				c.ID, c.Pharmacy.LicenseNumber, c.Pharmacy.ChainAffiliation, c.Pharmacy.DEANumber); err != nil {
				return err
			}
		}
	}
	return nil
}

func saveProducts(ctx context.Context, tx pgx.Tx, products []store.Product) error {
	for _, p := range products {
		if _, err := tx.Exec(ctx, `INSERT INTO Product (product_id, name, category, price, manufacturer, expiry_date, fda_approved)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			p.ID, p.Name, p.Category, p.UnitPrice, p.Manufacturer, p.ExpiryDate, p.FDAApproved); err != nil {
			return err
		}
	}
	return nil
}

func saveInventory(ctx context.Context, tx pgx.Tx, records []store.InventoryRecord) error {
	for _, rec := range records {
		if _, err := tx.Exec(ctx, `INSERT INTO Inventory (product_id, quantity, reorder_level, location) VALUES ($1,$2,$3,$4)`,
			rec.ProductID, rec.Quantity, rec.ReorderLevel, rec.Location); err != nil {
			return err
		}
	}
	return nil
}

func saveShipments(ctx context.Context, tx pgx.Tx, shipments []store.Shipment) error {
	for _, sh := range shipments {
		if _, err := tx.Exec(ctx, `INSERT INTO Shipment (shipment_id, date, interaction_channel, status, tracking_number, estimated_delivery)
VALUES ($1,$2,$3,$4,$5,$6)`,
			sh.ID, sh.Date, sh.Channel, sh.Status, sh.TrackingRef, sh.EstimatedDelivery); err != nil {
			return err
		}
	}
	return nil
}

func saveOrders(ctx context.Context, tx pgx.Tx, orders []store.Order) error {
	for _, o := range orders {
		if _, err := tx.Exec(ctx, `INSERT INTO Orders (order_id, date, total_cost, representative_id, shipment_id, order_status, priority)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			o.ID, o.Date, o.TotalCost, o.RepresentativeID, o.ShipmentID, o.Status, o.Priority); err != nil {
			return err
		}
	}
	return nil
}

func saveInteractions(ctx context.Context, tx pgx.Tx, interactions []store.Interaction) error {
	for _, in := range interactions {
		if _, err := tx.Exec(ctx, `INSERT INTO Interaction (representative_id, customer_id, date, notes, follow_up_required)
VALUES ($1,$2,$3,$4,$5)`,
			in.RepresentativeID, in.CustomerID, in.Date, in.Notes, in.FollowUp); err != nil {
			return err
		}
	}
	return nil
}

func saveShipping(ctx context.Context, tx pgx.Tx, cargo []store.Shipping) error {
	for _, line := range cargo {
		if _, err := tx.Exec(ctx, `INSERT INTO Shipping (shipment_id, product_id, quantity_shipped) VALUES ($1,$2,$3)`,
			line.ShipmentID, line.ProductID, line.QuantityShipped); err != nil {
			return err
		}
	}
	return nil
}

func saveAllocations(ctx context.Context, tx pgx.Tx, allocations []store.Allocation) error {
	for _, a := range allocations {
		if _, err := tx.Exec(ctx, `INSERT INTO Allocation (shipment_id, region_id, percentage) VALUES ($1,$2,$3)`,
			a.ShipmentID, a.RegionID, a.Percentage); err != nil {
			return err
		}
	}
	return nil
}

func saveOrderPlaced(ctx context.Context, tx pgx.Tx, placements []store.OrderPlaced) error {
	for _, op := range placements {
		if _, err := tx.Exec(ctx, `INSERT INTO Order_Placed (order_id, customer_id) VALUES ($1,$2)`,
			op.OrderID, op.CustomerID); err != nil {
			return err
		}
	}
	return nil
}

func saveInvolvements(ctx context.Context, tx pgx.Tx, lines []store.Involvement) error {
	for _, line := range lines {
		if _, err := tx.Exec(ctx, `INSERT INTO Involvement (order_id, product_id, quantity_ordered, unit_price, line_total)
VALUES ($1,$2,$3,$4,$5)`,
			line.OrderID, line.ProductID, line.QuantityOrdered, line.UnitPrice, line.LineTotal); err != nil {
			return err
		}
	}
	return nil
}
