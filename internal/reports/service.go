package reports

import (
	"context"
	"math"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pharmalytics/pharmalytics/internal/metrics"
	"github.com/pharmalytics/pharmalytics/internal/store"
)

// SnapshotSource yields point-in-time entity state for report computation.
type SnapshotSource interface {
	Snapshot() store.Snapshot
}

// Service coordinates report computation with the cache layer.
type Service struct {
	source SnapshotSource
	cache  *Cache
	now    func() time.Time
}

// NewService wires a snapshot source with a cache helper.
func NewService(source SnapshotSource, cache *Cache) *Service {
	return &Service{
		source: source,
		cache:  cache,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// SalesPerformance aggregates orders per representative with global rank,
// region rank, and performance quartile. Rows are ordered by total sales
// descending.
func (s *Service) SalesPerformance(ctx context.Context) ([]SalesPerformanceRow, error) {
	var rows []SalesPerformanceRow
	err := s.fetch(ctx, "reports:sales", &rows, func(context.Context) (interface{}, error) {
		return s.salesPerformance(s.source.Snapshot()), nil
	})
	return rows, err
}

func (s *Service) salesPerformance(snap store.Snapshot) []SalesPerformanceRow {
	counted := countedOrders(snap)
	customerOf := orderCustomers(snap)

	type agg struct {
		orders    int
		sales     float64
		customers map[int64]struct{}
	}
	byRep := make(map[int64]*agg, len(snap.Representatives))
	for _, rep := range snap.Representatives {
		byRep[rep.ID] = &agg{customers: make(map[int64]struct{})}
	}
	for _, order := range counted {
		a, ok := byRep[order.RepresentativeID]
		if !ok {
			continue
		}
		a.orders++
		a.sales += order.TotalCost
		if customerID, ok := customerOf[order.ID]; ok {
			a.customers[customerID] = struct{}{}
		}
	}

	totals := make([]metrics.SalesTotal, 0, len(snap.Representatives))
	for _, rep := range snap.Representatives {
		totals = append(totals, metrics.SalesTotal{
			RepresentativeID: rep.ID,
			RegionID:         rep.RegionID,
			Total:            byRep[rep.ID].sales,
		})
	}
	globalRank := make(map[int64]metrics.Ranked, len(totals))
	for _, r := range metrics.RankBySales(totals) {
		globalRank[r.RepresentativeID] = r
	}
	regionRank := make(map[int64]int, len(totals))
	for _, group := range metrics.RankWithinRegions(totals) {
		for _, r := range group {
			regionRank[r.RepresentativeID] = r.Rank
		}
	}

	rows := make([]SalesPerformanceRow, 0, len(snap.Representatives))
	for _, rep := range snap.Representatives {
		a := byRep[rep.ID]
		row := SalesPerformanceRow{
			RepresentativeID:  rep.ID,
			Name:              rep.Name,
			PerformanceRating: rep.PerformanceRating,
			TotalOrders:       a.orders,
			TotalSales:        round2(a.sales),
			UniqueCustomers:   len(a.customers),
			Rank:              globalRank[rep.ID].Rank,
			RegionRank:        regionRank[rep.ID],
			Quartile:          globalRank[rep.ID].Quartile,
		}
		if region, ok := snap.RegionByID(rep.RegionID); ok {
			row.RegionName = region.Name
		}
		if a.orders > 0 {
			row.AverageOrderValue = round2(a.sales / float64(a.orders))
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].TotalSales > rows[j].TotalSales })
	return rows
}

// LowStockAlert lists products at or below their reorder threshold, sorted
// ascending by quantity.
func (s *Service) LowStockAlert(ctx context.Context) ([]LowStockRow, error) {
	var rows []LowStockRow
	err := s.fetch(ctx, "reports:lowstock", &rows, func(context.Context) (interface{}, error) {
		return s.lowStock(s.source.Snapshot()), nil
	})
	return rows, err
}

func (s *Service) lowStock(snap store.Snapshot) []LowStockRow {
	rows := make([]LowStockRow, 0)
	for _, rec := range snap.Inventory {
		if rec.Quantity > rec.ReorderLevel {
			continue
		}
		row := LowStockRow{
			ProductID:    rec.ProductID,
			Quantity:     rec.Quantity,
			ReorderLevel: rec.ReorderLevel,
			Location:     rec.Location,
			Status:       metrics.ClassifyStock(rec.Quantity, rec.ReorderLevel),
			Action:       metrics.ClassifyRestockAction(rec.Quantity, rec.ReorderLevel),
		}
		if product, ok := snap.ProductByID(rec.ProductID); ok {
			row.ProductName = product.Name
			row.Category = product.Category
			row.StockValue = round2(float64(rec.Quantity) * product.UnitPrice)
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Quantity != rows[j].Quantity {
			return rows[i].Quantity < rows[j].Quantity
		}
		return rows[i].ProductID < rows[j].ProductID
	})
	return rows
}

// RegionalPerformance aggregates orders per region, skipping regions with no
// representatives. Rows are ordered by total revenue descending.
func (s *Service) RegionalPerformance(ctx context.Context) ([]RegionalPerformanceRow, error) {
	var rows []RegionalPerformanceRow
	err := s.fetch(ctx, "reports:regions", &rows, func(context.Context) (interface{}, error) {
		return s.regionalPerformance(s.source.Snapshot()), nil
	})
	return rows, err
}

func (s *Service) regionalPerformance(snap store.Snapshot) []RegionalPerformanceRow {
	regionOf := make(map[int64]int64, len(snap.Representatives))
	repCount := make(map[int64]int, len(snap.Regions))
	for _, rep := range snap.Representatives {
		regionOf[rep.ID] = rep.RegionID
		repCount[rep.RegionID]++
	}

	type agg struct {
		orders  int
		revenue float64
	}
	byRegion := make(map[int64]*agg, len(snap.Regions))
	for _, order := range countedOrders(snap) {
		regionID, ok := regionOf[order.RepresentativeID]
		if !ok {
			continue
		}
		a := byRegion[regionID]
		if a == nil {
			a = &agg{}
			byRegion[regionID] = a
		}
		a.orders++
		a.revenue += order.TotalCost
	}

	rows := make([]RegionalPerformanceRow, 0, len(snap.Regions))
	for _, region := range snap.Regions {
		reps := repCount[region.ID]
		if reps == 0 {
			continue
		}
		row := RegionalPerformanceRow{
			RegionID:        region.ID,
			RegionName:      region.Name,
			Representatives: reps,
		}
		if a := byRegion[region.ID]; a != nil {
			row.TotalOrders = a.orders
			row.TotalRevenue = round2(a.revenue)
			if a.orders > 0 {
				row.AverageOrderValue = round2(a.revenue / float64(a.orders))
			}
			row.RevenuePerRep = round2(a.revenue / float64(reps))
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].TotalRevenue > rows[j].TotalRevenue })
	return rows
}

// ProductPerformance aggregates sales and stock efficiency per product,
// ordered by total revenue descending.
func (s *Service) ProductPerformance(ctx context.Context) ([]ProductPerformanceRow, error) {
	var rows []ProductPerformanceRow
	err := s.fetch(ctx, "reports:products", &rows, func(context.Context) (interface{}, error) {
		return s.productPerformance(s.source.Snapshot()), nil
	})
	return rows, err
}

func (s *Service) productPerformance(snap store.Snapshot) []ProductPerformanceRow {
	now := s.now()
	trailingStart := now.AddDate(-1, 0, 0)
	counted := make(map[int64]store.Order, len(snap.Orders))
	for _, order := range countedOrders(snap) {
		counted[order.ID] = order
	}

	type agg struct {
		orders        map[int64]struct{}
		units         int
		trailingUnits int
		revenue       float64
	}
	byProduct := make(map[int64]*agg, len(snap.Products))
	for _, line := range snap.Involvements {
		order, ok := counted[line.OrderID]
		if !ok {
			continue
		}
		a := byProduct[line.ProductID]
		if a == nil {
			a = &agg{orders: make(map[int64]struct{})}
			byProduct[line.ProductID] = a
		}
		a.orders[line.OrderID] = struct{}{}
		a.units += line.QuantityOrdered
		a.revenue += line.LineTotal
		if !order.Date.Before(trailingStart) {
			a.trailingUnits += line.QuantityOrdered
		}
	}

	stock := make(map[int64]store.InventoryRecord, len(snap.Inventory))
	for _, rec := range snap.Inventory {
		stock[rec.ProductID] = rec
	}

	rows := make([]ProductPerformanceRow, 0, len(snap.Products))
	for _, product := range snap.Products {
		row := ProductPerformanceRow{
			ProductID:   product.ID,
			ProductName: product.Name,
			Category:    product.Category,
			UnitPrice:   product.UnitPrice,
		}
		if a := byProduct[product.ID]; a != nil {
			row.TimesOrdered = len(a.orders)
			row.UnitsSold = a.units
			row.TotalRevenue = round2(a.revenue)
			rec := stock[product.ID]
			row.CurrentStock = rec.Quantity
			row.TurnoverRatio = round2(metrics.TurnoverRatio(a.trailingUnits, rec.Quantity))
			if days, ok := metrics.DaysOfSupply(row.TurnoverRatio); ok {
				days = round2(days)
				row.DaysOfSupply = &days
			}
			row.StockStatus = metrics.ClassifyStock(rec.Quantity, rec.ReorderLevel)
		} else {
			rec := stock[product.ID]
			row.CurrentStock = rec.Quantity
			row.StockStatus = metrics.ClassifyStock(rec.Quantity, rec.ReorderLevel)
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].TotalRevenue > rows[j].TotalRevenue })
	return rows
}

// CustomerSegments aggregates revenue by customer specialization.
func (s *Service) CustomerSegments(ctx context.Context) ([]CustomerTypeRow, error) {
	var rows []CustomerTypeRow
	err := s.fetch(ctx, "reports:customertypes", &rows, func(context.Context) (interface{}, error) {
		return s.customerSegments(s.source.Snapshot()), nil
	})
	return rows, err
}

func (s *Service) customerSegments(snap store.Snapshot) []CustomerTypeRow {
	typeOf := make(map[int64]store.CustomerType, len(snap.Customers))
	countOf := make(map[store.CustomerType]int)
	for _, c := range snap.Customers {
		t := c.Specialization()
		typeOf[c.ID] = t
		countOf[t]++
	}

	counted := make(map[int64]store.Order, len(snap.Orders))
	for _, order := range countedOrders(snap) {
		counted[order.ID] = order
	}

	type agg struct {
		orders  int
		revenue float64
	}
	byType := make(map[store.CustomerType]*agg)
	for _, op := range snap.OrderPlaced {
		order, ok := counted[op.OrderID]
		if !ok {
			continue
		}
		t, ok := typeOf[op.CustomerID]
		if !ok {
			t = store.CustomerTypeOther
		}
		a := byType[t]
		if a == nil {
			a = &agg{}
			byType[t] = a
		}
		a.orders++
		a.revenue += order.TotalCost
	}

	order := []store.CustomerType{store.CustomerTypeDoctor, store.CustomerTypeHospital, store.CustomerTypePharmacy, store.CustomerTypeOther}
	rows := make([]CustomerTypeRow, 0, len(order))
	for _, t := range order {
		customers := countOf[t]
		if customers == 0 {
			continue
		}
		row := CustomerTypeRow{CustomerType: string(t), Customers: customers}
		if a := byType[t]; a != nil {
			row.TotalOrders = a.orders
			row.TotalRevenue = round2(a.revenue)
			if a.orders > 0 {
				row.AverageOrderValue = round2(a.revenue / float64(a.orders))
			}
			row.RevenuePerCustomer = round2(a.revenue / float64(customers))
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].TotalRevenue > rows[j].TotalRevenue })
	return rows
}

// CustomerActivity classifies every customer's value segment and churn state.
func (s *Service) CustomerActivity(ctx context.Context) ([]CustomerActivityRow, error) {
	var rows []CustomerActivityRow
	err := s.fetch(ctx, "reports:activity", &rows, func(context.Context) (interface{}, error) {
		return s.customerActivity(s.source.Snapshot()), nil
	})
	return rows, err
}

func (s *Service) customerActivity(snap store.Snapshot) []CustomerActivityRow {
	now := s.now()
	orders := make(map[int64]store.Order, len(snap.Orders))
	for _, order := range snap.Orders {
		orders[order.ID] = order
	}

	type agg struct {
		orders        int
		spent         float64
		lastDelivered time.Time
	}
	byCustomer := make(map[int64]*agg, len(snap.Customers))
	for _, op := range snap.OrderPlaced {
		order, ok := orders[op.OrderID]
		if !ok || order.Status == store.OrderStatusCancelled {
			continue
		}
		a := byCustomer[op.CustomerID]
		if a == nil {
			a = &agg{}
			byCustomer[op.CustomerID] = a
		}
		a.orders++
		a.spent += order.TotalCost
		if order.Status == store.OrderStatusDelivered && order.Date.After(a.lastDelivered) {
			a.lastDelivered = order.Date
		}
	}

	rows := make([]CustomerActivityRow, 0, len(snap.Customers))
	for _, c := range snap.Customers {
		row := CustomerActivityRow{
			CustomerID:   c.ID,
			Name:         c.Name,
			CustomerType: string(c.Specialization()),
		}
		// Customers with no delivered order yet age from registration.
		last := c.RegisteredAt
		if a := byCustomer[c.ID]; a != nil {
			row.TotalOrders = a.orders
			row.TotalSpent = round2(a.spent)
			if !a.lastDelivered.IsZero() {
				last = a.lastDelivered
			}
		}
		row.DaysSinceLast = daysBetween(last, now)
		row.Segment = metrics.ClassifySegment(row.TotalSpent, row.TotalOrders)
		row.ChurnState = metrics.ClassifyChurn(row.DaysSinceLast)
		rows = append(rows, row)
	}
	return rows
}

// CrossSell reports the most frequently co-ordered product pairs.
func (s *Service) CrossSell(ctx context.Context) ([]CrossSellRow, error) {
	var rows []CrossSellRow
	err := s.fetch(ctx, "reports:crosssell", &rows, func(context.Context) (interface{}, error) {
		return s.crossSell(s.source.Snapshot()), nil
	})
	return rows, err
}

func (s *Service) crossSell(snap store.Snapshot) []CrossSellRow {
	counted := make(map[int64]struct{}, len(snap.Orders))
	for _, order := range countedOrders(snap) {
		counted[order.ID] = struct{}{}
	}
	orderProducts := make(map[int64][]int64)
	for _, line := range snap.Involvements {
		if _, ok := counted[line.OrderID]; !ok {
			continue
		}
		orderProducts[line.OrderID] = append(orderProducts[line.OrderID], line.ProductID)
	}

	pairs := metrics.CrossSellPairs(orderProducts)
	rows := make([]CrossSellRow, 0, len(pairs))
	for _, pair := range pairs {
		row := CrossSellRow{
			ProductAID: pair.ProductA,
			ProductBID: pair.ProductB,
			Frequency:  pair.Frequency,
		}
		if p, ok := snap.ProductByID(pair.ProductA); ok {
			row.ProductAName = p.Name
		}
		if p, ok := snap.ProductByID(pair.ProductB); ok {
			row.ProductBName = p.Name
		}
		rows = append(rows, row)
	}
	return rows
}

// Summary computes the executive KPI set.
func (s *Service) Summary(ctx context.Context) (ExecutiveSummary, error) {
	var summary ExecutiveSummary
	err := s.fetch(ctx, "reports:summary", &summary, func(context.Context) (interface{}, error) {
		return s.summary(s.source.Snapshot()), nil
	})
	return summary, err
}

func (s *Service) summary(snap store.Snapshot) ExecutiveSummary {
	now := s.now()
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	var summary ExecutiveSummary
	activeReps := make(map[int64]struct{})
	for _, order := range countedOrders(snap) {
		activeReps[order.RepresentativeID] = struct{}{}
		if order.Date.Before(yearStart) || order.Date.After(now) {
			continue
		}
		summary.YTDOrders++
		summary.YTDRevenue += order.TotalCost
	}
	summary.YTDRevenue = round2(summary.YTDRevenue)
	summary.ActiveReps = len(activeReps)
	if summary.YTDOrders > 0 {
		summary.AverageOrderValue = round2(summary.YTDRevenue / float64(summary.YTDOrders))
	}

	for _, rec := range snap.Inventory {
		if product, ok := snap.ProductByID(rec.ProductID); ok {
			summary.InventoryValue += float64(rec.Quantity) * product.UnitPrice
		}
		if rec.Quantity <= rec.ReorderLevel {
			summary.BelowReorderCount++
		}
	}
	summary.InventoryValue = round2(summary.InventoryValue)

	if len(snap.Representatives) > 0 {
		var total float64
		for _, rep := range snap.Representatives {
			total += rep.PerformanceRating
		}
		avg := total / float64(len(snap.Representatives))
		summary.SatisfactionPercent = round2(avg / 5 * 100)
	}
	return summary
}

// BuildDashboard assembles every report section concurrently over one
// logical snapshot generation.
func (s *Service) BuildDashboard(ctx context.Context) (Dashboard, error) {
	var dashboard Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dashboard.Summary, err = s.Summary(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		dashboard.SalesPerformance, err = s.SalesPerformance(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		dashboard.LowStock, err = s.LowStockAlert(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		dashboard.Regions, err = s.RegionalPerformance(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		dashboard.Products, err = s.ProductPerformance(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		dashboard.CustomerTypes, err = s.CustomerSegments(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		dashboard.Activity, err = s.CustomerActivity(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		dashboard.CrossSell, err = s.CrossSell(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return dashboard, nil
}

// Warm precomputes every cached section.
func (s *Service) Warm(ctx context.Context) error {
	_, err := s.BuildDashboard(ctx)
	return err
}

// fetch resolves a report through the cache; a nil cache recomputes inline.
func (s *Service) fetch(ctx context.Context, keyBase string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	key, err := s.cache.BuildKey(ctx, keyBase)
	if err != nil {
		return err
	}
	return s.cache.FetchJSON(ctx, key, dest, loader)
}

func countedOrders(snap store.Snapshot) []store.Order {
	orders := make([]store.Order, 0, len(snap.Orders))
	for _, order := range snap.Orders {
		if order.Status == store.OrderStatusCancelled {
			continue
		}
		orders = append(orders, order)
	}
	return orders
}

func orderCustomers(snap store.Snapshot) map[int64]int64 {
	out := make(map[int64]int64, len(snap.OrderPlaced))
	for _, op := range snap.OrderPlaced {
		out[op.OrderID] = op.CustomerID
	}
	return out
}

func daysBetween(from, to time.Time) int {
	if from.IsZero() || to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
