package reports

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const reportWidth = 80

// Render formats a dashboard as the plain-text analytics report printed by
// the CLI. Monetary values use grouped English formatting.
func Render(dashboard Dashboard, generatedAt time.Time) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	rule := strings.Repeat("=", reportWidth)
	section := strings.Repeat("-", 50)

	b.WriteString(rule + "\n")
	b.WriteString("PHARMACEUTICAL SUPPLY CHAIN ANALYTICS REPORT\n")
	b.WriteString(rule + "\n")
	p.Fprintf(&b, "Generated: %s\n\n", generatedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("EXECUTIVE SUMMARY\n")
	b.WriteString(section + "\n")
	p.Fprintf(&b, "YTD Revenue: $%.2f\n", dashboard.Summary.YTDRevenue)
	p.Fprintf(&b, "YTD Orders: %d\n", dashboard.Summary.YTDOrders)
	p.Fprintf(&b, "Average Order Value: $%.2f\n", dashboard.Summary.AverageOrderValue)
	p.Fprintf(&b, "Active Representatives: %d\n", dashboard.Summary.ActiveReps)
	p.Fprintf(&b, "Total Inventory Value: $%.2f\n", dashboard.Summary.InventoryValue)
	p.Fprintf(&b, "Products Below Reorder: %d\n", dashboard.Summary.BelowReorderCount)
	p.Fprintf(&b, "Satisfaction: %.1f%%\n\n", dashboard.Summary.SatisfactionPercent)

	if len(dashboard.SalesPerformance) > 0 {
		b.WriteString("TOP SALES PERFORMERS\n")
		b.WriteString(section + "\n")
		for i, row := range dashboard.SalesPerformance {
			if i == 5 {
				break
			}
			p.Fprintf(&b, "%d. %s (%s): $%.2f across %d orders\n", row.Rank, row.Name, row.RegionName, row.TotalSales, row.TotalOrders)
		}
		b.WriteString("\n")
	}

	critical := make([]LowStockRow, 0, len(dashboard.LowStock))
	for _, row := range dashboard.LowStock {
		if row.Status == "OUT_OF_STOCK" || row.Status == "CRITICAL" {
			critical = append(critical, row)
		}
	}
	if len(critical) > 0 {
		b.WriteString("CRITICAL INVENTORY ALERTS\n")
		b.WriteString(section + "\n")
		for _, row := range critical {
			p.Fprintf(&b, "%s: %d units (%s, %s)\n", row.ProductName, row.Quantity, row.Status, row.Action)
		}
		b.WriteString("\n")
	}

	if len(dashboard.Regions) > 0 {
		b.WriteString("REGIONAL PERFORMANCE SUMMARY\n")
		b.WriteString(section + "\n")
		for i, row := range dashboard.Regions {
			if i == 3 {
				break
			}
			p.Fprintf(&b, "%s: $%.2f revenue, %d orders, %d reps\n", row.RegionName, row.TotalRevenue, row.TotalOrders, row.Representatives)
		}
		b.WriteString("\n")
	}

	if len(dashboard.CrossSell) > 0 {
		b.WriteString("FREQUENTLY CO-ORDERED PRODUCTS\n")
		b.WriteString(section + "\n")
		for _, row := range dashboard.CrossSell {
			p.Fprintf(&b, "%s + %s: %d orders\n", row.ProductAName, row.ProductBName, row.Frequency)
		}
		b.WriteString("\n")
	}

	b.WriteString(rule + "\n")
	return b.String()
}
