// Package report derives read-only dashboard figures from committed state.
// All functions are pure over the supplied slices; callers pass a snapshot
// and a reference time so results stay deterministic under test.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"bizflow/pkg/domain"
)

// SalesSummary aggregates revenue and sale counts over the standard
// dashboard windows. Weeks start on Sunday.
type SalesSummary struct {
	TodayTotal decimal.Decimal `json:"todayTotal"`
	WeekTotal  decimal.Decimal `json:"weekTotal"`
	MonthTotal decimal.Decimal `json:"monthTotal"`
	TodayCount int             `json:"todayCount"`
	WeekCount  int             `json:"weekCount"`
	MonthCount int             `json:"monthCount"`
}

// Summarize buckets sales into today, this week and this month relative to
// now. Sale timestamps are compared in now's location. Sales dated after now
// are excluded from every bucket, so a clock-skewed or backdated-then-restored
// snapshot cannot inflate the current totals.
func Summarize(sales []domain.Sale, now time.Time) SalesSummary {
	loc := now.Location()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	weekStart := dayStart.AddDate(0, 0, -int(dayStart.Weekday()))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	summary := SalesSummary{
		TodayTotal: decimal.Zero,
		WeekTotal:  decimal.Zero,
		MonthTotal: decimal.Zero,
	}
	for _, sale := range sales {
		ts := sale.DateTime.In(loc)
		if ts.After(now) {
			continue
		}
		if !ts.Before(monthStart) {
			summary.MonthTotal = summary.MonthTotal.Add(sale.TotalAmount)
			summary.MonthCount++
		}
		if !ts.Before(weekStart) {
			summary.WeekTotal = summary.WeekTotal.Add(sale.TotalAmount)
			summary.WeekCount++
		}
		if !ts.Before(dayStart) {
			summary.TodayTotal = summary.TodayTotal.Add(sale.TotalAmount)
			summary.TodayCount++
		}
	}
	return summary
}

// InventoryValue returns the retail value of stock on hand. Negative
// quantities never occur in committed state, so no clamping happens here.
func InventoryValue(products []domain.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	return total
}

// LowStock returns products at or below their reorder level, lowest
// quantity first. Ties keep catalog order.
func LowStock(products []domain.Product) []domain.Product {
	var out []domain.Product
	for _, p := range products {
		if p.Quantity <= p.ReorderLevel {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out
}

// UnknownProductName labels sale lines whose product was deleted after the
// sale committed.
const UnknownProductName = "unknown product"

// TopSeller describes one product's sales performance.
type TopSeller struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitsSold int             `json:"unitsSold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// TopSellers ranks products by units sold across all sales, descending,
// keeping at most n entries. Lines referencing deleted products are kept
// under the unknown-product label rather than dropped.
func TopSellers(sales []domain.Sale, products []domain.Product, n int) []TopSeller {
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	byProduct := make(map[string]*TopSeller)
	var order []string
	for _, sale := range sales {
		for _, item := range sale.Items {
			entry, ok := byProduct[item.ProductID]
			if !ok {
				name, known := names[item.ProductID]
				if !known {
					name = UnknownProductName
				}
				entry = &TopSeller{ProductID: item.ProductID, Name: name, Revenue: decimal.Zero}
				byProduct[item.ProductID] = entry
				order = append(order, item.ProductID)
			}
			entry.UnitsSold += item.Quantity
			entry.Revenue = entry.Revenue.Add(item.Subtotal())
		}
	}

	out := make([]TopSeller, 0, len(order))
	for _, id := range order {
		out = append(out, *byProduct[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UnitsSold > out[j].UnitsSold })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
