package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bizflow/pkg/domain"
)

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func saleAt(ts time.Time, total string) domain.Sale {
	return domain.Sale{
		Items:       []domain.SaleItem{{ProductID: "p1", Quantity: 1, PriceAtSale: price(total)}},
		TotalAmount: price(total),
		DateTime:    ts,
	}
}

func TestSummarizeBucketsByWindow(t *testing.T) {
	// Wednesday March 13 2024; the week started Sunday March 10.
	now := time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC)
	sales := []domain.Sale{
		saleAt(time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC), "10.00"),  // today
		saleAt(time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC), "20.00"),  // this week
		saleAt(time.Date(2024, 3, 9, 9, 0, 0, 0, time.UTC), "40.00"),   // before Sunday, this month
		saleAt(time.Date(2024, 2, 28, 9, 0, 0, 0, time.UTC), "80.00"),  // last month
		saleAt(time.Date(2024, 3, 13, 23, 0, 0, 0, time.UTC), "160.00"), // future, ignored
	}

	summary := Summarize(sales, now)
	if !summary.TodayTotal.Equal(price("10.00")) || summary.TodayCount != 1 {
		t.Fatalf("today = %s / %d", summary.TodayTotal, summary.TodayCount)
	}
	if !summary.WeekTotal.Equal(price("30.00")) || summary.WeekCount != 2 {
		t.Fatalf("week = %s / %d", summary.WeekTotal, summary.WeekCount)
	}
	if !summary.MonthTotal.Equal(price("70.00")) || summary.MonthCount != 3 {
		t.Fatalf("month = %s / %d", summary.MonthTotal, summary.MonthCount)
	}
}

func TestSummarizeSundayStartsNewWeek(t *testing.T) {
	sunday := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	sales := []domain.Sale{
		saleAt(time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC), "5.00"), // same Sunday
		saleAt(time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC), "7.00"),  // Saturday, prior week
	}
	summary := Summarize(sales, sunday)
	if !summary.WeekTotal.Equal(price("5.00")) || summary.WeekCount != 1 {
		t.Fatalf("week = %s / %d, want only Sunday's sale", summary.WeekTotal, summary.WeekCount)
	}
}

func TestInventoryValue(t *testing.T) {
	products := []domain.Product{
		{ID: "p1", Price: price("12.99"), Quantity: 2},
		{ID: "p2", Price: price("6.50"), Quantity: 10},
	}
	if got := InventoryValue(products); !got.Equal(price("90.98")) {
		t.Fatalf("inventory value = %s, want 90.98", got)
	}
	if got := InventoryValue(nil); !got.Equal(decimal.Zero) {
		t.Fatalf("empty inventory value = %s", got)
	}
}

func TestLowStockSortsAscending(t *testing.T) {
	products := []domain.Product{
		{ID: "ok", Quantity: 50, ReorderLevel: 10},
		{ID: "low-b", Quantity: 8, ReorderLevel: 10},
		{ID: "low-a", Quantity: 3, ReorderLevel: 10},
		{ID: "boundary", Quantity: 10, ReorderLevel: 10},
	}
	low := LowStock(products)
	if len(low) != 3 {
		t.Fatalf("low stock count = %d, want 3", len(low))
	}
	if low[0].ID != "low-a" || low[1].ID != "low-b" || low[2].ID != "boundary" {
		t.Fatalf("low stock order = %s, %s, %s", low[0].ID, low[1].ID, low[2].ID)
	}
}

func TestTopSellersResolvesDanglingReferences(t *testing.T) {
	products := []domain.Product{{ID: "p1", Name: "Tea"}}
	sales := []domain.Sale{
		{Items: []domain.SaleItem{
			{ProductID: "p1", Quantity: 3, PriceAtSale: price("2.00")},
			{ProductID: "deleted", Quantity: 7, PriceAtSale: price("1.00")},
		}},
		{Items: []domain.SaleItem{
			{ProductID: "p1", Quantity: 2, PriceAtSale: price("2.00")},
		}},
	}

	top := TopSellers(sales, products, 10)
	if len(top) != 2 {
		t.Fatalf("top sellers = %d, want 2", len(top))
	}
	if top[0].ProductID != "deleted" || top[0].Name != UnknownProductName || top[0].UnitsSold != 7 {
		t.Fatalf("top entry = %+v", top[0])
	}
	if top[1].ProductID != "p1" || top[1].UnitsSold != 5 {
		t.Fatalf("second entry = %+v", top[1])
	}
	if !top[1].Revenue.Equal(price("10.00")) {
		t.Fatalf("p1 revenue = %s", top[1].Revenue)
	}

	if got := TopSellers(sales, products, 1); len(got) != 1 {
		t.Fatalf("limit not applied: %d", len(got))
	}
}
