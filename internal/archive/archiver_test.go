package archive

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bizflow/internal/infra/blob"
	"bizflow/pkg/domain"
)

func sampleSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Products: []domain.Product{{
			ID: "p1", Name: "Tea", SKU: "T-1",
			Price: decimal.RequireFromString("12.99"), Quantity: 10, ReorderLevel: 2,
		}},
		Sales: []domain.Sale{{
			ID:          "sale_1",
			Items:       []domain.SaleItem{{ProductID: "p1", Quantity: 2, PriceAtSale: decimal.RequireFromString("12.99")}},
			TotalAmount: decimal.RequireFromString("25.98"),
			DateTime:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		}},
		Notifications: []domain.Notification{{ID: "notif_1", ProductID: "p1", Message: "low"}},
	}
}

func TestExportRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	archiver := New(blob.NewMemory(), WithClock(func() time.Time {
		return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	}))

	info, err := archiver.Export(ctx, sampleSnapshot())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(info.Key, "snapshots/") || !strings.HasSuffix(info.Key, ".json") {
		t.Fatalf("archive key = %q", info.Key)
	}
	if info.Metadata["products"] != "1" || info.Metadata["sales"] != "1" {
		t.Fatalf("metadata = %+v", info.Metadata)
	}

	restored, err := archiver.Restore(ctx, info.Key)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	want := sampleSnapshot()
	if len(restored.Products) != 1 || restored.Products[0].ID != "p1" {
		t.Fatalf("restored products = %+v", restored.Products)
	}
	if !restored.Products[0].Price.Equal(want.Products[0].Price) {
		t.Fatalf("price = %s", restored.Products[0].Price)
	}
	if len(restored.Sales) != 1 || !restored.Sales[0].TotalAmount.Equal(want.Sales[0].TotalAmount) {
		t.Fatalf("restored sales = %+v", restored.Sales)
	}
	if !restored.Sales[0].DateTime.Equal(want.Sales[0].DateTime) {
		t.Fatalf("sale time = %v", restored.Sales[0].DateTime)
	}
	if len(restored.Notifications) != 1 || restored.Notifications[0].ID != "notif_1" {
		t.Fatalf("restored notifications = %+v", restored.Notifications)
	}
}

func TestListReturnsChronologicalKeys(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	archiver := New(blob.NewMemory(), WithClock(func() time.Time {
		ts = ts.Add(time.Second)
		return ts
	}))

	for i := 0; i < 3; i++ {
		if _, err := archiver.Export(ctx, sampleSnapshot()); err != nil {
			t.Fatalf("export %d: %v", i, err)
		}
	}

	infos, err := archiver.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("archives = %d, want 3", len(infos))
	}
	for i := 1; i < len(infos); i++ {
		if infos[i-1].Key >= infos[i].Key {
			t.Fatalf("keys out of order: %q >= %q", infos[i-1].Key, infos[i].Key)
		}
	}
}

func TestExportWithCustomPrefix(t *testing.T) {
	archiver := New(blob.NewMemory(), WithPrefix("backups"))
	info, err := archiver.Export(context.Background(), domain.Snapshot{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(info.Key, "backups/") {
		t.Fatalf("key = %q", info.Key)
	}
}

func TestRestoreMissingKeyFails(t *testing.T) {
	archiver := New(blob.NewMemory())
	if _, err := archiver.Restore(context.Background(), "snapshots/missing.json"); err == nil {
		t.Fatalf("expected error for missing archive")
	}
}
