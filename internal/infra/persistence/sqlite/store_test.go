package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"bizflow/pkg/domain"
)

func newTestStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestFreshDatabaseHydratesSeedCatalog(t *testing.T) {
	store := newTestStore(t, filepath.Join(t.TempDir(), "fresh.db"))

	products := store.ListProducts()
	if !reflect.DeepEqual(products, domain.SeedProducts()) {
		t.Fatalf("fresh store did not load seed catalog: %+v", products)
	}
	if len(store.ListSales()) != 0 || len(store.ListNotifications()) != 0 {
		t.Fatalf("fresh store should have no sales or notifications")
	}
}

func TestRoundTripAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roundtrip.db")
	store := newTestStore(t, path)

	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.AddProduct(domain.Product{
			ID: "p-extra", Name: "Raw Honey", SKU: "RH-006",
			Price: decimal.RequireFromString("9.25"), Quantity: 30, ReorderLevel: 5,
		}); err != nil {
			return err
		}
		_, err := tx.RecordSale(domain.SaleDraft{
			Items:       []domain.SaleItem{{ProductID: "prod_2", Quantity: 5, PriceAtSale: decimal.RequireFromString("6.50")}},
			TotalAmount: decimal.RequireFromString("32.50"),
		})
		return err
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	want := store.Snapshot()
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := newTestStore(t, path)
	got := reopened.Snapshot()
	if len(got.Products) != len(want.Products) || len(got.Sales) != 1 || len(got.Notifications) != 1 {
		t.Fatalf("reopened state wrong: %d products, %d sales, %d notifications",
			len(got.Products), len(got.Sales), len(got.Notifications))
	}
	if got.Sales[0].ID != want.Sales[0].ID {
		t.Fatalf("sale id = %q, want %q", got.Sales[0].ID, want.Sales[0].ID)
	}
	if !got.Sales[0].TotalAmount.Equal(want.Sales[0].TotalAmount) {
		t.Fatalf("sale total = %s, want %s", got.Sales[0].TotalAmount, want.Sales[0].TotalAmount)
	}
	product, ok := reopened.GetProduct("prod_2")
	if !ok || product.Quantity != 10 {
		t.Fatalf("prod_2 after reopen: %+v ok=%v", product, ok)
	}
}

func TestMalformedDocumentFallsBackToSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "malformed.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE state (bucket TEXT PRIMARY KEY, payload BLOB NOT NULL)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO state(bucket,payload) VALUES('products', 'not json')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	store := newTestStore(t, path)
	if !reflect.DeepEqual(store.ListProducts(), domain.SeedProducts()) {
		t.Fatalf("malformed document should fall back to seed catalog")
	}
}

func TestEmptyProductListFallsBackToSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	store := newTestStore(t, path)

	// Delete every product and reopen; an empty catalog is treated as unusable.
	for _, p := range store.ListProducts() {
		if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
			return tx.DeleteProduct(p.ID)
		}); err != nil {
			t.Fatalf("delete %s: %v", p.ID, err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := newTestStore(t, path)
	if !reflect.DeepEqual(reopened.ListProducts(), domain.SeedProducts()) {
		t.Fatalf("empty catalog should fall back to seed")
	}
}

func TestPersistFailureDoesNotRollBackCommit(t *testing.T) {
	store := newTestStore(t, filepath.Join(t.TempDir(), "bestefort.db"))

	// Closing the handle makes every snapshot write fail from here on.
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.AddProduct(domain.Product{Name: "Ephemeral", Price: decimal.Zero})
		return err
	})
	var pErr domain.PersistError
	if !errors.As(err, &pErr) {
		t.Fatalf("err = %v, want PersistError", err)
	}
	if store.LastPersistError() == nil {
		t.Fatalf("expected retained persist error")
	}

	found := false
	for _, p := range store.ListProducts() {
		if p.Name == "Ephemeral" {
			found = true
		}
	}
	if !found {
		t.Fatalf("in-memory commit should stand despite persist failure")
	}
}

func TestRejectedTransactionDoesNotPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rejected.db")
	store := newTestStore(t, path)
	before := store.Snapshot()

	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.AddProduct(domain.Product{Name: ""})
		return err
	})
	if err == nil {
		t.Fatalf("expected validation rejection")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := newTestStore(t, path)
	if !reflect.DeepEqual(before, reopened.Snapshot()) {
		t.Fatalf("rejected transaction changed persisted state")
	}
}
