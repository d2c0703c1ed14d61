package domain

import (
	"context"
	"fmt"
)

// Transaction exposes the mutating commands a persistence implementation must
// support within one atomic scope. Identifier and timestamp generation happen
// inside the transaction using the store's injected capabilities so the
// command semantics stay deterministic under test.
type Transaction interface {
	AddProduct(Product) (Product, error)
	UpdateProduct(Product) (Product, error)
	DeleteProduct(id string) error
	RecordSale(SaleDraft) (Sale, error)
	MarkNotificationRead(id string) (Notification, error)
	FindProduct(id string) (Product, bool)
}

// TransactionView provides read-only access to snapshot data for rules and
// read callbacks.
type TransactionView interface {
	ListProducts() []Product
	FindProduct(id string) (Product, bool)
	ListSales() []Sale
	ListNotifications() []Notification
}

// PersistentStore is a minimal abstraction over durable backends. All
// mutation routes through RunInTransaction; the read methods reflect the
// committed state only.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	Snapshot() Snapshot
	GetProduct(id string) (Product, bool)
	ListProducts() []Product
	ListSales() []Sale
	ListNotifications() []Notification
}

// NotFoundError is returned when a command references an id that does not
// resolve in the current state.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ConflictError is returned when a create collides with an existing id.
type ConflictError struct {
	Entity EntityType
	ID     string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Entity, e.ID)
}

// PersistError wraps a snapshot persistence failure. The in-memory state has
// already committed when this is returned; persistence is best-effort and
// callers may log and carry on.
type PersistError struct {
	Err error
}

func (e PersistError) Error() string {
	return fmt.Sprintf("persist snapshot: %v", e.Err)
}

func (e PersistError) Unwrap() error { return e.Err }
