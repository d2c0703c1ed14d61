// Package domain defines the retail entities, value types, and rule
// evaluation primitives used by the bizflow state engine.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntityType identifies the type of record stored in the engine.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityProduct identifies a catalog product record.
	EntityProduct EntityType = "product"
	// EntitySale identifies a committed point-of-sale transaction.
	EntitySale EntityType = "sale"
	// EntityNotification identifies a derived low-stock notification.
	EntityNotification EntityType = "notification"
)

// Product represents a single catalog entry tracked by the inventory.
// Quantity is decremented by sale recording; a negative result is caught by
// the stock floor rule before commit, never silently clamped.
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	ReorderLevel int             `json:"reorderLevel"`
}

// SaleItem is one line within a sale. ProductID is a weak reference: the
// product may be deleted later and any lookup through it must resolve to
// "unknown product" rather than fail. PriceAtSale is the product price
// captured at the moment of sale and does not track later price changes.
type SaleItem struct {
	ProductID   string          `json:"productId"`
	Quantity    int             `json:"quantity"`
	PriceAtSale decimal.Decimal `json:"priceAtSale"`
}

// Subtotal returns quantity times the captured unit price.
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.PriceAtSale.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CustomerInfo optionally attaches a customer to a sale for receipts.
type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Sale is a committed point-of-sale transaction. Identity and timestamp are
// assigned by the engine at commit time; sales are immutable afterwards and
// are never edited or deleted, only appended most-recent-first.
type Sale struct {
	ID          string          `json:"id"`
	Items       []SaleItem      `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	DateTime    time.Time       `json:"dateTime"`
	Customer    *CustomerInfo   `json:"customerInfo,omitempty"`
}

// ItemTotal recomputes the sale total from its line items.
func (s Sale) ItemTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Notification is a derived low-stock alert. Created only by the alert
// deriver during sale recording; the only permitted mutation is flipping
// Read from false to true. Notifications are never deleted.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Date      time.Time `json:"date"`
	Read      bool      `json:"read"`
	ProductID string    `json:"productId"`
}

// SaleDraft is the caller-supplied payload for recording a sale. TotalAmount
// must reconcile with the line items; the engine recomputes and rejects
// mismatches instead of trusting the caller.
type SaleDraft struct {
	Items       []SaleItem      `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Customer    *CustomerInfo   `json:"customerInfo,omitempty"`
}

// Snapshot is the full persistence document: products in insertion order,
// sales most-recent-first, notifications in creation order. Snapshots are
// immutable values; holders of an old snapshot are unaffected by later
// commands.
type Snapshot struct {
	Products      []Product      `json:"products"`
	Sales         []Sale         `json:"sales"`
	Notifications []Notification `json:"notifications"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{}
	if s.Products != nil {
		out.Products = make([]Product, len(s.Products))
		copy(out.Products, s.Products)
	}
	if s.Sales != nil {
		out.Sales = make([]Sale, len(s.Sales))
		for i, sale := range s.Sales {
			out.Sales[i] = CloneSale(sale)
		}
	}
	if s.Notifications != nil {
		out.Notifications = make([]Notification, len(s.Notifications))
		copy(out.Notifications, s.Notifications)
	}
	return out
}

// CloneSale deep-copies a sale including its item sequence.
func CloneSale(s Sale) Sale {
	cp := s
	cp.Items = append([]SaleItem(nil), s.Items...)
	if s.Customer != nil {
		c := *s.Customer
		cp.Customer = &c
	}
	return cp
}

// Change captures a single entity mutation applied within a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action enumerates the mutation kinds captured in Change records.
type Action string

const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	// ActionDelete indicates an entity was deleted.
	ActionDelete Action = "delete"
)
