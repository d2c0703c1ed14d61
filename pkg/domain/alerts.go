package domain

import (
	"fmt"
	"time"
)

// LowStockMessage formats the alert sentence shown to the operator.
func LowStockMessage(name string, remaining, reorderLevel int) string {
	return fmt.Sprintf("%s is low on stock (%d remaining). Reorder level is %d.", name, remaining, reorderLevel)
}

// DeriveLowStockAlert decides whether decrementing a product's stock to
// newQuantity warrants a fresh notification. The alert triggers when
// newQuantity is at or below the product's reorder level and is suppressed
// while an unread notification for the same product exists. Read
// notifications never suppress: after an alert is acknowledged, a later
// qualifying sale produces a new one.
//
// The function is pure; the caller supplies the commit timestamp and the
// identifier for the new notification.
func DeriveLowStockAlert(product Product, newQuantity int, existing []Notification, now time.Time, id string) (Notification, bool) {
	if newQuantity > product.ReorderLevel {
		return Notification{}, false
	}
	for _, n := range existing {
		if n.ProductID == product.ID && !n.Read {
			return Notification{}, false
		}
	}
	return Notification{
		ID:        id,
		Message:   LowStockMessage(product.Name, newQuantity, product.ReorderLevel),
		Date:      now,
		Read:      false,
		ProductID: product.ID,
	}, true
}
