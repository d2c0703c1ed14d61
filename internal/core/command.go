package core

import (
	"context"
	"fmt"
)

// CommandKind enumerates the mutations the dispatcher accepts.
type CommandKind string

const (
	CommandAddProduct           CommandKind = "add_product"
	CommandUpdateProduct        CommandKind = "update_product"
	CommandDeleteProduct        CommandKind = "delete_product"
	CommandRecordSale           CommandKind = "record_sale"
	CommandMarkNotificationRead CommandKind = "mark_notification_read"
)

// Command is a tagged union carrying exactly the payload its kind requires.
// Unused fields are ignored.
type Command struct {
	Kind           CommandKind `json:"kind"`
	Product        *Product    `json:"product,omitempty"`
	ProductID      string      `json:"productId,omitempty"`
	Sale           *SaleDraft  `json:"sale,omitempty"`
	NotificationID string      `json:"notificationId,omitempty"`
}

// Dispatch applies one command and returns the committed state after it.
// A rejected command leaves state untouched; the returned snapshot then
// reflects the state prior to the attempt.
func (s *Service) Dispatch(ctx context.Context, cmd Command) (Snapshot, Result, error) {
	var (
		res Result
		err error
	)
	switch cmd.Kind {
	case CommandAddProduct:
		if cmd.Product == nil {
			return s.Snapshot(), Result{}, fmt.Errorf("add_product requires a product payload")
		}
		_, res, err = s.AddProduct(ctx, *cmd.Product)
	case CommandUpdateProduct:
		if cmd.Product == nil {
			return s.Snapshot(), Result{}, fmt.Errorf("update_product requires a product payload")
		}
		_, res, err = s.UpdateProduct(ctx, *cmd.Product)
	case CommandDeleteProduct:
		res, err = s.DeleteProduct(ctx, cmd.ProductID)
	case CommandRecordSale:
		if cmd.Sale == nil {
			return s.Snapshot(), Result{}, fmt.Errorf("record_sale requires a sale payload")
		}
		_, res, err = s.RecordSale(ctx, *cmd.Sale)
	case CommandMarkNotificationRead:
		_, res, err = s.MarkNotificationRead(ctx, cmd.NotificationID)
	default:
		return s.Snapshot(), Result{}, fmt.Errorf("unknown command kind %q", cmd.Kind)
	}
	return s.Snapshot(), res, err
}
