package core

import (
	"context"
	"errors"
	"time"

	"bizflow/internal/infra/persistence/memory"
	"bizflow/pkg/domain"
)

// Service exposes the transactional retail commands on top of a persistent
// store. Every mutation runs through the rules engine inside one transaction;
// persistence failures after an in-memory commit are logged and reported as
// success because durable snapshotting is best-effort.
type Service struct {
	store   PersistentStore
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
}

// ServiceOption customizes service construction.
type ServiceOption func(*Service)

// WithLogger installs a structured logger.
func WithLogger(logger Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRecorder installs a metrics sink for operation observations.
func WithMetricsRecorder(recorder MetricsRecorder) ServiceOption {
	return func(s *Service) {
		s.metrics = recorder
	}
}

// WithTracer installs a tracer wrapping each operation in a span.
func WithTracer(tracer Tracer) ServiceOption {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...ServiceOption) *Service {
	svc := &Service{
		store:  store,
		logger: noopLogger{},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// NewInMemoryService creates a service and in-memory store with the given
// rules engine.
func NewInMemoryService(engine *RulesEngine, opts ...ServiceOption) *Service {
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore {
	return s.store
}

// run executes fn in a transaction with tracing, metrics and best-effort
// persistence semantics applied uniformly.
func (s *Service) run(ctx context.Context, operation string, fn func(Transaction) error) (Result, error) {
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operation)
	}
	started := time.Now()

	res, err := s.store.RunInTransaction(ctx, fn)

	var persistErr domain.PersistError
	if errors.As(err, &persistErr) {
		// The in-memory commit stands; durability catches up on the next
		// successful write.
		s.logger.Warn("snapshot persistence failed", "operation", operation, "error", persistErr.Err)
		err = nil
	}

	if s.metrics != nil {
		s.metrics.Observe(ctx, operation, err == nil, time.Since(started))
	}
	if span != nil {
		span.End(err)
	}
	if err != nil {
		s.logger.Debug("operation rejected", "operation", operation, "error", err)
	} else {
		for _, v := range res.Violations {
			if v.Severity == SeverityWarn {
				s.logger.Warn("rule warning", "operation", operation, "rule", v.Rule, "message", v.Message)
			}
		}
	}
	return res, err
}

// AddProduct creates a product record. A blank ID is generated by the store;
// a caller-supplied ID that already exists is rejected with ConflictError.
func (s *Service) AddProduct(ctx context.Context, product Product) (Product, Result, error) {
	var created Product
	res, err := s.run(ctx, "add_product", func(tx Transaction) error {
		var err error
		created, err = tx.AddProduct(product)
		return err
	})
	return created, res, err
}

// UpdateProduct replaces an existing product in full.
func (s *Service) UpdateProduct(ctx context.Context, product Product) (Product, Result, error) {
	var updated Product
	res, err := s.run(ctx, "update_product", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateProduct(product)
		return err
	})
	return updated, res, err
}

// DeleteProduct removes a product. Past sales referencing it keep their
// dangling references.
func (s *Service) DeleteProduct(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_product", func(tx Transaction) error {
		return tx.DeleteProduct(id)
	})
}

// RecordSale commits a point-of-sale transaction: validates the draft,
// decrements stock, appends the sale most-recent-first and derives any
// low-stock notifications, all inside one transaction.
func (s *Service) RecordSale(ctx context.Context, draft SaleDraft) (Sale, Result, error) {
	var sale Sale
	res, err := s.run(ctx, "record_sale", func(tx Transaction) error {
		var err error
		sale, err = tx.RecordSale(draft)
		return err
	})
	return sale, res, err
}

// MarkNotificationRead acknowledges a low-stock notification. Marking an
// already-read notification is a no-op success.
func (s *Service) MarkNotificationRead(ctx context.Context, id string) (Notification, Result, error) {
	var notif Notification
	res, err := s.run(ctx, "mark_notification_read", func(tx Transaction) error {
		var err error
		notif, err = tx.MarkNotificationRead(id)
		return err
	})
	return notif, res, err
}

// Snapshot returns a deep copy of the committed state.
func (s *Service) Snapshot() Snapshot {
	return s.store.Snapshot()
}

// LookupProduct fetches a product by id from committed state.
func (s *Service) LookupProduct(id string) (Product, bool) {
	return s.store.GetProduct(id)
}

// Products lists the catalog in insertion order.
func (s *Service) Products() []Product {
	return s.store.ListProducts()
}

// Sales lists committed sales most-recent-first.
func (s *Service) Sales() []Sale {
	return s.store.ListSales()
}

// Notifications lists derived low-stock notifications.
func (s *Service) Notifications() []Notification {
	return s.store.ListNotifications()
}

// UnreadNotifications filters to notifications awaiting acknowledgement.
func (s *Service) UnreadNotifications() []Notification {
	all := s.store.ListNotifications()
	out := make([]Notification, 0, len(all))
	for _, n := range all {
		if !n.Read {
			out = append(out, n)
		}
	}
	return out
}
