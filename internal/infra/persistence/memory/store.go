// Package memory provides the in-memory transactional store that holds the
// authoritative bizflow state. It is also the substrate the durable backends
// wrap: a transaction runs against a cloned state, the rules engine evaluates
// the post-mutation view, and the clone replaces the committed state only
// when no blocking violation exists.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bizflow/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

type state struct {
	products      []domain.Product
	productIndex  map[string]int
	sales         []domain.Sale
	notifications []domain.Notification
}

func newState() state {
	return state{productIndex: make(map[string]int)}
}

func (s state) clone() state {
	cloned := state{
		productIndex: make(map[string]int, len(s.products)),
	}
	if s.products != nil {
		cloned.products = make([]domain.Product, len(s.products))
		copy(cloned.products, s.products)
	}
	for i, p := range cloned.products {
		cloned.productIndex[p.ID] = i
	}
	if s.sales != nil {
		cloned.sales = make([]domain.Sale, len(s.sales))
		for i, sale := range s.sales {
			cloned.sales[i] = domain.CloneSale(sale)
		}
	}
	if s.notifications != nil {
		cloned.notifications = make([]domain.Notification, len(s.notifications))
		copy(cloned.notifications, s.notifications)
	}
	return cloned
}

func (s *state) reindex() {
	s.productIndex = make(map[string]int, len(s.products))
	for i, p := range s.products {
		s.productIndex[p.ID] = i
	}
}

// IDSource produces a fresh identifier for the given entity kind.
type IDSource func(kind domain.EntityType) string

// DefaultIDSource prefixes a random UUID with the entity kind, keeping ids
// opaque but greppable.
func DefaultIDSource(kind domain.EntityType) string {
	prefix := "id_"
	switch kind {
	case domain.EntityProduct:
		prefix = "prod_"
	case domain.EntitySale:
		prefix = "sale_"
	case domain.EntityNotification:
		prefix = "notif_"
	}
	return prefix + uuid.NewString()
}

// Option configures a Store at construction.
type Option func(*Store)

// WithClock injects the commit timestamp source.
func WithClock(nowFn func() time.Time) Option {
	return func(s *Store) {
		if nowFn != nil {
			s.nowFn = nowFn
		}
	}
}

// WithIDSource injects the identifier generator.
func WithIDSource(idFn IDSource) Option {
	return func(s *Store) {
		if idFn != nil {
			s.idFn = idFn
		}
	}
}

// Store provides an in-memory transactional store for the retail domain.
type Store struct {
	mu     sync.RWMutex
	state  state
	engine *domain.RulesEngine
	nowFn  func() time.Time
	idFn   IDSource
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *domain.RulesEngine, opts ...Option) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	s := &Store{
		state:  newState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
		idFn:   DefaultIDSource,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RulesEngine returns the engine evaluated on every transaction.
func (s *Store) RulesEngine() *domain.RulesEngine {
	return s.engine
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() domain.Snapshot {
	return s.Snapshot()
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cloned := snapshot.Clone()
	s.state = state{
		products:      cloned.Products,
		sales:         cloned.Sales,
		notifications: cloned.Notifications,
	}
	s.state.reindex()
}

// Transaction represents a mutation set applied to the store state.
type Transaction struct {
	store   *Store
	state   *state
	changes []domain.Change
	now     time.Time
}

var _ domain.Transaction = (*Transaction)(nil)

func (tx *Transaction) recordChange(change domain.Change) {
	tx.changes = append(tx.changes, change)
}

// view exposes a read-only snapshot of a state to rules and read callbacks.
type view struct {
	state *state
}

var _ domain.TransactionView = view{}

// ListProducts returns all products in insertion order.
func (v view) ListProducts() []domain.Product {
	out := make([]domain.Product, len(v.state.products))
	copy(out, v.state.products)
	return out
}

// FindProduct retrieves a product by id.
func (v view) FindProduct(id string) (domain.Product, bool) {
	i, ok := v.state.productIndex[id]
	if !ok {
		return domain.Product{}, false
	}
	return v.state.products[i], true
}

// ListSales returns all sales, most recent first.
func (v view) ListSales() []domain.Sale {
	out := make([]domain.Sale, len(v.state.sales))
	for i, sale := range v.state.sales {
		out[i] = domain.CloneSale(sale)
	}
	return out
}

// ListNotifications returns all notifications in creation order.
func (v view) ListNotifications() []domain.Notification {
	out := make([]domain.Notification, len(v.state.notifications))
	copy(out, v.state.notifications)
	return out
}

// RunInTransaction executes fn within a transactional copy of the store
// state. The clone is committed only when fn succeeds and no registered rule
// reports a blocking violation; otherwise the committed state is untouched
// and the caller receives the rejection reasons.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cloned := s.state.clone()
	tx := &Transaction{
		store: s,
		state: &cloned,
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return domain.Result{}, err
	}

	var result domain.Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, view{state: &cloned}, tx.changes)
		if err != nil {
			return domain.Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = cloned
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(view{state: &snapshot})
}

// AddProduct stores a new product within the transaction. A blank id is
// assigned; a duplicate id is rejected.
func (tx *Transaction) AddProduct(p domain.Product) (domain.Product, error) {
	if p.Name == "" {
		return domain.Product{}, fmt.Errorf("product name required")
	}
	if p.Price.IsNegative() {
		return domain.Product{}, fmt.Errorf("product %q price must not be negative", p.Name)
	}
	if p.Quantity < 0 {
		return domain.Product{}, fmt.Errorf("product %q quantity must not be negative", p.Name)
	}
	if p.ReorderLevel < 0 {
		return domain.Product{}, fmt.Errorf("product %q reorder level must not be negative", p.Name)
	}
	if p.ID == "" {
		p.ID = tx.store.idFn(domain.EntityProduct)
	}
	if _, exists := tx.state.productIndex[p.ID]; exists {
		return domain.Product{}, domain.ConflictError{Entity: domain.EntityProduct, ID: p.ID}
	}
	tx.state.products = append(tx.state.products, p)
	tx.state.productIndex[p.ID] = len(tx.state.products) - 1
	tx.recordChange(domain.Change{Entity: domain.EntityProduct, Action: domain.ActionCreate, After: p})
	return p, nil
}

// UpdateProduct replaces the full record matching p.ID.
func (tx *Transaction) UpdateProduct(p domain.Product) (domain.Product, error) {
	i, ok := tx.state.productIndex[p.ID]
	if !ok {
		return domain.Product{}, domain.NotFoundError{Entity: domain.EntityProduct, ID: p.ID}
	}
	if p.Name == "" {
		return domain.Product{}, fmt.Errorf("product name required")
	}
	if p.Price.IsNegative() {
		return domain.Product{}, fmt.Errorf("product %q price must not be negative", p.Name)
	}
	if p.Quantity < 0 {
		return domain.Product{}, fmt.Errorf("product %q quantity must not be negative", p.Name)
	}
	if p.ReorderLevel < 0 {
		return domain.Product{}, fmt.Errorf("product %q reorder level must not be negative", p.Name)
	}
	before := tx.state.products[i]
	tx.state.products[i] = p
	tx.recordChange(domain.Change{Entity: domain.EntityProduct, Action: domain.ActionUpdate, Before: before, After: p})
	return p, nil
}

// DeleteProduct removes a product. Sales and notifications referencing it are
// left untouched; their weak references resolve to "not found" from then on.
func (tx *Transaction) DeleteProduct(id string) error {
	i, ok := tx.state.productIndex[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityProduct, ID: id}
	}
	before := tx.state.products[i]
	tx.state.products = append(tx.state.products[:i], tx.state.products[i+1:]...)
	tx.state.reindex()
	tx.recordChange(domain.Change{Entity: domain.EntityProduct, Action: domain.ActionDelete, Before: before})
	return nil
}

// RecordSale commits a draft sale: it verifies the draft, assigns identity
// and timestamp, prepends the sale, decrements product stock per item in
// entry order, and derives low-stock notifications in the same order. Stock
// is allowed to go negative here; the stock floor rule blocks the commit
// afterwards so the rejection carries a structured reason.
func (tx *Transaction) RecordSale(draft domain.SaleDraft) (domain.Sale, error) {
	if len(draft.Items) == 0 {
		return domain.Sale{}, fmt.Errorf("sale requires at least one item")
	}
	total := decimal.Zero
	for _, item := range draft.Items {
		if item.Quantity <= 0 {
			return domain.Sale{}, fmt.Errorf("sale item for product %q quantity must be positive", item.ProductID)
		}
		if _, ok := tx.state.productIndex[item.ProductID]; !ok {
			return domain.Sale{}, domain.NotFoundError{Entity: domain.EntityProduct, ID: item.ProductID}
		}
		total = total.Add(item.Subtotal())
	}
	if !draft.TotalAmount.Equal(total) {
		return domain.Sale{}, fmt.Errorf("sale total %s does not reconcile with line items (%s)", draft.TotalAmount, total)
	}

	sale := domain.Sale{
		ID:          tx.store.idFn(domain.EntitySale),
		Items:       append([]domain.SaleItem(nil), draft.Items...),
		TotalAmount: total,
		DateTime:    tx.now,
	}
	if draft.Customer != nil {
		c := *draft.Customer
		sale.Customer = &c
	}
	tx.state.sales = append([]domain.Sale{domain.CloneSale(sale)}, tx.state.sales...)
	tx.recordChange(domain.Change{Entity: domain.EntitySale, Action: domain.ActionCreate, After: domain.CloneSale(sale)})

	for _, item := range draft.Items {
		i := tx.state.productIndex[item.ProductID]
		before := tx.state.products[i]
		product := before
		product.Quantity -= item.Quantity
		tx.state.products[i] = product
		tx.recordChange(domain.Change{Entity: domain.EntityProduct, Action: domain.ActionUpdate, Before: before, After: product})

		if alert, ok := domain.DeriveLowStockAlert(product, product.Quantity, tx.state.notifications, tx.now, tx.store.idFn(domain.EntityNotification)); ok {
			tx.state.notifications = append(tx.state.notifications, alert)
			tx.recordChange(domain.Change{Entity: domain.EntityNotification, Action: domain.ActionCreate, After: alert})
		}
	}
	return domain.CloneSale(sale), nil
}

// MarkNotificationRead flips the notification's read flag to true. Marking an
// already-read notification is a no-op.
func (tx *Transaction) MarkNotificationRead(id string) (domain.Notification, error) {
	for i, n := range tx.state.notifications {
		if n.ID != id {
			continue
		}
		if n.Read {
			return n, nil
		}
		before := n
		n.Read = true
		tx.state.notifications[i] = n
		tx.recordChange(domain.Change{Entity: domain.EntityNotification, Action: domain.ActionUpdate, Before: before, After: n})
		return n, nil
	}
	return domain.Notification{}, domain.NotFoundError{Entity: domain.EntityNotification, ID: id}
}

// FindProduct retrieves a product by id from the transaction state.
func (tx *Transaction) FindProduct(id string) (domain.Product, bool) {
	i, ok := tx.state.productIndex[id]
	if !ok {
		return domain.Product{}, false
	}
	return tx.state.products[i], true
}

// Read helpers ---------------------------------------------------------------

// Snapshot returns a deep copy of the committed state as a persistence
// document. Calling Snapshot twice without an intervening command yields
// equal values.
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := domain.Snapshot{
		Products:      s.state.products,
		Sales:         s.state.sales,
		Notifications: s.state.notifications,
	}
	return snap.Clone()
}

// GetProduct retrieves a product by id from committed state.
func (s *Store) GetProduct(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.state.productIndex[id]
	if !ok {
		return domain.Product{}, false
	}
	return s.state.products[i], true
}

// ListProducts returns all products from committed state in insertion order.
func (s *Store) ListProducts() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, len(s.state.products))
	copy(out, s.state.products)
	return out
}

// ListSales returns all sales from committed state, most recent first.
func (s *Store) ListSales() []domain.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Sale, len(s.state.sales))
	for i, sale := range s.state.sales {
		out[i] = domain.CloneSale(sale)
	}
	return out
}

// ListNotifications returns all notifications from committed state.
func (s *Store) ListNotifications() []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Notification, len(s.state.notifications))
	copy(out, s.state.notifications)
	return out
}
