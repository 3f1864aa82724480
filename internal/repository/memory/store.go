// Package memory is an in-process implementation of the repository interfaces.
// Transactions are serialized and roll back by restoring a snapshot.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/internal/repository"
)

// Store holds every table in maps keyed by primary key
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	tick int64

	users       map[uuid.UUID]domain.User
	vendors     map[uuid.UUID]domain.Vendor
	categories  map[uuid.UUID]domain.Category
	products    map[uuid.UUID]domain.Product
	orders      map[uuid.UUID]domain.Order
	addresses   map[uuid.UUID]domain.ShippingAddress
	payouts     map[uuid.UUID]domain.VendorPayout
	reviews     map[uuid.UUID]domain.Review
	idempotency map[string]domain.IdempotencyKey
	events      []domain.OrderEvent

	failures map[string]error
	repos    *repository.Repositories
}

// NewStore creates an empty store
func NewStore() *Store {
	s := &Store{
		users:       make(map[uuid.UUID]domain.User),
		vendors:     make(map[uuid.UUID]domain.Vendor),
		categories:  make(map[uuid.UUID]domain.Category),
		products:    make(map[uuid.UUID]domain.Product),
		orders:      make(map[uuid.UUID]domain.Order),
		addresses:   make(map[uuid.UUID]domain.ShippingAddress),
		payouts:     make(map[uuid.UUID]domain.VendorPayout),
		reviews:     make(map[uuid.UUID]domain.Review),
		idempotency: make(map[string]domain.IdempotencyKey),
		failures:    make(map[string]error),
	}
	s.repos = &repository.Repositories{
		User:            &userRepo{s},
		Vendor:          &vendorRepo{s},
		Category:        &categoryRepo{s},
		Product:         &productRepo{s},
		Order:           &orderRepo{s},
		ShippingAddress: &addressRepo{s},
		Payout:          &payoutRepo{s},
		Review:          &reviewRepo{s},
		IdempotencyKey:  &idempotencyRepo{s},
		OrderEvent:      &eventRepo{s},
		Stats:           &statsRepo{s},
		Tx:              s,
	}
	return s
}

// Repositories returns the repository set backed by this store
func (s *Store) Repositories() *repository.Repositories {
	return s.repos
}

// FailOn makes the named operation (e.g. "Order.MarkPaid") return err until cleared with a nil err
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// WithinTx serializes transactions and restores the pre-transaction state when fn fails
func (s *Store) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := s.snapshot()
	s.mu.Unlock()

	if err := fn(ctx, s.repos); err != nil {
		s.mu.Lock()
		s.restore(snap)
		s.mu.Unlock()
		return err
	}
	return nil
}

type snapshot struct {
	users       map[uuid.UUID]domain.User
	vendors     map[uuid.UUID]domain.Vendor
	categories  map[uuid.UUID]domain.Category
	products    map[uuid.UUID]domain.Product
	orders      map[uuid.UUID]domain.Order
	addresses   map[uuid.UUID]domain.ShippingAddress
	payouts     map[uuid.UUID]domain.VendorPayout
	reviews     map[uuid.UUID]domain.Review
	idempotency map[string]domain.IdempotencyKey
	events      []domain.OrderEvent
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		users:       copyMap(s.users),
		vendors:     copyMap(s.vendors),
		categories:  copyMap(s.categories),
		products:    copyMap(s.products),
		orders:      copyMap(s.orders),
		addresses:   copyMap(s.addresses),
		payouts:     copyMap(s.payouts),
		reviews:     copyMap(s.reviews),
		idempotency: copyMap(s.idempotency),
		events:      append([]domain.OrderEvent(nil), s.events...),
	}
}

func (s *Store) restore(snap snapshot) {
	s.users = snap.users
	s.vendors = snap.vendors
	s.categories = snap.categories
	s.products = snap.products
	s.orders = snap.orders
	s.addresses = snap.addresses
	s.payouts = snap.payouts
	s.reviews = snap.reviews
	s.idempotency = snap.idempotency
	s.events = snap.events
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// now returns strictly increasing timestamps so ordering by created_at is stable
func (s *Store) now() time.Time {
	s.tick++
	return time.Now().Add(time.Duration(s.tick) * time.Microsecond)
}

func (s *Store) fault(op string) error {
	return s.failures[op]
}

// PutUser inserts or replaces a user
func (s *Store) PutUser(u domain.User) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = domain.UserRoleCustomer
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	s.users[u.ID] = u
	return u
}

// PutVendor inserts or replaces a vendor
func (s *Store) PutVendor(v domain.Vendor) domain.Vendor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.Status == "" {
		v.Status = domain.VendorStatusApproved
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = s.now()
	}
	s.vendors[v.ID] = v
	return v
}

// PutCategory inserts or replaces a category
func (s *Store) PutCategory(c domain.Category) domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Slug == "" {
		c.Slug = domain.Slugify(c.Name)
	}
	s.categories[c.ID] = c
	return c
}

// PutProduct inserts or replaces a product
func (s *Store) PutProduct(p domain.Product) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Slug == "" {
		p.Slug = domain.Slugify(p.Name) + "-" + p.ID.String()[:8]
	}
	if p.Status == "" {
		p.Status = domain.ProductStatusActive
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	s.products[p.ID] = p
	return p
}

// PutOrder inserts or replaces an order together with its items
func (s *Store) PutOrder(o domain.Order) domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now()
	}
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}
	o.ShippingAddress = nil
	s.orders[o.ID] = o
	return o
}

// PutReview inserts or replaces a review
func (s *Store) PutReview(r domain.Review) domain.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	s.reviews[r.ID] = r
	return r
}

// Product returns a stored product by id
func (s *Store) Product(id uuid.UUID) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p, ok
}

// Vendor returns a stored vendor by id
func (s *Store) Vendor(id uuid.UUID) (domain.Vendor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vendors[id]
	return v, ok
}

// Payouts returns every stored payout for an order
func (s *Store) Payouts(orderID uuid.UUID) []domain.VendorPayout {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.VendorPayout
	for _, p := range s.payouts {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out
}

// Events returns stored events of the given type for an order
func (s *Store) Events(orderID uuid.UUID, eventType string) []domain.OrderEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.OrderEvent
	for _, e := range s.events {
		if e.OrderID == orderID && e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Counts reports how many orders and shipping addresses are stored
func (s *Store) Counts() (orders, addresses int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders), len(s.addresses)
}
