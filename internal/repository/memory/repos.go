package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/internal/repository"
	"github.com/harvesthub/marketplace/pkg/errors"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("User.Create"); err != nil {
		return err
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return &errors.ErrConflict{Message: "User with this email already exists"}
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = domain.UserRoleCustomer
	}
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "user", ID: id.String()}
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "user", ID: email}
}

func (r *userRepo) UpdateRole(ctx context.Context, id uuid.UUID, role domain.UserRole) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "user", ID: id.String()}
	}
	u.Role = role
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u
	return nil
}

type vendorRepo struct{ s *Store }

func (r *vendorRepo) Create(ctx context.Context, vendor *domain.Vendor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.vendors {
		if v.UserID == vendor.UserID {
			return &errors.ErrConflict{Message: "You already have a vendor application"}
		}
	}
	if vendor.ID == uuid.Nil {
		vendor.ID = uuid.New()
	}
	if vendor.Status == "" {
		vendor.Status = domain.VendorStatusPending
	}
	vendor.CreatedAt = r.s.now()
	vendor.UpdatedAt = vendor.CreatedAt
	r.s.vendors[vendor.ID] = *vendor
	return nil
}

func (r *vendorRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Vendor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vendors[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "vendor", ID: id.String()}
	}
	return &v, nil
}

func (r *vendorRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Vendor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.vendors {
		if v.UserID == userID {
			v := v
			return &v, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "vendor", ID: userID.String()}
}

func (r *vendorRepo) List(ctx context.Context, status *domain.VendorStatus) ([]*domain.Vendor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Vendor
	for _, v := range r.s.vendors {
		if status != nil && v.Status != *status {
			continue
		}
		v := v
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *vendorRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.VendorStatus, isActive bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vendors[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "vendor", ID: id.String()}
	}
	v.Status = status
	v.IsActive = isActive
	v.UpdatedAt = r.s.now()
	r.s.vendors[id] = v
	return nil
}

func (r *vendorRepo) AddSales(ctx context.Context, id uuid.UUID, gross decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("Vendor.AddSales"); err != nil {
		return err
	}
	v, ok := r.s.vendors[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "vendor", ID: id.String()}
	}
	v.TotalSales = v.TotalSales.Add(gross)
	v.TotalOrders++
	r.s.vendors[id] = v
	return nil
}

type categoryRepo struct{ s *Store }

func (r *categoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "category", ID: id.String()}
	}
	return &c, nil
}

func (r *categoryRepo) ListActive(ctx context.Context) ([]*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Category
	for _, c := range r.s.categories {
		if !c.IsActive {
			continue
		}
		c := c
		c.ProductCount = 0
		for _, p := range r.s.products {
			if p.CategoryID == c.ID && p.Status == domain.ProductStatusActive {
				c.ProductCount++
			}
		}
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type productRepo struct{ s *Store }

func (r *productRepo) Create(ctx context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.Slug == product.Slug {
			return &errors.ErrValidation{Message: "Product slug already exists"}
		}
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.Status == "" {
		product.Status = domain.ProductStatusDraft
	}
	product.CreatedAt = r.s.now()
	product.UpdatedAt = product.CreatedAt
	r.s.products[product.ID] = *product
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProductListing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	return r.s.listing(p), nil
}

func (r *productRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.Slug == slug {
			p := p
			return &p, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "product", ID: slug}
}

func (r *productRepo) ListActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("Product.ListActiveByIDs"); err != nil {
		return nil, err
	}
	seen := make(map[uuid.UUID]bool)
	var out []*domain.Product
	for _, id := range ids {
		p, ok := r.s.products[id]
		if !ok || seen[id] || p.Status != domain.ProductStatusActive {
			continue
		}
		seen[id] = true
		out = append(out, &p)
	}
	return out, nil
}

func (r *productRepo) ListPublic(ctx context.Context, filter repository.ProductFilter) ([]*domain.ProductListing, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var matched []*domain.ProductListing
	for _, p := range r.s.products {
		if p.Status != domain.ProductStatusActive || p.StockQuantity <= 0 {
			continue
		}
		v, ok := r.s.vendors[p.VendorID]
		if !ok || v.Status != domain.VendorStatusApproved || !v.IsActive {
			continue
		}
		c := r.s.categories[p.CategoryID]
		if filter.CategorySlug != "" && filter.CategorySlug != "all" && c.Slug != filter.CategorySlug {
			continue
		}
		if search != "" {
			haystack := strings.ToLower(strings.Join([]string{
				p.Name, deref(p.ShortDesc), deref(p.Description), p.Tags, v.BusinessName,
			}, "\n"))
			if !strings.Contains(haystack, search) {
				continue
			}
		}
		matched = append(matched, r.s.listing(p))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	start := min(filter.Offset, total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}
	return matched[start:end], total, nil
}

func (r *productRepo) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Product
	for _, p := range r.s.products {
		if p.VendorID == vendorID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *productRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("Product.DecrementStock"); err != nil {
		return 0, err
	}
	p, ok := r.s.products[id]
	if !ok {
		return 0, &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	previous := p.StockQuantity
	p.StockQuantity = max(p.StockQuantity-qty, 0)
	p.Sales += qty
	r.s.products[id] = p
	return previous, nil
}

func (s *Store) listing(p domain.Product) *domain.ProductListing {
	l := &domain.ProductListing{Product: p}
	if v, ok := s.vendors[p.VendorID]; ok {
		l.VendorName = v.BusinessName
	}
	if c, ok := s.categories[p.CategoryID]; ok {
		l.CategoryName = c.Name
		l.CategorySlug = c.Slug
	}
	sum := 0
	for _, rv := range s.reviews {
		if rv.ProductID == p.ID && rv.Status == domain.ReviewStatusApproved {
			sum += rv.Rating
			l.ReviewCount++
		}
	}
	if l.ReviewCount > 0 {
		l.AverageRating = float64(sum) / float64(l.ReviewCount)
	}
	return l
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type orderRepo struct{ s *Store }

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("Order.Create"); err != nil {
		return err
	}
	for _, o := range r.s.orders {
		if o.PaymentReference == order.PaymentReference || o.OrderNumber == order.OrderNumber {
			return &errors.ErrConflict{Message: "order reference already exists"}
		}
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = domain.PaymentStatusPending
	}
	order.CreatedAt = r.s.now()
	order.UpdatedAt = order.CreatedAt
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
		order.Items[i].CreatedAt = order.CreatedAt
	}

	stored := *order
	stored.Items = append([]domain.OrderItem(nil), order.Items...)
	stored.ShippingAddress = nil
	r.s.orders[order.ID] = stored
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	return r.hydrate(o), nil
}

func (r *orderRepo) GetByPaymentReference(ctx context.Context, reference string) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("Order.GetByPaymentReference"); err != nil {
		return nil, err
	}
	for _, o := range r.s.orders {
		if o.PaymentReference == reference {
			return r.hydrate(o), nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: reference}
}

func (r *orderRepo) hydrate(o domain.Order) *domain.Order {
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	if a, ok := r.s.addresses[o.ShippingAddressID]; ok {
		o.ShippingAddress = &a
	}
	return &o
}

func (r *orderRepo) MarkPaid(ctx context.Context, id uuid.UUID, gatewayReference string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("Order.MarkPaid"); err != nil {
		return false, err
	}
	o, ok := r.s.orders[id]
	if !ok || o.PaymentStatus != domain.PaymentStatusPending || o.Status != domain.OrderStatusPending {
		return false, nil
	}
	o.Status = domain.OrderStatusConfirmed
	o.PaymentStatus = domain.PaymentStatusPaid
	o.GatewayReference = &gatewayReference
	o.UpdatedAt = r.s.now()
	r.s.orders[id] = o
	return true, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("Order.UpdateStatus"); err != nil {
		return false, err
	}
	o, ok := r.s.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	o.UpdatedAt = r.s.now()
	r.s.orders[id] = o
	return true, nil
}

func (r *orderRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.s.orders {
		if o.CustomerID == customerID {
			out = append(out, r.hydrate(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	start := min(offset, len(out))
	end := len(out)
	if limit > 0 {
		end = min(start+limit, len(out))
	}
	return out[start:end], nil
}

func (r *orderRepo) ListRecent(ctx context.Context, limit int) ([]*domain.RecentOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.RecentOrder
	for _, o := range r.s.orders {
		u := r.s.users[o.CustomerID]
		out = append(out, &domain.RecentOrder{
			ID:            o.ID,
			OrderNumber:   o.OrderNumber,
			Status:        o.Status,
			PaymentStatus: o.PaymentStatus,
			Total:         o.Total,
			CustomerName:  u.Name,
			CustomerEmail: u.Email,
			ItemCount:     len(o.Items),
			CreatedAt:     o.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *orderRepo) HasDeliveredPurchase(ctx context.Context, customerID, productID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.CustomerID != customerID || o.Status != domain.OrderStatusDelivered {
			continue
		}
		for _, item := range o.Items {
			if item.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

type addressRepo struct{ s *Store }

func (r *addressRepo) Create(ctx context.Context, address *domain.ShippingAddress) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("ShippingAddress.Create"); err != nil {
		return err
	}
	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}
	address.CreatedAt = r.s.now()
	r.s.addresses[address.ID] = *address
	return nil
}

func (r *addressRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ShippingAddress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.addresses[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "shipping_address", ID: id.String()}
	}
	return &a, nil
}

type payoutRepo struct{ s *Store }

func (r *payoutRepo) CreateIfAbsent(ctx context.Context, payout *domain.VendorPayout) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("Payout.CreateIfAbsent"); err != nil {
		return false, err
	}
	for _, p := range r.s.payouts {
		if p.VendorID == payout.VendorID && p.OrderID == payout.OrderID {
			return false, nil
		}
	}
	if payout.ID == uuid.Nil {
		payout.ID = uuid.New()
	}
	if payout.Status == "" {
		payout.Status = domain.PayoutStatusPending
	}
	payout.CreatedAt = r.s.now()
	r.s.payouts[payout.ID] = *payout
	return true, nil
}

func (r *payoutRepo) ListByVendor(ctx context.Context, vendorID uuid.UUID, limit int) ([]*domain.VendorPayout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.VendorPayout
	for _, p := range r.s.payouts {
		if p.VendorID == vendorID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type reviewRepo struct{ s *Store }

func (r *reviewRepo) Create(ctx context.Context, review *domain.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rv := range r.s.reviews {
		if rv.UserID == review.UserID && rv.ProductID == review.ProductID {
			return &errors.ErrValidation{Message: "You have already reviewed this product"}
		}
	}
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	if review.Status == "" {
		review.Status = domain.ReviewStatusPending
	}
	review.CreatedAt = r.s.now()
	review.UpdatedAt = review.CreatedAt
	r.s.reviews[review.ID] = *review
	return nil
}

func (r *reviewRepo) withUser(rv domain.Review) *domain.Review {
	rv.UserName = r.s.users[rv.UserID].Name
	return &rv
}

func (r *reviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rv, ok := r.s.reviews[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "review", ID: id.String()}
	}
	return r.withUser(rv), nil
}

func (r *reviewRepo) GetByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*domain.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rv := range r.s.reviews {
		if rv.UserID == userID && rv.ProductID == productID {
			return r.withUser(rv), nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "review", ID: productID.String()}
}

func (r *reviewRepo) ListApprovedByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]*domain.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Review
	for _, rv := range r.s.reviews {
		if rv.ProductID == productID && rv.Status == domain.ReviewStatusApproved {
			out = append(out, r.withUser(rv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *reviewRepo) ListByStatus(ctx context.Context, status *domain.ReviewStatus) ([]*domain.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Review
	for _, rv := range r.s.reviews {
		if status == nil || rv.Status == *status {
			out = append(out, r.withUser(rv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *reviewRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReviewStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rv, ok := r.s.reviews[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "review", ID: id.String()}
	}
	rv.Status = status
	rv.UpdatedAt = r.s.now()
	r.s.reviews[id] = rv
	return nil
}

func (r *reviewRepo) Stats(ctx context.Context, productID uuid.UUID) (*domain.ReviewStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var stats domain.ReviewStats
	sum := 0
	for _, rv := range r.s.reviews {
		if rv.ProductID != productID || rv.Status != domain.ReviewStatusApproved {
			continue
		}
		if rv.Rating >= 1 && rv.Rating <= 5 {
			stats.RatingDistribution[rv.Rating-1]++
		}
		stats.TotalReviews++
		sum += rv.Rating
	}
	if stats.TotalReviews > 0 {
		stats.AverageRating = float64(sum) / float64(stats.TotalReviews)
	}
	return &stats, nil
}

type idempotencyRepo struct{ s *Store }

func (r *idempotencyRepo) GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k, ok := r.s.idempotency[key]
	if !ok {
		return nil, nil
	}
	return &k, nil
}

func (r *idempotencyRepo) Create(ctx context.Context, key *domain.IdempotencyKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.idempotency[key.Key]; ok {
		return &errors.ErrConflict{Message: "Idempotency key already used"}
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = r.s.now()
	}
	r.s.idempotency[key.Key] = *key
	return nil
}

type eventRepo struct{ s *Store }

func (r *eventRepo) Create(ctx context.Context, event *domain.OrderEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("OrderEvent.Create"); err != nil {
		return err
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = r.s.now()
	}
	r.s.events = append(r.s.events, *event)
	return nil
}

func (r *eventRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.OrderEvent
	for _, e := range r.s.events {
		if e.OrderID == orderID {
			e := e
			out = append(out, &e)
		}
	}
	return out, nil
}

func (r *eventRepo) ListUnpublished(ctx context.Context, limit int) ([]*domain.OrderEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("OrderEvent.ListUnpublished"); err != nil {
		return nil, err
	}
	var out []*domain.OrderEvent
	for _, e := range r.s.events {
		if e.PublishedAt != nil {
			continue
		}
		e := e
		out = append(out, &e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *eventRepo) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.events {
		if r.s.events[i].ID == id && r.s.events[i].PublishedAt == nil {
			r.s.events[i].PublishedAt = &at
			return nil
		}
	}
	return &errors.ErrNotFound{Resource: "order_event", ID: id.String()}
}

type statsRepo struct{ s *Store }

func (r *statsRepo) Platform(ctx context.Context) (*domain.PlatformStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := &domain.PlatformStats{
		TotalUsers:   len(r.s.users),
		TotalVendors: len(r.s.vendors),
		TotalOrders:  len(r.s.orders),
		TotalRevenue: decimal.Zero,
	}
	for _, v := range r.s.vendors {
		if v.Status == domain.VendorStatusPending {
			stats.PendingVendors++
		}
	}
	for _, o := range r.s.orders {
		if o.PaymentStatus == domain.PaymentStatusPaid {
			stats.TotalRevenue = stats.TotalRevenue.Add(o.Total)
		}
	}
	for _, p := range r.s.products {
		stats.TotalProducts++
		switch p.Status {
		case domain.ProductStatusActive:
			stats.ActiveProducts++
		case domain.ProductStatusDraft:
			stats.DraftProducts++
		}
	}
	for _, rv := range r.s.reviews {
		switch rv.Status {
		case domain.ReviewStatusPending:
			stats.PendingReviews++
		case domain.ReviewStatusApproved:
			stats.ApprovedReviews++
		case domain.ReviewStatusRejected:
			stats.RejectedReviews++
		}
	}
	return stats, nil
}

func (r *statsRepo) Period(ctx context.Context, from, to time.Time) (*domain.PeriodTotals, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	totals := &domain.PeriodTotals{Revenue: decimal.Zero}
	for _, o := range r.s.orders {
		if o.CreatedAt.Before(from) || !o.CreatedAt.Before(to) {
			continue
		}
		totals.Orders++
		if o.PaymentStatus == domain.PaymentStatusPaid {
			totals.Revenue = totals.Revenue.Add(o.Total)
		}
	}
	return totals, nil
}

func (r *statsRepo) TopVendors(ctx context.Context, limit int) ([]*domain.TopVendor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.TopVendor
	for _, v := range r.s.vendors {
		if v.Status != domain.VendorStatusApproved {
			continue
		}
		out = append(out, &domain.TopVendor{
			ID:           v.ID,
			BusinessName: v.BusinessName,
			TotalSales:   v.TotalSales,
			TotalOrders:  v.TotalOrders,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TotalSales.Equal(out[j].TotalSales) {
			return out[i].TotalSales.GreaterThan(out[j].TotalSales)
		}
		return out[i].BusinessName < out[j].BusinessName
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *statsRepo) Vendor(ctx context.Context, vendorID uuid.UUID) (*domain.VendorStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := &domain.VendorStats{TotalRevenue: decimal.Zero, PendingPayouts: decimal.Zero}
	for _, p := range r.s.products {
		if p.VendorID == vendorID {
			stats.TotalProducts++
		}
	}
	for _, o := range r.s.orders {
		involved := false
		for _, item := range o.Items {
			if item.VendorID != vendorID {
				continue
			}
			involved = true
			if o.PaymentStatus == domain.PaymentStatusPaid {
				stats.TotalRevenue = stats.TotalRevenue.Add(item.Total)
			}
		}
		if !involved {
			continue
		}
		stats.TotalOrders++
		switch o.Status {
		case domain.OrderStatusPending, domain.OrderStatusConfirmed, domain.OrderStatusProcessing:
			stats.PendingOrders++
		}
	}
	for _, p := range r.s.payouts {
		if p.VendorID == vendorID && p.Status == domain.PayoutStatusPending {
			stats.PendingPayouts = stats.PendingPayouts.Add(p.Amount)
		}
	}
	return stats, nil
}
