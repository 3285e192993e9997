package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"order-management-service/internal/entity"
	"order-management-service/internal/repository"
)

// fakeStore backs both store interfaces with in-memory maps. Its mutex is
// held for the lifetime of a unit of work, standing in for the database's
// row locks: concurrent units of work serialize, and staged writes become
// visible only on commit.
type fakeStore struct {
	mu       sync.Mutex
	products map[string]*entity.Product
	orders   map[string]*entity.Order
	clock    time.Time

	beginErr  error
	insertErr error
}

func newFakeStore(products ...*entity.Product) *fakeStore {
	s := &fakeStore{
		products: make(map[string]*entity.Product),
		orders:   make(map[string]*entity.Order),
		clock:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, p := range products {
		cp := *p
		s.products[p.ID] = &cp
	}
	return s
}

func (s *fakeStore) stock(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].StockQuantity
}

func (s *fakeStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// tick hands out strictly increasing timestamps so list ordering is
// deterministic.
func (s *fakeStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

type fakeTx struct {
	store      *fakeStore
	decrements map[string]int
	order      *entity.Order
	items      []entity.OrderItem
	done       bool
}

func (s *fakeStore) BeginTx(ctx context.Context) (repository.Tx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	s.mu.Lock()
	return &fakeTx{store: s, decrements: make(map[string]int)}, nil
}

func (t *fakeTx) Commit() error {
	if t.done {
		return errors.New("tx already finished")
	}
	t.done = true
	for id, qty := range t.decrements {
		t.store.products[id].StockQuantity -= qty
	}
	if t.order != nil {
		o := *t.order
		o.Items = append([]entity.OrderItem(nil), t.items...)
		o.CreatedAt = t.store.tick()
		o.UpdatedAt = o.CreatedAt
		t.store.orders[o.ID] = &o
	}
	t.store.mu.Unlock()
	return nil
}

func (t *fakeTx) Rollback() error {
	if t.done {
		return errors.New("tx already finished")
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

func (s *fakeStore) asFakeTx(tx repository.Tx) (*fakeTx, error) {
	t, ok := tx.(*fakeTx)
	if !ok || t.store != s {
		return nil, errors.New("tx does not originate from this store")
	}
	return t, nil
}

// CatalogStore

func (s *fakeStore) GetActiveProduct(ctx context.Context, id string) (*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || !p.IsActive {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) ListActive(ctx context.Context, category string) ([]*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Product
	for _, p := range s.products {
		if !p.IsActive {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *fakeStore) LockProductForUpdate(ctx context.Context, tx repository.Tx, id string) (*entity.Product, error) {
	t, err := s.asFakeTx(tx)
	if err != nil {
		return nil, err
	}
	p, ok := s.products[id]
	if !ok || !p.IsActive {
		return nil, repository.ErrNotFound
	}
	cp := *p
	// Earlier lines of the same unit of work already consumed some stock.
	cp.StockQuantity -= t.decrements[id]
	return &cp, nil
}

func (s *fakeStore) DecrementStock(ctx context.Context, tx repository.Tx, id string, quantity int) error {
	t, err := s.asFakeTx(tx)
	if err != nil {
		return err
	}
	p, ok := s.products[id]
	if !ok || p.StockQuantity-t.decrements[id] < quantity {
		return repository.ErrNotFound
	}
	t.decrements[id] += quantity
	return nil
}

// OrderStore

func (s *fakeStore) InsertOrderWithItems(ctx context.Context, tx repository.Tx, order *entity.Order, items []entity.OrderItem) error {
	t, err := s.asFakeTx(tx)
	if err != nil {
		return err
	}
	if s.insertErr != nil {
		return s.insertErr
	}
	o := *order
	t.order = &o
	t.items = append([]entity.OrderItem(nil), items...)
	return nil
}

func (s *fakeStore) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	cp.Items = make([]entity.OrderItem, len(o.Items))
	for i, item := range o.Items {
		cp.Items[i] = item
		if p, ok := s.products[item.ProductID]; ok {
			cp.Items[i].ProductName = p.Name
			cp.Items[i].ProductDescription = p.Description
			cp.Items[i].ProductImage = p.ImageURL
		}
	}
	return &cp, nil
}

func (s *fakeStore) UpdateStatus(ctx context.Context, id string, upd entity.UpdateOrderStatusRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	if upd.Status != nil {
		o.Status = *upd.Status
	}
	if upd.PaymentStatus != nil {
		o.PaymentStatus = *upd.PaymentStatus
	}
	o.UpdatedAt = s.tick()
	return nil
}

func (s *fakeStore) List(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*entity.Order
	for _, o := range s.orders {
		if filter.CustomerEmail != "" && !strings.EqualFold(o.CustomerEmail, filter.CustomerEmail) {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.PaymentStatus != "" && o.PaymentStatus != filter.PaymentStatus {
			continue
		}
		cp := *o
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

// capturingPublisher records published events.
type capturingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *capturingPublisher) PublishOrderEvent(ctx context.Context, order *entity.Order, event string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event+":"+order.ID)
	return nil
}

func (p *capturingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}
