package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/usecase"
)

// entityStore 沒有版本號的簡單 upsert 儲存，客戶、信用卡與貸款共用
type entityStore[T any] struct {
	items    map[string]T
	mu       sync.RWMutex
	idOf     func(*T) string
	notFound error
}

func newEntityStore[T any](idOf func(*T) string, notFound error) *entityStore[T] {
	return &entityStore[T]{
		items:    make(map[string]T),
		idOf:     idOf,
		notFound: notFound,
	}
}

func (s *entityStore[T]) find(id string) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, s.notFound
	}
	return &item, nil
}

func (s *entityStore[T]) filter(keep func(*T) bool) []*T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*T, 0, len(s.items))
	for _, item := range s.items {
		cp := item
		if keep(&cp) {
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *T) int { return strings.Compare(s.idOf(a), s.idOf(b)) })
	return out
}

func (s *entityStore[T]) save(item *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[s.idOf(item)] = *item
}

func (s *entityStore[T]) delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

func (s *entityStore[T]) exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[id]
	return ok
}

func all[T any](*T) bool { return true }

// CustomerStore 記憶體客戶資料
type CustomerStore struct {
	store *entityStore[domain.Customer]
}

func NewCustomerStore(seed ...*domain.Customer) *CustomerStore {
	s := &CustomerStore{
		store: newEntityStore(func(c *domain.Customer) string { return c.ID }, domain.ErrCustomerNotFound),
	}
	for _, c := range seed {
		s.store.save(c)
	}
	return s
}

func (s *CustomerStore) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	return s.store.find(id)
}

func (s *CustomerStore) FindAll(ctx context.Context) ([]*domain.Customer, error) {
	return s.store.filter(all[domain.Customer]), nil
}

func (s *CustomerStore) Save(ctx context.Context, customer *domain.Customer) error {
	s.store.save(customer)
	return nil
}

func (s *CustomerStore) DeleteByID(ctx context.Context, id string) error {
	s.store.delete(id)
	return nil
}

func (s *CustomerStore) ExistsByID(ctx context.Context, id string) (bool, error) {
	return s.store.exists(id), nil
}

// CardStore 記憶體信用卡資料
type CardStore struct {
	store *entityStore[domain.Card]
}

func NewCardStore(seed ...*domain.Card) *CardStore {
	s := &CardStore{
		store: newEntityStore(func(c *domain.Card) string { return c.ID }, domain.ErrCardNotFound),
	}
	for _, c := range seed {
		s.store.save(c)
	}
	return s
}

func (s *CardStore) FindByID(ctx context.Context, id string) (*domain.Card, error) {
	return s.store.find(id)
}

func (s *CardStore) FindAll(ctx context.Context) ([]*domain.Card, error) {
	return s.store.filter(all[domain.Card]), nil
}

func (s *CardStore) FindByCustomer(ctx context.Context, customerID string) ([]*domain.Card, error) {
	return s.store.filter(func(c *domain.Card) bool { return c.CustomerID == customerID }), nil
}

func (s *CardStore) Save(ctx context.Context, card *domain.Card) error {
	s.store.save(card)
	return nil
}

func (s *CardStore) DeleteByID(ctx context.Context, id string) error {
	s.store.delete(id)
	return nil
}

func (s *CardStore) ExistsByID(ctx context.Context, id string) (bool, error) {
	return s.store.exists(id), nil
}

// CreditStore 記憶體貸款資料
type CreditStore struct {
	store *entityStore[domain.Credit]
}

func NewCreditStore(seed ...*domain.Credit) *CreditStore {
	s := &CreditStore{
		store: newEntityStore(func(c *domain.Credit) string { return c.ID }, domain.ErrCreditNotFound),
	}
	for _, c := range seed {
		s.store.save(c)
	}
	return s
}

func (s *CreditStore) FindByID(ctx context.Context, id string) (*domain.Credit, error) {
	return s.store.find(id)
}

func (s *CreditStore) FindAll(ctx context.Context) ([]*domain.Credit, error) {
	return s.store.filter(all[domain.Credit]), nil
}

func (s *CreditStore) FindByCustomer(ctx context.Context, customerID string) ([]*domain.Credit, error) {
	return s.store.filter(func(c *domain.Credit) bool { return c.CustomerID == customerID }), nil
}

func (s *CreditStore) Save(ctx context.Context, credit *domain.Credit) error {
	s.store.save(credit)
	return nil
}

func (s *CreditStore) DeleteByID(ctx context.Context, id string) error {
	s.store.delete(id)
	return nil
}

func (s *CreditStore) ExistsByID(ctx context.Context, id string) (bool, error) {
	return s.store.exists(id), nil
}

var (
	_ usecase.CustomerRepository = (*CustomerStore)(nil)
	_ usecase.CardRepository     = (*CardStore)(nil)
	_ usecase.CreditRepository   = (*CreditStore)(nil)
)
