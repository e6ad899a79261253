package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/usecase"
)

// AccountStore 以 RWMutex 保護的記憶體帳戶資料
//
// 結構:
//
//	accounts: 帳戶 ID 對應的帳戶 (存放的是拷貝，不會與呼叫端共用指標)
//	mu: 讀寫鎖
type AccountStore struct {
	accounts map[string]*domain.Account
	mu       sync.RWMutex
}

// NewAccountStore 建立記憶體帳戶資料，seed 中的帳戶會直接載入 (Version 至少為 1)
func NewAccountStore(seed ...*domain.Account) *AccountStore {
	s := &AccountStore{accounts: make(map[string]*domain.Account, len(seed))}
	for _, acc := range seed {
		cp := acc.Clone()
		if cp.Version == 0 {
			cp.Version = 1
		}
		s.accounts[cp.ID] = cp
	}
	return s
}

func (s *AccountStore) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return acc.Clone(), nil
}

func (s *AccountStore) FindAll(ctx context.Context) ([]*domain.Account, error) {
	return s.filter(func(*domain.Account) bool { return true }), nil
}

func (s *AccountStore) FindByCustomer(ctx context.Context, customerID string) ([]*domain.Account, error) {
	return s.filter(func(a *domain.Account) bool { return a.CustomerID == customerID }), nil
}

func (s *AccountStore) filter(keep func(*domain.Account) bool) []*domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		if keep(acc) {
			out = append(out, acc.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *domain.Account) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// Save upsert 帳戶
//
// Version == 0 表示新增，ID 已存在時回傳 ErrConcurrentUpdate；
// 否則必須與目前版本相同才會寫入。成功後 account.Version 遞增。
func (s *AccountStore) Save(ctx context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.accounts[account.ID]
	switch {
	case account.Version == 0 && exists:
		return domain.ErrConcurrentUpdate
	case account.Version != 0 && (!exists || current.Version != account.Version):
		return domain.ErrConcurrentUpdate
	}

	stored := account.Clone()
	stored.Version = account.Version + 1
	s.accounts[account.ID] = stored
	account.Version = stored.Version
	return nil
}

// DeleteByID 刪除帳戶，不存在時不做任何事
func (s *AccountStore) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, id)
	return nil
}

func (s *AccountStore) ExistsByID(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[id]
	return ok, nil
}

var _ usecase.AccountRepository = (*AccountStore)(nil)
