package usecase

import (
	"sync"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
)

// AccountLocks 以帳戶 ID 為 key 的互斥鎖
//
// 同一帳戶的存提款與轉帳在本程序內序列化；跨程序的衝突由 Repository 的版本號處理。
// 沒有人持有的鎖會被移除，避免 map 無限成長。
type AccountLocks struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

func NewAccountLocks() *AccountLocks {
	return &AccountLocks{locks: make(map[string]*refLock)}
}

// Lock 依 ID 排序後逐一上鎖，回傳解鎖函式
func (l *AccountLocks) Lock(ids ...string) (unlock func()) {
	ordered := domain.LockOrder(ids...)
	held := make([]*refLock, 0, len(ordered))
	for _, id := range ordered {
		rl := l.acquire(id)
		rl.mu.Lock()
		held = append(held, rl)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			l.release(ordered[i])
		}
	}
}

func (l *AccountLocks) acquire(id string) *refLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	rl, ok := l.locks[id]
	if !ok {
		rl = &refLock{}
		l.locks[id] = rl
	}
	rl.refs++
	return rl
}

func (l *AccountLocks) release(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rl := l.locks[id]
	rl.refs--
	if rl.refs == 0 {
		delete(l.locks, id)
	}
}

func (l *AccountLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
