package memory

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-bank-ledger/pkg/wal"
)

// ErrLogClosed 寫入迴圈已停止
var ErrLogClosed = errors.New("movement log closed")

// appendRequest 寫入請求包裝 channel，讓 Append 可以等待結果
type appendRequest struct {
	txs    []*domain.Transaction
	result chan error
}

// MovementLog 記憶體交易紀錄 (單一寫入者)
//
// Append -> Channel -> run loop (唯一寫入者) -> WAL -> 索引更新 -> result channel -> Append 收到結果
//
// 查詢以 RWMutex 讀取索引；寫入只發生在 run loop 中。
// 同一個 ID 重複寫入會被忽略 (冪等)。
type MovementLog struct {
	mu        sync.RWMutex
	byID      map[string]*domain.Transaction
	byProduct map[string][]*domain.Transaction
	all       []*domain.Transaction

	// Write-Ahead Logging，nil 表示不落地
	wal *wal.WAL
	// 輸送帶
	requests chan *appendRequest
	// Pool 減少 GC 壓力
	requestPool sync.Pool
	done        chan struct{}
	startOnce   sync.Once
}

// NewMovementLog 建立交易紀錄，有 WAL 時先重放既有資料
//
// 參數:
//
//	w: Write-Ahead Log 實例，可為 nil
//
// 回傳:
//
//	*MovementLog: 尚未啟動，需呼叫 Start
//	error: WAL 重放錯誤
func NewMovementLog(w *wal.WAL) (*MovementLog, error) {
	l := &MovementLog{
		byID:      make(map[string]*domain.Transaction),
		byProduct: make(map[string][]*domain.Transaction),
		wal:       w,
		requests:  make(chan *appendRequest, 1000),
		requestPool: sync.Pool{
			New: func() any {
				return &appendRequest{result: make(chan error, 1)}
			},
		},
		done: make(chan struct{}),
	}
	if err := l.recoverFromWAL(); err != nil {
		return nil, err
	}
	return l, nil
}

// recoverFromWAL 單執行緒重放，不需要 Lock
func (l *MovementLog) recoverFromWAL() error {
	if l.wal == nil {
		return nil
	}
	return l.wal.Replay(func(raw json.RawMessage) error {
		var tx domain.Transaction
		if err := json.Unmarshal(raw, &tx); err != nil {
			return err
		}
		l.index(&tx)
		return nil
	})
}

// Start 啟動寫入迴圈 (非同步)，ctx 結束時把剩下的請求處理完再停止
func (l *MovementLog) Start(ctx context.Context) {
	l.startOnce.Do(func() {
		go l.run(ctx)
	})
}

func (l *MovementLog) run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			l.drain()
			return
		case req := <-l.requests:
			l.process(req)
		}
	}
}

func (l *MovementLog) drain() {
	for {
		select {
		case req := <-l.requests:
			l.process(req)
		default:
			return
		}
	}
}

// Done 寫入迴圈停止後關閉
func (l *MovementLog) Done() <-chan struct{} {
	return l.done
}

// Append 整批寫入，全部成功或全部失敗
func (l *MovementLog) Append(ctx context.Context, txs ...*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	req := l.requestPool.Get().(*appendRequest)
	req.txs = txs
	select {
	case <-req.result:
	default:
	}

	select {
	case l.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLogClosed
	}

	select {
	case err := <-req.result:
		req.txs = nil
		l.requestPool.Put(req)
		return err
	case <-l.done:
		// 迴圈在 drain 之後才關閉 done，此時結果必定已經送出
		select {
		case err := <-req.result:
			return err
		default:
			return ErrLogClosed
		}
	}
}

// process 只在 run loop 中執行
func (l *MovementLog) process(req *appendRequest) {
	fresh := make([]*domain.Transaction, 0, len(req.txs))
	l.mu.RLock()
	for _, tx := range req.txs {
		if _, ok := l.byID[tx.ID]; !ok {
			fresh = append(fresh, tx)
		}
	}
	l.mu.RUnlock()
	if len(fresh) == 0 {
		req.result <- nil
		return
	}

	// 1. 寫入 WAL (Critical Path)
	if l.wal != nil {
		records := make([]any, len(fresh))
		for i, tx := range fresh {
			records[i] = tx
		}
		if err := l.wal.Append(records...); err != nil {
			req.result <- err
			return
		}
	}

	// 2. 更新索引
	l.mu.Lock()
	for _, tx := range fresh {
		cp := *tx
		l.index(&cp)
	}
	l.mu.Unlock()

	req.result <- nil
}

func (l *MovementLog) index(tx *domain.Transaction) {
	if _, ok := l.byID[tx.ID]; ok {
		return
	}
	l.byID[tx.ID] = tx
	l.byProduct[tx.ProductID] = append(l.byProduct[tx.ProductID], tx)
	l.all = append(l.all, tx)
}

func (l *MovementLog) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	tx, ok := l.byID[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	cp := *tx
	return &cp, nil
}

func (l *MovementLog) FindByProduct(ctx context.Context, productID string) ([]*domain.Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return collect(l.byProduct[productID], func(*domain.Transaction) bool { return true }), nil
}

func (l *MovementLog) FindByCustomerBetween(ctx context.Context, customerID string, from, to time.Time) ([]*domain.Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return collect(l.all, func(tx *domain.Transaction) bool {
		return tx.CustomerID == customerID && within(tx.OccurredAt, from, to)
	}), nil
}

func (l *MovementLog) FindBetween(ctx context.Context, from, to time.Time) ([]*domain.Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return collect(l.all, func(tx *domain.Transaction) bool { return within(tx.OccurredAt, from, to) }), nil
}

func (l *MovementLog) CountByProductBetween(ctx context.Context, productID string, from, to time.Time) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	count := 0
	for _, tx := range l.byProduct[productID] {
		if within(tx.OccurredAt, from, to) {
			count++
		}
	}
	return count, nil
}

// within 閉區間 [from, to]
func within(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

// collect 複製符合條件的紀錄並依 OccurredAt 排序 (同時間保留寫入順序)
func collect(src []*domain.Transaction, keep func(*domain.Transaction) bool) []*domain.Transaction {
	out := make([]*domain.Transaction, 0)
	for _, tx := range src {
		if keep(tx) {
			cp := *tx
			out = append(out, &cp)
		}
	}
	slices.SortStableFunc(out, func(a, b *domain.Transaction) int { return a.OccurredAt.Compare(b.OccurredAt) })
	return out
}

var _ usecase.MovementLog = (*MovementLog)(nil)
