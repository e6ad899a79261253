package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
)

// AccountRepository 帳戶持久化介面
//
// FindByID 找不到時回傳 domain.ErrAccountNotFound。
// Save 為 upsert：Version == 0 視為新增，否則以 Version 做樂觀鎖，
// 版本不符回傳 domain.ErrConcurrentUpdate。成功後 account.Version 會被更新。
// DeleteByID 刪除不存在的 id 不是錯誤。
type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindAll(ctx context.Context) ([]*domain.Account, error)
	FindByCustomer(ctx context.Context, customerID string) ([]*domain.Account, error)
	Save(ctx context.Context, account *domain.Account) error
	DeleteByID(ctx context.Context, id string) error
	ExistsByID(ctx context.Context, id string) (bool, error)
}

// CustomerRepository 客戶持久化介面 (語意同 AccountRepository，沒有版本號)
type CustomerRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
	FindAll(ctx context.Context) ([]*domain.Customer, error)
	Save(ctx context.Context, customer *domain.Customer) error
	DeleteByID(ctx context.Context, id string) error
	ExistsByID(ctx context.Context, id string) (bool, error)
}

// CardRepository 信用卡持久化介面
type CardRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Card, error)
	FindAll(ctx context.Context) ([]*domain.Card, error)
	FindByCustomer(ctx context.Context, customerID string) ([]*domain.Card, error)
	Save(ctx context.Context, card *domain.Card) error
	DeleteByID(ctx context.Context, id string) error
	ExistsByID(ctx context.Context, id string) (bool, error)
}

// CreditRepository 貸款持久化介面
type CreditRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Credit, error)
	FindAll(ctx context.Context) ([]*domain.Credit, error)
	FindByCustomer(ctx context.Context, customerID string) ([]*domain.Credit, error)
	Save(ctx context.Context, credit *domain.Credit) error
	DeleteByID(ctx context.Context, id string) error
	ExistsByID(ctx context.Context, id string) (bool, error)
}

// CustomerDirectory 客戶資料查詢 (本地或遠端)
type CustomerDirectory interface {
	FindByID(ctx context.Context, customerID string) (*domain.Customer, error)
}

// CardDirectory 信用卡持有查詢 (本地或遠端)
type CardDirectory interface {
	HasAnyCard(ctx context.Context, customerID string) (bool, error)
}

// MovementCounter 計算帳戶在某月份的交易次數
type MovementCounter interface {
	CountAccountTransactionsThisMonth(ctx context.Context, accountID string, month domain.YearMonth) (int, error)
}

// DailyAverager 當月至今的日均餘額
//
// accountID 為空字串時回傳該客戶所有產品日均的加總。
type DailyAverager interface {
	MonthToDateDailyAverage(ctx context.Context, customerID, accountID string) (decimal.Decimal, error)
}

// MovementRecorder 寫入交易紀錄，手續費併入同一筆紀錄
type MovementRecorder interface {
	RecordDeposit(ctx context.Context, account *domain.Account, amount, fee decimal.Decimal) (*domain.Transaction, error)
	RecordWithdraw(ctx context.Context, account *domain.Account, amount, fee decimal.Decimal) (*domain.Transaction, error)
	RecordTransfer(ctx context.Context, from, to *domain.Account, amount decimal.Decimal) ([]*domain.Transaction, error)
}

// MovementLog 交易紀錄儲存 (append-only)
//
// Append 必須是原子的：整批寫入或全部失敗。
// 查詢區間皆為閉區間 [from, to]，依 OccurredAt 排序。
type MovementLog interface {
	Append(ctx context.Context, txs ...*domain.Transaction) error
	FindByID(ctx context.Context, id string) (*domain.Transaction, error)
	FindByProduct(ctx context.Context, productID string) ([]*domain.Transaction, error)
	FindByCustomerBetween(ctx context.Context, customerID string, from, to time.Time) ([]*domain.Transaction, error)
	FindBetween(ctx context.Context, from, to time.Time) ([]*domain.Transaction, error)
	CountByProductBetween(ctx context.Context, productID string, from, to time.Time) (int, error)
}
