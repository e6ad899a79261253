package mysql

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
)

// sqlAccount 對應資料庫的 accounts 表
type sqlAccount struct {
	ID                   string `gorm:"primaryKey"`
	CustomerID           string `gorm:"index"`
	Type                 string
	Balance              decimal.Decimal     `gorm:"type:decimal(19,4)"`
	MaintenanceFee       decimal.NullDecimal `gorm:"type:decimal(19,4)"`
	MonthlyMovementLimit *int
	Version              int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (*sqlAccount) TableName() string {
	return "accounts"
}

func toSQLAccount(a *domain.Account) sqlAccount {
	row := sqlAccount{
		ID:                   a.ID,
		CustomerID:           a.CustomerID,
		Type:                 string(a.Type),
		Balance:              a.Balance,
		MonthlyMovementLimit: a.MonthlyMovementLimit,
		Version:              a.Version,
		CreatedAt:            a.CreatedAt.UTC(),
		UpdatedAt:            a.UpdatedAt.UTC(),
	}
	if a.MaintenanceFee != nil {
		row.MaintenanceFee = decimal.NewNullDecimal(*a.MaintenanceFee)
	}
	return row
}

func (r *sqlAccount) toDomain() *domain.Account {
	acc := &domain.Account{
		ID:                   r.ID,
		CustomerID:           r.CustomerID,
		Type:                 domain.AccountType(r.Type),
		Balance:              r.Balance,
		MonthlyMovementLimit: r.MonthlyMovementLimit,
		Version:              r.Version,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
	if r.MaintenanceFee.Valid {
		fee := r.MaintenanceFee.Decimal
		acc.MaintenanceFee = &fee
	}
	return acc
}

// sqlCustomer 對應資料庫的 customers 表
type sqlCustomer struct {
	ID             string `gorm:"primaryKey"`
	Name           string
	Profile        string
	DocumentNumber string
}

func (*sqlCustomer) TableName() string {
	return "customers"
}

func toSQLCustomer(c *domain.Customer) sqlCustomer {
	return sqlCustomer{ID: c.ID, Name: c.Name, Profile: string(c.Profile), DocumentNumber: c.DocumentNumber}
}

func (r *sqlCustomer) toDomain() *domain.Customer {
	return &domain.Customer{ID: r.ID, Name: r.Name, Profile: domain.CustomerProfile(r.Profile), DocumentNumber: r.DocumentNumber}
}

// sqlCard 對應資料庫的 cards 表
type sqlCard struct {
	ID          string `gorm:"primaryKey"`
	CustomerID  string `gorm:"index"`
	Type        string
	CreditLimit decimal.Decimal `gorm:"type:decimal(19,4)"`
	Used        decimal.Decimal `gorm:"type:decimal(19,4)"`
}

func (*sqlCard) TableName() string {
	return "cards"
}

func toSQLCard(c *domain.Card) sqlCard {
	return sqlCard{ID: c.ID, CustomerID: c.CustomerID, Type: string(c.Type), CreditLimit: c.CreditLimit, Used: c.Used}
}

func (r *sqlCard) toDomain() *domain.Card {
	return &domain.Card{ID: r.ID, CustomerID: r.CustomerID, Type: domain.CardType(r.Type), CreditLimit: r.CreditLimit, Used: r.Used}
}

// sqlCredit 對應資料庫的 credits 表
type sqlCredit struct {
	ID         string `gorm:"primaryKey"`
	CustomerID string `gorm:"index"`
	Type       string
	Amount     decimal.Decimal `gorm:"type:decimal(19,4)"`
	Balance    decimal.Decimal `gorm:"type:decimal(19,4)"`
}

func (*sqlCredit) TableName() string {
	return "credits"
}

func toSQLCredit(c *domain.Credit) sqlCredit {
	return sqlCredit{ID: c.ID, CustomerID: c.CustomerID, Type: string(c.Type), Amount: c.Amount, Balance: c.Balance}
}

func (r *sqlCredit) toDomain() *domain.Credit {
	return &domain.Credit{ID: r.ID, CustomerID: r.CustomerID, Type: domain.CreditType(r.Type), Amount: r.Amount, Balance: r.Balance}
}

// sqlMovement 對應資料庫的 movements 表
// Seq 為自增主鍵，保留寫入順序；ID 為外部追蹤號 (唯一)
type sqlMovement struct {
	Seq            int64  `gorm:"primaryKey;autoIncrement"`
	ID             string `gorm:"column:id;uniqueIndex"`
	ProductID      string
	ProductType    string
	CustomerID     string
	Kind           string
	Amount         decimal.Decimal `gorm:"type:decimal(19,4)"`
	Fee            decimal.Decimal `gorm:"type:decimal(19,4)"`
	Commission     decimal.Decimal `gorm:"type:decimal(19,4)"`
	OccurredAt     time.Time       `gorm:"index"`
	Description    string
	CounterpartyID string
	TransferID     string
}

func (*sqlMovement) TableName() string {
	return "movements"
}

func toSQLMovement(t *domain.Transaction) sqlMovement {
	return sqlMovement{
		ID:             t.ID,
		ProductID:      t.ProductID,
		ProductType:    t.ProductType,
		CustomerID:     t.CustomerID,
		Kind:           string(t.Kind),
		Amount:         t.Amount,
		Fee:            t.Fee,
		Commission:     t.Commission,
		OccurredAt:     t.OccurredAt.UTC(),
		Description:    t.Description,
		CounterpartyID: t.CounterpartyID,
		TransferID:     t.TransferID,
	}
}

func (r *sqlMovement) toDomain() *domain.Transaction {
	return &domain.Transaction{
		ID:             r.ID,
		ProductID:      r.ProductID,
		ProductType:    r.ProductType,
		CustomerID:     r.CustomerID,
		Kind:           domain.MovementKind(r.Kind),
		Amount:         r.Amount,
		Fee:            r.Fee,
		Commission:     r.Commission,
		OccurredAt:     r.OccurredAt,
		Description:    r.Description,
		CounterpartyID: r.CounterpartyID,
		TransferID:     r.TransferID,
	}
}
