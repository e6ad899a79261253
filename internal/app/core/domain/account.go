package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType 帳戶類別
type AccountType string

const (
	// 儲蓄帳戶
	AccountTypeSavings AccountType = "SAVINGS"
	// 活期帳戶
	AccountTypeCurrent AccountType = "CURRENT"
	// 定期帳戶
	AccountTypeFixedTerm AccountType = "FIXED_TERM"
)

// Valid 檢查是否為已知的帳戶類別
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeSavings, AccountTypeCurrent, AccountTypeFixedTerm:
		return true
	}
	return false
}

// Account 銀行帳戶
//
// Balance 只能透過存款、提款、轉帳變動，不接受直接 patch。
// Version 為樂觀鎖版本號，由 Repository 在每次 Save 成功後遞增。
type Account struct {
	ID                   string           `json:"id"`
	CustomerID           string           `json:"customerId"`
	Type                 AccountType      `json:"type"`
	Balance              decimal.Decimal  `json:"balance"`
	MaintenanceFee       *decimal.Decimal `json:"maintenanceFee,omitempty"`
	MonthlyMovementLimit *int             `json:"monthlyMovementLimit,omitempty"`
	Version              int64            `json:"version"`
	CreatedAt            time.Time        `json:"createdAt"`
	UpdatedAt            time.Time        `json:"updatedAt"`
}

// Clone 回傳深拷貝，避免呼叫端修改 store 內部狀態
func (a *Account) Clone() *Account {
	cp := *a
	if a.MaintenanceFee != nil {
		fee := *a.MaintenanceFee
		cp.MaintenanceFee = &fee
	}
	if a.MonthlyMovementLimit != nil {
		limit := *a.MonthlyMovementLimit
		cp.MonthlyMovementLimit = &limit
	}
	return &cp
}

// Deposit 存款，fee 為本次需扣除的手續費 (可能為 0)
func (a *Account) Deposit(amount, fee decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrAmountMustBePositive
	}
	newBalance := a.Balance.Add(amount).Sub(fee)
	if newBalance.IsNegative() {
		return ErrNegativeResultingBalance
	}
	a.Balance = newBalance
	return nil
}

// Withdraw 提款，總扣款 = amount + fee
func (a *Account) Withdraw(amount, fee decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrAmountMustBePositive
	}
	totalDebit := amount.Add(fee)
	if a.Balance.LessThan(totalDebit) {
		return ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(totalDebit)
	return nil
}

// MovementLimitReached 當月交易次數已達上限 (未設定上限時永遠為 false)
func (a *Account) MovementLimitReached(countThisMonth int) bool {
	return a.MonthlyMovementLimit != nil && countThisMonth >= *a.MonthlyMovementLimit
}

// AccountPatch 允許更新的欄位，nil 表示不變更
type AccountPatch struct {
	Type                 *AccountType
	MaintenanceFee       *decimal.Decimal
	MonthlyMovementLimit *int
}

// Apply 套用 patch (餘額不在可更新範圍內)
func (a *Account) Apply(p AccountPatch) error {
	if p.Type != nil {
		if !p.Type.Valid() {
			return ErrInvalidAccountType
		}
		a.Type = *p.Type
	}
	if p.MaintenanceFee != nil {
		if p.MaintenanceFee.IsNegative() {
			return ErrNegativeMaintenanceFee
		}
		fee := *p.MaintenanceFee
		a.MaintenanceFee = &fee
	}
	if p.MonthlyMovementLimit != nil {
		if *p.MonthlyMovementLimit < 0 {
			return ErrNegativeMovementLimit
		}
		limit := *p.MonthlyMovementLimit
		a.MonthlyMovementLimit = &limit
	}
	return nil
}
