package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind 交易類型
type MovementKind string

const (
	// 存款
	MovementDeposit MovementKind = "DEPOSIT"
	// 提款
	MovementWithdraw MovementKind = "WITHDRAW"
	// 轉入
	MovementTransferIn MovementKind = "TRANSFER_IN"
	// 轉出
	MovementTransferOut MovementKind = "TRANSFER_OUT"
	// 手續費
	MovementFee MovementKind = "FEE"
)

// Valid 檢查是否為已知的交易類型
func (k MovementKind) Valid() bool {
	switch k {
	case MovementDeposit, MovementWithdraw, MovementTransferIn, MovementTransferOut, MovementFee:
		return true
	}
	return false
}

// Sign 交易對餘額的方向：+1 入帳，-1 出帳
func (k MovementKind) Sign() int {
	switch k {
	case MovementDeposit, MovementTransferIn:
		return 1
	case MovementWithdraw, MovementTransferOut, MovementFee:
		return -1
	}
	return 0
}

// Transaction 交易紀錄 (寫入後不可變更，只能 append)
//
// Amount 一律為正數，方向由 Kind 決定。
// 轉帳會產生兩筆紀錄 (TRANSFER_OUT / TRANSFER_IN)，以 TransferID 串連。
type Transaction struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"productId"`
	ProductType    string          `json:"productType"`
	CustomerID     string          `json:"customerId"`
	Kind           MovementKind    `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Fee            decimal.Decimal `json:"fee"`
	Commission     decimal.Decimal `json:"commission"`
	OccurredAt     time.Time       `json:"occurredAt"`
	Description    string          `json:"description,omitempty"`
	CounterpartyID string          `json:"counterpartyId,omitempty"`
	TransferID     string          `json:"transferId,omitempty"`
}

// SignedAmount 依交易方向回傳帶正負號的金額
func (t *Transaction) SignedAmount() decimal.Decimal {
	switch t.Kind.Sign() {
	case 1:
		return t.Amount
	case -1:
		return t.Amount.Neg()
	}
	return decimal.Zero
}

// LockOrder 回傳需要鎖定的帳號 ID，排序並去除重複以避免死鎖
func LockOrder(ids ...string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
