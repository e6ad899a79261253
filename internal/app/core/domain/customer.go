package domain

import "github.com/shopspring/decimal"

// CustomerProfile 客戶分類
type CustomerProfile string

const (
	ProfileStandard CustomerProfile = "STANDARD"
	ProfilePersonal CustomerProfile = "PERSONAL"
	ProfileBusiness CustomerProfile = "BUSINESS"
	// VIP 個人客戶：需持有信用卡且當月日均餘額達門檻
	ProfilePersonalVIP CustomerProfile = "PERSONAL_VIP"
	// PYME 中小企業：需持有信用卡，只能開活期帳戶
	ProfileBusinessPYME CustomerProfile = "BUSINESS_PYME"
)

// Valid 檢查是否為已知的客戶分類
func (p CustomerProfile) Valid() bool {
	switch p {
	case ProfileStandard, ProfilePersonal, ProfileBusiness, ProfilePersonalVIP, ProfileBusinessPYME:
		return true
	}
	return false
}

// Customer 客戶資料 (對帳務而言唯讀)
type Customer struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Profile        CustomerProfile `json:"profile"`
	DocumentNumber string          `json:"documentNumber"`
}

// CardType 信用卡類別
type CardType string

const (
	CardTypePersonal CardType = "PERSONAL"
	CardTypeBusiness CardType = "BUSINESS"
)

// Card 信用卡，VIP / PYME 資格檢查中的「信用產品」
type Card struct {
	ID          string          `json:"id"`
	CustomerID  string          `json:"customerId"`
	Type        CardType        `json:"type"`
	CreditLimit decimal.Decimal `json:"creditLimit"`
	Used        decimal.Decimal `json:"used"`
}

// Available 可用額度
func (c *Card) Available() decimal.Decimal {
	return c.CreditLimit.Sub(c.Used)
}

// Charge 刷卡消費，不可超過額度
func (c *Card) Charge(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrAmountMustBePositive
	}
	newUsed := c.Used.Add(amount)
	if newUsed.GreaterThan(c.CreditLimit) {
		return ErrCreditLimitExceeded
	}
	c.Used = newUsed
	return nil
}

// Pay 還款，已用額度最低為 0
func (c *Card) Pay(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrAmountMustBePositive
	}
	c.Used = decimal.Max(c.Used.Sub(amount), decimal.Zero)
	return nil
}

// CreditType 貸款類別
type CreditType string

const (
	CreditTypePersonal CreditType = "PERSONAL"
	CreditTypeBusiness CreditType = "BUSINESS"
)

// Valid 檢查是否為已知的貸款類別
func (t CreditType) Valid() bool {
	return t == CreditTypePersonal || t == CreditTypeBusiness
}

// Credit 貸款
//
// Amount 為核貸金額，Balance 為尚未清償的金額。
type Credit struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customerId"`
	Type       CreditType      `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Balance    decimal.Decimal `json:"balance"`
}

// Pay 還款，未清償金額最低為 0
func (c *Credit) Pay(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrAmountMustBePositive
	}
	c.Balance = decimal.Max(c.Balance.Sub(amount), decimal.Zero)
	return nil
}
