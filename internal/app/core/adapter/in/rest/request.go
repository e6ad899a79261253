package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
)

var validate = validator.New()

// decodeAndValidate 解析 JSON 並做 struct tag 驗證；失敗皆為 domain.ErrValidation
func decodeAndValidate(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %s", domain.ErrValidation, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrValidation, describe(err))
	}
	return nil
}

// describe 把 validator 錯誤整理成一行
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type accountRequest struct {
	CustomerID           string           `json:"customerId" validate:"required"`
	Type                 string           `json:"type" validate:"required,oneof=SAVINGS CURRENT FIXED_TERM"`
	Balance              decimal.Decimal  `json:"balance"`
	MaintenanceFee       *decimal.Decimal `json:"maintenanceFee"`
	MonthlyMovementLimit *int             `json:"monthlyMovementLimit" validate:"omitempty,min=0"`
}

func (req *accountRequest) toDomain() *domain.Account {
	return &domain.Account{
		CustomerID:           req.CustomerID,
		Type:                 domain.AccountType(req.Type),
		Balance:              req.Balance,
		MaintenanceFee:       req.MaintenanceFee,
		MonthlyMovementLimit: req.MonthlyMovementLimit,
	}
}

// accountPatchRequest 餘額不可經由更新修改
type accountPatchRequest struct {
	Type                 *string          `json:"type" validate:"omitempty,oneof=SAVINGS CURRENT FIXED_TERM"`
	MaintenanceFee       *decimal.Decimal `json:"maintenanceFee"`
	MonthlyMovementLimit *int             `json:"monthlyMovementLimit" validate:"omitempty,min=0"`
}

func (req *accountPatchRequest) toDomain() domain.AccountPatch {
	patch := domain.AccountPatch{MaintenanceFee: req.MaintenanceFee, MonthlyMovementLimit: req.MonthlyMovementLimit}
	if req.Type != nil {
		typ := domain.AccountType(*req.Type)
		patch.Type = &typ
	}
	return patch
}

type transferRequest struct {
	FromAccountID string          `json:"fromAccountId" validate:"required"`
	ToAccountID   string          `json:"toAccountId" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
}

type customerRequest struct {
	Name           string `json:"name" validate:"required"`
	Profile        string `json:"profile" validate:"omitempty,oneof=STANDARD PERSONAL BUSINESS PERSONAL_VIP BUSINESS_PYME"`
	DocumentNumber string `json:"documentNumber" validate:"required"`
}

func (req *customerRequest) toDomain() *domain.Customer {
	return &domain.Customer{Name: req.Name, Profile: domain.CustomerProfile(req.Profile), DocumentNumber: req.DocumentNumber}
}

type cardRequest struct {
	CustomerID  string          `json:"customerId" validate:"required"`
	Type        string          `json:"type" validate:"required,oneof=PERSONAL BUSINESS"`
	CreditLimit decimal.Decimal `json:"creditLimit"`
	Used        decimal.Decimal `json:"used"`
}

func (req *cardRequest) toDomain() *domain.Card {
	return &domain.Card{CustomerID: req.CustomerID, Type: domain.CardType(req.Type), CreditLimit: req.CreditLimit, Used: req.Used}
}

// creditRequest 未帶 balance 時，未清償金額等於核貸金額
// 更新時 customerId 會被忽略
type creditRequest struct {
	CustomerID string           `json:"customerId"`
	Type       string           `json:"type" validate:"required,oneof=PERSONAL BUSINESS"`
	Amount     decimal.Decimal  `json:"amount"`
	Balance    *decimal.Decimal `json:"balance"`
}

func (req *creditRequest) toDomain() *domain.Credit {
	credit := &domain.Credit{CustomerID: req.CustomerID, Type: domain.CreditType(req.Type), Amount: req.Amount, Balance: req.Amount}
	if req.Balance != nil {
		credit.Balance = *req.Balance
	}
	return credit
}

// transactionRequest 外部產生的交易紀錄 (例如帶佣金的費用)
type transactionRequest struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"productId" validate:"required"`
	ProductType    string          `json:"productType"`
	CustomerID     string          `json:"customerId"`
	Type           string          `json:"type" validate:"required,oneof=DEPOSIT WITHDRAW TRANSFER_IN TRANSFER_OUT FEE"`
	Amount         decimal.Decimal `json:"amount"`
	Fee            decimal.Decimal `json:"fee"`
	Commission     decimal.Decimal `json:"commission"`
	OccurredAt     *time.Time      `json:"occurredAt"`
	Description    string          `json:"description"`
	CounterpartyID string          `json:"counterpartyId"`
}

func (req *transactionRequest) toDomain() *domain.Transaction {
	tx := &domain.Transaction{
		ID:             req.ID,
		ProductID:      req.ProductID,
		ProductType:    req.ProductType,
		CustomerID:     req.CustomerID,
		Kind:           domain.MovementKind(req.Type),
		Amount:         req.Amount,
		Fee:            req.Fee,
		Commission:     req.Commission,
		Description:    req.Description,
		CounterpartyID: req.CounterpartyID,
	}
	if req.OccurredAt != nil {
		tx.OccurredAt = *req.OccurredAt
	}
	return tx
}

// balanceResponse 帳戶餘額或信用卡可用額度
type balanceResponse struct {
	ID       string          `json:"id"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}
