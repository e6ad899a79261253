package usecase

import (
	"context"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
)

// EligibilityValidator 開戶資格檢查
type EligibilityValidator struct {
	rules     *domain.Rules
	customers CustomerDirectory
	cards     CardDirectory
	averager  DailyAverager
}

func NewEligibilityValidator(rules *domain.Rules, customers CustomerDirectory, cards CardDirectory, averager DailyAverager) *EligibilityValidator {
	return &EligibilityValidator{
		rules:     rules,
		customers: customers,
		cards:     cards,
		averager:  averager,
	}
}

// Validate 檢查帳戶是否可以開立
//
// 檢查失敗時不會寫入任何資料。PYME 客戶通過檢查後會被設定維護費。
//
// 參數:
//
//	ctx: 上下文
//	account: 待開立的帳戶
//
// 回傳:
//
//	*domain.Account: 可交給持久化的帳戶
//	error: 違反規則或查詢失敗
func (v *EligibilityValidator) Validate(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if account.Balance.LessThan(v.rules.MinimumOpening(account.Type)) {
		return nil, domain.ErrOpeningBelowMinimum
	}

	customer, err := v.customers.FindByID(ctx, account.CustomerID)
	if err != nil {
		return nil, domain.CollaboratorError("find customer", err)
	}

	switch customer.Profile {
	case domain.ProfilePersonalVIP:
		if err := v.requireCard(ctx, customer.ID, domain.ErrVIPRequiresCreditProduct); err != nil {
			return nil, err
		}
		// 新帳戶沒有交易紀錄，以客戶所有產品的日均加總判斷
		avg, err := v.averager.MonthToDateDailyAverage(ctx, customer.ID, "")
		if err != nil {
			return nil, domain.CollaboratorError("month to date daily average", err)
		}
		if avg.LessThan(v.rules.VIPMinimumDailyAverage()) {
			return nil, domain.ErrVIPDailyAverageTooLow
		}

	case domain.ProfileBusinessPYME:
		if account.Type != domain.AccountTypeCurrent {
			return nil, domain.ErrPYMERequiresCurrentAccount
		}
		if err := v.requireCard(ctx, customer.ID, domain.ErrPYMERequiresCreditProduct); err != nil {
			return nil, err
		}
		fee := v.rules.PYMEMaintenanceFee()
		account.MaintenanceFee = &fee
	}
	return account, nil
}

func (v *EligibilityValidator) requireCard(ctx context.Context, customerID string, missing error) error {
	has, err := v.cards.HasAnyCard(ctx, customerID)
	if err != nil {
		return domain.CollaboratorError("has any card", err)
	}
	if !has {
		return missing
	}
	return nil
}
