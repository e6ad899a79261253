package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
)

// AccountService 帳戶管理與存提款
type AccountService struct {
	accounts  AccountRepository
	validator *EligibilityValidator
	rules     *domain.Rules
	counter   MovementCounter
	recorder  MovementRecorder
	locks     *AccountLocks
	settings
}

func NewAccountService(
	accounts AccountRepository,
	validator *EligibilityValidator,
	rules *domain.Rules,
	counter MovementCounter,
	recorder MovementRecorder,
	locks *AccountLocks,
	opts ...Option,
) *AccountService {
	return &AccountService{
		accounts:  accounts,
		validator: validator,
		rules:     rules,
		counter:   counter,
		recorder:  recorder,
		locks:     locks,
		settings:  newSettings(opts),
	}
}

// Create 開立帳戶 (先通過資格檢查才寫入)
//
// 參數:
//
//	ctx: 上下文
//	account: 帳戶資料，ID 為空時自動產生
//
// 回傳:
//
//	*domain.Account: 已寫入的帳戶
//	error: 驗證、資格或寫入錯誤
func (s *AccountService) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if strings.TrimSpace(account.CustomerID) == "" {
		return nil, domainValidation("customerId is required")
	}
	if !account.Type.Valid() {
		return nil, domain.ErrInvalidAccountType
	}
	if account.Balance.IsNegative() {
		return nil, domainValidation("opening balance must not be negative")
	}
	if account.MaintenanceFee != nil && account.MaintenanceFee.IsNegative() {
		return nil, domain.ErrNegativeMaintenanceFee
	}
	if account.MonthlyMovementLimit != nil && *account.MonthlyMovementLimit < 0 {
		return nil, domain.ErrNegativeMovementLimit
	}

	candidate := account.Clone()
	if candidate.ID == "" {
		candidate.ID = uuid.NewString()
	}

	exists, err := s.accounts.ExistsByID(ctx, candidate.ID)
	if err != nil {
		return nil, domain.CollaboratorError("exists account", err)
	}
	if exists {
		return nil, domain.ErrAccountAlreadyExists
	}

	validated, err := s.validator.Validate(ctx, candidate)
	if err != nil {
		return nil, err
	}

	now := s.now()
	validated.Version = 0
	validated.CreatedAt = now
	validated.UpdatedAt = now
	if err := s.accounts.Save(ctx, validated); err != nil {
		return nil, domain.CollaboratorError("save account", err)
	}

	s.logger.InfoContext(ctx, "account created",
		slog.String("account_id", validated.ID),
		slog.String("customer_id", validated.CustomerID),
		slog.String("type", string(validated.Type)),
	)
	return validated, nil
}

// Get 依 ID 查詢帳戶
func (s *AccountService) Get(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, domain.CollaboratorError("find account", err)
	}
	return account, nil
}

// List 列出帳戶，customerID 不為空時只列出該客戶的帳戶
func (s *AccountService) List(ctx context.Context, customerID string) ([]*domain.Account, error) {
	var (
		accounts []*domain.Account
		err      error
	)
	if customerID != "" {
		accounts, err = s.accounts.FindByCustomer(ctx, customerID)
	} else {
		accounts, err = s.accounts.FindAll(ctx)
	}
	if err != nil {
		return nil, domain.CollaboratorError("list accounts", err)
	}
	return accounts, nil
}

// Update 更新帳戶屬性 (餘額不可透過此方法變更)
func (s *AccountService) Update(ctx context.Context, id string, patch domain.AccountPatch) (*domain.Account, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, domain.CollaboratorError("find account", err)
	}
	if err := account.Apply(patch); err != nil {
		return nil, err
	}
	account.UpdatedAt = s.now()
	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, domain.CollaboratorError("save account", err)
	}
	return account, nil
}

// Delete 刪除帳戶，帳戶不存在時不視為錯誤
func (s *AccountService) Delete(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.accounts.DeleteByID(ctx, id); err != nil {
		return domain.CollaboratorError("delete account", err)
	}
	return nil
}

// Balance 查詢帳戶餘額
func (s *AccountService) Balance(ctx context.Context, id string) (decimal.Decimal, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// Deposit 存款
//
// 當月交易次數達到免費次數後收取手續費，手續費直接從存入金額中扣除。
func (s *AccountService) Deposit(ctx context.Context, id string, amount decimal.Decimal) (*domain.Account, error) {
	return s.move(ctx, id, amount, domain.MovementDeposit)
}

// Withdraw 提款，總扣款 = 金額 + 手續費
func (s *AccountService) Withdraw(ctx context.Context, id string, amount decimal.Decimal) (*domain.Account, error) {
	return s.move(ctx, id, amount, domain.MovementWithdraw)
}

func (s *AccountService) move(ctx context.Context, id string, amount decimal.Decimal, kind domain.MovementKind) (*domain.Account, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrAmountMustBePositive
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, domain.CollaboratorError("find account", err)
	}

	count, err := s.counter.CountAccountTransactionsThisMonth(ctx, id, domain.YearMonthOf(s.now(), s.loc))
	if err != nil {
		return nil, domain.CollaboratorError("count movements", err)
	}
	if account.MovementLimitReached(count) {
		return nil, domain.ErrMovementLimitReached
	}
	fee := s.rules.FeeAfter(account.Type, count)

	previous := account.Clone()
	switch kind {
	case domain.MovementDeposit:
		err = account.Deposit(amount, fee)
	case domain.MovementWithdraw:
		err = account.Withdraw(amount, fee)
	}
	if err != nil {
		return nil, err
	}

	account.UpdatedAt = s.now()
	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, domain.CollaboratorError("save account", err)
	}

	var recordErr error
	switch kind {
	case domain.MovementDeposit:
		_, recordErr = s.recorder.RecordDeposit(ctx, account, amount, fee)
	case domain.MovementWithdraw:
		_, recordErr = s.recorder.RecordWithdraw(ctx, account, amount, fee)
	}
	if recordErr != nil {
		restoreAccount(ctx, s.accounts, s.logger, previous, account)
		return nil, domain.CollaboratorError("record movement", recordErr)
	}

	s.logger.InfoContext(ctx, "movement applied",
		slog.String("account_id", account.ID),
		slog.String("kind", string(kind)),
		slog.String("amount", amount.String()),
		slog.String("fee", fee.String()),
		slog.String("balance", account.Balance.String()),
	)
	return account, nil
}

// restoreAccount 補償：把帳戶還原成 previous 的狀態
//
// current 為已寫入的版本，還原時沿用它的 Version 做樂觀鎖。
// 補償失敗只記錄錯誤，呼叫端仍回傳原本的失敗。
func restoreAccount(ctx context.Context, repo AccountRepository, logger *slog.Logger, previous, current *domain.Account) {
	rollback := previous.Clone()
	rollback.Version = current.Version
	rollback.UpdatedAt = current.UpdatedAt
	// 補償不受呼叫端取消影響
	if err := repo.Save(context.WithoutCancel(ctx), rollback); err != nil {
		logger.ErrorContext(ctx, "compensation failed",
			slog.String("account_id", previous.ID),
			slog.String("restore_balance", previous.Balance.String()),
			slog.Any("error", err),
		)
		return
	}
	logger.WarnContext(ctx, "account write compensated",
		slog.String("account_id", previous.ID),
		slog.String("balance", previous.Balance.String()),
	)
}
