package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
)

// MovementService 交易紀錄的寫入、計數與查詢
//
// 同時實作 MovementRecorder 與 MovementCounter。
type MovementService struct {
	log MovementLog
	settings
}

var (
	_ MovementRecorder = (*MovementService)(nil)
	_ MovementCounter  = (*MovementService)(nil)
)

func NewMovementService(log MovementLog, opts ...Option) *MovementService {
	return &MovementService{
		log:      log,
		settings: newSettings(opts),
	}
}

func (s *MovementService) newEntry(account *domain.Account, kind domain.MovementKind, amount, fee decimal.Decimal, description string) *domain.Transaction {
	return &domain.Transaction{
		ID:          uuid.NewString(),
		ProductID:   account.ID,
		ProductType: string(account.Type),
		CustomerID:  account.CustomerID,
		Kind:        kind,
		Amount:      amount,
		Fee:         fee,
		Commission:  fee, // 銀行收入 = 實際收取的手續費
		OccurredAt:  s.now(),
		Description: description,
	}
}

// RecordDeposit 寫入一筆存款紀錄 (手續費併入同一筆)
func (s *MovementService) RecordDeposit(ctx context.Context, account *domain.Account, amount, fee decimal.Decimal) (*domain.Transaction, error) {
	tx := s.newEntry(account, domain.MovementDeposit, amount, fee, "Deposit")
	if err := s.log.Append(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// RecordWithdraw 寫入一筆提款紀錄 (手續費併入同一筆)
func (s *MovementService) RecordWithdraw(ctx context.Context, account *domain.Account, amount, fee decimal.Decimal) (*domain.Transaction, error) {
	tx := s.newEntry(account, domain.MovementWithdraw, amount, fee, "Withdraw")
	if err := s.log.Append(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// RecordTransfer 一次原子寫入轉帳的兩筆紀錄 (TRANSFER_OUT / TRANSFER_IN)
func (s *MovementService) RecordTransfer(ctx context.Context, from, to *domain.Account, amount decimal.Decimal) ([]*domain.Transaction, error) {
	transferID := uuid.NewString()

	out := s.newEntry(from, domain.MovementTransferOut, amount, decimal.Zero, "Transfer to "+to.ID)
	out.CounterpartyID = to.ID
	out.TransferID = transferID

	in := s.newEntry(to, domain.MovementTransferIn, amount, decimal.Zero, "Transfer from "+from.ID)
	in.OccurredAt = out.OccurredAt
	in.CounterpartyID = from.ID
	in.TransferID = transferID

	if err := s.log.Append(ctx, out, in); err != nil {
		return nil, err
	}
	return []*domain.Transaction{out, in}, nil
}

// CountAccountTransactionsThisMonth 計算帳戶在指定月份的交易筆數
func (s *MovementService) CountAccountTransactionsThisMonth(ctx context.Context, accountID string, month domain.YearMonth) (int, error) {
	from, to := month.Bounds(s.loc)
	return s.log.CountByProductBetween(ctx, accountID, from, to)
}

// Record 寫入外部產生的交易紀錄 (例如帶有 commission 的手續費)
//
// 參數:
//
//	ctx: 上下文
//	tx: 交易紀錄，ID 與 OccurredAt 為空時自動補上
//
// 回傳:
//
//	*domain.Transaction: 實際寫入的紀錄
//	error: 驗證或寫入錯誤
func (s *MovementService) Record(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	if strings.TrimSpace(tx.ProductID) == "" {
		return nil, domainValidation("productId is required")
	}
	if !tx.Kind.Valid() {
		return nil, domainValidation("unknown movement type %q", tx.Kind)
	}
	if !tx.Amount.IsPositive() {
		return nil, domain.ErrAmountMustBePositive
	}
	if tx.Fee.IsNegative() || tx.Commission.IsNegative() {
		return nil, domainValidation("fee and commission must not be negative")
	}

	entry := *tx
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = s.now()
	}
	if err := s.log.Append(ctx, &entry); err != nil {
		return nil, domain.CollaboratorError("append movement", err)
	}
	return &entry, nil
}

// Get 依 ID 查詢交易紀錄
func (s *MovementService) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	tx, err := s.log.FindByID(ctx, id)
	if err != nil {
		return nil, domain.CollaboratorError("find movement", err)
	}
	return tx, nil
}

// ByProduct 查詢單一產品的所有交易紀錄
func (s *MovementService) ByProduct(ctx context.Context, productID string) ([]*domain.Transaction, error) {
	txs, err := s.log.FindByProduct(ctx, productID)
	if err != nil {
		return nil, domain.CollaboratorError("find movements by product", err)
	}
	return txs, nil
}
