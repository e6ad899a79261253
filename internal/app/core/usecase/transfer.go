package usecase

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
)

// TransferResult 轉帳結果
type TransferResult struct {
	From      *domain.Account       `json:"from"`
	To        *domain.Account       `json:"to"`
	Movements []*domain.Transaction `json:"movements"`
}

// TransferService 帳戶間轉帳
//
// 兩個帳戶沒有共同的交易，採用 saga：依序寫入轉出帳戶、轉入帳戶、交易紀錄，
// 任一步失敗就把已完成的寫入補償回去。
type TransferService struct {
	accounts AccountRepository
	recorder MovementRecorder
	locks    *AccountLocks
	settings
}

func NewTransferService(accounts AccountRepository, recorder MovementRecorder, locks *AccountLocks, opts ...Option) *TransferService {
	return &TransferService{
		accounts: accounts,
		recorder: recorder,
		locks:    locks,
		settings: newSettings(opts),
	}
}

// TransferOwn 同一客戶名下帳戶間的轉帳
func (s *TransferService) TransferOwn(ctx context.Context, fromID, toID string, amount decimal.Decimal) (*TransferResult, error) {
	return s.transfer(ctx, fromID, toID, amount, true)
}

// TransferThirdParty 轉帳給其他客戶
func (s *TransferService) TransferThirdParty(ctx context.Context, fromID, toID string, amount decimal.Decimal) (*TransferResult, error) {
	return s.transfer(ctx, fromID, toID, amount, false)
}

func (s *TransferService) transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal, own bool) (*TransferResult, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrAmountMustBePositive
	}
	if fromID == "" || toID == "" {
		return nil, domainValidation("fromAccountId and toAccountId are required")
	}
	if fromID == toID {
		return nil, domain.ErrSameAccount
	}

	unlock := s.locks.Lock(fromID, toID)
	defer unlock()

	source, dest, err := s.loadPair(ctx, fromID, toID)
	if err != nil {
		return nil, err
	}

	sameCustomer := source.CustomerID == dest.CustomerID
	if own && !sameCustomer {
		return nil, domain.ErrCrossCustomerTransfer
	}
	if !own && sameCustomer {
		return nil, domain.ErrSameCustomerTransfer
	}

	sourcePrev := source.Clone()
	destPrev := dest.Clone()
	if err := source.Withdraw(amount, decimal.Zero); err != nil {
		return nil, err
	}
	if err := dest.Deposit(amount, decimal.Zero); err != nil {
		return nil, err
	}
	now := s.now()
	source.UpdatedAt = now
	dest.UpdatedAt = now

	// 1. 轉出帳戶
	if err := s.accounts.Save(ctx, source); err != nil {
		return nil, domain.CollaboratorError("save source account", err)
	}
	// 2. 轉入帳戶，失敗則還原轉出帳戶
	if err := s.accounts.Save(ctx, dest); err != nil {
		restoreAccount(ctx, s.accounts, s.logger, sourcePrev, source)
		return nil, domain.CollaboratorError("save destination account", err)
	}
	// 3. 交易紀錄，失敗則兩個帳戶都還原
	movements, err := s.recorder.RecordTransfer(ctx, source, dest, amount)
	if err != nil {
		restoreAccount(ctx, s.accounts, s.logger, destPrev, dest)
		restoreAccount(ctx, s.accounts, s.logger, sourcePrev, source)
		return nil, domain.CollaboratorError("record transfer", err)
	}

	s.logger.InfoContext(ctx, "transfer completed",
		slog.String("from", source.ID),
		slog.String("to", dest.ID),
		slog.String("amount", amount.String()),
		slog.Bool("own", own),
	)
	return &TransferResult{From: source, To: dest, Movements: movements}, nil
}

// loadPair 並行讀取兩個帳戶
func (s *TransferService) loadPair(ctx context.Context, fromID, toID string) (*domain.Account, *domain.Account, error) {
	var source, dest *domain.Account
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		acc, err := s.accounts.FindByID(gctx, fromID)
		if err != nil {
			return domain.CollaboratorError("find source account", err)
		}
		source = acc
		return nil
	})
	g.Go(func() error {
		acc, err := s.accounts.FindByID(gctx, toID)
		if err != nil {
			return domain.CollaboratorError("find destination account", err)
		}
		dest = acc
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return source, dest, nil
}
