package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
)

func TestReport_DailyBalanceOverCurrentMonth(t *testing.T) {
	ctx := context.Background()
	cfg := defaultRules()
	cfg.Fees = nil
	f := newFixture(t, time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC), cfg)
	f.account(t, "acc-1", "c1", domain.AccountTypeSavings, "0")
	f.account(t, "acc-2", "c1", domain.AccountTypeCurrent, "0")
	f.account(t, "other", "c2", domain.AccountTypeSavings, "0")

	_, err := f.service.Deposit(ctx, "acc-1", dec("100"))
	require.NoError(t, err)
	_, err = f.service.Deposit(ctx, "other", dec("999"))
	require.NoError(t, err)

	f.clock.Set(time.Date(2024, time.March, 3, 18, 0, 0, 0, time.UTC))
	_, err = f.transfers.TransferOwn(ctx, "acc-1", "acc-2", dec("40"))
	require.NoError(t, err)

	rows, err := f.reports.DailyBalance(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// acc-1: 100, 100, 60
	assert.Equal(t, "acc-1", rows[0].ProductID)
	assert.Equal(t, "SAVINGS", rows[0].ProductType)
	assert.Equal(t, "86.67", rows[0].AverageDailyBalance.StringFixed(2))
	// acc-2: 0, 0, 40
	assert.Equal(t, "acc-2", rows[1].ProductID)
	assert.Equal(t, "CURRENT", rows[1].ProductType)
	assert.Equal(t, "13.33", rows[1].AverageDailyBalance.StringFixed(2))

	one, err := f.reports.MonthToDateDailyAverage(ctx, "c1", "acc-2")
	require.NoError(t, err)
	assert.Equal(t, "13.33", one.StringFixed(2))
	total, err := f.reports.MonthToDateDailyAverage(ctx, "c1", "")
	require.NoError(t, err)
	assert.Equal(t, "100.00", total.StringFixed(2))
	none, err := f.reports.MonthToDateDailyAverage(ctx, "c1", "unknown")
	require.NoError(t, err)
	assert.True(t, none.IsZero())
}

func TestReport_DailyBalanceIgnoresPreviousMonth(t *testing.T) {
	ctx := context.Background()
	cfg := defaultRules()
	cfg.Fees = nil
	f := newFixture(t, time.Date(2024, time.February, 29, 23, 0, 0, 0, time.UTC), cfg)
	f.account(t, "acc-1", "c1", domain.AccountTypeSavings, "0")
	_, err := f.service.Deposit(ctx, "acc-1", dec("500"))
	require.NoError(t, err)

	f.clock.Set(time.Date(2024, time.March, 2, 1, 0, 0, 0, time.UTC))
	rows, err := f.reports.DailyBalance(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = f.reports.DailyBalance(ctx, " ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReport_Commissions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, march15, defaultRules())

	record := func(id, product string, day int, commission string) {
		_, err := f.movements.Record(ctx, &domain.Transaction{
			ID: id, ProductID: product, ProductType: "SAVINGS", CustomerID: "c1",
			Kind: domain.MovementFee, Amount: dec("1"), Commission: dec(commission),
			OccurredAt: time.Date(2024, time.March, day, 12, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}
	record("t1", "acc-1", 1, "5.00")
	record("t2", "acc-1", 10, "3.50")
	record("t3", "acc-1", 10, "0")
	record("t4", "acc-2", 20, "2.00")

	rows, err := f.reports.Commissions(ctx,
		time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "acc-1", rows[0].ProductID)
	assert.Equal(t, "8.50", rows[0].TotalCommission.StringFixed(2))

	_, err = f.reports.Commissions(ctx, march15, march15.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestReport_FeesChargedByEngineShowAsCommission(t *testing.T) {
	ctx := context.Background()
	cfg := defaultRules()
	cfg.FreeTransactions = nil
	f := newFixture(t, march15, cfg)
	f.account(t, "acc-1", "c1", domain.AccountTypeSavings, "100")

	_, err := f.service.Withdraw(ctx, "acc-1", dec("10"))
	require.NoError(t, err)
	_, err = f.service.Deposit(ctx, "acc-1", dec("10"))
	require.NoError(t, err)

	rows, err := f.reports.Commissions(ctx, march15, march15)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "3.00", rows[0].TotalCommission.StringFixed(2))
}

func TestMovementService_RecordValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, march15, defaultRules())

	_, err := f.movements.Record(ctx, &domain.Transaction{Kind: domain.MovementFee, Amount: dec("1")})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.movements.Record(ctx, &domain.Transaction{ProductID: "p", Kind: "BONUS", Amount: dec("1")})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.movements.Record(ctx, &domain.Transaction{ProductID: "p", Kind: domain.MovementFee, Amount: dec("0")})
	assert.ErrorIs(t, err, domain.ErrAmountMustBePositive)

	tx, err := f.movements.Record(ctx, &domain.Transaction{ProductID: "p", Kind: domain.MovementFee, Amount: dec("2")})
	require.NoError(t, err)
	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, march15, tx.OccurredAt)

	got, err := f.movements.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "p", got.ProductID)
	_, err = f.movements.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
