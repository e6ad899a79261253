package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/usecase"
	grpcpkg "github.com/JoeShih716/go-bank-ledger/pkg/grpc"
)

type testEnv struct {
	core   *usecase.Core
	ledger *LedgerClient
	dir    *DirectoryClient
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	movementLog, err := memory.NewMovementLog(nil)
	require.NoError(t, err)
	movementLog.Start(ctx)

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rules := domain.NewRules(domain.RulesConfig{
		FreeTransactions: map[domain.AccountType]int{domain.AccountTypeSavings: 1},
		Fees:             map[domain.AccountType]decimal.Decimal{domain.AccountTypeSavings: decimal.RequireFromString("1.50")},
	})
	core := usecase.NewCore(rules, usecase.Dependencies{
		Accounts: memory.NewAccountStore(
			&domain.Account{ID: "a1", CustomerID: "c1", Type: domain.AccountTypeSavings, Balance: decimal.NewFromInt(100)},
			&domain.Account{ID: "a2", CustomerID: "c1", Type: domain.AccountTypeCurrent, Balance: decimal.NewFromInt(50)},
			&domain.Account{ID: "b1", CustomerID: "c2", Type: domain.AccountTypeSavings, Balance: decimal.Zero},
		),
		Customers: memory.NewCustomerStore(&domain.Customer{ID: "c1", Name: "Ana", Profile: domain.ProfilePersonal, DocumentNumber: "123"}),
		Cards:     memory.NewCardStore(&domain.Card{ID: "k1", CustomerID: "c1", Type: domain.CardTypePersonal, CreditLimit: decimal.NewFromInt(500)}),
		Credits:   memory.NewCreditStore(),
		Log:       movementLog,
	}, usecase.WithClock(func() time.Time { return now }), usecase.WithLogger(logger))

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(grpcpkg.LoggingServerInterceptor(logger)))
	NewLedgerServer(core, "PEN", time.UTC).Register(srv)
	NewDirectoryServer(core.Directory, core.Directory).Register(srv)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	pool := grpcpkg.NewPool(
		grpcpkg.WithLogger(logger),
		grpcpkg.WithCallTimeout(5*time.Second),
		grpcpkg.WithDialOptions(grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		})),
	)
	t.Cleanup(func() { _ = pool.Close() })
	conn, err := pool.GetConnection("passthrough:///bufnet")
	require.NoError(t, err)

	return &testEnv{core: core, ledger: NewLedgerClient(conn), dir: NewDirectoryClient(conn)}
}

func TestLedger_DepositWithdrawAndBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acc, err := env.ledger.Deposit(ctx, "a1", decimal.RequireFromString("10.25"))
	require.NoError(t, err)
	assert.Equal(t, "110.25", acc.Balance.StringFixed(2))

	// 第二筆超過免費次數，收 1.50 手續費
	acc, err = env.ledger.Withdraw(ctx, "a1", decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.Equal(t, "98.75", acc.Balance.StringFixed(2))

	balance, currency, err := env.ledger.GetBalance(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "PEN", currency)
	assert.True(t, decimal.RequireFromString("98.75").Equal(balance))
}

func TestLedger_Transfers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.ledger.Transfer(ctx, "a1", "a2", decimal.NewFromInt(30), true)
	require.NoError(t, err)
	assert.Equal(t, "70.00", res.From.Balance.StringFixed(2))
	assert.Equal(t, "80.00", res.To.Balance.StringFixed(2))
	require.Len(t, res.Movements, 2)
	assert.Equal(t, res.Movements[0].TransferID, res.Movements[1].TransferID)

	_, err = env.ledger.Transfer(ctx, "a1", "b1", decimal.NewFromInt(10), true)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	res, err = env.ledger.Transfer(ctx, "a1", "b1", decimal.NewFromInt(10), false)
	require.NoError(t, err)
	assert.Equal(t, "10.00", res.To.Balance.StringFixed(2))
}

func TestLedger_ErrorCodes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.ledger.Deposit(ctx, "missing", decimal.NewFromInt(1))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = env.ledger.Deposit(ctx, "a1", decimal.NewFromInt(-1))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = env.ledger.Withdraw(ctx, "b1", decimal.NewFromInt(1))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = env.ledger.CommissionReport(ctx, "2024/03/01", "2024-03-31")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestLedger_Reports(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.ledger.Deposit(ctx, "a1", decimal.NewFromInt(10))
	require.NoError(t, err)
	_, err = env.ledger.Deposit(ctx, "a1", decimal.NewFromInt(10))
	require.NoError(t, err)

	rows, err := env.ledger.CommissionReport(ctx, "2024-03-01", "2024-03-31")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a1", rows[0].ProductID)
	assert.Equal(t, "1.50", rows[0].TotalCommission.StringFixed(2))

	daily, err := env.ledger.DailyBalanceReport(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, "SAVINGS", daily[0].ProductType)
}

func TestDirectory_RemoteLookups(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	customer, err := env.dir.GetCustomer(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProfilePersonal, customer.Profile)

	has, err := env.dir.HasAnyCard(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, has)
	has, err = env.dir.HasAnyCard(ctx, "c2")
	require.NoError(t, err)
	assert.False(t, has)

	_, err = env.dir.GetCustomer(ctx, "nobody")
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{domain.ErrAccountNotFound, codes.NotFound},
		{domain.ErrAmountMustBePositive, codes.InvalidArgument},
		{domain.ErrInsufficientFunds, codes.FailedPrecondition},
		{domain.ErrConcurrentUpdate, codes.Aborted},
		{domain.CollaboratorError("lookup", errors.New("down")), codes.Unavailable},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), codes.DeadlineExceeded},
		{errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, status.Code(toStatus(tt.err)), tt.err.Error())
	}
	assert.NoError(t, toStatus(nil))
}

func TestMoneyConversion(t *testing.T) {
	m := ToMoney(decimal.RequireFromString("-12.34"), "PEN")
	assert.Equal(t, int64(-12), m.Units)
	assert.Equal(t, int32(-340000000), m.Nanos)
	assert.True(t, decimal.RequireFromString("-12.34").Equal(FromMoney(m)))
	assert.True(t, FromMoney(nil).IsZero())
}
