package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/usecase"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// flakyAccounts 可注入 Save 失敗的帳戶資料
type flakyAccounts struct {
	*memory.AccountStore
	mu       sync.Mutex
	failSave func(*domain.Account) error
	saves    int
}

func (f *flakyAccounts) Save(ctx context.Context, account *domain.Account) error {
	f.mu.Lock()
	hook := f.failSave
	f.saves++
	f.mu.Unlock()
	if hook != nil {
		if err := hook(account); err != nil {
			return err
		}
	}
	return f.AccountStore.Save(ctx, account)
}

func (f *flakyAccounts) onSave(hook func(*domain.Account) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSave = hook
}

// flakyLog 可注入 Append 失敗的交易紀錄
type flakyLog struct {
	*memory.MovementLog
	appendErr error
}

func (f *flakyLog) Append(ctx context.Context, txs ...*domain.Transaction) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	return f.MovementLog.Append(ctx, txs...)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fixture struct {
	clock     *clock
	accounts  *flakyAccounts
	customers *memory.CustomerStore
	cards     *memory.CardStore
	credits   *memory.CreditStore
	log       *flakyLog

	rules     *domain.Rules
	movements *usecase.MovementService
	reports   *usecase.ReportService
	directory *usecase.DirectoryService
	service   *usecase.AccountService
	transfers *usecase.TransferService
}

func defaultRules() domain.RulesConfig {
	return domain.RulesConfig{
		MinimumOpening: map[domain.AccountType]decimal.Decimal{
			domain.AccountTypeSavings: dec("10"),
		},
		FreeTransactions: map[domain.AccountType]int{
			domain.AccountTypeSavings: 2,
		},
		Fees: map[domain.AccountType]decimal.Decimal{
			domain.AccountTypeSavings: dec("1.50"),
			domain.AccountTypeCurrent: dec("2"),
		},
		VIPMinimumDailyAverage: dec("500"),
		PYMEMaintenanceFee:     dec("25"),
	}
}

func newFixture(t *testing.T, now time.Time, cfg domain.RulesConfig) *fixture {
	t.Helper()

	log, err := memory.NewMovementLog(nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	log.Start(ctx)

	f := &fixture{
		clock:     &clock{now: now},
		accounts:  &flakyAccounts{AccountStore: memory.NewAccountStore()},
		customers: memory.NewCustomerStore(),
		cards:     memory.NewCardStore(),
		credits:   memory.NewCreditStore(),
		log:       &flakyLog{MovementLog: log},
		rules:     domain.NewRules(cfg),
	}
	opts := []usecase.Option{
		usecase.WithClock(f.clock.Now),
		usecase.WithLocation(time.UTC),
		usecase.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	locks := usecase.NewAccountLocks()
	f.movements = usecase.NewMovementService(f.log, opts...)
	f.reports = usecase.NewReportService(f.log, opts...)
	f.directory = usecase.NewDirectoryService(f.customers, f.cards, f.credits)
	validator := usecase.NewEligibilityValidator(f.rules, f.directory, f.directory, f.reports)
	f.service = usecase.NewAccountService(f.accounts, validator, f.rules, f.movements, f.movements, locks, opts...)
	f.transfers = usecase.NewTransferService(f.accounts, f.movements, locks, opts...)
	return f
}

func (f *fixture) customer(t *testing.T, id string, profile domain.CustomerProfile) {
	t.Helper()
	require.NoError(t, f.customers.Save(context.Background(), &domain.Customer{ID: id, Name: id, Profile: profile, DocumentNumber: "doc-" + id}))
}

func (f *fixture) card(t *testing.T, customerID string) {
	t.Helper()
	require.NoError(t, f.cards.Save(context.Background(), &domain.Card{ID: "card-" + customerID, CustomerID: customerID, Type: domain.CardTypePersonal, CreditLimit: dec("1000")}))
}

// account 直接寫入帳戶 (不經過資格檢查)
func (f *fixture) account(t *testing.T, id, customerID string, typ domain.AccountType, balance string) {
	t.Helper()
	require.NoError(t, f.accounts.AccountStore.Save(context.Background(), &domain.Account{
		ID: id, CustomerID: customerID, Type: typ, Balance: dec(balance),
	}))
}

func (f *fixture) balance(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	acc, err := f.accounts.FindByID(context.Background(), id)
	require.NoError(t, err)
	return acc.Balance
}
