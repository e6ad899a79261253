package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/usecase"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	movementLog, err := memory.NewMovementLog(nil)
	require.NoError(t, err)
	movementLog.Start(ctx)

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rules := domain.NewRules(domain.RulesConfig{
		MinimumOpening:   map[domain.AccountType]decimal.Decimal{domain.AccountTypeSavings: decimal.NewFromInt(10)},
		FreeTransactions: map[domain.AccountType]int{domain.AccountTypeSavings: 2},
		Fees:             map[domain.AccountType]decimal.Decimal{domain.AccountTypeSavings: decimal.RequireFromString("1.50")},
	})
	core := usecase.NewCore(rules, usecase.Dependencies{
		Accounts:  memory.NewAccountStore(),
		Customers: memory.NewCustomerStore(),
		Cards:     memory.NewCardStore(),
		Credits:   memory.NewCreditStore(),
		Log:       movementLog,
	}, usecase.WithClock(func() time.Time { return now }), usecase.WithLogger(logger))

	srv := httptest.NewServer(NewRouter(core, WithLogger(logger), WithLocation(time.UTC)))
	t.Cleanup(srv.Close)
	return srv
}

// do 送出 JSON 請求並解析回應
func do(t *testing.T, srv *httptest.Server, method, path string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func createCustomerAndAccount(t *testing.T, srv *httptest.Server, balance string) (string, string) {
	t.Helper()
	var customer domain.Customer
	code := do(t, srv, http.MethodPost, "/api/v1/customers", map[string]any{"name": "Ana", "documentNumber": "123"}, &customer)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, domain.ProfileStandard, customer.Profile)

	var account domain.Account
	code = do(t, srv, http.MethodPost, "/api/v1/accounts", map[string]any{
		"customerId": customer.ID, "type": "SAVINGS", "balance": balance,
	}, &account)
	require.Equal(t, http.StatusCreated, code)
	return customer.ID, account.ID
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	var body map[string]string
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/health", nil, &body))
	assert.Equal(t, "ok", body["status"])
}

func TestAccountLifecycle(t *testing.T) {
	srv := newTestServer(t)
	customerID, accountID := createCustomerAndAccount(t, srv, "100")

	var account domain.Account
	// 兩筆免費，第三筆收 1.50
	for range 2 {
		require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/v1/accounts/"+accountID+"/deposit", map[string]any{"amount": "10"}, &account))
	}
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/accounts/"+accountID+"/withdraw", map[string]any{"amount": 20}, &account))
	assert.Equal(t, "98.50", account.Balance.StringFixed(2))

	var balance balanceResponse
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/accounts/"+accountID+"/balance", nil, &balance))
	assert.Equal(t, "PEN", balance.Currency)
	assert.True(t, decimal.RequireFromString("98.50").Equal(balance.Balance))

	var movements []domain.Transaction
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/v1/accounts/"+accountID+"/movements", nil, &movements))
	require.Len(t, movements, 3)
	assert.Equal(t, domain.MovementWithdraw, movements[2].Kind)

	// 更新不影響餘額
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPut, "/api/v1/accounts/"+accountID, map[string]any{"monthlyMovementLimit": 5}, &account))
	assert.Equal(t, 5, *account.MonthlyMovementLimit)
	assert.Equal(t, "98.50", account.Balance.StringFixed(2))

	var list []domain.Account
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/v1/accounts?customerId="+customerID, nil, &list))
	assert.Len(t, list, 1)

	assert.Equal(t, http.StatusNoContent, do(t, srv, http.MethodDelete, "/api/v1/accounts/"+accountID, nil, nil))
	assert.Equal(t, http.StatusNoContent, do(t, srv, http.MethodDelete, "/api/v1/accounts/"+accountID, nil, nil))
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/api/v1/accounts/"+accountID, nil, nil))
}

func TestErrorResponses(t *testing.T) {
	srv := newTestServer(t)
	_, accountID := createCustomerAndAccount(t, srv, "10")

	var errBody errorResponse
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodPost, "/api/v1/accounts/nope/deposit", map[string]any{"amount": "1"}, &errBody))
	assert.NotEmpty(t, errBody.RequestID)

	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, "/api/v1/accounts/"+accountID+"/deposit", map[string]any{"amount": "0"}, nil))
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, "/api/v1/accounts/"+accountID+"/deposit", map[string]any{"amt": "1"}, nil))
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, "/api/v1/accounts", map[string]any{"customerId": "x", "type": "GOLD"}, nil))
	assert.Equal(t, http.StatusConflict, do(t, srv, http.MethodPost, "/api/v1/accounts/"+accountID+"/withdraw", map[string]any{"amount": "11"}, &errBody))
	assert.Contains(t, errBody.Error, "insufficient")

	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodGet, "/api/v1/reports/commissions?from=2024-03-01", nil, nil))
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodGet, "/api/v1/reports/commissions?from=2024-03-31&to=2024-03-01", nil, nil))
}

func TestOpeningBelowMinimumIsConflict(t *testing.T) {
	srv := newTestServer(t)
	var customer domain.Customer
	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/customers", map[string]any{"name": "Luis", "documentNumber": "9"}, &customer))

	code := do(t, srv, http.MethodPost, "/accounts", map[string]any{"customerId": customer.ID, "type": "SAVINGS", "balance": "5"}, nil)
	assert.Equal(t, http.StatusConflict, code)

	var list []domain.Account
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/accounts", nil, &list))
	assert.Empty(t, list)
}

func TestTransfersAndReports(t *testing.T) {
	srv := newTestServer(t)
	customerID, from := createCustomerAndAccount(t, srv, "100")
	var to domain.Account
	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/v1/accounts", map[string]any{
		"customerId": customerID, "type": "CURRENT", "balance": "0",
	}, &to))

	var result usecase.TransferResult
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/v1/transfers/own", map[string]any{
		"fromAccountId": from, "toAccountId": to.ID, "amount": "40",
	}, &result))
	assert.Equal(t, "60.00", result.From.Balance.StringFixed(2))
	assert.Equal(t, "40.00", result.To.Balance.StringFixed(2))

	assert.Equal(t, http.StatusConflict, do(t, srv, http.MethodPost, "/api/v1/transfers/third-party", map[string]any{
		"fromAccountId": from, "toAccountId": to.ID, "amount": "1",
	}, nil))

	var tx domain.Transaction
	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/v1/transactions", map[string]any{
		"productId": "card-1", "productType": "CREDIT_CARD", "customerId": customerID,
		"type": "FEE", "amount": "8.50", "commission": "8.50",
	}, &tx))
	var fetched domain.Transaction
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/v1/transactions/"+tx.ID, nil, &fetched))
	assert.Equal(t, domain.MovementFee, fetched.Kind)

	var commissions []domain.CommissionRow
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/v1/reports/commissions?from=2024-03-01&to=2024-03-31", nil, &commissions))
	require.Len(t, commissions, 1)
	assert.Equal(t, "card-1", commissions[0].ProductID)
	assert.Equal(t, "8.50", commissions[0].TotalCommission.StringFixed(2))

	var daily []domain.DailyBalanceRow
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/v1/reports/customers/"+customerID+"/daily-balance", nil, &daily))
	assert.Len(t, daily, 3)

	var byProduct []domain.Transaction
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/transactions/by-product/"+to.ID, nil, &byProduct))
	require.Len(t, byProduct, 1)
	assert.Equal(t, domain.MovementTransferIn, byProduct[0].Kind)
}

func TestCards(t *testing.T) {
	srv := newTestServer(t)
	customerID, _ := createCustomerAndAccount(t, srv, "10")

	var card domain.Card
	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/v1/cards", map[string]any{
		"customerId": customerID, "type": "PERSONAL", "creditLimit": "500",
	}, &card))
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/v1/cards/"+card.ID+"/charge", map[string]any{"amount": "200"}, &card))
	assert.Equal(t, http.StatusConflict, do(t, srv, http.MethodPost, "/api/v1/cards/"+card.ID+"/charge", map[string]any{"amount": "301"}, nil))
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/v1/cards/"+card.ID+"/pay", map[string]any{"amount": "50"}, &card))

	var balance balanceResponse
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/v1/cards/"+card.ID+"/balance", nil, &balance))
	assert.Equal(t, "350.00", balance.Balance.StringFixed(2))

	var cards []domain.Card
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/v1/cards?customerId="+customerID, nil, &cards))
	assert.Len(t, cards, 1)

	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodPost, "/api/v1/cards", map[string]any{
		"customerId": "ghost", "type": "PERSONAL", "creditLimit": "1",
	}, nil))
}

func TestCredits(t *testing.T) {
	srv := newTestServer(t)
	customerID, _ := createCustomerAndAccount(t, srv, "10")

	var credit domain.Credit
	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/v1/credits", map[string]any{
		"customerId": customerID, "type": "BUSINESS", "amount": "1000",
	}, &credit))
	assert.Equal(t, "1000.00", credit.Balance.StringFixed(2), "balance defaults to the amount")

	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/v1/credits/"+credit.ID+"/pay", map[string]any{"amount": "250.50"}, &credit))
	assert.Equal(t, "749.50", credit.Balance.StringFixed(2))
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, "/api/v1/credits/"+credit.ID+"/pay", map[string]any{"amount": "0"}, nil))

	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/v1/credits/"+credit.ID+"/pay", map[string]any{"amount": "5000"}, &credit))
	assert.True(t, credit.Balance.IsZero())

	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPut, "/api/v1/credits/"+credit.ID, map[string]any{
		"type": "PERSONAL", "amount": "300", "balance": "120",
	}, &credit))
	assert.Equal(t, customerID, credit.CustomerID)
	assert.Equal(t, domain.CreditTypePersonal, credit.Type)

	var credits []domain.Credit
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/v1/credits?customerId="+customerID, nil, &credits))
	require.Len(t, credits, 1)
	assert.Equal(t, "120.00", credits[0].Balance.StringFixed(2))

	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, "/api/v1/credits", map[string]any{
		"customerId": customerID, "type": "MORTGAGE", "amount": "10",
	}, nil))
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodPost, "/api/v1/credits", map[string]any{
		"customerId": "ghost", "type": "PERSONAL", "amount": "10",
	}, nil))

	require.Equal(t, http.StatusNoContent, do(t, srv, http.MethodDelete, "/api/v1/credits/"+credit.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/api/v1/credits/"+credit.ID, nil, nil))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(domain.ErrCardNotFound))
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.ErrInvalidDateRange))
	assert.Equal(t, http.StatusConflict, statusFor(domain.ErrMovementLimitReached))
	assert.Equal(t, http.StatusConflict, statusFor(domain.ErrConcurrentUpdate))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(domain.CollaboratorError("lookup", errors.New("down"))))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
