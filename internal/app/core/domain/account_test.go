package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_Deposit(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		amount  string
		fee     string
		want    string
		wantErr error
	}{
		{name: "no fee", balance: "10", amount: "5", fee: "0", want: "15"},
		{name: "fee folded in", balance: "10", amount: "5", fee: "2", want: "13"},
		{name: "fee larger than balance plus amount", balance: "0", amount: "1", fee: "2", wantErr: ErrNegativeResultingBalance},
		{name: "zero amount", balance: "10", amount: "0", fee: "0", wantErr: ErrAmountMustBePositive},
		{name: "negative amount", balance: "10", amount: "-1", fee: "0", wantErr: ErrAmountMustBePositive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{Balance: d(tt.balance)}
			err := acc.Deposit(d(tt.amount), d(tt.fee))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, d(tt.balance).Equal(acc.Balance), "balance must not change on rejection")
				return
			}
			require.NoError(t, err)
			assert.True(t, d(tt.want).Equal(acc.Balance))
		})
	}
}

func TestAccount_Withdraw(t *testing.T) {
	acc := &Account{Balance: d("10")}

	require.NoError(t, acc.Withdraw(d("7"), d("1")))
	assert.True(t, d("2").Equal(acc.Balance))

	err := acc.Withdraw(d("2"), d("0.01"))
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.True(t, errors.Is(err, ErrBusinessRule))
	assert.True(t, d("2").Equal(acc.Balance))

	require.NoError(t, acc.Withdraw(d("2"), decimal.Zero))
	assert.True(t, acc.Balance.IsZero())
}

func TestAccount_ApplyNeverTouchesBalance(t *testing.T) {
	acc := &Account{Type: AccountTypeSavings, Balance: d("50")}
	current := AccountTypeCurrent
	fee := d("12.5")
	limit := 3

	require.NoError(t, acc.Apply(AccountPatch{Type: &current, MaintenanceFee: &fee, MonthlyMovementLimit: &limit}))
	assert.Equal(t, AccountTypeCurrent, acc.Type)
	assert.True(t, fee.Equal(*acc.MaintenanceFee))
	assert.Equal(t, 3, *acc.MonthlyMovementLimit)
	assert.True(t, d("50").Equal(acc.Balance))

	bad := AccountType("GOLD")
	require.ErrorIs(t, acc.Apply(AccountPatch{Type: &bad}), ErrInvalidAccountType)
	negative := d("-1")
	require.ErrorIs(t, acc.Apply(AccountPatch{MaintenanceFee: &negative}), ErrValidation)
}

func TestAccount_CloneIsDeep(t *testing.T) {
	fee := d("1")
	acc := &Account{ID: "a", MaintenanceFee: &fee}
	cp := acc.Clone()
	*cp.MaintenanceFee = d("99")
	assert.True(t, d("1").Equal(*acc.MaintenanceFee))
}

func TestAccount_MovementLimitReached(t *testing.T) {
	acc := &Account{}
	assert.False(t, acc.MovementLimitReached(1000))
	limit := 2
	acc.MonthlyMovementLimit = &limit
	assert.False(t, acc.MovementLimitReached(1))
	assert.True(t, acc.MovementLimitReached(2))
}

func TestCard_ChargeAndPay(t *testing.T) {
	card := &Card{CreditLimit: d("100"), Used: decimal.Zero}

	require.NoError(t, card.Charge(d("60")))
	require.ErrorIs(t, card.Charge(d("41")), ErrCreditLimitExceeded)
	assert.True(t, d("40").Equal(card.Available()))

	require.NoError(t, card.Pay(d("100")))
	assert.True(t, card.Used.IsZero())
}

func TestCredit_Pay(t *testing.T) {
	credit := &Credit{Type: CreditTypePersonal, Amount: d("500"), Balance: d("120.50")}

	require.NoError(t, credit.Pay(d("20.50")))
	assert.True(t, d("100").Equal(credit.Balance))

	require.ErrorIs(t, credit.Pay(decimal.Zero), ErrAmountMustBePositive)
	require.ErrorIs(t, credit.Pay(d("-1")), ErrAmountMustBePositive)
	assert.True(t, d("100").Equal(credit.Balance))

	// 超額還款不會變成負數
	require.NoError(t, credit.Pay(d("150")))
	assert.True(t, credit.Balance.IsZero())

	assert.True(t, CreditTypeBusiness.Valid())
	assert.False(t, CreditType("MORTGAGE").Valid())
}

func TestRules_DefaultsAndCopy(t *testing.T) {
	cfg := RulesConfig{
		MinimumOpening:   map[AccountType]decimal.Decimal{AccountTypeSavings: d("50")},
		FreeTransactions: map[AccountType]int{AccountTypeSavings: 2},
		Fees:             map[AccountType]decimal.Decimal{AccountTypeSavings: d("1.5")},
	}
	rules := NewRules(cfg)
	cfg.Fees[AccountTypeSavings] = d("999")

	assert.True(t, d("50").Equal(rules.MinimumOpening(AccountTypeSavings)))
	assert.True(t, rules.MinimumOpening(AccountTypeCurrent).IsZero())
	assert.Equal(t, 0, rules.FreeTransactions(AccountTypeFixedTerm))
	assert.True(t, d("1.5").Equal(rules.FeeFor(AccountTypeSavings)))

	assert.True(t, rules.FeeAfter(AccountTypeSavings, 1).IsZero())
	assert.True(t, d("1.5").Equal(rules.FeeAfter(AccountTypeSavings, 2)))
}

func TestLockOrder(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, LockOrder("b", "a"))
	assert.Equal(t, []string{"a"}, LockOrder("a", "a", ""))
}

func TestCollaboratorError(t *testing.T) {
	assert.NoError(t, CollaboratorError("op", nil))

	cause := errors.New("boom")
	err := CollaboratorError("save account", cause)
	assert.ErrorIs(t, err, ErrCollaborator)
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, ErrAccountNotFound, CollaboratorError("find", ErrAccountNotFound))
}
