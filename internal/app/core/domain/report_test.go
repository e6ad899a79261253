package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func at(day, hour int) time.Time {
	return time.Date(2024, time.March, day, hour, 0, 0, 0, time.UTC)
}

func TestComputeDailyAverages_ForwardWalk(t *testing.T) {
	txs := []*Transaction{
		{ProductID: "acc-1", ProductType: "SAVINGS", Kind: MovementDeposit, Amount: d("100"), OccurredAt: at(1, 9)},
		{ProductID: "acc-1", ProductType: "SAVINGS", Kind: MovementWithdraw, Amount: d("40"), OccurredAt: at(3, 15)},
	}

	rows := ComputeDailyAverages(txs, at(1, 0), EndOfDay(at(3, 0), time.UTC), time.UTC)

	require.Len(t, rows, 1)
	assert.Equal(t, "acc-1", rows[0].ProductID)
	assert.Equal(t, "SAVINGS", rows[0].ProductType)
	assert.Equal(t, "86.67", rows[0].AverageDailyBalance.StringFixed(2))
}

func TestComputeDailyAverages_SignsAndGrouping(t *testing.T) {
	txs := []*Transaction{
		{ProductID: "b", ProductType: "", Kind: MovementTransferIn, Amount: d("50"), OccurredAt: at(1, 1)},
		{ProductID: "b", ProductType: "  ", Kind: MovementFee, Amount: d("10"), OccurredAt: at(2, 1)},
		{ProductID: "a", ProductType: "", Kind: MovementDeposit, Amount: d("30"), OccurredAt: at(1, 1)},
		{ProductID: "a", ProductType: "CURRENT", Kind: MovementTransferOut, Amount: d("30"), OccurredAt: at(2, 1)},
		// 同一天多筆交易加總
		{ProductID: "a", ProductType: "SAVINGS", Kind: MovementDeposit, Amount: d("5"), OccurredAt: at(2, 2)},
	}

	rows := ComputeDailyAverages(txs, at(1, 0), at(2, 23), time.UTC)

	require.Len(t, rows, 2)
	// a: 30, 5 → 17.50；標籤取第一個非空白
	assert.Equal(t, "a", rows[0].ProductID)
	assert.Equal(t, "CURRENT", rows[0].ProductType)
	assert.True(t, d("17.5").Equal(rows[0].AverageDailyBalance))
	// b: 50, 40 → 45；沒有標籤
	assert.Equal(t, "b", rows[1].ProductID)
	assert.Equal(t, UnknownProductType, rows[1].ProductType)
	assert.True(t, d("45").Equal(rows[1].AverageDailyBalance))
}

func TestComputeDailyAverages_TimeZoneSplitsDays(t *testing.T) {
	lima := time.FixedZone("PET", -5*3600)
	// UTC 3/2 02:00 在 -05:00 仍是 3/1
	txs := []*Transaction{
		{ProductID: "acc", ProductType: "SAVINGS", Kind: MovementDeposit, Amount: d("20"), OccurredAt: time.Date(2024, 3, 2, 2, 0, 0, 0, time.UTC)},
	}
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, lima)

	rows := ComputeDailyAverages(txs, start, EndOfDay(start.AddDate(0, 0, 1), lima), lima)

	require.Len(t, rows, 1)
	assert.True(t, d("20").Equal(rows[0].AverageDailyBalance))
}

func TestComputeDailyAverages_EmptyInputs(t *testing.T) {
	assert.Empty(t, ComputeDailyAverages(nil, at(1, 0), at(5, 0), time.UTC))
	// end 早於 start：沒有任何一天可走
	assert.Empty(t, ComputeDailyAverages([]*Transaction{{ProductID: "x", Kind: MovementDeposit, Amount: d("1"), OccurredAt: at(1, 0)}}, at(5, 0), at(1, 0), time.UTC))
}

func TestComputeDailyAverages_RoundsHalfAwayFromZero(t *testing.T) {
	// 0.01, 0.01, 0.00 → 0.00666.. → 0.01
	txs := []*Transaction{
		{ProductID: "acc", Kind: MovementDeposit, Amount: d("0.01"), OccurredAt: at(1, 0)},
		{ProductID: "acc", Kind: MovementWithdraw, Amount: d("0.01"), OccurredAt: at(3, 0)},
	}
	rows := ComputeDailyAverages(txs, at(1, 0), at(3, 0), time.UTC)
	require.Len(t, rows, 1)
	assert.Equal(t, "0.01", rows[0].AverageDailyBalance.StringFixed(2))
}

func TestAggregateCommissions(t *testing.T) {
	txs := []*Transaction{
		{ProductID: "acc-1", ProductType: "SAVINGS", Commission: d("5.00")},
		{ProductID: "acc-1", ProductType: "SAVINGS", Commission: d("3.50")},
		{ProductID: "acc-1", ProductType: "SAVINGS", Commission: decimal.Zero},
		{ProductID: "acc-2", Commission: decimal.Zero},
		{ProductID: "acc-3", Commission: d("1.25")},
	}

	rows := AggregateCommissions(txs)

	require.Len(t, rows, 2)
	assert.Equal(t, CommissionRow{ProductID: "acc-1", ProductType: "SAVINGS", TotalCommission: rows[0].TotalCommission}, rows[0])
	assert.Equal(t, "8.50", rows[0].TotalCommission.StringFixed(2))
	assert.Equal(t, "acc-3", rows[1].ProductID)
	assert.Equal(t, UnknownProductType, rows[1].ProductType)
	assert.Equal(t, "1.25", rows[1].TotalCommission.StringFixed(2))
}
