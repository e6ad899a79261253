package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// 金額一律使用 decimal，不使用 float
const (
	// CurrencyScale 報表輸出的小數位數
	CurrencyScale int32 = 2
)

// RoundCurrency 以固定精度 (四捨五入，遠離零) 輸出金額，確保報表每次結果一致
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyScale)
}

// IsPositive 金額必須存在且大於 0
func IsPositive(amount *decimal.Decimal) bool {
	return amount != nil && amount.IsPositive()
}

// YearMonth 日曆月份，用於計算當月交易次數
type YearMonth struct {
	Year  int
	Month time.Month
}

// YearMonthOf 取得 t 在 loc 時區下的年月
func YearMonthOf(t time.Time, loc *time.Location) YearMonth {
	local := t.In(loc)
	return YearMonth{Year: local.Year(), Month: local.Month()}
}

// Bounds 回傳該月份的 [第一天 00:00, 最後一天 23:59:59.999999999]
func (ym YearMonth) Bounds(loc *time.Location) (time.Time, time.Time) {
	start := time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

func (ym YearMonth) String() string {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// StartOfDay 回傳 t 所在日期的 00:00 (loc 時區)
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay 回傳 t 所在日期的最後一奈秒
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
