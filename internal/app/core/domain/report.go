package domain

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UnknownProductType 交易紀錄中沒有任何產品類別時使用的標籤
const UnknownProductType = "UNKNOWN"

// DailyBalanceRow 單一產品的日均餘額
type DailyBalanceRow struct {
	ProductID           string          `json:"productId"`
	ProductType         string          `json:"productType"`
	AverageDailyBalance decimal.Decimal `json:"averageDailyBalance"`
}

// CommissionRow 單一產品的手續費收入彙總
type CommissionRow struct {
	ProductID       string          `json:"productId"`
	ProductType     string          `json:"productType"`
	TotalCommission decimal.Decimal `json:"totalCommission"`
}

type productGroup struct {
	label string
	txs   []*Transaction
}

// groupByProduct 依產品分組，標籤取第一個非空白的產品類別
func groupByProduct(txs []*Transaction) map[string]*productGroup {
	groups := make(map[string]*productGroup)
	for _, tx := range txs {
		g, ok := groups[tx.ProductID]
		if !ok {
			g = &productGroup{}
			groups[tx.ProductID] = g
		}
		if g.label == "" && strings.TrimSpace(tx.ProductType) != "" {
			g.label = tx.ProductType
		}
		g.txs = append(g.txs, tx)
	}
	for _, g := range groups {
		if g.label == "" {
			g.label = UnknownProductType
		}
	}
	return groups
}

// ComputeDailyAverages 以交易紀錄重建每日期末餘額並計算日均
//
// 從 start 所在日期逐日走到 end 所在日期 (含)，每個產品的期初餘額視為 0。
// 平均值 = 每日期末餘額總和 / 天數，四捨五入到小數 2 位。
//
// 參數:
//
//	txs: 區間內的交易紀錄 (可跨多個產品)
//	start, end: 報表區間
//	loc: 日期切分使用的時區
//
// 回傳:
//
//	[]DailyBalanceRow: 依 ProductID 排序
func ComputeDailyAverages(txs []*Transaction, start, end time.Time, loc *time.Location) []DailyBalanceRow {
	firstDay := StartOfDay(start, loc)
	lastDay := StartOfDay(end, loc)
	if lastDay.Before(firstDay) {
		return []DailyBalanceRow{}
	}

	groups := groupByProduct(txs)
	rows := make([]DailyBalanceRow, 0, len(groups))
	for productID, g := range groups {
		netByDay := make(map[string]decimal.Decimal)
		for _, tx := range g.txs {
			day := tx.OccurredAt.In(loc).Format(time.DateOnly)
			netByDay[day] = netByDay[day].Add(tx.SignedAmount())
		}

		running := decimal.Zero
		sum := decimal.Zero
		days := 0
		for day := firstDay; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
			running = running.Add(netByDay[day.Format(time.DateOnly)])
			sum = sum.Add(running)
			days++
		}

		rows = append(rows, DailyBalanceRow{
			ProductID:           productID,
			ProductType:         g.label,
			AverageDailyBalance: sum.DivRound(decimal.NewFromInt(int64(days)), CurrencyScale),
		})
	}
	slices.SortFunc(rows, func(a, b DailyBalanceRow) int { return cmp.Compare(a.ProductID, b.ProductID) })
	return rows
}

// AggregateCommissions 彙總 commission > 0 的交易，依產品加總
func AggregateCommissions(txs []*Transaction) []CommissionRow {
	charged := make([]*Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Commission.IsPositive() {
			charged = append(charged, tx)
		}
	}

	groups := groupByProduct(charged)
	rows := make([]CommissionRow, 0, len(groups))
	for productID, g := range groups {
		total := decimal.Zero
		for _, tx := range g.txs {
			total = total.Add(tx.Commission)
		}
		rows = append(rows, CommissionRow{
			ProductID:       productID,
			ProductType:     g.label,
			TotalCommission: RoundCurrency(total),
		})
	}
	slices.SortFunc(rows, func(a, b CommissionRow) int { return cmp.Compare(a.ProductID, b.ProductID) })
	return rows
}
