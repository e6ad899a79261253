package domain

import (
	"maps"

	"github.com/shopspring/decimal"
)

// RulesConfig 由設定檔轉換而來的規則原始資料
type RulesConfig struct {
	MinimumOpening         map[AccountType]decimal.Decimal
	FreeTransactions       map[AccountType]int
	Fees                   map[AccountType]decimal.Decimal
	VIPMinimumDailyAverage decimal.Decimal
	PYMEMaintenanceFee     decimal.Decimal
}

// Rules 手續費與開戶資格規則，啟動時建立一次後唯讀，可安全並發讀取
type Rules struct {
	minimumOpening         map[AccountType]decimal.Decimal
	freeTransactions       map[AccountType]int
	fees                   map[AccountType]decimal.Decimal
	vipMinimumDailyAverage decimal.Decimal
	pymeMaintenanceFee     decimal.Decimal
}

// NewRules 複製設定中的 map，之後修改 cfg 不影響 Rules
func NewRules(cfg RulesConfig) *Rules {
	r := &Rules{
		minimumOpening:         make(map[AccountType]decimal.Decimal, len(cfg.MinimumOpening)),
		freeTransactions:       make(map[AccountType]int, len(cfg.FreeTransactions)),
		fees:                   make(map[AccountType]decimal.Decimal, len(cfg.Fees)),
		vipMinimumDailyAverage: cfg.VIPMinimumDailyAverage,
		pymeMaintenanceFee:     cfg.PYMEMaintenanceFee,
	}
	maps.Copy(r.minimumOpening, cfg.MinimumOpening)
	maps.Copy(r.freeTransactions, cfg.FreeTransactions)
	maps.Copy(r.fees, cfg.Fees)
	return r
}

// MinimumOpening 開戶最低金額，未設定時為 0
func (r *Rules) MinimumOpening(t AccountType) decimal.Decimal {
	return r.minimumOpening[t]
}

// FreeTransactions 每月免手續費次數，未設定時為 0
func (r *Rules) FreeTransactions(t AccountType) int {
	return r.freeTransactions[t]
}

// FeeFor 超過免費次數後每筆手續費，未設定時為 0
func (r *Rules) FeeFor(t AccountType) decimal.Decimal {
	return r.fees[t]
}

func (r *Rules) VIPMinimumDailyAverage() decimal.Decimal {
	return r.vipMinimumDailyAverage
}

func (r *Rules) PYMEMaintenanceFee() decimal.Decimal {
	return r.pymeMaintenanceFee
}

// FeeAfter 已有 countThisMonth 筆交易時，下一筆應收的手續費
func (r *Rules) FeeAfter(t AccountType, countThisMonth int) decimal.Decimal {
	if countThisMonth >= r.FreeTransactions(t) {
		return r.FeeFor(t)
	}
	return decimal.Zero
}
