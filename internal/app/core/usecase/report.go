package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
)

// ReportService 由交易紀錄重建報表 (只讀)
type ReportService struct {
	log MovementLog
	settings
}

var _ DailyAverager = (*ReportService)(nil)

func NewReportService(log MovementLog, opts ...Option) *ReportService {
	return &ReportService{
		log:      log,
		settings: newSettings(opts),
	}
}

// DailyBalance 客戶各產品本月至今的日均餘額
//
// 區間為 [本月 1 日 00:00, 今天 23:59:59.999999999]，以設定的時區切分日期。
func (s *ReportService) DailyBalance(ctx context.Context, customerID string) ([]domain.DailyBalanceRow, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, domainValidation("customerId is required")
	}
	now := s.now()
	start, _ := domain.YearMonthOf(now, s.loc).Bounds(s.loc)
	end := domain.EndOfDay(now, s.loc)

	txs, err := s.log.FindByCustomerBetween(ctx, customerID, start, end)
	if err != nil {
		return nil, domain.CollaboratorError("find customer movements", err)
	}
	return domain.ComputeDailyAverages(txs, start, end, s.loc), nil
}

// Commissions 日期區間 (含頭尾) 內各產品的手續費收入
func (s *ReportService) Commissions(ctx context.Context, from, to time.Time) ([]domain.CommissionRow, error) {
	start := domain.StartOfDay(from, s.loc)
	end := domain.EndOfDay(to, s.loc)
	if end.Before(start) {
		return nil, domain.ErrInvalidDateRange
	}

	txs, err := s.log.FindBetween(ctx, start, end)
	if err != nil {
		return nil, domain.CollaboratorError("find movements", err)
	}
	return domain.AggregateCommissions(txs), nil
}

// MonthToDateDailyAverage 本月至今的日均餘額
//
// accountID 不為空時回傳該產品的日均 (沒有交易則為 0)；
// 為空時回傳客戶所有產品日均的加總。
func (s *ReportService) MonthToDateDailyAverage(ctx context.Context, customerID, accountID string) (decimal.Decimal, error) {
	rows, err := s.DailyBalance(ctx, customerID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, row := range rows {
		if accountID != "" && row.ProductID != accountID {
			continue
		}
		total = total.Add(row.AverageDailyBalance)
	}
	return total, nil
}
