package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-bank-ledger/pkg/mysql"
)

// MovementLog 以 MySQL 儲存交易紀錄
type MovementLog struct {
	client *mysql.Client
}

func NewMovementLog(client *mysql.Client) *MovementLog {
	return &MovementLog{client: client}
}

// Append 在同一個 Transaction 中寫入整批紀錄
// 已存在的 ID 會被忽略 (冪等)
func (l *MovementLog) Append(ctx context.Context, txs ...*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	rows := make([]sqlMovement, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, toSQLMovement(t))
	}
	return l.client.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
}

func (l *MovementLog) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	var row sqlMovement
	err := l.client.DB().WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (l *MovementLog) FindByProduct(ctx context.Context, productID string) ([]*domain.Transaction, error) {
	return l.find(l.client.DB().WithContext(ctx).Where("product_id = ?", productID))
}

func (l *MovementLog) FindByCustomerBetween(ctx context.Context, customerID string, from, to time.Time) ([]*domain.Transaction, error) {
	return l.find(l.client.DB().WithContext(ctx).
		Where("customer_id = ? AND occurred_at BETWEEN ? AND ?", customerID, from.UTC(), to.UTC()))
}

func (l *MovementLog) FindBetween(ctx context.Context, from, to time.Time) ([]*domain.Transaction, error) {
	return l.find(l.client.DB().WithContext(ctx).
		Where("occurred_at BETWEEN ? AND ?", from.UTC(), to.UTC()))
}

func (l *MovementLog) CountByProductBetween(ctx context.Context, productID string, from, to time.Time) (int, error) {
	var count int64
	err := l.client.DB().WithContext(ctx).Model(&sqlMovement{}).
		Where("product_id = ? AND occurred_at BETWEEN ? AND ?", productID, from.UTC(), to.UTC()).
		Count(&count).Error
	return int(count), err
}

func (l *MovementLog) find(q *gorm.DB) ([]*domain.Transaction, error) {
	var rows []sqlMovement
	if err := q.Order("occurred_at, seq").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Transaction, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

var _ usecase.MovementLog = (*MovementLog)(nil)
