package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-bank-ledger/pkg/mysql"
)

// AccountStore 以 MySQL 儲存帳戶
//
// 以 version 欄位做樂觀鎖：UPDATE ... WHERE id = ? AND version = ?
type AccountStore struct {
	client *mysql.Client
}

func NewAccountStore(client *mysql.Client) *AccountStore {
	return &AccountStore{client: client}
}

func (s *AccountStore) db(ctx context.Context) *gorm.DB {
	return s.client.DB().WithContext(ctx)
}

func (s *AccountStore) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	var row sqlAccount
	err := s.db(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *AccountStore) FindAll(ctx context.Context) ([]*domain.Account, error) {
	return s.find(s.db(ctx))
}

func (s *AccountStore) FindByCustomer(ctx context.Context, customerID string) ([]*domain.Account, error) {
	return s.find(s.db(ctx).Where("customer_id = ?", customerID))
}

func (s *AccountStore) find(q *gorm.DB) ([]*domain.Account, error) {
	var rows []sqlAccount
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Account, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

// Save Version == 0 時 INSERT，否則做帶版本條件的 UPDATE
func (s *AccountStore) Save(ctx context.Context, account *domain.Account) error {
	row := toSQLAccount(account)
	if account.Version == 0 {
		row.Version = 1
		err := s.db(ctx).Create(&row).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrConcurrentUpdate
		}
		if err != nil {
			return err
		}
		account.Version = row.Version
		return nil
	}

	// 使用 map 才能寫入零值與 NULL
	res := s.db(ctx).Model(&sqlAccount{}).
		Where("id = ? AND version = ?", account.ID, account.Version).
		Updates(map[string]any{
			"customer_id":            row.CustomerID,
			"type":                   row.Type,
			"balance":                row.Balance,
			"maintenance_fee":        row.MaintenanceFee,
			"monthly_movement_limit": row.MonthlyMovementLimit,
			"version":                account.Version + 1,
			"updated_at":             row.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrConcurrentUpdate
	}
	account.Version++
	return nil
}

// DeleteByID 刪除不存在的 id 不是錯誤
func (s *AccountStore) DeleteByID(ctx context.Context, id string) error {
	return s.db(ctx).Where("id = ?", id).Delete(&sqlAccount{}).Error
}

func (s *AccountStore) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := s.db(ctx).Model(&sqlAccount{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CustomerStore 以 MySQL 儲存客戶
type CustomerStore struct {
	client *mysql.Client
}

func NewCustomerStore(client *mysql.Client) *CustomerStore {
	return &CustomerStore{client: client}
}

func (s *CustomerStore) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	var row sqlCustomer
	err := s.client.DB().WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *CustomerStore) FindAll(ctx context.Context) ([]*domain.Customer, error) {
	var rows []sqlCustomer
	if err := s.client.DB().WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Customer, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

// Save upsert (INSERT ... ON DUPLICATE KEY UPDATE)
func (s *CustomerStore) Save(ctx context.Context, customer *domain.Customer) error {
	row := toSQLCustomer(customer)
	return s.client.DB().WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

func (s *CustomerStore) DeleteByID(ctx context.Context, id string) error {
	return s.client.DB().WithContext(ctx).Where("id = ?", id).Delete(&sqlCustomer{}).Error
}

func (s *CustomerStore) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := s.client.DB().WithContext(ctx).Model(&sqlCustomer{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CardStore 以 MySQL 儲存信用卡
type CardStore struct {
	client *mysql.Client
}

func NewCardStore(client *mysql.Client) *CardStore {
	return &CardStore{client: client}
}

func (s *CardStore) FindByID(ctx context.Context, id string) (*domain.Card, error) {
	var row sqlCard
	err := s.client.DB().WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCardNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *CardStore) FindAll(ctx context.Context) ([]*domain.Card, error) {
	return s.find(s.client.DB().WithContext(ctx))
}

func (s *CardStore) FindByCustomer(ctx context.Context, customerID string) ([]*domain.Card, error) {
	return s.find(s.client.DB().WithContext(ctx).Where("customer_id = ?", customerID))
}

func (s *CardStore) find(q *gorm.DB) ([]*domain.Card, error) {
	var rows []sqlCard
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Card, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *CardStore) Save(ctx context.Context, card *domain.Card) error {
	row := toSQLCard(card)
	return s.client.DB().WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

func (s *CardStore) DeleteByID(ctx context.Context, id string) error {
	return s.client.DB().WithContext(ctx).Where("id = ?", id).Delete(&sqlCard{}).Error
}

func (s *CardStore) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := s.client.DB().WithContext(ctx).Model(&sqlCard{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreditStore 以 MySQL 儲存貸款
type CreditStore struct {
	client *mysql.Client
}

func NewCreditStore(client *mysql.Client) *CreditStore {
	return &CreditStore{client: client}
}

func (s *CreditStore) FindByID(ctx context.Context, id string) (*domain.Credit, error) {
	var row sqlCredit
	err := s.client.DB().WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCreditNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *CreditStore) FindAll(ctx context.Context) ([]*domain.Credit, error) {
	return s.find(s.client.DB().WithContext(ctx))
}

func (s *CreditStore) FindByCustomer(ctx context.Context, customerID string) ([]*domain.Credit, error) {
	return s.find(s.client.DB().WithContext(ctx).Where("customer_id = ?", customerID))
}

func (s *CreditStore) find(q *gorm.DB) ([]*domain.Credit, error) {
	var rows []sqlCredit
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Credit, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *CreditStore) Save(ctx context.Context, credit *domain.Credit) error {
	row := toSQLCredit(credit)
	return s.client.DB().WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

func (s *CreditStore) DeleteByID(ctx context.Context, id string) error {
	return s.client.DB().WithContext(ctx).Where("id = ?", id).Delete(&sqlCredit{}).Error
}

func (s *CreditStore) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := s.client.DB().WithContext(ctx).Model(&sqlCredit{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var (
	_ usecase.AccountRepository  = (*AccountStore)(nil)
	_ usecase.CustomerRepository = (*CustomerStore)(nil)
	_ usecase.CardRepository     = (*CardStore)(nil)
	_ usecase.CreditRepository   = (*CreditStore)(nil)
)
