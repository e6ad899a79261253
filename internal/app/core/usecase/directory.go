package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
)

// DirectoryService 客戶、信用卡與貸款資料
//
// 同時作為本地的 CustomerDirectory / CardDirectory，
// 也是 gRPC DirectoryService 對外提供查詢的來源。
type DirectoryService struct {
	customers CustomerRepository
	cards       CardRepository
	credits     CreditRepository
	cardLocks   *AccountLocks
	creditLocks *AccountLocks
}

var (
	_ CustomerDirectory = (*DirectoryService)(nil)
	_ CardDirectory     = (*DirectoryService)(nil)
)

func NewDirectoryService(customers CustomerRepository, cards CardRepository, credits CreditRepository) *DirectoryService {
	return &DirectoryService{
		customers:   customers,
		cards:       cards,
		credits:     credits,
		cardLocks:   NewAccountLocks(),
		creditLocks: NewAccountLocks(),
	}
}

// FindByID 實作 CustomerDirectory
func (s *DirectoryService) FindByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	return s.GetCustomer(ctx, customerID)
}

// HasAnyCard 實作 CardDirectory
func (s *DirectoryService) HasAnyCard(ctx context.Context, customerID string) (bool, error) {
	cards, err := s.cards.FindByCustomer(ctx, customerID)
	if err != nil {
		return false, domain.CollaboratorError("find cards", err)
	}
	return len(cards) > 0, nil
}

func validateCustomer(c *domain.Customer) error {
	if strings.TrimSpace(c.Name) == "" {
		return domainValidation("name is required")
	}
	if strings.TrimSpace(c.DocumentNumber) == "" {
		return domainValidation("documentNumber is required")
	}
	if !c.Profile.Valid() {
		return domain.ErrInvalidProfile
	}
	return nil
}

func (s *DirectoryService) CreateCustomer(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if customer.Profile == "" {
		customer.Profile = domain.ProfileStandard
	}
	if err := validateCustomer(customer); err != nil {
		return nil, err
	}
	created := *customer
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if err := s.customers.Save(ctx, &created); err != nil {
		return nil, domain.CollaboratorError("save customer", err)
	}
	return &created, nil
}

func (s *DirectoryService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, domain.CollaboratorError("find customer", err)
	}
	return customer, nil
}

func (s *DirectoryService) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	customers, err := s.customers.FindAll(ctx)
	if err != nil {
		return nil, domain.CollaboratorError("list customers", err)
	}
	return customers, nil
}

// UpdateCustomer 以新資料覆蓋既有客戶 (ID 不變)
func (s *DirectoryService) UpdateCustomer(ctx context.Context, id string, customer *domain.Customer) (*domain.Customer, error) {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return nil, err
	}
	if err := validateCustomer(customer); err != nil {
		return nil, err
	}
	updated := *customer
	updated.ID = id
	if err := s.customers.Save(ctx, &updated); err != nil {
		return nil, domain.CollaboratorError("save customer", err)
	}
	return &updated, nil
}

func (s *DirectoryService) DeleteCustomer(ctx context.Context, id string) error {
	if err := s.customers.DeleteByID(ctx, id); err != nil {
		return domain.CollaboratorError("delete customer", err)
	}
	return nil
}

func validateCard(c *domain.Card) error {
	if strings.TrimSpace(c.CustomerID) == "" {
		return domainValidation("customerId is required")
	}
	switch c.Type {
	case domain.CardTypePersonal, domain.CardTypeBusiness:
	default:
		return domainValidation("invalid card type %q", c.Type)
	}
	if c.CreditLimit.IsNegative() || c.Used.IsNegative() {
		return domainValidation("creditLimit and used must not be negative")
	}
	if c.Used.GreaterThan(c.CreditLimit) {
		return domain.ErrCreditLimitExceeded
	}
	return nil
}

// CreateCard 發卡，持卡客戶必須存在
func (s *DirectoryService) CreateCard(ctx context.Context, card *domain.Card) (*domain.Card, error) {
	if err := validateCard(card); err != nil {
		return nil, err
	}
	if _, err := s.GetCustomer(ctx, card.CustomerID); err != nil {
		return nil, err
	}
	created := *card
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if err := s.cards.Save(ctx, &created); err != nil {
		return nil, domain.CollaboratorError("save card", err)
	}
	return &created, nil
}

func (s *DirectoryService) GetCard(ctx context.Context, id string) (*domain.Card, error) {
	card, err := s.cards.FindByID(ctx, id)
	if err != nil {
		return nil, domain.CollaboratorError("find card", err)
	}
	return card, nil
}

// ListCards customerID 為空時列出全部
func (s *DirectoryService) ListCards(ctx context.Context, customerID string) ([]*domain.Card, error) {
	var (
		cards []*domain.Card
		err   error
	)
	if customerID != "" {
		cards, err = s.cards.FindByCustomer(ctx, customerID)
	} else {
		cards, err = s.cards.FindAll(ctx)
	}
	if err != nil {
		return nil, domain.CollaboratorError("list cards", err)
	}
	return cards, nil
}

func (s *DirectoryService) UpdateCard(ctx context.Context, id string, card *domain.Card) (*domain.Card, error) {
	unlock := s.cardLocks.Lock(id)
	defer unlock()

	if _, err := s.GetCard(ctx, id); err != nil {
		return nil, err
	}
	if err := validateCard(card); err != nil {
		return nil, err
	}
	updated := *card
	updated.ID = id
	if err := s.cards.Save(ctx, &updated); err != nil {
		return nil, domain.CollaboratorError("save card", err)
	}
	return &updated, nil
}

func (s *DirectoryService) DeleteCard(ctx context.Context, id string) error {
	if err := s.cards.DeleteByID(ctx, id); err != nil {
		return domain.CollaboratorError("delete card", err)
	}
	return nil
}

// Charge 刷卡消費
func (s *DirectoryService) Charge(ctx context.Context, id string, amount decimal.Decimal) (*domain.Card, error) {
	return s.mutateCard(ctx, id, func(c *domain.Card) error { return c.Charge(amount) })
}

// Pay 信用卡還款
func (s *DirectoryService) Pay(ctx context.Context, id string, amount decimal.Decimal) (*domain.Card, error) {
	return s.mutateCard(ctx, id, func(c *domain.Card) error { return c.Pay(amount) })
}

// CardBalance 可用額度
func (s *DirectoryService) CardBalance(ctx context.Context, id string) (decimal.Decimal, error) {
	card, err := s.GetCard(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return card.Available(), nil
}

func (s *DirectoryService) mutateCard(ctx context.Context, id string, fn func(*domain.Card) error) (*domain.Card, error) {
	unlock := s.cardLocks.Lock(id)
	defer unlock()

	card, err := s.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(card); err != nil {
		return nil, err
	}
	if err := s.cards.Save(ctx, card); err != nil {
		return nil, domain.CollaboratorError("save card", err)
	}
	return card, nil
}

func validateCredit(c *domain.Credit) error {
	if strings.TrimSpace(c.CustomerID) == "" {
		return domainValidation("customerId is required")
	}
	if !c.Type.Valid() {
		return domainValidation("invalid credit type %q", c.Type)
	}
	if !c.Amount.IsPositive() {
		return domainValidation("amount must be positive")
	}
	if c.Balance.IsNegative() {
		return domainValidation("balance must not be negative")
	}
	return nil
}

// CreateCredit 核貸，借款客戶必須存在
func (s *DirectoryService) CreateCredit(ctx context.Context, credit *domain.Credit) (*domain.Credit, error) {
	if err := validateCredit(credit); err != nil {
		return nil, err
	}
	if _, err := s.GetCustomer(ctx, credit.CustomerID); err != nil {
		return nil, err
	}
	created := *credit
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if err := s.credits.Save(ctx, &created); err != nil {
		return nil, domain.CollaboratorError("save credit", err)
	}
	return &created, nil
}

func (s *DirectoryService) GetCredit(ctx context.Context, id string) (*domain.Credit, error) {
	credit, err := s.credits.FindByID(ctx, id)
	if err != nil {
		return nil, domain.CollaboratorError("find credit", err)
	}
	return credit, nil
}

// ListCredits customerID 為空時列出全部
func (s *DirectoryService) ListCredits(ctx context.Context, customerID string) ([]*domain.Credit, error) {
	var (
		credits []*domain.Credit
		err     error
	)
	if customerID != "" {
		credits, err = s.credits.FindByCustomer(ctx, customerID)
	} else {
		credits, err = s.credits.FindAll(ctx)
	}
	if err != nil {
		return nil, domain.CollaboratorError("list credits", err)
	}
	return credits, nil
}

// UpdateCredit 覆蓋類別、金額與未清償金額，借款客戶不變
func (s *DirectoryService) UpdateCredit(ctx context.Context, id string, credit *domain.Credit) (*domain.Credit, error) {
	unlock := s.creditLocks.Lock(id)
	defer unlock()

	existing, err := s.GetCredit(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := *credit
	updated.ID = id
	updated.CustomerID = existing.CustomerID
	if err := validateCredit(&updated); err != nil {
		return nil, err
	}
	if err := s.credits.Save(ctx, &updated); err != nil {
		return nil, domain.CollaboratorError("save credit", err)
	}
	return &updated, nil
}

func (s *DirectoryService) DeleteCredit(ctx context.Context, id string) error {
	if err := s.credits.DeleteByID(ctx, id); err != nil {
		return domain.CollaboratorError("delete credit", err)
	}
	return nil
}

// PayCredit 貸款還款
func (s *DirectoryService) PayCredit(ctx context.Context, id string, amount decimal.Decimal) (*domain.Credit, error) {
	unlock := s.creditLocks.Lock(id)
	defer unlock()

	credit, err := s.GetCredit(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := credit.Pay(amount); err != nil {
		return nil, err
	}
	if err := s.credits.Save(ctx, credit); err != nil {
		return nil, domain.CollaboratorError("save credit", err)
	}
	return credit, nil
}
