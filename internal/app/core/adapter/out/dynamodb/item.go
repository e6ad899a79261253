package dynamodb

import (
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
)

// 固定寬度的 UTC 時間，字典序 = 時間序
const sortableLayout = "2006-01-02T15:04:05.000000000Z07:00"

// amount 以 DynamoDB 的 N 型別保存金額，避免浮點誤差
type amount struct {
	decimal.Decimal
}

func (a amount) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: a.String()}, nil
}

func (a *amount) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	var raw string
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		raw = v.Value
	case *types.AttributeValueMemberS:
		raw = v.Value
	case *types.AttributeValueMemberNULL:
		a.Decimal = decimal.Zero
		return nil
	default:
		return fmt.Errorf("unsupported amount attribute %T", av)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", raw, err)
	}
	a.Decimal = d
	return nil
}

var (
	_ attributevalue.Marshaler   = amount{}
	_ attributevalue.Unmarshaler = (*amount)(nil)
)

// item DynamoDB 上的一筆交易紀錄
type item struct {
	ProductID      string `dynamodbav:"productId"`
	SK             string `dynamodbav:"sk"`
	ID             string `dynamodbav:"id"`
	ProductType    string `dynamodbav:"productType,omitempty"`
	CustomerID     string `dynamodbav:"customerId"`
	Kind           string `dynamodbav:"kind"`
	Amount         amount `dynamodbav:"amount"`
	Fee            amount `dynamodbav:"fee"`
	Commission     amount `dynamodbav:"commission"`
	OccurredAt     string `dynamodbav:"occurredAt"`
	Description    string `dynamodbav:"description,omitempty"`
	CounterpartyID string `dynamodbav:"counterpartyId,omitempty"`
	TransferID     string `dynamodbav:"transferId,omitempty"`
}

func sortableTime(t time.Time) string {
	return t.UTC().Format(sortableLayout)
}

func sortKey(t time.Time, id string) string {
	return sortableTime(t) + "#" + id
}

// skRange 閉區間 [from, to] 對應的 sk 範圍
// "$" 的位元組值緊接在 "#" 之後，涵蓋 to 當下的所有 id
func skRange(from, to time.Time) (string, string) {
	return sortableTime(from), sortableTime(to) + "$"
}

func toItem(t *domain.Transaction) item {
	return item{
		ProductID:      t.ProductID,
		SK:             sortKey(t.OccurredAt, t.ID),
		ID:             t.ID,
		ProductType:    t.ProductType,
		CustomerID:     t.CustomerID,
		Kind:           string(t.Kind),
		Amount:         amount{t.Amount},
		Fee:            amount{t.Fee},
		Commission:     amount{t.Commission},
		OccurredAt:     sortableTime(t.OccurredAt),
		Description:    t.Description,
		CounterpartyID: t.CounterpartyID,
		TransferID:     t.TransferID,
	}
}

func (it *item) toDomain() (*domain.Transaction, error) {
	at, err := time.Parse(sortableLayout, it.OccurredAt)
	if err != nil {
		return nil, fmt.Errorf("parse occurredAt of movement %s: %w", it.ID, err)
	}
	return &domain.Transaction{
		ID:             it.ID,
		ProductID:      it.ProductID,
		ProductType:    it.ProductType,
		CustomerID:     it.CustomerID,
		Kind:           domain.MovementKind(it.Kind),
		Amount:         it.Amount.Decimal,
		Fee:            it.Fee.Decimal,
		Commission:     it.Commission.Decimal,
		OccurredAt:     at,
		Description:    it.Description,
		CounterpartyID: it.CounterpartyID,
		TransferID:     it.TransferID,
	}, nil
}

func sortByOccurrence(txs []*domain.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].OccurredAt.Equal(txs[j].OccurredAt) {
			return txs[i].ID < txs[j].ID
		}
		return txs[i].OccurredAt.Before(txs[j].OccurredAt)
	})
}
