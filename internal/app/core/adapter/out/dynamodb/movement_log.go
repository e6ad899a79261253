package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/usecase"
)

const (
	// CustomerIndex GSI：customerId + sk，用於客戶報表
	CustomerIndex = "CustomerIndex"
	// IDIndex GSI：id，用於單筆查詢
	IDIndex = "IdIndex"

	// DynamoDB 單次 TransactWriteItems 上限
	maxTransactItems = 100
)

// API 本 adapter 用到的 DynamoDB 操作 (方便測試替換)
type API interface {
	dynamodb.QueryAPIClient
	dynamodb.ScanAPIClient
	dynamodb.DescribeTableAPIClient
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// Config DynamoDB 連線設定
type Config struct {
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"` // 本機 DynamoDB Local 使用
	Table       string `yaml:"table"`
	CreateTable bool   `yaml:"create_table"`
}

// MovementLog 以 DynamoDB 儲存交易紀錄
//
// 主鍵 productId (HASH) + sk (RANGE)，sk = 固定寬度的 UTC 時間 + "#" + id，
// 排序即為時間順序。
type MovementLog struct {
	api   API
	table string
}

// NewClient 依設定建立 DynamoDB client
func NewClient(ctx context.Context, cfg Config) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

func NewMovementLog(api API, table string) *MovementLog {
	return &MovementLog{api: api, table: table}
}

// EnsureTable 資料表不存在時建立 (含兩個 GSI) 並等待可用
func (l *MovementLog) EnsureTable(ctx context.Context) error {
	_, err := l.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(l.table)})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("describe table %s: %w", l.table, err)
	}

	_, err = l.api.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(l.table),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("productId"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("sk"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("customerId"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("productId"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("sk"), KeyType: types.KeyTypeRange},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName: aws.String(CustomerIndex),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("customerId"), KeyType: types.KeyTypeHash},
					{AttributeName: aws.String("sk"), KeyType: types.KeyTypeRange},
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
			{
				IndexName: aws.String(IDIndex),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create table %s: %w", l.table, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(l.api)
	return waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(l.table)}, 2*time.Minute)
}

// Append 以 TransactWriteItems 原子寫入整批紀錄
//
// 每筆都帶 attribute_not_exists 條件。整批被取消時，條件失敗的項目代表已經寫過 (冪等)，
// 其餘 (原因為 None) 的項目並沒有寫入，會單獨再送一次。
func (l *MovementLog) Append(ctx context.Context, txs ...*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	if len(txs) > maxTransactItems {
		return fmt.Errorf("append %d movements: at most %d per batch", len(txs), maxTransactItems)
	}

	items := make([]types.TransactWriteItem, 0, len(txs))
	for _, tx := range txs {
		av, err := attributevalue.MarshalMap(toItem(tx))
		if err != nil {
			return fmt.Errorf("marshal movement %s: %w", tx.ID, err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(l.table),
				Item:                av,
				ConditionExpression: aws.String("attribute_not_exists(sk)"),
			},
		})
	}

	for {
		_, err := l.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
		if err == nil {
			return nil
		}
		pending, ok := unwritten(err, items)
		if !ok {
			return err
		}
		if len(pending) == 0 {
			return nil
		}
		items = pending
	}
}

// unwritten 從取消原因找出尚未寫入的項目
//
// 回傳:
//
//	[]types.TransactWriteItem: 原因為 None 的項目，空代表全部都已存在
//	bool: 取消原因只有條件失敗與 None，且至少一筆條件失敗 (否則重送也不會有進展)
func unwritten(err error, items []types.TransactWriteItem) ([]types.TransactWriteItem, bool) {
	var canceled *types.TransactionCanceledException
	if !errors.As(err, &canceled) || len(canceled.CancellationReasons) != len(items) {
		return nil, false
	}
	pending := make([]types.TransactWriteItem, 0, len(items))
	for i, reason := range canceled.CancellationReasons {
		switch aws.ToString(reason.Code) {
		case "ConditionalCheckFailed":
		case "None":
			pending = append(pending, items[i])
		default:
			return nil, false
		}
	}
	if len(pending) == len(items) {
		return nil, false
	}
	return pending, true
}

func (l *MovementLog) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	out, err := l.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(l.table),
		IndexName:              aws.String(IDIndex),
		KeyConditionExpression: aws.String("id = :id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: id},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("query movement %s: %w", id, err)
	}
	if len(out.Items) == 0 {
		return nil, domain.ErrTransactionNotFound
	}
	var it item
	if err := attributevalue.UnmarshalMap(out.Items[0], &it); err != nil {
		return nil, fmt.Errorf("unmarshal movement: %w", err)
	}
	return it.toDomain()
}

func (l *MovementLog) FindByProduct(ctx context.Context, productID string) ([]*domain.Transaction, error) {
	return l.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(l.table),
		KeyConditionExpression: aws.String("productId = :p"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p": &types.AttributeValueMemberS{Value: productID},
		},
	})
}

func (l *MovementLog) FindByCustomerBetween(ctx context.Context, customerID string, from, to time.Time) ([]*domain.Transaction, error) {
	lo, hi := skRange(from, to)
	return l.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(l.table),
		IndexName:              aws.String(CustomerIndex),
		KeyConditionExpression: aws.String("customerId = :c AND sk BETWEEN :lo AND :hi"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c":  &types.AttributeValueMemberS{Value: customerID},
			":lo": &types.AttributeValueMemberS{Value: lo},
			":hi": &types.AttributeValueMemberS{Value: hi},
		},
	})
}

// FindBetween 跨所有產品，只能 Scan
func (l *MovementLog) FindBetween(ctx context.Context, from, to time.Time) ([]*domain.Transaction, error) {
	lo, hi := skRange(from, to)
	paginator := dynamodb.NewScanPaginator(l.api, &dynamodb.ScanInput{
		TableName:        aws.String(l.table),
		FilterExpression: aws.String("sk BETWEEN :lo AND :hi"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":lo": &types.AttributeValueMemberS{Value: lo},
			":hi": &types.AttributeValueMemberS{Value: hi},
		},
	})
	var out []*domain.Transaction
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan movements: %w", err)
		}
		txs, err := decodeItems(page.Items)
		if err != nil {
			return nil, err
		}
		out = append(out, txs...)
	}
	if out == nil {
		out = []*domain.Transaction{}
	}
	sortByOccurrence(out)
	return out, nil
}

func (l *MovementLog) CountByProductBetween(ctx context.Context, productID string, from, to time.Time) (int, error) {
	lo, hi := skRange(from, to)
	paginator := dynamodb.NewQueryPaginator(l.api, &dynamodb.QueryInput{
		TableName:              aws.String(l.table),
		KeyConditionExpression: aws.String("productId = :p AND sk BETWEEN :lo AND :hi"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p":  &types.AttributeValueMemberS{Value: productID},
			":lo": &types.AttributeValueMemberS{Value: lo},
			":hi": &types.AttributeValueMemberS{Value: hi},
		},
		Select: types.SelectCount,
	})
	total := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("count movements: %w", err)
		}
		total += int(page.Count)
	}
	return total, nil
}

func (l *MovementLog) query(ctx context.Context, input *dynamodb.QueryInput) ([]*domain.Transaction, error) {
	paginator := dynamodb.NewQueryPaginator(l.api, input)
	var out []*domain.Transaction
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query movements: %w", err)
		}
		txs, err := decodeItems(page.Items)
		if err != nil {
			return nil, err
		}
		out = append(out, txs...)
	}
	if out == nil {
		out = []*domain.Transaction{}
	}
	return out, nil
}

func decodeItems(raw []map[string]types.AttributeValue) ([]*domain.Transaction, error) {
	var items []item
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, fmt.Errorf("unmarshal movements: %w", err)
	}
	out := make([]*domain.Transaction, 0, len(items))
	for i := range items {
		tx, err := items[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

var _ usecase.MovementLog = (*MovementLog)(nil)
