package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	grpcin "github.com/JoeShih716/go-bank-ledger/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/usecase"
	grpcpkg "github.com/JoeShih716/go-bank-ledger/pkg/grpc"
)

// RemoteDirectory 透過 gRPC 向其他實例查詢客戶資料與信用卡持有狀態
//
// 逾時由 pool 的 interceptor 控制，不重試。
type RemoteDirectory struct {
	pool   *grpcpkg.Pool
	target string
}

func NewRemoteDirectory(pool *grpcpkg.Pool, target string) *RemoteDirectory {
	return &RemoteDirectory{pool: pool, target: target}
}

func (d *RemoteDirectory) client() (*grpcin.DirectoryClient, error) {
	conn, err := d.pool.GetConnection(d.target)
	if err != nil {
		return nil, err
	}
	return grpcin.NewDirectoryClient(conn), nil
}

// FindByID 找不到時回傳 domain.ErrCustomerNotFound，其他失敗皆為 collaborator 錯誤
func (d *RemoteDirectory) FindByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	c, err := d.client()
	if err != nil {
		return nil, domain.CollaboratorError("customer lookup", err)
	}
	customer, err := c.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, fromStatus("customer lookup", err, domain.ErrCustomerNotFound)
	}
	return customer, nil
}

func (d *RemoteDirectory) HasAnyCard(ctx context.Context, customerID string) (bool, error) {
	c, err := d.client()
	if err != nil {
		return false, domain.CollaboratorError("card lookup", err)
	}
	ok, err := c.HasAnyCard(ctx, customerID)
	if err != nil {
		return false, fromStatus("card lookup", err, domain.ErrCustomerNotFound)
	}
	return ok, nil
}

// fromStatus gRPC 狀態碼轉回 domain 錯誤
func fromStatus(op string, err error, notFound error) error {
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.NotFound:
		return notFound
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", domain.ErrValidation, st.Message())
	default:
		return domain.CollaboratorError(op, err)
	}
}

var (
	_ usecase.CustomerDirectory = (*RemoteDirectory)(nil)
	_ usecase.CardDirectory     = (*RemoteDirectory)(nil)
)
