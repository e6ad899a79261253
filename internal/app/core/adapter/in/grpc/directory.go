package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/usecase"
)

const (
	DirectoryServiceName = "bank.directory.v1.DirectoryService"

	directoryGetCustomerMethod = "/" + DirectoryServiceName + "/GetCustomer"
	directoryHasAnyCardMethod  = "/" + DirectoryServiceName + "/HasAnyCard"
)

// DirectoryService 讓其他實例查詢客戶資料與信用卡持有狀態
type DirectoryService interface {
	GetCustomer(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	HasAnyCard(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
}

var DirectoryServiceDesc = grpc.ServiceDesc{
	ServiceName: DirectoryServiceName,
	HandlerType: (*DirectoryService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetCustomer", Handler: unary(directoryGetCustomerMethod, DirectoryService.GetCustomer)},
		{MethodName: "HasAnyCard", Handler: unary(directoryHasAnyCardMethod, DirectoryService.HasAnyCard)},
	},
	Streams: []grpc.StreamDesc{},
}

type DirectoryServer struct {
	customers usecase.CustomerDirectory
	cards     usecase.CardDirectory
}

func NewDirectoryServer(customers usecase.CustomerDirectory, cards usecase.CardDirectory) *DirectoryServer {
	return &DirectoryServer{customers: customers, cards: cards}
}

func (s *DirectoryServer) Register(registrar grpc.ServiceRegistrar) {
	registrar.RegisterService(&DirectoryServiceDesc, s)
}

func (s *DirectoryServer) GetCustomer(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	customer, err := s.customers.FindByID(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeStruct(customer)
}

func (s *DirectoryServer) HasAnyCard(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	ok, err := s.cards.HasAnyCard(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Bool(ok), nil
}

var _ DirectoryService = (*DirectoryServer)(nil)

// DirectoryClient bank.directory.v1.DirectoryService 的客戶端
// 回傳原始 gRPC 狀態錯誤，由呼叫端決定如何對應
type DirectoryClient struct {
	cc grpc.ClientConnInterface
}

func NewDirectoryClient(cc grpc.ClientConnInterface) *DirectoryClient {
	return &DirectoryClient{cc: cc}
}

func (c *DirectoryClient) GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error) {
	resp := &structpb.Struct{}
	if err := c.cc.Invoke(ctx, directoryGetCustomerMethod, wrapperspb.String(customerID), resp); err != nil {
		return nil, err
	}
	var out domain.Customer
	if err := decodeStruct(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *DirectoryClient) HasAnyCard(ctx context.Context, customerID string) (bool, error) {
	resp := &wrapperspb.BoolValue{}
	if err := c.cc.Invoke(ctx, directoryHasAnyCardMethod, wrapperspb.String(customerID), resp); err != nil {
		return false, err
	}
	return resp.GetValue(), nil
}
