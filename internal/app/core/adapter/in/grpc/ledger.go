package grpc

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	money "google.golang.org/genproto/googleapis/type/money"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/usecase"
)

const (
	LedgerServiceName = "bank.ledger.v1.LedgerService"

	ledgerDepositMethod            = "/" + LedgerServiceName + "/Deposit"
	ledgerWithdrawMethod           = "/" + LedgerServiceName + "/Withdraw"
	ledgerTransferOwnMethod        = "/" + LedgerServiceName + "/TransferOwn"
	ledgerTransferThirdPartyMethod = "/" + LedgerServiceName + "/TransferThirdParty"
	ledgerGetBalanceMethod         = "/" + LedgerServiceName + "/GetBalance"
	ledgerDailyBalanceMethod       = "/" + LedgerServiceName + "/DailyBalanceReport"
	ledgerCommissionMethod         = "/" + LedgerServiceName + "/CommissionReport"
)

// LedgerService bank.ledger.v1.LedgerService 的伺服器介面
type LedgerService interface {
	Deposit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Withdraw(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TransferOwn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TransferThirdParty(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBalance(context.Context, *wrapperspb.StringValue) (*money.Money, error)
	DailyBalanceReport(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	CommissionReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// LedgerServiceDesc 手寫的 ServiceDesc
var LedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: LedgerServiceName,
	HandlerType: (*LedgerService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Deposit", Handler: unary(ledgerDepositMethod, LedgerService.Deposit)},
		{MethodName: "Withdraw", Handler: unary(ledgerWithdrawMethod, LedgerService.Withdraw)},
		{MethodName: "TransferOwn", Handler: unary(ledgerTransferOwnMethod, LedgerService.TransferOwn)},
		{MethodName: "TransferThirdParty", Handler: unary(ledgerTransferThirdPartyMethod, LedgerService.TransferThirdParty)},
		{MethodName: "GetBalance", Handler: unary(ledgerGetBalanceMethod, LedgerService.GetBalance)},
		{MethodName: "DailyBalanceReport", Handler: unary(ledgerDailyBalanceMethod, LedgerService.DailyBalanceReport)},
		{MethodName: "CommissionReport", Handler: unary(ledgerCommissionMethod, LedgerService.CommissionReport)},
	},
	Streams: []grpc.StreamDesc{},
}

// movementRequest Deposit / Withdraw 的請求內容
type movementRequest struct {
	AccountID string          `json:"accountId"`
	Amount    decimal.Decimal `json:"amount"`
}

// transferRequest TransferOwn / TransferThirdParty 的請求內容
type transferRequest struct {
	FromAccountID string          `json:"fromAccountId"`
	ToAccountID   string          `json:"toAccountId"`
	Amount        decimal.Decimal `json:"amount"`
}

// commissionRequest 日期格式 YYYY-MM-DD
type commissionRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type dailyBalanceReport struct {
	Rows []domain.DailyBalanceRow `json:"rows"`
}

type commissionReport struct {
	Rows []domain.CommissionRow `json:"rows"`
}

// LedgerServer 實作 LedgerService，轉呼叫 use case
type LedgerServer struct {
	core     *usecase.Core
	currency string
	loc      *time.Location
}

// NewLedgerServer
//
// 參數:
//
//	core: 核心 use case
//	currency: GetBalance 回傳的 ISO 4217 幣別
//	loc: 解析報表日期所用的時區
func NewLedgerServer(core *usecase.Core, currency string, loc *time.Location) *LedgerServer {
	if loc == nil {
		loc = time.UTC
	}
	return &LedgerServer{core: core, currency: currency, loc: loc}
}

// Register 把 LedgerService 註冊到 gRPC server
func (s *LedgerServer) Register(registrar grpc.ServiceRegistrar) {
	registrar.RegisterService(&LedgerServiceDesc, s)
}

func (s *LedgerServer) Deposit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in movementRequest
	if err := decodeStruct(req, &in); err != nil {
		return nil, invalidArgument(err)
	}
	account, err := s.core.Accounts.Deposit(ctx, in.AccountID, in.Amount)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeStruct(account)
}

func (s *LedgerServer) Withdraw(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in movementRequest
	if err := decodeStruct(req, &in); err != nil {
		return nil, invalidArgument(err)
	}
	account, err := s.core.Accounts.Withdraw(ctx, in.AccountID, in.Amount)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeStruct(account)
}

func (s *LedgerServer) TransferOwn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.transfer(ctx, req, s.core.Transfers.TransferOwn)
}

func (s *LedgerServer) TransferThirdParty(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.transfer(ctx, req, s.core.Transfers.TransferThirdParty)
}

func (s *LedgerServer) transfer(
	ctx context.Context,
	req *structpb.Struct,
	do func(ctx context.Context, fromID, toID string, amount decimal.Decimal) (*usecase.TransferResult, error),
) (*structpb.Struct, error) {
	var in transferRequest
	if err := decodeStruct(req, &in); err != nil {
		return nil, invalidArgument(err)
	}
	result, err := do(ctx, in.FromAccountID, in.ToAccountID, in.Amount)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeStruct(result)
}

func (s *LedgerServer) GetBalance(ctx context.Context, req *wrapperspb.StringValue) (*money.Money, error) {
	balance, err := s.core.Accounts.Balance(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return ToMoney(balance, s.currency), nil
}

func (s *LedgerServer) DailyBalanceReport(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	rows, err := s.core.Reports.DailyBalance(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeStruct(dailyBalanceReport{Rows: rows})
}

func (s *LedgerServer) CommissionReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in commissionRequest
	if err := decodeStruct(req, &in); err != nil {
		return nil, invalidArgument(err)
	}
	from, err := time.ParseInLocation(time.DateOnly, in.From, s.loc)
	if err != nil {
		return nil, invalidArgument(fmt.Errorf("invalid from date: %w", err))
	}
	to, err := time.ParseInLocation(time.DateOnly, in.To, s.loc)
	if err != nil {
		return nil, invalidArgument(fmt.Errorf("invalid to date: %w", err))
	}
	rows, err := s.core.Reports.Commissions(ctx, from, to)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeStruct(commissionReport{Rows: rows})
}

var _ LedgerService = (*LedgerServer)(nil)

// LedgerClient bank.ledger.v1.LedgerService 的客戶端，回傳 domain 型別
type LedgerClient struct {
	cc grpc.ClientConnInterface
}

func NewLedgerClient(cc grpc.ClientConnInterface) *LedgerClient {
	return &LedgerClient{cc: cc}
}

func (c *LedgerClient) call(ctx context.Context, method string, in any, out any) error {
	req, err := encodeStruct(in)
	if err != nil {
		return err
	}
	resp := &structpb.Struct{}
	if err := c.cc.Invoke(ctx, method, req, resp); err != nil {
		return err
	}
	return decodeStruct(resp, out)
}

func (c *LedgerClient) Deposit(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.Account, error) {
	var out domain.Account
	if err := c.call(ctx, ledgerDepositMethod, movementRequest{AccountID: accountID, Amount: amount}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *LedgerClient) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.Account, error) {
	var out domain.Account
	if err := c.call(ctx, ledgerWithdrawMethod, movementRequest{AccountID: accountID, Amount: amount}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Transfer own 為 true 時呼叫 TransferOwn，否則 TransferThirdParty
func (c *LedgerClient) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal, own bool) (*usecase.TransferResult, error) {
	method := ledgerTransferThirdPartyMethod
	if own {
		method = ledgerTransferOwnMethod
	}
	var out usecase.TransferResult
	in := transferRequest{FromAccountID: fromID, ToAccountID: toID, Amount: amount}
	if err := c.call(ctx, method, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *LedgerClient) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, string, error) {
	out := &money.Money{}
	if err := c.cc.Invoke(ctx, ledgerGetBalanceMethod, wrapperspb.String(accountID), out); err != nil {
		return decimal.Zero, "", err
	}
	return FromMoney(out), out.GetCurrencyCode(), nil
}

func (c *LedgerClient) DailyBalanceReport(ctx context.Context, customerID string) ([]domain.DailyBalanceRow, error) {
	resp := &structpb.Struct{}
	if err := c.cc.Invoke(ctx, ledgerDailyBalanceMethod, wrapperspb.String(customerID), resp); err != nil {
		return nil, err
	}
	var out dailyBalanceReport
	if err := decodeStruct(resp, &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

// CommissionReport 日期以 YYYY-MM-DD 傳送
func (c *LedgerClient) CommissionReport(ctx context.Context, from, to string) ([]domain.CommissionRow, error) {
	var out commissionReport
	if err := c.call(ctx, ledgerCommissionMethod, commissionRequest{From: from, To: to}, &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}
