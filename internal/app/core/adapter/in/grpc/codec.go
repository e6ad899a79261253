package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	money "google.golang.org/genproto/googleapis/type/money"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
)

// 服務沒有 .proto 產生碼：請求與回應使用 protobuf well-known types，
// 內容欄位與 HTTP JSON 相同 (camelCase，金額以字串表示)。

// encodeStruct 任意 JSON 可序列化的值轉成 structpb.Struct
func encodeStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return out, nil
}

// decodeStruct structpb.Struct 轉回 Go 型別
func decodeStruct(s *structpb.Struct, dst any) error {
	raw, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	return nil
}

// ToMoney decimal 轉 google.type.Money (units 與 nanos 同號)
func ToMoney(amount decimal.Decimal, currency string) *money.Money {
	units := amount.IntPart()
	nanos := amount.Sub(decimal.NewFromInt(units)).Shift(9).IntPart()
	return &money.Money{CurrencyCode: currency, Units: units, Nanos: int32(nanos)}
}

// FromMoney google.type.Money 轉 decimal
func FromMoney(m *money.Money) decimal.Decimal {
	if m == nil {
		return decimal.Zero
	}
	return decimal.NewFromInt(m.GetUnits()).Add(decimal.New(int64(m.GetNanos()), -9))
}

// toStatus domain 錯誤分類對應 gRPC 狀態碼
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	var code codes.Code
	switch {
	case errors.Is(err, domain.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, domain.ErrValidation):
		code = codes.InvalidArgument
	case errors.Is(err, domain.ErrConcurrentUpdate):
		code = codes.Aborted
	case errors.Is(err, domain.ErrBusinessRule):
		code = codes.FailedPrecondition
	case errors.Is(err, domain.ErrCollaborator):
		code = codes.Unavailable
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	default:
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}

func invalidArgument(err error) error {
	return status.Error(codes.InvalidArgument, err.Error())
}

// unary 建立 grpc.MethodHandler (等同 protoc-gen-go-grpc 產生的 _Handler 函式)
func unary[S any, Req any, Resp any](fullMethod string, call func(srv S, ctx context.Context, req *Req) (Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(S), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(S), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
