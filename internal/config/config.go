package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/adapter/out/dynamodb"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-bank-ledger/pkg/mysql"
)

// Config 應用程式設定
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Storage   StorageConfig   `yaml:"storage"`
	MySQL     mysql.Config    `yaml:"mysql" validate:"-"`
	DynamoDB  dynamodb.Config `yaml:"dynamodb" validate:"-"`
	Directory DirectoryConfig `yaml:"directory"`
	Report    ReportConfig    `yaml:"report"`
	Rules     RulesConfig     `yaml:"rules"`
}

type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr" validate:"required"`
	GRPCAddr        string        `yaml:"grpc_addr" validate:"required"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// StorageConfig 選擇各 port 的實作
type StorageConfig struct {
	Accounts  string `yaml:"accounts" validate:"oneof=memory mysql"`
	Movements string `yaml:"movements" validate:"oneof=memory mysql dynamodb"`
	// memory 交易紀錄的 WAL 檔，空字串表示不落地
	WALPath string `yaml:"wal_path"`
}

// UsesMySQL 任一儲存使用 MySQL
func (s StorageConfig) UsesMySQL() bool {
	return s.Accounts == "mysql" || s.Movements == "mysql"
}

// DirectoryConfig 客戶 / 信用卡查詢來源
type DirectoryConfig struct {
	Mode    string        `yaml:"mode" validate:"oneof=local remote"`
	Target  string        `yaml:"target" validate:"required_if=Mode remote"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

type ReportConfig struct {
	TimeZone string `yaml:"time_zone" validate:"required"`
	Currency string `yaml:"currency" validate:"len=3"`
}

// Location 報表時區
func (r ReportConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(r.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid report time zone %q: %w", r.TimeZone, err)
	}
	return loc, nil
}

// RulesConfig 手續費與資格規則，金額以字串表示避免浮點誤差
type RulesConfig struct {
	MinimumOpening         map[string]string `yaml:"minimum_opening"`
	FreeTransactions       map[string]int    `yaml:"free_transactions"`
	Fees                   map[string]string `yaml:"fees"`
	VIPMinimumDailyAverage string            `yaml:"vip_minimum_daily_average"`
	PYMEMaintenanceFee     string            `yaml:"pyme_maintenance_fee"`
}

// Domain 轉成 domain.RulesConfig，帳戶類型與金額都會被檢查
func (r RulesConfig) Domain() (domain.RulesConfig, error) {
	out := domain.RulesConfig{FreeTransactions: make(map[domain.AccountType]int, len(r.FreeTransactions))}
	var err error
	if out.MinimumOpening, err = amounts("minimum_opening", r.MinimumOpening); err != nil {
		return domain.RulesConfig{}, err
	}
	if out.Fees, err = amounts("fees", r.Fees); err != nil {
		return domain.RulesConfig{}, err
	}
	for key, n := range r.FreeTransactions {
		typ, err := accountType("free_transactions", key)
		if err != nil {
			return domain.RulesConfig{}, err
		}
		if n < 0 {
			return domain.RulesConfig{}, fmt.Errorf("rules.free_transactions.%s must not be negative", key)
		}
		out.FreeTransactions[typ] = n
	}
	if out.VIPMinimumDailyAverage, err = amount("vip_minimum_daily_average", r.VIPMinimumDailyAverage); err != nil {
		return domain.RulesConfig{}, err
	}
	if out.PYMEMaintenanceFee, err = amount("pyme_maintenance_fee", r.PYMEMaintenanceFee); err != nil {
		return domain.RulesConfig{}, err
	}
	return out, nil
}

func accountType(section, key string) (domain.AccountType, error) {
	typ := domain.AccountType(key)
	if !typ.Valid() {
		return "", fmt.Errorf("rules.%s: unknown account type %q", section, key)
	}
	return typ, nil
}

func amounts(section string, raw map[string]string) (map[domain.AccountType]decimal.Decimal, error) {
	out := make(map[domain.AccountType]decimal.Decimal, len(raw))
	for key, value := range raw {
		typ, err := accountType(section, key)
		if err != nil {
			return nil, err
		}
		d, err := amount(section+"."+key, value)
		if err != nil {
			return nil, err
		}
		out[typ] = d
	}
	return out, nil
}

// amount 空字串視為 0，不可為負
func amount(name, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rules.%s: invalid amount %q: %w", name, raw, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("rules.%s must not be negative", name)
	}
	return d, nil
}
