package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath 未設定 LEDGER_CONFIG 時讀取的設定檔
	DefaultPath = "config/config.yaml"
	envPrefix   = "LEDGER_"
)

var validate = validator.New()

// Load 讀取設定
//
// 順序：.env (可選) -> YAML 檔 -> 預設值 -> LEDGER_* 環境變數 -> 驗證。
// path 為空時使用 LEDGER_CONFIG，再退回 DefaultPath。
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv(envPrefix + "CONFIG")
	}
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse 解析 YAML 內容並套用預設值、環境變數與驗證
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults 補全 yaml 沒寫的欄位
func (c *Config) applyDefaults() {
	setDefault(&c.Server.HTTPAddr, ":8080")
	setDefault(&c.Server.GRPCAddr, ":50051")
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	setDefault(&c.Log.Level, "info")
	setDefault(&c.Log.Format, "text")

	setDefault(&c.Storage.Accounts, "memory")
	setDefault(&c.Storage.Movements, "memory")

	if c.MySQL.Port == 0 {
		c.MySQL.Port = 3306
	}
	if c.MySQL.MaxOpenConns == 0 {
		c.MySQL.MaxOpenConns = 100
	}
	if c.MySQL.MaxIdleConns == 0 {
		c.MySQL.MaxIdleConns = 10
	}
	if c.MySQL.ConnMaxLifetime == 0 {
		c.MySQL.ConnMaxLifetime = 30 * time.Minute
	}
	if c.MySQL.ConnectRetries == 0 {
		c.MySQL.ConnectRetries = 5
	}
	if c.MySQL.RetryInterval == 0 {
		c.MySQL.RetryInterval = 2 * time.Second
	}

	setDefault(&c.DynamoDB.Region, "us-east-1")
	setDefault(&c.DynamoDB.Table, "ledger-movements")

	setDefault(&c.Directory.Mode, "local")
	if c.Directory.Timeout == 0 {
		c.Directory.Timeout = 2 * time.Second
	}

	setDefault(&c.Report.TimeZone, "UTC")
	setDefault(&c.Report.Currency, "PEN")
}

// applyEnv 部署環境常需覆寫的欄位 (位址、密碼、儲存選擇)
func (c *Config) applyEnv() error {
	overrides := map[string]*string{
		"HTTP_ADDR":         &c.Server.HTTPAddr,
		"GRPC_ADDR":         &c.Server.GRPCAddr,
		"LOG_LEVEL":         &c.Log.Level,
		"LOG_FORMAT":        &c.Log.Format,
		"STORAGE_ACCOUNTS":  &c.Storage.Accounts,
		"STORAGE_MOVEMENTS": &c.Storage.Movements,
		"WAL_PATH":          &c.Storage.WALPath,
		"MYSQL_HOST":        &c.MySQL.Host,
		"MYSQL_USER":        &c.MySQL.User,
		"MYSQL_PASSWORD":    &c.MySQL.Password,
		"MYSQL_DB_NAME":     &c.MySQL.DBName,
		"DYNAMODB_REGION":   &c.DynamoDB.Region,
		"DYNAMODB_ENDPOINT": &c.DynamoDB.Endpoint,
		"DYNAMODB_TABLE":    &c.DynamoDB.Table,
		"DIRECTORY_MODE":    &c.Directory.Mode,
		"DIRECTORY_TARGET":  &c.Directory.Target,
		"REPORT_TIME_ZONE":  &c.Report.TimeZone,
		"REPORT_CURRENCY":   &c.Report.Currency,
	}
	for key, field := range overrides {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			*field = v
		}
	}
	if v, ok := os.LookupEnv(envPrefix + "MYSQL_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sMYSQL_PORT %q: %w", envPrefix, v, err)
		}
		c.MySQL.Port = port
	}
	return nil
}

// Validate struct tag 驗證，加上依儲存選擇才需要的區段
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Storage.UsesMySQL() {
		if err := validate.Struct(&c.MySQL); err != nil {
			return fmt.Errorf("invalid mysql config: %w", err)
		}
	}
	if c.Storage.Movements == "dynamodb" && (c.DynamoDB.Region == "" || c.DynamoDB.Table == "") {
		return errors.New("invalid dynamodb config: region and table are required")
	}
	if _, err := c.Report.Location(); err != nil {
		return err
	}
	if _, err := c.Rules.Domain(); err != nil {
		return err
	}
	return nil
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
