package mysql

import (
	"fmt"
	"time"
)

// Config 定義 MySQL 連線與連線池的配置
type Config struct {
	Host     string `yaml:"host" validate:"required"` // 資料庫主機地址
	Port     int    `yaml:"port" validate:"gt=0"`     // 資料庫埠號 (預設 3306)
	User     string `yaml:"user" validate:"required"` // 使用者名稱
	Password string `yaml:"password"`                 // 密碼 (建議以 LEDGER_MYSQL_PASSWORD 提供)
	DBName   string `yaml:"db_name" validate:"required"`

	// 連線池設定 (Connection Pool)
	// 參考: https://github.com/go-sql-driver/mysql#important-settings
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`

	// 啟動時的連線重試
	ConnectRetries int           `yaml:"connect_retries"`
	RetryInterval  time.Duration `yaml:"retry_interval"`

	// 啟動時自動執行 migrations
	AutoMigrate bool `yaml:"auto_migrate"`

	// GORM 設定
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=silent error warn info"`
}

// DSN (Data Source Name) 產生連線字串
// 時間一律以 UTC 存取，交易時間的時區轉換交給報表層
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.DBName,
	)
}
