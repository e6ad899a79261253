package mysql

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MigrationTable goose 記錄版本的資料表
const MigrationTable = "schema_migrations"

// slogGooseLogger 把 goose 的輸出轉到 slog，Fatalf 不結束程式
type slogGooseLogger struct{}

func (slogGooseLogger) Printf(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...))
}

func (slogGooseLogger) Fatalf(format string, v ...any) {
	slog.Error(fmt.Sprintf(format, v...))
}

// Migrate 執行所有尚未套用的 migrations
func (c *Client) Migrate(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.db: %w", err)
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(slogGooseLogger{})
	goose.SetTableName(MigrationTable)
	if err := goose.SetDialect("mysql"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
