package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	dynamodb_adapter "github.com/JoeShih716/go-bank-ledger/internal/app/core/adapter/out/dynamodb"
	memory_adapter "github.com/JoeShih716/go-bank-ledger/internal/app/core/adapter/out/memory"
	mysql_adapter "github.com/JoeShih716/go-bank-ledger/internal/app/core/adapter/out/mysql"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-bank-ledger/internal/config"
	"github.com/JoeShih716/go-bank-ledger/pkg/mysql"
	"github.com/JoeShih716/go-bank-ledger/pkg/wal"
)

// storage 依設定組出的 driven adapter 與需要釋放的資源
type storage struct {
	accounts  usecase.AccountRepository
	customers usecase.CustomerRepository
	cards     usecase.CardRepository
	credits   usecase.CreditRepository
	movements usecase.MovementLog

	db      *mysql.Client
	wal     *wal.WAL
	stopLog context.CancelFunc
	running <-chan struct{}
}

func openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (*storage, error) {
	st := &storage{}

	if cfg.Storage.UsesMySQL() {
		db, err := mysql.NewClient(ctx, cfg.MySQL)
		if err != nil {
			return nil, fmt.Errorf("connect mysql: %w", err)
		}
		st.db = db
		log.Info("connected to mysql", "host", cfg.MySQL.Host, "db", cfg.MySQL.DBName)
		if cfg.MySQL.AutoMigrate {
			if err := db.Migrate(ctx); err != nil {
				st.Close()
				return nil, fmt.Errorf("migrate mysql: %w", err)
			}
		}
	}

	switch cfg.Storage.Accounts {
	case "mysql":
		st.accounts = mysql_adapter.NewAccountStore(st.db)
		st.customers = mysql_adapter.NewCustomerStore(st.db)
		st.cards = mysql_adapter.NewCardStore(st.db)
		st.credits = mysql_adapter.NewCreditStore(st.db)
	default:
		st.accounts = memory_adapter.NewAccountStore()
		st.customers = memory_adapter.NewCustomerStore()
		st.cards = memory_adapter.NewCardStore()
		st.credits = memory_adapter.NewCreditStore()
	}

	switch cfg.Storage.Movements {
	case "mysql":
		st.movements = mysql_adapter.NewMovementLog(st.db)
	case "dynamodb":
		client, err := dynamodb_adapter.NewClient(ctx, cfg.DynamoDB)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("connect dynamodb: %w", err)
		}
		movements := dynamodb_adapter.NewMovementLog(client, cfg.DynamoDB.Table)
		if cfg.DynamoDB.CreateTable {
			if err := movements.EnsureTable(ctx); err != nil {
				st.Close()
				return nil, fmt.Errorf("ensure dynamodb table: %w", err)
			}
		}
		st.movements = movements
	default:
		if cfg.Storage.WALPath != "" {
			w, err := wal.Open(cfg.Storage.WALPath)
			if err != nil {
				st.Close()
				return nil, fmt.Errorf("open wal: %w", err)
			}
			st.wal = w
		}
		movements, err := memory_adapter.NewMovementLog(st.wal)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("replay wal: %w", err)
		}
		// 寫入迴圈不跟著訊號結束：伺服器停止後才由 Stop 關閉，
		// 關機期間仍在處理的請求才寫得進交易紀錄
		logCtx, stopLog := context.WithCancel(context.Background())
		movements.Start(logCtx)
		st.movements = movements
		st.stopLog = stopLog
		st.running = movements.Done()
	}

	log.Info("storage ready",
		"accounts", cfg.Storage.Accounts,
		"movements", cfg.Storage.Movements,
		"wal", cfg.Storage.WALPath,
	)
	return st, nil
}

// Stop 停止 memory 交易紀錄的寫入迴圈並等待佇列處理完，須在伺服器停止後呼叫
func (s *storage) Stop() {
	if s.stopLog == nil {
		return
	}
	s.stopLog()
	<-s.running
}

// Close 釋放資源，寫入迴圈若仍在執行會先停止
func (s *storage) Close() error {
	s.Stop()
	var errs []error
	if s.wal != nil {
		errs = append(errs, s.wal.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}
