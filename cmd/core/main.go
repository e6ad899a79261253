package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	grpc_adapter "github.com/JoeShih716/go-bank-ledger/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/adapter/in/rest"
	remote_adapter "github.com/JoeShih716/go-bank-ledger/internal/app/core/adapter/out/grpc"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-bank-ledger/internal/config"
	"github.com/JoeShih716/go-bank-ledger/internal/logger"
	grpcpkg "github.com/JoeShih716/go-bank-ledger/pkg/grpc"
)

func main() {
	if err := run(); err != nil {
		slog.Error("ledger exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. 載入設定
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	loc, err := cfg.Report.Location()
	if err != nil {
		return err
	}
	rulesCfg, err := cfg.Rules.Domain()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. 初始化儲存 (Driven Adapter)
	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	deps := usecase.Dependencies{
		Accounts:  st.accounts,
		Customers: st.customers,
		Cards:     st.cards,
		Credits:   st.credits,
		Log:       st.movements,
	}

	// 3. 客戶 / 信用卡目錄，remote 模式改經 gRPC 查詢
	var pool *grpcpkg.Pool
	if cfg.Directory.Mode == "remote" {
		pool = grpcpkg.NewPool(
			grpcpkg.WithLogger(log),
			grpcpkg.WithCallTimeout(cfg.Directory.Timeout),
			grpcpkg.WithInterceptor(grpcpkg.LoggingClientInterceptor(log)),
		)
		defer pool.Close()
		remote := remote_adapter.NewRemoteDirectory(pool, cfg.Directory.Target)
		deps.CustomerDirectory = remote
		deps.CardDirectory = remote
		log.Info("using remote directory", "target", cfg.Directory.Target)
	}

	// 4. 初始化 UseCase
	core := usecase.NewCore(domain.NewRules(rulesCfg), deps,
		usecase.WithLocation(loc),
		usecase.WithLogger(log),
	)

	// 5. Driving Adapter: HTTP + gRPC
	httpServer := &http.Server{
		Addr: cfg.Server.HTTPAddr,
		Handler: rest.NewRouter(core,
			rest.WithLogger(log),
			rest.WithLocation(loc),
			rest.WithCurrency(cfg.Report.Currency),
		),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(grpcpkg.LoggingServerInterceptor(log)))
	grpc_adapter.NewLedgerServer(core, cfg.Report.Currency, loc).Register(grpcServer)
	grpc_adapter.NewDirectoryServer(core.Directory, core.Directory).Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info("starting grpc server", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve grpc: %w", err)
		}
		return nil
	})

	// Graceful Shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		err := httpServer.Shutdown(shutdownCtx)
		select {
		case <-stopped:
		case <-shutdownCtx.Done():
			grpcServer.Stop()
		}
		return err
	})

	err = g.Wait()
	// 兩個伺服器都已停止，不會再有新的交易寫入
	st.Stop()
	log.Info("ledger exited")
	return err
}
