package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"

	grpc_adapter "github.com/JoeShih716/go-bank-ledger/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-bank-ledger/internal/logger"
	grpcpkg "github.com/JoeShih716/go-bank-ledger/pkg/grpc"
)

const usage = `usage: ledgerctl [-addr host:port] [-timeout 5s] <command> [flags]

commands:
  balance            -account ID
  deposit            -account ID -amount N
  withdraw           -account ID -amount N
  transfer           -from ID -to ID -amount N [-own]
  daily-report       -customer ID
  commission-report  -from YYYY-MM-DD -to YYYY-MM-DD
  bench              -account ID -amount N [-total N] [-concurrency N]
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	global := flag.NewFlagSet("ledgerctl", flag.ContinueOnError)
	addr := global.String("addr", "localhost:50051", "ledger gRPC address")
	timeout := global.Duration("timeout", 5*time.Second, "per call timeout")
	verbose := global.Bool("v", false, "log every call")
	global.Usage = func() { fmt.Fprint(global.Output(), usage) }
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return errors.New("missing command")
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	log, err := logger.New(level, "text", os.Stderr)
	if err != nil {
		return err
	}

	pool := grpcpkg.NewPool(
		grpcpkg.WithLogger(log),
		grpcpkg.WithCallTimeout(*timeout),
		grpcpkg.WithInterceptor(grpcpkg.LoggingClientInterceptor(log)),
	)
	defer pool.Close()

	conn, err := pool.GetConnection(*addr)
	if err != nil {
		return err
	}
	c := &cli{ledger: grpc_adapter.NewLedgerClient(conn), out: out, log: log}

	ctx := context.Background()
	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "balance":
		return c.balance(ctx, rest)
	case "deposit", "withdraw":
		return c.movement(ctx, cmd, rest)
	case "transfer":
		return c.transfer(ctx, rest)
	case "daily-report":
		return c.dailyReport(ctx, rest)
	case "commission-report":
		return c.commissionReport(ctx, rest)
	case "bench":
		return c.bench(ctx, rest)
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

type cli struct {
	ledger *grpc_adapter.LedgerClient
	out    io.Writer
	log    *slog.Logger
}

// amountFlag 以 decimal 解析金額參數
type amountFlag struct {
	value decimal.Decimal
	set   bool
}

func (a *amountFlag) String() string { return a.value.String() }

func (a *amountFlag) Set(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	a.value, a.set = d, true
	return nil
}

func parse(fs *flag.FlagSet, args []string, required ...string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	for _, name := range required {
		f := fs.Lookup(name)
		if f == nil || f.Value.String() == "" || f.Value.String() == "0" {
			return fmt.Errorf("%s: -%s is required", fs.Name(), name)
		}
	}
	return nil
}
