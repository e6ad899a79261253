package main

import (
	"context"
	"flag"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/olekukonko/tablewriter"
)

func (c *cli) balance(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("balance", flag.ContinueOnError)
	account := fs.String("account", "", "account id")
	if err := parse(fs, args, "account"); err != nil {
		return err
	}
	balance, currency, err := c.ledger.GetBalance(ctx, *account)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s %s %s\n", *account, balance.StringFixed(2), currency)
	return nil
}

func (c *cli) movement(ctx context.Context, kind string, args []string) error {
	fs := flag.NewFlagSet(kind, flag.ContinueOnError)
	account := fs.String("account", "", "account id")
	var amount amountFlag
	fs.Var(&amount, "amount", "amount")
	if err := parse(fs, args, "account", "amount"); err != nil {
		return err
	}

	apply := c.ledger.Deposit
	if kind == "withdraw" {
		apply = c.ledger.Withdraw
	}
	acc, err := apply(ctx, *account, amount.value)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s %s balance=%s\n", kind, acc.ID, acc.Balance.StringFixed(2))
	return nil
}

func (c *cli) transfer(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("transfer", flag.ContinueOnError)
	from := fs.String("from", "", "source account id")
	to := fs.String("to", "", "destination account id")
	own := fs.Bool("own", false, "transfer between accounts of the same customer")
	var amount amountFlag
	fs.Var(&amount, "amount", "amount")
	if err := parse(fs, args, "from", "to", "amount"); err != nil {
		return err
	}

	res, err := c.ledger.Transfer(ctx, *from, *to, amount.value, *own)
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(c.out)
	table.SetHeader([]string{"Account", "Balance"})
	table.Append([]string{res.From.ID, res.From.Balance.StringFixed(2)})
	table.Append([]string{res.To.ID, res.To.Balance.StringFixed(2)})
	table.Render()
	return nil
}

func (c *cli) dailyReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("daily-report", flag.ContinueOnError)
	customer := fs.String("customer", "", "customer id")
	if err := parse(fs, args, "customer"); err != nil {
		return err
	}
	rows, err := c.ledger.DailyBalanceReport(ctx, *customer)
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(c.out)
	table.SetHeader([]string{"Product", "Type", "Average Daily Balance"})
	for _, row := range rows {
		table.Append([]string{row.ProductID, row.ProductType, row.AverageDailyBalance.StringFixed(2)})
	}
	table.Render()
	return nil
}

func (c *cli) commissionReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("commission-report", flag.ContinueOnError)
	from := fs.String("from", "", "first day (YYYY-MM-DD)")
	to := fs.String("to", "", "last day (YYYY-MM-DD)")
	if err := parse(fs, args, "from", "to"); err != nil {
		return err
	}
	rows, err := c.ledger.CommissionReport(ctx, *from, *to)
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(c.out)
	table.SetHeader([]string{"Product", "Type", "Total Commission"})
	for _, row := range rows {
		table.Append([]string{row.ProductID, row.ProductType, row.TotalCommission.StringFixed(2)})
	}
	table.Render()
	return nil
}

// bench 對單一帳戶併發存款，量測吞吐量
func (c *cli) bench(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	account := fs.String("account", "", "account id")
	total := fs.Int("total", 10000, "number of deposits")
	concurrency := fs.Int("concurrency", 100, "concurrent callers")
	var amount amountFlag
	fs.Var(&amount, "amount", "amount per deposit")
	if err := parse(fs, args, "account", "amount"); err != nil {
		return err
	}
	if *total <= 0 || *concurrency <= 0 {
		return fmt.Errorf("bench: -total and -concurrency must be positive")
	}

	var wg sync.WaitGroup
	var failed atomic.Int64
	sem := make(chan struct{}, *concurrency)
	startTime := time.Now()

	for i := 0; i < *total; i++ {
		sem <- struct{}{}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			if _, err := c.ledger.Deposit(ctx, *account, amount.value); err != nil {
				failed.Add(1)
				if idx%1000 == 0 {
					c.log.Warn("deposit failed", "index", idx, "error", err)
				}
			}
		}(i)
	}
	wg.Wait()

	elapsed := time.Since(startTime)
	table := tablewriter.NewWriter(c.out)
	table.SetHeader([]string{"Requests", "Failed", "Elapsed", "TPS"})
	table.Append([]string{
		fmt.Sprint(*total),
		fmt.Sprint(failed.Load()),
		elapsed.Round(time.Millisecond).String(),
		fmt.Sprintf("%.2f", float64(*total)/elapsed.Seconds()),
	})
	table.Render()
	return nil
}
