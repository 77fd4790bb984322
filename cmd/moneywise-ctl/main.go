/*Admin CLI for the moneywise transaction store.*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"moneywise/internal/backend"
	"moneywise/internal/config"
	"moneywise/internal/core"
	"moneywise/internal/services"
)

// cliContext holds the wired backend shared by all commands.
type cliContext struct {
	service *services.TransactionService
	cleanup func() error
}

var cli struct {
	Export exportCmd `cmd:"" help:"Export every transaction as CSV or JSON."`
	Stats  statsCmd  `cmd:"" help:"Print income, expense and balance totals."`
	Seed   seedCmd   `cmd:"" help:"Restore the demo seed dataset."`
	Clear  clearCmd  `cmd:"" help:"Remove every transaction."`
}

type exportCmd struct {
	Format string `default:"csv" enum:"csv,json" help:"Output format [csv json]."`
	Out    string `default:"-" help:"Output file, or - for stdout."`
}

func (c *exportCmd) Run(ctx *cliContext) error {
	var w io.Writer = os.Stdout
	if c.Out != "-" {
		f, err := os.Create(c.Out)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return services.Export(w, ctx.service.All(), c.Format)
}

type statsCmd struct{}

func (c *statsCmd) Run(ctx *cliContext) error {
	txns := ctx.service.All()
	summary := core.Summarize(txns)

	fmt.Printf("transactions: %d\n", len(txns))
	fmt.Printf("income:       %s\n", summary.TotalIncome)
	fmt.Printf("expense:      %s\n", summary.TotalExpense)
	fmt.Printf("balance:      %s\n", summary.Balance)
	return nil
}

type seedCmd struct{}

func (c *seedCmd) Run(ctx *cliContext) error {
	if err := ctx.service.Reset(context.Background()); err != nil {
		return err
	}
	fmt.Printf("seeded %d transactions\n", len(ctx.service.All()))
	return nil
}

type clearCmd struct{}

func (c *clearCmd) Run(ctx *cliContext) error {
	if err := ctx.service.Clear(context.Background()); err != nil {
		return err
	}
	fmt.Println("cleared all transactions")
	return nil
}

func main() {
	_ = godotenv.Load()

	kctx := kong.Parse(&cli)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		kctx.FatalIfErrorf(err)
	}

	result, err := backend.NewFactory(nil).CreateBackend(context.Background(), cfg)
	kctx.FatalIfErrorf(err)

	ctx := &cliContext{service: result.Service, cleanup: result.Cleanup}

	err = kctx.Run(ctx)
	if cerr := ctx.cleanup(); err == nil {
		err = cerr
	}
	kctx.FatalIfErrorf(err)
}
