package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"budgetbook/internal/amqp"
	appcli "budgetbook/internal/cli"
	"budgetbook/internal/config"
	"budgetbook/internal/core"
	"budgetbook/internal/currency"
	"budgetbook/internal/export"
	"budgetbook/internal/ledger"
	applog "budgetbook/internal/log"
	"budgetbook/internal/services"
)

type app struct {
	cfg    *config.Config
	logger *applog.Logger
	out    io.Writer
}

func main() {
	appcli.LoadEnvFile()

	a := &app{out: os.Stdout}
	if err := a.cliApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "budgetbook:", err)
		os.Exit(1)
	}
}

func (a *app) cliApp() *cli.App {
	return &cli.App{
		Name:   "budgetbook",
		Usage:  "personal income and expense ledger",
		Before: a.setup,
		Action: a.report,
		Commands: []*cli.Command{
			{
				Name:   "report",
				Usage:  "print spending by category in the selected currency",
				Action: a.report,
			},
			{
				Name:   "list",
				Usage:  "list transactions",
				Action: a.list,
			},
			{
				Name:      "add",
				Usage:     "record an expense, or income with --income",
				ArgsUsage: "AMOUNT (a number or a formula such as 12.50+3.20)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}},
					&cli.StringFlag{Name: "category", Aliases: []string{"c"}},
					&cli.StringFlag{Name: "date", Usage: "YYYY-MM-DD, defaults to today"},
					&cli.BoolFlag{Name: "income"},
					&cli.BoolFlag{Name: "recurring"},
				},
				Action: a.add,
			},
			{
				Name:      "delete",
				Usage:     "delete a transaction",
				ArgsUsage: "ID",
				Action:    a.delete,
			},
			{
				Name:  "categories",
				Usage: "manage categories",
				Action: func(c *cli.Context) error {
					return a.withService(c, func(svc *services.LedgerService) error {
						for _, name := range svc.Categories() {
							fmt.Fprintf(a.out, "%s\t%s\n", svc.ColorOf(name), name)
						}
						return nil
					})
				},
				Subcommands: []*cli.Command{
					{Name: "add", ArgsUsage: "NAME", Action: a.addCategory},
					{Name: "rename", ArgsUsage: "OLD NEW", Action: a.renameCategory},
					{Name: "remove", ArgsUsage: "NAME", Action: a.removeCategory},
				},
			},
			{
				Name:      "currency",
				Usage:     "show, list or select the display currency",
				ArgsUsage: "[CODE]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "list", Aliases: []string{"l"}},
				},
				Action: a.selectCurrency,
			},
			{
				Name:  "setup",
				Usage: "save first-run preferences",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "language", Value: "en"},
					&cli.StringFlag{Name: "currency", Value: currency.DefaultCode},
					&cli.StringFlag{Name: "theme", Value: "light"},
				},
				Action: a.completeSetup,
			},
			{
				Name:      "export",
				Usage:     "write transactions and the breakdown to an xlsx workbook",
				ArgsUsage: "FILE",
				Action:    a.export,
			},
			{
				Name:   "watch",
				Usage:  "print ledger change events from the broker until interrupted",
				Action: a.watch,
			},
		},
	}
}

func (a *app) setup(c *cli.Context) error {
	a.logger = appcli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg, err := appcli.LoadAndValidateConfig(a.logger)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger.Debug("Starting budgetbook",
		applog.FieldOperation, applog.OpStartup,
		applog.FieldBackend, cfg.DataBackend,
		applog.FieldCurrency, cfg.DefaultCurrency,
	)
	return nil
}

// withService opens the ledger for the duration of fn and flushes every
// pending save before returning.
func (a *app) withService(c *cli.Context, fn func(svc *services.LedgerService) error) error {
	svc, err := appcli.OpenService(c.Context, a.cfg, a.logger)
	if err != nil {
		return err
	}

	runErr := fn(svc)

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.PersistWriteTimeout)
	defer cancel()
	if err := svc.Close(ctx); err != nil {
		a.logger.Error("Closing ledger failed", applog.FieldError, err.Error())
		if runErr == nil {
			runErr = err
		}
	}
	return runErr
}

func (a *app) report(c *cli.Context) error {
	return a.withService(c, func(svc *services.LedgerService) error {
		writeReport(a.out, svc)
		return nil
	})
}

func writeReport(out io.Writer, svc *services.LedgerService) {
	b := svc.Breakdown()
	if b.Empty {
		fmt.Fprintln(out, "No expenses recorded.")
	} else {
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
		for _, share := range b.Shares {
			fmt.Fprintf(tw, "%s\t%s\t%s%%\t\n", share.Name, svc.FormatSelected(share.Amount), share.Percent.StringFixed(1))
		}
		tw.Flush()
	}
	fmt.Fprintf(out, "Expenses: %s\n", svc.FormatSelected(b.Total))
	fmt.Fprintf(out, "Income:   %s\n", svc.FormatSelected(b.Income))
	fmt.Fprintf(out, "Balance:  %s\n", svc.FormatSelected(b.Income.Sub(b.Total)))
}

func (a *app) list(c *cli.Context) error {
	return a.withService(c, func(svc *services.LedgerService) error {
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		for _, tx := range svc.Ledger() {
			recurring := ""
			if tx.IsRecurring {
				recurring = "recurring"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				tx.ID, tx.Date.Format(time.DateOnly), svc.FormatSelected(tx.Amount), tx.Category, tx.Description, recurring)
		}
		return tw.Flush()
	})
}

func (a *app) add(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("add expects exactly one AMOUNT argument", 2)
	}
	magnitude, err := core.EvalAmount(c.Args().First())
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", c.Args().First(), err)
	}
	amount := core.Expense(magnitude)
	if c.Bool("income") {
		amount = core.Income(magnitude)
	}

	date := core.Date{Time: time.Now().UTC().Truncate(24 * time.Hour)}
	if s := c.String("date"); s != "" {
		if date, err = core.ParseDate(s); err != nil {
			return fmt.Errorf("parse date %q: %w", s, err)
		}
	}

	tx := core.Transaction{
		ID:          ledger.NewID(),
		Description: c.String("description"),
		Amount:      amount,
		Category:    strings.TrimSpace(c.String("category")),
		Date:        date,
		IsRecurring: c.Bool("recurring"),
	}
	if err := tx.Validate(); err != nil {
		return err
	}

	return a.withService(c, func(svc *services.LedgerService) error {
		added, err := svc.AddTransaction(c.Context, tx)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, added.ID)
		return nil
	})
}

func (a *app) delete(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return cli.Exit("delete expects an ID", 2)
	}
	return a.withService(c, func(svc *services.LedgerService) error {
		return svc.Dispatch(c.Context, ledger.Delete{ID: id})
	})
}

func (a *app) addCategory(c *cli.Context) error {
	name := c.Args().First()
	return a.withService(c, func(svc *services.LedgerService) error {
		if !svc.AddCategory(name) {
			return fmt.Errorf("category %q is blank or already exists", name)
		}
		return nil
	})
}

func (a *app) renameCategory(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("rename expects OLD and NEW", 2)
	}
	oldName, newName := c.Args().Get(0), c.Args().Get(1)
	return a.withService(c, func(svc *services.LedgerService) error {
		if !svc.RenameCategory(c.Context, oldName, newName) {
			return fmt.Errorf("cannot rename %q to %q", oldName, newName)
		}
		return nil
	})
}

func (a *app) removeCategory(c *cli.Context) error {
	name := c.Args().First()
	return a.withService(c, func(svc *services.LedgerService) error {
		if !svc.RemoveCategory(c.Context, name) {
			return fmt.Errorf("category %q does not exist", name)
		}
		return nil
	})
}

func (a *app) selectCurrency(c *cli.Context) error {
	if c.Bool("list") {
		for _, cur := range currency.All() {
			fmt.Fprintf(a.out, "%s\t%s\t%s\n", cur.Code, cur.Symbol, cur.Label)
		}
		return nil
	}
	return a.withService(c, func(svc *services.LedgerService) error {
		if code := c.Args().First(); code != "" {
			if err := svc.SetCurrency(code); err != nil {
				return err
			}
		}
		fmt.Fprintln(a.out, svc.SelectedCurrency())
		return nil
	})
}

func (a *app) completeSetup(c *cli.Context) error {
	prefs := core.Preferences{
		Language: c.String("language"),
		Currency: c.String("currency"),
		Theme:    c.String("theme"),
	}
	return a.withService(c, func(svc *services.LedgerService) error {
		return svc.CompleteSetup(c.Context, prefs)
	})
}

func (a *app) export(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("export expects a FILE", 2)
	}
	return a.withService(c, func(svc *services.LedgerService) error {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := export.WriteWorkbook(f, svc.Ledger(), svc.SelectedCurrency()); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
}

func (a *app) watch(c *cli.Context) error {
	if !a.cfg.AMQPEnabled() {
		return cli.Exit("AMQP_URL is not set", 2)
	}
	client, err := appcli.OpenEvents(c.Context, a.cfg, a.logger)
	if err != nil {
		return err
	}

	ctx, done := appcli.GracefulShutdown(a.logger, 5*time.Second, func(context.Context) {
		client.Close()
	})

	err = client.Consume(ctx, func(event *amqp.LedgerEvent) error {
		_, err := fmt.Fprintf(a.out, "%s\t%s\tsize=%d\t%s\n",
			event.Timestamp.Format(time.RFC3339), event.Kind, event.LedgerSize, event.TransactionID)
		return err
	})
	if errors.Is(err, context.Canceled) {
		appcli.WaitForShutdown(ctx, done)
		return nil
	}
	client.Close()
	return err
}
