package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v3"

	"github.com/drestrepo/monedero/internal/backup"
	"github.com/drestrepo/monedero/internal/config"
	"github.com/drestrepo/monedero/internal/database"
	"github.com/drestrepo/monedero/internal/database/repository"
	"github.com/drestrepo/monedero/internal/ledger"
	"github.com/drestrepo/monedero/internal/logging"
	"github.com/drestrepo/monedero/internal/suggest"
)

// openLedger loads config, opens the database, applies migrations and
// seeds defaults. All commands start here.
func openLedger(ctx context.Context) (*sql.DB, *ledger.Ledger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logging.Init(cfg.Log.Level)
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	if err := database.SeedDefaults(ctx, db, cfg.Suggestions.MinConfidence); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("seed: %w", err)
	}

	led := ledger.New(db,
		ledger.WithSuggester(suggest.New(db, suggest.WithMaxTags(cfg.Suggestions.MaxSuggestedTags))),
		ledger.WithReviewConfidence(cfg.Suggestions.ReviewConfidence),
	)
	return db, led, nil
}

// resolveAccount accepts an account id or (case-insensitive) name.
func resolveAccount(ctx context.Context, db *sql.DB, ref string) (*repository.Account, error) {
	repo := repository.NewAccountRepo(db)
	if acct, err := repo.Get(ctx, ref); err != nil {
		return nil, err
	} else if acct != nil {
		return acct, nil
	}
	accounts, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if strings.EqualFold(accounts[i].Name, ref) {
			return &accounts[i], nil
		}
	}
	return nil, fmt.Errorf("account %q not found", ref)
}

var cmdAccounts = &cli.Command{
	Name:  "accounts",
	Usage: "List accounts with calculated, actual and available balances",
	Action: func(ctx context.Context, _ *cli.Command) error {
		db, led, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		accounts, err := repository.NewAccountRepo(db).List(ctx)
		if err != nil {
			return err
		}
		for _, a := range accounts {
			available, err := led.AvailableBalance(ctx, a.ID)
			if err != nil {
				return err
			}
			actual := "-"
			if a.ActualBalance != nil {
				actual = a.ActualBalance.StringFixed(2)
			}
			fmt.Printf("%-14s %-6s calculado=%s real=%s disponible=%s\n",
				a.Name, a.Type, a.CalculatedBalance.StringFixed(2), actual, available.StringFixed(2))
		}
		return nil
	},
}

var cmdAdd = &cli.Command{
	Name:  "add",
	Usage: "Record an income or expense",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "type", Value: "expense", Usage: "income or expense"},
		&cli.StringFlag{Name: "amount", Required: true},
		&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Required: true},
		&cli.StringFlag{Name: "account", Required: true, Usage: "account id or name"},
		&cli.StringFlag{Name: "category", Required: true, Usage: "category id"},
		&cli.StringSliceFlag{Name: "tag", Usage: "tag id (repeatable)"},
		&cli.StringFlag{Name: "reserve", Usage: "reserve id this expense fulfills"},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		db, led, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		amount, err := decimal.NewFromString(cmd.String("amount"))
		if err != nil {
			return fmt.Errorf("parse amount: %w", err)
		}
		acct, err := resolveAccount(ctx, db, cmd.String("account"))
		if err != nil {
			return err
		}
		in := ledger.TransactionInput{
			Type:        cmd.String("type"),
			Amount:      amount,
			Description: cmd.String("description"),
			CategoryID:  cmd.String("category"),
			AccountID:   acct.ID,
			TagIDs:      cmd.StringSlice("tag"),
		}
		if r := cmd.String("reserve"); r != "" {
			in.FulfilledReserveID = &r
		}
		t, err := led.CreateTransaction(ctx, in)
		if err != nil {
			return err
		}
		fmt.Printf("registrado %s %s (%s)\n", t.Type, t.Amount.StringFixed(2), t.ID)
		return nil
	},
}

var cmdTransfer = &cli.Command{
	Name:  "transfer",
	Usage: "Move funds between two accounts",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "from", Required: true, Usage: "source account id or name"},
		&cli.StringFlag{Name: "to", Required: true, Usage: "destination account id or name"},
		&cli.StringFlag{Name: "amount", Required: true},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		db, led, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		amount, err := decimal.NewFromString(cmd.String("amount"))
		if err != nil {
			return fmt.Errorf("parse amount: %w", err)
		}
		source, err := resolveAccount(ctx, db, cmd.String("from"))
		if err != nil {
			return err
		}
		dest, err := resolveAccount(ctx, db, cmd.String("to"))
		if err != nil {
			return err
		}
		transferID, err := led.Transfer(ctx, ledger.TransferInput{
			SourceAccountID:      source.ID,
			DestinationAccountID: dest.ID,
			Amount:               amount,
		})
		if err != nil {
			return err
		}
		fmt.Printf("transferencia %s: %s ➔ %s (%s)\n", amount.StringFixed(2), source.Name, dest.Name, transferID)
		return nil
	},
}

var cmdReconcile = &cli.Command{
	Name:  "reconcile",
	Usage: "Reconcile an account against a bank-declared balance",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "account", Required: true, Usage: "account id or name"},
		&cli.StringFlag{Name: "declared", Required: true, Usage: "bank-declared balance"},
		&cli.StringFlag{Name: "notes"},
		&cli.BoolFlag{Name: "adjust", Value: true, Usage: "create a visible adjustment transaction when balances differ"},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		db, led, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		declared, err := decimal.NewFromString(cmd.String("declared"))
		if err != nil {
			return fmt.Errorf("parse declared: %w", err)
		}
		acct, err := resolveAccount(ctx, db, cmd.String("account"))
		if err != nil {
			return err
		}

		draft, err := led.DraftReconciliation(ctx, acct.ID, declared)
		if err != nil {
			return err
		}
		fmt.Printf("calculado=%s declarado=%s diferencia=%s\n",
			draft.CalculatedBalance.StringFixed(2), draft.DeclaredBalance.StringFixed(2), draft.Difference.StringFixed(2))

		var notes *string
		if n := cmd.String("notes"); n != "" {
			notes = &n
		}
		rec, err := led.CommitReconciliation(ctx, acct.ID, declared, notes, cmd.Bool("adjust"))
		if err != nil {
			return err
		}
		if rec.AdjustmentTransactionID != nil {
			fmt.Printf("ajuste registrado (%s)\n", *rec.AdjustmentTransactionID)
		} else {
			fmt.Println("sin ajuste")
		}
		return nil
	},
}

var cmdReserve = &cli.Command{
	Name:  "reserve",
	Usage: "Manage reserves (earmarked funds)",
	Commands: []*cli.Command{
		{
			Name:  "add",
			Usage: "Create a reserve against an account",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "account", Required: true, Usage: "account id or name"},
				&cli.StringFlag{Name: "amount", Required: true},
				&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Required: true},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				db, led, err := openLedger(ctx)
				if err != nil {
					return err
				}
				defer db.Close()

				amount, err := decimal.NewFromString(cmd.String("amount"))
				if err != nil {
					return fmt.Errorf("parse amount: %w", err)
				}
				acct, err := resolveAccount(ctx, db, cmd.String("account"))
				if err != nil {
					return err
				}
				res, err := led.CreateReserve(ctx, ledger.ReserveInput{
					AccountID:   acct.ID,
					Amount:      amount,
					Description: cmd.String("description"),
				})
				if err != nil {
					return err
				}
				fmt.Printf("reserva creada %s (%s)\n", res.Amount.StringFixed(2), res.ID)
				return nil
			},
		},
		{
			Name:      "cancel",
			Usage:     "Deactivate a reserve; funds return to the available balance",
			ArgsUsage: "<reserve-id>",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				if cmd.Args().Len() != 1 {
					return fmt.Errorf("expected exactly one reserve id")
				}
				db, led, err := openLedger(ctx)
				if err != nil {
					return err
				}
				defer db.Close()
				return led.DeactivateReserve(ctx, cmd.Args().First())
			},
		},
	},
}

var cmdSeed = &cli.Command{
	Name:  "seed",
	Usage: "Apply migrations and seed default categories, accounts and tags",
	Action: func(ctx context.Context, _ *cli.Command) error {
		// openLedger already migrates and seeds; this command just makes
		// the implicit startup step invokable on its own.
		db, _, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		nCats, err := repository.NewCategoryRepo(db).Count(ctx)
		if err != nil {
			return err
		}
		nAccts, err := repository.NewAccountRepo(db).Count(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("base lista: %d categorías, %d cuentas\n", nCats, nAccts)
		return nil
	},
}

var cmdExport = &cli.Command{
	Name:  "export",
	Usage: "Write a full-state JSON backup to stdout or a file",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default stdout)"},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		db, _, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer db.Close()
		w, closeFn, err := outWriter(cmd.String("out"))
		if err != nil {
			return err
		}
		defer closeFn()
		return backup.New(db).WriteJSON(ctx, w)
	},
}

var cmdExportCSV = &cli.Command{
	Name:  "export-csv",
	Usage: "Write the transaction history as CSV",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default stdout)"},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		db, _, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer db.Close()
		w, closeFn, err := outWriter(cmd.String("out"))
		if err != nil {
			return err
		}
		defer closeFn()
		return backup.New(db).WriteCSV(ctx, w)
	},
}

var cmdImport = &cli.Command{
	Name:      "import",
	Usage:     "Replace the whole ledger from a JSON backup",
	ArgsUsage: "<backup.json>",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		if cmd.Args().Len() != 1 {
			return fmt.Errorf("expected exactly one backup file")
		}
		db, _, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		f, err := os.Open(cmd.Args().First())
		if err != nil {
			return err
		}
		defer f.Close()
		return backup.New(db).Import(ctx, f)
	},
}

func outWriter(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
