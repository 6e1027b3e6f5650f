package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/drestrepo/monedero/internal/logging"
)

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "monedero",
		Usage: "Personal ledger: accounts, transfers, reconciliation and reserves",
		Commands: []*cli.Command{
			cmdAccounts,
			cmdAdd,
			cmdTransfer,
			cmdReconcile,
			cmdReserve,
			cmdSeed,
			cmdExport,
			cmdExportCSV,
			cmdImport,
		},
	}
}

func main() {
	if err := newRootCommand().Run(context.Background(), os.Args); err != nil {
		logging.Logger(logging.SourceApp).Fatal(err)
	}
}
