package backup

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/drestrepo/monedero/internal/database/repository"
)

// Fallback labels for dangling category/account references.
const (
	fallbackCategory = "Sin Categoría"
	fallbackAccount  = "Cuenta Borrada"
)

var csvHeader = []string{"Fecha", "Descripción", "Monto", "Tipo", "Categoría", "Cuenta"}

// WriteCSV exports one row per transaction. Field quoting (including
// doubling embedded quotes) is handled by the csv writer.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer) error {
	txs, err := repository.NewTransactionRepo(s.db).List(ctx)
	if err != nil {
		return err
	}
	categories, err := repository.NewCategoryRepo(s.db).List(ctx)
	if err != nil {
		return err
	}
	accounts, err := repository.NewAccountRepo(s.db).List(ctx)
	if err != nil {
		return err
	}

	catNames := make(map[string]string, len(categories))
	for _, c := range categories {
		catNames[c.ID] = c.Name
	}
	acctNames := make(map[string]string, len(accounts))
	for _, a := range accounts {
		acctNames[a.ID] = a.Name
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range txs {
		category, ok := catNames[t.CategoryID]
		if !ok {
			category = fallbackCategory
		}
		account, ok := acctNames[t.AccountID]
		if !ok {
			account = fallbackAccount
		}
		row := []string{
			t.Date.Format("2006-01-02"),
			t.Description,
			t.Amount.String(),
			t.Type,
			category,
			account,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
