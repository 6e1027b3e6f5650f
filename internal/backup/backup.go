// Package backup serializes the full ledger state to a versioned JSON
// document and restores it atomically, plus a flat CSV export of the
// transaction history.
package backup

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/drestrepo/monedero/internal/database"
	"github.com/drestrepo/monedero/internal/database/repository"
	"github.com/drestrepo/monedero/internal/logging"
)

// FormatVersion is the backup document version this build writes.
const FormatVersion = 1

// ImportFormatError describes a backup document that failed shape
// validation. The import is refused wholesale; the existing ledger is
// untouched.
type ImportFormatError struct {
	Reason string
}

func (e *ImportFormatError) Error() string {
	return fmt.Sprintf("invalid backup document: %s", e.Reason)
}

// Document is the full-state backup envelope.
type Document struct {
	Version   int    `json:"version"`
	Timestamp int64  `json:"timestamp"`
	Tables    Tables `json:"tables"`
}

// Tables holds the ordered record sequences of every collection.
type Tables struct {
	Transactions    []TransactionRecord    `json:"transactions"`
	Accounts        []AccountRecord        `json:"accounts"`
	Reconciliations []ReconciliationRecord `json:"reconciliations"`
	Categories      []CategoryRecord       `json:"categories"`
	Tags            []TagRecord            `json:"tags"`
	Reserves        []ReserveRecord        `json:"reserves"`
	AppConfig       []AppConfigRecord      `json:"appConfig"`
}

// requiredTables must be present as arrays for an import to proceed.
var requiredTables = []string{"transactions", "accounts", "categories", "reserves"}

// Service reads and writes full-state backups.
type Service struct {
	db  *sql.DB
	log *log.Logger
}

func New(db *sql.DB) *Service {
	return &Service{db: db, log: logging.Logger(logging.SourceBackup)}
}

// Export snapshots all seven collections into a Document.
func (s *Service) Export(ctx context.Context) (*Document, error) {
	txs, err := repository.NewTransactionRepo(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := repository.NewAccountRepo(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	recons, err := repository.NewReconciliationRepo(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := repository.NewCategoryRepo(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := repository.NewTagRepo(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	reserves, err := repository.NewReserveRepo(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := repository.NewAppConfigRepo(s.db).Get(ctx)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Version:   FormatVersion,
		Timestamp: time.Now().UnixMilli(),
	}
	for _, t := range txs {
		doc.Tables.Transactions = append(doc.Tables.Transactions, toTransactionRecord(t))
	}
	for _, a := range accounts {
		doc.Tables.Accounts = append(doc.Tables.Accounts, toAccountRecord(a))
	}
	for _, r := range recons {
		doc.Tables.Reconciliations = append(doc.Tables.Reconciliations, toReconciliationRecord(r))
	}
	for _, c := range categories {
		doc.Tables.Categories = append(doc.Tables.Categories, toCategoryRecord(c))
	}
	for _, t := range tags {
		doc.Tables.Tags = append(doc.Tables.Tags, toTagRecord(t))
	}
	for _, r := range reserves {
		doc.Tables.Reserves = append(doc.Tables.Reserves, toReserveRecord(r))
	}
	if cfg != nil {
		doc.Tables.AppConfig = append(doc.Tables.AppConfig, toAppConfigRecord(*cfg))
	}
	return doc, nil
}

// WriteJSON exports the ledger as indented JSON.
func (s *Service) WriteJSON(ctx context.Context, w io.Writer) error {
	doc, err := s.Export(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Import validates the document shape before touching anything, then
// replaces all seven collections (clear-then-bulk-insert) as one unit
// of work. Any failure leaves the existing ledger intact.
func (s *Service) Import(ctx context.Context, r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	doc, err := validate(raw)
	if err != nil {
		return err
	}

	err = database.WithTx(s.db, func(tx *sql.Tx) error {
		txRepo := repository.NewTransactionRepo(tx)
		acctRepo := repository.NewAccountRepo(tx)
		reconRepo := repository.NewReconciliationRepo(tx)
		catRepo := repository.NewCategoryRepo(tx)
		tagRepo := repository.NewTagRepo(tx)
		resRepo := repository.NewReserveRepo(tx)
		cfgRepo := repository.NewAppConfigRepo(tx)

		for _, clear := range []func(context.Context) error{
			txRepo.DeleteAll, reconRepo.DeleteAll, resRepo.DeleteAll,
			tagRepo.DeleteAll, catRepo.DeleteAll, acctRepo.DeleteAll, cfgRepo.DeleteAll,
		} {
			if err := clear(ctx); err != nil {
				return err
			}
		}

		for _, rec := range doc.Tables.Accounts {
			if err := acctRepo.Insert(ctx, rec.toModel()); err != nil {
				return err
			}
		}
		for _, rec := range doc.Tables.Categories {
			if err := catRepo.Insert(ctx, rec.toModel()); err != nil {
				return err
			}
		}
		for _, rec := range doc.Tables.Tags {
			if err := tagRepo.Insert(ctx, rec.toModel()); err != nil {
				return err
			}
		}
		for _, rec := range doc.Tables.Transactions {
			if err := txRepo.Insert(ctx, rec.toModel()); err != nil {
				return err
			}
		}
		for _, rec := range doc.Tables.Reconciliations {
			if err := reconRepo.Insert(ctx, rec.toModel()); err != nil {
				return err
			}
		}
		for _, rec := range doc.Tables.Reserves {
			if err := resRepo.Insert(ctx, rec.toModel()); err != nil {
				return err
			}
		}
		for _, rec := range doc.Tables.AppConfig {
			if err := cfgRepo.Put(ctx, rec.toModel()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("backup imported",
		"transactions", len(doc.Tables.Transactions),
		"accounts", len(doc.Tables.Accounts))
	return nil
}

// validate checks the document shape without mutating anything:
// well-formed JSON, a tables object, and every required table present
// as an array.
func validate(raw []byte) (*Document, error) {
	var shape struct {
		Version *int                       `json:"version"`
		Tables  map[string]json.RawMessage `json:"tables"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		return nil, &ImportFormatError{Reason: "not valid JSON"}
	}
	if shape.Tables == nil {
		return nil, &ImportFormatError{Reason: "missing tables section"}
	}
	var missing []string
	for _, name := range requiredTables {
		entry, ok := shape.Tables[name]
		if !ok || !isJSONArray(entry) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &ImportFormatError{Reason: "missing or invalid tables: " + strings.Join(missing, ", ")}
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ImportFormatError{Reason: err.Error()}
	}
	return &doc, nil
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "[")
}
