package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/drestrepo/monedero/internal/database/repository"
	"github.com/drestrepo/monedero/internal/logging"
)

// Default taxonomy seeded on an empty category table. Parent categories
// carry children; children inherit the parent color.
var defaultTaxonomy = []struct {
	name     string
	typ      string
	color    string
	children []string
}{
	{"Sueldo", repository.TxIncome, "#10b981", []string{"Nómina", "Propinas", "Bonificaciones", "Comisiones", "Otros"}},
	{"Otros", repository.TxIncome, "#6366f1", []string{"Ingresos por intereses", "Dividendos", "Regalos", "Reembolsos", "Otros"}},
	{"Niños", repository.TxExpense, "#ec4899", []string{"Actividades", "Cuota o básicos", "Gastos médicos", "Guardería", "Ropa", "Colegio", "Juguetes", "Otros"}},
	{"Deuda", repository.TxExpense, "#dc2626", []string{"Tarjeta de crédito", "Préstamo personal", "Préstamo estudiantil", "Otros"}},
	{"Educación", repository.TxExpense, "#8b5cf6", []string{"Matrícula", "Libros", "Clases de música", "Otros"}},
	{"Ocio", repository.TxExpense, "#f59e0b", []string{"Cine", "Citas", "Conciertos o espectáculos", "Deporte", "Juegos", "Vacaciones", "Otros"}},
	{"Gastos diarios", repository.TxExpense, "#3b82f6", []string{"Higiene personal", "Supermercado", "Peluquería o belleza", "Restaurantes", "Ropa", "Suscripciones", "Otros"}},
	{"Regalos", repository.TxExpense, "#ef4444", []string{"Regalos", "Donativos (ONG)", "Otros"}},
	{"Salud/médicos", repository.TxExpense, "#14b8a6", []string{"Médicos (dentista/oculista)", "Especialistas", "Farmacia", "Urgencias", "Otros"}},
	{"Vivienda", repository.TxExpense, "#a855f7", []string{"Alquiler o hipoteca", "Artículos para el hogar", "Impuestos a la propiedad", "Mantenimiento", "Muebles", "Otros"}},
	{"Seguros", repository.TxExpense, "#06b6d4", []string{"Vehículo", "Salud", "Hogar", "Vida", "Otros"}},
	{"Mascotas", repository.TxExpense, "#84cc16", []string{"Comida", "Veterinario o medicinas", "Juguetes", "Suministros", "Otros"}},
	{"Tecnología", repository.TxExpense, "#6366f1", []string{"Dominios y alojamiento", "Servicios online", "Hardware", "Software", "Otros"}},
	{"Transporte", repository.TxExpense, "#0ea5e9", []string{"Combustible", "Pagos del vehículo", "Reparaciones", "Transporte público", "Otros"}},
	{"Viajes", repository.TxExpense, "#f97316", []string{"Bebidas o Comidas", "Billetes de avión", "Hoteles", "Transporte", "Otros"}},
	{"Servicios básicos", repository.TxExpense, "#64748b", []string{"Agua", "Cable/Internet", "Calefacción o gas", "Electricidad", "Teléfono/Celular", "Otros"}},
}

var defaultTags = []struct {
	name  string
	color string
}{
	{"Familia", "#8B5CF6"},
	{"Urgente", "#EF4444"},
	{"Recurrente", "#3B82F6"},
	{"Regalo", "#F59E0B"},
	{"Salud", "#10B981"},
	{"Educación", "#06B6D4"},
	{"Trabajo", "#6366F1"},
}

// SeedDefaults populates an empty database: the category taxonomy, two
// default accounts, the default tag set and the app_config singleton.
// minConfidence seeds the singleton's suggestion threshold; an existing
// singleton is never overwritten, so the value travels with backups.
// It is idempotent and safe to run on every startup; a cleanup pass
// removes duplicates left behind by earlier, racier seed runs.
func SeedDefaults(ctx context.Context, db *sql.DB, minConfidence float64) error {
	log := logging.Logger(logging.SourceSeed)
	if minConfidence <= 0 || minConfidence > 1 {
		minConfidence = 0.7
	}

	err := WithTx(db, func(tx *sql.Tx) error {
		catRepo := repository.NewCategoryRepo(tx)
		acctRepo := repository.NewAccountRepo(tx)
		tagRepo := repository.NewTagRepo(tx)
		cfgRepo := repository.NewAppConfigRepo(tx)

		nCats, err := catRepo.Count(ctx)
		if err != nil {
			return err
		}
		if nCats == 0 {
			for _, parent := range defaultTaxonomy {
				parentID := uuid.NewString()
				if err := catRepo.Insert(ctx, repository.Category{
					ID: parentID, Name: parent.name, Type: parent.typ, Color: parent.color, IsActive: true,
				}); err != nil {
					return fmt.Errorf("seed category %q: %w", parent.name, err)
				}
				pid := parentID
				for _, child := range parent.children {
					if err := catRepo.Insert(ctx, repository.Category{
						ID: uuid.NewString(), Name: child, Type: parent.typ, Color: parent.color, ParentID: &pid, IsActive: true,
					}); err != nil {
						return fmt.Errorf("seed category %q: %w", child, err)
					}
				}
			}
			log.Info("seeded default categories")
		}

		nAccts, err := acctRepo.Count(ctx)
		if err != nil {
			return err
		}
		if nAccts == 0 {
			defaults := []repository.Account{
				{ID: uuid.NewString(), Name: "Efectivo", Type: repository.AccountCash, Currency: "COP", IsActive: true},
				{ID: uuid.NewString(), Name: "Bancolombia", Type: repository.AccountBank, Currency: "COP", IsActive: true},
			}
			for _, a := range defaults {
				if err := acctRepo.Insert(ctx, a); err != nil {
					return fmt.Errorf("seed account %q: %w", a.Name, err)
				}
			}
			log.Info("seeded default accounts")
		}

		nTags, err := tagRepo.Count(ctx)
		if err != nil {
			return err
		}
		if nTags == 0 {
			now := Now()
			for _, t := range defaultTags {
				if err := tagRepo.Insert(ctx, repository.Tag{
					ID: uuid.NewString(), Name: t.name, Color: t.color, CreatedAt: now, UpdatedAt: now,
				}); err != nil {
					return fmt.Errorf("seed tag %q: %w", t.name, err)
				}
			}
		}

		nCfg, err := cfgRepo.Count(ctx)
		if err != nil {
			return err
		}
		if nCfg == 0 {
			if err := cfgRepo.Put(ctx, repository.AppConfig{
				ID:                     repository.ConfigID,
				DefaultCurrency:        "COP",
				MinConfidenceThreshold: minConfidence,
				EnableAISuggestions:    true,
			}); err != nil {
				return fmt.Errorf("seed app config: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return cleanupDuplicates(ctx, db)
}

// cleanupDuplicates is self-healing against repeated seed invocations:
// duplicate categories (keyed name+type+parent) and duplicate accounts
// (keyed by normalized name) are removed, keeping the first of each.
func cleanupDuplicates(ctx context.Context, db *sql.DB) error {
	log := logging.Logger(logging.SourceSeed)

	return WithTx(db, func(tx *sql.Tx) error {
		catRepo := repository.NewCategoryRepo(tx)
		acctRepo := repository.NewAccountRepo(tx)

		cats, err := catRepo.List(ctx)
		if err != nil {
			return err
		}
		seenCats := make(map[string]bool)
		removed := 0
		for _, c := range cats {
			parent := "root"
			if c.ParentID != nil {
				parent = *c.ParentID
			}
			key := c.Name + "|" + c.Type + "|" + parent
			if seenCats[key] {
				if err := catRepo.Delete(ctx, c.ID); err != nil {
					return err
				}
				removed++
				continue
			}
			seenCats[key] = true
		}
		if removed > 0 {
			log.Info("removed duplicate categories", "count", removed)
		}

		accts, err := acctRepo.List(ctx)
		if err != nil {
			return err
		}
		seenAccts := make(map[string]bool)
		removed = 0
		for _, a := range accts {
			key := strings.ToLower(strings.TrimSpace(a.Name))
			if seenAccts[key] {
				if err := acctRepo.Delete(ctx, a.ID); err != nil {
					return err
				}
				removed++
				continue
			}
			seenAccts[key] = true
		}
		if removed > 0 {
			log.Info("removed duplicate accounts", "count", removed)
		}
		return nil
	})
}
