// Package sqlstore keeps energy records and the country classification in a
// SQLite file so a dataset can be imported once and loaded as immutable
// engine snapshots afterwards.
//
// Imports replace both tables inside one transaction; readers loading a
// snapshot see either the previous or the new dataset, never a mix.
package sqlstore

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"energymix/internal/engine"
	"energymix/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - energy_records, country_classification, imports
const currentSchemaVersion = 1

// Store is a SQLite-backed record store.
type Store struct {
	db *sql.DB
}

// ImportInfo describes one completed import.
type ImportInfo struct {
	ID         string
	ImportedAt time.Time
	Records    int
	Countries  int
}

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// metricColumnList is the metric columns in Metric order.
func metricColumnList() []string {
	cols := make([]string, models.MetricCount)
	for i, m := range models.AllMetrics() {
		cols[i] = m.Column()
	}
	return cols
}

// Import replaces the stored dataset with recs and classes.
func (s *Store) Import(ctx context.Context, recs []models.EnergyRecord, classes []models.CountryClassification) (ImportInfo, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportInfo{}, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"energy_records", "country_classification"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return ImportInfo{}, fmt.Errorf("clear %s: %w", table, err)
		}
	}

	cols := append([]string{"country", "year", "iso_code"}, metricColumnList()...)
	insert := fmt.Sprintf("INSERT INTO energy_records (%s) VALUES (%s)",
		strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return ImportInfo{}, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	countries := make(map[string]struct{})
	args := make([]any, len(cols))
	for _, r := range recs {
		args[0], args[1], args[2] = r.Country, r.Year, r.ISOCode
		for m, v := range r.Values {
			args[3+m] = sql.NullFloat64{Float64: v.Float64, Valid: v.Valid}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return ImportInfo{}, fmt.Errorf("insert %s %d: %w", r.Country, r.Year, err)
		}
		countries[r.Country] = struct{}{}
	}

	for _, c := range classes {
		if c.Category == models.Unclassified {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO country_classification (country, category) VALUES (?, ?)",
			c.Country, c.Category.String()); err != nil {
			return ImportInfo{}, fmt.Errorf("insert classification %s: %w", c.Country, err)
		}
	}

	info := ImportInfo{
		ID:         uuid.NewString(),
		ImportedAt: time.Now().UTC().Truncate(time.Second),
		Records:    len(recs),
		Countries:  len(countries),
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO imports (id, imported_at, records, countries) VALUES (?, ?, ?, ?)",
		info.ID, info.ImportedAt.Unix(), info.Records, info.Countries); err != nil {
		return ImportInfo{}, fmt.Errorf("record import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ImportInfo{}, fmt.Errorf("commit import: %w", err)
	}
	return info, nil
}

// LastImport returns the most recent import, or sql.ErrNoRows.
func (s *Store) LastImport(ctx context.Context) (ImportInfo, error) {
	var (
		info ImportInfo
		ts   int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, imported_at, records, countries FROM imports ORDER BY imported_at DESC, id ASC LIMIT 1").
		Scan(&info.ID, &ts, &info.Records, &info.Countries)
	if err != nil {
		return ImportInfo{}, err
	}
	info.ImportedAt = time.Unix(ts, 0).UTC()
	return info, nil
}

// Records reads every stored record ordered by country then year.
func (s *Store) Records(ctx context.Context) ([]models.EnergyRecord, error) {
	cols := append([]string{"country", "year", "iso_code"}, metricColumnList()...)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT %s FROM energy_records ORDER BY country ASC, year ASC", strings.Join(cols, ", ")))
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []models.EnergyRecord
	vals := make([]sql.NullFloat64, models.MetricCount)
	dest := make([]any, len(cols))
	for rows.Next() {
		var r models.EnergyRecord
		dest[0], dest[1], dest[2] = &r.Country, &r.Year, &r.ISOCode
		for i := range vals {
			dest[3+i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		for i, v := range vals {
			r.Values[i] = models.NullFloat{Float64: v.Float64, Valid: v.Valid}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Classification reads the stored country classification.
func (s *Store) Classification(ctx context.Context) ([]models.CountryClassification, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT country, category FROM country_classification ORDER BY country ASC")
	if err != nil {
		return nil, fmt.Errorf("query classification: %w", err)
	}
	defer rows.Close()

	var out []models.CountryClassification
	for rows.Next() {
		var country, category string
		if err := rows.Scan(&country, &category); err != nil {
			return nil, fmt.Errorf("scan classification: %w", err)
		}
		cat, err := models.ParseCategory(category)
		if err != nil {
			return nil, err
		}
		out = append(out, models.CountryClassification{Country: country, Category: cat})
	}
	return out, rows.Err()
}

// Snapshot loads the stored dataset into an immutable engine store.
func (s *Store) Snapshot(ctx context.Context) (*engine.Store, error) {
	recs, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	classes, err := s.Classification(ctx)
	if err != nil {
		return nil, err
	}
	cls, err := engine.NewClassification(classes)
	if err != nil {
		return nil, err
	}
	return engine.NewStore(recs, cls)
}
