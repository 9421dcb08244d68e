// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ledgerTimeFormat has fixed-width fractions so timestamps sort as text
const ledgerTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Ledger stores imported bill tables in a local SQLite database
type Ledger struct {
	conn   *sql.DB
	path   string
	logger *Logger
}

// OpenLedger opens (or creates) the ledger database and initializes the schema
func OpenLedger(path string, logger *Logger) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &StorageError{Operation: "create_directory", Path: filepath.Dir(path), Err: err}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StorageError{Operation: "open_database", Path: path, Err: err}
	}

	l := &Ledger{conn: conn, path: path, logger: logger.WithComponent("ledger")}
	if err := l.initSchema(); err != nil {
		conn.Close()
		return nil, &StorageError{Operation: "initialize_schema", Path: path, Err: err}
	}

	l.logger.LogStorageOperation("open_ledger", path)
	return l, nil
}

// Close closes the database connection
func (l *Ledger) Close() error {
	return l.conn.Close()
}

func (l *Ledger) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS datasets (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		imported_at TEXT NOT NULL,
		row_count INTEGER NOT NULL,
		columns TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS bills (
		dataset_id TEXT NOT NULL REFERENCES datasets(id),
		seq INTEGER NOT NULL,
		bill_id TEXT NOT NULL,
		billing_month INTEGER NOT NULL,
		billing_year INTEGER NOT NULL,
		units_kwh REAL NOT NULL,
		total_amount REAL NOT NULL,
		payment_status TEXT NOT NULL,
		incomplete INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (dataset_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_datasets_imported_at ON datasets(imported_at);
	`

	_, err := l.conn.Exec(schema)
	return err
}

// ImportTable stores a raw table as a new dataset, preserving row order and
// which rows were incomplete
func (l *Ledger) ImportTable(name string, table *UsageTable) (*Dataset, error) {
	dataset := &Dataset{
		ID:         uuid.NewString(),
		Name:       name,
		ImportedAt: time.Now().UTC(),
		Rows:       table.Len(),
		Columns:    append([]string(nil), table.Columns...),
	}

	tx, err := l.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning import: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO datasets (id, name, imported_at, row_count, columns) VALUES (?, ?, ?, ?, ?)`,
		dataset.ID, dataset.Name, dataset.ImportedAt.Format(ledgerTimeFormat), dataset.Rows, strings.Join(dataset.Columns, ","),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting dataset: %w", err)
	}

	stmt, err := tx.Prepare(`
	INSERT INTO bills (dataset_id, seq, bill_id, billing_month, billing_year, units_kwh, total_amount, payment_status, incomplete)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing bill insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range table.Records {
		incomplete := 0
		if r.Incomplete {
			incomplete = 1
		}
		if _, err := stmt.Exec(dataset.ID, i, r.BillID, r.BillingMonth, r.BillingYear, r.UnitsKWh, r.TotalAmount, r.PaymentStatus, incomplete); err != nil {
			return nil, fmt.Errorf("inserting bill %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing import: %w", err)
	}

	l.logger.Info("Dataset imported", "id", dataset.ID, "name", name, "rows", dataset.Rows)
	return dataset, nil
}

// ListDatasets returns all datasets, newest first
func (l *Ledger) ListDatasets() ([]Dataset, error) {
	rows, err := l.conn.Query(`SELECT id, name, imported_at, row_count, columns FROM datasets ORDER BY imported_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying datasets: %w", err)
	}
	defer rows.Close()

	var results []Dataset
	for rows.Next() {
		d, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *d)
	}
	return results, rows.Err()
}

// GetDataset returns a dataset by id, or nil when it does not exist
func (l *Ledger) GetDataset(id string) (*Dataset, error) {
	row := l.conn.QueryRow(`SELECT id, name, imported_at, row_count, columns FROM datasets WHERE id = ?`, id)
	d, err := scanDataset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

// LatestDataset returns the most recently imported dataset, or nil when the ledger is empty
func (l *Ledger) LatestDataset() (*Dataset, error) {
	row := l.conn.QueryRow(`SELECT id, name, imported_at, row_count, columns FROM datasets ORDER BY imported_at DESC LIMIT 1`)
	d, err := scanDataset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

// LoadTable rebuilds the raw table of a dataset in its original row order
func (l *Ledger) LoadTable(id string) (*UsageTable, error) {
	dataset, err := l.GetDataset(id)
	if err != nil {
		return nil, err
	}
	if dataset == nil {
		return nil, &DataError{DataType: "dataset", Message: fmt.Sprintf("dataset %s not found", id)}
	}

	rows, err := l.conn.Query(`
	SELECT bill_id, billing_month, billing_year, units_kwh, total_amount, payment_status, incomplete
	FROM bills
	WHERE dataset_id = ?
	ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying bills: %w", err)
	}
	defer rows.Close()

	table := &UsageTable{
		Source:  fmt.Sprintf("dataset %s (%s)", dataset.ID, dataset.Name),
		Columns: dataset.Columns,
	}
	for rows.Next() {
		var r UsageRecord
		var incomplete int
		if err := rows.Scan(&r.BillID, &r.BillingMonth, &r.BillingYear, &r.UnitsKWh, &r.TotalAmount, &r.PaymentStatus, &incomplete); err != nil {
			return nil, fmt.Errorf("scanning bill: %w", err)
		}
		r.Incomplete = incomplete != 0
		table.Records = append(table.Records, r)
	}
	return table, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDataset(row rowScanner) (*Dataset, error) {
	var d Dataset
	var importedAt, columns string
	if err := row.Scan(&d.ID, &d.Name, &importedAt, &d.Rows, &columns); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning dataset: %w", err)
	}

	var err error
	d.ImportedAt, err = time.Parse(ledgerTimeFormat, importedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing imported_at: %w", err)
	}
	if columns != "" {
		d.Columns = strings.Split(columns, ",")
	}
	return &d, nil
}
