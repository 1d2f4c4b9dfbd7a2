// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/retailrec/internal/recommend"
)

// Table names accepted by DuckDBSource.Import.
const (
	TableProducts     = "products"
	TableCustomers    = "customers"
	TableTransactions = "transactions"
)

// queryTimeout bounds every catalog query.
const queryTimeout = 30 * time.Second

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		product_id VARCHAR PRIMARY KEY,
		name       VARCHAR,
		category   VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		customer_id VARCHAR PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		customer_id  VARCHAR,
		product_id   VARCHAR,
		quantity     INTEGER,
		total_amount DOUBLE,
		purchased_at TIMESTAMP
	)`,
}

// importColumns lists the columns Import reads from a file for each table.
var importColumns = map[string]string{
	TableProducts:     "product_id, name, category",
	TableCustomers:    "customer_id",
	TableTransactions: "customer_id, product_id, quantity, total_amount",
}

// DuckDBConfig configures the DuckDB catalog.
type DuckDBConfig struct {
	// Path is the database file, or ":memory:".
	Path string

	// Threads is the DuckDB worker thread count. 0 uses runtime.NumCPU().
	Threads int

	// MaxMemory is the DuckDB memory limit (e.g., "1GB").
	MaxMemory string
}

// DuckDBSource reads retail data from DuckDB tables.
type DuckDBSource struct {
	conn *sql.DB
}

// OpenDuckDB opens (creating if needed) the catalog database and its schema.
func OpenDuckDB(ctx context.Context, cfg DuckDBConfig) (*DuckDBSource, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "1GB"
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	// Disable auto-install/auto-load to prevent hangs in restricted network environments
	connStr := fmt.Sprintf("%s?threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		path, threads, maxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database lives only as long as its connection.
	conn.SetMaxOpenConns(1)

	s := &DuckDBSource{conn: conn}
	if err := s.initialize(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return s, nil
}

func (s *DuckDBSource) initialize(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	for _, stmt := range schema {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *DuckDBSource) Close() error {
	return s.conn.Close()
}

// Products returns every catalog row ordered by product id.
func (s *DuckDBSource) Products(ctx context.Context) ([]recommend.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, `
		SELECT product_id, COALESCE(name, ''), COALESCE(category, '')
		FROM products
		WHERE product_id IS NOT NULL
		ORDER BY product_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []recommend.Product
	for rows.Next() {
		var p recommend.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Customers returns every known customer id, including customers without
// purchases, ordered by id.
func (s *DuckDBSource) Customers(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, `
		SELECT customer_id FROM customers WHERE customer_id IS NOT NULL
		UNION
		SELECT customer_id FROM transactions WHERE customer_id IS NOT NULL
		ORDER BY customer_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	var customers []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, id)
	}
	return customers, rows.Err()
}

// Transactions returns every purchase line. NULL columns come back as
// zero values and are rejected by the loader's validation.
func (s *DuckDBSource) Transactions(ctx context.Context) ([]recommend.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, `
		SELECT
			COALESCE(customer_id, ''),
			COALESCE(product_id, ''),
			COALESCE(quantity, 0),
			COALESCE(total_amount, 0)
		FROM transactions
	`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []recommend.Transaction
	for rows.Next() {
		var tx recommend.Transaction
		if err := rows.Scan(&tx.CustomerID, &tx.ProductID, &tx.Quantity, &tx.Total); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// AddProducts upserts catalog rows.
func (s *DuckDBSource) AddProducts(ctx context.Context, products []recommend.Product) error {
	return s.inTx(ctx, `INSERT OR REPLACE INTO products (product_id, name, category) VALUES (?, ?, ?)`,
		len(products), func(i int) []any {
			p := products[i]
			return []any{p.ID, p.Name, p.Category}
		})
}

// AddCustomers registers customer ids.
func (s *DuckDBSource) AddCustomers(ctx context.Context, ids []string) error {
	return s.inTx(ctx, `INSERT OR IGNORE INTO customers (customer_id) VALUES (?)`,
		len(ids), func(i int) []any { return []any{ids[i]} })
}

// AddTransactions appends purchase lines.
func (s *DuckDBSource) AddTransactions(ctx context.Context, txs []recommend.Transaction) error {
	now := time.Now().UTC()
	return s.inTx(ctx, `INSERT INTO transactions (customer_id, product_id, quantity, total_amount, purchased_at) VALUES (?, ?, ?, ?, ?)`,
		len(txs), func(i int) []any {
			tx := txs[i]
			return []any{tx.CustomerID, tx.ProductID, tx.Quantity, tx.Total, now}
		})
}

// inTx runs one prepared statement n times inside a transaction.
func (s *DuckDBSource) inTx(ctx context.Context, query string, n int, args func(i int) []any) error {
	if n == 0 {
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Import loads a CSV or Parquet file into table. The file must have a
// header naming the table's columns; extra columns are ignored. Returns the
// number of rows inserted.
func (s *DuckDBSource) Import(ctx context.Context, table, path string) (int64, error) {
	columns, ok := importColumns[table]
	if !ok {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("import file: %w", err)
	}

	reader, err := fileReader(path)
	if err != nil {
		return 0, err
	}

	verb := "INSERT INTO"
	switch table {
	case TableProducts:
		verb = "INSERT OR REPLACE INTO"
	case TableCustomers:
		verb = "INSERT OR IGNORE INTO"
	}

	// Table functions do not accept bound parameters for the file name;
	// the path is embedded as an escaped string literal.
	query := fmt.Sprintf("%s %s (%s) SELECT %s FROM %s", verb, table, columns, columns, reader) //nolint:gosec // table and columns come from a fixed allowlist

	ctx, cancel := context.WithTimeout(ctx, 5*queryTimeout)
	defer cancel()

	res, err := s.conn.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("import %s from %s: %w", table, filepath.Base(path), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// fileReader returns the DuckDB table function reading path.
func fileReader(path string) (string, error) {
	literal := "'" + strings.ReplaceAll(path, "'", "''") + "'"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return "read_csv_auto(" + literal + ", header = true)", nil
	case ".parquet":
		return "read_parquet(" + literal + ")", nil
	default:
		return "", errors.New("import file must be .csv or .parquet")
	}
}

func closeQuietly(conn *sql.DB) {
	if conn != nil {
		_ = conn.Close() // Explicitly ignore error - cleanup is best-effort
	}
}
