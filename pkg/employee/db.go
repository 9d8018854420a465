// Package employee manages the employee SQLite database and the read-only
// SQL tool the agent queries it with.
package employee

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// column describes one employees table column
type column struct {
	name  string
	ctype string
}

// columns is the canonical employees schema, in CSV order
var columns = []column{
	{"employee_index_id", "TEXT"},
	{"full_name", "TEXT"},
	{"first_name", "TEXT"},
	{"last_name", "TEXT"},
	{"date_of_birth", "TEXT"},
	{"age", "INTEGER"},
	{"gender", "TEXT"},
	{"marital_status", "TEXT"},
	{"nationality", "TEXT"},
	{"race", "TEXT"},
	{"work_pass_type", "TEXT"},
	{"mobile_number", "TEXT"},
	{"personal_email", "TEXT"},
	{"work_email", "TEXT"},
	{"industry", "TEXT"},
	{"job_title", "TEXT"},
	{"employment_type", "TEXT"},
	{"employment_status", "TEXT"},
	{"employment_start_date", "TEXT"},
	{"leave_taken", "INTEGER"},
	{"department", "TEXT"},
}

// SchemaDescription documents the employees table for the model. It is
// injected into the SQL tool description so the model writes exact SQL.
const SchemaDescription = `Table: employees
Columns:
- employee_index_id (TEXT)
- full_name (TEXT)
- first_name (TEXT)
- last_name (TEXT)
- date_of_birth (TEXT)
- age (INTEGER)
- gender (TEXT)
- marital_status (TEXT)
- nationality (TEXT)
- race (TEXT)
- work_pass_type (TEXT)
- mobile_number (TEXT)
- personal_email (TEXT)
- work_email (TEXT)
- industry (TEXT)
- job_title (TEXT)
- employment_type (TEXT)
- employment_status (TEXT)
- employment_start_date (TEXT)
- leave_taken (INTEGER)
- department (TEXT)

Usage guidance:
- For headcount: SELECT COUNT(*) FROM employees WHERE department = 'Engineering';
- For leave taken: SELECT leave_taken FROM employees WHERE full_name LIKE '%John%';
- For employee lookup: SELECT * FROM employees WHERE full_name LIKE '%Jane Doe%';`

// Guard messages returned to the model instead of executing unsafe SQL
const (
	onlySelectMessage = "Only SELECT queries are allowed."
	readOnlyMessage   = "Only read-only SELECT queries are permitted."
	noResultsMessage  = "No results."
)

// Config holds database configuration
type Config struct {
	DBPath   string
	CSVPath  string
	RowLimit int
	Logger   zerolog.Logger
}

// DB wraps the employee SQLite database
type DB struct {
	db       *sql.DB
	rowLimit int
	logger   zerolog.Logger
}

// Open opens the employee database, bootstrapping it from CSV when the
// database file does not exist yet
func Open(cfg Config) (*DB, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if cfg.RowLimit <= 0 {
		cfg.RowLimit = 50
	}

	bootstrap := false
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		bootstrap = true
	}

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	e := &DB{db: db, rowLimit: cfg.RowLimit, logger: cfg.Logger}

	if bootstrap {
		if cfg.CSVPath == "" {
			db.Close()
			return nil, fmt.Errorf("employee database %s does not exist and no CSV path configured", cfg.DBPath)
		}
		if err := e.buildFromCSV(cfg.CSVPath); err != nil {
			db.Close()
			os.Remove(cfg.DBPath)
			return nil, fmt.Errorf("failed to build employee database: %w", err)
		}
		e.logger.Info().Str("db", cfg.DBPath).Str("csv", cfg.CSVPath).Msg("Employee database created")
	} else if err := e.ensureIndexes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	return e, nil
}

// buildFromCSV creates the employees table and loads rows from a CSV export
func (e *DB) buildFromCSV(csvPath string) error {
	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("employee CSV not found: %w", err)
	}
	defer f.Close()

	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = c.name + " " + c.ctype
	}
	if _, err := e.db.Exec(fmt.Sprintf("CREATE TABLE employees (%s)", strings.Join(cols, ", "))); err != nil {
		return err
	}

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	// Map CSV columns by header name so column order in the file is free
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	tx, err := e.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO employees VALUES (%s)", placeholders))
	if err != nil {
		return err
	}
	defer stmt.Close()

	var rows int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV row: %w", err)
		}

		values := make([]interface{}, len(columns))
		for i, c := range columns {
			pos, ok := index[c.name]
			if !ok || pos >= len(record) {
				continue
			}
			v := strings.TrimSpace(record[pos])
			if v != "" {
				values[i] = v
			}
		}

		if _, err := stmt.Exec(values...); err != nil {
			return fmt.Errorf("failed to insert row: %w", err)
		}
		rows++
	}

	for _, idx := range indexStatements {
		if _, err := tx.Exec(idx); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	e.logger.Info().Int("rows", rows).Msg("Employee CSV loaded")
	return nil
}

var indexStatements = []string{
	"CREATE INDEX IF NOT EXISTS idx_department ON employees(department)",
	"CREATE INDEX IF NOT EXISTS idx_full_name ON employees(full_name)",
	"CREATE INDEX IF NOT EXISTS idx_leave_taken ON employees(leave_taken)",
	"CREATE INDEX IF NOT EXISTS idx_employment_status ON employees(employment_status)",
}

// ensureIndexes backfills indexes on databases built before they existed
func (e *DB) ensureIndexes() error {
	for _, idx := range indexStatements {
		if _, err := e.db.Exec(idx); err != nil {
			return err
		}
	}
	return nil
}

// forbidden mutation keywords, matched with a trailing space so column
// names like "created_at" do not trip the guard
var forbiddenKeywords = []string{"update ", "insert ", "delete ", "drop ", "alter ", "create "}

// Query executes a read-only SELECT and formats the result as a markdown
// table. Guard violations and SQL errors come back as text rather than an
// error: the agent loop feeds them to the model, which can correct itself
// on the next turn.
func (e *DB) Query(ctx context.Context, sqlQuery string) string {
	lowered := strings.ToLower(strings.TrimSpace(sqlQuery))
	if !strings.HasPrefix(lowered, "select") {
		return onlySelectMessage
	}
	for _, word := range forbiddenKeywords {
		if strings.Contains(lowered, word) {
			return readOnlyMessage
		}
	}

	rows, err := e.db.QueryContext(ctx, sqlQuery)
	if err != nil {
		return fmt.Sprintf("SQL execution error: %v", err)
	}
	defer rows.Close()

	colNames, err := rows.Columns()
	if err != nil {
		return fmt.Sprintf("SQL execution error: %v", err)
	}

	var lines []string
	lines = append(lines, strings.Join(colNames, " | "))

	separators := make([]string, len(colNames))
	for i := range separators {
		separators[i] = "---"
	}
	lines = append(lines, strings.Join(separators, " | "))

	var count int
	for rows.Next() {
		if count >= e.rowLimit {
			break
		}

		raw := make([]interface{}, len(colNames))
		ptrs := make([]interface{}, len(colNames))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Sprintf("SQL execution error: %v", err)
		}

		cells := make([]string, len(colNames))
		for i, v := range raw {
			cells[i] = formatValue(v)
		}
		lines = append(lines, strings.Join(cells, " | "))
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Sprintf("SQL execution error: %v", err)
	}

	if count == 0 {
		return noResultsMessage
	}
	return strings.Join(lines, "\n")
}

// formatValue renders a scanned SQL value as table cell text
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return fmt.Sprintf("%d", val)
	case float64:
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Close closes the underlying database
func (e *DB) Close() error {
	return e.db.Close()
}
