// Package store loads benchmark tables into a SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ccsbench/ccsbench/internal/table"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite file at path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	conn, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single writer
	conn.SetMaxOpenConns(1)
	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error { return db.conn.Close() }

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// TableName derives a table name from a file path: "results/joined_metrics.csv"
// becomes "joined_metrics".
func TableName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := strings.Trim(nonIdent.ReplaceAllString(base, "_"), "_")
	if name == "" {
		return "t"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "t_" + name
	}
	return name
}

// ColumnType is REAL when every non-null cell of col parses as a number, else TEXT.
func ColumnType(t *table.Table, col string) string {
	seen := false
	for _, r := range t.Rows {
		v, ok := r.Value(col)
		if !ok {
			continue
		}
		if _, ok := table.ParseFloat(v); !ok {
			return "TEXT"
		}
		seen = true
	}
	if !seen {
		return "TEXT"
	}
	return "REAL"
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// Load replaces table name with the contents of t inside one transaction. Null
// cells are stored as NULL. It returns the number of inserted rows.
func (db *DB) Load(ctx context.Context, name string, t *table.Table) (int, error) {
	types := make([]string, len(t.Columns))
	defs := make([]string, len(t.Columns))
	qCols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		types[i] = ColumnType(t, c)
		qCols[i] = quote(c)
		defs[i] = qCols[i] + " " + types[i]
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+quote(name)); err != nil {
		return 0, fmt.Errorf("drop %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `CREATE TABLE `+quote(name)+` (`+strings.Join(defs, ",")+`)`); err != nil {
		return 0, fmt.Errorf("create %s: %w", name, err)
	}
	ph := strings.TrimRight(strings.Repeat("?,", len(t.Columns)), ",")
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+quote(name)+` (`+strings.Join(qCols, ",")+`) VALUES (`+ph+`)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(t.Columns))
	for _, r := range t.Rows {
		for i, c := range t.Columns {
			args[i] = cellValue(r, c, types[i])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert into %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return t.Len(), nil
}

func cellValue(r table.Row, col, typ string) any {
	v, ok := r.Value(col)
	if !ok {
		return nil
	}
	if typ == "REAL" {
		f, _ := table.ParseFloat(v)
		return f
	}
	return v
}

// Export is the result of loading one file.
type Export struct {
	Path  string
	Table string
	Rows  int
}

// ExportFiles loads every delimited file in paths into the database at dbPath,
// one table per file. A .tsv file is read tab-delimited; others use delim, or
// the sniffed delimiter when delim is 0.
func ExportFiles(ctx context.Context, dbPath string, paths []string, delim rune) ([]Export, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var out []Export
	for _, p := range paths {
		d := delim
		if strings.HasSuffix(strings.ToLower(p), ".tsv") {
			d = '\t'
		}
		t, err := table.ReadFile(p, table.ReadOptions{Delimiter: d})
		if err != nil {
			return out, err
		}
		name := TableName(p)
		n, err := db.Load(ctx, name, t)
		if err != nil {
			return out, err
		}
		out = append(out, Export{Path: p, Table: name, Rows: n})
	}
	return out, nil
}
