// Package store is a demonstration row-map persistence adapter: it is
// not the cloud table-store client the codec types talk to (that stays
// out of scope), but a thin, concrete consumer of the row maps this
// library produces, exercising the same SQL stack the teacher uses.
//
// Grounded on internal/core/db/db.go's URL-scheme dispatch (sqlite://,
// postgres://) and connection pool tuning, and internal/core/db/queries.go's
// embedded-SQL/dotsql named-query loading.
package store

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/qustavo/dotsql"

	"github.com/solatis/typecodec/internal/codec/filterop"
)

const (
	maxOpenConns    = 16
	maxIdleConns    = 4
	connMaxIdleTime = 5 * time.Minute
	connMaxLifetime = 30 * time.Minute
)

//go:embed queries/*.sql
var queriesFS embed.FS

// Store wraps a *sqlx.DB and the named queries used to persist row maps
// into a single flat entities table.
type Store struct {
	db   *sqlx.DB
	dot  *dotsql.DotSql
	kind string // driver name, "sqlite3" or "postgres"; ensureSchema issues the same DDL for both
}

// Open establishes a database connection from dbURL (sqlite:// or
// postgres://), configures pooling, loads the named queries, and creates
// the entities table if it does not already exist.
func Open(ctx context.Context, dbURL string) (*Store, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}

	var driverName, dataSource string
	switch u.Scheme {
	case "sqlite":
		driverName = "sqlite3"
		if u.Host != "" {
			dataSource = u.Host + u.Path
		} else {
			dataSource = u.Path
		}
	case "postgres":
		driverName = "postgres"
		dataSource = dbURL
	default:
		return nil, fmt.Errorf("unsupported database scheme: %s (expected sqlite or postgres)", u.Scheme)
	}

	db, err := sqlx.Open(driverName, dataSource)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxIdleTime(connMaxIdleTime)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	dot, err := loadQueries()
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, dot: dot, kind: driverName}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func loadQueries() (*dotsql.DotSql, error) {
	var combinedSQL string
	err := fs.WalkDir(queriesFS, "queries", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".sql" {
			return nil
		}
		content, err := queriesFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		combinedSQL += string(content) + "\n"
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load query files: %w", err)
	}

	dot, err := dotsql.LoadFromString(combinedSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse queries: %w", err)
	}
	return dot, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS entities (
		entity_id  TEXT NOT NULL,
		cell_name  TEXT NOT NULL,
		cell_value TEXT,
		cell_type  TEXT NOT NULL,
		PRIMARY KEY (entity_id, cell_name)
	)`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

// entityCell is one row of the flat entities table: a single row-map
// cell belonging to entityID.
type entityCell struct {
	EntityID  string `db:"entity_id"`
	CellName  string `db:"cell_name"`
	CellValue string `db:"cell_value"`
	CellType  string `db:"cell_type"`
}

// PutRow flattens row into one (entity_id, cell_name, cell_value,
// cell_type) tuple per cell and upserts each under a single transaction.
// cell_type is "number", "string", "bool", or "null"; the @odata.type
// annotation cells already present in row are stored verbatim alongside
// their sibling cell, just like any other string cell.
func (s *Store) PutRow(ctx context.Context, entityID string, row map[string]any) error {
	query, err := s.dot.Raw("upsert-cell")
	if err != nil {
		return fmt.Errorf("query not found: upsert-cell: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(mustRaw(s.dot, "delete-entity")), entityID); err != nil {
		return fmt.Errorf("clear existing cells: %w", err)
	}

	for name, value := range row {
		cellValue, cellType := stringifyCell(value)
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), entityID, name, cellValue, cellType); err != nil {
			return fmt.Errorf("upsert cell %q: %w", name, err)
		}
	}
	return tx.Commit()
}

// GetRow reassembles the row map previously stored under entityID. An
// entity with no cells yields an empty, non-nil map.
func (s *Store) GetRow(ctx context.Context, entityID string) (map[string]any, error) {
	query, err := s.dot.Raw("select-entity")
	if err != nil {
		return nil, fmt.Errorf("query not found: select-entity: %w", err)
	}

	var cells []entityCell
	if err := s.db.SelectContext(ctx, &cells, s.db.Rebind(query), entityID); err != nil {
		return nil, fmt.Errorf("select entity %q: %w", entityID, err)
	}

	row := make(map[string]any, len(cells))
	for _, c := range cells {
		row[c.CellName] = parseCell(c.CellValue, c.CellType)
	}
	return row, nil
}

func mustRaw(dot *dotsql.DotSql, name string) string {
	q, err := dot.Raw(name)
	if err != nil {
		panic(fmt.Sprintf("store: missing named query %q", name))
	}
	return q
}

func stringifyCell(value any) (cellValue, cellType string) {
	switch v := value.(type) {
	case nil:
		return "", "null"
	case string:
		return v, "string"
	case bool:
		if v {
			return "true", "bool"
		}
		return "false", "bool"
	case float64:
		return fmt.Sprintf("%v", v), "number"
	case int64:
		return fmt.Sprintf("%d", v), "number"
	default:
		return fmt.Sprintf("%v", v), "string"
	}
}

func parseCell(value, cellType string) any {
	switch cellType {
	case "null":
		return nil
	case "bool":
		return value == "true"
	case "number":
		var f float64
		if _, err := fmt.Sscanf(value, "%g", &f); err != nil {
			return value
		}
		return f
	default:
		return value
	}
}

// sqlOperator translates a filterop.Op into the SQL comparison operator
// it stands for. filterop.Render's token vocabulary (eq/ne/lt/le/gt/ge)
// is OData wire syntax, not SQL, so this mapping is what lets a
// Condition reach an actual WHERE clause.
func sqlOperator(op filterop.Op) (string, error) {
	switch op {
	case filterop.Eq:
		return "=", nil
	case filterop.Ne:
		return "!=", nil
	case filterop.Lt:
		return "<", nil
	case filterop.Le:
		return "<=", nil
	case filterop.Gt:
		return ">", nil
	case filterop.Ge:
		return ">=", nil
	default:
		return "", fmt.Errorf("store: unsupported filter operator %v", op)
	}
}

// filterOperandValue renders cond's operand the same way stringifyCell
// would have stored it, so the comparison is against cell_value's actual
// on-disk text form rather than filterop's OData literal syntax (quoted
// strings, datetime'...', guid'...').
func filterOperandValue(cond filterop.Condition) (string, error) {
	switch cond.Category {
	case filterop.CategoryString, filterop.CategoryDate, filterop.CategoryGuid:
		return fmt.Sprintf("%v", cond.Operand), nil
	case filterop.CategoryBoolean:
		b, ok := cond.Operand.(bool)
		if !ok {
			return "", fmt.Errorf("store: boolean filter operand must be bool, got %T", cond.Operand)
		}
		if b {
			return "true", nil
		}
		return "false", nil
	case filterop.CategoryNumber:
		return fmt.Sprintf("%v", cond.Operand), nil
	default:
		return "", fmt.Errorf("store: unsupported filter category %v", cond.Category)
	}
}

// BuildFilterQuery renders cond against property into a parameterized
// (?-placeholder) SQL query over the entities table plus its bind
// arguments. The caller rebinds placeholders for the target driver
// before executing; property and the operand are always passed as bind
// arguments, never interpolated into the query text.
func BuildFilterQuery(property string, cond filterop.Condition) (query string, args []any, err error) {
	sqlOp, err := sqlOperator(cond.Op)
	if err != nil {
		return "", nil, err
	}
	operand, err := filterOperandValue(cond)
	if err != nil {
		return "", nil, err
	}
	query = fmt.Sprintf("SELECT entity_id FROM entities WHERE cell_name = ? AND cell_value %s ?", sqlOp)
	return query, []any{property, operand}, nil
}

// FilterEntityIDs executes BuildFilterQuery's query against the entities
// table and returns the matching entity IDs, giving filterop.Condition
// an end-to-end path from a rendered condition to real query results.
func (s *Store) FilterEntityIDs(ctx context.Context, property string, cond filterop.Condition) ([]string, error) {
	query, args, err := BuildFilterQuery(property, cond)
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := s.db.SelectContext(ctx, &ids, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("filter entities: %w", err)
	}
	return ids, nil
}
