// Package sqlite is the SQLite store backend. Documents live as JSON text in
// one table and filters are evaluated with json_extract.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"portfoliotracker/internal/logger"
	"portfoliotracker/internal/store"
)

type Store struct {
	DB     *sql.DB
	Logger *logger.Logger
}

// Open opens (creating if needed) the database at dsn and ensures the schema.
func Open(ctx context.Context, dsn string, log *logger.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		log.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA synchronous = NORMAL;"); err != nil {
		log.Warning("Failed to set synchronous mode: %v", err)
	}

	query := `
		CREATE TABLE IF NOT EXISTS documents (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			doc TEXT NOT NULL,
			UNIQUE (collection, id)
		);
	`
	if _, err := db.ExecContext(ctx, query); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create documents: %w", err)
	}
	return &Store{DB: db, Logger: log}, nil
}

func (s *Store) Insert(ctx context.Context, collection, id string, doc []byte) error {
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO documents (collection, id, doc) VALUES (?, ?, ?)", collection, id, string(doc))
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrDuplicate
	}
	return err
}

func (s *Store) Find(ctx context.Context, collection string, f store.Filter) ([][]byte, error) {
	where, args, err := whereClause(collection, f)
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, "SELECT doc FROM documents WHERE "+where+" ORDER BY seq", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		out = append(out, []byte(doc))
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, collection string, f store.Filter, set map[string]any) (int, error) {
	if len(set) == 0 {
		docs, err := s.Find(ctx, collection, f)
		return len(docs), err
	}
	if err := store.CheckFields(set); err != nil {
		return 0, err
	}
	where, whereArgs, err := whereClause(collection, f)
	if err != nil {
		return 0, err
	}

	// json_set(doc, '$.a', json(?), '$.b', json(?), ...)
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var expr strings.Builder
	expr.WriteString("json_set(doc")
	args := make([]any, 0, len(set)+len(whereArgs))
	for _, k := range keys {
		b, err := json.Marshal(set[k])
		if err != nil {
			return 0, fmt.Errorf("encode %s: %w", k, err)
		}
		expr.WriteString(", '$." + k + "', json(?)")
		args = append(args, string(b))
	}
	expr.WriteString(")")
	args = append(args, whereArgs...)

	res, err := s.DB.ExecContext(ctx, "UPDATE documents SET doc = "+expr.String()+" WHERE "+where, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *Store) Delete(ctx context.Context, collection string, f store.Filter) (int, error) {
	where, args, err := whereClause(collection, f)
	if err != nil {
		return 0, err
	}
	res, err := s.DB.ExecContext(ctx, "DELETE FROM documents WHERE "+where, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *Store) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// whereClause renders f as SQL. Field names were validated, so they can be
// spliced into the JSON path; values are always bound.
func whereClause(collection string, f store.Filter) (string, []any, error) {
	if err := store.CheckFields(f); err != nil {
		return "", nil, err
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := []string{"collection = ?"}
	args := []any{collection}
	for _, k := range keys {
		v, err := store.Normalize(f[k])
		if err != nil {
			return "", nil, err
		}
		path := "json_extract(doc, '$." + k + "')"
		switch x := v.(type) {
		case nil:
			parts = append(parts, path+" IS NULL")
		case bool:
			// json_extract yields 1/0 for JSON booleans
			b := 0
			if x { b = 1 }
			parts = append(parts, "json_type(doc, '$."+k+"') IN ('true','false') AND "+path+" = ?")
			args = append(args, b)
		case string, float64:
			parts = append(parts, path+" = ?")
			args = append(args, x)
		default:
			return "", nil, errors.New("store: unsupported filter value")
		}
	}
	return strings.Join(parts, " AND "), args, nil
}
