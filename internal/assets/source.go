package assets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Source loads asset records by id.
type Source interface {
	Load(ctx context.Context, id string) (Asset, error)
}

// FileSource reads <Dir>/<id>.json.
type FileSource struct {
	Dir string
}

// Load reads and decodes the record for id.
func (s FileSource) Load(ctx context.Context, id string) (Asset, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return Asset{}, fmt.Errorf("%w: bad id %q", ErrNotFound, id)
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, id+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return Asset{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Asset{}, err
	}
	a, err := Decode(data)
	if err != nil {
		return Asset{}, err
	}
	if a.ID == "" {
		a.ID = id
	}
	return a, nil
}

// LoadFile decodes a single record from path.
func LoadFile(path string) (Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Asset{}, err
	}
	return Decode(data)
}

const schema = `CREATE TABLE IF NOT EXISTS assets (
	id     TEXT PRIMARY KEY,
	record TEXT NOT NULL
)`

// SQLiteSource keeps asset records in a SQLite table.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create assets table: %w", err)
	}
	return &SQLiteSource{db: db}, nil
}

// Close closes the database.
func (s *SQLiteSource) Close() error { return s.db.Close() }

// Put stores a, replacing any record with the same id.
func (s *SQLiteSource) Put(ctx context.Context, a Asset) error {
	if a.ID == "" {
		return errors.New("assets: cannot store asset without id")
	}
	data, err := Encode(a)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assets (id, record) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET record = excluded.record`,
		a.ID, string(data))
	return err
}

// Load reads and decodes the record for id.
func (s *SQLiteSource) Load(ctx context.Context, id string) (Asset, error) {
	var rec string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM assets WHERE id = ?`, id).Scan(&rec)
	if errors.Is(err, sql.ErrNoRows) {
		return Asset{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Asset{}, err
	}
	a, err := Decode([]byte(rec))
	if err != nil {
		return Asset{}, err
	}
	if a.ID == "" {
		a.ID = id
	}
	return a, nil
}

// IDs lists the stored ids in order.
func (s *SQLiteSource) IDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM assets ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Resolve loads id from the SQLite store at db when db is set, otherwise it
// decodes the record file at path.
func Resolve(ctx context.Context, path, db, id string) (Asset, error) {
	if db == "" {
		if path == "" {
			return Asset{}, errors.New("assets: no asset file or database given")
		}
		return LoadFile(path)
	}
	src, err := OpenSQLite(db)
	if err != nil {
		return Asset{}, err
	}
	defer src.Close()
	if path != "" {
		// Seed the store from the file first.
		a, err := LoadFile(path)
		if err != nil {
			return Asset{}, err
		}
		if a.ID == "" {
			a.ID = id
		}
		if err := src.Put(ctx, a); err != nil {
			return Asset{}, err
		}
		if id == "" {
			id = a.ID
		}
	}
	return src.Load(ctx, id)
}
