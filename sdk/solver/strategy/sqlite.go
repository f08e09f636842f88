package strategy

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS strategies (
    key    TEXT PRIMARY KEY,
    visits INTEGER NOT NULL,
    probs  BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS metadata (
    name  TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{`PRAGMA busy_timeout = 5000;`, `PRAGMA journal_mode = WAL;`} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("configure sqlite: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}

// SaveSQLite replaces the contents of the database at path with p.
func SaveSQLite(ctx context.Context, path string, p *Profile) error {
	db, err := openSQLite(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM strategies`); err != nil {
		return fmt.Errorf("clear strategies: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO strategies (key, visits, probs) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range p.Entries() {
		if _, err := stmt.ExecContext(ctx, e.Key, e.Visits, encodeProbs(e.Probabilities)); err != nil {
			return fmt.Errorf("insert %q: %w", e.Key, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO metadata (name, value) VALUES ('iterations', ?)
ON CONFLICT (name) DO UPDATE SET value = excluded.value`, strconv.Itoa(p.Iterations)); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return tx.Commit()
}

// LoadSQLite reads a profile saved with SaveSQLite.
func LoadSQLite(ctx context.Context, path string) (*Profile, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := openSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	p := NewProfile(0)
	var iterations string
	err = db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE name = 'iterations'`).Scan(&iterations)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, fmt.Errorf("read metadata: %w", err)
	default:
		if p.Iterations, err = strconv.Atoi(iterations); err != nil {
			return nil, fmt.Errorf("%w: iterations %q", ErrMalformed, iterations)
		}
	}

	rows, err := db.QueryContext(ctx, `SELECT key, visits, probs FROM strategies`)
	if err != nil {
		return nil, fmt.Errorf("query strategies: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			key    string
			visits int64
			blob   []byte
		)
		if err := rows.Scan(&key, &visits, &blob); err != nil {
			return nil, err
		}
		probs, err := decodeProbs(blob)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
		}
		p.Set(key, visits, probs)
	}
	return p, rows.Err()
}

func encodeProbs(probs []float64) []byte {
	out := make([]byte, 8*len(probs))
	for i, v := range probs {
		binary.LittleEndian.PutUint64(out[8*i:], math.Float64bits(v))
	}
	return out
}

func decodeProbs(b []byte) ([]float64, error) {
	if len(b) == 0 || len(b)%8 != 0 {
		return nil, fmt.Errorf("probability blob has %d bytes", len(b))
	}
	out := make([]float64, len(b)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:]))
	}
	return out, nil
}
