package strategy

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Format identifies an on-disk strategy encoding.
type Format string

const (
	FormatText   Format = "text"
	FormatBinary Format = "binary"
	FormatSQLite Format = "sqlite"
)

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".strategy":
		return FormatText, nil
	case ".bin":
		return FormatBinary, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	}
	return "", fmt.Errorf("unknown strategy format for %q", path)
}

// Extension returns the file extension written for f.
func (f Format) Extension() string {
	switch f {
	case FormatBinary:
		return ".bin"
	case FormatSQLite:
		return ".db"
	default:
		return ".txt"
	}
}

// Load reads a profile, choosing the decoder by extension.
func Load(ctx context.Context, path string) (*Profile, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatBinary:
		return LoadBinary(path)
	case FormatSQLite:
		return LoadSQLite(ctx, path)
	default:
		return LoadText(path)
	}
}

// Save writes a profile, choosing the encoder by extension.
func Save(ctx context.Context, path string, p *Profile) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	switch format {
	case FormatBinary:
		return SaveBinary(path, p)
	case FormatSQLite:
		return SaveSQLite(ctx, path, p)
	default:
		return SaveText(path, p)
	}
}

// TimestampedName builds names like "strategy_2024_03_01_14_05_09.txt".
func TimestampedName(prefix string, now time.Time, f Format) string {
	return prefix + "_" + now.Format("2006_01_02_15_04_05") + f.Extension()
}
