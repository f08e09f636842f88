package strategy

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFor(t *testing.T) {
	tests := map[string]Format{
		"a.txt":      FormatText,
		"a.strategy": FormatText,
		"dir/a.BIN":  FormatBinary,
		"a.db":       FormatSQLite,
		"a.sqlite3":  FormatSQLite,
	}
	for path, want := range tests {
		got, err := FormatFor(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFor("a.json")
	assert.Error(t, err)
}

func TestSaveLoadDispatch(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	p := sampleProfile()

	for _, name := range []string{"s.txt", "s.bin", "s.db"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(ctx, path, p), name)
		got, err := Load(ctx, path)
		require.NoError(t, err, name)
		assert.Equal(t, p.Entries(), got.Entries(), name)
	}
}

func TestTimestampedName(t *testing.T) {
	now := time.Date(2024, 3, 1, 14, 5, 9, 0, time.UTC)
	assert.Equal(t, "strategy_2024_03_01_14_05_09.txt", TimestampedName("strategy", now, FormatText))
	assert.Equal(t, "run_2024_03_01_14_05_09.db", TimestampedName("run", now, FormatSQLite))
}
