package strategy

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/lox/aofsolver/internal/fileutil"
)

// Manifest records how a strategy file was produced. It is written as TOML
// next to the strategy.
type Manifest struct {
	RunID        string     `toml:"run_id"`
	CreatedAt    time.Time  `toml:"created_at"`
	StrategyFile string     `toml:"strategy_file"`
	Iterations   int        `toml:"iterations"`
	Seed         int64      `toml:"seed"`
	Workers      int        `toml:"workers"`
	InfoSets     int        `toml:"info_sets"`
	Duration     string     `toml:"duration"`
	Table        TableInfo  `toml:"table"`
	Utilities    []float64  `toml:"utilities"`
	Visits       VisitStats `toml:"visits"`
}

// TableInfo describes the game the strategy was trained for.
type TableInfo struct {
	SmallBlind       float64   `toml:"small_blind"`
	BigBlind         float64   `toml:"big_blind"`
	Stacks           []float64 `toml:"stacks"`
	Rake             float64   `toml:"rake"`
	JackpotFee       float64   `toml:"jackpot_fee"`
	JackpotPayoutPct float64   `toml:"jackpot_payout_pct"`
}

// VisitStats mirrors Stats in a TOML friendly shape.
type VisitStats struct {
	Total int64   `toml:"total"`
	Max   int64   `toml:"max"`
	Min   int64   `toml:"min"`
	Mean  float64 `toml:"mean"`
}

// NewManifest starts a manifest with a fresh run ID.
func NewManifest(now time.Time) Manifest {
	return Manifest{RunID: uuid.NewString(), CreatedAt: now.UTC().Truncate(time.Second)}
}

// ManifestPath returns the manifest location for a strategy file.
func ManifestPath(strategyPath string) string {
	return strings.TrimSuffix(strategyPath, filepath.Ext(strategyPath)) + ".toml"
}

// WriteManifest writes m to path atomically.
func WriteManifest(path string, m Manifest) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		enc := toml.NewEncoder(w)
		enc.Indent = "\t"
		return enc.Encode(m)
	})
}

// ReadManifest parses a manifest file.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return m, fmt.Errorf("read manifest %s: %w", path, err)
	}
	if _, err := uuid.Parse(m.RunID); err != nil {
		return m, fmt.Errorf("manifest %s: invalid run id: %w", path, err)
	}
	return m, nil
}
