package solver

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/lox/aofsolver/internal/fileutil"
	"github.com/lox/aofsolver/internal/game"
	"github.com/rs/zerolog"
	"github.com/tinylib/msgp/msgp"
)

const checkpointFileVersion = 1

// ErrCheckpointVersion is returned for checkpoints written by an
// incompatible version.
var ErrCheckpointVersion = errors.New("unsupported checkpoint version")

// checkpointSnapshot is the msgpack document written by SaveCheckpoint. It
// carries everything needed to continue a run bit for bit: the regret
// table, the random stream positions and the table rules.
type checkpointSnapshot struct {
	Version    int
	Iteration  int64
	Seed       int64
	RNGState   []byte
	Monitor    []byte
	Elapsed    time.Duration
	UtilTotals [game.NumPlayers]float64
	Training   TrainingConfig
	SmallBlind float64
	BigBlind   float64
	Stacks     [game.NumPlayers]float64
	Fees       game.Fees
	Keys       []string
	Nodes      []nodeSnapshot
}

// EncodeMsg implements msgp.Encodable.
func (c *checkpointSnapshot) EncodeMsg(en *msgp.Writer) error {
	if err := en.WriteMapHeader(14); err != nil {
		return err
	}
	fields := []struct {
		name  string
		write func() error
	}{
		{"version", func() error { return en.WriteInt(c.Version) }},
		{"iteration", func() error { return en.WriteInt64(c.Iteration) }},
		{"seed", func() error { return en.WriteInt64(c.Seed) }},
		{"rng", func() error { return en.WriteBytes(c.RNGState) }},
		{"monitor", func() error { return en.WriteBytes(c.Monitor) }},
		{"elapsed", func() error { return en.WriteInt64(int64(c.Elapsed)) }},
		{"utilities", func() error { return writeFloats(en, c.UtilTotals[:]) }},
		{"training", func() error { return encodeTraining(en, c.Training) }},
		{"small_blind", func() error { return en.WriteFloat64(c.SmallBlind) }},
		{"big_blind", func() error { return en.WriteFloat64(c.BigBlind) }},
		{"stacks", func() error { return writeFloats(en, c.Stacks[:]) }},
		{"fees", func() error { return writeFloats(en, []float64{c.Fees.Rake, c.Fees.JackpotFee, c.Fees.JackpotPayoutPct}) }},
		{"keys", func() error { return writeStrings(en, c.Keys) }},
		{"nodes", func() error { return encodeNodes(en, c.Nodes) }},
	}
	for _, f := range fields {
		if err := en.WriteString(f.name); err != nil {
			return err
		}
		if err := f.write(); err != nil {
			return fmt.Errorf("encode %s: %w", f.name, err)
		}
	}
	return nil
}

// DecodeMsg implements msgp.Decodable. Unknown fields are skipped.
func (c *checkpointSnapshot) DecodeMsg(dc *msgp.Reader) error {
	n, err := dc.ReadMapHeader()
	if err != nil {
		return err
	}
	for ; n > 0; n-- {
		field, err := dc.ReadString()
		if err != nil {
			return err
		}
		switch field {
		case "version":
			c.Version, err = dc.ReadInt()
		case "iteration":
			c.Iteration, err = dc.ReadInt64()
		case "seed":
			c.Seed, err = dc.ReadInt64()
		case "rng":
			c.RNGState, err = dc.ReadBytes(nil)
		case "monitor":
			c.Monitor, err = dc.ReadBytes(nil)
		case "elapsed":
			var ns int64
			ns, err = dc.ReadInt64()
			c.Elapsed = time.Duration(ns)
		case "utilities":
			err = readFloatsInto(dc, c.UtilTotals[:])
		case "training":
			c.Training, err = decodeTraining(dc)
		case "small_blind":
			c.SmallBlind, err = dc.ReadFloat64()
		case "big_blind":
			c.BigBlind, err = dc.ReadFloat64()
		case "stacks":
			err = readFloatsInto(dc, c.Stacks[:])
		case "fees":
			var f [3]float64
			err = readFloatsInto(dc, f[:])
			c.Fees = game.Fees{Rake: f[0], JackpotFee: f[1], JackpotPayoutPct: f[2]}
		case "keys":
			c.Keys, err = readStrings(dc)
		case "nodes":
			c.Nodes, err = decodeNodes(dc)
		default:
			err = dc.Skip()
		}
		if err != nil {
			return fmt.Errorf("decode %s: %w", field, err)
		}
	}
	return nil
}

func encodeTraining(en *msgp.Writer, cfg TrainingConfig) error {
	if err := en.WriteArrayHeader(6); err != nil {
		return err
	}
	for _, v := range []int64{int64(cfg.Iterations), cfg.Seed, int64(cfg.Workers), int64(cfg.SyncEvery), int64(cfg.ProgressEvery), int64(cfg.FeedCapacity)} {
		if err := en.WriteInt64(v); err != nil {
			return err
		}
	}
	return nil
}

func decodeTraining(dc *msgp.Reader) (TrainingConfig, error) {
	var cfg TrainingConfig
	n, err := dc.ReadArrayHeader()
	if err != nil {
		return cfg, err
	}
	if n != 6 {
		return cfg, fmt.Errorf("training config has %d fields, want 6", n)
	}
	var v [6]int64
	for i := range v {
		if v[i], err = dc.ReadInt64(); err != nil {
			return cfg, err
		}
	}
	cfg.Iterations = int(v[0])
	cfg.Seed = v[1]
	cfg.Workers = int(v[2])
	cfg.SyncEvery = int(v[3])
	cfg.ProgressEvery = int(v[4])
	cfg.FeedCapacity = int(v[5])
	return cfg, nil
}

func encodeNodes(en *msgp.Writer, nodes []nodeSnapshot) error {
	if err := en.WriteArrayHeader(uint32(len(nodes))); err != nil {
		return err
	}
	for _, n := range nodes {
		if err := en.WriteArrayHeader(3); err != nil {
			return err
		}
		if err := writeFloats(en, n.RegretSum); err != nil {
			return err
		}
		if err := writeFloats(en, n.StrategySum); err != nil {
			return err
		}
		if err := en.WriteInt64(n.Visits); err != nil {
			return err
		}
	}
	return nil
}

func decodeNodes(dc *msgp.Reader) ([]nodeSnapshot, error) {
	count, err := dc.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	nodes := make([]nodeSnapshot, count)
	for i := range nodes {
		sz, err := dc.ReadArrayHeader()
		if err != nil {
			return nil, err
		}
		if sz != 3 {
			return nil, fmt.Errorf("node %d has %d fields, want 3", i, sz)
		}
		if nodes[i].RegretSum, err = readFloats(dc); err != nil {
			return nil, err
		}
		if nodes[i].StrategySum, err = readFloats(dc); err != nil {
			return nil, err
		}
		if nodes[i].Visits, err = dc.ReadInt64(); err != nil {
			return nil, err
		}
		if len(nodes[i].RegretSum) != len(nodes[i].StrategySum) || len(nodes[i].RegretSum) == 0 {
			return nil, fmt.Errorf("node %d has mismatched action counts", i)
		}
	}
	return nodes, nil
}

func writeFloats(en *msgp.Writer, vs []float64) error {
	if err := en.WriteArrayHeader(uint32(len(vs))); err != nil {
		return err
	}
	for _, v := range vs {
		if err := en.WriteFloat64(v); err != nil {
			return err
		}
	}
	return nil
}

func readFloats(dc *msgp.Reader) ([]float64, error) {
	n, err := dc.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		if out[i], err = dc.ReadFloat64(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func readFloatsInto(dc *msgp.Reader, dst []float64) error {
	vs, err := readFloats(dc)
	if err != nil {
		return err
	}
	if len(vs) != len(dst) {
		return fmt.Errorf("expected %d values, got %d", len(dst), len(vs))
	}
	copy(dst, vs)
	return nil
}

func writeStrings(en *msgp.Writer, ss []string) error {
	if err := en.WriteArrayHeader(uint32(len(ss))); err != nil {
		return err
	}
	for _, s := range ss {
		if err := en.WriteString(s); err != nil {
			return err
		}
	}
	return nil
}

func readStrings(dc *msgp.Reader) ([]string, error) {
	n, err := dc.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	out := make([]string, n)
	for i := range out {
		if out[i], err = dc.ReadString(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// EnableCheckpoints configures the trainer to write checkpoints every n
// iterations and once more when Run returns normally.
func (t *Trainer) EnableCheckpoints(path string, every int) {
	t.checkpointPath = path
	t.checkpointEvery = every
}

// SaveCheckpoint writes a snapshot of the trainer state to path atomically.
func (t *Trainer) SaveCheckpoint(path string) error {
	snap, err := t.buildCheckpoint()
	if err != nil {
		return err
	}
	err = fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		mw := msgp.NewWriter(w)
		if err := snap.EncodeMsg(mw); err != nil {
			return fmt.Errorf("encode checkpoint: %w", err)
		}
		return mw.Flush()
	})
	if err != nil {
		return fmt.Errorf("persist checkpoint: %w", err)
	}
	t.logger.Debug().Str("path", path).Int64("iteration", snap.Iteration).Int("info_sets", len(snap.Keys)).Msg("checkpoint saved")
	return nil
}

// LoadTrainerFromCheckpoint restores a trainer from a checkpoint. The rules
// are rebuilt from the stored blinds, stacks and fees; opts apply as in
// NewTrainer.
func LoadTrainerFromCheckpoint(path string, opts ...Option) (*Trainer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	snap, err := decodeCheckpoint(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("load checkpoint %s: %w", path, err)
	}

	probe := &Trainer{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(probe)
	}
	rules, err := game.NewRules(snap.SmallBlind, snap.BigBlind,
		game.WithStacks(snap.Stacks[:]...),
		game.WithFees(snap.Fees),
		game.WithLogger(probe.logger))
	if err != nil {
		return nil, fmt.Errorf("checkpoint rules invalid: %w", err)
	}

	trainer, err := NewTrainer(rules, snap.Training, opts...)
	if err != nil {
		return nil, err
	}
	trainer.reseed(snap.Seed)
	if err := trainer.src.UnmarshalBinary(snap.RNGState); err != nil {
		return nil, fmt.Errorf("restore rng: %w", err)
	}
	if err := trainer.monitorSrc.UnmarshalBinary(snap.Monitor); err != nil {
		return nil, fmt.Errorf("restore monitor rng: %w", err)
	}
	trainer.iteration.Store(snap.Iteration)
	trainer.utilTotals = snap.UtilTotals
	trainer.elapsed = snap.Elapsed

	for i, key := range snap.Keys {
		shard := trainer.regrets.shardFor(key)
		shard.nodes[key] = newRegretNodeFromSnapshot(snap.Nodes[i])
	}
	return trainer, nil
}

func (t *Trainer) buildCheckpoint() (*checkpointSnapshot, error) {
	rngState, err := t.src.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("snapshot rng: %w", err)
	}
	monitorState, err := t.monitorSrc.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("snapshot monitor rng: %w", err)
	}

	t.mu.Lock()
	utils, elapsed := t.utilTotals, t.elapsed
	t.mu.Unlock()

	nodes := t.regrets.Nodes()
	keys := make([]string, 0, len(nodes))
	for k := range nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	snap := &checkpointSnapshot{
		Version:    checkpointFileVersion,
		Iteration:  t.iteration.Load(),
		Seed:       t.seed,
		RNGState:   rngState,
		Monitor:    monitorState,
		Elapsed:    elapsed,
		UtilTotals: utils,
		Training:   t.cfg,
		SmallBlind: t.rules.SmallBlind(),
		BigBlind:   t.rules.BigBlind(),
		Stacks:     t.rules.Stacks(),
		Fees:       t.rules.Fees(),
		Keys:       keys,
		Nodes:      make([]nodeSnapshot, len(keys)),
	}
	for i, k := range keys {
		snap.Nodes[i] = nodes[k].snapshot()
	}
	return snap, nil
}

func decodeCheckpoint(r io.Reader) (*checkpointSnapshot, error) {
	var snap checkpointSnapshot
	if err := snap.DecodeMsg(msgp.NewReader(r)); err != nil {
		return nil, err
	}
	if snap.Version != checkpointFileVersion {
		return nil, fmt.Errorf("%w: %d", ErrCheckpointVersion, snap.Version)
	}
	if len(snap.Keys) != len(snap.Nodes) {
		return nil, fmt.Errorf("checkpoint has %d keys but %d nodes", len(snap.Keys), len(snap.Nodes))
	}
	if err := snap.Training.Validate(); err != nil {
		return nil, fmt.Errorf("checkpoint training invalid: %w", err)
	}
	return &snap, nil
}
