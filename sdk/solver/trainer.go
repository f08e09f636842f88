package solver

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/aofsolver/internal/game"
	"github.com/lox/aofsolver/internal/randutil"
	"github.com/rs/zerolog"
)

// TraversalStats captures instrumentation metrics for the most recent
// iteration or worker batch.
type TraversalStats struct {
	NodesVisited  int64
	TerminalNodes int64
	MaxDepth      int
	IterationTime time.Duration
}

func (s *TraversalStats) add(o TraversalStats) {
	s.NodesVisited += o.NodesVisited
	s.TerminalNodes += o.TerminalNodes
	s.MaxDepth = max(s.MaxDepth, o.MaxDepth)
}

// Progress is passed to the Run callback.
type Progress struct {
	Iteration    int
	Total        int
	InfoSets     int
	Stats        TraversalStats
	Utilities    [game.NumPlayers]float64
	MeanAbsError float64
	Elapsed      time.Duration
}

// TrainingStats summarises a trainer's work so far.
type TrainingStats struct {
	TotalIterations int
	TotalTime       time.Duration
	InfoSets        int
	FinalUtilities  [game.NumPlayers]float64
}

// Option configures optional trainer collaborators.
type Option func(*Trainer)

// WithLogger sets the logger for lifecycle and checkpoint messages.
func WithLogger(l zerolog.Logger) Option {
	return func(t *Trainer) { t.logger = l }
}

// WithClock replaces the wall clock used for elapsed time.
func WithClock(c quartz.Clock) Option {
	return func(t *Trainer) { t.clock = c }
}

// WithFeed publishes a Sample to f at every progress interval.
func WithFeed(f *Feed) Option {
	return func(t *Trainer) { t.feed = f }
}

// Trainer runs external-sampling Monte Carlo CFR over four-handed
// all-in-or-fold poker. It owns the regret table; training is sequential
// unless TrainingConfig.Workers asks for parallel batches.
type Trainer struct {
	rules     *game.Rules
	cfg       TrainingConfig
	regrets   *RegretTable
	iteration atomic.Int64

	seed       int64
	src        *rand.PCG
	rng        *rand.Rand
	monitorSrc *rand.PCG
	monitor    *rand.Rand

	mu         sync.Mutex
	utilTotals [game.NumPlayers]float64
	stats      TraversalStats
	elapsed    time.Duration

	feed   *Feed
	clock  quartz.Clock
	logger zerolog.Logger

	checkpointPath  string
	checkpointEvery int
}

// NewTrainer constructs a trainer for rules.
func NewTrainer(rules *game.Rules, cfg TrainingConfig, opts ...Option) (*Trainer, error) {
	if rules == nil {
		return nil, errors.New("rules are required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Trainer{
		rules:   rules,
		cfg:     cfg,
		regrets: NewRegretTable(),
		clock:   quartz.NewReal(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.reseed(randutil.Seed(cfg.Seed))
	return t, nil
}

func (t *Trainer) reseed(seed int64) {
	t.seed = seed
	t.src = randutil.NewSource(seed)
	t.rng = rand.New(t.src)
	t.monitorSrc = randutil.NewSource(randutil.Derive(seed, -1))
	t.monitor = rand.New(t.monitorSrc)
}

// Run trains until the configured iteration count is reached or ctx is
// cancelled. Cancellation is honoured between iterations (or worker
// batches), so the regret table is always left consistent.
func (t *Trainer) Run(ctx context.Context, progress func(Progress)) error {
	start := t.clock.Now()
	t.mu.Lock()
	baseElapsed := t.elapsed
	t.mu.Unlock()
	elapsed := func() time.Duration { return baseElapsed + t.clock.Now().Sub(start) }
	defer func() {
		t.mu.Lock()
		t.elapsed = elapsed()
		t.mu.Unlock()
	}()

	interval := t.cfg.progressInterval()
	t.logger.Debug().
		Int("iterations", t.cfg.Iterations).
		Int("workers", t.cfg.Workers).
		Int64("seed", t.seed).
		Msg("training started")

	for {
		done := int(t.iteration.Load())
		if done >= t.cfg.Iterations {
			break
		}
		select {
		case <-ctx.Done():
			t.logger.Info().Int("iteration", done).Msg("training interrupted")
			return ctx.Err()
		default:
		}

		iterStart := t.clock.Now()
		var (
			n     int
			stats TraversalStats
			err   error
		)
		if t.cfg.Workers > 1 {
			n, stats, err = t.parallelBatch(ctx, t.cfg.Iterations-done)
		} else {
			n, stats, err = t.singleIteration()
		}
		if err != nil {
			return fmt.Errorf("iteration %d: %w", done+1, err)
		}
		stats.IterationTime = t.clock.Now().Sub(iterStart)
		t.setStats(stats)
		iter := int(t.iteration.Add(int64(n)))

		if t.checkpointPath != "" && t.checkpointEvery > 0 && iter/t.checkpointEvery > done/t.checkpointEvery {
			if err := t.SaveCheckpoint(t.checkpointPath); err != nil {
				return err
			}
		}
		if iter/interval > done/interval || iter >= t.cfg.Iterations {
			t.report(iter, elapsed(), stats, progress)
		}
	}

	if t.checkpointPath != "" && t.checkpointEvery > 0 {
		if err := t.SaveCheckpoint(t.checkpointPath); err != nil {
			return err
		}
	}
	t.logger.Debug().Int("info_sets", t.regrets.Size()).Msg("training finished")
	return nil
}

func (t *Trainer) singleIteration() (int, TraversalStats, error) {
	w := &walker{rules: t.rules, regrets: t.regrets, rng: t.rng}
	util, err := w.iterate(t.monitor)
	if err != nil {
		return 0, TraversalStats{}, err
	}
	t.addUtilities(util)
	return 1, w.stats, nil
}

func (t *Trainer) addUtilities(util [game.NumPlayers]float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, u := range util {
		t.utilTotals[i] += u
	}
}

func (t *Trainer) report(iter int, elapsed time.Duration, stats TraversalStats, progress func(Progress)) {
	avg := t.averageUtilities(iter)
	mae := MeanAbsError(avg)
	if t.feed != nil {
		sum := 0.0
		for _, u := range avg {
			sum += u
		}
		t.feed.Publish(Sample{
			Iteration:    iter,
			MeanAbsError: mae,
			UtilitySum:   sum,
			Utilities:    avg,
			Elapsed:      elapsed,
		})
	}
	if progress != nil {
		progress(Progress{
			Iteration:    iter,
			Total:        t.cfg.Iterations,
			InfoSets:     t.regrets.Size(),
			Stats:        stats,
			Utilities:    avg,
			MeanAbsError: mae,
			Elapsed:      elapsed,
		})
	}
}

func (t *Trainer) averageUtilities(iter int) [game.NumPlayers]float64 {
	var avg [game.NumPlayers]float64
	if iter <= 0 {
		return avg
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, total := range t.utilTotals {
		avg[i] = total / float64(iter)
	}
	return avg
}

func (t *Trainer) setStats(stats TraversalStats) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats = stats
}

// Stats returns the traversal statistics of the most recent iteration.
func (t *Trainer) Stats() TraversalStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// AverageUtilities returns the running average of the playout utilities.
func (t *Trainer) AverageUtilities() [game.NumPlayers]float64 {
	return t.averageUtilities(int(t.iteration.Load()))
}

// TrainingStats summarises the run so far.
func (t *Trainer) TrainingStats() TrainingStats {
	t.mu.Lock()
	elapsed := t.elapsed
	t.mu.Unlock()
	return TrainingStats{
		TotalIterations: int(t.iteration.Load()),
		TotalTime:       elapsed,
		InfoSets:        t.regrets.Size(),
		FinalUtilities:  t.AverageUtilities(),
	}
}

// Regrets exposes the regret table.
func (t *Trainer) Regrets() *RegretTable { return t.regrets }

// InfoSetCount returns the number of distinct info sets discovered.
func (t *Trainer) InfoSetCount() int { return t.regrets.Size() }

func (t *Trainer) Rules() *game.Rules { return t.rules }

func (t *Trainer) TrainingConfig() TrainingConfig { return t.cfg }

func (t *Trainer) Iteration() int64 { return t.iteration.Load() }

// Seed returns the seed in use, which differs from the configured one when
// that was zero.
func (t *Trainer) Seed() int64 { return t.seed }

// SetTotalIterations extends or shortens the run, which is useful when
// resuming from a checkpoint.
func (t *Trainer) SetTotalIterations(n int) error {
	current := int(t.iteration.Load())
	if n < current {
		return fmt.Errorf("total iterations %d less than completed %d", n, current)
	}
	t.cfg.Iterations = n
	return nil
}

func (t *Trainer) SetProgressEvery(n int) {
	if n < 0 {
		n = 0
	}
	t.cfg.ProgressEvery = n
}

// Reset discards all learned state and restarts the random streams from the
// trainer's seed.
func (t *Trainer) Reset() {
	t.regrets.Clear()
	t.iteration.Store(0)
	t.mu.Lock()
	t.utilTotals = [game.NumPlayers]float64{}
	t.stats = TraversalStats{}
	t.elapsed = 0
	t.mu.Unlock()
	t.reseed(t.seed)
}
