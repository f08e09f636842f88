package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"github.com/lox/aofsolver/internal/config"
	"github.com/lox/aofsolver/internal/game"
	"github.com/lox/aofsolver/sdk/solver"
	"github.com/lox/aofsolver/sdk/solver/strategy"
)

// TrainCmd flags override the config file. Zero values leave the file (or
// default) setting in place.
type TrainCmd struct {
	SmallBlind      float64       `help:"small blind" env:"AOF_SMALL_BLIND"`
	BigBlind        float64       `help:"big blind" env:"AOF_BIG_BLIND"`
	StacksBB        []float64     `name:"stacks-bb" help:"starting stacks in big blinds, one value or one per seat" env:"AOF_STACKS_BB"`
	NoFees          bool          `help:"ignore the stakes fee schedule"`
	Iterations      int           `short:"n" help:"number of MCCFR iterations" env:"AOF_ITERATIONS"`
	Seed            int64         `help:"random seed; 0 uses a time seed" env:"AOF_SEED"`
	Workers         int           `help:"parallel self-play workers" env:"AOF_WORKERS"`
	SyncEvery       int           `help:"iterations per worker between merges"`
	ProgressEvery   int           `help:"report progress every N iterations (0 => iterations/100)"`
	Out             string        `short:"o" help:"output directory" type:"path" env:"AOF_OUT"`
	Prefix          string        `help:"output file name prefix"`
	Format          []string      `help:"strategy formats to write (text, binary, sqlite)"`
	Checkpoint      string        `help:"path for periodic checkpoints" type:"path"`
	CheckpointEvery int           `help:"checkpoint interval in iterations (0 disables)"`
	Resume          string        `help:"resume training from a checkpoint file" type:"path"`
	WarmStart       string        `help:"seed regrets from a saved strategy" type:"path"`
	LogInterval     time.Duration `help:"how often to log the convergence summary"`
}

// trainPlan is the merged result of config file and flags.
type trainPlan struct {
	SmallBlind      float64
	BigBlind        float64
	StacksBB        []float64
	Fees            *game.Fees
	Training        solver.TrainingConfig
	Dir             string
	Prefix          string
	Formats         []strategy.Format
	Checkpoint      string
	CheckpointEvery int
	LogInterval     time.Duration
}

func (cmd *TrainCmd) plan(file *config.File, logger zerolog.Logger) (trainPlan, error) {
	p := trainPlan{
		SmallBlind: pick(cmd.SmallBlind, file.Table.SmallBlind),
		BigBlind:   pick(cmd.BigBlind, file.Table.BigBlind),
		StacksBB:   file.Table.StacksBB,
		Training: solver.TrainingConfig{
			Iterations:    pick(cmd.Iterations, file.Training.Iterations),
			Seed:          pick(cmd.Seed, file.Training.Seed),
			Workers:       pick(cmd.Workers, file.Training.Workers),
			SyncEvery:     pick(cmd.SyncEvery, file.Training.SyncEvery),
			ProgressEvery: pick(cmd.ProgressEvery, file.Training.ProgressEvery),
			FeedCapacity:  file.Training.FeedCapacity,
		},
		Dir:             pick(cmd.Out, file.Output.Dir),
		Prefix:          pick(cmd.Prefix, file.Output.Prefix),
		Checkpoint:      pick(cmd.Checkpoint, file.Output.Checkpoint),
		CheckpointEvery: pick(cmd.CheckpointEvery, file.Output.CheckpointEvery),
	}
	if len(cmd.StacksBB) > 0 {
		p.StacksBB = cmd.StacksBB
	}
	if len(p.StacksBB) == 1 {
		p.StacksBB = []float64{p.StacksBB[0], p.StacksBB[0], p.StacksBB[0], p.StacksBB[0]}
	}

	formats := file.Output.Formats
	if len(cmd.Format) > 0 {
		formats = cmd.Format
	}
	for _, f := range formats {
		switch format := strategy.Format(f); format {
		case strategy.FormatText, strategy.FormatBinary, strategy.FormatSQLite:
			p.Formats = append(p.Formats, format)
		default:
			return p, fmt.Errorf("unknown strategy format %q", f)
		}
	}

	interval := cmd.LogInterval
	if interval == 0 {
		d, err := time.ParseDuration(file.Log.Interval)
		if err != nil {
			return p, fmt.Errorf("log interval: %w", err)
		}
		interval = d
	}
	if interval <= 0 {
		return p, fmt.Errorf("log interval must be positive, got %s", interval)
	}
	p.LogInterval = interval

	if !cmd.NoFees && (file.Table.Rake != nil || file.Table.JackpotFee != nil || file.Table.JackpotPayoutPct != nil) {
		fees, err := game.Stakes(p.SmallBlind, p.BigBlind)
		if err != nil {
			logger.Warn().Err(err).Msg("no fee schedule for these blinds, unset fees default to zero")
		}
		if file.Table.Rake != nil {
			fees.Rake = *file.Table.Rake
		}
		if file.Table.JackpotFee != nil {
			fees.JackpotFee = *file.Table.JackpotFee
		}
		if file.Table.JackpotPayoutPct != nil {
			fees.JackpotPayoutPct = *file.Table.JackpotPayoutPct
		}
		p.Fees = &fees
	}
	if cmd.NoFees {
		p.Fees = &game.Fees{}
	}
	return p, p.Training.Validate()
}

func pick[T comparable](flag, fallback T) T {
	var zero T
	if flag != zero {
		return flag
	}
	return fallback
}

// rules builds the table, looking up fees from the stakes schedule unless
// the plan fixes them. Unknown stakes train without fees.
func (p trainPlan) rules(logger zerolog.Logger) (*game.Rules, error) {
	var fees game.Fees
	switch {
	case p.Fees != nil:
		fees = *p.Fees
	default:
		f, err := game.Stakes(p.SmallBlind, p.BigBlind)
		if err != nil {
			logger.Warn().Err(err).Msg("no fee schedule for these blinds, training without fees")
		}
		fees = f
	}
	return game.NewRules(p.SmallBlind, p.BigBlind,
		game.WithStacksBB(p.StacksBB...),
		game.WithFees(fees),
		game.WithLogger(logger))
}

func (cmd *TrainCmd) Run(g *Globals) error {
	logger := g.Logger
	plan, err := cmd.plan(g.File, logger)
	if err != nil {
		return err
	}

	feed := solver.NewFeed(max(1, plan.Training.FeedCapacity))
	opts := []solver.Option{solver.WithLogger(logger), solver.WithFeed(feed)}

	var trainer *solver.Trainer
	if cmd.Resume != "" {
		trainer, err = solver.LoadTrainerFromCheckpoint(cmd.Resume, opts...)
		if err != nil {
			return fmt.Errorf("load checkpoint: %w", err)
		}
		if cmd.Iterations > 0 {
			if err := trainer.SetTotalIterations(cmd.Iterations); err != nil {
				return err
			}
		}
		if cmd.ProgressEvery > 0 {
			trainer.SetProgressEvery(cmd.ProgressEvery)
		}
		logger.Info().
			Str("checkpoint", cmd.Resume).
			Str("resume_iteration", humanize.Comma(trainer.Iteration())).
			Str("iterations", humanize.Comma(int64(trainer.TrainingConfig().Iterations))).
			Msg("resuming training run")
	} else {
		rules, err := plan.rules(logger)
		if err != nil {
			return err
		}
		trainer, err = solver.NewTrainer(rules, plan.Training, opts...)
		if err != nil {
			return err
		}
		if cmd.WarmStart != "" {
			warmStart(g.Context, trainer, cmd.WarmStart, logger)
		}
		logger.Info().
			Float64("small_blind", rules.SmallBlind()).
			Float64("big_blind", rules.BigBlind()).
			Floats64("stacks", plan.StacksBB).
			Interface("fees", rules.Fees()).
			Str("iterations", humanize.Comma(int64(plan.Training.Iterations))).
			Int("workers", plan.Training.Workers).
			Int64("seed", trainer.Seed()).
			Msg("starting training run")
	}
	if plan.Checkpoint != "" && plan.CheckpointEvery > 0 {
		trainer.EnableCheckpoints(plan.Checkpoint, plan.CheckpointEvery)
	}

	var bar *progressbar.ProgressBar
	if !g.Quiet {
		bar = progressbar.NewOptions64(int64(trainer.TrainingConfig().Iterations),
			progressbar.OptionSetDescription("training"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
		_ = bar.Set64(trainer.Iteration())
	}

	watchCtx, stopWatch := context.WithCancel(g.Context)
	watched := make(chan struct{})
	go func() {
		defer close(watched)
		watchFeed(watchCtx, feed, bar, plan.LogInterval, logger)
	}()

	runErr := trainer.Run(g.Context, func(p solver.Progress) {
		logger.Debug().
			Int("iteration", p.Iteration).
			Int("info_sets", p.InfoSets).
			Int64("nodes", p.Stats.NodesVisited).
			Int("max_depth", p.Stats.MaxDepth).
			Dur("iter_time", p.Stats.IterationTime).
			Float64("mae", p.MeanAbsError).
			Msg("progress")
	})
	stopWatch()
	<-watched
	if bar != nil {
		_ = bar.Finish()
	}

	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled):
		logger.Warn().Int64("iteration", trainer.Iteration()).Msg("training interrupted, saving partial strategy")
	default:
		return runErr
	}

	stats := trainer.TrainingStats()
	logger.Info().
		Str("iterations", humanize.Comma(int64(stats.TotalIterations))).
		Str("info_sets", humanize.Comma(int64(stats.InfoSets))).
		Dur("duration", stats.TotalTime).
		Floats64("utilities", stats.FinalUtilities[:]).
		Int64("zero_sum_violations", trainer.Rules().ZeroSumViolations()).
		Msg("training completed")

	return saveOutputs(context.WithoutCancel(g.Context), trainer, plan, time.Now(), logger)
}

// warmStart seeds trainer from a saved strategy. A file that cannot be read
// or applied is logged and training starts from an empty table.
func warmStart(ctx context.Context, trainer *solver.Trainer, path string, logger zerolog.Logger) {
	profile, err := strategy.Load(ctx, path)
	if err == nil {
		err = trainer.WarmStart(profile)
	}
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("warm start failed, training from scratch")
		trainer.Reset()
		return
	}
	logger.Info().Str("path", path).Int("info_sets", profile.Len()).Msg("loaded warm start strategy")
}

// watchFeed drives the progress bar from feed notifications and logs the
// convergence summary every interval.
func watchFeed(ctx context.Context, feed *solver.Feed, bar *progressbar.ProgressBar, interval time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-feed.Notify():
			if latest, ok := feed.Latest(); ok && bar != nil {
				_ = bar.Set(latest.Iteration)
			}
		case <-ticker.C:
			sum := feed.Summary()
			if sum.Count == 0 {
				continue
			}
			logger.Info().
				Str("iteration", humanize.Comma(int64(sum.Latest.Iteration))).
				Float64("mae", sum.Latest.MeanAbsError).
				Float64("mae_mean", sum.MeanMAE).
				Float64("mae_stddev", sum.StdDevMAE).
				Float64("utility_sum", sum.Latest.UtilitySum).
				Int64("dropped", feed.Dropped()).
				Msg("convergence")
		}
	}
}

func saveOutputs(ctx context.Context, trainer *solver.Trainer, plan trainPlan, now time.Time, logger zerolog.Logger) error {
	profile := trainer.Profile()
	stats := trainer.TrainingStats()
	rules := trainer.Rules()
	visits := profile.Stats()

	var saved []string
	for _, format := range plan.Formats {
		path := filepath.Join(plan.Dir, strategy.TimestampedName(plan.Prefix, now, format))
		if err := strategy.Save(ctx, path, profile); err != nil {
			return fmt.Errorf("save %s strategy: %w", format, err)
		}
		saved = append(saved, path)

		size := ""
		if info, err := os.Stat(path); err == nil {
			size = humanize.Bytes(uint64(info.Size()))
		}
		logger.Info().Str("path", path).Str("format", string(format)).Str("size", size).Msg("strategy saved")
	}
	if len(saved) == 0 {
		return nil
	}

	// one manifest per run, named after the first strategy file
	m := strategy.NewManifest(now)
	m.StrategyFile = filepath.Base(saved[0])
	m.Iterations = stats.TotalIterations
	m.Seed = trainer.Seed()
	m.Workers = trainer.TrainingConfig().Workers
	m.InfoSets = stats.InfoSets
	m.Duration = stats.TotalTime.Round(time.Millisecond).String()
	stacks := rules.Stacks()
	m.Table = strategy.TableInfo{
		SmallBlind:       rules.SmallBlind(),
		BigBlind:         rules.BigBlind(),
		Stacks:           stacks[:],
		Rake:             rules.Fees().Rake,
		JackpotFee:       rules.Fees().JackpotFee,
		JackpotPayoutPct: rules.Fees().JackpotPayoutPct,
	}
	m.Utilities = stats.FinalUtilities[:]
	m.Visits = strategy.VisitStats{
		Total: visits.TotalVisits,
		Max:   visits.MaxVisits,
		Min:   visits.MinVisits,
		Mean:  visits.MeanVisits,
	}
	manifestPath := strategy.ManifestPath(saved[0])
	if err := strategy.WriteManifest(manifestPath, m); err != nil {
		return err
	}
	logger.Info().Str("path", manifestPath).Str("run_id", m.RunID).Msg("manifest saved")
	return nil
}
