package solver

import (
	"errors"
)

// TrainingConfig aggregates parameters that control MCCFR execution.
type TrainingConfig struct {
	// Iterations is the total number of training iterations. Each iteration
	// deals one hand and walks it once per seat.
	Iterations int

	// Seed drives every deal and opponent sample. Zero picks a time-based seed.
	Seed int64

	// Workers is the number of independent self-play workers. One keeps the
	// training loop strictly sequential.
	Workers int

	// SyncEvery is how many iterations each worker runs between merges when
	// Workers > 1.
	SyncEvery int

	// ProgressEvery controls how often progress is reported, in iterations.
	// Zero reports roughly every percent of the run.
	ProgressEvery int

	// FeedCapacity bounds the number of progress samples kept for consumers.
	FeedCapacity int
}

// Validate ensures the training parameters are safe to use.
func (c TrainingConfig) Validate() error {
	if c.Iterations <= 0 {
		return errors.New("iterations must be > 0")
	}
	if c.Workers <= 0 {
		return errors.New("workers must be > 0")
	}
	if c.Workers > 1 && c.SyncEvery <= 0 {
		return errors.New("sync interval must be > 0 when running multiple workers")
	}
	if c.ProgressEvery < 0 {
		return errors.New("progress interval cannot be negative")
	}
	if c.FeedCapacity < 0 {
		return errors.New("feed capacity cannot be negative")
	}
	return nil
}

// progressInterval resolves ProgressEvery, defaulting to one percent of the run.
func (c TrainingConfig) progressInterval() int {
	if c.ProgressEvery > 0 {
		return c.ProgressEvery
	}
	return max(1, c.Iterations/100)
}

// DefaultTrainingConfig returns the configuration used by the CLI when no
// overrides are given.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		Iterations:   1_000_000,
		Seed:         0,
		Workers:      1,
		SyncEvery:    1000,
		FeedCapacity: 1024,
	}
}
