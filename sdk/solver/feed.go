package solver

import (
	"math"
	"sync"
	"time"

	"github.com/lox/aofsolver/internal/game"
	"gonum.org/v1/gonum/stat"
)

// Sample is one progress observation handed to feed consumers.
type Sample struct {
	Iteration    int
	MeanAbsError float64
	UtilitySum   float64
	Utilities    [game.NumPlayers]float64
	Elapsed      time.Duration
}

// Feed is a bounded ring of progress samples. Publish never blocks: when the
// ring is full the oldest sample is overwritten. Latest always reflects the
// most recent sample even after the ring has been drained.
type Feed struct {
	mu      sync.Mutex
	buf     []Sample
	head    int
	size    int
	latest  Sample
	has     bool
	dropped int64
	notify  chan struct{}
}

// NewFeed returns a feed holding up to capacity samples. A capacity below
// one is treated as one.
func NewFeed(capacity int) *Feed {
	return &Feed{
		buf:    make([]Sample, max(1, capacity)),
		notify: make(chan struct{}, 1),
	}
}

// Publish appends s, evicting the oldest sample if the ring is full.
func (f *Feed) Publish(s Sample) {
	f.mu.Lock()
	if f.size == len(f.buf) {
		f.head = (f.head + 1) % len(f.buf)
		f.size--
		f.dropped++
	}
	f.buf[(f.head+f.size)%len(f.buf)] = s
	f.size++
	f.latest = s
	f.has = true
	f.mu.Unlock()

	select {
	case f.notify <- struct{}{}:
	default:
	}
}

// Notify returns a channel that receives a value after Publish. Signals
// coalesce, so a slow reader sees at most one pending notification.
func (f *Feed) Notify() <-chan struct{} {
	return f.notify
}

// Latest returns the most recently published sample.
func (f *Feed) Latest() (Sample, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest, f.has
}

// Drain removes and returns buffered samples, oldest first.
func (f *Feed) Drain() []Sample {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.snapshotLocked()
	f.head, f.size = 0, 0
	return out
}

// Samples returns buffered samples, oldest first, without removing them.
func (f *Feed) Samples() []Sample {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *Feed) snapshotLocked() []Sample {
	out := make([]Sample, f.size)
	for i := range out {
		out[i] = f.buf[(f.head+i)%len(f.buf)]
	}
	return out
}

// Dropped reports how many samples were evicted before being read.
func (f *Feed) Dropped() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dropped
}

// FeedSummary describes the buffered samples.
type FeedSummary struct {
	Count     int
	MeanMAE   float64
	StdDevMAE float64
	Latest    Sample
}

// Summary computes the mean and standard deviation of the buffered
// mean-absolute-error samples.
func (f *Feed) Summary() FeedSummary {
	samples := f.Samples()
	latest, _ := f.Latest()
	sum := FeedSummary{Count: len(samples), Latest: latest}
	if len(samples) == 0 {
		return sum
	}
	maes := make([]float64, len(samples))
	for i, s := range samples {
		maes[i] = s.MeanAbsError
	}
	if len(maes) == 1 {
		sum.MeanMAE = maes[0]
		return sum
	}
	sum.MeanMAE, sum.StdDevMAE = stat.MeanStdDev(maes, nil)
	return sum
}

// MeanAbsError is the average distance of the utilities from zero. In a
// symmetric game every seat's long-run utility should approach zero, so this
// serves as a rough convergence signal.
func MeanAbsError(utilities [game.NumPlayers]float64) float64 {
	total := 0.0
	for _, u := range utilities {
		total += math.Abs(u)
	}
	return total / float64(len(utilities))
}
