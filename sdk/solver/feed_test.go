package solver

import (
	"math"
	"testing"
	"time"
)

func TestFeedDropsOldest(t *testing.T) {
	f := NewFeed(3)
	for i := 1; i <= 5; i++ {
		f.Publish(Sample{Iteration: i, MeanAbsError: float64(i)})
	}

	got := f.Samples()
	if len(got) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(got))
	}
	for i, want := range []int{3, 4, 5} {
		if got[i].Iteration != want {
			t.Fatalf("sample %d iteration = %d, want %d", i, got[i].Iteration, want)
		}
	}
	if f.Dropped() != 2 {
		t.Fatalf("expected 2 dropped, got %d", f.Dropped())
	}

	drained := f.Drain()
	if len(drained) != 3 || len(f.Samples()) != 0 {
		t.Fatalf("drain left samples behind")
	}
	latest, ok := f.Latest()
	if !ok || latest.Iteration != 5 {
		t.Fatalf("latest = %+v, %v", latest, ok)
	}
}

func TestFeedNotifyCoalesces(t *testing.T) {
	f := NewFeed(4)
	f.Publish(Sample{Iteration: 1})
	f.Publish(Sample{Iteration: 2})

	select {
	case <-f.Notify():
	default:
		t.Fatalf("expected a pending notification")
	}
	select {
	case <-f.Notify():
		t.Fatalf("expected notifications to coalesce")
	default:
	}
}

func TestFeedSummary(t *testing.T) {
	f := NewFeed(0)
	if s := f.Summary(); s.Count != 0 {
		t.Fatalf("expected empty summary, got %+v", s)
	}
	f.Publish(Sample{Iteration: 1, MeanAbsError: 2})
	if s := f.Summary(); s.Count != 1 || s.MeanMAE != 2 || s.StdDevMAE != 0 {
		t.Fatalf("unexpected single summary %+v", s)
	}

	f = NewFeed(8)
	for _, v := range []float64{1, 2, 3, 4} {
		f.Publish(Sample{MeanAbsError: v, Elapsed: time.Second})
	}
	s := f.Summary()
	if s.Count != 4 || math.Abs(s.MeanMAE-2.5) > 1e-12 {
		t.Fatalf("unexpected summary %+v", s)
	}
	// sample standard deviation of 1..4
	if math.Abs(s.StdDevMAE-math.Sqrt(5.0/3.0)) > 1e-12 {
		t.Fatalf("std dev = %v", s.StdDevMAE)
	}
}

func TestMeanAbsError(t *testing.T) {
	if got := MeanAbsError([4]float64{1, -1, 2, -2}); got != 1.5 {
		t.Fatalf("mae = %v", got)
	}
}
