// Package config loads optional HCL training files.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// File is the root of a training file:
//
//	table {
//	  small_blind = 0.4
//	  big_blind   = 1.0
//	  stacks_bb   = [8, 8, 8, 8]
//	}
//
//	training {
//	  iterations = 2000000
//	  workers    = 4
//	}
//
//	output {
//	  dir     = "strategies"
//	  formats = ["text", "sqlite"]
//	}
type File struct {
	Table    *TableBlock    `hcl:"table,block"`
	Training *TrainingBlock `hcl:"training,block"`
	Output   *OutputBlock   `hcl:"output,block"`
	Log      *LogBlock      `hcl:"log,block"`
}

// TableBlock describes blinds, stacks and optional fee overrides. Fees left
// unset are taken from the stakes table.
type TableBlock struct {
	SmallBlind       float64   `hcl:"small_blind,optional"`
	BigBlind         float64   `hcl:"big_blind,optional"`
	StacksBB         []float64 `hcl:"stacks_bb,optional"`
	Rake             *float64  `hcl:"rake,optional"`
	JackpotFee       *float64  `hcl:"jackpot_fee,optional"`
	JackpotPayoutPct *float64  `hcl:"jackpot_payout_pct,optional"`
}

type TrainingBlock struct {
	Iterations    int   `hcl:"iterations,optional"`
	Seed          int64 `hcl:"seed,optional"`
	Workers       int   `hcl:"workers,optional"`
	SyncEvery     int   `hcl:"sync_every,optional"`
	ProgressEvery int   `hcl:"progress_every,optional"`
	FeedCapacity  int   `hcl:"feed_capacity,optional"`
}

type OutputBlock struct {
	Dir             string   `hcl:"dir,optional"`
	Prefix          string   `hcl:"prefix,optional"`
	Formats         []string `hcl:"formats,optional"`
	Checkpoint      string   `hcl:"checkpoint,optional"`
	CheckpointEvery int      `hcl:"checkpoint_every,optional"`
}

type LogBlock struct {
	Level    string `hcl:"level,optional"`
	Interval string `hcl:"interval,optional"`
}

// Default returns the values used when no file is given.
func Default() *File {
	return &File{
		Table: &TableBlock{
			SmallBlind: 0.4,
			BigBlind:   1.0,
			StacksBB:   []float64{8, 8, 8, 8},
		},
		Training: &TrainingBlock{
			Iterations:   1_000_000,
			Workers:      1,
			SyncEvery:    1000,
			FeedCapacity: 1024,
		},
		Output: &OutputBlock{
			Dir:     ".",
			Prefix:  "strategy",
			Formats: []string{"text"},
		},
		Log: &LogBlock{Level: "info", Interval: "30s"},
	}
}

// Load reads filename. A missing file yields the defaults.
func Load(filename string) (*File, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg File
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	cfg.applyDefaults()
	return &cfg, cfg.Validate()
}

func (f *File) applyDefaults() {
	def := Default()
	if f.Table == nil {
		f.Table = def.Table
	}
	if f.Table.SmallBlind == 0 {
		f.Table.SmallBlind = def.Table.SmallBlind
	}
	if f.Table.BigBlind == 0 {
		f.Table.BigBlind = def.Table.BigBlind
	}
	if len(f.Table.StacksBB) == 0 {
		f.Table.StacksBB = def.Table.StacksBB
	}

	if f.Training == nil {
		f.Training = def.Training
	}
	if f.Training.Iterations == 0 {
		f.Training.Iterations = def.Training.Iterations
	}
	if f.Training.Workers == 0 {
		f.Training.Workers = def.Training.Workers
	}
	if f.Training.SyncEvery == 0 {
		f.Training.SyncEvery = def.Training.SyncEvery
	}
	if f.Training.FeedCapacity == 0 {
		f.Training.FeedCapacity = def.Training.FeedCapacity
	}

	if f.Output == nil {
		f.Output = def.Output
	}
	if f.Output.Dir == "" {
		f.Output.Dir = def.Output.Dir
	}
	if f.Output.Prefix == "" {
		f.Output.Prefix = def.Output.Prefix
	}
	if len(f.Output.Formats) == 0 {
		f.Output.Formats = def.Output.Formats
	}

	if f.Log == nil {
		f.Log = def.Log
	}
	if f.Log.Level == "" {
		f.Log.Level = def.Log.Level
	}
	if f.Log.Interval == "" {
		f.Log.Interval = def.Log.Interval
	}
}

// Validate reports the first invalid setting.
func (f *File) Validate() error {
	if f.Table.SmallBlind <= 0 {
		return errors.New("small blind must be > 0")
	}
	if f.Table.BigBlind <= f.Table.SmallBlind {
		return errors.New("big blind must be > small blind")
	}
	if n := len(f.Table.StacksBB); n != 1 && n != 4 {
		return fmt.Errorf("stacks_bb must have 1 or 4 entries, got %d", n)
	}
	if f.Training.Iterations <= 0 {
		return errors.New("iterations must be > 0")
	}
	if f.Training.Workers <= 0 {
		return errors.New("workers must be > 0")
	}
	if f.Training.Workers > 1 && f.Training.SyncEvery <= 0 {
		return errors.New("sync_every must be > 0 with multiple workers")
	}
	for _, format := range f.Output.Formats {
		switch format {
		case "text", "binary", "sqlite":
		default:
			return fmt.Errorf("unknown output format %q", format)
		}
	}
	if f.Output.CheckpointEvery < 0 {
		return errors.New("checkpoint_every cannot be negative")
	}
	interval, err := time.ParseDuration(f.Log.Interval)
	if err != nil {
		return fmt.Errorf("log interval: %w", err)
	}
	if interval <= 0 {
		return fmt.Errorf("log interval must be positive, got %q", f.Log.Interval)
	}
	return nil
}
