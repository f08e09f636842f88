package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/lox/aofsolver/internal/config"
	"github.com/lox/aofsolver/internal/fileutil"
	"github.com/lox/aofsolver/internal/game"
	"github.com/lox/aofsolver/internal/randutil"
	"github.com/lox/aofsolver/sdk/solver/runtime"
	"github.com/lox/aofsolver/sdk/solver/strategy"
)

type InspectCmd struct {
	Path      string  `arg:"" help:"strategy file (.txt, .bin, .db)" type:"existingfile"`
	Top       int     `help:"show the N most visited info sets" default:"10"`
	Find      string  `help:"show info sets whose key contains this text"`
	MinVisits int64   `help:"hide info sets with fewer visits"`
	Action    string  `help:"action analysed per seat and per hand pattern (FOLD or ALL_IN)" default:"ALL_IN"`
	Threshold float64 `help:"list hole classes whose mean frequency reaches this value" default:"0.5"`
	Play      int     `help:"play N hands of the strategy against itself and report returns"`
	Seed      int64   `help:"seed for --play; 0 uses a time seed"`
	Out       string  `short:"o" help:"write the report to this file instead of stdout" type:"path"`
}

func (cmd *InspectCmd) Run(g *Globals) error {
	var buf bytes.Buffer
	if err := cmd.report(g.Context, &buf, g.File, g.Logger); err != nil {
		return err
	}
	if cmd.Out != "" {
		if err := fileutil.WriteFileAtomic(cmd.Out, buf.Bytes(), 0o644); err != nil {
			return err
		}
		g.Logger.Info().Str("path", cmd.Out).Str("size", humanize.Bytes(uint64(buf.Len()))).Msg("report saved")
		return nil
	}
	_, err := buf.WriteTo(os.Stdout)
	return err
}

func (cmd *InspectCmd) report(ctx context.Context, w io.Writer, file *config.File, logger zerolog.Logger) error {
	action, ok := game.ParseAction(cmd.Action)
	if !ok || action == game.Deal {
		return fmt.Errorf("unknown action %q, want FOLD or ALL_IN", cmd.Action)
	}
	profile, err := strategy.Load(ctx, cmd.Path)
	if err != nil {
		return err
	}

	manifest, err := strategy.ReadManifest(strategy.ManifestPath(cmd.Path))
	hasManifest := err == nil
	if hasManifest {
		writeManifest(w, manifest)
	} else {
		logger.Debug().Err(err).Msg("no manifest next to strategy")
	}
	writeStats(w, profile)

	entries := profile.ByVisits(cmd.MinVisits)
	title := fmt.Sprintf("Top %d info sets by visits", cmd.Top)
	if cmd.Find != "" {
		entries = nil
		for _, e := range profile.Find(cmd.Find) {
			if e.Visits >= cmd.MinVisits {
				entries = append(entries, e)
			}
		}
		title = fmt.Sprintf("Info sets matching %q", cmd.Find)
	} else if cmd.Top > 0 && len(entries) > cmd.Top {
		entries = entries[:cmd.Top]
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	writeEntries(w, entries)

	writeSeatSummaries(w, summariseSeats(profile, action), action)
	writePatterns(w, summarisePatterns(profile, action), action, cmd.Threshold)

	if cmd.Play <= 0 {
		return nil
	}
	var rules *game.Rules
	if hasManifest {
		rules, err = manifestRules(manifest, logger)
	} else {
		var plan trainPlan
		if plan, err = (&TrainCmd{}).plan(file, logger); err == nil {
			rules, err = plan.rules(logger)
		}
	}
	if err != nil {
		return fmt.Errorf("table for self-play: %w", err)
	}
	res, err := playHands(ctx, rules, runtime.New(profile), cmd.Play, randutil.Seed(cmd.Seed))
	if err != nil {
		return fmt.Errorf("self-play: %w", err)
	}
	writePlayResult(w, res, rules.BigBlind())
	return nil
}

// manifestRules rebuilds the table a strategy was trained on.
func manifestRules(m strategy.Manifest, logger zerolog.Logger) (*game.Rules, error) {
	return game.NewRules(m.Table.SmallBlind, m.Table.BigBlind,
		game.WithStacks(m.Table.Stacks...),
		game.WithFees(game.Fees{
			Rake:             m.Table.Rake,
			JackpotFee:       m.Table.JackpotFee,
			JackpotPayoutPct: m.Table.JackpotPayoutPct,
		}),
		game.WithLogger(logger))
}

func writeManifest(w io.Writer, m strategy.Manifest) {
	fmt.Fprintf(w, "Run:            %s (%s)\n", m.RunID, humanize.Time(m.CreatedAt))
	fmt.Fprintf(w, "Blinds:         %g/%g\n", m.Table.SmallBlind, m.Table.BigBlind)
	fmt.Fprintf(w, "Training time:  %s with %d worker(s)\n", m.Duration, m.Workers)
}

func writeStats(w io.Writer, p *strategy.Profile) {
	s := p.Stats()
	fmt.Fprintf(w, "Iterations:     %s\n", humanize.Comma(int64(p.Iterations)))
	fmt.Fprintf(w, "Info sets:      %s\n", humanize.Comma(int64(s.InfoSets)))
	fmt.Fprintf(w, "Total visits:   %s\n", humanize.Comma(s.TotalVisits))
	fmt.Fprintf(w, "Visits/set:     %.1f ± %.1f (min %d, max %d)\n", s.MeanVisits, s.StdDev, s.MinVisits, s.MaxVisits)
}

func writeEntries(w io.Writer, entries []strategy.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	actions := []game.Action{game.Fold, game.AllIn}
	for _, e := range entries {
		parts := make([]string, len(e.Probabilities))
		for i, p := range e.Probabilities {
			label := strconv.Itoa(i)
			if len(e.Probabilities) == len(actions) {
				label = actions[i].String()
			}
			parts[i] = fmt.Sprintf("%s %.3f", label, p)
		}
		fmt.Fprintf(w, "  %-40s %10s  %s\n", e.Key, humanize.Comma(e.Visits), strings.Join(parts, "  "))
	}
}
