package main

import (
	"fmt"

	"github.com/lox/aofsolver/sdk/solver/strategy"
)

type ConvertCmd struct {
	In  string `arg:"" help:"source strategy file" type:"existingfile"`
	Out string `arg:"" help:"destination; the extension picks the format" type:"path"`
}

func (cmd *ConvertCmd) Run(g *Globals) error {
	if _, err := strategy.FormatFor(cmd.Out); err != nil {
		return err
	}
	profile, err := strategy.Load(g.Context, cmd.In)
	if err != nil {
		return fmt.Errorf("load %s: %w", cmd.In, err)
	}
	if err := strategy.Save(g.Context, cmd.Out, profile); err != nil {
		return fmt.Errorf("save %s: %w", cmd.Out, err)
	}
	g.Logger.Info().Str("from", cmd.In).Str("to", cmd.Out).Int("info_sets", profile.Len()).Msg("strategy converted")
	return nil
}
