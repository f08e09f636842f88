package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/lox/aofsolver/cmd/aof-solver/shared"
	"github.com/lox/aofsolver/internal/config"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Debug   bool             `help:"enable debug logging" env:"AOF_DEBUG"`
	Quiet   bool             `short:"q" help:"only log warnings and errors, no progress bar" env:"AOF_QUIET"`
	Config  string           `help:"HCL training file; missing files fall back to defaults" type:"path" default:"solver.hcl" env:"AOF_CONFIG"`

	Train   TrainCmd   `cmd:"" help:"Run MCCFR training and save the average strategy"`
	Inspect InspectCmd `cmd:"" help:"Summarise a saved strategy"`
	Convert ConvertCmd `cmd:"" help:"Convert a strategy between text, binary and sqlite"`
}

// Globals are bound into every command's Run method.
type Globals struct {
	Context context.Context
	Logger  zerolog.Logger
	File    *config.File
	Quiet   bool
}

func main() {
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("aof-solver"),
		kong.Description("Four-handed all-in-or-fold MCCFR trainer"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)

	file, err := config.Load(cli.Config)
	ctx.FatalIfErrorf(err)

	logger := shared.NewLogger(ctx.Stderr, shared.LogLevel(cli.Debug, cli.Quiet, file.Log.Level))
	sigCtx, stop := shared.SetupSignalHandler(logger)
	defer stop()

	err = ctx.Run(&Globals{
		Context: sigCtx,
		Logger:  logger,
		File:    file,
		Quiet:   cli.Quiet,
	})
	ctx.FatalIfErrorf(err)
}
