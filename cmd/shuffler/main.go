package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/five82/shuffler/internal/app"
	"github.com/five82/shuffler/internal/maintain"
)

type Params struct {
	Host        string   `short:"H" optional:"true" help:"MPD host, optionally as password@host. Defaults to $MPD_HOST or localhost."`
	Port        int      `short:"p" optional:"true" help:"MPD port. Defaults to $MPD_PORT or 6600." default:"0"`
	File        string   `short:"f" optional:"true" help:"Shuffle the URIs listed in this file instead of the MPD database. Use - for stdin."`
	NoCheck     bool     `short:"n" optional:"true" help:"Do not look up --file URIs in MPD."`
	Exclude     []string `short:"e" optional:"true" help:"Exclude songs whose tag contains value, as tag=value (repeatable)."`
	GroupBy     []string `short:"g" optional:"true" help:"Shuffle groups of songs sharing these tags (repeatable)."`
	ByAlbum     bool     `optional:"true" help:"Shuffle whole albums, same as --group-by album --group-by date."`
	QueueBuffer int      `short:"q" optional:"true" help:"Songs to keep queued after the current one." default:"0"`
	Only        int      `short:"o" optional:"true" help:"Enqueue this many picks and exit." default:"0"`
	Tweak       []string `short:"t" optional:"true" help:"Tune behaviour, as name=value: window-size, suspend-timeout, play-on-startup, exit-on-db-update."`
	Config      string   `short:"c" optional:"true" help:"Config file path. Defaults to ~/.config/shuffler/config.toml."`
	Watch       bool     `short:"w" optional:"true" help:"Show a live status view. Logs go to the configured log file."`
	PrintAll    bool     `optional:"true" help:"Print every URI in the pool and exit."`
	LogLevel    string   `optional:"true" help:"Log level: trace, debug, info, warn or error."`
}

func main() {
	boa.CmdT[Params]{
		Use:   "shuffler",
		Short: "Keep MPD's queue topped up with random songs",
		ParamEnrich: boa.ParamEnricherCombine(
			boa.ParamEnricherBool,
			boa.ParamEnricherName,
		),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			os.Exit(run(params, cmd))
		},
	}.Run()
}

func run(params *Params, cmd *cobra.Command) int {
	opts, err := options(params, cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "shuffler: %v\n", err)
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err = app.Run(ctx, opts)
	switch {
	case errors.Is(err, maintain.ErrDatabaseUpdated):
		fmt.Println("Database updated, exiting.")
		return 0
	case err != nil:
		fmt.Fprintf(os.Stderr, "shuffler: %v\n", err)
		return 1
	}
	return 0
}

func options(params *Params, cmd *cobra.Command) (app.Options, error) {
	for name, v := range map[string]int{"port": params.Port, "queue-buffer": params.QueueBuffer, "only": params.Only} {
		if v < 0 {
			return app.Options{}, errors.Newf("--%s must not be negative (%d given)", name, v)
		}
	}

	opts := app.Options{
		ConfigPath: params.Config,
		Host:       params.Host,
		Port:       uint(params.Port),
		File:       params.File,
		NoCheck:    params.NoCheck,
		Excludes:   params.Exclude,
		GroupBy:    params.GroupBy,
		ByAlbum:    params.ByAlbum,
		Tweaks:     params.Tweak,
		LogLevel:   params.LogLevel,
		Only:       uint(params.Only),
		PrintAll:   params.PrintAll,
		Watch:      params.Watch,
	}
	if cmd.Flags().Changed("queue-buffer") {
		buffer := uint(params.QueueBuffer)
		opts.QueueBuffer = &buffer
	}
	if opts.NoCheck && opts.File == "" {
		return app.Options{}, errors.New("--no-check only applies to --file")
	}
	return opts, nil
}
