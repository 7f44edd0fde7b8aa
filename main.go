package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register MIDI driver

	"github.com/llehouerou/scoreplay/internal/app"
	"github.com/llehouerou/scoreplay/internal/config"
	"github.com/llehouerou/scoreplay/internal/errmsg"
	"github.com/llehouerou/scoreplay/internal/icons"
	"github.com/llehouerou/scoreplay/internal/logging"
	"github.com/llehouerou/scoreplay/internal/score"
	"github.com/llehouerou/scoreplay/internal/sequencer"
	"github.com/llehouerou/scoreplay/internal/stderr"
	"github.com/llehouerou/scoreplay/internal/synth"
)

func main() {
	configPath := flag.String("config", "", "config file (default: XDG config, then ./config.toml)")
	port := flag.String("port", "", "MIDI output port (substring match), overrides config")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [score.yaml]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(*configPath, *port, flag.Arg(0)); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(configPath, port, scorePath string) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}
	if port != "" {
		cfg.MIDI.Port = port
	}
	if scorePath == "" {
		scorePath = cfg.Score
	}
	icons.Init(cfg.UI.Icons)
	if scorePath == "" {
		return errors.New("no score given and none configured")
	}

	// The TUI owns the terminal: without a log file, logs are dropped.
	logger := logging.Discard()
	if cfg.Log.File != "" {
		l, closeLog, err := logging.Setup(cfg.Log.File, cfg.LogLevel())
		if err != nil {
			return errors.New(errmsg.FormatWith(errmsg.OpLogSetup, cfg.Log.File, err))
		}
		defer func() { _ = closeLog() }()
		logger = l
	} else {
		slog.SetDefault(logger)
	}

	if err := stderr.Start(logger); err != nil {
		logger.Warn("stderr capture unavailable", "err", err)
	}
	defer stderr.Stop()

	sc, err := score.Load(scorePath)
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpScoreLoad, scorePath, err))
	}

	out, err := synth.OpenMIDI(cfg.MIDI.Port)
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpMIDIOpen, cfg.MIDI.Port, err))
	}
	defer func() {
		if err := out.Close(); err != nil {
			logger.Warn(errmsg.Format(errmsg.OpMIDIClose, err))
		}
	}()

	sched := sequencer.New(out, sc.Tracks,
		sequencer.WithSeekBuffer(cfg.SeekBuffer()),
		sequencer.WithLogger(logger),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := app.New(ctx, sched, sc, cfg.SeekStep(), out.Close)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
