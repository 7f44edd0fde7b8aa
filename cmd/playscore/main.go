// Command playscore plays a score file to a MIDI output port without a UI.
//
// Usage:
//
//	playscore [-port NAME] [-seek 2.5s] [-config FILE] [-log LEVEL] score.yaml
//	playscore -list
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register MIDI driver

	"github.com/llehouerou/scoreplay/internal/config"
	"github.com/llehouerou/scoreplay/internal/errmsg"
	"github.com/llehouerou/scoreplay/internal/logging"
	"github.com/llehouerou/scoreplay/internal/score"
	"github.com/llehouerou/scoreplay/internal/sequencer"
	"github.com/llehouerou/scoreplay/internal/synth"
)

func main() {
	port := flag.String("port", "", "MIDI output port (substring match), overrides config")
	seek := flag.Duration("seek", 0, "start playback at this position, e.g. 2.5s")
	list := flag.Bool("list", false, "list MIDI output ports and exit")
	configPath := flag.String("config", "", "config file (default: XDG config, then ./config.toml)")
	level := flag.String("log", "", "log level: debug, info, warn, error (overrides config)")
	flag.Parse()

	if *list {
		for _, name := range synth.OutPorts() {
			fmt.Println(name)
		}
		return
	}

	if err := run(*configPath, *port, *level, *seek, flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, port, level string, seek time.Duration, scorePath string) error {
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
	if level != "" {
		cfg.Log.Level = level
	}
	if scorePath == "" {
		scorePath = cfg.Score
	}
	if scorePath == "" {
		return errors.New("usage: playscore [flags] score.yaml")
	}

	logger, closeLog, err := logging.Setup(cfg.Log.File, cfg.LogLevel())
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpLogSetup, cfg.Log.File, err))
	}
	defer func() { _ = closeLog() }()

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if seek > 0 {
		// Applied when Play starts.
		sched.SkipTo(seek)
	}

	logger.Info("playing",
		slog.String("score", scorePath),
		slog.String("title", sc.Title),
		slog.Int("tracks", len(sc.Tracks)),
		slog.Duration("duration", sched.Duration()),
		slog.Duration("seek", seek),
	)

	err = sched.Play(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("interrupted")
		return nil
	case err != nil:
		return errors.New(errmsg.FormatWith(errmsg.OpPlaybackStart, sc.Title, err))
	}
	logger.Info("finished")
	return nil
}
