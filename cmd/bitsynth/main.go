package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"
	"github.com/valerio/go-bitsynth/bitsynth"
	"github.com/valerio/go-bitsynth/bitsynth/backend"
	"github.com/valerio/go-bitsynth/bitsynth/backend/headless"
	"github.com/valerio/go-bitsynth/bitsynth/backend/oto"
	"github.com/valerio/go-bitsynth/bitsynth/backend/sdl2"
	"github.com/valerio/go-bitsynth/bitsynth/display"
	"github.com/valerio/go-bitsynth/bitsynth/note"
	"github.com/valerio/go-bitsynth/bitsynth/render"
	"github.com/valerio/go-bitsynth/bitsynth/synth"
)

const defaultNoteFile = "mario_theme.txt"

func main() {
	app := newApp()

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running player", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "bitsynth"
	app.Description = "Plays 8-bit waveform music from a note file"
	app.Usage = "bitsynth [options] [note file]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "notes",
			Usage: "Path to the note file (default: " + defaultNoteFile + ")",
		},
		cli.StringFlag{
			Name:   "backend",
			Usage:  "Audio output: oto, sdl2 (requires -tags sdl2) or headless",
			Value:  "oto",
			EnvVar: "BITSYNTH_BACKEND",
		},
		cli.StringFlag{
			Name:   "pacing",
			Usage:  "Note timing: wall (real time) or samples (samples consumed by the device)",
			Value:  "wall",
			EnvVar: "BITSYNTH_PACING",
		},
		cli.IntFlag{
			Name:  "sample-rate",
			Usage: "Output sample rate in Hz",
			Value: synth.DefaultSampleRate,
		},
		cli.IntFlag{
			Name:  "buffer-samples",
			Usage: "Device buffer size in samples",
			Value: backend.DefaultBufferSamples,
		},
		cli.StringFlag{
			Name:  "wav",
			Usage: "Render the notes to this WAV file instead of playing them",
		},
		cli.BoolFlag{
			Name:  "display",
			Usage: "Show a terminal view of the current note",
		},
		cli.BoolFlag{
			Name:   "debug",
			Usage:  "Enable debug logging",
			EnvVar: "BITSYNTH_DEBUG",
		},
	}
	app.Action = runPlayer
	return app
}

func runPlayer(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("debug") {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	notesPath := c.String("notes")
	if notesPath == "" {
		if c.NArg() > 0 {
			notesPath = c.Args().Get(0)
		} else {
			notesPath = defaultNoteFile
		}
	}

	cfg := synth.DefaultConfig()
	cfg.SampleRate = c.Int("sample-rate")
	if err := cfg.Validate(); err != nil {
		return err
	}

	playlist, err := note.LoadFile(notesPath)
	if err != nil {
		slog.Error("Failed to load notes", "path", notesPath, "error", err)
	}
	if len(playlist) == 0 {
		return bitsynth.ErrEmptyPlaylist
	}
	slog.Info("Loaded notes", "path", notesPath, "notes", len(playlist), "duration", playlist.TotalDuration())

	if path := c.String("wav"); path != "" {
		return renderWAV(path, playlist, cfg)
	}

	device, err := newDevice(c.String("backend"))
	if err != nil {
		return err
	}

	pacing, err := bitsynth.ParsePacingMode(c.String("pacing"))
	if err != nil {
		return err
	}

	session := bitsynth.NewSession(device)
	session.Config = cfg
	session.BufferSamples = c.Int("buffer-samples")
	session.Pacing = pacing

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if c.Bool("display") {
		return playWithDisplay(ctx, session, playlist, cfg, logLevel)
	}

	err = session.Play(ctx, playlist)
	if errors.Is(err, context.Canceled) {
		slog.Info("Playback interrupted")
		return nil
	}
	return err
}

func newDevice(name string) (backend.Device, error) {
	switch name {
	case "oto":
		return oto.New(), nil
	case "sdl2":
		return sdl2.New(), nil
	case "headless":
		return headless.New(nil), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want oto, sdl2 or headless)", name)
	}
}

func playWithDisplay(ctx context.Context, session *bitsynth.Session, playlist note.Playlist, cfg synth.Config, logLevel slog.Level) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	view := display.New(nil, playlist, cfg, logLevel)
	if err := view.Init(); err != nil {
		return err
	}
	session.Observer = view.Observe

	done := make(chan struct{})
	go func() {
		defer close(done)
		view.Run(ctx, cancel)
	}()

	err := session.Play(ctx, playlist)
	cancel()
	<-done
	view.Cleanup()

	// logs went to the terminal view; restore stderr so the final error is visible
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	if errors.Is(err, context.Canceled) {
		slog.Info("Playback interrupted")
		return nil
	}
	return err
}

func renderWAV(path string, playlist note.Playlist, cfg synth.Config) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create WAV file: %v", err)
	}
	defer file.Close()

	if err := render.WAV(file, playlist, cfg); err != nil {
		file.Close()
		if removeErr := os.Remove(path); removeErr != nil {
			slog.Warn("Failed to remove partial WAV file", "path", path, "error", removeErr)
		}
		return fmt.Errorf("failed to render %s: %w", path, err)
	}

	slog.Info("Rendered WAV file",
		"path", path,
		"samples", render.SampleCount(playlist, cfg),
		"duration", playlist.TotalDuration())
	return file.Close()
}
