package display

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-bitsynth/bitsynth/note"
	"github.com/valerio/go-bitsynth/bitsynth/synth"
)

const (
	refreshInterval = time.Second / 30
	logCapacity     = 100

	scopeHeight   = 9
	minTermWidth  = 40
	minTermHeight = 22
)

// Display is a terminal "now playing" view: the current note, progress
// through the playlist, a scope of the active waveform and recent logs.
type Display struct {
	screen   tcell.Screen
	logs     *LogBuffer
	logLevel slog.Level
	cfg      synth.Config
	playlist note.Playlist
	total    time.Duration

	mu         sync.Mutex
	index      int
	current    note.Note
	playing    bool
	noteStart  time.Time
	elapsedOld time.Duration // duration of notes already finished
}

// New creates a display for playlist. screen may be nil to use the real
// terminal.
func New(screen tcell.Screen, playlist note.Playlist, cfg synth.Config, logLevel slog.Level) *Display {
	return &Display{
		screen:   screen,
		logs:     NewLogBuffer(logCapacity),
		logLevel: logLevel,
		cfg:      cfg,
		playlist: playlist,
		total:    playlist.TotalDuration(),
		index:    -1,
	}
}

// Init takes over the terminal and routes slog output to the log pane.
func (d *Display) Init() error {
	if d.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %v", err)
		}
		d.screen = screen
	}

	if err := d.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}

	slog.SetDefault(slog.New(NewLogBufferHandler(d.logs, d.logLevel)))

	d.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	d.screen.Clear()

	slog.Info("Terminal display initialized", "notes", len(d.playlist), "duration", d.total)
	return nil
}

// Observe records a note start. It matches sequencer.Observer.
func (d *Display) Observe(index int, n note.Note) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	if !d.playing {
		d.playing = true
	} else if d.index >= 0 && d.index < len(d.playlist) {
		d.elapsedOld += d.playlist[d.index].Length()
	}
	d.index = index
	d.current = n
	d.noteStart = now
}

// Run redraws the screen until ctx ends. A quit key (Esc, q, Ctrl-C) calls
// cancel, which stops playback.
func (d *Display) Run(ctx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		for d.screen.HasPendingEvent() {
			if d.handleEvent(d.screen.PollEvent()) {
				slog.Info("Playback stopped from terminal")
				cancel()
			}
		}

		d.Draw()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// handleEvent returns true when the event asks to quit.
func (d *Display) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyRune:
			return ev.Rune() == 'q'
		}
	case *tcell.EventResize:
		d.screen.Sync()
	}
	return false
}

// Cleanup restores the terminal.
func (d *Display) Cleanup() {
	if d.screen != nil {
		d.screen.Fini()
	}
}

// Logs exposes the buffer behind the log pane.
func (d *Display) Logs() *LogBuffer {
	return d.logs
}

// Draw renders one frame.
func (d *Display) Draw() {
	d.mu.Lock()
	index, current, playing := d.index, d.current, d.playing
	elapsed := time.Duration(0)
	if playing {
		elapsed = d.elapsedOld + min(time.Since(d.noteStart), current.Length())
	}
	d.mu.Unlock()

	termWidth, termHeight := d.screen.Size()
	d.screen.Clear()

	if termWidth < minTermWidth || termHeight < minTermHeight {
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		d.drawText(0, termHeight/2, termWidth, style, fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight))
		d.screen.Show()
		return
	}

	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	textStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)

	d.drawText(1, 0, termWidth, titleStyle, " bitsynth ")

	y := 2
	if playing {
		d.drawText(2, y, termWidth, textStyle, fmt.Sprintf("Note      %d/%d", index+1, len(d.playlist)))
		d.drawText(2, y+1, termWidth, textStyle, fmt.Sprintf("Waveform  %s", current.Waveform))
		d.drawText(2, y+2, termWidth, textStyle, fmt.Sprintf("Frequency %.2f Hz", current.Frequency))
		d.drawText(2, y+3, termWidth, textStyle, fmt.Sprintf("Volume    %d%%", int(current.Volume*100+0.5)))
	} else {
		d.drawText(2, y, termWidth, textStyle, fmt.Sprintf("Waiting   %d notes", len(d.playlist)))
	}
	d.drawText(2, y+4, termWidth, textStyle, fmt.Sprintf("Elapsed   %s / %s", formatClock(elapsed), formatClock(d.total)))
	d.drawProgress(2, y+5, termWidth-4, elapsed)

	scopeY := y + 7
	for x := 0; x < termWidth; x++ {
		d.screen.SetContent(x, scopeY-1, '─', nil, borderStyle)
	}
	if playing {
		d.drawScope(0, scopeY, termWidth, current)
	}

	logsY := scopeY + scopeHeight
	for x := 0; x < termWidth; x++ {
		d.screen.SetContent(x, logsY, '─', nil, borderStyle)
	}
	d.drawText(2, logsY, termWidth, titleStyle, " Logs ")
	d.drawLogs(logsY+1, termWidth, termHeight-1)

	d.drawText(0, termHeight-1, termWidth, borderStyle, " ESC/q=stop ")
	d.screen.Show()
}

func (d *Display) drawText(x, y, maxWidth int, style tcell.Style, text string) {
	for i, ch := range []rune(text) {
		if x+i >= maxWidth {
			return
		}
		d.screen.SetContent(x+i, y, ch, nil, style)
	}
}

func (d *Display) drawProgress(x, y, width int, elapsed time.Duration) {
	if width <= 2 {
		return
	}
	inner := width - 2
	filled := 0
	if d.total > 0 {
		filled = int(float64(inner) * float64(elapsed) / float64(d.total))
	}
	filled = min(max(filled, 0), inner)

	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	d.screen.SetContent(x, y, '[', nil, style)
	for i := 0; i < inner; i++ {
		ch := '·'
		if i < filled {
			ch = '█'
		}
		d.screen.SetContent(x+1+i, y, ch, nil, style)
	}
	d.screen.SetContent(x+width-1, y, ']', nil, style)
}

// drawScope plots two periods of the note's waveform scaled by its volume.
func (d *Display) drawScope(x, y, width int, n note.Note) {
	style := tcell.StyleDefault.Foreground(tcell.ColorAqua)
	peak := float64(d.cfg.Peak)
	for col := 0; col < width; col++ {
		phase := math.Mod(2*float64(col)/float64(width), 1)
		value := synth.Sample(n.Waveform, phase, d.cfg) * n.Volume
		row := ScopeRow(value, peak, scopeHeight)
		d.screen.SetContent(x+col, y+row, '•', nil, style)
	}
}

// ScopeRow maps an amplitude in [-peak, peak] to a row in [0, height),
// row 0 being the top.
func ScopeRow(value, peak float64, height int) int {
	if peak <= 0 || height <= 1 {
		return 0
	}
	norm := (peak - value) / (2 * peak) // 0 at +peak, 1 at -peak
	row := int(norm*float64(height-1) + 0.5)
	return min(max(row, 0), height-1)
}

func (d *Display) drawLogs(startY, width, endY int) {
	lines := endY - startY
	if lines <= 0 {
		return
	}

	entries := d.logs.Recent(lines)
	for i, entry := range entries {
		style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
		switch {
		case entry.Level >= slog.LevelError:
			style = style.Foreground(tcell.ColorRed)
		case entry.Level >= slog.LevelWarn:
			style = style.Foreground(tcell.ColorYellow)
		case entry.Level < slog.LevelInfo:
			style = style.Foreground(tcell.ColorGray)
		}
		// newest at the bottom
		d.drawText(1, endY-1-i, width, style, FormatLogEntry(entry))
	}
}

func formatClock(d time.Duration) string {
	d = d.Round(10 * time.Millisecond)
	minutes := int(d / time.Minute)
	seconds := d.Seconds() - float64(minutes*60)
	return fmt.Sprintf("%02d:%05.2f", minutes, seconds)
}
