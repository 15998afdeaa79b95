// Package eventloop implements the frame-pacing event loop: a 60 Hz
// target, computing timeout = (16667 - elapsed_us)/1000 ms between
// renderer draws, only redrawing when output is pending. Consumes an
// external Source interface for key/text/PTY/resize events.
package eventloop

import (
	"time"

	"go.uber.org/zap"

	"github.com/inkterm/inkterm/internal/renderer"
)

// PollMode selects which condition an EventSource's file descriptor is
// polled for.
type PollMode int

const (
	PollIn PollMode = iota
	PollOut
	PollErr
)

// EventKind tags an Event's payload.
type EventKind int

const (
	EventKey EventKind = iota
	EventText
	EventPTYOutput
	EventResize
	EventQuit
)

// Event is the tagged union of external occurrences the loop reacts
// to: key input (keysym+modifiers), text input (UTF-8 bytes+modifiers),
// child PTY output bytes, resize, or quit.
type Event struct {
	Kind      EventKind
	Keysym    int
	Modifiers int
	Text      []byte
	Cols, Rows int
}

// Source is the event-source interface the loop polls each iteration.
type Source interface {
	FD() int
	Mode() PollMode
	EventGet(mode PollMode) (*Event, bool)
}

// FrameInterval is the 60 Hz target frame period (16.667 ms).
const FrameInterval = 16667 * time.Microsecond

// Loop drives renderer.Draw at a fixed frame pacing: it computes how
// much of the current frame interval remains and only issues a redraw
// once that budget is exhausted and output is actually pending.
type Loop struct {
	log      *zap.Logger
	source   Source
	renderer *renderer.Renderer

	pending bool
	done    bool

	// OnEvent is called for every non-quit event the loop receives,
	// before pacing decides whether to draw. Callers route key/text
	// events into the PTY, PTY-output bytes into the VT driver (which
	// mutates the Matrix the renderer drains), and resize events into
	// both the PTY and the renderer's backend-bounds setter.
	OnEvent func(Event)
}

// New builds a Loop around source and r. onEvent is stored as OnEvent.
func New(log *zap.Logger, source Source, r *renderer.Renderer, onEvent func(Event)) *Loop {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loop{log: log, source: source, renderer: r, OnEvent: onEvent}
}

// MarkPending flags that a draw is owed on the next iteration; called
// by callers (e.g. the VT driver wrapper) whenever a Matrix mutation
// happens outside the loop's own EventGet-triggered path.
func (l *Loop) MarkPending() { l.pending = true }

// Stop requests the loop exit after its current iteration; the done
// flag is only checked between frames.
func (l *Loop) Stop() { l.done = true }

// Run blocks, driving frames until Stop is called or a Quit event is
// received. Frames that saw an event call renderer.Draw with redraw
// false; the loop never forces a full redraw.
func (l *Loop) Run() {
	last := time.Now()
	for !l.done {
		frameStart := time.Now()

		if ev, ok := l.source.EventGet(l.source.Mode()); ok && ev != nil {
			if ev.Kind == EventQuit {
				return
			}
			l.pending = true
			if l.OnEvent != nil {
				l.OnEvent(*ev)
			}
		}

		elapsed := time.Since(frameStart)
		if elapsed < FrameInterval {
			time.Sleep(FrameInterval - elapsed)
		}

		if !l.pending {
			continue
		}

		now := time.Now()
		dtMs := int(now.Sub(last) / time.Millisecond)
		last = now
		l.renderer.Draw(false, dtMs)
		l.pending = false
	}
}

// Timeout computes the per-iteration wait, FrameInterval minus elapsed,
// clamped at zero: zero means draw now, a positive value is the time
// left to wait for events.
func Timeout(elapsed time.Duration) time.Duration {
	remaining := FrameInterval - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}
