package main

import (
	"io"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/inkterm/inkterm/internal/eventloop"
	"github.com/inkterm/inkterm/internal/ptyhost"
)

// channelSource is the eventloop.Source used for the emulation/hardware
// display backends: it multiplexes a PTY-output reader goroutine and a
// raw-stdin reader goroutine (keystrokes typed into the controlling
// terminal, forwarded verbatim to the child shell) into one buffered
// channel, giving a non-blocking EventGet without needing a real
// poll(2) loop (both readers already block in their own goroutine).
type channelSource struct {
	log    *zap.Logger
	events chan eventloop.Event
}

func newChannelSource(log *zap.Logger, host *ptyhost.Host, stdin io.Reader) *channelSource {
	s := &channelSource{log: log, events: make(chan eventloop.Event, 64)}
	go s.pumpPTY(host)
	if stdin != nil {
		go s.pumpStdin(stdin)
	}
	return s
}

func (s *channelSource) pumpPTY(host *ptyhost.Host) {
	buf := make([]byte, 4096)
	for {
		n, err := host.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			s.events <- eventloop.Event{Kind: eventloop.EventPTYOutput, Text: data}
		}
		if err != nil {
			s.events <- eventloop.Event{Kind: eventloop.EventQuit}
			return
		}
	}
}

func (s *channelSource) pumpStdin(stdin io.Reader) {
	buf := make([]byte, 256)
	for {
		n, err := stdin.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			s.events <- eventloop.Event{Kind: eventloop.EventText, Text: data}
		}
		if err != nil {
			return
		}
	}
}

func (s *channelSource) FD() int               { return -1 }
func (s *channelSource) Mode() eventloop.PollMode { return eventloop.PollIn }

func (s *channelSource) EventGet(eventloop.PollMode) (*eventloop.Event, bool) {
	select {
	case ev := <-s.events:
		return &ev, true
	default:
		return nil, false
	}
}

// tcellSource adapts a tcell screen's event queue (used by the tcell
// preview display backend) to eventloop.Source, translating key and
// resize events and leaving PTY output to be pumped separately.
// pollEventer is the narrow surface tcellpreview.Backend exposes
// (PollEvent only) — tcellSource doesn't need the rest of tcell.Screen.
type pollEventer interface {
	PollEvent() tcell.Event
}

type tcellSource struct {
	log       *zap.Logger
	screen    pollEventer
	ptyEvents chan eventloop.Event
}

func newTcellSource(log *zap.Logger, screen pollEventer, host *ptyhost.Host) *tcellSource {
	s := &tcellSource{log: log, screen: screen, ptyEvents: make(chan eventloop.Event, 64)}
	go s.pumpPTY(host)
	return s
}

func (s *tcellSource) pumpPTY(host *ptyhost.Host) {
	buf := make([]byte, 4096)
	for {
		n, err := host.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			s.ptyEvents <- eventloop.Event{Kind: eventloop.EventPTYOutput, Text: data}
		}
		if err != nil {
			s.ptyEvents <- eventloop.Event{Kind: eventloop.EventQuit}
			return
		}
	}
}

func (s *tcellSource) FD() int                  { return -1 }
func (s *tcellSource) Mode() eventloop.PollMode { return eventloop.PollIn }

func (s *tcellSource) EventGet(eventloop.PollMode) (*eventloop.Event, bool) {
	select {
	case ev := <-s.ptyEvents:
		return &ev, true
	default:
	}

	ev := s.screen.PollEvent()
	switch e := ev.(type) {
	case *tcell.EventKey:
		if e.Key() == tcell.KeyRune {
			return &eventloop.Event{Kind: eventloop.EventText, Text: []byte(string(e.Rune()))}, true
		}
		if b, ok := controlByte(e.Key()); ok {
			return &eventloop.Event{Kind: eventloop.EventText, Text: []byte{b}}, true
		}
		return nil, false
	case *tcell.EventResize:
		cols, rows := e.Size()
		return &eventloop.Event{Kind: eventloop.EventResize, Cols: cols, Rows: rows * 2}, true
	default:
		return nil, false
	}
}

// controlByte maps a handful of tcell control keys to their VT byte
// equivalents; anything not listed is dropped rather than guessed at.
func controlByte(k tcell.Key) (byte, bool) {
	switch k {
	case tcell.KeyEnter:
		return '\r', true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return 0x7f, true
	case tcell.KeyTab:
		return '\t', true
	case tcell.KeyEsc:
		return 0x1b, true
	case tcell.KeyCtrlC:
		return 0x03, true
	case tcell.KeyCtrlD:
		return 0x04, true
	default:
		return 0, false
	}
}
