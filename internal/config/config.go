// Package config loads the TOML + CLI configuration and hot-reloads
// the tunable rendering knobs: the RectangleMerger waste ratio, the
// renderer's overdue-detection thresholds, and the bright-on-bold
// flag. Geometry-affecting values (cols/rows, orientation) are
// deliberately excluded from hot-reload; they only take effect through
// the normal resize / set_orientation path on the next Draw call.
package config

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/inkterm/inkterm/internal/renderer"
)

// Display configures which Backend cmd/inkterm constructs.
type Display struct {
	Backend    string `toml:"backend"` // "emulation" | "hardware" | "tcell"
	Device     string `toml:"device"`
	BusyPath   string `toml:"busy_path"`
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	FontSize   int    `toml:"font_size"`
	Orientation int   `toml:"orientation"`
}

// Shell configures the child process ptyhost spawns.
type Shell struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// Tunables are the hot-reloadable rendering knobs.
type Tunables struct {
	WasteRatio           float64 `toml:"waste_ratio"`
	BrightOnBold         bool    `toml:"bright_on_bold"`
	RedrawTimeoutHighMs  int     `toml:"redraw_timeout_high_ms"`
	RedrawTimeoutLowMs   int     `toml:"redraw_timeout_low_ms"`
	CounterThresholdHigh int     `toml:"counter_threshold_high"`
	CounterThresholdLow  int     `toml:"counter_threshold_low"`
}

// DefaultTunables are the renderer's and merger's out-of-the-box
// values.
var DefaultTunables = Tunables{
	WasteRatio:           0.75,
	BrightOnBold:         true,
	RedrawTimeoutHighMs:  1000,
	RedrawTimeoutLowMs:   250,
	CounterThresholdHigh: 2000,
	CounterThresholdLow:  1000,
}

// Config is the full on-disk TOML document plus CLI overrides merged in
// field-by-field, matching cobra's manual-merge idiom (no viper appears
// anywhere in the pack).
type Config struct {
	ControlPath string   `toml:"control_path"`
	Display     Display  `toml:"display"`
	Shell       Shell    `toml:"shell"`
	Tunables    Tunables `toml:"tunables"`
}

// Default returns the configuration used when no TOML file is present.
func Default() Config {
	return Config{
		ControlPath: "~/.inkterm",
		Display: Display{
			Backend:  "emulation",
			Width:    800,
			Height:   600,
			FontSize: 16,
		},
		Shell: Shell{
			Command: "/bin/sh",
		},
		Tunables: DefaultTunables,
	}
}

// Load decodes path into cfg, starting from Default() so unset fields
// keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// Watcher hot-reloads Tunables from the TOML file at path using
// fsnotify, applying changes to a renderer.Renderer and a
// rectangle-merger waste ratio without touching geometry fields. Safe
// for concurrent use; the single *fsnotify.Watcher goroutine
// serializes all reload application.
type Watcher struct {
	mu   sync.Mutex
	path string
	log  *zap.Logger

	watcher *fsnotify.Watcher
	done    chan struct{}

	onChange func(Tunables)
}

// WatchTunables starts watching path for writes and calls onChange with
// the freshly decoded Tunables each time the file is rewritten. The
// returned Watcher must be closed with Close when no longer needed.
func WatchTunables(log *zap.Logger, path string, onChange func(Tunables)) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: new watcher: %w", err)
	}
	if path != "" {
		if err := w.Add(path); err != nil {
			w.Close()
			return nil, fmt.Errorf("config: watch %s: %w", path, err)
		}
	}
	cw := &Watcher{
		path:     path,
		log:      log,
		watcher:  w,
		done:     make(chan struct{}),
		onChange: onChange,
	}
	go cw.loop()
	return cw, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				w.log.Warn("config: reload failed, keeping previous tunables", zap.Error(err))
				continue
			}
			w.onChange(cfg.Tunables)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config: watcher error", zap.Error(err))
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher goroutine and releases the fsnotify handle.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

// Apply pushes t into r's thresholds, bright-on-bold flag and merger
// waste ratio (renderer.SetWasteRatio forwards into the renderer's own
// merger).
func Apply(r *renderer.Renderer, t Tunables) {
	r.SetThresholds(renderer.Thresholds{
		RedrawTimeoutHighMs:  t.RedrawTimeoutHighMs,
		RedrawTimeoutLowMs:   t.RedrawTimeoutLowMs,
		CounterThresholdHigh: t.CounterThresholdHigh,
		CounterThresholdLow:  t.CounterThresholdLow,
	})
	r.SetBrightOnBold(t.BrightOnBold)
	r.SetWasteRatio(t.WasteRatio)
}
