package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/inkterm/inkterm/internal/config"
	"github.com/inkterm/inkterm/internal/displaybackend/tcellpreview"
	"github.com/inkterm/inkterm/internal/epaper"
	"github.com/inkterm/inkterm/internal/eventloop"
	"github.com/inkterm/inkterm/internal/gfxcolor"
	"github.com/inkterm/inkterm/internal/glyph"
	"github.com/inkterm/inkterm/internal/httpapi"
	"github.com/inkterm/inkterm/internal/logging"
	"github.com/inkterm/inkterm/internal/matrix"
	"github.com/inkterm/inkterm/internal/memdisplay"
	"github.com/inkterm/inkterm/internal/ptyhost"
	"github.com/inkterm/inkterm/internal/renderer"
	"github.com/inkterm/inkterm/internal/session"
	"github.com/inkterm/inkterm/internal/vtdriver"

	"go.uber.org/zap"
)

type runFlags struct {
	displayBackend string
	width, height  int
	fontSize       int
	orientation    int
	device         string
	busyPath       string
	shell          string
	httpAddr       string
	expose         string
	domain         string
	ngrokAuth      string
}

func newRunCmd(root *rootFlags) *cobra.Command {
	rf := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the terminal against a display backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMain(root, rf, cmd)
		},
	}
	f := cmd.Flags()
	f.StringVar(&rf.displayBackend, "display-backend", "", "emulation|hardware|tcell (overrides config)")
	f.IntVar(&rf.width, "width", 0, "display width in pixels (overrides config)")
	f.IntVar(&rf.height, "height", 0, "display height in pixels (overrides config)")
	f.IntVar(&rf.fontSize, "font-size", 0, "glyph point size (overrides config)")
	f.IntVar(&rf.orientation, "orientation", -1, "display orientation 0-3 (overrides config)")
	f.StringVar(&rf.device, "device", "", "hardware backend device path")
	f.StringVar(&rf.busyPath, "busy-path", "", "hardware backend busy-pin sysfs path")
	f.StringVar(&rf.shell, "shell", "", "child shell command (overrides config)")
	f.StringVar(&rf.httpAddr, "http-addr", "", "bind address for the debug HTTP server (empty disables it)")
	f.StringVar(&rf.expose, "expose", "none", "none|ngrok|tls remote exposure mode for the debug server")
	f.StringVar(&rf.domain, "domain", "", "domain for --expose=tls")
	f.StringVar(&rf.ngrokAuth, "ngrok-authtoken", "", "authtoken for --expose=ngrok")
	return cmd
}

func mergeRunFlags(cmd *cobra.Command, cfg *config.Config, rf *runFlags) {
	f := cmd.Flags()
	if f.Changed("display-backend") {
		cfg.Display.Backend = rf.displayBackend
	}
	if f.Changed("width") {
		cfg.Display.Width = rf.width
	}
	if f.Changed("height") {
		cfg.Display.Height = rf.height
	}
	if f.Changed("font-size") {
		cfg.Display.FontSize = rf.fontSize
	}
	if f.Changed("orientation") {
		cfg.Display.Orientation = rf.orientation
	}
	if f.Changed("device") {
		cfg.Display.Device = rf.device
	}
	if f.Changed("busy-path") {
		cfg.Display.BusyPath = rf.busyPath
	}
	if f.Changed("shell") {
		cfg.Shell.Command = rf.shell
	}
}

func runMain(root *rootFlags, rf *runFlags, cmd *cobra.Command) error {
	cfg, err := config.Load(root.configPath)
	if err != nil {
		return err
	}
	mergeRunFlags(cmd, &cfg, rf)

	log, err := logging.New(root.debug)
	if err != nil {
		return fmt.Errorf("inkterm: logger init: %w", err)
	}
	defer log.Sync()

	reg, err := session.NewRegistry(log, resolveControlPath(root, cfg))
	if err != nil {
		log.Fatal("inkterm: session registry init", zap.Error(err))
	}

	backend, tcellScreen, err := openDisplayBackend(log, &cfg)
	if err != nil {
		log.Fatal("inkterm: display backend init", zap.Error(err))
	}

	provider := glyph.NewBasicFontProvider()
	palette := gfxcolor.DefaultPalette()

	display := memdisplay.New(backend, log)
	mtx := matrix.New(0, 0)
	rnd := renderer.New(mtx, display, provider, palette, log)
	config.Apply(rnd, cfg.Tunables)
	rnd.SetFontSize(cfg.Display.FontSize)
	rnd.SetOrientation(cfg.Display.Orientation)
	rnd.SetBackendBounds(cfg.Display.Width, cfg.Display.Height)
	rnd.Draw(true, 0)

	var watcher *config.Watcher
	if root.configPath != "" {
		watcher, err = config.WatchTunables(log, root.configPath, func(t config.Tunables) {
			config.Apply(rnd, t)
		})
		if err != nil {
			log.Warn("inkterm: config hot-reload disabled", zap.Error(err))
		} else {
			defer watcher.Close()
		}
	}

	stats := rnd.Stats()
	cols, rows := stats.Cols, stats.Rows
	if cols == 0 || rows == 0 {
		cols, rows = 80, 24
	}

	shellCmd, shellArgs := cfg.Shell.Command, cfg.Shell.Args
	host, err := ptyhost.Start(log, shellCmd, shellArgs, nil, cols, rows)
	if err != nil {
		log.Fatal("inkterm: pty host start", zap.Error(err))
	}
	defer host.Close()

	rec, err := reg.Create(shellCmd, shellArgs, cfg.Display.Backend, cols, rows)
	if err != nil {
		log.Warn("inkterm: session registry create failed", zap.Error(err))
	}

	driver := vtdriver.New(mtx)

	var source eventloop.Source
	var restoreStdin func()
	if tcellScreen != nil {
		source = newTcellSource(log, tcellScreen, host)
	} else {
		restoreStdin = enableStdinRaw(log)
		source = newChannelSource(log, host, os.Stdin)
	}
	if restoreStdin != nil {
		defer restoreStdin()
	}

	loop := eventloop.New(log, source, rnd, func(ev eventloop.Event) {
		switch ev.Kind {
		case eventloop.EventPTYOutput:
			driver.Write(ev.Text)
		case eventloop.EventText:
			host.Write(ev.Text)
		case eventloop.EventResize:
			host.Resize(ev.Cols, ev.Rows)
		}
	})

	if rf.httpAddr != "" {
		httpSrv := httpapi.New(log, singleSessionRegistry{rec: rec, rnd: rnd, display: display})
		opts := httpapi.ServeOptions{
			Mode:      httpapi.ExposeMode(rf.expose),
			Addr:      rf.httpAddr,
			Domain:    rf.domain,
			NgrokAuth: rf.ngrokAuth,
		}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := httpapi.Serve(ctx, log, httpSrv, opts); err != nil {
				log.Warn("inkterm: debug http server stopped", zap.Error(err))
			}
		}()
	}

	loop.Run()
	if rec != nil {
		_ = reg.Remove(rec.ID)
	}
	return nil
}

// openDisplayBackend constructs the epaper.Backend selected by
// cfg.Display.Backend. For "tcell" it also returns the backend itself
// (which exposes PollEvent) so run() can wire key/resize events from
// it; for the other two backends the second return is nil.
func openDisplayBackend(log *zap.Logger, cfg *config.Config) (epaper.Backend, pollEventer, error) {
	switch cfg.Display.Backend {
	case "hardware":
		b, err := epaper.OpenHardware(log, cfg.Display.Device, cfg.Display.BusyPath, 5*time.Second)
		return b, nil, err
	case "tcell":
		b, err := tcellpreview.Open(log)
		if err != nil {
			return nil, nil, err
		}
		return b, b, nil
	default:
		return epaper.NewEmulationBackend(log, cfg.Display.Width, cfg.Display.Height), nil, nil
	}
}

func enableStdinRaw(log *zap.Logger) func() {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		log.Warn("inkterm: failed to set stdin raw mode", zap.Error(err))
		return nil
	}
	return func() {
		if err := term.Restore(fd, state); err != nil {
			log.Warn("inkterm: failed to restore stdin mode", zap.Error(err))
		}
	}
}

// singleSessionRegistry adapts one running session into httpapi.Registry
// (SPEC_FULL.md's session registry is bookkeeping, not a multi-display
// windowing system — one process still drives exactly one display
// backend instance).
type singleSessionRegistry struct {
	rec     *session.Record
	rnd     *renderer.Renderer
	display *memdisplay.Display
}

func (s singleSessionRegistry) List() []httpapi.SessionView {
	if s.rec == nil {
		return nil
	}
	return []httpapi.SessionView{{Record: s.rec, Render: s.rnd, Display: s.display}}
}

func (s singleSessionRegistry) Get(id string) (httpapi.SessionView, bool) {
	if s.rec == nil || s.rec.ID != id {
		return httpapi.SessionView{}, false
	}
	return httpapi.SessionView{Record: s.rec, Render: s.rnd, Display: s.display}, true
}
