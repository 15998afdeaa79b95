// Package ptyhost spawns the child shell behind a pseudo-terminal and
// exposes its output as a plain byte stream and its resize as a single
// call, so the event loop can treat it as one more pollable source.
package ptyhost

import (
	"os"
	"os/exec"

	"github.com/creack/pty"
	"go.uber.org/zap"
)

// Host owns one child process and its PTY master end.
type Host struct {
	log *zap.Logger

	cmd  *exec.Cmd
	ptmx *os.File
}

// Start launches shell (argv[0] plus args) attached to a new PTY sized
// cols x rows, with env appended to the current process environment.
func Start(log *zap.Logger, shell string, args []string, env []string, cols, rows int) (*Host, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cmd := exec.Command(shell, args...)
	cmd.Env = append(os.Environ(), env...)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return nil, err
	}
	return &Host{log: log, cmd: cmd, ptmx: ptmx}, nil
}

// Read satisfies io.Reader, returning raw child output bytes — the
// event loop feeds these straight into vtdriver.Driver.Write.
func (h *Host) Read(p []byte) (int, error) {
	return h.ptmx.Read(p)
}

// Write satisfies io.Writer, forwarding keyboard/text input bytes to
// the child's stdin.
func (h *Host) Write(p []byte) (int, error) {
	return h.ptmx.Write(p)
}

// Resize updates the PTY's window size, matching whatever geometry the
// renderer's cols/rows just settled on.
func (h *Host) Resize(cols, rows int) error {
	return pty.Setsize(h.ptmx, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
}

// Close closes the PTY master end, signals the child, and waits for
// it to exit. Errors are logged, not returned — shutdown must not fail
// partway through.
func (h *Host) Close() {
	if err := h.ptmx.Close(); err != nil {
		h.log.Warn("ptyhost: close pty failed", zap.Error(err))
	}
	if h.cmd.Process != nil {
		_ = h.cmd.Process.Kill()
	}
	if err := h.cmd.Wait(); err != nil {
		h.log.Debug("ptyhost: child exited", zap.Error(err))
	}
}
