package epaper

import (
	"fmt"
	"os"
	"time"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/inkterm/inkterm/internal/geometry"
	"github.com/inkterm/inkterm/internal/gfxcolor"
)

// Vendor IOCTL request codes and busy-pin semantics differ per panel
// controller; these are placeholders for the one command sequence every
// vendor driver shares structurally: a geometry query, then a
// waveform-mode write, then a busy-wait for completion.
const (
	ioctlGetPanelInfo = 0x4510
	ioctlSubmitUpdate = 0x4511
)

// panelInfo mirrors the fixed-size struct a vendor ioctl(2) call would
// fill in: width/height in pixels.
type panelInfo struct {
	Width  uint32
	Height uint32
}

// updateRequest mirrors the fixed-size struct passed to the submit
// ioctl: the waveform mode and the rectangle to update, in display
// pixel coordinates.
type updateRequest struct {
	Output   uint32
	Mask     uint32
	X0, Y0   int32
	X1, Y1   int32
}

// HardwareBackend drives a real e-paper panel through a vendor
// framebuffer device node plus a busy-line sysfs attribute, following
// the same reset/send-command/busy-wait shape as a typical SPI e-paper
// driver's update routine, translated to an ioctl-based kernel
// interface instead of bit-banged SPI.
type HardwareBackend struct {
	log      *zap.Logger
	fb       *os.File
	busyPath string
	timeout  time.Duration
}

// OpenHardware opens devicePath (typically /dev/epaperN) and records
// busyPath (a sysfs GPIO value file that reads "1" while the panel is
// mid-refresh). Failure here is one of the few fatal paths — callers
// should terminate the process with a diagnostic if this returns an
// error.
func OpenHardware(log *zap.Logger, devicePath, busyPath string, timeout time.Duration) (*HardwareBackend, error) {
	if log == nil {
		log = zap.NewNop()
	}
	f, err := os.OpenFile(devicePath, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("epaper: open %s: %w", devicePath, err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HardwareBackend{log: log, fb: f, busyPath: busyPath, timeout: timeout}, nil
}

// Close releases the device handle.
func (h *HardwareBackend) Close() error {
	return h.fb.Close()
}

// DoLock queries the panel's fixed geometry via ioctl.
func (h *HardwareBackend) DoLock() (geometry.Rect, error) {
	var info panelInfo
	if err := ioctl(h.fb.Fd(), ioctlGetPanelInfo, &info); err != nil {
		h.log.Warn("epaper: panel geometry query failed, treating as empty surface", zap.Error(err))
		return geometry.Invalid, nil
	}
	if info.Width == 0 || info.Height == 0 {
		return geometry.Invalid, nil
	}
	return geometry.NewRect(0, 0, int(info.Width)-1, int(info.Height)-1), nil
}

// DoUnlock submits each request to the panel and blocks on the busy
// line after every successful submit, overlapping or not, so requests
// reach the panel strictly in order.
func (h *HardwareBackend) DoUnlock(requests []Request, composite []gfxcolor.RGBA, stride int) error {
	for _, req := range requests {
		r := updateRequest{
			Output: uint32(req.Mode.Output),
			Mask:   uint32(req.Mode.Mask),
			X0:     int32(req.Rect.X0), Y0: int32(req.Rect.Y0),
			X1: int32(req.Rect.X1), Y1: int32(req.Rect.Y1),
		}
		if err := ioctl(h.fb.Fd(), ioctlSubmitUpdate, &r); err != nil {
			h.log.Warn("epaper: update submit failed, skipping rect", zap.Error(err))
			continue
		}
		if err := h.waitBusy(); err != nil {
			h.log.Warn("epaper: busy-wait timed out", zap.Error(err))
		}
	}
	return nil
}

// waitBusy polls the busy sysfs attribute until it reads "0" or the
// timeout elapses, mirroring a vendor driver's GPIO busy-edge wait.
func (h *HardwareBackend) waitBusy() error {
	if h.busyPath == "" {
		return nil
	}
	deadline := time.Now().Add(h.timeout)
	for time.Now().Before(deadline) {
		b, err := os.ReadFile(h.busyPath)
		if err != nil {
			return err
		}
		if len(b) > 0 && b[0] == '0' {
			return nil
		}
		time.Sleep(2 * time.Millisecond)
	}
	return fmt.Errorf("epaper: busy line did not clear within %s", h.timeout)
}

func ioctl(fd uintptr, req uintptr, arg any) error {
	var ptr unsafe.Pointer
	switch v := arg.(type) {
	case *panelInfo:
		ptr = unsafe.Pointer(v)
	case *updateRequest:
		ptr = unsafe.Pointer(v)
	}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(ptr))
	if errno != 0 {
		return errno
	}
	return nil
}
