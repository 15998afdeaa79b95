// Package vtdriver consumes raw PTY bytes and drives a Matrix through
// move_*/set/write/fill/scroll/set_alternative_buffer_active as it
// parses the VT byte stream one byte at a time through a small state
// machine (normal/escape/CSI/OSC/DCS). The Matrix never reports back
// to it.
package vtdriver

import (
	"unicode/utf8"

	"github.com/inkterm/inkterm/internal/gfxcolor"
	"github.com/inkterm/inkterm/internal/geometry"
	"github.com/inkterm/inkterm/internal/matrix"
	"github.com/inkterm/inkterm/internal/style"
)

type parseState int

const (
	stateNormal parseState = iota
	stateEscape
	stateCSI
	stateOSC
	stateDCS
)

// Driver is the VT sequence parser collaborator. It owns no state the
// Matrix doesn't already own except parse position and current SGR
// style; everything visible lives in the Matrix.
type Driver struct {
	mtx *matrix.Matrix

	state  parseState
	params []int
	inter  []byte

	utf8Buf [4]byte
	utf8Len int
	utf8Need int

	cur style.Style

	savedPos geometry.Point
}

// New builds a Driver bound to mtx. mtx must already be sized.
func New(mtx *matrix.Matrix) *Driver {
	return &Driver{mtx: mtx, cur: style.Default}
}

// Write feeds raw PTY output bytes through the parser. Matches
// io.Writer so a Driver can sit directly downstream of a PTY read
// loop.
func (d *Driver) Write(p []byte) (int, error) {
	for _, b := range p {
		d.processByte(b)
	}
	return len(p), nil
}

func (d *Driver) processByte(b byte) {
	switch d.state {
	case stateNormal:
		d.processNormal(b)
	case stateEscape:
		d.processEscape(b)
	case stateCSI:
		d.processCSI(b)
	case stateOSC:
		d.processOSC(b)
	case stateDCS:
		d.processDCS(b)
	}
}

func (d *Driver) processNormal(b byte) {
	if d.utf8Need > 0 {
		d.utf8Buf[d.utf8Len] = b
		d.utf8Len++
		if d.utf8Len < d.utf8Need {
			return
		}
		r, _ := utf8.DecodeRune(d.utf8Buf[:d.utf8Len])
		d.utf8Need = 0
		d.utf8Len = 0
		d.handlePrint(r)
		return
	}

	switch {
	case b == 0x1B:
		d.state = stateEscape
	case b == '\n' || b == 0x0B || b == 0x0C:
		d.handleExecute(b)
	case b == '\r' || b == '\b' || b == '\t':
		d.handleExecute(b)
	case b == 0x07 || b == 0x00:
		// bell / nul: ignored, no Matrix operation
	case b < 0x20:
		// other C0 controls: ignored
	case b < 0x80:
		d.handlePrint(rune(b))
	default:
		n := utf8SeqLen(b)
		if n <= 1 {
			d.handlePrint(utf8.RuneError)
			return
		}
		d.utf8Buf[0] = b
		d.utf8Len = 1
		d.utf8Need = n
	}
}

func utf8SeqLen(b byte) int {
	switch {
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	default:
		return 1
	}
}

func (d *Driver) processEscape(b byte) {
	d.state = stateNormal
	switch b {
	case '[':
		d.state = stateCSI
		d.params = d.params[:0]
		d.inter = d.inter[:0]
	case ']':
		d.state = stateOSC
	case 'P':
		d.state = stateDCS
	case 'D': // IND
		d.mtx.MoveRel(1, 0, false)
	case 'M': // RI
		d.mtx.MoveRel(-1, 0, false)
	case 'E': // NEL
		d.mtx.MoveRel(1, 0, false)
		col := 1
		row := d.mtx.Pos().Y
		d.mtx.MoveAbs(row, col)
	case '7': // DECSC
		d.savedPos = d.mtx.Pos()
	case '8': // DECRC
		d.mtx.MoveAbs(d.savedPos.Y, d.savedPos.X)
	case 'c': // RIS
		d.mtx.Reset()
		d.cur = style.Default
	}
}

func (d *Driver) processCSI(b byte) {
	switch {
	case b >= '0' && b <= '9':
		if len(d.params) == 0 {
			d.params = append(d.params, 0)
		}
		d.params[len(d.params)-1] = d.params[len(d.params)-1]*10 + int(b-'0')
	case b == ';':
		d.params = append(d.params, 0)
	case b >= 0x3C && b <= 0x3F:
		// private-parameter prefix (<=>?), e.g. the '?' before 1049h
		d.inter = append(d.inter, b)
	case b >= 0x20 && b <= 0x2F:
		d.inter = append(d.inter, b)
	case b >= 0x40 && b <= 0x7E:
		d.handleCSI(d.params, d.inter, b)
		d.state = stateNormal
	default:
		d.state = stateNormal
	}
}

func (d *Driver) processOSC(b byte) {
	if b == 0x07 || b == 0x9C {
		d.state = stateNormal
	} else if b == 0x1B {
		d.state = stateEscape
	}
}

func (d *Driver) processDCS(b byte) {
	if b == 0x9C {
		d.state = stateNormal
	} else if b == 0x1B {
		d.state = stateEscape
	}
}

func (d *Driver) param(params []int, i, def int) int {
	if i < len(params) && params[i] > 0 {
		return params[i]
	}
	return def
}

func (d *Driver) handlePrint(r rune) {
	d.mtx.Write(r, d.cur, false)
}

func (d *Driver) handleExecute(b byte) {
	p := d.mtx.Pos()
	switch b {
	case '\r':
		d.mtx.MoveAbs(p.Y, 1)
	case '\n', 0x0B, 0x0C:
		d.mtx.MoveRel(1, 0, false)
	case '\b':
		d.mtx.MoveRel(0, -1, false)
	case '\t':
		next := ((p.X-1)/8+1)*8 + 1
		d.mtx.MoveAbs(p.Y, next)
	}
}

func (d *Driver) handleCSI(params []int, intermediate []byte, final byte) {
	switch final {
	case 'A':
		d.mtx.MoveRel(-d.param(params, 0, 1), 0, false)
	case 'B':
		d.mtx.MoveRel(d.param(params, 0, 1), 0, false)
	case 'C':
		d.mtx.MoveRel(0, d.param(params, 0, 1), false)
	case 'D':
		d.mtx.MoveRel(0, -d.param(params, 0, 1), false)
	case 'H', 'f':
		d.mtx.MoveAbs(d.param(params, 0, 1), d.param(params, 1, 1))
	case 'J':
		d.eraseDisplay(d.param(params, 0, 0))
	case 'K':
		d.eraseLine(d.param(params, 0, 0))
	case 'm':
		d.handleSGR(params)
	case 'h', 'l':
		if len(intermediate) == 1 && intermediate[0] == '?' {
			d.handlePrivateMode(params, final == 'h')
		}
	}
}

// handlePrivateMode handles the DEC private alternate-screen modes
// (?47, ?1047, ?1049), the only ones with a direct Matrix hook; all
// other private modes are ignored.
func (d *Driver) handlePrivateMode(params []int, set bool) {
	for _, p := range params {
		if p == 1049 || p == 47 || p == 1047 {
			d.mtx.SetAlternateBufferActive(set)
		}
	}
}

func (d *Driver) eraseDisplay(mode int) {
	rows, cols := d.mtx.Rows(), d.mtx.Cols()
	pos := d.mtx.Pos()
	switch mode {
	case 0:
		d.mtx.Fill(0, d.cur, pos, geometry.Point{X: cols, Y: pos.Y})
		if pos.Y < rows {
			d.mtx.Fill(0, d.cur, geometry.Point{X: 1, Y: pos.Y + 1}, geometry.Point{X: cols, Y: rows})
		}
	case 1:
		if pos.Y > 1 {
			d.mtx.Fill(0, d.cur, geometry.Point{X: 1, Y: 1}, geometry.Point{X: cols, Y: pos.Y - 1})
		}
		d.mtx.Fill(0, d.cur, geometry.Point{X: 1, Y: pos.Y}, pos)
	case 2, 3:
		d.mtx.Fill(0, d.cur, geometry.Point{X: 1, Y: 1}, geometry.Point{X: cols, Y: rows})
	}
}

func (d *Driver) eraseLine(mode int) {
	cols := d.mtx.Cols()
	pos := d.mtx.Pos()
	switch mode {
	case 0:
		d.mtx.Fill(0, d.cur, pos, geometry.Point{X: cols, Y: pos.Y})
	case 1:
		d.mtx.Fill(0, d.cur, geometry.Point{X: 1, Y: pos.Y}, pos)
	case 2:
		d.mtx.Fill(0, d.cur, geometry.Point{X: 1, Y: pos.Y}, geometry.Point{X: cols, Y: pos.Y})
	}
}

// handleSGR applies one SGR (Select Graphic Rendition) parameter list
// to the current pending style.
func (d *Driver) handleSGR(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	for i := 0; i < len(params); i++ {
		switch p := params[i]; p {
		case 0:
			d.cur = style.Default
		case 1:
			d.cur.Bold = true
		case 3:
			d.cur.Italic = true
		case 4:
			d.cur.Underline = style.UnderlineSingle
		case 7:
			d.cur.Inverse = true
		case 8:
			d.cur.Concealed = true
		case 9:
			d.cur.Strikethrough = true
		case 21:
			d.cur.Underline = style.UnderlineDouble
		case 22:
			d.cur.Bold = false
		case 23:
			d.cur.Italic = false
		case 24:
			d.cur.Underline = style.UnderlineNone
		case 27:
			d.cur.Inverse = false
		case 28:
			d.cur.Concealed = false
		case 29:
			d.cur.Strikethrough = false
		case 39:
			d.cur.DefaultFg = true
			d.cur.Fg = gfxcolor.Color{}
		case 49:
			d.cur.DefaultBg = true
			d.cur.Bg = gfxcolor.Color{}
		case 38:
			if n := d.extendedColor(params, i); n > 0 {
				d.cur.DefaultFg = false
				i += n
			}
		case 48:
			if n := d.extendedColorBg(params, i); n > 0 {
				d.cur.DefaultBg = false
				i += n
			}
		default:
			switch {
			case p >= 30 && p <= 37:
				d.cur.DefaultFg = false
				d.cur.Fg = gfxcolor.Indexed(uint8(p - 30))
			case p >= 40 && p <= 47:
				d.cur.DefaultBg = false
				d.cur.Bg = gfxcolor.Indexed(uint8(p - 40))
			case p >= 90 && p <= 97:
				d.cur.DefaultFg = false
				d.cur.Fg = gfxcolor.Indexed(uint8(p - 90 + 8))
			case p >= 100 && p <= 107:
				d.cur.DefaultBg = false
				d.cur.Bg = gfxcolor.Indexed(uint8(p - 100 + 8))
			}
		}
	}
}

// extendedColor parses "38;5;N" (256-color) or "38;2;R;G;B" (direct)
// starting at params[i], setting d.cur.Fg. Returns the number of extra
// params consumed, or 0 on a malformed sequence.
func (d *Driver) extendedColor(params []int, i int) int {
	if i+1 >= len(params) {
		return 0
	}
	switch params[i+1] {
	case 5:
		if i+2 >= len(params) {
			return 0
		}
		d.cur.Fg = gfxcolor.Indexed(uint8(params[i+2]))
		return 2
	case 2:
		if i+4 >= len(params) {
			return 0
		}
		d.cur.Fg = gfxcolor.RGB(gfxcolor.RGBA{
			R: uint8(params[i+2]), G: uint8(params[i+3]), B: uint8(params[i+4]), A: 255,
		})
		return 4
	}
	return 0
}

func (d *Driver) extendedColorBg(params []int, i int) int {
	if i+1 >= len(params) {
		return 0
	}
	switch params[i+1] {
	case 5:
		if i+2 >= len(params) {
			return 0
		}
		d.cur.Bg = gfxcolor.Indexed(uint8(params[i+2]))
		return 2
	case 2:
		if i+4 >= len(params) {
			return 0
		}
		d.cur.Bg = gfxcolor.RGB(gfxcolor.RGBA{
			R: uint8(params[i+2]), G: uint8(params[i+3]), B: uint8(params[i+4]), A: 255,
		})
		return 4
	}
	return 0
}
