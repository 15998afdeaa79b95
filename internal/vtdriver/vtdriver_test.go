package vtdriver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inkterm/inkterm/internal/geometry"
	"github.com/inkterm/inkterm/internal/matrix"
	"github.com/inkterm/inkterm/internal/style"
)

func TestPrintableBytesAdvanceCursorAndWrite(t *testing.T) {
	m := matrix.New(5, 2)
	d := New(m)
	d.Write([]byte("Hi"))

	ups := m.Commit()
	require.NotEmpty(t, ups)
	found := map[geometry.Point]rune{}
	for _, u := range ups {
		found[u.Pos] = u.Current.Glyph
	}
	require.Equal(t, 'H', found[geometry.Point{X: 1, Y: 1}])
	require.Equal(t, 'i', found[geometry.Point{X: 2, Y: 1}])
	require.Equal(t, geometry.Point{X: 3, Y: 1}, m.Pos())
}

func TestCursorPositionCSI(t *testing.T) {
	m := matrix.New(10, 10)
	d := New(m)
	d.Write([]byte("\x1b[3;5H"))
	require.Equal(t, geometry.Point{X: 5, Y: 3}, m.Pos())
}

func TestSGRColorAndReset(t *testing.T) {
	m := matrix.New(10, 1)
	d := New(m)
	d.Write([]byte("\x1b[31mX"))
	require.False(t, d.cur.DefaultFg)
	require.True(t, d.cur.Fg.IsIndexed())
	require.Equal(t, uint8(1), d.cur.Fg.Index())

	d.Write([]byte("\x1b[0mY"))
	require.True(t, d.cur.DefaultFg)
}

func TestEraseLineClearsRemainderOfRow(t *testing.T) {
	m := matrix.New(4, 2)
	d := New(m)
	d.Write([]byte("ABCD"))
	m.Commit()
	d.Write([]byte("\x1b[1;2H\x1b[K"))
	ups := m.Commit()
	byPos := map[geometry.Point]rune{}
	for _, u := range ups {
		byPos[u.Pos] = u.Current.Glyph
	}
	require.Equal(t, rune(0), byPos[geometry.Point{X: 2, Y: 1}])
	require.Equal(t, rune(0), byPos[geometry.Point{X: 3, Y: 1}])
	require.Equal(t, rune(0), byPos[geometry.Point{X: 4, Y: 1}])
}

func TestAlternateScreenToggle(t *testing.T) {
	m := matrix.New(5, 5)
	d := New(m)
	d.Write([]byte("\x1b[?1049h"))
	d.Write([]byte("\x1b[?1049l"))
	// no panic, and the driver's SGR state is untouched by the mode toggle
	require.Equal(t, style.Default, d.cur)
}

func TestMultiByteUTF8Decodes(t *testing.T) {
	m := matrix.New(5, 1)
	d := New(m)
	d.Write([]byte("é")) // 2-byte UTF-8
	ups := m.Commit()
	// one update for the written cell, one for the cursor's new cell
	require.Len(t, ups, 2)
	require.Equal(t, 'é', ups[0].Current.Glyph)
}
