package httpapi

import (
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inkterm/inkterm/internal/epaper"
	"github.com/inkterm/inkterm/internal/gfxcolor"
	"github.com/inkterm/inkterm/internal/glyph"
	"github.com/inkterm/inkterm/internal/matrix"
	"github.com/inkterm/inkterm/internal/memdisplay"
	"github.com/inkterm/inkterm/internal/renderer"
	"github.com/inkterm/inkterm/internal/session"
)

func newTestView(t *testing.T) SessionView {
	t.Helper()
	backend := epaper.NewEmulationBackend(nil, 8, 8)
	display := memdisplay.New(backend, nil)
	mtx := matrix.New(0, 0)
	r := renderer.New(mtx, display, glyph.NewBasicFontProvider(), gfxcolor.DefaultPalette(), nil)
	r.SetBackendBounds(8, 8)
	r.Draw(true, 0)

	rec := &session.Record{ID: "abc123", Command: "/bin/sh", StartedAt: time.Now(), Cols: 80, Rows: 24}
	return SessionView{Record: rec, Render: r, Display: display}
}

type fakeRegistry struct {
	views map[string]SessionView
}

func (f fakeRegistry) List() []SessionView {
	out := make([]SessionView, 0, len(f.views))
	for _, v := range f.views {
		out = append(out, v)
	}
	return out
}

func (f fakeRegistry) Get(id string) (SessionView, bool) {
	v, ok := f.views[id]
	return v, ok
}

func TestHandleStatusListsSessions(t *testing.T) {
	view := newTestView(t)
	reg := fakeRegistry{views: map[string]SessionView{view.Record.ID: view}}
	srv := New(nil, reg)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got []statusSession
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, view.Record.ID, got[0].ID)
	require.Equal(t, 80, got[0].Cols)
}

func TestHandleFrameEncodesValidPNG(t *testing.T) {
	view := newTestView(t)
	reg := fakeRegistry{views: map[string]SessionView{view.Record.ID: view}}
	srv := New(nil, reg)

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+view.Record.ID+"/frame.png", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "image/png", w.Header().Get("Content-Type"))

	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	require.Equal(t, 8, img.Bounds().Dx())
	require.Equal(t, 8, img.Bounds().Dy())
}

func TestHandleFrameUnknownSessionReturns404(t *testing.T) {
	reg := fakeRegistry{views: map[string]SessionView{}}
	srv := New(nil, reg)

	req := httptest.NewRequest(http.MethodGet, "/sessions/nope/frame.png", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}
