// Package httpapi is the debug/introspection HTTP server: GET /status,
// GET /sessions/{id}/frame.png, and GET /ws/{id}/preview, the last
// streaming still composite frames over a ping/pong/read-deadline
// keepalive websocket. Routed with github.com/gorilla/mux.
package httpapi

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/inkterm/inkterm/internal/gfxcolor"
	"github.com/inkterm/inkterm/internal/renderer"
	"github.com/inkterm/inkterm/internal/session"
)

// Keepalive timings for the preview websocket's ticker/deadline pair.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// FrameSource is the subset of memdisplay.Display a read-only HTTP
// consumer needs: the composite buffer, without re-entering the
// draw-time Lock/Unlock path.
type FrameSource interface {
	Composite() (pixels []gfxcolor.RGBA, stride, w, h int)
}

// SessionView is what the status/frame endpoints need per session:
// its registry record, its renderer (for quality stats), and its
// display's composite buffer.
type SessionView struct {
	Record  *session.Record
	Render  *renderer.Renderer
	Display FrameSource
}

// Registry is the lookup the server queries for live sessions; the
// concrete implementation is cmd/inkterm's process-wide session table.
type Registry interface {
	List() []SessionView
	Get(id string) (SessionView, bool)
}

// Server is the mux-routed debug HTTP server.
type Server struct {
	log *zap.Logger
	reg Registry
	mux *mux.Router
}

// New builds a Server wired to reg. Call Handler to get the
// http.Handler to pass to http.Server or ListenAndServe.
func New(log *zap.Logger, reg Registry) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{log: log, reg: reg, mux: mux.NewRouter()}
	s.mux.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	s.mux.HandleFunc("/sessions/{id}/frame.png", s.handleFrame).Methods(http.MethodGet)
	s.mux.HandleFunc("/ws/{id}/preview", s.handlePreview).Methods(http.MethodGet)
	return s
}

// Handler returns the routed http.Handler.
func (s *Server) Handler() http.Handler { return s.mux }

type statusSession struct {
	ID        string                  `json:"id"`
	Command   string                  `json:"command"`
	StartedAt time.Time               `json:"started_at"`
	Cols      int                     `json:"cols"`
	Rows      int                     `json:"rows"`
	Stats     renderer.QualityStats   `json:"renderer_stats"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	views := s.reg.List()
	out := make([]statusSession, 0, len(views))
	for _, v := range views {
		out = append(out, statusSession{
			ID:        v.Record.ID,
			Command:   v.Record.Command,
			StartedAt: v.Record.StartedAt,
			Cols:      v.Record.Cols,
			Rows:      v.Record.Rows,
			Stats:     v.Render.Stats(),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		s.log.Warn("httpapi: encode status", zap.Error(err))
	}
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	v, ok := s.reg.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	pixels, stride, width, height := v.Display.Composite()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := pixels[y*stride+x]
			img.Set(x, y, color.RGBA{R: p.R, G: p.G, B: p.B, A: p.A})
		}
	}
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		s.log.Warn("httpapi: encode frame png", zap.Error(err))
	}
}

// handlePreview streams a still composite PNG over a websocket every
// two seconds, with a ping/pong/read-deadline keepalive loop guarding
// the connection.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	v, ok := s.reg.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("httpapi: websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	send := make(chan []byte, 8)
	done := make(chan struct{})
	var closeOnce sync.Once
	closeDone := func() { closeOnce.Do(func() { close(done) }) }

	go s.previewWriter(conn, send, done)

	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				buf, err := s.encodeFramePNG(v)
				if err != nil {
					s.log.Warn("httpapi: preview frame encode failed", zap.Error(err))
					continue
				}
				select {
				case send <- buf:
				case <-done:
					return
				default:
				}
			case <-done:
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			closeDone()
			return
		}
	}
}

func (s *Server) encodeFramePNG(v SessionView) ([]byte, error) {
	pixels, stride, width, height := v.Display.Composite()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := pixels[y*stride+x]
			img.Set(x, y, color.RGBA{R: p.R, G: p.G, B: p.B, A: p.A})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) previewWriter(conn *websocket.Conn, send chan []byte, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
