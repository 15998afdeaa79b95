// Package session is the session registry: bookkeeping for sessions
// (each cmd/inkterm run process registers its one Matrix+Renderer
// pair as a session), tracked in
// memory and mirrored to a controlPath-rooted per-session directory on
// disk. Persisted metadata uses gopkg.in/yaml.v3 and IDs are full
// github.com/google/uuid v4 strings.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Record is one session's persisted metadata.
type Record struct {
	ID             string    `yaml:"id"`
	Command        string    `yaml:"command"`
	Args           []string  `yaml:"args"`
	StartedAt      time.Time `yaml:"started_at"`
	DisplayBackend string    `yaml:"display_backend"`
	Cols           int       `yaml:"cols"`
	Rows           int       `yaml:"rows"`
}

// Short returns an 8-character prefix of ID, for log lines and
// terminal listings.
func (r *Record) Short() string {
	if len(r.ID) < 8 {
		return r.ID
	}
	return r.ID[:8]
}

func (r *Record) path(controlPath string) string {
	return filepath.Join(controlPath, r.ID)
}

func (r *Record) metaPath(controlPath string) string {
	return filepath.Join(r.path(controlPath), "meta.yaml")
}

// Registry tracks running sessions in memory and mirrors each one to
// controlPath/<id>/meta.yaml on disk.
type Registry struct {
	controlPath string
	log         *zap.Logger

	mu      sync.RWMutex
	running map[string]*Record
}

// NewRegistry creates controlPath if needed and returns an empty
// registry rooted there.
func NewRegistry(log *zap.Logger, controlPath string) (*Registry, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(controlPath, 0o755); err != nil {
		return nil, fmt.Errorf("session: create control path: %w", err)
	}
	return &Registry{
		controlPath: controlPath,
		log:         log,
		running:     make(map[string]*Record),
	}, nil
}

// Create allocates a new UUID, writes its metadata to disk, and
// registers it as running.
func (r *Registry) Create(command string, args []string, displayBackend string, cols, rows int) (*Record, error) {
	rec := &Record{
		ID:             uuid.NewString(),
		Command:        command,
		Args:           args,
		StartedAt:      time.Now(),
		DisplayBackend: displayBackend,
		Cols:           cols,
		Rows:           rows,
	}
	if err := os.MkdirAll(rec.path(r.controlPath), 0o755); err != nil {
		return nil, fmt.Errorf("session: create session dir: %w", err)
	}
	if err := r.persist(rec); err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.running[rec.ID] = rec
	r.mu.Unlock()
	return rec, nil
}

func (r *Registry) persist(rec *Record) error {
	b, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session: marshal metadata: %w", err)
	}
	if err := os.WriteFile(rec.metaPath(r.controlPath), b, 0o644); err != nil {
		return fmt.Errorf("session: write metadata: %w", err)
	}
	return nil
}

// Get returns a running session's record, or loads one from disk if it
// was registered by a prior process instance.
func (r *Registry) Get(id string) (*Record, error) {
	r.mu.RLock()
	if rec, ok := r.running[id]; ok {
		r.mu.RUnlock()
		return rec, nil
	}
	r.mu.RUnlock()
	return r.load(id)
}

func (r *Registry) load(id string) (*Record, error) {
	b, err := os.ReadFile((&Record{ID: id}).metaPath(r.controlPath))
	if err != nil {
		return nil, fmt.Errorf("session: load %s: %w", id, err)
	}
	var rec Record
	if err := yaml.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w", id, err)
	}
	return &rec, nil
}

// List returns every session found on disk, newest first.
func (r *Registry) List() ([]*Record, error) {
	entries, err := os.ReadDir(r.controlPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("session: list: %w", err)
	}
	var out []*Record
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		rec, err := r.load(e.Name())
		if err != nil {
			r.log.Warn("session: skipping unreadable session directory", zap.String("id", e.Name()), zap.Error(err))
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out, nil
}

// Remove deletes a session's on-disk directory and running-registry
// entry.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	delete(r.running, id)
	r.mu.Unlock()
	return os.RemoveAll((&Record{ID: id}).path(r.controlPath))
}
