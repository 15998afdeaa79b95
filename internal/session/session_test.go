package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(nil, filepath.Join(t.TempDir(), "sessions"))
	require.NoError(t, err)
	return reg
}

func TestCreateAssignsUUIDAndPersists(t *testing.T) {
	reg := newTestRegistry(t)

	rec, err := reg.Create("/bin/bash", []string{"-l"}, "emulation", 80, 24)
	require.NoError(t, err)
	require.Len(t, rec.ID, 36, "uuid.NewString produces a canonical 36-char string")
	require.Len(t, rec.Short(), 8)

	loaded, err := reg.Get(rec.ID)
	require.NoError(t, err)
	require.Equal(t, rec.Command, loaded.Command)
	require.Equal(t, rec.Cols, loaded.Cols)
}

func TestGetFallsBackToDiskAfterProcessRestart(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions")
	reg, err := NewRegistry(nil, dir)
	require.NoError(t, err)
	rec, err := reg.Create("/bin/sh", nil, "emulation", 80, 24)
	require.NoError(t, err)

	reg2, err := NewRegistry(nil, dir)
	require.NoError(t, err)
	loaded, err := reg2.Get(rec.ID)
	require.NoError(t, err)
	require.Equal(t, rec.ID, loaded.ID)
}

func TestListOrdersNewestFirst(t *testing.T) {
	reg := newTestRegistry(t)

	first, err := reg.Create("/bin/sh", nil, "emulation", 80, 24)
	require.NoError(t, err)
	second, err := reg.Create("/bin/sh", nil, "emulation", 80, 24)
	require.NoError(t, err)
	// force a distinguishable ordering regardless of clock resolution
	second.StartedAt = first.StartedAt.Add(1)
	require.NoError(t, reg.persist(second))

	list, err := reg.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID)
}

func TestListOnMissingControlPathReturnsEmpty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions")
	reg, err := NewRegistry(nil, dir)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	list, err := reg.List()
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestRemoveDeletesRunningAndOnDiskState(t *testing.T) {
	reg := newTestRegistry(t)
	rec, err := reg.Create("/bin/sh", nil, "emulation", 80, 24)
	require.NoError(t, err)

	require.NoError(t, reg.Remove(rec.ID))

	_, err = reg.Get(rec.ID)
	require.Error(t, err)
}
