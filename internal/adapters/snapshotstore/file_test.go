package snapshotstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bahnwerk/core/internal/domain/entities"
	"github.com/bahnwerk/core/internal/domain/snapshot"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "tasks.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)
	defer store.Close()

	snap := snapshot.New([]entities.Task{
		{ID: "t1", Title: "Korridor Nord", Projects: []entities.Project{{ID: "p1", RegID: "104233"}}},
	})
	require.NoError(t, store.Save(context.Background(), snap))

	loaded, found, err := store.Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, loaded.State.Tasks, 1)
	assert.Equal(t, "104233", loaded.State.Tasks[0].Projects[0].RegID)
	assert.Equal(t, snapshot.CurrentVersion, loaded.Version)
}

func TestFileStore_MissingFileIsNotFound(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "tasks.json"))
	require.NoError(t, err)

	_, found, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFileStore_EmptyPathRejected(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}

func TestFileStore_SaveOverwritesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), snapshot.New([]entities.Task{{ID: "t1"}})))
	require.NoError(t, store.Save(context.Background(), snapshot.New([]entities.Task{{ID: "t2"}})))

	loaded, found, err := store.Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, loaded.State.Tasks, 1)
	assert.Equal(t, "t2", loaded.State.Tasks[0].ID)

	// No temp files survive a completed save.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tasks.json", entries[0].Name())
}

func TestFileStore_LoadMigratesLegacyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	legacy := []byte(`{
		"version": 0,
		"state": {"tasks": [{
			"id": "t1",
			"appointments": [{"id": "a1", "title": "Begehung", "description": "Strecke 6100"}],
			"projects": [{"id": "p1"}]
		}]}
	}`)
	require.NoError(t, os.WriteFile(path, legacy, 0o644))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	loaded, found, err := store.Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)

	task := loaded.State.Tasks[0]
	require.Len(t, task.Notifications, 1)
	assert.Equal(t, "Strecke 6100", task.Notifications[0].Text)
	assert.Equal(t, []entities.Comment{}, task.Projects[0].Comments)
}

func TestFileStore_CorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	_, _, err = store.Load(context.Background())
	assert.Error(t, err)
}

func TestMemoryStore_RoundTripAndHooks(t *testing.T) {
	store := NewMemoryStore()

	_, found, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Save(context.Background(), snapshot.New([]entities.Task{{ID: "t1"}})))
	require.NoError(t, store.Save(context.Background(), snapshot.New([]entities.Task{{ID: "t1"}, {ID: "t2"}})))
	assert.Equal(t, 2, store.Saves())

	loaded, found, err := store.Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, loaded.State.Tasks, 2)
}

func TestMemoryStore_SetRawFeedsMigration(t *testing.T) {
	store := NewMemoryStore()
	store.SetRaw([]byte(`{"state": {"tasks": [{"id": "t1", "projects": [{"id": "p1"}]}]}}`))

	loaded, found, err := store.Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []entities.Comment{}, loaded.State.Tasks[0].Projects[0].Comments)
}
