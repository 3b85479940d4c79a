package datastore

import (
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *DataStore {
	t.Helper()
	ds, err := NewWithConfig(&Config{
		FilePath:         filepath.Join(t.TempDir(), "store.json"),
		AutoSaveInterval: time.Hour, // saves are driven explicitly in tests
		Logger:           log.New(os.Stderr, "[datastore] ", log.LstdFlags),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ds.Close() })
	return ds
}

func TestAddGetDelete(t *testing.T) {
	ds := newTestStore(t)

	_, ok := ds.Get("missing")
	assert.False(t, ok)

	ds.Add("guild-1", map[string]any{"prefix": "!"})
	value, ok := ds.Get("guild-1")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"prefix": "!"}, value)

	ds.Delete("guild-1")
	_, ok = ds.Get("guild-1")
	assert.False(t, ok)
}

func TestKeys(t *testing.T) {
	ds := newTestStore(t)
	ds.Add("a", 1)
	ds.Add("b", 2)
	assert.ElementsMatch(t, []string{"a", "b"}, ds.Keys())
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	ds, err := New(path)
	require.NoError(t, err)
	ds.Add("guild-1", map[string]any{"prefix": "?"})
	require.NoError(t, ds.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, ok := reopened.Get("guild-1")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"prefix": "?"}, value)
}

func TestClosedStoreRejectsWrites(t *testing.T) {
	ds := newTestStore(t)
	require.NoError(t, ds.Close())

	ds.Add("late", true)
	_, ok := ds.Get("late")
	assert.False(t, ok)
	assert.Error(t, ds.SaveToFile())

	// Close is idempotent.
	assert.NoError(t, ds.Close())
}

func TestSaveSkippedWhenUnchanged(t *testing.T) {
	ds := newTestStore(t)
	ds.Add("k", "v")
	require.NoError(t, ds.SaveToFile())

	info1, err := os.Stat(ds.file)
	require.NoError(t, err)

	// A second save with identical content must not rewrite the file.
	require.NoError(t, ds.SaveToFile())
	info2, err := os.Stat(ds.file)
	require.NoError(t, err)
	assert.Equal(t, info1.ModTime(), info2.ModTime())
}
