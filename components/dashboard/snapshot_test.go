package dashboard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "dashboard.json")
	store := NewFileSnapshotStore(path)

	widgets := []Widget{
		{ID: "w1", Name: "Trending", Endpoint: "/trending", DisplayMode: ModeTable, Order: 0},
		{ID: "w2", Name: "News", Endpoint: "/news", DisplayMode: ModeCard, Order: 1,
			Parameters: map[string]string{"stock_name": "TCS"}},
	}
	require.NoError(t, store.Save(widgets))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, widgets, loaded)
}

func TestFileSnapshotMissingFileIsEmpty(t *testing.T) {
	store := NewFileSnapshotStore(filepath.Join(t.TempDir(), "missing.json"))
	widgets, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, widgets)
}

func TestFileSnapshotCorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileSnapshotStore(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse snapshot")
}

func TestFileSnapshotLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store := NewFileSnapshotStore(filepath.Join(dir, "dashboard.json"))
	require.NoError(t, store.Save([]Widget{{ID: "w1"}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Fatalf("temp file %s left behind", entry.Name())
		}
	}
}

func TestFileSnapshotDocumentOmitsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.json")
	store := NewFileSnapshotStore(path)
	require.NoError(t, store.Save([]Widget{{ID: "w1", Name: "Trending"}}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"version"`)
	assert.Contains(t, string(raw), `"widgets"`)
	assert.NotContains(t, string(raw), `"payload"`)
}
