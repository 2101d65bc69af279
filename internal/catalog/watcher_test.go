package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/faultline/internal/models"
)

func minimalCatalogYAML(matcher string) string {
	return `version: 1
patterns:
  - id: watched_pattern
    name: Watched Pattern
    matcher: "` + matcher + `"
    category: functional
    severity: high
`
}

func TestNewWatcherValidation(t *testing.T) {
	cat := NewDefault()

	_, err := NewWatcher(WatcherConfig{}, cat)
	require.Error(t, err)

	_, err = NewWatcher(WatcherConfig{FilePath: "patterns.yaml"}, nil)
	require.Error(t, err)

	w, err := NewWatcher(WatcherConfig{FilePath: "patterns.yaml"}, cat)
	require.NoError(t, err)
	assert.Equal(t, 500, w.config.DebounceMillis)
}

func TestWatcherStartLoadsInitialCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalCatalogYAML("first version")), 0o644))

	cat := NewDefault()
	w, err := NewWatcher(WatcherConfig{FilePath: path, DebounceMillis: 50}, cat)
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	assert.Equal(t, 1, cat.Len())
	assert.NotNil(t, cat.Get("watched_pattern"))
}

func TestWatcherStartFailsOnBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 99\n"), 0o644))

	w, err := NewWatcher(WatcherConfig{FilePath: path}, NewDefault())
	require.NoError(t, err)

	err = w.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load initial catalog")
}

func TestWatcherReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalCatalogYAML("first version")), 0o644))

	cat := NewDefault()
	w, err := NewWatcher(WatcherConfig{FilePath: path, DebounceMillis: 50}, cat)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	matched := func(text string) bool {
		entry := &models.ErrorEntry{
			ID: "probe", Timestamp: time.Now(), Description: text,
			Category: models.CategoryFunctional, Severity: models.SeverityHigh, Component: "c",
		}
		patterns := NewClassifier(cat).Classify(entry)
		return len(patterns) == 1 && !patterns[0].IsFallback()
	}
	require.True(t, matched("first version"))

	// Atomic rename, same shape WriteFile produces
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(minimalCatalogYAML("second version")), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	require.Eventually(t, func() bool {
		return matched("second version")
	}, 5*time.Second, 20*time.Millisecond, "watcher should apply the new matcher")
	assert.False(t, matched("first version"))
}

func TestWatcherKeepsCatalogOnBrokenReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalCatalogYAML("first version")), 0o644))

	cat := NewDefault()
	w, err := NewWatcher(WatcherConfig{FilePath: path, DebounceMillis: 50}, cat)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("version: [broken\n"), 0o644))

	// Give the debounced reload time to run and fail
	time.Sleep(300 * time.Millisecond)

	assert.Equal(t, 1, cat.Len())
	assert.NotNil(t, cat.Get("watched_pattern"), "previous catalog stays active after a broken write")
}

func TestWatcherStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalCatalogYAML("first version")), 0o644))

	w, err := NewWatcher(WatcherConfig{FilePath: path, DebounceMillis: 50}, NewDefault())
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, w.Stop())
}
