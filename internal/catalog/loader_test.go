package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/faultline/internal/models"
)

const validCatalogYAML = `version: 1
patterns:
  - id: database_connection
    name: Database Connection Failure
    matcher: "connection refused|econnrefused"
    category: infrastructure
    severity: critical
    description: Cannot reach the database
    commonCauses:
      - Database server down or unreachable
    suggestedFixes:
      - Verify database availability and credentials
    businessImpact: critical
  - id: slow_checkout
    name: Slow Checkout
    matcher: "checkout.*slow|checkout.*latency"
    category: performance
    severity: medium
    businessImpact: high
`

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeCatalogFile(t, validCatalogYAML)

	f, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, SupportedFileVersion, f.Version)
	require.Len(t, f.Patterns, 2)
	assert.Equal(t, "database_connection", f.Patterns[0].ID)
	assert.Equal(t, models.CategoryInfrastructure, f.Patterns[0].Category)
	assert.Equal(t, models.BusinessImpactHigh, f.Patterns[1].BusinessImpact)
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unsupported version",
			content: "version: 2\npatterns:\n  - id: p1\n    name: P1\n    matcher: boom\n    category: functional\n    severity: low\n",
			wantErr: "unsupported catalog file version",
		},
		{
			name:    "no patterns",
			content: "version: 1\npatterns: []\n",
			wantErr: "at least one pattern",
		},
		{
			name:    "invalid yaml",
			content: "version: [unclosed\n",
			wantErr: "failed to load pattern catalog",
		},
		{
			name:    "uncompilable matcher",
			content: "version: 1\npatterns:\n  - id: p1\n    name: P1\n    matcher: \"(\"\n    category: functional\n    severity: low\n",
			wantErr: "invalid matcher expression",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCatalogFile(t, tt.content)
			_, err := LoadFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestWriteFileRoundTrip(t *testing.T) {
	cat := NewDefault()
	path := filepath.Join(t.TempDir(), "exported.yaml")

	require.NoError(t, cat.Export(path))

	reloaded, err := NewFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cat.Len(), reloaded.Len())

	// Matcher expressions survive the round trip
	original := cat.Definitions()
	roundTripped := reloaded.Definitions()
	require.Equal(t, len(original), len(roundTripped))
	for i := range original {
		assert.Equal(t, original[i].Matcher, roundTripped[i].Matcher, "pattern %s", original[i].ID)
	}
}

func TestWriteFileRejectsInvalidCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	err := WriteFile(path, &File{Version: 99})
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no file should be written on validation failure")
}
