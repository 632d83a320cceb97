package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorageSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	storage := NewFileStorage(dir)

	path, err := storage.Save("hello", "report.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestReporterWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	reporter := NewReporter(NewFileStorage(dir))
	rep := sampleReport()

	jsonPath, markdownPath, err := reporter.WriteArtifacts(rep)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(filepath.Base(jsonPath), "comprehensive_security_report_"))
	assert.True(t, strings.HasSuffix(jsonPath, ".json"))
	assert.True(t, strings.HasPrefix(filepath.Base(markdownPath), "security_report_"))
	assert.True(t, strings.HasSuffix(markdownPath, ".md"))

	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var decoded UnifiedReport
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, rep.ID, decoded.ID)

	narrative, err := os.ReadFile(markdownPath)
	require.NoError(t, err)
	assert.Contains(t, string(narrative), "# 🔒 Smart Contract Security Report")
}

type failingStorage struct{}

func (failingStorage) Save(content, filename string) (string, error) {
	return "", errors.New("disk full")
}

func TestReporterWriteArtifactsPropagatesStorageErrors(t *testing.T) {
	reporter := NewReporter(failingStorage{})

	jsonPath, markdownPath, err := reporter.WriteArtifacts(sampleReport())
	require.Error(t, err)
	assert.Empty(t, jsonPath)
	assert.Empty(t, markdownPath)
	assert.Contains(t, err.Error(), "disk full")
}

func TestHistoryPlaceholders(t *testing.T) {
	mysql := NewHistory(nil, "mysql")
	assert.Equal(t, "?, ?, ?", mysql.placeholders(3))

	pgx := NewHistory(nil, "pgx")
	assert.Equal(t, "$1, $2, $3", pgx.placeholders(3))
}

func TestHistoryNilDB(t *testing.T) {
	h := NewHistory(nil, "mysql")
	assert.Error(t, h.EnsureSchema(t.Context()))
	assert.Error(t, h.SaveRun(t.Context(), sampleReport(), "a.json", "a.md"))
}
