package activitylog

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAddLog_AppendsInOrder(t *testing.T) {
	svc, err := NewFileService(t.TempDir(), "logs-summary.json", testLogger())
	require.NoError(t, err)

	svc.AddLog("INFO", "Creating user: ana")
	svc.AddLog("INFO", "Updating user: ana")

	entries := svc.GetSummary()
	require.Len(t, entries, 2)
	assert.Equal(t, "Creating user: ana", entries[0].Message)
	assert.Equal(t, "Updating user: ana", entries[1].Message)
	assert.Equal(t, "INFO", entries[0].Level)
	assert.False(t, entries[0].Timestamp.IsZero())
	assert.False(t, entries[0].Timestamp.After(entries[1].Timestamp))
}

func TestAddLog_PersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	svc, err := NewFileService(dir, "logs-summary.json", testLogger())
	require.NoError(t, err)
	svc.AddLog("INFO", "Creating user: ana")

	// A fresh instance over the same file sees the prior history.
	reloaded, err := NewFileService(dir, "logs-summary.json", testLogger())
	require.NoError(t, err)

	entries := reloaded.GetSummary()
	require.Len(t, entries, 1)
	assert.Equal(t, "Creating user: ana", entries[0].Message)

	reloaded.AddLog("INFO", "Updating user: ana")
	assert.Len(t, reloaded.GetSummary(), 2)
}

func TestAddLog_FileIsIndentedJSON(t *testing.T) {
	dir := t.TempDir()

	svc, err := NewFileService(dir, "logs-summary.json", testLogger())
	require.NoError(t, err)
	svc.AddLog("INFO", "Creating user: ana")

	data, err := os.ReadFile(filepath.Join(dir, "logs-summary.json"))
	require.NoError(t, err)

	var entries []LogEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 1)
	assert.Contains(t, string(data), "\n  ")
}

func TestNewFileService_MalformedFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logs-summary.json"), []byte("{not json"), 0o644))

	svc, err := NewFileService(dir, "logs-summary.json", testLogger())
	require.NoError(t, err)
	assert.Empty(t, svc.GetSummary())

	// Still usable after the bad load.
	svc.AddLog("INFO", "Creating user: ana")
	assert.Len(t, svc.GetSummary(), 1)
}

func TestGetSummary_ReturnsCopy(t *testing.T) {
	svc, err := NewFileService(t.TempDir(), "logs-summary.json", testLogger())
	require.NoError(t, err)
	svc.AddLog("INFO", "Creating user: ana")

	entries := svc.GetSummary()
	entries[0].Message = "mutated"

	assert.Equal(t, "Creating user: ana", svc.GetSummary()[0].Message)
}
