// Package activitylog keeps an append-only record of notable account
// operations, mirrored to a single JSON file so the history survives
// restarts.
package activitylog

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/bet-user-api/app/observability/metrics"
)

// LogEntry is one recorded operation. Timestamp is assigned at append time.
type LogEntry struct {
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Ensure implementation satisfies the interface
var _ Service = (*FileService)(nil)

type Service interface {
	// AddLog appends an entry and persists the full history. Persistence
	// failures are logged, never surfaced to the caller.
	AddLog(level, message string)
	// GetSummary returns the recorded entries in append order.
	GetSummary() []LogEntry
}

// FileService holds the history in memory and rewrites the whole backing
// file on every append. Fine at this scale; the file doubles as the summary
// payload.
type FileService struct {
	logger *slog.Logger

	mu      sync.Mutex
	entries []LogEntry
	path    string
}

// NewFileService creates the log directory if needed and loads any existing
// history. A missing or malformed file starts an empty history rather than
// failing startup.
func NewFileService(dir, file string, logger *slog.Logger) (*FileService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	s := &FileService{
		logger: logger,
		path:   filepath.Join(dir, file),
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Could not read activity log file, starting empty",
				slog.String("path", s.path), slog.Any("error", err))
		}
		return s, nil
	}

	if err := json.Unmarshal(data, &s.entries); err != nil {
		logger.Warn("Activity log file is malformed, starting empty",
			slog.String("path", s.path), slog.Any("error", err))
		s.entries = nil
	}

	return s, nil
}

func (s *FileService) AddLog(level, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, LogEntry{
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
	})
	metrics.Get().ActivityLogEntriesTotal.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("level", level)))

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		s.logger.Error("Failed to marshal activity log", slog.Any("error", err))
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.logger.Error("Failed to persist activity log",
			slog.String("path", s.path), slog.Any("error", err))
	}
}

func (s *FileService) GetSummary() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
