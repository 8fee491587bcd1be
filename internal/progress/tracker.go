// Package progress keeps a JSON journal of what a run has done, so that a run
// stopped halfway can be inspected afterwards.
package progress

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// JournalName is the journal file name inside the output directory.
const JournalName = ".progress.json"

// Status represents the processing status of a subject or file
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// FileEntry represents a processed file entry
type FileEntry struct {
	Status    Status `json:"status"`
	Hash      string `json:"hash,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// SubjectEntry represents one input subdirectory.
type SubjectEntry struct {
	Status    Status `json:"status"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// TrackerData is the JSON structure for persistence
type TrackerData struct {
	RunID    string                   `json:"run_id"`
	Subjects map[string]*SubjectEntry `json:"subjects"`
	Files    map[string]*FileEntry    `json:"files"`
	Updated  string                   `json:"updated"`
	Summary  struct {
		Success int `json:"success"`
		Error   int `json:"error"`
		Total   int `json:"total"`
	} `json:"summary"`
}

// Tracker records per-subject and per-file outcomes.
type Tracker struct {
	mu       sync.Mutex
	path     string
	runID    string
	logger   *slog.Logger
	subjects map[string]*SubjectEntry
	files    map[string]*FileEntry
}

// NewTracker creates a tracker persisting to path, loading earlier entries
// when the journal already exists. An empty path keeps the journal in memory.
func NewTracker(path, runID string, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracker{
		path:     path,
		runID:    runID,
		logger:   logger,
		subjects: make(map[string]*SubjectEntry),
		files:    make(map[string]*FileEntry),
	}

	if path != "" {
		t.load()
	}

	return t
}

func (t *Tracker) load() {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return // File doesn't exist, start fresh
	}

	var td TrackerData
	if err := json.Unmarshal(data, &td); err != nil {
		t.logger.Warn("could not load progress journal", "path", t.path, "error", err)
		return
	}

	if td.Subjects != nil {
		t.subjects = td.Subjects
	}
	if td.Files != nil {
		t.files = td.Files
	}

	t.logger.Info("loaded progress journal",
		"path", t.path,
		"success", t.countStatus(StatusSuccess),
		"error", t.countStatus(StatusError))
}

func (t *Tracker) save() {
	if t.path == "" {
		return
	}

	td := TrackerData{
		RunID:    t.runID,
		Subjects: t.subjects,
		Files:    t.files,
		Updated:  time.Now().Format(time.RFC3339),
	}
	td.Summary.Success = t.countStatus(StatusSuccess)
	td.Summary.Error = t.countStatus(StatusError)
	td.Summary.Total = len(t.files)

	data, err := json.MarshalIndent(td, "", "  ")
	if err != nil {
		t.logger.Warn("could not marshal progress journal", "error", err)
		return
	}

	if err := os.WriteFile(t.path, data, 0644); err != nil {
		t.logger.Warn("could not save progress journal", "path", t.path, "error", err)
	}
}

func (t *Tracker) countStatus(status Status) int {
	count := 0
	for _, entry := range t.files {
		if entry.Status == status {
			count++
		}
	}
	return count
}

// fileHash creates a quick hash based on file size and modification time
func fileHash(filePath string) string {
	info, err := os.Stat(filePath)
	if err != nil {
		return ""
	}
	hashInput := fmt.Sprintf("%d_%d", info.Size(), info.ModTime().Unix())
	hash := md5.Sum([]byte(hashInput))
	return fmt.Sprintf("%x", hash[:4])
}

func statusOf(err error) (Status, string) {
	if err != nil {
		return StatusError, err.Error()
	}
	return StatusSuccess, ""
}

// MarkFile records the outcome of editing a file.
func (t *Tracker) MarkFile(filePath string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	status, msg := statusOf(err)
	t.files[filePath] = &FileEntry{
		Status:    status,
		Hash:      fileHash(filePath),
		Error:     msg,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	t.save()
}

// MarkSubject records the outcome of a whole input subdirectory.
func (t *Tracker) MarkSubject(name string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	status, msg := statusOf(err)
	t.subjects[name] = &SubjectEntry{
		Status:    status,
		Error:     msg,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	t.save()
}

// Subject returns the journal entry for a subject, if any.
func (t *Tracker) Subject(name string) (SubjectEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.subjects[name]
	if !ok {
		return SubjectEntry{}, false
	}
	return *entry, true
}

// GetStats returns file success and error counts.
func (t *Tracker) GetStats() (success, errors int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.countStatus(StatusSuccess), t.countStatus(StatusError)
}
