package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tulendi/cafe-directory/pkg/logger"
	"go.uber.org/zap"
)

// Actions recorded in the trail.
const (
	ActionCafeAdded      = "cafe_added"
	ActionCafePriceSet   = "cafe_price_set"
	ActionCafeDeleted    = "cafe_deleted"
	ActionUserDeleted    = "user_deleted"
	ActionAdminPromotion = "admin_promotion"
)

// Entry is one admin mutation in the trail.
type Entry struct {
	Action    string    `json:"action"`
	ActorID   uint      `json:"actor_id"`
	Target    string    `json:"target"`
	TargetID  uint      `json:"target_id"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Trail is an append-only JSONL file of admin mutations. Every write
// is fsynced; the file is never truncated by the application.
type Trail struct {
	filePath string
	file     *os.File
	mu       sync.Mutex
}

// Open creates the trail file (and its directory) if missing and opens
// it for appending.
func Open(filePath string) (*Trail, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &Trail{
		filePath: filePath,
		file:     file,
	}, nil
}

// Record appends an entry. The timestamp is stamped here so callers
// only describe what happened.
func (t *Trail) Record(entry Entry) error {
	entry.Timestamp = time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		logger.Log.Error("Audit: failed to marshal entry",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
		return err
	}

	if _, err := t.file.WriteString(string(data) + "\n"); err != nil {
		logger.Log.Error("Audit: failed to write entry",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
		return err
	}

	// Force sync to disk (durability)
	if err := t.file.Sync(); err != nil {
		logger.Log.Error("Audit: failed to sync to disk",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Debug("Audit: entry recorded",
		zap.String("action", entry.Action),
		zap.Uint("actor_id", entry.ActorID),
	)

	return nil
}

// ReadAll returns every entry in write order. Corrupt lines are skipped.
func (t *Trail) ReadAll() ([]Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	file, err := os.Open(t.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, err
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, scanner.Err()
}

// ReadRecent returns up to limit most recent entries, newest first.
func (t *Trail) ReadRecent(limit int) ([]Entry, error) {
	entries, err := t.ReadAll()
	if err != nil {
		return nil, err
	}

	if limit > len(entries) {
		limit = len(entries)
	}

	recent := make([]Entry, 0, limit)
	for i := len(entries) - 1; i >= len(entries)-limit; i-- {
		recent = append(recent, entries[i])
	}

	return recent, nil
}

// Close closes the trail file.
func (t *Trail) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.file.Close()
}
