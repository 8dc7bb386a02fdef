// Package storage keeps an append-only NDJSON journal of the state the feed
// session applied. The journal feeds the dashboard; the session never reads
// it back.
package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/qepting91/devfeed/internal/domain"
)

const (
	KindFeed      = "feed"
	KindAnalytics = "analytics"
	KindProjects  = "projects"
)

// Record is one journal line.
type Record struct {
	Kind      string                   `json:"kind"`
	At        time.Time                `json:"at"`
	Seq       uint64                   `json:"seq,omitempty"`
	Query     string                   `json:"query,omitempty"`
	Posts     []domain.Post            `json:"posts,omitempty"`
	Analytics *domain.AnalyticsSummary `json:"analytics,omitempty"`
}

// WriterService owns the journal file. Only its goroutine writes to it.
type WriterService struct {
	FilePath string
	Logger   *slog.Logger
}

// Start appends every record from input until the channel is closed.
func (w *WriterService) Start(wg *sync.WaitGroup, input <-chan Record) {
	defer wg.Done()
	log := w.Logger
	if log == nil {
		log = slog.Default()
	}

	if dir := filepath.Dir(w.FilePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error("Journal directory unavailable", "path", dir, "err", err)
			drain(input)
			return
		}
	}
	f, err := os.OpenFile(w.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Error("Journal unavailable", "path", w.FilePath, "err", err)
		drain(input)
		return
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for rec := range input {
		if err := enc.Encode(rec); err != nil {
			log.Error("Journal write failed", "kind", rec.Kind, "err", err)
		}
	}
}

// drain keeps senders from blocking when the journal cannot be opened.
func drain(input <-chan Record) {
	for range input {
	}
}

// ReadJournal loads every decodable record from path. A missing file is an
// empty journal.
func ReadJournal(path string) ([]Record, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err == nil {
			records = append(records, rec)
		}
	}
	return records, scanner.Err()
}

// Latest returns the newest record of each kind.
func Latest(records []Record) map[string]Record {
	out := make(map[string]Record)
	for _, rec := range records {
		out[rec.Kind] = rec
	}
	return out
}
