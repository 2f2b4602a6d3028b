/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package logtest

import (
	"sync"
	"time"

	"github.com/ssgreg/logf"

	"github.com/acronis/go-crptapi/log"
)

// RecordedEntry is a single logged message.
type RecordedEntry struct {
	Level  log.Level
	Time   time.Time
	Text   string
	Fields []log.Field
}

// FindField returns the first field with the given key.
func (re *RecordedEntry) FindField(key string) (*log.Field, bool) {
	for i := range re.Fields {
		if re.Fields[i].Key == key {
			return &re.Fields[i], true
		}
	}
	return nil, false
}

var levels = map[logf.Level]log.Level{
	logf.LevelError: log.LevelError,
	logf.LevelWarn:  log.LevelWarn,
	logf.LevelInfo:  log.LevelInfo,
	logf.LevelDebug: log.LevelDebug,
}

// journal is shared by a Recorder and all loggers derived from it with With.
type journal struct {
	mu      sync.Mutex
	entries []RecordedEntry
}

//nolint:gocritic // logf.EntryWriter passes entries by value
func (j *journal) WriteEntry(e logf.Entry) {
	fields := make([]log.Field, 0, len(e.DerivedFields)+len(e.Fields))
	fields = append(fields, e.DerivedFields...)
	fields = append(fields, e.Fields...)

	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, RecordedEntry{Level: levels[e.Level], Time: e.Time, Text: e.Text, Fields: fields})
}

func (j *journal) snapshot() []RecordedEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]RecordedEntry(nil), j.entries...)
}

// Recorder is a log.FieldLogger that keeps every message (all levels) in memory.
type Recorder struct {
	*log.LogfAdapter
	journal *journal
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	j := &journal{}
	return &Recorder{&log.LogfAdapter{Logger: logf.NewLogger(logf.LevelDebug, j)}, j}
}

// With returns a logger with additional fields, its messages are recorded by r.
func (r *Recorder) With(fs ...log.Field) log.FieldLogger {
	return &Recorder{r.LogfAdapter.With(fs...).(*log.LogfAdapter), r.journal}
}

// Entries returns a copy of all recorded entries in logging order.
func (r *Recorder) Entries() []RecordedEntry {
	return r.journal.snapshot()
}

// FindEntry returns the first entry with the given message.
func (r *Recorder) FindEntry(msg string) (RecordedEntry, bool) {
	for _, entry := range r.journal.snapshot() {
		if entry.Text == msg {
			return entry, true
		}
	}
	return RecordedEntry{}, false
}

// FindAllEntriesByFilter returns all entries accepted by the filter.
func (r *Recorder) FindAllEntriesByFilter(filter func(entry RecordedEntry) bool) []RecordedEntry {
	var found []RecordedEntry
	for _, entry := range r.journal.snapshot() {
		if filter(entry) {
			found = append(found, entry)
		}
	}
	return found
}
