// Package checkpoint persists batch progress so interrupted runs resume
// instead of restarting.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrorEntry is one recorded per-item failure.
type ErrorEntry struct {
	Company string `json:"company"`
	Message string `json:"message"`
}

// State is the on-disk checkpoint format. Field order is the JSON key
// order, kept stable for diffability.
type State struct {
	TotalSeen          int          `json:"totalSeen"`
	Succeeded          int          `json:"succeeded"`
	Failed             int          `json:"failed"`
	Errors             []ErrorEntry `json:"errors"`
	ProcessedCompanies []string     `json:"processedCompanies"`
	StartTime          time.Time    `json:"startTime"`
	LastSaved          time.Time    `json:"lastSaved,omitzero"`
}

// Tracker accumulates batch progress in memory and checkpoints it to a
// JSON file. Mutations are in-memory only until Save. Not safe for
// concurrent use; concurrent batches need distinct checkpoint paths.
type Tracker struct {
	path  string
	state State
	now   func() time.Time
}

// Load opens the checkpoint at path, falling back to a fresh state when
// the file is missing or unreadable. "No prior run" is the common case,
// so absence and corruption are logged, never surfaced as errors.
func Load(path string) *Tracker {
	t := &Tracker{path: path, now: time.Now}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Fresh run.
	case err != nil:
		zap.L().Warn("checkpoint: unreadable, starting fresh",
			zap.String("path", path),
			zap.Error(err),
		)
	default:
		if err := json.Unmarshal(data, &t.state); err != nil {
			zap.L().Warn("checkpoint: corrupt, starting fresh",
				zap.String("path", path),
				zap.Error(err),
			)
			t.state = State{}
		}
	}

	if t.state.StartTime.IsZero() {
		t.state.StartTime = t.now().UTC()
	}
	return t
}

// Processed returns the set of IDs already in the checkpoint. Resume means
// the caller skips anything in this set; the tracker itself never
// deduplicates.
func (t *Tracker) Processed() map[string]bool {
	set := make(map[string]bool, len(t.state.ProcessedCompanies))
	for _, id := range t.state.ProcessedCompanies {
		set[id] = true
	}
	return set
}

// RecordProcessed appends id to the processed list and bumps the success
// or failure counter.
func (t *Tracker) RecordProcessed(id string, succeeded bool) {
	t.state.ProcessedCompanies = append(t.state.ProcessedCompanies, id)
	t.state.TotalSeen++
	if succeeded {
		t.state.Succeeded++
	} else {
		t.state.Failed++
	}
}

// RecordError appends to the error log. It does not halt anything; the
// batch decides whether to continue.
func (t *Tracker) RecordError(label, message string) {
	t.state.Errors = append(t.state.Errors, ErrorEntry{Company: label, Message: message})
}

// State returns a copy of the current in-memory state.
func (t *Tracker) State() State {
	s := t.state
	s.Errors = append([]ErrorEntry(nil), t.state.Errors...)
	s.ProcessedCompanies = append([]string(nil), t.state.ProcessedCompanies...)
	return s
}

// Save writes the checkpoint atomically: serialize to a temp file in the
// same directory, then rename over the previous checkpoint. A crash mid-
// write leaves the old checkpoint intact. Write failures are hard errors:
// silently losing a checkpoint means re-spending every external call.
func (t *Tracker) Save() error {
	t.state.LastSaved = t.now().UTC()

	data, err := json.MarshalIndent(&t.state, "", "  ")
	if err != nil {
		return eris.Wrap(err, "checkpoint: marshal state")
	}

	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "checkpoint: create dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(t.path)+".tmp-*")
	if err != nil {
		return eris.Wrap(err, "checkpoint: create temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return eris.Wrap(err, "checkpoint: write temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return eris.Wrap(err, "checkpoint: close temp file")
	}

	if err := os.Rename(tmpName, t.path); err != nil {
		os.Remove(tmpName)
		return eris.Wrapf(err, "checkpoint: rename into %s", t.path)
	}
	return nil
}

// Summarize renders a human-readable progress report without mutating
// state.
func (t *Tracker) Summarize() string {
	var b strings.Builder
	fmt.Fprintf(&b, "processed: %d (succeeded %d, failed %d)\n",
		t.state.TotalSeen, t.state.Succeeded, t.state.Failed)
	fmt.Fprintf(&b, "started:   %s\n", t.state.StartTime.Format(time.RFC3339))
	if !t.state.LastSaved.IsZero() {
		fmt.Fprintf(&b, "saved:     %s\n", t.state.LastSaved.Format(time.RFC3339))
	}
	if len(t.state.Errors) > 0 {
		fmt.Fprintf(&b, "errors (%d):\n", len(t.state.Errors))
		for _, e := range t.state.Errors {
			fmt.Fprintf(&b, "  %s: %s\n", e.Company, e.Message)
		}
	}
	return b.String()
}
