package logging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// NoErrorsYet is what readers get before the first failure is recorded.
const NoErrorsYet = "No errors logged yet."

const entrySeparator = "-------------------------------------------"

// ErrorEntry is one failed bulk job as written to the error log.
type ErrorEntry struct {
	Time     time.Time
	BatchID  string
	JobID    int64
	Error    string
	SKU      string
	Title    string
	Category string
	Price    string
	Image    string
}

// ErrorLog is the durable, append-only record of bulk failures. It outlives
// any queue reset.
type ErrorLog struct {
	mu   sync.Mutex
	path string
}

// NewErrorLog does not touch the disk; the file appears on first Append.
func NewErrorLog(dir, fname string) *ErrorLog {
	if dir == "" {
		dir = "./logs"
	}
	return &ErrorLog{path: filepath.Join(dir, fname)}
}

func (l *ErrorLog) Path() string { return l.path }

// Append writes one record. The file is opened per call so a rotated or
// deleted file is recreated.
func (l *ErrorLog) Append(e ErrorEntry) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("error log dir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open error log: %w", err)
	}
	if _, err := f.WriteString(formatEntry(e)); err != nil {
		f.Close()
		return fmt.Errorf("write error log: %w", err)
	}
	return f.Close()
}

// Read returns the whole log. ok is false when nothing was ever logged.
func (l *ErrorLog) Read() (content string, ok bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}

func formatEntry(e ErrorEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ERROR: %s\n", e.Time.UTC().Format(time.RFC3339), oneLine(e.Error))
	if e.BatchID != "" {
		fmt.Fprintf(&b, "Batch: %s Job: %d\n", e.BatchID, e.JobID)
	}
	fmt.Fprintf(&b, "SKU: %s\n", oneLine(e.SKU))
	fmt.Fprintf(&b, "Title: %s\n", oneLine(e.Title))
	fmt.Fprintf(&b, "Category: %s\n", oneLine(e.Category))
	fmt.Fprintf(&b, "Price: %s\n", oneLine(e.Price))
	fmt.Fprintf(&b, "Image: %s\n", oneLine(e.Image))
	b.WriteString(entrySeparator + "\n\n")
	return b.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
