package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorLogEmpty(t *testing.T) {
	l := NewErrorLog(t.TempDir(), "bulk_errors.log")
	content, ok, err := l.Read()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, content)
}

func TestErrorLogAppend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	l := NewErrorLog(dir, "bulk_errors.log")

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, l.Append(ErrorEntry{
		Time:     ts,
		BatchID:  "b-1",
		JobID:    7,
		Error:    "Invalid category\nline two",
		SKU:      "SKU-1",
		Title:    "Phone",
		Category: "9355",
		Price:    "10.00",
	}))
	require.NoError(t, l.Append(ErrorEntry{Error: "second"}))

	content, ok, err := l.Read()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, content, "[2024-03-01T12:00:00Z] ERROR: Invalid category line two\n")
	assert.Contains(t, content, "Batch: b-1 Job: 7\n")
	assert.Contains(t, content, "SKU: SKU-1\n")
	assert.Contains(t, content, "Category: 9355\n")
	assert.Contains(t, content, "ERROR: second\n")
	assert.Equal(t, 2, strings.Count(content, entrySeparator))
	assert.Less(t, strings.Index(content, "Invalid category"), strings.Index(content, "second"))
}

func TestErrorLogRecreatedAfterRemoval(t *testing.T) {
	l := NewErrorLog(t.TempDir(), "bulk_errors.log")
	require.NoError(t, l.Append(ErrorEntry{Error: "one"}))
	require.NoError(t, os.Remove(l.Path()))
	require.NoError(t, l.Append(ErrorEntry{Error: "two"}))

	content, ok, err := l.Read()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotContains(t, content, "one")
	assert.Contains(t, content, "two")
}

func TestLoggerWriteAndReopen(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLogger(dir, "access.log")
	require.NoError(t, err)
	defer l.Close()

	l.Writef("[LOGIN] %s", "alice")
	path := filepath.Join(dir, "access.log")
	require.NoError(t, os.Rename(path, path+".1"))
	require.NoError(t, l.Reopen())
	l.Write("after rotation")

	old, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	assert.Contains(t, string(old), "[LOGIN] alice\n")

	cur, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(cur), "after rotation\n")
	assert.NotContains(t, string(cur), "alice")
}

func TestNilLoggerDiscards(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() {
		l.Write("x")
		l.Writef("%d", 1)
		assert.NoError(t, l.Reopen())
		l.Close()
	})
}
