package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	slogmulti "github.com/samber/slog-multi"
)

// SetupDiagnostics makes slog the process logger, writing text records to
// stdout and to dir/filename. An existing file is moved to dir/archives with
// a timestamp suffix first. The stdlib log package is routed to the same
// handlers. The returned file must stay open for the life of the process.
func SetupDiagnostics(dir, filename string, debug bool) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, filename)
	if _, err := os.Stat(path); err == nil {
		archives := filepath.Join(dir, "archives")
		if err := os.MkdirAll(archives, 0755); err != nil {
			return nil, err
		}
		_ = os.Rename(path, filepath.Join(archives, filename+"."+time.Now().Format("2006-01-02-15-04-05")))
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(newFanout(f, debug)))
	log.SetFlags(0)
	log.SetOutput(slog.NewLogLogger(slog.Default().Handler(), slog.LevelInfo).Writer())
	return f, nil
}

func newFanout(file io.Writer, debug bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
	}
	return slogmulti.Fanout(
		slog.NewTextHandler(os.Stdout, opts),
		slog.NewTextHandler(file, opts),
	)
}
