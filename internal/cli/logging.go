package cli

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rpggio/boardsum/internal/config"
)

// Log files are cut back to their newest keepLogBytes once they pass
// maxLogBytes.
const (
	maxLogBytes  = 6 << 20
	keepLogBytes = 5 << 20
)

// newLogger builds the text logger. When a log path is configured logs go
// to a size-capped file instead of out.
func newLogger(cfg config.LogConfig, out io.Writer) (*slog.Logger, func()) {
	closeFn := func() {}
	writer := out
	if cfg.Path != "" {
		file, err := openCappedLog(cfg.Path, maxLogBytes, keepLogBytes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			writer = file
			closeFn = func() { _ = file.Close() }
		}
	}
	logger := slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Level),
	}))
	return logger, closeFn
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// cappedLog appends log records to a file and keeps it under a size limit
// by dropping the oldest whole lines.
type cappedLog struct {
	mu   sync.Mutex
	file *os.File
	size int64
	max  int64
	keep int64
}

func openCappedLog(path string, maxSize, keepSize int64) (*cappedLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat log file: %w", err)
	}
	l := &cappedLog{file: file, size: info.Size(), max: maxSize, keep: keepSize}
	if err := l.shrink(); err != nil {
		file.Close()
		return nil, err
	}
	return l, nil
}

func (l *cappedLog) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, err := l.file.Write(p)
	l.size += int64(n)
	if err != nil {
		return n, err
	}
	return n, l.shrink()
}

// shrink rewrites the file with its newest lines once it is over max.
func (l *cappedLog) shrink() error {
	if l.size <= l.max {
		return nil
	}
	tail := make([]byte, l.keep)
	n, err := l.file.ReadAt(tail, l.size-l.keep)
	if err != nil && err != io.EOF {
		return fmt.Errorf("read log tail: %w", err)
	}
	tail = tail[:n]
	// Start on a record boundary.
	if i := bytes.IndexByte(tail, '\n'); i >= 0 {
		tail = tail[i+1:]
	}

	if err := l.file.Truncate(0); err != nil {
		return fmt.Errorf("truncate log: %w", err)
	}
	// O_APPEND writes land at the new end of file.
	if _, err := l.file.Write(tail); err != nil {
		return fmt.Errorf("rewrite log: %w", err)
	}
	l.size = int64(len(tail))
	return nil
}

func (l *cappedLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
