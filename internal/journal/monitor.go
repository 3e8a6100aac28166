// Package journal tails the game's journal directory and turns log lines
// into records for the reconciler.
//
// The game appends JSON lines to a new Journal.*.log file per session. The
// monitor re-reads a whole file on every change rather than tracking byte
// offsets: files are small, rotation is frequent, and the reconciler's
// idempotence gate drops every line it has already seen, so a full re-read
// is always safe.
package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/fsnotify/fsnotify"

	"github.com/carrierlink-systems/carrierlink/common/logging"
	"github.com/carrierlink-systems/carrierlink/internal/metrics"
	"github.com/carrierlink-systems/carrierlink/internal/models"
)

// journal lines are normally well under this, but stats events with full
// crew listings can get long
const maxLineBytes = 1024 * 1024

// RecordHandler consumes one parsed journal record. Errors are the handler's
// to log; the monitor always continues with the next record.
type RecordHandler func(ctx context.Context, rec *models.JournalRecord) error

// Monitor watches a journal directory and feeds matching files through a
// RecordHandler.
type Monitor struct {
	dir     string
	pattern string
	handle  RecordHandler
	logger  *slog.Logger
}

func NewMonitor(dir, pattern string, handle RecordHandler) *Monitor {
	return &Monitor{
		dir:     dir,
		pattern: pattern,
		handle:  handle,
		logger:  slog.Default().With(logging.Component("journal-monitor")),
	}
}

// Run scans existing journal files, then watches for new writes until the
// context is cancelled. A missing or unreadable directory is not an error:
// the game may simply not be installed here, so the monitor warns once and
// idles instead of failing the process.
func (m *Monitor) Run(ctx context.Context) error {
	if m.dir == "" {
		m.logger.Warn("no journal directory configured, monitor idle")
		<-ctx.Done()
		return nil
	}
	if info, err := os.Stat(m.dir); err != nil || !info.IsDir() {
		m.logger.Warn("journal directory not accessible, monitor idle",
			logging.File(m.dir),
		)
		<-ctx.Done()
		return nil
	}

	m.scanExisting(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(m.dir); err != nil {
		return err
	}
	m.logger.Info("watching journal directory",
		logging.File(m.dir),
		slog.String("pattern", m.pattern),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !m.matches(event.Name) {
				continue
			}
			m.processFile(ctx, event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			m.logger.Warn("watcher error", logging.Error(err))
		}
	}
}

func (m *Monitor) matches(path string) bool {
	ok, err := filepath.Match(m.pattern, filepath.Base(path))
	return err == nil && ok
}

// scanExisting processes files already present at startup, oldest first so
// replayed state converges in journal order.
func (m *Monitor) scanExisting(ctx context.Context) {
	paths, err := filepath.Glob(filepath.Join(m.dir, m.pattern))
	if err != nil {
		m.logger.Warn("scan journal directory", logging.Error(err))
		return
	}
	sort.Strings(paths)
	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		m.processFile(ctx, path)
	}
}

// processFile reads every line of one journal file. Unparseable lines are
// the game's problem, not ours: skip them without noise. Handler errors are
// already logged downstream, so the file keeps flowing either way.
func (m *Monitor) processFile(ctx context.Context, path string) {
	f, err := os.Open(path)
	if err != nil {
		m.logger.Warn("open journal file", logging.File(path), logging.Error(err))
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec models.JournalRecord
		if err := json.Unmarshal(line, &rec); err != nil || rec.Event == "" {
			metrics.RecordsTotal.WithLabelValues(metrics.OutcomeMalformed).Inc()
			m.logger.Debug("skipping malformed journal line", logging.File(path))
			continue
		}
		rec.Raw = append([]byte(nil), line...)

		_ = m.handle(ctx, &rec)
	}
	if err := scanner.Err(); err != nil {
		m.logger.Warn("read journal file", logging.File(path), logging.Error(err))
	}

	metrics.FilesProcessedTotal.Inc()
}
