package audit

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultQueueSize bounds how many entries may wait for the writer.
const DefaultQueueSize = 256

// writeTimeout bounds a single insert so a locked database cannot stall
// the shutdown flush.
const writeTimeout = 5 * time.Second

// Writer persists entries from a bounded queue on one goroutine, keeping
// audit inserts off the request path and serialised for SQLite. Entries that
// arrive while the queue is full are counted and dropped.
type Writer struct {
	repo    Repository
	logger  *slog.Logger
	queue   chan *AuditLog
	dropped atomic.Int64
}

// NewWriter returns a Writer over repo. A size below 1 uses DefaultQueueSize.
func NewWriter(repo Repository, logger *slog.Logger, size int) *Writer {
	if size < 1 {
		size = DefaultQueueSize
	}
	return &Writer{repo: repo, logger: logger, queue: make(chan *AuditLog, size)}
}

// Enqueue offers entry to the queue without blocking. It reports false when
// the entry was dropped.
func (w *Writer) Enqueue(entry *AuditLog) bool {
	select {
	case w.queue <- entry:
		return true
	default:
		w.dropped.Add(1)
		w.logger.Warn("audit queue full, dropping entry",
			"action", entry.Action,
			"entity_id", entry.EntityID,
		)
		return false
	}
}

// Run writes queued entries until ctx is cancelled, then flushes whatever is
// still queued and returns.
func (w *Writer) Run(ctx context.Context) {
	for {
		select {
		case entry := <-w.queue:
			w.write(entry)
		case <-ctx.Done():
			for {
				select {
				case entry := <-w.queue:
					w.write(entry)
				default:
					return
				}
			}
		}
	}
}

func (w *Writer) write(entry *AuditLog) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := w.repo.Create(ctx, entry); err != nil {
		w.logger.Error("audit write failed",
			"action", entry.Action,
			"entity_id", entry.EntityID,
			"error", err,
		)
	}
}

// Pending returns the number of queued entries.
func (w *Writer) Pending() int {
	return len(w.queue)
}

// Dropped returns how many entries were discarded on a full queue.
func (w *Writer) Dropped() int64 {
	return w.dropped.Load()
}
