package service

import (
	"context"
	"sync"
	"time"

	"bistro/internal/logger"
	"bistro/internal/metrics"
	"bistro/internal/model"
	"bistro/internal/repository"
)

const (
	settlementLogBatchSize     = 10
	settlementLogFlushInterval = time.Second
	settlementLogBuffer        = 100
	settlementLogWriteTimeout  = 5 * time.Second
)

// SettlementLogger writes settlement audit rows off the request path.
// Rows are batched and flushed when the batch fills or on a timer.
type SettlementLogger struct {
	repo      repository.SettlementLogRepository
	batchSize int
	interval  time.Duration

	mu      sync.RWMutex
	started bool
	closed  bool
	entries chan model.SettlementLog
	done    chan struct{}
}

// NewSettlementLogger creates a logger; call Start before recording.
func NewSettlementLogger(repo repository.SettlementLogRepository) *SettlementLogger {
	return newSettlementLogger(repo, settlementLogBatchSize, settlementLogFlushInterval)
}

func newSettlementLogger(repo repository.SettlementLogRepository, batchSize int, interval time.Duration) *SettlementLogger {
	return &SettlementLogger{
		repo:      repo,
		batchSize: batchSize,
		interval:  interval,
		entries:   make(chan model.SettlementLog, settlementLogBuffer),
		done:      make(chan struct{}),
	}
}

// Start launches the worker. It exits when ctx is cancelled or Close is called,
// flushing whatever is batched.
func (l *SettlementLogger) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started || l.closed {
		return
	}
	l.started = true
	go l.run(ctx)
}

// Record queues entry without blocking. When the buffer is full the row is
// written synchronously.
func (l *SettlementLogger) Record(ctx context.Context, entry model.SettlementLog) {
	if l == nil {
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		l.write(ctx, []model.SettlementLog{entry})
		return
	}

	select {
	case l.entries <- entry:
	default:
		l.write(ctx, []model.SettlementLog{entry})
	}
}

// Close stops accepting rows and waits for the worker to flush.
func (l *SettlementLogger) Close() {
	if l == nil {
		return
	}
	l.mu.Lock()
	started := l.started
	if !l.closed {
		l.closed = true
		close(l.entries)
	}
	l.mu.Unlock()
	if started {
		<-l.done
	}
}

func (l *SettlementLogger) run(ctx context.Context) {
	defer close(l.done)

	batch := make([]model.SettlementLog, 0, l.batchSize)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		l.write(context.Background(), batch)
		batch = make([]model.SettlementLog, 0, l.batchSize)
	}

	for {
		select {
		case entry, ok := <-l.entries:
			if !ok {
				flush()
				return
			}
			batch = append(batch, entry)
			if len(batch) >= l.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			flush()
			return
		}
	}
}

func (l *SettlementLogger) write(ctx context.Context, rows []model.SettlementLog) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settlementLogWriteTimeout)
	defer cancel()

	var err error
	if len(rows) == 1 {
		err = l.repo.Create(ctx, &rows[0])
	} else {
		err = l.repo.CreateBatch(ctx, rows)
	}
	if err != nil {
		metrics.SettlementLogDropped.Add(float64(len(rows)))
		logger.L.Error("settlement log write failed", "rows", len(rows), "error", err)
	}
}
