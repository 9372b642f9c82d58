package persist

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rangefire/rangefire/internal/world"
)

// ShotWriter stores batches of shots for a session.
type ShotWriter interface {
	WriteShots(ctx context.Context, session uuid.UUID, recs []world.ShotRecord) error
}

// ShotLog is a world.ShotSink that hands shots to a background writer.
// Record never blocks the frame: when the queue is full the shot is dropped
// and counted.
type ShotLog struct {
	writer   ShotWriter
	session  uuid.UUID
	queue    chan world.ShotRecord
	interval time.Duration
	dropped  atomic.Int64
	written  atomic.Int64
	log      *zap.Logger
}

func NewShotLog(writer ShotWriter, session uuid.UUID, queueSize int, interval time.Duration, log *zap.Logger) *ShotLog {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &ShotLog{
		writer:   writer,
		session:  session,
		queue:    make(chan world.ShotRecord, queueSize),
		interval: interval,
		log:      log.With(zap.Stringer("session", session)),
	}
}

func (l *ShotLog) Session() uuid.UUID { return l.session }
func (l *ShotLog) Dropped() int64     { return l.dropped.Load() }
func (l *ShotLog) Written() int64     { return l.written.Load() }

// Record queues rec for the next flush.
func (l *ShotLog) Record(rec world.ShotRecord) {
	select {
	case l.queue <- rec:
	default:
		if l.dropped.Add(1) == 1 {
			l.log.Warn("shot log queue full, dropping shots")
		}
	}
}

// Run flushes queued shots every interval until ctx is cancelled, then
// drains the queue once more with a short deadline.
func (l *ShotLog) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	batch := make([]world.ShotRecord, 0, 64)
	for {
		select {
		case <-ctx.Done():
			batch = l.drain(batch)
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			l.flush(flushCtx, batch)
			cancel()
			return nil
		case rec := <-l.queue:
			batch = append(batch, rec)
		case <-ticker.C:
			batch = l.drain(batch)
			batch = l.flush(ctx, batch)
		}
	}
}

func (l *ShotLog) drain(batch []world.ShotRecord) []world.ShotRecord {
	for {
		select {
		case rec := <-l.queue:
			batch = append(batch, rec)
		default:
			return batch
		}
	}
}

// flush writes batch and returns it emptied. A failed batch is logged and
// discarded; shots are a record, not game state.
func (l *ShotLog) flush(ctx context.Context, batch []world.ShotRecord) []world.ShotRecord {
	if len(batch) == 0 {
		return batch
	}
	if err := l.writer.WriteShots(ctx, l.session, batch); err != nil {
		l.log.Error("write shots", zap.Int("count", len(batch)), zap.Error(err))
	} else {
		l.written.Add(int64(len(batch)))
		l.log.Debug("shots written", zap.Int("count", len(batch)))
	}
	clear(batch)
	return batch[:0]
}
