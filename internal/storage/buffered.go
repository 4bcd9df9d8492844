package storage

import (
	"log/slog"
	"sync"
	"time"

	"github.com/simviz/sceneclient/internal/queue"
	"github.com/simviz/sceneclient/pkg/core"
)

const defaultFlushInterval = 3 * time.Second

// Buffered wraps a backend with write-behind batching. Pose and
// contact samples accumulate in queues and drain on a timer, so a
// slow backend never stalls the update loop. Session lifecycle and
// object registration pass through synchronously.
type Buffered struct {
	inner    Backend
	logger   *slog.Logger
	interval time.Duration

	poses    *queue.Queue[core.PoseSample]
	contacts *queue.Queue[[]core.ContactSample]

	mu       sync.Mutex
	stopChan chan struct{}
	doneChan chan struct{}
	running  bool
}

// NewBuffered wraps inner with batching at the given flush interval.
// A non-positive interval uses the default.
func NewBuffered(inner Backend, interval time.Duration, logger *slog.Logger) *Buffered {
	if interval <= 0 {
		interval = defaultFlushInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Buffered{
		inner:    inner,
		logger:   logger,
		interval: interval,
		poses:    queue.New[core.PoseSample](),
		contacts: queue.New[[]core.ContactSample](),
	}
}

func (b *Buffered) Init() error {
	if err := b.inner.Init(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return nil
	}
	b.running = true
	b.stopChan = make(chan struct{})
	b.doneChan = make(chan struct{})

	go func() {
		defer close(b.doneChan)
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()
		for {
			select {
			case <-b.stopChan:
				b.flush()
				return
			case <-ticker.C:
				b.flush()
			}
		}
	}()

	return nil
}

func (b *Buffered) flush() {
	for _, p := range b.poses.GetAndEmpty() {
		sample := p
		if err := b.inner.RecordPose(&sample); err != nil {
			b.logger.Warn("buffered pose write failed", "error", err)
		}
	}
	for _, batch := range b.contacts.GetAndEmpty() {
		if err := b.inner.RecordContacts(batch); err != nil {
			b.logger.Warn("buffered contact write failed", "error", err)
		}
	}
}

func (b *Buffered) stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	close(b.stopChan)
	done := b.doneChan
	b.mu.Unlock()
	<-done
}

func (b *Buffered) Close() error {
	b.stop()
	return b.inner.Close()
}

func (b *Buffered) StartSession(s *core.Session) error {
	return b.inner.StartSession(s)
}

// EndSession drains pending samples before closing out the session.
func (b *Buffered) EndSession() error {
	b.flush()
	return b.inner.EndSession()
}

func (b *Buffered) AddObject(o *core.ObjectInfo) error {
	return b.inner.AddObject(o)
}

func (b *Buffered) RecordPose(p *core.PoseSample) error {
	b.poses.Push(*p)
	return nil
}

func (b *Buffered) RecordContacts(cs []core.ContactSample) error {
	if len(cs) == 0 {
		return nil
	}
	batch := make([]core.ContactSample, len(cs))
	copy(batch, cs)
	b.contacts.Push(batch)
	return nil
}

// RecordReinit flushes first so earlier poses land under the old
// configuration before the boundary marker.
func (b *Buffered) RecordReinit(tick, configNumber uint64) error {
	b.flush()
	return b.inner.RecordReinit(tick, configNumber)
}

// Pending returns queued sample counts, for status reporting.
func (b *Buffered) Pending() (poses, contactBatches int) {
	return b.poses.Len(), b.contacts.Len()
}
