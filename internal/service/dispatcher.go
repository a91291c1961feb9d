package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	q "github.com/iliyamo/taskboard/internal/queue"
)

// DefaultPublishTimeout bounds a single task-added publish.
const DefaultPublishTimeout = 5 * time.Second

// Dispatcher publishes events off the request path and keeps count of the
// publishes still running so shutdown can wait for them.
type Dispatcher struct {
	pub     TaskEventPublisher
	log     *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher wraps pub.  A nil publisher drops events and a non-positive
// timeout falls back to DefaultPublishTimeout.
func NewDispatcher(pub TaskEventPublisher, timeout time.Duration, log *zap.Logger) *Dispatcher {
	if pub == nil {
		pub = NopPublisher{}
	}
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{pub: pub, log: log, timeout: timeout}
}

// Dispatch publishes ev in the background.  Failures are logged, never
// returned: the task is already stored.
func (d *Dispatcher) Dispatch(ev q.TaskAddedEvent) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.pub.PublishTaskAdded(ctx, ev); err != nil {
			d.log.Warn("publish task-added event failed", zap.Error(err), zap.Int("position", ev.Position))
		}
	}()
}

// Wait blocks until every dispatched publish has finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
