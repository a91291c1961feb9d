package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/taskboard/internal/queue"
	"github.com/iliyamo/taskboard/internal/service"
)

// slowPublisher blocks every publish until release is closed.
type slowPublisher struct {
	release chan struct{}
	err     error

	mu     sync.Mutex
	events []queue.TaskAddedEvent
}

func (p *slowPublisher) PublishTaskAdded(ctx context.Context, ev queue.TaskAddedEvent) error {
	select {
	case <-p.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *slowPublisher) published() []queue.TaskAddedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]queue.TaskAddedEvent(nil), p.events...)
}

func TestDispatcher_WaitDrainsPendingEvents(t *testing.T) {
	pub := &slowPublisher{release: make(chan struct{})}
	d := service.NewDispatcher(pub, time.Second, nil)

	for i := 0; i < 3; i++ {
		d.Dispatch(queue.TaskAddedEvent{Text: "t", Position: i, Total: i + 1})
	}

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Wait(short), context.DeadlineExceeded, "publishes are still blocked")

	close(pub.release)
	ctx, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	require.NoError(t, d.Wait(ctx))
	assert.Len(t, pub.published(), 3)
}

func TestDispatcher_LogsFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	release := make(chan struct{})
	close(release)
	d := service.NewDispatcher(&slowPublisher{release: release, err: errors.New("broker down")}, time.Second, zap.New(core))

	d.Dispatch(queue.TaskAddedEvent{Text: "t", Position: 7, Total: 8})
	require.NoError(t, d.Wait(context.Background()))

	entries := logs.FilterMessage("publish task-added event failed").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, 7, entries[0].ContextMap()["position"])
}

func TestDispatcher_PublishTimeout(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := service.NewDispatcher(&slowPublisher{release: make(chan struct{})}, 30*time.Millisecond, zap.New(core))

	d.Dispatch(queue.TaskAddedEvent{Text: "t"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Wait(ctx), "a stuck publish is cut off by its own timeout")
	assert.Equal(t, 1, logs.FilterMessage("publish task-added event failed").Len())
}

func TestDispatcher_NilPublisher(t *testing.T) {
	d := service.NewDispatcher(nil, 0, nil)
	d.Dispatch(queue.TaskAddedEvent{Text: "dropped"})
	assert.NoError(t, d.Wait(context.Background()))
}
