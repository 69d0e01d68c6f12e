package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"printshop/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 同期で配るだけのBus。forwarderのctxが切れたら購読者なし扱い。
type syncBus struct {
	mu     sync.Mutex
	fwdCtx context.Context
	onEvt  HandlerFunc
	closed bool
}

func (b *syncBus) Publish(_ context.Context, evt OrderCreated) error {
	b.mu.Lock()
	fwdCtx, onEvt := b.fwdCtx, b.onEvt
	b.mu.Unlock()

	if fwdCtx == nil || fwdCtx.Err() != nil {
		return errors.New("no subscriber")
	}
	return onEvt(fwdCtx, evt)
}

func (b *syncBus) StartForwarder(ctx context.Context, onEvt HandlerFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fwdCtx = ctx
	b.onEvt = onEvt
	return nil
}

func (b *syncBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

type recorder struct {
	mu  sync.Mutex
	ids []int64
}

func (r *recorder) add(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
}

func (r *recorder) got() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.ids...)
}

func TestPipeline_BusDrainsQueuedEventsOnClose(t *testing.T) {
	bus := &syncBus{}
	rec := &recorder{}
	gate := make(chan struct{})
	var once sync.Once

	p, err := NewPipeline(logger.NewNop(), bus, PipelineConfig{QueueSize: 16, Workers: 1, Timeout: time.Second}, func(_ context.Context, evt OrderCreated) error {
		// 最初の1件で止めて残りをキューに溜める
		once.Do(func() { <-gate })
		rec.add(evt.OrderID)
		return nil
	})
	require.NoError(t, err)

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, p.Publish(context.Background(), OrderCreated{OrderID: i}))
	}

	closed := make(chan error, 1)
	go func() { closed <- p.Close() }()
	close(gate)

	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline close did not return")
	}

	assert.ElementsMatch(t, []int64{1, 2, 3, 4, 5}, rec.got())
	assert.True(t, bus.closed)
	assert.Error(t, bus.fwdCtx.Err())
}

func TestPipeline_MemoryModeHandlesDirectly(t *testing.T) {
	rec := &recorder{}

	p, err := NewPipeline(logger.NewNop(), nil, PipelineConfig{QueueSize: 4, Workers: 2}, func(_ context.Context, evt OrderCreated) error {
		rec.add(evt.OrderID)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), OrderCreated{OrderID: 7}))
	require.NoError(t, p.Close())

	assert.Equal(t, []int64{7}, rec.got())
	assert.ErrorIs(t, p.Publish(context.Background(), OrderCreated{OrderID: 8}), ErrClosed)
}

type failingStartBus struct{ syncBus }

func (b *failingStartBus) StartForwarder(context.Context, HandlerFunc) error {
	return errors.New("subscribe failed")
}

func TestPipeline_StartForwarderError(t *testing.T) {
	_, err := NewPipeline(logger.NewNop(), &failingStartBus{}, PipelineConfig{}, func(context.Context, OrderCreated) error { return nil })
	assert.EqualError(t, err, "subscribe failed")
}
