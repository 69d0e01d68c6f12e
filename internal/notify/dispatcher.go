package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"printshop/internal/logger"
)

var (
	ErrQueueFull = errors.New("notification queue full")
	ErrClosed    = errors.New("notification dispatcher closed")
)

// イベント1件を処理する
type HandlerFunc func(ctx context.Context, evt OrderCreated) error

// 注文処理から通知を切り離すキュー。
// Publishはブロックしない。
type Dispatcher struct {
	log     *logger.Logger
	queue   chan OrderCreated
	handle  HandlerFunc
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(log *logger.Logger, queueSize int, workers int, timeout time.Duration, handle HandlerFunc) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	if workers <= 0 {
		workers = 1
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	d := &Dispatcher{
		log:     log.With("service", "NotifyDispatcher"),
		queue:   make(chan OrderCreated, queueSize),
		handle:  handle,
		timeout: timeout,
	}

	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.work()
	}
	return d
}

func (d *Dispatcher) Publish(_ context.Context, evt OrderCreated) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}

	select {
	case d.queue <- evt:
		return nil
	default:
		return ErrQueueFull
	}
}

// 残りを処理してから止まる
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for evt := range d.queue {
		d.run(evt)
	}
}

func (d *Dispatcher) run(evt OrderCreated) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("notification handler panicked", "order_id", evt.OrderID, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.handle(ctx, evt); err != nil {
		d.log.Warn("notification failed", "order_id", evt.OrderID, "event_id", evt.EventID, "error", err.Error())
	}
}
