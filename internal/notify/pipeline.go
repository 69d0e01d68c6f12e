package notify

import (
	"context"
	"time"

	"printshop/internal/logger"
)

type PipelineConfig struct {
	QueueSize int
	Workers   int
	Timeout   time.Duration
}

// 注文イベントの入口。
// busがなければworkerが直接handleし、あればworkerはbusへ流してforwarderがhandleする。
type Pipeline struct {
	dispatcher *Dispatcher
	bus        Bus
	stopFwd    context.CancelFunc
}

func NewPipeline(log *logger.Logger, bus Bus, cfg PipelineConfig, handle HandlerFunc) (*Pipeline, error) {
	if bus == nil {
		return &Pipeline{
			dispatcher: NewDispatcher(log, cfg.QueueSize, cfg.Workers, cfg.Timeout, handle),
			stopFwd:    func() {},
		}, nil
	}

	// forwarderはシグナルのctxに繋がない。止めるのはCloseだけ。
	fwdCtx, stop := context.WithCancel(context.Background())
	if err := bus.StartForwarder(fwdCtx, handle); err != nil {
		stop()
		return nil, err
	}

	return &Pipeline{
		dispatcher: NewDispatcher(log, cfg.QueueSize, cfg.Workers, cfg.Timeout, bus.Publish),
		bus:        bus,
		stopFwd:    stop,
	}, nil
}

func (p *Pipeline) Publish(ctx context.Context, evt OrderCreated) error {
	return p.dispatcher.Publish(ctx, evt)
}

// キューを流し切ってからforwarderとbusを止める
func (p *Pipeline) Close() error {
	p.dispatcher.Close()
	p.stopFwd()
	if p.bus == nil {
		return nil
	}
	return p.bus.Close()
}
