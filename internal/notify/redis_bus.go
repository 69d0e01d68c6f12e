package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"printshop/internal/logger"
)

const (
	redisEventField    = "event"
	redisReadCount     = 16
	redisReadBlock     = 2 * time.Second
	redisStreamMaxLen  = 10000
	redisHandleTimeout = 30 * time.Second
)

// Redis Streams + consumer group。
// レプリカが何台あっても1イベントはgroup内の1台だけが処理する。
type redisBus struct {
	log      *logger.Logger
	rdb      *goredis.Client
	stream   string
	group    string
	consumer string

	done chan struct{}
}

type RedisBusConfig struct {
	Addr     string
	Stream   string
	Group    string
	Consumer string
}

func NewRedisBus(log *logger.Logger, cfg RedisBusConfig) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	stream := strings.TrimSpace(cfg.Stream)
	if stream == "" {
		stream = "orders.created"
	}
	group := strings.TrimSpace(cfg.Group)
	if group == "" {
		group = "printshop-notifier"
	}
	consumer := strings.TrimSpace(cfg.Consumer)
	if consumer == "" {
		consumer = "printshop"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	// groupは先に作っておく（起動前に積まれた分も拾う）
	err := rdb.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis group create: %w", err)
	}

	return &redisBus{
		log:      log.With("service", "RedisOrderBus", "stream", stream, "consumer", consumer),
		rdb:      rdb,
		stream:   stream,
		group:    group,
		consumer: consumer,
	}, nil
}

func (b *redisBus) Publish(ctx context.Context, evt OrderCreated) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis order bus not initialized")
	}
	raw, err := encodeEvent(evt)
	if err != nil {
		return err
	}
	return b.rdb.XAdd(ctx, &goredis.XAddArgs{
		Stream: b.stream,
		MaxLen: redisStreamMaxLen,
		Approx: true,
		Values: map[string]interface{}{redisEventField: string(raw)},
	}).Err()
}

// 自分のpending（前回ack前に落ちた分）を先に流してから新着を読む。
func (b *redisBus) StartForwarder(ctx context.Context, onEvt HandlerFunc) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis order bus not initialized")
	}
	if onEvt == nil {
		return fmt.Errorf("onEvt callback required")
	}
	if b.done != nil {
		return fmt.Errorf("redis forwarder already started")
	}
	b.done = make(chan struct{})

	go func() {
		defer close(b.done)

		pending := true
		for ctx.Err() == nil {
			from := ">"
			if pending {
				from = "0"
			}

			streams, err := b.rdb.XReadGroup(ctx, &goredis.XReadGroupArgs{
				Group:    b.group,
				Consumer: b.consumer,
				Streams:  []string{b.stream, from},
				Count:    redisReadCount,
				Block:    redisReadBlock,
			}).Result()
			if errors.Is(err, goredis.Nil) {
				continue
			}
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				b.log.Warn("redis read failed", "error", err.Error())
				time.Sleep(time.Second)
				continue
			}

			n := 0
			for _, s := range streams {
				for _, m := range s.Messages {
					n++
					b.handle(ctx, m, onEvt)
				}
			}
			if pending && n == 0 {
				pending = false
			}
		}
	}()

	return nil
}

// 通知の成否に関わらずackする（再送はしない）
func (b *redisBus) handle(ctx context.Context, m goredis.XMessage, onEvt HandlerFunc) {
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), redisHandleTimeout)
	defer cancel()

	raw, _ := m.Values[redisEventField].(string)
	evt, err := decodeEvent([]byte(raw))
	if err != nil {
		b.log.Warn("bad redis order payload", "id", m.ID, "error", err)
	} else if err := onEvt(hctx, evt); err != nil {
		b.log.Warn("order notification failed", "order_id", evt.OrderID, "error", err.Error())
	}

	if err := b.rdb.XAck(hctx, b.stream, b.group, m.ID).Err(); err != nil {
		b.log.Warn("redis ack failed", "id", m.ID, "error", err.Error())
	}
}

// forwarderのctxを止めてから呼ぶ
func (b *redisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	if b.done != nil {
		select {
		case <-b.done:
		case <-time.After(redisReadBlock + time.Second):
			b.log.Warn("redis forwarder did not stop in time")
		}
	}
	return b.rdb.Close()
}
