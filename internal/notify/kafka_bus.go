package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"printshop/internal/logger"
)

type kafkaBus struct {
	log     *logger.Logger
	writer  *kafka.Writer
	brokers []string
	topic   string
	groupID string
	reader  *kafka.Reader
}

func NewKafkaBus(log *logger.Logger, brokers []string, topic string, groupID string) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if len(brokers) == 0 {
		return nil, fmt.Errorf("missing KAFKA_BROKERS")
	}
	if topic == "" {
		return nil, fmt.Errorf("missing KAFKA_TOPIC")
	}

	l := log.With("service", "KafkaOrderBus")
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}

	return &kafkaBus{
		log:     l,
		writer:  writer,
		brokers: brokers,
		topic:   topic,
		groupID: groupID,
	}, nil
}

// 同じ注文は同じパーティションへ
func (b *kafkaBus) Publish(ctx context.Context, evt OrderCreated) error {
	raw, err := encodeEvent(evt)
	if err != nil {
		return err
	}
	return b.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(evt.OrderID, 10)),
		Value: raw,
	})
}

func (b *kafkaBus) StartForwarder(ctx context.Context, onEvt HandlerFunc) error {
	if onEvt == nil {
		return fmt.Errorf("onEvt callback required")
	}
	if b.reader != nil {
		return fmt.Errorf("kafka forwarder already started")
	}

	b.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:  b.brokers,
		Topic:    b.topic,
		GroupID:  b.groupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})
	reader := b.reader

	go func() {
		for {
			m, err := reader.ReadMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, kafka.ErrGroupClosed) || errors.Is(err, io.EOF) {
					return
				}
				b.log.Warn("kafka read failed", "error", err.Error())
				if ctx.Err() != nil {
					return
				}
				time.Sleep(time.Second)
				continue
			}

			evt, err := decodeEvent(m.Value)
			if err != nil {
				b.log.Warn("bad kafka order payload", "offset", m.Offset, "error", err)
				continue
			}
			// 止める途中でも読んだ分は最後まで処理する
			hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
			if err := onEvt(hctx, evt); err != nil {
				b.log.Warn("order notification failed", "order_id", evt.OrderID, "error", err.Error())
			}
			cancel()
		}
	}()

	return nil
}

func (b *kafkaBus) Close() error {
	var errs []error
	if b.reader != nil {
		errs = append(errs, b.reader.Close())
	}
	errs = append(errs, b.writer.Close())
	return errors.Join(errs...)
}
