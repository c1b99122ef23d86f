// Package broker connects the gateway to the exchange simulator's Kafka
// topics: one status-update topic per exchange region, one price topic, and
// one exchange-bound order topic.
package broker

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/betbot/stockgate/pkg/config"
)

var consumerLog = logrus.WithField("component", "broker_consumer")

// StatusHandler folds a raw status-update message into order state. The
// bridge implements it.
type StatusHandler interface {
	HandleStatusUpdate(ctx context.Context, raw []byte) error
}

// PriceHandler forwards a raw price payload to clients. The price relay
// implements it.
type PriceHandler interface {
	Relay(payload []byte)
}

// Consumer runs one reader goroutine per subscribed topic. Messages within a
// topic are delivered to the handler in broker order; ordering across topics
// is not coordinated, matching the delivery guarantees the bridge expects.
type Consumer struct {
	readers []*kafka.Reader
	runs    []func(ctx context.Context, r *kafka.Reader)
	wg      sync.WaitGroup
}

// NewConsumer builds readers for every configured status topic and, when set,
// the price topic.
func NewConsumer(cfg config.BrokerConfig, status StatusHandler, prices PriceHandler) *Consumer {
	c := &Consumer{}

	for region, topic := range cfg.StatusTopics {
		reader := newReader(cfg, topic)
		log := consumerLog.WithFields(logrus.Fields{"region": region, "topic": topic})
		c.add(reader, func(ctx context.Context, r *kafka.Reader) {
			c.consumeStatus(ctx, r, status, log)
		})
	}

	if cfg.PriceTopic != "" && prices != nil {
		reader := newReader(cfg, cfg.PriceTopic)
		log := consumerLog.WithField("topic", cfg.PriceTopic)
		c.add(reader, func(ctx context.Context, r *kafka.Reader) {
			c.consumePrices(ctx, r, prices, log)
		})
	}

	return c
}

func newReader(cfg config.BrokerConfig, topic string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  250 * time.Millisecond,
		Dialer: &kafka.Dialer{
			Timeout:   30 * time.Second,
			DualStack: true,
			KeepAlive: 30 * time.Second,
		},
	})
}

func (c *Consumer) add(r *kafka.Reader, run func(ctx context.Context, r *kafka.Reader)) {
	c.readers = append(c.readers, r)
	c.runs = append(c.runs, run)
}

// Start launches all reader loops.
func (c *Consumer) Start(ctx context.Context) {
	for i, r := range c.readers {
		run := c.runs[i]
		reader := r
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			run(ctx, reader)
		}()
	}
}

func (c *Consumer) consumeStatus(ctx context.Context, r *kafka.Reader, handler StatusHandler, log *logrus.Entry) {
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithError(err).Error("read status message")
			continue
		}

		// A failed message is surfaced and dropped, never retried: the
		// offset is already committed by ReadMessage.
		if err := handler.HandleStatusUpdate(ctx, msg.Value); err != nil {
			log.WithError(err).WithField("offset", msg.Offset).Warn("status update rejected")
		}
	}
}

func (c *Consumer) consumePrices(ctx context.Context, r *kafka.Reader, handler PriceHandler, log *logrus.Entry) {
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithError(err).Error("read price message")
			continue
		}
		handler.Relay(msg.Value)
	}
}

// Close stops all readers and waits for the loops to drain.
func (c *Consumer) Close() error {
	var firstErr error
	for _, r := range c.readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.wg.Wait()
	return firstErr
}
