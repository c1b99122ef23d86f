package broker

import (
	"context"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/betbot/stockgate/internal/domain"
)

var producerLog = logrus.WithField("component", "broker_producer")

// Producer forwards newly submitted orders to the exchange-bound order topic.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a writer for the given topic.
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

// Forward serializes the envelope and publishes it keyed by order id, so the
// exchange sees updates for one order in submission order.
func (p *Producer) Forward(ctx context.Context, env *domain.OrderEnvelope) error {
	payload, err := domain.EncodeEnvelope(env)
	if err != nil {
		return errors.Wrap(err, "encode order envelope")
	}

	order := env.Order()
	msg := kafka.Message{Value: payload}
	if order != nil {
		msg.Key = []byte(order.ID)
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, "write order message")
	}
	producerLog.WithField("bytes", len(payload)).Debug("order forwarded to exchange")
	return nil
}

// Close flushes and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
