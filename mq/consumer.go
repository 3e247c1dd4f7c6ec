package mq

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rabbitmq/rabbitmq-stream-go-client/pkg/amqp"
	"github.com/rabbitmq/rabbitmq-stream-go-client/pkg/stream"

	"github.com/JWebSmart/Nft-marketplace/config"
)

// Consumer reads storefront events from the super stream.
type Consumer struct {
	env      *stream.Environment
	stream   string
	consumer *stream.SuperStreamConsumer
	logger   *slog.Logger
}

func NewConsumer(cfg config.RabbitMQConfig, logger *slog.Logger) (*Consumer, error) {
	env, err := newEnvironment(cfg)
	if err != nil {
		return nil, err
	}
	return &Consumer{
		env:    env,
		stream: cfg.Stream,
		logger: logger.With("component", "mq-consumer"),
	}, nil
}

// parseSubscription maps a subscription type to a stream offset and a
// minimum block height.
//   - "first": from the first message in the stream.
//   - "last": from the latest message.
//   - "height:<n>": from the first message, skipping events below height n.
func parseSubscription(subscriptionType string) (stream.OffsetSpecification, int64, error) {
	switch {
	case subscriptionType == "first":
		return stream.OffsetSpecification{}.First(), -1, nil
	case subscriptionType == "last":
		return stream.OffsetSpecification{}.Last(), -1, nil
	case strings.HasPrefix(subscriptionType, "height:"):
		raw := strings.TrimPrefix(subscriptionType, "height:")
		height, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || height < 0 {
			return stream.OffsetSpecification{}, 0, errors.New("invalid height format; expected 'height:<number>'")
		}
		return stream.OffsetSpecification{}.First(), height, nil
	default:
		return stream.OffsetSpecification{}, 0, fmt.Errorf("unknown subscription type %q", subscriptionType)
	}
}

// decode returns the event in message and whether it passes the height filter.
func decode(message *amqp.Message, startHeight int64) (Event, bool, error) {
	var event Event
	if err := json.Unmarshal(message.GetData(), &event); err != nil {
		return event, false, err
	}
	return event, event.Height >= startHeight, nil
}

// Subscribe starts a single active consumer group named consumerName and
// calls handler for every event.
func (c *Consumer) Subscribe(subscriptionType, consumerName string, handler func(Event)) error {
	offsetSpec, startHeight, err := parseSubscription(subscriptionType)
	if err != nil {
		return err
	}

	handleMessages := func(_ stream.ConsumerContext, message *amqp.Message) {
		event, ok, err := decode(message, startHeight)
		if err != nil {
			c.logger.Warn("dropping malformed event", slog.Any("error", err))
			return
		}
		if ok {
			handler(event)
		}
	}

	sac := stream.NewSingleActiveConsumer(
		func(partition string, isActive bool) stream.OffsetSpecification {
			return offsetSpec
		},
	)

	consumer, err := c.env.NewSuperStreamConsumer(
		c.stream,
		handleMessages,
		stream.NewSuperStreamConsumerOptions().
			SetSingleActiveConsumer(sac.SetEnabled(true)).
			SetConsumerName(consumerName).
			SetOffset(offsetSpec),
	)
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}
	c.consumer = consumer
	c.logger.Info("subscribed to stream",
		slog.String("stream", c.stream),
		slog.String("consumer", consumerName),
		slog.String("from", subscriptionType))
	return nil
}

// Close closes the consumer and the environment.
func (c *Consumer) Close() error {
	var firstErr error
	if c.consumer != nil {
		firstErr = c.consumer.Close()
	}
	if c.env != nil {
		if err := c.env.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
