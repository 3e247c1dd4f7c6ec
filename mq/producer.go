package mq

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rabbitmq/rabbitmq-stream-go-client/pkg/amqp"
	"github.com/rabbitmq/rabbitmq-stream-go-client/pkg/message"
	"github.com/rabbitmq/rabbitmq-stream-go-client/pkg/stream"

	"github.com/JWebSmart/Nft-marketplace/config"
)

// Producer publishes storefront events to a RabbitMQ super stream.
// The super stream producer is created lazily on first publish.
type Producer struct {
	env        *stream.Environment
	stream     string
	partitions int

	mu       sync.Mutex
	producer *stream.SuperStreamProducer
}

func newEnvironment(cfg config.RabbitMQConfig) (*stream.Environment, error) {
	env, err := stream.NewEnvironment(stream.NewEnvironmentOptions().
		SetHost(cfg.Host).
		SetPort(cfg.Port).
		SetVHost(cfg.VHost).
		SetUser(cfg.User).
		SetPassword(cfg.Password))
	if err != nil {
		return nil, fmt.Errorf("failed to create environment: %w", err)
	}
	return env, nil
}

// NewProducer connects to RabbitMQ. Publishing goes to cfg.Stream.
func NewProducer(cfg config.RabbitMQConfig) (*Producer, error) {
	env, err := newEnvironment(cfg)
	if err != nil {
		return nil, err
	}
	return &Producer{env: env, stream: cfg.Stream, partitions: cfg.Partitions}, nil
}

// DeclareStream creates the super stream if it does not exist yet.
// partitions below 1 default to 1.
func (p *Producer) DeclareStream(name string, partitions int) error {
	if partitions < 1 {
		partitions = 1
	}
	err := p.env.DeclareSuperStream(name,
		stream.NewPartitionsOptions(partitions).
			SetMaxLengthBytes(stream.ByteCapacity{}.GB(2)))
	if err != nil && !errors.Is(err, stream.StreamAlreadyExists) {
		return err
	}
	return nil
}

// DeleteStream removes a super stream, mainly for tests.
func (p *Producer) DeleteStream(name string) error {
	if err := p.env.DeleteSuperStream(name); err != nil {
		return fmt.Errorf("failed to delete stream: %w", err)
	}
	return nil
}

func (p *Producer) superStreamProducer() (*stream.SuperStreamProducer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.producer != nil {
		return p.producer, nil
	}

	if err := p.DeclareStream(p.stream, p.partitions); err != nil {
		return nil, fmt.Errorf("failed to declare stream: %w", err)
	}
	prod, err := p.env.NewSuperStreamProducer(p.stream,
		stream.NewSuperStreamProducerOptions(
			stream.NewHashRoutingStrategy(func(msg message.StreamMessage) string {
				if key, ok := msg.GetApplicationProperties()["routing_key"].(string); ok {
					return key
				}
				return msg.GetMessageProperties().MessageID.(string)
			}),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}
	p.producer = prod
	return prod, nil
}

// Publish sends event to the stream, routed by its RoutingKey.
func (p *Producer) Publish(event Event) error {
	prod, err := p.superStreamProducer()
	if err != nil {
		return err
	}
	msg, err := encode(event)
	if err != nil {
		return err
	}
	return prod.Send(msg)
}

func encode(event Event) (*amqp.AMQP10, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := amqp.NewMessage(data)
	msg.Properties = &amqp.MessageProperties{
		MessageID: uuid.New().String(),
		Subject:   string(event.Type),
	}
	msg.ApplicationProperties = map[string]any{"routing_key": event.RoutingKey()}
	return msg, nil
}

// Close shuts down the producer and the stream environment, returning the first error.
func (p *Producer) Close() error {
	var firstErr error
	p.mu.Lock()
	if p.producer != nil {
		firstErr = p.producer.Close()
		p.producer = nil
	}
	p.mu.Unlock()
	if p.env != nil {
		if err := p.env.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
