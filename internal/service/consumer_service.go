// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/PinsaraPerera/intellihack-backend/internal/dto"
	"github.com/PinsaraPerera/intellihack-backend/internal/pkg/logger"
	"github.com/PinsaraPerera/intellihack-backend/pkg/events"
	"github.com/PinsaraPerera/intellihack-backend/pkg/ingest"
	"github.com/PinsaraPerera/intellihack-backend/pkg/storage"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/cenkalti/backoff/v5"
)

const (
	consumerModule = "INGEST_CONSUMER"
	// maxAttempts bounds builds of one job that keep failing on a transient storage error.
	maxAttempts = 3
	// defaultRetryInterval is the first backoff between attempts; later ones grow exponentially.
	defaultRetryInterval = 2 * time.Second
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// VectorStoreBuilder rebuilds and publishes a user's vector store.
type VectorStoreBuilder interface {
	Build(ctx context.Context, user string) (*ingest.Result, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type consumerService struct {
	subscriber     message.Subscriber
	topicName      string
	builder        VectorStoreBuilder
	eventPublisher EventPublisher
	logger         logger.ILogger
	retryInterval  time.Duration
}

// NewConsumerService wires the ingestion worker. eventPublisher may be nil when nothing listens for build events.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	builder VectorStoreBuilder,
	eventPublisher EventPublisher,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:     subscriber,
		topicName:      topicName,
		builder:        builder,
		eventPublisher: eventPublisher,
		logger:         logger,
		retryInterval:  defaultRetryInterval,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.BuildVectorStoreMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.Username == "" {
		cs.logger.Error(consumerModule, "Invalid build message", map[string]interface{}{
			"message_id": msg.UUID,
			"payload":    string(msg.Payload),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	// gochannel redelivers a fresh copy on Nack, so attempts are counted here
	attempt := 0
	res, err := backoff.Retry(ctx, func() (*ingest.Result, error) {
		attempt++
		cs.logger.Info(consumerModule, "Building vector store", map[string]interface{}{
			"user_id":  payload.UserId,
			"username": payload.Username,
			"attempt":  attempt,
		})
		res, err := cs.builder.Build(ctx, payload.Username)
		if err != nil && !errors.Is(err, storage.ErrUnavailable) {
			return nil, backoff.Permanent(err)
		}
		return res, err
	}, backoff.WithBackOff(cs.newBackOff()), backoff.WithMaxTries(maxAttempts), backoff.WithNotify(func(err error, wait time.Duration) {
		cs.logger.Warn(consumerModule, "Vector store build failed, retrying", map[string]interface{}{
			"username": payload.Username,
			"attempt":  attempt,
			"wait_ms":  wait.Milliseconds(),
			"error":    err.Error(),
		})
	}))
	if err != nil {
		if ctx.Err() != nil {
			// shutting down; leave the job for redelivery
			msg.Nack()
			return
		}
		cs.logger.Error(consumerModule, "Vector store build failed", map[string]interface{}{
			"username": payload.Username,
			"attempts": attempt,
			"error":    err.Error(),
		})
		cs.publish(ctx, events.NewVectorStoreFailed(payload.Username, err))
		msg.Ack()
		return
	}

	cs.publish(ctx, events.NewVectorStoreReady(payload.Username, res.Prefix, res.Chunks))
	cs.logger.Info(consumerModule, "Vector store ready", map[string]interface{}{
		"username": payload.Username,
		"files":    res.Files,
		"chunks":   res.Chunks,
	})
	msg.Ack()
}

func (cs *consumerService) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cs.retryInterval
	b.MaxInterval = 30 * time.Second
	return b
}

func (cs *consumerService) publish(ctx context.Context, event events.Event) {
	if cs.eventPublisher == nil {
		return
	}
	if err := cs.eventPublisher.Publish(ctx, event); err != nil {
		cs.logger.Warn(consumerModule, "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}

// compile-time check that the pipeline satisfies the builder contract
var _ VectorStoreBuilder = (*ingest.Pipeline)(nil)
