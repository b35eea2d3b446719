package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/squadlog/squadlog-backend/pkg/db"
	"github.com/squadlog/squadlog-backend/pkg/logger"
)

const notificationConsumerName = "notification-worker"

type claimer interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, id uuid.UUID) (bool, error)
	Release(ctx context.Context, consumer string, id uuid.UUID) error
}

// Consumer persists notification requests published by PublisherSink.
type Consumer struct {
	sink         Sink
	subscription *pubsub.Subscriber
	idempotency  claimer
	logg         *logger.Logger
}

// NewConsumer builds the notification worker loop.
func NewConsumer(sink Sink, subscription *pubsub.Subscriber, manager claimer, logg *logger.Logger) (*Consumer, error) {
	if sink == nil {
		return nil, fmt.Errorf("notification sink required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("notification subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		sink:         sink,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.process(ctx, msg.ID, msg.Data).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	nack bool
}

func (c *Consumer) process(ctx context.Context, messageID string, data []byte) processResult {
	logCtx := c.logg.WithField(ctx, "message_id", messageID)

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		c.logg.Error(logCtx, "failed to decode notification request", err)
		return processResult{}
	}
	if err := req.Validate(); err != nil {
		c.logg.Error(logCtx, "dropping invalid notification request", err)
		return processResult{}
	}

	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"request_id": req.ID.String(),
		"kind":       req.Kind.String(),
		"user_id":    req.RecipientID.String(),
	})

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, notificationConsumerName, req.ID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "notification request already processed")
		return processResult{}
	}

	if err := c.sink.Emit(ctx, req); err != nil {
		if db.IsUniqueViolation(err) {
			c.logg.Info(logCtx, "notification already stored")
			return processResult{}
		}
		c.logg.Error(logCtx, "failed to store notification", err)
		if relErr := c.idempotency.Release(ctx, notificationConsumerName, req.ID); relErr != nil {
			c.logg.Error(logCtx, "failed to release idempotency claim", errors.Join(err, relErr))
		}
		return processResult{nack: true}
	}

	c.logg.Info(logCtx, "notification stored")
	return processResult{}
}
