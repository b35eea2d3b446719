package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// StoreSink writes notification requests straight into the notifications
// table, outside of any membership transaction.
type StoreSink struct {
	repo Repository
}

func NewStoreSink(repo Repository) (*StoreSink, error) {
	if repo == nil {
		return nil, errors.New("notifications repository required")
	}
	return &StoreSink{repo: repo}, nil
}

func (s *StoreSink) Emit(ctx context.Context, req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.repo.Create(ctx, req.ToModel())
}

// messagePublisher is satisfied by pkg/pubsub.TopicPublisher.
type messagePublisher interface {
	Publish(ctx context.Context, data []byte, attrs map[string]string) (string, error)
}

const (
	attrKind      = "kind"
	attrRequestID = "request_id"
)

// PublisherSink hands notification requests to Pub/Sub; the notification
// worker persists them.
type PublisherSink struct {
	publisher messagePublisher
}

func NewPublisherSink(publisher messagePublisher) (*PublisherSink, error) {
	if publisher == nil {
		return nil, errors.New("notification publisher required")
	}
	return &PublisherSink{publisher: publisher}, nil
}

func (s *PublisherSink) Emit(ctx context.Context, req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode notification request: %w", err)
	}
	attrs := map[string]string{
		attrKind:      req.Kind.String(),
		attrRequestID: req.ID.String(),
	}
	if _, err := s.publisher.Publish(ctx, data, attrs); err != nil {
		return fmt.Errorf("publish notification request: %w", err)
	}
	return nil
}
