package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/civicsignal/petitiond/internal/domain"
)

// EventService broadcasts petition activity over redis pub/sub. A nil redis
// client disables the feature, publishes become no-ops and realtime sessions
// idle until the peer disconnects.
type EventService struct {
	rdb    *redis.Client
	logger *slog.Logger
}

func NewEventService(rdb *redis.Client, logger *slog.Logger) *EventService {
	return &EventService{
		rdb:    rdb,
		logger: logger,
	}
}

func channelFor(petitionID string) string {
	return "petition:" + petitionID
}

func (s *EventService) Publish(ctx context.Context, eventType, petitionID string, body any) error {
	if s.rdb == nil {
		return nil
	}

	event := domain.Event{
		Type:       eventType,
		PetitionID: petitionID,
		Body:       body,
		Timestamp:  time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.rdb.Publish(ctx, channelFor(petitionID), payload).Err()
}

// Realtime bridges a websocket session to redis. Each value received on
// request replaces the session's petition subscriptions; decoded events are
// delivered on response. Returns when ctx is cancelled or request closes.
func (s *EventService) Realtime(ctx context.Context, request chan []string, response chan domain.Event) {
	if s.rdb == nil {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-request:
				if !ok {
					return
				}
				s.logger.Debug("realtime subscription ignored, events disabled")
			}
		}
	}

	pubsub := s.rdb.Subscribe(ctx)
	defer pubsub.Close()

	events := pubsub.Channel()
	var subscribed []string

	for {
		select {
		case <-ctx.Done():
			return

		case ids, ok := <-request:
			if !ok {
				return
			}
			channels := make([]string, 0, len(ids))
			for _, id := range ids {
				channels = append(channels, channelFor(id))
			}
			if len(subscribed) > 0 {
				if err := pubsub.Unsubscribe(ctx, subscribed...); err != nil {
					s.logger.Error("failed to unsubscribe", slog.String("error", err.Error()))
				}
			}
			if len(channels) > 0 {
				if err := pubsub.Subscribe(ctx, channels...); err != nil {
					s.logger.Error("failed to subscribe", slog.String("error", err.Error()))
					return
				}
			}
			subscribed = channels

		case msg, ok := <-events:
			if !ok {
				return
			}
			var event domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				s.logger.Error("failed to decode event",
					slog.String("channel", msg.Channel),
					slog.String("error", err.Error()),
				)
				continue
			}
			select {
			case response <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}
