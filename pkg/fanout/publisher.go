package fanout

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/schooltrack/schooltrack/pkg/models"
)

// EventPublisher is the low-latency delivery channel consumed by live map and
// dashboard clients.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event models.Event) error
}

// RedisPublisher broadcasts events over redis pub/sub.
type RedisPublisher struct {
	Client *redis.Client
}

func (p *RedisPublisher) Publish(ctx context.Context, topic string, event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.Client.Publish(ctx, topic, payload).Err()
}

// RecordedEvent is one publish captured by the Recorder.
type RecordedEvent struct {
	Topic string
	Event models.Event
}

// Recorder is an EventPublisher for tests.
type Recorder struct {
	mutex  sync.Mutex
	events []RecordedEvent
}

func (r *Recorder) Publish(ctx context.Context, topic string, event models.Event) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.events = append(r.events, RecordedEvent{Topic: topic, Event: event})

	return nil
}

func (r *Recorder) Events() []RecordedEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	events := make([]RecordedEvent, len(r.events))
	copy(events, r.events)

	return events
}

func (r *Recorder) EventsOnTopic(topic string) []RecordedEvent {
	var matched []RecordedEvent
	for _, recorded := range r.Events() {
		if recorded.Topic == topic {
			matched = append(matched, recorded)
		}
	}

	return matched
}
