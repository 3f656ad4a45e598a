package fanout

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/schooltrack/schooltrack/pkg/models"
	"github.com/schooltrack/schooltrack/pkg/store"
	"github.com/schooltrack/schooltrack/pkg/util"
)

// PushEnqueuer hands push tasks to the notify worker. rmq.Queue satisfies it.
type PushEnqueuer interface {
	PublishBytes(payload ...[]byte) error
}

// Dispatcher fans one logical state change out to the live pub/sub channel,
// the durable notification records, and the push queue. Every delivery is
// fire-and-continue: the caller's mutation has already committed and nothing
// here may fail the caller's request.
type Dispatcher struct {
	Publisher  EventPublisher
	Repository store.Repository
	PushQueue  PushEnqueuer
}

func NewDispatcher(publisher EventPublisher, repository store.Repository, pushQueue PushEnqueuer) *Dispatcher {
	return &Dispatcher{
		Publisher:  publisher,
		Repository: repository,
		PushQueue:  pushQueue,
	}
}

// Broadcast publishes one event on each topic, logging and continuing on
// channel errors.
func (d *Dispatcher) Broadcast(ctx context.Context, topics []string, event models.Event) {
	for _, topic := range topics {
		if err := d.Publisher.Publish(ctx, topic, event); err != nil {
			log.Error().Err(err).Str("topic", topic).Str("type", string(event.Type)).Msg("Failed to publish event")
		}
	}
}

// GuardianMessage is one logical event addressed to a set of guardians.
type GuardianMessage struct {
	GuardianRefs []string

	SchoolRef string
	Title     string
	Message   string
	Type      models.NotificationType

	RiderRef string
	RouteRef string

	Timestamp time.Time
}

// NotifyGuardians persists one notification record per guardian, publishes on
// each guardian's personal topic, and queues a single push task covering all
// of their devices. Returns the number of guardians notified.
func (d *Dispatcher) NotifyGuardians(ctx context.Context, message GuardianMessage) int {
	guardianRefs := util.UniqueStrings(message.GuardianRefs)
	if len(guardianRefs) == 0 {
		return 0
	}

	notifications := make([]models.Notification, 0, len(guardianRefs))
	for _, guardianRef := range guardianRefs {
		notifications = append(notifications, models.Notification{
			PrimaryIdentifier: uuid.NewString(),

			GuardianRef: guardianRef,
			SchoolRef:   message.SchoolRef,

			Title:   message.Title,
			Message: message.Message,
			Type:    message.Type,

			RiderRef: message.RiderRef,
			RouteRef: message.RouteRef,

			CreationDateTime: message.Timestamp,
		})
	}

	if err := d.Repository.InsertNotifications(ctx, notifications); err != nil {
		log.Error().Err(err).Str("type", string(message.Type)).Msg("Failed to persist notifications")
	}

	for _, notification := range notifications {
		event := models.Event{
			Type:      models.EventType(message.Type),
			Timestamp: message.Timestamp,
			Body:      notification,
		}

		if err := d.Publisher.Publish(ctx, TopicGuardian(notification.GuardianRef), event); err != nil {
			log.Error().Err(err).Str("guardian", notification.GuardianRef).Msg("Failed to publish notification event")
		}
	}

	d.enqueuePush(ctx, guardianRefs, message)

	return len(guardianRefs)
}

func (d *Dispatcher) enqueuePush(ctx context.Context, guardianRefs []string, message GuardianMessage) {
	if d.PushQueue == nil {
		return
	}

	pushTargets, err := d.Repository.GetPushTargets(ctx, guardianRefs)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load push targets")
		return
	}

	var deviceTokens []string
	for _, pushTarget := range pushTargets {
		deviceTokens = append(deviceTokens, pushTarget.Tokens...)
	}
	deviceTokens = util.UniqueStrings(deviceTokens)

	if len(deviceTokens) == 0 {
		return
	}

	pushTask := models.PushTask{
		DeviceTokens: deviceTokens,

		Title:   message.Title,
		Message: message.Message,

		Data: map[string]string{
			"type":      string(message.Type),
			"riderref":  message.RiderRef,
			"routeref":  message.RouteRef,
			"timestamp": message.Timestamp.Format(time.RFC3339),
		},
	}

	pushTaskBytes, err := json.Marshal(pushTask)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal push task")
		return
	}

	if err := d.PushQueue.PublishBytes(pushTaskBytes); err != nil {
		log.Error().Err(err).Msg("Failed to queue push task")
	}
}
