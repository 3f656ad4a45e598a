package models

import "time"

type EventType string

const (
	EventTypeVehicleLocation EventType = "VehicleLocation"
	EventTypeJourneyStarted  EventType = "JourneyStarted"
	EventTypeJourneyEnded    EventType = "JourneyEnded"
	EventTypeRiderPickedUp   EventType = "RiderPickedUp"
	EventTypeRiderDropped    EventType = "RiderDropped"
)

// Event is the envelope broadcast on the live publish/subscribe channel.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Body      interface{}
}

// PushTask is one logical push notification queued for the notify worker.
// It carries the full recipient token list; the worker chunks and sends.
type PushTask struct {
	DeviceTokens []string

	Title   string
	Message string

	Data map[string]string
}
