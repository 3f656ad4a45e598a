package models

import "time"

type NotificationType string

const (
	NotificationTypeJourneyStarted NotificationType = "JourneyStarted"
	NotificationTypeJourneyEnded   NotificationType = "JourneyEnded"
	NotificationTypeRiderPickedUp  NotificationType = "RiderPickedUp"
	NotificationTypeRiderDropped   NotificationType = "RiderDropped"
)

// Notification is the durable record of what a guardian was told and when.
// Append-only; one record per (event, guardian) pair.
type Notification struct {
	PrimaryIdentifier string `groups:"basic"`

	GuardianRef string `groups:"internal"`
	SchoolRef   string `groups:"basic"`

	Title   string           `groups:"basic"`
	Message string           `groups:"basic"`
	Type    NotificationType `groups:"basic"`

	RiderRef string `groups:"basic"`
	RouteRef string `groups:"basic"`

	Read bool `groups:"basic"`

	CreationDateTime time.Time `groups:"basic"`
}
