package models

import "time"

type TripStatus string

const (
	TripStatusInProgress TripStatus = "in_progress"
	TripStatusCompleted  TripStatus = "completed"
	TripStatusCancelled  TripStatus = "cancelled"
)

type TripKind string

const (
	TripKindPickup  TripKind = "pickup"
	TripKindDropOff TripKind = "drop_off"
)

// TripKindForTime decides the kind of a freshly started trip from the local
// hour of the effective start time. Morning runs pick riders up, afternoon
// runs drop them off.
func TripKindForTime(t time.Time) TripKind {
	if t.Hour() < 12 {
		return TripKindPickup
	}
	return TripKindDropOff
}

type Trip struct {
	PrimaryIdentifier string `groups:"basic"`

	CreationDateTime     time.Time `groups:"detailed"`
	ModificationDateTime time.Time `groups:"detailed"`

	VehicleRef string `groups:"basic"`
	RouteRef   string `groups:"basic"`
	SchoolRef  string `groups:"basic"`

	Kind   TripKind   `groups:"basic"`
	Status TripStatus `groups:"basic"`

	StartDateTime time.Time  `groups:"basic"`
	EndDateTime   *time.Time `groups:"basic"`

	Riders []TripRider `groups:"basic"`
}

type TripRiderStatus string

const (
	TripRiderStatusPending  TripRiderStatus = "pending"
	TripRiderStatusPickedUp TripRiderStatus = "picked_up"
	TripRiderStatusDropped  TripRiderStatus = "dropped"
	TripRiderStatusSkipped  TripRiderStatus = "skipped"
)

// TripRider is a snapshot of one roster member taken when the trip started.
type TripRider struct {
	RiderRef string `groups:"basic"`
	Name     string `groups:"basic"`

	Status TripRiderStatus `groups:"basic"`

	PickupDateTime *time.Time `groups:"basic"`
	DropDateTime   *time.Time `groups:"basic"`

	PickupPointName string `groups:"basic"`
	DropPointName   string `groups:"basic"`
}

// Rider returns the sub-record for riderRef, or nil when the rider is not on
// this trip.
func (t *Trip) Rider(riderRef string) *TripRider {
	for i := range t.Riders {
		if t.Riders[i].RiderRef == riderRef {
			return &t.Riders[i]
		}
	}
	return nil
}
