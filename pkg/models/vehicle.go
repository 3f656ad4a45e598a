package models

import "time"

type Vehicle struct {
	PrimaryIdentifier string `groups:"basic"`

	CreationDateTime     time.Time `groups:"detailed"`
	ModificationDateTime time.Time `groups:"detailed"`

	Registration string `groups:"basic"`
	DriverName   string `groups:"basic"`

	// AccountID is the identity the auth layer presents for the driver of
	// this vehicle.
	AccountID string `groups:"internal"`

	SchoolRef string `groups:"basic"`
	RouteRef  string `groups:"basic"` // empty when no route is assigned

	Suspended bool `groups:"internal"`
}

// VehiclePosition is the per-vehicle position record. Speed is derived from
// the previous and current fix, never supplied by the reporter.
type VehiclePosition struct {
	VehicleRef string `groups:"basic"`
	RouteRef   string `groups:"basic"`

	Current  Location  `groups:"basic"`
	Previous *Location `groups:"detailed"`

	Speed float64 `groups:"basic"` // km/h

	Timestamp         time.Time `groups:"basic"`
	PreviousTimestamp time.Time `groups:"detailed"`

	ModificationDateTime time.Time `groups:"detailed"`
}
