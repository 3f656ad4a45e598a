package models

import "time"

type Route struct {
	PrimaryIdentifier string `groups:"basic"`

	CreationDateTime     time.Time `groups:"detailed"`
	ModificationDateTime time.Time `groups:"detailed"`

	Name      string `groups:"basic"`
	SchoolRef string `groups:"basic"`

	Stops []Stop `groups:"detailed"`

	// RiderRefs is the route's explicit membership list. A rider may also be
	// linked to the route through its own RouteRef; both signals are honoured.
	RiderRefs []string `groups:"internal"`
}

type Stop struct {
	Name     string   `groups:"basic"`
	Location Location `groups:"basic"`
}
