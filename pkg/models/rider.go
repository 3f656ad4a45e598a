package models

import "time"

type Rider struct {
	PrimaryIdentifier string `groups:"basic"`

	CreationDateTime     time.Time `groups:"detailed"`
	ModificationDateTime time.Time `groups:"detailed"`

	Name      string `groups:"basic"`
	SchoolRef string `groups:"basic"`
	RouteRef  string `groups:"basic"`

	// Address is the fallback pickup/drop point name when no named stop is
	// within range.
	Address string `groups:"detailed"`

	GuardianRefs []string `groups:"internal"`

	OnLeave bool `groups:"internal"`
	Deleted bool `groups:"internal"`
}

type Guardian struct {
	PrimaryIdentifier string `groups:"basic"`

	Name      string `groups:"basic"`
	SchoolRef string `groups:"basic"`

	AccountID string `groups:"internal"`
}

// GuardianPushTarget holds the registered mobile device tokens for one
// guardian. A guardian may have several devices.
type GuardianPushTarget struct {
	GuardianRef string

	Tokens []string

	ModificationDateTime time.Time
}
