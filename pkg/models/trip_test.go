package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTripKindForTime(t *testing.T) {
	assert.Equal(t, TripKindPickup, TripKindForTime(time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, TripKindPickup, TripKindForTime(time.Date(2024, 5, 13, 11, 59, 59, 0, time.UTC)))
	assert.Equal(t, TripKindDropOff, TripKindForTime(time.Date(2024, 5, 13, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, TripKindDropOff, TripKindForTime(time.Date(2024, 5, 13, 23, 30, 0, 0, time.UTC)))
}

func TestTripRiderLookup(t *testing.T) {
	trip := &Trip{
		Riders: []TripRider{
			{RiderRef: "rider-1"},
			{RiderRef: "rider-2"},
		},
	}

	rider := trip.Rider("rider-2")
	assert.NotNil(t, rider)
	assert.Same(t, &trip.Riders[1], rider)

	assert.Nil(t, trip.Rider("rider-missing"))
}
