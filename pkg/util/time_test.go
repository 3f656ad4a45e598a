package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveTimePrefersClientClock(t *testing.T) {
	clientTime := time.Date(2024, 5, 13, 7, 30, 0, 0, time.UTC)

	assert.Equal(t, clientTime, EffectiveTime(&clientTime))
}

func TestEffectiveTimeFallsBackToServerClock(t *testing.T) {
	before := time.Now()
	effective := EffectiveTime(nil)

	assert.False(t, effective.Before(before))
	assert.False(t, effective.After(time.Now()))
}

func TestEffectiveTimeIgnoresZeroValue(t *testing.T) {
	var zero time.Time

	assert.False(t, EffectiveTime(&zero).IsZero())
}
