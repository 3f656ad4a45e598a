package geomath

import (
	"testing"
	"time"

	"github.com/schooltrack/schooltrack/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeedKMHNonPositiveElapsed(t *testing.T) {
	a := models.NewLocation(1.0, 1.0)
	b := models.NewLocation(1.001, 1.001)

	assert.Zero(t, SpeedKMH(a, b, 0))
	assert.Zero(t, SpeedKMH(a, b, -5*time.Second))
}

func TestSpeedKMHClamped(t *testing.T) {
	// ~157 km apart in one second
	a := models.NewLocation(0, 0)
	b := models.NewLocation(1, 1)

	speed := SpeedKMH(a, b, 1*time.Second)

	assert.Equal(t, MaxSpeedKMH, speed)
}

func TestSpeedKMHShortHop(t *testing.T) {
	a := models.NewLocation(1.0, 1.0)
	b := models.NewLocation(1.001, 1.001)

	distance := DistanceMetres(a, b)
	speed := SpeedKMH(a, b, 10*time.Second)

	expected := (distance / 1000) / (10.0 / 3600.0)
	require.LessOrEqual(t, expected, MaxSpeedKMH)
	assert.InDelta(t, expected, speed, 0.0001)

	assert.GreaterOrEqual(t, speed, 0.0)
	assert.LessOrEqual(t, speed, MaxSpeedKMH)
}

func TestDistanceMetres(t *testing.T) {
	tests := []struct {
		name     string
		a        models.Location
		b        models.Location
		expected float64
		delta    float64
	}{
		{
			name:     "same point",
			a:        models.NewLocation(51.5074, -0.1278),
			b:        models.NewLocation(51.5074, -0.1278),
			expected: 0,
			delta:    0.001,
		},
		{
			name:     "one degree of latitude",
			a:        models.NewLocation(0, 0),
			b:        models.NewLocation(1, 0),
			expected: 111195,
			delta:    100,
		},
		{
			name:     "london to brighton",
			a:        models.NewLocation(51.5074, -0.1278),
			b:        models.NewLocation(50.8225, -0.1372),
			expected: 76170,
			delta:    500,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.InDelta(t, test.expected, DistanceMetres(test.a, test.b), test.delta)
		})
	}
}

func TestNearestStop(t *testing.T) {
	stops := []models.Stop{
		{Name: "Elm & 3rd", Location: models.NewLocation(51.5000, -0.1000)},
		{Name: "Oak Avenue", Location: models.NewLocation(51.5100, -0.1000)},
	}

	// ~220m south of Elm & 3rd
	nearby := models.NewLocation(51.4980, -0.1000)
	stop, found := NearestStop(stops, nearby, 500)
	require.True(t, found)
	assert.Equal(t, "Elm & 3rd", stop.Name)

	// ~2.2km away from everything
	far := models.NewLocation(51.4800, -0.1000)
	_, found = NearestStop(stops, far, 500)
	assert.False(t, found)

	_, found = NearestStop(nil, nearby, 500)
	assert.False(t, found)
}
