package geomath

import (
	"math"
	"time"

	"github.com/schooltrack/schooltrack/pkg/models"
)

const earthRadiusKilometres = 6371.0

// MaxSpeedKMH caps derived speeds. GPS jumps and clock skew can otherwise
// produce physically impossible values.
const MaxSpeedKMH = 120.0

// DistanceMetres returns the great-circle distance between two points using
// the haversine formula.
func DistanceMetres(a models.Location, b models.Location) float64 {
	latA := a.Latitude() * math.Pi / 180
	latB := b.Latitude() * math.Pi / 180
	deltaLat := (b.Latitude() - a.Latitude()) * math.Pi / 180
	deltaLon := (b.Longitude() - a.Longitude()) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKilometres * c * 1000
}

// SpeedKMH derives the scalar speed between two fixes. Non-positive elapsed
// times yield 0 and the result is clamped to [0, MaxSpeedKMH].
func SpeedKMH(previous models.Location, current models.Location, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}

	distanceKilometres := DistanceMetres(previous, current) / 1000
	speed := distanceKilometres / elapsed.Hours()

	if speed > MaxSpeedKMH {
		return MaxSpeedKMH
	}

	return speed
}

// NearestStop finds the stop closest to point within thresholdMetres. The
// second return is false when no stop qualifies.
func NearestStop(stops []models.Stop, point models.Location, thresholdMetres float64) (models.Stop, bool) {
	var nearest models.Stop
	nearestDistance := math.MaxFloat64
	found := false

	for _, stop := range stops {
		distance := DistanceMetres(stop.Location, point)
		if distance <= thresholdMetres && distance < nearestDistance {
			nearest = stop
			nearestDistance = distance
			found = true
		}
	}

	return nearest, found
}
