// Package tracker ingests periodic vehicle position reports, derives speed
// from consecutive fixes, and fans the updated position out to live
// subscribers.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schooltrack/schooltrack/pkg/elastic_client"
	"github.com/schooltrack/schooltrack/pkg/fanout"
	"github.com/schooltrack/schooltrack/pkg/geomath"
	"github.com/schooltrack/schooltrack/pkg/models"
	"github.com/schooltrack/schooltrack/pkg/store"
	"github.com/schooltrack/schooltrack/pkg/util"
)

type Service struct {
	Repository store.Repository
	Dispatcher *fanout.Dispatcher
}

func NewService(repository store.Repository, dispatcher *fanout.Dispatcher) *Service {
	return &Service{
		Repository: repository,
		Dispatcher: dispatcher,
	}
}

type PositionReport struct {
	Latitude  float64
	Longitude float64

	// Timestamp is the reporter's clock; authoritative when present.
	Timestamp *time.Time
}

// Accept validates a position report, shifts current to previous, derives
// speed, persists the record, and then broadcasts it. Validation failures
// abort before any mutation.
func (s *Service) Accept(ctx context.Context, vehicleRef string, report PositionReport) (*models.VehiclePosition, error) {
	if math.IsNaN(report.Latitude) || math.IsNaN(report.Longitude) {
		return nil, models.NewValidationError("Latitude and longitude must be numeric")
	}

	if !models.ValidCoordinates(report.Latitude, report.Longitude) {
		return nil, models.NewValidationError("Latitude must be within [-90, 90] and longitude within [-180, 180]")
	}

	vehicle, err := s.Repository.GetVehicle(ctx, vehicleRef)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, models.NewNotFoundError("Could not find Vehicle")
	}

	if vehicle.Suspended {
		return nil, models.NewForbiddenError("Vehicle account is suspended")
	}

	effectiveTime := util.EffectiveTime(report.Timestamp)
	currentLocation := models.NewLocation(report.Latitude, report.Longitude)

	previousPosition, err := s.Repository.GetPosition(ctx, vehicleRef)
	if err != nil {
		return nil, err
	}

	position := &models.VehiclePosition{
		VehicleRef: vehicleRef,
		RouteRef:   vehicle.RouteRef,

		Current: currentLocation,

		Timestamp: effectiveTime,

		ModificationDateTime: time.Now(),
	}

	if previousPosition != nil {
		previousLocation := previousPosition.Current
		position.Previous = &previousLocation
		position.PreviousTimestamp = previousPosition.Timestamp

		position.Speed = geomath.SpeedKMH(previousLocation, currentLocation, effectiveTime.Sub(previousPosition.Timestamp))
	}

	if err := s.Repository.UpsertPosition(ctx, position); err != nil {
		return nil, err
	}

	event := models.Event{
		Type:      models.EventTypeVehicleLocation,
		Timestamp: effectiveTime,
		Body:      position,
	}

	topics := []string{
		fanout.TopicVehicle(vehicleRef),
		fanout.TopicAllVehicles,
	}
	if vehicle.RouteRef != "" {
		topics = append([]string{fanout.TopicRoute(vehicle.RouteRef)}, topics...)
	}

	s.Dispatcher.Broadcast(ctx, topics, event)

	s.archiveLocationEvent(position)

	return position, nil
}

func (s *Service) archiveLocationEvent(position *models.VehiclePosition) {
	locationEventBytes, err := json.Marshal(position)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal location event")
		return
	}

	yearNumber, weekNumber := position.Timestamp.ISOWeek()
	indexName := fmt.Sprintf("schooltrack-location-events-%d-%d", yearNumber, weekNumber)

	elastic_client.IndexRequest(indexName, bytes.NewReader(locationEventBytes))
}
