package journey

import (
	"context"
	"fmt"
	"time"

	"github.com/schooltrack/schooltrack/pkg/fanout"
	"github.com/schooltrack/schooltrack/pkg/geomath"
	"github.com/schooltrack/schooltrack/pkg/models"
	"github.com/schooltrack/schooltrack/pkg/resolve"
	"github.com/schooltrack/schooltrack/pkg/util"
)

// A named stop further away than this from the vehicle is not a plausible
// pickup/drop point; fall back to the rider's address.
const stopMatchThresholdMetres = 500.0

type TransitionResult struct {
	RiderRef string

	Timestamp time.Time
	PointName string
}

func (s *Service) Pickup(ctx context.Context, vehicleRef string, riderRef string, clientTime *time.Time) (*TransitionResult, error) {
	return s.applyRiderTransition(ctx, vehicleRef, riderRef, clientTime, models.TripRiderStatusPickedUp)
}

func (s *Service) Drop(ctx context.Context, vehicleRef string, riderRef string, clientTime *time.Time) (*TransitionResult, error) {
	return s.applyRiderTransition(ctx, vehicleRef, riderRef, clientTime, models.TripRiderStatusDropped)
}

// Skip records a rider the driver could not reach. Status only: no
// timestamps, no point lookup, and no guardian notification, so guardians are
// never falsely told a pickup or drop happened.
func (s *Service) Skip(ctx context.Context, vehicleRef string, riderRef string) (*TransitionResult, error) {
	lock := s.vehicleLocks.Get(vehicleRef)
	lock.Lock()
	defer lock.Unlock()

	trip, _, _, err := s.loadTransitionTarget(ctx, vehicleRef, riderRef)
	if err != nil {
		return nil, err
	}

	tripRider := trip.Rider(riderRef)
	tripRider.Status = models.TripRiderStatusSkipped

	if err := s.Repository.UpdateTrip(ctx, trip); err != nil {
		return nil, err
	}

	return &TransitionResult{RiderRef: riderRef}, nil
}

func (s *Service) applyRiderTransition(ctx context.Context, vehicleRef string, riderRef string, clientTime *time.Time, status models.TripRiderStatus) (*TransitionResult, error) {
	lock := s.vehicleLocks.Get(vehicleRef)
	lock.Lock()
	defer lock.Unlock()

	trip, rider, routeDetail, err := s.loadTransitionTarget(ctx, vehicleRef, riderRef)
	if err != nil {
		return nil, err
	}

	effectiveTime := util.EffectiveTime(clientTime)
	pointName := s.locatePointName(ctx, vehicleRef, routeDetail, rider)

	tripRider := trip.Rider(riderRef)
	tripRider.Status = status

	var title string
	var message string
	var notificationType models.NotificationType

	switch status {
	case models.TripRiderStatusPickedUp:
		tripRider.PickupDateTime = &effectiveTime
		tripRider.PickupPointName = pointName

		title = "Picked up"
		message = fmt.Sprintf("%s was picked up at %s", rider.Name, pointName)
		notificationType = models.NotificationTypeRiderPickedUp
	case models.TripRiderStatusDropped:
		tripRider.DropDateTime = &effectiveTime
		tripRider.DropPointName = pointName

		title = "Dropped off"
		message = fmt.Sprintf("%s was dropped off at %s", rider.Name, pointName)
		notificationType = models.NotificationTypeRiderDropped
	}

	if err := s.Repository.UpdateTrip(ctx, trip); err != nil {
		return nil, err
	}

	s.Dispatcher.NotifyGuardians(ctx, fanout.GuardianMessage{
		GuardianRefs: rider.GuardianRefs,

		SchoolRef: trip.SchoolRef,
		Title:     title,
		Message:   message,
		Type:      notificationType,

		RiderRef: riderRef,
		RouteRef: trip.RouteRef,

		Timestamp: effectiveTime,
	})

	return &TransitionResult{
		RiderRef: riderRef,

		Timestamp: effectiveTime,
		PointName: pointName,
	}, nil
}

func (s *Service) loadTransitionTarget(ctx context.Context, vehicleRef string, riderRef string) (*models.Trip, *models.Rider, *resolve.RouteDetail, error) {
	trip, err := s.Repository.GetActiveTrip(ctx, vehicleRef)
	if err != nil {
		return nil, nil, nil, err
	}
	if trip == nil {
		return nil, nil, nil, models.NewInvalidStateError("Vehicle has no trip in progress")
	}

	rider, err := s.Repository.GetRider(ctx, riderRef)
	if err != nil {
		return nil, nil, nil, err
	}
	if rider == nil {
		return nil, nil, nil, models.NewNotFoundError("Could not find Rider")
	}

	routeDetail, err := s.Resolver.RouteDetail(ctx, trip.RouteRef)
	if err != nil {
		return nil, nil, nil, err
	}

	if !routeDetail.HasRider(rider) {
		return nil, nil, nil, models.NewForbiddenError("Rider is not on the vehicle's route")
	}

	if trip.Rider(riderRef) == nil {
		return nil, nil, nil, models.NewNotFoundError("Rider is not on this trip")
	}

	return trip, rider, routeDetail, nil
}

// locatePointName names where the transition happened: the nearest route stop
// to the vehicle's current fix when one is within range, the rider's address
// otherwise.
func (s *Service) locatePointName(ctx context.Context, vehicleRef string, routeDetail *resolve.RouteDetail, rider *models.Rider) string {
	position, err := s.Repository.GetPosition(ctx, vehicleRef)
	if err == nil && position != nil {
		if stop, found := geomath.NearestStop(routeDetail.Route.Stops, position.Current, stopMatchThresholdMetres); found {
			return stop.Name
		}
	}

	return rider.Address
}
