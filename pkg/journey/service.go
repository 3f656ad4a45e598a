// Package journey owns the per-vehicle trip lifecycle: at most one trip is in
// progress per vehicle at any time, and every lifecycle change fans out to the
// interested guardians.
package journey

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/schooltrack/schooltrack/pkg/fanout"
	"github.com/schooltrack/schooltrack/pkg/models"
	"github.com/schooltrack/schooltrack/pkg/resolve"
	"github.com/schooltrack/schooltrack/pkg/store"
	"github.com/schooltrack/schooltrack/pkg/util"
)

// A trip left in progress for longer than this is considered abandoned and is
// auto-completed by the next start attempt.
const staleTripAge = 24 * time.Hour

type Service struct {
	Repository store.Repository
	Resolver   *resolve.Resolver
	Dispatcher *fanout.Dispatcher

	vehicleLocks *vehicleLockRegistry
}

func NewService(repository store.Repository, resolver *resolve.Resolver, dispatcher *fanout.Dispatcher) *Service {
	return &Service{
		Repository: repository,
		Resolver:   resolver,
		Dispatcher: dispatcher,

		vehicleLocks: newVehicleLockRegistry(),
	}
}

type StartResult struct {
	TripRef   string
	Kind      models.TripKind
	RouteRef  string
	RouteName string

	RiderCount        int
	NotificationsSent int
}

func (s *Service) Start(ctx context.Context, vehicleRef string, clientTime *time.Time) (*StartResult, error) {
	lock := s.vehicleLocks.Get(vehicleRef)
	lock.Lock()
	defer lock.Unlock()

	vehicle, err := s.Repository.GetVehicle(ctx, vehicleRef)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, models.NewNotFoundError("Could not find Vehicle")
	}

	if vehicle.RouteRef == "" {
		return nil, models.NewInvalidStateError("Vehicle has no assigned route")
	}

	existingTrip, err := s.Repository.GetActiveTrip(ctx, vehicleRef)
	if err != nil {
		return nil, err
	}

	effectiveTime := util.EffectiveTime(clientTime)

	if existingTrip != nil {
		if time.Since(existingTrip.StartDateTime) <= staleTripAge {
			conflict := models.NewInvalidStateError("Vehicle already has a trip in progress")
			conflict.ConflictingTripRef = existingTrip.PrimaryIdentifier
			return nil, conflict
		}

		// Abandoned trip from a previous day, close it out instead of
		// blocking the new one.
		staleEndTime := time.Now()
		existingTrip.Status = models.TripStatusCompleted
		existingTrip.EndDateTime = &staleEndTime

		if err := s.Repository.UpdateTrip(ctx, existingTrip); err != nil {
			return nil, err
		}

		log.Info().
			Str("vehicle", vehicleRef).
			Str("trip", existingTrip.PrimaryIdentifier).
			Msg("Auto-completed stale trip")
	}

	routeDetail, err := s.Resolver.RouteDetail(ctx, vehicle.RouteRef)
	if err != nil {
		return nil, err
	}

	kind := models.TripKindForTime(effectiveTime)

	tripRiders := make([]models.TripRider, 0, len(routeDetail.Riders))
	for _, rider := range routeDetail.Riders {
		tripRiders = append(tripRiders, models.TripRider{
			RiderRef: rider.PrimaryIdentifier,
			Name:     rider.Name,
			Status:   models.TripRiderStatusPending,
		})
	}

	trip := &models.Trip{
		PrimaryIdentifier: uuid.NewString(),

		CreationDateTime:     time.Now(),
		ModificationDateTime: time.Now(),

		VehicleRef: vehicleRef,
		RouteRef:   routeDetail.Route.PrimaryIdentifier,
		SchoolRef:  routeDetail.Route.SchoolRef,

		Kind:   kind,
		Status: models.TripStatusInProgress,

		StartDateTime: effectiveTime,

		Riders: tripRiders,
	}

	if err := s.Repository.InsertTrip(ctx, trip); err != nil {
		return nil, err
	}

	// Guardians of riders still awaiting this kind of action. On a fresh
	// snapshot that is the whole pending roster.
	var guardianRefs []string
	for _, rider := range routeDetail.Riders {
		if trip.Rider(rider.PrimaryIdentifier).Status == models.TripRiderStatusPending {
			guardianRefs = append(guardianRefs, rider.GuardianRefs...)
		}
	}

	notificationsSent := s.Dispatcher.NotifyGuardians(ctx, fanout.GuardianMessage{
		GuardianRefs: guardianRefs,

		SchoolRef: trip.SchoolRef,
		Title:     "Bus on the way",
		Message:   fmt.Sprintf("The %s bus has started its %s run", routeDetail.Route.Name, kindLabel(kind)),
		Type:      models.NotificationTypeJourneyStarted,

		RouteRef: trip.RouteRef,

		Timestamp: effectiveTime,
	})

	s.Dispatcher.Broadcast(ctx, []string{
		fanout.TopicRoute(trip.RouteRef),
		fanout.TopicVehicle(vehicleRef),
	}, models.Event{
		Type:      models.EventTypeJourneyStarted,
		Timestamp: effectiveTime,
		Body:      trip,
	})

	return &StartResult{
		TripRef:   trip.PrimaryIdentifier,
		Kind:      kind,
		RouteRef:  trip.RouteRef,
		RouteName: routeDetail.Route.Name,

		RiderCount:        len(tripRiders),
		NotificationsSent: notificationsSent,
	}, nil
}

type EndResult struct {
	TripRef       string
	StartDateTime time.Time
	EndDateTime   time.Time

	NotificationsSent int
}

func (s *Service) End(ctx context.Context, vehicleRef string, clientTime *time.Time) (*EndResult, error) {
	lock := s.vehicleLocks.Get(vehicleRef)
	lock.Lock()
	defer lock.Unlock()

	trip, err := s.Repository.GetActiveTrip(ctx, vehicleRef)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, models.NewNotFoundError("Vehicle has no trip in progress")
	}

	effectiveTime := util.EffectiveTime(clientTime)

	trip.Status = models.TripStatusCompleted
	trip.EndDateTime = &effectiveTime

	if err := s.Repository.UpdateTrip(ctx, trip); err != nil {
		return nil, err
	}

	routeDetail, err := s.Resolver.RouteDetail(ctx, trip.RouteRef)
	if err != nil {
		return nil, err
	}

	// Trip ended is informative to every guardian on the route, not just
	// those with riders still pending.
	var guardianRefs []string
	for _, rider := range routeDetail.Riders {
		guardianRefs = append(guardianRefs, rider.GuardianRefs...)
	}

	notificationsSent := s.Dispatcher.NotifyGuardians(ctx, fanout.GuardianMessage{
		GuardianRefs: guardianRefs,

		SchoolRef: trip.SchoolRef,
		Title:     "Run finished",
		Message:   fmt.Sprintf("The %s bus has finished its %s run", routeDetail.Route.Name, kindLabel(trip.Kind)),
		Type:      models.NotificationTypeJourneyEnded,

		RouteRef: trip.RouteRef,

		Timestamp: effectiveTime,
	})

	s.Dispatcher.Broadcast(ctx, []string{
		fanout.TopicRoute(trip.RouteRef),
		fanout.TopicVehicle(vehicleRef),
	}, models.Event{
		Type:      models.EventTypeJourneyEnded,
		Timestamp: effectiveTime,
		Body:      trip,
	})

	return &EndResult{
		TripRef:       trip.PrimaryIdentifier,
		StartDateTime: trip.StartDateTime,
		EndDateTime:   effectiveTime,

		NotificationsSent: notificationsSent,
	}, nil
}

// Status returns a copy of the vehicle's in-progress trip, or nil when there
// is none.
func (s *Service) Status(ctx context.Context, vehicleRef string) (*models.Trip, error) {
	trip, err := s.Repository.GetActiveTrip(ctx, vehicleRef)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, nil
	}

	var tripCopy models.Trip
	if err := copier.CopyWithOption(&tripCopy, trip, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}

	return &tripCopy, nil
}

func kindLabel(kind models.TripKind) string {
	if kind == models.TripKindPickup {
		return "pickup"
	}

	return "drop-off"
}
