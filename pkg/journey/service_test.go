package journey

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/schooltrack/schooltrack/pkg/fanout"
	"github.com/schooltrack/schooltrack/pkg/models"
	"github.com/schooltrack/schooltrack/pkg/resolve"
	"github.com/schooltrack/schooltrack/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPushQueue struct{}

func (failingPushQueue) PublishBytes(payload ...[]byte) error {
	return errors.New("queue unavailable")
}

func newTestService() (*Service, *store.MemoryRepository, *fanout.Recorder) {
	repository := store.NewMemoryRepository()
	recorder := &fanout.Recorder{}
	dispatcher := fanout.NewDispatcher(recorder, repository, nil)
	resolver := resolve.NewResolver(repository, nil)

	return NewService(repository, resolver, dispatcher), repository, recorder
}

func seedRouteAndVehicle(repository *store.MemoryRepository) {
	repository.AddVehicle(models.Vehicle{
		PrimaryIdentifier: "vehicle-1",
		SchoolRef:         "school-1",
		RouteRef:          "route-1",
	})
	repository.AddRoute(models.Route{
		PrimaryIdentifier: "route-1",
		Name:              "Elmwood Loop",
		SchoolRef:         "school-1",
		RiderRefs:         []string{"rider-1", "rider-2"},
		Stops: []models.Stop{
			{Name: "Elm & 3rd", Location: models.NewLocation(51.5000, -0.1000)},
		},
	})
	repository.AddRider(models.Rider{
		PrimaryIdentifier: "rider-1",
		Name:              "Ada",
		RouteRef:          "route-1",
		Address:           "14 Elm Street",
		GuardianRefs:      []string{"guardian-1"},
	})
	repository.AddRider(models.Rider{
		PrimaryIdentifier: "rider-2",
		Name:              "Ben",
		RouteRef:          "route-1",
		Address:           "14 Elm Street",
		GuardianRefs:      []string{"guardian-1"},
	})
}

func morning() *time.Time {
	t := time.Date(2024, 5, 13, 7, 30, 0, 0, time.UTC)
	return &t
}

func afternoon() *time.Time {
	t := time.Date(2024, 5, 13, 15, 30, 0, 0, time.UTC)
	return &t
}

func TestStartCreatesTrip(t *testing.T) {
	service, repository, _ := newTestService()
	seedRouteAndVehicle(repository)

	result, err := service.Start(context.Background(), "vehicle-1", morning())
	require.NoError(t, err)

	assert.Equal(t, models.TripKindPickup, result.Kind)
	assert.Equal(t, "route-1", result.RouteRef)
	assert.Equal(t, "Elmwood Loop", result.RouteName)
	assert.Equal(t, 2, result.RiderCount)

	trip, err := service.Status(context.Background(), "vehicle-1")
	require.NoError(t, err)
	require.NotNil(t, trip)
	assert.Equal(t, models.TripStatusInProgress, trip.Status)
	require.Len(t, trip.Riders, 2)
	for _, tripRider := range trip.Riders {
		assert.Equal(t, models.TripRiderStatusPending, tripRider.Status)
	}
}

func TestStartAfternoonIsDropOff(t *testing.T) {
	service, repository, _ := newTestService()
	seedRouteAndVehicle(repository)

	result, err := service.Start(context.Background(), "vehicle-1", afternoon())
	require.NoError(t, err)

	assert.Equal(t, models.TripKindDropOff, result.Kind)
}

func TestStartRequiresAssignedRoute(t *testing.T) {
	service, repository, _ := newTestService()
	repository.AddVehicle(models.Vehicle{PrimaryIdentifier: "vehicle-unassigned"})

	_, err := service.Start(context.Background(), "vehicle-unassigned", morning())

	assert.Equal(t, models.ErrorKindInvalidState, models.KindOf(err))
}

func TestStartUnknownVehicle(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.Start(context.Background(), "vehicle-unknown", morning())

	assert.Equal(t, models.ErrorKindNotFound, models.KindOf(err))
}

func TestStartSkipsDeletedAndOnLeaveRiders(t *testing.T) {
	service, repository, _ := newTestService()
	seedRouteAndVehicle(repository)
	repository.AddRider(models.Rider{
		PrimaryIdentifier: "rider-deleted",
		RouteRef:          "route-1",
		Deleted:           true,
	})
	repository.AddRider(models.Rider{
		PrimaryIdentifier: "rider-away",
		RouteRef:          "route-1",
		OnLeave:           true,
	})

	result, err := service.Start(context.Background(), "vehicle-1", morning())
	require.NoError(t, err)

	assert.Equal(t, 2, result.RiderCount)
}

func TestStartDeduplicatesGuardians(t *testing.T) {
	// Both riders share guardian-1, who must be told exactly once.
	service, repository, _ := newTestService()
	seedRouteAndVehicle(repository)

	result, err := service.Start(context.Background(), "vehicle-1", morning())
	require.NoError(t, err)

	assert.Equal(t, 1, result.NotificationsSent)

	notifications := repository.Notifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, "guardian-1", notifications[0].GuardianRef)
	assert.Equal(t, models.NotificationTypeJourneyStarted, notifications[0].Type)
}

func TestStartRejectsFreshActiveTrip(t *testing.T) {
	service, repository, _ := newTestService()
	seedRouteAndVehicle(repository)
	repository.AddTrip(models.Trip{
		PrimaryIdentifier: "trip-existing",
		VehicleRef:        "vehicle-1",
		RouteRef:          "route-1",
		Status:            models.TripStatusInProgress,
		StartDateTime:     time.Now().Add(-3 * time.Hour),
	})

	_, err := service.Start(context.Background(), "vehicle-1", morning())

	var domainError *models.Error
	require.ErrorAs(t, err, &domainError)
	assert.Equal(t, models.ErrorKindInvalidState, domainError.Kind)
	assert.Equal(t, "trip-existing", domainError.ConflictingTripRef)
}

func TestStartAutoCompletesStaleTrip(t *testing.T) {
	service, repository, _ := newTestService()
	seedRouteAndVehicle(repository)
	repository.AddTrip(models.Trip{
		PrimaryIdentifier: "trip-stale",
		VehicleRef:        "vehicle-1",
		RouteRef:          "route-1",
		Status:            models.TripStatusInProgress,
		StartDateTime:     time.Now().Add(-25 * time.Hour),
	})

	result, err := service.Start(context.Background(), "vehicle-1", morning())
	require.NoError(t, err)
	assert.NotEqual(t, "trip-stale", result.TripRef)

	var staleTrip *models.Trip
	for _, trip := range repository.Trips() {
		if trip.PrimaryIdentifier == "trip-stale" {
			tripCopy := trip
			staleTrip = &tripCopy
		}
	}
	require.NotNil(t, staleTrip)
	assert.Equal(t, models.TripStatusCompleted, staleTrip.Status)
	assert.NotNil(t, staleTrip.EndDateTime)
}

func TestConcurrentStartsCreateExactlyOneTrip(t *testing.T) {
	service, repository, _ := newTestService()
	seedRouteAndVehicle(repository)

	const attempts = 16

	// Client clocks near the server clock, so the freshly created trip is
	// never treated as stale by the competing starts.
	startTime := time.Now()

	var waitGroup sync.WaitGroup
	successes := make(chan string, attempts)

	for i := 0; i < attempts; i++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()

			result, err := service.Start(context.Background(), "vehicle-1", &startTime)
			if err == nil {
				successes <- result.TripRef
			}
		}()
	}

	waitGroup.Wait()
	close(successes)

	var created []string
	for tripRef := range successes {
		created = append(created, tripRef)
	}
	require.Len(t, created, 1)

	inProgress := 0
	for _, trip := range repository.Trips() {
		if trip.Status == models.TripStatusInProgress {
			inProgress++
		}
	}
	assert.Equal(t, 1, inProgress)
}

func TestEndCompletesTrip(t *testing.T) {
	service, repository, recorder := newTestService()
	seedRouteAndVehicle(repository)

	started, err := service.Start(context.Background(), "vehicle-1", morning())
	require.NoError(t, err)

	endTime := morning().Add(45 * time.Minute)
	result, err := service.End(context.Background(), "vehicle-1", &endTime)
	require.NoError(t, err)

	assert.Equal(t, started.TripRef, result.TripRef)
	assert.Equal(t, endTime, result.EndDateTime)
	assert.Equal(t, 1, result.NotificationsSent)

	trip, err := service.Status(context.Background(), "vehicle-1")
	require.NoError(t, err)
	assert.Nil(t, trip)

	routeEvents := recorder.EventsOnTopic(fanout.TopicRoute("route-1"))
	var sawEnded bool
	for _, recorded := range routeEvents {
		if recorded.Event.Type == models.EventTypeJourneyEnded {
			sawEnded = true
		}
	}
	assert.True(t, sawEnded)
}

func TestEndWithoutActiveTrip(t *testing.T) {
	service, repository, _ := newTestService()
	seedRouteAndVehicle(repository)

	_, err := service.End(context.Background(), "vehicle-1", nil)

	assert.Equal(t, models.ErrorKindNotFound, models.KindOf(err))
}
