package journey

import (
	"context"
	"testing"
	"time"

	"github.com/schooltrack/schooltrack/pkg/fanout"
	"github.com/schooltrack/schooltrack/pkg/models"
	"github.com/schooltrack/schooltrack/pkg/resolve"
	"github.com/schooltrack/schooltrack/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedService(t *testing.T) (*Service, *store.MemoryRepository, *fanout.Recorder) {
	t.Helper()

	service, repository, recorder := newTestService()
	seedRouteAndVehicle(repository)

	_, err := service.Start(context.Background(), "vehicle-1", morning())
	require.NoError(t, err)

	return service, repository, recorder
}

func TestPickupNamesNearbyStop(t *testing.T) {
	service, repository, _ := startedService(t)

	// Roughly 100m north of the Elm & 3rd stop.
	repository.UpsertPosition(context.Background(), &models.VehiclePosition{
		VehicleRef: "vehicle-1",
		RouteRef:   "route-1",
		Current:    models.NewLocation(51.5009, -0.1000),
		Timestamp:  time.Now(),
	})

	result, err := service.Pickup(context.Background(), "vehicle-1", "rider-1", morning())
	require.NoError(t, err)

	assert.Equal(t, "Elm & 3rd", result.PointName)

	trip, err := service.Status(context.Background(), "vehicle-1")
	require.NoError(t, err)
	tripRider := trip.Rider("rider-1")
	require.NotNil(t, tripRider)
	assert.Equal(t, models.TripRiderStatusPickedUp, tripRider.Status)
	assert.Equal(t, "Elm & 3rd", tripRider.PickupPointName)
	require.NotNil(t, tripRider.PickupDateTime)
}

func TestPickupFallsBackToRiderAddress(t *testing.T) {
	service, repository, _ := startedService(t)

	// Roughly 800m away, outside the stop match range.
	repository.UpsertPosition(context.Background(), &models.VehiclePosition{
		VehicleRef: "vehicle-1",
		RouteRef:   "route-1",
		Current:    models.NewLocation(51.5072, -0.1000),
		Timestamp:  time.Now(),
	})

	result, err := service.Pickup(context.Background(), "vehicle-1", "rider-1", morning())
	require.NoError(t, err)

	assert.Equal(t, "14 Elm Street", result.PointName)
}

func TestPickupWithoutPositionUsesRiderAddress(t *testing.T) {
	service, _, _ := startedService(t)

	result, err := service.Pickup(context.Background(), "vehicle-1", "rider-1", morning())
	require.NoError(t, err)

	assert.Equal(t, "14 Elm Street", result.PointName)
}

func TestPickupNotifiesOnlyRiderGuardians(t *testing.T) {
	service, repository, _ := startedService(t)

	before := len(repository.Notifications())

	_, err := service.Pickup(context.Background(), "vehicle-1", "rider-1", morning())
	require.NoError(t, err)

	notifications := repository.Notifications()
	require.Len(t, notifications, before+1)

	latest := notifications[len(notifications)-1]
	assert.Equal(t, "guardian-1", latest.GuardianRef)
	assert.Equal(t, models.NotificationTypeRiderPickedUp, latest.Type)
	assert.Equal(t, "rider-1", latest.RiderRef)
}

func TestDropRecordsDropPoint(t *testing.T) {
	service, _, _ := startedService(t)

	dropTime := morning().Add(20 * time.Minute)
	result, err := service.Drop(context.Background(), "vehicle-1", "rider-2", &dropTime)
	require.NoError(t, err)

	assert.Equal(t, dropTime, result.Timestamp)

	trip, err := service.Status(context.Background(), "vehicle-1")
	require.NoError(t, err)
	tripRider := trip.Rider("rider-2")
	assert.Equal(t, models.TripRiderStatusDropped, tripRider.Status)
	assert.Equal(t, "14 Elm Street", tripRider.DropPointName)
}

func TestSkipIsSilent(t *testing.T) {
	service, repository, _ := startedService(t)

	before := len(repository.Notifications())

	_, err := service.Skip(context.Background(), "vehicle-1", "rider-1")
	require.NoError(t, err)

	assert.Len(t, repository.Notifications(), before)

	trip, err := service.Status(context.Background(), "vehicle-1")
	require.NoError(t, err)
	tripRider := trip.Rider("rider-1")
	assert.Equal(t, models.TripRiderStatusSkipped, tripRider.Status)
	assert.Nil(t, tripRider.PickupDateTime)
	assert.Empty(t, tripRider.PickupPointName)
}

func TestPickupAfterSkipOverrides(t *testing.T) {
	service, _, _ := startedService(t)

	_, err := service.Skip(context.Background(), "vehicle-1", "rider-1")
	require.NoError(t, err)

	_, err = service.Pickup(context.Background(), "vehicle-1", "rider-1", morning())
	require.NoError(t, err)

	trip, err := service.Status(context.Background(), "vehicle-1")
	require.NoError(t, err)
	assert.Equal(t, models.TripRiderStatusPickedUp, trip.Rider("rider-1").Status)
}

func TestPickupWithoutActiveTrip(t *testing.T) {
	service, repository, _ := newTestService()
	seedRouteAndVehicle(repository)

	_, err := service.Pickup(context.Background(), "vehicle-1", "rider-1", morning())

	assert.Equal(t, models.ErrorKindInvalidState, models.KindOf(err))
}

func TestPickupUnknownRider(t *testing.T) {
	service, _, _ := startedService(t)

	_, err := service.Pickup(context.Background(), "vehicle-1", "rider-missing", morning())

	assert.Equal(t, models.ErrorKindNotFound, models.KindOf(err))
}

func TestPickupRiderOffRoute(t *testing.T) {
	service, repository, _ := startedService(t)
	repository.AddRider(models.Rider{
		PrimaryIdentifier: "rider-other",
		Name:              "Dana",
		RouteRef:          "route-other",
		GuardianRefs:      []string{"guardian-9"},
	})

	_, err := service.Pickup(context.Background(), "vehicle-1", "rider-other", morning())

	assert.Equal(t, models.ErrorKindForbidden, models.KindOf(err))
}

func TestPickupRiderJoinedAfterStart(t *testing.T) {
	// On the route, but not snapshotted into the trip.
	service, repository, _ := startedService(t)
	repository.AddRider(models.Rider{
		PrimaryIdentifier: "rider-late",
		Name:              "Eli",
		RouteRef:          "route-1",
		GuardianRefs:      []string{"guardian-9"},
	})

	_, err := service.Pickup(context.Background(), "vehicle-1", "rider-late", morning())

	assert.Equal(t, models.ErrorKindNotFound, models.KindOf(err))
}

func TestPickupSucceedsWhenPushQueueDown(t *testing.T) {
	repository := store.NewMemoryRepository()
	recorder := &fanout.Recorder{}
	dispatcher := fanout.NewDispatcher(recorder, repository, failingPushQueue{})
	service := NewService(repository, resolve.NewResolver(repository, nil), dispatcher)

	seedRouteAndVehicle(repository)
	repository.UpsertPushTarget(context.Background(), &models.GuardianPushTarget{
		GuardianRef: "guardian-1",
		Tokens:      []string{"fcm-token-0123456789-0123456789-0123456789-0123456789"},
	})

	_, err := service.Start(context.Background(), "vehicle-1", morning())
	require.NoError(t, err)

	result, err := service.Pickup(context.Background(), "vehicle-1", "rider-1", morning())
	require.NoError(t, err)
	require.NotNil(t, result)

	// The durable record still lands even though the push enqueue failed.
	var sawPickup bool
	for _, notification := range repository.Notifications() {
		if notification.Type == models.NotificationTypeRiderPickedUp {
			sawPickup = true
		}
	}
	assert.True(t, sawPickup)
}
