package store

import (
	"context"
	"sync"

	"github.com/schooltrack/schooltrack/pkg/models"
	"golang.org/x/exp/slices"
)

// MemoryRepository is an in-process Repository used by tests. It applies the
// same single-active-trip guard the database enforces through its partial
// unique index.
type MemoryRepository struct {
	mutex sync.RWMutex

	vehicles      map[string]models.Vehicle
	positions     map[string]models.VehiclePosition
	routes        map[string]models.Route
	riders        map[string]models.Rider
	guardians     map[string]models.Guardian
	trips         map[string]models.Trip
	notifications []models.Notification
	pushTargets   map[string]models.GuardianPushTarget
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		vehicles:    map[string]models.Vehicle{},
		positions:   map[string]models.VehiclePosition{},
		routes:      map[string]models.Route{},
		riders:      map[string]models.Rider{},
		guardians:   map[string]models.Guardian{},
		trips:       map[string]models.Trip{},
		pushTargets: map[string]models.GuardianPushTarget{},
	}
}

func (r *MemoryRepository) AddVehicle(vehicle models.Vehicle) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.vehicles[vehicle.PrimaryIdentifier] = vehicle
}

func (r *MemoryRepository) AddRoute(route models.Route) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.routes[route.PrimaryIdentifier] = route
}

func (r *MemoryRepository) AddRider(rider models.Rider) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.riders[rider.PrimaryIdentifier] = rider
}

func (r *MemoryRepository) AddGuardian(guardian models.Guardian) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.guardians[guardian.PrimaryIdentifier] = guardian
}

func (r *MemoryRepository) AddTrip(trip models.Trip) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.trips[trip.PrimaryIdentifier] = trip
}

// Trips returns a copy of every stored trip, for assertions.
func (r *MemoryRepository) Trips() []models.Trip {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var trips []models.Trip
	for _, trip := range r.trips {
		trips = append(trips, trip)
	}
	return trips
}

// Notifications returns every persisted notification, for assertions.
func (r *MemoryRepository) Notifications() []models.Notification {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return slices.Clone(r.notifications)
}

func (r *MemoryRepository) GetVehicle(ctx context.Context, vehicleRef string) (*models.Vehicle, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if vehicle, ok := r.vehicles[vehicleRef]; ok {
		return &vehicle, nil
	}
	return nil, nil
}

func (r *MemoryRepository) GetVehicleByAccount(ctx context.Context, accountID string) (*models.Vehicle, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, vehicle := range r.vehicles {
		if vehicle.AccountID == accountID {
			return &vehicle, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) GetPosition(ctx context.Context, vehicleRef string) (*models.VehiclePosition, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if position, ok := r.positions[vehicleRef]; ok {
		return &position, nil
	}
	return nil, nil
}

func (r *MemoryRepository) UpsertPosition(ctx context.Context, position *models.VehiclePosition) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.positions[position.VehicleRef] = *position
	return nil
}

func (r *MemoryRepository) GetRoute(ctx context.Context, routeRef string) (*models.Route, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if route, ok := r.routes[routeRef]; ok {
		return &route, nil
	}
	return nil, nil
}

func (r *MemoryRepository) GetRider(ctx context.Context, riderRef string) (*models.Rider, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if rider, ok := r.riders[riderRef]; ok {
		return &rider, nil
	}
	return nil, nil
}

func (r *MemoryRepository) GetRosterForRoute(ctx context.Context, route *models.Route) ([]models.Rider, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var riders []models.Rider
	for _, rider := range r.riders {
		if rider.Deleted || rider.OnLeave {
			continue
		}

		if rider.RouteRef == route.PrimaryIdentifier || slices.Contains(route.RiderRefs, rider.PrimaryIdentifier) {
			riders = append(riders, rider)
		}
	}

	return riders, nil
}

func (r *MemoryRepository) GetGuardianByAccount(ctx context.Context, accountID string) (*models.Guardian, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, guardian := range r.guardians {
		if guardian.AccountID == accountID {
			return &guardian, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) GetActiveTrip(ctx context.Context, vehicleRef string) (*models.Trip, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, trip := range r.trips {
		if trip.VehicleRef == vehicleRef && trip.Status == models.TripStatusInProgress {
			tripCopy := trip
			return &tripCopy, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) InsertTrip(ctx context.Context, trip *models.Trip) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if trip.Status == models.TripStatusInProgress {
		for _, existing := range r.trips {
			if existing.VehicleRef == trip.VehicleRef && existing.Status == models.TripStatusInProgress {
				return models.NewInvalidStateError("Vehicle already has a trip in progress")
			}
		}
	}

	r.trips[trip.PrimaryIdentifier] = *trip
	return nil
}

func (r *MemoryRepository) UpdateTrip(ctx context.Context, trip *models.Trip) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.trips[trip.PrimaryIdentifier]; !ok {
		return models.NewNotFoundError("Could not find Trip")
	}

	r.trips[trip.PrimaryIdentifier] = *trip
	return nil
}

func (r *MemoryRepository) InsertNotifications(ctx context.Context, notifications []models.Notification) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.notifications = append(r.notifications, notifications...)
	return nil
}

func (r *MemoryRepository) GetNotificationsForGuardian(ctx context.Context, guardianRef string, limit int64) ([]models.Notification, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var notifications []models.Notification
	for _, notification := range r.notifications {
		if notification.GuardianRef == guardianRef {
			notifications = append(notifications, notification)
		}
	}

	slices.SortFunc(notifications, func(a, b models.Notification) int {
		return b.CreationDateTime.Compare(a.CreationDateTime)
	})

	if limit > 0 && int64(len(notifications)) > limit {
		notifications = notifications[:limit]
	}

	return notifications, nil
}

func (r *MemoryRepository) MarkNotificationRead(ctx context.Context, notificationID string, guardianRef string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i := range r.notifications {
		if r.notifications[i].PrimaryIdentifier == notificationID && r.notifications[i].GuardianRef == guardianRef {
			r.notifications[i].Read = true
			return nil
		}
	}

	return models.NewNotFoundError("Could not find Notification")
}

func (r *MemoryRepository) GetPushTargets(ctx context.Context, guardianRefs []string) ([]models.GuardianPushTarget, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var targets []models.GuardianPushTarget
	for _, guardianRef := range guardianRefs {
		if target, ok := r.pushTargets[guardianRef]; ok {
			targets = append(targets, target)
		}
	}

	return targets, nil
}

func (r *MemoryRepository) UpsertPushTarget(ctx context.Context, target *models.GuardianPushTarget) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.pushTargets[target.GuardianRef] = *target
	return nil
}
