package store

import (
	"context"

	"github.com/schooltrack/schooltrack/pkg/models"
)

// Repository defines the persistence surface of the tracking core. Lookups
// return (nil, nil) when no document matches.
type Repository interface {
	GetVehicle(ctx context.Context, vehicleRef string) (*models.Vehicle, error)
	GetVehicleByAccount(ctx context.Context, accountID string) (*models.Vehicle, error)

	GetPosition(ctx context.Context, vehicleRef string) (*models.VehiclePosition, error)
	UpsertPosition(ctx context.Context, position *models.VehiclePosition) error

	GetRoute(ctx context.Context, routeRef string) (*models.Route, error)
	GetRider(ctx context.Context, riderRef string) (*models.Rider, error)

	// GetRosterForRoute returns the current non-deleted, non-on-leave riders
	// of a route. Membership is an inclusive OR of the rider's own route
	// reference and the route's explicit rider list.
	GetRosterForRoute(ctx context.Context, route *models.Route) ([]models.Rider, error)

	GetGuardianByAccount(ctx context.Context, accountID string) (*models.Guardian, error)

	GetActiveTrip(ctx context.Context, vehicleRef string) (*models.Trip, error)
	InsertTrip(ctx context.Context, trip *models.Trip) error
	UpdateTrip(ctx context.Context, trip *models.Trip) error

	InsertNotifications(ctx context.Context, notifications []models.Notification) error
	GetNotificationsForGuardian(ctx context.Context, guardianRef string, limit int64) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID string, guardianRef string) error

	GetPushTargets(ctx context.Context, guardianRefs []string) ([]models.GuardianPushTarget, error)
	UpsertPushTarget(ctx context.Context, target *models.GuardianPushTarget) error
}
