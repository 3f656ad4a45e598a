package store

import (
	"context"
	"errors"
	"time"

	"github.com/schooltrack/schooltrack/pkg/database"
	"github.com/schooltrack/schooltrack/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository persists everything in the shared MongoDB instance.
type MongoRepository struct{}

func NewMongoRepository() *MongoRepository {
	return &MongoRepository{}
}

func decodeOne[T any](result *mongo.SingleResult) (*T, error) {
	var document T
	err := result.Decode(&document)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &document, nil
}

func (r *MongoRepository) GetVehicle(ctx context.Context, vehicleRef string) (*models.Vehicle, error) {
	vehiclesCollection := database.GetCollection("vehicles")

	return decodeOne[models.Vehicle](vehiclesCollection.FindOne(ctx, bson.M{"primaryidentifier": vehicleRef}))
}

func (r *MongoRepository) GetVehicleByAccount(ctx context.Context, accountID string) (*models.Vehicle, error) {
	vehiclesCollection := database.GetCollection("vehicles")

	return decodeOne[models.Vehicle](vehiclesCollection.FindOne(ctx, bson.M{"accountid": accountID}))
}

func (r *MongoRepository) GetPosition(ctx context.Context, vehicleRef string) (*models.VehiclePosition, error) {
	vehiclePositionsCollection := database.GetCollection("vehicle_positions")

	return decodeOne[models.VehiclePosition](vehiclePositionsCollection.FindOne(ctx, bson.M{"vehicleref": vehicleRef}))
}

func (r *MongoRepository) UpsertPosition(ctx context.Context, position *models.VehiclePosition) error {
	vehiclePositionsCollection := database.GetCollection("vehicle_positions")

	filter := bson.M{"vehicleref": position.VehicleRef}
	update := bson.M{"$set": position}
	opts := options.Update().SetUpsert(true)

	_, err := vehiclePositionsCollection.UpdateOne(ctx, filter, update, opts)

	return err
}

func (r *MongoRepository) GetRoute(ctx context.Context, routeRef string) (*models.Route, error) {
	routesCollection := database.GetCollection("routes")

	return decodeOne[models.Route](routesCollection.FindOne(ctx, bson.M{"primaryidentifier": routeRef}))
}

func (r *MongoRepository) GetRider(ctx context.Context, riderRef string) (*models.Rider, error) {
	ridersCollection := database.GetCollection("riders")

	return decodeOne[models.Rider](ridersCollection.FindOne(ctx, bson.M{"primaryidentifier": riderRef}))
}

func (r *MongoRepository) GetRosterForRoute(ctx context.Context, route *models.Route) ([]models.Rider, error) {
	ridersCollection := database.GetCollection("riders")

	riderRefs := route.RiderRefs
	if riderRefs == nil {
		riderRefs = []string{}
	}

	query := bson.M{
		"deleted": bson.M{"$ne": true},
		"onleave": bson.M{"$ne": true},
		"$or": bson.A{
			bson.M{"routeref": route.PrimaryIdentifier},
			bson.M{"primaryidentifier": bson.M{"$in": riderRefs}},
		},
	}

	cursor, err := ridersCollection.Find(ctx, query)
	if err != nil {
		return nil, err
	}

	var riders []models.Rider
	if err := cursor.All(ctx, &riders); err != nil {
		return nil, err
	}

	return riders, nil
}

func (r *MongoRepository) GetGuardianByAccount(ctx context.Context, accountID string) (*models.Guardian, error) {
	guardiansCollection := database.GetCollection("guardians")

	return decodeOne[models.Guardian](guardiansCollection.FindOne(ctx, bson.M{"accountid": accountID}))
}

func (r *MongoRepository) GetActiveTrip(ctx context.Context, vehicleRef string) (*models.Trip, error) {
	tripsCollection := database.GetCollection("trips")

	return decodeOne[models.Trip](tripsCollection.FindOne(ctx, bson.M{
		"vehicleref": vehicleRef,
		"status":     models.TripStatusInProgress,
	}))
}

func (r *MongoRepository) InsertTrip(ctx context.Context, trip *models.Trip) error {
	tripsCollection := database.GetCollection("trips")

	_, err := tripsCollection.InsertOne(ctx, trip)

	return err
}

func (r *MongoRepository) UpdateTrip(ctx context.Context, trip *models.Trip) error {
	tripsCollection := database.GetCollection("trips")

	trip.ModificationDateTime = time.Now()

	filter := bson.M{"primaryidentifier": trip.PrimaryIdentifier}
	update := bson.M{"$set": trip}

	_, err := tripsCollection.UpdateOne(ctx, filter, update)

	return err
}

func (r *MongoRepository) InsertNotifications(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	notificationsCollection := database.GetCollection("notifications")

	documents := make([]interface{}, 0, len(notifications))
	for _, notification := range notifications {
		documents = append(documents, notification)
	}

	_, err := notificationsCollection.InsertMany(ctx, documents)

	return err
}

func (r *MongoRepository) GetNotificationsForGuardian(ctx context.Context, guardianRef string, limit int64) ([]models.Notification, error) {
	notificationsCollection := database.GetCollection("notifications")

	opts := options.Find().
		SetSort(bson.D{{Key: "creationdatetime", Value: -1}}).
		SetLimit(limit)

	cursor, err := notificationsCollection.Find(ctx, bson.M{"guardianref": guardianRef}, opts)
	if err != nil {
		return nil, err
	}

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *MongoRepository) MarkNotificationRead(ctx context.Context, notificationID string, guardianRef string) error {
	notificationsCollection := database.GetCollection("notifications")

	filter := bson.M{"primaryidentifier": notificationID, "guardianref": guardianRef}
	update := bson.M{"$set": bson.M{"read": true}}

	result, err := notificationsCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return models.NewNotFoundError("Could not find Notification")
	}

	return nil
}

func (r *MongoRepository) GetPushTargets(ctx context.Context, guardianRefs []string) ([]models.GuardianPushTarget, error) {
	guardianPushTargetsCollection := database.GetCollection("guardian_push_targets")

	cursor, err := guardianPushTargetsCollection.Find(ctx, bson.M{
		"guardianref": bson.M{"$in": guardianRefs},
	})
	if err != nil {
		return nil, err
	}

	var targets []models.GuardianPushTarget
	if err := cursor.All(ctx, &targets); err != nil {
		return nil, err
	}

	return targets, nil
}

func (r *MongoRepository) UpsertPushTarget(ctx context.Context, target *models.GuardianPushTarget) error {
	guardianPushTargetsCollection := database.GetCollection("guardian_push_targets")

	filter := bson.M{"guardianref": target.GuardianRef}
	update := bson.M{"$set": target}
	opts := options.Update().SetUpsert(true)

	_, err := guardianPushTargetsCollection.UpdateOne(ctx, filter, update, opts)

	return err
}
