package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes() {
	createFleetIndexes()
	createTripIndexes()
	createNotificationIndexes()
}

func createFleetIndexes() {
	vehiclesCollection := GetCollection("vehicles")
	vehiclesIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "accountid", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "routeref", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := vehiclesCollection.Indexes().CreateMany(context.Background(), vehiclesIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}

	vehiclePositionsCollection := GetCollection("vehicle_positions")
	vehiclePositionsIndex := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "vehicleref", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "current.coordinates", Value: "2d"}},
		},
	}

	opts = options.CreateIndexes()
	_, err = vehiclePositionsCollection.Indexes().CreateMany(context.Background(), vehiclePositionsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}

	routesCollection := GetCollection("routes")
	routesIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "riderrefs", Value: 1}},
		},
	}

	opts = options.CreateIndexes()
	_, err = routesCollection.Indexes().CreateMany(context.Background(), routesIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}

	ridersCollection := GetCollection("riders")
	ridersIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "routeref", Value: 1}},
		},
	}

	opts = options.CreateIndexes()
	_, err = ridersCollection.Indexes().CreateMany(context.Background(), ridersIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}

	guardiansCollection := GetCollection("guardians")
	guardiansIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "accountid", Value: 1}},
		},
	}

	opts = options.CreateIndexes()
	_, err = guardiansCollection.Indexes().CreateMany(context.Background(), guardiansIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createTripIndexes() {
	tripsCollection := GetCollection("trips")
	activeTripIndexName := "OneActiveTripPerVehicle"
	_, err := tripsCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "vehicleref", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			// Backstop for the single-active-trip invariant
			Options: options.Index().
				SetName(activeTripIndexName).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": "in_progress"}),
			Keys: bson.D{{Key: "vehicleref", Value: 1}},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createNotificationIndexes() {
	notificationsCollection := GetCollection("notifications")
	_, err := notificationsCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "guardianref", Value: 1},
				{Key: "creationdatetime", Value: -1},
			},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}

	guardianPushTargetsCollection := GetCollection("guardian_push_targets")
	_, err = guardianPushTargetsCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "guardianref", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
