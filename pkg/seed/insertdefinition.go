package seed

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/schooltrack/schooltrack/pkg/database"
	"github.com/schooltrack/schooltrack/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// seedDefinition is one YAML document of development fixtures.
type seedDefinition struct {
	Schools   []map[string]interface{} `yaml:"schools"`
	Vehicles  []models.Vehicle         `yaml:"vehicles"`
	Routes    []models.Route           `yaml:"routes"`
	Riders    []models.Rider           `yaml:"riders"`
	Guardians []models.Guardian        `yaml:"guardians"`
}

func (d *seedDefinition) Upsert() {
	for _, school := range d.Schools {
		upsertDocument("schools", bson.M{"primaryidentifier": school["primaryidentifier"]}, school)
	}
	for _, vehicle := range d.Vehicles {
		upsertDocument("vehicles", bson.M{"primaryidentifier": vehicle.PrimaryIdentifier}, vehicle)
	}
	for _, route := range d.Routes {
		upsertDocument("routes", bson.M{"primaryidentifier": route.PrimaryIdentifier}, route)
	}
	for _, rider := range d.Riders {
		upsertDocument("riders", bson.M{"primaryidentifier": rider.PrimaryIdentifier}, rider)
	}
	for _, guardian := range d.Guardians {
		upsertDocument("guardians", bson.M{"primaryidentifier": guardian.PrimaryIdentifier}, guardian)
	}
}

func upsertDocument(collectionName string, match bson.M, document interface{}) {
	collection := database.GetCollection(collectionName)

	opts := options.Update().SetUpsert(true)
	_, err := collection.UpdateOne(context.Background(), match, bson.M{"$set": document}, opts)
	if err != nil {
		log.Error().Err(err).Str("collection", collectionName).Msg("Seed record update")
	}
}
