package registry

import (
	"context"
	"errors"

	"github.com/fleetlive/fleetlive/pkg/database"
	"github.com/fleetlive/fleetlive/pkg/fleet"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRegistry struct {
	collection *mongo.Collection
}

func NewMongoRegistry() *MongoRegistry {
	return &MongoRegistry{
		collection: database.GetCollection("vehicles"),
	}
}

func (registry *MongoRegistry) ListAllVehicles(ctx context.Context) ([]fleet.Vehicle, error) {
	vehicles := []fleet.Vehicle{}

	cursor, err := registry.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var vehicle fleet.Vehicle
		if err := cursor.Decode(&vehicle); err != nil {
			log.Error().Err(err).Msg("Failed to decode Vehicle")
			continue
		}

		vehicles = append(vehicles, vehicle)
	}

	return vehicles, cursor.Err()
}

func (registry *MongoRegistry) FindVehicle(ctx context.Context, busNumber string) (*fleet.Vehicle, error) {
	var vehicle fleet.Vehicle

	err := registry.collection.FindOne(ctx, bson.M{"busnumber": busNumber}).Decode(&vehicle)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &vehicle, nil
}

func (registry *MongoRegistry) Persist(ctx context.Context, vehicle *fleet.Vehicle) error {
	opts := options.Replace().SetUpsert(true)

	_, err := registry.collection.ReplaceOne(ctx, bson.M{"busnumber": vehicle.BusNumber}, vehicle, opts)

	return err
}
