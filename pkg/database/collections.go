package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes() {
	createVehiclesIndexes()
}

func createVehiclesIndexes() {
	vehiclesCollection := GetCollection("vehicles")
	vehiclesIndex := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "busnumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "routename", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "lastupdated", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := vehiclesCollection.Indexes().CreateMany(context.Background(), vehiclesIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
