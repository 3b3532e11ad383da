package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	openinghourserrors "tavola/internal/openinghours/errors"
	"tavola/pkg/config"
	"tavola/pkg/model"
)

const (
	CollectionName = "OpeningHours"

	// The schedule is a singleton document; the restaurant has exactly one.
	documentID = "opening_hours"
)

type OpeningHoursRepository interface {
	Get(ctx context.Context) (*model.OpeningHours, error)
	Replace(ctx context.Context, doc *model.OpeningHours) error
}

type mongoOpeningHoursRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoOpeningHoursRepository(cfg *config.Config) OpeningHoursRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoOpeningHoursRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoOpeningHoursRepository) Get(ctx context.Context) (*model.OpeningHours, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var doc model.OpeningHours
	err := r.collection.FindOne(ctx, bson.M{"_id": documentID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, openinghourserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load opening hours: %w", err)
	}
	return &doc, nil
}

func (r *mongoOpeningHoursRepository) Replace(ctx context.Context, doc *model.OpeningHours) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	doc.ID = documentID
	doc.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": documentID}, doc, opts); err != nil {
		return fmt.Errorf("failed to store opening hours: %w", err)
	}
	return nil
}
