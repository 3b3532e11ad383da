package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	contacterrors "tavola/internal/contact/errors"
	"tavola/pkg/config"
	"tavola/pkg/model"
)

const CollectionName = "ContactMessages"

type ContactRepository interface {
	Create(ctx context.Context, message *model.ContactMessage) (*model.ContactMessage, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]model.ContactMessage, error)
	Count(ctx context.Context) (int64, error)
	MarkRead(ctx context.Context, id string) (*model.ContactMessage, error)
}

type mongoContactRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoContactRepository(cfg *config.Config) ContactRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoContactRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoContactRepository) Create(ctx context.Context, message *model.ContactMessage) (*model.ContactMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	message.ID = primitive.NewObjectID().Hex()
	message.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create contact message: %w", err)
	}
	return message, nil
}

func (r *mongoContactRepository) FindAll(ctx context.Context, limit int, offset int64) ([]model.ContactMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}
	defer cursor.Close(ctx)

	messages := []model.ContactMessage{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode contact messages: %w", err)
	}
	return messages, nil
}

func (r *mongoContactRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count contact messages: %w", err)
	}
	return count, nil
}

func (r *mongoContactRepository) MarkRead(ctx context.Context, id string) (*model.ContactMessage, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, contacterrors.ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated model.ContactMessage
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"read": true}},
		opts,
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, contacterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to mark contact message read: %w", err)
	}
	return &updated, nil
}
