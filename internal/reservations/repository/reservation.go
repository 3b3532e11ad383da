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

	reservationerrors "tavola/internal/reservations/errors"
	"tavola/pkg/config"
	"tavola/pkg/model"
)

const CollectionName = "Reservations"

// ListFilter narrows admin listings. Zero values mean "no filter".
type ListFilter struct {
	Date   string
	Status string
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) (*model.Reservation, error)
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindAll(ctx context.Context, filter ListFilter, limit int, offset int64) ([]model.Reservation, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)

	// UpdateStatus transitions a pending reservation to the given status.
	// The pending precondition is part of the update filter so two
	// concurrent decisions cannot both succeed.
	UpdateStatus(ctx context.Context, id, status string) (*model.Reservation, error)

	// PartySizeTotals sums the party sizes of non-declined reservations
	// for one date and area, grouped by start time.
	PartySizeTotals(ctx context.Context, date, area string) (map[string]int, error)
}

type mongoReservationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoReservationRepository) Create(ctx context.Context, reservation *model.Reservation) (*model.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	reservation.ID = primitive.NewObjectID().Hex()
	reservation.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, reservation); err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}
	return reservation, nil
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, reservationerrors.ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var reservation model.Reservation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}
	return &reservation, nil
}

func (r *mongoReservationRepository) FindAll(ctx context.Context, filter ListFilter, limit int, offset int64) ([]model.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filterQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer cursor.Close(ctx)

	reservations := []model.Reservation{}
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return reservations, nil
}

func (r *mongoReservationRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filterQuery(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}

func (r *mongoReservationRepository) UpdateStatus(ctx context.Context, id, status string) (*model.Reservation, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, reservationerrors.ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated model.Reservation
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": model.ReservationStatusPending},
		bson.M{"$set": bson.M{"status": status, "decided_at": now}},
		opts,
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Either the reservation does not exist or it is no longer
			// pending. A second lookup tells the two apart.
			if _, findErr := r.FindByID(ctx, id); findErr != nil {
				return nil, findErr
			}
			return nil, reservationerrors.ErrAlreadyDecided
		}
		return nil, fmt.Errorf("failed to update reservation status: %w", err)
	}
	return &updated, nil
}

func (r *mongoReservationRepository) PartySizeTotals(ctx context.Context, date, area string) (map[string]int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"date":   date,
			"area":   area,
			"status": bson.M{"$ne": model.ReservationStatusDeclined},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$time",
			"total": bson.M{"$sum": "$party_size"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate party sizes: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Time  string `bson:"_id"`
		Total int    `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode party size totals: %w", err)
	}

	totals := make(map[string]int, len(rows))
	for _, row := range rows {
		totals[row.Time] = row.Total
	}
	return totals, nil
}

func filterQuery(filter ListFilter) bson.M {
	query := bson.M{}
	if filter.Date != "" {
		query["date"] = filter.Date
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return query
}
