package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/domain/models"
)

const (
	eventsCollection  = "webhook_events"
	digestsCollection = "daily_digests"
)

// Repository defines the interface for event and digest storage.
type Repository interface {
	SaveEvents(ctx context.Context, events []models.StoredEvent) error
	ListEvents(ctx context.Context, filter models.EventFilter, limit int64) ([]models.StoredEvent, error)
	SaveDailyDigest(ctx context.Context, digest models.DailyDigest) error
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		dbName: dbName,
	}, nil
}

// SaveEvents inserts a parsed batch. An empty batch is a no-op.
func (r *MongoDBRepository) SaveEvents(ctx context.Context, events []models.StoredEvent) error {
	if len(events) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(events))
	for _, event := range events {
		docs = append(docs, event)
	}

	collection := r.client.Database(r.dbName).Collection(eventsCollection)
	if _, err := collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert events: %w", err)
	}
	return nil
}

// ListEvents fetches stored events matching the filter, newest first. The
// type, phone-number-id and time-range criteria are pushed into the query;
// sender criteria are left to the in-process filter since the sender lives
// inside the message subdocument.
func (r *MongoDBRepository) ListEvents(ctx context.Context, filter models.EventFilter, limit int64) ([]models.StoredEvent, error) {
	query := bson.M{}

	if len(filter.EventTypes) > 0 {
		query["type"] = bson.M{"$in": filter.EventTypes}
	}
	if len(filter.PhoneNumberIDs) > 0 {
		query["phone_number_id"] = bson.M{"$in": filter.PhoneNumberIDs}
	}

	timeRange := bson.M{}
	if filter.After != nil {
		timeRange["$gte"] = *filter.After
	}
	if filter.Before != nil {
		timeRange["$lte"] = *filter.Before
	}
	if len(timeRange) > 0 {
		query["timestamp"] = timeRange
	}

	opts := options.Find().SetSort(bson.D{{Key: "received_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	collection := r.client.Database(r.dbName).Collection(eventsCollection)
	cursor, err := collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []models.StoredEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}

// SaveDailyDigest stores one daily traffic summary.
func (r *MongoDBRepository) SaveDailyDigest(ctx context.Context, digest models.DailyDigest) error {
	collection := r.client.Database(r.dbName).Collection(digestsCollection)
	if _, err := collection.InsertOne(ctx, digest); err != nil {
		return fmt.Errorf("failed to insert daily digest: %w", err)
	}
	return nil
}

// DeleteEventsBefore prunes events received before cutoff and reports how
// many documents were removed.
func (r *MongoDBRepository) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	collection := r.client.Database(r.dbName).Collection(eventsCollection)
	result, err := collection.DeleteMany(ctx, bson.M{"received_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("failed to prune events: %w", err)
	}
	return result.DeletedCount, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
