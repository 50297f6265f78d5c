package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"author_highlighter/internal/cache"
	"author_highlighter/internal/config"
	"author_highlighter/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDB backs the author-list cache and stores emitted role records.
type MongoDB struct {
	client      *mongo.Client
	database    *mongo.Database
	authorCache *mongo.Collection
	roles       *mongo.Collection
}

func NewMongoDB(ctx context.Context, cfg config.DBConfig, ttl time.Duration) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Connection))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("can't ping MongoDB: %w", err)
	}

	db := client.Database(cfg.Database)

	d := &MongoDB{
		client:      client,
		database:    db,
		authorCache: db.Collection(cfg.Collections.AuthorCache),
		roles:       db.Collection(cfg.Collections.Roles),
	}

	d.createIndexes(ctx, ttl)

	return d, nil
}

// createIndexes lets MongoDB purge cache entries well after they expired;
// freshness itself is still decided on read.
func (d *MongoDB) createIndexes(ctx context.Context, ttl time.Duration) {
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "stored_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32((2 * ttl).Seconds())),
	}
	if _, err := d.authorCache.Indexes().CreateOne(ctx, indexModel); err != nil {
		slog.Warn("mongo: create stored_at index", "error", err)
	}

	indexModel = mongo.IndexModel{
		Keys:    bson.D{{Key: "run_id", Value: 1}, {Key: "paper_key", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := d.roles.Indexes().CreateOne(ctx, indexModel); err != nil {
		slog.Warn("mongo: create roles index", "error", err)
	}
}

func (d *MongoDB) Load(ctx context.Context, key string) (models.CacheEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var entry models.CacheEntry
	err := d.authorCache.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.CacheEntry{}, cache.ErrNotFound
	}
	if err != nil {
		return models.CacheEntry{}, fmt.Errorf("load cache entry: %w", err)
	}
	return entry, nil
}

func (d *MongoDB) Save(ctx context.Context, entry models.CacheEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Update().SetUpsert(true)
	update := bson.M{"$set": bson.M{
		"authors_text": entry.AuthorsText,
		"stored_at":    entry.StoredAt,
	}}

	if _, err := d.authorCache.UpdateOne(ctx, bson.M{"_id": entry.ID}, update, opts); err != nil {
		return fmt.Errorf("save cache entry: %w", err)
	}
	return nil
}

func (d *MongoDB) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := d.authorCache.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// SaveRecord upserts the latest classification of a publication within a run.
func (d *MongoDB) SaveRecord(ctx context.Context, rec models.RoleRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"run_id": rec.RunID, "paper_key": rec.PaperKey}

	var updateDoc bson.M
	data, err := bson.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal role record: %w", err)
	}
	if err := bson.Unmarshal(data, &updateDoc); err != nil {
		return fmt.Errorf("unmarshal role record: %w", err)
	}

	update := bson.M{
		"$set": updateDoc,
		"$inc": bson.M{"revisions": 1},
	}

	if _, err := d.roles.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("save role record: %w", err)
	}
	return nil
}

// RunStats summarises the stored records of one run.
func (d *MongoDB) RunStats(ctx context.Context, runID string) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	count := func(field string) bson.D {
		return bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{"$" + field, 1, 0}}}}}
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "run_id", Value: runID}}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "publications", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "first", Value: count("first")},
			{Key: "second", Value: count("second")},
			{Key: "co_first", Value: count("co_first")},
			{Key: "last", Value: count("last")},
			{Key: "expanded", Value: count("expanded")},
		}}},
	}

	cursor, err := d.roles.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate run stats: %w", err)
	}
	defer cursor.Close(ctx)

	var results []map[string]interface{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return make(map[string]interface{}), nil
	}

	return results[0], nil
}

func (d *MongoDB) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return d.client.Disconnect(ctx)
}
