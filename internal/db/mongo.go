package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"site_crawler/internal/config"
	"site_crawler/internal/logger"
	"site_crawler/internal/models"
)

const (
	connectTimeout = 10 * time.Second
	writeTimeout   = 5 * time.Second
)

// MongoDB archives extracted pages, one document per normalized URL.
type MongoDB struct {
	client    *mongo.Client
	database  *mongo.Database
	documents *mongo.Collection
	log       logger.Interface
}

func NewMongoDB(ctx context.Context, cfg config.DBConfig, log logger.Interface) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Connection))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("can't ping MongoDB: %w", err)
	}

	database := client.Database(cfg.Database)
	d := &MongoDB{
		client:    client,
		database:  database,
		documents: database.Collection(cfg.Collections.Documents),
		log:       log,
	}
	d.createIndexes(ctx)

	return d, nil
}

func (d *MongoDB) createIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "normalized_url", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "crawl_id", Value: 1}}},
		{Keys: bson.D{{Key: "last_scraped", Value: 1}}},
	}

	if _, err := d.documents.Indexes().CreateMany(ctx, indexes); err != nil {
		d.log.Warn("Failed to create indexes", "collection", d.documents.Name(), "error", err)
	}
}

// SaveDocument upserts doc by normalized URL. scraped_count counts how many
// crawls have archived the page and first_scraped keeps its first value.
func (d *MongoDB) SaveDocument(ctx context.Context, doc *models.Document) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	update, err := documentUpdate(doc)
	if err != nil {
		return err
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"normalized_url": doc.NormalizedURL}
	if _, err := d.documents.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("save %s: %w", doc.NormalizedURL, err)
	}
	return nil
}

func documentUpdate(doc *models.Document) (bson.M, error) {
	data, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var fields bson.M
	if err := bson.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}

	delete(fields, "_id")
	delete(fields, "scraped_count")
	delete(fields, "first_scraped")

	return bson.M{
		"$set":         fields,
		"$inc":         bson.M{"scraped_count": 1},
		"$setOnInsert": bson.M{"first_scraped": doc.FirstScraped},
	}, nil
}

// CrawlDocuments lists what one crawl archived, oldest first. A page keeps
// only the crawl_id of the latest crawl that archived it, so an earlier crawl
// no longer lists pages a later crawl archived again.
func (d *MongoDB) CrawlDocuments(ctx context.Context, crawlID string) ([]models.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_scraped", Value: 1}})
	cursor, err := d.documents.Find(ctx, bson.M{"crawl_id": crawlID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find documents of crawl %s: %w", crawlID, err)
	}
	defer cursor.Close(ctx)

	docs := []models.Document{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (d *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return d.client.Disconnect(ctx)
}
