package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"site_crawler/internal/models"
)

func TestDocumentUpdate(t *testing.T) {
	doc := &models.Document{
		ID:            primitive.NewObjectID(),
		URL:           "https://example.com/a",
		NormalizedURL: "https://example.com/a",
		RootURL:       "https://example.com/",
		CrawlID:       "crawl-1",
		Content:       "text",
		ContentHash:   "1cb251ec0d568de6a929b520c4aed8d1",
		ContentLength: 4,
		FirstScraped:  100,
		LastScraped:   100,
		ScrapedCount:  7,
	}

	update, err := documentUpdate(doc)
	require.NoError(t, err)

	set, ok := update["$set"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/a", set["normalized_url"])
	// The latest crawl takes the page over.
	assert.Equal(t, "crawl-1", set["crawl_id"])
	assert.Equal(t, int64(100), set["last_scraped"])
	assert.NotContains(t, set, "_id")
	assert.NotContains(t, set, "scraped_count")
	assert.NotContains(t, set, "first_scraped")

	assert.Equal(t, bson.M{"scraped_count": 1}, update["$inc"])
	assert.Equal(t, bson.M{"first_scraped": int64(100)}, update["$setOnInsert"])
}

func TestDocumentUpdateWithoutID(t *testing.T) {
	update, err := documentUpdate(&models.Document{NormalizedURL: "https://example.com/"})
	require.NoError(t, err)

	set := update["$set"].(bson.M)
	assert.NotContains(t, set, "_id")
	assert.Contains(t, set, "title")
}
