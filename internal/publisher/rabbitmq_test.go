package publisher

import (
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content_scraper/internal/domain"
)

func TestNewPublishing(t *testing.T) {
	content := domain.NewContent()
	content.ArticleURL = "http://mirror/article1"
	content.Title = "Title 1"
	content.HTMLContent = "Long text 1"
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("ICT", 7*60*60))

	msg, err := newPublishing(&content, now)
	require.NoError(t, err)

	assert.Equal(t, uint8(amqp.Persistent), msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, content.ID.String(), msg.MessageId)
	assert.Equal(t, EventContentCreated, msg.Type)

	var received ContentMessage
	require.NoError(t, json.Unmarshal(msg.Body, &received))
	assert.Equal(t, EventContentCreated, received.Event)
	assert.Equal(t, content.ID, received.Content.ID)
	assert.Equal(t, "http://mirror/article1", received.Content.ArticleURL)
	assert.Equal(t, "Long text 1", received.Content.HTMLContent)
	assert.Equal(t, time.UTC, received.Timestamp.Location())
	assert.True(t, now.Equal(received.Timestamp))
}
