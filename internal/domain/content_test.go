package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewContent_GeneratesID(t *testing.T) {
	a := NewContent()
	b := NewContent()

	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestContent_MissingFields(t *testing.T) {
	tests := []struct {
		name     string
		content  Content
		expected []string
	}{
		{
			name: "complete",
			content: Content{
				ArticleURL:      "http://mirror/article1",
				Title:           "Title 1",
				Author:          "Author 1",
				HTMLContent:     "Long text 1",
				OriginalContent: "<item>Original Content 1</item>",
				MainImageURL:    "http://mirror/img1.jpg",
			},
			expected: nil,
		},
		{
			name: "missing url and image",
			content: Content{
				Title:           "Title 1",
				Author:          "Author 1",
				HTMLContent:     "Long text 1",
				OriginalContent: "<item/>",
			},
			expected: []string{"article_url", "main_image_url"},
		},
		{
			name:     "empty",
			content:  Content{},
			expected: []string{"article_url", "title", "author", "html_content", "original_content", "main_image_url"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.content.MissingFields())
		})
	}
}
