package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicate is returned by stores when a content with the same article
// URL is already persisted.
var ErrDuplicate = errors.New("content already exists")

// Content is the normalized representation of one feed item.
type Content struct {
	ID              uuid.UUID `db:"id" json:"id"`
	ArticleURL      string    `db:"article_url" json:"article_url"`
	Title           string    `db:"title" json:"title"`
	Author          string    `db:"author" json:"author"`
	HTMLContent     string    `db:"html_content" json:"html_content"`
	OriginalContent string    `db:"original_content" json:"original_content"`
	MainImageURL    string    `db:"main_image_url" json:"main_image_url"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// NewContent returns a Content with a freshly generated ID.
func NewContent() Content {
	return Content{ID: uuid.New()}
}

// MissingFields lists the names of the empty fields, in declaration order.
func (c Content) MissingFields() []string {
	var missing []string
	fields := []struct {
		name  string
		value string
	}{
		{"article_url", c.ArticleURL},
		{"title", c.Title},
		{"author", c.Author},
		{"html_content", c.HTMLContent},
		{"original_content", c.OriginalContent},
		{"main_image_url", c.MainImageURL},
	}
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
