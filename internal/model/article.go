package model

import "time"

// ArticleStatus enumerates the lifecycle states stored in article.status.
// The only transition this service performs itself is the publication
// sweep's scheduled -> published bulk update.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusScheduled ArticleStatus = "scheduled"
	ArticleStatusPublished ArticleStatus = "published"
)

// Article mirrors the `article` table. Flagged published articles form
// the moderation review queue.
type Article struct {
	ID              uint64        // article.article_id
	Title           string        // article.title
	Content         string        // article.content
	CategoryID      uint64        // article.category_id
	PublicationDate time.Time     // article.publication_date
	Status          ArticleStatus // article.status
	Flagged         bool          // article.flagged
	PublishedBy     string        // article.published_by (users.user_id)
}

// NewsImage mirrors the `news_images` table. Rows are removed together
// with their parent article during a cascading delete.
type NewsImage struct {
	ID        uint64 // news_images.image_id
	ArticleID uint64 // news_images.article_id
	ImageURL  string // news_images.image_url
}

// Category mirrors the `categories` table.
type Category struct {
	ID   uint64 // categories.category_id
	Name string // categories.name
}
