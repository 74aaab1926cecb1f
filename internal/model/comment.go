package model

import "time"

// Comment mirrors the `comment` table. Any reader may flag a comment;
// only a moderator may unflag or delete one.
type Comment struct {
	ID        uint64    // comment.comment_id
	ArticleID uint64    // comment.article_id
	UserID    string    // comment.user_id (users.user_id)
	Text      string    // comment.comment_text
	Date      time.Time // comment.comment_date
	Flagged   bool      // comment.flagged
}
