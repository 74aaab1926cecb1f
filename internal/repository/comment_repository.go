package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/maxwang36/merisols-backend/internal/model"
)

// CommentRepo manages persistence for the `comment` table.
type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

// Create inserts a new comment. The ban check on the author happens in
// the handler before this is called.
func (r *CommentRepo) Create(ctx context.Context, articleID uint64, userID, text string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO comment (article_id, user_id, comment_text, comment_date, flagged) VALUES (?,?,?,?,0)",
		articleID, userID, text, time.Now().UTC())
	return err
}

// CommentWithAuthor pairs a comment with its author's display name for
// public listing and the moderator queue.
type CommentWithAuthor struct {
	Comment    model.Comment
	AuthorName string
}

// ListByArticle returns all comments on an article newest-first,
// flagged ones included; the frontend decides what to render.
func (r *CommentRepo) ListByArticle(ctx context.Context, articleID uint64) ([]CommentWithAuthor, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT c.comment_id, c.article_id, c.user_id, c.comment_text, c.comment_date, c.flagged, u.display_name
		 FROM comment c JOIN users u ON u.user_id = c.user_id
		 WHERE c.article_id=? ORDER BY c.comment_date DESC`, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCommentsWithAuthor(rows)
}

// ListFlagged returns every flagged comment newest-first for the
// moderator queue.
func (r *CommentRepo) ListFlagged(ctx context.Context) ([]CommentWithAuthor, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT c.comment_id, c.article_id, c.user_id, c.comment_text, c.comment_date, c.flagged, u.display_name
		 FROM comment c JOIN users u ON u.user_id = c.user_id
		 WHERE c.flagged=1 ORDER BY c.comment_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCommentsWithAuthor(rows)
}

func scanCommentsWithAuthor(rows *sql.Rows) ([]CommentWithAuthor, error) {
	var out []CommentWithAuthor
	for rows.Next() {
		var cw CommentWithAuthor
		if err := rows.Scan(&cw.Comment.ID, &cw.Comment.ArticleID, &cw.Comment.UserID,
			&cw.Comment.Text, &cw.Comment.Date, &cw.Comment.Flagged, &cw.AuthorName); err != nil {
			return nil, err
		}
		out = append(out, cw)
	}
	return out, rows.Err()
}

// Flag marks a comment for moderator review. Returns false when no row
// matched the id.
func (r *CommentRepo) Flag(ctx context.Context, id uint64) (bool, error) {
	return r.setFlag(ctx, id, true)
}

// Unflag clears the review marker. Like ArticleRepo.Unflag, a no-op
// update on an existing row still counts as success.
func (r *CommentRepo) Unflag(ctx context.Context, id uint64) (bool, error) {
	return r.setFlag(ctx, id, false)
}

func (r *CommentRepo) setFlag(ctx context.Context, id uint64, flagged bool) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE comment SET flagged=? WHERE comment_id=?", flagged, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	var one int
	err = r.DB.QueryRowContext(ctx, "SELECT 1 FROM comment WHERE comment_id=? LIMIT 1", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes a single comment. Returns false when no row matched.
func (r *CommentRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM comment WHERE comment_id=?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteByArticle removes every comment on an article. Part of the
// cascading article delete.
func (r *CommentRepo) DeleteByArticle(ctx context.Context, articleID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM comment WHERE article_id=?", articleID)
	return err
}

// CountByArticle returns the comment total for the stats endpoint.
func (r *CommentRepo) CountByArticle(ctx context.Context, articleID uint64) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM comment WHERE article_id=?", articleID).Scan(&n)
	return n, err
}
