package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/maxwang36/merisols-backend/internal/model"
)

// ArticleRepo manages persistence for the `article` table and its
// dependent `news_images` rows.
type ArticleRepo struct{ DB *sql.DB }

func NewArticleRepo(db *sql.DB) *ArticleRepo { return &ArticleRepo{DB: db} }

// Exists reports whether an article row with the given id is present.
func (r *ArticleRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM article WHERE article_id=? LIMIT 1", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Flag marks a published article as reported. The status predicate is
// part of the UPDATE so a draft or scheduled article can never be
// flagged, regardless of request interleaving. Returns false when no
// row matched.
func (r *ArticleRepo) Flag(ctx context.Context, id uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE article SET flagged=1 WHERE article_id=? AND status=?",
		id, model.ArticleStatusPublished)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Unflag clears the reported marker. The update matches on the row id
// alone, so unflagging an already-unflagged article succeeds as long as
// the row exists; MySQL still reports the row as matched.
func (r *ArticleRepo) Unflag(ctx context.Context, id uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE article SET flagged=0 WHERE article_id=?", id)
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
	// CLIENT_FOUND_ROWS is not set, so a no-op update reports zero
	// affected rows even when the row exists. Distinguish via lookup.
	return r.Exists(ctx, id)
}

// Delete removes the article row itself. Dependent rows are removed
// beforehand by the moderation engine's cascade.
func (r *ArticleRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM article WHERE article_id=?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteImages removes all news_images rows referencing the article.
func (r *ArticleRepo) DeleteImages(ctx context.Context, articleID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM news_images WHERE article_id=?", articleID)
	return err
}

// ReportedArticle is a moderation-queue row: a flagged published article
// joined with its category and publisher for display.
type ReportedArticle struct {
	Article       model.Article
	CategoryName  string
	PublisherID   string
	PublisherName string
}

// ListReported returns flagged published articles newest-first, joined
// with category and publisher names for the moderator queue view.
func (r *ArticleRepo) ListReported(ctx context.Context) ([]ReportedArticle, error) {
	query, args, err := sq.Select(
		"a.article_id", "a.title", "a.content", "a.category_id", "a.publication_date",
		"a.status", "a.flagged", "a.published_by", "c.name", "u.display_name").
		From("article a").
		Join("categories c ON c.category_id = a.category_id").
		Join("users u ON u.user_id = a.published_by").
		Where(sq.Eq{"a.flagged": true, "a.status": model.ArticleStatusPublished}).
		OrderBy("a.publication_date DESC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReportedArticle
	for rows.Next() {
		var ra ReportedArticle
		if err := rows.Scan(&ra.Article.ID, &ra.Article.Title, &ra.Article.Content,
			&ra.Article.CategoryID, &ra.Article.PublicationDate, &ra.Article.Status,
			&ra.Article.Flagged, &ra.Article.PublishedBy, &ra.CategoryName,
			&ra.PublisherName); err != nil {
			return nil, err
		}
		ra.PublisherID = ra.Article.PublishedBy
		out = append(out, ra)
	}
	return out, rows.Err()
}

// PublishDue transitions every scheduled article whose publication date
// has passed to published, returning the number of rows changed. The
// predicate excludes already-published rows, so concurrent sweeps each
// apply the monotonic transition at most once per article.
func (r *ArticleRepo) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE article SET status=? WHERE status=? AND publication_date<=?",
		model.ArticleStatusPublished, model.ArticleStatusScheduled, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
