// Package moderation implements the content-flag and user-ban state
// machines together with the cascading article delete. It owns the
// multi-step sequencing and the preconditions; persistence stays behind
// small store interfaces implemented by the repository layer, and
// notifications go through a dispatcher that must never fail the
// triggering transition.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/maxwang36/merisols-backend/internal/model"
	"github.com/maxwang36/merisols-backend/internal/repository"
)

// Ban durations are advisory: ban_end_date is recorded for display but
// nothing in this service lifts a ban when the date passes.
const (
	HardBanDuration = 30 * 24 * time.Hour
	SoftBanDuration = 7 * 24 * time.Hour
)

// BanAction names a ban-state transition for notification payloads.
type BanAction string

const (
	ActionBan       BanAction = "ban"
	ActionSoftBan   BanAction = "soft_ban"
	ActionUnban     BanAction = "unban"
	ActionUnsoftBan BanAction = "unsoft_ban"
)

// UserStore is the slice of user persistence the engine needs.
type UserStore interface {
	GetByID(ctx context.Context, id string) (model.User, error)
	// SetBanStatus applies the transition only when the row's current
	// ban_status still equals from; it returns false when no row matched.
	SetBanStatus(ctx context.Context, id string, from, to model.BanStatus, until *time.Time) (bool, error)
}

// ArticleStore is the slice of article persistence the engine needs.
type ArticleStore interface {
	Exists(ctx context.Context, id uint64) (bool, error)
	Flag(ctx context.Context, id uint64) (bool, error)   // only matches published rows
	Unflag(ctx context.Context, id uint64) (bool, error) // false means no such row
	Delete(ctx context.Context, id uint64) (bool, error)
	DeleteImages(ctx context.Context, articleID uint64) error
}

// CommentStore is the slice of comment persistence the engine needs.
type CommentStore interface {
	Flag(ctx context.Context, id uint64) (bool, error)
	Unflag(ctx context.Context, id uint64) (bool, error)
	Delete(ctx context.Context, id uint64) (bool, error)
	DeleteByArticle(ctx context.Context, articleID uint64) error
}

// InteractionStore removes interaction rows during a cascade.
type InteractionStore interface {
	DeleteByArticle(ctx context.Context, articleID uint64) error
}

// Dispatcher delivers moderation notifications. Implementations are
// fire-and-forget: they log their own failures and never return one.
type Dispatcher interface {
	BanStatusChanged(user model.User, action BanAction, until *time.Time)
	ArticleRemoved(articleID uint64, moderatorID string)
}

// Engine wires the stores and dispatcher together. A nil Dispatcher is
// valid and simply drops notifications, which keeps tests small.
type Engine struct {
	users        UserStore
	articles     ArticleStore
	comments     CommentStore
	interactions InteractionStore
	dispatch     Dispatcher
}

func NewEngine(users UserStore, articles ArticleStore, comments CommentStore, interactions InteractionStore, d Dispatcher) *Engine {
	return &Engine{users: users, articles: articles, comments: comments, interactions: interactions, dispatch: d}
}

// ReportArticle flags a published article for review. Reports against a
// draft or scheduled article return ErrNotPublished; a missing article
// returns ErrNotFound.
func (e *Engine) ReportArticle(ctx context.Context, id uint64) error {
	ok, err := e.articles.Flag(ctx, id)
	if err != nil {
		return fmt.Errorf("flag article %d: %w", id, err)
	}
	if ok {
		return nil
	}
	exists, err := e.articles.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check article %d: %w", id, err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrNotPublished
}

// UnflagArticle clears an article's reported marker. Unflagging an
// existing but already-unflagged article succeeds; only a missing row is
// an error.
func (e *Engine) UnflagArticle(ctx context.Context, id uint64) error {
	ok, err := e.articles.Unflag(ctx, id)
	if err != nil {
		return fmt.Errorf("unflag article %d: %w", id, err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// FlagComment marks a comment for review. Comments may be flagged by any
// caller regardless of the parent article's status.
func (e *Engine) FlagComment(ctx context.Context, id uint64) error {
	ok, err := e.comments.Flag(ctx, id)
	if err != nil {
		return fmt.Errorf("flag comment %d: %w", id, err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// UnflagComment clears a comment's review marker.
func (e *Engine) UnflagComment(ctx context.Context, id uint64) error {
	ok, err := e.comments.Unflag(ctx, id)
	if err != nil {
		return fmt.Errorf("unflag comment %d: %w", id, err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// DeleteComment removes a single comment.
func (e *Engine) DeleteComment(ctx context.Context, id uint64) error {
	ok, err := e.comments.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete comment %d: %w", id, err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// DeleteArticle removes an article together with its dependent rows:
// news images, comments and interactions, in that order, then the
// article itself. The cascade is best-effort rather than transactional —
// a failed dependent delete is logged and the remaining steps still run,
// so a partial cascade leaves orphan-free parents rather than blocking
// the takedown. Only a failure to delete the article row itself is
// reported to the caller.
func (e *Engine) DeleteArticle(ctx context.Context, id uint64, moderatorID string) error {
	if err := e.articles.DeleteImages(ctx, id); err != nil {
		log.Printf("moderation: delete images for article %d failed: %v", id, err)
	}
	if err := e.comments.DeleteByArticle(ctx, id); err != nil {
		log.Printf("moderation: delete comments for article %d failed: %v", id, err)
	}
	if err := e.interactions.DeleteByArticle(ctx, id); err != nil {
		log.Printf("moderation: delete interactions for article %d failed: %v", id, err)
	}
	ok, err := e.articles.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete article %d: %w", id, err)
	}
	if !ok {
		return ErrNotFound
	}
	if e.dispatch != nil {
		e.dispatch.ArticleRemoved(id, moderatorID)
	}
	return nil
}

// Ban transitions an active user to hard_banned for HardBanDuration.
// Admins are never valid targets. A user who is already soft- or
// hard-banned fails the conditional update and reports ErrNotFound, the
// same answer a vanished row gives.
func (e *Engine) Ban(ctx context.Context, targetID string) (model.User, error) {
	return e.transition(ctx, targetID, transition{
		action: ActionBan,
		from:   model.BanStatusActive,
		to:     model.BanStatusHardBanned,
		ttl:    HardBanDuration,
		allowed: func(u model.User) error {
			if u.Role == model.RoleAdmin {
				return ErrForbidden
			}
			return nil
		},
	})
}

// SoftBan restricts a user's content creation for SoftBanDuration. Only
// user and journalist roles are eligible targets.
func (e *Engine) SoftBan(ctx context.Context, targetID string) (model.User, error) {
	return e.transition(ctx, targetID, transition{
		action: ActionSoftBan,
		from:   model.BanStatusActive,
		to:     model.BanStatusSoftBanned,
		ttl:    SoftBanDuration,
		allowed: func(u model.User) error {
			if u.Role != model.RoleUser && u.Role != model.RoleJournalist {
				return ErrForbidden
			}
			return nil
		},
	})
}

// Unban restores a hard-banned user to active and clears ban_end_date.
func (e *Engine) Unban(ctx context.Context, targetID string) (model.User, error) {
	return e.transition(ctx, targetID, transition{
		action: ActionUnban,
		from:   model.BanStatusHardBanned,
		to:     model.BanStatusActive,
	})
}

// UnsoftBan restores a soft-banned user to active and clears
// ban_end_date.
func (e *Engine) UnsoftBan(ctx context.Context, targetID string) (model.User, error) {
	return e.transition(ctx, targetID, transition{
		action: ActionUnsoftBan,
		from:   model.BanStatusSoftBanned,
		to:     model.BanStatusActive,
	})
}

type transition struct {
	action  BanAction
	from    model.BanStatus
	to      model.BanStatus
	ttl     time.Duration // zero clears ban_end_date
	allowed func(model.User) error
}

func (e *Engine) transition(ctx context.Context, targetID string, t transition) (model.User, error) {
	u, err := e.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("load user %s: %w", targetID, err)
	}
	if t.allowed != nil {
		if err := t.allowed(u); err != nil {
			return model.User{}, err
		}
	}
	var until *time.Time
	if t.ttl > 0 {
		end := time.Now().UTC().Add(t.ttl)
		until = &end
	}
	ok, err := e.users.SetBanStatus(ctx, targetID, t.from, t.to, until)
	if err != nil {
		return model.User{}, fmt.Errorf("%s user %s: %w", t.action, targetID, err)
	}
	if !ok {
		// The recorded status changed between the read and the write, or
		// never matched. Either way the precondition does not hold now.
		return model.User{}, ErrNotFound
	}
	u.BanStatus = t.to
	u.BanEndDate = until
	if e.dispatch != nil {
		// Only after the persistence write succeeded; the dispatcher logs
		// and swallows its own failures.
		e.dispatch.BanStatusChanged(u, t.action, until)
	}
	return u, nil
}
