package notifier

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/maxwang36/merisols-backend/internal/model"
	"github.com/maxwang36/merisols-backend/internal/moderation"
	"github.com/maxwang36/merisols-backend/internal/queue"
	"github.com/maxwang36/merisols-backend/internal/service"
)

// Dispatcher implements moderation.Dispatcher. Every notification runs
// on its own goroutine with its own deadline: the persistence write has
// already succeeded by the time a method here is called, and nothing a
// collaborator does may fail the completed transition. Failures are
// logged, full stop.
type Dispatcher struct {
	Email *EmailClient
}

const dispatchTimeout = 15 * time.Second

// BanStatusChanged emails the affected user and publishes an audit
// event.
func (d *Dispatcher) BanStatusChanged(u model.User, action moderation.BanAction, until *time.Time) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if d.Email.Configured() && u.Email != "" {
			subject, html := banEmail(u.DisplayName, action, until)
			if err := d.Email.Send(ctx, u.Email, subject, html); err != nil {
				log.Printf("notifier: ban email to %s failed: %v", u.Email, err)
			}
		}

		ev := queue.ModerationEvent{
			Action:     string(action),
			UserID:     u.ID,
			Email:      u.Email,
			Role:       string(u.Role),
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		}
		if until != nil {
			ev.BanEndDate = until.UTC().Format(time.RFC3339)
		}
		_ = service.PublishModerationEvent(ctx, ev) // already logged inside
	}()
}

// ArticleRemoved publishes an audit event for a cascading article
// delete.
func (d *Dispatcher) ArticleRemoved(articleID uint64, moderatorID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		_ = service.PublishModerationEvent(ctx, queue.ModerationEvent{
			Action:      "article_removed",
			ArticleID:   articleID,
			ModeratorID: moderatorID,
			OccurredAt:  time.Now().UTC().Format(time.RFC3339),
		})
	}()
}

func banEmail(name string, action moderation.BanAction, until *time.Time) (subject, html string) {
	if name == "" {
		name = "reader"
	}
	switch action {
	case moderation.ActionBan:
		subject = "Your Merisols Times account has been suspended"
		html = fmt.Sprintf("<p>Dear %s,</p><p>Your account has been suspended by our moderation team until %s. You will not be able to sign in during this period.</p>",
			name, until.Format("2 January 2006"))
	case moderation.ActionSoftBan:
		subject = "Your Merisols Times commenting privileges have been restricted"
		html = fmt.Sprintf("<p>Dear %s,</p><p>Your commenting privileges have been restricted until %s following a moderation review. You can continue reading as usual.</p>",
			name, until.Format("2 January 2006"))
	case moderation.ActionUnban, moderation.ActionUnsoftBan:
		subject = "Your Merisols Times account restrictions have been lifted"
		html = fmt.Sprintf("<p>Dear %s,</p><p>The restrictions on your account have been lifted. Welcome back.</p>", name)
	default:
		subject = "Your Merisols Times account status has changed"
		html = fmt.Sprintf("<p>Dear %s,</p><p>Your account status has been updated by our moderation team.</p>", name)
	}
	return subject, html
}
