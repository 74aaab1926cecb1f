// Package queue defines message payloads exchanged over the message
// broker and the background consumer that records them.
package queue

// ModerationEvent is published whenever the moderation engine completes
// a ban-state transition or removes an article. It carries enough
// context for downstream consumers to build an audit trail without
// querying the primary database.
type ModerationEvent struct {
	Action      string `json:"action"` // ban | soft_ban | unban | unsoft_ban | article_removed
	UserID      string `json:"user_id,omitempty"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role,omitempty"`
	ArticleID   uint64 `json:"article_id,omitempty"`
	ModeratorID string `json:"moderator_id,omitempty"`
	BanEndDate  string `json:"ban_end_date,omitempty"`
	OccurredAt  string `json:"occurred_at"`
}
