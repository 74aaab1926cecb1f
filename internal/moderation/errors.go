package moderation

import "errors"

// ErrNotFound covers both a missing entity and a state precondition that
// no longer holds, such as unbanning a user who is not hard-banned.
// Handlers translate it into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned for role violations: banning an admin, or
// soft-banning a role outside {user, journalist}. Handlers translate it
// into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrNotPublished is returned when a report targets an article that
// exists but is not published. Handlers translate it into HTTP 400.
var ErrNotPublished = errors.New("article is not published")
