package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/maxwang36/merisols-backend/internal/config"
	"github.com/maxwang36/merisols-backend/internal/handler"
	"github.com/maxwang36/merisols-backend/internal/middleware"
	"github.com/maxwang36/merisols-backend/internal/model"
	"github.com/maxwang36/merisols-backend/internal/repository"
)

// Deps bundles everything route registration needs. main builds one of
// these after wiring repositories and handlers.
type Deps struct {
	Cfg   config.Config
	Users *repository.UserRepo
	RDB   *redis.Client

	Article     *handler.ArticleHandler
	Comment     *handler.CommentHandler
	Interaction *handler.InteractionHandler
	Moderator   *handler.ModeratorHandler
	Admin       *handler.AdminHandler
	Settings    *handler.SettingsHandler
	Schedule    *handler.ScheduleHandler
	Stripe      *handler.StripeHandler
	Webhook     *handler.StripeWebhookHandler
	Email       *handler.EmailHandler
	Telegram    *handler.TelegramHandler
	Inference   *handler.InferenceHandler
}

// Register wires every route under /api. Identity is resolved once per
// request by the middleware; handlers read it from the request context.
func Register(e *echo.Echo, d Deps) {
	optional := middleware.OptionalIdentity(d.Cfg.JWTSecret, d.Users)
	required := middleware.Identity(d.Cfg.JWTSecret, d.Users)

	var limited echo.MiddlewareFunc
	if d.RDB != nil {
		limited = middleware.RateLimit(config.LoadRateLimitConfig(), d.RDB)
	}

	api := e.Group("/api")
	api.GET("/ping", handler.Ping)

	// Reader-facing routes. Reporting requires a signed-in caller;
	// comment flagging and view recording accept anonymous traffic, so
	// they carry the rate limiter instead.
	withLimit(api, limited, "PUT", "/articles/:article_id/report", d.Article.Report, optional)
	api.GET("/comments/:article_id", d.Comment.ListByArticle)
	api.POST("/comments", d.Comment.Create, required)
	withLimit(api, limited, "PUT", "/comments/:comment_id/flag", d.Comment.Flag)
	withLimit(api, limited, "POST", "/interactions/view", d.Interaction.RecordView, optional)
	api.GET("/interactions/:article_id/stats", d.Interaction.Stats)

	api.GET("/settings/status", d.Settings.Status)
	api.POST("/schedule-run", d.Schedule.Run)

	// Commerce. The webhook authenticates with its Stripe signature,
	// not a bearer token.
	api.POST("/stripe/create-checkout-session", d.Stripe.CreateCheckoutSession, required)
	api.POST("/stripe/webhook", d.Webhook.Handle)

	// Moderation console.
	mod := api.Group("/moderator", required, middleware.RequireRole(model.RoleModerator, model.RoleAdmin))
	mod.GET("/comments/flagged", d.Moderator.FlaggedComments)
	mod.PUT("/comments/:comment_id/unflag", d.Moderator.UnflagComment)
	mod.DELETE("/comments/:comment_id", d.Moderator.DeleteComment)
	mod.GET("/articles/reported", d.Moderator.ReportedArticles)
	mod.PUT("/articles/:article_id/unflag", d.Moderator.UnflagArticle)
	mod.DELETE("/articles/:article_id", d.Moderator.DeleteArticle)
	mod.GET("/users", d.Moderator.ListUsers)
	mod.PUT("/users/:user_id/ban", d.Moderator.Ban)
	mod.PUT("/users/:user_id/unban", d.Moderator.Unban)
	mod.PUT("/users/:user_id/soft-ban", d.Moderator.SoftBan)
	mod.PUT("/users/:user_id/unsoft-ban", d.Moderator.UnsoftBan)

	// Administration.
	admin := api.Group("/admin", required, middleware.RequireRole(model.RoleAdmin))
	admin.POST("/create-user", d.Admin.CreateUser)
	admin.DELETE("/delete-user/:auth_id", d.Admin.DeleteUser)
	admin.GET("/users", d.Admin.ListUsers)
	api.PUT("/settings/status", d.Settings.UpdateStatus, required, middleware.RequireRole(model.RoleAdmin))
	api.GET("/users", d.Admin.ListUsers, required, middleware.RequireRole(model.RoleAdmin))

	// Staff-facing collaborator forwarders.
	staff := api.Group("", required, middleware.RequireRole(model.RoleJournalist, model.RoleModerator, model.RoleAdmin))
	staff.POST("/email/send-reply", d.Email.SendReply)
	staff.POST("/telegram/high-priority-alert", d.Telegram.HighPriorityAlert)
	staff.POST("/ai/summarize", d.Inference.Summarize)
	staff.POST("/moderation/moderate-article", d.Inference.ModerateArticle)
}

// withLimit registers a route with the rate limiter when Redis is
// available; without it the route still works, just unthrottled.
func withLimit(g *echo.Group, limited echo.MiddlewareFunc, method, path string, h echo.HandlerFunc, extra ...echo.MiddlewareFunc) {
	// The limiter goes after any identity middleware so rateKey sees the
	// resolved user id instead of bucketing every caller as a guest.
	if limited != nil {
		extra = append(extra, limited)
	}
	g.Add(method, path, h, extra...)
}
