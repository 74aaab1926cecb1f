package main // Entry point package

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/maxwang36/merisols-backend/internal/config"
	"github.com/maxwang36/merisols-backend/internal/database"
	"github.com/maxwang36/merisols-backend/internal/handler"
	"github.com/maxwang36/merisols-backend/internal/inference"
	"github.com/maxwang36/merisols-backend/internal/moderation"
	"github.com/maxwang36/merisols-backend/internal/notifier"
	"github.com/maxwang36/merisols-backend/internal/queue"
	"github.com/maxwang36/merisols-backend/internal/repository"
	"github.com/maxwang36/merisols-backend/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional outside local dev
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unreachable
	if rdb != nil {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	articles := repository.NewArticleRepo(db)
	comments := repository.NewCommentRepo(db)
	interactions := repository.NewInteractionRepo(db)
	subs := repository.NewSubscriptionRepo(db)
	settings := repository.NewSettingsRepo(db)

	email := notifier.NewEmailClient(cfg.ResendAPIKey, cfg.EmailFrom)
	telegram := notifier.NewTelegramClient(cfg.TelegramBotToken, cfg.TelegramChatID)
	ai := inference.NewClient(cfg.HFAPIKey, cfg.ClipCheckURL)
	engine := moderation.NewEngine(users, articles, comments, interactions, &notifier.Dispatcher{Email: email})

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	router.Register(e, router.Deps{
		Cfg:   cfg,
		Users: users,
		RDB:   rdb,

		Article:     handler.NewArticleHandler(engine),
		Comment:     handler.NewCommentHandler(comments, engine),
		Interaction: handler.NewInteractionHandler(interactions, comments),
		Moderator:   handler.NewModeratorHandler(engine, users, articles, comments),
		Admin:       handler.NewAdminHandler(users, cfg.BcryptCost),
		Settings:    handler.NewSettingsHandler(settings),
		Schedule:    handler.NewScheduleHandler(articles),
		Stripe:      handler.NewStripeHandler(cfg),
		Webhook:     handler.NewStripeWebhookHandler(cfg, subs, rdb),
		Email:       handler.NewEmailHandler(email),
		Telegram:    handler.NewTelegramHandler(telegram),
		Inference:   handler.NewInferenceHandler(ai),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := queue.StartModerationConsumer(); err != nil {
			log.Printf("moderation consumer stopped: %v", err)
		}
	}()
	go runPublicationSweep(ctx, articles, cfg.SweepInterval)

	go func() {
		addr := ":" + cfg.Port
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// runPublicationSweep flips due scheduled articles to published on a
// fixed interval. The HTTP trigger does the same thing; overlapping
// runs are harmless because the update only matches scheduled rows.
func runPublicationSweep(ctx context.Context, articles *repository.ArticleRepo, intervalMin int) {
	if intervalMin <= 0 {
		return
	}
	ticker := time.NewTicker(time.Duration(intervalMin) * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			n, err := articles.PublishDue(sweepCtx, time.Now().UTC())
			cancel()
			if err != nil {
				log.Printf("publication sweep: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("publication sweep: published %d article(s)", n)
			}
		}
	}
}
