package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"go.uber.org/zap"

	"github.com/classport/accounts/internal/account"
	"github.com/classport/accounts/internal/alerts"
	"github.com/classport/accounts/internal/config"
	"github.com/classport/accounts/internal/db"
	appmw "github.com/classport/accounts/internal/middleware"
	"github.com/classport/accounts/internal/session"
	"github.com/classport/accounts/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	if err := db.Migrate(ctx, cfg.DatabaseDSN); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}
	pool, err := db.Connect(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("database unavailable", zap.Error(err))
	}
	defer pool.Close()

	users := store.NewPostgres(pool)
	sess := session.New(users, cfg.SessionSecret, cfg.SessionTTL, cfg.SecureCookies, logger)

	mailer := alerts.New(alerts.Config{
		Provider:     cfg.MailProvider,
		SMTPHost:     cfg.SMTPHost,
		SMTPPort:     cfg.SMTPPort,
		SMTPUsername: cfg.SMTPUsername,
		SMTPPassword: cfg.SMTPPassword,
		From:         cfg.SMTPFrom,
		ReplyTo:      cfg.MailReplyTo,
		PlunkAPIKey:  cfg.PlunkAPIKey,
		PlunkFrom:    cfg.PlunkFrom,
		PlunkAPIURL:  cfg.PlunkAPIURL,
		RedisAddr:    cfg.RedisAddr,
		AppURL:       cfg.AppURL,
		AppName:      cfg.AppName,
	}, logger)
	mailer.Run()
	defer mailer.Close()

	configureOAuth(cfg)

	handler := account.NewHandler(users, sess, mailer, logger)
	guard := appmw.NewGuard(sess, users, logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(sess.Middleware)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	// Public auth routes, rate limited against abuse
	authGroup := e.Group("/auth")
	authGroup.Use(echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(20)))
	authGroup.POST("/signup", handler.Signup)
	authGroup.POST("/signin", handler.Signin)
	authGroup.GET("/signout", handler.Signout)
	authGroup.POST("/password/forgot", handler.ResetPassword)
	authGroup.GET("/oauth/:provider", handler.OAuthBegin)
	authGroup.GET("/oauth/:provider/callback", handler.OAuthCallback)

	e.GET("/me", handler.Me)
	e.GET("/users/lookup", handler.FindOne)
	e.PUT("/users", handler.Update, guard.RequiresLogin)
	e.GET("/users/:id", handler.Profile, guard.HasAuthorization("admin"), guard.UserByID)

	e.POST("/auth/password", handler.ChangePassword, guard.RequiresLogin)
	e.POST("/auth/password/onetime", handler.ChangeOneTimePassword, guard.RequiresLogin)

	if err := e.Start(cfg.Addr); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// configureOAuth registers the OAuth providers that have credentials and
// points gothic at our cookie store for its handshake state.
func configureOAuth(cfg *config.Config) {
	gothic.Store = sessions.NewCookieStore([]byte(cfg.SessionSecret))

	if cfg.GoogleOAuthKey != "" && cfg.GoogleOAuthSecret != "" {
		goth.UseProviders(google.New(
			cfg.GoogleOAuthKey,
			cfg.GoogleOAuthSecret,
			cfg.AppURL+"/auth/oauth/google/callback",
		))
	}
}
