package http

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"lyrnios-backend/internal/ai"
	appsvc "lyrnios-backend/internal/app"
	"lyrnios-backend/internal/bootstrap"
	"lyrnios-backend/internal/cache"
	"lyrnios-backend/internal/pkg/mermaid"
	"lyrnios-backend/internal/repository"
	"lyrnios-backend/internal/transport/http/handler"
	"lyrnios-backend/internal/transport/http/middleware"
	"lyrnios-backend/internal/transport/http/response"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	cfg := app.Config
	gin.SetMode(cfg.App.GinMode)
	router := gin.New()
	router.Use(
		middleware.RequestLogger(app.Log.Named("http")),
		middleware.Recovery(app.Log),
		cors.New(corsConfig(cfg.App.CORSOrigins)),
	)
	router.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "route not found")
	})

	userRepo := repository.NewUserRepository(app.DB)
	sessionRepo := repository.NewSessionRepository(app.DB)
	messageRepo := repository.NewMessageRepository(app.DB)

	// typed nils must not reach the service interfaces
	var publisher appsvc.AsyncMessagePublisher
	if app.Publisher != nil {
		publisher = app.Publisher
	}
	var historyCache appsvc.HistoryCache
	if app.HistoryCache != nil {
		historyCache = app.HistoryCache
	}

	normalizer := mermaid.NewNormalizer(app.Log.Named("mermaid"))
	authService := appsvc.NewAuthService(
		userRepo,
		googleOAuthConfig(app),
		cfg.Auth.GoogleUserInfoURL,
		cache.NewStateCache(time.Duration(cfg.Auth.OAuthStateTTLSeconds)*time.Second),
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
		app.Log.Named("auth"),
	)
	chatService := appsvc.NewChatService(sessionRepo, messageRepo, publisher, historyCache, app.Log.Named("chat"))
	llmClient := ai.NewOpenAICompatibleClient(ai.ChatConfig{
		BaseURL:  cfg.LLM.BaseURL,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		Timeout:  time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		JSONMode: cfg.LLM.JSONMode,
	})
	generateService := appsvc.NewGenerateService(llmClient, chatService, normalizer, app.Log.Named("generate"))
	demoService := appsvc.NewDemoService(cfg.Demo.Dir, normalizer, app.Log.Named("demo"))

	healthHandler := handler.NewHealthHandler(app)
	authHandler := handler.NewAuthHandler(authService, cfg.App.FrontendURL, app.Log.Named("auth"))
	chatHandler := handler.NewChatHandler(chatService)
	generateHandler := handler.NewGenerateHandler(generateService, demoService)
	authJWT := middleware.AuthJWT(cfg.Auth.JWTSecret, userRepo)

	router.GET("/", healthHandler.Root)
	router.GET("/health", healthHandler.Live)
	router.GET("/healthz", healthHandler.Check)

	authGroup := router.Group("/auth")
	authGroup.GET("/user", authJWT, authHandler.Me)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/:provider", authHandler.Login)
	authGroup.GET("/:provider/callback", authHandler.Callback)

	sessionGroup := router.Group("/sessions")
	sessionGroup.Use(authJWT)
	sessionGroup.POST("", chatHandler.CreateSession)
	sessionGroup.GET("", chatHandler.ListSessions)
	sessionGroup.GET("/:id", chatHandler.GetSession)
	sessionGroup.PATCH("/:id", chatHandler.RenameSession)
	sessionGroup.DELETE("/:id", chatHandler.DeleteSession)
	sessionGroup.POST("/:id/messages", chatHandler.AddMessage)

	router.POST("/generate", authJWT, generateHandler.Generate)
	router.POST("/demo", generateHandler.Demo)

	return router
}

func googleOAuthConfig(app *bootstrap.App) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     app.Config.Auth.GoogleClientID,
		ClientSecret: app.Config.Auth.GoogleClientSecret,
		RedirectURL:  app.Config.Auth.GoogleRedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}
}

func corsConfig(origins []string) cors.Config {
	conf := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		conf.AllowAllOrigins = true
		return conf
	}
	conf.AllowOrigins = origins
	conf.AllowCredentials = true
	return conf
}
