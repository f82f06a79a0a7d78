package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"socialfeed/internal/handlers"
	"socialfeed/internal/middleware"
	"socialfeed/internal/services"
	"socialfeed/internal/store"
)

const sessionName = "socialfeed_session"

// Options carries everything the HTTP layer needs.
type Options struct {
	SessionSecret string
	SiteURL       string
	TemplatesDir  string
	StaticDir     string
	AuthRateLimit int // login/register POSTs per minute per IP, 0 disables

	// TrustedProxies may set X-Forwarded-For. Empty means the client IP is
	// always the TCP peer.
	TrustedProxies []string

	Store  *store.Store
	Auth   *services.AuthService
	Posts  *services.PostService
	News   *services.NewsService
	Logger *zap.Logger
}

// New builds the engine: recovery, request logging, cookie sessions,
// templates, static assets, the current-user loader and every route.
func New(opts Options) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		opts.Logger.Error("Invalid trusted proxies, ignoring forwarded headers", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(opts.Logger))

	cookieStore := cookie.NewStore([]byte(opts.SessionSecret))
	cookieStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, cookieStore))

	r.HTMLRender = LoadTemplates(opts.TemplatesDir)
	if opts.StaticDir != "" {
		r.Static("/static", opts.StaticDir)
	}

	r.Use(middleware.LoadUser(opts.Auth))

	RegisterRoutes(r, opts)
	return r
}

func RegisterRoutes(r *gin.Engine, opts Options) {
	// Handlers
	authHandler := handlers.NewAuthHandler(opts.Auth, opts.Logger)
	postHandler := handlers.NewPostHandler(opts.Posts, opts.Logger)
	userHandler := handlers.NewUserHandler(opts.Posts, opts.Logger)
	seoHandler := handlers.NewSEOHandler(opts.SiteURL, opts.Posts, opts.Logger)
	newsHandler := handlers.NewNewsHandler(opts.News)
	healthHandler := handlers.NewHealthHandler(opts.Store, opts.Logger)

	// Public pages
	r.GET("/", postHandler.Index)    // feed, newest first
	r.GET("/news", newsHandler.Page) // headlines by ?category=

	r.GET("/register", authHandler.ShowRegister)
	authLimit := middleware.RateLimit(opts.AuthRateLimit, handlers.TooManyRequests)
	r.POST("/register", authLimit, authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authLimit, authHandler.Login)

	r.GET("/api/news/:category", newsHandler.API)

	// Crawlers and feed readers
	r.GET("/robots.txt", seoHandler.RobotsTxt)
	r.GET("/sitemap.xml", seoHandler.SitemapXML)
	r.GET("/feed.xml", seoHandler.RSSFeed)

	// Operations
	r.GET("/healthz", healthHandler.Check)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected pages
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/profile", userHandler.Profile)
		authorized.GET("/logout", authHandler.Logout)
	}

	// Protected JSON API
	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	{
		api.POST("/posts", postHandler.Create)
		api.POST("/posts/:id/like", postHandler.ToggleLike)
		api.POST("/posts/:id/react", postHandler.React)
		api.POST("/posts/:id/comments", postHandler.AddComment)
	}
}
