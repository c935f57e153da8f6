package restapi

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yusufsyaifudin/appstore/internal/svc/appsvc"
	"github.com/yusufsyaifudin/appstore/internal/svc/authsvc"
	"github.com/yusufsyaifudin/appstore/internal/svc/changelogsvc"
	"github.com/yusufsyaifudin/appstore/internal/svc/policy"
	"github.com/yusufsyaifudin/appstore/internal/svc/ratingsvc"
	"github.com/yusufsyaifudin/appstore/pkg/metric"
	"github.com/yusufsyaifudin/appstore/pkg/respbuilder"
	"github.com/yusufsyaifudin/appstore/pkg/tracer"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
	"github.com/yusufsyaifudin/appstore/transport/restapi/handlerapp"
	"github.com/yusufsyaifudin/appstore/transport/restapi/handlerauth"
	"github.com/yusufsyaifudin/appstore/transport/restapi/handlerchangelog"
	"github.com/yusufsyaifudin/appstore/transport/restapi/handlerrating"
	"github.com/yusufsyaifudin/appstore/transport/restapi/httpauth"
	"github.com/yusufsyaifudin/appstore/transport/restapi/httptyped"
	"go.opentelemetry.io/otel"
)

type Config struct {
	ServiceName      string               `validate:"required"`
	AuthService      authsvc.Service      `validate:"required"`
	AppService       appsvc.Service       `validate:"required"`
	ChangelogService changelogsvc.Service `validate:"required"`
	RatingService    ratingsvc.Service    `validate:"required"`

	// AllowedOrigins is the browser origins allowed to call with credential (cookie).
	AllowedOrigins []string
	CookieSecure   bool

	// DownloadRatePerMinute zero disables the per ip download throttle.
	DownloadRatePerMinute int `validate:"min=0"`
	DownloadBurst         int `validate:"min=0"`

	// TrustedProxyHops is the number of reverse proxies appending X-Forwarded-For in front of the server.
	// Zero keys the download throttle by the connection address.
	TrustedProxyHops int `validate:"min=0"`

	// MaxBodyBytes caps every request body, zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64 `validate:"min=0"`
}

// DefaultMaxBodyBytes fits an app submission with icon and screenshots of 500KB each.
const DefaultMaxBodyBytes int64 = 8 << 20

type DefaultHTTP struct {
	router *chi.Mux
}

func NewHTTPTransport(cfg Config) (*DefaultHTTP, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("http transport cfg error: %w", err)
	}

	guard, err := httpauth.New(httpauth.Config{
		AuthService:  cfg.AuthService,
		CookieSecure: cfg.CookieSecure,
	})
	if err != nil {
		return nil, err
	}

	// ** Auth handler
	handlerAuth, err := handlerauth.NewHandler(handlerauth.HandlerConfig{
		AuthService: cfg.AuthService,
		Guard:       guard,
	})
	if err != nil {
		return nil, err
	}

	// ** Application handler
	handlerApp, err := handlerapp.NewHandler(handlerapp.HandlerConfig{
		AppService: cfg.AppService,
	})
	if err != nil {
		return nil, err
	}

	// ** Changelog handler
	handlerChangelog, err := handlerchangelog.NewHandler(handlerchangelog.HandlerConfig{
		ChangelogService: cfg.ChangelogService,
	})
	if err != nil {
		return nil, err
	}

	// ** Rating handler
	handlerRating, err := handlerrating.NewHandler(handlerrating.HandlerConfig{
		RatingService: cfg.RatingService,
	})
	if err != nil {
		return nil, err
	}

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) <= 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	router := chi.NewRouter()

	skip := func(r *http.Request) bool {
		switch strings.TrimSpace(path.Clean(r.URL.Path)) {
		case "/health",
			"/metrics":
			return true
		}

		return false
	}

	router.Use(middleware.StripSlashes)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Tracer-ID"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	router.Use(func(next http.Handler) http.Handler {
		return tracer.Middleware(tracer.MiddlewareConfig{
			TracerName:     "github.com/yusufsyaifudin/appstore",
			ServiceName:    cfg.ServiceName,
			SkipFunc:       skip,
			TracerProvider: otel.GetTracerProvider(),    // global tracer provider
			TextPropagator: otel.GetTextMapPropagator(), // use global text map propagator
		}, next)
	})

	router.Use(metric.Middleware)

	// add trace id and also log request response
	router.Use(func(next http.Handler) http.Handler {
		return requestLogger(skip, maxBodyBytes, next)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respbuilder.WriteJSON(http.StatusOK, w, r, httptyped.HealthResp{Status: "ok"})
	})
	router.Handle("/metrics", promhttp.Handler())

	// Resource: auth
	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", handlerAuth.Register())
		r.Post("/login", handlerAuth.Login())
		r.Get("/verify", handlerAuth.Verify())

		r.Group(func(r chi.Router) {
			r.Use(guard.RequireAuth)
			r.Get("/me", handlerAuth.Me())
			r.Put("/me", handlerAuth.UpdateMe())
			r.Post("/logout", handlerAuth.Logout())
		})
	})

	download := http.Handler(http.HandlerFunc(handlerApp.Download()))
	if cfg.DownloadRatePerMinute > 0 {
		download = newIPLimiter(cfg.DownloadRatePerMinute, cfg.DownloadBurst, cfg.TrustedProxyHops).middleware(download)
	}

	// Resource: apps
	router.Route("/apps", func(r chi.Router) {
		r.Get("/", handlerApp.ListApps())
		r.Get("/{id}", handlerApp.GetApp())
		r.Get("/{id}/changelogs", handlerChangelog.ListByApp())
		r.Get("/{id}/ratings", handlerRating.List())
		r.Method(http.MethodPost, "/{id}/download", download)

		r.Group(func(r chi.Router) {
			r.Use(guard.RequireAuth)
			r.Get("/developer", handlerApp.ListMyApps())
			r.Post("/developer", handlerApp.CreateApp())
			r.Put("/{id}", handlerApp.PatchApp())
			r.Delete("/{id}", handlerApp.DelApp())
			r.Post("/{id}/ratings", handlerRating.Add())
		})
	})

	// Resource: changelogs
	router.Route("/changelogs", func(r chi.Router) {
		r.Use(guard.RequireAuth)
		r.Get("/", handlerChangelog.List())
		r.Post("/", handlerChangelog.Create())
		r.Put("/{id}", handlerChangelog.Patch())
		r.Delete("/{id}", handlerChangelog.Delete())
	})

	// Resource: moderation
	router.Route("/admin", func(r chi.Router) {
		r.Use(guard.RequireRole(policy.RoleAdmin))
		r.Get("/apps", handlerApp.AdminListApps())
	})

	instance := &DefaultHTTP{
		router: router,
	}

	return instance, nil
}

// Server .
func (a *DefaultHTTP) Server() http.Handler {
	return a.router
}
