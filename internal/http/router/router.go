package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/buran83/makechat/internal/http/handler"
	"github.com/buran83/makechat/internal/http/middleware"
	"github.com/buran83/makechat/internal/http/response"
)

// maxPayloadBytes caps every JSON request body.
const maxPayloadBytes = 1024

type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	RoomHandler      *handler.RoomHandler
	TokenHandler     *handler.TokenHandler
	UserHandler      *handler.UserHandler
	DashboardHandler *handler.DashboardHandler
	Resolver         middleware.CredentialResolver
	AuthRateLimitRPM int
	AuthRateLimiter  func(http.Handler) http.Handler
	EnableOTelHTTP   bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.Negotiate)

	authLimiter := dep.AuthRateLimiter
	if authLimiter == nil {
		authLimiter = middleware.NewRateLimiter(dep.AuthRateLimitRPM, time.Minute).Middleware()
	}
	loginRequired := middleware.LoginRequired(dep.Resolver)
	adminRequired := middleware.AdminRequired(dep.Resolver)
	tokenRequired := middleware.TokenRequired(dep.Resolver)
	maxBody := middleware.MaxBody(maxPayloadBytes)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		response.OK(w)
	})

	r.Route("/api", func(r chi.Router) {
		r.With(authLimiter, maxBody, middleware.DecodeJSON).Post("/login", dep.AuthHandler.Login)
		r.With(authLimiter, maxBody, middleware.DecodeJSON).Post("/register", dep.AuthHandler.Register)
		r.With(loginRequired).Get("/ping", dep.AuthHandler.Ping)
		r.With(loginRequired).Get("/logout", dep.AuthHandler.Logout)

		r.Route("/rooms", func(r chi.Router) {
			r.With(loginRequired).Get("/", dep.RoomHandler.List)
			r.With(adminRequired, maxBody, middleware.DecodeJSON).Post("/", dep.RoomHandler.Create)
			r.With(loginRequired, maxBody, middleware.DecodeJSON).Patch("/{id}", dep.RoomHandler.Update)
			r.With(loginRequired, maxBody, middleware.DecodeJSON).Put("/{id}", dep.RoomHandler.Update)
			r.With(loginRequired).Delete("/{id}", dep.RoomHandler.Delete)
		})

		r.Route("/tokens", func(r chi.Router) {
			r.With(loginRequired).Get("/", dep.TokenHandler.List)
			r.With(loginRequired, maxBody, middleware.DecodeJSON).Post("/", dep.TokenHandler.Create)
			r.With(loginRequired).Delete("/{id}", dep.TokenHandler.Delete)
		})

		r.With(adminRequired).Get("/users", dep.UserHandler.List)
		r.With(tokenRequired).Get("/me", dep.UserHandler.Me)
		r.With(loginRequired).Get("/dashboard", dep.DashboardHandler.Menu)
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
