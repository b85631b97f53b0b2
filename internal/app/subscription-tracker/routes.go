// Package subscriptiontracker собирает HTTP-приложение трекера подписок:
// маршруты, middleware защиты и аутентификации, метрики и документацию.
package subscriptiontracker

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/subscription-tracker/internal/config"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/auth/signin"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/auth/signup"
	subcreate "github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/create"
	sublist "github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/list"
	sublistbyuser "github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/listbyuser"
	subread "github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/read"
	subremove "github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/remove"
	subupdate "github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/update"
	userlist "github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/user/list"
	userread "github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/user/read"
	userremove "github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/user/remove"
	userupdate "github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/user/update"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/mware"
	authservice "github.com/magabrotheeeer/subscription-tracker/internal/services/auth"
	subservice "github.com/magabrotheeeer/subscription-tracker/internal/services/subscription"
	userservice "github.com/magabrotheeeer/subscription-tracker/internal/services/user"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config,
	authService *authservice.AuthService,
	subscriptionService *subservice.SubscriptionService,
	userService *userservice.UserService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mware.Protection(cfg.Protection, logger))

		// Открытые конечные точки
		r.Post("/auth/sign-up", signup.New(logger, authService).ServeHTTP)
		r.Post("/auth/sign-in", signin.New(logger, authService).ServeHTTP)
		// детальная карточка подписки доступна без токена
		r.Get("/subscriptions/{id}", subread.New(logger, subscriptionService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(mware.JWTMiddleware(authService, logger))
			r.Get("/subscriptions", sublist.New(logger, subscriptionService).ServeHTTP)
			r.Post("/subscriptions", subcreate.New(logger, subscriptionService).ServeHTTP)
			r.Put("/subscriptions/{id}", subupdate.New(logger, subscriptionService).ServeHTTP)
			r.Delete("/subscriptions/{id}", subremove.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscriptions/user/{id}", sublistbyuser.New(logger, subscriptionService).ServeHTTP)
			r.Get("/users", userlist.New(logger, userService).ServeHTTP)
			r.Get("/users/{id}", userread.New(logger, userService).ServeHTTP)
			r.Put("/users/{id}", userupdate.New(logger, userService).ServeHTTP)
			r.Delete("/users/{id}", userremove.New(logger, userService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
