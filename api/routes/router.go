package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riderschoice/riderschoice-backend/api/controllers"
	"github.com/riderschoice/riderschoice-backend/api/middleware"
	"github.com/riderschoice/riderschoice-backend/api/responses"
	"github.com/riderschoice/riderschoice-backend/internal/auth"
	"github.com/riderschoice/riderschoice-backend/internal/cart"
	"github.com/riderschoice/riderschoice-backend/internal/catalog"
	"github.com/riderschoice/riderschoice-backend/internal/orders"
	"github.com/riderschoice/riderschoice-backend/internal/users"
	"github.com/riderschoice/riderschoice-backend/internal/wishlist"
	"github.com/riderschoice/riderschoice-backend/pkg/auth/session"
	"github.com/riderschoice/riderschoice-backend/pkg/config"
	"github.com/riderschoice/riderschoice-backend/pkg/enums"
	pkgerrors "github.com/riderschoice/riderschoice-backend/pkg/errors"
	"github.com/riderschoice/riderschoice-backend/pkg/logger"
	"github.com/riderschoice/riderschoice-backend/pkg/metrics"
)

// RedisStore is the redis surface the HTTP layer needs for idempotent
// replays and auth throttling. *redis.Client satisfies it.
type RedisStore interface {
	middleware.ReplayStore
	middleware.Counter
}

// Dependencies groups everything the router wires into handlers.
type Dependencies struct {
	Sessions    session.AccessSessionChecker
	Redis       RedisStore
	Ready       map[string]controllers.Pinger
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics

	Auth     auth.Service
	Users    users.Service
	Catalog  catalog.Service
	Cart     cart.Service
	Orders   orders.Service
	Wishlist wishlist.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		chimiddleware.RealIP,
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)
	if deps.HTTPMetrics != nil {
		r.Use(middleware.Metrics(deps.HTTPMetrics))
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	mountAPI(r, cfg, logg, deps)
	r.Route("/api", func(r chi.Router) {
		mountAPI(r, cfg, logg, deps)
	})

	return r
}

// mountAPI registers the full handler set; it is mounted twice so clients on
// either the bare or the /api prefix reach the same handlers.
func mountAPI(r chi.Router, cfg *config.Config, logg *logger.Logger, deps Dependencies) {
	authed := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	admin := middleware.RequireRole(logg, enums.AccountRoleAdmin)
	replayShort := middleware.Idempotent(deps.Redis, middleware.ReplayShort, logg)
	replayLong := middleware.Idempotent(deps.Redis, middleware.ReplayLong, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", controllers.Health(cfg))
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.Ready, logg))
	})

	r.Route("/items", func(r chi.Router) {
		r.Get("/", controllers.CatalogList(deps.Catalog, logg))
		r.Get("/featured", controllers.CatalogFeatured(deps.Catalog, logg))
		r.Get("/category/{category}", controllers.CatalogByCategory(deps.Catalog, logg))
		r.Get("/{id}", controllers.CatalogGet(deps.Catalog, logg))

		r.With(authed, replayShort).Post("/{id}/reviews", controllers.CatalogAddReview(deps.Catalog, logg))

		r.Group(func(r chi.Router) {
			r.Use(authed, admin)
			r.Post("/", controllers.CatalogCreate(deps.Catalog, logg))
			r.Put("/{id}", controllers.CatalogUpdate(deps.Catalog, logg))
			r.Delete("/{id}", controllers.CatalogDelete(deps.Catalog, logg))
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.With(middleware.Throttle(middleware.RegisterPolicy(cfg.AuthRateLimit), deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.With(middleware.Throttle(middleware.LoginPolicy(cfg.AuthRateLimit), deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(authed)
			r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))
			r.Get("/profile", controllers.UserProfile(deps.Users, logg))
			r.Put("/profile", controllers.UserUpdateProfile(deps.Users, logg))

			r.Get("/cart", controllers.CartGet(deps.Cart, logg))
			r.Post("/cart", controllers.CartAdd(deps.Cart, logg))
			r.Put("/cart/{itemId}", controllers.CartUpdate(deps.Cart, logg))
			r.Delete("/cart/{itemId}", controllers.CartRemove(deps.Cart, logg))

			r.Post("/wishlist/{itemId}", controllers.WishlistAddByPath(deps.Wishlist, logg))
			r.Delete("/wishlist/{itemId}", controllers.WishlistRemove(deps.Wishlist, logg))
		})
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(authed)
		r.With(replayLong).Post("/", controllers.OrderCreate(deps.Orders, logg))
		r.Get("/", controllers.OrderListMine(deps.Orders, logg))
		r.Get("/{id}", controllers.OrderGet(deps.Orders, logg))
		r.With(replayLong).Post("/{id}/cancel", controllers.OrderCancel(deps.Orders, logg))
		r.With(admin, replayShort).Put("/{id}/status", controllers.OrderUpdateStatus(deps.Orders, logg))
	})

	r.Route("/wishlist", func(r chi.Router) {
		r.Use(authed)
		r.Get("/", controllers.WishlistGet(deps.Wishlist, logg))
		r.Get("/count", controllers.WishlistCount(deps.Wishlist, logg))
		r.With(replayShort).Post("/add", controllers.WishlistAdd(deps.Wishlist, logg))
		r.Delete("/remove/{itemId}", controllers.WishlistRemove(deps.Wishlist, logg))
		r.Delete("/delete/{itemId}", controllers.WishlistDelete(deps.Wishlist, logg))
	})
}
