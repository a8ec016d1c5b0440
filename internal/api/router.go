package api

import (
	"net/http"
	"time"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/auth"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	Handlers     *Handlers
	AuthHandlers *AuthHandlers
	JWTService   *auth.JWTService
	Logger       *zap.Logger
}

// NewRouter mounts every route; /cart/clear is registered before /cart/{productId}
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger.Named("http")))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	h := cfg.Handlers
	r.Get("/health", h.Health)
	r.Get("/products", h.GetProducts)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandlers.Register)
		r.Post("/login", cfg.AuthHandlers.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.JWTService))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Post("/add", h.AddToCart)
			r.Delete("/clear", h.ClearCart)
			r.Patch("/{productId}/decrement", h.DecrementCartItem)
			r.Delete("/{productId}", h.RemoveFromCart)
		})

		r.Get("/favorites", h.GetFavorites)
		r.Post("/favorites/toggle", h.ToggleFavorite)

		r.Get("/orders", h.GetOrders)
		r.Post("/orders", h.PlaceOrder)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondJSONError(w, "not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	return r
}
