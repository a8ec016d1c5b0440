package api

import (
	"net/http"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/favorite"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/product"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Handlers serves the catalog, cart, favorites and order routes
type Handlers struct {
	products  *product.Service
	carts     *cart.Service
	favorites *favorite.Service
	orders    *order.Service
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewHandlers(products *product.Service, carts *cart.Service, favorites *favorite.Service, orders *order.Service, logger *zap.Logger) *Handlers {
	return &Handlers{
		products:  products,
		carts:     carts,
		favorites: favorites,
		orders:    orders,
		validate:  newValidator(),
		logger:    logger.Named("api"),
	}
}

// ProductRequest carries a product id in the body
type ProductRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
}

// OrderItemRequest is one requested order line
type OrderItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}

// PlaceOrderRequest is the checkout body
type PlaceOrderRequest struct {
	Items   []OrderItemRequest `json:"items" validate:"dive"`
	Address string             `json:"address" validate:"required"`
	Name    string             `json:"name" validate:"required"`
	Total   decimal.Decimal    `json:"total"`
}

// Products

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// Cart

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	lines, err := h.carts.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, lines)
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	qty, err := h.carts.Add(r.Context(), middleware.GetUserID(r.Context()), req.ProductID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "newQuantity": qty})
}

func (h *Handlers) DecrementCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	res, err := h.carts.Decrement(r.Context(), middleware.GetUserID(r.Context()), productID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"productId":   productID,
		"removed":     res.Removed,
		"newQuantity": res.NewQuantity,
	})
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	if err := h.carts.Remove(r.Context(), middleware.GetUserID(r.Context()), productID); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Favorites

func (h *Handlers) GetFavorites(w http.ResponseWriter, r *http.Request) {
	ids, err := h.favorites.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, ids)
}

func (h *Handlers) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	action, err := h.favorites.Toggle(r.Context(), middleware.GetUserID(r.Context()), req.ProductID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"action": action})
}

// Orders

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListRecent(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	items := make([]order.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.Item{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	placed, err := h.orders.Place(r.Context(), middleware.GetUserID(r.Context()), order.PlaceRequest{
		Items:   items,
		Address: req.Address,
		Name:    req.Name,
		Total:   req.Total,
	})
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, placed)
}

// Health

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
