package order

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// DeliveryDelay is added to the creation time to get the delivery date
	DeliveryDelay = 6 * time.Hour
	// VisibleFor bounds how far back ListRecent looks
	VisibleFor = 6 * time.Hour
)

var totalTolerance = decimal.New(1, -2)

var (
	ErrNoItems         = fmt.Errorf("%w: no items in order", domain.ErrValidation)
	ErrInvalidQuantity = fmt.Errorf("%w: item quantity must be at least 1", domain.ErrValidation)
	ErrDuplicateItem   = fmt.Errorf("%w: duplicate product in order", domain.ErrValidation)
	ErrItemsNotFound   = fmt.Errorf("%w: items not found", domain.ErrValidation)
	ErrTotalMismatch   = fmt.Errorf("%w: total mismatch", domain.ErrValidation)
	ErrMissingContact  = fmt.Errorf("%w: address and name are required", domain.ErrValidation)
	ErrNotAuthorized   = fmt.Errorf("%w: user is not authorized", domain.ErrUnauthorized)
)

// Item is a requested order line
type Item struct {
	ProductID int64
	Quantity  int
}

// PlaceRequest is the checkout input
type PlaceRequest struct {
	Items   []Item
	Address string
	Name    string
	Total   decimal.Decimal
}

// Publisher publishes domain events
type Publisher interface {
	Publish(ctx context.Context, key, eventType string, data any) error
}

// Service places and lists orders
type Service struct {
	store     store.OrderStore
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new order service; publisher may be nil
func NewService(orders store.OrderStore, publisher Publisher, logger *zap.Logger) *Service {
	return &Service{
		store:     orders,
		publisher: publisher,
		logger:    logger.Named("order"),
		now:       time.Now,
	}
}

func validate(req PlaceRequest) error {
	if len(req.Items) == 0 {
		return ErrNoItems
	}
	if strings.TrimSpace(req.Address) == "" || strings.TrimSpace(req.Name) == "" {
		return ErrMissingContact
	}

	seen := make(map[int64]bool, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity < 1 {
			return ErrInvalidQuantity
		}
		if seen[it.ProductID] {
			return ErrDuplicateItem
		}
		seen[it.ProductID] = true
	}
	return nil
}

// Place verifies prices against the catalog and creates the order,
// clearing the user's server cart in the same transaction.
func (s *Service) Place(ctx context.Context, userID int64, req PlaceRequest) (*domain.Order, error) {
	if userID <= 0 {
		return nil, ErrNotAuthorized
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	var placed *domain.Order
	err := s.store.InTx(ctx, func(tx store.OrderTx) error {
		ids := make([]int64, len(req.Items))
		for i, it := range req.Items {
			ids[i] = it.ProductID
		}

		prices, err := tx.ProductPrices(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to load prices: %w", err)
		}
		if len(prices) != len(req.Items) {
			return ErrItemsNotFound
		}

		items := make([]domain.OrderItem, len(req.Items))
		total := decimal.Zero
		for i, it := range req.Items {
			price := prices[it.ProductID]
			items[i] = domain.OrderItem{ProductID: it.ProductID, Price: price, Quantity: it.Quantity}
			total = total.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		if total.Sub(req.Total).Abs().GreaterThan(totalTolerance) {
			return ErrTotalMismatch
		}

		o := &domain.Order{
			UserID:  userID,
			Address: strings.TrimSpace(req.Address),
			Name:    strings.TrimSpace(req.Name),
			Total:   total,
		}
		if err := tx.InsertOrder(ctx, o, DeliveryDelay); err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}
		if err := tx.InsertItems(ctx, o.ID, items); err != nil {
			return fmt.Errorf("failed to insert order items: %w", err)
		}
		if err := tx.ClearCart(ctx, userID); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}

		number, err := tx.CountSince(ctx, userID, o.CreatedAt.Add(-VisibleFor))
		if err != nil {
			return fmt.Errorf("failed to number order: %w", err)
		}
		o.Number = number

		if o.Items, err = tx.LoadItems(ctx, o.ID); err != nil {
			return fmt.Errorf("failed to load order items: %w", err)
		}
		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.Int64("order_id", placed.ID),
		zap.Int64("user_id", userID),
		zap.String("total", placed.Total.StringFixed(2)),
	)
	s.publishPlaced(ctx, placed)
	return placed, nil
}

func (s *Service) publishPlaced(ctx context.Context, o *domain.Order) {
	if s.publisher == nil {
		return
	}

	event := OrderPlaced{
		OrderID:      o.ID,
		UserID:       o.UserID,
		Name:         o.Name,
		Address:      o.Address,
		Total:        o.Total,
		PlacedAt:     o.CreatedAt,
		DeliveryDate: o.DeliveryDate,
	}
	for _, it := range o.Items {
		event.Items = append(event.Items, PlacedItem{
			ProductID: it.ProductID,
			Title:     it.Title,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	key := strconv.FormatInt(o.ID, 10)
	if err := s.publisher.Publish(ctx, key, EventOrderPlaced, event); err != nil {
		s.logger.Warn("failed to publish OrderPlaced", zap.Int64("order_id", o.ID), zap.Error(err))
	}
}

// ListRecent returns the user's orders of the last six hours, newest first
func (s *Service) ListRecent(ctx context.Context, userID int64) ([]domain.Order, error) {
	if userID <= 0 {
		return nil, ErrNotAuthorized
	}

	orders, err := s.store.ListSince(ctx, userID, s.now().Add(-VisibleFor))
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}
