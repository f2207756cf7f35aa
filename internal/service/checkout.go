package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type ProductReader interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Product, error)
}

type OrderWriter interface {
	CreateOrder(ctx context.Context, order *models.Order) error
}

type CheckoutService struct {
	Products  ProductReader
	Orders    OrderWriter
	Publisher events.Publisher
}

type OrderCreatedEvent struct {
	Type          string `json:"type"`
	OrderID       string `json:"orderID"`
	UserID        string `json:"userID,omitempty"`
	TotalAmount   string `json:"totalAmount"`
	PaymentMethod string `json:"paymentMethod"`
	Items         int    `json:"items"`
}

// PlaceOrder revalidates the submitted cart against the catalog and writes
// the order. Client prices are never read: every line is priced from the
// product row. userID is empty for guest checkouts.
func (s *CheckoutService) PlaceOrder(ctx context.Context, req transport.CheckoutRequest, userID string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("service", "checkout")

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	ids := uniqueIDs(req.CartItems)
	products, err := s.Products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	if len(products) != len(ids) {
		l.Warn("checkout_products_missing", "requested", len(ids), "found", len(products))
		return nil, ErrProductUnavailable
	}

	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]models.OrderItem, 0, len(req.CartItems))
	total := decimal.Zero
	for _, line := range req.CartItems {
		p, ok := byID[line.ID]
		if !ok {
			return nil, ErrProductUnavailable
		}
		item := models.OrderItem{
			ProductID:    p.ID,
			ProductName:  p.Name,
			Quantity:     line.Quantity,
			PriceAtOrder: p.Price,
		}
		total = total.Add(item.LineTotal())
		items = append(items, item)
	}

	order := &models.Order{
		FullName:      req.FullName,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		City:          req.City,
		Notes:         req.Notes,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		Status:        models.StatusPending,
		TotalAmount:   total,
		Items:         items,
	}
	if userID != "" {
		order.UserID = &userID
	}

	if err := s.Orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	events.Emit(ctx, s.Publisher, events.TopicOrders, order.ID, OrderCreatedEvent{
		Type:          "order_created",
		OrderID:       order.ID,
		UserID:        userID,
		TotalAmount:   order.TotalAmount.StringFixed(2),
		PaymentMethod: string(order.PaymentMethod),
		Items:         len(order.Items),
	})

	return order, nil
}

func uniqueIDs(lines []transport.CartItem) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ID]; ok {
			continue
		}
		seen[line.ID] = struct{}{}
		ids = append(ids, line.ID)
	}
	return ids
}
