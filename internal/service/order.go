package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/events"
)

var allowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:    {models.StatusProcessing, models.StatusCancelled},
	models.StatusProcessing: {models.StatusShipped, models.StatusCancelled},
	models.StatusShipped:    {models.StatusDelivered, models.StatusCancelled},
	models.StatusDelivered:  {},
	models.StatusCancelled:  {},
}

func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type OrderRepo interface {
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context, status models.OrderStatus, offset, limit int) (int64, []models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, from, to models.OrderStatus) error
}

type OrderService struct {
	Repo      OrderRepo
	Publisher events.Publisher
}

type OrderStatusEvent struct {
	Type    string `json:"type"`
	OrderID string `json:"orderID"`
	From    string `json:"from"`
	To      string `json:"to"`
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, status string, offset, limit int) (int64, []models.Order, error) {
	st := models.OrderStatus(status)
	if st != "" && !st.Valid() {
		return 0, nil, fieldError("status", "unknown order status")
	}
	return s.Repo.ListOrders(ctx, st, offset, limit)
}

func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	to := models.OrderStatus(status)
	if !to.Valid() {
		return nil, fieldError("status", "unknown order status")
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if !CanTransition(from, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	if err := s.Repo.UpdateOrderStatus(ctx, id, from, to); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order changed concurrently", ErrConflict)
		}
		return nil, err
	}
	order.Status = to

	events.Emit(ctx, s.Publisher, events.TopicOrders, id, OrderStatusEvent{
		Type:    "order_status_changed",
		OrderID: id,
		From:    string(from),
		To:      string(to),
	})
	return order, nil
}
