package services

import (
	"context"
	"strings"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

type OrderService struct {
	store *repositories.Store
}

func NewOrderService(store *repositories.Store) *OrderService {
	return &OrderService{store: store}
}

// ForUser lists a user's orders with their items.
func (s *OrderService) ForUser(ctx context.Context, userID uint) ([]models.CustomerOrder, error) {
	if _, err := s.store.Users.FindByID(ctx, userID); err != nil {
		return nil, lookup(err, "User not found with ID: %d", userID)
	}

	orders, err := s.store.Orders.ForUser(ctx, userID)
	if err != nil {
		return nil, internal("Internal server error", err)
	}
	if len(orders) == 0 {
		logger.WithCtx(ctx).Debug("order: none found", "user_id", userID)
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, id uint) (models.CustomerOrder, error) {
	o, err := s.store.Orders.FindByID(ctx, id)
	if err != nil {
		return models.CustomerOrder{}, lookup(err, "Order not found with ID: %d", id)
	}
	return o, nil
}

// Cancel moves a PAID order to Cancelled. Any other status is refused.
func (s *OrderService) Cancel(ctx context.Context, id uint) (models.CustomerOrder, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return models.CustomerOrder{}, err
	}

	logger.WithCtx(ctx).Info("order: cancel requested", "order_id", id, "shipment_status", o.ShipmentStatus)
	if !strings.EqualFold(o.Status, models.OrderStatusPaid) {
		return models.CustomerOrder{}, validation("Only orders with status 'PAID' can be cancelled.")
	}

	if err := s.store.Orders.UpdateStatus(ctx, o.ID, models.OrderStatusCancelled, models.ShipmentCancelled); err != nil {
		return models.CustomerOrder{}, internal("Failed to cancel order", err)
	}
	o.Status = models.OrderStatusCancelled
	o.ShipmentStatus = models.ShipmentCancelled

	metrics.OrdersCancelled.Inc()
	event.Fire(ctx, event.OrderCancelled, o)
	return o, nil
}
