package service

import (
	"errors"
	"fmt"

	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/ikkim/shopadmin-backend/internal/app/refund"
	"github.com/ikkim/shopadmin-backend/internal/app/repository"
	"github.com/ikkim/shopadmin-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrInvalidOrderTransition = errors.New("invalid order status transition")
)

const (
	defaultOrderPageSize = 20
	maxOrderPageSize     = 100
)

// Fulfilment moves forward only. Refund statuses are set by the refund
// service and never through this table.
var orderTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending: {model.OrderStatusPaid, model.OrderStatusCancelled},
	model.OrderStatusPaid:    {model.OrderStatusShipped, model.OrderStatusCancelled},
	model.OrderStatusShipped: {model.OrderStatusDelivered},
}

type OrderListResult struct {
	Orders []model.Order `json:"orders"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

type OrderService interface {
	ListOrders(filter repository.OrderListFilter) (*OrderListResult, error)
	GetOrderByID(orderID uint) (*model.Order, error)
	UpdateOrderStatus(orderID uint, status model.OrderStatus, actor string) (*model.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	db        *gorm.DB
}

func NewOrderService(orderRepo repository.OrderRepository, db *gorm.DB) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		db:        db,
	}
}

func (s *orderService) ListOrders(filter repository.OrderListFilter) (*OrderListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultOrderPageSize
	}
	if filter.Limit > maxOrderPageSize {
		filter.Limit = maxOrderPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	orders, total, err := s.orderRepo.List(filter)
	if err != nil {
		logger.Error("Failed to list orders", err, map[string]interface{}{
			"status": filter.Status,
		})
		return nil, err
	}

	logger.Info("Orders listed", map[string]interface{}{
		"status":   filter.Status,
		"returned": len(orders),
		"total":    total,
	})
	return &OrderListResult{
		Orders: orders,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

func (s *orderService) GetOrderByID(orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Order not found", map[string]interface{}{
				"order_id": orderID,
			})
			return nil, refund.ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// UpdateOrderStatus advances fulfilment. While the order carries a refund
// status the change is recorded in PreRefundStatus, which the order returns
// to once its refunds are gone.
func (s *orderService) UpdateOrderStatus(orderID uint, status model.OrderStatus, actor string) (*model.Order, error) {
	logger.Info("Updating order status", map[string]interface{}{
		"order_id":   orderID,
		"new_status": status,
		"actor":      actor,
	})

	var updated *model.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)

		order, err := orderRepo.FindByIDForUpdate(orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return refund.ErrOrderNotFound
			}
			return err
		}

		inRefund := refund.IsRefundStatus(order.Status)
		current := order.Status
		if inRefund {
			current = order.PreRefundStatus
		}
		if !canTransitionOrder(current, status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidOrderTransition, current, status)
		}

		if inRefund {
			order.PreRefundStatus = status
		} else {
			order.Status = status
		}
		if err := orderRepo.UpdateStatus(order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidOrderTransition) {
			logger.Warn("Order status change rejected", map[string]interface{}{
				"order_id": orderID,
				"error":    err.Error(),
			})
		}
		return nil, err
	}

	logger.Info("Order status updated successfully", map[string]interface{}{
		"order_id":          orderID,
		"status":            updated.Status,
		"pre_refund_status": updated.PreRefundStatus,
	})
	return updated, nil
}

func canTransitionOrder(from, to model.OrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
