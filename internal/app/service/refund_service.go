package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/ikkim/shopadmin-backend/internal/app/refund"
	"github.com/ikkim/shopadmin-backend/internal/app/repository"
	"github.com/ikkim/shopadmin-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateRefundInput struct {
	RefundType   model.RefundType
	Amount       decimal.Decimal
	Reason       string
	RefundMethod model.RefundMethod
	Note         string
}

// UpdateRefundInput edits a pending refund. Nil fields keep their value.
type UpdateRefundInput struct {
	RefundType   *model.RefundType
	Amount       *decimal.Decimal
	Reason       *string
	RefundMethod *model.RefundMethod
}

// OrderRefundSummary is an order's refunds with its refundable balance.
type OrderRefundSummary struct {
	Order         *model.Order    `json:"order"`
	Refunds       []model.Refund  `json:"refunds"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PriorRefunded decimal.Decimal `json:"prior_refunded"`
	Remaining     decimal.Decimal `json:"remaining"`
}

type RefundService interface {
	Create(orderID uint, input CreateRefundInput, actor string) (*model.Refund, error)
	Update(refundID uint, input UpdateRefundInput, actor string) (*model.Refund, error)
	UpdateStatus(refundID uint, status model.RefundStatus, note, actor string) (*model.Refund, error)
	Get(refundID uint) (*model.Refund, error)
	ListByOrder(orderID uint) (*OrderRefundSummary, error)
	History(refundID uint) ([]model.RefundStatusHistory, error)
	Delete(refundID uint, actor string) error
	OrderSummary(orderID uint) (*OrderRefundSummary, error)
}

type refundService struct {
	refundRepo repository.RefundRepository
	orderRepo  repository.OrderRepository
	reconciler *refund.Reconciler
	db         *gorm.DB
}

func NewRefundService(
	refundRepo repository.RefundRepository,
	orderRepo repository.OrderRepository,
	reconciler *refund.Reconciler,
	db *gorm.DB,
) RefundService {
	return &refundService{
		refundRepo: refundRepo,
		orderRepo:  orderRepo,
		reconciler: reconciler,
		db:         db,
	}
}

// Create validates and stores a refund while holding the order row lock, so
// two concurrent requests cannot both pass the remaining-balance check.
func (s *refundService) Create(orderID uint, input CreateRefundInput, actor string) (*model.Refund, error) {
	logger.Info("Creating refund", map[string]interface{}{
		"order_id":    orderID,
		"refund_type": input.RefundType,
		"amount":      input.Amount.String(),
		"actor":       actor,
	})

	if err := refund.ValidateMethod(input.RefundMethod); err != nil {
		return nil, err
	}

	var created *model.Refund
	err := s.db.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		refundRepo := s.refundRepo.WithTx(tx)

		order, err := orderRepo.FindByIDForUpdate(orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return refund.ErrOrderNotFound
			}
			return err
		}

		prior := refund.PriorRefundedSum(order.Refunds, 0)
		amount, err := s.reconciler.ValidateNewRefund(order, prior, input.RefundType, input.Amount)
		if err != nil {
			return err
		}

		r := &model.Refund{
			OrderID:      order.ID,
			Amount:       amount,
			Reason:       strings.TrimSpace(input.Reason),
			RefundType:   input.RefundType,
			RefundMethod: input.RefundMethod,
			RequestedBy:  actor,
		}
		if _, err := s.reconciler.AppendStatusHistory(r, model.RefundStatusPending, input.Note, actor); err != nil {
			return err
		}
		if err := refundRepo.Create(r); err != nil {
			return err
		}

		if err := s.syncOrderStatus(orderRepo, order, append(order.Refunds, *r)); err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		logRefundRejection("Refund creation rejected", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	logger.Info("Refund created", map[string]interface{}{
		"refund_id": created.ID,
		"order_id":  orderID,
		"amount":    created.Amount.StringFixed(2),
	})
	return created, nil
}

// Update edits a pending refund, revalidating it as if it were new against
// the order's other refunds.
func (s *refundService) Update(refundID uint, input UpdateRefundInput, actor string) (*model.Refund, error) {
	logger.Info("Updating refund", map[string]interface{}{
		"refund_id": refundID,
		"actor":     actor,
	})

	var updated *model.Refund
	err := s.db.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		refundRepo := s.refundRepo.WithTx(tx)

		r, err := findRefund(refundRepo, refundID)
		if err != nil {
			return err
		}
		if r.Status != model.RefundStatusPending {
			return &refund.ValidationError{
				Code:    refund.CodeNotEditable,
				Message: fmt.Sprintf("only pending refunds can be edited, refund is %s", r.Status),
			}
		}

		order, err := orderRepo.FindByIDForUpdate(r.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return refund.ErrOrderNotFound
			}
			return err
		}

		if input.RefundType != nil {
			r.RefundType = *input.RefundType
		}
		if input.Amount != nil {
			r.Amount = *input.Amount
		}
		if input.Reason != nil {
			r.Reason = strings.TrimSpace(*input.Reason)
		}
		if input.RefundMethod != nil {
			if err := refund.ValidateMethod(*input.RefundMethod); err != nil {
				return err
			}
			r.RefundMethod = *input.RefundMethod
		}

		others := withoutRefund(order.Refunds, r.ID)
		view := *order
		view.Refunds = others
		refund.ApplyOrderStatus(&view, others)

		amount, err := s.reconciler.ValidateNewRefund(&view, refund.PriorRefundedSum(others, 0), r.RefundType, r.Amount)
		if err != nil {
			return err
		}
		r.Amount = amount

		if err := refundRepo.Update(r); err != nil {
			return err
		}
		if err := s.syncOrderStatus(orderRepo, order, append(others, *r)); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		logRefundRejection("Refund update rejected", err, map[string]interface{}{
			"refund_id": refundID,
		})
		return nil, err
	}
	return updated, nil
}

func (s *refundService) UpdateStatus(refundID uint, status model.RefundStatus, note, actor string) (*model.Refund, error) {
	logger.Info("Changing refund status", map[string]interface{}{
		"refund_id": refundID,
		"status":    status,
		"actor":     actor,
	})

	var updated *model.Refund
	err := s.db.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		refundRepo := s.refundRepo.WithTx(tx)

		r, err := findRefund(refundRepo, refundID)
		if err != nil {
			return err
		}
		// Lock the order first so a concurrent create sees the final status.
		order, err := orderRepo.FindByIDForUpdate(r.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return refund.ErrOrderNotFound
			}
			return err
		}

		entry, err := s.reconciler.AppendStatusHistory(r, status, note, actor)
		if err != nil {
			return err
		}
		if err := refundRepo.Update(r); err != nil {
			return err
		}
		if err := refundRepo.AppendHistory(&entry); err != nil {
			return err
		}

		if status == model.RefundStatusRejected {
			if err := s.syncOrderStatus(orderRepo, order, append(withoutRefund(order.Refunds, r.ID), *r)); err != nil {
				return err
			}
		}
		updated = r
		return nil
	})
	if err != nil {
		logRefundRejection("Refund status change rejected", err, map[string]interface{}{
			"refund_id": refundID,
			"status":    status,
		})
		return nil, err
	}

	logger.Info("Refund status changed", map[string]interface{}{
		"refund_id": refundID,
		"status":    updated.Status,
	})
	return updated, nil
}

func (s *refundService) Get(refundID uint) (*model.Refund, error) {
	return findRefund(s.refundRepo, refundID)
}

func (s *refundService) ListByOrder(orderID uint) (*OrderRefundSummary, error) {
	summary, err := s.OrderSummary(orderID)
	if err != nil {
		return nil, err
	}
	refunds, err := s.refundRepo.FindByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	summary.Refunds = refunds
	return summary, nil
}

func (s *refundService) History(refundID uint) ([]model.RefundStatusHistory, error) {
	r, err := findRefund(s.refundRepo, refundID)
	if err != nil {
		return nil, err
	}
	return r.StatusHistory, nil
}

// Delete removes a refund regardless of status. It exists for admin
// corrections; the order status is recomputed from what remains.
func (s *refundService) Delete(refundID uint, actor string) error {
	logger.Warn("Deleting refund", map[string]interface{}{
		"refund_id": refundID,
		"actor":     actor,
	})

	err := s.db.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		refundRepo := s.refundRepo.WithTx(tx)

		r, err := findRefund(refundRepo, refundID)
		if err != nil {
			return err
		}
		order, err := orderRepo.FindByIDForUpdate(r.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return refund.ErrOrderNotFound
			}
			return err
		}
		if err := refundRepo.Delete(r.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return refund.ErrRefundNotFound
			}
			return err
		}
		return s.syncOrderStatus(orderRepo, order, withoutRefund(order.Refunds, r.ID))
	})
	if err != nil {
		logRefundRejection("Refund deletion failed", err, map[string]interface{}{
			"refund_id": refundID,
		})
		return err
	}

	logger.Info("Refund deleted", map[string]interface{}{
		"refund_id": refundID,
		"actor":     actor,
	})
	return nil
}

func (s *refundService) OrderSummary(orderID uint) (*OrderRefundSummary, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, refund.ErrOrderNotFound
		}
		return nil, err
	}

	prior := refund.PriorRefundedSum(order.Refunds, 0)
	return &OrderRefundSummary{
		Order:         order,
		Refunds:       order.Refunds,
		TotalAmount:   order.TotalAmount,
		PriorRefunded: prior,
		Remaining:     refund.RefundableRemaining(order.TotalAmount, prior),
	}, nil
}

func (s *refundService) syncOrderStatus(orderRepo repository.OrderRepository, order *model.Order, refunds []model.Refund) error {
	from := order.Status
	if !refund.ApplyOrderStatus(order, refunds) {
		return nil
	}
	if err := orderRepo.UpdateStatus(order); err != nil {
		return err
	}
	logger.Info("Order status follows refunds", map[string]interface{}{
		"order_id": order.ID,
		"from":     from,
		"to":       order.Status,
	})
	return nil
}

func findRefund(repo repository.RefundRepository, id uint) (*model.Refund, error) {
	r, err := repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, refund.ErrRefundNotFound
		}
		return nil, err
	}
	return r, nil
}

func withoutRefund(refunds []model.Refund, id uint) []model.Refund {
	out := make([]model.Refund, 0, len(refunds))
	for _, r := range refunds {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

func logRefundRejection(msg string, err error, fields map[string]interface{}) {
	if refund.IsValidationError(err) || errors.Is(err, refund.ErrOrderNotFound) || errors.Is(err, refund.ErrRefundNotFound) {
		fields["error"] = err.Error()
		logger.Warn(msg, fields)
		return
	}
	logger.Error(msg, err, fields)
}
