package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/ikkim/shopadmin-backend/internal/app/service"
	apperrors "github.com/ikkim/shopadmin-backend/internal/errors"
	"github.com/ikkim/shopadmin-backend/internal/middleware"
	"github.com/shopspring/decimal"
)

type RefundController struct {
	refundService service.RefundService
}

func NewRefundController(refundService service.RefundService) *RefundController {
	return &RefundController{
		refundService: refundService,
	}
}

// Amounts accept either a JSON number or a decimal string ("12.50").
type CreateRefundRequest struct {
	RefundType   model.RefundType   `json:"refund_type" binding:"required"`
	Amount       *decimal.Decimal   `json:"amount" binding:"required"`
	Reason       string             `json:"reason" binding:"max=1000"`
	RefundMethod model.RefundMethod `json:"refund_method" binding:"required"`
	Note         string             `json:"note" binding:"max=1000"`
}

type UpdateRefundRequest struct {
	RefundType   *model.RefundType   `json:"refund_type"`
	Amount       *decimal.Decimal    `json:"amount"`
	Reason       *string             `json:"reason" binding:"omitempty,max=1000"`
	RefundMethod *model.RefundMethod `json:"refund_method"`
}

type UpdateRefundStatusRequest struct {
	Status model.RefundStatus `json:"status" binding:"required,oneof=pending approved rejected completed"`
	Note   string             `json:"note" binding:"max=1000"`
}

// ListOrderRefunds returns an order's refunds and refundable balance
// GET /api/v1/admin/orders/:id/refunds
func (ctrl *RefundController) ListOrderRefunds(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	summary, err := ctrl.refundService.ListByOrder(orderID)
	if err != nil {
		log.Warn("Failed to list order refunds", map[string]interface{}{
			"order_id": orderID,
			"error":    err.Error(),
		})
		apperrors.ParseAndRespond(c, err, "list order refunds")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// CreateRefund records a refund against an order
// POST /api/v1/admin/orders/:id/refunds
func (ctrl *RefundController) CreateRefund(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create refund request", map[string]interface{}{
			"order_id": orderID,
			"error":    err.Error(),
		})
		middleware.RespondWithBindingError(c, err)
		return
	}

	actor := middleware.GetActor(c)
	created, err := ctrl.refundService.Create(orderID, service.CreateRefundInput{
		RefundType:   req.RefundType,
		Amount:       *req.Amount,
		Reason:       req.Reason,
		RefundMethod: req.RefundMethod,
		Note:         req.Note,
	}, actor)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "create refund")
		return
	}

	log.Info("Refund created", map[string]interface{}{
		"refund_id": created.ID,
		"order_id":  orderID,
		"actor":     actor,
	})
	c.JSON(http.StatusCreated, gin.H{
		"refund": created,
	})
}

// GetRefund returns a refund with its status history
// GET /api/v1/admin/refunds/:id
func (ctrl *RefundController) GetRefund(c *gin.Context) {
	refundID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	found, err := ctrl.refundService.Get(refundID)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "get refund")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"refund": found,
	})
}

// UpdateRefund edits a pending refund
// PUT /api/v1/admin/refunds/:id
func (ctrl *RefundController) UpdateRefund(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	refundID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithBindingError(c, err)
		return
	}

	actor := middleware.GetActor(c)
	updated, err := ctrl.refundService.Update(refundID, service.UpdateRefundInput{
		RefundType:   req.RefundType,
		Amount:       req.Amount,
		Reason:       req.Reason,
		RefundMethod: req.RefundMethod,
	}, actor)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "update refund")
		return
	}

	log.Info("Refund updated", map[string]interface{}{
		"refund_id": refundID,
		"actor":     actor,
	})
	c.JSON(http.StatusOK, gin.H{
		"refund": updated,
	})
}

// UpdateRefundStatus moves a refund through its lifecycle
// PUT /api/v1/admin/refunds/:id/status
func (ctrl *RefundController) UpdateRefundStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	refundID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateRefundStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithBindingError(c, err)
		return
	}

	actor := middleware.GetActor(c)
	updated, err := ctrl.refundService.UpdateStatus(refundID, req.Status, req.Note, actor)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "update refund status")
		return
	}

	log.Info("Refund status updated", map[string]interface{}{
		"refund_id": refundID,
		"status":    updated.Status,
		"actor":     actor,
	})
	c.JSON(http.StatusOK, gin.H{
		"refund": updated,
	})
}

// DeleteRefund removes a refund outright
// DELETE /api/v1/admin/refunds/:id
func (ctrl *RefundController) DeleteRefund(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	refundID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actor := middleware.GetActor(c)
	if err := ctrl.refundService.Delete(refundID, actor); err != nil {
		apperrors.ParseAndRespond(c, err, "delete refund")
		return
	}

	log.Warn("Refund deleted", map[string]interface{}{
		"refund_id": refundID,
		"actor":     actor,
	})
	c.JSON(http.StatusOK, gin.H{
		"message": "Refund deleted",
	})
}
