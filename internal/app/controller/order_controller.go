package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/ikkim/shopadmin-backend/internal/app/repository"
	"github.com/ikkim/shopadmin-backend/internal/app/service"
	apperrors "github.com/ikkim/shopadmin-backend/internal/errors"
	"github.com/ikkim/shopadmin-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type ListOrdersQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending paid shipped delivered cancelled partial_refunded refunded"`
	Search string `form:"search" binding:"max=100"`
	Limit  int    `form:"limit" binding:"gte=0,max=100"`
	Offset int    `form:"offset" binding:"gte=0"`
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required,oneof=pending paid shipped delivered cancelled"`
}

// GetOrders returns one page of orders
// GET /api/v1/admin/orders
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var query ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.RespondWithBindingError(c, err)
		return
	}

	result, err := ctrl.orderService.ListOrders(repository.OrderListFilter{
		Status: model.OrderStatus(query.Status),
		Search: query.Search,
		Limit:  query.Limit,
		Offset: query.Offset,
	})
	if err != nil {
		log.Error("Failed to fetch orders", err)
		apperrors.ParseAndRespond(c, err, "list orders")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetOrderByID returns an order with its refunds
// GET /api/v1/admin/orders/:id
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrderByID(id)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "get order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// UpdateOrderStatus advances fulfilment (Admin only)
// PUT /api/v1/admin/orders/:id/status
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update order status request", map[string]interface{}{
			"order_id": id,
			"error":    err.Error(),
		})
		middleware.RespondWithBindingError(c, err)
		return
	}

	actor := middleware.GetActor(c)
	order, err := ctrl.orderService.UpdateOrderStatus(id, req.Status, actor)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrderTransition) {
			apperrors.BadRequest(c, apperrors.OrderInvalidTransition, err.Error())
			return
		}
		apperrors.ParseAndRespond(c, err, "update order status")
		return
	}

	log.Info("Order status updated successfully", map[string]interface{}{
		"order_id": id,
		"status":   req.Status,
		"actor":    actor,
	})
	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}
