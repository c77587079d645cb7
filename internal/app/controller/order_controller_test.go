package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/ikkim/shopadmin-backend/internal/app/repository"
	"github.com/ikkim/shopadmin-backend/internal/app/service"
	apperrors "github.com/ikkim/shopadmin-backend/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupOrderControllerTest(t *testing.T) (*gin.Engine, []*model.Order) {
	router, testDB := newTestRouter(t)

	orderRepo := repository.NewOrderRepository(testDB)
	ctrl := NewOrderController(service.NewOrderService(orderRepo, testDB))

	router.GET("/admin/orders", ctrl.GetOrders)
	router.GET("/admin/orders/:id", ctrl.GetOrderByID)
	router.PUT("/admin/orders/:id/status", ctrl.UpdateOrderStatus)

	var orders []*model.Order
	for i, status := range []model.OrderStatus{model.OrderStatusPaid, model.OrderStatusShipped, model.OrderStatusPaid} {
		order := &model.Order{
			OrderNumber:   fmt.Sprintf("ORD-60%02d", i),
			CustomerName:  "Dana Yoon",
			CustomerEmail: fmt.Sprintf("dana%d@example.com", i),
			TotalAmount:   decimal.RequireFromString("42.00"),
			Status:        status,
		}
		require.NoError(t, orderRepo.Create(order))
		orders = append(orders, order)
	}
	return router, orders
}

func TestOrderController_GetOrders(t *testing.T) {
	router, _ := setupOrderControllerTest(t)

	w := performRequest(router, http.MethodGet, "/admin/orders?status=paid", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(2), body["total"])
	assert.Equal(t, float64(20), body["limit"])

	w = performRequest(router, http.MethodGet, "/admin/orders?search=dana1@", nil)
	require.Equal(t, http.StatusOK, w.Code)
	orders := decodeBody(t, w)["orders"].([]interface{})
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-6001", orders[0].(map[string]interface{})["order_number"])

	w = performRequest(router, http.MethodGet, "/admin/orders?status=lost", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ValidationInvalidInput, decodeBody(t, w)["error"])
}

func TestOrderController_GetOrderByID(t *testing.T) {
	router, orders := setupOrderControllerTest(t)

	w := performRequest(router, http.MethodGet, fmt.Sprintf("/admin/orders/%d", orders[1].ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	order := decodeBody(t, w)["order"].(map[string]interface{})
	assert.Equal(t, "ORD-6001", order["order_number"])

	w = performRequest(router, http.MethodGet, "/admin/orders/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.OrderNotFound, decodeBody(t, w)["error"])
}

func TestOrderController_UpdateOrderStatus(t *testing.T) {
	router, orders := setupOrderControllerTest(t)
	path := fmt.Sprintf("/admin/orders/%d/status", orders[1].ID)

	tests := []struct {
		name       string
		request    map[string]interface{}
		wantStatus int
		wantCode   string
	}{
		{name: "refund status", request: map[string]interface{}{"status": "refunded"}, wantStatus: http.StatusBadRequest, wantCode: apperrors.ValidationInvalidInput},
		{name: "backwards", request: map[string]interface{}{"status": "paid"}, wantStatus: http.StatusBadRequest, wantCode: apperrors.OrderInvalidTransition},
		{name: "deliver", request: map[string]interface{}{"status": "delivered"}, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPut, path, tt.request)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeBody(t, w)["error"])
			}
		})
	}
}
