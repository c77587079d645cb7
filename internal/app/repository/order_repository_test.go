package repository

import (
	"fmt"
	"testing"

	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/ikkim/shopadmin-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOrderTest(t *testing.T) (*gorm.DB, OrderRepository, *model.Order) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	repo := NewOrderRepository(testDB)

	order := &model.Order{
		OrderNumber:   "ORD-1001",
		CustomerName:  "Jane Doe",
		CustomerEmail: "jane@example.com",
		TotalAmount:   decimal.RequireFromString("100.00"),
		Status:        model.OrderStatusDelivered,
	}
	require.NoError(t, repo.Create(order))

	return testDB, repo, order
}

func TestOrderRepository_FindByID(t *testing.T) {
	testDB, repo, order := setupOrderTest(t)

	testDB.Create(&model.Refund{OrderID: order.ID, Amount: decimal.RequireFromString("10"), Status: model.RefundStatusPending, RefundType: model.RefundTypePartial, RefundMethod: model.RefundMethodStoreCredit})

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1001", found.OrderNumber)
	assert.Equal(t, "USD", found.Currency)
	assert.Equal(t, "100.00", found.TotalAmount.StringFixed(2))
	assert.Len(t, found.Refunds, 1)

	_, err = repo.FindByID(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_FindByIDForUpdate(t *testing.T) {
	testDB, repo, order := setupOrderTest(t)

	err := testDB.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.WithTx(tx).FindByIDForUpdate(order.ID)
		require.NoError(t, err)
		assert.Equal(t, order.ID, locked.ID)
		assert.Empty(t, locked.Refunds)
		return nil
	})
	require.NoError(t, err)
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	_, repo, order := setupOrderTest(t)

	order.PreRefundStatus = order.Status
	order.Status = model.OrderStatusPartialRefunded
	order.CustomerName = "changed"
	require.NoError(t, repo.UpdateStatus(order))

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPartialRefunded, found.Status)
	assert.Equal(t, model.OrderStatusDelivered, found.PreRefundStatus)
	assert.Equal(t, "Jane Doe", found.CustomerName)
}

func TestOrderRepository_List(t *testing.T) {
	_, repo, _ := setupOrderTest(t)

	for i, status := range []model.OrderStatus{model.OrderStatusPaid, model.OrderStatusShipped, model.OrderStatusPaid} {
		require.NoError(t, repo.Create(&model.Order{
			OrderNumber:   fmt.Sprintf("ORD-20%02d", i),
			CustomerName:  "Alex Kim",
			CustomerEmail: "Alex@Example.com",
			TotalAmount:   decimal.RequireFromString("10.00"),
			Status:        status,
		}))
	}

	tests := []struct {
		name       string
		filter     OrderListFilter
		wantNumber []string
		wantTotal  int64
	}{
		{
			name:       "all newest first",
			filter:     OrderListFilter{Limit: 10},
			wantNumber: []string{"ORD-2002", "ORD-2001", "ORD-2000", "ORD-1001"},
			wantTotal:  4,
		},
		{
			name:       "status",
			filter:     OrderListFilter{Status: model.OrderStatusPaid, Limit: 10},
			wantNumber: []string{"ORD-2002", "ORD-2000"},
			wantTotal:  2,
		},
		{
			name:       "search email case-insensitive",
			filter:     OrderListFilter{Search: "alex@", Limit: 1, Offset: 1},
			wantNumber: []string{"ORD-2001"},
			wantTotal:  3,
		},
		{
			name:       "search order number",
			filter:     OrderListFilter{Search: "ord-1001", Limit: 10},
			wantNumber: []string{"ORD-1001"},
			wantTotal:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, total, err := repo.List(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)
			numbers := make([]string, len(orders))
			for i, o := range orders {
				numbers[i] = o.OrderNumber
			}
			assert.Equal(t, tt.wantNumber, numbers)
		})
	}
}
