package repository

import (
	"strings"

	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/ikkim/shopadmin-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindByIDForUpdate(id uint) (*model.Order, error)
	UpdateStatus(order *model.Order) error
	List(filter OrderListFilter) ([]model.Order, int64, error)
}

// OrderListFilter narrows the admin order list. Search matches the order
// number or customer email, case-insensitively.
type OrderListFilter struct {
	Status model.OrderStatus
	Search string
	Limit  int
	Offset int
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"order_number": order.OrderNumber,
		"total_amount": order.TotalAmount,
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"order_number": order.OrderNumber,
			"total_amount": order.TotalAmount,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	})
	return nil
}

// FindByID loads the order with its refunds.
func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	logger.Debug("Finding order by ID in database", map[string]interface{}{
		"order_id": id,
	})

	var order model.Order
	if err := r.db.Preload("Refunds", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	}).First(&order, id).Error; err != nil {
		logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
			"order_id": id,
		})
		return nil, err
	}

	logger.Debug("Order found by ID in database", map[string]interface{}{
		"order_id":     order.ID,
		"status":       order.Status,
		"refund_count": len(order.Refunds),
	})
	return &order, nil
}

// FindByIDForUpdate locks the order row for the rest of the transaction and
// loads its refunds. Must be called on a repository bound with WithTx.
func (r *orderRepository) FindByIDForUpdate(id uint) (*model.Order, error) {
	logger.Debug("Locking order in database", map[string]interface{}{
		"order_id": id,
	})

	var order model.Order
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
		logger.Error("Failed to lock order in database", err, map[string]interface{}{
			"order_id": id,
		})
		return nil, err
	}
	if err := r.db.Where("order_id = ?", id).Order("created_at ASC, id ASC").Find(&order.Refunds).Error; err != nil {
		logger.Error("Failed to load refunds of locked order", err, map[string]interface{}{
			"order_id": id,
		})
		return nil, err
	}
	return &order, nil
}

// UpdateStatus writes status and pre_refund_status only.
func (r *orderRepository) UpdateStatus(order *model.Order) error {
	logger.Debug("Updating order status in database", map[string]interface{}{
		"order_id":          order.ID,
		"status":            order.Status,
		"pre_refund_status": order.PreRefundStatus,
	})

	if err := r.db.Model(&model.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"status":            order.Status,
		"pre_refund_status": order.PreRefundStatus,
	}).Error; err != nil {
		logger.Error("Failed to update order status in database", err, map[string]interface{}{
			"order_id": order.ID,
			"status":   order.Status,
		})
		return err
	}
	return nil
}

// List returns one page of orders, newest first, with the total match count.
func (r *orderRepository) List(filter OrderListFilter) ([]model.Order, int64, error) {
	logger.Debug("Listing orders from database", map[string]interface{}{
		"status": filter.Status,
		"search": filter.Search,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})

	query := r.db.Model(&model.Order{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		query = query.Where("LOWER(order_number) LIKE ? OR LOWER(customer_email) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count orders", err)
		return nil, 0, err
	}

	var orders []model.Order
	if err := query.Order("created_at DESC, id DESC").Limit(filter.Limit).Offset(filter.Offset).Find(&orders).Error; err != nil {
		logger.Error("Failed to list orders", err)
		return nil, 0, err
	}

	logger.Debug("Orders listed from database", map[string]interface{}{
		"count": len(orders),
		"total": total,
	})
	return orders, total, nil
}
