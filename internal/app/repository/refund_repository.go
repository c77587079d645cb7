package repository

import (
	"time"

	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/ikkim/shopadmin-backend/pkg/logger"
	"gorm.io/gorm"
)

type RefundRepository interface {
	WithTx(tx *gorm.DB) RefundRepository
	Create(refund *model.Refund) error
	FindByID(id uint) (*model.Refund, error)
	FindByOrderID(orderID uint) ([]model.Refund, error)
	FindCreatedBetween(from, to time.Time) ([]model.Refund, error)
	Update(refund *model.Refund) error
	AppendHistory(entry *model.RefundStatusHistory) error
	Delete(id uint) error
}

type refundRepository struct {
	db *gorm.DB
}

func NewRefundRepository(db *gorm.DB) RefundRepository {
	return &refundRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *refundRepository) WithTx(tx *gorm.DB) RefundRepository {
	return &refundRepository{db: tx}
}

func (r *refundRepository) preloadHistory() *gorm.DB {
	return r.db.Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
		return db.Order("timestamp ASC, id ASC")
	})
}

// Create inserts the refund together with any history entries it carries.
func (r *refundRepository) Create(refund *model.Refund) error {
	logger.Debug("Creating refund in database", map[string]interface{}{
		"order_id":    refund.OrderID,
		"amount":      refund.Amount,
		"refund_type": refund.RefundType,
	})

	if err := r.db.Create(refund).Error; err != nil {
		logger.Error("Failed to create refund in database", err, map[string]interface{}{
			"order_id": refund.OrderID,
			"amount":   refund.Amount,
		})
		return err
	}

	logger.Debug("Refund created in database", map[string]interface{}{
		"refund_id": refund.ID,
		"order_id":  refund.OrderID,
	})
	return nil
}

func (r *refundRepository) FindByID(id uint) (*model.Refund, error) {
	logger.Debug("Finding refund by ID in database", map[string]interface{}{
		"refund_id": id,
	})

	var refund model.Refund
	if err := r.preloadHistory().First(&refund, id).Error; err != nil {
		logger.Error("Failed to find refund by ID in database", err, map[string]interface{}{
			"refund_id": id,
		})
		return nil, err
	}
	return &refund, nil
}

func (r *refundRepository) FindByOrderID(orderID uint) ([]model.Refund, error) {
	logger.Debug("Finding refunds by order ID in database", map[string]interface{}{
		"order_id": orderID,
	})

	var refunds []model.Refund
	if err := r.preloadHistory().Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&refunds).Error; err != nil {
		logger.Error("Failed to find refunds by order ID in database", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	logger.Debug("Refunds found by order ID in database", map[string]interface{}{
		"order_id": orderID,
		"count":    len(refunds),
	})
	return refunds, nil
}

// FindCreatedBetween returns refunds created in [from, to) with their order.
func (r *refundRepository) FindCreatedBetween(from, to time.Time) ([]model.Refund, error) {
	logger.Debug("Finding refunds by creation window in database", map[string]interface{}{
		"from": from,
		"to":   to,
	})

	var refunds []model.Refund
	if err := r.db.Preload("Order").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC, id ASC").
		Find(&refunds).Error; err != nil {
		logger.Error("Failed to find refunds by creation window in database", err)
		return nil, err
	}
	return refunds, nil
}

// Update saves the refund's own columns. History rows are append-only and
// are written through AppendHistory.
func (r *refundRepository) Update(refund *model.Refund) error {
	logger.Debug("Updating refund in database", map[string]interface{}{
		"refund_id": refund.ID,
		"status":    refund.Status,
	})

	if err := r.db.Model(&model.Refund{}).Where("id = ?", refund.ID).Updates(map[string]interface{}{
		"amount":        refund.Amount,
		"reason":        refund.Reason,
		"status":        refund.Status,
		"refund_type":   refund.RefundType,
		"refund_method": refund.RefundMethod,
		"completed_at":  refund.CompletedAt,
	}).Error; err != nil {
		logger.Error("Failed to update refund in database", err, map[string]interface{}{
			"refund_id": refund.ID,
		})
		return err
	}
	return nil
}

func (r *refundRepository) AppendHistory(entry *model.RefundStatusHistory) error {
	logger.Debug("Appending refund status history in database", map[string]interface{}{
		"refund_id": entry.RefundID,
		"status":    entry.Status,
	})

	if err := r.db.Create(entry).Error; err != nil {
		logger.Error("Failed to append refund status history in database", err, map[string]interface{}{
			"refund_id": entry.RefundID,
		})
		return err
	}
	return nil
}

// Delete removes the refund and its history.
func (r *refundRepository) Delete(id uint) error {
	logger.Debug("Deleting refund from database", map[string]interface{}{
		"refund_id": id,
	})

	if err := r.db.Where("refund_id = ?", id).Delete(&model.RefundStatusHistory{}).Error; err != nil {
		logger.Error("Failed to delete refund history from database", err, map[string]interface{}{
			"refund_id": id,
		})
		return err
	}
	result := r.db.Delete(&model.Refund{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete refund from database", result.Error, map[string]interface{}{
			"refund_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
