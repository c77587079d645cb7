package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string // order lifecycle status

const (
	OrderStatusPending         OrderStatus = "pending"          // placed, not paid
	OrderStatusPaid            OrderStatus = "paid"             // payment captured
	OrderStatusShipped         OrderStatus = "shipped"          // handed to carrier
	OrderStatusDelivered       OrderStatus = "delivered"        // received by customer
	OrderStatusCancelled       OrderStatus = "cancelled"        // cancelled before fulfilment
	OrderStatusPartialRefunded OrderStatus = "partial_refunded" // at least one partial refund
	OrderStatusRefunded        OrderStatus = "refunded"         // closed out by a full refund
)

type Order struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	OrderNumber     string          `gorm:"type:varchar(50);uniqueIndex" json:"order_number"`
	CustomerName    string          `gorm:"type:varchar(100)" json:"customer_name"`
	CustomerEmail   string          `gorm:"type:varchar(255);index" json:"customer_email"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"` // major currency units
	Currency        string          `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	Status          OrderStatus     `gorm:"type:varchar(20);default:'pending'" json:"status"`
	PreRefundStatus OrderStatus     `gorm:"type:varchar(20)" json:"pre_refund_status,omitempty"` // status before the first refund
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`

	Refunds []Refund `gorm:"foreignKey:OrderID" json:"refunds,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}
