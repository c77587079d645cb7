package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type RefundStatus string
type RefundType string
type RefundMethod string

const (
	RefundStatusPending   RefundStatus = "pending"
	RefundStatusApproved  RefundStatus = "approved"
	RefundStatusRejected  RefundStatus = "rejected"
	RefundStatusCompleted RefundStatus = "completed"

	RefundTypeFull    RefundType = "full"
	RefundTypePartial RefundType = "partial"

	RefundMethodOriginalPayment RefundMethod = "original_payment"
	RefundMethodStoreCredit     RefundMethod = "store_credit"
	RefundMethodBankTransfer    RefundMethod = "bank_transfer"
)

// IsValid reports whether m is a known refund method.
func (m RefundMethod) IsValid() bool {
	switch m {
	case RefundMethodOriginalPayment, RefundMethodStoreCredit, RefundMethodBankTransfer:
		return true
	}
	return false
}

// IsValid reports whether s is a known refund status.
func (s RefundStatus) IsValid() bool {
	switch s {
	case RefundStatusPending, RefundStatusApproved, RefundStatusRejected, RefundStatusCompleted:
		return true
	}
	return false
}

type Refund struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	OrderID      uint            `gorm:"not null;index" json:"order_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"` // major currency units
	Reason       string          `gorm:"type:text" json:"reason"`
	Status       RefundStatus    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	RefundType   RefundType      `gorm:"type:varchar(20);not null" json:"refund_type"`
	RefundMethod RefundMethod    `gorm:"type:varchar(30);not null" json:"refund_method"`
	RequestedBy  string          `gorm:"type:varchar(255)" json:"requested_by"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Order         *Order                `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	StatusHistory []RefundStatusHistory `gorm:"foreignKey:RefundID;constraint:OnDelete:CASCADE" json:"refund_status_history"`
}

func (Refund) TableName() string {
	return "refunds"
}

// RefundStatusHistory is one append-only audit entry for a refund.
type RefundStatusHistory struct {
	ID        uint         `gorm:"primarykey" json:"-"`
	RefundID  uint         `gorm:"not null;index" json:"-"`
	Status    RefundStatus `gorm:"type:varchar(20);not null" json:"status"`
	Note      string       `gorm:"type:text" json:"note"`
	UpdatedBy string       `gorm:"type:varchar(255)" json:"updated_by"`
	Timestamp time.Time    `gorm:"not null;index" json:"timestamp"`
}

func (RefundStatusHistory) TableName() string {
	return "refund_status_histories"
}
