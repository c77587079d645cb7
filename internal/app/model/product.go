package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product is the storefront view of a catalog item.
type Product struct {
	ID             uint                                  `gorm:"primarykey" json:"id"`
	Name           string                                `gorm:"not null" json:"name"`
	Description    string                                `gorm:"type:text" json:"description"`
	Brand          string                                `gorm:"type:varchar(100);index" json:"brand"`
	TaxonomyNodeID *uint                                 `gorm:"index" json:"taxonomy_node_id,omitempty"`
	Price          decimal.Decimal                       `gorm:"type:decimal(12,2);not null" json:"price"`
	StockQuantity  int                                   `gorm:"default:0" json:"stock_quantity"`
	Attributes     datatypes.JSONType[map[string]string] `json:"attributes"`
	ImageURL       string                                `json:"image_url"`
	Active         bool                                  `gorm:"not null" json:"active"`
	CreatedAt      time.Time                             `json:"created_at"`
	UpdatedAt      time.Time                             `json:"updated_at"`
	DeletedAt      gorm.DeletedAt                        `gorm:"index" json:"-"`

	TaxonomyNode *TaxonomyNode `gorm:"foreignKey:TaxonomyNodeID" json:"taxonomy_node,omitempty"`
}

func (Product) TableName() string {
	return "products"
}
