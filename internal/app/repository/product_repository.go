package repository

import (
	"fmt"
	"strings"

	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/ikkim/shopadmin-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindByID(id uint) (*model.Product, error)
	FindActive(search string) ([]model.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":             product.Name,
		"brand":            product.Brand,
		"taxonomy_node_id": product.TaxonomyNodeID,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name":  product.Name,
			"brand": product.Brand,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	logger.Debug("Finding product by ID in database", map[string]interface{}{
		"product_id": id,
	})

	var product model.Product
	if err := r.db.Preload("TaxonomyNode").First(&product, id).Error; err != nil {
		logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return &product, nil
}

// FindActive returns the storefront candidate set: active products, narrowed
// by a name/description search when one is given. Facet filtering happens in
// memory on the result.
func (r *productRepository) FindActive(search string) ([]model.Product, error) {
	logger.Debug("Finding active products in database", map[string]interface{}{
		"search": search,
	})

	query := r.db.Model(&model.Product{}).Where("active = ?", true)
	if search != "" {
		like := fmt.Sprintf("%%%s%%", strings.ToLower(search))
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(brand) LIKE ?", like, like, like)
	}

	var products []model.Product
	if err := query.Order("created_at DESC, id DESC").Find(&products).Error; err != nil {
		logger.Error("Failed to find active products in database", err, map[string]interface{}{
			"search": search,
		})
		return nil, err
	}

	logger.Debug("Active products found in database", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}
