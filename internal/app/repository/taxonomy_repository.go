package repository

import (
	"context"

	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/ikkim/shopadmin-backend/pkg/logger"
	"gorm.io/gorm"
)

type TaxonomyRepository interface {
	WithTx(tx *gorm.DB) TaxonomyRepository
	WithContext(ctx context.Context) TaxonomyRepository
	FindAll() ([]model.TaxonomyNode, error)
	FindByID(id uint) (*model.TaxonomyNode, error)
	Create(node *model.TaxonomyNode) error
	Update(node *model.TaxonomyNode) error
}

type taxonomyRepository struct {
	db *gorm.DB
}

func NewTaxonomyRepository(db *gorm.DB) TaxonomyRepository {
	return &taxonomyRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *taxonomyRepository) WithTx(tx *gorm.DB) TaxonomyRepository {
	return &taxonomyRepository{db: tx}
}

// WithContext returns a repository whose queries are bound to ctx.
func (r *taxonomyRepository) WithContext(ctx context.Context) TaxonomyRepository {
	return &taxonomyRepository{db: r.db.WithContext(ctx)}
}

// FindAll loads the complete node set. The resolver needs every row, so
// there is no pagination here.
func (r *taxonomyRepository) FindAll() ([]model.TaxonomyNode, error) {
	logger.Debug("Finding all taxonomy nodes in database")

	var nodes []model.TaxonomyNode
	if err := r.db.Order("id ASC").Find(&nodes).Error; err != nil {
		logger.Error("Failed to find taxonomy nodes in database", err)
		return nil, err
	}

	logger.Debug("Taxonomy nodes found in database", map[string]interface{}{
		"count": len(nodes),
	})
	return nodes, nil
}

func (r *taxonomyRepository) FindByID(id uint) (*model.TaxonomyNode, error) {
	logger.Debug("Finding taxonomy node by ID in database", map[string]interface{}{
		"node_id": id,
	})

	var node model.TaxonomyNode
	if err := r.db.First(&node, id).Error; err != nil {
		logger.Error("Failed to find taxonomy node by ID in database", err, map[string]interface{}{
			"node_id": id,
		})
		return nil, err
	}
	return &node, nil
}

func (r *taxonomyRepository) Create(node *model.TaxonomyNode) error {
	logger.Debug("Creating taxonomy node in database", map[string]interface{}{
		"dept":    node.Dept,
		"typ":     node.Typ,
		"web_url": node.WebURL,
	})

	if err := r.db.Create(node).Error; err != nil {
		logger.Error("Failed to create taxonomy node in database", err, map[string]interface{}{
			"dept":    node.Dept,
			"web_url": node.WebURL,
		})
		return err
	}

	logger.Debug("Taxonomy node created in database", map[string]interface{}{
		"node_id": node.ID,
	})
	return nil
}

func (r *taxonomyRepository) Update(node *model.TaxonomyNode) error {
	logger.Debug("Updating taxonomy node in database", map[string]interface{}{
		"node_id": node.ID,
	})

	if err := r.db.Save(node).Error; err != nil {
		logger.Error("Failed to update taxonomy node in database", err, map[string]interface{}{
			"node_id": node.ID,
		})
		return err
	}

	logger.Debug("Taxonomy node updated in database", map[string]interface{}{
		"node_id": node.ID,
		"active":  node.Active,
	})
	return nil
}
