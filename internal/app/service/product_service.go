package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ikkim/shopadmin-backend/internal/app/catalog"
	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/ikkim/shopadmin-backend/internal/app/repository"
	"github.com/ikkim/shopadmin-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrInvalidProductPrice = errors.New("product price must not be negative")
)

type ProductListOptions struct {
	CategoryID  *uint
	Brands      []string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	InStockOnly bool
	Attributes  map[string][]string
	Search      string
	Sort        catalog.SortOrder
	Limit       int
	Offset      int
}

// ProductListResult is one page of filtered products plus the facet counts
// over the whole filtered set.
type ProductListResult struct {
	Products []model.Product `json:"products"`
	Facets   catalog.Facets  `json:"facets"`
	Total    int             `json:"total"`
}

type ProductService interface {
	ListProducts(ctx context.Context, opts ProductListOptions) (*ProductListResult, error)
	GetProductByID(id uint) (*model.Product, error)
	CreateProduct(product *model.Product) error
}

type productService struct {
	productRepo     repository.ProductRepository
	taxonomyService TaxonomyService
}

func NewProductService(productRepo repository.ProductRepository, taxonomyService TaxonomyService) ProductService {
	return &productService{
		productRepo:     productRepo,
		taxonomyService: taxonomyService,
	}
}

func (s *productService) ListProducts(ctx context.Context, opts ProductListOptions) (*ProductListResult, error) {
	logger.Debug("Listing products", map[string]interface{}{
		"category_id": opts.CategoryID,
		"brands":      opts.Brands,
		"search":      opts.Search,
		"sort":        opts.Sort,
		"limit":       opts.Limit,
		"offset":      opts.Offset,
	})

	filter := catalog.Filter{
		Brands:      opts.Brands,
		MinPrice:    opts.MinPrice,
		MaxPrice:    opts.MaxPrice,
		InStockOnly: opts.InStockOnly,
		Attributes:  opts.Attributes,
		Sort:        opts.Sort,
	}

	if opts.CategoryID != nil {
		ids, err := s.categorySubtree(ctx, *opts.CategoryID)
		if err != nil {
			return nil, err
		}
		filter.TaxonomyNodeIDs = ids
	}

	// The search narrows the candidate set in SQL; everything else is
	// filtered in memory so the facet counts see the same rows.
	products, err := s.productRepo.FindActive(strings.TrimSpace(opts.Search))
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, err
	}

	filtered := catalog.Apply(products, filter)
	result := &ProductListResult{
		Products: paginate(filtered, opts.Offset, opts.Limit),
		Facets:   catalog.ComputeFacets(products, filter),
		Total:    len(filtered),
	}

	logger.Info("Products listed", map[string]interface{}{
		"candidates": len(products),
		"matched":    result.Total,
		"returned":   len(result.Products),
	})
	return result, nil
}

// categorySubtree returns the selected node id followed by all its
// descendants, so products filed under a subcategory match.
func (s *productService) categorySubtree(ctx context.Context, id uint) ([]uint, error) {
	r, err := s.taxonomyService.Resolver(ctx)
	if err != nil {
		return nil, err
	}
	node, err := r.Node(id)
	if err != nil {
		return nil, err
	}
	descendants, err := r.Descendants(node)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(descendants)+1)
	ids = append(ids, node.ID)
	for _, d := range descendants {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func paginate(products []model.Product, offset, limit int) []model.Product {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(products) {
		return []model.Product{}
	}
	end := len(products)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return products[offset:end]
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	logger.Debug("Fetching product by ID", map[string]interface{}{
		"product_id": id,
	})

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return product, nil
}

func (s *productService) CreateProduct(product *model.Product) error {
	if product.Price.IsNegative() {
		return ErrInvalidProductPrice
	}
	product.Brand = strings.TrimSpace(product.Brand)

	logger.Info("Creating product", map[string]interface{}{
		"name":             product.Name,
		"brand":            product.Brand,
		"taxonomy_node_id": product.TaxonomyNodeID,
	})

	if err := s.productRepo.Create(product); err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}
	return nil
}
