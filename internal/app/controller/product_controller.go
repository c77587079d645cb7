package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopadmin-backend/internal/app/catalog"
	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/ikkim/shopadmin-backend/internal/app/service"
	apperrors "github.com/ikkim/shopadmin-backend/internal/errors"
	"github.com/ikkim/shopadmin-backend/internal/middleware"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// ListProductsQuery binds the storefront filters. Brands may repeat or be
// comma separated; attributes use attr[name]=v1,v2.
type ListProductsQuery struct {
	CategoryID *uint    `form:"category_id"`
	Brands     []string `form:"brand"`
	MinPrice   string   `form:"min_price"`
	MaxPrice   string   `form:"max_price"`
	InStock    bool     `form:"in_stock"`
	Search     string   `form:"search" binding:"max=100"`
	Sort       string   `form:"sort" binding:"omitempty,oneof=newest price_asc price_desc name"`
	Limit      int      `form:"limit" binding:"gte=0,max=100"`
	Offset     int      `form:"offset" binding:"gte=0"`
}

type CreateProductRequest struct {
	Name           string            `json:"name" binding:"required,max=200"`
	Description    string            `json:"description"`
	Brand          string            `json:"brand" binding:"max=100"`
	TaxonomyNodeID *uint             `json:"taxonomy_node_id"`
	Price          *decimal.Decimal  `json:"price" binding:"required"`
	StockQuantity  int               `json:"stock_quantity" binding:"gte=0"`
	Attributes     map[string]string `json:"attributes"`
	ImageURL       string            `json:"image_url"`
	Active         *bool             `json:"active"`
}

// ListProducts returns filtered products with facet counts
// GET /api/v1/products
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var query ListProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		log.Warn("Invalid product list query", map[string]interface{}{
			"error": err.Error(),
		})
		middleware.RespondWithBindingError(c, err)
		return
	}

	opts := service.ProductListOptions{
		CategoryID:  query.CategoryID,
		Brands:      splitValues(query.Brands),
		InStockOnly: query.InStock,
		Search:      strings.TrimSpace(query.Search),
		Sort:        catalog.SortOrder(query.Sort),
		Limit:       query.Limit,
		Offset:      query.Offset,
	}
	if opts.Limit == 0 {
		opts.Limit = 24
	}

	var ok bool
	if opts.MinPrice, ok = parsePrice(c, "min_price", query.MinPrice); !ok {
		return
	}
	if opts.MaxPrice, ok = parsePrice(c, "max_price", query.MaxPrice); !ok {
		return
	}
	if opts.MinPrice != nil && opts.MaxPrice != nil && opts.MinPrice.GreaterThan(*opts.MaxPrice) {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "min_price must not exceed max_price")
		return
	}

	if attrs := c.QueryMap("attr"); len(attrs) > 0 {
		opts.Attributes = make(map[string][]string, len(attrs))
		for name, raw := range attrs {
			opts.Attributes[name] = splitValues([]string{raw})
		}
	}

	result, err := ctrl.productService.ListProducts(c.Request.Context(), opts)
	if err != nil {
		log.Warn("Failed to list products", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.ParseAndRespond(c, err, "list products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": result.Products,
		"facets":   result.Facets,
		"total":    result.Total,
		"limit":    opts.Limit,
		"offset":   opts.Offset,
	})
}

func parsePrice(c *gin.Context, field, raw string) (*decimal.Decimal, bool) {
	if raw == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		apperrors.RespondWithValidationError(c, map[string]string{field: "Must be a non-negative amount"})
		return nil, false
	}
	return &d, true
}

// GetProductByID returns a product by ID
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProductByID(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			log.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Product not found")
			return
		}
		apperrors.ParseAndRespond(c, err, "get product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// CreateProduct creates a catalog item (Admin only)
// POST /api/v1/admin/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product creation request", map[string]interface{}{
			"error": err.Error(),
		})
		middleware.RespondWithBindingError(c, err)
		return
	}

	product := &model.Product{
		Name:           req.Name,
		Description:    req.Description,
		Brand:          req.Brand,
		TaxonomyNodeID: req.TaxonomyNodeID,
		Price:          *req.Price,
		StockQuantity:  req.StockQuantity,
		Attributes:     datatypes.NewJSONType(req.Attributes),
		ImageURL:       req.ImageURL,
		Active:         req.Active == nil || *req.Active,
	}

	if err := ctrl.productService.CreateProduct(product); err != nil {
		if errors.Is(err, service.ErrInvalidProductPrice) {
			apperrors.RespondWithValidationError(c, map[string]string{"price": err.Error()})
			return
		}
		apperrors.ParseAndRespond(c, err, "create product")
		return
	}

	log.Info("Product created successfully", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	c.JSON(http.StatusCreated, gin.H{
		"product": product,
	})
}
