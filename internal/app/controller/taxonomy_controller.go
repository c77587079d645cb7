package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopadmin-backend/internal/app/service"
	apperrors "github.com/ikkim/shopadmin-backend/internal/errors"
	"github.com/ikkim/shopadmin-backend/internal/middleware"
)

type TaxonomyController struct {
	taxonomyService service.TaxonomyService
}

func NewTaxonomyController(taxonomyService service.TaxonomyService) *TaxonomyController {
	return &TaxonomyController{
		taxonomyService: taxonomyService,
	}
}

type CreateTaxonomyRequest struct {
	ParentID        *uint    `json:"parent_id"`
	Label           string   `json:"label" binding:"required,taxonomy_label,max=100"`
	Slug            string   `json:"slug" binding:"max=100"`
	Active          *bool    `json:"active"`
	ShortDesc       string   `json:"short_desc" binding:"max=255"`
	LongDescription string   `json:"long_description"`
	MetaTags        []string `json:"meta_tags"`
	SortPosition    int      `json:"sort_position"`
}

type UpdateTaxonomyRequest struct {
	Label           *string  `json:"label" binding:"omitempty,taxonomy_label,max=100"`
	Slug            *string  `json:"slug" binding:"omitempty,max=100"`
	Active          *bool    `json:"active"`
	ShortDesc       *string  `json:"short_desc" binding:"omitempty,max=255"`
	LongDescription *string  `json:"long_description"`
	MetaTags        []string `json:"meta_tags"`
	SortPosition    *int     `json:"sort_position"`
}

// ListNodes returns the full node list
// GET /api/v1/taxonomy
func (ctrl *TaxonomyController) ListNodes(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	nodes, err := ctrl.taxonomyService.List(c.Request.Context())
	if err != nil {
		log.Error("Failed to fetch taxonomy nodes", err)
		apperrors.ParseAndRespond(c, err, "list taxonomy")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"nodes": nodes,
		"count": len(nodes),
	})
}

// GetOptions returns the parent selector entries
// GET /api/v1/taxonomy/options
func (ctrl *TaxonomyController) GetOptions(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	options, err := ctrl.taxonomyService.Options(c.Request.Context())
	if err != nil {
		log.Error("Failed to build taxonomy options", err)
		apperrors.ParseAndRespond(c, err, "taxonomy options")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"options": options,
		"count":   len(options),
	})
}

// GetNode returns a node with its display name, parent and path
// GET /api/v1/taxonomy/:id
func (ctrl *TaxonomyController) GetNode(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resolved, err := ctrl.taxonomyService.Get(c.Request.Context(), id)
	if err != nil {
		log.Warn("Failed to resolve taxonomy node", map[string]interface{}{
			"node_id": id,
			"error":   err.Error(),
		})
		apperrors.ParseAndRespond(c, err, "get taxonomy")
		return
	}

	c.JSON(http.StatusOK, resolved)
}

// CreateNode creates a department or a child node
// POST /api/v1/admin/taxonomy
func (ctrl *TaxonomyController) CreateNode(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateTaxonomyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create taxonomy request", map[string]interface{}{
			"error": err.Error(),
		})
		middleware.RespondWithBindingError(c, err)
		return
	}

	node, err := ctrl.taxonomyService.Create(c.Request.Context(), service.CreateTaxonomyInput{
		ParentID:        req.ParentID,
		Label:           req.Label,
		Slug:            req.Slug,
		Active:          req.Active,
		ShortDesc:       req.ShortDesc,
		LongDescription: req.LongDescription,
		MetaTags:        req.MetaTags,
		SortPosition:    req.SortPosition,
	})
	if err != nil {
		log.Warn("Failed to create taxonomy node", map[string]interface{}{
			"parent_id": req.ParentID,
			"label":     req.Label,
			"error":     err.Error(),
		})
		apperrors.ParseAndRespond(c, err, "create taxonomy")
		return
	}

	log.Info("Taxonomy node created", map[string]interface{}{
		"node_id": node.ID,
		"actor":   middleware.GetActor(c),
	})
	c.JSON(http.StatusCreated, gin.H{
		"node": node,
	})
}

// UpdateNode changes a node's label or attributes
// PUT /api/v1/admin/taxonomy/:id
func (ctrl *TaxonomyController) UpdateNode(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateTaxonomyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update taxonomy request", map[string]interface{}{
			"node_id": id,
			"error":   err.Error(),
		})
		middleware.RespondWithBindingError(c, err)
		return
	}

	node, err := ctrl.taxonomyService.Update(c.Request.Context(), id, service.UpdateTaxonomyInput{
		Label:           req.Label,
		Slug:            req.Slug,
		Active:          req.Active,
		ShortDesc:       req.ShortDesc,
		LongDescription: req.LongDescription,
		MetaTags:        req.MetaTags,
		SortPosition:    req.SortPosition,
	})
	if err != nil {
		apperrors.ParseAndRespond(c, err, "update taxonomy")
		return
	}

	log.Info("Taxonomy node updated", map[string]interface{}{
		"node_id": node.ID,
		"actor":   middleware.GetActor(c),
	})
	c.JSON(http.StatusOK, gin.H{
		"node": node,
	})
}

// Audit runs the integrity check on demand
// GET /api/v1/admin/taxonomy/audit
func (ctrl *TaxonomyController) Audit(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	report, err := ctrl.taxonomyService.Audit(c.Request.Context())
	if err != nil {
		log.Error("Taxonomy audit failed", err)
		apperrors.ParseAndRespond(c, err, "taxonomy audit")
		return
	}

	c.JSON(http.StatusOK, report)
}
