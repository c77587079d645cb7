package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/ikkim/shopadmin-backend/internal/app/repository"
	"github.com/ikkim/shopadmin-backend/internal/app/taxonomy"
	"github.com/ikkim/shopadmin-backend/internal/cache"
	"github.com/ikkim/shopadmin-backend/pkg/logger"
	"gorm.io/gorm"
)

type CreateTaxonomyInput struct {
	ParentID        *uint
	Label           string
	Slug            string // derived from Label when empty
	Active          *bool  // defaults to true
	ShortDesc       string
	LongDescription string
	MetaTags        []string
	SortPosition    int
}

// UpdateTaxonomyInput changes only the non-nil fields.
type UpdateTaxonomyInput struct {
	Label           *string
	Slug            *string
	Active          *bool
	ShortDesc       *string
	LongDescription *string
	MetaTags        []string
	SortPosition    *int
}

// ResolvedNode is a node with its hierarchy position worked out.
type ResolvedNode struct {
	Node        *model.TaxonomyNode `json:"node"`
	DisplayName string              `json:"display_name"`
	Depth       int                 `json:"depth"`
	DepthLabel  string              `json:"depth_label"`
	Path        string              `json:"path"`
	Parent      *model.TaxonomyNode `json:"parent,omitempty"`
}

type AuditIssue struct {
	NodeID  uint                   `json:"node_id"`
	Kind    taxonomy.IntegrityKind `json:"kind"`
	Message string                 `json:"message"`
}

type AuditReport struct {
	NodeCount int          `json:"node_count"`
	Issues    []AuditIssue `json:"issues"`
}

type TaxonomyService interface {
	List(ctx context.Context) ([]model.TaxonomyNode, error)
	Resolver(ctx context.Context) (*taxonomy.Resolver, error)
	Get(ctx context.Context, id uint) (*ResolvedNode, error)
	Options(ctx context.Context) ([]taxonomy.Option, error)
	Create(ctx context.Context, input CreateTaxonomyInput) (*model.TaxonomyNode, error)
	Update(ctx context.Context, id uint, input UpdateTaxonomyInput) (*model.TaxonomyNode, error)
	Audit(ctx context.Context) (*AuditReport, error)
	Import(ctx context.Context, rows []TaxonomyImportRow) (*TaxonomyImportResult, error)
}

type taxonomyService struct {
	repo  repository.TaxonomyRepository
	cache cache.TaxonomyCache
	db    *gorm.DB
}

func NewTaxonomyService(repo repository.TaxonomyRepository, nodeCache cache.TaxonomyCache, db *gorm.DB) TaxonomyService {
	return &taxonomyService{
		repo:  repo,
		cache: nodeCache,
		db:    db,
	}
}

func (s *taxonomyService) List(ctx context.Context) ([]model.TaxonomyNode, error) {
	if nodes, ok := s.cache.Get(ctx); ok {
		logger.Debug("Taxonomy nodes served from cache", map[string]interface{}{
			"count": len(nodes),
		})
		return nodes, nil
	}

	nodes, err := s.repo.WithContext(ctx).FindAll()
	if err != nil {
		logger.Error("Failed to load taxonomy nodes", err)
		return nil, err
	}
	s.cache.Set(ctx, nodes)
	return nodes, nil
}

func (s *taxonomyService) Resolver(ctx context.Context) (*taxonomy.Resolver, error) {
	nodes, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return taxonomy.NewResolver(nodes), nil
}

func (s *taxonomyService) Get(ctx context.Context, id uint) (*ResolvedNode, error) {
	r, err := s.Resolver(ctx)
	if err != nil {
		return nil, err
	}
	node, err := r.Node(id)
	if err != nil {
		return nil, err
	}
	return resolve(r, node)
}

func resolve(r *taxonomy.Resolver, node *model.TaxonomyNode) (*ResolvedNode, error) {
	name, err := taxonomy.DisplayName(node)
	if err != nil {
		return nil, err
	}
	parent, err := r.ParentOf(node)
	if err != nil {
		return nil, err
	}
	k := taxonomy.KeyOf(node)
	return &ResolvedNode{
		Node:        node,
		DisplayName: name,
		Depth:       k.Depth(),
		DepthLabel:  taxonomy.Level(k.Depth() - 1).Label(),
		Path:        k.Path(),
		Parent:      parent,
	}, nil
}

func (s *taxonomyService) Options(ctx context.Context) ([]taxonomy.Option, error) {
	r, err := s.Resolver(ctx)
	if err != nil {
		return nil, err
	}

	for _, group := range r.Conflicts() {
		ids := make([]uint, len(group))
		for i, n := range group {
			ids[i] = n.ID
		}
		logger.Debug("Taxonomy nodes share a hierarchy key; showing the lowest id", map[string]interface{}{
			"path":     taxonomy.KeyOf(group[0]).Path(),
			"node_ids": ids,
		})
	}

	var options []taxonomy.Option
	for opt := range r.OptionsTree() {
		options = append(options, opt)
	}
	return options, nil
}

func (s *taxonomyService) Create(ctx context.Context, input CreateTaxonomyInput) (*model.TaxonomyNode, error) {
	logger.Info("Creating taxonomy node", map[string]interface{}{
		"parent_id": input.ParentID,
		"label":     input.Label,
	})

	var node *model.TaxonomyNode
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		nodes, err := repo.FindAll()
		if err != nil {
			return err
		}
		r := taxonomy.NewResolver(nodes)

		var parent *model.TaxonomyNode
		if input.ParentID != nil {
			if parent, err = r.Node(*input.ParentID); err != nil {
				return err
			}
			// Attaching below a node whose own key is duplicated would give the
			// child two candidate parents.
			if len(r.Lookup(taxonomy.KeyOf(parent))) > 1 {
				return ambiguousKeyError(taxonomy.KeyOf(parent), parent.ID)
			}
		}

		key, err := taxonomy.ChildKey(parent, input.Label)
		if err != nil {
			return err
		}
		if existing := r.Lookup(key); len(existing) > 0 {
			return duplicateKeyError(key, existing[0].ID)
		}

		slug, err := taxonomy.NodeSlug(input.Slug, input.Label)
		if err != nil {
			return err
		}

		node = &model.TaxonomyNode{
			WebURL:          taxonomy.BuildURL(slug, parent),
			Active:          input.Active == nil || *input.Active,
			ShortDesc:       strings.TrimSpace(input.ShortDesc),
			LongDescription: input.LongDescription,
			MetaTags:        input.MetaTags,
			SortPosition:    input.SortPosition,
		}
		node.SetLevels(key)

		if err := repo.Create(node); err != nil {
			logger.Error("Failed to create taxonomy node", err, map[string]interface{}{
				"path": key.Path(),
			})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)

	logger.Info("Taxonomy node created", map[string]interface{}{
		"node_id": node.ID,
		"path":    taxonomy.KeyOf(node).Path(),
		"web_url": node.WebURL,
	})
	return node, nil
}

// Update applies input to the node. A relabel rewrites the same level in
// every descendant so their keys keep pointing at this node; web URLs are
// recomputed for this node only.
func (s *taxonomyService) Update(ctx context.Context, id uint, input UpdateTaxonomyInput) (*model.TaxonomyNode, error) {
	logger.Info("Updating taxonomy node", map[string]interface{}{
		"node_id": id,
	})

	var updated *model.TaxonomyNode
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		nodes, err := repo.FindAll()
		if err != nil {
			return err
		}
		r := taxonomy.NewResolver(nodes)

		node, err := r.Node(id)
		if err != nil {
			return err
		}
		depth, err := taxonomy.Depth(node)
		if err != nil {
			return err
		}
		oldKey := taxonomy.KeyOf(node)

		var descendants []*model.TaxonomyNode
		newKey := oldKey
		relabel := false
		if input.Label != nil {
			label := strings.TrimSpace(*input.Label)
			if label == "" || label == taxonomy.Empty {
				return &taxonomy.IntegrityError{Kind: taxonomy.KindMalformed, NodeID: id, Message: "label must be a real value, not blank or " + taxonomy.Empty}
			}
			if label != oldKey.Leaf() {
				relabel = true
				newKey[depth-1] = label
				if existing := r.Lookup(newKey); len(existing) > 0 {
					return duplicateKeyError(newKey, existing[0].ID)
				}
				if descendants, err = r.Descendants(node); err != nil {
					return err
				}
				// Children of a shared key belong to every node carrying it;
				// moving them under this one would pick a parent for them.
				if len(descendants) > 0 && len(r.Lookup(oldKey)) > 1 {
					return ambiguousKeyError(oldKey, id)
				}
			}
		}

		if relabel || input.Slug != nil {
			parent, err := r.ParentOf(node)
			if err != nil {
				return err
			}
			slug := ""
			if input.Slug != nil {
				slug = *input.Slug
			}
			if slug, err = taxonomy.NodeSlug(slug, newKey.Leaf()); err != nil {
				return err
			}
			node.WebURL = taxonomy.BuildURL(slug, parent)
		}

		node.SetLevels(newKey)
		if input.Active != nil {
			node.Active = *input.Active
		}
		if input.ShortDesc != nil {
			node.ShortDesc = strings.TrimSpace(*input.ShortDesc)
		}
		if input.LongDescription != nil {
			node.LongDescription = *input.LongDescription
		}
		if input.MetaTags != nil {
			node.MetaTags = input.MetaTags
		}
		if input.SortPosition != nil {
			node.SortPosition = *input.SortPosition
		}

		if err := repo.Update(node); err != nil {
			return err
		}
		for _, d := range descendants {
			levels := d.Levels()
			levels[depth-1] = newKey[depth-1]
			d.SetLevels(levels)
			if err := repo.Update(d); err != nil {
				return err
			}
		}

		if relabel {
			logger.Info("Taxonomy node relabelled", map[string]interface{}{
				"node_id":     id,
				"from":        oldKey.Path(),
				"to":          newKey.Path(),
				"descendants": len(descendants),
			})
		}
		updated = node
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = fmt.Errorf("%w: id %d", taxonomy.ErrNodeNotFound, id)
		}
		logger.Warn("Taxonomy node update rejected", map[string]interface{}{
			"node_id": id,
			"error":   err.Error(),
		})
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return updated, nil
}

func (s *taxonomyService) Audit(ctx context.Context) (*AuditReport, error) {
	nodes, err := s.repo.WithContext(ctx).FindAll()
	if err != nil {
		return nil, err
	}
	r := taxonomy.NewResolver(nodes)

	report := &AuditReport{NodeCount: r.Len(), Issues: []AuditIssue{}}
	for _, err := range r.Audit() {
		issue := AuditIssue{Message: err.Error()}
		var ie *taxonomy.IntegrityError
		if errors.As(err, &ie) {
			issue.NodeID = ie.NodeID
			issue.Kind = ie.Kind
			issue.Message = ie.Message
		}
		report.Issues = append(report.Issues, issue)
		logger.Warn("Taxonomy integrity violation", map[string]interface{}{
			"node_id": issue.NodeID,
			"kind":    issue.Kind,
			"message": issue.Message,
		})
	}

	logger.Info("Taxonomy audit finished", map[string]interface{}{
		"nodes":  report.NodeCount,
		"issues": len(report.Issues),
	})
	return report, nil
}

func duplicateKeyError(k taxonomy.Key, existingID uint) error {
	return &taxonomy.IntegrityError{
		Kind:    taxonomy.KindDuplicateKey,
		NodeID:  existingID,
		Message: fmt.Sprintf("hierarchy %q already exists", k.Path()),
	}
}

func ambiguousKeyError(k taxonomy.Key, nodeID uint) error {
	return &taxonomy.IntegrityError{
		Kind:    taxonomy.KindAmbiguousParent,
		NodeID:  nodeID,
		Message: fmt.Sprintf("hierarchy %q is shared by several nodes", k.Path()),
	}
}
