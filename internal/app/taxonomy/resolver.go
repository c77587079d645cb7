// Package taxonomy resolves the flattened five-level category hierarchy
// (DEPT > TYP > SUBTYP_1 > SUBTYP_2 > SUBTYP_3) stored in taxonomy_nodes.
//
// Rows keep the sentinel "EMPTY" in unused levels and carry no parent id, so a
// node's parent is the row whose levels equal the node's levels with the
// deepest occupied one reset to EMPTY. The Resolver indexes the full node set
// by that 5-tuple so parent lookups are map hits instead of scans.
package taxonomy

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/ikkim/shopadmin-backend/internal/app/model"
)

// Resolver answers hierarchy queries over a complete node set. The nodes
// passed to NewResolver must not be modified while the resolver is in use.
type Resolver struct {
	nodes []*model.TaxonomyNode
	byID  map[uint]*model.TaxonomyNode
	byKey map[Key][]*model.TaxonomyNode
}

// NewResolver indexes nodes by id and by hierarchy key.
func NewResolver(nodes []model.TaxonomyNode) *Resolver {
	r := &Resolver{
		nodes: make([]*model.TaxonomyNode, 0, len(nodes)),
		byID:  make(map[uint]*model.TaxonomyNode, len(nodes)),
		byKey: make(map[Key][]*model.TaxonomyNode, len(nodes)),
	}
	for i := range nodes {
		r.nodes = append(r.nodes, &nodes[i])
	}
	slices.SortFunc(r.nodes, func(a, b *model.TaxonomyNode) int { return cmp.Compare(a.ID, b.ID) })
	for _, n := range r.nodes {
		k := KeyOf(n)
		r.byID[n.ID] = n
		r.byKey[k] = append(r.byKey[k], n)
	}
	return r
}

// Len returns the number of indexed nodes.
func (r *Resolver) Len() int {
	return len(r.nodes)
}

// Node looks a node up by id.
func (r *Resolver) Node(id uint) (*model.TaxonomyNode, error) {
	n, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNodeNotFound, id)
	}
	return n, nil
}

// Lookup returns every node stored under key k.
func (r *Resolver) Lookup(k Key) []*model.TaxonomyNode {
	return r.byKey[k]
}

// DisplayName returns the deepest occupied hierarchy label of n.
func DisplayName(n *model.TaxonomyNode) (string, error) {
	k := KeyOf(n)
	if err := k.Validate(); err != nil {
		return "", withNode(err, n.ID)
	}
	return k.Leaf(), nil
}

// Depth returns the number of occupied levels of a valid node.
func Depth(n *model.TaxonomyNode) (int, error) {
	k := KeyOf(n)
	if err := k.Validate(); err != nil {
		return 0, withNode(err, n.ID)
	}
	return k.Depth(), nil
}

// ParentOf returns the unique parent of n, or nil when n is a department.
// Zero or multiple matches are integrity failures; no match is ever picked.
func (r *Resolver) ParentOf(n *model.TaxonomyNode) (*model.TaxonomyNode, error) {
	k := KeyOf(n)
	if err := k.Validate(); err != nil {
		return nil, withNode(err, n.ID)
	}
	pk, ok := k.Parent()
	if !ok {
		return nil, nil
	}

	matches := r.byKey[pk]
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, &IntegrityError{
			Kind:    KindParentNotFound,
			NodeID:  n.ID,
			Message: fmt.Sprintf("no node matches parent hierarchy %q", pk.Path()),
		}
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = fmt.Sprint(m.ID)
		}
		return nil, &IntegrityError{
			Kind:    KindAmbiguousParent,
			NodeID:  n.ID,
			Message: fmt.Sprintf("%d nodes match parent hierarchy %q (ids %s)", len(matches), pk.Path(), strings.Join(ids, ", ")),
		}
	}
}

// Ancestors returns the chain from the department down to n's parent.
func (r *Resolver) Ancestors(n *model.TaxonomyNode) ([]*model.TaxonomyNode, error) {
	var chain []*model.TaxonomyNode
	cur := n
	for {
		p, err := r.ParentOf(cur)
		if err != nil {
			return nil, err
		}
		if p == nil {
			break
		}
		chain = append(chain, p)
		cur = p
	}
	slices.Reverse(chain)
	return chain, nil
}

// Descendants returns every node below n in id order.
func (r *Resolver) Descendants(n *model.TaxonomyNode) ([]*model.TaxonomyNode, error) {
	k := KeyOf(n)
	if err := k.Validate(); err != nil {
		return nil, withNode(err, n.ID)
	}
	var out []*model.TaxonomyNode
	for _, other := range r.nodes {
		if k.IsAncestorOf(KeyOf(other)) {
			out = append(out, other)
		}
	}
	return out, nil
}

// NextLevelField returns the level a new child of parent occupies. A nil
// parent means a new department.
func NextLevelField(parent *model.TaxonomyNode) (Level, error) {
	if parent == nil {
		return LevelDept, nil
	}
	k := KeyOf(parent)
	if err := k.Validate(); err != nil {
		return 0, withNode(err, parent.ID)
	}
	d := k.Depth()
	if d >= MaxDepth {
		return 0, &IntegrityError{
			Kind:    KindMaxDepthExceeded,
			NodeID:  parent.ID,
			Message: fmt.Sprintf("cannot attach below %s: hierarchy is limited to %d levels", Level(d-1).Column(), MaxDepth),
		}
	}
	return Level(d), nil
}

// ChildKey builds the hierarchy key of a new node labelled label under parent.
func ChildKey(parent *model.TaxonomyNode, label string) (Key, error) {
	label = strings.TrimSpace(label)
	if label == "" || label == Empty {
		return Key{}, &IntegrityError{Kind: KindMalformed, Message: "label must be a real value, not blank or " + Empty}
	}
	if parent == nil {
		return NewKey([MaxDepth]string{label}), nil
	}
	lvl, err := NextLevelField(parent)
	if err != nil {
		return Key{}, err
	}
	k := KeyOf(parent)
	k[lvl] = label
	return k, nil
}

// BuildURL dash-joins the parent's web URL with slug.
func BuildURL(slug string, parent *model.TaxonomyNode) string {
	if parent == nil || parent.WebURL == "" {
		return slug
	}
	if slug == "" {
		return parent.WebURL
	}
	return parent.WebURL + "-" + slug
}

// Option is one entry of the parent selector.
type Option struct {
	Node       *model.TaxonomyNode `json:"node"`
	Path       string              `json:"path"`
	Depth      int                 `json:"depth"`
	DepthLabel string              `json:"depth_label"`
}

// OptionsTree lazily yields active nodes in pre-order: each node is followed
// by its subtree, siblings ordered by sort position then label. Nodes that
// share a full 5-tuple collapse into a single entry (lowest id). Active nodes
// whose parent is not an active entry follow the regular roots.
func (r *Resolver) OptionsTree() iter.Seq[Option] {
	return func(yield func(Option) bool) {
		entries := make(map[Key]*model.TaxonomyNode)
		for _, n := range r.nodes {
			if !n.Active {
				continue
			}
			k := KeyOf(n)
			if k.Validate() != nil {
				continue
			}
			if _, seen := entries[k]; !seen {
				entries[k] = n
			}
		}

		children := make(map[Key][]Key)
		var roots, orphans []Key
		for k := range entries {
			pk, ok := k.Parent()
			switch {
			case !ok:
				roots = append(roots, k)
			case entries[pk] != nil:
				children[pk] = append(children[pk], k)
			default:
				orphans = append(orphans, k)
			}
		}

		order := func(a, b Key) int {
			na, nb := entries[a], entries[b]
			return cmp.Or(
				cmp.Compare(na.SortPosition, nb.SortPosition),
				cmp.Compare(a.Leaf(), b.Leaf()),
				cmp.Compare(na.ID, nb.ID),
			)
		}
		slices.SortFunc(roots, order)
		slices.SortFunc(orphans, func(a, b Key) int {
			return cmp.Or(cmp.Compare(a.Depth(), b.Depth()), order(a, b))
		})
		for k := range children {
			slices.SortFunc(children[k], order)
		}

		var walk func(k Key) bool
		walk = func(k Key) bool {
			d := k.Depth()
			opt := Option{Node: entries[k], Path: k.Path(), Depth: d, DepthLabel: Level(d - 1).Label()}
			if !yield(opt) {
				return false
			}
			for _, c := range children[k] {
				if !walk(c) {
					return false
				}
			}
			return true
		}

		for _, k := range roots {
			if !walk(k) {
				return
			}
		}
		for _, k := range orphans {
			if !walk(k) {
				return
			}
		}
	}
}

// Conflicts returns groups of nodes that share a full 5-tuple.
func (r *Resolver) Conflicts() [][]*model.TaxonomyNode {
	var out [][]*model.TaxonomyNode
	for _, group := range r.byKey {
		if len(group) > 1 {
			out = append(out, group)
		}
	}
	slices.SortFunc(out, func(a, b []*model.TaxonomyNode) int { return cmp.Compare(a[0].ID, b[0].ID) })
	return out
}

// Audit checks every node and returns all integrity violations in node order.
func (r *Resolver) Audit() []error {
	var errs []error
	for _, n := range r.nodes {
		if _, err := r.ParentOf(n); err != nil {
			errs = append(errs, err)
		}
	}
	for _, group := range r.Conflicts() {
		k := KeyOf(group[0])
		errs = append(errs, &IntegrityError{
			Kind:    KindDuplicateKey,
			NodeID:  group[0].ID,
			Message: fmt.Sprintf("%d nodes share hierarchy %q", len(group), k.Path()),
		})
	}
	return errs
}
