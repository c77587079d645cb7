package taxonomy

import (
	"errors"
	"fmt"
)

// ErrNodeNotFound is returned when a node id is absent from the supplied set.
var ErrNodeNotFound = errors.New("taxonomy node not found")

// IntegrityKind classifies taxonomy data-integrity failures.
type IntegrityKind string

const (
	KindMalformed        IntegrityKind = "malformed"
	KindNonMonotonic     IntegrityKind = "non_monotonic"
	KindParentNotFound   IntegrityKind = "parent_not_found"
	KindAmbiguousParent  IntegrityKind = "ambiguous_parent"
	KindMaxDepthExceeded IntegrityKind = "max_depth_exceeded"
	KindDuplicateKey     IntegrityKind = "duplicate_key"
)

// IntegrityError reports hierarchy data that cannot be resolved. It is never
// corrected automatically.
type IntegrityError struct {
	Kind    IntegrityKind
	NodeID  uint
	Message string
}

func (e *IntegrityError) Error() string {
	if e.NodeID != 0 {
		return fmt.Sprintf("taxonomy integrity (%s) on node %d: %s", e.Kind, e.NodeID, e.Message)
	}
	return fmt.Sprintf("taxonomy integrity (%s): %s", e.Kind, e.Message)
}

// IsIntegrityError reports whether err wraps an IntegrityError, optionally of one of kinds.
func IsIntegrityError(err error, kinds ...IntegrityKind) bool {
	var ie *IntegrityError
	if !errors.As(err, &ie) {
		return false
	}
	if len(kinds) == 0 {
		return true
	}
	for _, k := range kinds {
		if ie.Kind == k {
			return true
		}
	}
	return false
}

func withNode(err error, id uint) error {
	var ie *IntegrityError
	if errors.As(err, &ie) && ie.NodeID == 0 {
		cp := *ie
		cp.NodeID = id
		return &cp
	}
	return err
}
