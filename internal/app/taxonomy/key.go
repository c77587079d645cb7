package taxonomy

import (
	"strings"

	"github.com/ikkim/shopadmin-backend/internal/app/model"
)

// Empty marks an unused hierarchy level.
const Empty = "EMPTY"

// MaxDepth is the number of hierarchy levels (DEPT through SUBTYP_3).
const MaxDepth = 5

// Level indexes one of the five hierarchy fields.
type Level int

const (
	LevelDept Level = iota
	LevelTyp
	LevelSubtyp1
	LevelSubtyp2
	LevelSubtyp3
)

var levelColumns = [MaxDepth]string{"DEPT", "TYP", "SUBTYP_1", "SUBTYP_2", "SUBTYP_3"}
var levelLabels = [MaxDepth]string{"Department", "Type", "Subtype 1", "Subtype 2", "Subtype 3"}

// Column returns the storage column name of the level.
func (l Level) Column() string {
	if l < LevelDept || l > LevelSubtyp3 {
		return ""
	}
	return levelColumns[l]
}

// Label returns the human readable level name used in selectors.
func (l Level) Label() string {
	if l < LevelDept || l > LevelSubtyp3 {
		return ""
	}
	return levelLabels[l]
}

// Key is the hierarchy 5-tuple of a node.
type Key [MaxDepth]string

// KeyOf returns the normalized key of a node.
func KeyOf(n *model.TaxonomyNode) Key {
	return NewKey(n.Levels())
}

// NewKey normalizes blank fields to Empty and trims whitespace.
func NewKey(levels [MaxDepth]string) Key {
	var k Key
	for i, v := range levels {
		v = strings.TrimSpace(v)
		if v == "" {
			v = Empty
		}
		k[i] = v
	}
	return k
}

// Occupied reports whether the field at level l holds a real label.
func (k Key) Occupied(l Level) bool {
	return k[l] != Empty
}

// Depth counts occupied fields from DEPT forward, stopping at the first Empty.
func (k Key) Depth() int {
	d := 0
	for d < MaxDepth && k[d] != Empty {
		d++
	}
	return d
}

// Validate rejects all-Empty keys and keys with a real label below an Empty level.
func (k Key) Validate() error {
	d := k.Depth()
	for i := d; i < MaxDepth; i++ {
		if k[i] != Empty {
			return &IntegrityError{
				Kind: KindNonMonotonic,
				Message: "taxonomy node sets " + Level(i).Column() + " while " +
					Level(d).Column() + " is " + Empty,
			}
		}
	}
	if d == 0 {
		return &IntegrityError{Kind: KindMalformed, Message: "taxonomy node has no occupied hierarchy level"}
	}
	return nil
}

// Leaf returns the deepest occupied label. The key must be valid.
func (k Key) Leaf() string {
	d := k.Depth()
	if d == 0 {
		return ""
	}
	return k[d-1]
}

// Parent resets the deepest occupied field. It returns false for departments.
func (k Key) Parent() (Key, bool) {
	d := k.Depth()
	if d <= 1 {
		return Key{}, false
	}
	p := k
	p[d-1] = Empty
	return p, true
}

// Child sets the level below the deepest occupied one to label.
func (k Key) Child(label string) (Key, bool) {
	d := k.Depth()
	if d >= MaxDepth {
		return Key{}, false
	}
	c := k
	c[d] = label
	return c, true
}

// IsAncestorOf reports whether k is a strict prefix of other.
func (k Key) IsAncestorOf(other Key) bool {
	d := k.Depth()
	if d == 0 || d >= other.Depth() {
		return false
	}
	for i := 0; i < d; i++ {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// Labels returns the occupied labels from DEPT down.
func (k Key) Labels() []string {
	d := k.Depth()
	out := make([]string, d)
	copy(out, k[:d])
	return out
}

// Path joins the occupied labels, e.g. "Apparel > Men".
func (k Key) Path() string {
	return strings.Join(k.Labels(), " > ")
}

// String is a stable identifier used for cache keys and logs.
func (k Key) String() string {
	return strings.Join(k[:], "|")
}
