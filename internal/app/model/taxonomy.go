package model

import (
	"time"

	"gorm.io/datatypes"
)

// TaxonomyNode is one row of the flattened category hierarchy.
// Unused levels hold the sentinel "EMPTY" rather than NULL.
type TaxonomyNode struct {
	ID              uint                        `gorm:"primarykey" json:"id"`
	Dept            string                      `gorm:"column:dept;type:varchar(100);not null;default:'EMPTY';index:idx_taxonomy_key,priority:1" json:"dept"`
	Typ             string                      `gorm:"column:typ;type:varchar(100);not null;default:'EMPTY';index:idx_taxonomy_key,priority:2" json:"typ"`
	Subtyp1         string                      `gorm:"column:subtyp_1;type:varchar(100);not null;default:'EMPTY';index:idx_taxonomy_key,priority:3" json:"subtyp_1"`
	Subtyp2         string                      `gorm:"column:subtyp_2;type:varchar(100);not null;default:'EMPTY';index:idx_taxonomy_key,priority:4" json:"subtyp_2"`
	Subtyp3         string                      `gorm:"column:subtyp_3;type:varchar(100);not null;default:'EMPTY';index:idx_taxonomy_key,priority:5" json:"subtyp_3"`
	WebURL          string                      `gorm:"column:web_url;type:varchar(500);index" json:"web_url"`
	Active          bool                        `gorm:"not null" json:"active"`
	ShortDesc       string                      `gorm:"type:varchar(255)" json:"short_desc,omitempty"`
	LongDescription string                      `gorm:"type:text" json:"long_description,omitempty"`
	MetaTags        datatypes.JSONSlice[string] `json:"meta_tags,omitempty"`
	SortPosition    int                         `gorm:"not null;default:0" json:"sort_position"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}

func (TaxonomyNode) TableName() string {
	return "taxonomy_nodes"
}

// Levels returns the five hierarchy fields from DEPT down to SUBTYP_3.
func (n *TaxonomyNode) Levels() [5]string {
	return [5]string{n.Dept, n.Typ, n.Subtyp1, n.Subtyp2, n.Subtyp3}
}

// SetLevels overwrites the five hierarchy fields.
func (n *TaxonomyNode) SetLevels(levels [5]string) {
	n.Dept = levels[0]
	n.Typ = levels[1]
	n.Subtyp1 = levels[2]
	n.Subtyp2 = levels[3]
	n.Subtyp3 = levels[4]
}
