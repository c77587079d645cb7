package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/ikkim/shopadmin-backend/internal/app/taxonomy"
	"github.com/ikkim/shopadmin-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// TaxonomyImportRow is one hierarchy row read from a spreadsheet. Line is the
// 1-based sheet row, for error reporting.
type TaxonomyImportRow struct {
	Line         int
	Levels       [taxonomy.MaxDepth]string
	ShortDesc    string
	SortPosition int
}

type TaxonomyImportError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type TaxonomyImportResult struct {
	Created  int                   `json:"created"`
	Existing int                   `json:"existing"`
	Errors   []TaxonomyImportError `json:"errors"`
}

// ParseTaxonomySheet reads hierarchy rows from the first sheet of an XLSX
// workbook. The header row must name DEPT and TYP columns; SUBTYP_1..3,
// SHORT_DESC and SORT_POSITION are optional.
func ParseTaxonomySheet(r io.Reader) ([]TaxonomyImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	columns := make(map[string]int)
	for i, h := range rows[0] {
		columns[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	levelCols := [taxonomy.MaxDepth]int{-1, -1, -1, -1, -1}
	for l := taxonomy.LevelDept; l <= taxonomy.LevelSubtyp3; l++ {
		if idx, ok := columns[l.Column()]; ok {
			levelCols[l] = idx
		}
	}
	if levelCols[taxonomy.LevelDept] < 0 || levelCols[taxonomy.LevelTyp] < 0 {
		return nil, fmt.Errorf("header row must contain DEPT and TYP columns")
	}

	cell := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var out []TaxonomyImportRow
	for i, row := range rows[1:] {
		item := TaxonomyImportRow{Line: i + 2}
		blank := true
		for l, idx := range levelCols {
			if idx >= 0 && idx < len(row) {
				item.Levels[l] = strings.TrimSpace(row[idx])
				if item.Levels[l] != "" {
					blank = false
				}
			}
		}
		if blank {
			continue
		}
		item.ShortDesc = cell(row, "SHORT_DESC")
		if v := cell(row, "SORT_POSITION"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				item.SortPosition = n
			}
		}
		out = append(out, item)
	}
	return out, nil
}

// Import creates every node named by rows, including missing intermediate
// levels. Rows that already exist are counted, not changed. A bad row is
// reported and skipped; it does not stop the import.
func (s *taxonomyService) Import(ctx context.Context, rows []TaxonomyImportRow) (*TaxonomyImportResult, error) {
	nodes, err := s.repo.WithContext(ctx).FindAll()
	if err != nil {
		return nil, err
	}
	known := make(map[taxonomy.Key][]*model.TaxonomyNode, len(nodes))
	for i := range nodes {
		k := taxonomy.KeyOf(&nodes[i])
		known[k] = append(known[k], &nodes[i])
	}

	result := &TaxonomyImportResult{Errors: []TaxonomyImportError{}}
	for _, row := range rows {
		if err := s.importRow(row, known, result); err != nil {
			result.Errors = append(result.Errors, TaxonomyImportError{Line: row.Line, Message: err.Error()})
		}
	}

	if result.Created > 0 {
		s.cache.Invalidate(ctx)
	}
	logger.Info("Taxonomy import finished", map[string]interface{}{
		"rows":     len(rows),
		"created":  result.Created,
		"existing": result.Existing,
		"errors":   len(result.Errors),
	})
	return result, nil
}

func (s *taxonomyService) importRow(row TaxonomyImportRow, known map[taxonomy.Key][]*model.TaxonomyNode, result *TaxonomyImportResult) error {
	key := taxonomy.NewKey(row.Levels)
	if err := key.Validate(); err != nil {
		return err
	}

	var parent *model.TaxonomyNode
	labels := key.Labels()
	for depth := 1; depth <= len(labels); depth++ {
		var levels [taxonomy.MaxDepth]string
		copy(levels[:], labels[:depth])
		prefix := taxonomy.NewKey(levels)
		leaf := depth == len(labels)

		switch existing := known[prefix]; len(existing) {
		case 1:
			parent = existing[0]
			if leaf {
				result.Existing++
			}
			continue
		case 0:
		default:
			return &taxonomy.IntegrityError{
				Kind:    taxonomy.KindAmbiguousParent,
				NodeID:  existing[0].ID,
				Message: fmt.Sprintf("hierarchy %q is shared by %d nodes", prefix.Path(), len(existing)),
			}
		}

		slug, err := taxonomy.NodeSlug("", labels[depth-1])
		if err != nil {
			return err
		}
		node := &model.TaxonomyNode{
			WebURL: taxonomy.BuildURL(slug, parent),
			Active: true,
		}
		node.SetLevels(prefix)
		if leaf {
			node.ShortDesc = row.ShortDesc
			node.SortPosition = row.SortPosition
		}
		if err := s.repo.Create(node); err != nil {
			return err
		}
		known[prefix] = []*model.TaxonomyNode{node}
		result.Created++
		parent = node
	}
	return nil
}
