package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/ikkim/shopadmin-backend/internal/app/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func taxonomyWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseTaxonomySheet(t *testing.T) {
	buf := taxonomyWorkbook(t, [][]interface{}{
		{"dept", "TYP", "SUBTYP_1", "SHORT_DESC", "SORT_POSITION"},
		{"Apparel", "Men", "Shirts", "Shirts for men", 2},
		{"", "", "", "", ""},
		{" Home ", "", "", "", "x"},
	})

	rows, err := ParseTaxonomySheet(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, [taxonomy.MaxDepth]string{"Apparel", "Men", "Shirts", "", ""}, rows[0].Levels)
	assert.Equal(t, "Shirts for men", rows[0].ShortDesc)
	assert.Equal(t, 2, rows[0].SortPosition)

	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, "Home", rows[1].Levels[0])
	assert.Zero(t, rows[1].SortPosition)
}

func TestParseTaxonomySheet_MissingColumns(t *testing.T) {
	buf := taxonomyWorkbook(t, [][]interface{}{
		{"Department", "Type"},
		{"Apparel", "Men"},
	})

	_, err := ParseTaxonomySheet(buf)
	assert.ErrorContains(t, err, "DEPT and TYP")
}

func TestTaxonomyService_Import(t *testing.T) {
	svc, _ := setupTaxonomyServiceTest(t)
	ctx := context.Background()

	apparel := createNode(t, svc, nil, "Apparel")

	rows := []TaxonomyImportRow{
		{Line: 2, Levels: [taxonomy.MaxDepth]string{"Apparel", "Men", "Shirts"}, ShortDesc: "Shirts", SortPosition: 1},
		{Line: 3, Levels: [taxonomy.MaxDepth]string{"Apparel", "Men"}},
		{Line: 4, Levels: [taxonomy.MaxDepth]string{"Home", "", "Pillows"}},
		{Line: 5, Levels: [taxonomy.MaxDepth]string{"Home", "Kitchen"}},
	}

	result, err := svc.Import(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Created) // Men, Shirts, Home, Kitchen
	assert.Equal(t, 1, result.Existing)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 4, result.Errors[0].Line)

	options, err := svc.Options(ctx)
	require.NoError(t, err)
	paths := make([]string, len(options))
	for i, o := range options {
		paths[i] = o.Path
	}
	assert.Equal(t, []string{"Apparel", "Apparel > Men", "Apparel > Men > Shirts", "Home", "Home > Kitchen"}, paths)

	shirts := options[2].Node
	assert.Equal(t, "apparel-men-shirts", shirts.WebURL)
	assert.Equal(t, "Shirts", shirts.ShortDesc)
	assert.Equal(t, 1, shirts.SortPosition)
	assert.Equal(t, apparel.ID, mustParent(t, svc, options[1].Node.ID))

	again, err := svc.Import(ctx, rows[:2])
	require.NoError(t, err)
	assert.Zero(t, again.Created)
	assert.Equal(t, 2, again.Existing)
}

func mustParent(t *testing.T, svc TaxonomyService, id uint) uint {
	t.Helper()
	resolved, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, resolved.Parent)
	return resolved.Parent.ID
}

func TestTaxonomyService_Import_RowWithoutSlug(t *testing.T) {
	svc, _ := setupTaxonomyServiceTest(t)

	result, err := svc.Import(context.Background(), []TaxonomyImportRow{
		{Line: 2, Levels: [taxonomy.MaxDepth]string{"Home", "キッチン"}},
		{Line: 3, Levels: [taxonomy.MaxDepth]string{"Home", "Garden"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created) // Home, Garden
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Line)
	assert.Contains(t, result.Errors[0].Message, "explicit slug")
}
