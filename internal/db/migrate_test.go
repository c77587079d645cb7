package db

import (
	"testing"

	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedTaxonomy(t *testing.T) {
	testDB, err := SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		CleanupTestDB(testDB)
	})

	require.NoError(t, SeedTaxonomy(testDB))

	var nodes []model.TaxonomyNode
	require.NoError(t, testDB.Order("sort_position").Find(&nodes).Error)
	require.Len(t, nodes, len(defaultDepartments))
	assert.Equal(t, "Apparel", nodes[0].Dept)
	assert.Equal(t, "EMPTY", nodes[0].Typ)
	assert.True(t, nodes[0].Active)

	// Second run is a no-op
	require.NoError(t, SeedTaxonomy(testDB))
	var count int64
	testDB.Model(&model.TaxonomyNode{}).Count(&count)
	assert.Equal(t, int64(len(defaultDepartments)), count)

	require.NoError(t, TruncateAllTables(testDB))
	testDB.Model(&model.TaxonomyNode{}).Count(&count)
	assert.Zero(t, count)
}
