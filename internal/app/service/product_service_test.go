package service

import (
	"context"
	"testing"
	"time"

	"github.com/ikkim/shopadmin-backend/internal/app/catalog"
	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/ikkim/shopadmin-backend/internal/app/repository"
	"github.com/ikkim/shopadmin-backend/internal/app/taxonomy"
	"github.com/ikkim/shopadmin-backend/internal/cache"
	"github.com/ikkim/shopadmin-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type productFixture struct {
	apparel, men, shirts, home *model.TaxonomyNode
}

func setupProductServiceTest(t *testing.T) (ProductService, productFixture) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	taxonomyService := NewTaxonomyService(repository.NewTaxonomyRepository(testDB), cache.NewMemoryTaxonomyCache(time.Minute), testDB)
	productService := NewProductService(repository.NewProductRepository(testDB), taxonomyService)

	var f productFixture
	f.apparel = createNode(t, taxonomyService, nil, "Apparel")
	f.men = createNode(t, taxonomyService, f.apparel, "Men")
	f.shirts = createNode(t, taxonomyService, f.men, "Shirts")
	f.home = createNode(t, taxonomyService, nil, "Home")

	add := func(name, brand string, node *model.TaxonomyNode, price string, stock int, attrs map[string]string) {
		p := &model.Product{
			Name:           name,
			Brand:          brand,
			TaxonomyNodeID: &node.ID,
			Price:          dec(price),
			StockQuantity:  stock,
			Attributes:     datatypes.NewJSONType(attrs),
			Active:         true,
		}
		require.NoError(t, productService.CreateProduct(p))
	}
	add("Linen Shirt", "Acme", f.shirts, "49.00", 4, map[string]string{"color": "white"})
	add("Oxford Shirt", "Acme", f.shirts, "59.00", 0, map[string]string{"color": "blue"})
	add("Wool Coat", "Northwind", f.men, "199.00", 2, map[string]string{"color": "grey"})
	add("Throw Pillow", "Contoso", f.home, "19.00", 9, map[string]string{"color": "white"})

	return productService, f
}

func productNames(products []model.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func TestProductService_ListProducts(t *testing.T) {
	productService, f := setupProductServiceTest(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		opts  ProductListOptions
		want  []string
		total int
	}{
		{
			name:  "Department includes descendants",
			opts:  ProductListOptions{CategoryID: &f.apparel.ID, Sort: catalog.SortPriceAsc},
			want:  []string{"Linen Shirt", "Oxford Shirt", "Wool Coat"},
			total: 3,
		},
		{
			name:  "Leaf category",
			opts:  ProductListOptions{CategoryID: &f.shirts.ID, InStockOnly: true},
			want:  []string{"Linen Shirt"},
			total: 1,
		},
		{
			name:  "Attribute across departments",
			opts:  ProductListOptions{Attributes: map[string][]string{"color": {"white"}}, Sort: catalog.SortName},
			want:  []string{"Linen Shirt", "Throw Pillow"},
			total: 2,
		},
		{
			name:  "Search",
			opts:  ProductListOptions{Search: "SHIRT", Sort: catalog.SortPriceDesc},
			want:  []string{"Oxford Shirt", "Linen Shirt"},
			total: 2,
		},
		{
			name:  "Paged",
			opts:  ProductListOptions{Sort: catalog.SortPriceAsc, Limit: 2, Offset: 1},
			want:  []string{"Linen Shirt", "Oxford Shirt"},
			total: 4,
		},
		{
			name:  "Offset past the end",
			opts:  ProductListOptions{Offset: 10},
			want:  []string{},
			total: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := productService.ListProducts(ctx, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, productNames(result.Products))
			assert.Equal(t, tt.total, result.Total)
		})
	}
}

func TestProductService_ListProducts_Facets(t *testing.T) {
	productService, f := setupProductServiceTest(t)

	result, err := productService.ListProducts(context.Background(), ProductListOptions{
		CategoryID: &f.apparel.ID,
		Brands:     []string{"Acme"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Facets.Total)
	assert.Equal(t, []catalog.FacetValue{
		{Value: "Acme", Count: 2},
		{Value: "Northwind", Count: 1},
	}, result.Facets.Brands)
	assert.Equal(t, 2, result.Facets.Categories[f.shirts.ID])
	assert.Zero(t, result.Facets.Categories[f.home.ID])
}

func TestProductService_ListProducts_UnknownCategory(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	missing := uint(9999)
	_, err := productService.ListProducts(context.Background(), ProductListOptions{CategoryID: &missing})
	assert.ErrorIs(t, err, taxonomy.ErrNodeNotFound)
}

func TestProductService_GetProductByID(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	result, err := productService.ListProducts(context.Background(), ProductListOptions{Search: "coat"})
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	coat := result.Products[0]

	tests := []struct {
		name    string
		id      uint
		wantErr error
	}{
		{
			name:    "Existing product",
			id:      coat.ID,
			wantErr: nil,
		},
		{
			name:    "Non-existing product",
			id:      9999,
			wantErr: ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := productService.GetProductByID(tt.id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, found)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Wool Coat", found.Name)
				require.NotNil(t, found.TaxonomyNode)
				assert.Equal(t, "Men", found.TaxonomyNode.Typ)
			}
		})
	}
}

func TestProductService_CreateProduct_NegativePrice(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	err := productService.CreateProduct(&model.Product{Name: "Broken", Price: dec("-1"), Active: true})
	assert.ErrorIs(t, err, ErrInvalidProductPrice)
}
