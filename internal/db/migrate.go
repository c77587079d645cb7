package db

import (
	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/ikkim/shopadmin-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned by the service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.TaxonomyNode{},
		&model.Product{},
		&model.Order{},
		&model.Refund{},
		&model.RefundStatusHistory{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds the default departments to an empty taxonomy.
func Seed() error {
	return SeedTaxonomy(DB)
}

var defaultDepartments = []struct {
	label string
	url   string
}{
	{"Apparel", "apparel"},
	{"Footwear", "footwear"},
	{"Accessories", "accessories"},
	{"Home", "home"},
}

// SeedTaxonomy inserts the default departments when taxonomy_nodes is empty.
func SeedTaxonomy(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.TaxonomyNode{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Taxonomy already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	for i, d := range defaultDepartments {
		node := model.TaxonomyNode{
			Dept:         d.label,
			Typ:          "EMPTY",
			Subtyp1:      "EMPTY",
			Subtyp2:      "EMPTY",
			Subtyp3:      "EMPTY",
			WebURL:       d.url,
			Active:       true,
			SortPosition: i,
		}
		if err := db.Create(&node).Error; err != nil {
			logger.Error("Failed to seed taxonomy department", err, map[string]interface{}{
				"dept": d.label,
			})
			return err
		}
	}

	logger.Info("Taxonomy seeded successfully", map[string]interface{}{
		"departments": len(defaultDepartments),
	})
	return nil
}
