package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ikkim/shopadmin-backend/config"
	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/ikkim/shopadmin-backend/internal/app/repository"
	"github.com/ikkim/shopadmin-backend/internal/app/service"
	"github.com/ikkim/shopadmin-backend/internal/cache"
	"github.com/ikkim/shopadmin-backend/internal/db"
	"github.com/ikkim/shopadmin-backend/pkg/util"
)

func main() {
	taxonomyFile := flag.String("taxonomy", "", "XLSX workbook with DEPT, TYP, SUBTYP_1..3 columns")
	yes := flag.Bool("yes", false, "import without asking for confirmation")
	tokenFor := flag.String("token", "", "print a 24h admin token for this email and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if *tokenFor != "" {
		token, err := util.GenerateToken(1, *tokenFor, string(model.RoleAdmin), cfg.JWT.Secret, 24*time.Hour)
		if err != nil {
			log.Fatal("Failed to sign token:", err)
		}
		fmt.Println(token)
		return
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	if *taxonomyFile == "" {
		if err := db.Seed(); err != nil {
			log.Fatal("Failed to seed default departments:", err)
		}
		fmt.Println("Default departments seeded.")
		return
	}

	fmt.Printf("Reading XLSX file: %s\n", *taxonomyFile)
	f, err := os.Open(*taxonomyFile)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	defer f.Close()

	rows, err := service.ParseTaxonomySheet(f)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	fmt.Printf("Total rows to import: %d\n", len(rows))

	if !*yes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	taxonomyService := service.NewTaxonomyService(
		repository.NewTaxonomyRepository(db.GetDB()),
		cache.NewMemoryTaxonomyCache(time.Minute),
		db.GetDB(),
	)
	result, err := taxonomyService.Import(context.Background(), rows)
	if err != nil {
		log.Fatal("Failed to import taxonomy:", err)
	}

	for _, rowErr := range result.Errors {
		fmt.Printf("  line %d: %s\n", rowErr.Line, rowErr.Message)
	}
	fmt.Println("Import completed.")
	fmt.Printf("Created: %d, already present: %d, rejected: %d\n", result.Created, result.Existing, len(result.Errors))
}
