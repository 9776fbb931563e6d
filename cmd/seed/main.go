// Command seed loads the tag and ingredient catalog and, optionally, demo
// users and recipes.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/seed"
)

func main() {
	catalogPath := flag.String("catalog", "", "YAML catalog file (defaults to the embedded catalog)")
	demo := flag.Bool("demo", false, "Also generate demo users, recipes and memberships")
	numUsers := flag.Int("users", 10, "Number of demo users")
	recipesPerUser := flag.Int("recipes", 3, "Recipes per demo user")
	clean := flag.Bool("clean", false, "Remove existing users and recipes before generating demo data")
	fakerSeed := flag.Int64("seed", 0, "Faker seed for reproducible demo data (0 is random)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		log.Fatalf("Schema apply failed: %v", err)
	}

	catalog, err := loadCatalog(*catalogPath)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	res, err := seed.SeedCatalog(ctx, db, catalog)
	if err != nil {
		log.Fatalf("Catalog seeding failed: %v", err)
	}
	log.Printf("catalog: %d tags and %d ingredients added", res.TagsCreated, res.IngredientsCreated)

	if !*demo {
		return
	}

	if *clean {
		if err := seed.ClearDemo(ctx, db); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	demoRes, err := seed.NewFactory(db, *fakerSeed).SeedDemo(ctx, seed.DemoOptions{
		Users:          *numUsers,
		RecipesPerUser: *recipesPerUser,
	})
	if err != nil {
		log.Fatalf("Demo seeding failed: %v", err)
	}
	log.Printf("demo: %d users, %d recipes, %d favorites, %d cart entries, %d subscriptions",
		demoRes.Users, demoRes.Recipes, demoRes.Favorites, demoRes.CartEntries, demoRes.Subscriptions)
	log.Printf("all demo users have the password %s", seed.DemoPassword)
}

func loadCatalog(path string) (*seed.Catalog, error) {
	if path == "" {
		return seed.DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return seed.ParseCatalog(data)
}
