// Package seed loads the reference catalog and generates demo data for
// development databases.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"foodgram/internal/models"
	"foodgram/internal/validation"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed catalog.yml
var defaultCatalog []byte

// Catalog is the reference data shipped with the service.
type Catalog struct {
	Tags        []CatalogTag        `yaml:"tags"`
	Ingredients []CatalogIngredient `yaml:"ingredients"`
}

type CatalogTag struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
	Slug  string `yaml:"slug"`
}

type CatalogIngredient struct {
	Name            string `yaml:"name"`
	MeasurementUnit string `yaml:"measurement_unit"`
}

// CatalogResult counts rows inserted by SeedCatalog. Rows already present
// are not counted.
type CatalogResult struct {
	TagsCreated        int
	IngredientsCreated int
}

// DefaultCatalog parses the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog decodes a YAML catalog and applies the same field rules the
// API enforces on tags.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	for i, t := range c.Tags {
		if strings.TrimSpace(t.Name) == "" || strings.TrimSpace(t.Slug) == "" {
			return nil, fmt.Errorf("catalog tag %d: name and slug are required", i)
		}
		if err := validation.ValidateHexColor(t.Color); err != nil {
			return nil, fmt.Errorf("catalog tag %q: %w", t.Slug, err)
		}
		if err := validation.ValidateSlug(t.Slug); err != nil {
			return nil, fmt.Errorf("catalog tag %q: %w", t.Slug, err)
		}
	}
	for i, ing := range c.Ingredients {
		if strings.TrimSpace(ing.Name) == "" || strings.TrimSpace(ing.MeasurementUnit) == "" {
			return nil, fmt.Errorf("catalog ingredient %d: name and measurement_unit are required", i)
		}
	}
	return &c, nil
}

// SeedCatalog inserts tags and ingredients that are not yet present.
// Running it twice leaves the database unchanged.
func SeedCatalog(ctx context.Context, db *gorm.DB, c *Catalog) (CatalogResult, error) {
	var result CatalogResult

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range c.Tags {
			tag := models.Tag{Name: t.Name, Color: t.Color, Slug: t.Slug}
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slug"}},
				DoNothing: true,
			}).Create(&tag)
			if res.Error != nil {
				return fmt.Errorf("seed tag %q: %w", t.Slug, res.Error)
			}
			result.TagsCreated += int(res.RowsAffected)
		}

		// ingredients have no unique key, so match on name and unit
		for _, ing := range c.Ingredients {
			var existing int64
			if err := tx.Model(&models.Ingredient{}).
				Where("name = ? AND measurement_unit = ?", ing.Name, ing.MeasurementUnit).
				Count(&existing).Error; err != nil {
				return fmt.Errorf("seed ingredient %q: %w", ing.Name, err)
			}
			if existing > 0 {
				continue
			}
			row := models.Ingredient{Name: ing.Name, MeasurementUnit: ing.MeasurementUnit}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("seed ingredient %q: %w", ing.Name, err)
			}
			result.IngredientsCreated++
		}
		return nil
	})
	return result, err
}
