package models

// Tag is catalog reference data used to label recipes.
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:200;not null" json:"name"`
	Color string `gorm:"size:7" json:"color"`
	Slug  string `gorm:"size:200;uniqueIndex;not null" json:"slug"`
}

// TableName specifies the table name for GORM
func (Tag) TableName() string {
	return "tags"
}

// Ingredient is catalog reference data. Name and unit are unique by
// convention only.
type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"size:200;not null;index:idx_ingredients_name_unit" json:"name"`
	MeasurementUnit string `gorm:"size:200;not null;index:idx_ingredients_name_unit" json:"measurement_unit"`
}

// TableName specifies the table name for GORM
func (Ingredient) TableName() string {
	return "ingredients"
}
