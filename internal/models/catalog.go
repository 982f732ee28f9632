package models

// Tag is a recipe label, e.g. breakfast or dinner.
type Tag struct {
	ID    uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  string `gorm:"size:200;not null;uniqueIndex:idx_tags_name" json:"name"`
	Color string `gorm:"size:7;not null;uniqueIndex:idx_tags_color" json:"color"`
	Slug  string `gorm:"size:100;not null;uniqueIndex:idx_tags_slug" json:"slug"`
}

// Ingredient is an entry of the ingredient catalog. The same name may exist
// with several measurement units.
type Ingredient struct {
	ID              uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string `gorm:"size:200;not null;index:idx_ingredients_name" json:"name"`
	MeasurementUnit string `gorm:"size:20;not null" json:"measurement_unit"`
}

// TableName overrides the table name for Tag
func (Tag) TableName() string {
	return "tags"
}

// TableName overrides the table name for Ingredient
func (Ingredient) TableName() string {
	return "ingredients"
}
