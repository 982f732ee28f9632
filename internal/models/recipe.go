package models

import (
	"time"
)

// Recipe cooking time bounds, in minutes.
const (
	MinCookingTime = 1
	MaxCookingTime = 6000
)

// Recipe is the aggregate root: tags and line items belong to it.
type Recipe struct {
	ID                uint64             `gorm:"primaryKey;autoIncrement"`
	AuthorID          uint64             `gorm:"not null;index"`
	Author            User               `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	PubDate           time.Time          `gorm:"autoCreateTime;index"`
	Name              string             `gorm:"size:200;not null"`
	Image             *string            `gorm:"size:255"`
	Text              *string            `gorm:"type:text"`
	CookingTime       int                `gorm:"not null;default:1;check:chk_recipes_cooking_time,cooking_time >= 1 AND cooking_time <= 6000"`
	Tags              []Tag              `gorm:"many2many:recipes_tags"`
	RecipeIngredients []RecipeIngredient `gorm:"foreignKey:RecipeID"`
}

// RecipeIngredient is a line item: an ingredient and its amount in a recipe.
type RecipeIngredient struct {
	ID           uint64     `gorm:"primaryKey;autoIncrement"`
	RecipeID     uint64     `gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	IngredientID uint64     `gorm:"not null;uniqueIndex:idx_recipe_ingredient;index"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID"`
	Amount       int        `gorm:"not null;check:chk_recipes_ingredients_amount,amount >= 1"`
}

// Favorite marks a recipe as a favorite of a user.
type Favorite struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    uint64 `gorm:"not null;uniqueIndex:idx_favorite_user_recipe"`
	RecipeID  uint64 `gorm:"not null;uniqueIndex:idx_favorite_user_recipe;index"`
	CreatedAt time.Time
}

// CartItem puts a recipe into the shopping cart of a user.
type CartItem struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    uint64 `gorm:"not null;uniqueIndex:idx_cart_user_recipe"`
	RecipeID  uint64 `gorm:"not null;uniqueIndex:idx_cart_user_recipe;index"`
	CreatedAt time.Time
}

// TableName overrides the table name for Recipe
func (Recipe) TableName() string {
	return "recipes"
}

// TableName overrides the table name for RecipeIngredient
func (RecipeIngredient) TableName() string {
	return "recipes_ingredients"
}

// TableName overrides the table name for Favorite
func (Favorite) TableName() string {
	return "recipes_favorited"
}

// TableName overrides the table name for CartItem
func (CartItem) TableName() string {
	return "recipes_in_shopping_cart"
}
