package testsupport

import (
	"testing"

	"github.com/VtlBz/foodgram-project/internal/database"
	"github.com/VtlBz/foodgram-project/internal/models"
	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Password is the plain text password of every fixture user.
const Password = "s3cret-pass"

// NewDB opens a migrated in-memory SQLite database. The pool is limited to
// one connection so every query sees the same memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying SQL DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// CreateUser inserts an active user with the fixture password.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := &models.User{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "First " + username,
		LastName:  "Last " + username,
		Password:  string(hash),
		IsActive:  true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

// CreateTag inserts a tag.
func CreateTag(t *testing.T, db *gorm.DB, name, color, slug string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, Color: color, Slug: slug}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("Failed to create tag %s: %v", name, err)
	}
	return tag
}

// CreateIngredient inserts a catalog ingredient.
func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("Failed to create ingredient %s: %v", name, err)
	}
	return ingredient
}

// Item is a line item for CreateRecipe.
type Item struct {
	Ingredient *models.Ingredient
	Amount     int
}

// CreateRecipe inserts a recipe with its tags and line items, bypassing the
// service layer.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tags []*models.Tag, items ...Item) *models.Recipe {
	t.Helper()
	text := name + " text"
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        &text,
		CookingTime: 10,
	}
	if err := db.Omit("Tags", "RecipeIngredients", "Author").Create(recipe).Error; err != nil {
		t.Fatalf("Failed to create recipe %s: %v", name, err)
	}
	if len(tags) > 0 {
		if err := db.Model(recipe).Association("Tags").Append(tags); err != nil {
			t.Fatalf("Failed to tag recipe %s: %v", name, err)
		}
	}
	for _, item := range items {
		line := models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: item.Ingredient.ID, Amount: item.Amount}
		if err := db.Omit("Ingredient").Create(&line).Error; err != nil {
			t.Fatalf("Failed to add ingredient to recipe %s: %v", name, err)
		}
	}
	return recipe
}
