package services

import (
	"context"
	"strings"

	"github.com/VtlBz/foodgram-project/internal/models"
	"gorm.io/gorm"
)

// ListTags returns every tag ordered by name.
func ListTags(ctx context.Context, db *gorm.DB) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func GetTag(ctx context.Context, db *gorm.DB, id uint64) (*models.Tag, error) {
	var tag models.Tag
	if err := quiet(ctx, db).First(&tag, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &tag, nil
}

// ListIngredients returns ingredients whose name starts with prefix,
// ignoring case, ordered by name. An empty prefix lists everything.
func ListIngredients(ctx context.Context, db *gorm.DB, prefix string) ([]models.Ingredient, error) {
	query := db.WithContext(ctx).Order("name").Order("id")
	if prefix != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '!'", escapeLike(strings.ToLower(prefix))+"%")
	}
	ingredients := []models.Ingredient{}
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func GetIngredient(ctx context.Context, db *gorm.DB, id uint64) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := quiet(ctx, db).First(&ingredient, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &ingredient, nil
}

// LIKE patterns use '!' as the escape character.
var likeEscaper = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
