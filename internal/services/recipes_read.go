package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/VtlBz/foodgram-project/internal/models"
	"github.com/VtlBz/foodgram-project/internal/types"
	"gorm.io/gorm"
)

// RecipeFilter narrows the recipe list. Zero values do not filter.
type RecipeFilter struct {
	AuthorID       uint64
	TagSlugs       []string
	IsFavorited    bool
	InShoppingCart bool
}

// withRecipeRelations preloads everything a RecipeView needs.
func withRecipeRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Preload("RecipeIngredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipes_ingredients.id") }).
		Preload("RecipeIngredients.Ingredient")
}

// GetRecipe returns the projection of recipe id for viewer (nil for
// anonymous).
func GetRecipe(ctx context.Context, db *gorm.DB, viewer *models.User, id uint64) (RecipeView, error) {
	var recipe models.Recipe
	if err := withRecipeRelations(quiet(ctx, db)).First(&recipe, id).Error; err != nil {
		return RecipeView{}, notFoundOr(err)
	}
	views, err := recipeViews(ctx, db, viewer, []models.Recipe{recipe})
	if err != nil {
		return RecipeView{}, err
	}
	return views[0], nil
}

// ListRecipes returns one page of recipes matching filter, newest first.
// The favorited and cart filters only apply to authenticated viewers.
func ListRecipes(ctx context.Context, db *gorm.DB, viewer *models.User, filter RecipeFilter, page Page) (PageResult[RecipeView], error) {
	var result PageResult[RecipeView]

	if err := checkFilter(ctx, db, filter); err != nil {
		return result, err
	}

	query := db.WithContext(ctx).Model(&models.Recipe{})
	if filter.AuthorID != 0 {
		query = query.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		tagged := db.Table("recipes_tags").
			Select("recipes_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipes_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}
	if viewer != nil && filter.IsFavorited {
		query = query.Where("recipes.id IN (?)", Favorites.recipeIDs(db, viewer.ID))
	}
	if viewer != nil && filter.InShoppingCart {
		query = query.Where("recipes.id IN (?)", ShoppingCart.recipeIDs(db, viewer.ID))
	}
	query = query.Session(&gorm.Session{})

	if err := query.Count(&result.Count).Error; err != nil {
		return result, err
	}

	var recipes []models.Recipe
	if err := withRecipeRelations(query).
		Order("recipes.pub_date DESC").Order("recipes.id DESC").
		Limit(page.Size).Offset(page.Offset()).
		Find(&recipes).Error; err != nil {
		return result, err
	}

	views, err := recipeViews(ctx, db, viewer, recipes)
	if err != nil {
		return result, err
	}
	result.Items = views
	return result, nil
}

// checkFilter rejects an unknown author id or tag slug.
func checkFilter(ctx context.Context, db *gorm.DB, filter RecipeFilter) error {
	fields := types.FieldErrors{}
	if filter.AuthorID != 0 {
		var n int64
		if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", filter.AuthorID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			fields.Add("author", fmt.Sprintf("Выберите корректный вариант. %d нет среди допустимых значений.", filter.AuthorID))
		}
	}
	if len(filter.TagSlugs) > 0 {
		var known []string
		if err := db.WithContext(ctx).Model(&models.Tag{}).Where("slug IN ?", filter.TagSlugs).Pluck("slug", &known).Error; err != nil {
			return err
		}
		present := make(map[string]bool, len(known))
		for _, slug := range known {
			present[slug] = true
		}
		var missing []string
		for _, slug := range filter.TagSlugs {
			if !present[slug] {
				missing = append(missing, slug)
			}
		}
		if len(missing) > 0 {
			fields.Add("tags", fmt.Sprintf("Выберите корректный вариант. %s нет среди допустимых значений.", strings.Join(missing, ", ")))
		}
	}
	if len(fields) > 0 {
		return types.Validation(fields)
	}
	return nil
}

// recipeViews projects recipes for viewer. Subscription, favorite and cart
// flags are fetched with one query each for the whole slice.
func recipeViews(ctx context.Context, db *gorm.DB, viewer *models.User, recipes []models.Recipe) ([]RecipeView, error) {
	recipeIDs := make([]uint64, len(recipes))
	authorIDs := make([]uint64, len(recipes))
	for i := range recipes {
		recipeIDs[i] = recipes[i].ID
		authorIDs[i] = recipes[i].AuthorID
	}

	subscribed, err := subscribedTo(ctx, db, viewer, authorIDs)
	if err != nil {
		return nil, err
	}
	favorited, err := Favorites.Batch(ctx, db, viewer, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := ShoppingCart.Batch(ctx, db, viewer, recipeIDs)
	if err != nil {
		return nil, err
	}

	views := make([]RecipeView, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		tags := r.Tags
		if tags == nil {
			tags = []models.Tag{}
		}
		ingredients := make([]IngredientAmount, len(r.RecipeIngredients))
		for j, item := range r.RecipeIngredients {
			ingredients[j] = IngredientAmount{
				ID:              item.IngredientID,
				Name:            item.Ingredient.Name,
				MeasurementUnit: item.Ingredient.MeasurementUnit,
				Amount:          item.Amount,
			}
		}
		views[i] = RecipeView{
			ID:               r.ID,
			Tags:             tags,
			Author:           profileOf(&r.Author, subscribed[r.AuthorID]),
			Ingredients:      ingredients,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
	}
	return views, nil
}
