package services

import (
	"context"
	"errors"

	"github.com/VtlBz/foodgram-project/internal/models"
	"github.com/VtlBz/foodgram-project/internal/types"
	"gorm.io/gorm"
)

const unauthenticatedMessage = "Учетные данные не были предоставлены."

// MembershipSet is a per-user set of recipes backed by a table with a
// unique (user_id, recipe_id) index. The index, not a pre-check, rejects
// duplicates, so concurrent adds leave one row.
type MembershipSet struct {
	newRow     func(userID, recipeID uint64) interface{}
	model      func() interface{}
	duplicated string
	absent     string
}

var (
	// Favorites is the set of recipes a user marked as favorite.
	Favorites = MembershipSet{
		newRow: func(userID, recipeID uint64) interface{} {
			return &models.Favorite{UserID: userID, RecipeID: recipeID}
		},
		model:      func() interface{} { return &models.Favorite{} },
		duplicated: "Рецепт уже в избранном.",
		absent:     "Рецепта нет в избранном.",
	}

	// ShoppingCart is the set of recipes a user is going to cook.
	ShoppingCart = MembershipSet{
		newRow: func(userID, recipeID uint64) interface{} {
			return &models.CartItem{UserID: userID, RecipeID: recipeID}
		},
		model:      func() interface{} { return &models.CartItem{} },
		duplicated: "Рецепт уже в корзине.",
		absent:     "Рецепта нет в корзине.",
	}
)

// Add puts recipe id into the set of user and returns the short projection
// of the recipe.
func (s MembershipSet) Add(ctx context.Context, db *gorm.DB, user *models.User, recipeID uint64) (RecipeShort, error) {
	if user == nil {
		return RecipeShort{}, types.Unauthorized(unauthenticatedMessage)
	}
	var recipe models.Recipe
	if err := quiet(ctx, db).First(&recipe, recipeID).Error; err != nil {
		return RecipeShort{}, notFoundOr(err)
	}

	if err := db.WithContext(ctx).Create(s.newRow(user.ID, recipe.ID)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return RecipeShort{}, types.Conflict(s.duplicated)
		}
		return RecipeShort{}, err
	}
	return shortOf(&recipe), nil
}

// Remove takes recipe id out of the set of user.
func (s MembershipSet) Remove(ctx context.Context, db *gorm.DB, user *models.User, recipeID uint64) error {
	if user == nil {
		return types.Unauthorized(unauthenticatedMessage)
	}
	var recipe models.Recipe
	if err := quiet(ctx, db).Select("id").First(&recipe, recipeID).Error; err != nil {
		return notFoundOr(err)
	}

	result := db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", user.ID, recipe.ID).
		Delete(s.model())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return types.Conflict(s.absent)
	}
	return nil
}

// Contains reports whether recipe id is in the set of user. Always false
// for anonymous users.
func (s MembershipSet) Contains(ctx context.Context, db *gorm.DB, user *models.User, recipeID uint64) (bool, error) {
	set, err := s.Batch(ctx, db, user, []uint64{recipeID})
	if err != nil {
		return false, err
	}
	return set[recipeID], nil
}

// Batch reports which of recipeIDs are in the set of user with one query.
func (s MembershipSet) Batch(ctx context.Context, db *gorm.DB, user *models.User, recipeIDs []uint64) (map[uint64]bool, error) {
	set := make(map[uint64]bool)
	if user == nil || len(recipeIDs) == 0 {
		return set, nil
	}
	var ids []uint64
	if err := db.WithContext(ctx).Model(s.model()).
		Where("user_id = ? AND recipe_id IN ?", user.ID, recipeIDs).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// recipeIDs is a subquery selecting the recipe ids in the set of user.
func (s MembershipSet) recipeIDs(db *gorm.DB, userID uint64) *gorm.DB {
	return db.Model(s.model()).Select("recipe_id").Where("user_id = ?", userID)
}
