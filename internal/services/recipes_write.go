package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/VtlBz/foodgram-project/internal/models"
	"github.com/VtlBz/foodgram-project/internal/storage"
	"github.com/VtlBz/foodgram-project/internal/types"
	"github.com/VtlBz/foodgram-project/internal/validation"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const forbiddenMessage = "У вас недостаточно прав для выполнения данного действия."

// IngredientInput is one (ingredient, amount) pair of a recipe payload.
type IngredientInput struct {
	ID     types.FlexID `json:"id"`
	Amount int          `json:"amount" validate:"min=1"`
}

// RecipeInput is the create and update payload. Nil slices and pointers
// mean the field was not sent.
type RecipeInput struct {
	Ingredients []IngredientInput    `json:"ingredients" validate:"omitnil,dive"`
	Tags        []types.FlexID       `json:"tags"`
	Image       types.OptionalString `json:"image" validate:"-"`
	Name        *string              `json:"name" validate:"omitnil,max=200"`
	Text        *string              `json:"text"`
	CookingTime *int                 `json:"cooking_time" validate:"omitnil,min=1,max=6000"`
}

// recipeWrite is a validated RecipeInput with its references resolved.
type recipeWrite struct {
	in    RecipeInput
	tags  []models.Tag
	items []models.RecipeIngredient
	image *storage.Image
}

// validateRecipe checks in and resolves tag and ingredient ids. With
// partial set, absent fields are not required.
func validateRecipe(ctx context.Context, db *gorm.DB, in RecipeInput, partial bool) (*recipeWrite, error) {
	fields := types.FieldErrors{}
	if err := validation.Struct(in); err != nil {
		appErr, ok := err.(*types.AppError)
		if !ok {
			return nil, err
		}
		fields.Merge(appErr.Fields)
	}

	// Blank names are rejected here; the struct tag only bounds the length.
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		fields.Add("name", "Обязательное поле.")
	}
	if !partial {
		if in.Name == nil {
			fields.Add("name", "Обязательное поле.")
		}
		if in.CookingTime == nil {
			fields.Add("cooking_time", "Обязательное поле.")
		}
	}

	w := &recipeWrite{in: in}

	if in.Tags != nil || !partial {
		tags, msg, err := resolveTags(ctx, db, types.IDs(in.Tags))
		if err != nil {
			return nil, err
		}
		if msg != "" {
			fields.Add("tags", msg)
		}
		w.tags = tags
	}

	if in.Ingredients != nil || !partial {
		items, msg, err := resolveIngredients(ctx, db, in.Ingredients)
		if err != nil {
			return nil, err
		}
		if msg != "" {
			fields.Add("ingredients", msg)
		}
		w.items = items
	}

	if in.Image.Set && in.Image.Value != nil {
		img, err := storage.DecodeDataURI(*in.Image.Value)
		if err != nil {
			fields.Add("image", "Загрузите корректное изображение.")
		}
		w.image = img
	}

	if len(fields) > 0 {
		return nil, types.Validation(fields)
	}
	return w, nil
}

func resolveTags(ctx context.Context, db *gorm.DB, ids []uint64) ([]models.Tag, string, error) {
	if len(ids) == 0 {
		return nil, "Укажите хотя бы один тег", nil
	}
	seen := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, "Теги не должны повторяться.", nil
		}
		seen[id] = true
	}

	var tags []models.Tag
	if err := db.WithContext(ctx).Where("id IN ?", ids).Order("name").Find(&tags).Error; err != nil {
		return nil, "", err
	}
	if len(tags) != len(ids) {
		found := make(map[uint64]bool, len(tags))
		for _, t := range tags {
			found[t.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return nil, unknownKeyMessage(id), nil
			}
		}
	}
	return tags, "", nil
}

func resolveIngredients(ctx context.Context, db *gorm.DB, in []IngredientInput) ([]models.RecipeIngredient, string, error) {
	if len(in) == 0 {
		return nil, "Укажите хотя бы один ингредиент.", nil
	}
	ids := make([]uint64, 0, len(in))
	seen := make(map[uint64]bool, len(in))
	for _, item := range in {
		id := item.ID.Uint64()
		if seen[id] {
			return nil, "Ингредиенты не должны повторяться.", nil
		}
		seen[id] = true
		ids = append(ids, id)
	}

	var found []uint64
	if err := db.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, "", err
	}
	if len(found) != len(ids) {
		known := make(map[uint64]bool, len(found))
		for _, id := range found {
			known[id] = true
		}
		for _, id := range ids {
			if !known[id] {
				return nil, unknownKeyMessage(id), nil
			}
		}
	}

	items := make([]models.RecipeIngredient, len(in))
	for i, item := range in {
		items[i] = models.RecipeIngredient{IngredientID: item.ID.Uint64(), Amount: item.Amount}
	}
	return items, "", nil
}

func unknownKeyMessage(id uint64) string {
	return fmt.Sprintf("Недопустимый первичный ключ \"%d\" - объект не существует.", id)
}

// CreateRecipe validates in and stores the recipe with its tags and line
// items in one transaction. The stored image is removed if the transaction
// fails.
func CreateRecipe(ctx context.Context, db *gorm.DB, store storage.ImageStore, author *models.User, in RecipeInput) (RecipeView, error) {
	w, err := validateRecipe(ctx, db, in, false)
	if err != nil {
		return RecipeView{}, err
	}

	recipe := models.Recipe{
		AuthorID:    author.ID,
		Name:        *in.Name,
		Text:        in.Text,
		CookingTime: *in.CookingTime,
	}

	if w.image != nil {
		url, err := store.Save(ctx, w.image)
		if err != nil {
			return RecipeView{}, err
		}
		recipe.Image = &url
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Append(w.tags); err != nil {
			return err
		}
		return insertItems(tx, recipe.ID, w.items)
	})
	if err != nil {
		removeImage(ctx, store, recipe.Image)
		return RecipeView{}, err
	}

	return GetRecipe(ctx, db, author, recipe.ID)
}

// UpdateRecipe applies in to recipe id. With partial unset every field is
// required. Supplied tags and ingredients replace the current ones.
func UpdateRecipe(ctx context.Context, db *gorm.DB, store storage.ImageStore, user *models.User, id uint64, in RecipeInput, partial bool) (RecipeView, error) {
	if _, err := ownedRecipe(ctx, db, user, id); err != nil {
		return RecipeView{}, err
	}

	w, err := validateRecipe(ctx, db, in, partial)
	if err != nil {
		return RecipeView{}, err
	}

	var newImage *string
	if w.image != nil {
		url, err := store.Save(ctx, w.image)
		if err != nil {
			return RecipeView{}, err
		}
		newImage = &url
	}

	var oldImage *string
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&recipe, id).Error; err != nil {
			return notFoundOr(err)
		}
		if recipe.AuthorID != user.ID {
			return types.Forbidden(forbiddenMessage)
		}

		updates := map[string]interface{}{}
		if in.Name != nil {
			updates["name"] = *in.Name
		}
		if in.Text != nil || !partial {
			updates["text"] = in.Text
		}
		if in.CookingTime != nil {
			updates["cooking_time"] = *in.CookingTime
		}
		if in.Image.Set {
			oldImage = recipe.Image
			updates["image"] = newImage
		}
		if len(updates) > 0 {
			if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
				return err
			}
		}

		if w.tags != nil {
			if err := tx.Model(&recipe).Association("Tags").Replace(w.tags); err != nil {
				return err
			}
		}
		if w.items != nil {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
				return err
			}
			if err := insertItems(tx, recipe.ID, w.items); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		removeImage(ctx, store, newImage)
		return RecipeView{}, err
	}
	removeImage(ctx, store, oldImage)

	return GetRecipe(ctx, db, user, id)
}

// DeleteRecipe removes the recipe with its line items, tag links and
// membership rows, then its image.
func DeleteRecipe(ctx context.Context, db *gorm.DB, store storage.ImageStore, user *models.User, id uint64) error {
	recipe, err := ownedRecipe(ctx, db, user, id)
	if err != nil {
		return err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(recipe).Error
	})
	if err != nil {
		return err
	}
	removeImage(ctx, store, recipe.Image)
	return nil
}

// ownedRecipe loads recipe id and checks that user wrote it.
func ownedRecipe(ctx context.Context, db *gorm.DB, user *models.User, id uint64) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := quiet(ctx, db).First(&recipe, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	if recipe.AuthorID != user.ID {
		return nil, types.Forbidden(forbiddenMessage)
	}
	return &recipe, nil
}

func insertItems(tx *gorm.DB, recipeID uint64, items []models.RecipeIngredient) error {
	rows := make([]models.RecipeIngredient, len(items))
	for i, item := range items {
		rows[i] = models.RecipeIngredient{RecipeID: recipeID, IngredientID: item.IngredientID, Amount: item.Amount}
	}
	return tx.Omit("Ingredient").Create(&rows).Error
}

func removeImage(ctx context.Context, store storage.ImageStore, url *string) {
	if url == nil || *url == "" {
		return
	}
	if err := store.Delete(ctx, *url); err != nil {
		logrus.WithError(err).WithField("image", *url).Warn("Failed to remove recipe image")
	}
}
