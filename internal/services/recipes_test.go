package services

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/VtlBz/foodgram-project/internal/models"
	"github.com/VtlBz/foodgram-project/internal/storage"
	"github.com/VtlBz/foodgram-project/internal/testsupport"
	"github.com/VtlBz/foodgram-project/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const pngURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

type fixture struct {
	db        *gorm.DB
	store     *storage.LocalStore
	author    *models.User
	reader    *models.User
	breakfast *models.Tag
	dinner    *models.Tag
	flour     *models.Ingredient
	milk      *models.Ingredient
	eggs      *models.Ingredient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testsupport.NewDB(t)
	store, err := storage.NewLocalStore(t.TempDir(), "/media/")
	require.NoError(t, err)
	return &fixture{
		db:        db,
		store:     store,
		author:    testsupport.CreateUser(t, db, "author"),
		reader:    testsupport.CreateUser(t, db, "reader"),
		breakfast: testsupport.CreateTag(t, db, "Завтрак", "#E26C2D", "breakfast"),
		dinner:    testsupport.CreateTag(t, db, "Ужин", "#8775D2", "dinner"),
		flour:     testsupport.CreateIngredient(t, db, "мука", "г"),
		milk:      testsupport.CreateIngredient(t, db, "молоко", "мл"),
		eggs:      testsupport.CreateIngredient(t, db, "яйца", "шт"),
	}
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func (f *fixture) input(cookingTime int, tags []*models.Tag, items ...IngredientInput) RecipeInput {
	ids := make([]types.FlexID, len(tags))
	for i, tag := range tags {
		ids[i] = types.FlexID(tag.ID)
	}
	return RecipeInput{
		Ingredients: items,
		Tags:        ids,
		Name:        strPtr("Блины"),
		Text:        strPtr("Смешать и пожарить."),
		CookingTime: intPtr(cookingTime),
	}
}

func item(ing *models.Ingredient, amount int) IngredientInput {
	return IngredientInput{ID: types.FlexID(ing.ID), Amount: amount}
}

func fieldErrors(t *testing.T, err error) types.FieldErrors {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, types.ErrValidation), "expected validation error, got %v", err)
	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	return appErr.Fields
}

func lineItems(t *testing.T, db *gorm.DB, recipeID uint64) map[uint64]int {
	t.Helper()
	var rows []models.RecipeIngredient
	require.NoError(t, db.Where("recipe_id = ?", recipeID).Find(&rows).Error)
	out := make(map[uint64]int, len(rows))
	for _, row := range rows {
		out[row.IngredientID] = row.Amount
	}
	return out
}

func tagIDs(view RecipeView) []uint64 {
	ids := make([]uint64, len(view.Tags))
	for i, tag := range view.Tags {
		ids[i] = tag.ID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func TestCreateRecipe_StoresExactAggregate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.input(15, []*models.Tag{f.breakfast, f.dinner}, item(f.flour, 200), item(f.milk, 500))
	in.Image = types.Some(pngURI)

	view, err := CreateRecipe(ctx, f.db, f.store, f.author, in)
	require.NoError(t, err)

	assert.Equal(t, "Блины", view.Name)
	assert.Equal(t, 15, view.CookingTime)
	assert.Equal(t, f.author.ID, view.Author.ID)
	assert.False(t, view.IsFavorited)
	assert.False(t, view.IsInShoppingCart)
	require.NotNil(t, view.Image)
	assert.Contains(t, *view.Image, "/media/recipes/images/")

	assert.Equal(t, map[uint64]int{f.flour.ID: 200, f.milk.ID: 500}, lineItems(t, f.db, view.ID))
	assert.Equal(t, []uint64{f.breakfast.ID, f.dinner.ID}, tagIDs(view))

	require.Len(t, view.Ingredients, 2)
	assert.Equal(t, IngredientAmount{ID: f.flour.ID, Name: "мука", MeasurementUnit: "г", Amount: 200}, view.Ingredients[0])

	// Tags are ordered by name
	assert.Equal(t, "Завтрак", view.Tags[0].Name)

	// Write and read return the same representation
	read, err := GetRecipe(ctx, f.db, f.author, view.ID)
	require.NoError(t, err)
	assert.Equal(t, view, read)
}

func TestCreateRecipe_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tags := []*models.Tag{f.breakfast}

	tests := []struct {
		name  string
		in    RecipeInput
		field string
	}{
		{"no tags", f.input(10, nil, item(f.flour, 1)), "tags"},
		{"no ingredients", f.input(10, tags), "ingredients"},
		{"zero amount", f.input(10, tags, item(f.flour, 0)), "ingredients[0].amount"},
		{"repeated ingredient", f.input(10, tags, item(f.flour, 1), item(f.flour, 2)), "ingredients"},
		{"unknown ingredient", f.input(10, tags, IngredientInput{ID: 9999, Amount: 1}), "ingredients"},
		{"cooking time 0", f.input(0, tags, item(f.flour, 1)), "cooking_time"},
		{"cooking time 6001", f.input(6001, tags, item(f.flour, 1)), "cooking_time"},
		{"bad image", func() RecipeInput {
			in := f.input(10, tags, item(f.flour, 1))
			in.Image = types.Some("data:text/plain;base64,aGVsbG8=")
			return in
		}(), "image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateRecipe(ctx, f.db, f.store, f.author, tt.in)
			fields := fieldErrors(t, err)
			assert.Contains(t, fields, tt.field)
		})
	}

	_, err := CreateRecipe(ctx, f.db, f.store, f.author, f.input(10, nil, item(f.flour, 1)))
	assert.Equal(t, []string{"Укажите хотя бы один тег"}, fieldErrors(t, err)["tags"])

	unknownTag := f.input(10, tags, item(f.flour, 1))
	unknownTag.Tags = append(unknownTag.Tags, 4242)
	_, err = CreateRecipe(ctx, f.db, f.store, f.author, unknownTag)
	assert.Contains(t, fieldErrors(t, err), "tags")

	empty := f.input(10, tags, item(f.flour, 1))
	empty.Name = strPtr("")
	_, err = CreateRecipe(ctx, f.db, f.store, f.author, empty)
	assert.Contains(t, fieldErrors(t, err), "name")

	var count int64
	require.NoError(t, f.db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count, "failed writes must leave nothing behind")
}

func TestCreateRecipe_CookingTimeBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tags := []*models.Tag{f.breakfast}

	for _, minutes := range []int{models.MinCookingTime, models.MaxCookingTime} {
		view, err := CreateRecipe(ctx, f.db, f.store, f.author, f.input(minutes, tags, item(f.flour, 1)))
		require.NoError(t, err)
		assert.Equal(t, minutes, view.CookingTime)
	}
	for _, minutes := range []int{0, 6001} {
		_, err := CreateRecipe(ctx, f.db, f.store, f.author, f.input(minutes, tags, item(f.flour, 1)))
		assert.ErrorIs(t, err, types.ErrValidation)
	}
}

func TestCreateRecipe_TextIsOptional(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.input(10, []*models.Tag{f.breakfast}, item(f.flour, 1))
	in.Text = nil
	view, err := CreateRecipe(ctx, f.db, f.store, f.author, in)
	require.NoError(t, err)
	assert.Nil(t, view.Text)

	// A full update without text clears it
	withText, err := CreateRecipe(ctx, f.db, f.store, f.author, f.input(10, []*models.Tag{f.breakfast}, item(f.flour, 1)))
	require.NoError(t, err)
	require.NotNil(t, withText.Text)

	put := f.input(20, []*models.Tag{f.breakfast}, item(f.milk, 2))
	put.Text = nil
	updated, err := UpdateRecipe(ctx, f.db, f.store, f.author, withText.ID, put, false)
	require.NoError(t, err)
	assert.Nil(t, updated.Text)
}

func TestCreateRecipe_BlankNameRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"", "   "} {
		in := f.input(10, []*models.Tag{f.breakfast}, item(f.flour, 1))
		in.Name = strPtr(name)
		_, err := CreateRecipe(ctx, f.db, f.store, f.author, in)
		assert.Equal(t, []string{"Обязательное поле."}, fieldErrors(t, err)["name"], "name %q", name)
	}

	view, err := CreateRecipe(ctx, f.db, f.store, f.author, f.input(10, []*models.Tag{f.breakfast}, item(f.flour, 1)))
	require.NoError(t, err)
	_, err = UpdateRecipe(ctx, f.db, f.store, f.author, view.ID, RecipeInput{Name: strPtr("")}, true)
	assert.Contains(t, fieldErrors(t, err), "name")
}

func TestUpdateRecipe_ReplacesLineItemsAndTags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := CreateRecipe(ctx, f.db, f.store, f.author,
		f.input(10, []*models.Tag{f.breakfast}, item(f.flour, 1), item(f.milk, 2)))
	require.NoError(t, err)

	patch := RecipeInput{
		Ingredients: []IngredientInput{item(f.eggs, 3)},
		Tags:        []types.FlexID{types.FlexID(f.dinner.ID)},
	}
	updated, err := UpdateRecipe(ctx, f.db, f.store, f.author, view.ID, patch, true)
	require.NoError(t, err)

	assert.Equal(t, map[uint64]int{f.eggs.ID: 3}, lineItems(t, f.db, view.ID))
	assert.Equal(t, []uint64{f.dinner.ID}, tagIDs(updated))
	// Omitted fields keep their values
	assert.Equal(t, view.Name, updated.Name)
	assert.Equal(t, view.Text, updated.Text)
	assert.Equal(t, view.CookingTime, updated.CookingTime)
}

func TestUpdateRecipe_PartialScalarsKeepRelations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := CreateRecipe(ctx, f.db, f.store, f.author,
		f.input(10, []*models.Tag{f.breakfast}, item(f.flour, 1)))
	require.NoError(t, err)

	updated, err := UpdateRecipe(ctx, f.db, f.store, f.author, view.ID, RecipeInput{CookingTime: intPtr(45)}, true)
	require.NoError(t, err)
	assert.Equal(t, 45, updated.CookingTime)
	assert.Equal(t, map[uint64]int{f.flour.ID: 1}, lineItems(t, f.db, view.ID))
	assert.Equal(t, []uint64{f.breakfast.ID}, tagIDs(updated))

	// A full update requires every field
	_, err = UpdateRecipe(ctx, f.db, f.store, f.author, view.ID, RecipeInput{CookingTime: intPtr(45)}, false)
	fields := fieldErrors(t, err)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "tags")
	assert.Contains(t, fields, "ingredients")
}

func TestUpdateRecipe_ImageLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.input(10, []*models.Tag{f.breakfast}, item(f.flour, 1))
	in.Image = types.Some(pngURI)
	view, err := CreateRecipe(ctx, f.db, f.store, f.author, in)
	require.NoError(t, err)
	oldImage := *view.Image

	updated, err := UpdateRecipe(ctx, f.db, f.store, f.author, view.ID, RecipeInput{Image: types.Some(pngURI)}, true)
	require.NoError(t, err)
	require.NotNil(t, updated.Image)
	assert.NotEqual(t, oldImage, *updated.Image)
	assert.NoFileExists(t, f.imagePath(oldImage))
	assert.FileExists(t, f.imagePath(*updated.Image))

	cleared, err := UpdateRecipe(ctx, f.db, f.store, f.author, view.ID, RecipeInput{Image: types.OptionalString{Set: true}}, true)
	require.NoError(t, err)
	assert.Nil(t, cleared.Image)
	assert.NoFileExists(t, f.imagePath(*updated.Image))
}

func (f *fixture) imagePath(url string) string {
	return f.store.Root + "/" + url[len(f.store.BaseURL):]
}

func TestUpdateAndDeleteRecipe_AuthorOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := CreateRecipe(ctx, f.db, f.store, f.author,
		f.input(10, []*models.Tag{f.breakfast}, item(f.flour, 1)))
	require.NoError(t, err)

	_, err = UpdateRecipe(ctx, f.db, f.store, f.reader, view.ID, RecipeInput{Name: strPtr("чужой")}, true)
	assert.ErrorIs(t, err, types.ErrForbidden)

	err = DeleteRecipe(ctx, f.db, f.store, f.reader, view.ID)
	assert.ErrorIs(t, err, types.ErrForbidden)

	_, err = UpdateRecipe(ctx, f.db, f.store, f.author, 9999, RecipeInput{}, true)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDeleteRecipe_RemovesOwnedRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := CreateRecipe(ctx, f.db, f.store, f.author,
		f.input(10, []*models.Tag{f.breakfast, f.dinner}, item(f.flour, 1), item(f.milk, 1)))
	require.NoError(t, err)
	_, err = Favorites.Add(ctx, f.db, f.reader, view.ID)
	require.NoError(t, err)
	_, err = ShoppingCart.Add(ctx, f.db, f.reader, view.ID)
	require.NoError(t, err)

	require.NoError(t, DeleteRecipe(ctx, f.db, f.store, f.author, view.ID))

	for _, table := range []string{"recipes", "recipes_ingredients", "recipes_tags", "recipes_favorited", "recipes_in_shopping_cart"} {
		var n int64
		require.NoError(t, f.db.Table(table).Count(&n).Error)
		assert.Zero(t, n, table)
	}
	// Reference data is shared and stays
	var tags int64
	require.NoError(t, f.db.Model(&models.Tag{}).Count(&tags).Error)
	assert.EqualValues(t, 2, tags)

	_, err = GetRecipe(ctx, f.db, nil, view.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestGetRecipe_ViewerFlags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	recipe := testsupport.CreateRecipe(t, f.db, f.author, "Омлет", []*models.Tag{f.breakfast}, testsupport.Item{Ingredient: f.eggs, Amount: 2})
	_, err := Favorites.Add(ctx, f.db, f.reader, recipe.ID)
	require.NoError(t, err)
	_, err = ShoppingCart.Add(ctx, f.db, f.reader, recipe.ID)
	require.NoError(t, err)
	_, err = Subscribe(ctx, f.db, f.reader, f.author.ID, DefaultRecipesLimit)
	require.NoError(t, err)

	view, err := GetRecipe(ctx, f.db, f.reader, recipe.ID)
	require.NoError(t, err)
	assert.True(t, view.IsFavorited)
	assert.True(t, view.IsInShoppingCart)
	assert.True(t, view.Author.IsSubscribed)

	anonymous, err := GetRecipe(ctx, f.db, nil, recipe.ID)
	require.NoError(t, err)
	assert.False(t, anonymous.IsFavorited)
	assert.False(t, anonymous.IsInShoppingCart)
	assert.False(t, anonymous.Author.IsSubscribed)

	other, err := GetRecipe(ctx, f.db, f.author, recipe.ID)
	require.NoError(t, err)
	assert.False(t, other.IsFavorited)
	assert.False(t, other.IsInShoppingCart)
}
