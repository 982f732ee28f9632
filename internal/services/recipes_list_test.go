package services

import (
	"context"
	"testing"

	"github.com/VtlBz/foodgram-project/internal/models"
	"github.com/VtlBz/foodgram-project/internal/testsupport"
	"github.com/VtlBz/foodgram-project/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recipeNames(views []RecipeView) []string {
	out := make([]string, len(views))
	for i := range views {
		out[i] = views[i].Name
	}
	return out
}

type listFixture struct {
	*fixture
	pancakes *models.Recipe
	omelette *models.Recipe
	stew     *models.Recipe
}

func newListFixture(t *testing.T) *listFixture {
	f := newFixture(t)
	return &listFixture{
		fixture:  f,
		pancakes: testsupport.CreateRecipe(t, f.db, f.author, "Блины", []*models.Tag{f.breakfast}, testsupport.Item{Ingredient: f.flour, Amount: 200}),
		omelette: testsupport.CreateRecipe(t, f.db, f.reader, "Омлет", []*models.Tag{f.breakfast, f.dinner}, testsupport.Item{Ingredient: f.eggs, Amount: 3}),
		stew:     testsupport.CreateRecipe(t, f.db, f.author, "Рагу", []*models.Tag{f.dinner}),
	}
}

func TestListRecipes_NewestFirstAndPaged(t *testing.T) {
	f := newListFixture(t)
	ctx := context.Background()

	page, err := ListRecipes(ctx, f.db, nil, RecipeFilter{}, NewPage(1, 2, 6))
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Count)
	assert.Equal(t, []string{"Рагу", "Омлет"}, recipeNames(page.Items))
	assert.True(t, page.HasNext(NewPage(1, 2, 6)))

	page, err = ListRecipes(ctx, f.db, nil, RecipeFilter{}, NewPage(2, 2, 6))
	require.NoError(t, err)
	assert.Equal(t, []string{"Блины"}, recipeNames(page.Items))
	assert.False(t, page.HasNext(NewPage(2, 2, 6)))

	// Relations are loaded for every item
	pancakes := page.Items[0]
	assert.Equal(t, "author", pancakes.Author.Username)
	require.Len(t, pancakes.Ingredients, 1)
	assert.Equal(t, IngredientAmount{ID: f.flour.ID, Name: "мука", MeasurementUnit: "г", Amount: 200}, pancakes.Ingredients[0])
	require.Len(t, pancakes.Tags, 1)
	assert.Equal(t, "breakfast", pancakes.Tags[0].Slug)

	empty, err := ListRecipes(ctx, f.db, nil, RecipeFilter{}, NewPage(5, 2, 6))
	require.NoError(t, err)
	assert.EqualValues(t, 3, empty.Count)
	assert.Empty(t, empty.Items)
}

func TestListRecipes_Filters(t *testing.T) {
	f := newListFixture(t)
	ctx := context.Background()

	list := func(viewer *models.User, filter RecipeFilter) []string {
		t.Helper()
		page, err := ListRecipes(ctx, f.db, viewer, filter, NewPage(1, 10, 6))
		require.NoError(t, err)
		return recipeNames(page.Items)
	}

	assert.Equal(t, []string{"Рагу", "Блины"}, list(nil, RecipeFilter{AuthorID: f.author.ID}))
	assert.Equal(t, []string{"Омлет", "Блины"}, list(nil, RecipeFilter{TagSlugs: []string{"breakfast"}}))
	// Any of the tags matches, each recipe once
	assert.Equal(t, []string{"Рагу", "Омлет", "Блины"}, list(nil, RecipeFilter{TagSlugs: []string{"breakfast", "dinner"}}))
	assert.Equal(t, []string{"Омлет"}, list(nil, RecipeFilter{AuthorID: f.reader.ID, TagSlugs: []string{"breakfast", "dinner"}}))

	_, err := Favorites.Add(ctx, f.db, f.reader, f.pancakes.ID)
	require.NoError(t, err)
	_, err = ShoppingCart.Add(ctx, f.db, f.reader, f.stew.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"Блины"}, list(f.reader, RecipeFilter{IsFavorited: true}))
	assert.Equal(t, []string{"Рагу"}, list(f.reader, RecipeFilter{InShoppingCart: true}))
	assert.Empty(t, list(f.reader, RecipeFilter{IsFavorited: true, InShoppingCart: true}))
	assert.Empty(t, list(f.author, RecipeFilter{IsFavorited: true}))

	// Anonymous viewers ignore membership filters
	assert.Len(t, list(nil, RecipeFilter{IsFavorited: true, InShoppingCart: true}), 3)
}

func TestListRecipes_UnknownFilterValues(t *testing.T) {
	f := newListFixture(t)
	ctx := context.Background()

	_, err := ListRecipes(ctx, f.db, nil, RecipeFilter{AuthorID: 9999}, NewPage(1, 10, 6))
	assert.Equal(t, []string{"Выберите корректный вариант. 9999 нет среди допустимых значений."}, fieldErrors(t, err)["author"])

	_, err = ListRecipes(ctx, f.db, nil, RecipeFilter{TagSlugs: []string{"breakfast", "brunch"}}, NewPage(1, 10, 6))
	assert.Equal(t, []string{"Выберите корректный вариант. brunch нет среди допустимых значений."}, fieldErrors(t, err)["tags"])
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestListRecipes_ViewerFlags(t *testing.T) {
	f := newListFixture(t)
	ctx := context.Background()

	_, err := Subscribe(ctx, f.db, f.reader, f.author.ID, 0)
	require.NoError(t, err)
	_, err = Favorites.Add(ctx, f.db, f.reader, f.stew.ID)
	require.NoError(t, err)

	page, err := ListRecipes(ctx, f.db, f.reader, RecipeFilter{}, NewPage(1, 10, 6))
	require.NoError(t, err)
	byName := map[string]RecipeView{}
	for _, view := range page.Items {
		byName[view.Name] = view
	}
	assert.True(t, byName["Рагу"].IsFavorited)
	assert.True(t, byName["Рагу"].Author.IsSubscribed)
	assert.False(t, byName["Блины"].IsFavorited)
	assert.True(t, byName["Блины"].Author.IsSubscribed)
	assert.False(t, byName["Омлет"].Author.IsSubscribed)

	anonymous, err := ListRecipes(ctx, f.db, nil, RecipeFilter{}, NewPage(1, 10, 6))
	require.NoError(t, err)
	for _, view := range anonymous.Items {
		assert.False(t, view.IsFavorited)
		assert.False(t, view.IsInShoppingCart)
		assert.False(t, view.Author.IsSubscribed)
	}
}
