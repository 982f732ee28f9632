package services

import (
	"context"
	"testing"
	"time"

	"github.com/VtlBz/foodgram-project/internal/models"
	"github.com/VtlBz/foodgram-project/internal/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShoppingList_SumsByNameAndUnit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pancakes := testsupport.CreateRecipe(t, f.db, f.author, "Блины", []*models.Tag{f.breakfast},
		testsupport.Item{Ingredient: f.flour, Amount: 200},
		testsupport.Item{Ingredient: f.milk, Amount: 500})
	bread := testsupport.CreateRecipe(t, f.db, f.author, "Хлеб", nil,
		testsupport.Item{Ingredient: f.flour, Amount: 100},
		testsupport.Item{Ingredient: f.eggs, Amount: 2})
	// Same name, different unit: a separate line
	flourCups := testsupport.CreateIngredient(t, f.db, "мука", "стакан")
	cake := testsupport.CreateRecipe(t, f.db, f.author, "Пирог", nil,
		testsupport.Item{Ingredient: flourCups, Amount: 1})
	testsupport.CreateRecipe(t, f.db, f.author, "Не в корзине", nil,
		testsupport.Item{Ingredient: f.flour, Amount: 999})

	for _, recipe := range []*models.Recipe{pancakes, bread, cake} {
		_, err := ShoppingCart.Add(ctx, f.db, f.reader, recipe.ID)
		require.NoError(t, err)
	}
	// Favorites do not count
	_, err := Favorites.Add(ctx, f.db, f.reader, pancakes.ID)
	require.NoError(t, err)

	items, err := ShoppingList(ctx, f.db, f.reader)
	require.NoError(t, err)
	assert.Equal(t, []ShoppingItem{
		{Name: "молоко", MeasurementUnit: "мл", Amount: 500},
		{Name: "мука", MeasurementUnit: "г", Amount: 300},
		{Name: "мука", MeasurementUnit: "стакан", Amount: 1},
		{Name: "яйца", MeasurementUnit: "шт", Amount: 2},
	}, items)

	date := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)
	assert.Equal(t,
		"Список покупок для reader на 05/03/24\n"+
			"\nмолоко: 500 мл"+
			"\nмука: 300 г"+
			"\nмука: 1 стакан"+
			"\nяйца: 2 шт",
		RenderShoppingList(f.reader.Username, date, items))
}

func TestShoppingList_Empty(t *testing.T) {
	f := newFixture(t)

	items, err := ShoppingList(context.Background(), f.db, f.reader)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	date := time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Список покупок для reader на 31/12/23", RenderShoppingList("reader", date, items))
}

func TestShoppingList_PerUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	recipe := testsupport.CreateRecipe(t, f.db, f.author, "Омлет", nil,
		testsupport.Item{Ingredient: f.eggs, Amount: 3})

	_, err := ShoppingCart.Add(ctx, f.db, f.author, recipe.ID)
	require.NoError(t, err)

	mine, err := ShoppingList(ctx, f.db, f.author)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := ShoppingList(ctx, f.db, f.reader)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestShoppingListFilename(t *testing.T) {
	assert.Equal(t, "reader_shopping_cart.txt", ShoppingListFilename("reader"))
}
