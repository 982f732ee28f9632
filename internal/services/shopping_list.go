package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/VtlBz/foodgram-project/internal/models"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// ShoppingItem is the summed amount of one (ingredient name, unit) group.
type ShoppingItem struct {
	Name            string
	MeasurementUnit string
	Amount          int64
}

// ShoppingList sums the line items of every recipe in the cart of user,
// grouped by ingredient name and unit, sorted by name then unit.
func ShoppingList(ctx context.Context, db *gorm.DB, user *models.User) ([]ShoppingItem, error) {
	items := []ShoppingItem{}
	err := db.WithContext(ctx).
		Table("recipes_ingredients").
		Clauses(hints.Comment("select", "shopping_list")).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipes_ingredients.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipes_ingredients.ingredient_id").
		Joins("JOIN recipes_in_shopping_cart ON recipes_in_shopping_cart.recipe_id = recipes_ingredients.recipe_id").
		Where("recipes_in_shopping_cart.user_id = ?", user.ID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").Order("ingredients.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}

	// Collations differ between databases
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].MeasurementUnit < items[j].MeasurementUnit
	})
	return items, nil
}

// RenderShoppingList formats the report: a header naming the user and the
// date, a blank line, then "{name}: {amount} {unit}" per item. An empty
// list renders the header only.
func RenderShoppingList(username string, date time.Time, items []ShoppingItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Список покупок для %s на %s", username, date.Format("02/01/06"))
	if len(items) == 0 {
		return b.String()
	}
	b.WriteString("\n")
	for _, item := range items {
		fmt.Fprintf(&b, "\n%s: %d %s", item.Name, item.Amount, item.MeasurementUnit)
	}
	return b.String()
}

// ShoppingListFilename is the attachment name of the report of username.
func ShoppingListFilename(username string) string {
	return username + "_shopping_cart.txt"
}
