package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/VtlBz/foodgram-project/internal/middleware"
	"github.com/VtlBz/foodgram-project/internal/services"
	"github.com/VtlBz/foodgram-project/internal/types"
	"github.com/VtlBz/foodgram-project/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// RecipeHandler handles recipe, favorite and shopping cart routes
type RecipeHandler struct {
	Deps
}

// List handles GET /api/recipes/
// @Summary List recipes, newest first
// @Tags Recipes
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param author query int false "Author ID"
// @Param tags query []string false "Tag slugs, any of" collectionFormat(multi)
// @Param is_favorited query int false "1 to list favorites only"
// @Param is_in_shopping_cart query int false "1 to list the cart only"
// @Success 200 {object} utils.Paginated
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /recipes/ [get]
func (h *RecipeHandler) List(c *fiber.Ctx) error {
	page, err := parsePage(c, h.pageSize())
	if err != nil {
		return err
	}

	filter := services.RecipeFilter{
		TagSlugs:       parseTags(c),
		IsFavorited:    parseFlag(c, "is_favorited"),
		InShoppingCart: parseFlag(c, "is_in_shopping_cart"),
	}
	if raw := c.Query("author"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return types.FieldError("author", fmt.Sprintf("Выберите корректный вариант. %s нет среди допустимых значений.", raw))
		}
		filter.AuthorID = id
	}

	result, err := services.ListRecipes(c.UserContext(), h.DB, middleware.CurrentUser(c), filter, page)
	if err != nil {
		return err
	}
	return paginated(c, page, result)
}

// Get handles GET /api/recipes/:id/
// @Summary Get a recipe
// @Tags Recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} services.RecipeView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /recipes/{id}/ [get]
func (h *RecipeHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	view, err := services.GetRecipe(c.UserContext(), h.DB, middleware.CurrentUser(c), id)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// Create handles POST /api/recipes/
// @Summary Create a recipe
// @Tags Recipes
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param recipe body services.RecipeInput true "Recipe"
// @Success 201 {object} services.RecipeView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /recipes/ [post]
func (h *RecipeHandler) Create(c *fiber.Ctx) error {
	var in services.RecipeInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	view, err := services.CreateRecipe(c.UserContext(), h.DB, h.Store, middleware.CurrentUser(c), in)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, view, fiber.StatusCreated)
}

// Update handles PUT and PATCH /api/recipes/:id/. PUT requires every field,
// PATCH only the ones sent.
// @Summary Update a recipe
// @Tags Recipes
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Param recipe body services.RecipeInput true "Recipe"
// @Success 200 {object} services.RecipeView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /recipes/{id}/ [patch]
func (h *RecipeHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in services.RecipeInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	partial := c.Method() == fiber.MethodPatch
	view, err := services.UpdateRecipe(c.UserContext(), h.DB, h.Store, middleware.CurrentUser(c), id, in, partial)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// Delete handles DELETE /api/recipes/:id/
// @Summary Delete a recipe
// @Tags Recipes
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /recipes/{id}/ [delete]
func (h *RecipeHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := services.DeleteRecipe(c.UserContext(), h.DB, h.Store, middleware.CurrentUser(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddTo returns the POST handler of /api/recipes/:id/favorite/ or
// /api/recipes/:id/shopping_cart/ depending on set.
// @Summary Add a recipe to favorites or the shopping cart
// @Tags Recipes
// @Produce json
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 201 {object} services.RecipeShort
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /recipes/{id}/favorite/ [post]
// @Router /recipes/{id}/shopping_cart/ [post]
func (h *RecipeHandler) AddTo(set services.MembershipSet) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		short, err := set.Add(c.UserContext(), h.DB, middleware.CurrentUser(c), id)
		if err != nil {
			return err
		}
		return utils.SuccessResponse(c, short, fiber.StatusCreated)
	}
}

// RemoveFrom returns the DELETE handler matching AddTo.
// @Summary Remove a recipe from favorites or the shopping cart
// @Tags Recipes
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /recipes/{id}/favorite/ [delete]
// @Router /recipes/{id}/shopping_cart/ [delete]
func (h *RecipeHandler) RemoveFrom(set services.MembershipSet) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		if err := set.Remove(c.UserContext(), h.DB, middleware.CurrentUser(c), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DownloadShoppingCart handles GET /api/recipes/download_shopping_cart/
// @Summary Download the shopping list
// @Tags Recipes
// @Produce plain
// @Security TokenAuth
// @Success 200 {string} string "Shopping list"
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /recipes/download_shopping_cart/ [get]
func (h *RecipeHandler) DownloadShoppingCart(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	items, err := services.ShoppingList(c.UserContext(), h.DB, user)
	if err != nil {
		return err
	}
	c.Attachment(services.ShoppingListFilename(user.Username))
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	return c.SendString(services.RenderShoppingList(user.Username, time.Now(), items))
}
