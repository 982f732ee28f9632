package handlers

import (
	"github.com/VtlBz/foodgram-project/internal/services"
	"github.com/gofiber/fiber/v2"
)

// CatalogHandler handles the read-only tag and ingredient routes
type CatalogHandler struct {
	Deps
}

// ListTags handles GET /api/tags/
// @Summary List tags
// @Tags Catalog
// @Produce json
// @Success 200 {array} models.Tag
// @Router /tags/ [get]
func (h *CatalogHandler) ListTags(c *fiber.Ctx) error {
	tags, err := services.ListTags(c.UserContext(), h.DB)
	if err != nil {
		return err
	}
	return c.JSON(tags)
}

// GetTag handles GET /api/tags/:id/
// @Summary Get a tag
// @Tags Catalog
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} models.Tag
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /tags/{id}/ [get]
func (h *CatalogHandler) GetTag(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	tag, err := services.GetTag(c.UserContext(), h.DB, id)
	if err != nil {
		return err
	}
	return c.JSON(tag)
}

// ListIngredients handles GET /api/ingredients/?name=
// @Summary Search ingredients by name prefix
// @Tags Catalog
// @Produce json
// @Param name query string false "Case-insensitive name prefix"
// @Success 200 {array} models.Ingredient
// @Router /ingredients/ [get]
func (h *CatalogHandler) ListIngredients(c *fiber.Ctx) error {
	ingredients, err := services.ListIngredients(c.UserContext(), h.DB, c.Query("name"))
	if err != nil {
		return err
	}
	return c.JSON(ingredients)
}

// GetIngredient handles GET /api/ingredients/:id/
// @Summary Get an ingredient
// @Tags Catalog
// @Produce json
// @Param id path int true "Ingredient ID"
// @Success 200 {object} models.Ingredient
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /ingredients/{id}/ [get]
func (h *CatalogHandler) GetIngredient(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ingredient, err := services.GetIngredient(c.UserContext(), h.DB, id)
	if err != nil {
		return err
	}
	return c.JSON(ingredient)
}
