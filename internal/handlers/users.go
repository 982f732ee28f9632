package handlers

import (
	"github.com/VtlBz/foodgram-project/internal/middleware"
	"github.com/VtlBz/foodgram-project/internal/services"
	"github.com/VtlBz/foodgram-project/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user, password and subscription routes
type UserHandler struct {
	Deps
}

// List handles GET /api/users/
// @Summary List users
// @Tags Users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} utils.Paginated
// @Router /users/ [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	page, err := parsePage(c, h.pageSize())
	if err != nil {
		return err
	}
	result, err := services.ListUsers(c.UserContext(), h.DB, middleware.CurrentUser(c), page)
	if err != nil {
		return err
	}
	return paginated(c, page, result)
}

// Register handles POST /api/users/
// @Summary Register a user
// @Tags Users
// @Accept json
// @Produce json
// @Param user body services.RegisterInput true "New user"
// @Success 201 {object} services.UserCreated
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /users/ [post]
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	created, err := services.Register(c.UserContext(), h.DB, in)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, created, fiber.StatusCreated)
}

// Get handles GET /api/users/:id/
// @Summary Get a user profile
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} services.UserProfile
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{id}/ [get]
func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	profile, err := services.GetProfile(c.UserContext(), h.DB, middleware.CurrentUser(c), id)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// Me handles GET /api/users/me/
// @Summary Current user profile
// @Tags Users
// @Produce json
// @Security TokenAuth
// @Success 200 {object} services.UserProfile
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /users/me/ [get]
func (h *UserHandler) Me(c *fiber.Ctx) error {
	return c.JSON(services.Me(middleware.CurrentUser(c)))
}

// SetPassword handles POST /api/users/set_password/
// @Summary Change the password
// @Tags Users
// @Accept json
// @Security TokenAuth
// @Param body body services.SetPasswordInput true "Passwords"
// @Success 204
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /users/set_password/ [post]
func (h *UserHandler) SetPassword(c *fiber.Ctx) error {
	var in services.SetPasswordInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if err := services.SetPassword(c.UserContext(), h.DB, middleware.CurrentUser(c), in); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Subscriptions handles GET /api/users/subscriptions/
// @Summary Authors the current user follows
// @Tags Users
// @Produce json
// @Security TokenAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param recipes_limit query int false "Recipes per author"
// @Success 200 {object} utils.Paginated
// @Router /users/subscriptions/ [get]
func (h *UserHandler) Subscriptions(c *fiber.Ctx) error {
	page, err := parsePage(c, h.pageSize())
	if err != nil {
		return err
	}
	limit := services.ParseRecipesLimit(c.Query("recipes_limit"), h.recipesLimit())
	result, err := services.Subscriptions(c.UserContext(), h.DB, middleware.CurrentUser(c), page, limit)
	if err != nil {
		return err
	}
	return paginated(c, page, result)
}

// Subscribe handles POST /api/users/:id/subscribe/
// @Summary Follow an author
// @Tags Users
// @Produce json
// @Security TokenAuth
// @Param id path int true "Author ID"
// @Param recipes_limit query int false "Recipes in the preview"
// @Success 201 {object} services.SubscriptionView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{id}/subscribe/ [post]
func (h *UserHandler) Subscribe(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	limit := services.ParseRecipesLimit(c.Query("recipes_limit"), h.recipesLimit())
	entry, err := services.Subscribe(c.UserContext(), h.DB, middleware.CurrentUser(c), id, limit)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, entry, fiber.StatusCreated)
}

// Unsubscribe handles DELETE /api/users/:id/subscribe/
// @Summary Unfollow an author
// @Tags Users
// @Security TokenAuth
// @Param id path int true "Author ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{id}/subscribe/ [delete]
func (h *UserHandler) Unsubscribe(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := services.Unsubscribe(c.UserContext(), h.DB, middleware.CurrentUser(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
