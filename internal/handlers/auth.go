package handlers

import (
	"github.com/VtlBz/foodgram-project/internal/middleware"
	"github.com/VtlBz/foodgram-project/internal/services"
	"github.com/VtlBz/foodgram-project/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles token login and logout
type AuthHandler struct {
	Deps
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/token/login/
// @Summary Obtain a token
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginInput true "Email and password"
// @Success 200 {object} utils.TokenResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /auth/token/login/ [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in LoginInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	token, err := services.Login(c.UserContext(), h.DB, h.Tokens, in.Email, in.Password)
	if err != nil {
		return err
	}
	return c.JSON(utils.TokenResponse{AuthToken: token})
}

// Logout handles POST /api/auth/token/logout/
// @Summary Revoke the current token
// @Tags Auth
// @Security TokenAuth
// @Success 204
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/token/logout/ [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := services.Logout(c.UserContext(), h.DB, middleware.CurrentToken(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
