package handlers

import (
	"github.com/VtlBz/foodgram-project/internal/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ErrorHandler renders every error returned by a handler or middleware.
// Errors without a known kind are logged and answered with 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, _ := utils.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
			"error":  err,
		}).Error("Request failed")
	}
	return utils.ErrorResponse(c, err)
}

// NotFound answers requests no route matched.
func NotFound(c *fiber.Ctx) error {
	return utils.NotFoundResponse(c, "[404] Resource Not Found")
}
