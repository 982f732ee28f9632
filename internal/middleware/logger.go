package middleware

import (
	"time"

	"github.com/VtlBz/foodgram-project/internal/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one structured entry per request.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// The error handler has not run yet
			status, _ = utils.StatusFor(err)
		}

		fields := logrus.Fields{
			"status_code": status,
			"latency":     time.Since(start),
			"client_ip":   c.IP(),
			"method":      c.Method(),
			"path":        c.Path(),
		}
		if user := CurrentUser(c); user != nil {
			fields["user_id"] = user.ID
		}
		if err != nil {
			fields["error"] = err.Error()
		}
		logrus.WithFields(fields).Info("HTTP Request")
		return err
	}
}
