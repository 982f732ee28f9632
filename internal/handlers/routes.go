package handlers

import (
	"github.com/VtlBz/foodgram-project/internal/middleware"
	"github.com/VtlBz/foodgram-project/internal/services"
	"github.com/gofiber/fiber/v2"
)

// Register mounts every API route on router. Token authentication runs on
// all of them; routes that need a user add RequireUser.
func Register(router fiber.Router, d Deps) {
	users := &UserHandler{Deps: d}
	auth := &AuthHandler{Deps: d}
	catalog := &CatalogHandler{Deps: d}
	recipes := &RecipeHandler{Deps: d}
	health := &HealthHandler{Deps: d}

	router.Get("/health", health.Check)

	api := router.Group("", middleware.Authenticate(d.DB, d.Tokens))
	requireUser := middleware.RequireUser()

	api.Post("/auth/token/login", auth.Login)
	api.Post("/auth/token/logout", requireUser, auth.Logout)

	// Fixed paths before /users/:id
	api.Get("/users", users.List)
	api.Post("/users", users.Register)
	api.Get("/users/me", requireUser, users.Me)
	api.Post("/users/set_password", requireUser, users.SetPassword)
	api.Get("/users/subscriptions", requireUser, users.Subscriptions)
	api.Get("/users/:id", users.Get)
	api.Post("/users/:id/subscribe", requireUser, users.Subscribe)
	api.Delete("/users/:id/subscribe", requireUser, users.Unsubscribe)

	api.Get("/tags", catalog.ListTags)
	api.Get("/tags/:id", catalog.GetTag)
	api.Get("/ingredients", catalog.ListIngredients)
	api.Get("/ingredients/:id", catalog.GetIngredient)

	api.Get("/recipes", recipes.List)
	api.Post("/recipes", requireUser, recipes.Create)
	api.Get("/recipes/download_shopping_cart", requireUser, recipes.DownloadShoppingCart)
	api.Get("/recipes/:id", recipes.Get)
	api.Put("/recipes/:id", requireUser, recipes.Update)
	api.Patch("/recipes/:id", requireUser, recipes.Update)
	api.Delete("/recipes/:id", requireUser, recipes.Delete)
	api.Post("/recipes/:id/favorite", requireUser, recipes.AddTo(services.Favorites))
	api.Delete("/recipes/:id/favorite", requireUser, recipes.RemoveFrom(services.Favorites))
	api.Post("/recipes/:id/shopping_cart", requireUser, recipes.AddTo(services.ShoppingCart))
	api.Delete("/recipes/:id/shopping_cart", requireUser, recipes.RemoveFrom(services.ShoppingCart))
}

// NewApp creates a Fiber app with the API mounted under /api. Trailing
// slashes are optional. Each setup func runs before the API routes are
// mounted; unmatched paths get a JSON 404.
func NewApp(d Deps, setup ...func(app *fiber.App)) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:  ErrorHandler,
		StrictRouting: false,
		AppName:       "foodgram",
	})
	for _, fn := range setup {
		fn(app)
	}
	Register(app.Group("/api"), d)
	app.Use(NotFound)
	return app
}
