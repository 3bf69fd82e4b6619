package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/inkwell-io/blog-service/internal/api/http/handlers"
	"github.com/inkwell-io/blog-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Posts          *handlers.PostsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Browsing is public; every mutation
// goes through the authentication gate, and ownership checks live in the
// services behind it.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	users := api.Group("/users")
	users.Post("/register", cfg.Users.Register)
	users.Post("/login", cfg.Users.Login)
	users.Get("/", cfg.Users.ListAuthors)
	users.Post("/change-avatar", cfg.AuthMiddleware.Handle, cfg.Users.ChangeAvatar)
	users.Patch("/edit-user", cfg.AuthMiddleware.Handle, cfg.Users.EditUser)
	users.Get("/:id", cfg.Users.GetUser)

	posts := api.Group("/posts")
	posts.Post("/", cfg.AuthMiddleware.Handle, cfg.Posts.Create)
	posts.Get("/", cfg.Posts.List)
	posts.Get("/categories/:category", cfg.Posts.ListByCategory)
	posts.Get("/users/:id", cfg.Posts.ListByAuthor)
	posts.Get("/:id/summary", cfg.Posts.Summary)
	posts.Post("/:id/rate", cfg.AuthMiddleware.Handle, cfg.Posts.Rate)
	posts.Patch("/:id", cfg.AuthMiddleware.Handle, cfg.Posts.Update)
	posts.Delete("/:id", cfg.AuthMiddleware.Handle, cfg.Posts.Delete)
	posts.Get("/:id", cfg.Posts.Get)
}
