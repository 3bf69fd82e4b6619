package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/inkwell-io/blog-service/internal/api/dto"
	"github.com/inkwell-io/blog-service/internal/auth"
	"github.com/inkwell-io/blog-service/internal/service"
	apperrors "github.com/inkwell-io/blog-service/pkg/util"
)

// PostsHandler exposes post CRUD, listing, rating and summary endpoints.
type PostsHandler struct {
	posts *service.PostService
}

// NewPostsHandler constructs handler.
func NewPostsHandler(postService *service.PostService) *PostsHandler {
	return &PostsHandler{posts: postService}
}

// Create handles POST /api/posts (multipart with a thumbnail file).
func (h *PostsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	input := parsePostInput(c)

	fileHeader, err := c.FormFile("thumbnail")
	if err != nil {
		return apperrors.NewValidationError("fill in all fields and choose a thumbnail", nil)
	}
	upload, closer, err := uploadFromFileHeader(fileHeader)
	if err != nil {
		return err
	}
	defer closer.Close()

	post, err := h.posts.Create(c.Context(), principal.SubjectID, input, upload)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"post": dto.NewPostResponse(*post)},
	})
}

// List handles GET /api/posts.
func (h *PostsHandler) List(c *fiber.Ctx) error {
	posts, err := h.posts.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"posts": dto.NewPostListResponse(posts)}})
}

// Get handles GET /api/posts/:id.
func (h *PostsHandler) Get(c *fiber.Ctx) error {
	post, err := h.posts.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"post": dto.NewPostResponse(*post)}})
}

// Summary handles GET /api/posts/:id/summary.
func (h *PostsHandler) Summary(c *fiber.Ctx) error {
	sum, err := h.posts.Summary(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"summary": sum}})
}

// ListByCategory handles GET /api/posts/categories/:category.
// Category names may contain spaces, so the segment is path-unescaped.
func (h *PostsHandler) ListByCategory(c *fiber.Ctx) error {
	category, err := url.PathUnescape(c.Params("category"))
	if err != nil {
		category = c.Params("category")
	}
	posts, err := h.posts.ListByCategory(c.Context(), category)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"posts": dto.NewPostListResponse(posts)}})
}

// ListByAuthor handles GET /api/posts/users/:id.
func (h *PostsHandler) ListByAuthor(c *fiber.Ctx) error {
	posts, err := h.posts.ListByAuthor(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"posts": dto.NewPostListResponse(posts)}})
}

// Update handles PATCH /api/posts/:id. The thumbnail is optional; without
// one the request may be plain JSON.
func (h *PostsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	input := parsePostInput(c)

	var upload *service.Upload
	if fileHeader, err := c.FormFile("thumbnail"); err == nil {
		u, closer, err := uploadFromFileHeader(fileHeader)
		if err != nil {
			return err
		}
		defer closer.Close()
		upload = u
	}

	post, err := h.posts.Update(c.Context(), principal, c.Params("id"), input, upload)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"post": dto.NewPostResponse(*post)}})
}

// Delete handles DELETE /api/posts/:id.
func (h *PostsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	if err := h.posts.Delete(c.Context(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": c.Params("id")}})
}

// Rate handles POST /api/posts/:id/rate.
func (h *PostsHandler) Rate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	var req dto.RateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	post, err := h.posts.Rate(c.Context(), principal, c.Params("id"), req.Rating)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"post": dto.NewPostResponse(*post)}})
}

// parsePostInput accepts JSON bodies and multipart/urlencoded form fields.
func parsePostInput(c *fiber.Ctx) service.PostInput {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		var req dto.PostRequest
		if err := c.BodyParser(&req); err == nil {
			return service.PostInput{
				Title:       req.Title,
				Category:    req.Category,
				Description: req.Description,
			}
		}
	}
	return service.PostInput{
		Title:       c.FormValue("title"),
		Category:    c.FormValue("category"),
		Description: c.FormValue("description"),
	}
}
