package handlers

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/inkwell-io/blog-service/internal/api/dto"
	"github.com/inkwell-io/blog-service/internal/auth"
	"github.com/inkwell-io/blog-service/internal/service"
	apperrors "github.com/inkwell-io/blog-service/pkg/util"
)

// UsersHandler exposes registration, login and profile endpoints.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Register handles POST /api/users/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.auth.Register(c.Context(), service.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.Password2,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"user": user.PublicProfile()},
	})
}

// Login handles POST /api/users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": fiber.Map{
				"id":   result.User.ID,
				"name": result.User.Name,
			},
			"auth": dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
		},
	})
}

// GetUser handles GET /api/users/:id.
func (h *UsersHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.auth.GetUser(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user": user.PublicProfile()}})
}

// ListAuthors handles GET /api/users.
func (h *UsersHandler) ListAuthors(c *fiber.Ctx) error {
	users, err := h.auth.ListAuthors(c.Context())
	if err != nil {
		return err
	}

	authors := make([]any, 0, len(users))
	for _, user := range users {
		authors = append(authors, user.PublicProfile())
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"authors": authors}})
}

// ChangeAvatar handles POST /api/users/change-avatar.
func (h *UsersHandler) ChangeAvatar(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return apperrors.NewValidationError("choose an image", nil)
	}
	upload, closer, err := uploadFromFileHeader(fileHeader)
	if err != nil {
		return err
	}
	defer closer.Close()

	user, err := h.auth.ChangeAvatar(c.Context(), principal.SubjectID, upload)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user": user.PublicProfile()}})
}

// EditUser handles PATCH /api/users/edit-user.
func (h *UsersHandler) EditUser(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.auth.UpdateProfile(c.Context(), principal.SubjectID, service.ProfileUpdateInput{
		Name:               req.Name,
		Email:              req.Email,
		CurrentPassword:    req.CurrentPassword,
		NewPassword:        req.NewPassword,
		NewPasswordConfirm: req.NewPassword2,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user": user.PublicProfile()}})
}

func uploadFromFileHeader(fh *multipart.FileHeader) (*service.Upload, io.Closer, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &service.Upload{Name: fh.Filename, Size: fh.Size, Reader: f}, f, nil
}
