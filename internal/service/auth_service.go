package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/inkwell-io/blog-service/internal/auth"
	"github.com/inkwell-io/blog-service/internal/config"
	"github.com/inkwell-io/blog-service/internal/domain"
	"github.com/inkwell-io/blog-service/internal/repository"
	"github.com/inkwell-io/blog-service/internal/storage"
	apperrors "github.com/inkwell-io/blog-service/pkg/util"
)

const minPasswordLength = 6

// Upload carries a client file through the service layer.
type Upload struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// AuthService is the credential issuer: it validates registration and login
// input, hashes and verifies passwords, and issues signed identity tokens.
// It shares only the signing secret and claim shape with the request gate.
type AuthService struct {
	users          repository.UserRepository
	uploads        *storage.UploadStore
	tokenMgr       *auth.TokenManager
	bcryptCost     int
	maxAvatarBytes int64
	logger         *zap.Logger
}

// AuthDependencies encapsulates collaborator requirements for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Uploads  *storage.UploadStore
	Logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:          deps.UserRepo,
		uploads:        deps.Uploads,
		tokenMgr:       auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL()),
		bcryptCost:     cfg.Auth.BcryptCost,
		maxAvatarBytes: cfg.Upload.MaxAvatarBytes,
		logger:         deps.Logger,
	}
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
}

// Register creates a new account. The store's unique index on email is the
// arbiter for concurrent registrations with the same address; no lock is
// taken here. The raw password is hashed immediately and never logged.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if name == "" || email == "" || in.Password == "" || in.PasswordConfirm == "" {
		return nil, apperrors.NewValidationError("fill in all fields", nil)
	}
	if len(strings.TrimSpace(in.Password)) < minPasswordLength {
		return nil, apperrors.NewValidationError("password should be at least 6 characters", nil)
	}
	if in.Password != in.PasswordConfirm {
		return nil, apperrors.NewValidationError("passwords do not match", nil)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewDuplicateEmail()
		}
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// LoginResult carries the issued token alongside the subject.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Login authenticates by email and password and issues a signed token.
// Unknown email and wrong password produce the same error so callers
// cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("fill in all fields", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewInvalidCredentials()
	}

	token, exp, err := s.tokenMgr.Generate(user.ID, user.Name)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

// GetUser returns a single profile.
func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}

// ListAuthors returns all registered users.
func (s *AuthService) ListAuthors(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// ProfileUpdateInput is the profile edit payload.
type ProfileUpdateInput struct {
	Name               string
	Email              string
	CurrentPassword    string
	NewPassword        string
	NewPasswordConfirm string
}

// UpdateProfile changes name, email and password after verifying the
// current password.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdateInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" || in.CurrentPassword == "" || in.NewPassword == "" {
		return nil, apperrors.NewValidationError("fill in all fields", nil)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	if other, err := s.users.GetByEmail(ctx, email); err == nil && other.ID != userID {
		return nil, apperrors.NewDuplicateEmail()
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if err := auth.ComparePassword(user.PasswordHash, in.CurrentPassword); err != nil {
		return nil, apperrors.NewValidationError("invalid current password", nil)
	}
	if len(strings.TrimSpace(in.NewPassword)) < minPasswordLength {
		return nil, apperrors.NewValidationError("password should be at least 6 characters", nil)
	}
	if in.NewPassword != in.NewPasswordConfirm {
		return nil, apperrors.NewValidationError("passwords do not match", nil)
	}

	hash, err := auth.HashPassword(in.NewPassword, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user.Name = name
	user.Email = email
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		// The uniqueness check above races with concurrent edits; the
		// index remains the arbiter.
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewDuplicateEmail()
		}
		return nil, err
	}
	return user, nil
}

// ChangeAvatar stores a new avatar and removes the previous one best-effort.
func (s *AuthService) ChangeAvatar(ctx context.Context, userID string, upload *Upload) (*domain.User, error) {
	if upload == nil || upload.Name == "" {
		return nil, apperrors.NewValidationError("choose an image", nil)
	}
	if upload.Size > s.maxAvatarBytes {
		return nil, apperrors.NewValidationError("profile picture should be less than 500kb", nil)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	stored, err := s.uploads.Save(upload.Name, upload.Reader)
	if err != nil {
		return nil, err
	}

	oldAvatar := user.Avatar
	user.Avatar = stored
	if err := s.users.Update(ctx, user); err != nil {
		s.uploads.Remove(stored)
		return nil, err
	}
	s.uploads.Remove(oldAvatar)

	return user, nil
}

// Logout is a deliberate no-op: tokens are bearer capabilities valid for
// their full fixed lifetime, with no revocation list.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
