package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/inkwell-io/blog-service/internal/auth"
	"github.com/inkwell-io/blog-service/internal/domain"
	"github.com/inkwell-io/blog-service/internal/repository"
	"github.com/inkwell-io/blog-service/internal/storage"
	apperrors "github.com/inkwell-io/blog-service/pkg/util"
)

const (
	minDescriptionLength = 12
	summaryCachePrefix   = "post:summary:"
)

// Summarizer produces a short summary of post text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// SummaryCache caches generated summaries across requests.
type SummaryCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// PostService coordinates post workflows. Every mutating operation applies
// the ownership policy with the identity the request gate supplied; the
// gate itself only authenticates.
type PostService struct {
	posts             repository.PostRepository
	users             repository.UserRepository
	uploads           *storage.UploadStore
	summarizer        Summarizer
	cache             SummaryCache
	maxThumbnailBytes int64
	logger            *zap.Logger
}

// PostDependencies bundles collaborators for the post service. Summarizer
// and Cache may be nil when no completion API key is configured.
type PostDependencies struct {
	PostRepo          repository.PostRepository
	UserRepo          repository.UserRepository
	Uploads           *storage.UploadStore
	Summarizer        Summarizer
	Cache             SummaryCache
	MaxThumbnailBytes int64
	Logger            *zap.Logger
}

// NewPostService constructs the service.
func NewPostService(deps PostDependencies) *PostService {
	return &PostService{
		posts:             deps.PostRepo,
		users:             deps.UserRepo,
		uploads:           deps.Uploads,
		summarizer:        deps.Summarizer,
		cache:             deps.Cache,
		maxThumbnailBytes: deps.MaxThumbnailBytes,
		logger:            deps.Logger,
	}
}

// PostInput describes create/update payloads.
type PostInput struct {
	Title       string
	Category    string
	Description string
}

// Create stores a new post for the authenticated author. Summary generation
// is best-effort: a completion failure is logged and the post is created
// without one. The author's post counter moves by an atomic increment.
func (s *PostService) Create(ctx context.Context, authorID string, in PostInput, thumbnail *Upload) (*domain.Post, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	category := domain.Category(strings.TrimSpace(in.Category))

	if title == "" || category == "" || description == "" || thumbnail == nil {
		return nil, apperrors.NewValidationError("fill in all fields and choose a thumbnail", nil)
	}
	if !domain.ValidCategory(category) {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": string(category)})
	}
	if thumbnail.Size > s.maxThumbnailBytes {
		return nil, apperrors.NewValidationError("thumbnail too big, file should be less than 2mb", nil)
	}

	stored, err := s.uploads.Save(thumbnail.Name, thumbnail.Reader)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		Title:       title,
		Category:    category,
		Description: description,
		Thumbnail:   stored,
		CreatorID:   authorID,
	}

	if s.summarizer != nil {
		sum, err := s.summarizer.Summarize(ctx, description)
		if err != nil {
			s.logger.Warn("summary generation failed", zap.Error(err))
		} else {
			post.Summary = sum
		}
	}

	if err := s.posts.Create(ctx, post); err != nil {
		s.uploads.Remove(stored)
		return nil, err
	}

	if err := s.users.AdjustPostCount(ctx, authorID, 1); err != nil {
		s.logger.Warn("failed to increment author post count",
			zap.String("user_id", authorID), zap.Error(err))
	}

	return post, nil
}

// List returns all posts, most recently updated first.
func (s *PostService) List(ctx context.Context) ([]domain.Post, error) {
	return s.posts.List(ctx)
}

// Get returns a single post.
func (s *PostService) Get(ctx context.Context, id string) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("post", nil)
		}
		return nil, err
	}
	return post, nil
}

// ListByCategory returns posts in a category, newest first.
func (s *PostService) ListByCategory(ctx context.Context, category string) ([]domain.Post, error) {
	cat := domain.Category(strings.TrimSpace(category))
	if !domain.ValidCategory(cat) {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": category})
	}
	return s.posts.ListByCategory(ctx, cat)
}

// ListByAuthor returns an author's posts, newest first.
func (s *PostService) ListByAuthor(ctx context.Context, authorID string) ([]domain.Post, error) {
	return s.posts.ListByCreator(ctx, authorID)
}

// Update edits a post. The caller must own it.
func (s *PostService) Update(ctx context.Context, principal *auth.Principal, id string, in PostInput, thumbnail *Upload) (*domain.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanModify(principal, post.CreatorID) {
		return nil, apperrors.NewForbidden("not the post owner")
	}

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	category := domain.Category(strings.TrimSpace(in.Category))

	if title == "" || category == "" || len(description) < minDescriptionLength {
		return nil, apperrors.NewValidationError("fill in all fields, description of at least 12 characters", nil)
	}
	if !domain.ValidCategory(category) {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": string(category)})
	}

	oldThumbnail := ""
	newThumbnail := ""
	if thumbnail != nil {
		if thumbnail.Size > s.maxThumbnailBytes {
			return nil, apperrors.NewValidationError("thumbnail too big, file should be less than 2mb", nil)
		}
		stored, err := s.uploads.Save(thumbnail.Name, thumbnail.Reader)
		if err != nil {
			return nil, err
		}
		oldThumbnail = post.Thumbnail
		newThumbnail = stored
		post.Thumbnail = stored
	}

	post.Title = title
	post.Category = category
	post.Description = description
	if err := s.posts.Update(ctx, post); err != nil {
		s.uploads.Remove(newThumbnail)
		return nil, err
	}
	s.uploads.Remove(oldThumbnail)

	return post, nil
}

// Delete removes a post the caller owns, its thumbnail, and decrements the
// author counter.
func (s *PostService) Delete(ctx context.Context, principal *auth.Principal, id string) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanModify(principal, post.CreatorID) {
		return apperrors.NewForbidden("not the post owner")
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	s.uploads.Remove(post.Thumbnail)

	if err := s.users.AdjustPostCount(ctx, post.CreatorID, -1); err != nil {
		s.logger.Warn("failed to decrement author post count",
			zap.String("user_id", post.CreatorID), zap.Error(err))
	}
	return nil
}

// Rate records a rating from any authenticated user. Ownership is not
// required: authors do not control who rates their posts.
func (s *PostService) Rate(ctx context.Context, principal *auth.Principal, id string, rating int) (*domain.Post, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5", nil)
	}

	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.posts.SetRating(ctx, id, rating); err != nil {
		return nil, err
	}
	post.Rating = rating
	return post, nil
}

// Summary returns the post's summary, generating and persisting one on
// demand. Results go through the cache so repeated calls skip the
// completion API. Cache failures degrade to misses.
func (s *PostService) Summary(ctx context.Context, id string) (string, error) {
	key := summaryCachePrefix + id
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, key); err != nil {
			s.logger.Warn("summary cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	post, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	sum := post.Summary
	if sum == "" {
		if s.summarizer == nil {
			return "", apperrors.NewDomainError("SUMMARY_UNAVAILABLE",
				"summary generation not configured", http.StatusServiceUnavailable, nil)
		}
		sum, err = s.summarizer.Summarize(ctx, post.Description)
		if err != nil {
			return "", apperrors.NewDomainError("SUMMARY_FAILED",
				"failed to generate summary", http.StatusBadGateway, nil)
		}
		if err := s.posts.SetSummary(ctx, id, sum); err != nil {
			s.logger.Warn("failed to persist summary", zap.String("post_id", id), zap.Error(err))
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, sum); err != nil {
			s.logger.Warn("summary cache write failed", zap.Error(err))
		}
	}
	return sum, nil
}
