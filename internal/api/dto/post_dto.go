package dto

import (
	"time"

	"github.com/inkwell-io/blog-service/internal/domain"
)

// PostRequest payload for post create/update (also accepted as form fields
// when a thumbnail accompanies the request).
type PostRequest struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// RateRequest payload for rating a post.
type RateRequest struct {
	Rating int `json:"rating"`
}

// PostResponse is the external shape of a post.
type PostResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Summary     string    `json:"summary,omitempty"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	CreatorID   string    `json:"creator"`
	Rating      int       `json:"rating,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewPostResponse maps a domain post.
func NewPostResponse(p domain.Post) PostResponse {
	return PostResponse{
		ID:          p.ID,
		Title:       p.Title,
		Category:    string(p.Category),
		Description: p.Description,
		Summary:     p.Summary,
		Thumbnail:   p.Thumbnail,
		CreatorID:   p.CreatorID,
		Rating:      p.Rating,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// NewPostListResponse maps a slice of domain posts.
func NewPostListResponse(posts []domain.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, NewPostResponse(p))
	}
	return out
}
