package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-io/blog-service/internal/domain"
)

// PostRepository encapsulates post persistence.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	List(ctx context.Context) ([]domain.Post, error)
	ListByCategory(ctx context.Context, category domain.Category) ([]domain.Post, error)
	ListByCreator(ctx context.Context, creatorID string) ([]domain.Post, error)
	SetSummary(ctx context.Context, id, summary string) error
	SetRating(ctx context.Context, id string, rating int) error
}

type postRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository instantiates repository.
func NewPostRepository(pool *pgxpool.Pool) PostRepository {
	return &postRepository{pool: pool}
}

const postColumns = `id, title, category, description, summary, thumbnail, creator_id, rating, created_at, updated_at`

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	const query = `
        INSERT INTO posts (title, category, description, summary, thumbnail, creator_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		post.Title,
		post.Category,
		post.Description,
		post.Summary,
		post.Thumbnail,
		post.CreatorID,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
}

func (r *postRepository) Update(ctx context.Context, post *domain.Post) error {
	const query = `
        UPDATE posts SET title=$1, category=$2, description=$3, summary=$4, thumbnail=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		post.Title,
		post.Category,
		post.Description,
		post.Summary,
		post.Thumbnail,
		post.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id=$1`

	var post domain.Post
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&post.ID,
		&post.Title,
		&post.Category,
		&post.Description,
		&post.Summary,
		&post.Thumbnail,
		&post.CreatorID,
		&post.Rating,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context) ([]domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY updated_at DESC`
	return r.fetchMany(ctx, query)
}

func (r *postRepository) ListByCategory(ctx context.Context, category domain.Category) ([]domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE category=$1 ORDER BY created_at DESC`
	return r.fetchMany(ctx, query, category)
}

func (r *postRepository) ListByCreator(ctx context.Context, creatorID string) ([]domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE creator_id=$1 ORDER BY created_at DESC`
	return r.fetchMany(ctx, query, creatorID)
}

func (r *postRepository) SetSummary(ctx context.Context, id, summary string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE posts SET summary=$1, updated_at=NOW() WHERE id=$2`, summary, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *postRepository) SetRating(ctx context.Context, id string, rating int) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE posts SET rating=$1, updated_at=NOW() WHERE id=$2`, rating, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *postRepository) fetchMany(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Category,
			&post.Description,
			&post.Summary,
			&post.Thumbnail,
			&post.CreatorID,
			&post.Rating,
			&post.CreatedAt,
			&post.UpdatedAt,
		); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}
