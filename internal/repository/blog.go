package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/goaltrack/goaltrack/internal/model"
)

type BlogRepository interface {
	Published(ctx context.Context) ([]*model.BlogPost, error)
	ByIDOrSlug(ctx context.Context, key string) (*model.BlogPost, error)
	Upsert(ctx context.Context, post *model.BlogPost) error
}

type blogRepository struct {
	db sqlx.ExtContext
}

func NewBlogRepository(db sqlx.ExtContext) BlogRepository {
	return &blogRepository{db: db}
}

func (r *blogRepository) Published(ctx context.Context) ([]*model.BlogPost, error) {
	posts := []*model.BlogPost{}
	query := `SELECT * FROM blog_posts WHERE is_published = TRUE ORDER BY published_at DESC, created_at DESC`

	err := sqlx.SelectContext(ctx, r.db, &posts, query)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// ByIDOrSlug finds a published post by id or slug.
func (r *blogRepository) ByIDOrSlug(ctx context.Context, key string) (*model.BlogPost, error) {
	post := &model.BlogPost{}
	query := `SELECT * FROM blog_posts WHERE (id = $1 OR slug = $2) AND is_published = TRUE`

	err := sqlx.GetContext(ctx, r.db, post, query, key, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBlogPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Upsert inserts a post or replaces the content of the existing post with the same slug.
// The stored id and created_at of an existing post are kept.
func (r *blogRepository) Upsert(ctx context.Context, post *model.BlogPost) error {
	now := time.Now()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now

	query := `INSERT INTO blog_posts (id, slug, title, excerpt, content, cover_image, category, author,
	                                  is_published, published_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          ON CONFLICT (slug) DO UPDATE SET
	              title = excluded.title,
	              excerpt = excluded.excerpt,
	              content = excluded.content,
	              cover_image = excluded.cover_image,
	              category = excluded.category,
	              author = excluded.author,
	              is_published = excluded.is_published,
	              published_at = excluded.published_at,
	              updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		post.ID,
		post.Slug,
		post.Title,
		post.Excerpt,
		post.Content,
		post.CoverImage,
		post.Category,
		post.Author,
		post.IsPublished,
		post.PublishedAt,
		post.CreatedAt,
		post.UpdatedAt,
	)
	return err
}
