package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/goaltrack/goaltrack/internal/config"
	"github.com/goaltrack/goaltrack/internal/contentful"
	"github.com/goaltrack/goaltrack/internal/markdown"
	"github.com/goaltrack/goaltrack/internal/metrics"
	"github.com/goaltrack/goaltrack/internal/model"
	"github.com/goaltrack/goaltrack/internal/repository"
)

// PostSource is where published blog posts come from.
type PostSource interface {
	Posts(ctx context.Context) ([]*model.BlogPost, error)
	Post(ctx context.Context, id string) (*model.BlogPost, error)
}

type BlogService struct {
	source     string
	contentful PostSource
	repo       repository.BlogRepository
	parser     *markdown.Parser
}

// NewBlogService reads from cms when source is contentful and from the blog_posts table otherwise.
func NewBlogService(source string, cms PostSource, repo repository.BlogRepository) *BlogService {
	if source == config.BlogSourceContentful && cms == nil {
		slog.Warn("contentful blog source selected without a client, falling back to database")
		source = config.BlogSourceDatabase
	}
	return &BlogService{
		source:     source,
		contentful: cms,
		repo:       repo,
		parser:     markdown.NewParser(),
	}
}

// Posts lists published posts. A failing source is logged and yields an empty list.
func (s *BlogService) Posts(ctx context.Context) []*model.BlogPost {
	var (
		posts []*model.BlogPost
		err   error
	)
	if s.source == config.BlogSourceContentful {
		posts, err = s.contentful.Posts(ctx)
	} else {
		posts, err = s.repo.Published(ctx)
	}
	if err != nil {
		metrics.BlogFetchErrors.WithLabelValues(s.source).Inc()
		slog.Error("failed to load blog posts", "error", err, "source", s.source)
		return []*model.BlogPost{}
	}

	for _, p := range posts {
		s.render(p)
	}
	return posts
}

func (s *BlogService) Post(ctx context.Context, id string) (*model.BlogPost, error) {
	var (
		post *model.BlogPost
		err  error
	)
	if s.source == config.BlogSourceContentful {
		post, err = s.contentful.Post(ctx, id)
		if errors.Is(err, contentful.ErrPostNotFound) {
			return nil, repository.ErrBlogPostNotFound
		}
	} else {
		post, err = s.repo.ByIDOrSlug(ctx, id)
	}
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			metrics.BlogFetchErrors.WithLabelValues(s.source).Inc()
		}
		return nil, err
	}

	s.render(post)
	return post, nil
}

// render fills HTMLContent. CMS HTML is sanitized, database posts are Markdown.
func (s *BlogService) render(post *model.BlogPost) {
	if s.source == config.BlogSourceContentful {
		post.HTMLContent = s.parser.Sanitize(post.HTMLContent)
		return
	}

	html, err := s.parser.Parse([]byte(post.Content))
	if err != nil {
		slog.Warn("failed to render blog post", "error", err, "slug", post.Slug)
		return
	}
	post.HTMLContent = string(html)
	post.ReadTime = readTime(post.Content)
}

// ImportMarkdown upserts every *.md file in dir into blog_posts, keyed by slug.
// The slug is the frontmatter "slug" or the file name.
func (s *BlogService) ImportMarkdown(ctx context.Context, dir string) (int, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, file := range files {
		post, err := s.parseFile(file)
		if err != nil {
			return imported, fmt.Errorf("failed to parse %s: %w", filepath.Base(file), err)
		}

		err = s.repo.Upsert(ctx, post)
		if err != nil {
			return imported, fmt.Errorf("failed to import %s: %w", post.Slug, err)
		}
		imported++
		slog.Info("blog post imported", "slug", post.Slug)
	}
	return imported, nil
}

func (s *BlogService) parseFile(path string) (*model.BlogPost, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	_, meta, err := s.parser.ParseWithFrontmatter(source)
	if err != nil {
		return nil, err
	}

	post := &model.BlogPost{
		ID:          uuid.New().String(),
		Slug:        strings.TrimSuffix(filepath.Base(path), ".md"),
		Title:       model.DefaultBlogTitle,
		Content:     stripFrontmatter(string(source)),
		IsPublished: true,
	}

	if v, ok := meta["slug"].(string); ok && v != "" {
		post.Slug = v
	}
	post.Slug = slugify(post.Slug)
	if post.Slug == "" {
		return nil, fmt.Errorf("%s: empty slug", filepath.Base(path))
	}
	if v, ok := meta["title"].(string); ok && v != "" {
		post.Title = v
	}
	if v, ok := meta["excerpt"].(string); ok {
		post.Excerpt = v
	} else if v, ok := meta["description"].(string); ok {
		post.Excerpt = v
	}
	if v, ok := meta["author"].(string); ok {
		post.Author = v
	}
	if v, ok := meta["category"].(string); ok {
		post.Category = v
	}
	if v, ok := meta["cover_image"].(string); ok {
		post.CoverImage = v
	}
	if v, ok := meta["published"].(bool); ok {
		post.IsPublished = v
	}

	switch v := meta["date"].(type) {
	case string:
		if date, err := time.Parse("2006-01-02", v); err == nil {
			post.PublishedAt = &date
		}
	case time.Time:
		post.PublishedAt = &v
	}
	if post.PublishedAt == nil && post.IsPublished {
		now := time.Now()
		post.PublishedAt = &now
	}

	return post, nil
}

// slugify folds diacritics ("Čitanje" -> "citanje") and collapses
// everything that is not a letter or digit into single hyphens.
func slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(r)
			continue
		}
		hyphen = true
	}
	return b.String()
}

func stripFrontmatter(src string) string {
	if !strings.HasPrefix(src, "---") {
		return src
	}
	rest := src[3:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return src
	}
	body := rest[end+4:]
	return strings.TrimLeft(body, "\r\n")
}

func readTime(content string) int {
	minutes := (len(strings.Fields(content)) + 199) / 200
	return max(1, minutes)
}
