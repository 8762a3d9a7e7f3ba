// Package contentful reads blog posts from the Contentful Content Delivery API.
package contentful

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/goaltrack/goaltrack/internal/model"
)

const (
	DefaultBaseURL  = "https://cdn.contentful.com"
	ContentTypeBlog = "blogPost"
	pageLimit       = 100
	excerptLength   = 160
)

var ErrPostNotFound = errors.New("post not found")

type Client struct {
	baseURL     string
	spaceID     string
	environment string
	accessToken string
	http        *http.Client
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(spaceID, accessToken, environment string, opts ...Option) *Client {
	if environment == "" {
		environment = "master"
	}
	c := &Client{
		baseURL:     DefaultBaseURL,
		spaceID:     spaceID,
		environment: environment,
		accessToken: accessToken,
		http:        &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sys struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type entry struct {
	Sys    sys                        `json:"sys"`
	Fields map[string]json.RawMessage `json:"fields"`
}

type asset struct {
	Sys    sys                        `json:"sys"`
	Fields map[string]json.RawMessage `json:"fields"`
}

type entriesResponse struct {
	Items    []entry `json:"items"`
	Includes struct {
		Asset []asset `json:"Asset"`
	} `json:"includes"`
}

type link struct {
	Sys struct {
		ID       string `json:"id"`
		LinkType string `json:"linkType"`
	} `json:"sys"`
}

type file struct {
	URL string `json:"url"`
}

// Posts returns the newest blog posts, cover images resolved and rich text rendered to HTML.
// The HTML is not sanitized here.
func (c *Client) Posts(ctx context.Context) ([]*model.BlogPost, error) {
	q := url.Values{}
	q.Set("content_type", ContentTypeBlog)
	q.Set("order", "-sys.createdAt")
	q.Set("limit", fmt.Sprint(pageLimit))
	q.Set("include", "2")

	endpoint := fmt.Sprintf("%s/spaces/%s/environments/%s/entries?%s",
		c.baseURL, url.PathEscape(c.spaceID), url.PathEscape(c.environment), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contentful request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("contentful returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload entriesResponse
	err = json.NewDecoder(resp.Body).Decode(&payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode contentful response: %w", err)
	}

	assets := make(map[string]string, len(payload.Includes.Asset))
	for _, a := range payload.Includes.Asset {
		var f file
		if decodeField(a.Fields["file"], &f) && f.URL != "" {
			assets[a.Sys.ID] = absoluteURL(f.URL)
		}
	}

	posts := make([]*model.BlogPost, 0, len(payload.Items))
	for _, item := range payload.Items {
		posts = append(posts, toPost(item, assets))
	}
	return posts, nil
}

// Post finds one post by entry id among the latest posts.
func (c *Client) Post(ctx context.Context, id string) (*model.BlogPost, error) {
	posts, err := c.Posts(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		if p.ID == id || p.Slug == id {
			return p, nil
		}
	}
	return nil, ErrPostNotFound
}

func toPost(e entry, assets map[string]string) *model.BlogPost {
	var title string
	if !decodeField(e.Fields["title"], &title) || strings.TrimSpace(title) == "" {
		title = model.DefaultBlogTitle
	}

	post := &model.BlogPost{
		ID:          e.Sys.ID,
		Slug:        e.Sys.ID,
		Title:       title,
		IsPublished: true,
		CreatedAt:   e.Sys.CreatedAt,
		UpdatedAt:   e.Sys.UpdatedAt,
	}
	if !e.Sys.CreatedAt.IsZero() {
		published := e.Sys.CreatedAt
		post.PublishedAt = &published
	}

	var cover link
	if decodeField(e.Fields["medij"], &cover) {
		post.CoverImage = assets[cover.Sys.ID]
	}

	var doc Node
	if decodeField(e.Fields["richText"], &doc) {
		post.HTMLContent = RenderHTML(&doc, assets)
		post.Content = PlainText(&doc)
	}
	post.Excerpt = excerpt(post.Content, excerptLength)
	post.ReadTime = readTime(post.Content)

	return post
}

var localeKey = regexp.MustCompile(`^[a-z]{2}(-[A-Za-z]{2,4})?$`)

// decodeField accepts both a plain field value and a locale map like {"en-US": value}.
func decodeField(raw json.RawMessage, dst any) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}

	var locales map[string]json.RawMessage
	if json.Unmarshal(raw, &locales) == nil && len(locales) > 0 {
		if v, ok := locales["en-US"]; ok {
			raw = v
		} else if len(locales) == 1 {
			for k, v := range locales {
				if localeKey.MatchString(k) {
					raw = v
				}
			}
		}
	}
	return json.Unmarshal(raw, dst) == nil
}

func absoluteURL(u string) string {
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}

func excerpt(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}

func readTime(text string) int {
	words := len(strings.Fields(text))
	minutes := (words + 199) / 200
	return max(1, minutes)
}
