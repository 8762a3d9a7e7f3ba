package model

import (
	"time"
)

const DefaultBlogTitle = "Bez naslova"

type BlogPost struct {
	ID          string     `db:"id" json:"id"`
	Slug        string     `db:"slug" json:"slug"`
	Title       string     `db:"title" json:"title"`
	Excerpt     string     `db:"excerpt" json:"excerpt"`
	Content     string     `db:"content" json:"-"`
	HTMLContent string     `db:"-" json:"html_content"`
	CoverImage  string     `db:"cover_image" json:"cover_image"`
	Category    string     `db:"category" json:"category"`
	Author      string     `db:"author" json:"author"`
	Tags        []string   `db:"-" json:"tags"`
	ReadTime    int        `db:"-" json:"read_time"`
	IsPublished bool       `db:"is_published" json:"is_published"`
	PublishedAt *time.Time `db:"published_at" json:"published_at"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}
