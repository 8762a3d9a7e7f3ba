package handler

import (
	"net/http"

	"github.com/goaltrack/goaltrack/internal/model"
	"github.com/goaltrack/goaltrack/internal/service"
)

type BlogHandler struct {
	blogService *service.BlogService
}

func NewBlogHandler(blogService *service.BlogService) *BlogHandler {
	return &BlogHandler{
		blogService: blogService,
	}
}

// postSummary drops the rendered body from list responses.
type postSummary struct {
	*model.BlogPost
	HTMLContent string `json:"html_content,omitempty"`
}

// ListPosts never fails. A broken source shows up as an empty list.
func (h *BlogHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts := h.blogService.Posts(r.Context())

	summaries := make([]postSummary, 0, len(posts))
	for _, p := range posts {
		summaries = append(summaries, postSummary{BlogPost: p})
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *BlogHandler) ShowPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.blogService.Post(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}
