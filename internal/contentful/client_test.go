package contentful

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goaltrack/goaltrack/internal/model"
)

const entriesJSON = `{
  "items": [
    {
      "sys": {"id": "post-1", "createdAt": "2026-10-01T08:00:00.000Z", "updatedAt": "2026-10-02T08:00:00.000Z"},
      "fields": {
        "title": {"en-US": "Small steps"},
        "medij": {"en-US": {"sys": {"type": "Link", "linkType": "Asset", "id": "img-1"}}},
        "richText": {"en-US": {
          "nodeType": "document", "data": {},
          "content": [
            {"nodeType": "heading-2", "data": {}, "content": [{"nodeType": "text", "value": "Why", "marks": [], "data": {}}]},
            {"nodeType": "paragraph", "data": {}, "content": [
              {"nodeType": "text", "value": "Start ", "marks": [], "data": {}},
              {"nodeType": "text", "value": "today", "marks": [{"type": "bold"}], "data": {}},
              {"nodeType": "hyperlink", "data": {"uri": "https://example.com"}, "content": [{"nodeType": "text", "value": " here", "marks": [], "data": {}}]}
            ]}
          ]
        }}
      }
    },
    {
      "sys": {"id": "post-2", "createdAt": "2026-09-01T08:00:00.000Z"},
      "fields": {}
    }
  ],
  "includes": {
    "Asset": [
      {"sys": {"id": "img-1"}, "fields": {"title": "Cover", "file": {"url": "//images.ctfassets.net/space/img-1/cover.png"}}}
    ]
  }
}`

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/spaces/space-1/environments/master/entries", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "blogPost", q.Get("content_type"))
		assert.Equal(t, "-sys.createdAt", q.Get("order"))
		assert.Equal(t, "100", q.Get("limit"))
		assert.Equal(t, "2", q.Get("include"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPosts(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, entriesJSON)
	client := New("space-1", "token-1", "", WithBaseURL(srv.URL))

	posts, err := client.Posts(t.Context())
	require.NoError(t, err)
	require.Len(t, posts, 2)

	first := posts[0]
	assert.Equal(t, "post-1", first.ID)
	assert.Equal(t, "Small steps", first.Title)
	assert.Equal(t, "https://images.ctfassets.net/space/img-1/cover.png", first.CoverImage)
	assert.Equal(t, `<h2>Why</h2><p>Start <strong>today</strong><a href="https://example.com"> here</a></p>`, first.HTMLContent)
	assert.Equal(t, "Why Start today here", first.Excerpt)
	assert.Equal(t, 1, first.ReadTime)
	require.NotNil(t, first.PublishedAt)

	second := posts[1]
	assert.Equal(t, model.DefaultBlogTitle, second.Title)
	assert.Empty(t, second.CoverImage)
	assert.Empty(t, second.HTMLContent)
}

func TestPostByID(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, entriesJSON)
	client := New("space-1", "token-1", "master", WithBaseURL(srv.URL))

	post, err := client.Post(t.Context(), "post-2")
	require.NoError(t, err)
	assert.Equal(t, "post-2", post.ID)

	_, err = client.Post(t.Context(), "nope")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPostsErrorStatus(t *testing.T) {
	srv := newTestServer(t, http.StatusUnauthorized, `{"message":"The access token you sent could not be found or is invalid."}`)
	client := New("space-1", "token-1", "master", WithBaseURL(srv.URL))

	_, err := client.Posts(t.Context())
	assert.ErrorContains(t, err, "401")
}

func TestRenderEscapesText(t *testing.T) {
	doc := &Node{NodeType: "document", Content: []Node{
		{NodeType: "paragraph", Content: []Node{{NodeType: "text", Value: "<b>1 & 2</b>", Marks: []Mark{{Type: "italic"}, {Type: "bold"}}}}},
		{NodeType: "hr"},
	}}
	assert.Equal(t, "<p><em><strong>&lt;b&gt;1 &amp; 2&lt;/b&gt;</strong></em></p><hr/>", RenderHTML(doc, nil))
}
