package router

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialfeed/internal/services"
	"socialfeed/internal/store"
)

type testApp struct {
	server  *httptest.Server
	client  *http.Client
	store   *store.Store
	backend *store.MemoryBackend
}

func newTestApp(t *testing.T, configure ...func(*Options)) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"articles":[{"title":"Markets rally","description":"Stocks up","source":{"name":"Wire"}}]}`))
	}))
	t.Cleanup(upstream.Close)

	logger := zap.NewNop()
	backend := store.NewMemoryBackend()
	st := store.New(backend, logger)
	opts := Options{
		SessionSecret: "test-secret",
		SiteURL:       "https://feed.example",
		TemplatesDir:  "../../web/templates",
		StaticDir:     "../../web/static",
		Store:         st,
		Auth:          services.NewAuthService(st.Users, logger),
		Posts:         services.NewPostService(st.Posts, logger),
		News:          services.NewNewsService(services.NewsOptions{BaseURL: upstream.URL, Timeout: time.Second}, logger),
		Logger:        logger,
	}
	for _, fn := range configure {
		fn(&opts)
	}
	server := httptest.NewServer(New(opts))
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testApp{server: server, client: client, store: st, backend: backend}
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := a.client.PostForm(a.server.URL+path, form)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (a *testApp) postFormFrom(t *testing.T, path, forwardedFor string, form url.Values) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, a.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Forwarded-For", forwardedFor)
	resp, err := a.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (a *testApp) postJSON(t *testing.T, path, body string) (int, map[string]any) {
	t.Helper()
	resp, err := a.client.Post(a.server.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (a *testApp) register(t *testing.T, username string) {
	t.Helper()
	resp := a.postForm(t, "/register", url.Values{
		"username":         {username},
		"password":         {"secret"},
		"confirm_password": {"secret"},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
}

func TestAnonymousAccess(t *testing.T) {
	app := newTestApp(t)

	status, body := app.postJSON(t, "/api/posts", `{"content":"hello"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Authentication required", body["error"])

	resp, _ := app.get(t, "/profile")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, page := app.get(t, "/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, page, "Please log in to access this page.")

	resp, _ = app.get(t, "/logout")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	_, page = app.get(t, "/login")
	assert.NotContains(t, page, "You have been logged out")

	resp, page = app.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, page, "No posts yet")
}

func TestPostLifecycle(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice1!")

	status, body := app.postJSON(t, "/api/posts", `{"content":"hello"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	post := body["post"].(map[string]any)
	assert.Equal(t, "hello", post["content"])
	assert.Equal(t, "alice1!", post["username"])
	assert.Empty(t, post["likes"])
	assert.Empty(t, post["comments"])
	id := post["id"].(string)

	status, body = app.postJSON(t, "/api/posts", `{"content":"   "}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Post content cannot be empty", body["error"])

	status, body = app.postJSON(t, "/api/posts/"+id+"/comments", `{"content":"hi there"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hi there", body["comment"].(map[string]any)["content"])

	status, body = app.postJSON(t, "/api/posts/"+id+"/comments", `{"content":""}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Comment content cannot be empty", body["error"])

	status, body = app.postJSON(t, "/api/posts/"+id+"/like", ``)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["liked"])
	assert.Equal(t, float64(1), body["like_count"])

	status, body = app.postJSON(t, "/api/posts/"+id+"/react", `{"reaction":"love"}`)
	require.Equal(t, http.StatusOK, status)
	status, body = app.postJSON(t, "/api/posts/"+id+"/react", `{"reaction":"laugh"}`)
	require.Equal(t, http.StatusOK, status)
	reactions := body["reactions"].(map[string]any)
	assert.Equal(t, float64(1), reactions["laugh"])
	assert.Equal(t, float64(0), reactions["love"])
	assert.Len(t, reactions, 6)

	status, body = app.postJSON(t, "/api/posts/"+id+"/react", `{"reaction":"meh"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid reaction type", body["error"])

	status, body = app.postJSON(t, "/api/posts/missing/like", ``)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Post not found", body["error"])

	resp, page := app.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, page, "Account created successfully! Welcome, alice1!!")
	assert.Contains(t, page, "hi there")
	assert.Contains(t, page, "Unlike")
	assert.Contains(t, page, `reaction-btn active" data-post-id="`+id+`" data-reaction="laugh"`)
	assert.NotContains(t, page, `reaction-btn active" data-post-id="`+id+`" data-reaction="love"`)

	resp, page = app.get(t, "/profile")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, page, "1 posts · 1 likes · 1 comments")

	resp, body2 := app.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","users":1,"posts":1}`, body2)
}

func TestRegisterAndLoginFailures(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice1!")

	resp, _ := app.get(t, "/logout")
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp = app.postForm(t, "/register", url.Values{
		"username": {"alice1!"}, "password": {"x"}, "confirm_password": {"x"},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = app.postForm(t, "/register", url.Values{
		"username": {"shorty"}, "password": {"x"}, "confirm_password": {"y"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = app.postForm(t, "/login", url.Values{"username": {"alice1!"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = app.postForm(t, "/login", url.Values{"username": {"alice1!"}, "password": {"secret"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	status, _ := app.postJSON(t, "/api/posts", `{"content":"back again"}`)
	assert.Equal(t, http.StatusOK, status)
}

func TestNewsRoutes(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.get(t, "/api/news/finance")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page services.NewsPage
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	assert.Equal(t, "Financial News", page.Category)
	require.Len(t, page.Articles, 1)
	assert.Equal(t, "#", page.Articles[0].URL)
	assert.Equal(t, "Wire", page.Articles[0].Source)

	resp, html := app.get(t, "/news?category=whatever")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, html, "General News")
	assert.Contains(t, html, "Markets rally")
}

func TestCrawlerRoutes(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice1!")
	status, _ := app.postJSON(t, "/api/posts", `{"content":"first line\nmore text"}`)
	require.Equal(t, http.StatusOK, status)

	resp, body := app.get(t, "/robots.txt")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Sitemap: https://feed.example/sitemap.xml")

	resp, body = app.get(t, "/sitemap.xml")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<loc>https://feed.example/news?category=finance</loc>")

	resp, body = app.get(t, "/feed.xml")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/rss+xml")

	feed, err := gofeed.NewParser().ParseString(body)
	require.NoError(t, err)
	assert.Equal(t, "SocialFeed", feed.Title)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "first line", feed.Items[0].Title)
	assert.Contains(t, feed.Items[0].Description, "more text")
	assert.NotNil(t, feed.Items[0].PublishedParsed)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)
	app.get(t, "/")

	resp, body := app.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "socialfeed_store_operations_total")
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "just now", timeAgo(now.Add(-10*time.Second), now))
	assert.Equal(t, "1 minute ago", timeAgo(now.Add(-time.Minute), now))
	assert.Equal(t, "3 hours ago", timeAgo(now.Add(-3*time.Hour), now))
	assert.Equal(t, "", timeAgo(time.Time{}, now))
}

func TestAuthRateLimit(t *testing.T) {
	app := newTestApp(t, func(o *Options) { o.AuthRateLimit = 2 })

	bad := url.Values{"username": {"nobody1!"}, "password": {"wrong"}}
	for i := 0; i < 2; i++ {
		resp := app.postForm(t, "/login", bad)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp := app.postForm(t, "/login", bad)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Too many attempts")

	// Reading pages is never throttled.
	page, _ := app.get(t, "/login")
	assert.Equal(t, http.StatusOK, page.StatusCode)
}

func TestAuthRateLimit_IgnoresForwardedForFromUntrustedPeers(t *testing.T) {
	app := newTestApp(t, func(o *Options) { o.AuthRateLimit = 2 })

	bad := url.Values{"username": {"nobody1!"}, "password": {"wrong"}}
	var codes []int
	for i := 1; i <= 4; i++ {
		resp := app.postFormFrom(t, "/login", fmt.Sprintf("10.0.0.%d", i), bad)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{
		http.StatusUnauthorized, http.StatusUnauthorized,
		http.StatusTooManyRequests, http.StatusTooManyRequests,
	}, codes)
}

func TestAuthRateLimit_TrustedProxyForwardsClientIP(t *testing.T) {
	app := newTestApp(t, func(o *Options) {
		o.AuthRateLimit = 1
		o.TrustedProxies = []string{"127.0.0.1", "::1"}
	})

	bad := url.Values{"username": {"nobody1!"}, "password": {"wrong"}}
	for i := 1; i <= 3; i++ {
		resp := app.postFormFrom(t, "/login", fmt.Sprintf("10.0.0.%d", i), bad)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "client %d has its own bucket", i)
	}
	resp := app.postFormFrom(t, "/login", "10.0.0.1", bad)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestHealthz_HidesStoreErrors(t *testing.T) {
	app := newTestApp(t)
	app.backend.Put(store.KindPosts, []byte("{not json"))

	resp, body := app.get(t, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.JSONEq(t, `{"status":"unavailable"}`, body)
}
