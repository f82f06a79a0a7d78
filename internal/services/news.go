package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"socialfeed/internal/cache"
)

const newsUnavailable = "News service temporarily unavailable. Please check your API configuration."

type newsCategory struct {
	upstream string
	title    string
}

var newsCategories = map[string]newsCategory{
	"general":       {upstream: "general", title: "General"},
	"sports":        {upstream: "sports", title: "Sports"},
	"technology":    {upstream: "technology", title: "Technology"},
	"finance":       {upstream: "business", title: "Financial"},
	"entertainment": {upstream: "entertainment", title: "Entertainment"},
}

// NewsCategories lists the categories offered on the news page, in display order.
var NewsCategories = []string{"general", "sports", "technology", "finance", "entertainment"}

type Article struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	URLToImage  *string `json:"urlToImage"`
	PublishedAt *string `json:"publishedAt"`
	Source      string  `json:"source"`
	Author      *string `json:"author"`
}

type NewsPage struct {
	Category     string    `json:"category"`
	Articles     []Article `json:"articles"`
	TotalResults int       `json:"total_results"`
	LastUpdated  string    `json:"last_updated"`
	Error        string    `json:"error,omitempty"`
}

// upstreamArticle mirrors the NewsAPI article shape; optional fields are
// pointers so absence can be told apart from an empty string.
type upstreamArticle struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	URL         *string `json:"url"`
	URLToImage  *string `json:"urlToImage"`
	PublishedAt *string `json:"publishedAt"`
	Author      *string `json:"author"`
	Source      *struct {
		Name *string `json:"name"`
	} `json:"source"`
}

type upstreamResponse struct {
	Articles []upstreamArticle `json:"articles"`
}

// NewsService fetches top headlines from a NewsAPI-compatible mirror.
type NewsService struct {
	baseURL string
	client  *http.Client
	cache   cache.Cache
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

type NewsOptions struct {
	BaseURL  string
	Timeout  time.Duration
	Cache    cache.Cache // nil disables caching
	CacheTTL time.Duration
}

func NewNewsService(opts NewsOptions, logger *zap.Logger) *NewsService {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NewsService{
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 2,
			},
		},
		cache:  opts.Cache,
		ttl:    opts.CacheTTL,
		logger: logger,
		now:    time.Now,
	}
}

// NormalizeCategory maps anything but an exact category name to general.
func NormalizeCategory(category string) string {
	if _, ok := newsCategories[category]; ok {
		return category
	}
	return "general"
}

// ByCategory never fails: upstream problems yield an empty page carrying
// an error message. Only successful pages are cached.
func (s *NewsService) ByCategory(ctx context.Context, category string) *NewsPage {
	category = NormalizeCategory(category)
	cat := newsCategories[category]

	var page NewsPage
	err := cache.Aside(ctx, s.cache, "news:"+category, &page, s.ttl, func() error {
		articles, err := s.fetch(ctx, cat.upstream)
		if err != nil {
			return err
		}
		page = NewsPage{
			Category:     cat.title + " News",
			Articles:     articles,
			TotalResults: len(articles),
			LastUpdated:  s.now().Format(time.RFC3339),
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("Couldn't fetch news", zap.String("category", category), zap.Error(err))
		return &NewsPage{
			Category:    cat.title + " News",
			Articles:    []Article{},
			LastUpdated: s.now().Format(time.RFC3339),
			Error:       newsUnavailable,
		}
	}
	return &page
}

func (s *NewsService) fetch(ctx context.Context, upstream string) ([]Article, error) {
	url := fmt.Sprintf("%s/top-headlines/category/%s/us.json", s.baseURL, upstream)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request %s: unexpected status %d", url, resp.StatusCode)
	}

	var body upstreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return formatArticles(body.Articles), nil
}

func formatArticles(in []upstreamArticle) []Article {
	out := make([]Article, 0, len(in))
	for _, a := range in {
		if a.Title == "" || a.Description == "" {
			continue
		}
		article := Article{
			Title:       a.Title,
			Description: a.Description,
			URL:         "#",
			URLToImage:  a.URLToImage,
			PublishedAt: a.PublishedAt,
			Source:      "Unknown",
			Author:      a.Author,
		}
		if a.URL != nil {
			article.URL = *a.URL
		}
		if a.Source != nil && a.Source.Name != nil {
			article.Source = *a.Source.Name
		}
		out = append(out, article)
	}
	return out
}
