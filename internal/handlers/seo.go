package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialfeed/internal/services"
)

const feedItemLimit = 20

type SEOHandler struct {
	siteURL string
	posts   *services.PostService
	logger  *zap.Logger
}

func NewSEOHandler(siteURL string, posts *services.PostService, logger *zap.Logger) *SEOHandler {
	return &SEOHandler{siteURL: strings.TrimSuffix(siteURL, "/"), posts: posts, logger: logger}
}

// RobotsTxt keeps crawlers off the account pages and the JSON API.
func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

Disallow: /login
Disallow: /register
Disallow: /logout
Disallow: /profile
Disallow: /api/

Sitemap: %s/sitemap.xml
`, h.siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// SitemapXML lists the public pages: the feed and every news category.
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	now := time.Now().Format("2006-01-02")

	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	set.URLs = append(set.URLs, sitemapURL{Loc: h.siteURL + "/", LastMod: now, ChangeFreq: "hourly", Priority: 1.0})
	for _, category := range services.NewsCategories {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.siteURL + "/news?category=" + category,
			LastMod:    now,
			ChangeFreq: "hourly",
			Priority:   0.7,
		})
	}

	h.writeXML(c, "application/xml; charset=utf-8", set)
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	Description string  `xml:"description"`
	Author      string  `xml:"author"`
	PubDate     string  `xml:"pubDate"`
	GUID        rssGUID `xml:"guid"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

// RSSFeed publishes the newest posts as RSS 2.0.
func (h *SEOHandler) RSSFeed(c *gin.Context) {
	posts, err := h.posts.Feed(c.Request.Context())
	if err != nil {
		h.logger.Error("Couldn't build RSS feed", zap.Error(err))
		c.String(http.StatusInternalServerError, "feed unavailable")
		return
	}
	if len(posts) > feedItemLimit {
		posts = posts[:feedItemLimit]
	}

	doc := rssDocument{
		Version: "2.0",
		Channel: rssChannel{
			Title:         "SocialFeed",
			Link:          h.siteURL + "/",
			Description:   "The latest posts on SocialFeed",
			Language:      "en-us",
			LastBuildDate: time.Now().Format(time.RFC1123Z),
		},
	}
	for _, p := range posts {
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:       feedTitle(p.Content),
			Link:        h.siteURL + "/",
			Description: p.Content,
			Author:      p.Username,
			PubDate:     p.Timestamp.Format(time.RFC1123Z),
			GUID:        rssGUID{Value: p.ID},
		})
	}

	h.writeXML(c, "application/rss+xml; charset=utf-8", doc)
}

func (h *SEOHandler) writeXML(c *gin.Context, contentType string, v any) {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		h.logger.Error("Couldn't encode XML", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, contentType, append([]byte(xml.Header), out...))
}

// feedTitle is the first line of a post, shortened for feed readers.
func feedTitle(content string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(content), "\n")
	r := []rune(line)
	if len(r) > 60 {
		return string(r[:57]) + "..."
	}
	return line
}
