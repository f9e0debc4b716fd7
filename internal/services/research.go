package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/net/html"

	"cardforge-backend/internal/textproc"
)

const (
	researchCacheTTL  = 24 * time.Hour
	researchMinChars  = 500
	researchMaxChars  = 2000
	maxResponseBytes  = 1 << 20
	defaultSearchBase = "https://html.duckduckgo.com/html/"
)

// ResearchService gathers background text for a topic by scraping a small
// number of web search results. Results are cached in Redis for a day.
type ResearchService struct {
	cache      *redis.Client
	httpClient *http.Client
	searchBase string
	maxResults int
}

func NewResearchService(cache *redis.Client, maxResults int) *ResearchService {
	return &ResearchService{
		cache:      cache,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		searchBase: defaultSearchBase,
		maxResults: maxResults,
	}
}

// Research returns reference text for the topic. It never fails: when
// search or page fetches break down it degrades to a placeholder string,
// and thin results are padded to a usable floor.
func (s *ResearchService) Research(ctx context.Context, topic string) string {
	key := "research:" + strings.ToLower(strings.TrimSpace(topic))

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Result(); err == nil && cached != "" {
			return cached
		}
	}

	text := s.gather(ctx, topic)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, text, researchCacheTTL).Err(); err != nil {
			log.Printf("WARNING: failed to cache research for %q: %v", topic, err)
		}
	}

	return text
}

func (s *ResearchService) gather(ctx context.Context, topic string) string {
	links, err := s.searchLinks(ctx, topic)
	if err != nil || len(links) == 0 {
		if err != nil {
			log.Printf("WARNING: topic search failed for %q: %v", topic, err)
		}
		return researchPlaceholder(topic)
	}

	var parts []string
	total := 0
	for _, link := range links {
		body, err := s.fetchPage(ctx, link)
		if err != nil {
			log.Printf("WARNING: failed to fetch %s: %v", link, err)
			continue
		}
		for _, para := range extractParagraphs(body, topic) {
			parts = append(parts, para)
			total += len(para)
		}
		if total >= researchMaxChars {
			break
		}
	}

	if len(parts) == 0 {
		return researchPlaceholder(topic)
	}

	text := strings.Join(parts, "\n\n")
	if len(text) < researchMinChars {
		text += fmt.Sprintf("\n\n%s is a broad subject with many aspects worth studying, "+
			"including its core concepts, history, and practical applications.", topic)
	}
	return textproc.Truncate(text, researchMaxChars)
}

// searchLinks runs one search query and resolves up to maxResults result
// URLs from the returned HTML.
func (s *ResearchService) searchLinks(ctx context.Context, topic string) ([]string, error) {
	searchURL := s.searchBase + "?q=" + url.QueryEscape(topic)
	body, err := s.fetchPage(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	var links []string
	walkNodes(doc, func(n *html.Node) {
		if len(links) >= s.maxResults {
			return
		}
		if n.Type != html.ElementNode || n.Data != "a" || !hasClass(n, "result__a") {
			return
		}
		if link := resolveResultLink(attrVal(n, "href")); link != "" {
			links = append(links, link)
		}
	})
	return links, nil
}

// resolveResultLink unwraps the search engine's redirect URL to the real
// destination when present.
func resolveResultLink(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	if parsed.Scheme == "http" || parsed.Scheme == "https" {
		return href
	}
	return ""
}

func (s *ResearchService) fetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; cardforge/1.0)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// extractParagraphs keeps <p> elements whose full text content, nested
// markup included, is long enough to be useful and actually mentions the
// topic.
func extractParagraphs(body, topic string) []string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil
	}

	lowerTopic := strings.ToLower(topic)
	var out []string
	walkNodes(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "p" {
			return
		}
		text := strings.Join(strings.Fields(nodeText(n)), " ")
		if len(text) > 100 && strings.Contains(strings.ToLower(text), lowerTopic) {
			out = append(out, text)
		}
	})
	return out
}

func walkNodes(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkNodes(c, visit)
	}
}

func attrVal(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attrVal(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}

func researchPlaceholder(topic string) string {
	return fmt.Sprintf("Information about %s. This topic covers various important "+
		"concepts, facts, and ideas that are worth studying in detail.", topic)
}
