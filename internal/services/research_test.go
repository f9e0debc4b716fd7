package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResearchService(searchBase string) *ResearchService {
	svc := NewResearchService(nil, 2)
	svc.searchBase = searchBase
	return svc
}

func TestResearch_ExtractsMatchingParagraphs(t *testing.T) {
	longPara := "Photosynthesis is the process used by plants to convert light energy " +
		"into chemical energy that can later be released to fuel the organism's activities."

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, "<html><body><p>%s</p><p>Short one.</p></body></html>", longPara)
	}))
	defer page.Close()

	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<a class="result__a" href="%s">Result</a>`, page.URL)
	}))
	defer search.Close()

	svc := newTestResearchService(search.URL)
	text := svc.Research(context.Background(), "photosynthesis")

	assert.Contains(t, text, "convert light energy")
	assert.NotContains(t, text, "Short one")
}

func TestResearch_HandlesAttributeOrderAndNestedMarkup(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><p>Gravity is the <b>attractive force</b> by which a planet
			or other body <em>draws objects</em> toward its center, keeping them on the ground.</p></body></html>`)
	}))
	defer page.Close()

	// href listed before class on the result anchor
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<a rel="nofollow" href="%s" class="result__a">Result</a>`, page.URL)
	}))
	defer search.Close()

	svc := newTestResearchService(search.URL)
	text := svc.Research(context.Background(), "gravity")

	assert.Contains(t, text, "attractive force by which a planet or other body draws objects")
}

func TestResearch_PlaceholderWhenSearchFails(t *testing.T) {
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer search.Close()

	svc := newTestResearchService(search.URL)
	text := svc.Research(context.Background(), "quantum mechanics")

	assert.Contains(t, text, "quantum mechanics")
	assert.Contains(t, text, "Information about")
}

func TestResearch_PlaceholderWhenNoResults(t *testing.T) {
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html><body>No results.</body></html>")
	}))
	defer search.Close()

	svc := newTestResearchService(search.URL)
	text := svc.Research(context.Background(), "obscurity")

	assert.Contains(t, text, "Information about obscurity")
}

func TestResearch_CapsOutputLength(t *testing.T) {
	big := strings.Repeat("The topic of history spans many centuries of recorded human events and achievements across the world. ", 50)

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, "<p>%s</p>", big)
	}))
	defer page.Close()

	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<a class="result__a" href="%s">Result</a>`, page.URL)
	}))
	defer search.Close()

	svc := newTestResearchService(search.URL)
	text := svc.Research(context.Background(), "history")

	require.LessOrEqual(t, len(text), researchMaxChars)
}

func TestResolveResultLink(t *testing.T) {
	tests := []struct {
		name string
		href string
		want string
	}{
		{"redirect wrapper", "//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fpage", "https://example.com/page"},
		{"direct https", "https://example.com/article", "https://example.com/article"},
		{"relative path rejected", "/html/?q=next", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveResultLink(tt.href))
		})
	}
}
