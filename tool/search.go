package tool

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/spetersoncode/assistant/internal/tavily"
)

const (
	searchMaxResults = 3
	searchMaxContent = 500
	noResultsMessage = "No results found."
)

// WebSearcher runs a web search. *tavily.Client implements it.
type WebSearcher interface {
	Search(ctx context.Context, req tavily.SearchRequest) (*tavily.SearchResponse, error)
}

// SearchArgs defines arguments for the search_web tool.
type SearchArgs struct {
	Query string `json:"query" jsonschema:"required" jsonschema_description:"The search query string"`
}

// SearchWeb creates the search_web tool. It returns at most three results and
// reports provider failures as text rather than as an error.
func SearchWeb(s WebSearcher) Spec {
	return Func("search_web",
		"Search the web for information on any topic. Use this when you need current information, facts, or to research a topic.",
		func(ctx context.Context, args SearchArgs) (string, error) {
			resp, err := s.Search(ctx, tavily.SearchRequest{
				Query:       args.Query,
				MaxResults:  searchMaxResults,
				SearchDepth: tavily.DepthBasic,
			})
			if err != nil {
				return fmt.Sprintf("Search error: %v", err), nil
			}
			return formatSearchResults(resp.Results), nil
		})
}

func formatSearchResults(results []tavily.Result) string {
	if len(results) > searchMaxResults {
		results = results[:searchMaxResults]
	}
	if len(results) == 0 {
		return noResultsMessage
	}

	blocks := make([]string, len(results))
	for i, r := range results {
		title := r.Title
		if title == "" {
			title = "No title"
		}
		content := r.Content
		if content == "" {
			content = "No content"
		}
		blocks[i] = fmt.Sprintf("%d. %s\n   %s\n   Source: %s", i+1, title, cleanSearchContent(content), r.URL)
	}
	return strings.Join(blocks, "\n\n")
}

var (
	markdownHeader   = regexp.MustCompile(`#{1,6}\s*`)
	markdownEmphasis = regexp.MustCompile(`\*{1,2}([^*]+)\*{1,2}`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
)

// cleanSearchContent strips markdown headers and emphasis from scraped page
// text, collapses whitespace, and truncates to searchMaxContent runes.
func cleanSearchContent(text string) string {
	text = markdownHeader.ReplaceAllString(text, "")
	text = markdownEmphasis.ReplaceAllString(text, "$1")
	text = strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))

	runes := []rune(text)
	if len(runes) > searchMaxContent {
		text = strings.TrimSpace(string(runes[:searchMaxContent]))
	}
	return text
}
