package browser

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/talentstream/talentstream/internal/search"
)

// ParseListings extracts job postings from a LinkedIn-style search results
// document. Agents that cannot produce structured output hand back the raw
// page and let this do the extraction.
func ParseListings(r io.Reader) ([]search.Posting, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listings document: %w", err)
	}

	var postings []search.Posting
	doc.Find("ul.jobs-search__results-list li").Each(func(_ int, card *goquery.Selection) {
		posting := search.Posting{
			Title:    text(card.Find("h3.base-search-card__title")),
			Company:  text(card.Find("h4.base-search-card__subtitle")),
			Location: text(card.Find("span.job-search-card__location")),
		}
		if href, ok := card.Find("a.base-card__full-link").Attr("href"); ok {
			posting.URL = href
		}
		if posting.Title == "" && posting.Company == "" {
			return
		}
		postings = append(postings, posting)
	})

	return postings, nil
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.First().Text())
}
