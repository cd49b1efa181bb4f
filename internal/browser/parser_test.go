package browser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const listingsHTML = `
<html><body>
<ul class="jobs-search__results-list">
  <li>
    <a class="base-card__full-link" href="https://example.com/jobs/1"></a>
    <h3 class="base-search-card__title"> Senior Go Engineer </h3>
    <h4 class="base-search-card__subtitle">Initech</h4>
    <span class="job-search-card__location">Remote</span>
  </li>
  <li>
    <h3 class="base-search-card__title">Platform Engineer</h3>
    <h4 class="base-search-card__subtitle">Globex</h4>
    <span class="job-search-card__location">New York, NY</span>
  </li>
  <li><div class="decoration"></div></li>
</ul>
</body></html>`

func TestParseListings(t *testing.T) {
	postings, err := ParseListings(strings.NewReader(listingsHTML))
	require.NoError(t, err)
	require.Len(t, postings, 2)

	require.Equal(t, "Senior Go Engineer", postings[0].Title)
	require.Equal(t, "Initech", postings[0].Company)
	require.Equal(t, "Remote", postings[0].Location)
	require.Equal(t, "https://example.com/jobs/1", postings[0].URL)

	require.Equal(t, "Globex", postings[1].Company)
	require.Empty(t, postings[1].URL)
}

func TestParseListingsEmptyDocument(t *testing.T) {
	postings, err := ParseListings(strings.NewReader("<html><body></body></html>"))
	require.NoError(t, err)
	require.Empty(t, postings)
}
