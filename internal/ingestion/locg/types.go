package locg

import (
	"net/url"
	"strings"
	"time"
)

// Credentials are passed through to the scraper for LOCG pages that need a login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type crawlRequest struct {
	URL         string       `json:"url"`
	Credentials *Credentials `json:"credentials,omitempty"`
}

// CrawlResult is the scraper's report for one series page.
type CrawlResult struct {
	Success       bool      `json:"success"`
	IssueCount    *int      `json:"issueCount,omitempty"`
	RegularIssues int       `json:"regularIssues"`
	Annuals       int       `json:"annuals"`
	Run           string    `json:"run,omitempty"`
	Error         string    `json:"error,omitempty"`
	URL           string    `json:"url"`
	CrawledAt     time.Time `json:"crawledAt"`
}

const searchBaseURL = "https://leagueofcomicgeeks.com/search"

// SearchURL builds the LOCG search page used when a series has no direct link.
func SearchURL(seriesName, publisherName string) string {
	q := url.Values{}
	q.Set("keyword", strings.TrimSpace(seriesName+" "+publisherName))
	return searchBaseURL + "?" + q.Encode()
}
