package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"comicvault/internal/ingestion/locg"
	"comicvault/internal/microservices/http-api/models"
)

// Crawler fetches a series page through the scraper service.
type Crawler interface {
	Crawl(ctx context.Context, pageURL string, creds *locg.Credentials) (*locg.CrawlResult, error)
}

type CrawlOutcome struct {
	Success       bool           `json:"success"`
	SeriesID      int64          `json:"seriesId"`
	SeriesName    string         `json:"seriesName"`
	IssueCount    int            `json:"issueCount"`
	RegularIssues int            `json:"regularIssues"`
	Annuals       int            `json:"annuals"`
	Run           string         `json:"run,omitempty"`
	CrawledAt     time.Time      `json:"crawledAt"`
	URL           string         `json:"url"`
	Series        *models.Series `json:"series,omitempty"`
	Error         string         `json:"error,omitempty"`
	Note          string         `json:"note,omitempty"`
}

type CrawlBatchResult struct {
	Crawled int            `json:"crawled"`
	Failed  int            `json:"failed"`
	Results []CrawlOutcome `json:"results"`
}

type CrawlService interface {
	// CrawlSeries refreshes the advisory LOCG fields of one series. A failed
	// crawl returns the outcome together with an ErrCrawlFailed error.
	CrawlSeries(ctx context.Context, kind models.Kind, seriesID int64, creds *locg.Credentials) (*CrawlOutcome, error)
	// CrawlStale crawls every linked series not crawled within maxAge.
	CrawlStale(ctx context.Context, kind models.Kind, maxAge time.Duration, workers int) (*CrawlBatchResult, error)
}

type crawlService struct {
	series  SeriesService
	crawler Crawler
	logger  *slog.Logger
}

func NewCrawlService(series SeriesService, crawler Crawler, logger *slog.Logger) CrawlService {
	return &crawlService{series: series, crawler: crawler, logger: logger}
}

func (s *crawlService) CrawlSeries(ctx context.Context, kind models.Kind, seriesID int64, creds *locg.Credentials) (*CrawlOutcome, error) {
	series, err := s.series.GetSeries(ctx, kind, seriesID)
	if err != nil {
		return nil, err
	}

	outcome := &CrawlOutcome{SeriesID: series.ID, SeriesName: series.Name}
	pageURL := deref(series.LocgLink)
	fromSearch := pageURL == ""
	if fromSearch {
		pageURL = locg.SearchURL(series.Name, series.PublisherName())
		s.logger.Info("series has no LOCG link, crawling search results", "series_id", series.ID, "url", pageURL)
	}
	outcome.URL = pageURL

	result, err := s.crawler.Crawl(ctx, pageURL, creds)
	if err != nil {
		outcome.Error = err.Error()
		return outcome, fmt.Errorf("%w: %v", ErrCrawlFailed, err)
	}
	if !result.Success || result.IssueCount == nil {
		outcome.Error = result.Error
		if outcome.Error == "" {
			outcome.Error = "scraper returned no issue count"
		}
		if fromSearch {
			outcome.Note = "add the series' LOCG link and crawl again"
		}
		return outcome, fmt.Errorf("%w: series %q: %s", ErrCrawlFailed, series.Name, outcome.Error)
	}

	update := CrawlUpdate{IssueCount: *result.IssueCount, CrawledAt: result.CrawledAt}
	if result.Run != "" {
		update.RunLabel = strPtr(result.Run)
	}
	updated, err := s.series.ApplyCrawlResult(ctx, kind, series.ID, update)
	if err != nil {
		return nil, err
	}

	outcome.Success = true
	outcome.IssueCount = *result.IssueCount
	outcome.RegularIssues = result.RegularIssues
	outcome.Annuals = result.Annuals
	outcome.Run = result.Run
	outcome.CrawledAt = result.CrawledAt
	outcome.Series = updated
	if fromSearch {
		outcome.Note = "crawled from search results, verify the series match"
	}
	s.logger.Info("series crawled", "series_id", series.ID, "issue_count", outcome.IssueCount)
	return outcome, nil
}

func (s *crawlService) CrawlStale(ctx context.Context, kind models.Kind, maxAge time.Duration, workers int) (*CrawlBatchResult, error) {
	due, err := s.series.SeriesNeedingCrawl(ctx, kind, maxAge)
	if err != nil {
		return nil, err
	}

	result := &CrawlBatchResult{Results: make([]CrawlOutcome, 0, len(due))}
	var mu sync.Mutex

	pool := locg.NewWorkerPool(ctx, workers, s.logger)
	pool.Start()
	for _, series := range due {
		id := series.ID
		name := series.Name
		submitted := pool.Submit(func(ctx context.Context) error {
			outcome, err := s.CrawlSeries(ctx, kind, id, nil)
			if outcome == nil {
				outcome = &CrawlOutcome{SeriesID: id, SeriesName: name}
				if err != nil {
					outcome.Error = err.Error()
				}
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
			} else {
				result.Crawled++
			}
			result.Results = append(result.Results, *outcome)
			return err
		})
		if !submitted {
			break
		}
	}
	pool.Wait()

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}
