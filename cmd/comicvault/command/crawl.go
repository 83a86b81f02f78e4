package command

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	crawlMaxAge  time.Duration
	crawlWorkers int
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [series-id]",
	Short: "Refresh LOCG issue counts",
	Long: `Crawl asks the scraper service for a series' issue count on League of Comic Geeks.
With a series id it crawls that series; without one it crawls every linked series
not crawled within --max-age.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind()
		if err != nil {
			return err
		}

		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Minute)
		defer cancel()

		if len(args) == 1 {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid series id %q", args[0])
			}
			outcome, err := a.crawl.CrawlSeries(ctx, kind, id, nil)
			if err != nil {
				return err
			}
			fmt.Printf("✓ %s: %d issues (%d regular, %d annuals)\n",
				outcome.SeriesName, outcome.IssueCount, outcome.RegularIssues, outcome.Annuals)
			return nil
		}

		result, err := a.crawl.CrawlStale(ctx, kind, crawlMaxAge, crawlWorkers)
		if err != nil {
			return err
		}
		for _, o := range result.Results {
			if o.Success {
				fmt.Printf("✓ %s: %d issues\n", o.SeriesName, o.IssueCount)
			} else {
				fmt.Printf("✗ %s: %s\n", o.SeriesName, o.Error)
			}
		}
		fmt.Printf("\n%d crawled, %d failed\n", result.Crawled, result.Failed)
		return nil
	},
}

func init() {
	crawlCmd.Flags().StringVar(&kindFlag, "kind", "collection", "series list: collection or wishlist")
	crawlCmd.Flags().DurationVar(&crawlMaxAge, "max-age", 7*24*time.Hour, "recrawl series older than this")
	crawlCmd.Flags().IntVar(&crawlWorkers, "workers", 2, "concurrent crawls")
	rootCmd.AddCommand(crawlCmd)
}
