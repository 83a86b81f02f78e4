package command

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var transferCmd = &cobra.Command{
	Use:   "transfer <wishlist-item-id>...",
	Short: "Move wishlist items into the collection",
	Long: `Transfer moves each wishlist item into the collection, creating the publisher
and series there when needed. Items are transferred independently; an item that
already exists in the collection stays on the wishlist.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]int64, 0, len(args))
		for _, arg := range args {
			id, err := strconv.ParseInt(arg, 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid wishlist item id %q", arg)
			}
			ids = append(ids, id)
		}

		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		result := a.transfer.TransferBatch(ctx, ids)
		for _, r := range result.Results {
			if r.Success {
				fmt.Printf("✓ %d → collection issue %d\n", r.WishlistItemID, *r.NewIssueID)
			} else {
				fmt.Printf("✗ %d: %s\n", r.WishlistItemID, r.Error)
			}
		}
		fmt.Printf("\n%d transferred, %d failed\n", result.Summary.Transferred, result.Summary.Failed)

		if !result.Success {
			return fmt.Errorf("%d of %d transfers failed", result.Summary.Failed, result.Summary.Total)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(transferCmd)
}
