package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"comicvault/internal/microservices/http-api/dto"

	"github.com/spf13/cobra"
)

var dryRun bool

var importCmd = &cobra.Command{
	Use:   "import <file.csv|file.json>",
	Short: "Import issues from a spreadsheet export",
	Long: `Import reads a CSV file (header row required) or a JSON array of row objects.
Missing series default to "Unknown Series", missing publishers to "Unknown Publisher"
and a missing issue number to 1. Rows that already exist are counted as duplicates.

Use --dry-run to preview what would be created without writing anything.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind()
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		rows, err := dto.DecodeImportFile(f, args[0])
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
		defer cancel()

		if dryRun {
			preview, err := a.imports.ValidateImport(ctx, kind, rows)
			if err != nil {
				return err
			}
			s := preview.Summary
			fmt.Printf("Preview of %d rows into the %s:\n", s.TotalRows, kind)
			fmt.Printf("  Issues to add:       %d\n", s.IssuesWillBeAdded)
			fmt.Printf("  Series to create:    %d\n", s.SeriesWillBeCreated)
			fmt.Printf("  Publishers to create: %d\n", s.PublishersWillBeCreated)
			fmt.Printf("  Duplicates:          %d\n", s.Duplicates)
			fmt.Printf("  Errors:              %d\n", s.Errors)
			for _, e := range preview.Details.Errors {
				fmt.Printf("    Row %d: %s\n", e.Row, e.Message)
			}
			return nil
		}

		result, err := a.imports.ProcessImport(ctx, kind, rows)
		if err != nil {
			return err
		}
		s := result.Summary
		fmt.Printf("✓ Import %s finished\n", result.RunID)
		fmt.Printf("  Issues added:       %d\n", s.IssuesAdded)
		fmt.Printf("  Series created:     %d\n", s.SeriesCreated)
		fmt.Printf("  Publishers created: %d\n", s.PublishersCreated)
		fmt.Printf("  Duplicates:         %d\n", s.Duplicates)
		fmt.Printf("  Errors:             %d\n", s.Errors)
		for _, e := range result.Errors {
			fmt.Printf("    %s\n", e.Message)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&kindFlag, "kind", "collection", "target list: collection or wishlist")
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview the import without writing")
	rootCmd.AddCommand(importCmd)
}
