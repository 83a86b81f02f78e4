package command

// root.go defines the root command and the flags shared by every subcommand.

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	kindFlag string // collection or wishlist
	envFile  string // optional .env override
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "comicvault",
	Short: "comicvault - comic collection and wishlist manager",
	Long: `comicvault keeps a comic collection and a wishlist in one database and
reconciles the two. Use it to:
- Serve the HTTP API
- Import issues from CSV or JSON spreadsheets
- Move wishlist items into the collection
- Refresh series issue counts from League of Comic Geeks

Use "comicvault command --help" to see the flags of each command.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from this file before .env")
}
