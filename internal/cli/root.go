// Package cli defines the cobra command tree for localharvest.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/localharvest/localharvest/internal/client"
)

var (
	flagFormat string
	flagDB     string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lh",
		Short:         "Trade and sell home-grown produce with your neighbors",
		Long:          "A neighborhood classifieds board for home-grown produce. Post listings, browse by ZIP code, and arrange trades or sales directly with your neighbors.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: ~/.config/lh/listings.db)")

	root.AddCommand(
		newPostCmd(),
		newListCmd(),
		newMineCmd(),
		newShowCmd(),
		newEditCmd(),
		newRemoveCmd(),
		newServeCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

// newAPIClient creates an HTTP client for the localharvest API.
func newAPIClient() *client.Client {
	return client.New(getServerURL(), getAPIKey())
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}
