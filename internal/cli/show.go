package cli

import (
	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := newAPIClient().GetListing(args[0])
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(l)
			}

			printListingDetail(l)
			return nil
		},
	}
}
