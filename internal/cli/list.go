package cli

import (
	"github.com/spf13/cobra"

	"github.com/localharvest/localharvest/internal/client"
)

func newListCmd() *cobra.Command {
	var opts client.ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Browse listings",
		Long:  "Browse listings, newest first, optionally filtered by ZIP prefix, item name, offer type, or contact.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, !cmd.Flags().Changed("zip"))
		},
	}

	cmd.Flags().StringVar(&opts.PostalCode, "zip", "", `filter by ZIP code prefix (defaults to your home ZIP; pass --zip "" for all)`)
	cmd.Flags().StringVar(&opts.Name, "search", "", "filter by item name substring")
	cmd.Flags().StringVar(&opts.OfferType, "type", "", "filter by offer type (trade|sell|trade_or_sell)")
	cmd.Flags().StringVar(&opts.Contact, "contact", "", "filter by contact substring")

	return cmd
}

func runList(opts client.ListOptions, useHomeZIP bool) error {
	api := newAPIClient()

	// No --zip given: fall back to the caller's home ZIP, if set
	if useHomeZIP {
		if me, err := api.Me(); err == nil {
			opts.PostalCode = me.PostalCode
		}
	}

	listings, err := api.ListListings(opts)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(listings)
	}

	return printListingTable(listings)
}
