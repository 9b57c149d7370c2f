package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/localharvest/localharvest/internal/client"
)

func newPostCmd() *cobra.Command {
	var (
		offerType     string
		description   string
		postalCode    string
		contactMethod string
		contact       string
		price         string
		imagePath     string
	)

	cmd := &cobra.Command{
		Use:   "post <item name>",
		Short: "Post a new listing",
		Long:  "Post a produce listing for your neighbors to browse. Pure-trade listings carry no price.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub := client.Submission{
				ItemName:      args[0],
				OfferType:     offerType,
				Description:   description,
				PostalCode:    postalCode,
				ContactMethod: contactMethod,
				Contact:       contact,
				Price:         price,
			}

			if imagePath != "" {
				data, err := os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("reading image: %w", err)
				}
				sub.Image = data
			}

			l, err := newAPIClient().CreateListing(sub)
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(l)
			}

			fmt.Printf("Listing posted.\n\n")
			printListingDetail(l)
			return nil
		},
	}

	cmd.Flags().StringVar(&offerType, "type", "", "offer type: trade, sell, or trade_or_sell (required)")
	cmd.Flags().StringVar(&description, "desc", "", "description of the item")
	cmd.Flags().StringVar(&postalCode, "zip", "", "postal code where the item is available (required)")
	cmd.Flags().StringVar(&contactMethod, "contact-method", "", "preferred contact method: email, phone, or both")
	cmd.Flags().StringVar(&contact, "contact", "", "contact address or number (required)")
	cmd.Flags().StringVar(&price, "price", "", "asking price (ignored for trade listings)")
	cmd.Flags().StringVar(&imagePath, "image", "", "path to an image file to attach")

	return cmd
}
