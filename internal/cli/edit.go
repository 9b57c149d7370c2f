package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/localharvest/localharvest/internal/client"
)

func newEditCmd() *cobra.Command {
	var (
		itemName      string
		offerType     string
		description   string
		postalCode    string
		contactMethod string
		contact       string
		price         string
		imagePath     string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit one of your listings",
		Long:  "Edit a listing you posted. Fields you don't set keep their current values; the listing keeps its ID.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newAPIClient()

			current, err := c.GetListing(args[0])
			if err != nil {
				return err
			}

			// Start from the current values, override with set flags
			sub := client.Submission{
				ItemName:      current.ItemName,
				OfferType:     string(current.OfferType),
				Description:   current.Description,
				PostalCode:    current.PostalCode,
				ContactMethod: string(current.ContactMethod),
				Contact:       current.Contact,
				Price:         current.Price,
			}

			if cmd.Flags().Changed("name") {
				sub.ItemName = itemName
			}
			if cmd.Flags().Changed("type") {
				sub.OfferType = offerType
			}
			if cmd.Flags().Changed("desc") {
				sub.Description = description
			}
			if cmd.Flags().Changed("zip") {
				sub.PostalCode = postalCode
			}
			if cmd.Flags().Changed("contact-method") {
				sub.ContactMethod = contactMethod
			}
			if cmd.Flags().Changed("contact") {
				sub.Contact = contact
			}
			if cmd.Flags().Changed("price") {
				sub.Price = price
			}
			if imagePath != "" {
				data, err := os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("reading image: %w", err)
				}
				sub.Image = data
			}

			updated, err := c.UpdateListing(args[0], sub)
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(updated)
			}

			fmt.Printf("Listing updated.\n\n")
			printListingDetail(updated)
			return nil
		},
	}

	cmd.Flags().StringVar(&itemName, "name", "", "item name")
	cmd.Flags().StringVar(&offerType, "type", "", "offer type: trade, sell, or trade_or_sell")
	cmd.Flags().StringVar(&description, "desc", "", "description of the item")
	cmd.Flags().StringVar(&postalCode, "zip", "", "postal code")
	cmd.Flags().StringVar(&contactMethod, "contact-method", "", "preferred contact method: email, phone, or both")
	cmd.Flags().StringVar(&contact, "contact", "", "contact address or number")
	cmd.Flags().StringVar(&price, "price", "", "asking price")
	cmd.Flags().StringVar(&imagePath, "image", "", "path to a replacement image file")

	return cmd
}
