package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/localharvest/localharvest/internal/listing"
)

// printJSON marshals v as indented JSON and writes it to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printListingDetail prints a single listing in text format.
func printListingDetail(l *listing.Listing) {
	fmt.Printf("Listing %s\n", l.ID)
	fmt.Printf("  Item:     %s\n", l.ItemName)
	fmt.Printf("  Offer:    %s\n", offerLabel(l.OfferType))
	if l.Description != "" {
		fmt.Printf("  Details:  %s\n", l.Description)
	}
	fmt.Printf("  ZIP:      %s\n", l.PostalCode)
	fmt.Printf("  Contact:  %s (%s)\n", l.Contact, l.ContactMethod)
	if l.Price != "" {
		fmt.Printf("  Price:    %s\n", l.Price)
	}
	if l.HasImage() {
		fmt.Printf("  Image:    %d bytes\n", len(l.Image))
	}
	fmt.Printf("  Posted:   %s\n", l.CreatedAt.Format("2006-01-02 15:04"))
}

// printListingTable prints listings as a formatted table.
func printListingTable(listings []*listing.Listing) error {
	if len(listings) == 0 {
		fmt.Println("No listings found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tITEM\tOFFER\tZIP\tPRICE\tPOSTED"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t----\t-----\t---\t-----\t------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, l := range listings {
		price := "-"
		if l.Price != "" {
			price = l.Price
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(l.ID), truncate(l.ItemName, 30), offerLabel(l.OfferType),
			l.PostalCode, price, l.CreatedAt.Format("2006-01-02")); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Printf("\nTotal: %d listings\n", len(listings))
	return nil
}

// offerLabel returns a human-readable label for an offer type.
func offerLabel(t listing.OfferType) string {
	switch t {
	case listing.OfferTrade:
		return "Trade"
	case listing.OfferSell:
		return "Sell"
	case listing.OfferTradeOrSell:
		return "Trade or Sell"
	default:
		return string(t)
	}
}

// shortID returns the leading segment of a UUID for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
