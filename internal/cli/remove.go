package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove one of your listings",
		Long:  "Remove a listing you posted. Asks for confirmation unless --yes is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(args[0], yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func runRemove(id string, yes bool) error {
	if !yes {
		fmt.Printf("Remove listing %s? [y/N] ", id)
		reader := bufio.NewReader(os.Stdin)
		answer, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := newAPIClient().DeleteListing(id); err != nil {
		return err
	}

	if isJSON() {
		return printJSON(map[string]interface{}{
			"id":      id,
			"removed": true,
		})
	}

	fmt.Printf("Listing %s removed.\n", id)
	return nil
}
