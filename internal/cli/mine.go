package cli

import (
	"github.com/spf13/cobra"

	"github.com/localharvest/localharvest/internal/client"
)

func newMineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List your own listings",
		Long:  "List the listings you posted, so you can edit or remove them.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(client.ListOptions{Mine: true}, false)
		},
	}
}
