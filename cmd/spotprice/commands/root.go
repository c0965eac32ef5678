package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "spotprice",
	Short:         "spotprice prints the current Flick Electric spot price in cents.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		price, err := service.Resolve(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%.1f\n", price)
		return nil
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
