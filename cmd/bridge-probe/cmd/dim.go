package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var dimCmd = &cobra.Command{
	Use:   "dim <deviceID> <value>",
	Short: "Connect and set a device's dimmer value (1-99)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid dim value %q: %w", args[1], err)
		}

		ctx := context.Background()
		b, err := connectFacade(ctx)
		if err != nil {
			return err
		}
		defer b.Cleanup()

		if err := b.SetDimmerValue(ctx, args[0], value); err != nil {
			return err
		}
		fmt.Println("ok")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dimCmd)
}
