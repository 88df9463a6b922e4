package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var switchCmd = &cobra.Command{
	Use:   "switch <deviceID> <on|off>",
	Short: "Connect and switch a device on or off",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		on, err := parseOnOff(args[1])
		if err != nil {
			return err
		}

		ctx := context.Background()
		b, err := connectFacade(ctx)
		if err != nil {
			return err
		}
		defer b.Cleanup()

		if err := b.SwitchDevice(ctx, args[0], on); err != nil {
			return err
		}
		fmt.Println("ok")
		return nil
	},
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("expected \"on\" or \"off\", got %q", s)
	}
}

func init() {
	rootCmd.AddCommand(switchCmd)
}
