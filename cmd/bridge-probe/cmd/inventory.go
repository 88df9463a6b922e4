package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Connect and print the discovered devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := connectFacade(context.Background())
		if err != nil {
			return err
		}
		defer b.Cleanup()

		for _, d := range b.Devices() {
			fmt.Printf("%s\t%s\tdevType=%d\tdimmable=%v\n", d.DeviceID, d.Name, d.DevType, d.Dimmable)
		}
		return nil
	},
}

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "Connect and print the discovered rooms",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := connectFacade(context.Background())
		if err != nil {
			return err
		}
		defer b.Cleanup()

		for _, r := range b.Rooms() {
			fmt.Printf("%s\t%s\n", r.RoomID, r.Name)
		}
		return nil
	},
}

var scenesCmd = &cobra.Command{
	Use:   "scenes",
	Short: "Connect and print the discovered scenes",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := connectFacade(context.Background())
		if err != nil {
			return err
		}
		defer b.Cleanup()

		for _, s := range b.Scenes() {
			fmt.Printf("%d\t%s\n", s.SceneID, s.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd, roomsCmd, scenesCmd)
}
