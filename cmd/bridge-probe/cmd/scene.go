package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var activateSceneCmd = &cobra.Command{
	Use:   "activate-scene <sceneID>",
	Short: "Connect and activate a scene",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sceneID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid scene id %q: %w", args[0], err)
		}

		ctx := context.Background()
		b, err := connectFacade(ctx)
		if err != nil {
			return err
		}
		defer b.Cleanup()

		if err := b.ActivateScene(ctx, sceneID); err != nil {
			return err
		}
		fmt.Println("ok")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(activateSceneCmd)
}
