package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect to the bridge and hold the session open until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		b, err := connectFacade(ctx)
		if err != nil {
			return err
		}
		fmt.Println("connected")

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop

		return b.Cleanup()
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
}
