/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/sophia-wwww/accountd/config"
	"github.com/sophia-wwww/accountd/internal/mq"
	"github.com/spf13/cobra"
)

// eventsCmd represents the events command.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect account events",
}

var eventsListenCmd = &cobra.Command{
	Use:   "listen [channel]",
	Short: "Consume account events and print them to stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		broker, err := mq.NewFromConfig(cmd.Context(), cfg.MQ)
		if err != nil {
			return err
		}
		if broker == nil {
			return errors.New("no mq backend configured")
		}
		defer func() {
			_ = broker.Close()
		}()

		channel := "user.registered"
		if len(args) == 1 {
			channel = args[0]
		}

		err = broker.Subscribe(cmd.Context(), channel, func(_ context.Context, msg mq.Message) error {
			fmt.Printf("%s %s\n", msg.ID, msg.Data)
			return nil
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsListenCmd)
}
