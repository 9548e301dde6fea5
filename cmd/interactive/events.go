package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/R0GUET3CHNO/interactive/core/protocol"
)

func newEventsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Print kernel events as they arrive, until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.newBridge()
			if err != nil {
				return err
			}
			defer b.Close()

			c, err := b.Client(cmd.Context(), executionClientKey)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sub := c.Transport().SubscribeToKernelEvents(func(env protocol.EventEnvelope) {
				line, err := json.Marshal(env)
				if err != nil {
					return
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(line))
			})
			defer sub.Dispose()

			<-ctx.Done()
			return nil
		},
	}
}
