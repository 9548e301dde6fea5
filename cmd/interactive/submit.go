package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const executionClientKey = "execution"

func newSubmitCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <code>",
		Short: "Submit code to the remote kernel, fire-and-forget",
		Args:  cobra.ExactArgs(1),
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

			token, err := c.SubmitCode(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "submitted, token %s\n", token)
			return nil
		},
	}
}
