package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newConvertCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert a notebook document between on-disk formats",
		Long: "Deserializes the input through the remote kernel using the format " +
			"bound to its extension, then serializes it to the output's format.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, output := args[0], args[1]

			b, err := opts.newBridge()
			if err != nil {
				return err
			}
			defer b.Close()

			in, err := b.SerializerFor(filepath.Ext(input))
			if err != nil {
				return err
			}
			out, err := b.SerializerFor(filepath.Ext(output))
			if err != nil {
				return err
			}

			content, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", input, err)
			}

			ctx := cmd.Context()
			doc := in.Deserialize(ctx, content)

			rendered, err := out.Serialize(ctx, doc)
			if err != nil {
				return err
			}

			if err := os.WriteFile(output, rendered, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "converted %s (%d cells) -> %s\n", input, len(doc.Cells), output)
			return nil
		},
	}
}
