package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/R0GUET3CHNO/interactive/bridge"
	"github.com/R0GUET3CHNO/interactive/observability"
)

// rootOptions holds global flags shared by all commands.
type rootOptions struct {
	configFile string
	rootURL    string
	verbose    bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "interactive",
		Short:         "Bridge notebook documents to a remote interactive kernel",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "path to a JSON config file")
	cmd.PersistentFlags().StringVar(&opts.rootURL, "root-url", "", "kernel hub root URL (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose diagnostics on stderr")

	cmd.AddCommand(newConvertCommand(opts))
	cmd.AddCommand(newSubmitCommand(opts))
	cmd.AddCommand(newEventsCommand(opts))

	return cmd
}

func (o *rootOptions) observer() observability.Observer {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return observability.NewSlogObserver(logger)
}

func (o *rootOptions) newBridge() (*bridge.Bridge, error) {
	cfg := bridge.DefaultConfig()
	if o.configFile != "" {
		loaded, err := bridge.LoadConfig(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}
	if o.rootURL != "" {
		cfg.RootURL = o.rootURL
	}

	return bridge.New(&cfg, bridge.WithObserver(o.observer()))
}
