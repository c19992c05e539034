package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	cmdutil "github.com/leg100/todo/cmd"
	"github.com/leg100/todo/internal"
	"github.com/leg100/todo/internal/daemon"
	"github.com/leg100/todo/internal/kv"
	"github.com/leg100/todo/internal/logr"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func main() {
	// Configure ^C to terminate program
	ctx, cancel := context.WithCancel(context.Background())
	cmdutil.CatchCtrlC(cancel)

	if err := parseFlags(ctx, os.Args[1:], os.Stdout); err != nil {
		cmdutil.PrintError(err)
		os.Exit(1)
	}
}

func parseFlags(ctx context.Context, args []string, out io.Writer) error {
	cfg := daemon.NewConfig()

	cmd := &cobra.Command{
		Use:           "todod",
		Short:         "todo daemon",
		Long:          "todod serves a todo list over an HTTP/JSON API protected by basic authentication.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       internal.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logr.New(&cfg.LogConfig)
			if err != nil {
				return err
			}

			d, err := daemon.New(logger, cfg)
			if err != nil {
				return err
			}
			// block until ^C received
			return d.Start(cmd.Context(), make(chan struct{}))
		},
	}
	cmd.SetArgs(args)
	cmd.SetOut(out)

	cmd.Flags().StringVar(&cfg.Address, "address", daemon.DefaultAddress, "Listening address")
	cmd.Flags().StringVar(&cfg.Store.Backend, "store", kv.DefaultBackend, fmt.Sprintf("Store backend: %s", strings.Join(kv.Backends, ", ")))
	cmd.Flags().StringVar(&cfg.Store.Path, "data-dir", daemon.DefaultDataDir, "Directory in which to persist todos")
	cmd.Flags().StringVar(&cfg.Username, "basic-auth-username", "", "Username required of every request. Required.")
	cmd.Flags().StringVar(&cfg.Password, "basic-auth-password", "", "Password required of every request. Required.")
	cmd.Flags().BoolVar(&cfg.EnableRequestLogging, "log-http-requests", false, "Log HTTP requests")
	cmd.Flags().DurationVar(&cfg.GCInterval, "gc-interval", daemon.DefaultGCInterval, "Interval between store garbage collections. Zero disables collection.")

	logr.LoadConfigFromFlags(cmd.Flags(), &cfg.LogConfig)

	if err := cmdutil.SetFlagsFromEnvVariables(cmdutil.DaemonEnvPrefix, cmd.Flags()); err != nil {
		return errors.Wrap(err, "failed to populate config from environment vars")
	}

	return cmd.ExecuteContext(ctx)
}
