// Package cli provides the CLI client, i.e. the `todo` binary.
package cli

import (
	"context"
	"io"

	cmdutil "github.com/leg100/todo/cmd"
	"github.com/leg100/todo/internal/http"
	"github.com/leg100/todo/internal/todo"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// CLI is the `todo` cli application
type CLI struct {
	httpClient *http.Client
}

func NewCLI() *CLI {
	return &CLI{
		httpClient: &http.Client{},
	}
}

func (a *CLI) Run(ctx context.Context, args []string, out io.Writer) error {
	var cfg http.ClientConfig

	cmd := &cobra.Command{
		Use:               "todo",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.newClient(&cfg),
	}

	cmd.PersistentFlags().StringVar(&cfg.URL, "address", http.DefaultURL, "Address of todod server")
	cmd.PersistentFlags().StringVar(&cfg.Username, "username", "", "Basic auth username")
	cmd.PersistentFlags().StringVar(&cfg.Password, "password", "", "Basic auth password")
	cmd.PersistentFlags().BoolVar(&cfg.RetryRequests, "retry", false, "Retry requests upon transient errors")

	cmd.SetArgs(args)
	cmd.SetOut(out)

	cmd.AddCommand(todo.NewCommand(a.httpClient))

	if err := cmdutil.SetFlagsFromEnvVariables(cmdutil.ClientEnvPrefix, cmd.PersistentFlags()); err != nil {
		return errors.Wrap(err, "failed to populate config from environment vars")
	}

	return cmd.ExecuteContext(ctx)
}

func (a *CLI) newClient(cfg *http.ClientConfig) func(*cobra.Command, []string) error {
	return func(*cobra.Command, []string) error {
		httpClient, err := http.NewClient(*cfg)
		if err != nil {
			return err
		}
		*a.httpClient = *httpClient
		return nil
	}
}
