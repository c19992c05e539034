package todo

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/leg100/todo/internal"
	todohttp "github.com/leg100/todo/internal/http"
	"github.com/spf13/cobra"
)

type (
	CLI struct {
		cliService
	}

	// cliService provides the cli with access to todos
	cliService interface {
		ListTodos(ctx context.Context) ([]*Todo, error)
		CreateTodo(ctx context.Context, opts CreateOptions) (*Todo, error)
		UpdateTodo(ctx context.Context, id int64, opts UpdateOptions) (*Todo, error)
		DeleteTodo(ctx context.Context, id int64) error
	}
)

// NewCommand constructs the todos command. The client is populated by the
// parent command before any subcommand runs.
func NewCommand(client *todohttp.Client) *cobra.Command {
	cli := &CLI{}
	cmd := &cobra.Command{
		Use:   "todos",
		Short: "Todo management",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if root := cmd.Root(); root.PersistentPreRunE != nil {
				if err := root.PersistentPreRunE(root, args); err != nil {
					return err
				}
			}
			cli.cliService = &Client{Client: client}
			return nil
		},
	}
	cli.addSubcommands(cmd)
	return cmd
}

func (a *CLI) addSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(a.listCommand())
	cmd.AddCommand(a.addCommand())
	cmd.AddCommand(a.editCommand())
	cmd.AddCommand(a.doneCommand())
	cmd.AddCommand(a.deleteCommand())
}

func (a *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List todos",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			todos, err := a.ListTodos(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDONE\tTEXT")
			for _, t := range todos {
				done := " "
				if t.Completed {
					done = "x"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\n", t.ID, done, t.Text)
			}
			return w.Flush()
		},
	}
}

func (a *CLI) addCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "add [text]",
		Short:         "Add a todo",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			todo, err := a.CreateTodo(cmd.Context(), CreateOptions{
				Text: internal.String(args[0]),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully created todo %d\n", todo.ID)
			return nil
		},
	}
}

func (a *CLI) editCommand() *cobra.Command {
	var (
		text      string
		completed bool
	)
	cmd := &cobra.Command{
		Use:           "edit [id]",
		Short:         "Edit a todo",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			// only send the fields the user set
			var opts UpdateOptions
			if cmd.Flags().Changed("text") {
				opts.Text = &text
			}
			if cmd.Flags().Changed("completed") {
				opts.Completed = &completed
			}
			todo, err := a.UpdateTodo(cmd.Context(), id, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully updated todo %d\n", todo.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "New text for the todo")
	cmd.Flags().BoolVar(&completed, "completed", false, "Mark the todo as completed or not")
	return cmd
}

func (a *CLI) doneCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "done [id]",
		Short:         "Mark a todo as completed",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.UpdateTodo(cmd.Context(), id, UpdateOptions{
				Completed: internal.Bool(true),
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully completed todo %d\n", id)
			return nil
		},
	}
}

func (a *CLI) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "delete [id]",
		Short:         "Delete a todo",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.DeleteTodo(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully deleted todo %d\n", id)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid todo id: %s", s)
	}
	return id, nil
}
