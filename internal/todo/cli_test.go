package todo

import (
	"bytes"
	"context"
	"testing"

	"github.com/leg100/todo/internal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLI(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		todos   []*Todo
		want    string
		wantErr error
		// check the options received by the fake service
		check func(t *testing.T, f *fakeCLIService)
	}{
		{
			name: "list",
			args: []string{"list"},
			todos: []*Todo{
				{ID: 1, Text: "Todo 1"},
				{ID: 2, Text: "Todo 2", Completed: true},
			},
			want: "ID  DONE  TEXT\n1         Todo 1\n2   x     Todo 2\n",
		},
		{
			name:  "add",
			args:  []string{"add", "New Todo"},
			todos: []*Todo{},
			want:  "Successfully created todo 3\n",
			check: func(t *testing.T, f *fakeCLIService) {
				assert.Equal(t, "New Todo", *f.created.Text)
			},
		},
		{
			name:  "edit text only",
			args:  []string{"edit", "1", "--text", "Updated Todo"},
			todos: []*Todo{{ID: 1, Text: "Todo 1"}},
			want:  "Successfully updated todo 1\n",
			check: func(t *testing.T, f *fakeCLIService) {
				assert.Equal(t, int64(1), f.updatedID)
				assert.Equal(t, "Updated Todo", *f.updated.Text)
				assert.Nil(t, f.updated.Completed)
			},
		},
		{
			name:  "edit completed only",
			args:  []string{"edit", "1", "--completed=false"},
			todos: []*Todo{{ID: 1, Text: "Todo 1", Completed: true}},
			want:  "Successfully updated todo 1\n",
			check: func(t *testing.T, f *fakeCLIService) {
				assert.Nil(t, f.updated.Text)
				assert.False(t, *f.updated.Completed)
			},
		},
		{
			name:  "done",
			args:  []string{"done", "1"},
			todos: []*Todo{{ID: 1, Text: "Todo 1"}},
			want:  "Successfully completed todo 1\n",
			check: func(t *testing.T, f *fakeCLIService) {
				assert.Nil(t, f.updated.Text)
				assert.True(t, *f.updated.Completed)
			},
		},
		{
			name:  "delete",
			args:  []string{"delete", "1"},
			todos: []*Todo{{ID: 1, Text: "Todo 1"}},
			want:  "Successfully deleted todo 1\n",
			check: func(t *testing.T, f *fakeCLIService) {
				assert.Equal(t, int64(1), f.deletedID)
			},
		},
		{
			name:    "delete missing todo",
			args:    []string{"delete", "9999"},
			todos:   []*Todo{},
			wantErr: internal.ErrResourceNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCLIService{todos: tt.todos}
			cmd := newFakeCLI(fake)
			cmd.SetArgs(tt.args)
			got := bytes.Buffer{}
			cmd.SetOut(&got)

			err := cmd.Execute()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
			if tt.check != nil {
				tt.check(t, fake)
			}
		})
	}
}

func TestCLI_InvalidID(t *testing.T) {
	cmd := newFakeCLI(&fakeCLIService{})
	cmd.SetArgs([]string{"done", "abc"})
	cmd.SetOut(&bytes.Buffer{})

	err := cmd.Execute()
	assert.EqualError(t, err, "invalid todo id: abc")
}

func newFakeCLI(svc cliService) *cobra.Command {
	cli := &CLI{cliService: svc}
	cmd := &cobra.Command{Use: "todos"}
	cli.addSubcommands(cmd)
	return cmd
}

type fakeCLIService struct {
	todos []*Todo

	created   CreateOptions
	updatedID int64
	updated   UpdateOptions
	deletedID int64
}

func (f *fakeCLIService) ListTodos(context.Context) ([]*Todo, error) {
	return f.todos, nil
}

func (f *fakeCLIService) CreateTodo(_ context.Context, opts CreateOptions) (*Todo, error) {
	f.created = opts
	return &Todo{ID: 3, Text: *opts.Text}, nil
}

func (f *fakeCLIService) UpdateTodo(_ context.Context, id int64, opts UpdateOptions) (*Todo, error) {
	f.updatedID = id
	f.updated = opts
	for _, t := range f.todos {
		if t.ID == id {
			t.Update(opts)
			return t, nil
		}
	}
	return nil, internal.ErrResourceNotFound
}

func (f *fakeCLIService) DeleteTodo(_ context.Context, id int64) error {
	f.deletedID = id
	for _, t := range f.todos {
		if t.ID == id {
			return nil
		}
	}
	return internal.ErrResourceNotFound
}

