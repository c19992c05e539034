// Package todo provides the todo list: its records, their storage, the HTTP
// API and a CLI client.
package todo

import (
	"log/slog"
	"time"

	"github.com/leg100/todo/internal"
)

// ErrTextRequired is returned when a todo is created without any text.
var ErrTextRequired = internal.InvalidParameterError("text is required")

type (
	// Todo is an item on the todo list.
	Todo struct {
		// ID is assigned upon creation, from the creation time in
		// milliseconds since the epoch.
		ID        int64  `json:"id"`
		Text      string `json:"text"`
		Completed bool   `json:"completed"`
	}

	CreateOptions struct {
		Text *string `json:"text"`
	}

	// UpdateOptions specifies the fields to update. A nil field leaves the
	// existing value unchanged.
	UpdateOptions struct {
		Text      *string `json:"text,omitempty"`
		Completed *bool   `json:"completed,omitempty"`
	}

	factory struct {
		clock func() time.Time
	}
)

func (f *factory) newTodo(opts CreateOptions) (*Todo, error) {
	if opts.Text == nil || *opts.Text == "" {
		return nil, ErrTextRequired
	}
	return &Todo{
		ID:   f.clock().UnixMilli(),
		Text: *opts.Text,
	}, nil
}

// Update merges the options into the todo. The ID is never changed.
func (t *Todo) Update(opts UpdateOptions) {
	if opts.Text != nil {
		t.Text = *opts.Text
	}
	if opts.Completed != nil {
		t.Completed = *opts.Completed
	}
}

// LogValue implements slog.LogValuer.
func (t *Todo) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("id", t.ID),
		slog.Bool("completed", t.Completed),
	)
}
