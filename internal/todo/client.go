package todo

import (
	"context"
	"fmt"

	todohttp "github.com/leg100/todo/internal/http"
)

// Client accesses todos on a remote todod via its API.
type Client struct {
	*todohttp.Client
}

func (c *Client) ListTodos(ctx context.Context) ([]*Todo, error) {
	req, err := c.NewRequest("GET", "todos", nil)
	if err != nil {
		return nil, err
	}
	var list []*Todo
	if err := c.Do(ctx, req, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) CreateTodo(ctx context.Context, opts CreateOptions) (*Todo, error) {
	req, err := c.NewRequest("POST", "todos", &opts)
	if err != nil {
		return nil, err
	}
	var todo Todo
	if err := c.Do(ctx, req, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (c *Client) UpdateTodo(ctx context.Context, id int64, opts UpdateOptions) (*Todo, error) {
	req, err := c.NewRequest("PUT", fmt.Sprintf("todos/%d", id), &opts)
	if err != nil {
		return nil, err
	}
	var todo Todo
	if err := c.Do(ctx, req, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (c *Client) DeleteTodo(ctx context.Context, id int64) error {
	req, err := c.NewRequest("DELETE", fmt.Sprintf("todos/%d", id), nil)
	if err != nil {
		return err
	}
	return c.Do(ctx, req, nil)
}
