package todo

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/mux"
	"github.com/leg100/todo/internal"
	"github.com/leg100/todo/internal/kv"
	"github.com/leg100/todo/internal/logr"
)

type (
	Service struct {
		logr.Logger

		db  *db
		api *api

		*factory
	}

	Options struct {
		logr.Logger

		Store kv.Store

		// Clock returns the current time, from which new todo IDs are
		// derived. Defaults to time.Now.
		Clock func() time.Time
	}
)

func NewService(opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	svc := Service{
		Logger:  opts.Logger,
		db:      &db{Store: opts.Store},
		factory: &factory{clock: opts.Clock},
	}
	svc.api = &api{
		Logger:  opts.Logger,
		Service: &svc,
	}
	return &svc
}

func (s *Service) AddHandlers(r *mux.Router) {
	s.api.addHandlers(r)
}

// ListTodos lists all todos in ascending order of ID.
func (s *Service) ListTodos(ctx context.Context) ([]*Todo, error) {
	todos, err := s.db.list(ctx)
	if err != nil {
		s.Error(err, "listing todos")
		return nil, err
	}
	s.V(9).Info("listed todos", "count", len(todos))
	return todos, nil
}

func (s *Service) CreateTodo(ctx context.Context, opts CreateOptions) (*Todo, error) {
	todo, err := s.newTodo(opts)
	if err != nil {
		return nil, err
	}
	// NOTE: two todos created within the same millisecond share an ID and
	// the latter overwrites the former.
	if err := s.db.put(ctx, todo); err != nil {
		s.Error(err, "creating todo", "todo", todo)
		return nil, err
	}
	s.V(1).Info("created todo", "todo", todo)
	return todo, nil
}

// UpdateTodo merges the options into an existing todo. Returns
// internal.ErrResourceNotFound if the todo does not exist.
func (s *Service) UpdateTodo(ctx context.Context, id int64, opts UpdateOptions) (*Todo, error) {
	todo, err := s.db.get(ctx, id)
	if err != nil {
		s.logRetrieveError(err, id)
		return nil, err
	}
	todo.Update(opts)
	// the key is authoritative, not whatever ID the stored value carries
	todo.ID = id
	if err := s.db.put(ctx, todo); err != nil {
		s.Error(err, "updating todo", "todo", todo)
		return nil, err
	}
	s.V(1).Info("updated todo", "todo", todo)
	return todo, nil
}

// DeleteTodo deletes an existing todo. Returns internal.ErrResourceNotFound
// if the todo does not exist.
func (s *Service) DeleteTodo(ctx context.Context, id int64) error {
	if _, err := s.db.get(ctx, id); err != nil {
		s.logRetrieveError(err, id)
		return err
	}
	if err := s.db.delete(ctx, id); err != nil {
		s.Error(err, "deleting todo", "id", id)
		return err
	}
	s.V(1).Info("deleted todo", "id", id)
	return nil
}

// logRetrieveError logs a failure to retrieve a todo. A missing todo is the
// caller's mistake and is only logged at debug level.
func (s *Service) logRetrieveError(err error, id int64) {
	if errors.Is(err, internal.ErrResourceNotFound) {
		s.V(1).Info("todo not found", "id", id)
		return
	}
	s.Error(err, "retrieving todo", "id", id)
}
