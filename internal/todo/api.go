package todo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/leg100/todo/internal"
	todohttp "github.com/leg100/todo/internal/http"
	"github.com/leg100/todo/internal/http/decode"
	"github.com/leg100/todo/internal/json"
	"github.com/leg100/todo/internal/logr"
)

const (
	notFoundMessage = "todo not found"
	deletedMessage  = "todo deleted"
)

type (
	api struct {
		logr.Logger

		Service apiService
	}

	apiService interface {
		ListTodos(ctx context.Context) ([]*Todo, error)
		CreateTodo(ctx context.Context, opts CreateOptions) (*Todo, error)
		UpdateTodo(ctx context.Context, id int64, opts UpdateOptions) (*Todo, error)
		DeleteTodo(ctx context.Context, id int64) error
	}

	routeParams struct {
		ID int64 `schema:"id,required"`
	}
)

func (a *api) addHandlers(r *mux.Router) {
	r.Handle("/todos", todohttp.ETag(a.Logger)(http.HandlerFunc(a.list))).Methods("GET")
	r.HandleFunc("/todos", a.create).Methods("POST")
	r.HandleFunc("/todos/{id}", a.update).Methods("PUT")
	r.HandleFunc("/todos/{id}", a.delete).Methods("DELETE")
}

func (a *api) list(w http.ResponseWriter, r *http.Request) {
	todos, err := a.Service.ListTodos(r.Context())
	if err != nil {
		a.error(w, err)
		return
	}
	todohttp.JSON(w, http.StatusOK, todos)
}

func (a *api) create(w http.ResponseWriter, r *http.Request) {
	var opts CreateOptions
	if err := unmarshal(r.Body, &opts); err != nil {
		a.error(w, err)
		return
	}
	todo, err := a.Service.CreateTodo(r.Context(), opts)
	if err != nil {
		a.error(w, err)
		return
	}
	todohttp.JSON(w, http.StatusCreated, todo)
}

func (a *api) update(w http.ResponseWriter, r *http.Request) {
	var params routeParams
	if err := decode.Route(&params, r); err != nil {
		// an unparseable ID cannot identify a todo
		a.error(w, internal.ErrResourceNotFound)
		return
	}
	var opts UpdateOptions
	if err := unmarshal(r.Body, &opts); err != nil {
		a.error(w, err)
		return
	}
	todo, err := a.Service.UpdateTodo(r.Context(), params.ID, opts)
	if err != nil {
		a.error(w, err)
		return
	}
	todohttp.JSON(w, http.StatusOK, todo)
}

func (a *api) delete(w http.ResponseWriter, r *http.Request) {
	var params routeParams
	if err := decode.Route(&params, r); err != nil {
		a.error(w, internal.ErrResourceNotFound)
		return
	}
	if err := a.Service.DeleteTodo(r.Context(), params.ID); err != nil {
		a.error(w, err)
		return
	}
	todohttp.JSON(w, http.StatusOK, todohttp.MessageResponse{Message: deletedMessage})
}

// error maps a todo error to an http error response. Errors that aren't
// the client's fault are logged and reported without detail.
func (a *api) error(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, internal.ErrResourceNotFound):
		todohttp.Error(w, http.StatusNotFound, notFoundMessage)
	case errors.Is(err, internal.ErrInvalidInput):
		todohttp.Error(w, http.StatusBadRequest, err.Error())
	default:
		a.Logger.Error(err, "handling request")
		todohttp.Error(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

// unmarshal decodes a JSON request body into v. An empty body leaves v
// untouched.
func unmarshal(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return internal.InvalidParameterError(fmt.Sprintf("invalid request body: %s", err))
	}
	return nil
}
