package decode

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/leg100/todo/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routeParams struct {
	ID int64 `schema:"id,required"`
}

func TestRoute(t *testing.T) {
	t.Run("integer", func(t *testing.T) {
		r := mux.SetURLVars(httptest.NewRequest("GET", "/todos/42", nil), map[string]string{"id": "42"})
		var params routeParams
		require.NoError(t, Route(&params, r))
		assert.Equal(t, int64(42), params.ID)
	})
	t.Run("not an integer", func(t *testing.T) {
		r := mux.SetURLVars(httptest.NewRequest("GET", "/todos/abc", nil), map[string]string{"id": "abc"})
		var params routeParams
		assert.Error(t, Route(&params, r))
	})
	t.Run("missing", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/todos", nil)
		var params routeParams
		err := Route(&params, r)
		var missing *internal.MissingParameterError
		assert.True(t, errors.As(err, &missing))
	})
}
