package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_UnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/core/nothing-here/", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, map[string]string{"detail": "Not found."}, decode[map[string]string](t, w))
}

func TestRouter_WrongMethod(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodDelete, "/user/login", "", nil)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, `Method "DELETE" not allowed.`, decode[map[string]string](t, w)["detail"])
}
