package api

import (
	"encoding/json"
	"fmt"
	"github.com/aleph-zero/flutterstack/service/registry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStackHandler_Lifecycle(t *testing.T) {
	server := httptest.NewServer(initializeTestRouter(t))
	defer server.Close()

	var created registry.Model
	status := do(t, server, http.MethodPut, "/stacks", "[19, 47, 74, 91]", &created)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, []int{19, 47, 74, 91}, created.Values)
	require.Equal(t, "[19, 47, 74, 91]", created.Rendered)

	var pushed registry.Model
	status = do(t, server, http.MethodPost, "/stacks/"+created.ID+"/push", "5 6\n7", &pushed)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 7, pushed.Length)

	var popped PopResponse
	status = do(t, server, http.MethodPost, "/stacks/"+created.ID+"/pop", "", &popped)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 7, popped.Value)

	var reversed registry.Model
	status = do(t, server, http.MethodPost, "/stacks/"+created.ID+"/reverse", "", &reversed)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, []int{6, 5, 91, 74, 47, 19}, reversed.Values)

	var cmp registry.Comparison
	status = do(t, server, http.MethodGet, fmt.Sprintf("/stacks/%s/compare/%s", created.ID, reversed.ID), "", &cmp)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, registry.Comparison{Compare: 1, Equal: false}, cmp)

	var resized registry.Model
	status = do(t, server, http.MethodPost, "/stacks/"+created.ID+"/resize?n=2", "", &resized)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []int{19, 47}, resized.Values)

	var assigned registry.Model
	status = do(t, server, http.MethodPost, "/stacks/"+created.ID+"/assign?n=3&value=-1", "", &assigned)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []int{-1, -1, -1}, assigned.Values)

	status = do(t, server, http.MethodPost, fmt.Sprintf("/stacks/%s/swap/%s", created.ID, reversed.ID), "", nil)
	require.Equal(t, http.StatusNoContent, status)

	var list []registry.Model
	status = do(t, server, http.MethodGet, "/stacks", "", &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list, 2)
	require.Equal(t, reversed.ID, list[0].ID)
	require.Equal(t, []int{-1, -1, -1}, list[0].Values)

	status = do(t, server, http.MethodDelete, "/stacks/"+created.ID, "", nil)
	require.Equal(t, http.StatusNoContent, status)
	status = do(t, server, http.MethodGet, "/stacks/"+created.ID, "", nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestStackHandler_Errors(t *testing.T) {
	server := httptest.NewServer(initializeTestRouter(t))
	defer server.Close()

	var created registry.Model
	require.Equal(t, http.StatusCreated, do(t, server, http.MethodPut, "/stacks", "", &created))
	require.Empty(t, created.Values)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"pop empty", http.MethodPost, "/stacks/" + created.ID + "/pop", "", http.StatusConflict},
		{"unknown stack", http.MethodGet, "/stacks/nope", "", http.StatusNotFound},
		{"bad body", http.MethodPost, "/stacks/" + created.ID + "/push", `["a"]`, http.StatusBadRequest},
		{"fractional body", http.MethodPut, "/stacks", `1.5`, http.StatusBadRequest},
		{"missing n", http.MethodPost, "/stacks/" + created.ID + "/resize", "", http.StatusBadRequest},
		{"negative n", http.MethodPost, "/stacks/" + created.ID + "/resize?n=-2", "", http.StatusBadRequest},
		{"oversized n", http.MethodPost, "/stacks/" + created.ID + "/resize?n=1000000000000", "", http.StatusBadRequest},
		{"overflowing n", http.MethodPost, "/stacks/" + created.ID + "/resize?n=9223372036854775807", "", http.StatusBadRequest},
		{"oversized assign", http.MethodPost, "/stacks/" + created.ID + "/assign?n=1000000000000&value=0", "", http.StatusBadRequest},
		{"bad value", http.MethodPost, "/stacks/" + created.ID + "/assign?n=2&value=x", "", http.StatusBadRequest},
		{"swap unknown", http.MethodPost, "/stacks/" + created.ID + "/swap/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res ErrResponse
			status := do(t, server, tt.method, tt.path, tt.body, &res)
			require.Equal(t, tt.status, status)
			require.Equal(t, http.StatusText(tt.status), res.StatusText)
			require.NotEmpty(t, res.ErrorText)
		})
	}
}

func TestProcessJsonStream(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []int
		err      bool
	}{
		{"empty", "", nil, false},
		{"whitespace", " \n\t", nil, false},
		{"array", "[1, 2, 3]", []int{1, 2, 3}, false},
		{"padded array", "  [4]", []int{4}, false},
		{"empty array", "[]", nil, false},
		{"stream", "1\n-2 3", []int{1, -2, 3}, false},
		{"unterminated array", "[1, 2", nil, true},
		{"object", `{"a": 1}`, nil, true},
		{"null value", "1 null", nil, true},
		{"null item", "[null]", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int
			err := ProcessJsonStream(strings.NewReader(tt.body), func(v int) error {
				got = append(got, v)
				return nil
			})
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, got)
		})
	}
}

func do(t *testing.T, server *httptest.Server, method, path, body string, out any) int {
	t.Helper()

	req, err := http.NewRequest(method, server.URL+path, strings.NewReader(body))
	require.NoError(t, err)

	res, err := server.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if out != nil && len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, out), string(data))
	}
	return res.StatusCode
}

func initializeTestRouter(t *testing.T) chi.Router {
	router := chi.NewRouter()
	router.Use(render.SetContentType(render.ContentTypeJSON))

	handler := NewStackHandler(registry.NewService(t.TempDir()))
	router.Mount("/stacks", handler.Routes())

	return router
}
