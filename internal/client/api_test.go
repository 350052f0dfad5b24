package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAPIClient(APIConfig{BaseURL: srv.URL + "/", AdminToken: "secret"})
}

func TestAPIClient_StartTask(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PathRunTask, r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Admin-Token"))
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"task_id":"abc","status":"running"}`))
	})

	resp, err := api.StartTask(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.TaskID)
}

func TestAPIClient_StartTaskWithoutBody(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	resp, err := api.StartTask(context.Background())
	require.NoError(t, err)
	assert.Empty(t, resp.TaskID)
}

func TestAPIClient_StartTaskRejected(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := api.StartTask(context.Background())
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.Equal(t, "boom", statusErr.Body)
}

func TestAPIClient_TaskStatus(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathTaskStatus, r.URL.Path)
		assert.Equal(t, "a b", r.URL.Query().Get("task_id"))
		_, _ = w.Write([]byte(`{"task_running":true,"task_id":"a b","progress":40,"message":"Parsing export"}`))
	})

	status, err := api.TaskStatus(context.Background(), "a b")
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.Equal(t, 40, status.Progress)
	assert.Equal(t, "Parsing export", status.Message)
}

func TestAPIClient_TaskStatusErrors(t *testing.T) {
	tests := []struct {
		name string
		code int
		body string
		want error
	}{
		{name: "server error", code: http.StatusServiceUnavailable, body: "down", want: ErrPollTransport},
		{name: "not json", code: http.StatusOK, body: "<html>", want: ErrMalformedResponse},
		{name: "missing field", code: http.StatusOK, body: `{"running":false}`, want: ErrMalformedResponse},
		{name: "wrong type", code: http.StatusOK, body: `{"task_running":"no"}`, want: ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := api.TaskStatus(context.Background(), "")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAPIClient_TaskStatusUnknownTask(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"task: not found"}`))
	})

	_, err := api.TaskStatus(context.Background(), "lost")
	assert.ErrorIs(t, err, ErrTaskGone)
	assert.NotErrorIs(t, err, ErrPollTransport)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)

	_, err = api.TaskStatus(context.Background(), "")
	assert.ErrorIs(t, err, ErrPollTransport)
}

func TestAPIClient_TaskStatusNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	api := NewAPIClient(APIConfig{BaseURL: srv.URL})

	_, err := api.TaskStatus(context.Background(), "")
	assert.ErrorIs(t, err, ErrPollTransport)
}

func TestAPIClient_RefreshCache(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, PathRefreshCache, r.URL.Path)
		http.NotFound(w, r)
	})

	err := api.RefreshCache(context.Background())
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
}

func TestAPIClient_Statistics(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"date":"2024-01-02","location":"DC1","critical":4,"immediate":1,"warning":0,"total":5,"color":"#f8d7da","customer":"Acme"},
			{"date":"Missing","location":"DC2","critical":0,"immediate":0,"warning":0,"total":0,"color":""}
		]`))
	})

	stats, err := api.Statistics(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "DC1", stats[0].Location)
	assert.Equal(t, "#f8d7da", stats[0].Color)
	assert.Equal(t, "Missing", stats[1].Date)
}

func TestAPIClient_StatisticsMalformed(t *testing.T) {
	for name, body := range map[string]string{
		"not an array":  `{"rows":[]}`,
		"missing color": `[{"date":"2024-01-02","location":"DC1","critical":4,"immediate":1,"warning":0,"total":5}]`,
		"bad count":     `[{"date":"2024-01-02","location":"DC1","critical":"x","immediate":1,"warning":0,"total":5,"color":""}]`,
	} {
		t.Run(name, func(t *testing.T) {
			api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			_, err := api.Statistics(context.Background())
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}
