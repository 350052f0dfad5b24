package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer mimics the dashboard endpoints.
type fakeServer struct {
	mu            sync.Mutex
	startCode     int
	refreshCode   int
	statuses      []bool
	statistics    string
	statusCalls   int
	refreshCalls  int
	statusTimes   []time.Duration
	clock         *stepClock
	holdStatus    chan struct{}
	statusArrived chan struct{}
}

func (s *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(PathRunTask, func(w http.ResponseWriter, r *http.Request) {
		if s.startCode != 0 && s.startCode != http.StatusAccepted {
			http.Error(w, "failed", s.startCode)
			return
		}
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]string{"task_id": "task-1", "status": "running"})
	})
	mux.HandleFunc(PathTaskStatus, func(w http.ResponseWriter, r *http.Request) {
		if s.statusArrived != nil {
			select {
			case s.statusArrived <- struct{}{}:
			default:
			}
		}
		if s.holdStatus != nil {
			<-s.holdStatus
		}
		s.mu.Lock()
		running := s.statuses[len(s.statuses)-1]
		if s.statusCalls < len(s.statuses) {
			running = s.statuses[s.statusCalls]
		}
		s.statusCalls++
		if s.clock != nil {
			s.statusTimes = append(s.statusTimes, s.clock.elapsed())
		}
		progress := s.statusCalls * 30
		s.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"task_running": running,
			"task_id":      r.URL.Query().Get("task_id"),
			"progress":     progress,
		})
	})
	mux.HandleFunc(PathRefreshCache, func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.refreshCalls++
		s.mu.Unlock()
		if s.refreshCode != 0 && s.refreshCode != http.StatusOK {
			http.Error(w, "nope", s.refreshCode)
			return
		}
		_, _ = w.Write([]byte(`{"status":"success","message":"cache cleared"}`))
	})
	mux.HandleFunc(PathStatistics, func(w http.ResponseWriter, r *http.Request) {
		body := s.statistics
		if body == "" {
			body = "[]"
		}
		_, _ = w.Write([]byte(body))
	})
	return mux
}

func (s *fakeServer) counts() (status, refresh int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusCalls, s.refreshCalls
}

func newTestDashboard(t *testing.T, srv *fakeServer, env *fakeEnv) *Dashboard {
	t.Helper()
	if srv.clock == nil {
		srv.clock = newStepClock()
	}
	ts := httptest.NewServer(srv.handler())
	t.Cleanup(ts.Close)

	return NewDashboard(DashboardConfig{
		API: NewAPIClient(APIConfig{BaseURL: ts.URL}),
		Env: env,
		Poll: PollerConfig{
			Interval:            time.Second,
			MaxTransportRetries: DefaultMaxTransportRetries,
			MaxWait:             DefaultMaxWait,
			Clock:               srv.clock,
		},
	})
}

func TestDashboard_LaunchPollsUntilFinished(t *testing.T) {
	srv := &fakeServer{statuses: []bool{true, true, false}}
	env := &fakeEnv{}
	d := newTestDashboard(t, srv, env)

	require.NoError(t, d.Launch(context.Background()))

	statusCalls, _ := srv.counts()
	assert.Equal(t, 3, statusCalls)
	assert.Equal(t, []time.Duration{0, time.Second, 2 * time.Second}, srv.statusTimes)
	assert.Equal(t, []string{"show_loading", "reload"}, env.recorded())
	assert.Equal(t, []int{30, 60, 90}, env.progress)
	assert.False(t, d.isBusy())
}

func TestDashboard_LaunchRejected(t *testing.T) {
	srv := &fakeServer{startCode: http.StatusInternalServerError, statuses: []bool{false}}
	env := &fakeEnv{}
	d := newTestDashboard(t, srv, env)

	err := d.Launch(context.Background())

	assert.ErrorIs(t, err, ErrLaunchRejected)
	statusCalls, _ := srv.counts()
	assert.Zero(t, statusCalls)
	assert.Equal(t, []string{"show_loading", "hide_loading", "notify:" + MsgTaskFailed}, env.recorded())
	assert.Zero(t, env.count("reload"))
}

func TestDashboard_Refresh(t *testing.T) {
	t.Run("success reloads", func(t *testing.T) {
		env := &fakeEnv{}
		d := newTestDashboard(t, &fakeServer{statuses: []bool{false}}, env)

		require.NoError(t, d.Refresh(context.Background()))
		assert.Equal(t, []string{"show_loading", "reload"}, env.recorded())
	})

	t.Run("not found alerts", func(t *testing.T) {
		env := &fakeEnv{}
		d := newTestDashboard(t, &fakeServer{refreshCode: http.StatusNotFound, statuses: []bool{false}}, env)

		err := d.Refresh(context.Background())
		assert.ErrorIs(t, err, ErrRefreshRejected)
		assert.Equal(t, []string{"show_loading", "hide_loading", "notify:" + MsgRefreshFailed}, env.recorded())
		assert.False(t, env.loading)
	})
}

func TestDashboard_StatisticsEmptyStillShowsPopup(t *testing.T) {
	env := &fakeEnv{}
	d := newTestDashboard(t, &fakeServer{statuses: []bool{false}}, env)

	require.NoError(t, d.LoadStatistics(context.Background()))
	assert.Equal(t, []string{"render:0", "popup"}, env.recorded())
}

func TestDashboard_StatisticsRowsInOrder(t *testing.T) {
	env := &fakeEnv{}
	srv := &fakeServer{
		statuses: []bool{false},
		statistics: `[
			{"date":"2024-01-03","location":"DC2","critical":1,"immediate":0,"warning":0,"total":1,"color":"#d4edda"},
			{"date":"2024-01-02","location":"DC1","critical":4,"immediate":1,"warning":0,"total":5,"color":"#f8d7da"}
		]`,
	}
	d := newTestDashboard(t, srv, env)

	require.NoError(t, d.LoadStatistics(context.Background()))
	require.Len(t, env.rows, 2)
	assert.Equal(t, "DC2", env.rows[0].Location)
	assert.Equal(t, "DC1", env.rows[1].Location)
	assert.Equal(t, []string{"render:2", "popup"}, env.recorded())
}

func TestDashboard_FlowsAreMutuallyExclusive(t *testing.T) {
	srv := &fakeServer{
		statuses:      []bool{false},
		holdStatus:    make(chan struct{}),
		statusArrived: make(chan struct{}, 1),
	}
	env := &fakeEnv{}
	d := newTestDashboard(t, srv, env)

	done := make(chan error, 1)
	go func() { done <- d.Launch(context.Background()) }()

	select {
	case <-srv.statusArrived:
	case <-time.After(5 * time.Second):
		t.Fatal("launch never reached the status check")
	}
	assert.True(t, d.isBusy())

	assert.ErrorIs(t, d.Refresh(context.Background()), ErrOperationInProgress)
	assert.ErrorIs(t, d.Launch(context.Background()), ErrOperationInProgress)
	_, refreshCalls := srv.counts()
	assert.Zero(t, refreshCalls)

	// Statistics are read-only and stay available.
	require.NoError(t, d.LoadStatistics(context.Background()))

	close(srv.holdStatus)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("launch did not finish")
	}
	assert.False(t, d.isBusy())
	assert.Equal(t, 1, env.count("reload"))
	assert.Equal(t, 1, env.count("show_loading"))
}

func TestDashboard_CancelDuringPoll(t *testing.T) {
	srv := &fakeServer{statuses: []bool{true}}
	env := &fakeEnv{}
	ts := httptest.NewServer(srv.handler())
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithCancel(context.Background())
	d := NewDashboard(DashboardConfig{
		API: NewAPIClient(APIConfig{BaseURL: ts.URL}),
		Env: env,
		Poll: PollerConfig{
			Clock:    blockingClock{},
			OnStatus: func(TaskStatus) { cancel() },
		},
	})

	err := d.Launch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, env.count("reload"))
	assert.Equal(t, []string{"show_loading", "hide_loading"}, env.recorded())
}
