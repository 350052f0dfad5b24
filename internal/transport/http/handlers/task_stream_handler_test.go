package handlers

import (
	"net"
	"sync"
	"testing"
	"time"

	wsclient "github.com/fasthttp/websocket"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/reportdash/backend/internal/core/services"
	"github.com/reportdash/backend/internal/domain"
	"github.com/reportdash/backend/internal/infrastructure/logger"
	"github.com/reportdash/backend/internal/transport/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTasks is a TaskService whose single task is driven by the test.
type stubTasks struct {
	mu    sync.Mutex
	task  *domain.Task
	reads int
}

func (s *stubTasks) GetTask(id string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.task == nil || s.task.ID != id {
		return nil, services.ErrTaskNotFound
	}
	cp := *s.task
	return &cp, nil
}

func (s *stubTasks) LatestTask() (*domain.Task, error) {
	return s.GetTask("t1")
}

func (s *stubTasks) set(status domain.TaskStatus, progress int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.task.Status = status
	s.task.Progress = progress
	s.task.UpdatedAt = s.task.UpdatedAt.Add(time.Second)
}

func (s *stubTasks) readCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func startStreamServer(t *testing.T, tasks *stubTasks) string {
	t.Helper()

	h := NewTaskStreamHandler(tasks, logger.NewNop(), 10*time.Millisecond)
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/ws/tasks/:id", websocket.New(h.Handle))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return "ws://" + ln.Addr().String() + "/ws/tasks/"
}

func dialStream(t *testing.T, url string) *wsclient.Conn {
	t.Helper()
	conn, _, err := wsclient.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func TestTaskStream_PushesChangesUntilFinished(t *testing.T) {
	tasks := &stubTasks{task: &domain.Task{
		ID:        "t1",
		Type:      domain.TaskTypeAlertImport,
		Status:    domain.TaskStatusRunning,
		Progress:  10,
		UpdatedAt: time.Now(),
	}}
	conn := dialStream(t, startStreamServer(t, tasks)+"t1")

	var first dto.TaskResponse
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "t1", first.ID)
	assert.Equal(t, string(domain.TaskStatusRunning), first.Status)
	assert.Equal(t, 10, first.Progress)

	tasks.set(domain.TaskStatusRunning, 50)
	var second dto.TaskResponse
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, 50, second.Progress)

	tasks.set(domain.TaskStatusCompleted, 100)
	var last dto.TaskResponse
	require.NoError(t, conn.ReadJSON(&last))
	assert.Equal(t, string(domain.TaskStatusCompleted), last.Status)
	assert.Equal(t, 100, last.Progress)

	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestTaskStream_UnknownTask(t *testing.T) {
	tasks := &stubTasks{}
	conn := dialStream(t, startStreamServer(t, tasks)+"nope")

	var resp dto.ErrorResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "task not found", resp.Error)

	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestTaskStream_StopsWhenClientLeaves(t *testing.T) {
	tasks := &stubTasks{task: &domain.Task{
		ID:        "t1",
		Status:    domain.TaskStatusRunning,
		UpdatedAt: time.Now(),
	}}
	conn := dialStream(t, startStreamServer(t, tasks)+"t1")

	var first dto.TaskResponse
	require.NoError(t, conn.ReadJSON(&first))
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		before := tasks.readCount()
		time.Sleep(50 * time.Millisecond)
		return tasks.readCount() == before
	}, 5*time.Second, 10*time.Millisecond)
}
