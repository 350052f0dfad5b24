package client

import (
	"errors"
	"fmt"
)

var (
	ErrLaunchRejected      = errors.New("client: task launch rejected")
	ErrRefreshRejected     = errors.New("client: cache refresh rejected")
	ErrStatisticsFailed    = errors.New("client: statistics fetch failed")
	ErrPollTransport       = errors.New("client: task status request failed")
	ErrMalformedResponse   = errors.New("client: malformed response")
	ErrPollTimeout         = errors.New("client: task exceeded maximum wait")
	ErrTaskGone            = errors.New("client: task is unknown to the server")
	ErrOperationInProgress = errors.New("client: another operation is in progress")
)

// Messages shown to the user when a flow fails.
const (
	MsgTaskFailed       = "Task failed!"
	MsgRefreshFailed    = "Failed to refresh the app."
	MsgStatisticsFailed = "Failed to load statistics."
	MsgLostContact      = "Lost contact with the task."
	MsgTaskTooLong      = "Task is taking too long."
	MsgStatusUnreadable = "Task status could not be read."
	MsgTaskGone         = "Task is no longer known to the server."
)

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: server returned status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: server returned status %d: %s", e.Method, e.Path, e.Code, e.Body)
}
