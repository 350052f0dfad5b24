package services

import "errors"

// Task errors
var (
	ErrTaskNotFound       = errors.New("task: not found")
	ErrTaskAlreadyRunning = errors.New("task: another task is already running")
	ErrTaskPanicked       = errors.New("task: panic during execution")
)

// Import errors
var (
	ErrImportSourceFailed = errors.New("import: source unavailable")
	ErrImportParseFailed  = errors.New("import: malformed export")
	ErrImportStoreFailed  = errors.New("import: store failed")
)

// Cache errors
var (
	ErrCacheRefreshFailed = errors.New("cache: refresh failed")
)
