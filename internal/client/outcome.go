package client

// Outcome is what a flow asks the page to do once it ends. Exactly one of
// Reload or a failure (Err, usually with Alert) is set for launch and
// refresh; a statistics fetch sets Rows and ShowPopup instead of Reload.
type Outcome struct {
	Reload    bool
	Alert     string
	Err       error
	TaskID    string
	Rows      []Statistic
	ShowPopup bool
}

func reloadOutcome(taskID string) Outcome {
	return Outcome{Reload: true, TaskID: taskID}
}

func failOutcome(alert string, err error) Outcome {
	return Outcome{Alert: alert, Err: err}
}
