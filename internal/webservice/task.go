package webservice

// Task is an accessibility-test configuration owned by the external test
// service. The dashboard never stores tasks; it references them by ID.
type Task struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	URL          string            `json:"url"`
	Standard     string            `json:"standard"`
	Ignore       []string          `json:"ignore,omitempty"`
	Timeout      int               `json:"timeout,omitempty"`
	Wait         int               `json:"wait,omitempty"`
	Actions      []string          `json:"actions,omitempty"`
	Username     string            `json:"username,omitempty"`
	Password     string            `json:"password,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
	HideElements string            `json:"hideElements,omitempty"`
	LastResult   *Result           `json:"last_result,omitempty"`
}

// Result is the latest test run recorded for a task.
type Result struct {
	ID    string      `json:"id"`
	Date  string      `json:"date"`
	Count ResultCount `json:"count"`
}

// ResultCount holds issue counts by severity.
type ResultCount struct {
	Error   int `json:"error"`
	Warning int `json:"warning"`
	Notice  int `json:"notice"`
}

// TaskSpec is the payload for creating a task.
type TaskSpec struct {
	Name         string            `json:"name"`
	URL          string            `json:"url"`
	Standard     string            `json:"standard"`
	Ignore       []string          `json:"ignore"`
	Timeout      int               `json:"timeout,omitempty"`
	Wait         int               `json:"wait,omitempty"`
	Actions      []string          `json:"actions,omitempty"`
	Username     string            `json:"username,omitempty"`
	Password     string            `json:"password,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
	HideElements string            `json:"hideElements,omitempty"`
}

// TaskPatch is the payload for editing a task. The test service rejects
// changes to URL and standard, so the patch carries everything else.
type TaskPatch struct {
	Name         string            `json:"name"`
	Ignore       []string          `json:"ignore"`
	Timeout      int               `json:"timeout,omitempty"`
	Wait         int               `json:"wait,omitempty"`
	Actions      []string          `json:"actions"`
	Username     string            `json:"username,omitempty"`
	Password     string            `json:"password,omitempty"`
	Headers      map[string]string `json:"headers"`
	HideElements string            `json:"hideElements,omitempty"`
}
