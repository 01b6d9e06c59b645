package harness

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name string `json:"name"`

	// SQL and Args are the compiled WHERE fragment; empty on error.
	SQL  string `json:"sql,omitempty"`
	Args []any  `json:"args,omitempty"`

	// IDs are the matching row ids in primary key order.
	IDs []int64 `json:"ids"`

	// ErrorCode is the filter error code, if compilation failed.
	ErrorCode string `json:"error_code,omitempty"`

	// Pass reports whether the case met its expectation.
	Pass bool `json:"pass"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every case met its expectation.
	Pass bool `json:"pass"`

	// Cases holds one entry per scenario case, in order.
	Cases []CaseResult `json:"cases"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
