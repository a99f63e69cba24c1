package harness

import "github.com/roach88/sweatz/internal/document"

// TraceEvent records one executed step. Output holds what the operation
// returned, or {"error": kind} when it failed.
type TraceEvent struct {
	Step       int             `json:"step"`
	Op         string          `json:"op"`
	Collection string          `json:"collection"`
	Output     document.Object `json:"output"`
}

// Object returns the event as a record, the form golden files hold.
func (e TraceEvent) Object() document.Object {
	return document.Object{
		"step":       document.Int(e.Step),
		"op":         document.String(e.Op),
		"collection": document.String(e.Collection),
		"output":     e.Output,
	}
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step's event to the trace.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
