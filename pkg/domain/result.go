package domain

// Result is the uniform outcome of a dispatched command. It is the one
// contract every front-end adapter (REPL, one-shot CLI, HTTP, MCP) depends on.
type Result struct {
	// Error carries the failure message, empty on success.
	Error string `json:"error,omitempty"`

	// Output is the command's value: a rendered template for internal
	// commands, or whatever the handler returned.
	Output any `json:"output,omitempty"`

	// Exit signals the hosting session should terminate.
	Exit bool `json:"exit,omitempty"`
}

// Failure builds an error result with no output.
func Failure(message string) *Result {
	return &Result{Error: message}
}

// Success builds a result carrying output.
func Success(output any) *Result {
	return &Result{Output: output}
}

// OK reports whether the command succeeded.
func (r *Result) OK() bool {
	return r.Error == ""
}
