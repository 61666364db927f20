package engine

// Result is the uniform outcome of every command service operation.
// Failures carry a non-empty ErrorCode from the engine taxonomy and leave
// the session in its pre-command state.
type Result struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	ErrorCode ErrorCode      `json:"error_code,omitempty"`
	// Events are the domain events this command published, in order.
	Events []Event        `json:"events,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

// Err returns the failure as an error, or nil for successful results.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return newError(r.ErrorCode, "%s", r.Message)
}

func successResult(message string, events []Event) Result {
	return Result{Success: true, Message: message, Events: events}
}

func (r Result) withData(key string, value any) Result {
	if r.Data == nil {
		r.Data = make(map[string]any)
	}
	r.Data[key] = value
	return r
}

func failureResult(err error) Result {
	code := CodeOf(err)
	if code == "" {
		code = CodeStateCorruption
	}
	return Result{Success: false, Message: err.Error(), ErrorCode: code}
}
