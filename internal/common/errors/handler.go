package errors

// ErrorHandler turns terminal errors into log entries and exit codes.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Report logs err and returns the process exit code for it.
func (h *ErrorHandler) Report(err error) int {
	if err == nil {
		return 0
	}

	stdErr := Normalize(err)
	fields := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"errorCategory": GetErrorCategory(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}

	if !IsFatal(stdErr.Code) {
		h.logger.Warn("non-fatal failure", fields)
		return 0
	}

	h.logger.Error("navigator failed", fields)
	return 1
}
