package response

// Response is the JSON envelope for all API replies.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

const (
	StatusOK    = "OK"
	StatusError = "Error"
)

// Ok wraps a payload in a success envelope.
func Ok(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error wraps a message in an error envelope.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}
