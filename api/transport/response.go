package transport

import "time"

// Envelope is the response wrapper of the ops endpoints.
type Envelope struct {
	Status    string    `json:"status"`
	Code      string    `json:"code,omitempty"`
	Data      any       `json:"data,omitempty"`
	Error     any       `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data any) Envelope {
	return Envelope{
		Status:    "success",
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// NewError returns an error envelope. data, when set, carries the partial state.
func NewError(code string, err any, data any) Envelope {
	return Envelope{
		Status:    "error",
		Code:      code,
		Error:     err,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}
