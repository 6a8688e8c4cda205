package handler

import (
	"net/http"
	"strings"
	"time"
)

// Response is the uniform payload for errors and confirmation messages.
type Response struct {
	Timestamp      string `json:"timestamp"`
	HTTPStatusCode int    `json:"httpStatusCode"`
	HTTPStatus     string `json:"httpStatus"`
	Reason         string `json:"reason"`
	Message        string `json:"message"`
}

// NewResponse builds a Response for the given status code and message.
func NewResponse(code int, message string) Response {
	reason := http.StatusText(code)
	return Response{
		Timestamp:      time.Now().Format(time.RFC3339),
		HTTPStatusCode: code,
		HTTPStatus:     strings.ToUpper(strings.ReplaceAll(reason, " ", "_")),
		Reason:         reason,
		Message:        message,
	}
}
