package bridge

import (
	"encoding/json"
	"net/http"

	"github.com/martijn/clientbook/internal/core/service"
)

// Request is one command sent over the socket.
type Request struct {
	Cmd  string          `json:"cmd"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Response carries either Data or, for failures, Error. Transport-level
// rejections set Message and leave Error nil.
type Response struct {
	Code    int             `json:"code"`
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   *service.Error  `json:"error,omitempty"`
}

func GetStatusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "Unknown"
}

func badRequest(message string) Response {
	return Response{
		Code:    http.StatusBadRequest,
		Status:  GetStatusText(http.StatusBadRequest),
		Message: message,
	}
}

func failure(e *service.Error) Response {
	code := e.Status()
	return Response{Code: code, Status: GetStatusText(code), Error: e}
}

func success(payload any) Response {
	data, err := json.Marshal(payload)
	if err != nil {
		return failure(service.Unknown("failed to encode response: " + err.Error()))
	}
	return Response{Code: http.StatusOK, Status: GetStatusText(http.StatusOK), Data: data}
}
