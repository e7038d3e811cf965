package sui

import (
	"errors"
	"fmt"
)

var (
	ErrNoEndpoints    = errors.New("rpc endpoints is empty")
	ErrEmptyFilter    = errors.New("event filter is empty")
	ErrInvalidAddress = errors.New("invalid sui address")
)

// RPCError is a JSON-RPC error object returned by a fullnode.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("rpc http status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("rpc http status %d", e.StatusCode)
}
