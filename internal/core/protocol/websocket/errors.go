package websocket

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrConnectionClosed = errors.New("connection is closed")
	ErrHandshakeTimeout = errors.New("no init record before timeout")
	ErrEmptyURL         = errors.New("server url is empty")
)

// ConnectionError reports a socket that failed or closed before the session
// ended. It is always fatal; the client never reconnects.
type ConnectionError struct {
	Op  string
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("websocket %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("websocket %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsConnectionError reports whether err is a ConnectionError.
func IsConnectionError(err error) bool {
	var target *ConnectionError
	return errors.As(err, &target)
}
