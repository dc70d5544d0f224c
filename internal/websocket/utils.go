package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// ReadWait is how long a connection may stay silent. Clients answering a
	// question can take a while, so it is generous.
	ReadWait = 10 * time.Minute
)

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func WriteTyped(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func WriteError(conn *websocket.Conn, code, message string, step any) error {
	return WriteTyped(conn, ErrorResponse{
		Event:   EventError,
		Code:    code,
		Message: message,
		Step:    step,
	})
}

// ReadRequest reads one client message, extending the read deadline.
func ReadRequest(conn *websocket.Conn) (Request, error) {
	var req Request
	_ = conn.SetReadDeadline(time.Now().Add(ReadWait))
	err := conn.ReadJSON(&req)
	return req, err
}
