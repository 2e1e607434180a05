package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// Connection is the part of *websocket.Conn the client pumps use
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	RemoteAddr() string
}

// gorillaConn adapts *websocket.Conn, whose RemoteAddr returns a net.Addr
type gorillaConn struct {
	*websocket.Conn
}

func (c gorillaConn) RemoteAddr() string {
	if addr := c.Conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

// Wrap adapts a gorilla connection to Connection
func Wrap(conn *websocket.Conn) Connection {
	return gorillaConn{Conn: conn}
}
