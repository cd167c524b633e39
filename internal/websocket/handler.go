package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs attaches a connection to the hub and blocks until it closes
func ServeWs(hub *Hub, c *websocket.Conn, clientID string, initial []byte) {
	client := &Client{Hub: hub, Conn: c, ClientID: clientID, Send: make(chan []byte, 256)}
	if initial != nil {
		client.Send <- initial
	}
	if !client.Hub.Register(client) {
		c.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
