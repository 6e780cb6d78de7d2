package services

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/SelinIlya/planning-poker/internal/config"
)

// Client represents a single WebSocket connection with its own send goroutine.
// The connection id doubles as the participant id in every room the client
// joins.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	hub  *Hub

	ctx     context.Context
	cancel  context.CancelFunc
	closed  bool
	closeMu sync.Mutex
}

func NewClient(conn *websocket.Conn, hub *Hub, id string) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		id:     id,
		conn:   conn,
		send:   make(chan []byte, config.ClientSendBufferSize),
		hub:    hub,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *Client) ID() string {
	return c.id
}

// Start begins the client's read and write pumps
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// writePump handles outgoing messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				// Channel closed, connection is closing
				_ = c.conn.Close(websocket.StatusNormalClosure, "")
				return
			}

			writeCtx, cancel := context.WithTimeout(c.ctx, config.WriteTimeout)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()

			if err != nil {
				c.hub.log.Debug().Err(err).Str("conn", c.id).Msg("write error")
				c.hub.metrics.IncrementBroadcastErrors()
				return
			}
			c.hub.metrics.IncrementMessagesSent()

		case <-ticker.C:
			// Keep the connection alive
			pingCtx, cancel := context.WithTimeout(c.ctx, config.WriteTimeout)
			err := c.conn.Ping(pingCtx)
			cancel()

			if err != nil {
				c.hub.log.Debug().Err(err).Str("conn", c.id).Msg("ping error")
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// readPump forwards incoming messages to the hub for processing
func (c *Client) readPump() {
	defer c.hub.Unregister(c)

	for {
		readCtx, cancel := context.WithTimeout(c.ctx, config.PongTimeout)
		_, message, err := c.conn.Read(readCtx)
		cancel()

		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				c.hub.metrics.IncrementConnectionErrors()
			}
			return
		}

		c.hub.inbound <- &ClientMessage{
			Client: c,
			Data:   message,
		}
	}
}

// Send queues a message for delivery. A client whose buffer is full is
// considered too slow to keep and is closed rather than allowed to stall
// broadcasts.
func (c *Client) Send(message []byte) bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- message:
		return true
	default:
		c.hub.log.Warn().Str("conn", c.id).Msg("send buffer full, closing slow client")
		c.hub.metrics.IncrementBroadcastErrors()
		go c.Close()
		return false
	}
}

// Close cleanly shuts down the client connection
func (c *Client) Close() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	c.cancel()
	close(c.send)
	_ = c.conn.Close(websocket.StatusNormalClosure, "")
}

// ClientMessage is one raw command received from a client
type ClientMessage struct {
	Client *Client
	Data   []byte
}
