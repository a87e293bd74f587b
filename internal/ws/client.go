package ws

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// ErrClientClosed is returned by send methods after the connection is gone.
var ErrClientClosed = errors.New("ws: client closed")

// EventHandler receives transport callbacks. OnMessage runs on the read
// loop goroutine, one frame at a time, in arrival order. OnClose also runs
// on the read loop goroutine, after the final OnMessage: a handler never
// sees a message delivered after its close callback.
type EventHandler interface {
	OnOpen(c *Client)
	OnMessage(c *Client, msgType int, msg []byte)
	OnError(c *Client, err error)
	OnClose(c *Client)
}

// Client is a full-duplex WebSocket client with a buffered write queue.
// Writes are serialized through one goroutine, so frames go out in call
// order; reads are dispatched to the handler in arrival order.
type Client struct {
	conn      *websocket.Conn
	handler   EventHandler
	ctx       context.Context
	cancel    context.CancelFunc
	writeCh   chan wsMessage
	closeOnce sync.Once
}

type wsMessage struct {
	msgType int
	data    []byte
}

// Dial connects, fires OnOpen, and starts the read and write loops.
func Dial(ctx context.Context, url string, header http.Header, handler EventHandler) (*Client, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return nil, err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	c := &Client{
		conn:    conn,
		handler: handler,
		ctx:     loopCtx,
		cancel:  cancel,
		writeCh: make(chan wsMessage, 100),
	}

	handler.OnOpen(c)

	go c.readLoop()
	go c.writeLoop()

	return c, nil
}

func (c *Client) readLoop() {
	// OnClose must follow the last dispatched message, so only this
	// goroutine fires it, on the way out.
	defer func() {
		c.shutdown()
		c.handler.OnClose(c)
	}()
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			msgType, msg, err := c.conn.ReadMessage()
			if err != nil {
				c.handler.OnError(c, err)
				return
			}
			c.handler.OnMessage(c, msgType, msg)
		}
	}
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case msg := <-c.writeCh:
			if err := c.conn.WriteMessage(msg.msgType, msg.data); err != nil {
				c.handler.OnError(c, err)
				c.shutdown()
				return
			}
		}
	}
}

func (c *Client) send(msgType int, data []byte) error {
	select {
	case <-c.ctx.Done():
		return ErrClientClosed
	case c.writeCh <- wsMessage{msgType: msgType, data: data}:
		return nil
	}
}

// SendText queues one text frame.
func (c *Client) SendText(data []byte) error {
	return c.send(websocket.TextMessage, data)
}

// SendBinary queues one binary frame.
func (c *Client) SendBinary(data []byte) error {
	return c.send(websocket.BinaryMessage, data)
}

// Done is closed once the client shuts down, whichever side initiated it.
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close tears the connection down. Safe to call more than once and from
// multiple goroutines. OnClose fires exactly once, from the read loop
// goroutine once it has drained, shortly after Close returns.
func (c *Client) Close() {
	c.shutdown()
}

// shutdown unblocks both loops: cancelling the context stops the writer and
// closing the connection fails the pending ReadMessage.
func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		c.cancel()
		c.conn.Close()
	})
}

// IsExpectedClose reports whether err is a normal close handshake or the
// local half of a shutdown rather than a transport failure.
func IsExpectedClose(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrClientClosed) || errors.Is(err, net.ErrClosed) {
		return true
	}
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
