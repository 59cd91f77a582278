package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// frame is the wire shape of one pushed event.
type frame struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

const (
	sendQueueSize = 64
	writeTimeout  = 5 * time.Second
)

var errChannelGone = errors.New("channel closed or backed up")

// wsChannel adapts a websocket connection to the Channel interface. Writes go
// through a buffered queue drained by a single writer goroutine, so Send
// never blocks the request path.
type wsChannel struct {
	identityID string
	conn       *websocket.Conn
	sendq      chan frame
	done       chan struct{}
	closeOnce  sync.Once
}

func newWSChannel(identityID string, conn *websocket.Conn) *wsChannel {
	return &wsChannel{
		identityID: identityID,
		conn:       conn,
		sendq:      make(chan frame, sendQueueSize),
		done:       make(chan struct{}),
	}
}

func (c *wsChannel) IdentityID() string { return c.identityID }

// Send enqueues the event. A closed or saturated channel returns an error;
// the dispatcher treats that as a drop.
func (c *wsChannel) Send(_ context.Context, event string, payload any) error {
	select {
	case <-c.done:
		return errChannelGone
	default:
	}
	select {
	case c.sendq <- frame{Event: event, Payload: payload}:
		return nil
	default:
		return errChannelGone
	}
}

// Close tears the connection down. Safe to call from any goroutine, any
// number of times.
func (c *wsChannel) Close(reason string) {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close(websocket.StatusNormalClosure, reason)
	})
}

// writeLoop drains the send queue until the connection or context dies.
// Runs on the gate's connection goroutine family.
func (c *wsChannel) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case f := <-c.sendq:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, c.conn, f)
			cancel()
			if err != nil {
				c.Close("write_failed")
				return
			}
		}
	}
}
