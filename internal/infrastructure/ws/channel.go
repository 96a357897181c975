// Package ws provides the gorilla/websocket implementation of the chat
// transport ports.
package ws

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/skillbridge/resume-gateway/internal/core/domain"
	"github.com/skillbridge/resume-gateway/internal/core/ports"
)

const (
	writeTimeout  = 10 * time.Second
	closeGrace    = time.Second
	handshakeWait = 10 * time.Second
)

// Dialer opens channels against the backend chat endpoint
// {base}/chat/ws/{conversationID}/{participantID}.
type Dialer struct {
	base   string
	dialer *websocket.Dialer
}

func NewDialer(baseURL string) *Dialer {
	return &Dialer{
		base: baseURL,
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeWait,
		},
	}
}

// Dial implements ports.ChannelDialer.
func (d *Dialer) Dial(ctx context.Context, conversationID, participantID string) (ports.Channel, error) {
	endpoint := fmt.Sprintf("%s/chat/ws/%s/%s", d.base, url.PathEscape(conversationID), url.PathEscape(participantID))

	conn, _, err := d.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", domain.ErrBackendUnavailable, endpoint, err)
	}
	return &channel{conn: conn}, nil
}

// channel adapts a websocket connection to ports.Channel. Send and Receive
// may run concurrently (one writer, one reader); Close is idempotent.
type channel struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func (c *channel) Send(_ context.Context, text string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		return fmt.Errorf("%w: write frame: %v", domain.ErrBackendUnavailable, err)
	}
	return nil
}

func (c *channel) Receive(_ context.Context) (string, error) {
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			return "", fmt.Errorf("%w: read frame: %v", domain.ErrBackendUnavailable, err)
		}
		if kind == websocket.TextMessage {
			return string(data), nil
		}
		// Binary frames are not part of the chat protocol.
	}
}

func (c *channel) Close() error {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(closeGrace))
		_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
