package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mfaulhaber/catalogd/internal/progress"
)

// WatchProgress streams progress messages for a job until a terminal
// message arrives or the context is cancelled. The onMessage callback
// is invoked for each message; return an error from onMessage to abort.
func (c *Client) WatchProgress(ctx context.Context, jobID string, onMessage func(progress.Message) error) error {
	wsEndpoint := c.baseURL
	wsEndpoint = strings.Replace(wsEndpoint, "http://", "ws://", 1)
	wsEndpoint = strings.Replace(wsEndpoint, "https://", "wss://", 1)

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, resp, err := dialer.DialContext(ctx, wsEndpoint+"/ws/progress/"+jobID, nil)
	if err != nil {
		return fmt.Errorf("websocket connect: %w", err)
	}
	if resp != nil {
		resp.Body.Close()
	}

	var mu sync.Mutex
	closed := false
	closeConn := func() {
		mu.Lock()
		defer mu.Unlock()
		if !closed {
			closed = true
			conn.Close()
		}
	}
	defer closeConn()

	// Close the connection when the context is cancelled so the blocked
	// read below returns.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			closeConn()
		case <-done:
		}
	}()

	for {
		var msg progress.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read message: %w", err)
		}

		if err := onMessage(msg); err != nil {
			return err
		}

		if msg.Terminal() {
			return nil
		}
	}
}
