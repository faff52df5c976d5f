package deriv

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"hybrid-trading-bot/internal/logger"
	"hybrid-trading-bot/internal/types"
)

const (
	writeTimeout = 10 * time.Second
	readTimeout  = 30 * time.Second
)

// client owns one websocket connection to the Deriv API and runs
// synchronous req_id-correlated request/response exchanges over it.
// All calls serialize on mu; the engine is single-threaded so this
// never contends in practice.
type client struct {
	endpoint string
	appID    string

	mu     sync.Mutex
	conn   *websocket.Conn
	nextID int64
}

// apiError is the error object embedded in Deriv responses.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// envelope holds the fields common to every response frame.
type envelope struct {
	MsgType string    `json:"msg_type"`
	ReqID   int64     `json:"req_id"`
	Error   *apiError `json:"error"`
}

func newClient(endpoint, appID string) *client {
	return &client{endpoint: endpoint, appID: appID}
}

func (c *client) dial(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	url := fmt.Sprintf("%s?app_id=%s", c.endpoint, c.appID)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return &types.ConnError{Broker: "DERIV", Err: fmt.Errorf("dial %s: %w", c.endpoint, err)}
	}
	c.conn = conn
	return nil
}

func (c *client) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.conn.Close()
	c.conn = nil
	if err != nil && err != websocket.ErrCloseSent {
		return err
	}
	return nil
}

// call sends req with an injected req_id and decodes the matching
// response into out. Frames with a different req_id (stray
// subscription pushes) are skipped.
func (c *client) call(ctx context.Context, req map[string]any, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return &types.ConnError{Broker: "DERIV", Err: fmt.Errorf("not connected")}
	}

	c.nextID++
	id := c.nextID
	req["req_id"] = id

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	c.conn.SetWriteDeadline(deadline)
	if err := c.conn.WriteJSON(req); err != nil {
		c.dropLocked()
		return &types.ConnError{Broker: "DERIV", Err: fmt.Errorf("write: %w", err)}
	}

	for {
		readBy := time.Now().Add(readTimeout)
		if d, ok := ctx.Deadline(); ok && d.Before(readBy) {
			readBy = d
		}
		c.conn.SetReadDeadline(readBy)
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.dropLocked()
			return &types.ConnError{Broker: "DERIV", Err: fmt.Errorf("read: %w", err)}
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			logger.Debug(ctx, "deriv: unparseable frame skipped", "error", err.Error())
			continue
		}
		if env.ReqID != id {
			continue
		}
		if env.Error != nil {
			return apiErrToDomain(env.MsgType, env.Error)
		}
		if out != nil {
			if err := json.Unmarshal(raw, out); err != nil {
				return fmt.Errorf("deriv: decode %s: %w", env.MsgType, err)
			}
		}
		return nil
	}
}

func (c *client) dropLocked() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// apiErrToDomain maps Deriv error codes onto the shared taxonomy:
// session-level failures become *ConnError, refused order requests
// become *RejectedError, everything else passes through as transient.
func apiErrToDomain(msgType string, e *apiError) error {
	switch e.Code {
	case "InvalidToken", "AuthorizationRequired", "DisconnectedError":
		return &types.ConnError{Broker: "DERIV", Err: fmt.Errorf("%s: %s", e.Code, e.Message)}
	}
	switch msgType {
	case "proposal", "buy", "sell":
		return &types.RejectedError{Broker: "DERIV", Reason: fmt.Sprintf("%s: %s", e.Code, e.Message)}
	}
	return fmt.Errorf("deriv %s: %s: %s", msgType, e.Code, e.Message)
}
