package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/qinggan/qinggan/internal/logging"
	"github.com/qinggan/qinggan/internal/types"
)

const realtimePath = "/ws/analyze"

// RealtimeSession is an open connection to the backend's realtime
// analysis socket. Frames are delivered on Frames(); a read failure
// ends the session and is reported once on Err().
type RealtimeSession struct {
	conn   *websocket.Conn
	frames chan types.RealtimeResponse
	errs   chan error
	closed atomic.Bool
}

// DialRealtime connects to the realtime analysis endpoint. The ws://
// or wss:// scheme is derived from the configured backend origin.
func (c *Client) DialRealtime(ctx context.Context) (*RealtimeSession, error) {
	wsURL, err := realtimeURL(c.baseURL)
	if err != nil {
		return nil, transportErr(err)
	}

	dialer := &websocket.Dialer{HandshakeTimeout: 45 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("realtime connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, transportErr(err)
	}

	logging.Info("realtime session opened", "url", wsURL)

	s := &RealtimeSession{
		conn:   conn,
		frames: make(chan types.RealtimeResponse, 16),
		errs:   make(chan error, 1),
	}
	go s.receive()
	return s, nil
}

// Send submits one text for realtime analysis. Blank text is rejected
// locally, matching the HTTP submission paths.
func (s *RealtimeSession) Send(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return &ValidationError{Message: "text must not be empty"}
	}
	if err := s.conn.WriteJSON(types.RealtimeRequest{Type: "text", Data: trimmed}); err != nil {
		return transportErr(err)
	}
	return nil
}

// Frames returns the channel of received analysis frames. The channel
// is closed when the session ends.
func (s *RealtimeSession) Frames() <-chan types.RealtimeResponse {
	return s.frames
}

// Err reports the error that ended the session, if any.
func (s *RealtimeSession) Err() <-chan error {
	return s.errs
}

// CloseSend starts the close handshake: it tells the backend no more
// texts are coming but keeps the connection open, so frames for texts
// already sent still arrive. The receive loop ends cleanly when the
// backend answers the close frame and Frames() is closed.
func (s *RealtimeSession) CloseSend() error {
	s.closed.Store(true)
	deadline := time.Now().Add(time.Second)
	if err := s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline); err != nil {
		return transportErr(err)
	}
	return nil
}

// Close tears the connection down immediately. The receive loop exits
// on its own once the connection is closed.
func (s *RealtimeSession) Close() error {
	s.closed.Store(true)
	deadline := time.Now().Add(time.Second)
	s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return s.conn.Close()
}

func (s *RealtimeSession) receive() {
	defer close(s.frames)
	for {
		var frame types.RealtimeResponse
		if err := s.conn.ReadJSON(&frame); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			// A read failure after we started the close is the
			// shutdown we asked for, not a transport fault.
			if s.closed.Load() {
				return
			}
			s.errs <- transportErr(err)
			return
		}
		s.frames <- frame
	}
}

func realtimeURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
		// already a websocket origin
	default:
		return "", fmt.Errorf("invalid server URL scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + realtimePath
	return u.String(), nil
}
