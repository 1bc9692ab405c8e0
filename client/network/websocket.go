package network

import (
	"context"
	"fmt"
	"sync"

	"github.com/cbodonnell/rigid2d/pkg/log"
	"github.com/cbodonnell/rigid2d/pkg/messages"
	pkgnetwork "github.com/cbodonnell/rigid2d/pkg/network"
	"github.com/cbodonnell/rigid2d/pkg/state"
	"nhooyr.io/websocket"
)

// WSClient receives snapshots from a simulation server and sends it commands.
type WSClient struct {
	serverAddr   string
	stateManager state.StateManager
	lastErrLock  sync.Mutex
	lastErr      error
	conn         *websocket.Conn
}

// NewWSClient creates a new WebSocket client. Received snapshots are stored
// in stateManager.
func NewWSClient(serverAddr string, stateManager state.StateManager) *WSClient {
	return &WSClient{
		serverAddr:   serverAddr,
		stateManager: stateManager,
	}
}

// Connect establishes a connection to the WebSocket server.
func (c *WSClient) Connect(ctx context.Context) error {
	log.Info("Connecting to WebSocket server at %s", c.serverAddr)
	conn, _, err := websocket.Dial(ctx, c.serverAddr, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %v", err)
	}
	conn.SetReadLimit(messages.MaxDecompressedSize)
	c.conn = conn
	return nil
}

// HandleMessages reads messages until the connection or ctx closes.
func (c *WSClient) HandleMessages(ctx context.Context) error {
	for {
		msg, err := pkgnetwork.ReadMessageFromWS(ctx, c.conn)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				log.Trace("Connection to %s closed", c.serverAddr)
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to read message: %v", err)
		}

		if err := c.handleMessage(ctx, msg); err != nil {
			log.Error("Failed to handle message: %v", err)
		}
	}
}

func (c *WSClient) handleMessage(ctx context.Context, msg *messages.Message) error {
	log.Trace("Received message from WebSocket server of type %s", msg.Type)

	switch msg.Type {
	case messages.MessageTypeSnapshot:
		snapshot := &messages.Snapshot{}
		if err := messages.DecodePayload(msg, messages.MessageTypeSnapshot, snapshot); err != nil {
			return err
		}
		if err := c.stateManager.Set(ctx, snapshot); err != nil {
			return fmt.Errorf("failed to store snapshot: %v", err)
		}
	case messages.MessageTypeError:
		payload := &messages.ErrorPayload{}
		if err := messages.DecodePayload(msg, messages.MessageTypeError, payload); err != nil {
			return err
		}
		c.setLastError(fmt.Errorf("server error: %s", payload.Message))
		log.Warn("Server rejected a message: %s", payload.Message)
	default:
		return fmt.Errorf("received unexpected message type from WebSocket server: %s", msg.Type)
	}

	return nil
}

// LastError returns the last error the server reported, if any.
func (c *WSClient) LastError() error {
	c.lastErrLock.Lock()
	defer c.lastErrLock.Unlock()
	return c.lastErr
}

func (c *WSClient) setLastError(err error) {
	c.lastErrLock.Lock()
	defer c.lastErrLock.Unlock()
	c.lastErr = err
}

// SendCommand sends a command to the server.
func (c *WSClient) SendCommand(ctx context.Context, command *messages.Command) error {
	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	msg, err := messages.NewMessage(messages.MessageTypeCommand, command)
	if err != nil {
		return fmt.Errorf("failed to create command message: %v", err)
	}
	return pkgnetwork.WriteMessageToWS(ctx, c.conn, msg)
}

// Close closes the WebSocket connection.
func (c *WSClient) Close() error {
	if c.conn == nil {
		log.Warn("WebSocket connection was never opened")
		return nil
	}
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
