package network

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbodonnell/rigid2d/pkg/log"
	"github.com/cbodonnell/rigid2d/pkg/messages"
	"nhooyr.io/websocket"
)

// MessageHandler handles a message received from a client. A non-nil reply
// is written back to the same client.
type MessageHandler func(ctx context.Context, clientID uint32, message *messages.Message) *messages.Message

type NewWSHandlerOptions struct {
	ClientManager  *ClientManager
	MessageHandler MessageHandler
	// OriginPatterns are passed to websocket.Accept. Empty accepts any origin.
	OriginPatterns []string
}

// NewWSHandler upgrades requests to WebSocket connections, registers them
// with the client manager and reads messages until the client goes away.
func NewWSHandler(opts NewWSHandlerOptions) http.HandlerFunc {
	acceptOptions := &websocket.AcceptOptions{
		OriginPatterns:     opts.OriginPatterns,
		InsecureSkipVerify: len(opts.OriginPatterns) == 0,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, acceptOptions)
		if err != nil {
			log.Error("Failed to upgrade to WebSocket: %v", err)
			return
		}
		conn.SetReadLimit(messages.MessageBufferSize)

		clientID, err := opts.ClientManager.ConnectClient(conn, r.RemoteAddr)
		if err != nil {
			log.Error("Failed to register WebSocket client: %v", err)
			conn.Close(websocket.StatusInternalError, "failed to register client")
			return
		}
		log.Debug("New WebSocket connection %d from %s", clientID, r.RemoteAddr)
		defer func() {
			opts.ClientManager.DisconnectClient(clientID)
			conn.Close(websocket.StatusNormalClosure, "")
			log.Trace("Connection closed for client %d", clientID)
		}()

		ctx := r.Context()
		for {
			message, err := ReadMessageFromWS(ctx, conn)
			if err != nil {
				if !isExpectedClose(err) {
					log.Error("Error reading WebSocket message from client %d: %v", clientID, err)
				}
				return
			}
			message.ClientID = clientID
			if opts.MessageHandler == nil {
				continue
			}
			reply := opts.MessageHandler(ctx, clientID, message)
			if reply == nil {
				continue
			}
			if err := WriteMessageToWS(ctx, conn, reply); err != nil {
				log.Error("Failed to reply to client %d: %v", clientID, err)
				return
			}
		}
	}
}

func isExpectedClose(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return errors.Is(err, context.Canceled)
}

// WriteMessageToWS writes a Message to a WebSocket connection
func WriteMessageToWS(ctx context.Context, conn *websocket.Conn, msg *messages.Message) error {
	b, err := messages.SerializeMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %v", err)
	}

	if err := conn.Write(ctx, websocket.MessageBinary, b); err != nil {
		return fmt.Errorf("failed to write message to WebSocket connection: %v", err)
	}

	return nil
}

// ReadMessageFromWS reads a Message from a WebSocket connection
func ReadMessageFromWS(ctx context.Context, conn *websocket.Conn) (*messages.Message, error) {
	_, b, err := conn.Read(ctx)
	if err != nil {
		return nil, err
	}

	msg, err := messages.DeserializeMessage(b)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize message: %v", err)
	}

	return msg, nil
}
