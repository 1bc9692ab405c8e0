package handlers

import (
	"context"
	"fmt"

	"github.com/cbodonnell/rigid2d/pkg/log"
	"github.com/cbodonnell/rigid2d/pkg/messages"
	"github.com/cbodonnell/rigid2d/pkg/network"
	"github.com/cbodonnell/rigid2d/pkg/queue"
)

// NewCommandMessageHandler queues commands sent over a WebSocket. Anything
// that cannot be queued is answered with an error message.
func NewCommandMessageHandler(commandQueue queue.Queue) network.MessageHandler {
	return func(ctx context.Context, clientID uint32, message *messages.Message) *messages.Message {
		if message.Type != messages.MessageTypeCommand {
			return messages.NewErrorMessage(clientID, fmt.Errorf("unexpected message type %q", message.Type))
		}
		command := &messages.Command{}
		if err := messages.DecodePayload(message, messages.MessageTypeCommand, command); err != nil {
			return messages.NewErrorMessage(clientID, err)
		}
		if err := EnqueueCommand(commandQueue, command); err != nil {
			log.Debug("Rejected command from client %d: %v", clientID, err)
			return messages.NewErrorMessage(clientID, err)
		}
		log.Trace("Queued %s command from client %d", command.Type, clientID)
		return nil
	}
}
