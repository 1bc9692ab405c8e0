package network

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/cbodonnell/rigid2d/pkg/log"
	"github.com/cbodonnell/rigid2d/pkg/messages"
	"nhooyr.io/websocket"
)

const (
	// ClientIDMaxRetries represents the maximum number of retries when generating a unique ID
	ClientIDMaxRetries = 1024
	// WriteTimeout bounds a single write to one client
	WriteTimeout = 2 * time.Second
)

// Client represents a connected client
type Client struct {
	ID         uint32
	WSConn     *websocket.Conn
	RemoteAddr string
}

// ClientManager manages connected clients
type ClientManager struct {
	clients     map[uint32]*Client
	clientsLock sync.RWMutex
}

// NewClientManager creates a new ClientManager
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients: make(map[uint32]*Client),
	}
}

// GetClients returns a slice with a copy of all connected clients.
func (cm *ClientManager) GetClients() []*Client {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	clients := make([]*Client, 0, len(cm.clients))
	for _, client := range cm.clients {
		copy := *client
		clients = append(clients, &copy)
	}
	return clients
}

// Count returns the number of connected clients.
func (cm *ClientManager) Count() int {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	return len(cm.clients)
}

// ConnectClient adds a new client to the manager and returns its ID
func (cm *ClientManager) ConnectClient(conn *websocket.Conn, remoteAddr string) (uint32, error) {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()

	clientID, err := cm.generateUniqueID(ClientIDMaxRetries)
	if err != nil {
		return 0, fmt.Errorf("failed to generate a unique ID: %v", err)
	}
	cm.clients[clientID] = &Client{
		ID:         clientID,
		WSConn:     conn,
		RemoteAddr: remoteAddr,
	}
	return clientID, nil
}

// DisconnectClient removes a client from the manager. It does not close the
// connection.
func (cm *ClientManager) DisconnectClient(clientID uint32) {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()
	delete(cm.clients, clientID)
}

func (cm *ClientManager) Exists(clientID uint32) bool {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	_, ok := cm.clients[clientID]
	return ok
}

func (cm *ClientManager) GetClient(clientID uint32) (*Client, error) {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	client, ok := cm.clients[clientID]
	if !ok {
		return nil, fmt.Errorf("client %d not found", clientID)
	}
	copy := *client
	return &copy, nil
}

// SendMessageToClient writes msg to one client.
func (cm *ClientManager) SendMessageToClient(ctx context.Context, clientID uint32, msg *messages.Message) error {
	client, err := cm.GetClient(clientID)
	if err != nil {
		return err
	}
	b, err := messages.SerializeMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %v", err)
	}
	return writeToClient(ctx, client, b)
}

// Broadcast writes msg to every client and returns how many received it.
// Clients that fail a write are disconnected and their connection closed.
func (cm *ClientManager) Broadcast(ctx context.Context, msg *messages.Message) (int, error) {
	b, err := messages.SerializeMessage(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize message: %v", err)
	}

	delivered := 0
	for _, client := range cm.GetClients() {
		if err := writeToClient(ctx, client, b); err != nil {
			log.Warn("Dropping client %d after failed write: %v", client.ID, err)
			cm.DisconnectClient(client.ID)
			client.WSConn.Close(websocket.StatusGoingAway, "write failed")
			continue
		}
		delivered++
	}
	return delivered, nil
}

func writeToClient(ctx context.Context, client *Client, b []byte) error {
	ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()
	if err := client.WSConn.Write(ctx, websocket.MessageBinary, b); err != nil {
		return fmt.Errorf("failed to write message to WebSocket connection for client %d: %v", client.ID, err)
	}
	return nil
}

// generateUniqueID generates a unique client ID with a maximum number of retries
// it reads from the clients, so it needs to be locked before calling
func (cm *ClientManager) generateUniqueID(maxRetries int) (uint32, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		id := rand.Uint32()
		if id == 0 {
			continue
		}
		if _, ok := cm.clients[id]; !ok {
			return id, nil
		}
	}

	return 0, fmt.Errorf("failed to generate a unique ID after %d attempts", maxRetries)
}
