package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Host message types
const (
	MsgPlayerJoined      MessageType = "player_joined"
	MsgPlayerLeft        MessageType = "player_left"
	MsgBuzzerWinner      MessageType = "buzzer_winner"
	MsgResponseSubmitted MessageType = "response_submitted"
	MsgWagerSubmitted    MessageType = "wager_submitted"
)

// Player message types
const (
	MsgGameUpdate     MessageType = "game_update"
	MsgDisplayUpdate  MessageType = "display_update"
	MsgBuzzersEnabled MessageType = "buzzers_enabled"
	MsgBuzzersCleared MessageType = "buzzers_cleared"
	MsgScoreUpdate    MessageType = "score_update"
	MsgGameEnded      MessageType = "game_ended"
	MsgError          MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections for live games
type Hub struct {
	// Game -> connections
	hostConns   map[string]*Connection
	playerConns map[string]map[string]*Connection // gameID -> playerID -> conn

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	disconnect chan string
}

// Connection represents a WebSocket connection
type Connection struct {
	GameID   string
	PlayerID string // Empty for host connections
	IsHost   bool
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	GameID   string
	ToHost   bool
	ToPlayer string // Empty means all players, specific ID means one player
	Message  *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		hostConns:   make(map[string]*Connection),
		playerConns: make(map[string]map[string]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *BroadcastMessage, 256),
		disconnect:  make(chan string),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if conn.IsHost {
				h.hostConns[conn.GameID] = conn
				log.Printf("Host connected to game %s", conn.GameID)
			} else {
				if h.playerConns[conn.GameID] == nil {
					h.playerConns[conn.GameID] = make(map[string]*Connection)
				}
				h.playerConns[conn.GameID][conn.PlayerID] = conn
				log.Printf("Player %s connected to game %s", conn.PlayerID, conn.GameID)
			}
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if conn.IsHost {
				if existing, ok := h.hostConns[conn.GameID]; ok && existing == conn {
					delete(h.hostConns, conn.GameID)
					close(conn.Send)
					log.Printf("Host disconnected from game %s", conn.GameID)
				}
			} else {
				if players, ok := h.playerConns[conn.GameID]; ok {
					if existing, ok := players[conn.PlayerID]; ok && existing == conn {
						delete(players, conn.PlayerID)
						close(conn.Send)
						log.Printf("Player %s disconnected from game %s", conn.PlayerID, conn.GameID)

						// Notify host
						h.notifyHostPlayerLeft(conn.GameID, conn.PlayerID)
					}
				}
			}
			h.mu.Unlock()

		case gameID := <-h.disconnect:
			h.mu.Lock()
			if conn, ok := h.hostConns[gameID]; ok {
				delete(h.hostConns, gameID)
				close(conn.Send)
			}
			if players, ok := h.playerConns[gameID]; ok {
				for _, conn := range players {
					close(conn.Send)
				}
				delete(h.playerConns, gameID)
			}
			log.Printf("All connections for game %s closed", gameID)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)

			if msg.ToHost {
				if conn, ok := h.hostConns[msg.GameID]; ok {
					select {
					case conn.Send <- data:
					default:
						// Drop message if buffer full
					}
				}
			} else if msg.ToPlayer != "" {
				// Send to specific player
				if players, ok := h.playerConns[msg.GameID]; ok {
					if conn, ok := players[msg.ToPlayer]; ok {
						select {
						case conn.Send <- data:
						default:
						}
					}
				}
			} else {
				// Broadcast to all players
				if players, ok := h.playerConns[msg.GameID]; ok {
					for _, conn := range players {
						select {
						case conn.Send <- data:
						default:
						}
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToHost sends a message to the game host (implements service.Broadcaster)
func (h *Hub) BroadcastToHost(gameID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		GameID: gameID,
		ToHost: true,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// BroadcastToPlayer sends a message to a specific player (implements service.Broadcaster)
func (h *Hub) BroadcastToPlayer(gameID, playerID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		GameID:   gameID,
		ToPlayer: playerID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// BroadcastToAllPlayers sends a message to all players in a game (implements service.Broadcaster)
func (h *Hub) BroadcastToAllPlayers(gameID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		GameID:   gameID,
		ToPlayer: "", // Empty means all
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// DisconnectGame closes every connection for a game (implements service.Broadcaster)
func (h *Hub) DisconnectGame(gameID string) {
	h.disconnect <- gameID
}

func (h *Hub) notifyHostPlayerLeft(gameID, playerID string) {
	if conn, ok := h.hostConns[gameID]; ok {
		data, _ := json.Marshal(&Message{
			Type:    MsgPlayerLeft,
			Payload: json.RawMessage(`{"playerId":"` + playerID + `"}`),
		})
		select {
		case conn.Send <- data:
		default:
		}
	}
}
