package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToHost(gameID string, msgType string, payload interface{})
	BroadcastToPlayer(gameID, playerID string, msgType string, payload interface{})
	BroadcastToAllPlayers(gameID string, msgType string, payload interface{})
	DisconnectGame(gameID string)
}
