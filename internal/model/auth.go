package model

import "github.com/golang-jwt/jwt/v5"

// HostClaims are JWT claims for host authentication
type HostClaims struct {
	HostID string `json:"hostId"`
	jwt.RegisteredClaims
}

// PlayerClaims are JWT claims for player game-scoped tokens
type PlayerClaims struct {
	GameID   string `json:"gameId"` // host ID of the live game
	PlayerID string `json:"playerId"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for host login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token  string `json:"token"`
	HostID string `json:"hostId"`
}

// JoinRequest is the body a player sends with a live game's player code
type JoinRequest struct {
	PlayerCode string `json:"playerCode"`
	Nickname   string `json:"nickname"`
}

// JoinResponse is returned when a player joins a live game
type JoinResponse struct {
	PlayerID string    `json:"playerId"`
	Token    string    `json:"token"`
	Game     *LiveGame `json:"game"`
}
