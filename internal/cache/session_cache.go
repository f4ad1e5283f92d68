package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"trivio/internal/model"

	"github.com/redis/go-redis/v9"
)

// SessionCache keeps the current live session document hot in Redis so reads
// on the buzz path skip MongoDB, and maps join codes back to their host ID.
type SessionCache interface {
	SetGame(ctx context.Context, game *model.LiveGame) error
	GetGame(ctx context.Context, hostID string) (*model.LiveGame, error)
	DeleteGame(ctx context.Context, hostID string) error

	SetCodes(ctx context.Context, hostID, hostCode, playerCode string) error
	HostIDForPlayerCode(ctx context.Context, code string) (string, error)
	HostIDForHostCode(ctx context.Context, code string) (string, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	DeleteCodes(ctx context.Context, hostCode, playerCode string) error
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionCache(client *redis.Client) SessionCache {
	return &sessionCache{
		client: client,
		ttl:    24 * time.Hour, // Live games expire after 24h
	}
}

func (c *sessionCache) gameKey(hostID string) string {
	return fmt.Sprintf("live:%s", hostID)
}

func (c *sessionCache) codeKey(code string) string {
	return fmt.Sprintf("live:code:%s", code)
}

func (c *sessionCache) SetGame(ctx context.Context, game *model.LiveGame) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.gameKey(game.HostID), data, c.ttl).Err()
}

func (c *sessionCache) GetGame(ctx context.Context, hostID string) (*model.LiveGame, error) {
	data, err := c.client.Get(ctx, c.gameKey(hostID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var game model.LiveGame
	if err := json.Unmarshal([]byte(data), &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (c *sessionCache) DeleteGame(ctx context.Context, hostID string) error {
	return c.client.Del(ctx, c.gameKey(hostID)).Err()
}

// SetCodes points both join codes at the session's host ID. Codes share the
// session TTL.
func (c *sessionCache) SetCodes(ctx context.Context, hostID, hostCode, playerCode string) error {
	if err := c.client.Set(ctx, c.codeKey(hostCode), hostID, c.ttl).Err(); err != nil {
		return err
	}
	return c.client.Set(ctx, c.codeKey(playerCode), hostID, c.ttl).Err()
}

func (c *sessionCache) HostIDForPlayerCode(ctx context.Context, code string) (string, error) {
	return c.lookupCode(ctx, code)
}

func (c *sessionCache) HostIDForHostCode(ctx context.Context, code string) (string, error) {
	return c.lookupCode(ctx, code)
}

func (c *sessionCache) lookupCode(ctx context.Context, code string) (string, error) {
	hostID, err := c.client.Get(ctx, c.codeKey(code)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return hostID, err
}

func (c *sessionCache) CodeExists(ctx context.Context, code string) (bool, error) {
	n, err := c.client.Exists(ctx, c.codeKey(code)).Result()
	return n > 0, err
}

func (c *sessionCache) DeleteCodes(ctx context.Context, hostCode, playerCode string) error {
	return c.client.Del(ctx, c.codeKey(hostCode), c.codeKey(playerCode)).Err()
}
