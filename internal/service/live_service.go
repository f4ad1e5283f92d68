package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
	"trivio/internal/cache"
	"trivio/internal/game"
	"trivio/internal/model"
	"trivio/internal/repository"
)

var (
	ErrGameNotFound    = errors.New("live game not found")
	ErrGameEnded       = errors.New("live game has ended")
	ErrBuzzersDisabled = errors.New("buzzers are not enabled")
)

// liveState is the in-memory side of one live game: the buzzer race and the
// last grading delta, which the session document does not carry.
type liveState struct {
	race       *game.BuzzerRace
	lastPlayer string
	lastDelta  int
	cancelSub  context.CancelFunc
}

// LiveService runs remotely hosted game sessions: join codes, the buzzer
// race, single-attempt grading and teardown. The session document in MongoDB
// is the synchronized source of truth; Redis keeps it hot and resolves join
// codes.
type LiveService struct {
	liveRepo    repository.LiveRepo
	sessions    cache.SessionCache
	leaderboard cache.LeaderboardCache
	authSvc     *AuthService
	broadcaster Broadcaster

	answerWindowSec int

	mu     sync.Mutex
	states map[string]*liveState
}

// NewLiveService creates a new live service
func NewLiveService(
	liveRepo repository.LiveRepo,
	sessions cache.SessionCache,
	leaderboard cache.LeaderboardCache,
	authSvc *AuthService,
	answerWindowSec int,
) *LiveService {
	return &LiveService{
		liveRepo:        liveRepo,
		sessions:        sessions,
		leaderboard:     leaderboard,
		authSvc:         authSvc,
		answerWindowSec: answerWindowSec,
		states:          make(map[string]*liveState),
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *LiveService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CreateGame opens a live session for the host. A host runs at most one live
// game; creating a new one replaces any existing session document.
func (s *LiveService) CreateGame(ctx context.Context, hostID, hostName, setID string) (*model.LiveGame, error) {
	hostCode, err := s.generateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate host code: %w", err)
	}
	playerCode := hostCode
	for playerCode == hostCode {
		playerCode, err = s.generateCode(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to generate player code: %w", err)
		}
	}

	liveGame := &model.LiveGame{
		HostID:          hostID,
		HostName:        hostName,
		SetID:           setID,
		HostCode:        hostCode,
		PlayerCode:      playerCode,
		Display:         string(model.DisplayBoard),
		AnswerWindowSec: s.answerWindowSec,
		StartedAt:       time.Now(),
	}

	if err := s.liveRepo.Put(ctx, liveGame); err != nil {
		return nil, fmt.Errorf("failed to create live game: %w", err)
	}
	if err := s.sessions.SetGame(ctx, liveGame); err != nil {
		return nil, fmt.Errorf("failed to cache live game: %w", err)
	}
	if err := s.sessions.SetCodes(ctx, hostID, hostCode, playerCode); err != nil {
		return nil, fmt.Errorf("failed to cache join codes: %w", err)
	}

	state := &liveState{race: game.NewBuzzerRace()}
	s.mu.Lock()
	s.states[hostID] = state
	s.mu.Unlock()

	s.watchGame(hostID, state)

	return liveGame, nil
}

// watchGame forwards session document updates to connected clients. Change
// streams need a replica set; without one the update path still works because
// every mutation here broadcasts explicitly.
func (s *LiveService) watchGame(hostID string, state *liveState) {
	ctx, cancel := context.WithCancel(context.Background())
	state.cancelSub = cancel

	updates, err := s.liveRepo.Subscribe(ctx, hostID)
	if err != nil {
		log.Printf("change stream unavailable for game %s: %v", hostID, err)
		cancel()
		return
	}

	go func() {
		for update := range updates {
			if s.broadcaster != nil {
				s.broadcaster.BroadcastToAllPlayers(hostID, "game_update", update)
				s.broadcaster.BroadcastToHost(hostID, "game_update", update)
			}
		}
	}()
}

// GetGame reads the session, preferring the cache.
func (s *LiveService) GetGame(ctx context.Context, hostID string) (*model.LiveGame, error) {
	if cached, err := s.sessions.GetGame(ctx, hostID); err == nil && cached != nil {
		return cached, nil
	}
	return s.liveRepo.GetByHostID(ctx, hostID)
}

// ClaimHost marks the session as claimed by the host console that presented
// the host code.
func (s *LiveService) ClaimHost(ctx context.Context, hostCode string) (*model.LiveGame, error) {
	liveGame, err := s.liveRepo.GetByHostCode(ctx, hostCode)
	if err != nil {
		return nil, err
	}
	if liveGame == nil {
		return nil, ErrGameNotFound
	}

	liveGame.HostHasJoined = true
	if err := s.put(ctx, liveGame); err != nil {
		return nil, err
	}
	return liveGame, nil
}

// Join adds a remote player via the player code and returns their game-scoped
// token.
func (s *LiveService) Join(ctx context.Context, playerCode, nickname string) (*model.JoinResponse, error) {
	hostID, err := s.sessions.HostIDForPlayerCode(ctx, playerCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve player code: %w", err)
	}

	var liveGame *model.LiveGame
	if hostID != "" {
		liveGame, err = s.GetGame(ctx, hostID)
	} else {
		liveGame, err = s.liveRepo.GetByPlayerCode(ctx, playerCode)
	}
	if err != nil {
		return nil, err
	}
	if liveGame == nil {
		return nil, ErrGameNotFound
	}

	existing, err := s.liveRepo.GetPlayers(ctx, liveGame.HostID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	player := &model.LivePlayer{
		HostID:      liveGame.HostID,
		Nickname:    nickname,
		JoinOrdinal: len(existing),
		JoinedAt:    time.Now(),
	}
	if err := s.liveRepo.AddPlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to add player: %w", err)
	}

	token, err := s.authSvc.GeneratePlayerToken(liveGame.HostID, player.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.leaderboard.UpdateScore(ctx, liveGame.HostID, player.ID, 0); err != nil {
		return nil, fmt.Errorf("failed to init leaderboard: %w", err)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToHost(liveGame.HostID, "player_joined", player)
	}

	return &model.JoinResponse{
		PlayerID: player.ID,
		Token:    token,
		Game:     liveGame,
	}, nil
}

// SetDisplay moves every client to the given display mode. Unknown display
// strings are rejected at this boundary.
func (s *LiveService) SetDisplay(ctx context.Context, hostID, display string, category, value int) error {
	parsed, err := model.ParseLiveDisplay(display)
	if err != nil {
		return err
	}

	liveGame, err := s.GetGame(ctx, hostID)
	if err != nil {
		return err
	}
	if liveGame == nil {
		return ErrGameNotFound
	}

	liveGame.Display = string(parsed)
	liveGame.SelectedCategory = category
	liveGame.SelectedValue = value
	if !liveGame.GameHasBegun {
		liveGame.GameHasBegun = true
	}
	if err := s.put(ctx, liveGame); err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToAllPlayers(hostID, "display_update", liveGame)
	}
	return nil
}

// EnableBuzzers arms the race: every joined player is eligible until they
// buzz or the host clears.
func (s *LiveService) EnableBuzzers(ctx context.Context, hostID string) error {
	liveGame, err := s.GetGame(ctx, hostID)
	if err != nil {
		return err
	}
	if liveGame == nil {
		return ErrGameNotFound
	}

	now := time.Now()
	state, ok := s.state(hostID)
	if !ok {
		return ErrGameNotFound
	}
	state.race.Arm(now)
	state.lastPlayer = ""
	state.lastDelta = 0

	liveGame.BuzzersEnabled = true
	liveGame.BuzzersEnabledAt = now
	liveGame.BuzzerWinnerID = ""
	if err := s.put(ctx, liveGame); err != nil {
		return err
	}

	players, err := s.liveRepo.GetPlayers(ctx, hostID)
	if err != nil {
		return err
	}
	for _, p := range players {
		p.InBuzzerRace = true
		p.LastBuzzedAt = time.Time{}
		if err := s.liveRepo.UpdatePlayer(ctx, p); err != nil {
			return err
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToAllPlayers(hostID, "buzzers_enabled", liveGame)
	}
	return nil
}

// Buzz records a player's press and re-resolves the winner. Presses from
// players already out of the race are ignored without error so late taps
// cost nothing; presses while buzzers are disabled are rejected.
func (s *LiveService) Buzz(ctx context.Context, hostID, playerID string, at time.Time) error {
	liveGame, err := s.GetGame(ctx, hostID)
	if err != nil {
		return err
	}
	if liveGame == nil {
		return ErrGameNotFound
	}
	if !liveGame.BuzzersEnabled {
		return ErrBuzzersDisabled
	}

	player, err := s.liveRepo.GetPlayer(ctx, hostID, playerID)
	if err != nil {
		return err
	}
	if player == nil || !player.InBuzzerRace {
		return nil
	}

	state, ok := s.state(hostID)
	if !ok {
		return ErrGameNotFound
	}
	state.race.Buzz(playerID, player.JoinOrdinal, at)

	player.LastBuzzedAt = at
	if err := s.liveRepo.UpdatePlayer(ctx, player); err != nil {
		return err
	}

	winner, ok := state.race.Winner()
	if ok && winner != liveGame.BuzzerWinnerID {
		liveGame.BuzzerWinnerID = winner
		liveGame.CurrentPlayerID = winner
		if err := s.put(ctx, liveGame); err != nil {
			return err
		}
		if s.broadcaster != nil {
			s.broadcaster.BroadcastToHost(hostID, "buzzer_winner", liveGame)
			s.broadcaster.BroadcastToAllPlayers(hostID, "buzzer_winner", liveGame)
		}
	}
	return nil
}

// Grade applies the host's verdict on the buzzer winner's attempt. Each clue
// is a single attempt: correct adds the value, incorrect subtracts it and the
// game goes back to the board without reopening the race. Re-grading first
// reverses the previous delta.
func (s *LiveService) Grade(ctx context.Context, hostID string, status model.LiveResponseStatus, pointValue int) error {
	liveGame, err := s.GetGame(ctx, hostID)
	if err != nil {
		return err
	}
	if liveGame == nil {
		return ErrGameNotFound
	}
	if liveGame.BuzzerWinnerID == "" {
		return nil
	}

	player, err := s.liveRepo.GetPlayer(ctx, hostID, liveGame.BuzzerWinnerID)
	if err != nil {
		return err
	}
	if player == nil {
		return nil
	}

	state, ok := s.state(hostID)
	if !ok {
		return ErrGameNotFound
	}

	// Reverse the previous verdict before applying the new one.
	if state.lastPlayer == player.ID && state.lastDelta != 0 {
		player.Score -= state.lastDelta
	}

	delta := 0
	switch status {
	case model.ResponseCorrect:
		delta = pointValue
	case model.ResponseIncorrect:
		delta = -pointValue
	}
	player.Score += delta
	state.lastPlayer = player.ID
	state.lastDelta = delta

	player.InBuzzerRace = false
	if err := s.liveRepo.UpdatePlayer(ctx, player); err != nil {
		return err
	}
	if err := s.leaderboard.UpdateScore(ctx, hostID, player.ID, player.Score); err != nil {
		return err
	}

	liveGame.BuzzersEnabled = false
	if err := s.put(ctx, liveGame); err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToAllPlayers(hostID, "score_update", player)
		s.broadcaster.BroadcastToHost(hostID, "score_update", player)
	}
	return nil
}

// ClearBuzzers disarms the race and resets every player's race flags.
func (s *LiveService) ClearBuzzers(ctx context.Context, hostID string) error {
	liveGame, err := s.GetGame(ctx, hostID)
	if err != nil {
		return err
	}
	if liveGame == nil {
		return ErrGameNotFound
	}

	if state, ok := s.state(hostID); ok {
		state.race.Clear()
		state.lastPlayer = ""
		state.lastDelta = 0
	}

	liveGame.BuzzersEnabled = false
	liveGame.BuzzerWinnerID = ""
	if err := s.put(ctx, liveGame); err != nil {
		return err
	}

	players, err := s.liveRepo.GetPlayers(ctx, hostID)
	if err != nil {
		return err
	}
	for _, p := range players {
		if !p.InBuzzerRace && p.LastBuzzedAt.IsZero() {
			continue
		}
		p.InBuzzerRace = false
		p.LastBuzzedAt = time.Time{}
		if err := s.liveRepo.UpdatePlayer(ctx, p); err != nil {
			return err
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToAllPlayers(hostID, "buzzers_cleared", liveGame)
	}
	return nil
}

// SubmitResponse stores a player's typed answer (wager-valued clues and the
// final round) and bumps the session's submission counter.
func (s *LiveService) SubmitResponse(ctx context.Context, hostID, playerID, text string) error {
	player, err := s.liveRepo.GetPlayer(ctx, hostID, playerID)
	if err != nil {
		return err
	}
	if player == nil {
		return ErrGameNotFound
	}

	player.Response = text
	if err := s.liveRepo.UpdatePlayer(ctx, player); err != nil {
		return err
	}

	liveGame, err := s.GetGame(ctx, hostID)
	if err != nil {
		return err
	}
	if liveGame == nil {
		return ErrGameNotFound
	}
	liveGame.NumSubmitted++
	if err := s.put(ctx, liveGame); err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToHost(hostID, "response_submitted", player)
	}
	return nil
}

// SubmitWager stores a player's wager for wager-valued clues.
func (s *LiveService) SubmitWager(ctx context.Context, hostID, playerID string, wager int) error {
	player, err := s.liveRepo.GetPlayer(ctx, hostID, playerID)
	if err != nil {
		return err
	}
	if player == nil {
		return ErrGameNotFound
	}

	if _, err := game.ValidateWager(fmt.Sprintf("%d", wager), player.Score, 0); err != nil {
		return err
	}

	player.Wager = wager
	if err := s.liveRepo.UpdatePlayer(ctx, player); err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToHost(hostID, "wager_submitted", player)
	}
	return nil
}

// Players lists the joined players in join order.
func (s *LiveService) Players(ctx context.Context, hostID string) ([]*model.LivePlayer, error) {
	return s.liveRepo.GetPlayers(ctx, hostID)
}

// Leaderboard returns the top live standings.
func (s *LiveService) Leaderboard(ctx context.Context, hostID string, limit int) ([]cache.LeaderboardEntry, error) {
	return s.leaderboard.GetTop(ctx, hostID, limit)
}

// EndGame tears the session down everywhere: document, players, codes, cache,
// leaderboard and connections.
func (s *LiveService) EndGame(ctx context.Context, hostID string) error {
	liveGame, err := s.GetGame(ctx, hostID)
	if err != nil {
		return err
	}
	if liveGame == nil {
		return ErrGameNotFound
	}

	s.mu.Lock()
	if state, ok := s.states[hostID]; ok {
		if state.cancelSub != nil {
			state.cancelSub()
		}
		delete(s.states, hostID)
	}
	s.mu.Unlock()

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToAllPlayers(hostID, "game_ended", liveGame)
	}

	if err := s.liveRepo.DeletePlayers(ctx, hostID); err != nil {
		return err
	}
	if err := s.liveRepo.Delete(ctx, hostID); err != nil {
		return err
	}
	if err := s.sessions.DeleteCodes(ctx, liveGame.HostCode, liveGame.PlayerCode); err != nil {
		return err
	}
	if err := s.sessions.DeleteGame(ctx, hostID); err != nil {
		return err
	}
	if err := s.leaderboard.Delete(ctx, hostID); err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.DisconnectGame(hostID)
	}
	return nil
}

// put writes the session document through to both stores.
func (s *LiveService) put(ctx context.Context, liveGame *model.LiveGame) error {
	if err := s.liveRepo.Put(ctx, liveGame); err != nil {
		return err
	}
	return s.sessions.SetGame(ctx, liveGame)
}

func (s *LiveService) state(hostID string) (*liveState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[hostID]
	return st, ok
}

// generateCode creates a unique 6-digit numeric join code.
func (s *LiveService) generateCode(ctx context.Context) (string, error) {
	for attempts := 0; attempts < 10; attempts++ {
		b := make([]byte, 6)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}

		code := make([]byte, 6)
		for i := range code {
			code[i] = '0' + b[i]%10
		}
		codeStr := string(code)

		// Check uniqueness
		exists, err := s.sessions.CodeExists(ctx, codeStr)
		if err != nil {
			return "", err
		}
		if !exists {
			return codeStr, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique join code")
}
