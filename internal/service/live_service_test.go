package service

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"
	"trivio/internal/cache"
	"trivio/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLiveRepo struct {
	games   map[string]*model.LiveGame
	players map[string]*model.LivePlayer
	nextID  int
}

func newFakeLiveRepo() *fakeLiveRepo {
	return &fakeLiveRepo{
		games:   make(map[string]*model.LiveGame),
		players: make(map[string]*model.LivePlayer),
	}
}

func (r *fakeLiveRepo) Put(_ context.Context, game *model.LiveGame) error {
	copied := *game
	r.games[game.HostID] = &copied
	return nil
}

func (r *fakeLiveRepo) GetByHostID(_ context.Context, hostID string) (*model.LiveGame, error) {
	if g, ok := r.games[hostID]; ok {
		copied := *g
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeLiveRepo) GetByPlayerCode(_ context.Context, code string) (*model.LiveGame, error) {
	for _, g := range r.games {
		if g.PlayerCode == code {
			copied := *g
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeLiveRepo) GetByHostCode(_ context.Context, code string) (*model.LiveGame, error) {
	for _, g := range r.games {
		if g.HostCode == code {
			copied := *g
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeLiveRepo) Delete(_ context.Context, hostID string) error {
	delete(r.games, hostID)
	return nil
}

func (r *fakeLiveRepo) AddPlayer(_ context.Context, player *model.LivePlayer) error {
	if player.ID == "" {
		r.nextID++
		player.ID = fmt.Sprintf("player-%d", r.nextID)
	}
	copied := *player
	r.players[player.ID] = &copied
	return nil
}

func (r *fakeLiveRepo) GetPlayer(_ context.Context, hostID, playerID string) (*model.LivePlayer, error) {
	if p, ok := r.players[playerID]; ok && p.HostID == hostID {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeLiveRepo) GetPlayers(_ context.Context, hostID string) ([]*model.LivePlayer, error) {
	var out []*model.LivePlayer
	for _, p := range r.players {
		if p.HostID == hostID {
			copied := *p
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinOrdinal < out[j].JoinOrdinal })
	return out, nil
}

func (r *fakeLiveRepo) UpdatePlayer(_ context.Context, player *model.LivePlayer) error {
	copied := *player
	r.players[player.ID] = &copied
	return nil
}

func (r *fakeLiveRepo) DeletePlayers(_ context.Context, hostID string) error {
	for id, p := range r.players {
		if p.HostID == hostID {
			delete(r.players, id)
		}
	}
	return nil
}

func (r *fakeLiveRepo) Subscribe(context.Context, string) (<-chan *model.LiveGame, error) {
	return nil, fmt.Errorf("no change streams in tests")
}

type fakeSessionCache struct {
	games map[string]*model.LiveGame
	codes map[string]string
}

func newFakeSessionCache() *fakeSessionCache {
	return &fakeSessionCache{
		games: make(map[string]*model.LiveGame),
		codes: make(map[string]string),
	}
}

func (c *fakeSessionCache) SetGame(_ context.Context, game *model.LiveGame) error {
	copied := *game
	c.games[game.HostID] = &copied
	return nil
}

func (c *fakeSessionCache) GetGame(_ context.Context, hostID string) (*model.LiveGame, error) {
	if g, ok := c.games[hostID]; ok {
		copied := *g
		return &copied, nil
	}
	return nil, nil
}

func (c *fakeSessionCache) DeleteGame(_ context.Context, hostID string) error {
	delete(c.games, hostID)
	return nil
}

func (c *fakeSessionCache) SetCodes(_ context.Context, hostID, hostCode, playerCode string) error {
	c.codes[hostCode] = hostID
	c.codes[playerCode] = hostID
	return nil
}

func (c *fakeSessionCache) HostIDForPlayerCode(_ context.Context, code string) (string, error) {
	return c.codes[code], nil
}

func (c *fakeSessionCache) HostIDForHostCode(_ context.Context, code string) (string, error) {
	return c.codes[code], nil
}

func (c *fakeSessionCache) CodeExists(_ context.Context, code string) (bool, error) {
	_, ok := c.codes[code]
	return ok, nil
}

func (c *fakeSessionCache) DeleteCodes(_ context.Context, hostCode, playerCode string) error {
	delete(c.codes, hostCode)
	delete(c.codes, playerCode)
	return nil
}

type fakeLeaderboard struct {
	scores map[string]map[string]int
}

func newFakeLeaderboard() *fakeLeaderboard {
	return &fakeLeaderboard{scores: make(map[string]map[string]int)}
}

func (l *fakeLeaderboard) UpdateScore(_ context.Context, hostID, playerID string, score int) error {
	if l.scores[hostID] == nil {
		l.scores[hostID] = make(map[string]int)
	}
	l.scores[hostID][playerID] = score
	return nil
}

func (l *fakeLeaderboard) GetTop(_ context.Context, hostID string, limit int) ([]cache.LeaderboardEntry, error) {
	var entries []cache.LeaderboardEntry
	for id, score := range l.scores[hostID] {
		entries = append(entries, cache.LeaderboardEntry{PlayerID: id, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (l *fakeLeaderboard) GetRank(_ context.Context, hostID, playerID string) (int64, error) {
	top, _ := l.GetTop(context.Background(), hostID, len(l.scores[hostID]))
	for _, e := range top {
		if e.PlayerID == playerID {
			return int64(e.Rank), nil
		}
	}
	return -1, nil
}

func (l *fakeLeaderboard) Delete(_ context.Context, hostID string) error {
	delete(l.scores, hostID)
	return nil
}

type recordedEvent struct {
	audience string
	gameID   string
	msgType  string
}

type recordingBroadcaster struct {
	events       []recordedEvent
	disconnected []string
}

func (b *recordingBroadcaster) BroadcastToHost(gameID, msgType string, _ interface{}) {
	b.events = append(b.events, recordedEvent{"host", gameID, msgType})
}

func (b *recordingBroadcaster) BroadcastToPlayer(gameID, _ string, msgType string, _ interface{}) {
	b.events = append(b.events, recordedEvent{"player", gameID, msgType})
}

func (b *recordingBroadcaster) BroadcastToAllPlayers(gameID, msgType string, _ interface{}) {
	b.events = append(b.events, recordedEvent{"players", gameID, msgType})
}

func (b *recordingBroadcaster) DisconnectGame(gameID string) {
	b.disconnected = append(b.disconnected, gameID)
}

func (b *recordingBroadcaster) sawType(msgType string) bool {
	for _, e := range b.events {
		if e.msgType == msgType {
			return true
		}
	}
	return false
}

type liveFixture struct {
	svc  *LiveService
	repo *fakeLiveRepo
	lb   *fakeLeaderboard
	bc   *recordingBroadcaster
	game *model.LiveGame
}

func newLiveFixture(t *testing.T) *liveFixture {
	t.Helper()

	repo := newFakeLiveRepo()
	sessions := newFakeSessionCache()
	lb := newFakeLeaderboard()
	bc := &recordingBroadcaster{}

	svc := NewLiveService(repo, sessions, lb, NewAuthService(), 5)
	svc.SetBroadcaster(bc)

	liveGame, err := svc.CreateGame(context.Background(), "host1", "Alex", "set1")
	require.NoError(t, err)

	return &liveFixture{svc: svc, repo: repo, lb: lb, bc: bc, game: liveGame}
}

func (f *liveFixture) join(t *testing.T, nickname string) string {
	t.Helper()
	resp, err := f.svc.Join(context.Background(), f.game.PlayerCode, nickname)
	require.NoError(t, err)
	return resp.PlayerID
}

func TestCreateGameIssuesDistinctCodes(t *testing.T) {
	f := newLiveFixture(t)

	assert.Len(t, f.game.HostCode, 6)
	assert.Len(t, f.game.PlayerCode, 6)
	assert.NotEqual(t, f.game.HostCode, f.game.PlayerCode)
	assert.Equal(t, string(model.DisplayBoard), f.game.Display)
	assert.Equal(t, 5, f.game.AnswerWindowSec)
	assert.False(t, f.game.HostHasJoined)
}

func TestClaimHostByHostCode(t *testing.T) {
	f := newLiveFixture(t)

	claimed, err := f.svc.ClaimHost(context.Background(), f.game.HostCode)
	require.NoError(t, err)
	assert.True(t, claimed.HostHasJoined)

	_, err = f.svc.ClaimHost(context.Background(), "000000")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestJoinAssignsOrdinalsInArrivalOrder(t *testing.T) {
	f := newLiveFixture(t)

	f.join(t, "ann")
	f.join(t, "bob")
	f.join(t, "cat")

	players, err := f.svc.Players(context.Background(), "host1")
	require.NoError(t, err)
	require.Len(t, players, 3)
	for i, want := range []string{"ann", "bob", "cat"} {
		assert.Equal(t, want, players[i].Nickname)
		assert.Equal(t, i, players[i].JoinOrdinal)
	}

	assert.True(t, f.bc.sawType("player_joined"))
}

func TestJoinRejectsUnknownCode(t *testing.T) {
	f := newLiveFixture(t)

	_, err := f.svc.Join(context.Background(), "999999", "ann")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestBuzzRequiresEnabledBuzzers(t *testing.T) {
	f := newLiveFixture(t)
	ann := f.join(t, "ann")

	err := f.svc.Buzz(context.Background(), "host1", ann, time.Now())
	assert.ErrorIs(t, err, ErrBuzzersDisabled)
}

func TestEarliestBuzzWinsRegardlessOfArrivalOrder(t *testing.T) {
	f := newLiveFixture(t)
	ann := f.join(t, "ann")
	bob := f.join(t, "bob")

	require.NoError(t, f.svc.EnableBuzzers(context.Background(), "host1"))
	game, err := f.svc.GetGame(context.Background(), "host1")
	require.NoError(t, err)
	enabled := game.BuzzersEnabledAt

	// Ann's press reaches the server later but was earlier on the clock.
	require.NoError(t, f.svc.Buzz(context.Background(), "host1", bob, enabled.Add(500*time.Millisecond)))
	require.NoError(t, f.svc.Buzz(context.Background(), "host1", ann, enabled.Add(200*time.Millisecond)))

	game, err = f.svc.GetGame(context.Background(), "host1")
	require.NoError(t, err)
	assert.Equal(t, ann, game.BuzzerWinnerID)
	assert.Equal(t, ann, game.CurrentPlayerID)
	assert.True(t, f.bc.sawType("buzzer_winner"))
}

func TestGradeAppliesSingleAttemptAndClosesBuzzers(t *testing.T) {
	f := newLiveFixture(t)
	ann := f.join(t, "ann")

	require.NoError(t, f.svc.EnableBuzzers(context.Background(), "host1"))
	game, err := f.svc.GetGame(context.Background(), "host1")
	require.NoError(t, err)
	require.NoError(t, f.svc.Buzz(context.Background(), "host1", ann, game.BuzzersEnabledAt.Add(time.Millisecond)))

	require.NoError(t, f.svc.Grade(context.Background(), "host1", model.ResponseIncorrect, 400))

	player, err := f.repo.GetPlayer(context.Background(), "host1", ann)
	require.NoError(t, err)
	assert.Equal(t, -400, player.Score)
	assert.False(t, player.InBuzzerRace)

	game, err = f.svc.GetGame(context.Background(), "host1")
	require.NoError(t, err)
	assert.False(t, game.BuzzersEnabled)
	assert.Equal(t, -400, f.lb.scores["host1"][ann])
}

func TestRegradeReversesPreviousDelta(t *testing.T) {
	f := newLiveFixture(t)
	ann := f.join(t, "ann")

	require.NoError(t, f.svc.EnableBuzzers(context.Background(), "host1"))
	game, err := f.svc.GetGame(context.Background(), "host1")
	require.NoError(t, err)
	require.NoError(t, f.svc.Buzz(context.Background(), "host1", ann, game.BuzzersEnabledAt.Add(time.Millisecond)))

	require.NoError(t, f.svc.Grade(context.Background(), "host1", model.ResponseIncorrect, 400))
	require.NoError(t, f.svc.Grade(context.Background(), "host1", model.ResponseCorrect, 400))

	player, err := f.repo.GetPlayer(context.Background(), "host1", ann)
	require.NoError(t, err)
	assert.Equal(t, 400, player.Score)

	require.NoError(t, f.svc.Grade(context.Background(), "host1", model.ResponseNeither, 400))
	player, err = f.repo.GetPlayer(context.Background(), "host1", ann)
	require.NoError(t, err)
	assert.Equal(t, 0, player.Score)
}

func TestClearBuzzersResetsRaceState(t *testing.T) {
	f := newLiveFixture(t)
	ann := f.join(t, "ann")

	require.NoError(t, f.svc.EnableBuzzers(context.Background(), "host1"))
	game, err := f.svc.GetGame(context.Background(), "host1")
	require.NoError(t, err)
	require.NoError(t, f.svc.Buzz(context.Background(), "host1", ann, game.BuzzersEnabledAt.Add(time.Millisecond)))

	require.NoError(t, f.svc.ClearBuzzers(context.Background(), "host1"))

	game, err = f.svc.GetGame(context.Background(), "host1")
	require.NoError(t, err)
	assert.False(t, game.BuzzersEnabled)
	assert.Empty(t, game.BuzzerWinnerID)

	player, err := f.repo.GetPlayer(context.Background(), "host1", ann)
	require.NoError(t, err)
	assert.False(t, player.InBuzzerRace)
	assert.True(t, player.LastBuzzedAt.IsZero())
}

func TestSetDisplayRejectsUnknownMode(t *testing.T) {
	f := newLiveFixture(t)

	err := f.svc.SetDisplay(context.Background(), "host1", "lobby", 0, 0)
	assert.Error(t, err)

	require.NoError(t, f.svc.SetDisplay(context.Background(), "host1", "clue", 2, 3))
	game, err := f.svc.GetGame(context.Background(), "host1")
	require.NoError(t, err)
	assert.Equal(t, "clue", game.Display)
	assert.Equal(t, 2, game.SelectedCategory)
	assert.Equal(t, 3, game.SelectedValue)
	assert.True(t, game.GameHasBegun)
}

func TestSubmitWagerRejectsOverScore(t *testing.T) {
	f := newLiveFixture(t)
	ann := f.join(t, "ann")

	err := f.svc.SubmitWager(context.Background(), "host1", ann, 500)
	assert.Error(t, err)

	require.NoError(t, f.svc.SubmitWager(context.Background(), "host1", ann, 0))
}

func TestLeaderboardOrdersByScore(t *testing.T) {
	f := newLiveFixture(t)
	ann := f.join(t, "ann")
	bob := f.join(t, "bob")

	require.NoError(t, f.lb.UpdateScore(context.Background(), "host1", ann, 200))
	require.NoError(t, f.lb.UpdateScore(context.Background(), "host1", bob, 600))

	top, err := f.svc.Leaderboard(context.Background(), "host1", 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, bob, top[0].PlayerID)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, ann, top[1].PlayerID)
}

func TestEndGameTearsDownEverything(t *testing.T) {
	f := newLiveFixture(t)
	f.join(t, "ann")

	require.NoError(t, f.svc.EndGame(context.Background(), "host1"))

	game, err := f.svc.GetGame(context.Background(), "host1")
	require.NoError(t, err)
	assert.Nil(t, game)

	players, err := f.svc.Players(context.Background(), "host1")
	require.NoError(t, err)
	assert.Empty(t, players)

	assert.True(t, f.bc.sawType("game_ended"))
	assert.Contains(t, f.bc.disconnected, "host1")
	assert.Empty(t, f.lb.scores["host1"])

	err = f.svc.EnableBuzzers(context.Background(), "host1")
	assert.ErrorIs(t, err, ErrGameNotFound)
}