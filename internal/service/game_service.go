package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
	"trivio/internal/game"
	"trivio/internal/model"
	"trivio/internal/repository"
)

var ErrNoActiveGame = errors.New("host has no active game")

// contestantWrite is one queued mirror write for a saved contestant profile.
type contestantWrite struct {
	hostID string
	team   model.Team
	delete bool
	teamID string
}

// GameService runs in-memory game engines, one per host, and mirrors saved
// contestant edits to MongoDB in the background. In-memory state is
// authoritative; persistence is fire and forget.
type GameService struct {
	setSvc         *SetService
	contestantRepo repository.ContestantRepo
	recordRepo     repository.RecordRepo
	narrate        func() game.Narrator

	mu    sync.Mutex
	games map[string]*hostedGame

	writes chan contestantWrite
}

type hostedGame struct {
	mu     sync.Mutex
	engine *game.Engine
	setID  string
	hostID string
}

// NewGameService creates a new game service. narrate builds the narrator
// attached to each new engine.
func NewGameService(
	setSvc *SetService,
	contestantRepo repository.ContestantRepo,
	recordRepo repository.RecordRepo,
	narrate func() game.Narrator,
) *GameService {
	s := &GameService{
		setSvc:         setSvc,
		contestantRepo: contestantRepo,
		recordRepo:     recordRepo,
		narrate:        narrate,
		games:          make(map[string]*hostedGame),
		writes:         make(chan contestantWrite, 256),
	}
	go s.flushWrites()
	return s
}

// flushWrites drains the contestant write queue. Failures are logged and
// dropped; the roster's in-memory state stays authoritative.
func (s *GameService) flushWrites() {
	for w := range s.writes {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		var err error
		if w.delete {
			err = s.contestantRepo.Delete(ctx, w.hostID, w.teamID)
		} else {
			err = s.contestantRepo.Save(ctx, &model.SavedContestant{
				HostID:    w.hostID,
				TeamID:    w.team.ID,
				Name:      w.team.Name,
				Members:   w.team.Members,
				Color:     w.team.Color,
				CreatedAt: time.Now(),
			})
		}
		cancel()
		if err != nil {
			log.Printf("contestant write failed for host %s: %v", w.hostID, err)
		}
	}
}

// hostSaver adapts the write queue to one host's roster.
type hostSaver struct {
	svc    *GameService
	hostID string
}

func (h hostSaver) QueueSave(team model.Team) {
	select {
	case h.svc.writes <- contestantWrite{hostID: h.hostID, team: team}:
	default:
		log.Printf("contestant write queue full, dropping save for host %s", h.hostID)
	}
}

func (h hostSaver) QueueDelete(teamID string) {
	select {
	case h.svc.writes <- contestantWrite{hostID: h.hostID, teamID: teamID, delete: true}:
	default:
		log.Printf("contestant write queue full, dropping delete for host %s", h.hostID)
	}
}

// StartGame builds a fresh engine for the host from the chosen set. Any game
// the host already had running is discarded.
func (s *GameService) StartGame(ctx context.Context, hostID, setID string) (*game.Engine, error) {
	board, err := s.setSvc.BoardFor(ctx, setID)
	if err != nil {
		return nil, err
	}

	roster := game.NewRoster(hostSaver{svc: s, hostID: hostID})
	engine := game.NewEngine(board, roster, s.narrate())

	s.mu.Lock()
	s.games[hostID] = &hostedGame{engine: engine, setID: setID, hostID: hostID}
	s.mu.Unlock()

	return engine, nil
}

// WithEngine runs fn against the host's engine under the game lock. The
// engine itself is not concurrency safe, so every mutation goes through here.
func (s *GameService) WithEngine(hostID string, fn func(e *game.Engine) error) error {
	s.mu.Lock()
	g, ok := s.games[hostID]
	s.mu.Unlock()
	if !ok {
		return ErrNoActiveGame
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.engine)
}

// LoadSavedContestants returns the host's persisted contestant profiles for
// roster setup.
func (s *GameService) LoadSavedContestants(ctx context.Context, hostID string) ([]*model.SavedContestant, error) {
	return s.contestantRepo.GetAllByHost(ctx, hostID)
}

// FinishGame writes the game record, bumps the set's stats and tears the
// engine down. rating is the host's 0-5 rating of the set, 0 to skip.
func (s *GameService) FinishGame(ctx context.Context, hostID string, rating float64) (*model.GameRecord, error) {
	s.mu.Lock()
	g, ok := s.games[hostID]
	delete(s.games, hostID)
	s.mu.Unlock()
	if !ok {
		return nil, ErrNoActiveGame
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	roster := g.engine.Roster()

	record := &model.GameRecord{
		HostID:       hostID,
		SetID:        g.setID,
		PlayedAt:     time.Now(),
		Steps:        roster.Step(),
		CluesSolved:  roster.Solved(),
		NameByID:     make(map[string]string),
		ColorByID:    make(map[string]string),
		ScoreHistory: roster.ScoreHistory(),
	}
	topScore := 0
	for _, team := range roster.Teams() {
		record.TeamIDs = append(record.TeamIDs, team.ID)
		record.NameByID[team.ID] = team.Name
		record.ColorByID[team.ID] = team.Color
		if team.Score > topScore {
			topScore = team.Score
		}
	}

	if err := s.recordRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to write game record: %w", err)
	}
	if err := s.setSvc.RecordPlay(ctx, g.setID, rating, topScore); err != nil {
		// The record is already written; stats are best effort.
		log.Printf("failed to bump stats for set %s: %v", g.setID, err)
	}

	return record, nil
}

// History lists the host's past game records, newest first.
func (s *GameService) History(ctx context.Context, hostID string, limit int) ([]*model.GameRecord, error) {
	return s.recordRepo.GetByHost(ctx, hostID, limit)
}

// Close stops the background writer.
func (s *GameService) Close() {
	close(s.writes)
}
