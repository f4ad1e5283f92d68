package service

import (
	"context"
	"fmt"
	"time"
	"trivio/internal/game"
	"trivio/internal/model"
	"trivio/internal/repository"
)

// SetService handles trivia set CRUD and normalization
type SetService struct {
	setRepo repository.SetRepo
}

// NewSetService creates a new set service
func NewSetService(setRepo repository.SetRepo) *SetService {
	return &SetService{setRepo: setRepo}
}

// CreateSet validates and persists a new set owned by hostID. The set is
// normalized once up front so malformed boards are rejected at write time.
func (s *SetService) CreateSet(ctx context.Context, hostID string, set *model.TriviaSet) (*model.TriviaSet, error) {
	set.UserID = hostID
	now := time.Now()
	set.CreatedAt = now
	set.UpdatedAt = now

	if _, err := game.Normalize(set); err != nil {
		return nil, fmt.Errorf("set rejected: %w", err)
	}

	if err := s.setRepo.Create(ctx, set); err != nil {
		return nil, fmt.Errorf("failed to create set: %w", err)
	}
	return set, nil
}

// GetSet retrieves a set by ID, upgraded to the indexed schema
func (s *SetService) GetSet(ctx context.Context, id string) (*model.TriviaSet, error) {
	return s.setRepo.GetByID(ctx, id)
}

// ListSets returns the host's sets plus everyone's public sets
func (s *SetService) ListSets(ctx context.Context, hostID string) ([]*model.TriviaSet, error) {
	all, err := s.setRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var visible []*model.TriviaSet
	for _, set := range all {
		if set.IsPublic || set.UserID == hostID {
			visible = append(visible, set)
		}
	}
	return visible, nil
}

// UpdateSet replaces a set the host owns
func (s *SetService) UpdateSet(ctx context.Context, hostID string, set *model.TriviaSet) error {
	existing, err := s.setRepo.GetByID(ctx, set.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("set not found")
	}
	if existing.UserID != hostID {
		return fmt.Errorf("unauthorized: not set owner")
	}

	if _, err := game.Normalize(set); err != nil {
		return fmt.Errorf("set rejected: %w", err)
	}

	set.UserID = hostID
	set.CreatedAt = existing.CreatedAt
	set.UpdatedAt = time.Now()
	return s.setRepo.Update(ctx, set)
}

// DeleteSet removes a set the host owns
func (s *SetService) DeleteSet(ctx context.Context, hostID, id string) error {
	existing, err := s.setRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("set not found")
	}
	if existing.UserID != hostID {
		return fmt.Errorf("unauthorized: not set owner")
	}
	return s.setRepo.Delete(ctx, id)
}

// BoardFor loads a set and normalizes it into a playable board
func (s *SetService) BoardFor(ctx context.Context, setID string) (*game.Board, error) {
	set, err := s.setRepo.GetByID(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("failed to get set: %w", err)
	}
	if set == nil {
		return nil, fmt.Errorf("set not found")
	}
	return game.Normalize(set)
}

// RecordPlay bumps the set's aggregate stats after a finished game. rating
// may be zero when the host skipped rating.
func (s *SetService) RecordPlay(ctx context.Context, setID string, rating float64, topScore int) error {
	delta := model.SetStats{
		Plays:        1,
		AverageScore: float64(topScore),
	}
	if rating > 0 {
		delta.Rating = rating
		delta.NumRatings = 1
	}
	return s.setRepo.IncrementStats(ctx, setID, delta)
}
