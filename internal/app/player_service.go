package app

import (
	"context"

	"fintrex-quiz/internal/domain"
)

// PlayerService fronts the player store with format validation.
type PlayerService struct {
	players  PlayerRepository
	maxScore int
}

func NewPlayerService(players PlayerRepository, maxScore int) *PlayerService {
	return &PlayerService{players: players, maxScore: maxScore}
}

// Authenticate registers a player on first use or re-admits a returning one.
func (s *PlayerService) Authenticate(ctx context.Context, nic, name, mobile string) (domain.Player, error) {
	if !domain.ValidNIC(nic) {
		return domain.Player{}, domain.ErrInvalidNIC
	}
	if !domain.ValidMobile(mobile) {
		return domain.Player{}, domain.ErrInvalidMobile
	}
	return s.players.Authenticate(ctx, nic, name, mobile)
}

// RecordResult stores a finished attempt's score.
func (s *PlayerService) RecordResult(ctx context.Context, nic string, score int) (domain.Player, error) {
	if !domain.ValidNIC(nic) {
		return domain.Player{}, domain.ErrInvalidNIC
	}
	if score < 0 || score > s.maxScore {
		return domain.Player{}, domain.ErrInvalidScore
	}
	return s.players.RecordResult(ctx, nic, score)
}

// Winners lists WON players, most recently updated first.
func (s *PlayerService) Winners(ctx context.Context) ([]domain.Player, error) {
	return s.players.ListByStatus(ctx, domain.StatusWon)
}

// Losers lists LOST players, most recently updated first.
func (s *PlayerService) Losers(ctx context.Context) ([]domain.Player, error) {
	return s.players.ListByStatus(ctx, domain.StatusLost)
}
