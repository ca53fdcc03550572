package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"fintrex-quiz/internal/domain"
)

// PlayerRepository is a mutex-guarded in-memory implementation of
// app.PlayerRepository. The single lock makes the uniqueness checks and the
// Played check-and-set atomic, mirroring what the SQL store gets from its
// unique indexes and conditional update.
type PlayerRepository struct {
	threshold int
	now       func() time.Time

	mu      sync.Mutex
	byNIC   map[string]*domain.Player
	byPhone map[string]*domain.Player
}

func NewPlayerRepository(threshold int) *PlayerRepository {
	return NewPlayerRepositoryWithClock(threshold, time.Now)
}

// NewPlayerRepositoryWithClock allows deterministic timestamps in tests.
func NewPlayerRepositoryWithClock(threshold int, now func() time.Time) *PlayerRepository {
	return &PlayerRepository{
		threshold: threshold,
		now:       now,
		byNIC:     make(map[string]*domain.Player),
		byPhone:   make(map[string]*domain.Player),
	}
}

func (r *PlayerRepository) Authenticate(_ context.Context, nic, name, mobile string) (domain.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.byNIC[nic]
	if existing == nil {
		existing = r.byPhone[mobile]
	}

	admitted, err := domain.Admit(existing, nic, name, mobile, r.now())
	if err != nil {
		return domain.Player{}, err
	}

	stored := admitted
	r.byNIC[nic] = &stored
	r.byPhone[mobile] = &stored
	return admitted, nil
}

func (r *PlayerRepository) RecordResult(_ context.Context, nic string, score int) (domain.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, ok := r.byNIC[nic]
	if !ok {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	if err := domain.ApplyResult(player, score, r.threshold, r.now()); err != nil {
		return domain.Player{}, err
	}
	return *player, nil
}

func (r *PlayerRepository) ListByStatus(_ context.Context, status domain.Status) ([]domain.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	players := make([]domain.Player, 0)
	for _, p := range r.byNIC {
		if p.Status == status {
			players = append(players, *p)
		}
	}
	sort.Slice(players, func(i, j int) bool {
		if !players[i].UpdatedAt.Equal(players[j].UpdatedAt) {
			return players[i].UpdatedAt.After(players[j].UpdatedAt)
		}
		return players[i].NIC < players[j].NIC
	})
	return players, nil
}
