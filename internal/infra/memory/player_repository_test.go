package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fintrex-quiz/internal/domain"
)

func TestAuthenticateRegistersAndReadmits(t *testing.T) {
	ctx := context.Background()
	repo := NewPlayerRepository(7)

	p, err := repo.Authenticate(ctx, "123456789V", "Alice", "0712345678")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if p.Name != "Alice" || p.Played {
		t.Fatalf("unexpected player %+v", p)
	}

	// Same pair re-admits until a result is recorded.
	if _, err := repo.Authenticate(ctx, "123456789V", "", "0712345678"); err != nil {
		t.Fatalf("re-authenticate failed: %v", err)
	}
}

func TestAuthenticateConflictsOnEitherKey(t *testing.T) {
	ctx := context.Background()
	repo := NewPlayerRepository(7)

	if _, err := repo.Authenticate(ctx, "123456789V", "Alice", "0712345678"); err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}

	if _, err := repo.Authenticate(ctx, "123456789V", "Mallory", "0799999999"); !errors.Is(err, domain.ErrIdentityConflict) {
		t.Fatalf("expected conflict on reused nic, got %v", err)
	}
	if _, err := repo.Authenticate(ctx, "200012345678", "Mallory", "0712345678"); !errors.Is(err, domain.ErrIdentityConflict) {
		t.Fatalf("expected conflict on reused mobile, got %v", err)
	}
}

func TestRecordResultLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewPlayerRepository(7)

	if _, err := repo.RecordResult(ctx, "123456789V", 5); !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if _, err := repo.Authenticate(ctx, "123456789V", "Alice", "0712345678"); err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}

	p, err := repo.RecordResult(ctx, "123456789V", 9)
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if !p.Played || p.Score != 9 || p.Status != domain.StatusWon {
		t.Fatalf("unexpected record %+v", p)
	}

	// Redelivery must fail without touching the stored score.
	if _, err := repo.RecordResult(ctx, "123456789V", 1); !errors.Is(err, domain.ErrAlreadyRecorded) {
		t.Fatalf("expected already recorded, got %v", err)
	}
	winners, err := repo.ListByStatus(ctx, domain.StatusWon)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(winners) != 1 || winners[0].Score != 9 {
		t.Fatalf("stored score changed: %+v", winners)
	}

	// A finished player cannot re-enter.
	if _, err := repo.Authenticate(ctx, "123456789V", "", "0712345678"); !errors.Is(err, domain.ErrAlreadyPlayed) {
		t.Fatalf("expected already played, got %v", err)
	}
}

func TestRecordResultRaceAdmitsOne(t *testing.T) {
	ctx := context.Background()
	repo := NewPlayerRepository(7)
	if _, err := repo.Authenticate(ctx, "123456789V", "Alice", "0712345678"); err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}

	const racers = 16
	var wg sync.WaitGroup
	results := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			_, err := repo.RecordResult(ctx, "123456789V", score)
			results <- err
		}(i % 11)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, domain.ErrAlreadyRecorded) {
			t.Fatalf("unexpected race error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one winner of the race, got %d", succeeded)
	}
}

func TestListByStatusOrdersByUpdate(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		ts = ts.Add(time.Minute)
		return ts
	}
	repo := NewPlayerRepositoryWithClock(7, clock)

	for _, p := range []struct{ nic, mobile string }{
		{"199012345678", "0711111111"},
		{"123456789V", "0712222222"},
		{"200012345678", "0713333333"},
	} {
		if _, err := repo.Authenticate(ctx, p.nic, "", p.mobile); err != nil {
			t.Fatalf("authenticate failed: %v", err)
		}
		if _, err := repo.RecordResult(ctx, p.nic, 2); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	losers, err := repo.ListByStatus(ctx, domain.StatusLost)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(losers) != 3 {
		t.Fatalf("expected 3 losers, got %d", len(losers))
	}
	// Most recently updated first.
	if losers[0].NIC != "200012345678" || losers[2].NIC != "199012345678" {
		t.Fatalf("wrong order: %s, %s, %s", losers[0].NIC, losers[1].NIC, losers[2].NIC)
	}
}
