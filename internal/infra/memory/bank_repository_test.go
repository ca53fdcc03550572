package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrex-quiz/internal/domain"
)

func TestBankRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		BankLoader: NewStaticBankLoader(map[string]domain.Bank{
			"default": sampleBank(),
		}),
	}
	repo := NewBankRepository(loader, time.Minute)

	if _, err := repo.GetBank(context.Background(), "default"); err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetBank(context.Background(), "default"); err != nil {
		t.Fatalf("get bank 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestBankRepositoryPropagatesMiss(t *testing.T) {
	repo := NewBankRepository(NewStaticBankLoader(nil), time.Minute)
	if _, err := repo.GetBank(context.Background(), "missing"); !errors.Is(err, domain.ErrBankNotFound) {
		t.Fatalf("expected bank not found, got %v", err)
	}
}

type countingLoader struct {
	BankLoader
	calls int
}

func (l *countingLoader) LoadBank(ctx context.Context, bankID string) (domain.Bank, error) {
	l.calls++
	return l.BankLoader.LoadBank(ctx, bankID)
}

func sampleBank() domain.Bank {
	return domain.Bank{
		ID: "default",
		Questions: []domain.Question{
			{
				Text:    "What is 2 + 2?",
				Options: []string{"3", "4", "5", "22"},
				Answer:  "4",
			},
		},
	}
}
