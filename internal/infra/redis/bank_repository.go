package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"fintrex-quiz/internal/domain"
)

// BankLoader fetches question banks from a backing store (e.g. Postgres).
type BankLoader interface {
	LoadBank(ctx context.Context, bankID string) (domain.Bank, error)
}

// BankRepository caches whole banks in Redis (JSON blob per bank) and falls
// back to a loader on cache miss. The singleflight group keeps a cold cache
// from stampeding the loader.
type BankRepository struct {
	client *redis.Client
	loader BankLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewBankRepository(client *redis.Client, loader BankLoader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *BankRepository) GetBank(ctx context.Context, bankID string) (domain.Bank, error) {
	if bank, ok := r.cached(ctx, bankID); ok {
		return bank, nil
	}

	result, err, _ := r.sf.Do(bankID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if bank, ok := r.cached(ctx, bankID); ok {
			return bank, nil
		}

		bank, err := r.loader.LoadBank(ctx, bankID)
		if err != nil {
			return domain.Bank{}, err
		}

		if blob, err := json.Marshal(bank); err == nil {
			// best-effort: a failed cache write only costs the next miss
			_ = r.client.Set(ctx, r.key(bankID), blob, r.ttlWithJitter()).Err()
		}
		return bank, nil
	})
	if err != nil {
		return domain.Bank{}, err
	}
	return result.(domain.Bank), nil
}

func (r *BankRepository) cached(ctx context.Context, bankID string) (domain.Bank, bool) {
	blob, err := r.client.Get(ctx, r.key(bankID)).Bytes()
	if errors.Is(err, redis.Nil) || err != nil {
		return domain.Bank{}, false
	}
	var bank domain.Bank
	if err := json.Unmarshal(blob, &bank); err != nil || len(bank.Questions) == 0 {
		return domain.Bank{}, false
	}
	return bank, true
}

func (r *BankRepository) key(bankID string) string {
	return "fintrex:bank:" + bankID
}

func (r *BankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
