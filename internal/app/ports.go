package app

import (
	"context"

	"fintrex-quiz/internal/domain"
)

// SessionStore is the injected persistence port for session blobs. Blobs are
// namespaced per player identity; a missing key is (nil, false, nil), never
// an error.
type SessionStore interface {
	Load(ctx context.Context, nic string) ([]byte, bool, error)
	Save(ctx context.Context, nic string, blob []byte) error
	Clear(ctx context.Context, nic string) error
}

// BankRepository loads question banks (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context, bankID string) (domain.Bank, error)
}

// PlayerRepository stores player records. Implementations must enforce the
// NIC/mobile uniqueness constraints atomically (mapping violations to
// domain.ErrIdentityConflict) and guarantee that of two racing RecordResult
// calls for one player at most one flips Played false to true.
type PlayerRepository interface {
	Authenticate(ctx context.Context, nic, name, mobile string) (domain.Player, error)
	RecordResult(ctx context.Context, nic string, score int) (domain.Player, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Player, error)
}
