package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"fintrex-quiz/internal/domain"
)

type playerRow struct {
	bun.BaseModel `bun:"table:players"`

	NIC       string    `bun:"nic,pk"`
	Name      string    `bun:"name"`
	Mobile    string    `bun:"mobile"`
	Score     int       `bun:"score"`
	Status    string    `bun:"status"`
	Played    bool      `bun:"played"`
	CreatedAt time.Time `bun:"created_at"`
	UpdatedAt time.Time `bun:"updated_at"`
}

func (r playerRow) toDomain() domain.Player {
	return domain.Player{
		NIC:       r.NIC,
		Name:      r.Name,
		Mobile:    r.Mobile,
		Score:     r.Score,
		Status:    domain.Status(r.Status),
		Played:    r.Played,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// PlayerRepository stores player records in Postgres through bun. The unique
// indexes on nic and mobile enforce identity atomically across instances;
// a violation surfaces as domain.ErrIdentityConflict. RecordResult relies on
// a conditional UPDATE so two racing submissions can't both flip Played.
type PlayerRepository struct {
	db        *bun.DB
	threshold int
	now       func() time.Time
}

func NewPlayerRepository(db *bun.DB, threshold int) *PlayerRepository {
	return &PlayerRepository{db: db, threshold: threshold, now: time.Now}
}

func (r *PlayerRepository) Authenticate(ctx context.Context, nic, name, mobile string) (domain.Player, error) {
	now := r.now()

	var row playerRow
	err := r.db.NewSelect().Model(&row).
		Where("nic = ? OR mobile = ?", nic, mobile).
		Limit(1).
		Scan(ctx)

	var existing *domain.Player
	if err == nil {
		p := row.toDomain()
		existing = &p
	} else if !errors.Is(err, sql.ErrNoRows) {
		return domain.Player{}, fmt.Errorf("find player: %w", err)
	}

	admitted, err := domain.Admit(existing, nic, name, mobile, now)
	if err != nil {
		return domain.Player{}, err
	}

	if existing == nil {
		ins := playerRow{
			NIC:       admitted.NIC,
			Name:      admitted.Name,
			Mobile:    admitted.Mobile,
			Score:     admitted.Score,
			Status:    string(admitted.Status),
			Played:    admitted.Played,
			CreatedAt: admitted.CreatedAt,
			UpdatedAt: admitted.UpdatedAt,
		}
		if _, err := r.db.NewInsert().Model(&ins).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				// Lost a race with a concurrent registration on one of the keys.
				return domain.Player{}, domain.ErrIdentityConflict
			}
			return domain.Player{}, fmt.Errorf("insert player: %w", err)
		}
		return admitted, nil
	}

	if admitted.Name != existing.Name {
		_, err := r.db.NewUpdate().Model((*playerRow)(nil)).
			Set("name = ?", admitted.Name).
			Set("updated_at = ?", now).
			Where("nic = ?", nic).
			Exec(ctx)
		if err != nil {
			return domain.Player{}, fmt.Errorf("update player name: %w", err)
		}
	}
	return admitted, nil
}

func (r *PlayerRepository) RecordResult(ctx context.Context, nic string, score int) (domain.Player, error) {
	now := r.now()
	status := domain.StatusLost
	if score >= r.threshold {
		status = domain.StatusWon
	}

	// played = FALSE in the predicate makes the flip first-writer-wins.
	res, err := r.db.NewUpdate().Model((*playerRow)(nil)).
		Set("score = ?", score).
		Set("status = ?", string(status)).
		Set("played = TRUE").
		Set("updated_at = ?", now).
		Where("nic = ?", nic).
		Where("played = FALSE").
		Exec(ctx)
	if err != nil {
		return domain.Player{}, fmt.Errorf("record result: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Player{}, fmt.Errorf("record result: %w", err)
	}

	var row playerRow
	if err := r.db.NewSelect().Model(&row).Where("nic = ?", nic).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Player{}, domain.ErrPlayerNotFound
		}
		return domain.Player{}, fmt.Errorf("reload player: %w", err)
	}
	if affected == 0 {
		return domain.Player{}, domain.ErrAlreadyRecorded
	}
	return row.toDomain(), nil
}

func (r *PlayerRepository) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Player, error) {
	var rows []playerRow
	err := r.db.NewSelect().Model(&rows).
		Where("status = ?", string(status)).
		Order("updated_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	players := make([]domain.Player, 0, len(rows))
	for _, row := range rows {
		players = append(players, row.toDomain())
	}
	return players, nil
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.IntegrityViolation()
}
