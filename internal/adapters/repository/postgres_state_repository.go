package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ domain.StateRepository = (*PostgresStateRepository)(nil)

const profileRowID = 1

var schema = []string{`
CREATE TABLE IF NOT EXISTS kanso_profile (
    id        SMALLINT PRIMARY KEY,
    name      TEXT NOT NULL DEFAULT '',
    join_date TEXT NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS kanso_habits (
    id               TEXT PRIMARY KEY,
    position         INT NOT NULL,
    name             TEXT NOT NULL,
    target_frequency INT NOT NULL CHECK (target_frequency >= 1),
    completions      TEXT[] NOT NULL DEFAULT '{}',
    created_at       TEXT NOT NULL
)`}

type PostgresStateRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPostgresStateRepository(db *sqlx.DB) *PostgresStateRepository {
	return &PostgresStateRepository{db: db, now: time.Now}
}

// Migrate creates the tables if they are missing.
func (r *PostgresStateRepository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate habit schema: %w", err)
		}
	}
	return nil
}

type profileRow struct {
	Name     string `db:"name"`
	JoinDate string `db:"join_date"`
}

type habitRow struct {
	ID              string         `db:"id"`
	Name            string         `db:"name"`
	TargetFrequency int            `db:"target_frequency"`
	Completions     pq.StringArray `db:"completions"`
	CreatedAt       string         `db:"created_at"`
}

func (r *PostgresStateRepository) Load(ctx context.Context) (*domain.State, error) {
	var p profileRow
	err := r.db.GetContext(ctx, &p, `SELECT name, join_date FROM kanso_profile WHERE id = $1`, profileRowID)
	if errors.Is(err, sql.ErrNoRows) {
		if err := r.Save(ctx, domain.NewState(r.now())); err != nil {
			return nil, fmt.Errorf("initialize store: %w", err)
		}
		return r.Load(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load profile: %w", domain.ErrPersistence, err)
	}

	var rows []habitRow
	err = r.db.SelectContext(ctx, &rows, `
        SELECT id, name, target_frequency, completions, created_at
        FROM kanso_habits
        ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: load habits: %w", domain.ErrPersistence, err)
	}

	state := &domain.State{
		Profile: domain.UserProfile{Name: p.Name},
		Habits:  make([]*domain.Habit, 0, len(rows)),
	}
	if state.Profile.JoinDate, err = parseStoredDate(p.JoinDate); err != nil {
		return nil, err
	}

	for _, row := range rows {
		h := &domain.Habit{
			ID:              row.ID,
			Name:            row.Name,
			TargetFrequency: row.TargetFrequency,
			Completions:     make([]time.Time, 0, len(row.Completions)),
		}
		if h.CreatedAt, err = parseStoredDate(row.CreatedAt); err != nil {
			return nil, err
		}
		for _, raw := range row.Completions {
			c, err := parseStoredDate(raw)
			if err != nil {
				return nil, err
			}
			h.Completions = append(h.Completions, c)
		}
		state.Habits = append(state.Habits, h)
	}

	return state, nil
}

func parseStoredDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", domain.ErrStoreCorrupt, err)
	}
	return d, nil
}

// Save replaces the profile row and every habit row inside one transaction.
func (r *PostgresStateRepository) Save(ctx context.Context, s *domain.State) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
        INSERT INTO kanso_profile (id, name, join_date)
        VALUES ($1, $2, $3)
        ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, join_date = EXCLUDED.join_date`,
		profileRowID, s.Profile.Name, formatOptionalDate(s.Profile),
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM kanso_habits`); err != nil {
		return fmt.Errorf("clear habits: %w", err)
	}

	for i, h := range s.Habits {
		completions := make(pq.StringArray, 0, len(h.Completions))
		for _, c := range h.Completions {
			completions = append(completions, domain.FormatDate(c))
		}

		_, err = tx.ExecContext(ctx, `
            INSERT INTO kanso_habits (id, position, name, target_frequency, completions, created_at)
            VALUES ($1, $2, $3, $4, $5, $6)`,
			h.ID, i, h.Name, h.TargetFrequency, completions, domain.FormatDate(h.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("save habit %s: %w", h.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
