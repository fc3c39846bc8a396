package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ah91648/roomie-roster-sub000/internal/models"
)

type ChoreRepository interface {
	FindByID(ctx context.Context, id int64) (models.Chore, error)
	// FindAll returns the catalog ordered by id ascending. Index-based
	// pairing in the scheduler depends on this ordering being stable.
	FindAll(ctx context.Context) ([]models.Chore, error)
	Create(ctx context.Context, chore models.Chore) (models.Chore, error)
	Update(ctx context.Context, chore models.Chore) error
	Delete(ctx context.Context, id int64) error
}

type SQLiteChoreRepository struct {
	database *sql.DB
}

func NewChoreRepository(database *sql.DB) *SQLiteChoreRepository {
	return &SQLiteChoreRepository{database: database}
}

const choreColumns = `id, name, description, frequency, type, points, created_at, updated_at`

func (repository *SQLiteChoreRepository) FindByID(ctx context.Context, id int64) (models.Chore, error) {
	var chore models.Chore
	err := repository.database.QueryRowContext(ctx,
		"SELECT "+choreColumns+" FROM chores WHERE id = ?", id,
	).Scan(&chore.ID, &chore.Name, &chore.Description, &chore.Frequency, &chore.Type,
		&chore.Points, &chore.CreatedAt, &chore.UpdatedAt)
	if err != nil {
		return models.Chore{}, fmt.Errorf("finding chore by id: %w", notFound(err))
	}
	return chore, nil
}

func (repository *SQLiteChoreRepository) FindAll(ctx context.Context) ([]models.Chore, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT "+choreColumns+" FROM chores ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("finding all chores: %w", err)
	}
	defer rows.Close()

	return scanChores(rows)
}

func (repository *SQLiteChoreRepository) Create(ctx context.Context, chore models.Chore) (models.Chore, error) {
	now := time.Now()
	chore.CreatedAt = now
	chore.UpdatedAt = now
	if chore.Frequency == "" {
		chore.Frequency = models.FrequencyWeekly
	}
	if chore.Type == "" {
		chore.Type = models.ChoreTypeRandom
	}

	result, err := repository.database.ExecContext(ctx,
		`INSERT INTO chores (name, description, frequency, type, points, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		chore.Name, chore.Description, chore.Frequency, chore.Type,
		chore.Points, chore.CreatedAt, chore.UpdatedAt,
	)
	if err != nil {
		return models.Chore{}, fmt.Errorf("creating chore: %w", err)
	}
	chore.ID, err = result.LastInsertId()
	if err != nil {
		return models.Chore{}, fmt.Errorf("reading chore id: %w", err)
	}
	return chore, nil
}

func (repository *SQLiteChoreRepository) Update(ctx context.Context, chore models.Chore) error {
	_, err := repository.database.ExecContext(ctx,
		`UPDATE chores SET name = ?, description = ?, frequency = ?, type = ?, points = ?, updated_at = ?
		WHERE id = ?`,
		chore.Name, chore.Description, chore.Frequency, chore.Type,
		chore.Points, time.Now(), chore.ID,
	)
	if err != nil {
		return fmt.Errorf("updating chore: %w", err)
	}
	return nil
}

func (repository *SQLiteChoreRepository) Delete(ctx context.Context, id int64) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM chores WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting chore: %w", err)
	}
	return nil
}

func scanChores(rows *sql.Rows) ([]models.Chore, error) {
	var chores []models.Chore
	for rows.Next() {
		var chore models.Chore
		if err := rows.Scan(&chore.ID, &chore.Name, &chore.Description, &chore.Frequency, &chore.Type,
			&chore.Points, &chore.CreatedAt, &chore.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning chore: %w", err)
		}
		chores = append(chores, chore)
	}
	return chores, rows.Err()
}
