package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ah91648/roomie-roster-sub000/internal/models"
)

type RoommateRepository interface {
	FindByID(ctx context.Context, id int64) (models.Roommate, error)
	FindByEmail(ctx context.Context, email string) (models.Roommate, error)
	FindByOIDCSubject(ctx context.Context, subject string) (models.Roommate, error)
	// FindAll returns the roster ordered by id ascending, which is the
	// order the scheduler rotates through.
	FindAll(ctx context.Context) ([]models.Roommate, error)
	Create(ctx context.Context, roommate models.Roommate) (models.Roommate, error)
	Update(ctx context.Context, roommate models.Roommate) error
	UpdatePoints(ctx context.Context, id int64, points int) error
	LinkOIDCSubject(ctx context.Context, id int64, subject string) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

type SQLiteRoommateRepository struct {
	database *sql.DB
}

func NewRoommateRepository(database *sql.DB) *SQLiteRoommateRepository {
	return &SQLiteRoommateRepository{database: database}
}

// oidc_subject is NULL until the roommate first signs in; COALESCE and
// NULLIF keep the Go side working with plain strings without tripping
// the UNIQUE constraint on repeated empty values.
const roommateColumns = `id, name, email, COALESCE(oidc_subject, ''), role, current_cycle_points, created_at, updated_at`

func (repository *SQLiteRoommateRepository) FindByID(ctx context.Context, id int64) (models.Roommate, error) {
	var roommate models.Roommate
	err := repository.database.QueryRowContext(ctx,
		"SELECT "+roommateColumns+" FROM roommates WHERE id = ?", id,
	).Scan(&roommate.ID, &roommate.Name, &roommate.Email, &roommate.OIDCSubject, &roommate.Role,
		&roommate.CurrentCyclePoints, &roommate.CreatedAt, &roommate.UpdatedAt)
	if err != nil {
		return models.Roommate{}, fmt.Errorf("finding roommate by id: %w", notFound(err))
	}
	return roommate, nil
}

func (repository *SQLiteRoommateRepository) FindByEmail(ctx context.Context, email string) (models.Roommate, error) {
	var roommate models.Roommate
	err := repository.database.QueryRowContext(ctx,
		"SELECT "+roommateColumns+" FROM roommates WHERE email = ?", email,
	).Scan(&roommate.ID, &roommate.Name, &roommate.Email, &roommate.OIDCSubject, &roommate.Role,
		&roommate.CurrentCyclePoints, &roommate.CreatedAt, &roommate.UpdatedAt)
	if err != nil {
		return models.Roommate{}, fmt.Errorf("finding roommate by email: %w", notFound(err))
	}
	return roommate, nil
}

func (repository *SQLiteRoommateRepository) FindByOIDCSubject(ctx context.Context, subject string) (models.Roommate, error) {
	var roommate models.Roommate
	err := repository.database.QueryRowContext(ctx,
		"SELECT "+roommateColumns+" FROM roommates WHERE oidc_subject = ?", subject,
	).Scan(&roommate.ID, &roommate.Name, &roommate.Email, &roommate.OIDCSubject, &roommate.Role,
		&roommate.CurrentCyclePoints, &roommate.CreatedAt, &roommate.UpdatedAt)
	if err != nil {
		return models.Roommate{}, fmt.Errorf("finding roommate by oidc subject: %w", notFound(err))
	}
	return roommate, nil
}

func (repository *SQLiteRoommateRepository) FindAll(ctx context.Context) ([]models.Roommate, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT "+roommateColumns+" FROM roommates ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("finding all roommates: %w", err)
	}
	defer rows.Close()

	var roommates []models.Roommate
	for rows.Next() {
		var roommate models.Roommate
		if err := rows.Scan(&roommate.ID, &roommate.Name, &roommate.Email, &roommate.OIDCSubject, &roommate.Role,
			&roommate.CurrentCyclePoints, &roommate.CreatedAt, &roommate.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning roommate: %w", err)
		}
		roommates = append(roommates, roommate)
	}
	return roommates, rows.Err()
}

func (repository *SQLiteRoommateRepository) Create(ctx context.Context, roommate models.Roommate) (models.Roommate, error) {
	now := time.Now()
	roommate.CreatedAt = now
	roommate.UpdatedAt = now
	if roommate.Role == "" {
		roommate.Role = models.RoleMember
	}

	result, err := repository.database.ExecContext(ctx,
		`INSERT INTO roommates (name, email, oidc_subject, role, current_cycle_points, created_at, updated_at)
		VALUES (?, ?, NULLIF(?, ''), ?, ?, ?, ?)`,
		roommate.Name, roommate.Email, roommate.OIDCSubject, roommate.Role,
		roommate.CurrentCyclePoints, roommate.CreatedAt, roommate.UpdatedAt,
	)
	if err != nil {
		return models.Roommate{}, fmt.Errorf("creating roommate: %w", err)
	}
	roommate.ID, err = result.LastInsertId()
	if err != nil {
		return models.Roommate{}, fmt.Errorf("reading roommate id: %w", err)
	}
	return roommate, nil
}

func (repository *SQLiteRoommateRepository) Update(ctx context.Context, roommate models.Roommate) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE roommates SET name = ?, email = ?, role = ?, updated_at = ? WHERE id = ?",
		roommate.Name, roommate.Email, roommate.Role, time.Now(), roommate.ID,
	)
	if err != nil {
		return fmt.Errorf("updating roommate: %w", err)
	}
	return nil
}

func (repository *SQLiteRoommateRepository) UpdatePoints(ctx context.Context, id int64, points int) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE roommates SET current_cycle_points = ?, updated_at = ? WHERE id = ?",
		points, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("updating roommate points: %w", err)
	}
	return nil
}

func (repository *SQLiteRoommateRepository) LinkOIDCSubject(ctx context.Context, id int64, subject string) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE roommates SET oidc_subject = NULLIF(?, ''), updated_at = ? WHERE id = ?",
		subject, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("linking oidc subject: %w", err)
	}
	return nil
}

func (repository *SQLiteRoommateRepository) Delete(ctx context.Context, id int64) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM roommates WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting roommate: %w", err)
	}
	return nil
}

func (repository *SQLiteRoommateRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := repository.database.QueryRowContext(ctx, "SELECT COUNT(*) FROM roommates").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting roommates: %w", err)
	}
	return count, nil
}
