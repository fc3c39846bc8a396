package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ah91648/roomie-roster-sub000/internal/models"
	"github.com/google/uuid"
)

type AssignmentRepository interface {
	FindCurrent(ctx context.Context) ([]models.Assignment, error)
	FindByRoommateID(ctx context.Context, roommateID int64) ([]models.Assignment, error)
	// ReplaceCurrent swaps the entire assignment set atomically. The
	// scheduler rebuilds the set on every run; there are no partial
	// updates.
	ReplaceCurrent(ctx context.Context, assignments []models.Assignment) error
}

type SQLiteAssignmentRepository struct {
	database *sql.DB
}

func NewAssignmentRepository(database *sql.DB) *SQLiteAssignmentRepository {
	return &SQLiteAssignmentRepository{database: database}
}

const assignmentColumns = `id, chore_id, chore_name, roommate_id, roommate_name,
	assigned_date, due_date, frequency, type, points`

func (repository *SQLiteAssignmentRepository) FindCurrent(ctx context.Context) ([]models.Assignment, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT "+assignmentColumns+" FROM current_assignments ORDER BY due_date, chore_id",
	)
	if err != nil {
		return nil, fmt.Errorf("finding current assignments: %w", err)
	}
	defer rows.Close()

	return scanAssignments(rows)
}

func (repository *SQLiteAssignmentRepository) FindByRoommateID(ctx context.Context, roommateID int64) ([]models.Assignment, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT "+assignmentColumns+" FROM current_assignments WHERE roommate_id = ? ORDER BY due_date, chore_id",
		roommateID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding assignments by roommate: %w", err)
	}
	defer rows.Close()

	return scanAssignments(rows)
}

func (repository *SQLiteAssignmentRepository) ReplaceCurrent(ctx context.Context, assignments []models.Assignment) error {
	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer transaction.Rollback()

	if _, err := transaction.ExecContext(ctx, "DELETE FROM current_assignments"); err != nil {
		return fmt.Errorf("clearing current assignments: %w", err)
	}

	for _, assignment := range assignments {
		if assignment.ID == "" {
			assignment.ID = uuid.New().String()
		}
		if _, err := transaction.ExecContext(ctx,
			`INSERT INTO current_assignments (id, chore_id, chore_name, roommate_id, roommate_name,
				assigned_date, due_date, frequency, type, points)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			assignment.ID, assignment.ChoreID, assignment.ChoreName,
			assignment.RoommateID, assignment.RoommateName,
			assignment.AssignedDate, assignment.DueDate,
			assignment.Frequency, assignment.Type, assignment.Points,
		); err != nil {
			return fmt.Errorf("inserting assignment: %w", err)
		}
	}

	return transaction.Commit()
}

func scanAssignments(rows *sql.Rows) ([]models.Assignment, error) {
	var assignments []models.Assignment
	for rows.Next() {
		var assignment models.Assignment
		if err := rows.Scan(&assignment.ID, &assignment.ChoreID, &assignment.ChoreName,
			&assignment.RoommateID, &assignment.RoommateName,
			&assignment.AssignedDate, &assignment.DueDate,
			&assignment.Frequency, &assignment.Type, &assignment.Points); err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		assignments = append(assignments, assignment)
	}
	return assignments, rows.Err()
}
