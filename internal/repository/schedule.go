package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ah91648/roomie-roster-sub000/internal/models"
)

// ScheduleStateRepository persists scheduler bookkeeping: when the last
// cycle ran, which roommate each predefined chore went to last, and the
// shared rotation cursor for batch runs. The state lives in a single
// row plus one row per tracked chore.
type ScheduleStateRepository interface {
	Get(ctx context.Context) (models.ScheduleState, error)
	SetLastRunDate(ctx context.Context, lastRun time.Time) error
	SetPredefinedState(ctx context.Context, choreID int64, roommateID int64) error
	SetGlobalRotation(ctx context.Context, index int) error
}

type SQLiteScheduleStateRepository struct {
	database *sql.DB
}

func NewScheduleStateRepository(database *sql.DB) *SQLiteScheduleStateRepository {
	return &SQLiteScheduleStateRepository{database: database}
}

func (repository *SQLiteScheduleStateRepository) Get(ctx context.Context) (models.ScheduleState, error) {
	var state models.ScheduleState
	var lastRun sql.NullTime
	err := repository.database.QueryRowContext(ctx,
		"SELECT last_run_date, global_predefined_rotation FROM schedule_state WHERE id = 1",
	).Scan(&lastRun, &state.GlobalPredefinedRotation)
	if err != nil {
		return models.ScheduleState{}, fmt.Errorf("getting schedule state: %w", notFound(err))
	}
	if lastRun.Valid {
		state.LastRunDate = &lastRun.Time
	}

	rows, err := repository.database.QueryContext(ctx,
		"SELECT chore_id, last_assigned_roommate_id FROM predefined_chore_states",
	)
	if err != nil {
		return models.ScheduleState{}, fmt.Errorf("getting predefined chore states: %w", err)
	}
	defer rows.Close()

	state.PredefinedChoreStates = make(map[int64]int64)
	for rows.Next() {
		var choreID, roommateID int64
		if err := rows.Scan(&choreID, &roommateID); err != nil {
			return models.ScheduleState{}, fmt.Errorf("scanning predefined chore state: %w", err)
		}
		state.PredefinedChoreStates[choreID] = roommateID
	}
	return state, rows.Err()
}

func (repository *SQLiteScheduleStateRepository) SetLastRunDate(ctx context.Context, lastRun time.Time) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE schedule_state SET last_run_date = ? WHERE id = 1", lastRun,
	)
	if err != nil {
		return fmt.Errorf("setting last run date: %w", err)
	}
	return nil
}

func (repository *SQLiteScheduleStateRepository) SetPredefinedState(ctx context.Context, choreID int64, roommateID int64) error {
	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO predefined_chore_states (chore_id, last_assigned_roommate_id) VALUES (?, ?)
		ON CONFLICT(chore_id) DO UPDATE SET last_assigned_roommate_id = ?`,
		choreID, roommateID, roommateID,
	)
	if err != nil {
		return fmt.Errorf("setting predefined chore state: %w", err)
	}
	return nil
}

func (repository *SQLiteScheduleStateRepository) SetGlobalRotation(ctx context.Context, index int) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE schedule_state SET global_predefined_rotation = ? WHERE id = 1", index,
	)
	if err != nil {
		return fmt.Errorf("setting global rotation: %w", err)
	}
	return nil
}
