package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ah91648/roomie-roster-sub000/internal/models"
	"github.com/google/uuid"
)

// JSONFile backs the whole store with a single JSON document on disk.
// Every write rewrites the file under one mutex, which is plenty for a
// household-sized dataset and keeps the deployment a single binary
// plus one file.
type JSONFile struct {
	path string

	mu   sync.Mutex
	data fileData
}

type fileData struct {
	Roommates          []models.Roommate    `json:"roommates"`
	NextRoommateID     int64                `json:"next_roommate_id"`
	Chores             []models.Chore       `json:"chores"`
	NextChoreID        int64                `json:"next_chore_id"`
	CurrentAssignments []models.Assignment  `json:"current_assignments"`
	ScheduleState      models.ScheduleState `json:"schedule_state"`
	Settings           map[string]string    `json:"settings"`
	APITokens          []storedToken        `json:"api_tokens"`
}

// storedToken exists because models.APIToken hides its hash from JSON
// responses, but the file store has to keep it.
type storedToken struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	TokenHash           string     `json:"token_hash"`
	Scope               string     `json:"scope"`
	CreatedByRoommateID int64      `json:"created_by_roommate_id"`
	ExpiresAt           *time.Time `json:"expires_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

func OpenJSONFile(path string) (*JSONFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	file := &JSONFile{path: path}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &file.data); err != nil {
			return nil, fmt.Errorf("parsing data file %s: %w", path, err)
		}
	case os.IsNotExist(err):
		file.data = fileData{
			NextRoommateID: 1,
			NextChoreID:    1,
			Settings:       map[string]string{SettingHouseholdName: "RoomieRoster"},
		}
	default:
		return nil, fmt.Errorf("reading data file %s: %w", path, err)
	}

	if file.data.Settings == nil {
		file.data.Settings = make(map[string]string)
	}
	if file.data.ScheduleState.PredefinedChoreStates == nil {
		file.data.ScheduleState.PredefinedChoreStates = make(map[int64]int64)
	}

	if err := file.persist(); err != nil {
		return nil, err
	}
	return file, nil
}

// persist writes via a temp file and rename so a crash mid-write never
// leaves a truncated document. Caller must hold mu.
func (file *JSONFile) persist() error {
	raw, err := json.MarshalIndent(file.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding data file: %w", err)
	}

	tmp := file.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("writing data file: %w", err)
	}
	if err := os.Rename(tmp, file.path); err != nil {
		return fmt.Errorf("replacing data file: %w", err)
	}
	return nil
}

func NewJSONStore(file *JSONFile) *Store {
	return &Store{
		Roommates:   &JSONRoommateRepository{file: file},
		Chores:      &JSONChoreRepository{file: file},
		Assignments: &JSONAssignmentRepository{file: file},
		Schedule:    &JSONScheduleStateRepository{file: file},
		Settings:    &JSONSettingsRepository{file: file},
		APITokens:   &JSONAPITokenRepository{file: file},
	}
}

type JSONRoommateRepository struct {
	file *JSONFile
}

func (repository *JSONRoommateRepository) FindByID(ctx context.Context, id int64) (models.Roommate, error) {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	for _, roommate := range repository.file.data.Roommates {
		if roommate.ID == id {
			return roommate, nil
		}
	}
	return models.Roommate{}, fmt.Errorf("finding roommate by id: %w", ErrNotFound)
}

func (repository *JSONRoommateRepository) FindByEmail(ctx context.Context, email string) (models.Roommate, error) {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	for _, roommate := range repository.file.data.Roommates {
		if roommate.Email == email {
			return roommate, nil
		}
	}
	return models.Roommate{}, fmt.Errorf("finding roommate by email: %w", ErrNotFound)
}

func (repository *JSONRoommateRepository) FindByOIDCSubject(ctx context.Context, subject string) (models.Roommate, error) {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	for _, roommate := range repository.file.data.Roommates {
		if roommate.OIDCSubject != "" && roommate.OIDCSubject == subject {
			return roommate, nil
		}
	}
	return models.Roommate{}, fmt.Errorf("finding roommate by oidc subject: %w", ErrNotFound)
}

func (repository *JSONRoommateRepository) FindAll(ctx context.Context) ([]models.Roommate, error) {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	roommates := make([]models.Roommate, len(repository.file.data.Roommates))
	copy(roommates, repository.file.data.Roommates)
	sort.Slice(roommates, func(i, j int) bool { return roommates[i].ID < roommates[j].ID })
	return roommates, nil
}

func (repository *JSONRoommateRepository) Create(ctx context.Context, roommate models.Roommate) (models.Roommate, error) {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	for _, existing := range repository.file.data.Roommates {
		if existing.Email == roommate.Email {
			return models.Roommate{}, fmt.Errorf("creating roommate: email %s already in use", roommate.Email)
		}
	}

	now := time.Now()
	roommate.ID = repository.file.data.NextRoommateID
	roommate.CreatedAt = now
	roommate.UpdatedAt = now
	if roommate.Role == "" {
		roommate.Role = models.RoleMember
	}

	repository.file.data.NextRoommateID++
	repository.file.data.Roommates = append(repository.file.data.Roommates, roommate)
	if err := repository.file.persist(); err != nil {
		return models.Roommate{}, err
	}
	return roommate, nil
}

func (repository *JSONRoommateRepository) Update(ctx context.Context, roommate models.Roommate) error {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	for index, existing := range repository.file.data.Roommates {
		if existing.ID != roommate.ID {
			continue
		}
		existing.Name = roommate.Name
		existing.Email = roommate.Email
		existing.Role = roommate.Role
		existing.UpdatedAt = time.Now()
		repository.file.data.Roommates[index] = existing
		return repository.file.persist()
	}
	return fmt.Errorf("updating roommate: %w", ErrNotFound)
}

func (repository *JSONRoommateRepository) UpdatePoints(ctx context.Context, id int64, points int) error {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	for index := range repository.file.data.Roommates {
		if repository.file.data.Roommates[index].ID != id {
			continue
		}
		repository.file.data.Roommates[index].CurrentCyclePoints = points
		repository.file.data.Roommates[index].UpdatedAt = time.Now()
		return repository.file.persist()
	}
	return fmt.Errorf("updating roommate points: %w", ErrNotFound)
}

func (repository *JSONRoommateRepository) LinkOIDCSubject(ctx context.Context, id int64, subject string) error {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	for index := range repository.file.data.Roommates {
		if repository.file.data.Roommates[index].ID != id {
			continue
		}
		repository.file.data.Roommates[index].OIDCSubject = subject
		repository.file.data.Roommates[index].UpdatedAt = time.Now()
		return repository.file.persist()
	}
	return fmt.Errorf("linking oidc subject: %w", ErrNotFound)
}

func (repository *JSONRoommateRepository) Delete(ctx context.Context, id int64) error {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	roommates := repository.file.data.Roommates[:0]
	for _, roommate := range repository.file.data.Roommates {
		if roommate.ID != id {
			roommates = append(roommates, roommate)
		}
	}
	repository.file.data.Roommates = roommates

	// Mirror the SQLite cascade: a roommate's tokens go with them.
	tokens := repository.file.data.APITokens[:0]
	for _, token := range repository.file.data.APITokens {
		if token.CreatedByRoommateID != id {
			tokens = append(tokens, token)
		}
	}
	repository.file.data.APITokens = tokens

	return repository.file.persist()
}

func (repository *JSONRoommateRepository) Count(ctx context.Context) (int, error) {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	return len(repository.file.data.Roommates), nil
}

type JSONChoreRepository struct {
	file *JSONFile
}

func (repository *JSONChoreRepository) FindByID(ctx context.Context, id int64) (models.Chore, error) {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	for _, chore := range repository.file.data.Chores {
		if chore.ID == id {
			return chore, nil
		}
	}
	return models.Chore{}, fmt.Errorf("finding chore by id: %w", ErrNotFound)
}

func (repository *JSONChoreRepository) FindAll(ctx context.Context) ([]models.Chore, error) {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	chores := make([]models.Chore, len(repository.file.data.Chores))
	copy(chores, repository.file.data.Chores)
	sort.Slice(chores, func(i, j int) bool { return chores[i].ID < chores[j].ID })
	return chores, nil
}

func (repository *JSONChoreRepository) Create(ctx context.Context, chore models.Chore) (models.Chore, error) {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	now := time.Now()
	chore.ID = repository.file.data.NextChoreID
	chore.CreatedAt = now
	chore.UpdatedAt = now
	if chore.Frequency == "" {
		chore.Frequency = models.FrequencyWeekly
	}
	if chore.Type == "" {
		chore.Type = models.ChoreTypeRandom
	}

	repository.file.data.NextChoreID++
	repository.file.data.Chores = append(repository.file.data.Chores, chore)
	if err := repository.file.persist(); err != nil {
		return models.Chore{}, err
	}
	return chore, nil
}

func (repository *JSONChoreRepository) Update(ctx context.Context, chore models.Chore) error {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	for index, existing := range repository.file.data.Chores {
		if existing.ID != chore.ID {
			continue
		}
		existing.Name = chore.Name
		existing.Description = chore.Description
		existing.Frequency = chore.Frequency
		existing.Type = chore.Type
		existing.Points = chore.Points
		existing.UpdatedAt = time.Now()
		repository.file.data.Chores[index] = existing
		return repository.file.persist()
	}
	return fmt.Errorf("updating chore: %w", ErrNotFound)
}

func (repository *JSONChoreRepository) Delete(ctx context.Context, id int64) error {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	chores := repository.file.data.Chores[:0]
	for _, chore := range repository.file.data.Chores {
		if chore.ID != id {
			chores = append(chores, chore)
		}
	}
	repository.file.data.Chores = chores

	// Mirror the SQLite cascade on predefined_chore_states.
	delete(repository.file.data.ScheduleState.PredefinedChoreStates, id)

	return repository.file.persist()
}

type JSONAssignmentRepository struct {
	file *JSONFile
}

func (repository *JSONAssignmentRepository) FindCurrent(ctx context.Context) ([]models.Assignment, error) {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	assignments := make([]models.Assignment, len(repository.file.data.CurrentAssignments))
	copy(assignments, repository.file.data.CurrentAssignments)
	sortAssignments(assignments)
	return assignments, nil
}

func (repository *JSONAssignmentRepository) FindByRoommateID(ctx context.Context, roommateID int64) ([]models.Assignment, error) {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	var assignments []models.Assignment
	for _, assignment := range repository.file.data.CurrentAssignments {
		if assignment.RoommateID == roommateID {
			assignments = append(assignments, assignment)
		}
	}
	sortAssignments(assignments)
	return assignments, nil
}

func (repository *JSONAssignmentRepository) ReplaceCurrent(ctx context.Context, assignments []models.Assignment) error {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	replacement := make([]models.Assignment, len(assignments))
	copy(replacement, assignments)
	for index := range replacement {
		if replacement[index].ID == "" {
			replacement[index].ID = uuid.New().String()
		}
	}

	repository.file.data.CurrentAssignments = replacement
	return repository.file.persist()
}

func sortAssignments(assignments []models.Assignment) {
	sort.Slice(assignments, func(i, j int) bool {
		if !assignments[i].DueDate.Equal(assignments[j].DueDate) {
			return assignments[i].DueDate.Before(assignments[j].DueDate)
		}
		return assignments[i].ChoreID < assignments[j].ChoreID
	})
}

type JSONScheduleStateRepository struct {
	file *JSONFile
}

func (repository *JSONScheduleStateRepository) Get(ctx context.Context) (models.ScheduleState, error) {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	state := repository.file.data.ScheduleState
	states := make(map[int64]int64, len(state.PredefinedChoreStates))
	for choreID, roommateID := range state.PredefinedChoreStates {
		states[choreID] = roommateID
	}
	state.PredefinedChoreStates = states
	return state, nil
}

func (repository *JSONScheduleStateRepository) SetLastRunDate(ctx context.Context, lastRun time.Time) error {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	repository.file.data.ScheduleState.LastRunDate = &lastRun
	return repository.file.persist()
}

func (repository *JSONScheduleStateRepository) SetPredefinedState(ctx context.Context, choreID int64, roommateID int64) error {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	repository.file.data.ScheduleState.PredefinedChoreStates[choreID] = roommateID
	return repository.file.persist()
}

func (repository *JSONScheduleStateRepository) SetGlobalRotation(ctx context.Context, index int) error {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	repository.file.data.ScheduleState.GlobalPredefinedRotation = index
	return repository.file.persist()
}

type JSONSettingsRepository struct {
	file *JSONFile
}

func (repository *JSONSettingsRepository) Get(ctx context.Context, key string) (string, error) {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	value, ok := repository.file.data.Settings[key]
	if !ok {
		return "", fmt.Errorf("getting setting %s: %w", key, ErrNotFound)
	}
	return value, nil
}

func (repository *JSONSettingsRepository) Set(ctx context.Context, key string, value string) error {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	repository.file.data.Settings[key] = value
	return repository.file.persist()
}

type JSONAPITokenRepository struct {
	file *JSONFile
}

func (repository *JSONAPITokenRepository) Create(ctx context.Context, token models.APIToken) (models.APIToken, error) {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	token.CreatedAt = time.Now()

	repository.file.data.APITokens = append(repository.file.data.APITokens, storedToken{
		ID:                  token.ID,
		Name:                token.Name,
		TokenHash:           token.TokenHash,
		Scope:               token.Scope,
		CreatedByRoommateID: token.CreatedByRoommateID,
		ExpiresAt:           token.ExpiresAt,
		CreatedAt:           token.CreatedAt,
	})
	if err := repository.file.persist(); err != nil {
		return models.APIToken{}, err
	}
	return token, nil
}

func (repository *JSONAPITokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (models.APIToken, error) {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	for _, token := range repository.file.data.APITokens {
		if token.TokenHash == tokenHash {
			return token.toModel(), nil
		}
	}
	return models.APIToken{}, fmt.Errorf("finding token by hash: %w", ErrNotFound)
}

func (repository *JSONAPITokenRepository) FindAll(ctx context.Context) ([]models.APIToken, error) {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	tokens := make([]models.APIToken, 0, len(repository.file.data.APITokens))
	for _, token := range repository.file.data.APITokens {
		tokens = append(tokens, token.toModel())
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].CreatedAt.After(tokens[j].CreatedAt) })
	return tokens, nil
}

func (repository *JSONAPITokenRepository) Delete(ctx context.Context, id string) error {
	repository.file.mu.Lock()
	defer repository.file.mu.Unlock()

	tokens := repository.file.data.APITokens[:0]
	for _, token := range repository.file.data.APITokens {
		if token.ID != id {
			tokens = append(tokens, token)
		}
	}
	repository.file.data.APITokens = tokens
	return repository.file.persist()
}

func (token storedToken) toModel() models.APIToken {
	return models.APIToken{
		ID:                  token.ID,
		Name:                token.Name,
		TokenHash:           token.TokenHash,
		Scope:               token.Scope,
		CreatedByRoommateID: token.CreatedByRoommateID,
		ExpiresAt:           token.ExpiresAt,
		CreatedAt:           token.CreatedAt,
	}
}
