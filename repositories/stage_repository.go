package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mobaarena/esports-platform/models"
)

var (
	ErrStageNotFound     = errors.New("stage not found")
	ErrStageEventInvalid = errors.New("invalid event reference for stage")
	ErrStageInUse        = errors.New("stage is in use (matches exist)")
)

type StageRepository interface {
	Create(ctx context.Context, stage *models.Stage) error
	GetByID(ctx context.Context, id int) (*models.Stage, error)
	ListByEvent(ctx context.Context, eventID int) ([]models.Stage, error)
	Update(ctx context.Context, stage *models.Stage) error
	Delete(ctx context.Context, id int) error
}

type postgresStageRepository struct {
	db *sql.DB
}

func NewPostgresStageRepository(db *sql.DB) StageRepository {
	return &postgresStageRepository{db: db}
}

func (r *postgresStageRepository) Create(ctx context.Context, stage *models.Stage) error {
	query := `
		INSERT INTO stages (event_id, name, sequence)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, stage.EventID, stage.Name, stage.Sequence).
		Scan(&stage.ID, &stage.CreatedAt)
	return r.handleStageError(err)
}

func (r *postgresStageRepository) GetByID(ctx context.Context, id int) (*models.Stage, error) {
	query := `SELECT id, event_id, name, sequence, created_at FROM stages WHERE id = $1`

	stage := &models.Stage{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&stage.ID, &stage.EventID, &stage.Name, &stage.Sequence, &stage.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to scan stage by id %d: %w", id, err)
	}
	return stage, nil
}

func (r *postgresStageRepository) ListByEvent(ctx context.Context, eventID int) ([]models.Stage, error) {
	query := `SELECT id, event_id, name, sequence, created_at FROM stages WHERE event_id = $1 ORDER BY sequence ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stages for event %d: %w", eventID, err)
	}
	defer rows.Close()

	stages := make([]models.Stage, 0)
	for rows.Next() {
		var stage models.Stage
		if scanErr := rows.Scan(&stage.ID, &stage.EventID, &stage.Name, &stage.Sequence, &stage.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan stage row: %w", scanErr)
		}
		stages = append(stages, stage)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during stage rows iteration: %w", err)
	}
	return stages, nil
}

func (r *postgresStageRepository) Update(ctx context.Context, stage *models.Stage) error {
	query := `UPDATE stages SET name = $1, sequence = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, stage.Name, stage.Sequence, stage.ID)
	if err != nil {
		return r.handleStageError(err)
	}
	return checkAffectedRows(result, ErrStageNotFound)
}

func (r *postgresStageRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stages WHERE id = $1`, id)
	if err != nil {
		return r.handleStageError(err)
	}
	return checkAffectedRows(result, ErrStageNotFound)
}

func (r *postgresStageRepository) handleStageError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Constraint == "stages_event_id_fkey" {
			return ErrStageEventInvalid
		}
		if pqErr.Code == "23503" {
			return ErrStageInUse
		}
	}
	return err
}
