package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/mobaarena/esports-platform/models"
)

var (
	ErrMatchNotFound     = errors.New("match not found")
	ErrMatchStageInvalid = errors.New("invalid stage reference for match")
	ErrMatchGroupInvalid = errors.New("invalid group reference for match")
	ErrMatchTeamInvalid  = errors.New("invalid team reference for match")
)

type ListMatchesFilter struct {
	StageID *int
	GroupID *int
	Status  *models.MatchStatus
}

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByEvent(ctx context.Context, eventID int, filter ListMatchesFilter) ([]models.Match, error)
	Update(ctx context.Context, match *models.Match) error
	UpdateScoreStatus(ctx context.Context, id int, score1, score2 int, status models.MatchStatus) error
	Delete(ctx context.Context, id int) error
	CountByEvent(ctx context.Context, eventID int, status *models.MatchStatus) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, event_id, stage_id, group_id, team1_id, team2_id, status, score_team1, score_team2, scheduled_at, created_at`

func scanMatch(row interface{ Scan(...interface{}) error }, m *models.Match) error {
	return row.Scan(
		&m.ID,
		&m.EventID,
		&m.StageID,
		&m.GroupID,
		&m.Team1ID,
		&m.Team2ID,
		&m.Status,
		&m.ScoreTeam1,
		&m.ScoreTeam2,
		&m.ScheduledAt,
		&m.CreatedAt,
	)
}

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (event_id, stage_id, group_id, team1_id, team2_id, status, score_team1, score_team2, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		match.EventID,
		match.StageID,
		match.GroupID,
		match.Team1ID,
		match.Team2ID,
		match.Status,
		match.ScoreTeam1,
		match.ScoreTeam2,
		match.ScheduledAt,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match := &models.Match{}
	err := scanMatch(r.db.QueryRowContext(ctx, query, id), match)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByEvent(ctx context.Context, eventID int, filter ListMatchesFilter) ([]models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE event_id = $1`)

	args := []interface{}{eventID}
	placeholder := 2

	if filter.StageID != nil {
		queryBuilder.WriteString(" AND stage_id = $" + strconv.Itoa(placeholder))
		args = append(args, *filter.StageID)
		placeholder++
	}
	if filter.GroupID != nil {
		queryBuilder.WriteString(" AND group_id = $" + strconv.Itoa(placeholder))
		args = append(args, *filter.GroupID)
		placeholder++
	}
	if filter.Status != nil {
		queryBuilder.WriteString(" AND status = $" + strconv.Itoa(placeholder))
		args = append(args, *filter.Status)
	}

	queryBuilder.WriteString(" ORDER BY scheduled_at ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for event %d: %w", eventID, err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var match models.Match
		if scanErr := scanMatch(rows, &match); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, match *models.Match) error {
	query := `
		UPDATE matches
		SET stage_id = $1, group_id = $2, team1_id = $3, team2_id = $4, scheduled_at = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		match.StageID,
		match.GroupID,
		match.Team1ID,
		match.Team2ID,
		match.ScheduledAt,
		match.ID,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateScoreStatus(ctx context.Context, id int, score1, score2 int, status models.MatchStatus) error {
	query := `UPDATE matches SET score_team1 = $1, score_team2 = $2, status = $3 WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, score1, score2, status, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) CountByEvent(ctx context.Context, eventID int, status *models.MatchStatus) (int, error) {
	query := `SELECT COUNT(*) FROM matches WHERE event_id = $1`
	args := []interface{}{eventID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches for event %d: %w", eventID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "matches_event_id_fkey", "matches_stage_id_fkey":
			return ErrMatchStageInvalid
		case "matches_group_id_fkey":
			return ErrMatchGroupInvalid
		case "matches_team1_id_fkey", "matches_team2_id_fkey":
			return ErrMatchTeamInvalid
		}
	}
	return err
}
