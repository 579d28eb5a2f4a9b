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
	ErrRoundNotFound       = errors.New("match round not found")
	ErrRoundMatchInvalid   = errors.New("invalid match reference for round")
	ErrRoundNumberConflict = errors.New("round number conflict for this match")
)

type RoundRepository interface {
	Create(ctx context.Context, round *models.MatchRound) error
	GetByID(ctx context.Context, id int) (*models.MatchRound, error)
	ListByMatch(ctx context.Context, matchID int) ([]models.MatchRound, error)
	Update(ctx context.Context, round *models.MatchRound) error
	Delete(ctx context.Context, id int) error
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

const roundColumns = `id, match_id, number, map_name, score_team1, score_team2, created_at`

func scanRound(row interface{ Scan(...interface{}) error }, r *models.MatchRound) error {
	return row.Scan(
		&r.ID,
		&r.MatchID,
		&r.Number,
		&r.MapName,
		&r.ScoreTeam1,
		&r.ScoreTeam2,
		&r.CreatedAt,
	)
}

func (r *postgresRoundRepository) Create(ctx context.Context, round *models.MatchRound) error {
	query := `
		INSERT INTO match_rounds (match_id, number, map_name, score_team1, score_team2)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		round.MatchID,
		round.Number,
		round.MapName,
		round.ScoreTeam1,
		round.ScoreTeam2,
	).Scan(&round.ID, &round.CreatedAt)

	return r.handleRoundError(err)
}

func (r *postgresRoundRepository) GetByID(ctx context.Context, id int) (*models.MatchRound, error) {
	query := `SELECT ` + roundColumns + ` FROM match_rounds WHERE id = $1`

	round := &models.MatchRound{}
	err := scanRound(r.db.QueryRowContext(ctx, query, id), round)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to scan round by id %d: %w", id, err)
	}
	return round, nil
}

func (r *postgresRoundRepository) ListByMatch(ctx context.Context, matchID int) ([]models.MatchRound, error) {
	query := `SELECT ` + roundColumns + ` FROM match_rounds WHERE match_id = $1 ORDER BY number ASC`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds for match %d: %w", matchID, err)
	}
	defer rows.Close()

	rounds := make([]models.MatchRound, 0)
	for rows.Next() {
		var round models.MatchRound
		if scanErr := scanRound(rows, &round); scanErr != nil {
			return nil, fmt.Errorf("failed to scan round row: %w", scanErr)
		}
		rounds = append(rounds, round)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during round rows iteration: %w", err)
	}
	return rounds, nil
}

func (r *postgresRoundRepository) Update(ctx context.Context, round *models.MatchRound) error {
	query := `UPDATE match_rounds SET map_name = $1, score_team1 = $2, score_team2 = $3 WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, round.MapName, round.ScoreTeam1, round.ScoreTeam2, round.ID)
	if err != nil {
		return r.handleRoundError(err)
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM match_rounds WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) handleRoundError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "match_rounds_match_id_fkey":
			return ErrRoundMatchInvalid
		case "match_rounds_match_id_number_key":
			return ErrRoundNumberConflict
		}
	}
	return err
}
