package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mobaarena/esports-platform/models"
)

// StatsRepository backs the super admin dashboard with platform-wide counts.
type StatsRepository interface {
	CountEvents(ctx context.Context, status *models.EventStatus) (int, error)
	CountTeams(ctx context.Context) (int, error)
	CountMembers(ctx context.Context) (int, error)
	CountMatches(ctx context.Context, status *models.MatchStatus) (int, error)
}

type postgresStatsRepository struct {
	db *sql.DB
}

func NewPostgresStatsRepository(db *sql.DB) StatsRepository {
	return &postgresStatsRepository{db: db}
}

func (r *postgresStatsRepository) CountEvents(ctx context.Context, status *models.EventStatus) (int, error) {
	query := `SELECT COUNT(*) FROM events`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	return r.count(ctx, query, args...)
}

func (r *postgresStatsRepository) CountTeams(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM teams`)
}

func (r *postgresStatsRepository) CountMembers(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM members`)
}

func (r *postgresStatsRepository) CountMatches(ctx context.Context, status *models.MatchStatus) (int, error) {
	query := `SELECT COUNT(*) FROM matches`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	return r.count(ctx, query, args...)
}

func (r *postgresStatsRepository) count(ctx context.Context, query string, args ...interface{}) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to run count query: %w", err)
	}
	return count, nil
}
