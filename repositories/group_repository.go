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
	ErrGroupNotFound     = errors.New("group not found")
	ErrGroupNameConflict = errors.New("group name conflict for this event")
	ErrGroupEventInvalid = errors.New("invalid event reference for group")
	ErrGroupTeamConflict = errors.New("team is already in this group")
	ErrGroupTeamNotFound = errors.New("team is not in this group")
)

type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id int) (*models.Group, error)
	ListByEvent(ctx context.Context, eventID int) ([]models.Group, error)
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id int) error

	AddTeam(ctx context.Context, groupID, teamID int) error
	RemoveTeam(ctx context.Context, groupID, teamID int) error
	ListTeams(ctx context.Context, groupID int) ([]models.Team, error)
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) Create(ctx context.Context, group *models.Group) error {
	query := `
		INSERT INTO groups (event_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, group.EventID, group.Name).
		Scan(&group.ID, &group.CreatedAt)
	return r.handleGroupError(err)
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, id int) (*models.Group, error) {
	query := `SELECT id, event_id, name, created_at FROM groups WHERE id = $1`

	group := &models.Group{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&group.ID, &group.EventID, &group.Name, &group.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to scan group by id %d: %w", id, err)
	}
	return group, nil
}

func (r *postgresGroupRepository) ListByEvent(ctx context.Context, eventID int) ([]models.Group, error) {
	query := `SELECT id, event_id, name, created_at FROM groups WHERE event_id = $1 ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups for event %d: %w", eventID, err)
	}
	defer rows.Close()

	groups := make([]models.Group, 0)
	for rows.Next() {
		var group models.Group
		if scanErr := rows.Scan(&group.ID, &group.EventID, &group.Name, &group.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", scanErr)
		}
		groups = append(groups, group)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during group rows iteration: %w", err)
	}
	return groups, nil
}

func (r *postgresGroupRepository) Update(ctx context.Context, group *models.Group) error {
	result, err := r.db.ExecContext(ctx, `UPDATE groups SET name = $1 WHERE id = $2`, group.Name, group.ID)
	if err != nil {
		return r.handleGroupError(err)
	}
	return checkAffectedRows(result, ErrGroupNotFound)
}

func (r *postgresGroupRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGroupNotFound)
}

func (r *postgresGroupRepository) AddTeam(ctx context.Context, groupID, teamID int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO group_teams (group_id, team_id) VALUES ($1, $2)`, groupID, teamID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "group_teams_pkey", "group_teams_group_id_team_id_key":
				return ErrGroupTeamConflict
			case "group_teams_group_id_fkey":
				return ErrGroupNotFound
			case "group_teams_team_id_fkey":
				return ErrTeamNotFound
			}
		}
		return fmt.Errorf("failed to add team %d to group %d: %w", teamID, groupID, err)
	}
	return nil
}

func (r *postgresGroupRepository) RemoveTeam(ctx context.Context, groupID, teamID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM group_teams WHERE group_id = $1 AND team_id = $2`, groupID, teamID)
	if err != nil {
		return fmt.Errorf("failed to remove team %d from group %d: %w", teamID, groupID, err)
	}
	return checkAffectedRows(result, ErrGroupTeamNotFound)
}

func (r *postgresGroupRepository) ListTeams(ctx context.Context, groupID int) ([]models.Team, error) {
	query := `
		SELECT t.id, t.event_id, t.name, t.tag, t.access_token, t.logo_key, t.created_at
		FROM teams t
		JOIN group_teams gt ON gt.team_id = t.id
		WHERE gt.group_id = $1
		ORDER BY t.name ASC`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams for group %d: %w", groupID, err)
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var team models.Team
		if scanErr := scanTeam(rows, &team); scanErr != nil {
			return nil, fmt.Errorf("failed to scan group team row: %w", scanErr)
		}
		teams = append(teams, team)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during group team rows iteration: %w", err)
	}
	return teams, nil
}

func (r *postgresGroupRepository) handleGroupError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "groups_event_id_name_key":
			return ErrGroupNameConflict
		case "groups_event_id_fkey":
			return ErrGroupEventInvalid
		}
	}
	return err
}
