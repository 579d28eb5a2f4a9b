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
	ErrMemberNotFound         = errors.New("member not found")
	ErrMemberTeamInvalid      = errors.New("invalid team reference for member")
	ErrMemberNicknameConflict = errors.New("member nickname conflict for this team")
)

type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id int) (*models.Member, error)
	GetByAccessToken(ctx context.Context, token string) (*models.Member, error)
	ListByTeam(ctx context.Context, teamID int) ([]models.Member, error)
	Update(ctx context.Context, member *models.Member) error
	ClearCaptain(ctx context.Context, exec SQLExecutor, teamID int) error
	Delete(ctx context.Context, id int) error
}

type postgresMemberRepository struct {
	db *sql.DB
}

func NewPostgresMemberRepository(db *sql.DB) MemberRepository {
	return &postgresMemberRepository{db: db}
}

func (r *postgresMemberRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const memberColumns = `id, team_id, name, nickname, captain, access_token, created_at`

func scanMember(row interface{ Scan(...interface{}) error }, m *models.Member) error {
	return row.Scan(
		&m.ID,
		&m.TeamID,
		&m.Name,
		&m.Nickname,
		&m.Captain,
		&m.AccessToken,
		&m.CreatedAt,
	)
}

func (r *postgresMemberRepository) Create(ctx context.Context, member *models.Member) error {
	query := `
		INSERT INTO members (team_id, name, nickname, captain, access_token)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		member.TeamID,
		member.Name,
		member.Nickname,
		member.Captain,
		member.AccessToken,
	).Scan(&member.ID, &member.CreatedAt)

	return r.handleMemberError(err)
}

func (r *postgresMemberRepository) GetByID(ctx context.Context, id int) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`

	member := &models.Member{}
	err := scanMember(r.db.QueryRowContext(ctx, query, id), member)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to scan member by id %d: %w", id, err)
	}
	return member, nil
}

func (r *postgresMemberRepository) GetByAccessToken(ctx context.Context, token string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE access_token = $1`

	member := &models.Member{}
	err := scanMember(r.db.QueryRowContext(ctx, query, token), member)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to scan member by access token: %w", err)
	}
	return member, nil
}

func (r *postgresMemberRepository) ListByTeam(ctx context.Context, teamID int) ([]models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE team_id = $1 ORDER BY captain DESC, nickname ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members for team %d: %w", teamID, err)
	}
	defer rows.Close()

	members := make([]models.Member, 0)
	for rows.Next() {
		var member models.Member
		if scanErr := scanMember(rows, &member); scanErr != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", scanErr)
		}
		members = append(members, member)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during member rows iteration: %w", err)
	}
	return members, nil
}

func (r *postgresMemberRepository) Update(ctx context.Context, member *models.Member) error {
	query := `UPDATE members SET name = $1, nickname = $2, captain = $3 WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, member.Name, member.Nickname, member.Captain, member.ID)
	if err != nil {
		return r.handleMemberError(err)
	}
	return checkAffectedRows(result, ErrMemberNotFound)
}

// ClearCaptain demotes the current captain of a team, if any. Used before
// promoting another member so a team never has two captains.
func (r *postgresMemberRepository) ClearCaptain(ctx context.Context, exec SQLExecutor, teamID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `UPDATE members SET captain = FALSE WHERE team_id = $1 AND captain`, teamID)
	if err != nil {
		return fmt.Errorf("failed to clear captain for team %d: %w", teamID, err)
	}
	return nil
}

func (r *postgresMemberRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMemberNotFound)
}

func (r *postgresMemberRepository) handleMemberError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "members_team_id_fkey":
			return ErrMemberTeamInvalid
		case "members_team_id_nickname_key":
			return ErrMemberNicknameConflict
		}
	}
	return err
}
