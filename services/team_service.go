package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mobaarena/esports-platform/models"
	"github.com/mobaarena/esports-platform/repositories"
	"github.com/mobaarena/esports-platform/storage"
)

type CreateTeamInput struct {
	Name string `json:"name"`
	Tag  string `json:"tag"`
}

type UpdateTeamInput struct {
	Name *string `json:"name"`
	Tag  *string `json:"tag"`
}

type TeamService interface {
	// Register creates a team inside an event, subject to the event being
	// open for registration and below its team capacity.
	Register(ctx context.Context, actor models.Actor, eventID int, input CreateTeamInput) (*models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByEvent(ctx context.Context, eventID int) ([]models.Team, error)
	Update(ctx context.Context, actor models.Actor, id int, input UpdateTeamInput) (*models.Team, error)
	Delete(ctx context.Context, actor models.Actor, id int) error
	UploadLogo(ctx context.Context, actor models.Actor, id int, contentType string, file io.Reader) (*models.Team, error)
}

type teamService struct {
	db        *sql.DB
	teamRepo  repositories.TeamRepository
	eventRepo repositories.EventRepository
	uploader  storage.FileUploader
}

func NewTeamService(
	db *sql.DB,
	teamRepo repositories.TeamRepository,
	eventRepo repositories.EventRepository,
	uploader storage.FileUploader,
) TeamService {
	return &teamService{
		db:        db,
		teamRepo:  teamRepo,
		eventRepo: eventRepo,
		uploader:  uploader,
	}
}

func (s *teamService) Register(ctx context.Context, actor models.Actor, eventID int, input CreateTeamInput) (*models.Team, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbiddenOperation
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrTeamNameRequired
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if event.Status != models.EventStatusOpen {
		return nil, ErrRegistrationClosed
	}
	if time.Now().After(event.RegistrationDeadline) {
		return nil, ErrRegistrationDeadlinePast
	}

	team := &models.Team{
		EventID:     eventID,
		Name:        input.Name,
		Tag:         strings.TrimSpace(input.Tag),
		AccessToken: generateAccessToken(),
	}

	// Capacity check and insert share a transaction so concurrent
	// registrations cannot overshoot max_teams.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin team registration transaction: %w", err)
	}
	defer tx.Rollback()

	count, err := s.teamRepo.CountByEvent(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	if count >= event.MaxTeams {
		return nil, ErrEventFull
	}

	if err := s.teamRepo.Create(ctx, tx, team); err != nil {
		return nil, mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit team registration: %w", err)
	}

	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	team.AccessToken = ""
	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) ListByEvent(ctx context.Context, eventID int) ([]models.Team, error) {
	teams, err := s.teamRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	for i := range teams {
		teams[i].AccessToken = ""
		s.populateLogoURL(&teams[i])
	}
	return teams, nil
}

func (s *teamService) Update(ctx context.Context, actor models.Actor, id int, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.authorizeTeam(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTeamNameRequired
		}
		team.Name = name
	}
	if input.Tag != nil {
		team.Tag = strings.TrimSpace(*input.Tag)
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, mapRepositoryError(err)
	}
	team.AccessToken = ""
	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) Delete(ctx context.Context, actor models.Actor, id int) error {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if !actor.IsAdmin() {
		return ErrForbiddenOperation
	}

	if err := s.teamRepo.Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}
	if team.LogoKey != nil && s.uploader != nil {
		_ = s.uploader.Delete(ctx, *team.LogoKey)
	}
	return nil
}

func (s *teamService) UploadLogo(ctx context.Context, actor models.Actor, id int, contentType string, file io.Reader) (*models.Team, error) {
	team, err := s.authorizeTeam(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	key, err := logoObjectKey("teams", id, contentType)
	if err != nil {
		return nil, err
	}
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, err
	}
	if err := s.teamRepo.UpdateLogoKey(ctx, id, &key); err != nil {
		return nil, mapRepositoryError(err)
	}

	team.AccessToken = ""
	team.LogoKey = &key
	s.populateLogoURL(team)
	return team, nil
}

// authorizeTeam permits admins and the team itself (via its own token).
func (s *teamService) authorizeTeam(ctx context.Context, actor models.Actor, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if actor.IsAdmin() {
		return team, nil
	}
	if actor.Type == models.ActorTeam && actor.TeamID == id {
		return team, nil
	}
	return nil, ErrForbiddenOperation
}

func (s *teamService) populateLogoURL(team *models.Team) {
	if team.LogoKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*team.LogoKey)
		team.LogoURL = &url
	}
}
