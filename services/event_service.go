package services

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"time"

	"github.com/mobaarena/esports-platform/models"
	"github.com/mobaarena/esports-platform/repositories"
	"github.com/mobaarena/esports-platform/storage"
)

type CreateEventInput struct {
	Title                string    `json:"title"`
	Description          *string   `json:"description"`
	MaxTeams             int       `json:"max_teams"`
	RegistrationDeadline time.Time `json:"registration_deadline"`
}

type UpdateEventInput struct {
	Title                *string    `json:"title"`
	Description          *string    `json:"description"`
	MaxTeams             *int       `json:"max_teams"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
}

type EventService interface {
	Create(ctx context.Context, actor models.Actor, input CreateEventInput) (*models.Event, error)
	GetByID(ctx context.Context, id int) (*models.Event, error)
	List(ctx context.Context, filter repositories.ListEventsFilter) ([]models.Event, error)
	Update(ctx context.Context, actor models.Actor, id int, input UpdateEventInput) (*models.Event, error)
	UpdateStatus(ctx context.Context, actor models.Actor, id int, status models.EventStatus) (*models.Event, error)
	Delete(ctx context.Context, actor models.Actor, id int) error
	UploadLogo(ctx context.Context, actor models.Actor, id int, contentType string, file io.Reader) (*models.Event, error)
}

type eventService struct {
	db        *sql.DB
	eventRepo repositories.EventRepository
	uploader  storage.FileUploader
}

func NewEventService(db *sql.DB, eventRepo repositories.EventRepository, uploader storage.FileUploader) EventService {
	return &eventService{
		db:        db,
		eventRepo: eventRepo,
		uploader:  uploader,
	}
}

// validStatusTransitions encodes the event lifecycle:
// draft -> open (registration), open -> closed (registration over),
// closed -> ongoing (play started), ongoing -> closed (play finished).
var validStatusTransitions = map[models.EventStatus][]models.EventStatus{
	models.EventStatusDraft:   {models.EventStatusOpen},
	models.EventStatusOpen:    {models.EventStatusClosed},
	models.EventStatusClosed:  {models.EventStatusOngoing},
	models.EventStatusOngoing: {models.EventStatusClosed},
}

func (s *eventService) Create(ctx context.Context, actor models.Actor, input CreateEventInput) (*models.Event, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbiddenOperation
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, ErrEventTitleRequired
	}
	if input.MaxTeams <= 0 {
		return nil, ErrEventInvalidCapacity
	}
	if !input.RegistrationDeadline.After(time.Now()) {
		return nil, ErrEventInvalidDeadline
	}

	event := &models.Event{
		Title:                input.Title,
		Description:          input.Description,
		Status:               models.EventStatusDraft,
		MaxTeams:             input.MaxTeams,
		RegistrationDeadline: input.RegistrationDeadline,
		CreatedBy:            actor.UserID,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, mapRepositoryError(err)
	}
	s.populateLogoURL(event)
	return event, nil
}

func (s *eventService) GetByID(ctx context.Context, id int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	s.populateLogoURL(event)
	return event, nil
}

func (s *eventService) List(ctx context.Context, filter repositories.ListEventsFilter) ([]models.Event, error) {
	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	for i := range events {
		s.populateLogoURL(&events[i])
	}
	return events, nil
}

func (s *eventService) Update(ctx context.Context, actor models.Actor, id int, input UpdateEventInput) (*models.Event, error) {
	event, err := s.authorizeOwner(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrEventTitleRequired
		}
		event.Title = title
	}
	if input.Description != nil {
		event.Description = input.Description
	}
	if input.MaxTeams != nil {
		if *input.MaxTeams <= 0 {
			return nil, ErrEventInvalidCapacity
		}
		event.MaxTeams = *input.MaxTeams
	}
	if input.RegistrationDeadline != nil {
		event.RegistrationDeadline = *input.RegistrationDeadline
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, mapRepositoryError(err)
	}
	s.populateLogoURL(event)
	return event, nil
}

func (s *eventService) UpdateStatus(ctx context.Context, actor models.Actor, id int, status models.EventStatus) (*models.Event, error) {
	switch status {
	case models.EventStatusDraft, models.EventStatusOpen, models.EventStatusClosed, models.EventStatusOngoing:
	default:
		return nil, ErrEventInvalidStatus
	}

	event, err := s.authorizeOwner(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range validStatusTransitions[event.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrInvalidStatusTransition
	}

	if err := s.eventRepo.UpdateStatus(ctx, nil, id, status); err != nil {
		return nil, mapRepositoryError(err)
	}
	event.Status = status
	s.populateLogoURL(event)
	return event, nil
}

func (s *eventService) Delete(ctx context.Context, actor models.Actor, id int) error {
	event, err := s.authorizeOwner(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}

	if event.LogoKey != nil && s.uploader != nil {
		// Best effort: a dangling object is not worth failing the delete.
		_ = s.uploader.Delete(ctx, *event.LogoKey)
	}
	return nil
}

func (s *eventService) UploadLogo(ctx context.Context, actor models.Actor, id int, contentType string, file io.Reader) (*models.Event, error) {
	event, err := s.authorizeOwner(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	key, err := logoObjectKey("events", id, contentType)
	if err != nil {
		return nil, err
	}

	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, err
	}
	if err := s.eventRepo.UpdateLogoKey(ctx, id, &key); err != nil {
		return nil, mapRepositoryError(err)
	}

	event.LogoKey = &key
	s.populateLogoURL(event)
	return event, nil
}

// authorizeOwner loads the event and checks the actor may mutate it: the
// owning admin or any super admin.
func (s *eventService) authorizeOwner(ctx context.Context, actor models.Actor, id int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	switch actor.Type {
	case models.ActorSuperAdmin:
	case models.ActorAdmin:
		if event.CreatedBy != actor.UserID {
			return nil, ErrForbiddenOperation
		}
	default:
		return nil, ErrForbiddenOperation
	}
	return event, nil
}

func (s *eventService) populateLogoURL(event *models.Event) {
	if event.LogoKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*event.LogoKey)
		event.LogoURL = &url
	}
}
