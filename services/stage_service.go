package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mobaarena/esports-platform/models"
	"github.com/mobaarena/esports-platform/realtime"
	"github.com/mobaarena/esports-platform/repositories"
)

type CreateStageInput struct {
	Name     string `json:"name"`
	Sequence int    `json:"sequence"`
}

type UpdateStageInput struct {
	Name     *string `json:"name"`
	Sequence *int    `json:"sequence"`
}

type StageService interface {
	Create(ctx context.Context, actor models.Actor, eventID int, input CreateStageInput) (*models.Stage, error)
	ListByEvent(ctx context.Context, eventID int) ([]models.Stage, error)
	Update(ctx context.Context, actor models.Actor, id int, input UpdateStageInput) (*models.Stage, error)
	Delete(ctx context.Context, actor models.Actor, id int) error
}

type stageService struct {
	stageRepo   repositories.StageRepository
	bracketSvc  BracketService
	broadcaster realtime.Broadcaster
	logger      *slog.Logger
}

func NewStageService(
	stageRepo repositories.StageRepository,
	bracketSvc BracketService,
	broadcaster realtime.Broadcaster,
	logger *slog.Logger,
) StageService {
	return &stageService{
		stageRepo:   stageRepo,
		bracketSvc:  bracketSvc,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (s *stageService) Create(ctx context.Context, actor models.Actor, eventID int, input CreateStageInput) (*models.Stage, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbiddenOperation
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrStageNameRequired
	}

	stage := &models.Stage{EventID: eventID, Name: input.Name, Sequence: input.Sequence}
	if err := s.stageRepo.Create(ctx, stage); err != nil {
		return nil, mapRepositoryError(err)
	}

	s.broadcaster.Emit(eventID, realtime.KindStageUpdate, realtime.StageUpdate{
		StageID: stage.ID,
		Updates: stage,
	})
	return stage, nil
}

func (s *stageService) ListByEvent(ctx context.Context, eventID int) ([]models.Stage, error) {
	stages, err := s.stageRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return stages, nil
}

func (s *stageService) Update(ctx context.Context, actor models.Actor, id int, input UpdateStageInput) (*models.Stage, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbiddenOperation
	}

	stage, err := s.stageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrStageNameRequired
		}
		stage.Name = name
		updates["name"] = name
	}
	if input.Sequence != nil {
		stage.Sequence = *input.Sequence
		updates["sequence"] = *input.Sequence
	}

	if err := s.stageRepo.Update(ctx, stage); err != nil {
		return nil, mapRepositoryError(err)
	}

	if len(updates) > 0 {
		s.broadcaster.Emit(stage.EventID, realtime.KindStageUpdate, realtime.StageUpdate{
			StageID: stage.ID,
			Updates: updates,
		})
	}
	return stage, nil
}

func (s *stageService) Delete(ctx context.Context, actor models.Actor, id int) error {
	if !actor.IsAdmin() {
		return ErrForbiddenOperation
	}

	stage, err := s.stageRepo.GetByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if err := s.stageRepo.Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}

	// Removing a stage changes the bracket shape, so push a full snapshot.
	s.emitBracket(ctx, stage.EventID)
	return nil
}

func (s *stageService) emitBracket(ctx context.Context, eventID int) {
	bracket, err := s.bracketSvc.GetBracket(ctx, eventID)
	if err != nil {
		s.logger.Error("failed to assemble bracket snapshot for broadcast",
			slog.Int("event_id", eventID),
			slog.Any("error", err),
		)
		return
	}
	s.broadcaster.Emit(eventID, realtime.KindBracketUpdate, bracket)
}
