package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/mobaarena/esports-platform/models"
	"github.com/mobaarena/esports-platform/realtime"
	"github.com/mobaarena/esports-platform/repositories"
)

type CreateMatchInput struct {
	StageID     int        `json:"stage_id"`
	GroupID     *int       `json:"group_id"`
	Team1ID     *int       `json:"team1_id"`
	Team2ID     *int       `json:"team2_id"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

type UpdateMatchInput struct {
	StageID     *int       `json:"stage_id"`
	GroupID     *int       `json:"group_id"`
	Team1ID     *int       `json:"team1_id"`
	Team2ID     *int       `json:"team2_id"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

type UpdateScoreInput struct {
	ScoreTeam1 int                `json:"score_team1"`
	ScoreTeam2 int                `json:"score_team2"`
	Status     models.MatchStatus `json:"status"`
}

type ListMatchesInput struct {
	StageID *int
	GroupID *int
	Status  *models.MatchStatus
}

type MatchService interface {
	Create(ctx context.Context, actor models.Actor, eventID int, input CreateMatchInput) (*models.Match, error)
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByEvent(ctx context.Context, eventID int, input ListMatchesInput) ([]models.Match, error)
	Update(ctx context.Context, actor models.Actor, id int, input UpdateMatchInput) (*models.Match, error)
	// UpdateScore sets both scores and the match status in one write and
	// broadcasts the result to the event room.
	UpdateScore(ctx context.Context, actor models.Actor, id int, input UpdateScoreInput) (*models.Match, error)
	Delete(ctx context.Context, actor models.Actor, id int) error
}

type matchService struct {
	matchRepo   repositories.MatchRepository
	stageRepo   repositories.StageRepository
	roundRepo   repositories.RoundRepository
	bracketSvc  BracketService
	broadcaster realtime.Broadcaster
	logger      *slog.Logger
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	stageRepo repositories.StageRepository,
	roundRepo repositories.RoundRepository,
	bracketSvc BracketService,
	broadcaster realtime.Broadcaster,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo:   matchRepo,
		stageRepo:   stageRepo,
		roundRepo:   roundRepo,
		bracketSvc:  bracketSvc,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (s *matchService) Create(ctx context.Context, actor models.Actor, eventID int, input CreateMatchInput) (*models.Match, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbiddenOperation
	}

	stage, err := s.stageRepo.GetByID(ctx, input.StageID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if stage.EventID != eventID {
		return nil, ErrStageEventMismatch
	}
	if input.Team1ID != nil && input.Team2ID != nil && *input.Team1ID == *input.Team2ID {
		return nil, ErrMatchTeamsIdentical
	}

	scheduledAt := time.Now()
	if input.ScheduledAt != nil {
		scheduledAt = *input.ScheduledAt
	}

	match := &models.Match{
		EventID:     eventID,
		StageID:     input.StageID,
		GroupID:     input.GroupID,
		Team1ID:     input.Team1ID,
		Team2ID:     input.Team2ID,
		Status:      models.MatchStatusScheduled,
		ScheduledAt: scheduledAt,
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, mapRepositoryError(err)
	}

	// A new match changes the bracket shape, not just a single match card.
	s.emitBracket(ctx, eventID)
	return match, nil
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	rounds, err := s.roundRepo.ListByMatch(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	match.Rounds = rounds
	return match, nil
}

func (s *matchService) ListByEvent(ctx context.Context, eventID int, input ListMatchesInput) ([]models.Match, error) {
	if input.Status != nil && !validMatchStatus(*input.Status) {
		return nil, ErrMatchInvalidStatus
	}

	matches, err := s.matchRepo.ListByEvent(ctx, eventID, repositories.ListMatchesFilter{
		StageID: input.StageID,
		GroupID: input.GroupID,
		Status:  input.Status,
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return matches, nil
}

func (s *matchService) Update(ctx context.Context, actor models.Actor, id int, input UpdateMatchInput) (*models.Match, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbiddenOperation
	}

	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	updates := map[string]interface{}{}
	if input.StageID != nil {
		stage, err := s.stageRepo.GetByID(ctx, *input.StageID)
		if err != nil {
			return nil, mapRepositoryError(err)
		}
		if stage.EventID != match.EventID {
			return nil, ErrStageEventMismatch
		}
		match.StageID = *input.StageID
		updates["stage_id"] = *input.StageID
	}
	if input.GroupID != nil {
		match.GroupID = input.GroupID
		updates["group_id"] = *input.GroupID
	}
	if input.Team1ID != nil {
		match.Team1ID = input.Team1ID
		updates["team1_id"] = *input.Team1ID
	}
	if input.Team2ID != nil {
		match.Team2ID = input.Team2ID
		updates["team2_id"] = *input.Team2ID
	}
	if match.Team1ID != nil && match.Team2ID != nil && *match.Team1ID == *match.Team2ID {
		return nil, ErrMatchTeamsIdentical
	}
	if input.ScheduledAt != nil {
		match.ScheduledAt = *input.ScheduledAt
		updates["scheduled_at"] = *input.ScheduledAt
	}

	if err := s.matchRepo.Update(ctx, match); err != nil {
		return nil, mapRepositoryError(err)
	}

	if len(updates) > 0 {
		s.broadcaster.Emit(match.EventID, realtime.KindMatchUpdate, realtime.MatchUpdate{
			MatchID: match.ID,
			Updates: updates,
		})
	}
	return match, nil
}

func (s *matchService) UpdateScore(ctx context.Context, actor models.Actor, id int, input UpdateScoreInput) (*models.Match, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbiddenOperation
	}
	if !validMatchStatus(input.Status) {
		return nil, ErrMatchInvalidStatus
	}
	if input.ScoreTeam1 < 0 || input.ScoreTeam2 < 0 {
		return nil, ErrMatchNegativeScore
	}

	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	if err := s.matchRepo.UpdateScoreStatus(ctx, id, input.ScoreTeam1, input.ScoreTeam2, input.Status); err != nil {
		return nil, mapRepositoryError(err)
	}

	match.ScoreTeam1 = input.ScoreTeam1
	match.ScoreTeam2 = input.ScoreTeam2
	match.Status = input.Status

	s.broadcaster.Emit(match.EventID, realtime.KindMatchUpdate, realtime.MatchUpdate{
		MatchID: match.ID,
		Updates: map[string]interface{}{
			"status":      match.Status,
			"score_team1": match.ScoreTeam1,
			"score_team2": match.ScoreTeam2,
		},
	})
	return match, nil
}

func (s *matchService) Delete(ctx context.Context, actor models.Actor, id int) error {
	if !actor.IsAdmin() {
		return ErrForbiddenOperation
	}

	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if err := s.matchRepo.Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}

	s.emitBracket(ctx, match.EventID)
	return nil
}

func (s *matchService) emitBracket(ctx context.Context, eventID int) {
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

func validMatchStatus(status models.MatchStatus) bool {
	switch status {
	case models.MatchStatusScheduled, models.MatchStatusLive, models.MatchStatusFinished, models.MatchStatusCanceled:
		return true
	}
	return false
}
