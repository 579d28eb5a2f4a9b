package services

import (
	"context"

	"github.com/mobaarena/esports-platform/models"
	"github.com/mobaarena/esports-platform/realtime"
	"github.com/mobaarena/esports-platform/repositories"
)

type CreateRoundInput struct {
	Number     int     `json:"number"`
	MapName    *string `json:"map_name"`
	ScoreTeam1 int     `json:"score_team1"`
	ScoreTeam2 int     `json:"score_team2"`
}

type UpdateRoundInput struct {
	MapName    *string `json:"map_name"`
	ScoreTeam1 *int    `json:"score_team1"`
	ScoreTeam2 *int    `json:"score_team2"`
}

// RoundService manages the per-round breakdown of a match. Every mutation
// is broadcast as a match update so live viewers see round scores arrive
// without refreshing.
type RoundService interface {
	Create(ctx context.Context, actor models.Actor, matchID int, input CreateRoundInput) (*models.MatchRound, error)
	ListByMatch(ctx context.Context, matchID int) ([]models.MatchRound, error)
	Update(ctx context.Context, actor models.Actor, id int, input UpdateRoundInput) (*models.MatchRound, error)
	Delete(ctx context.Context, actor models.Actor, id int) error
}

type roundService struct {
	roundRepo   repositories.RoundRepository
	matchRepo   repositories.MatchRepository
	broadcaster realtime.Broadcaster
}

func NewRoundService(
	roundRepo repositories.RoundRepository,
	matchRepo repositories.MatchRepository,
	broadcaster realtime.Broadcaster,
) RoundService {
	return &roundService{
		roundRepo:   roundRepo,
		matchRepo:   matchRepo,
		broadcaster: broadcaster,
	}
}

func (s *roundService) Create(ctx context.Context, actor models.Actor, matchID int, input CreateRoundInput) (*models.MatchRound, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbiddenOperation
	}
	if input.Number <= 0 {
		return nil, ErrRoundInvalidNumber
	}
	if input.ScoreTeam1 < 0 || input.ScoreTeam2 < 0 {
		return nil, ErrMatchNegativeScore
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	round := &models.MatchRound{
		MatchID:    matchID,
		Number:     input.Number,
		MapName:    input.MapName,
		ScoreTeam1: input.ScoreTeam1,
		ScoreTeam2: input.ScoreTeam2,
	}
	if err := s.roundRepo.Create(ctx, round); err != nil {
		return nil, mapRepositoryError(err)
	}

	s.emitRound(match, "round_added", round)
	return round, nil
}

func (s *roundService) ListByMatch(ctx context.Context, matchID int) ([]models.MatchRound, error) {
	if _, err := s.matchRepo.GetByID(ctx, matchID); err != nil {
		return nil, mapRepositoryError(err)
	}

	rounds, err := s.roundRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return rounds, nil
}

func (s *roundService) Update(ctx context.Context, actor models.Actor, id int, input UpdateRoundInput) (*models.MatchRound, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbiddenOperation
	}

	round, err := s.roundRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	match, err := s.matchRepo.GetByID(ctx, round.MatchID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	if input.MapName != nil {
		round.MapName = input.MapName
	}
	if input.ScoreTeam1 != nil {
		if *input.ScoreTeam1 < 0 {
			return nil, ErrMatchNegativeScore
		}
		round.ScoreTeam1 = *input.ScoreTeam1
	}
	if input.ScoreTeam2 != nil {
		if *input.ScoreTeam2 < 0 {
			return nil, ErrMatchNegativeScore
		}
		round.ScoreTeam2 = *input.ScoreTeam2
	}

	if err := s.roundRepo.Update(ctx, round); err != nil {
		return nil, mapRepositoryError(err)
	}

	s.emitRound(match, "round_updated", round)
	return round, nil
}

func (s *roundService) Delete(ctx context.Context, actor models.Actor, id int) error {
	if !actor.IsAdmin() {
		return ErrForbiddenOperation
	}

	round, err := s.roundRepo.GetByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	match, err := s.matchRepo.GetByID(ctx, round.MatchID)
	if err != nil {
		return mapRepositoryError(err)
	}

	if err := s.roundRepo.Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}

	s.emitRound(match, "round_removed", round)
	return nil
}

func (s *roundService) emitRound(match *models.Match, change string, round *models.MatchRound) {
	s.broadcaster.Emit(match.EventID, realtime.KindMatchUpdate, realtime.MatchUpdate{
		MatchID: match.ID,
		Updates: map[string]interface{}{
			change: round,
		},
	})
}
