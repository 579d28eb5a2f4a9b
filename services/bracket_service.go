package services

import (
	"context"

	"github.com/mobaarena/esports-platform/models"
	"github.com/mobaarena/esports-platform/repositories"
)

// Bracket is the full tournament structure of one event: stages in play
// order, each carrying its matches and their rounds. It is served on the
// bracket endpoint and sent verbatim as the bracket:update payload.
type Bracket struct {
	EventID int            `json:"event_id"`
	Stages  []models.Stage `json:"stages"`
}

type BracketService interface {
	GetBracket(ctx context.Context, eventID int) (*Bracket, error)
}

type bracketService struct {
	eventRepo repositories.EventRepository
	stageRepo repositories.StageRepository
	matchRepo repositories.MatchRepository
	roundRepo repositories.RoundRepository
}

func NewBracketService(
	eventRepo repositories.EventRepository,
	stageRepo repositories.StageRepository,
	matchRepo repositories.MatchRepository,
	roundRepo repositories.RoundRepository,
) BracketService {
	return &bracketService{
		eventRepo: eventRepo,
		stageRepo: stageRepo,
		matchRepo: matchRepo,
		roundRepo: roundRepo,
	}
}

func (s *bracketService) GetBracket(ctx context.Context, eventID int) (*Bracket, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, mapRepositoryError(err)
	}

	stages, err := s.stageRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	matches, err := s.matchRepo.ListByEvent(ctx, eventID, repositories.ListMatchesFilter{})
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	matchesByStage := make(map[int][]models.Match, len(stages))
	for _, match := range matches {
		rounds, err := s.roundRepo.ListByMatch(ctx, match.ID)
		if err != nil {
			return nil, mapRepositoryError(err)
		}
		match.Rounds = rounds
		matchesByStage[match.StageID] = append(matchesByStage[match.StageID], match)
	}

	for i := range stages {
		stages[i].Matches = matchesByStage[stages[i].ID]
	}

	return &Bracket{EventID: eventID, Stages: stages}, nil
}
