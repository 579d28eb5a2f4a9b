package services

import (
	"context"
	"strings"

	"github.com/mobaarena/esports-platform/models"
	"github.com/mobaarena/esports-platform/repositories"
)

type GroupInput struct {
	Name string `json:"name"`
}

type GroupService interface {
	Create(ctx context.Context, actor models.Actor, eventID int, input GroupInput) (*models.Group, error)
	ListByEvent(ctx context.Context, eventID int) ([]models.Group, error)
	Update(ctx context.Context, actor models.Actor, id int, input GroupInput) (*models.Group, error)
	Delete(ctx context.Context, actor models.Actor, id int) error
	AddTeam(ctx context.Context, actor models.Actor, groupID, teamID int) error
	RemoveTeam(ctx context.Context, actor models.Actor, groupID, teamID int) error
}

type groupService struct {
	groupRepo repositories.GroupRepository
	teamRepo  repositories.TeamRepository
}

func NewGroupService(groupRepo repositories.GroupRepository, teamRepo repositories.TeamRepository) GroupService {
	return &groupService{
		groupRepo: groupRepo,
		teamRepo:  teamRepo,
	}
}

func (s *groupService) Create(ctx context.Context, actor models.Actor, eventID int, input GroupInput) (*models.Group, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbiddenOperation
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrGroupNameRequired
	}

	group := &models.Group{EventID: eventID, Name: input.Name}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, mapRepositoryError(err)
	}
	return group, nil
}

func (s *groupService) ListByEvent(ctx context.Context, eventID int) ([]models.Group, error) {
	groups, err := s.groupRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	for i := range groups {
		teams, err := s.groupRepo.ListTeams(ctx, groups[i].ID)
		if err != nil {
			return nil, mapRepositoryError(err)
		}
		for j := range teams {
			teams[j].AccessToken = ""
		}
		groups[i].Teams = teams
	}
	return groups, nil
}

func (s *groupService) Update(ctx context.Context, actor models.Actor, id int, input GroupInput) (*models.Group, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbiddenOperation
	}

	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrGroupNameRequired
	}
	group.Name = input.Name

	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, mapRepositoryError(err)
	}
	return group, nil
}

func (s *groupService) Delete(ctx context.Context, actor models.Actor, id int) error {
	if !actor.IsAdmin() {
		return ErrForbiddenOperation
	}
	return mapRepositoryError(s.groupRepo.Delete(ctx, id))
}

func (s *groupService) AddTeam(ctx context.Context, actor models.Actor, groupID, teamID int) error {
	if !actor.IsAdmin() {
		return ErrForbiddenOperation
	}

	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return mapRepositoryError(err)
	}
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return mapRepositoryError(err)
	}
	if team.EventID != group.EventID {
		return ErrTeamEventMismatch
	}

	return mapRepositoryError(s.groupRepo.AddTeam(ctx, groupID, teamID))
}

func (s *groupService) RemoveTeam(ctx context.Context, actor models.Actor, groupID, teamID int) error {
	if !actor.IsAdmin() {
		return ErrForbiddenOperation
	}
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		return mapRepositoryError(err)
	}
	return mapRepositoryError(s.groupRepo.RemoveTeam(ctx, groupID, teamID))
}
