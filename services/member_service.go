package services

import (
	"context"
	"strings"

	"github.com/mobaarena/esports-platform/models"
	"github.com/mobaarena/esports-platform/repositories"
)

type CreateMemberInput struct {
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Captain  bool   `json:"captain"`
}

type UpdateMemberInput struct {
	Name     *string `json:"name"`
	Nickname *string `json:"nickname"`
	Captain  *bool   `json:"captain"`
}

type MemberService interface {
	Create(ctx context.Context, actor models.Actor, teamID int, input CreateMemberInput) (*models.Member, error)
	ListByTeam(ctx context.Context, actor models.Actor, teamID int) ([]models.Member, error)
	Update(ctx context.Context, actor models.Actor, id int, input UpdateMemberInput) (*models.Member, error)
	Delete(ctx context.Context, actor models.Actor, id int) error
}

type memberService struct {
	memberRepo repositories.MemberRepository
	teamRepo   repositories.TeamRepository
}

func NewMemberService(memberRepo repositories.MemberRepository, teamRepo repositories.TeamRepository) MemberService {
	return &memberService{
		memberRepo: memberRepo,
		teamRepo:   teamRepo,
	}
}

func (s *memberService) Create(ctx context.Context, actor models.Actor, teamID int, input CreateMemberInput) (*models.Member, error) {
	if err := s.authorizeRoster(ctx, actor, teamID); err != nil {
		return nil, err
	}

	input.Nickname = strings.TrimSpace(input.Nickname)
	if input.Nickname == "" {
		return nil, ErrMemberNicknameRequired
	}

	if input.Captain {
		if err := s.memberRepo.ClearCaptain(ctx, nil, teamID); err != nil {
			return nil, err
		}
	}

	member := &models.Member{
		TeamID:      teamID,
		Name:        strings.TrimSpace(input.Name),
		Nickname:    input.Nickname,
		Captain:     input.Captain,
		AccessToken: generateAccessToken(),
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, mapRepositoryError(err)
	}
	return member, nil
}

func (s *memberService) ListByTeam(ctx context.Context, actor models.Actor, teamID int) ([]models.Member, error) {
	if err := s.authorizeRead(actor, teamID); err != nil {
		return nil, err
	}

	members, err := s.memberRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	for i := range members {
		members[i].AccessToken = ""
	}
	return members, nil
}

func (s *memberService) Update(ctx context.Context, actor models.Actor, id int, input UpdateMemberInput) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if err := s.authorizeRoster(ctx, actor, member.TeamID); err != nil {
		return nil, err
	}

	if input.Name != nil {
		member.Name = strings.TrimSpace(*input.Name)
	}
	if input.Nickname != nil {
		nickname := strings.TrimSpace(*input.Nickname)
		if nickname == "" {
			return nil, ErrMemberNicknameRequired
		}
		member.Nickname = nickname
	}
	if input.Captain != nil {
		if *input.Captain && !member.Captain {
			if err := s.memberRepo.ClearCaptain(ctx, nil, member.TeamID); err != nil {
				return nil, err
			}
		}
		member.Captain = *input.Captain
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, mapRepositoryError(err)
	}
	member.AccessToken = ""
	return member, nil
}

func (s *memberService) Delete(ctx context.Context, actor models.Actor, id int) error {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if err := s.authorizeRoster(ctx, actor, member.TeamID); err != nil {
		return err
	}
	return mapRepositoryError(s.memberRepo.Delete(ctx, id))
}

// authorizeRoster permits admins, the team itself, and the team's captain
// to change the roster.
func (s *memberService) authorizeRoster(ctx context.Context, actor models.Actor, teamID int) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.Type == models.ActorTeam && actor.TeamID == teamID {
		return nil
	}
	if actor.Type == models.ActorMember && actor.TeamID == teamID {
		member, err := s.memberRepo.GetByID(ctx, actor.MemberID)
		if err != nil {
			return mapRepositoryError(err)
		}
		if member.Captain {
			return nil
		}
	}
	return ErrForbiddenOperation
}

// authorizeRead permits admins and any actor belonging to the team.
func (s *memberService) authorizeRead(actor models.Actor, teamID int) error {
	if actor.IsAdmin() {
		return nil
	}
	if (actor.Type == models.ActorTeam || actor.Type == models.ActorMember) && actor.TeamID == teamID {
		return nil
	}
	return ErrForbiddenOperation
}
