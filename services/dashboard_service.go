package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mobaarena/esports-platform/models"
	"github.com/mobaarena/esports-platform/repositories"
)

type DashboardService interface {
	GetStats(ctx context.Context, actor models.Actor) (*models.DashboardStats, error)
}

type dashboardService struct {
	statsRepo repositories.StatsRepository
}

func NewDashboardService(statsRepo repositories.StatsRepository) DashboardService {
	return &dashboardService{statsRepo: statsRepo}
}

// GetStats gathers the platform-wide counters in parallel. Restricted to
// super admins.
func (s *dashboardService) GetStats(ctx context.Context, actor models.Actor) (*models.DashboardStats, error) {
	if actor.Type != models.ActorSuperAdmin {
		return nil, ErrForbiddenOperation
	}

	stats := &models.DashboardStats{}
	ongoing := models.EventStatusOngoing
	live := models.MatchStatusLive

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := s.statsRepo.CountEvents(gctx, nil)
		stats.EventsTotal = count
		return err
	})
	g.Go(func() error {
		count, err := s.statsRepo.CountEvents(gctx, &ongoing)
		stats.EventsOngoing = count
		return err
	})
	g.Go(func() error {
		count, err := s.statsRepo.CountTeams(gctx)
		stats.TeamsTotal = count
		return err
	})
	g.Go(func() error {
		count, err := s.statsRepo.CountMembers(gctx)
		stats.MembersTotal = count
		return err
	})
	g.Go(func() error {
		count, err := s.statsRepo.CountMatches(gctx, nil)
		stats.MatchesTotal = count
		return err
	})
	g.Go(func() error {
		count, err := s.statsRepo.CountMatches(gctx, &live)
		stats.MatchesLive = count
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
