package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobaarena/esports-platform/models"
	"github.com/mobaarena/esports-platform/realtime"
	"github.com/mobaarena/esports-platform/repositories"
)

// recordingBroadcaster captures emissions so tests can assert on the
// mutation-to-broadcast bridge without a running hub.
type recordedEmit struct {
	eventID int
	kind    realtime.UpdateKind
	payload interface{}
}

type recordingBroadcaster struct {
	emits []recordedEmit
}

func (b *recordingBroadcaster) Emit(eventID int, kind realtime.UpdateKind, payload interface{}) {
	b.emits = append(b.emits, recordedEmit{eventID: eventID, kind: kind, payload: payload})
}

type fakeMatchRepo struct {
	matches        map[int]models.Match
	createErr      error
	updateErr      error
	scoreStatusErr error
	deleteErr      error
	nextID         int
}

func newFakeMatchRepo(matches ...models.Match) *fakeMatchRepo {
	repo := &fakeMatchRepo{matches: map[int]models.Match{}, nextID: 1}
	for _, m := range matches {
		repo.matches[m.ID] = m
		if m.ID >= repo.nextID {
			repo.nextID = m.ID + 1
		}
	}
	return repo
}

func (r *fakeMatchRepo) Create(_ context.Context, match *models.Match) error {
	if r.createErr != nil {
		return r.createErr
	}
	match.ID = r.nextID
	r.nextID++
	match.CreatedAt = time.Now()
	r.matches[match.ID] = *match
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	match, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := match
	return &copied, nil
}

func (r *fakeMatchRepo) ListByEvent(_ context.Context, eventID int, _ repositories.ListMatchesFilter) ([]models.Match, error) {
	out := make([]models.Match, 0)
	for _, m := range r.matches {
		if m.EventID == eventID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) Update(_ context.Context, match *models.Match) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.matches[match.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	r.matches[match.ID] = *match
	return nil
}

func (r *fakeMatchRepo) UpdateScoreStatus(_ context.Context, id int, score1, score2 int, status models.MatchStatus) error {
	if r.scoreStatusErr != nil {
		return r.scoreStatusErr
	}
	match, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.ScoreTeam1 = score1
	match.ScoreTeam2 = score2
	match.Status = status
	r.matches[id] = match
	return nil
}

func (r *fakeMatchRepo) Delete(_ context.Context, id int) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.matches, id)
	return nil
}

func (r *fakeMatchRepo) CountByEvent(_ context.Context, eventID int, _ *models.MatchStatus) (int, error) {
	count := 0
	for _, m := range r.matches {
		if m.EventID == eventID {
			count++
		}
	}
	return count, nil
}

type fakeStageRepo struct {
	stages map[int]models.Stage
}

func newFakeStageRepo(stages ...models.Stage) *fakeStageRepo {
	repo := &fakeStageRepo{stages: map[int]models.Stage{}}
	for _, st := range stages {
		repo.stages[st.ID] = st
	}
	return repo
}

func (r *fakeStageRepo) Create(_ context.Context, stage *models.Stage) error {
	stage.ID = len(r.stages) + 1
	r.stages[stage.ID] = *stage
	return nil
}

func (r *fakeStageRepo) GetByID(_ context.Context, id int) (*models.Stage, error) {
	stage, ok := r.stages[id]
	if !ok {
		return nil, repositories.ErrStageNotFound
	}
	copied := stage
	return &copied, nil
}

func (r *fakeStageRepo) ListByEvent(_ context.Context, eventID int) ([]models.Stage, error) {
	out := make([]models.Stage, 0)
	for _, st := range r.stages {
		if st.EventID == eventID {
			out = append(out, st)
		}
	}
	return out, nil
}

func (r *fakeStageRepo) Update(_ context.Context, stage *models.Stage) error {
	if _, ok := r.stages[stage.ID]; !ok {
		return repositories.ErrStageNotFound
	}
	r.stages[stage.ID] = *stage
	return nil
}

func (r *fakeStageRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.stages[id]; !ok {
		return repositories.ErrStageNotFound
	}
	delete(r.stages, id)
	return nil
}

type fakeRoundRepo struct {
	rounds    map[int]models.MatchRound
	createErr error
	updateErr error
	nextID    int
}

func newFakeRoundRepo(rounds ...models.MatchRound) *fakeRoundRepo {
	repo := &fakeRoundRepo{rounds: map[int]models.MatchRound{}, nextID: 1}
	for _, rd := range rounds {
		repo.rounds[rd.ID] = rd
		if rd.ID >= repo.nextID {
			repo.nextID = rd.ID + 1
		}
	}
	return repo
}

func (r *fakeRoundRepo) Create(_ context.Context, round *models.MatchRound) error {
	if r.createErr != nil {
		return r.createErr
	}
	round.ID = r.nextID
	r.nextID++
	r.rounds[round.ID] = *round
	return nil
}

func (r *fakeRoundRepo) GetByID(_ context.Context, id int) (*models.MatchRound, error) {
	round, ok := r.rounds[id]
	if !ok {
		return nil, repositories.ErrRoundNotFound
	}
	copied := round
	return &copied, nil
}

func (r *fakeRoundRepo) ListByMatch(_ context.Context, matchID int) ([]models.MatchRound, error) {
	out := make([]models.MatchRound, 0)
	for _, rd := range r.rounds {
		if rd.MatchID == matchID {
			out = append(out, rd)
		}
	}
	return out, nil
}

func (r *fakeRoundRepo) Update(_ context.Context, round *models.MatchRound) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.rounds[round.ID]; !ok {
		return repositories.ErrRoundNotFound
	}
	r.rounds[round.ID] = *round
	return nil
}

func (r *fakeRoundRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.rounds[id]; !ok {
		return repositories.ErrRoundNotFound
	}
	delete(r.rounds, id)
	return nil
}

type fakeBracketService struct {
	bracket *Bracket
	err     error
}

func (s *fakeBracketService) GetBracket(_ context.Context, eventID int) (*Bracket, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.bracket != nil {
		return s.bracket, nil
	}
	return &Bracket{EventID: eventID, Stages: []models.Stage{}}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func adminActor() models.Actor {
	return models.Actor{Type: models.ActorAdmin, UserID: 1}
}

func intPtr(v int) *int { return &v }

func newMatchServiceForTest(matchRepo *fakeMatchRepo, stageRepo *fakeStageRepo) (MatchService, *recordingBroadcaster) {
	broadcaster := &recordingBroadcaster{}
	svc := NewMatchService(matchRepo, stageRepo, newFakeRoundRepo(), &fakeBracketService{}, broadcaster, discardLogger())
	return svc, broadcaster
}

func TestMatchUpdateScoreBroadcastsToEventRoom(t *testing.T) {
	matchRepo := newFakeMatchRepo(models.Match{ID: 42, EventID: 7, StageID: 1, Status: models.MatchStatusLive})
	svc, broadcaster := newMatchServiceForTest(matchRepo, newFakeStageRepo())

	match, err := svc.UpdateScore(context.Background(), adminActor(), 42, UpdateScoreInput{
		ScoreTeam1: 2,
		ScoreTeam2: 1,
		Status:     models.MatchStatusFinished,
	})
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusFinished, match.Status)
	assert.Equal(t, 2, match.ScoreTeam1)

	require.Len(t, broadcaster.emits, 1)
	emit := broadcaster.emits[0]
	assert.Equal(t, 7, emit.eventID)
	assert.Equal(t, realtime.KindMatchUpdate, emit.kind)

	payload, ok := emit.payload.(realtime.MatchUpdate)
	require.True(t, ok)
	assert.Equal(t, 42, payload.MatchID)
	updates, ok := payload.Updates.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, models.MatchStatusFinished, updates["status"])
	assert.Equal(t, 2, updates["score_team1"])
	assert.Equal(t, 1, updates["score_team2"])
}

func TestMatchUpdateScoreFailedWriteDoesNotBroadcast(t *testing.T) {
	matchRepo := newFakeMatchRepo(models.Match{ID: 42, EventID: 7, StageID: 1})
	matchRepo.scoreStatusErr = errors.New("connection reset")
	svc, broadcaster := newMatchServiceForTest(matchRepo, newFakeStageRepo())

	_, err := svc.UpdateScore(context.Background(), adminActor(), 42, UpdateScoreInput{
		ScoreTeam1: 1,
		Status:     models.MatchStatusLive,
	})
	require.Error(t, err)
	assert.Empty(t, broadcaster.emits)
}

func TestMatchUpdateScoreRejectsNonAdmin(t *testing.T) {
	matchRepo := newFakeMatchRepo(models.Match{ID: 42, EventID: 7, StageID: 1})
	svc, broadcaster := newMatchServiceForTest(matchRepo, newFakeStageRepo())

	actor := models.Actor{Type: models.ActorTeam, TeamID: 3}
	_, err := svc.UpdateScore(context.Background(), actor, 42, UpdateScoreInput{Status: models.MatchStatusLive})
	assert.ErrorIs(t, err, ErrForbiddenOperation)
	assert.Empty(t, broadcaster.emits)
}

func TestMatchUpdateScoreValidation(t *testing.T) {
	matchRepo := newFakeMatchRepo(models.Match{ID: 42, EventID: 7, StageID: 1})
	svc, broadcaster := newMatchServiceForTest(matchRepo, newFakeStageRepo())

	_, err := svc.UpdateScore(context.Background(), adminActor(), 42, UpdateScoreInput{Status: "halted"})
	assert.ErrorIs(t, err, ErrMatchInvalidStatus)

	_, err = svc.UpdateScore(context.Background(), adminActor(), 42, UpdateScoreInput{
		ScoreTeam1: -1,
		Status:     models.MatchStatusLive,
	})
	assert.ErrorIs(t, err, ErrMatchNegativeScore)
	assert.Empty(t, broadcaster.emits)
}

func TestMatchCreateEmitsBracketSnapshot(t *testing.T) {
	stageRepo := newFakeStageRepo(models.Stage{ID: 5, EventID: 7, Name: "Playoffs"})
	svc, broadcaster := newMatchServiceForTest(newFakeMatchRepo(), stageRepo)

	match, err := svc.Create(context.Background(), adminActor(), 7, CreateMatchInput{
		StageID: 5,
		Team1ID: intPtr(10),
		Team2ID: intPtr(11),
	})
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusScheduled, match.Status)
	assert.Equal(t, 7, match.EventID)

	require.Len(t, broadcaster.emits, 1)
	assert.Equal(t, realtime.KindBracketUpdate, broadcaster.emits[0].kind)
	assert.Equal(t, 7, broadcaster.emits[0].eventID)

	bracket, ok := broadcaster.emits[0].payload.(*Bracket)
	require.True(t, ok)
	assert.Equal(t, 7, bracket.EventID)
}

func TestMatchCreateRejectsStageFromOtherEvent(t *testing.T) {
	stageRepo := newFakeStageRepo(models.Stage{ID: 5, EventID: 99, Name: "Playoffs"})
	svc, broadcaster := newMatchServiceForTest(newFakeMatchRepo(), stageRepo)

	_, err := svc.Create(context.Background(), adminActor(), 7, CreateMatchInput{StageID: 5})
	assert.ErrorIs(t, err, ErrStageEventMismatch)
	assert.Empty(t, broadcaster.emits)
}

func TestMatchCreateRejectsIdenticalTeams(t *testing.T) {
	stageRepo := newFakeStageRepo(models.Stage{ID: 5, EventID: 7})
	svc, broadcaster := newMatchServiceForTest(newFakeMatchRepo(), stageRepo)

	_, err := svc.Create(context.Background(), adminActor(), 7, CreateMatchInput{
		StageID: 5,
		Team1ID: intPtr(10),
		Team2ID: intPtr(10),
	})
	assert.ErrorIs(t, err, ErrMatchTeamsIdentical)
	assert.Empty(t, broadcaster.emits)
}

func TestMatchUpdateBroadcastsOnlyChangedFields(t *testing.T) {
	matchRepo := newFakeMatchRepo(models.Match{ID: 42, EventID: 7, StageID: 5})
	stageRepo := newFakeStageRepo(models.Stage{ID: 5, EventID: 7})
	svc, broadcaster := newMatchServiceForTest(matchRepo, stageRepo)

	when := time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC)
	_, err := svc.Update(context.Background(), adminActor(), 42, UpdateMatchInput{ScheduledAt: &when})
	require.NoError(t, err)

	require.Len(t, broadcaster.emits, 1)
	payload, ok := broadcaster.emits[0].payload.(realtime.MatchUpdate)
	require.True(t, ok)
	updates, ok := payload.Updates.(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, updates, 1)
	assert.Equal(t, when, updates["scheduled_at"])
}

func TestMatchUpdateNoChangesNoBroadcast(t *testing.T) {
	matchRepo := newFakeMatchRepo(models.Match{ID: 42, EventID: 7, StageID: 5})
	svc, broadcaster := newMatchServiceForTest(matchRepo, newFakeStageRepo(models.Stage{ID: 5, EventID: 7}))

	_, err := svc.Update(context.Background(), adminActor(), 42, UpdateMatchInput{})
	require.NoError(t, err)
	assert.Empty(t, broadcaster.emits)
}

func TestMatchDeleteEmitsBracketSnapshot(t *testing.T) {
	matchRepo := newFakeMatchRepo(models.Match{ID: 42, EventID: 7, StageID: 5})
	svc, broadcaster := newMatchServiceForTest(matchRepo, newFakeStageRepo())

	require.NoError(t, svc.Delete(context.Background(), adminActor(), 42))
	require.Len(t, broadcaster.emits, 1)
	assert.Equal(t, realtime.KindBracketUpdate, broadcaster.emits[0].kind)
}

func TestMatchDeleteUnknownMatch(t *testing.T) {
	svc, broadcaster := newMatchServiceForTest(newFakeMatchRepo(), newFakeStageRepo())

	err := svc.Delete(context.Background(), adminActor(), 404)
	assert.ErrorIs(t, err, ErrMatchNotFound)
	assert.Empty(t, broadcaster.emits)
}

func TestRoundCreateBroadcastsMatchUpdate(t *testing.T) {
	matchRepo := newFakeMatchRepo(models.Match{ID: 42, EventID: 7, StageID: 5})
	broadcaster := &recordingBroadcaster{}
	svc := NewRoundService(newFakeRoundRepo(), matchRepo, broadcaster)

	mapName := "Dust Plains"
	round, err := svc.Create(context.Background(), adminActor(), 42, CreateRoundInput{
		Number:     1,
		MapName:    &mapName,
		ScoreTeam1: 13,
		ScoreTeam2: 9,
	})
	require.NoError(t, err)
	assert.Equal(t, 42, round.MatchID)

	require.Len(t, broadcaster.emits, 1)
	assert.Equal(t, 7, broadcaster.emits[0].eventID)
	assert.Equal(t, realtime.KindMatchUpdate, broadcaster.emits[0].kind)

	payload, ok := broadcaster.emits[0].payload.(realtime.MatchUpdate)
	require.True(t, ok)
	assert.Equal(t, 42, payload.MatchID)
}

func TestRoundCreateFailedWriteDoesNotBroadcast(t *testing.T) {
	matchRepo := newFakeMatchRepo(models.Match{ID: 42, EventID: 7, StageID: 5})
	roundRepo := newFakeRoundRepo()
	roundRepo.createErr = repositories.ErrRoundNumberConflict
	broadcaster := &recordingBroadcaster{}
	svc := NewRoundService(roundRepo, matchRepo, broadcaster)

	_, err := svc.Create(context.Background(), adminActor(), 42, CreateRoundInput{Number: 1})
	assert.ErrorIs(t, err, ErrRoundNumberConflict)
	assert.Empty(t, broadcaster.emits)
}

func TestRoundCreateRejectsInvalidNumber(t *testing.T) {
	matchRepo := newFakeMatchRepo(models.Match{ID: 42, EventID: 7, StageID: 5})
	svc := NewRoundService(newFakeRoundRepo(), matchRepo, &recordingBroadcaster{})

	_, err := svc.Create(context.Background(), adminActor(), 42, CreateRoundInput{Number: 0})
	assert.ErrorIs(t, err, ErrRoundInvalidNumber)
}

func TestStageCreateBroadcastsStageUpdate(t *testing.T) {
	stageRepo := newFakeStageRepo()
	broadcaster := &recordingBroadcaster{}
	svc := NewStageService(stageRepo, &fakeBracketService{}, broadcaster, discardLogger())

	stage, err := svc.Create(context.Background(), adminActor(), 7, CreateStageInput{Name: "Group Stage", Sequence: 1})
	require.NoError(t, err)
	assert.Equal(t, 7, stage.EventID)

	require.Len(t, broadcaster.emits, 1)
	assert.Equal(t, realtime.KindStageUpdate, broadcaster.emits[0].kind)
	assert.Equal(t, 7, broadcaster.emits[0].eventID)
}

func TestStageDeleteBroadcastsBracketSnapshot(t *testing.T) {
	stageRepo := newFakeStageRepo(models.Stage{ID: 5, EventID: 7, Name: "Playoffs"})
	broadcaster := &recordingBroadcaster{}
	svc := NewStageService(stageRepo, &fakeBracketService{}, broadcaster, discardLogger())

	require.NoError(t, svc.Delete(context.Background(), adminActor(), 5))
	require.Len(t, broadcaster.emits, 1)
	assert.Equal(t, realtime.KindBracketUpdate, broadcaster.emits[0].kind)
}

func TestStageCreateRejectsNonAdmin(t *testing.T) {
	svc := NewStageService(newFakeStageRepo(), &fakeBracketService{}, &recordingBroadcaster{}, discardLogger())

	actor := models.Actor{Type: models.ActorMember, TeamID: 3, MemberID: 8}
	_, err := svc.Create(context.Background(), actor, 7, CreateStageInput{Name: "Finals"})
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}
