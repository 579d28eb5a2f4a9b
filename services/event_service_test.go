package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobaarena/esports-platform/models"
	"github.com/mobaarena/esports-platform/repositories"
)

type fakeEventRepo struct {
	events map[int]models.Event
	nextID int
}

func newFakeEventRepo(events ...models.Event) *fakeEventRepo {
	repo := &fakeEventRepo{events: map[int]models.Event{}, nextID: 1}
	for _, e := range events {
		repo.events[e.ID] = e
		if e.ID >= repo.nextID {
			repo.nextID = e.ID + 1
		}
	}
	return repo
}

func (r *fakeEventRepo) Create(_ context.Context, event *models.Event) error {
	event.ID = r.nextID
	r.nextID++
	event.CreatedAt = time.Now()
	r.events[event.ID] = *event
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id int) (*models.Event, error) {
	event, ok := r.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	copied := event
	return &copied, nil
}

func (r *fakeEventRepo) List(_ context.Context, filter repositories.ListEventsFilter) ([]models.Event, error) {
	out := make([]models.Event, 0)
	for _, e := range r.events {
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		if filter.CreatedBy != nil && e.CreatedBy != *filter.CreatedBy {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeEventRepo) Update(_ context.Context, event *models.Event) error {
	if _, ok := r.events[event.ID]; !ok {
		return repositories.ErrEventNotFound
	}
	r.events[event.ID] = *event
	return nil
}

func (r *fakeEventRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.EventStatus) error {
	event, ok := r.events[id]
	if !ok {
		return repositories.ErrEventNotFound
	}
	event.Status = status
	r.events[id] = event
	return nil
}

func (r *fakeEventRepo) UpdateLogoKey(_ context.Context, id int, logoKey *string) error {
	event, ok := r.events[id]
	if !ok {
		return repositories.ErrEventNotFound
	}
	event.LogoKey = logoKey
	r.events[id] = event
	return nil
}

func (r *fakeEventRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.events[id]; !ok {
		return repositories.ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}

func futureDeadline() time.Time {
	return time.Now().Add(72 * time.Hour)
}

func TestEventCreate(t *testing.T) {
	svc := NewEventService(nil, newFakeEventRepo(), nil)

	event, err := svc.Create(context.Background(), adminActor(), CreateEventInput{
		Title:                "Autumn Clash",
		MaxTeams:             16,
		RegistrationDeadline: futureDeadline(),
	})
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusDraft, event.Status)
	assert.Equal(t, 1, event.CreatedBy)
	assert.Equal(t, "Autumn Clash", event.Title)
}

func TestEventCreateValidation(t *testing.T) {
	svc := NewEventService(nil, newFakeEventRepo(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, adminActor(), CreateEventInput{Title: "  ", MaxTeams: 16, RegistrationDeadline: futureDeadline()})
	assert.ErrorIs(t, err, ErrEventTitleRequired)

	_, err = svc.Create(ctx, adminActor(), CreateEventInput{Title: "Cup", MaxTeams: 0, RegistrationDeadline: futureDeadline()})
	assert.ErrorIs(t, err, ErrEventInvalidCapacity)

	_, err = svc.Create(ctx, adminActor(), CreateEventInput{Title: "Cup", MaxTeams: 8, RegistrationDeadline: time.Now().Add(-time.Hour)})
	assert.ErrorIs(t, err, ErrEventInvalidDeadline)

	_, err = svc.Create(ctx, models.Actor{Type: models.ActorTeam, TeamID: 2}, CreateEventInput{
		Title: "Cup", MaxTeams: 8, RegistrationDeadline: futureDeadline(),
	})
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestEventStatusTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    models.EventStatus
		to      models.EventStatus
		wantErr error
	}{
		{"draft to open", models.EventStatusDraft, models.EventStatusOpen, nil},
		{"open to closed", models.EventStatusOpen, models.EventStatusClosed, nil},
		{"closed to ongoing", models.EventStatusClosed, models.EventStatusOngoing, nil},
		{"ongoing to closed", models.EventStatusOngoing, models.EventStatusClosed, nil},
		{"draft to ongoing skips open", models.EventStatusDraft, models.EventStatusOngoing, ErrInvalidStatusTransition},
		{"open back to draft", models.EventStatusOpen, models.EventStatusDraft, ErrInvalidStatusTransition},
		{"closed to open reopening", models.EventStatusClosed, models.EventStatusOpen, ErrInvalidStatusTransition},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeEventRepo(models.Event{ID: 1, Title: "Cup", Status: tc.from, CreatedBy: 1})
			svc := NewEventService(nil, repo, nil)

			event, err := svc.UpdateStatus(context.Background(), adminActor(), 1, tc.to)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.to, event.Status)
		})
	}
}

func TestEventUpdateStatusRejectsUnknownStatus(t *testing.T) {
	repo := newFakeEventRepo(models.Event{ID: 1, Status: models.EventStatusDraft, CreatedBy: 1})
	svc := NewEventService(nil, repo, nil)

	_, err := svc.UpdateStatus(context.Background(), adminActor(), 1, "paused")
	assert.ErrorIs(t, err, ErrEventInvalidStatus)
}

func TestEventOwnershipAuthorization(t *testing.T) {
	repo := newFakeEventRepo(models.Event{ID: 1, Title: "Cup", Status: models.EventStatusDraft, CreatedBy: 1})
	svc := NewEventService(nil, repo, nil)
	ctx := context.Background()

	otherAdmin := models.Actor{Type: models.ActorAdmin, UserID: 2}
	_, err := svc.Update(ctx, otherAdmin, 1, UpdateEventInput{})
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	superAdmin := models.Actor{Type: models.ActorSuperAdmin, UserID: 99}
	title := "Renamed Cup"
	event, err := svc.Update(ctx, superAdmin, 1, UpdateEventInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Cup", event.Title)
}

func TestEventUpdateUnknownEvent(t *testing.T) {
	svc := NewEventService(nil, newFakeEventRepo(), nil)

	_, err := svc.Update(context.Background(), adminActor(), 404, UpdateEventInput{})
	assert.ErrorIs(t, err, ErrEventNotFound)
}
